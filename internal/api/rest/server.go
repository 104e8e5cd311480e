package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openmill/auxio/internal/api/websocket"
	"github.com/openmill/auxio/internal/auth"
	"github.com/openmill/auxio/internal/channel"
	"github.com/openmill/auxio/internal/config"
	"github.com/openmill/auxio/internal/motion"
	"github.com/openmill/auxio/internal/types"
	"go.uber.org/zap"
)

// Manager is the slice of the system the API needs.
type Manager interface {
	Registry() *channel.Registry
	Dispatcher() *channel.Dispatcher
	Motion() *motion.Queue
	GetCurrentStatus() types.SystemStatus
	TriggerShutdown()
}

type Server struct {
	router      *gin.Engine
	lm          Manager
	cfg         *config.Config
	logger      *zap.Logger
	server      *http.Server
	wsHub       *websocket.Hub
	authService *auth.AuthService
}

func NewServer(cfg *config.Config, lm Manager, logger *zap.Logger, wsHub *websocket.Hub, authService *auth.AuthService) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:      gin.New(),
		lm:          lm,
		cfg:         cfg,
		logger:      logger,
		wsHub:       wsHub,
		authService: authService,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("REST server failed", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down REST API server")
	return s.server.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Middleware
	s.router.Use(gin.Recovery())
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(CORSMiddleware())

	// Public routes (no auth required)
	s.router.GET("/health", s.healthCheck)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		// ==================== AUTH (PUBLIC) ====================
		authPublic := v1.Group("/auth")
		{
			authPublic.POST("/login", s.login)
		}

		// ==================== CHANNELS ====================
		channels := v1.Group("/channels")
		channels.Use(s.authService.AuthMiddleware())
		{
			// Read: Operator+
			channels.GET("", auth.RequirePermission(auth.PermOperator), s.listChannels)
			channels.GET("/:number", auth.RequirePermission(auth.PermOperator), s.getChannel)

			// Commands: Operator+
			channels.POST("/command", auth.RequirePermission(auth.PermOperator), s.issueCommand)

			// Reconfiguration: Technician+, re-init: Admin
			channels.PATCH("/:number/settings", auth.RequirePermission(auth.PermTechnician), s.updateSettings)
			channels.POST("/:number/init", auth.RequirePermission(auth.PermAdmin), s.reinitChannel)
		}

		// ==================== MOTION (OPERATOR+) ====================
		motionGroup := v1.Group("/motion")
		motionGroup.Use(s.authService.AuthMiddleware())
		motionGroup.Use(auth.RequirePermission(auth.PermOperator))
		{
			motionGroup.GET("/status", s.getMotionStatus)
			motionGroup.POST("/segments", s.pushSegment)
		}

		// ==================== SYSTEM ====================
		system := v1.Group("/system")
		system.Use(s.authService.AuthMiddleware())
		{
			system.GET("/status", auth.RequirePermission(auth.PermOperator), s.getSystemStatus)
			system.POST("/shutdown", auth.RequirePermission(auth.PermAdmin), s.shutdown)
		}

		// ==================== WEBSOCKET (Auth via first message) ====================
		ws := v1.Group("/ws")
		{
			ws.GET("/live", s.wsLiveConnection)
			ws.GET("/status", s.wsStatus)
		}
	}
}

// WebSocket handlers
func (s *Server) wsLiveConnection(c *gin.Context) {
	websocket.ServeWs(s.wsHub, c.Writer, c.Request)
}

func (s *Server) wsStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connected_clients": s.wsHub.GetClientCount(),
	})
}

// Health check (public)
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}
