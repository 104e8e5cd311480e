package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/v1/system/status
func (s *Server) getSystemStatus(c *gin.Context) {
	status := s.lm.GetCurrentStatus()
	status.ConnectedClients = s.wsHub.GetClientCount()
	c.JSON(http.StatusOK, status)
}

// POST /api/v1/system/shutdown
func (s *Server) shutdown(c *gin.Context) {
	s.logger.Info("Shutdown requested via API")
	s.lm.TriggerShutdown()
	c.JSON(http.StatusAccepted, gin.H{
		"message": "Shutdown initiated",
	})
}
