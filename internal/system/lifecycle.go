package system

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/openmill/auxio/internal/api/rest"
	"github.com/openmill/auxio/internal/api/websocket"
	"github.com/openmill/auxio/internal/auth"
	"github.com/openmill/auxio/internal/channel"
	"github.com/openmill/auxio/internal/config"
	"github.com/openmill/auxio/internal/hardware"
	"github.com/openmill/auxio/internal/motion"
	"github.com/openmill/auxio/internal/profiles"
	"github.com/openmill/auxio/internal/types"
	"go.uber.org/zap"
)

// LifecycleManager wires the static channel configuration into running
// components and owns their start/stop order.
type LifecycleManager struct {
	config      *config.Config
	logger      *zap.Logger
	registry    *channel.Registry
	dispatcher  *channel.Dispatcher
	updater     *channel.Updater
	motionQueue *motion.Queue
	wsHub       *websocket.Hub
	authService *auth.AuthService
	restServer  *rest.Server

	// modbus-backed lines that need closing on shutdown
	lineClosers []interface{ Close() error }

	stateMu      sync.RWMutex
	currentState SystemState

	shutdownRequest     chan struct{}
	shutdownRequestOnce sync.Once
	shutdownOnce        sync.Once
}

func NewLifecycleManager(cfg *config.Config, logger *zap.Logger) (*LifecycleManager, error) {
	lm := &LifecycleManager{
		config:          cfg,
		logger:          logger,
		currentState:    StateInitializing,
		shutdownRequest: make(chan struct{}),
	}

	lm.authService = auth.NewAuthService(cfg.Auth, logger)
	lm.wsHub = websocket.NewHub(logger, lm.authService)
	lm.motionQueue = motion.NewQueue(logger)

	registry, err := lm.buildRegistry()
	if err != nil {
		return nil, err
	}
	lm.registry = registry

	lm.dispatcher = channel.NewDispatcher(registry, lm.motionQueue, logger)
	lm.updater = channel.NewUpdater(registry, cfg.Channels.UpdateInterval, logger)
	lm.restServer = rest.NewServer(cfg, lm, logger, lm.wsHub, lm.authService)

	return lm, nil
}

// buildRegistry turns the static configuration into channel instances:
// profile defaults first, explicit fields on top, line backend per channel.
func (lm *LifecycleManager) buildRegistry() (*channel.Registry, error) {
	loader, err := profiles.NewLoader(lm.config.Channels.ProfilePaths)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile loader: %w", err)
	}

	registry := channel.NewRegistry(lm.logger)

	for _, cc := range lm.config.Channels.Outputs {
		var profile *types.ChannelProfile
		if cc.Profile != "" {
			profile, err = loader.Load(cc.Profile)
			if err != nil {
				return nil, fmt.Errorf("channel %d: %w", cc.Number, err)
			}
		}

		line, err := lm.buildLine(cc)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", cc.Number, err)
		}

		mode := resolveMode(cc, profile)
		ch := channel.New(cc.Number, line, cc.PWMChannel, mode, lm.logger)
		applySettings(ch, profile, cc)

		hub := lm.wsHub
		ch.SetNotify(func(status channel.Status) {
			hub.Broadcast(websocket.NewChannelStateMessage(status))
		})

		if err := registry.Add(ch); err != nil {
			return nil, err
		}

		lm.logger.Info("channel configured",
			zap.Int("channel", cc.Number),
			zap.String("mode", string(mode)),
			zap.String("line_driver", cc.Line.Driver))
	}

	return registry, nil
}

func (lm *LifecycleManager) buildLine(cc config.ChannelConfig) (hardware.Line, error) {
	switch cc.Line.Driver {
	case "", "memory":
		name := cc.Line.Name
		if name == "" {
			name = fmt.Sprintf("channel-%d", cc.Number)
		}
		return hardware.NewMemoryLine(name), nil

	case "modbus":
		mb := cc.Line.Modbus
		line, err := hardware.NewModbusLine(hardware.ModbusLineConfig{
			Address:            mb.Address,
			UnitID:             mb.UnitID,
			CoilAddress:        mb.CoilAddress,
			DutyRegister:       mb.DutyRegister,
			FrequencyRegister:  mb.FrequencyRegister,
			ResolutionRegister: mb.ResolutionRegister,
			Timeout:            mb.Timeout,
		})
		if err != nil {
			return nil, err
		}
		lm.lineClosers = append(lm.lineClosers, line)
		return line, nil

	default:
		return nil, fmt.Errorf("unknown line driver: %s", cc.Line.Driver)
	}
}

func resolveMode(cc config.ChannelConfig, profile *types.ChannelProfile) channel.Mode {
	if cc.Mode != "" {
		return channel.Mode(cc.Mode)
	}
	if profile != nil && profile.Mode != "" {
		return channel.Mode(profile.Mode)
	}
	return channel.ModeOnOff
}

// applySettings layers profile values under explicit channel config values.
// Zero means "not set" here; the channel keeps its own defaults otherwise.
func applySettings(ch *channel.Channel, profile *types.ChannelProfile, cc config.ChannelConfig) {
	if profile != nil {
		if profile.PWMFreqHz != 0 || profile.ResolutionBits != 0 {
			ch.SetPWMFreqBits(profile.PWMFreqHz, profile.ResolutionBits)
		}
		if profile.SpikeLengthMs != 0 {
			ch.SetSpikeLength(profile.SpikeLengthMs)
		}
		if profile.SpikePercent != 0 || profile.HoldPercent != 0 {
			ch.SetSpikeHoldPercent(profile.SpikePercent, profile.HoldPercent)
		}
		if profile.DutyLow != 0 || profile.DutyHigh != 0 {
			ch.SetPWMLowHigh(profile.DutyLow, profile.DutyHigh)
		}
	}

	if cc.PWMFreqHz != 0 || cc.ResolutionBits != 0 {
		ch.SetPWMFreqBits(cc.PWMFreqHz, cc.ResolutionBits)
	}
	if cc.SpikeLengthMs != 0 {
		ch.SetSpikeLength(cc.SpikeLengthMs)
	}
	if cc.SpikePercent != 0 || cc.HoldPercent != 0 {
		ch.SetSpikeHoldPercent(cc.SpikePercent, cc.HoldPercent)
	}
	if cc.DutyLow != 0 || cc.DutyHigh != 0 {
		ch.SetPWMLowHigh(cc.DutyLow, cc.DutyHigh)
	}
}

// Start starts the entire system
func (lm *LifecycleManager) Start() error {
	lm.logger.Info("Starting auxio output controller")

	lm.setState(StateInitializing)

	go lm.wsHub.Run()

	lm.motionQueue.Start()

	// Push configuration to every line before accepting commands
	lm.registry.InitAll()

	// The update worker only exists when a channel needs timed phases
	if lm.updater.Needed() {
		lm.updater.Start()
	} else {
		lm.logger.Info("no channel needs timer updates, updater not started")
	}

	if err := lm.restServer.Start(); err != nil {
		lm.setState(StateError)
		return fmt.Errorf("failed to start REST API: %w", err)
	}

	lm.setState(StateRunning)

	lm.logger.Info("System started successfully",
		zap.Int("http_port", lm.config.Server.HTTPPort),
		zap.Int("channels", len(lm.registry.All())),
		zap.Bool("updater_running", lm.updater.IsRunning()))

	return nil
}

// Shutdown gracefully shuts down the system
func (lm *LifecycleManager) Shutdown(ctx context.Context) error {
	var shutdownErr error

	lm.shutdownOnce.Do(func() {
		lm.logger.Info("Shutting down system")
		lm.setState(StateStopping)

		shutdownErr = lm.gracefulShutdown(ctx)

		lm.setState(StateStopped)
	})

	return shutdownErr
}

func (lm *LifecycleManager) gracefulShutdown(ctx context.Context) error {
	var wg sync.WaitGroup
	errChan := make(chan error, 2)

	// 1. REST API server graceful shutdown
	if lm.restServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			if err := lm.restServer.Shutdown(shutdownCtx); err != nil {
				errChan <- fmt.Errorf("rest api shutdown failed: %w", err)
			}
		}()
	}

	// 2. Stop updater and motion worker
	wg.Add(1)
	go func() {
		defer wg.Done()
		lm.updater.Stop()
		lm.motionQueue.Stop()
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		lm.logger.Warn("Shutdown timeout, forcing stop")
		return fmt.Errorf("shutdown timeout exceeded")
	case err := <-errChan:
		return err
	}

	// 3. Drop every channel to its rest level, then close the lines
	for _, ch := range lm.registry.All() {
		ch.Off()
	}
	for _, closer := range lm.lineClosers {
		if err := closer.Close(); err != nil {
			lm.logger.Warn("line close failed", zap.Error(err))
		}
	}

	lm.logger.Info("Graceful shutdown completed")
	return nil
}

// TriggerShutdown requests a shutdown from the API; main waits on
// ShutdownRequested.
func (lm *LifecycleManager) TriggerShutdown() {
	lm.shutdownRequestOnce.Do(func() {
		close(lm.shutdownRequest)
	})
}

// ShutdownRequested is closed when an API shutdown was triggered.
func (lm *LifecycleManager) ShutdownRequested() <-chan struct{} {
	return lm.shutdownRequest
}

func (lm *LifecycleManager) setState(state SystemState) {
	lm.stateMu.Lock()
	defer lm.stateMu.Unlock()
	lm.currentState = state
}

// GetCurrentStatus returns current system status (rest.Manager implementation)
func (lm *LifecycleManager) GetCurrentStatus() types.SystemStatus {
	lm.stateMu.RLock()
	defer lm.stateMu.RUnlock()

	timed := 0
	for _, ch := range lm.registry.All() {
		if ch.NeedsTimerUpdates() {
			timed++
		}
	}

	return types.SystemStatus{
		State:          lm.currentState.String(),
		ChannelCount:   len(lm.registry.All()),
		TimedChannels:  timed,
		UpdaterRunning: lm.updater.IsRunning(),
		MotionDepth:    lm.motionQueue.Depth(),
		MotionIdle:     lm.motionQueue.Idle(),
	}
}

// Registry returns the channel registry
func (lm *LifecycleManager) Registry() *channel.Registry {
	return lm.registry
}

// Dispatcher returns the command dispatcher
func (lm *LifecycleManager) Dispatcher() *channel.Dispatcher {
	return lm.dispatcher
}

// Motion returns the motion queue
func (lm *LifecycleManager) Motion() *motion.Queue {
	return lm.motionQueue
}

// Config returns the configuration
func (lm *LifecycleManager) Config() *config.Config {
	return lm.config
}
