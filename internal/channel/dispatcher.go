package channel

import (
	"go.uber.org/zap"
)

// MotionSynchronizer blocks until all previously queued motion operations
// have been consumed. Output changes must be ordered after in-flight motion,
// so the dispatcher waits on it before every command. The wait carries no
// timeout; a stuck motion backlog blocks the caller.
type MotionSynchronizer interface {
	WaitIdle()
}

// Dispatcher maps a channel-selector mask onto a registry channel and
// forwards on/off commands, synchronized with the motion queue.
type Dispatcher struct {
	registry *Registry
	motion   MotionSynchronizer
	logger   *zap.Logger
}

func NewDispatcher(registry *Registry, motion MotionSynchronizer, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		motion:   motion,
		logger:   logger,
	}
}

// Issue waits for the motion queue to drain, then forwards the command to
// the first configured channel whose bit is set in the mask, scanning in
// ascending channel-number order. Only one channel is affected per call;
// a mask matching no configured channel is dropped silently.
func (d *Dispatcher) Issue(mask uint8, turnOn bool, duration uint32) {
	d.motion.WaitIdle()

	for n := 1; n <= MaxChannels; n++ {
		if mask&(1<<uint(n)) == 0 {
			continue
		}

		ch := d.registry.Get(n)
		if ch == nil {
			continue
		}

		d.logger.Info("channel command",
			zap.Int("channel", n),
			zap.Bool("on", turnOn),
			zap.Uint32("duration_ms", duration))

		ch.On(turnOn, duration)
		return
	}

	d.logger.Debug("channel command matched no configured channel",
		zap.Uint8("mask", mask))
}

// MaskForChannel converts a channel number to its selector bit, or 0 when
// the number is out of range.
func MaskForChannel(number int) uint8 {
	if number < 1 || number > MaxChannels {
		return 0
	}
	return 1 << uint(number)
}
