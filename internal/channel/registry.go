package channel

import (
	"fmt"

	"go.uber.org/zap"
)

// Registry holds the configured channels, indexed sparsely by channel
// number 1..MaxChannels. It is populated once at start-up and read-only
// afterwards; only the per-channel state behind it mutates.
type Registry struct {
	channels [MaxChannels + 1]*Channel
	logger   *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{logger: logger}
}

// Add registers a channel under its number. Duplicate or out-of-range
// numbers are configuration errors.
func (r *Registry) Add(ch *Channel) error {
	n := ch.Number()
	if n < 1 || n > MaxChannels {
		return fmt.Errorf("channel number %d out of range 1..%d", n, MaxChannels)
	}
	if r.channels[n] != nil {
		return fmt.Errorf("channel %d already configured", n)
	}

	r.channels[n] = ch
	return nil
}

// Get returns the channel with the given number, or nil if none is
// configured there.
func (r *Registry) Get(number int) *Channel {
	if number < 1 || number > MaxChannels {
		return nil
	}
	return r.channels[number]
}

// All returns the configured channels in ascending channel-number order.
func (r *Registry) All() []*Channel {
	out := make([]*Channel, 0, MaxChannels)
	for n := 1; n <= MaxChannels; n++ {
		if r.channels[n] != nil {
			out = append(out, r.channels[n])
		}
	}
	return out
}

// InitAll pushes every channel's configuration to its line.
func (r *Registry) InitAll() {
	for _, ch := range r.All() {
		ch.Init()
	}
}

// NeedsTimerUpdates reports whether any configured channel requires the
// periodic update worker.
func (r *Registry) NeedsTimerUpdates() bool {
	for _, ch := range r.All() {
		if ch.NeedsTimerUpdates() {
			return true
		}
	}
	return false
}

// Statuses returns snapshots of all configured channels in channel order.
func (r *Registry) Statuses() []Status {
	channels := r.All()
	out := make([]Status, 0, len(channels))
	for _, ch := range channels {
		out = append(out, ch.Status())
	}
	return out
}
