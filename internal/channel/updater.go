package channel

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Updater drives the timed phase transitions: a single worker that calls
// Update on every channel needing timer updates, in channel-number order,
// once per interval. Membership is fixed at construction, matching the
// start-up decision of whether the worker runs at all.
type Updater struct {
	channels []*Channel
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

func NewUpdater(registry *Registry, interval time.Duration, logger *zap.Logger) *Updater {
	var channels []*Channel
	for _, ch := range registry.All() {
		if ch.NeedsTimerUpdates() {
			channels = append(channels, ch)
		}
	}

	return &Updater{
		channels: channels,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Needed reports whether any channel requires the worker.
func (u *Updater) Needed() bool {
	return len(u.channels) > 0
}

// Start launches the update loop. A no-op when no channel needs updates.
func (u *Updater) Start() {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.running || len(u.channels) == 0 {
		return
	}

	u.running = true
	u.wg.Add(1)

	go u.updateLoop()

	u.logger.Info("channel updater started",
		zap.Int("channels", len(u.channels)),
		zap.Duration("interval", u.interval))
}

// Stop halts the update loop and waits for it to exit.
func (u *Updater) Stop() {
	u.mu.Lock()
	if !u.running {
		u.mu.Unlock()
		return
	}
	u.mu.Unlock()

	close(u.stopChan)
	u.wg.Wait()

	u.mu.Lock()
	u.running = false
	u.mu.Unlock()

	u.logger.Info("channel updater stopped")
}

func (u *Updater) IsRunning() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.running
}

func (u *Updater) updateLoop() {
	defer u.wg.Done()

	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		select {
		case <-u.stopChan:
			return
		case <-ticker.C:
			for _, ch := range u.channels {
				ch.Update()
			}
		}
	}
}
