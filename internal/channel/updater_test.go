package channel

import (
	"testing"
	"time"

	"github.com/openmill/auxio/internal/hardware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUpdaterNotNeededForOnOffOnly(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	require.NoError(t, reg.Add(newRegistryChannel(1, ModeOnOff)))

	u := NewUpdater(reg, time.Millisecond, zap.NewNop())
	assert.False(t, u.Needed())

	// Start on an empty updater must not launch the worker
	u.Start()
	assert.False(t, u.IsRunning())
}

func TestUpdaterAdvancesTimedChannels(t *testing.T) {
	line := hardware.NewMemoryLine("test")
	clk := newFakeClock()
	ch := New(2, line, 0, ModeSpikeHoldOff, zap.NewNop())
	ch.now = clk.Now
	ch.SetSpikeLength(100)
	ch.SetSpikeHoldPercent(80, 20)
	ch.Init()

	reg := NewRegistry(zap.NewNop())
	require.NoError(t, reg.Add(ch))

	u := NewUpdater(reg, time.Millisecond, zap.NewNop())
	require.True(t, u.Needed())

	u.Start()
	defer u.Stop()
	require.True(t, u.IsRunning())

	ch.On(true, 300)
	require.Equal(t, PhaseSpike, ch.Status().Phase)

	// the worker picks up the spike expiry without further calls from here
	clk.Advance(150 * time.Millisecond)
	require.Eventually(t, func() bool {
		return ch.Status().Phase == PhaseHold
	}, time.Second, time.Millisecond)
	assert.Equal(t, uint32(51), line.Duty())

	clk.Advance(200 * time.Millisecond)
	require.Eventually(t, func() bool {
		return !ch.IsOn()
	}, time.Second, time.Millisecond)
	assert.Equal(t, uint32(0), line.Duty())
}

func TestUpdaterStop(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	require.NoError(t, reg.Add(newRegistryChannel(2, ModeSpikeHoldOff)))

	u := NewUpdater(reg, time.Millisecond, zap.NewNop())
	u.Start()
	require.True(t, u.IsRunning())

	u.Stop()
	assert.False(t, u.IsRunning())

	// a second Stop is a no-op
	u.Stop()
}

func TestUpdaterStartTwice(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	require.NoError(t, reg.Add(newRegistryChannel(2, ModeSpikeHoldOff)))

	u := NewUpdater(reg, time.Millisecond, zap.NewNop())
	u.Start()
	u.Start()
	assert.True(t, u.IsRunning())
	u.Stop()
}
