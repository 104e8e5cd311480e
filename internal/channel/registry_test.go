package channel

import (
	"testing"

	"github.com/openmill/auxio/internal/hardware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRegistryChannel(number int, mode Mode) *Channel {
	return New(number, hardware.NewMemoryLine("test"), uint8(number), mode, zap.NewNop())
}

func TestRegistryAddAndGet(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	require.NoError(t, reg.Add(newRegistryChannel(2, ModeOnOff)))
	require.NoError(t, reg.Add(newRegistryChannel(5, ModeOnOff)))

	assert.NotNil(t, reg.Get(2))
	assert.NotNil(t, reg.Get(5))

	// sparse numbering: the gaps stay empty
	assert.Nil(t, reg.Get(1))
	assert.Nil(t, reg.Get(3))
	assert.Nil(t, reg.Get(4))
	assert.Nil(t, reg.Get(6))

	assert.Nil(t, reg.Get(0))
	assert.Nil(t, reg.Get(7))
}

func TestRegistryAddRejectsOutOfRange(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	assert.Error(t, reg.Add(newRegistryChannel(0, ModeOnOff)))
	assert.Error(t, reg.Add(newRegistryChannel(7, ModeOnOff)))
}

func TestRegistryAddRejectsDuplicate(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	require.NoError(t, reg.Add(newRegistryChannel(3, ModeOnOff)))
	assert.Error(t, reg.Add(newRegistryChannel(3, ModeOnOff)))
}

func TestRegistryAllOrdered(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	require.NoError(t, reg.Add(newRegistryChannel(6, ModeOnOff)))
	require.NoError(t, reg.Add(newRegistryChannel(1, ModeOnOff)))
	require.NoError(t, reg.Add(newRegistryChannel(4, ModeOnOff)))

	all := reg.All()
	require.Len(t, all, 3)
	assert.Equal(t, 1, all[0].Number())
	assert.Equal(t, 4, all[1].Number())
	assert.Equal(t, 6, all[2].Number())
}

func TestRegistryNeedsTimerUpdates(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	require.NoError(t, reg.Add(newRegistryChannel(1, ModeOnOff)))
	assert.False(t, reg.NeedsTimerUpdates())

	require.NoError(t, reg.Add(newRegistryChannel(2, ModeSpikeHoldOff)))
	assert.True(t, reg.NeedsTimerUpdates())
}

func TestRegistryStatuses(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	require.NoError(t, reg.Add(newRegistryChannel(3, ModePWMLowHigh)))
	require.NoError(t, reg.Add(newRegistryChannel(1, ModeOnOff)))

	statuses := reg.Statuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, 1, statuses[0].Number)
	assert.Equal(t, ModeOnOff, statuses[0].Mode)
	assert.Equal(t, 3, statuses[1].Number)
	assert.Equal(t, ModePWMLowHigh, statuses[1].Mode)
}
