package channel

import (
	"testing"

	"github.com/openmill/auxio/internal/hardware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSynchronizer records the drain and can observe channel state at the
// moment the dispatcher waits on it.
type fakeSynchronizer struct {
	waits   int
	onDrain func()
}

func (s *fakeSynchronizer) WaitIdle() {
	s.waits++
	if s.onDrain != nil {
		s.onDrain()
	}
}

func buildRegistry(t *testing.T, numbers ...int) (*Registry, map[int]*hardware.MemoryLine) {
	t.Helper()

	reg := NewRegistry(zap.NewNop())
	lines := make(map[int]*hardware.MemoryLine)
	for _, n := range numbers {
		line := hardware.NewMemoryLine("test")
		ch := New(n, line, uint8(n), ModeOnOff, zap.NewNop())
		ch.Init()
		require.NoError(t, reg.Add(ch))
		lines[n] = line
	}
	return reg, lines
}

func TestIssueAffectsOnlySelectedChannel(t *testing.T) {
	reg, lines := buildRegistry(t, 1, 2, 3)
	d := NewDispatcher(reg, &fakeSynchronizer{}, zap.NewNop())

	d.Issue(MaskForChannel(3), true, 0)

	assert.False(t, lines[1].DigitalState())
	assert.False(t, lines[2].DigitalState())
	assert.True(t, lines[3].DigitalState())
}

func TestIssueDrainsMotionBeforeCommand(t *testing.T) {
	reg, _ := buildRegistry(t, 2)
	ch := reg.Get(2)

	sync := &fakeSynchronizer{}
	sync.onDrain = func() {
		// the command must not have reached the channel yet
		assert.False(t, ch.IsOn())
	}
	d := NewDispatcher(reg, sync, zap.NewNop())

	d.Issue(MaskForChannel(2), true, 0)

	assert.Equal(t, 1, sync.waits)
	assert.True(t, ch.IsOn())
}

func TestIssueFirstMatchOnly(t *testing.T) {
	reg, lines := buildRegistry(t, 2, 4)
	d := NewDispatcher(reg, &fakeSynchronizer{}, zap.NewNop())

	// both bits set: only the lowest configured channel reacts
	d.Issue(MaskForChannel(2)|MaskForChannel(4), true, 0)

	assert.True(t, lines[2].DigitalState())
	assert.False(t, lines[4].DigitalState())
}

func TestIssueSkipsUnconfiguredBits(t *testing.T) {
	reg, lines := buildRegistry(t, 4)
	d := NewDispatcher(reg, &fakeSynchronizer{}, zap.NewNop())

	// bit 2 has no channel behind it, the scan moves on to 4
	d.Issue(MaskForChannel(2)|MaskForChannel(4), true, 0)

	assert.True(t, lines[4].DigitalState())
}

func TestIssueNoMatchIsSilent(t *testing.T) {
	reg, lines := buildRegistry(t, 1)
	sync := &fakeSynchronizer{}
	d := NewDispatcher(reg, sync, zap.NewNop())

	d.Issue(MaskForChannel(5), true, 0)

	// the drain still happened, but no channel changed
	assert.Equal(t, 1, sync.waits)
	assert.False(t, lines[1].DigitalState())
}

func TestIssueTurnOff(t *testing.T) {
	reg, lines := buildRegistry(t, 1)
	d := NewDispatcher(reg, &fakeSynchronizer{}, zap.NewNop())

	d.Issue(MaskForChannel(1), true, 0)
	require.True(t, lines[1].DigitalState())

	d.Issue(MaskForChannel(1), false, 0)
	assert.False(t, lines[1].DigitalState())
	assert.False(t, reg.Get(1).IsOn())
}

func TestMaskForChannel(t *testing.T) {
	assert.Equal(t, uint8(1<<1), MaskForChannel(1))
	assert.Equal(t, uint8(1<<3), MaskForChannel(3))
	assert.Equal(t, uint8(1<<6), MaskForChannel(6))
	assert.Equal(t, uint8(0), MaskForChannel(0))
	assert.Equal(t, uint8(0), MaskForChannel(7))
	assert.Equal(t, uint8(0), MaskForChannel(-1))
}
