package channel

import (
	"sync"
	"time"

	"github.com/openmill/auxio/internal/hardware"
	"go.uber.org/zap"
)

// Default parameters applied at construction; static configuration and the
// settings surface override them.
const (
	defaultPWMFreqHz      = 5000
	defaultResolutionBits = 8
	defaultSpikeLengthMs  = 100
	defaultSpikePercent   = 100
	defaultHoldPercent    = 25
)

// Channel is one user output line with its timed behavior. State transitions
// happen only through On, Off and Update; Init pushes the configuration to
// the hardware and may be called again after frequency or resolution change.
type Channel struct {
	number     int
	line       hardware.Line
	pwmChannel uint8
	logger     *zap.Logger

	mu sync.Mutex

	mode           Mode
	pwmFreqHz      uint32
	resolutionBits uint8
	spikeLength    uint16 // ms
	spikePercent   uint8
	holdPercent    uint8
	dutyLow        uint16
	dutyHigh       uint16
	holdLength     uint32 // ms, informational default carried by settings

	phase    Phase
	isOn     bool
	spikeEnd time.Time
	holdEnd  time.Time // zero value = hold indefinitely

	// now is replaceable in tests
	now func() time.Time

	// notify, when set, receives a snapshot after every externally visible
	// state change (command or timed transition)
	notify func(Status)
}

func New(number int, line hardware.Line, pwmChannel uint8, mode Mode, logger *zap.Logger) *Channel {
	if !mode.Valid() {
		mode = ModeOnOff
	}

	return &Channel{
		number:         number,
		line:           line,
		pwmChannel:     pwmChannel,
		logger:         logger,
		mode:           mode,
		pwmFreqHz:      defaultPWMFreqHz,
		resolutionBits: defaultResolutionBits,
		spikeLength:    defaultSpikeLengthMs,
		spikePercent:   defaultSpikePercent,
		holdPercent:    defaultHoldPercent,
		phase:          PhaseNone,
		now:            time.Now,
	}
}

// SetNotify installs the state-change hook. Must be called before the
// channel is shared with the dispatcher or updater.
func (c *Channel) SetNotify(fn func(Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notify = fn
}

func (c *Channel) Number() int { return c.number }

// Init pushes the current configuration to the line. ON_OFF configures a
// digital output and forces it off. SPIKE_HOLD_OFF configures PWM and forces
// duty 0. PWM_LOW_HIGH configures PWM and drives the low duty, the powered-on
// idle level.
func (c *Channel) Init() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.mode {
	case ModeOnOff:
		if err := c.line.ConfigureDigital(); err != nil {
			c.logger.Warn("digital configure failed",
				zap.Int("channel", c.number),
				zap.Error(err))
		}
		c.offLocked()

	default:
		if err := c.line.ConfigurePWM(c.pwmFreqHz, c.resolutionBits); err != nil {
			c.logger.Warn("pwm configure failed",
				zap.Int("channel", c.number),
				zap.Error(err))
		}

		if c.mode == ModeSpikeHoldOff {
			c.offLocked()
		} else if c.mode == ModePWMLowHigh {
			c.writeDuty(uint32(c.dutyLow))
		}
	}

	c.logger.Info("channel initialized",
		zap.Int("channel", c.number),
		zap.String("mode", string(c.mode)),
		zap.Uint8("pwm_channel", c.pwmChannel))
}

// On applies a turn-on or turn-off command. duration is in milliseconds;
// 0 means stay on until an explicit off.
func (c *Channel) On(isOn bool, duration uint32) {
	c.mu.Lock()

	switch c.mode {
	case ModeOnOff:
		if err := c.line.WriteDigital(isOn); err != nil {
			c.logger.Warn("digital write failed",
				zap.Int("channel", c.number),
				zap.Error(err))
		}

	case ModeSpikeHoldOff:
		if isOn {
			c.phase = PhaseSpike
			c.spikeEnd = c.now().Add(time.Duration(c.spikeLength) * time.Millisecond)
			c.holdEnd = c.holdDeadline(duration)
			c.writePercent(c.spikePercent)
		} else {
			c.writeDuty(0)
		}

	case ModePWMLowHigh:
		if isOn {
			c.phase = PhaseHold
			c.holdEnd = c.holdDeadline(duration)
			c.writeDuty(uint32(c.dutyHigh))
		} else {
			c.writeDuty(uint32(c.dutyLow))
		}

	default:
		if isOn {
			c.writeDuty(c.maxDuty())
		} else {
			c.writeDuty(0)
		}
	}

	c.isOn = isOn
	status := c.statusLocked()
	notify := c.notify
	c.mu.Unlock()

	if notify != nil {
		notify(status)
	}
}

// Off drives the rest level for the current mode and clears the on-state.
func (c *Channel) Off() {
	c.mu.Lock()
	c.offLocked()
	status := c.statusLocked()
	notify := c.notify
	c.mu.Unlock()

	if notify != nil {
		notify(status)
	}
}

func (c *Channel) offLocked() {
	switch c.mode {
	case ModeOnOff:
		if err := c.line.WriteDigital(false); err != nil {
			c.logger.Warn("digital write failed",
				zap.Int("channel", c.number),
				zap.Error(err))
		}
	case ModePWMLowHigh:
		c.writeDuty(uint32(c.dutyLow))
	default:
		c.writeDuty(0)
	}
	c.isOn = false
}

// Update advances the state machine. A no-op while the channel is off or in
// ON_OFF mode. At most one phase transition happens per call: a spike that
// expires transitions to hold without also evaluating the hold deadline.
func (c *Channel) Update() {
	c.mu.Lock()

	if !c.isOn || c.mode == ModeOnOff {
		c.mu.Unlock()
		return
	}

	var changed bool

	switch c.mode {
	case ModeSpikeHoldOff:
		if c.phase == PhaseSpike {
			if c.now().After(c.spikeEnd) {
				c.phase = PhaseHold
				c.writePercent(c.holdPercent)
				changed = true
			}
			break
		}
		if c.phase == PhaseHold && !c.holdEnd.IsZero() && c.now().After(c.holdEnd) {
			c.writeDuty(0)
			c.isOn = false
			changed = true
		}

	case ModePWMLowHigh:
		if c.phase == PhaseHold && !c.holdEnd.IsZero() && c.now().After(c.holdEnd) {
			c.writeDuty(uint32(c.dutyLow))
			c.isOn = false
			changed = true
		}
	}

	status := c.statusLocked()
	notify := c.notify
	c.mu.Unlock()

	if changed && notify != nil {
		notify(status)
	}
}

// IsOn reports the boolean on-state.
func (c *Channel) IsOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isOn
}

// NeedsTimerUpdates reports whether the channel requires periodic Update
// calls for its timed phases.
func (c *Channel) NeedsTimerUpdates() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode == ModeSpikeHoldOff || c.mode == ModePWMLowHigh
}

// Status returns a snapshot of the channel.
func (c *Channel) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Channel) statusLocked() Status {
	return Status{
		Number:         c.number,
		Mode:           c.mode,
		Phase:          c.phase,
		On:             c.isOn,
		Duty:           c.line.Duty(),
		PWMFreqHz:      c.pwmFreqHz,
		ResolutionBits: c.resolutionBits,
		SpikeLengthMs:  c.spikeLength,
		SpikePercent:   c.spikePercent,
		HoldPercent:    c.holdPercent,
		DutyLow:        c.dutyLow,
		DutyHigh:       c.dutyHigh,
	}
}

// ---- setters -------------------------------------------------------------
// Out-of-range values are rejected and the previous value stays in effect.
// Setters never touch the hardware; call Init again after changing the PWM
// frequency or resolution.

func (c *Channel) SetMode(mode Mode) {
	if !mode.Valid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
}

func (c *Channel) SetPWMFreqBits(freqHz uint32, resolutionBits uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if freqHz >= MinPWMFreqHz && freqHz <= MaxPWMFreqHz {
		c.pwmFreqHz = freqHz
	}
	if resolutionBits >= MinResolutionBits && resolutionBits <= MaxResolutionBits {
		c.resolutionBits = resolutionBits
	}
}

func (c *Channel) SetSpikeHoldPercent(spikePercent, holdPercent uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if spikePercent <= 100 {
		c.spikePercent = spikePercent
	}
	if holdPercent <= 100 {
		c.holdPercent = holdPercent
	}
}

func (c *Channel) SetPWMLowHigh(dutyLow, dutyHigh uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dutyLow = dutyLow
	c.dutyHigh = dutyHigh
}

func (c *Channel) SetSpikeLength(ms uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spikeLength = ms
}

func (c *Channel) SetHoldLength(ms uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.holdLength = ms
}

// ---- internals -----------------------------------------------------------

func (c *Channel) holdDeadline(duration uint32) time.Time {
	if duration == 0 {
		// continuous hold
		return time.Time{}
	}
	return c.now().Add(time.Duration(duration) * time.Millisecond)
}

func (c *Channel) maxDuty() uint32 {
	return (uint32(1) << c.resolutionBits) - 1
}

// writePercent maps [0,100] linearly onto [0, 2^bits-1], truncating.
func (c *Channel) writePercent(percent uint8) {
	c.writeDuty(uint32(percent) * c.maxDuty() / 100)
}

// writeDuty skips the hardware write when the requested duty matches what
// the line already carries.
func (c *Channel) writeDuty(duty uint32) {
	if c.line.Duty() == duty {
		return
	}
	if err := c.line.WriteDuty(duty); err != nil {
		c.logger.Warn("duty write failed",
			zap.Int("channel", c.number),
			zap.Uint32("duty", duty),
			zap.Error(err))
	}
}
