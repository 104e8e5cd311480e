package channel

// MaxChannels is the highest usable channel number. Channel numbers start
// at 1; the selector mask indexes bits by channel number.
const MaxChannels = 6

// Mode is the operating mode of an output channel.
type Mode string

const (
	// ModeOnOff drives the line as a plain digital output.
	ModeOnOff Mode = "on_off"

	// ModeSpikeHoldOff starts with a high-duty spike, drops to a hold duty
	// and optionally turns off after a duration. Suits solenoid loads.
	ModeSpikeHoldOff Mode = "spike_hold_off"

	// ModePWMLowHigh toggles between a low and a high PWM duty. The low
	// duty is the powered-on idle level, not zero. Suits hobby servos.
	ModePWMLowHigh Mode = "pwm_low_high"
)

// Valid reports whether m is one of the three operating modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeOnOff, ModeSpikeHoldOff, ModePWMLowHigh:
		return true
	}
	return false
}

// Phase is the timing phase of a channel in one of the timed modes.
type Phase string

const (
	PhaseNone  Phase = "none"
	PhaseSpike Phase = "spike"
	PhaseHold  Phase = "hold"
)

// Parameter limits enforced by the setters.
const (
	MinPWMFreqHz = 50
	MaxPWMFreqHz = 10000

	MinResolutionBits = 8
	MaxResolutionBits = 16
)

// Status is a point-in-time snapshot of a channel.
type Status struct {
	Number         int    `json:"number"`
	Mode           Mode   `json:"mode"`
	Phase          Phase  `json:"phase"`
	On             bool   `json:"on"`
	Duty           uint32 `json:"duty"`
	PWMFreqHz      uint32 `json:"pwm_freq_hz"`
	ResolutionBits uint8  `json:"resolution_bits"`
	SpikeLengthMs  uint16 `json:"spike_length_ms"`
	SpikePercent   uint8  `json:"spike_percent"`
	HoldPercent    uint8  `json:"hold_percent"`
	DutyLow        uint16 `json:"duty_low"`
	DutyHigh       uint16 `json:"duty_high"`
}
