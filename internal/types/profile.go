package types

// ChannelProfile is a reusable preset of output-channel parameters, loaded
// from a YAML document and validated against the embedded schema. A channel
// configuration names a profile and may override individual fields.
type ChannelProfile struct {
	Profile ChannelProfileInfo `json:"profile" yaml:"profile"`

	Mode           string `json:"mode" yaml:"mode"`
	PWMFreqHz      uint32 `json:"pwm_freq_hz,omitempty" yaml:"pwm_freq_hz"`
	ResolutionBits uint8  `json:"resolution_bits,omitempty" yaml:"resolution_bits"`

	SpikeLengthMs uint16 `json:"spike_length_ms,omitempty" yaml:"spike_length_ms"`
	SpikePercent  uint8  `json:"spike_percent,omitempty" yaml:"spike_percent"`
	HoldPercent   uint8  `json:"hold_percent,omitempty" yaml:"hold_percent"`

	DutyLow  uint16 `json:"duty_low,omitempty" yaml:"duty_low"`
	DutyHigh uint16 `json:"duty_high,omitempty" yaml:"duty_high"`
}

type ChannelProfileInfo struct {
	ID          string `json:"id" yaml:"id"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description,omitempty" yaml:"description"`
}
