package hardware

// Line is one physical output line. A line is configured either as a plain
// digital output or as a PWM output; which configuration applies is decided
// by the owning channel's operating mode.
//
// Duty() returns the last duty the hardware accepted. Callers use it to skip
// redundant writes, so implementations must keep it in sync with WriteDuty.
type Line interface {
	// ConfigureDigital sets the line up as a plain digital output.
	ConfigureDigital() error

	// ConfigurePWM sets the line up as a PWM output at the given frequency
	// and counter resolution. Safe to call again after parameter changes.
	ConfigurePWM(freqHz uint32, resolutionBits uint8) error

	// WriteDigital drives the line high or low.
	WriteDigital(on bool) error

	// WriteDuty drives the PWM duty counter value.
	WriteDuty(duty uint32) error

	// Duty reports the last written duty value.
	Duty() uint32
}
