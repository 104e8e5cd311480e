package hardware

import "sync"

// MemoryLine is an in-process output line used in simulation mode and in
// tests. It records everything written to it and counts hardware writes so
// duty-write idempotence stays observable.
type MemoryLine struct {
	mu sync.Mutex

	name string

	digitalConfigured bool
	pwmConfigured     bool
	freqHz            uint32
	resolutionBits    uint8

	digital bool
	duty    uint32

	dutyWrites    int
	digitalWrites int
}

func NewMemoryLine(name string) *MemoryLine {
	return &MemoryLine{name: name}
}

func (l *MemoryLine) Name() string { return l.name }

func (l *MemoryLine) ConfigureDigital() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.digitalConfigured = true
	l.pwmConfigured = false
	return nil
}

func (l *MemoryLine) ConfigurePWM(freqHz uint32, resolutionBits uint8) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pwmConfigured = true
	l.digitalConfigured = false
	l.freqHz = freqHz
	l.resolutionBits = resolutionBits
	return nil
}

func (l *MemoryLine) WriteDigital(on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.digital = on
	l.digitalWrites++
	return nil
}

func (l *MemoryLine) WriteDuty(duty uint32) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.duty = duty
	l.dutyWrites++
	return nil
}

func (l *MemoryLine) Duty() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.duty
}

// DigitalState reports the last digital level written.
func (l *MemoryLine) DigitalState() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.digital
}

// DutyWrites reports how many duty writes actually reached the line.
func (l *MemoryLine) DutyWrites() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dutyWrites
}

// DigitalWrites reports how many digital writes reached the line.
func (l *MemoryLine) DigitalWrites() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.digitalWrites
}

// PWMConfig reports the last applied PWM configuration.
func (l *MemoryLine) PWMConfig() (freqHz uint32, resolutionBits uint8, configured bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.freqHz, l.resolutionBits, l.pwmConfigured
}
