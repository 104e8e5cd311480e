package hardware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/openmill/auxio/internal/modbus"
)

// ModbusLineConfig maps a line onto a remote-I/O module: one coil for the
// digital level and holding registers for duty and PWM parameters.
type ModbusLineConfig struct {
	Address            string
	UnitID             uint8
	CoilAddress        uint16
	DutyRegister       uint16
	FrequencyRegister  uint16
	ResolutionRegister uint16
	Timeout            time.Duration
}

// ModbusLine drives an output line on a Modbus TCP remote-I/O module.
// Duty readback is served from the last accepted write; the module is not
// polled for it.
type ModbusLine struct {
	client *modbus.Client
	cfg    ModbusLineConfig

	mu       sync.Mutex
	lastDuty uint32
}

func NewModbusLine(cfg ModbusLineConfig) (*ModbusLine, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("modbus line: address required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}

	client := modbus.NewClient(cfg.Address, cfg.Timeout)
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("modbus line %s: %w", cfg.Address, err)
	}

	return &ModbusLine{client: client, cfg: cfg}, nil
}

func (l *ModbusLine) ConfigureDigital() error {
	// Remote module outputs are mode-less; nothing to push.
	return nil
}

func (l *ModbusLine) ConfigurePWM(freqHz uint32, resolutionBits uint8) error {
	ctx, cancel := l.opContext()
	defer cancel()

	if err := l.client.WriteSingleRegister(ctx, l.cfg.UnitID, l.cfg.FrequencyRegister, uint16(freqHz)); err != nil {
		return fmt.Errorf("write pwm frequency: %w", err)
	}
	if err := l.client.WriteSingleRegister(ctx, l.cfg.UnitID, l.cfg.ResolutionRegister, uint16(resolutionBits)); err != nil {
		return fmt.Errorf("write pwm resolution: %w", err)
	}
	return nil
}

func (l *ModbusLine) WriteDigital(on bool) error {
	ctx, cancel := l.opContext()
	defer cancel()

	return l.client.WriteSingleCoil(ctx, l.cfg.UnitID, l.cfg.CoilAddress, on)
}

func (l *ModbusLine) WriteDuty(duty uint32) error {
	ctx, cancel := l.opContext()
	defer cancel()

	if err := l.client.WriteSingleRegister(ctx, l.cfg.UnitID, l.cfg.DutyRegister, uint16(duty)); err != nil {
		return err
	}

	l.mu.Lock()
	l.lastDuty = duty
	l.mu.Unlock()
	return nil
}

func (l *ModbusLine) Duty() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastDuty
}

func (l *ModbusLine) Close() error {
	return l.client.Close()
}

func (l *ModbusLine) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), l.cfg.Timeout)
}
