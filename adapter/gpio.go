package adapter

import (
	"context"
	"fmt"
)

const (
	cmdReadFlash  byte = 0xB0
	cmdWriteFlash byte = 0xB1
	// flashGPSettings selects the GP pin block in flash read and write commands.
	flashGPSettings byte = 0x01
)

// GPIOPins is the number of general purpose pins on the adapter.
const GPIOPins = 4

type GPIOMode byte

const (
	GPIOModeOut         GPIOMode = 0b00000000
	GPIOModeIn          GPIOMode = 0b00001000
	GPIOModeNoOperation GPIOMode = 0xEF
)

func (m GPIOMode) String() string {
	switch m {
	case GPIOModeIn:
		return "input"
	case GPIOModeOut:
		return "output"
	default:
		return "noop"
	}
}

func (m GPIOMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// GPIODesignation selects the pin function. Values other than GPIOOperation
// mean different things on each pin.
type GPIODesignation byte

const (
	GPIOOperation GPIODesignation = 0b00000000
	// GPIO1InterruptDetection routes GP1 to the interrupt-on-change detector,
	// which suits an open drain INT line.
	GPIO1InterruptDetection GPIODesignation = 0b00000100
)

const gpioModeMask = 0b00001000
const gpioOperationMask = 0b00000111

// GPIOValue is the state of one pin as reported by a GPIO read.
type GPIOValue struct {
	Mode  GPIOMode `yaml:"mode"`
	Level byte     `yaml:"level"`
}

// GPIOParameter is the power-up configuration of one pin.
type GPIOParameter struct {
	Mode        GPIOMode        `yaml:"mode"`
	Designation GPIODesignation `yaml:"designation"`
}

// ReadGPIO samples all pins. Pins not configured for GPIO operation report
// GPIOModeNoOperation.
func (d *MCP2221) ReadGPIO(ctx context.Context) ([GPIOPins]GPIOValue, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	var res [GPIOPins]GPIOValue
	d.resetBuffers()
	d.request[0] = cmdReadGPIO
	if err := d.send(ctx); err != nil {
		return res, fmt.Errorf("read GPIO values command write failed: %w", err)
	}
	if d.response[1] != 0x00 {
		return res, ErrCommandFailed
	}
	for i := range res {
		res[i].Level = d.response[2+2*i]
		res[i].Mode = GPIOModeNoOperation
		if dir := d.response[3+2*i]; dir != byte(GPIOModeNoOperation) {
			res[i].Mode = GPIOMode(dir << 3)
		}
	}
	return res, nil
}

// ReadPin samples one pin and fails when it is not a GPIO.
func (d *MCP2221) ReadPin(ctx context.Context, pin int) (bool, error) {
	if pin < 0 || pin >= GPIOPins {
		return false, fmt.Errorf("no such pin GP%d", pin)
	}
	values, err := d.ReadGPIO(ctx)
	if err != nil {
		return false, err
	}
	if values[pin].Mode == GPIOModeNoOperation {
		return false, fmt.Errorf("GP%d is not configured as GPIO", pin)
	}
	return values[pin].Level != 0, nil
}

func (d *MCP2221) GetGPIOParameters(ctx context.Context) ([GPIOPins]GPIOParameter, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	var res [GPIOPins]GPIOParameter
	d.resetBuffers()
	d.request[0] = cmdReadFlash
	d.request[1] = flashGPSettings
	if err := d.send(ctx); err != nil {
		return res, fmt.Errorf("get GP parameters command write failed: %w", err)
	}
	if d.response[1] != 0x00 {
		return res, ErrCommandUnsupported
	}
	for i := range res {
		b := d.response[4+i]
		res[i] = GPIOParameter{
			Mode:        GPIOMode(b & gpioModeMask),
			Designation: GPIODesignation(b & gpioOperationMask),
		}
	}
	return res, nil
}

// SetGPIOParameters stores the pin configuration in flash; it takes effect on
// the next power cycle.
func (d *MCP2221) SetGPIOParameters(ctx context.Context, params [GPIOPins]GPIOParameter) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdWriteFlash
	d.request[1] = flashGPSettings
	for i, p := range params {
		d.request[2+i] = byte(p.Designation) | byte(p.Mode)
	}
	if err := d.send(ctx); err != nil {
		return fmt.Errorf("set GP parameters command write failed: %w", err)
	}
	if d.response[1] != 0x00 {
		return ErrCommandFailed
	}
	return nil
}
