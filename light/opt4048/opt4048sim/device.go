// Package opt4048sim simulates an OPT4048 on the bus so the driver and the
// cli can run without hardware.
package opt4048sim

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/mklimuk/lumen"
	"github.com/mklimuk/lumen/light/opt4048"
)

// DeviceIDWord is the identification word the simulator reports.
const DeviceIDWord = 0x0821

// SampleFunc produces the exponent and mantissa of one conversion of ch. It is
// called every time the driver starts reading a channel while the device is
// not powered down.
//
// Example usage:
//
//	// Static value
//	dev := opt4048sim.New(0x44, opt4048sim.Constant(3, 0x1234))
//
//	// Failing conversion, reported to the driver as a bus error
//	dev := opt4048sim.New(0x44, func(ctx context.Context, ch opt4048.Channel) (uint8, uint32, error) {
//		return 0, 0, fmt.Errorf("sensor malfunction")
//	})
type SampleFunc func(ctx context.Context, ch opt4048.Channel) (exponent uint8, mantissa uint32, err error)

// Constant returns the same sample on every channel.
func Constant(exponent uint8, mantissa uint32) SampleFunc {
	return func(ctx context.Context, ch opt4048.Channel) (uint8, uint32, error) {
		return exponent, mantissa, nil
	}
}

// PerChannel returns a fixed mantissa per channel at one exponent.
func PerChannel(exponent uint8, mantissas [4]uint32) SampleFunc {
	return func(ctx context.Context, ch opt4048.Channel) (uint8, uint32, error) {
		return exponent, mantissas[ch], nil
	}
}

var _ lumen.I2CBus = &Device{}

// Device is a register file with the OPT4048 layout. Registers are 16-bit
// words; multi-word transfers advance the register pointer.
type Device struct {
	mu       sync.Mutex
	addr     byte
	behavior SampleFunc
	words    map[byte]uint16
	counters [len(opt4048.Channels)]uint8
	corrupt  map[opt4048.Channel]bool
}

func New(addr byte, behavior SampleFunc) *Device {
	return &Device{
		addr:     addr,
		behavior: behavior,
		corrupt:  make(map[opt4048.Channel]bool),
		words: map[byte]uint16{
			opt4048.RegThresholdHigh.Address: uint16(opt4048.RegThresholdHigh.Reset),
			opt4048.RegConfigA.Address:       uint16(opt4048.RegConfigA.Reset),
			opt4048.RegConfigB.Address:       uint16(opt4048.RegConfigB.Reset),
			opt4048.RegDeviceID.Address:      DeviceIDWord,
		},
	}
}

// Corrupt flips the check value of every later conversion of ch.
func (d *Device) Corrupt(ch opt4048.Channel, on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.corrupt[ch] = on
}

// Word returns the current contents of a register.
func (d *Device) Word(reg byte) uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.words[reg]
}

func (d *Device) nack(address byte) error {
	if address != d.addr {
		return fmt.Errorf("nack from %#x", address)
	}
	return nil
}

func writable(reg byte) bool {
	for _, r := range opt4048.Registers() {
		if r.Address == reg && r.Access == opt4048.ReadWrite {
			return true
		}
	}
	return false
}

func (d *Device) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	if err := d.nack(address); err != nil {
		return err
	}
	if len(buffer) == 0 || len(buffer)%2 != 1 {
		return fmt.Errorf("frame of %d bytes is not a pointer plus whole words", len(buffer))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	// the device NACKs the whole frame, so nothing is stored unless every
	// addressed register accepts a write
	words := len(buffer) / 2
	for n := 0; n < words; n++ {
		if reg := buffer[0] + byte(n); !writable(reg) {
			return fmt.Errorf("register 0x%02x is read-only", reg)
		}
	}
	for n := 0; n < words; n++ {
		d.words[buffer[0]+byte(n)] = binary.BigEndian.Uint16(buffer[1+2*n:])
	}
	return nil
}

func (d *Device) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	if err := d.nack(address); err != nil {
		return err
	}
	return fmt.Errorf("read without register pointer")
}

func (d *Device) WriteReadFromAddr(ctx context.Context, address byte, out []byte, in []byte) error {
	if err := d.nack(address); err != nil {
		return err
	}
	if len(out) != 1 || len(in)%2 != 0 {
		return fmt.Errorf("unsupported transaction: %d byte pointer, %d byte read", len(out), len(in))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	reg := out[0]
	if ch, ok := channelBase(reg); ok {
		if err := d.convert(ctx, ch); err != nil {
			return err
		}
	}
	for i := 0; i < len(in); i += 2 {
		binary.BigEndian.PutUint16(in[i:], d.words[reg])
		if reg == opt4048.RegStatus.Address {
			d.words[reg] = 0
		}
		reg++
	}
	return nil
}

func (d *Device) Release(ctx context.Context) error {
	return nil
}

func channelBase(reg byte) (opt4048.Channel, bool) {
	for _, ch := range opt4048.Channels {
		if addr, _ := opt4048.RegMeasurementHigh.At(int(ch)); addr == reg {
			return ch, true
		}
	}
	return 0, false
}

// convert latches a new sample of ch unless the device is powered down.
func (d *Device) convert(ctx context.Context, ch opt4048.Channel) error {
	cfg, err := opt4048.DecodeConfigA(d.words[opt4048.RegConfigA.Address])
	if err != nil {
		return fmt.Errorf("invalid config A: %w", err)
	}
	if cfg.OperatingMode == opt4048.ModePowerDown {
		return nil
	}
	exponent, mantissa, err := d.behavior(ctx, ch)
	if err != nil {
		return err
	}
	counter := d.counters[ch]
	d.counters[ch] = (counter + 1) & 0x0F
	raw, err := opt4048.EncodeMeasurement(opt4048.Sample{Exponent: exponent, Mantissa: mantissa, Counter: counter})
	if err != nil {
		return fmt.Errorf("simulated sample: %w", err)
	}
	if d.corrupt[ch] {
		raw ^= 0x1
	}
	base, _ := opt4048.RegMeasurementHigh.At(int(ch))
	d.words[base] = uint16(raw >> 16)
	d.words[base+1] = uint16(raw)
	// conversion ready
	d.words[opt4048.RegStatus.Address] |= 0x4
	return nil
}
