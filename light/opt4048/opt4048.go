package opt4048

import (
	"context"
	"fmt"

	"github.com/mklimuk/lumen"
	"github.com/mklimuk/lumen/snsctx"
)

// OPT4048 represents a Texas Instruments OPT4048 four channel light sensor.
// See: https://www.ti.com/lit/ds/symlink/opt4048.pdf
//
// Usage: instantiate with New, configure with SetConfigA/SetConfigB, then read
// channels with ReadRaw. Every call performs one or two bus transactions and
// keeps no device state between calls. The handle is not safe for concurrent
// use; callers sharing one must serialize access themselves.
type OPT4048 struct {
	regs registerIO
}

type Config struct {
	Address Address
	// BusAddress overrides Address when non-zero.
	BusAddress byte
}

type ConfigOption func(*Config)

func WithAddress(address Address) ConfigOption {
	return func(c *Config) {
		c.Address = address
	}
}

// WithBusAddress sets a raw 7-bit address, for boards behind an address
// translator.
func WithBusAddress(address byte) ConfigOption {
	return func(c *Config) {
		c.BusAddress = address
	}
}

// New creates a sensor handle on the given bus. The default address is the
// ADDR=GND strap (0x44).
func New(transport lumen.I2CBus, opts ...ConfigOption) *OPT4048 {
	config := &Config{Address: AddressGnd}
	for _, opt := range opts {
		opt(config)
	}
	addr := config.Address.BusAddress()
	if config.BusAddress != 0 {
		addr = config.BusAddress
	}
	return &OPT4048{regs: registerIO{transport: transport, addr: addr}}
}

// BusAddress returns the 7-bit address the handle talks to.
func (s *OPT4048) BusAddress() byte {
	return s.regs.addr
}

// SetConfigA writes register 0x0A.
func (s *OPT4048) SetConfigA(ctx context.Context, cfg ConfigA) error {
	raw, err := EncodeConfigA(cfg)
	if err != nil {
		return fmt.Errorf("opt4048: could not encode config A: %w", err)
	}
	snsctx.Logger(ctx).Debug("opt4048 set config A", "raw", fmt.Sprintf("0x%04x", raw), "mode", cfg.OperatingMode, "conv_time", cfg.ConversionTime, "range", cfg.Range)
	return s.regs.write16(ctx, RegConfigA.Address, raw)
}

// ReadConfigA reads back register 0x0A.
func (s *OPT4048) ReadConfigA(ctx context.Context) (ConfigA, error) {
	raw, err := s.regs.read16(ctx, RegConfigA.Address)
	if err != nil {
		return ConfigA{}, err
	}
	return DecodeConfigA(raw)
}

// SetConfigB writes register 0x0B.
func (s *OPT4048) SetConfigB(ctx context.Context, cfg ConfigB) error {
	raw, err := EncodeConfigB(cfg)
	if err != nil {
		return fmt.Errorf("opt4048: could not encode config B: %w", err)
	}
	snsctx.Logger(ctx).Debug("opt4048 set config B", "raw", fmt.Sprintf("0x%04x", raw), "burst_read", cfg.BurstRead)
	return s.regs.write16(ctx, RegConfigB.Address, raw)
}

func (s *OPT4048) ReadConfigB(ctx context.Context) (ConfigB, error) {
	raw, err := s.regs.read16(ctx, RegConfigB.Address)
	if err != nil {
		return ConfigB{}, err
	}
	return DecodeConfigB(raw)
}

func (s *OPT4048) ReadStatus(ctx context.Context) (Status, error) {
	raw, err := s.regs.read16(ctx, RegStatus.Address)
	if err != nil {
		return Status{}, err
	}
	return DecodeStatus(raw), nil
}

func (s *OPT4048) ReadDeviceID(ctx context.Context) (DeviceID, error) {
	raw, err := s.regs.read16(ctx, RegDeviceID.Address)
	if err != nil {
		return DeviceID{}, err
	}
	return DecodeDeviceID(raw), nil
}

// ReadSample reads the measurement fields of one channel without verifying
// them. burst must match the BurstRead value last written to config B: the
// fused 32-bit register is read when enabled, the high and low 16-bit
// registers otherwise.
func (s *OPT4048) ReadSample(ctx context.Context, ch Channel, burst BurstRead) (Sample, error) {
	idx, err := channelTable.encode(ch)
	if err != nil {
		return Sample{}, err
	}
	switch burst {
	case BurstReadEnabled:
		reg, err := RegMeasurement.At(int(idx))
		if err != nil {
			return Sample{}, err
		}
		raw, err := s.regs.read32(ctx, reg)
		if err != nil {
			return Sample{}, err
		}
		return DecodeMeasurement(raw), nil
	case BurstReadDisabled:
		hreg, err := RegMeasurementHigh.At(int(idx))
		if err != nil {
			return Sample{}, err
		}
		lreg, err := RegMeasurementLow.At(int(idx))
		if err != nil {
			return Sample{}, err
		}
		high, err := s.regs.read16(ctx, hreg)
		if err != nil {
			return Sample{}, err
		}
		low, err := s.regs.read16(ctx, lreg)
		if err != nil {
			return Sample{}, err
		}
		return DecodeMeasurementSplit(high, low), nil
	}
	return Sample{}, &ConversionError{Field: "burst_read", Value: uint32(burst)}
}

// ReadRaw reads one channel and returns the CRC-verified value
// (mantissa << exponent) with the conversion counter. A CRC mismatch returns
// a *CRCError and no value.
func (s *OPT4048) ReadRaw(ctx context.Context, ch Channel, burst BurstRead) (Reading, error) {
	sample, err := s.ReadSample(ctx, ch, burst)
	if err != nil {
		return Reading{}, err
	}
	reading, err := sample.Verify(ch)
	if err != nil {
		snsctx.Logger(ctx).Debug("opt4048 rejected sample", "channel", ch, "exponent", sample.Exponent, "mantissa", sample.Mantissa, "counter", sample.Counter, "crc", sample.CRC)
		return Reading{}, err
	}
	return reading, nil
}

// ReadAll reads the four channels in order and stops at the first error.
func (s *OPT4048) ReadAll(ctx context.Context, burst BurstRead) ([4]Reading, error) {
	var out [4]Reading
	for i, ch := range Channels {
		r, err := s.ReadRaw(ctx, ch, burst)
		if err != nil {
			return out, fmt.Errorf("opt4048: could not read %s: %w", ch, err)
		}
		out[i] = r
	}
	return out, nil
}

func (s *OPT4048) SetThresholdLow(ctx context.Context, t Threshold) error {
	return s.setThreshold(ctx, RegThresholdLow, t)
}

func (s *OPT4048) SetThresholdHigh(ctx context.Context, t Threshold) error {
	return s.setThreshold(ctx, RegThresholdHigh, t)
}

func (s *OPT4048) setThreshold(ctx context.Context, reg Register, t Threshold) error {
	raw, err := EncodeThreshold(reg, t)
	if err != nil {
		return fmt.Errorf("opt4048: could not encode %s: %w", reg.Name, err)
	}
	return s.regs.write16(ctx, reg.Address, raw)
}

func (s *OPT4048) ReadThresholdLow(ctx context.Context) (Threshold, error) {
	raw, err := s.regs.read16(ctx, RegThresholdLow.Address)
	if err != nil {
		return Threshold{}, err
	}
	return DecodeThreshold(raw), nil
}

func (s *OPT4048) ReadThresholdHigh(ctx context.Context) (Threshold, error) {
	raw, err := s.regs.read16(ctx, RegThresholdHigh.Address)
	if err != nil {
		return Threshold{}, err
	}
	return DecodeThreshold(raw), nil
}

// ReadRegister returns the undecoded value of copy index of reg.
func (s *OPT4048) ReadRegister(ctx context.Context, reg Register, index int) (uint32, error) {
	addr, err := reg.At(index)
	if err != nil {
		return 0, err
	}
	switch reg.Width {
	case 16:
		v, err := s.regs.read16(ctx, addr)
		return uint32(v), err
	case 32:
		return s.regs.read32(ctx, addr)
	}
	return 0, fmt.Errorf("opt4048: unsupported register width %d", reg.Width)
}
