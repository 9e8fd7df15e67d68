package opt4048

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDevice emulates the register file: 16-bit words with an auto
// incrementing pointer, so a 4-byte read at a channel base returns the high
// and low measurement words.
type fakeDevice struct {
	addr  byte
	words map[byte]uint16
}

func newFakeDevice(addr byte) *fakeDevice {
	return &fakeDevice{addr: addr, words: map[byte]uint16{
		RegThresholdHigh.Address: uint16(RegThresholdHigh.Reset),
		RegConfigA.Address:       uint16(RegConfigA.Reset),
		RegConfigB.Address:       uint16(RegConfigB.Reset),
		RegDeviceID.Address:      0x2084,
	}}
}

func (f *fakeDevice) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	if address != f.addr {
		return fmt.Errorf("nack from %#x", address)
	}
	if len(buffer) == 0 || (len(buffer)-1)%2 != 0 {
		return fmt.Errorf("bad frame length %d", len(buffer))
	}
	reg := buffer[0]
	for i := 1; i < len(buffer); i += 2 {
		f.words[reg] = uint16(buffer[i])<<8 | uint16(buffer[i+1])
		reg++
	}
	return nil
}

func (f *fakeDevice) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	return fmt.Errorf("read without register pointer")
}

func (f *fakeDevice) WriteReadFromAddr(ctx context.Context, address byte, out []byte, in []byte) error {
	if address != f.addr {
		return fmt.Errorf("nack from %#x", address)
	}
	if len(out) != 1 || len(in)%2 != 0 {
		return fmt.Errorf("bad transaction %d/%d", len(out), len(in))
	}
	reg := out[0]
	for i := 0; i < len(in); i += 2 {
		w := f.words[reg]
		in[i], in[i+1] = byte(w>>8), byte(w)
		reg++
	}
	return nil
}

func (f *fakeDevice) Release(ctx context.Context) error {
	return nil
}

func (f *fakeDevice) setMeasurement(ch Channel, word uint32) {
	base := byte(ch) * channelStride
	f.words[base] = uint16(word >> 16)
	f.words[base+1] = uint16(word)
}

func TestDevice_ConfigRoundTrip(t *testing.T) {
	dev := newFakeDevice(0x46)
	s := New(dev, WithAddress(AddressSda))
	ctx := context.Background()

	got, err := s.ReadConfigA(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfigA(), got)

	rng, err := ManualRange(11)
	require.NoError(t, err)
	cfgA := ConfigA{
		QuickWake:      QuickWakeEnabled,
		Range:          rng,
		ConversionTime: ConversionTime800ms,
		OperatingMode:  ModeRegularOneShot,
		Latch:          TransparentHysteresis,
		IntPolarity:    IntPolarityHigh,
		FaultCount:     FaultCountEight,
	}
	require.NoError(t, s.SetConfigA(ctx, cfgA))
	got, err = s.ReadConfigA(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfgA, got)

	cfgB := ConfigB{ThresholdChannel: Ch3, IntDirection: IntDirectionInput, IntConfig: 2, BurstRead: BurstReadDisabled}
	require.NoError(t, s.SetConfigB(ctx, cfgB))
	gotB, err := s.ReadConfigB(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfgB, gotB)
	assert.Equal(t, uint16(0x8000), dev.words[RegConfigB.Address]&0x8000)
}

func TestDevice_CorruptedConfigA(t *testing.T) {
	dev := newFakeDevice(0x44)
	dev.words[RegConfigA.Address] = 13 << 10
	_, err := New(dev).ReadConfigA(context.Background())
	assert.Equal(t, &ConversionError{Field: "range", Value: 13}, err)
}

func TestDevice_FusedAndSplitAgree(t *testing.T) {
	dev := newFakeDevice(0x44)
	s := New(dev)
	ctx := context.Background()
	for i, ch := range Channels {
		dev.setMeasurement(ch, fusedWord(uint8(2*i), uint32(0x12345+i*0x1111), uint8(i+4)))
	}
	for _, ch := range Channels {
		fused, err := s.ReadRaw(ctx, ch, BurstReadEnabled)
		require.NoError(t, err)
		split, err := s.ReadRaw(ctx, ch, BurstReadDisabled)
		require.NoError(t, err)
		assert.Equal(t, fused, split, "channel %s", ch)
	}
}

func TestDevice_ReadRegister(t *testing.T) {
	dev := newFakeDevice(0x44)
	s := New(dev)
	ctx := context.Background()
	dev.setMeasurement(Ch1, 0xDEADBEEF)

	v, err := s.ReadRegister(ctx, RegMeasurement, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), v)

	v, err = s.ReadRegister(ctx, RegMeasurementLow, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xBEEF), v)

	v, err = s.ReadRegister(ctx, RegDeviceID, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x2084), v)

	_, err = s.ReadRegister(ctx, RegStatus, 1)
	assert.Error(t, err)
	_, err = s.ReadRegister(ctx, RegMeasurement, 4)
	assert.Error(t, err)
}

func TestRegisters(t *testing.T) {
	regs := Registers()
	require.Len(t, regs, 9)
	for _, r := range regs {
		assert.Contains(t, []int{16, 32}, r.Width, r.Name)
	}
	addr, err := RegMeasurementLow.At(3)
	require.NoError(t, err)
	assert.Equal(t, byte(0x07), addr)
	addr, err = RegMeasurement.At(2)
	require.NoError(t, err)
	assert.Equal(t, byte(0x04), addr)
}
