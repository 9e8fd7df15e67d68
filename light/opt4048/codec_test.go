package opt4048

import (
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeConfigA_ContinuousAt25ms(t *testing.T) {
	cfg := DefaultConfigA()
	cfg.OperatingMode = ModeContinuous
	cfg.ConversionTime = ConversionTime25ms

	raw, err := EncodeConfigA(cfg)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x31B8), raw)
}

func TestEncode_ResetDefaults(t *testing.T) {
	a, err := EncodeConfigA(DefaultConfigA())
	require.NoError(t, err)
	assert.Equal(t, uint16(RegConfigA.Reset), a)

	b, err := EncodeConfigB(DefaultConfigB())
	require.NoError(t, err)
	assert.Equal(t, uint16(RegConfigB.Reset), b)
}

func allRanges() []Range {
	out := []Range{AutoRange}
	for i := uint8(0); i <= maxManualRange; i++ {
		r, err := ManualRange(i)
		if err != nil {
			panic(err)
		}
		out = append(out, r)
	}
	return out
}

func TestConfigA_RoundTrip(t *testing.T) {
	count := 0
	for _, qw := range quickWakeTable.entries {
		for _, rng := range allRanges() {
			for _, ct := range conversionTimeTable.entries {
				for _, mode := range operatingModeTable.entries {
					for _, latch := range latchTable.entries {
						for _, pol := range intPolarityTable.entries {
							for _, fc := range faultCountTable.entries {
								cfg := ConfigA{
									QuickWake:      qw.value,
									Range:          rng,
									ConversionTime: ct.value,
									OperatingMode:  mode.value,
									Latch:          latch.value,
									IntPolarity:    pol.value,
									FaultCount:     fc.value,
								}
								raw, err := EncodeConfigA(cfg)
								require.NoError(t, err)
								got, err := DecodeConfigA(raw)
								require.NoError(t, err, "raw %#04x", raw)
								require.Equal(t, cfg, got, "raw %#04x", raw)
								count++
							}
						}
					}
				}
			}
		}
	}
	assert.Equal(t, 2*13*12*4*2*2*4, count)
}

func TestConfigB_RoundTrip(t *testing.T) {
	for _, ch := range channelTable.entries {
		for _, dir := range intDirectionTable.entries {
			for intCfg := uint8(0); intCfg <= 3; intCfg++ {
				for _, burst := range burstReadTable.entries {
					cfg := ConfigB{
						ThresholdChannel: ch.value,
						IntDirection:     dir.value,
						IntConfig:        intCfg,
						BurstRead:        burst.value,
					}
					raw, err := EncodeConfigB(cfg)
					require.NoError(t, err)
					// bit 15 is not owned by any field and keeps its reset value
					assert.Equal(t, uint16(0x8000), raw&0x8000)
					got, err := DecodeConfigB(raw)
					require.NoError(t, err)
					assert.Equal(t, cfg, got)
				}
			}
		}
	}
}

func TestManualRange(t *testing.T) {
	r, err := ManualRange(11)
	require.NoError(t, err)
	assert.Equal(t, uint32(11), r.code())
	level, ok := r.Level()
	assert.True(t, ok)
	assert.Equal(t, uint8(11), level)

	_, err = ManualRange(12)
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "range", convErr.Field)
	assert.Equal(t, uint32(12), convErr.Value)

	_, ok = AutoRange.Level()
	assert.False(t, ok)
	assert.Equal(t, uint32(12), AutoRange.code())
}

func TestDecodeConfigA_InvalidCodes(t *testing.T) {
	tests := []struct {
		raw   uint16
		field string
		value uint32
	}{
		{13 << 10, "range", 13},
		{14 << 10, "range", 14},
		{15 << 10, "range", 15},
		{12 << 6, "conv_time", 12},
		{13 << 6, "conv_time", 13},
		{14 << 6, "conv_time", 14},
		{15 << 6, "conv_time", 15},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s=%d", test.field, test.value), func(t *testing.T) {
			_, err := DecodeConfigA(test.raw)
			var convErr *ConversionError
			require.ErrorAs(t, err, &convErr)
			assert.Equal(t, test.field, convErr.Field)
			assert.Equal(t, test.value, convErr.Value)
		})
	}
}

func TestEncode_OutOfSetValues(t *testing.T) {
	cfg := DefaultConfigA()
	cfg.ConversionTime = ConversionTime(42)
	_, err := EncodeConfigA(cfg)
	assert.Equal(t, &ConversionError{Field: "conv_time", Value: 42}, err)

	cfgB := DefaultConfigB()
	cfgB.IntConfig = 4
	_, err = EncodeConfigB(cfgB)
	assert.Equal(t, &ConversionError{Field: "int_cfg", Value: 4}, err)

	cfgB = DefaultConfigB()
	cfgB.ThresholdChannel = Channel(4)
	_, err = EncodeConfigB(cfgB)
	assert.Equal(t, &ConversionError{Field: "channel", Value: 4}, err)
}

func TestDecodeStatus(t *testing.T) {
	tests := []struct {
		raw      uint16
		expected Status
	}{
		{0x0000, Status{}},
		{0x000F, Status{Overload: true, ConvReady: true, FlagHigh: true, FlagLow: true}},
		{0x000A, Status{Overload: true, FlagHigh: true}},
		{0xFFF4, Status{ConvReady: true}},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%04x", test.raw), func(t *testing.T) {
			assert.Equal(t, test.expected, DecodeStatus(test.raw))
		})
	}
}

func TestDecodeDeviceID(t *testing.T) {
	assert.Equal(t, DeviceID{Low: 1, High: 0x0AB}, DecodeDeviceID(0x10AB))
	// bits 14-15 are not part of either field
	assert.Equal(t, DeviceID{Low: 1, High: 0x0AB}, DecodeDeviceID(0xD0AB))
}

func TestThreshold(t *testing.T) {
	raw, err := EncodeThreshold(RegThresholdHigh, Threshold{Exponent: 3, Result: 5})
	require.NoError(t, err)
	assert.Equal(t, uint16(0x3F5F), raw)
	assert.Equal(t, Threshold{Exponent: 3, Result: 5}, DecodeThreshold(raw))

	raw, err = EncodeThreshold(RegThresholdLow, Threshold{Exponent: 3, Result: 5})
	require.NoError(t, err)
	assert.Equal(t, uint16(0x3050), raw)

	_, err = EncodeThreshold(RegThresholdLow, Threshold{Exponent: 16})
	assert.Equal(t, &ConversionError{Field: "threshold_exponent", Value: 16}, err)
	_, err = EncodeThreshold(RegThresholdLow, Threshold{Result: 0x10})
	assert.Equal(t, &ConversionError{Field: "threshold_result", Value: 16}, err)
}

func TestDecodeMeasurement_FusedMatchesSplit(t *testing.T) {
	words := []uint32{0x00000000, 0xFFFFFFFF, 0x30000521, 0x8ABCDE7C, 0x12345678, 0xF00FF00F}
	// a simple LCG gives a wider spread without depending on math/rand seeding
	x := uint32(2463534242)
	for i := 0; i < 200; i++ {
		x = x*1664525 + 1013904223
		words = append(words, x)
	}
	for _, w := range words {
		var buf [4]byte
		buf[0], buf[1], buf[2], buf[3] = byte(w>>24), byte(w>>16), byte(w>>8), byte(w)
		t.Run(hex.EncodeToString(buf[:]), func(t *testing.T) {
			fused := DecodeMeasurement(w)
			split := DecodeMeasurementSplit(uint16(w>>16), uint16(w))
			assert.Equal(t, fused, split)

			fr, ferr := fused.Verify(Ch0)
			sr, serr := split.Verify(Ch0)
			assert.Equal(t, fr, sr)
			assert.Equal(t, ferr, serr)
		})
	}
}

func TestDecodeMeasurement_Fields(t *testing.T) {
	// exponent 3, mantissa 5, counter 2, crc 1
	s := DecodeMeasurement(0x30000521)
	assert.Equal(t, Sample{Exponent: 3, Mantissa: 5, Counter: 2, CRC: 1}, s)

	s = DecodeMeasurementSplit(0x3ABC, 0xDE7C)
	assert.Equal(t, Sample{Exponent: 3, Mantissa: 0xABCDE, Counter: 7, CRC: 0xC}, s)
}

func TestSample_Verify(t *testing.T) {
	r, err := Sample{Exponent: 3, Mantissa: 5, Counter: 2, CRC: 1}.Verify(Ch1)
	require.NoError(t, err)
	assert.Equal(t, Reading{Value: 40, Counter: 2}, r)

	for crc := uint8(0); crc < 16; crc++ {
		if crc == 1 {
			continue
		}
		r, err := Sample{Exponent: 3, Mantissa: 5, Counter: 2, CRC: crc}.Verify(Ch1)
		assert.True(t, errors.Is(err, ErrCRC), "crc %d", crc)
		assert.Equal(t, Reading{}, r)
		var crcErr *CRCError
		require.ErrorAs(t, err, &crcErr)
		assert.Equal(t, Ch1, crcErr.Channel)
		assert.Equal(t, crc, crcErr.Read)
		assert.Equal(t, uint8(1), crcErr.Computed)
	}
}

func TestSample_VerifyLargeExponent(t *testing.T) {
	m := uint32(0xFFFFF)
	s := Sample{Exponent: 15, Mantissa: m, Counter: 0}
	s.CRC = checkCRC(s.Exponent, s.Mantissa, s.Counter)
	r, err := s.Verify(Ch0)
	require.NoError(t, err)
	assert.Equal(t, uint64(m)<<15, r.Value)
}

func TestEncodeMeasurement(t *testing.T) {
	raw, err := EncodeMeasurement(Sample{Exponent: 3, Mantissa: 5, Counter: 2, CRC: 0xF})
	require.NoError(t, err)
	assert.Equal(t, fusedWord(3, 5, 2), raw)

	r, err := DecodeMeasurement(raw).Verify(Ch0)
	require.NoError(t, err)
	assert.Equal(t, Reading{Value: 40, Counter: 2}, r)

	_, err = EncodeMeasurement(Sample{Mantissa: 1 << 20})
	assert.Equal(t, &ConversionError{Field: "mantissa", Value: 1 << 20}, err)
	_, err = EncodeMeasurement(Sample{Exponent: 16})
	assert.Equal(t, &ConversionError{Field: "exponent", Value: 16}, err)
}
