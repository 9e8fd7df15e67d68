package opt4048sim

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/lumen/light/opt4048"
)

func continuous(t *testing.T, s *opt4048.OPT4048) {
	t.Helper()
	cfg := opt4048.DefaultConfigA()
	cfg.OperatingMode = opt4048.ModeContinuous
	require.NoError(t, s.SetConfigA(context.Background(), cfg))
}

func TestDevice_StaticValue(t *testing.T) {
	dev := New(0x44, Constant(3, 5))
	s := opt4048.New(dev)
	continuous(t, s)

	r, err := s.ReadRaw(context.Background(), opt4048.Ch1, opt4048.BurstReadEnabled)
	require.NoError(t, err)
	assert.Equal(t, opt4048.Reading{Value: 40, Counter: 0}, r)

	r, err = s.ReadRaw(context.Background(), opt4048.Ch1, opt4048.BurstReadDisabled)
	require.NoError(t, err)
	assert.Equal(t, opt4048.Reading{Value: 40, Counter: 1}, r)
}

func TestDevice_DynamicBehavior(t *testing.T) {
	calls := 0
	dev := New(0x45, func(ctx context.Context, ch opt4048.Channel) (uint8, uint32, error) {
		calls++
		return 0, uint32(calls * 100), nil
	})
	s := opt4048.New(dev, opt4048.WithAddress(opt4048.AddressVdd))
	continuous(t, s)

	readings, err := s.ReadAll(context.Background(), opt4048.BurstReadEnabled)
	require.NoError(t, err)
	for i, r := range readings {
		assert.Equal(t, uint64((i+1)*100), r.Value)
	}
	assert.Equal(t, 4, calls)
}

func TestDevice_ErrorHandling(t *testing.T) {
	dev := New(0x44, func(ctx context.Context, ch opt4048.Channel) (uint8, uint32, error) {
		return 0, 0, fmt.Errorf("sensor malfunction")
	})
	s := opt4048.New(dev)
	continuous(t, s)

	_, err := s.ReadRaw(context.Background(), opt4048.Ch0, opt4048.BurstReadEnabled)
	var terr *opt4048.TransportError
	require.ErrorAs(t, err, &terr)
	assert.ErrorContains(t, err, "sensor malfunction")
}

func TestDevice_PowerDownKeepsLastSample(t *testing.T) {
	dev := New(0x44, Constant(1, 7))
	s := opt4048.New(dev)

	r, err := s.ReadRaw(context.Background(), opt4048.Ch0, opt4048.BurstReadEnabled)
	require.NoError(t, err)
	assert.Equal(t, opt4048.Reading{}, r)
}

func TestDevice_Corrupt(t *testing.T) {
	dev := New(0x44, PerChannel(2, [4]uint32{1, 2, 3, 4}))
	s := opt4048.New(dev)
	continuous(t, s)
	dev.Corrupt(opt4048.Ch2, true)

	_, err := s.ReadRaw(context.Background(), opt4048.Ch2, opt4048.BurstReadEnabled)
	assert.ErrorIs(t, err, opt4048.ErrCRC)

	r, err := s.ReadRaw(context.Background(), opt4048.Ch3, opt4048.BurstReadEnabled)
	require.NoError(t, err)
	assert.Equal(t, uint64(16), r.Value)
}

func TestDevice_Registers(t *testing.T) {
	dev := New(0x44, Constant(0, 0))
	s := opt4048.New(dev)
	ctx := context.Background()

	id, err := s.ReadDeviceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, opt4048.DecodeDeviceID(DeviceIDWord), id)

	cfgB, err := s.ReadConfigB(ctx)
	require.NoError(t, err)
	assert.Equal(t, opt4048.DefaultConfigB(), cfgB)

	require.NoError(t, s.SetThresholdLow(ctx, opt4048.Threshold{Exponent: 3, Result: 5}))
	assert.Equal(t, uint16(0x3050), dev.Word(opt4048.RegThresholdLow.Address))

	continuous(t, s)
	_, err = s.ReadRaw(ctx, opt4048.Ch0, opt4048.BurstReadEnabled)
	require.NoError(t, err)
	status, err := s.ReadStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.ConvReady)
	status, err = s.ReadStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.ConvReady)
}

func TestDevice_Rejects(t *testing.T) {
	dev := New(0x44, Constant(0, 0))
	ctx := context.Background()
	assert.Error(t, dev.WriteToAddr(ctx, 0x45, []byte{0x0A, 0x00, 0x00}))
	assert.Error(t, dev.WriteToAddr(ctx, 0x44, []byte{0x11, 0x00, 0x00}), "read-only")
	assert.Error(t, dev.WriteToAddr(ctx, 0x44, []byte{0x0A, 0x00}))
	assert.Error(t, dev.ReadFromAddr(ctx, 0x44, make([]byte, 2)))
}

func TestDevice_RejectedFrameStoresNothing(t *testing.T) {
	dev := New(0x44, Constant(0, 0))
	err := dev.WriteToAddr(context.Background(), 0x44, []byte{0x0B, 0x12, 0x34, 0x00, 0x00})
	assert.EqualError(t, err, "register 0x0c is read-only")
	assert.Equal(t, uint16(0x8011), dev.Word(0x0B))
}
