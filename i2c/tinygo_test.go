package i2c

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type txCall struct {
	addr uint16
	w    []byte
	rLen int
}

type fakeTx struct {
	calls []txCall
	reply []byte
	err   error
}

func (f *fakeTx) Tx(addr uint16, w, r []byte) error {
	f.calls = append(f.calls, txCall{addr: addr, w: append([]byte(nil), w...), rLen: len(r)})
	copy(r, f.reply)
	return f.err
}

func TestTinyGoBus(t *testing.T) {
	fake := &fakeTx{reply: []byte{0xAB, 0xCD}}
	bus := NewTinyGoBus(fake)
	ctx := context.Background()

	in := make([]byte, 2)
	require.NoError(t, bus.WriteReadFromAddr(ctx, 0x46, []byte{0x0C}, in))
	assert.Equal(t, []byte{0xAB, 0xCD}, in)
	require.NoError(t, bus.WriteToAddr(ctx, 0x46, []byte{0x0B, 0x80, 0x11}))
	require.NoError(t, bus.ReadFromAddr(ctx, 0x46, in))

	assert.Equal(t, []txCall{
		{addr: 0x46, w: []byte{0x0C}, rLen: 2},
		{addr: 0x46, w: []byte{0x0B, 0x80, 0x11}, rLen: 0},
		{addr: 0x46, w: nil, rLen: 2},
	}, fake.calls)
}

func TestTinyGoBus_Error(t *testing.T) {
	cause := errors.New("nack")
	bus := NewTinyGoBus(&fakeTx{err: cause})
	err := bus.WriteToAddr(context.Background(), 0x44, []byte{0x0A})
	assert.ErrorIs(t, err, cause)
}

func TestTinyGoBus_Canceled(t *testing.T) {
	fake := &fakeTx{}
	bus := NewTinyGoBus(fake)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := bus.WriteReadFromAddr(ctx, 0x44, []byte{0x0C}, make([]byte, 2))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fake.calls)
}
