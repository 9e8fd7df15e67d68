package i2c

import (
	"context"
	"fmt"
	"sync"

	"gobot.io/x/gobot/v2/drivers/i2c"

	"github.com/mklimuk/lumen"
)

var _ lumen.I2CBus = &GobotBus{}

// GobotBus routes transfers through a gobot adaptor (for example the NanoPi
// NEO adaptor). Connections are opened lazily, one per device address.
type GobotBus struct {
	connector i2c.Connector
	busNr     int

	mu    sync.Mutex
	conns map[byte]i2c.Connection
}

type GobotOption func(*GobotBus)

// WithBusNumber selects the host bus; the adaptor default is used otherwise.
func WithBusNumber(nr int) GobotOption {
	return func(b *GobotBus) {
		b.busNr = nr
	}
}

func NewGobotBus(connector i2c.Connector, opts ...GobotOption) *GobotBus {
	b := &GobotBus{
		connector: connector,
		busNr:     connector.DefaultI2cBus(),
		conns:     make(map[byte]i2c.Connection),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *GobotBus) connection(ctx context.Context, address byte) (i2c.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if conn, ok := b.conns[address]; ok {
		return conn, nil
	}
	conn, err := b.connector.GetI2cConnection(int(address), b.busNr)
	if err != nil {
		return nil, fmt.Errorf("could not open i2c connection %x on bus %d: %w", address, b.busNr, err)
	}
	b.conns[address] = conn
	return conn, nil
}

func (b *GobotBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	conn, err := b.connection(ctx, address)
	if err != nil {
		return err
	}
	n, err := conn.Read(buffer)
	if err != nil {
		return fmt.Errorf("could not read from i2c bus %x: %w", address, err)
	}
	if n != len(buffer) {
		return fmt.Errorf("short read from i2c bus %x: %d of %d bytes", address, n, len(buffer))
	}
	return nil
}

func (b *GobotBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	conn, err := b.connection(ctx, address)
	if err != nil {
		return err
	}
	if err := conn.WriteBytes(buffer); err != nil {
		return fmt.Errorf("could not write to i2c bus %x: %w", address, err)
	}
	return nil
}

// WriteReadFromAddr uses an i2c block read when out is a single register
// pointer, which the kernel issues with a repeated start. Longer prefixes fall
// back to a write followed by a separate read.
func (b *GobotBus) WriteReadFromAddr(ctx context.Context, address byte, out []byte, in []byte) error {
	conn, err := b.connection(ctx, address)
	if err != nil {
		return err
	}
	if len(out) == 1 {
		if err := conn.ReadBlockData(out[0], in); err != nil {
			return fmt.Errorf("could not transact with i2c bus %x: %w", address, err)
		}
		return nil
	}
	if err := conn.WriteBytes(out); err != nil {
		return fmt.Errorf("could not transact with i2c bus %x: %w", address, err)
	}
	n, err := conn.Read(in)
	if err != nil {
		return fmt.Errorf("could not transact with i2c bus %x: %w", address, err)
	}
	if n != len(in) {
		return fmt.Errorf("short read from i2c bus %x: %d of %d bytes", address, n, len(in))
	}
	return nil
}

func (b *GobotBus) Release(ctx context.Context) error {
	return nil
}

// Close closes every connection opened so far.
func (b *GobotBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var first error
	for addr, conn := range b.conns {
		if err := conn.Close(); err != nil && first == nil {
			first = fmt.Errorf("could not close i2c connection %x: %w", addr, err)
		}
		delete(b.conns, addr)
	}
	return first
}
