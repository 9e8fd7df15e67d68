package i2c

import (
	"context"
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/mklimuk/lumen"
)

var _ lumen.I2CBus = &GenericBus{}

// GenericBus is a host i2c-dev bus (e.g. /dev/i2c-1) opened through periph.
type GenericBus struct {
	bus i2c.BusCloser
}

func NewGenericBus(dev string) (*GenericBus, error) {
	state, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("could not init host: %w", err)
	}
	for _, driver := range state.Loaded {
		slog.Debug("periph driver loaded", "driver", driver.String())
	}
	bus, err := i2creg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("could not open i2c bus: %w", err)
	}
	return &GenericBus{
		bus: bus,
	}, nil
}

func newGenericBus(bus i2c.BusCloser) *GenericBus {
	return &GenericBus{bus: bus}
}

func (b *GenericBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	return tx(ctx, b.bus, "read from", address, nil, buffer)
}

func (b *GenericBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	return tx(ctx, b.bus, "write to", address, buffer, nil)
}

// WriteReadFromAddr maps onto a single i2c-dev transfer with a repeated start.
func (b *GenericBus) WriteReadFromAddr(ctx context.Context, address byte, out []byte, in []byte) error {
	return tx(ctx, b.bus, "transact with", address, out, in)
}

// SetSpeed changes the bus clock, e.g. 400*physic.KiloHertz.
func (b *GenericBus) SetSpeed(f physic.Frequency) error {
	return b.bus.SetSpeed(f)
}

func (b *GenericBus) Release(ctx context.Context) error {
	return nil
}

func (b *GenericBus) Close() error {
	return b.bus.Close()
}

// txer is the transfer primitive shared by periph and tinygo buses.
type txer interface {
	Tx(addr uint16, w, r []byte) error
}

// tx runs one transfer unless ctx is already done. A transfer in flight is
// not interruptible.
func tx(ctx context.Context, bus txer, op string, address byte, w, r []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := bus.Tx(uint16(address), w, r); err != nil {
		return fmt.Errorf("could not %s i2c bus %x: %w", op, address, err)
	}
	return nil
}
