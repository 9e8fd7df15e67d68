package i2c

import (
	"context"

	"tinygo.org/x/drivers"

	"github.com/mklimuk/lumen"
)

var _ lumen.I2CBus = TinyGoBus{}

// TinyGoBus adapts a tinygo drivers.I2C (machine.I2C on microcontrollers, or
// any Tx-shaped bus) to lumen.I2CBus.
type TinyGoBus struct {
	bus drivers.I2C
}

func NewTinyGoBus(bus drivers.I2C) TinyGoBus {
	return TinyGoBus{bus: bus}
}

func (b TinyGoBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	return tx(ctx, b.bus, "read from", address, nil, buffer)
}

func (b TinyGoBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	return tx(ctx, b.bus, "write to", address, buffer, nil)
}

func (b TinyGoBus) WriteReadFromAddr(ctx context.Context, address byte, out []byte, in []byte) error {
	return tx(ctx, b.bus, "transact with", address, out, in)
}

func (b TinyGoBus) Release(ctx context.Context) error {
	return nil
}
