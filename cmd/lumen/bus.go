package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"
	"periph.io/x/conn/v3/physic"

	"github.com/mklimuk/lumen"
	"github.com/mklimuk/lumen/adapter"
	"github.com/mklimuk/lumen/cmd/lumen/console"
	"github.com/mklimuk/lumen/i2c"
	"github.com/mklimuk/lumen/light/opt4048"
	"github.com/mklimuk/lumen/light/opt4048/opt4048sim"
	"github.com/mklimuk/lumen/snsctx"
)

const (
	adapterMCP2221 = "mcp2221"
	adapterGeneric = "generic"
	adapterNanoPi  = "nanopi"
	adapterSim     = "sim"
)

// simDaylight gives the simulated sensor plausible, distinct channel values.
var simDaylight = opt4048sim.PerChannel(6, [4]uint32{0x0A3F2, 0x0B810, 0x07C44, 0x0C020})

// commandContext derives the per-command context from the global flags.
func commandContext(c *cli.Context) (context.Context, context.CancelFunc) {
	ctx := snsctx.SetVerbose(c.Context, c.Bool("verbose"))
	return context.WithTimeout(ctx, c.Duration("timeout"))
}

func newMCP2221(c *cli.Context) *adapter.MCP2221 {
	return adapter.NewMCP2221(adapter.WithDeviceIndex(c.Int("index")))
}

// openBus opens the transport selected with --adapter. The returned function
// releases it.
func openBus(ctx context.Context, c *cli.Context, addr byte) (lumen.I2CBus, func(), error) {
	switch c.String("adapter") {
	case adapterMCP2221:
		a := newMCP2221(c)
		if c.IsSet("speed") {
			if err := a.SetSpeed(ctx, c.Int("speed")); err != nil {
				return nil, nil, fmt.Errorf("could not set adapter speed: %w", err)
			}
		}
		return a, func() {}, nil
	case adapterGeneric:
		bus, err := i2c.NewGenericBus(c.String("device"))
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			if err := bus.Close(); err != nil {
				console.Errorf("error closing bus: %s", console.Red(err))
			}
		}
		if c.IsSet("speed") {
			if err := bus.SetSpeed(physic.Frequency(c.Int("speed")) * physic.Hertz); err != nil {
				closer()
				return nil, nil, fmt.Errorf("could not set bus speed: %w", err)
			}
		}
		return bus, closer, nil
	case adapterNanoPi:
		npi := nanopi.NewNeoAdaptor()
		if err := npi.I2cBusAdaptor.Connect(); err != nil {
			return nil, nil, fmt.Errorf("adaptor connect error: %w", err)
		}
		var opts []i2c.GobotOption
		if c.IsSet("bus") {
			opts = append(opts, i2c.WithBusNumber(c.Int("bus")))
		}
		bus := i2c.NewGobotBus(npi, opts...)
		return bus, func() {
			if err := bus.Close(); err != nil {
				console.Errorf("error closing bus: %s", console.Red(err))
			}
			_ = npi.I2cBusAdaptor.Finalize()
		}, nil
	case adapterSim:
		dev, err := newSimDevice(ctx, addr)
		if err != nil {
			return nil, nil, err
		}
		for _, ch := range c.IntSlice("sim-corrupt") {
			if ch < 0 || ch >= len(opt4048.Channels) {
				return nil, nil, fmt.Errorf("invalid channel %d to corrupt", ch)
			}
			dev.Corrupt(opt4048.Channels[ch], true)
		}
		return dev, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown adapter %q", c.String("adapter"))
	}
}

// newSimDevice returns a simulated sensor already converting continuously,
// since its state does not outlive one command.
func newSimDevice(ctx context.Context, addr byte) (*opt4048sim.Device, error) {
	dev := opt4048sim.New(addr, simDaylight)
	cfg := opt4048.DefaultConfigA()
	cfg.OperatingMode = opt4048.ModeContinuous
	if err := opt4048.New(dev, opt4048.WithBusAddress(addr)).SetConfigA(ctx, cfg); err != nil {
		return nil, fmt.Errorf("could not start simulator: %w", err)
	}
	return dev, nil
}

func sensorAddress(c *cli.Context) (opt4048.Address, error) {
	var addr opt4048.Address
	if err := addr.UnmarshalText([]byte(c.String("addr"))); err != nil {
		return addr, err
	}
	return addr, nil
}

// withSensor runs fn against the sensor on the selected bus and maps failures
// to exit codes.
func withSensor(c *cli.Context, fn func(ctx context.Context, s *opt4048.OPT4048) error) error {
	addr, err := sensorAddress(c)
	if err != nil {
		return console.Exit(1, "invalid address: %s", console.Red(err))
	}
	return withSensorAt(c, addr, fn)
}

func withSensorAt(c *cli.Context, addr opt4048.Address, fn func(ctx context.Context, s *opt4048.OPT4048) error) error {
	ctx, cancel := commandContext(c)
	defer cancel()
	bus, closer, err := openBus(ctx, c, addr.BusAddress())
	if err != nil {
		return console.Exit(1, "adapter initialization error: %s", console.Red(err))
	}
	defer closer()
	return fn(ctx, opt4048.New(bus, opt4048.WithAddress(addr)))
}
