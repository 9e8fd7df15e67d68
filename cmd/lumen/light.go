package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/lumen/cmd/lumen/console"
	"github.com/mklimuk/lumen/light/opt4048"
)

var lightCmd = cli.Command{
	Name:  "light",
	Usage: "OPT4048 sensor commands",
	Subcommands: []*cli.Command{
		&lightReadCmd,
		&lightStatusCmd,
		&lightIDCmd,
		&lightRegsCmd,
		&lightDumpCmd,
		&lightIntCmd,
		&lightConfigCmd,
		&lightThresholdCmd,
	},
}

var lightReadCmd = cli.Command{
	Name:    "read",
	Aliases: []string{"rd"},
	Usage:   "read CRC checked channel values",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "channel",
			Aliases: []string{"c"},
			Usage:   "channel 0-3",
		},
		&cli.BoolFlag{
			Name:  "all",
			Usage: "read all four channels",
		},
		&cli.BoolFlag{
			Name:  "split",
			Usage: "read each channel as two 16-bit words instead of one burst",
		},
	},
	Action: func(c *cli.Context) error {
		burst := opt4048.BurstReadEnabled
		if c.Bool("split") {
			burst = opt4048.BurstReadDisabled
		}
		return withSensor(c, func(ctx context.Context, s *opt4048.OPT4048) error {
			if c.Bool("all") {
				readings, err := s.ReadAll(ctx, burst)
				if err != nil {
					return console.Exit(1, "error reading channels: %s", console.Red(err))
				}
				for i, r := range readings {
					printReading(opt4048.Channels[i], r)
				}
				return nil
			}
			ch := c.Int("channel")
			if ch < 0 || ch >= len(opt4048.Channels) {
				return console.Exit(1, "invalid channel %d", ch)
			}
			r, err := s.ReadRaw(ctx, opt4048.Channels[ch], burst)
			if err != nil {
				if errors.Is(err, opt4048.ErrCRC) {
					return console.Exit(2, "corrupted measurement: %s", console.Red(err))
				}
				return console.Exit(1, "error reading channel: %s", console.Red(err))
			}
			printReading(opt4048.Channels[ch], r)
			return nil
		})
	},
}

func printReading(ch opt4048.Channel, r opt4048.Reading) {
	console.PInfof(console.PictoBulb, "%s: %s (counter %d)", ch, console.Channel(int(ch), r.Value), r.Counter)
}

var lightStatusCmd = cli.Command{
	Name:  "status",
	Usage: "show the status flags",
	Action: func(c *cli.Context) error {
		return withSensor(c, func(ctx context.Context, s *opt4048.OPT4048) error {
			status, err := s.ReadStatus(ctx)
			if err != nil {
				return console.Exit(1, "error reading status: %s", console.Red(err))
			}
			return encodeYAML(status)
		})
	},
}

var lightIDCmd = cli.Command{
	Name:  "id",
	Usage: "show the device identification",
	Action: func(c *cli.Context) error {
		return withSensor(c, func(ctx context.Context, s *opt4048.OPT4048) error {
			id, err := s.ReadDeviceID(ctx)
			if err != nil {
				return console.Exit(1, "error reading device id: %s", console.Red(err))
			}
			console.Printf("device %s at %s: didl %s didh %s\n",
				console.White("opt4048"),
				console.White(fmt.Sprintf("%#x", s.BusAddress())),
				console.White(id.Low),
				console.White(fmt.Sprintf("%#03x", id.High)))
			return nil
		})
	},
}

var lightRegsCmd = cli.Command{
	Name:  "regs",
	Usage: "list the register map",
	Action: func(c *cli.Context) error {
		w := tabwriter.NewWriter(console.Out(), 8, 0, 2, ' ', 0)
		_, _ = fmt.Fprintf(w, "NAME\tADDR\tWIDTH\tACCESS\tRESET\tREPEAT\n")
		for _, r := range opt4048.Registers() {
			repeat := r.Repeat
			if repeat == 0 {
				repeat = 1
			}
			_, _ = fmt.Fprintf(w, "%s\t0x%02x\t%d\t%s\t%#x\t%d\n", r.Name, r.Address, r.Width, r.Access, r.Reset, repeat)
		}
		return w.Flush()
	},
}

var lightDumpCmd = cli.Command{
	Name:  "dump",
	Usage: "read every 16-bit register word without decoding",
	Action: func(c *cli.Context) error {
		return withSensor(c, func(ctx context.Context, s *opt4048.OPT4048) error {
			w := tabwriter.NewWriter(console.Out(), 8, 0, 2, ' ', 0)
			_, _ = fmt.Fprintf(w, "ADDR\tNAME\tVALUE\n")
			for _, r := range opt4048.Registers() {
				if r.Width != 16 {
					continue
				}
				for i := 0; i < max(r.Repeat, 1); i++ {
					addr, err := r.At(i)
					if err != nil {
						return console.Exit(1, "%s", console.Red(err))
					}
					v, err := s.ReadRegister(ctx, r, i)
					if err != nil {
						return console.Exit(1, "error reading %s: %s", r.Name, console.Red(err))
					}
					_, _ = fmt.Fprintf(w, "0x%02x\t%s\t0x%04x\n", addr, r.Name, v)
				}
			}
			return w.Flush()
		})
	},
}

var lightIntCmd = cli.Command{
	Name:  "int",
	Usage: "sample the INT line wired to an MCP2221 GP pin",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "pin",
			Value: 1,
			Usage: "MCP2221 GP pin the INT line is wired to",
		},
	},
	Action: func(c *cli.Context) error {
		if c.String("adapter") != adapterMCP2221 {
			return console.Exit(1, "the INT line can only be sampled through the mcp2221 adapter")
		}
		return withSensor(c, func(ctx context.Context, s *opt4048.OPT4048) error {
			a := newMCP2221(c)
			cfg, err := s.ReadConfigA(ctx)
			if err != nil {
				return console.Exit(1, "error reading config A: %s", console.Red(err))
			}
			level, err := a.ReadPin(ctx, c.Int("pin"))
			if err != nil {
				return console.Exit(1, "error reading GP%d: %s", c.Int("pin"), console.Red(err))
			}
			console.PInfof(console.PictoPin, "INT %s (GP%d level %s, polarity %s)",
				assertion(intAsserted(level, cfg.IntPolarity)), c.Int("pin"), console.White(levelName(level)), cfg.IntPolarity)
			return nil
		})
	},
}

// intAsserted interprets a pin level against the configured INT polarity.
func intAsserted(level bool, pol opt4048.IntPolarity) bool {
	return level == (pol == opt4048.IntPolarityHigh)
}

func assertion(asserted bool) string {
	if asserted {
		return console.Yellow("asserted")
	}
	return console.Green("idle")
}

func levelName(level bool) string {
	if level {
		return "high"
	}
	return "low"
}

func encodeYAML(v interface{}) error {
	enc := yaml.NewEncoder(console.Out())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return console.Exit(1, "encoding error: %s", console.Red(err))
	}
	return enc.Close()
}
