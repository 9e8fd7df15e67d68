package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/lumen/cmd/lumen/console"
	"github.com/mklimuk/lumen/light/opt4048"
)

var lightConfigCmd = cli.Command{
	Name:  "config",
	Usage: "read or program the configuration registers",
	Subcommands: []*cli.Command{
		&lightConfigGetCmd,
		&lightConfigSetCmd,
	},
}

var lightConfigGetCmd = cli.Command{
	Name:  "get",
	Usage: "print configuration and thresholds as a profile",
	Action: func(c *cli.Context) error {
		return withSensor(c, func(ctx context.Context, s *opt4048.OPT4048) error {
			current, err := readSettings(ctx, s)
			if err != nil {
				return console.Exit(1, "error reading configuration: %s", console.Red(err))
			}
			return encodeYAML(current)
		})
	},
}

func choiceFlag(name, field, usage string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  name,
		Usage: fmt.Sprintf("%s (%s)", usage, strings.Join(opt4048.Choices(field), ", ")),
	}
}

var lightConfigSetCmd = cli.Command{
	Name:  "set",
	Usage: "program configuration from a profile and/or flags",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "profile",
			Aliases: []string{"p"},
			Usage:   "YAML profile with config_a, config_b and threshold sections",
		},
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "do not ask for confirmation",
		},
		choiceFlag("qwake", "qwake", "quick wake"),
		choiceFlag("range", "range", "full scale range"),
		choiceFlag("conv-time", "conv_time", "conversion time"),
		choiceFlag("mode", "operating_mode", "operating mode"),
		choiceFlag("latch", "latch", "interrupt latch"),
		choiceFlag("int-pol", "int_pol", "INT polarity"),
		choiceFlag("fault-count", "fault_count", "fault count"),
		choiceFlag("threshold-ch", "channel", "threshold channel"),
		choiceFlag("int-dir", "int_dir", "INT pin direction"),
		choiceFlag("burst", "burst_read", "burst read"),
		&cli.UintFlag{
			Name:  "int-cfg",
			Usage: "INT mechanism code 0-3",
		},
		&cli.StringFlag{
			Name:  "threshold-low",
			Usage: "low threshold as exponent:result",
		},
		&cli.StringFlag{
			Name:  "threshold-high",
			Usage: "high threshold as exponent:result",
		},
	},
	Action: func(c *cli.Context) error {
		var p *profile
		addr, err := sensorAddress(c)
		if err != nil {
			return console.Exit(1, "invalid address: %s", console.Red(err))
		}
		if c.IsSet("profile") {
			p, err = loadProfile(c.String("profile"))
			if err != nil {
				return console.Exit(1, "%s", console.Red(err))
			}
			if a, ok, err := p.address(); err != nil {
				return console.Exit(1, "%s", console.Red(err))
			} else if ok && !c.IsSet("addr") {
				addr = a
			}
		}
		return withSensorAt(c, addr, func(ctx context.Context, s *opt4048.OPT4048) error {
			current, err := readSettings(ctx, s)
			if err != nil {
				return console.Exit(1, "error reading configuration: %s", console.Red(err))
			}
			next := current
			if p != nil {
				if err := p.overlay(&next); err != nil {
					return console.Exit(1, "%s", console.Red(err))
				}
			}
			if err := applyFlags(c, &next); err != nil {
				return console.Exit(1, "%s", console.Red(err))
			}
			if next == current {
				console.Printf("configuration unchanged\n")
				return nil
			}
			if err := next.validate(); err != nil {
				return console.Exit(1, "invalid configuration: %s", console.Red(err))
			}
			if err := printChanges(current, next); err != nil {
				return err
			}
			ok, err := console.Confirm(fmt.Sprintf("write configuration to %#x?", s.BusAddress()), c.Bool("yes"))
			if err != nil {
				return console.Exit(1, "prompt error: %s", console.Red(err))
			}
			if !ok {
				console.PInfof(console.PictoStop, "aborted")
				return nil
			}
			if err := writeSettings(ctx, s, current, next); err != nil {
				return console.Exit(1, "error writing configuration: %s", console.Red(err))
			}
			console.Printf("%s\n", console.Green("configuration written"))
			return nil
		})
	},
}

func readSettings(ctx context.Context, s *opt4048.OPT4048) (settings, error) {
	var out settings
	var err error
	if out.ConfigA, err = s.ReadConfigA(ctx); err != nil {
		return out, err
	}
	if out.ConfigB, err = s.ReadConfigB(ctx); err != nil {
		return out, err
	}
	if out.ThresholdLow, err = s.ReadThresholdLow(ctx); err != nil {
		return out, err
	}
	if out.ThresholdHigh, err = s.ReadThresholdHigh(ctx); err != nil {
		return out, err
	}
	return out, nil
}

// writeSettings writes only the registers whose contents change. Config A goes
// last so a mode change applies to the new thresholds.
func writeSettings(ctx context.Context, s *opt4048.OPT4048, current, next settings) error {
	if next.ThresholdLow != current.ThresholdLow {
		if err := s.SetThresholdLow(ctx, next.ThresholdLow); err != nil {
			return err
		}
	}
	if next.ThresholdHigh != current.ThresholdHigh {
		if err := s.SetThresholdHigh(ctx, next.ThresholdHigh); err != nil {
			return err
		}
	}
	if next.ConfigB != current.ConfigB {
		if err := s.SetConfigB(ctx, next.ConfigB); err != nil {
			return err
		}
	}
	if next.ConfigA != current.ConfigA {
		if err := s.SetConfigA(ctx, next.ConfigA); err != nil {
			return err
		}
	}
	return nil
}

// printChanges lists the settings that differ, one "key: old -> new" per line.
func printChanges(current, next settings) error {
	before, err := flatten(current)
	if err != nil {
		return console.Exit(1, "encoding error: %s", console.Red(err))
	}
	after, err := flatten(next)
	if err != nil {
		return console.Exit(1, "encoding error: %s", console.Red(err))
	}
	for _, kv := range after {
		old := lookup(before, kv[0])
		if old != kv[1] {
			console.Printf("  %s: %s -> %s\n", kv[0], console.Yellow(old), console.White(kv[1]))
		}
	}
	return nil
}

// flatten renders settings as ordered "section.key" / value pairs.
func flatten(s settings) ([][2]string, error) {
	var node yaml.Node
	if err := node.Encode(s); err != nil {
		return nil, err
	}
	var out [][2]string
	for i := 0; i+1 < len(node.Content); i += 2 {
		section := node.Content[i].Value
		body := node.Content[i+1]
		for j := 0; j+1 < len(body.Content); j += 2 {
			out = append(out, [2]string{section + "." + body.Content[j].Value, body.Content[j+1].Value})
		}
	}
	return out, nil
}

func lookup(pairs [][2]string, key string) string {
	for _, kv := range pairs {
		if kv[0] == key {
			return kv[1]
		}
	}
	return ""
}
