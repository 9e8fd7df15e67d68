package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/lumen/cmd/lumen/console"
	"github.com/mklimuk/lumen/light/opt4048"
)

var lightThresholdCmd = cli.Command{
	Name:  "threshold",
	Usage: "read or write the interrupt thresholds",
	Subcommands: []*cli.Command{
		&lightThresholdGetCmd,
		&lightThresholdSetCmd,
	},
}

type thresholds struct {
	Low  opt4048.Threshold `yaml:"low"`
	High opt4048.Threshold `yaml:"high"`
}

var lightThresholdGetCmd = cli.Command{
	Name: "get",
	Action: func(c *cli.Context) error {
		return withSensor(c, func(ctx context.Context, s *opt4048.OPT4048) error {
			var out thresholds
			var err error
			if out.Low, err = s.ReadThresholdLow(ctx); err != nil {
				return console.Exit(1, "error reading low threshold: %s", console.Red(err))
			}
			if out.High, err = s.ReadThresholdHigh(ctx); err != nil {
				return console.Exit(1, "error reading high threshold: %s", console.Red(err))
			}
			return encodeYAML(out)
		})
	},
}

var lightThresholdSetCmd = cli.Command{
	Name: "set",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "low",
			Usage: "low threshold as exponent:result",
		},
		&cli.StringFlag{
			Name:  "high",
			Usage: "high threshold as exponent:result",
		},
	},
	Action: func(c *cli.Context) error {
		if !c.IsSet("low") && !c.IsSet("high") {
			return console.Exit(1, "nothing to set: pass --low and/or --high")
		}
		var low, high opt4048.Threshold
		var err error
		if c.IsSet("low") {
			if low, err = parseThreshold(c.String("low")); err != nil {
				return console.Exit(1, "%s", console.Red(err))
			}
		}
		if c.IsSet("high") {
			if high, err = parseThreshold(c.String("high")); err != nil {
				return console.Exit(1, "%s", console.Red(err))
			}
		}
		return withSensor(c, func(ctx context.Context, s *opt4048.OPT4048) error {
			if c.IsSet("low") {
				if err := s.SetThresholdLow(ctx, low); err != nil {
					return console.Exit(1, "error writing low threshold: %s", console.Red(err))
				}
			}
			if c.IsSet("high") {
				if err := s.SetThresholdHigh(ctx, high); err != nil {
					return console.Exit(1, "error writing high threshold: %s", console.Red(err))
				}
			}
			console.Printf("%s\n", console.Green("thresholds written"))
			return nil
		})
	},
}
