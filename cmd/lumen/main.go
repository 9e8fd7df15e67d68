package main

import (
	"errors"
	"log"
	"log/slog"
	"os"
	"time"

	chlog "github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/lumen/pkg/config"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	app := cli.NewApp()
	app.Name = "lumen"
	app.EnableBashCompletion = true
	app.Version = config.VersionString()
	// -v is taken by --verbose
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
	app.Usage = "OPT4048 color light sensor cli"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "enable verbose logging and frame dumps",
		},
		&cli.StringFlag{
			Name:    "adapter",
			Aliases: []string{"a"},
			EnvVars: []string{"LUMEN_ADAPTER"},
			Value:   adapterMCP2221,
			Usage:   "bus adapter: mcp2221, generic, nanopi or sim",
		},
		&cli.StringFlag{
			Name:    "device",
			Aliases: []string{"d"},
			Value:   "/dev/i2c-1",
			Usage:   "i2c-dev bus for the generic adapter",
		},
		&cli.IntFlag{
			Name:  "bus",
			Usage: "bus number for the nanopi adapter (adaptor default when unset)",
		},
		&cli.IntFlag{
			Name:  "index",
			Value: -1,
			Usage: "MCP2221 enumeration index when several are attached",
		},
		&cli.IntFlag{
			Name:  "speed",
			Usage: "bus clock in Hz",
		},
		&cli.StringFlag{
			Name:  "addr",
			Value: "gnd",
			Usage: "sensor address strap: gnd, vdd, sda, scl or picostar",
		},
		&cli.IntSliceFlag{
			Name:  "sim-corrupt",
			Usage: "channel whose check value the sim adapter corrupts (repeatable)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Value: 5 * time.Second,
			Usage: "deadline for one command",
		},
	}
	app.Before = func(ctx *cli.Context) error {
		charm := chlog.NewWithOptions(os.Stderr, chlog.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.DateTime,
		})
		charm.SetColorProfile(termenv.TrueColor)
		charm.SetLevel(chlog.InfoLevel)
		if ctx.Bool("verbose") {
			charm.SetLevel(chlog.DebugLevel)
		}
		slog.SetDefault(slog.New(charm))
		return nil
	}
	app.Commands = cli.Commands{
		&lightCmd,
		&usbCmd,
		&mcp2221Cmd,
	}
	err := app.Run(args)
	if err != nil {
		var exerr cli.ExitCoder
		if errors.As(err, &exerr) {
			return exerr.ExitCode()
		}
		log.Printf("unexpected error: %v", err)
		return 1
	}
	return 0
}
