package main

import (
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/lumen/cmd/lumen/console"
)

var mcp2221Cmd = cli.Command{
	Name:  "mcp2221",
	Usage: "MCP2221 USB-I2C bridge maintenance",
	Subcommands: cli.Commands{
		&mcp2221StatusCmd,
		&mcp2221ReleaseCmd,
		&mcp2221GPIOCmd,
	},
}

var mcp2221StatusCmd = cli.Command{
	Name: "status",
	Action: func(c *cli.Context) error {
		ctx, cancel := commandContext(c)
		defer cancel()
		status, err := newMCP2221(c).Status(ctx)
		if err != nil {
			return console.Exit(1, "adapter communication error: %s", console.Red(err))
		}
		return encodeYAML(status)
	},
}

var mcp2221ReleaseCmd = cli.Command{
	Name:  "release",
	Usage: "cancel a stuck transfer and free the bus",
	Action: func(c *cli.Context) error {
		ctx, cancel := commandContext(c)
		defer cancel()
		status, err := newMCP2221(c).ReleaseBus(ctx)
		if err != nil {
			return console.Exit(1, "adapter communication error: %s", console.Red(err))
		}
		return encodeYAML(status)
	},
}

var mcp2221GPIOCmd = cli.Command{
	Name:  "gpio",
	Usage: "show GP pin configuration and levels",
	Action: func(c *cli.Context) error {
		ctx, cancel := commandContext(c)
		defer cancel()
		a := newMCP2221(c)
		params, err := a.GetGPIOParameters(ctx)
		if err != nil {
			return console.Exit(1, "adapter communication error: %s", console.Red(err))
		}
		values, err := a.ReadGPIO(ctx)
		if err != nil {
			return console.Exit(1, "adapter communication error: %s", console.Red(err))
		}
		return encodeYAML(map[string]interface{}{
			"parameters": params,
			"values":     values,
		})
	},
}
