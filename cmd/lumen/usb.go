package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/karalabe/hid"
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/lumen/adapter"
	"github.com/mklimuk/lumen/cmd/lumen/console"
)

var usbCmd = cli.Command{
	Name:  "usb",
	Usage: "inspect attached USB HID devices",
	Subcommands: cli.Commands{
		&usbLsCmd,
		&usbDetectCmd,
	},
}

var usbLsCmd = cli.Command{
	Name: "ls",
	Action: func(c *cli.Context) error {
		devices := hid.Enumerate(0, 0)

		w := tabwriter.NewWriter(console.Out(), 24, 0, 1, ' ', 0)
		_, _ = fmt.Fprintf(w, "PATH\tSERIAL\tVENDOR\tPRODUCT ID\tMANUFACTURER\tPRODUCT\n")
		for _, dev := range devices {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%#x\t%#x\t%s\t%s\n",
				dev.Path, dev.Serial, dev.VendorID, dev.ProductID, dev.Manufacturer, dev.Product)
		}
		return w.Flush()
	},
}

var usbDetectCmd = cli.Command{
	Name:  "detect",
	Usage: "list attached I2C bridges usable with --adapter",
	Action: func(c *cli.Context) error {
		w := tabwriter.NewWriter(console.Out(), 8, 0, 2, ' ', 0)
		_, _ = fmt.Fprintf(w, "INDEX\tVENDOR\tPRODUCT\tSERIAL\tDEVICE\n")
		for i, dev := range adapter.Enumerate() {
			_, _ = fmt.Fprintf(w, "%d\t%#x\t%#x\t%s\tMCP2221\n", i, dev.VendorID, dev.ProductID, dev.Serial)
		}
		return w.Flush()
	},
}
