package adapter

import (
	"fmt"
	"io"

	"github.com/karalabe/hid"
)

const VendorID = 0x04D8
const ProductID = 0x00DD

// reportSize is the fixed HID report length for every MCP2221 command.
const reportSize = 64

// Opener returns a handle to the adapter's HID interface for one exchange.
type Opener func() (io.ReadWriteCloser, error)

// Enumerate lists the MCP2221 adapters currently attached.
func Enumerate() []hid.DeviceInfo {
	return hid.Enumerate(VendorID, ProductID)
}

// hidOpener picks the adapter by enumeration index. A negative index is only
// accepted when exactly one adapter is attached.
func hidOpener(index int) Opener {
	return func() (io.ReadWriteCloser, error) {
		devs := Enumerate()
		if len(devs) == 0 {
			return nil, fmt.Errorf("MCP2221 device not found")
		}
		i := index
		if i < 0 {
			if len(devs) > 1 {
				return nil, fmt.Errorf("ambiguous device identification: %d adapters attached", len(devs))
			}
			i = 0
		}
		if i >= len(devs) {
			return nil, fmt.Errorf("no device with id %d", i)
		}
		dev, err := devs[i].Open()
		if err != nil {
			return nil, fmt.Errorf("error opening device: %w", err)
		}
		return dev, nil
	}
}
