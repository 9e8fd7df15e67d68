package opt4048

import "fmt"

// Register map, see https://www.ti.com/lit/ds/symlink/opt4048.pdf section 8.6.
// All registers are big-endian on the wire.

type Access uint8

const (
	ReadOnly Access = iota
	ReadWrite
)

func (a Access) String() string {
	if a == ReadWrite {
		return "RW"
	}
	return "RO"
}

func (a Access) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

type Register struct {
	Name    string `yaml:"name"`
	Address byte   `yaml:"address"`
	// Width in bits, 16 or 32.
	Width  int    `yaml:"width"`
	Access Access `yaml:"access"`
	Reset  uint32 `yaml:"reset"`
	// Repeat is the number of channel copies; 0 for a single register.
	Repeat int  `yaml:"repeat,omitempty"`
	Stride byte `yaml:"stride,omitempty"`
	// Overlap marks a register that shares its base address with a register
	// of another width.
	Overlap bool `yaml:"overlap,omitempty"`
}

// Size returns the register width in bytes.
func (r Register) Size() int {
	return r.Width / 8
}

// At returns the bus address of copy index of a repeated register. Index 0
// is the only valid index of a single register.
func (r Register) At(index int) (byte, error) {
	count := r.Repeat
	if count == 0 {
		count = 1
	}
	if index < 0 || index >= count {
		return 0, fmt.Errorf("opt4048: %s has no copy %d", r.Name, index)
	}
	return r.Address + byte(index)*r.Stride, nil
}

const channelStride = 2

var (
	RegMeasurement     = Register{Name: "measurement", Address: 0x00, Width: 32, Access: ReadOnly, Repeat: 4, Stride: channelStride, Overlap: true}
	RegMeasurementHigh = Register{Name: "measurement_high", Address: 0x00, Width: 16, Access: ReadOnly, Repeat: 4, Stride: channelStride, Overlap: true}
	RegMeasurementLow  = Register{Name: "measurement_low", Address: 0x01, Width: 16, Access: ReadOnly, Repeat: 4, Stride: channelStride}
	RegThresholdLow    = Register{Name: "threshold_low", Address: 0x08, Width: 16, Access: ReadWrite}
	RegThresholdHigh   = Register{Name: "threshold_high", Address: 0x09, Width: 16, Access: ReadWrite, Reset: 0xBFFF}
	RegConfigA         = Register{Name: "config_a", Address: 0x0A, Width: 16, Access: ReadWrite, Reset: 0x3208}
	RegConfigB         = Register{Name: "config_b", Address: 0x0B, Width: 16, Access: ReadWrite, Reset: 0x8011}
	RegStatus          = Register{Name: "status", Address: 0x0C, Width: 16, Access: ReadOnly}
	RegDeviceID        = Register{Name: "device_id", Address: 0x11, Width: 16, Access: ReadOnly}
)

// Registers lists the register map in address order.
func Registers() []Register {
	return []Register{
		RegMeasurement,
		RegMeasurementHigh,
		RegMeasurementLow,
		RegThresholdLow,
		RegThresholdHigh,
		RegConfigA,
		RegConfigB,
		RegStatus,
		RegDeviceID,
	}
}

// field is a contiguous bit range of a register value.
type field struct {
	offset uint
	width  uint
}

func (f field) mask() uint32 {
	return 1<<f.width - 1
}

func (f field) get(raw uint32) uint32 {
	return (raw >> f.offset) & f.mask()
}

func (f field) bit(raw uint32) bool {
	return f.get(raw) != 0
}

// set replaces the field bits of raw with v. Values wider than the field are
// rejected rather than truncated.
func (f field) set(raw, v uint32, name string) (uint32, error) {
	if v > f.mask() {
		return raw, &ConversionError{Field: name, Value: v}
	}
	return raw&^(f.mask()<<f.offset) | v<<f.offset, nil
}

// Measurement, fused 32-bit form.
var (
	measExponent = field{offset: 28, width: 4}
	measMantissa = field{offset: 8, width: 20}
	measCounter  = field{offset: 4, width: 4}
	measCRC      = field{offset: 0, width: 4}
)

// Measurement, split 16-bit form.
var (
	measHighExponent = field{offset: 12, width: 4}
	measHighMantissa = field{offset: 0, width: 12}
	measLowMantissa  = field{offset: 8, width: 8}
	measLowCounter   = field{offset: 4, width: 4}
	measLowCRC       = field{offset: 0, width: 4}
)

var (
	thresholdExponent = field{offset: 12, width: 4}
	thresholdResult   = field{offset: 4, width: 4}
)

var (
	cfgAQuickWake  = field{offset: 15, width: 1}
	cfgARange      = field{offset: 10, width: 4}
	cfgAConvTime   = field{offset: 6, width: 4}
	cfgAMode       = field{offset: 4, width: 2}
	cfgALatch      = field{offset: 3, width: 1}
	cfgAIntPol     = field{offset: 2, width: 1}
	cfgAFaultCount = field{offset: 0, width: 2}
)

var (
	cfgBChannel   = field{offset: 5, width: 2}
	cfgBIntDir    = field{offset: 4, width: 1}
	cfgBIntCfg    = field{offset: 2, width: 2}
	cfgBBurstRead = field{offset: 0, width: 1}
)

var (
	statusOverload  = field{offset: 3, width: 1}
	statusConvReady = field{offset: 2, width: 1}
	statusFlagHigh  = field{offset: 1, width: 1}
	statusFlagLow   = field{offset: 0, width: 1}
)

var (
	deviceIDLow  = field{offset: 12, width: 2}
	deviceIDHigh = field{offset: 0, width: 12}
)
