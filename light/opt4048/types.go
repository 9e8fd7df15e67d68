package opt4048

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Address selects the bus address through the ADDR pin strap.
type Address uint8

const (
	AddressGnd Address = iota
	AddressVdd
	AddressSda
	AddressScl
	// AddressPicoStar is the fixed address of the PicoStar package variant.
	AddressPicoStar
)

var addressTable = enumTable[Address]{field: "address", entries: []enumEntry[Address]{
	{AddressGnd, 0b1000100, "gnd"},
	{AddressVdd, 0b1000101, "vdd"},
	{AddressSda, 0b1000110, "sda"},
	{AddressScl, 0b1000111, "scl"},
	{AddressPicoStar, 0b1000101, "picostar"},
}}

// BusAddress returns the 7-bit bus address. Unknown values fall back to the
// ADDR=GND address.
func (a Address) BusAddress() byte {
	code, err := addressTable.encode(a)
	if err != nil {
		return 0b1000100
	}
	return byte(code)
}

func (a Address) String() string               { return addressTable.name(a) }
func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }
func (a *Address) UnmarshalText(text []byte) (err error) {
	*a, err = addressTable.parse(text)
	return err
}

// Channel is one of the four measurement channels (CH0..CH3).
type Channel uint8

const (
	Ch0 Channel = iota
	Ch1
	Ch2
	Ch3
)

var channelTable = enumTable[Channel]{field: "channel", entries: []enumEntry[Channel]{
	{Ch0, 0, "ch0"},
	{Ch1, 1, "ch1"},
	{Ch2, 2, "ch2"},
	{Ch3, 3, "ch3"},
}}

// Channels lists all measurement channels in register order.
var Channels = [...]Channel{Ch0, Ch1, Ch2, Ch3}

func (c Channel) String() string               { return channelTable.name(c) }
func (c Channel) MarshalText() ([]byte, error) { return []byte(c.String()), nil }
func (c *Channel) UnmarshalText(text []byte) (err error) {
	*c, err = channelTable.parse(text)
	return err
}

// Range is the full-scale light range: a manual level 0..11 or automatic
// selection. The zero value is manual level 0.
type Range struct {
	auto  bool
	level uint8
}

const (
	maxManualRange = 11
	rangeAutoCode  = 12
)

// AutoRange lets the device pick the range per conversion (reset default).
var AutoRange = Range{auto: true}

// ManualRange returns a fixed range. Levels above 11 are rejected; code 12 is
// reserved for automatic selection.
func ManualRange(level uint8) (Range, error) {
	if level > maxManualRange {
		return Range{}, &ConversionError{Field: "range", Value: uint32(level)}
	}
	return Range{level: level}, nil
}

func (r Range) IsAuto() bool { return r.auto }

// Level returns the manual level; ok is false for automatic range.
func (r Range) Level() (level uint8, ok bool) {
	return r.level, !r.auto
}

func (r Range) code() uint32 {
	if r.auto {
		return rangeAutoCode
	}
	return uint32(r.level)
}

func rangeFromCode(code uint32) (Range, error) {
	switch {
	case code <= maxManualRange:
		return Range{level: uint8(code)}, nil
	case code == rangeAutoCode:
		return AutoRange, nil
	default:
		return Range{}, &ConversionError{Field: "range", Value: code}
	}
}

func (r Range) String() string {
	if r.auto {
		return "auto"
	}
	return strconv.Itoa(int(r.level))
}

func (r Range) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Range) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	if s == "auto" {
		*r = AutoRange
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return fmt.Errorf("opt4048: invalid range %q: %w", s, err)
	}
	v, err := ManualRange(uint8(n))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ConversionTime is the per-channel conversion time.
type ConversionTime uint8

const (
	ConversionTime600us ConversionTime = iota
	ConversionTime1ms
	ConversionTime1ms8
	ConversionTime3ms4
	ConversionTime6ms5
	ConversionTime12ms7
	ConversionTime25ms
	ConversionTime50ms
	ConversionTime100ms
	ConversionTime200ms
	ConversionTime400ms
	ConversionTime800ms
)

var conversionTimeTable = enumTable[ConversionTime]{field: "conv_time", entries: []enumEntry[ConversionTime]{
	{ConversionTime600us, 0, "600us"},
	{ConversionTime1ms, 1, "1ms"},
	{ConversionTime1ms8, 2, "1.8ms"},
	{ConversionTime3ms4, 3, "3.4ms"},
	{ConversionTime6ms5, 4, "6.5ms"},
	{ConversionTime12ms7, 5, "12.7ms"},
	{ConversionTime25ms, 6, "25ms"},
	{ConversionTime50ms, 7, "50ms"},
	{ConversionTime100ms, 8, "100ms"},
	{ConversionTime200ms, 9, "200ms"},
	{ConversionTime400ms, 10, "400ms"},
	{ConversionTime800ms, 11, "800ms"},
}}

var conversionDurations = map[ConversionTime]time.Duration{
	ConversionTime600us: 600 * time.Microsecond,
	ConversionTime1ms:   time.Millisecond,
	ConversionTime1ms8:  1800 * time.Microsecond,
	ConversionTime3ms4:  3400 * time.Microsecond,
	ConversionTime6ms5:  6500 * time.Microsecond,
	ConversionTime12ms7: 12700 * time.Microsecond,
	ConversionTime25ms:  25 * time.Millisecond,
	ConversionTime50ms:  50 * time.Millisecond,
	ConversionTime100ms: 100 * time.Millisecond,
	ConversionTime200ms: 200 * time.Millisecond,
	ConversionTime400ms: 400 * time.Millisecond,
	ConversionTime800ms: 800 * time.Millisecond,
}

// Duration returns the nominal conversion time of one channel, 0 if unknown.
func (c ConversionTime) Duration() time.Duration { return conversionDurations[c] }

func (c ConversionTime) String() string               { return conversionTimeTable.name(c) }
func (c ConversionTime) MarshalText() ([]byte, error) { return []byte(c.String()), nil }
func (c *ConversionTime) UnmarshalText(text []byte) (err error) {
	*c, err = conversionTimeTable.parse(text)
	return err
}

type OperatingMode uint8

const (
	ModePowerDown OperatingMode = iota
	ModeForcedOneShot
	ModeRegularOneShot
	ModeContinuous
)

var operatingModeTable = enumTable[OperatingMode]{field: "operating_mode", entries: []enumEntry[OperatingMode]{
	{ModePowerDown, 0, "power-down"},
	{ModeForcedOneShot, 1, "forced-one-shot"},
	{ModeRegularOneShot, 2, "one-shot"},
	{ModeContinuous, 3, "continuous"},
}}

func (m OperatingMode) String() string               { return operatingModeTable.name(m) }
func (m OperatingMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }
func (m *OperatingMode) UnmarshalText(text []byte) (err error) {
	*m, err = operatingModeTable.parse(text)
	return err
}

// Latch selects how the threshold flags and the INT pin report.
type Latch uint8

const (
	TransparentHysteresis Latch = iota
	LatchedWindow
)

var latchTable = enumTable[Latch]{field: "latch", entries: []enumEntry[Latch]{
	{TransparentHysteresis, 0, "hysteresis"},
	{LatchedWindow, 1, "window"},
}}

func (l Latch) String() string               { return latchTable.name(l) }
func (l Latch) MarshalText() ([]byte, error) { return []byte(l.String()), nil }
func (l *Latch) UnmarshalText(text []byte) (err error) {
	*l, err = latchTable.parse(text)
	return err
}

type IntPolarity uint8

const (
	IntPolarityLow IntPolarity = iota
	IntPolarityHigh
)

var intPolarityTable = enumTable[IntPolarity]{field: "int_pol", entries: []enumEntry[IntPolarity]{
	{IntPolarityLow, 0, "low"},
	{IntPolarityHigh, 1, "high"},
}}

func (p IntPolarity) String() string               { return intPolarityTable.name(p) }
func (p IntPolarity) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
func (p *IntPolarity) UnmarshalText(text []byte) (err error) {
	*p, err = intPolarityTable.parse(text)
	return err
}

// FaultCount is the number of consecutive out-of-window results needed
// before the threshold mechanism fires.
type FaultCount uint8

const (
	FaultCountOne FaultCount = iota
	FaultCountTwo
	FaultCountFour
	FaultCountEight
)

var faultCountTable = enumTable[FaultCount]{field: "fault_count", entries: []enumEntry[FaultCount]{
	{FaultCountOne, 0, "1"},
	{FaultCountTwo, 1, "2"},
	{FaultCountFour, 2, "4"},
	{FaultCountEight, 3, "8"},
}}

func (f FaultCount) Count() int {
	switch f {
	case FaultCountOne:
		return 1
	case FaultCountTwo:
		return 2
	case FaultCountFour:
		return 4
	case FaultCountEight:
		return 8
	}
	return 0
}

func (f FaultCount) String() string               { return faultCountTable.name(f) }
func (f FaultCount) MarshalText() ([]byte, error) { return []byte(f.String()), nil }
func (f *FaultCount) UnmarshalText(text []byte) (err error) {
	*f, err = faultCountTable.parse(text)
	return err
}

type QuickWake uint8

const (
	QuickWakeDisabled QuickWake = iota
	QuickWakeEnabled
)

var quickWakeTable = enumTable[QuickWake]{field: "qwake", entries: []enumEntry[QuickWake]{
	{QuickWakeDisabled, 0, "disabled"},
	{QuickWakeEnabled, 1, "enabled"},
}}

func (q QuickWake) String() string               { return quickWakeTable.name(q) }
func (q QuickWake) MarshalText() ([]byte, error) { return []byte(q.String()), nil }
func (q *QuickWake) UnmarshalText(text []byte) (err error) {
	*q, err = quickWakeTable.parse(text)
	return err
}

// IntDirection configures the INT pin as an input (trigger for one-shot
// conversions) or an output (threshold/conversion-ready signalling).
type IntDirection uint8

const (
	IntDirectionInput IntDirection = iota
	IntDirectionOutput
)

var intDirectionTable = enumTable[IntDirection]{field: "int_dir", entries: []enumEntry[IntDirection]{
	{IntDirectionInput, 0, "input"},
	{IntDirectionOutput, 1, "output"},
}}

func (d IntDirection) String() string               { return intDirectionTable.name(d) }
func (d IntDirection) MarshalText() ([]byte, error) { return []byte(d.String()), nil }
func (d *IntDirection) UnmarshalText(text []byte) (err error) {
	*d, err = intDirectionTable.parse(text)
	return err
}

// BurstRead selects how measurements are read: one 32-bit transfer per
// channel when enabled, two 16-bit transfers when disabled.
type BurstRead uint8

const (
	BurstReadDisabled BurstRead = iota
	BurstReadEnabled
)

var burstReadTable = enumTable[BurstRead]{field: "burst_read", entries: []enumEntry[BurstRead]{
	{BurstReadDisabled, 0, "disabled"},
	{BurstReadEnabled, 1, "enabled"},
}}

func (b BurstRead) String() string               { return burstReadTable.name(b) }
func (b BurstRead) MarshalText() ([]byte, error) { return []byte(b.String()), nil }
func (b *BurstRead) UnmarshalText(text []byte) (err error) {
	*b, err = burstReadTable.parse(text)
	return err
}

// Choices lists the accepted text values of a named field, for help output.
func Choices(field string) []string {
	switch field {
	case "address":
		return addressTable.names()
	case "channel":
		return channelTable.names()
	case "conv_time":
		return conversionTimeTable.names()
	case "operating_mode":
		return operatingModeTable.names()
	case "latch":
		return latchTable.names()
	case "int_pol":
		return intPolarityTable.names()
	case "fault_count":
		return faultCountTable.names()
	case "qwake":
		return quickWakeTable.names()
	case "int_dir":
		return intDirectionTable.names()
	case "burst_read":
		return burstReadTable.names()
	case "range":
		out := []string{"auto"}
		for i := 0; i <= maxManualRange; i++ {
			out = append(out, strconv.Itoa(i))
		}
		return out
	}
	return nil
}

// ConfigA mirrors register 0x0A.
type ConfigA struct {
	QuickWake      QuickWake      `yaml:"qwake"`
	Range          Range          `yaml:"range"`
	ConversionTime ConversionTime `yaml:"conv_time"`
	OperatingMode  OperatingMode  `yaml:"operating_mode"`
	Latch          Latch          `yaml:"latch"`
	IntPolarity    IntPolarity    `yaml:"int_pol"`
	FaultCount     FaultCount     `yaml:"fault_count"`
}

// DefaultConfigA returns the power-on contents of register 0x0A.
func DefaultConfigA() ConfigA {
	return ConfigA{
		QuickWake:      QuickWakeDisabled,
		Range:          AutoRange,
		ConversionTime: ConversionTime100ms,
		OperatingMode:  ModePowerDown,
		Latch:          LatchedWindow,
		IntPolarity:    IntPolarityLow,
		FaultCount:     FaultCountOne,
	}
}

// ConfigB mirrors register 0x0B.
type ConfigB struct {
	// ThresholdChannel is the channel compared against the threshold registers.
	ThresholdChannel Channel      `yaml:"threshold_ch"`
	IntDirection     IntDirection `yaml:"int_dir"`
	// IntConfig is the raw 2-bit INT mechanism code; see the datasheet.
	IntConfig uint8     `yaml:"int_cfg"`
	BurstRead BurstRead `yaml:"burst_read"`
}

// DefaultConfigB returns the power-on contents of register 0x0B.
func DefaultConfigB() ConfigB {
	return ConfigB{
		ThresholdChannel: Ch0,
		IntDirection:     IntDirectionOutput,
		IntConfig:        0,
		BurstRead:        BurstReadEnabled,
	}
}

type Status struct {
	Overload  bool `yaml:"overload"`
	ConvReady bool `yaml:"conv_ready"`
	FlagHigh  bool `yaml:"flag_h"`
	FlagLow   bool `yaml:"flag_l"`
}

// DeviceID holds the two identification fields of register 0x11.
type DeviceID struct {
	Low  uint8  `yaml:"didl"`
	High uint16 `yaml:"didh"`
}

// Threshold is an exponent/result pair as stored in registers 0x08 and 0x09.
// Both fields are 4 bits wide.
type Threshold struct {
	Exponent uint8 `yaml:"exponent"`
	Result   uint8 `yaml:"result"`
}

// Sample is an undecoded measurement: the four fields as read from the
// measurement register(s) of one channel.
type Sample struct {
	Exponent uint8
	Mantissa uint32
	Counter  uint8
	CRC      uint8
}

// Reading is a CRC-verified measurement.
type Reading struct {
	// Value is the mantissa shifted left by the exponent.
	Value uint64 `yaml:"value"`
	// Counter is the rolling 4-bit conversion counter; an unchanged counter
	// between two reads means no new conversion completed.
	Counter uint8 `yaml:"counter"`
}
