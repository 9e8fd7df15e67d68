package main

import (
	"bytes"
	"encoding"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/lumen/light/opt4048"
)

// profile is a device configuration file. Sections and keys left out keep the
// values currently programmed in the sensor.
type profile struct {
	Address       yaml.Node `yaml:"address"`
	ConfigA       yaml.Node `yaml:"config_a"`
	ConfigB       yaml.Node `yaml:"config_b"`
	ThresholdLow  yaml.Node `yaml:"threshold_low"`
	ThresholdHigh yaml.Node `yaml:"threshold_high"`
}

// settings is everything config set can program.
type settings struct {
	ConfigA       opt4048.ConfigA   `yaml:"config_a"`
	ConfigB       opt4048.ConfigB   `yaml:"config_b"`
	ThresholdLow  opt4048.Threshold `yaml:"threshold_low"`
	ThresholdHigh opt4048.Threshold `yaml:"threshold_high"`
}

// validate runs every register encoder so out of range values are reported
// before anything is shown or written.
func (s settings) validate() error {
	if _, err := opt4048.EncodeConfigA(s.ConfigA); err != nil {
		return fmt.Errorf("config_a: %w", err)
	}
	if _, err := opt4048.EncodeConfigB(s.ConfigB); err != nil {
		return fmt.Errorf("config_b: %w", err)
	}
	if _, err := opt4048.EncodeThreshold(opt4048.RegThresholdLow, s.ThresholdLow); err != nil {
		return fmt.Errorf("threshold_low: %w", err)
	}
	if _, err := opt4048.EncodeThreshold(opt4048.RegThresholdHigh, s.ThresholdHigh); err != nil {
		return fmt.Errorf("threshold_high: %w", err)
	}
	return nil
}

func loadProfile(path string) (*profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read profile: %w", err)
	}
	return parseProfile(data)
}

func parseProfile(data []byte) (*profile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var p profile
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("could not parse profile: %w", err)
	}
	return &p, nil
}

// overlay decodes the profile sections present onto s.
func (p *profile) overlay(s *settings) error {
	sections := []struct {
		name string
		node *yaml.Node
		into interface{}
	}{
		{"config_a", &p.ConfigA, &s.ConfigA},
		{"config_b", &p.ConfigB, &s.ConfigB},
		{"threshold_low", &p.ThresholdLow, &s.ThresholdLow},
		{"threshold_high", &p.ThresholdHigh, &s.ThresholdHigh},
	}
	for _, sec := range sections {
		if sec.node.Kind == 0 {
			continue
		}
		if err := sec.node.Decode(sec.into); err != nil {
			return fmt.Errorf("profile %s: %w", sec.name, err)
		}
	}
	return nil
}

// address returns the address named in the profile, if any.
func (p *profile) address() (opt4048.Address, bool, error) {
	var addr opt4048.Address
	if p.Address.Kind == 0 {
		return addr, false, nil
	}
	if err := p.Address.Decode(&addr); err != nil {
		return addr, false, fmt.Errorf("profile address: %w", err)
	}
	return addr, true, nil
}

// fieldFlags maps config set flags to the fields they overwrite.
func fieldFlags(s *settings) map[string]encoding.TextUnmarshaler {
	return map[string]encoding.TextUnmarshaler{
		"qwake":          &s.ConfigA.QuickWake,
		"range":          &s.ConfigA.Range,
		"conv-time":      &s.ConfigA.ConversionTime,
		"mode":           &s.ConfigA.OperatingMode,
		"latch":          &s.ConfigA.Latch,
		"int-pol":        &s.ConfigA.IntPolarity,
		"fault-count":    &s.ConfigA.FaultCount,
		"threshold-ch":   &s.ConfigB.ThresholdChannel,
		"int-dir":        &s.ConfigB.IntDirection,
		"burst":          &s.ConfigB.BurstRead,
		"threshold-low":  thresholdText{&s.ThresholdLow},
		"threshold-high": thresholdText{&s.ThresholdHigh},
	}
}

// applyFlags overwrites s with the field flags set on the command line.
func applyFlags(c *cli.Context, s *settings) error {
	for name, target := range fieldFlags(s) {
		if !c.IsSet(name) {
			continue
		}
		if err := target.UnmarshalText([]byte(c.String(name))); err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
	}
	if c.IsSet("int-cfg") {
		v := c.Uint("int-cfg")
		if v > 3 {
			return fmt.Errorf("--int-cfg: %d is not a 2-bit value", v)
		}
		s.ConfigB.IntConfig = uint8(v)
	}
	return nil
}

// thresholdText parses "exponent:result", e.g. "3:5".
type thresholdText struct {
	t *opt4048.Threshold
}

func (t thresholdText) UnmarshalText(text []byte) error {
	th, err := parseThreshold(string(text))
	if err != nil {
		return err
	}
	*t.t = th
	return nil
}

func parseThreshold(s string) (opt4048.Threshold, error) {
	e, r, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return opt4048.Threshold{}, fmt.Errorf("threshold %q is not exponent:result", s)
	}
	exp, err := strconv.ParseUint(e, 10, 8)
	if err != nil {
		return opt4048.Threshold{}, fmt.Errorf("threshold exponent %q: %w", e, err)
	}
	res, err := strconv.ParseUint(r, 10, 8)
	if err != nil {
		return opt4048.Threshold{}, fmt.Errorf("threshold result %q: %w", r, err)
	}
	return opt4048.Threshold{Exponent: uint8(exp), Result: uint8(res)}, nil
}
