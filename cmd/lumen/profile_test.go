package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/lumen/light/opt4048"
)

func defaultSettings() settings {
	return settings{
		ConfigA:       opt4048.DefaultConfigA(),
		ConfigB:       opt4048.DefaultConfigB(),
		ThresholdHigh: opt4048.Threshold{Exponent: 0xB, Result: 0xF},
	}
}

func TestProfile_OverlayKeepsMissingKeys(t *testing.T) {
	p, err := parseProfile([]byte(`
address: sda
config_a:
  operating_mode: continuous
  conv_time: 1.8ms
  range: 7
config_b:
  burst_read: disabled
threshold_low:
  exponent: 3
  result: 5
`))
	require.NoError(t, err)

	addr, ok, err := p.address()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, opt4048.AddressSda, addr)

	s := defaultSettings()
	require.NoError(t, p.overlay(&s))

	want := defaultSettings()
	want.ConfigA.OperatingMode = opt4048.ModeContinuous
	want.ConfigA.ConversionTime = opt4048.ConversionTime1ms8
	want.ConfigA.Range, err = opt4048.ManualRange(7)
	require.NoError(t, err)
	want.ConfigB.BurstRead = opt4048.BurstReadDisabled
	want.ThresholdLow = opt4048.Threshold{Exponent: 3, Result: 5}
	assert.Equal(t, want, s)
}

func TestProfile_Errors(t *testing.T) {
	_, err := parseProfile([]byte("config_c: {}\n"))
	assert.Error(t, err, "unknown section")

	p, err := parseProfile([]byte("config_a:\n  conv_time: 2ms\n"))
	require.NoError(t, err)
	s := defaultSettings()
	assert.ErrorContains(t, p.overlay(&s), "config_a")

	p, err = parseProfile([]byte("address: gpio\n"))
	require.NoError(t, err)
	_, _, err = p.address()
	assert.Error(t, err)
}

func TestSettings_Validate(t *testing.T) {
	assert.NoError(t, defaultSettings().validate())

	p, err := parseProfile([]byte("config_b:\n  int_cfg: 9\n"))
	require.NoError(t, err)
	s := defaultSettings()
	require.NoError(t, p.overlay(&s))
	assert.ErrorContains(t, s.validate(), "config_b")

	s = defaultSettings()
	s.ThresholdHigh.Exponent = 16
	assert.ErrorContains(t, s.validate(), "threshold_high")
}

func TestProfile_Empty(t *testing.T) {
	p, err := parseProfile(nil)
	require.NoError(t, err)
	_, ok, err := p.address()
	require.NoError(t, err)
	assert.False(t, ok)
	s := defaultSettings()
	require.NoError(t, p.overlay(&s))
	assert.Equal(t, defaultSettings(), s)
}

func TestParseThreshold(t *testing.T) {
	th, err := parseThreshold("3:5")
	require.NoError(t, err)
	assert.Equal(t, opt4048.Threshold{Exponent: 3, Result: 5}, th)

	for _, bad := range []string{"35", "a:1", "1:b", "300:1"} {
		_, err := parseThreshold(bad)
		assert.Error(t, err, bad)
	}
}

func configSetContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("set", flag.ContinueOnError)
	for _, f := range lightConfigSetCmd.Flags {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestApplyFlags(t *testing.T) {
	c := configSetContext(t, "--mode", "continuous", "--fault-count", "4", "--threshold-ch", "ch2", "--int-cfg", "3", "--threshold-high", "11:15")
	s := defaultSettings()
	require.NoError(t, applyFlags(c, &s))

	want := defaultSettings()
	want.ConfigA.OperatingMode = opt4048.ModeContinuous
	want.ConfigA.FaultCount = opt4048.FaultCountFour
	want.ConfigB.ThresholdChannel = opt4048.Ch2
	want.ConfigB.IntConfig = 3
	assert.Equal(t, want, s)
}

func TestApplyFlags_Invalid(t *testing.T) {
	s := defaultSettings()
	assert.ErrorContains(t, applyFlags(configSetContext(t, "--mode", "sleepy"), &s), "--mode")
	assert.ErrorContains(t, applyFlags(configSetContext(t, "--int-cfg", "4"), &s), "--int-cfg")
}

func TestFlatten(t *testing.T) {
	s := defaultSettings()
	pairs, err := flatten(s)
	require.NoError(t, err)
	assert.Equal(t, "continuous", lookup(mustFlatten(t, withMode(s, opt4048.ModeContinuous)), "config_a.operating_mode"))
	assert.Equal(t, "power-down", lookup(pairs, "config_a.operating_mode"))
	assert.Equal(t, "enabled", lookup(pairs, "config_b.burst_read"))
	assert.Equal(t, "15", lookup(pairs, "threshold_high.result"))
	assert.Equal(t, "", lookup(pairs, "config_a.nope"))
}

func withMode(s settings, m opt4048.OperatingMode) settings {
	s.ConfigA.OperatingMode = m
	return s
}

func mustFlatten(t *testing.T, s settings) [][2]string {
	t.Helper()
	pairs, err := flatten(s)
	require.NoError(t, err)
	return pairs
}

func TestIntAsserted(t *testing.T) {
	assert.True(t, intAsserted(false, opt4048.IntPolarityLow))
	assert.False(t, intAsserted(true, opt4048.IntPolarityLow))
	assert.True(t, intAsserted(true, opt4048.IntPolarityHigh))
	assert.False(t, intAsserted(false, opt4048.IntPolarityHigh))
}
