package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegsCmd_Stdout(t *testing.T) {
	var out bytes.Buffer
	cmd := RegsCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--output", "-"})
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2+9)
	assert.Contains(t, out.String(), "| config_a | 0x0A | 16 | RW | 0x3208 | 1 |")
	assert.Contains(t, out.String(), "| measurement_low | 0x01 | 16 | RO | 0x0000 | 4 (stride 2) |")
}
