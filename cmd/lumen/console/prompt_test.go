package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchAnswer(t *testing.T) {
	constraints := []string{No, Yes}
	assert.Equal(t, No, matchAnswer("", constraints))
	assert.Equal(t, Yes, matchAnswer(" Y ", constraints))
	assert.Equal(t, No, matchAnswer("maybe", constraints))
}

func TestConfirm_AssumeYes(t *testing.T) {
	ok, err := Confirm("write?", true)
	assert.NoError(t, err)
	assert.True(t, ok)
}
