package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRootCmd_Commands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"build", "changelog", "test", "lint", "integration-test", "regs"})
}
