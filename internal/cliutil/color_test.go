package cliutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relayforge/rsaforge/internal/rsaerr"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, int(rsaerr.ValueError)+1, ExitCode(rsaerr.New(rsaerr.ValueError, "bad")))
	assert.Equal(t, 1, ExitCode(assertErr{}))
}

type assertErr struct{}

func (assertErr) Error() string { return "plain error" }
