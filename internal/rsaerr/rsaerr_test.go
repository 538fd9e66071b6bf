package rsaerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAndIs(t *testing.T) {
	err := New(ValueError, "bad value")
	assert.True(t, Is(err, ValueError))
	assert.False(t, Is(err, GeneralError))
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrap(KeyFileIO, "could not read", cause)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "could not read")
}

func TestErrorsAs(t *testing.T) {
	err := New(BadBlockSize, "short block")
	var target *Error
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, BadBlockSize, target.Kind)
}
