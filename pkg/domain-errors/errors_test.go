package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "Error validating passcode")

	require.ErrorIs(t, err, cause)
	assert.True(t, HasCode(err, CodeInternal))
	assert.Equal(t, "Error validating passcode", MessageOf(err, "fallback"))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHasCodeThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("step failed: %w", New(CodeNotFound, "Invalid registration passcode"))

	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeInternal))
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func TestUnclassifiedErrors(t *testing.T) {
	err := errors.New("boom")

	assert.False(t, IsClassified(err))
	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.Equal(t, "Registration failed", MessageOf(err, "Registration failed"))
	assert.False(t, HasCode(nil, CodeInternal))
}
