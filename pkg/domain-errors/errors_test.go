package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := New(CodeNotFound, "request not found")
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
}

func TestHasCodeThroughWrapping(t *testing.T) {
	cause := New(CodeConflict, "domain name already registered")
	wrapped := fmt.Errorf("approve request: %w", cause)
	assert.True(t, HasCode(wrapped, CodeConflict))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodeUnavailable, "registry unreachable", cause)
	require.ErrorIs(t, err, cause)
	assert.Equal(t, CodeUnavailable, CodeOf(err))
	assert.Equal(t, "registry unreachable", MessageOf(err))
}

func TestMessageOfUncoded(t *testing.T) {
	assert.Equal(t, "internal error", MessageOf(errors.New("pq: deadlock detected")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("pq: deadlock detected")))
}
