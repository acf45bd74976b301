package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("join: %w", Forbidden("group is locked"))

	assert.Equal(t, KindForbidden, KindOf(wrapped))
	assert.Equal(t, "group is locked", MessageOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("disk on fire")))
	assert.Equal(t, "internal error", MessageOf(errors.New("disk on fire")))
}

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NotFound("group not found: g1"))

	assert.ErrorIs(t, err, NotFound(""))
	assert.NotErrorIs(t, err, Conflict(""))
}

func TestUpstreamUnavailableKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := UpstreamUnavailable("place search failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}
