package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithMessage_KeepsIdentity(t *testing.T) {
	err := ErrInsufficientStock.WithMessage("not enough inventory. current quantity: %d", 5)

	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.False(t, errors.Is(err, ErrNotEmpty))
	assert.Equal(t, "not enough inventory. current quantity: 5", err.Error())
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestKindOf_WrappedAndForeign(t *testing.T) {
	wrapped := fmt.Errorf("delete board: %w", ErrNotEmpty)
	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, ErrNotEmpty))

	assert.Equal(t, KindUpstream, KindOf(errors.New("connection refused")))
}

func TestUpstream_Unwraps(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Upstream(cause, "load board")

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.Contains(t, err.Error(), "dial tcp: timeout")

	e, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, KindUpstream, e.Kind)
}

func TestNotFound_Message(t *testing.T) {
	err := NotFound("product")
	assert.Equal(t, "product not found", err.Error())
	assert.Equal(t, "not_found", KindNotFound.String())
}
