package mongodb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionTx_DisabledRunsDirectly(t *testing.T) {
	tx := NewSessionTx(nil, true)
	boom := errors.New("boom")

	calls := 0
	err := tx.WithTx(context.Background(), func(ctx context.Context) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)

	assert.NoError(t, NewSessionTx(nil, false).WithTx(context.Background(), func(context.Context) error { return nil }))
}
