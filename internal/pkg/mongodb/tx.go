package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// SessionTx runs work inside a multi-document transaction when enabled.
// Disabled, it calls fn directly; standalone servers reject transactions.
type SessionTx struct {
	client  *mongo.Client
	enabled bool
}

func NewSessionTx(client *mongo.Client, enabled bool) *SessionTx {
	return &SessionTx{client: client, enabled: enabled}
}

func (t *SessionTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled || t.client == nil {
		return fn(ctx)
	}
	// Already inside a session
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	sess, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
