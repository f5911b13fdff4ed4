package database

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// NamedGet compiles a :named query for the executor's bindvar style and scans one row.
func NamedGet(ctx context.Context, e sqlx.ExtContext, dest interface{}, query string, arg interface{}) error {
	q, args, err := sqlx.Named(query, arg)
	if err != nil {
		return err
	}
	return sqlx.GetContext(ctx, e, dest, e.Rebind(q), args...)
}

// NamedSelect is NamedGet for many rows.
func NamedSelect(ctx context.Context, e sqlx.ExtContext, dest interface{}, query string, arg interface{}) error {
	q, args, err := sqlx.Named(query, arg)
	if err != nil {
		return err
	}
	return sqlx.SelectContext(ctx, e, dest, e.Rebind(q), args...)
}
