// Package testutil holds helpers shared by repository and usecase tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-warehouse/internal/pkg/database"
)

// NewSQLite opens a migrated SQLite database in a temp dir.
//
// A single connection is used, so every query issued while a transaction is
// open must go through the transaction carried by the context.
func NewSQLite(t *testing.T) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "warehouse.db")
	db, err := sqlx.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	require.NoError(t, err)

	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

// SeedProduct inserts a bare product row and returns its id. The quantity is
// written directly, without a ledger entry.
func SeedProduct(t *testing.T, db *sqlx.DB, name, sku string, quantity int, cost string) string {
	t.Helper()

	id := uuid.New().String()
	now := time.Now().UTC()
	_, err := db.Exec(db.Rebind(`
		INSERT INTO products (id, name, sku, price_cost, price_sell, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		id, name, sku, cost, cost, quantity, now, now)
	require.NoError(t, err)
	return id
}
