package inventory

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-warehouse/internal/inventory/dto"
	"github.com/fekuna/omnipos-warehouse/internal/model"
)

// Mutation maps the current on-hand quantity to the next one, or rejects the movement.
type Mutation func(current int) (next int, err error)

type Repository interface {
	// AdjustStockWithMovement reads the quantity, applies mutate, writes the new
	// quantity and appends entry in one transaction. entry's delta and
	// before/after fields are filled in from the mutation.
	AdjustStockWithMovement(ctx context.Context, productID string, mutate Mutation, entry *model.InventoryLog) error

	ListLogs(ctx context.Context, filters *dto.LogFilters) ([]model.InventoryLog, int, error)
	RecentLogs(ctx context.Context, limit int) ([]model.InventoryLog, error)

	// Reports
	Totals(ctx context.Context) (*dto.Totals, error)
	LowStock(ctx context.Context, threshold, page, pageSize int) ([]model.Product, int, error)
	MovementTotals(ctx context.Context, from, to time.Time) ([]dto.MonthlyRow, error)
}

// Cache provides the per-product lock and drops cached product listings
// whose quantities a movement made stale.
type Cache interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
	DeletePattern(ctx context.Context, pattern string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}
