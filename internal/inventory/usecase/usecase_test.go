package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/inventory/dto"
	"github.com/fekuna/omnipos-warehouse/internal/inventory/repository"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/cache"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/database"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
	"github.com/fekuna/omnipos-warehouse/internal/testutil"
)

type fakePublisher struct {
	mu   sync.Mutex
	msgs [][]byte
}

func (p *fakePublisher) Publish(_ context.Context, _ string, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, value)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.msgs)
}

func newUseCase(t *testing.T) (*inventoryUseCase, *sqlx.DB) {
	t.Helper()
	db := testutil.NewSQLite(t)
	uc := NewInventoryUseCase(repository.NewPGRepository(db), nil, nil, Options{}, logger.NewNop()).(*inventoryUseCase)
	return uc, db
}

func quantityOf(t *testing.T, db *sqlx.DB, productID string) int {
	t.Helper()
	var q int
	require.NoError(t, db.Get(&q, db.Rebind(`SELECT quantity FROM products WHERE id = ?`), productID))
	return q
}

func deltaSum(t *testing.T, db *sqlx.DB, productID string) int {
	t.Helper()
	var s int
	require.NoError(t, db.Get(&s, db.Rebind(`SELECT COALESCE(SUM(quantity), 0) FROM inventory_logs WHERE product_id = ?`), productID))
	return s
}

func TestLedger_DeltasSumToQuantity(t *testing.T) {
	uc, db := newUseCase(t)
	ctx := context.Background()
	id := testutil.SeedProduct(t, db, "Shirt", "SH-1", 0, "5.00")

	_, err := uc.StockIn(ctx, &dto.StockInput{ProductID: id, Quantity: 12, Reason: "delivery"})
	require.NoError(t, err)
	_, err = uc.StockOut(ctx, &dto.StockInput{ProductID: id, Quantity: 4, Reason: "sale"})
	require.NoError(t, err)
	_, err = uc.Adjust(ctx, &dto.AdjustInput{ProductID: id, NewQuantity: 10, Reason: "recount"})
	require.NoError(t, err)
	_, err = uc.StockOut(ctx, &dto.StockInput{ProductID: id, Quantity: 10, Reason: "sale"})
	require.NoError(t, err)
	_, err = uc.Adjust(ctx, &dto.AdjustInput{ProductID: id, NewQuantity: 0, Reason: "no-op recount"})
	require.NoError(t, err)

	assert.Equal(t, 0, quantityOf(t, db, id))
	assert.Equal(t, quantityOf(t, db, id), deltaSum(t, db, id))

	logs, total, err := uc.History(ctx, &dto.HistoryQuery{ProductID: id})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	// Zero-delta adjust is still logged
	assert.Equal(t, model.ActionAdjust, logs[0].ActionType)
	assert.Equal(t, 0, logs[0].Quantity)
}

func TestStockOut_InsufficientLeavesQuantity(t *testing.T) {
	uc, db := newUseCase(t)
	ctx := context.Background()
	id := testutil.SeedProduct(t, db, "Shirt", "SH-1", 5, "5.00")

	_, err := uc.StockOut(ctx, &dto.StockInput{ProductID: id, Quantity: 10, Reason: "sale"})
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	assert.Equal(t, 5, quantityOf(t, db, id))
	assert.Equal(t, 0, deltaSum(t, db, id))
}

func TestAdjust_LogsSignedDelta(t *testing.T) {
	uc, db := newUseCase(t)
	ctx := context.Background()
	id := testutil.SeedProduct(t, db, "Shirt", "SH-1", 7, "5.00")

	entry, err := uc.Adjust(ctx, &dto.AdjustInput{ProductID: id, NewQuantity: 3, Reason: "damaged", UserID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, -4, entry.Quantity)
	assert.Equal(t, 7, entry.QuantityBefore)
	assert.Equal(t, 3, entry.QuantityAfter)
	require.NotNil(t, entry.CreatedBy)
	assert.Equal(t, "u1", *entry.CreatedBy)
	assert.Equal(t, 3, quantityOf(t, db, id))
}

func TestMovements_Validation(t *testing.T) {
	uc, db := newUseCase(t)
	ctx := context.Background()
	id := testutil.SeedProduct(t, db, "Shirt", "SH-1", 7, "5.00")

	_, err := uc.StockIn(ctx, &dto.StockInput{ProductID: id, Quantity: 0, Reason: "x"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = uc.StockOut(ctx, &dto.StockInput{ProductID: id, Quantity: -1, Reason: "x"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = uc.StockIn(ctx, &dto.StockInput{ProductID: id, Quantity: 1, Reason: "   "})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = uc.Adjust(ctx, &dto.AdjustInput{ProductID: id, NewQuantity: -1, Reason: "x"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = uc.StockIn(ctx, &dto.StockInput{ProductID: "missing", Quantity: 1, Reason: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.Equal(t, 7, quantityOf(t, db, id))
}

func TestHistory_DateFilters(t *testing.T) {
	uc, db := newUseCase(t)
	ctx := context.Background()
	id := testutil.SeedProduct(t, db, "Shirt", "SH-1", 0, "5.00")

	for _, ts := range []time.Time{
		time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 2, 23, 59, 0, 0, time.UTC),
		time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
	} {
		ts := ts
		uc.now = func() time.Time { return ts }
		_, err := uc.StockIn(ctx, &dto.StockInput{ProductID: id, Quantity: 1, Reason: "delivery"})
		require.NoError(t, err)
	}

	logs, total, err := uc.History(ctx, &dto.HistoryQuery{StartDate: "2024-03-02", EndDate: "2024-03-02"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, logs, 1)
	assert.Equal(t, "Shirt", logs[0].ProductName)

	logs, total, err = uc.History(ctx, &dto.HistoryQuery{EndDate: "2024-03-02"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.True(t, logs[0].CreatedAt.After(logs[1].CreatedAt), "newest first")

	_, _, err = uc.History(ctx, &dto.HistoryQuery{StartDate: "03/01/2024"})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "start_date")

	_, _, err = uc.History(ctx, &dto.HistoryQuery{EndDate: "2024-13-01"})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "end_date")

	_, _, err = uc.History(ctx, &dto.HistoryQuery{ActionType: "transfer"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	logs, total, err = uc.History(ctx, &dto.HistoryQuery{ActionType: model.ActionIn, Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, logs, 1)
}

func TestSummaryAndReports(t *testing.T) {
	uc, db := newUseCase(t)
	ctx := context.Background()
	a := testutil.SeedProduct(t, db, "Alpha", "A-1", 0, "2.50")
	b := testutil.SeedProduct(t, db, "Beta", "B-1", 0, "1.00")

	uc.now = func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC) }
	_, err := uc.StockIn(ctx, &dto.StockInput{ProductID: a, Quantity: 20, Reason: "delivery"})
	require.NoError(t, err)
	_, err = uc.StockOut(ctx, &dto.StockInput{ProductID: a, Quantity: 6, Reason: "sale"})
	require.NoError(t, err)
	_, err = uc.StockIn(ctx, &dto.StockInput{ProductID: b, Quantity: 5, Reason: "delivery"})
	require.NoError(t, err)
	_, err = uc.Adjust(ctx, &dto.AdjustInput{ProductID: b, NewQuantity: 3, Reason: "damaged"})
	require.NoError(t, err)

	uc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	_, err = uc.StockIn(ctx, &dto.StockInput{ProductID: b, Quantity: 1, Reason: "next month"})
	require.NoError(t, err)

	s, err := uc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, s.TotalProducts)
	assert.Equal(t, 18, s.TotalUnits)
	assert.True(t, decimal.RequireFromString("39").Equal(s.TotalValue), s.TotalValue.String())
	assert.Equal(t, 10, s.LowStockThreshold)
	require.Len(t, s.LowStock, 1)
	assert.Equal(t, b, s.LowStock[0].ID)
	assert.Len(t, s.RecentLogs, 5)

	low, total, err := uc.LowStock(ctx, 20, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, b, low[0].ID, "ascending by quantity")

	report, err := uc.MonthlyReport(ctx, 2024, 5)
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, dto.MonthlyRow{ProductID: a, ProductName: "Alpha", SKU: "A-1", StockIn: 20, StockOut: 6, NetChange: 14}, report.Rows[0])
	assert.Equal(t, dto.MonthlyRow{ProductID: b, ProductName: "Beta", SKU: "B-1", StockIn: 5, Adjustments: -2, NetChange: 3}, report.Rows[1])
	assert.Equal(t, 25, report.Totals.StockIn)
	assert.Equal(t, 17, report.Totals.NetChange)

	_, err = uc.MonthlyReport(ctx, 2024, 13)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRecord_BusyWhenLockHeld(t *testing.T) {
	db := testutil.NewSQLite(t)
	mr := miniredis.RunT(t)
	rc, err := cache.NewRedisClient(&cache.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { rc.Close() })

	uc := NewInventoryUseCase(repository.NewPGRepository(db), rc, nil, Options{}, logger.NewNop()).(*inventoryUseCase)
	uc.lockWait = time.Millisecond
	ctx := context.Background()
	id := testutil.SeedProduct(t, db, "Shirt", "SH-1", 1, "5.00")

	_, err = uc.StockIn(ctx, &dto.StockInput{ProductID: id, Quantity: 1, Reason: "delivery"})
	require.NoError(t, err)
	assert.False(t, mr.Exists("lock:inventory:"+id), "lock released after movement")

	ok, err := rc.AcquireLock(ctx, "lock:inventory:"+id, "someone-else", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = uc.StockIn(ctx, &dto.StockInput{ProductID: id, Quantity: 1, Reason: "delivery"})
	assert.ErrorIs(t, err, apperr.ErrBusy)
	assert.Equal(t, 2, quantityOf(t, db, id))
}

func TestRecord_LockRetries(t *testing.T) {
	db := testutil.NewSQLite(t)
	mr := miniredis.RunT(t)
	rc, err := cache.NewRedisClient(&cache.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { rc.Close() })

	uc := NewInventoryUseCase(repository.NewPGRepository(db), rc, nil, Options{}, logger.NewNop()).(*inventoryUseCase)
	id := testutil.SeedProduct(t, db, "Shirt", "SH-1", 1, "5.00")
	ok, err := rc.AcquireLock(context.Background(), "lock:inventory:"+id, "someone-else", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// Waits only between attempts, never after the last one
	uc.lockWait = 150 * time.Millisecond
	start := time.Now()
	_, err = uc.StockIn(context.Background(), &dto.StockInput{ProductID: id, Quantity: 1, Reason: "delivery"})
	assert.ErrorIs(t, err, apperr.ErrBusy)
	assert.Less(t, time.Since(start), time.Duration(lockAttempts)*uc.lockWait)

	uc.lockWait = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start = time.Now()
	_, err = uc.StockIn(ctx, &dto.StockInput{ProductID: id, Quantity: 1, Reason: "delivery"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, 1, quantityOf(t, db, id))
}

func TestHistory_NewestFirstWithinOneTimestamp(t *testing.T) {
	uc, db := newUseCase(t)
	frozen := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return frozen }
	ctx := context.Background()
	id := testutil.SeedProduct(t, db, "Shirt", "SH-1", 0, "5.00")

	for q := 1; q <= 5; q++ {
		_, err := uc.StockIn(ctx, &dto.StockInput{ProductID: id, Quantity: q, Reason: "delivery"})
		require.NoError(t, err)
	}

	logs, total, err := uc.History(ctx, &dto.HistoryQuery{ProductID: id})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	got := make([]int, 0, len(logs))
	for _, l := range logs {
		got = append(got, l.Quantity)
	}
	assert.Equal(t, []int{5, 4, 3, 2, 1}, got)
}

func TestRecord_PublishesAfterCommit(t *testing.T) {
	db := testutil.NewSQLite(t)
	pub := &fakePublisher{}
	uc := NewInventoryUseCase(repository.NewPGRepository(db), nil, pub, Options{}, logger.NewNop())
	tm := database.NewTxManager(db)
	ctx := context.Background()
	id := testutil.SeedProduct(t, db, "Shirt", "SH-1", 0, "5.00")

	_, err := uc.StockIn(ctx, &dto.StockInput{ProductID: id, Quantity: 3, Reason: "delivery"})
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 5*time.Millisecond)

	// Rolled back outer transaction publishes nothing
	_ = tm.WithTx(ctx, func(ctx context.Context) error {
		_, err := uc.StockIn(ctx, &dto.StockInput{ProductID: id, Quantity: 3, Reason: "delivery"})
		require.NoError(t, err)
		return apperr.Validation("abort")
	})
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, pub.count())
	assert.Equal(t, 3, quantityOf(t, db, id))

	pub.mu.Lock()
	var ev dto.MovementEvent
	require.NoError(t, json.Unmarshal(pub.msgs[0], &ev))
	pub.mu.Unlock()
	assert.Equal(t, "MovementRecorded", ev.EventType)
	assert.Equal(t, 3, ev.Quantity)
}
