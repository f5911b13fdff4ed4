package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/inventory"
	"github.com/fekuna/omnipos-warehouse/internal/inventory/dto"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/cache"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/database"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
)

const (
	dateLayout     = "2006-01-02"
	maxPageSize    = 100
	recentLogLimit = 10
	lockAttempts   = 3
	lockTTL        = 5 * time.Second
)

type Options struct {
	LowStockThreshold int
	PageSize          int
}

type inventoryUseCase struct {
	repo      inventory.Repository
	cache     inventory.Cache          // Optional
	publisher inventory.EventPublisher // Optional
	opts      Options
	logger    logger.ZapLogger
	now       func() time.Time
	lockWait  time.Duration
}

// NewInventoryUseCase builds the ledger. cache and publisher may be nil.
func NewInventoryUseCase(repo inventory.Repository, cache inventory.Cache, publisher inventory.EventPublisher, opts Options, log logger.ZapLogger) inventory.UseCase {
	if opts.LowStockThreshold <= 0 {
		opts.LowStockThreshold = 10
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	return &inventoryUseCase{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		opts:      opts,
		logger:    log,
		now:       time.Now,
		lockWait:  100 * time.Millisecond,
	}
}

func (uc *inventoryUseCase) StockIn(ctx context.Context, input *dto.StockInput) (*model.InventoryLog, error) {
	if err := validateStock(input.ProductID, input.Quantity, input.Reason); err != nil {
		return nil, err
	}
	q := input.Quantity
	return uc.record(ctx, model.ActionIn, input.ProductID, input.Reason, input.UserID, func(current int) (int, error) {
		return current + q, nil
	})
}

func (uc *inventoryUseCase) StockOut(ctx context.Context, input *dto.StockInput) (*model.InventoryLog, error) {
	if err := validateStock(input.ProductID, input.Quantity, input.Reason); err != nil {
		return nil, err
	}
	q := input.Quantity
	return uc.record(ctx, model.ActionOut, input.ProductID, input.Reason, input.UserID, func(current int) (int, error) {
		if q > current {
			return 0, apperr.ErrInsufficientStock.WithMessage("insufficient stock: %d available, %d requested", current, q)
		}
		return current - q, nil
	})
}

func (uc *inventoryUseCase) Adjust(ctx context.Context, input *dto.AdjustInput) (*model.InventoryLog, error) {
	if input.ProductID == "" {
		return nil, apperr.Validation("product_id is required")
	}
	if input.NewQuantity < 0 {
		return nil, apperr.Validation("new quantity cannot be negative")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, apperr.Validation("reason is required")
	}
	target := input.NewQuantity
	return uc.record(ctx, model.ActionAdjust, input.ProductID, input.Reason, input.UserID, func(int) (int, error) {
		return target, nil
	})
}

func validateStock(productID string, quantity int, reason string) error {
	if productID == "" {
		return apperr.Validation("product_id is required")
	}
	if quantity <= 0 {
		return apperr.Validation("quantity must be greater than zero")
	}
	if strings.TrimSpace(reason) == "" {
		return apperr.Validation("reason is required")
	}
	return nil
}

func (uc *inventoryUseCase) record(ctx context.Context, action, productID, reason, userID string, mutate inventory.Mutation) (*model.InventoryLog, error) {
	release, err := uc.acquire(ctx, productID)
	if err != nil {
		return nil, err
	}
	defer release()

	var createdBy *string
	if userID != "" {
		createdBy = &userID
	}
	entry := &model.InventoryLog{
		ID:         newLogID(),
		ActionType: action,
		Reason:     strings.TrimSpace(reason),
		CreatedBy:  createdBy,
		CreatedAt:  uc.now().UTC(),
	}

	if err := uc.repo.AdjustStockWithMovement(ctx, productID, mutate, entry); err != nil {
		if _, ok := apperr.As(err); !ok {
			uc.logger.Error("failed to record movement",
				zap.String("product_id", productID), zap.String("action", action), zap.Error(err))
			return nil, apperr.Upstream(err, "failed to record movement")
		}
		return nil, err
	}

	uc.logger.Info("stock movement recorded",
		zap.String("product_id", productID),
		zap.String("action", action),
		zap.Int("delta", entry.Quantity),
		zap.Int("quantity_after", entry.QuantityAfter))

	ev := *entry
	database.AfterCommit(ctx, func() {
		if uc.cache != nil {
			go uc.invalidateProductCache(context.Background())
		}
		if uc.publisher != nil {
			go uc.publish(context.Background(), &ev)
		}
	})
	return entry, nil
}

// newLogID returns a time-ordered id so logs sharing a timestamp still sort newest first.
func newLogID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// acquire takes the per-product lock when a cache is configured.
func (uc *inventoryUseCase) acquire(ctx context.Context, productID string) (func(), error) {
	if uc.cache == nil {
		return func() {}, nil
	}

	lockKey := fmt.Sprintf("lock:inventory:%s", productID)
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < lockAttempts; i++ {
		ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, lockTTL)
		if err != nil {
			uc.logger.Error("failed to acquire lock redis error", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		if i == lockAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, apperr.Upstream(ctx.Err(), "request cancelled while waiting for stock lock")
		case <-time.After(uc.lockWait):
		}
	}
	if !acquired {
		return nil, apperr.ErrBusy
	}

	return func() {
		if err := uc.cache.ReleaseLock(context.Background(), lockKey, lockValue); err != nil {
			uc.logger.Warn("failed to release lock", zap.String("key", lockKey), zap.Error(err))
		}
	}, nil
}

func (uc *inventoryUseCase) invalidateProductCache(ctx context.Context) {
	if err := uc.cache.DeletePattern(ctx, cache.ProductListPattern); err != nil {
		uc.logger.Warn("failed to invalidate product cache", zap.Error(err))
	}
}

func (uc *inventoryUseCase) publish(ctx context.Context, entry *model.InventoryLog) {
	ev := dto.MovementEvent{
		EventID:        uuid.New().String(),
		EventType:      "MovementRecorded",
		LogID:          entry.ID,
		ProductID:      entry.ProductID,
		ActionType:     entry.ActionType,
		Quantity:       entry.Quantity,
		QuantityBefore: entry.QuantityBefore,
		QuantityAfter:  entry.QuantityAfter,
		Reason:         entry.Reason,
		Timestamp:      entry.CreatedAt,
	}
	if entry.CreatedBy != nil {
		ev.CreatedBy = *entry.CreatedBy
	}
	data, err := json.Marshal(ev)
	if err != nil {
		uc.logger.Error("failed to marshal movement event", zap.Error(err))
		return
	}
	if err := uc.publisher.Publish(ctx, entry.ProductID, data); err != nil {
		uc.logger.Error("failed to publish movement event", zap.String("log_id", entry.ID), zap.Error(err))
	}
}

func (uc *inventoryUseCase) History(ctx context.Context, q *dto.HistoryQuery) ([]model.InventoryLog, int, error) {
	f := &dto.LogFilters{ProductID: q.ProductID}

	if q.ActionType != "" {
		if !model.IsValidAction(q.ActionType) {
			return nil, 0, apperr.Validation("invalid action_type %q", q.ActionType)
		}
		f.ActionType = q.ActionType
	}
	if q.StartDate != "" {
		start, err := time.ParseInLocation(dateLayout, q.StartDate, time.UTC)
		if err != nil {
			return nil, 0, apperr.Validation("invalid start_date %q, expected YYYY-MM-DD", q.StartDate)
		}
		f.StartDate = &start
	}
	if q.EndDate != "" {
		end, err := time.ParseInLocation(dateLayout, q.EndDate, time.UTC)
		if err != nil {
			return nil, 0, apperr.Validation("invalid end_date %q, expected YYYY-MM-DD", q.EndDate)
		}
		// Whole end day is included
		end = end.AddDate(0, 0, 1)
		f.EndDate = &end
	}
	f.Page, f.PageSize = uc.paging(q.Page, q.PageSize)

	items, count, err := uc.repo.ListLogs(ctx, f)
	if err != nil {
		uc.logger.Error("failed to list inventory logs", zap.Error(err))
		return nil, 0, apperr.Upstream(err, "failed to list inventory history")
	}
	return items, count, nil
}

func (uc *inventoryUseCase) Summary(ctx context.Context) (*dto.Summary, error) {
	totals, err := uc.repo.Totals(ctx)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to load totals")
	}
	low, _, err := uc.repo.LowStock(ctx, uc.opts.LowStockThreshold, 1, 0)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to load low stock")
	}
	recent, err := uc.repo.RecentLogs(ctx, recentLogLimit)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to load recent logs")
	}
	return &dto.Summary{
		Totals:            *totals,
		LowStockThreshold: uc.opts.LowStockThreshold,
		LowStock:          low,
		RecentLogs:        recent,
	}, nil
}

func (uc *inventoryUseCase) LowStock(ctx context.Context, threshold, page, pageSize int) ([]model.Product, int, error) {
	if threshold <= 0 {
		threshold = uc.opts.LowStockThreshold
	}
	page, pageSize = uc.paging(page, pageSize)
	items, count, err := uc.repo.LowStock(ctx, threshold, page, pageSize)
	if err != nil {
		return nil, 0, apperr.Upstream(err, "failed to load low stock")
	}
	return items, count, nil
}

func (uc *inventoryUseCase) MonthlyReport(ctx context.Context, year, month int) (*dto.MonthlyReport, error) {
	if month < 1 || month > 12 {
		return nil, apperr.Validation("month must be between 1 and 12")
	}
	if year < 2000 || year > 9999 {
		return nil, apperr.Validation("invalid year %d", year)
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	rows, err := uc.repo.MovementTotals(ctx, from, to)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to build monthly report")
	}

	report := &dto.MonthlyReport{Year: year, Month: month, Rows: rows}
	report.Totals.ProductName = "TOTAL"
	for _, r := range rows {
		report.Totals.StockIn += r.StockIn
		report.Totals.StockOut += r.StockOut
		report.Totals.Adjustments += r.Adjustments
		report.Totals.NetChange += r.NetChange
	}
	return report, nil
}

func (uc *inventoryUseCase) paging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = uc.opts.PageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
