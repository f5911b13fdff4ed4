package inventory

import (
	"context"

	"github.com/fekuna/omnipos-warehouse/internal/inventory/dto"
	"github.com/fekuna/omnipos-warehouse/internal/model"
)

type UseCase interface {
	StockIn(ctx context.Context, input *dto.StockInput) (*model.InventoryLog, error)
	StockOut(ctx context.Context, input *dto.StockInput) (*model.InventoryLog, error)
	Adjust(ctx context.Context, input *dto.AdjustInput) (*model.InventoryLog, error)

	History(ctx context.Context, query *dto.HistoryQuery) ([]model.InventoryLog, int, error)
	Summary(ctx context.Context) (*dto.Summary, error)
	LowStock(ctx context.Context, threshold, page, pageSize int) ([]model.Product, int, error)
	MonthlyReport(ctx context.Context, year, month int) (*dto.MonthlyReport, error)
}
