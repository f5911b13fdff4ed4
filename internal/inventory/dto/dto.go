package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fekuna/omnipos-warehouse/internal/model"
)

type LogFilters struct {
	ProductID  string
	ActionType string
	StartDate  *time.Time // Inclusive
	EndDate    *time.Time // Exclusive
	Page       int
	PageSize   int
}

type Totals struct {
	TotalProducts int             `db:"total_products" json:"total_products"`
	TotalUnits    int             `db:"total_units" json:"total_units"`
	TotalValue    decimal.Decimal `db:"total_value" json:"total_value"`
}

type Summary struct {
	Totals
	LowStockThreshold int                  `json:"low_stock_threshold"`
	LowStock          []model.Product      `json:"low_stock"`
	RecentLogs        []model.InventoryLog `json:"recent_logs"`
}

// MonthlyRow aggregates one product's movements. StockIn and StockOut are
// positive unit counts; Adjustments is signed.
type MonthlyRow struct {
	ProductID   string `db:"product_id" json:"product_id,omitempty"`
	ProductName string `db:"product_name" json:"product_name"`
	SKU         string `db:"sku" json:"sku,omitempty"`
	StockIn     int    `db:"stock_in" json:"stock_in"`
	StockOut    int    `db:"stock_out" json:"stock_out"`
	Adjustments int    `db:"adjustments" json:"adjustments"`
	NetChange   int    `db:"net_change" json:"net_change"`
}

type MonthlyReport struct {
	Year   int          `json:"year"`
	Month  int          `json:"month"`
	Rows   []MonthlyRow `json:"rows"`
	Totals MonthlyRow   `json:"totals"`
}

// MovementEvent is published after a ledger entry commits.
type MovementEvent struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	LogID          string    `json:"log_id"`
	ProductID      string    `json:"product_id"`
	ActionType     string    `json:"action_type"`
	Quantity       int       `json:"quantity"`
	QuantityBefore int       `json:"quantity_before"`
	QuantityAfter  int       `json:"quantity_after"`
	Reason         string    `json:"reason"`
	CreatedBy      string    `json:"created_by,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}
