package dto

type StockInput struct {
	ProductID string
	Quantity  int
	Reason    string
	UserID    string
}

type AdjustInput struct {
	ProductID   string
	NewQuantity int
	Reason      string
	UserID      string
}

// HistoryQuery carries raw filter values; dates are YYYY-MM-DD.
type HistoryQuery struct {
	ProductID  string
	ActionType string
	StartDate  string
	EndDate    string
	Page       int
	PageSize   int
}
