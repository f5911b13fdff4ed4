package dto

import "github.com/shopspring/decimal"

type CreateProductInput struct {
	Name      string
	SKU       string // Generated when empty
	Barcode   string
	Category  string
	Size      string
	Color     string
	Gender    string
	Material  string
	CostPrice decimal.Decimal
	SellPrice decimal.Decimal
	Quantity  int // Recorded as an "in" movement
	Location  string
	ImageURLs []string
	// Attributes maps attribute definition id to value
	Attributes map[string]string
	UserID     string
}

// UpdateProductInput never carries quantity; stock changes go through the ledger.
type UpdateProductInput struct {
	ID         string
	Name       string
	SKU        string
	Barcode    string
	Category   string
	Size       string
	Color      string
	Gender     string
	Material   string
	CostPrice  decimal.Decimal
	SellPrice  decimal.Decimal
	Location   string
	Attributes map[string]string
}
