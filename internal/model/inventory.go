package model

import "time"

const (
	ActionIn     = "in"
	ActionOut    = "out"
	ActionAdjust = "adjust"
)

func IsValidAction(a string) bool {
	return a == ActionIn || a == ActionOut || a == ActionAdjust
}

// InventoryLog is one append-only ledger entry. Quantity is the signed delta.
type InventoryLog struct {
	ID             string    `db:"id" json:"id"`
	ProductID      string    `db:"product_id" json:"product_id"`
	ActionType     string    `db:"action_type" json:"action_type"`
	Quantity       int       `db:"quantity" json:"quantity"`
	QuantityBefore int       `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  int       `db:"quantity_after" json:"quantity_after"`
	Reason         string    `db:"reason" json:"reason"`
	CreatedBy      *string   `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`

	// Joined from products on reads
	ProductName string `db:"product_name" json:"product_name,omitempty"`
	ProductSKU  string `db:"product_sku" json:"product_sku,omitempty"`
}
