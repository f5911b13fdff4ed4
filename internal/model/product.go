package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	Name      string          `db:"name" json:"name"`
	SKU       string          `db:"sku" json:"sku"`
	Barcode   *string         `db:"barcode" json:"barcode"` // Nullable, unique when set
	Category  string          `db:"category" json:"category"`
	Size      string          `db:"size" json:"size"`
	Color     string          `db:"color" json:"color"`
	Gender    string          `db:"gender" json:"gender"`
	Material  string          `db:"material" json:"material"`
	CostPrice decimal.Decimal `db:"price_cost" json:"cost_price"`
	SellPrice decimal.Decimal `db:"price_sell" json:"sell_price"`
	Quantity  int             `db:"quantity" json:"quantity"`
	Location  string          `db:"location" json:"location"`

	Images     []ProductImage          `db:"-" json:"images,omitempty"`
	Attributes []ProductAttributeValue `db:"-" json:"attributes,omitempty"`
}

// StockValue is quantity valued at cost.
func (p *Product) StockValue() decimal.Decimal {
	return p.CostPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

func (p *Product) FeaturedImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsFeatured {
			return &p.Images[i]
		}
	}
	return nil
}

type ProductImage struct {
	ID         string    `db:"id" json:"id"`
	ProductID  string    `db:"product_id" json:"product_id"`
	ImageURL   string    `db:"image_url" json:"image_url"`
	IsFeatured bool      `db:"is_featured" json:"is_featured"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
