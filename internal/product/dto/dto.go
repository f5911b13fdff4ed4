package dto

type ProductFilters struct {
	SearchQuery string // For name, sku, barcode search
	Category    string
	Page        int
	PageSize    int
}
