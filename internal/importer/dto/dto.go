package dto

// Standard column headers. Any other header names an attribute.
const (
	ColSKU       = "SKU"
	ColName      = "Name"
	ColBarcode   = "Barcode"
	ColCategory  = "Category"
	ColSize      = "Size"
	ColColor     = "Color"
	ColGender    = "Gender"
	ColMaterial  = "Material"
	ColQuantity  = "Quantity"
	ColCostPrice = "Cost Price"
	ColSellPrice = "Selling Price"
	ColLocation  = "Location"
	ColImageURL  = "Image URL"
)

var StandardColumns = []string{
	ColSKU, ColName, ColBarcode, ColCategory, ColSize, ColColor, ColGender,
	ColMaterial, ColQuantity, ColCostPrice, ColSellPrice, ColLocation, ColImageURL,
}

func IsStandardColumn(name string) bool {
	for _, c := range StandardColumns {
		if c == name {
			return true
		}
	}
	return false
}

// Row is one data line of an import file. Values holds only the columns present in the header.
type Row struct {
	Line   int
	Values map[string]string
}

func (r Row) Get(col string) (string, bool) {
	v, ok := r.Values[col]
	return v, ok
}

type Result struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}
