package product

import (
	"context"

	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/product/dto"
)

type Repository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]string, error)

	// Check SKU/Barcode uniqueness
	IsSKUUnique(ctx context.Context, sku, excludeID string) (bool, error)
	IsBarcodeUnique(ctx context.Context, barcode, excludeID string) (bool, error)

	// Images
	ListImages(ctx context.Context, productID string) ([]model.ProductImage, error)
	FindImage(ctx context.Context, id string) (*model.ProductImage, error)
	AddImage(ctx context.Context, image *model.ProductImage) error
	SetFeaturedImage(ctx context.Context, productID, imageID string) error
	DeleteImage(ctx context.Context, id string) error

	ListAttributeValues(ctx context.Context, productID string) ([]model.ProductAttributeValue, error)
}
