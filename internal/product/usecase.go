package product

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/search"
	"github.com/fekuna/omnipos-warehouse/internal/product/dto"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	GetBySKU(ctx context.Context, sku string) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	Categories(ctx context.Context) ([]string, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	AddImage(ctx context.Context, productID, imageURL string) (*model.ProductImage, error)
	SetFeaturedImage(ctx context.Context, productID, imageID string) error
	DeleteImage(ctx context.Context, productID, imageID string) error
}

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePattern(ctx context.Context, pattern string) error
}

type Searcher interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc interface{}) error
	Delete(ctx context.Context, index, id string) error
	Search(ctx context.Context, index string, query map[string]interface{}) (*search.SearchResponse, error)
}

// FileRemover deletes stored image files.
type FileRemover interface {
	Remove(url string) error
}

// AttributeAssigner binds attribute values to products.
type AttributeAssigner interface {
	AssignValue(ctx context.Context, productID, attributeID, value string) error
}
