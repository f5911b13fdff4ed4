package attribute

import (
	"context"

	"github.com/fekuna/omnipos-warehouse/internal/model"
)

type Repository interface {
	Create(ctx context.Context, def *model.AttributeDefinition) error
	FindByID(ctx context.Context, id string) (*model.AttributeDefinition, error)
	FindByName(ctx context.Context, name string) (*model.AttributeDefinition, error)
	FindAll(ctx context.Context) ([]model.AttributeDefinition, error)
	Update(ctx context.Context, def *model.AttributeDefinition) error
	Delete(ctx context.Context, id string) error

	// CountUsage reports how many product values reference the definition.
	CountUsage(ctx context.Context, id string) (int, error)

	UpsertValue(ctx context.Context, value *model.ProductAttribute) error
	DeleteValue(ctx context.Context, productID, attributeID string) error
	ProductExists(ctx context.Context, productID string) (bool, error)
}
