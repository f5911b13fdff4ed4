package attribute

import (
	"context"

	"github.com/fekuna/omnipos-warehouse/internal/attribute/dto"
	"github.com/fekuna/omnipos-warehouse/internal/model"
)

type UseCase interface {
	Define(ctx context.Context, input *dto.DefineInput) (*model.AttributeDefinition, error)
	Update(ctx context.Context, input *dto.UpdateInput) (*model.AttributeDefinition, error)
	List(ctx context.Context) ([]model.AttributeDefinition, error)
	Get(ctx context.Context, id string) (*model.AttributeDefinition, error)
	Delete(ctx context.Context, id string) error

	// AssignValue upserts the product's value; an empty value removes it.
	AssignValue(ctx context.Context, productID, attributeID, value string) error
	// EnsureDefinition returns the named definition, creating an optional text one if absent.
	EnsureDefinition(ctx context.Context, name string) (*model.AttributeDefinition, error)
}
