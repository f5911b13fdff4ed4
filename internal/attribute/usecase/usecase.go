package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/attribute"
	"github.com/fekuna/omnipos-warehouse/internal/attribute/dto"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
)

type attributeUseCase struct {
	repo   attribute.Repository
	logger logger.ZapLogger
	now    func() time.Time
}

func NewAttributeUseCase(repo attribute.Repository, log logger.ZapLogger) attribute.UseCase {
	return &attributeUseCase{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

func (uc *attributeUseCase) Define(ctx context.Context, input *dto.DefineInput) (*model.AttributeDefinition, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validation("attribute name is required")
	}
	if !model.IsValidAttributeType(input.Type) {
		return nil, apperr.Validation("invalid attribute type %q", input.Type)
	}
	options, err := normalizeOptions(input.Type, input.Options)
	if err != nil {
		return nil, err
	}
	if err := uc.checkName(ctx, name, ""); err != nil {
		return nil, err
	}

	def := &model.AttributeDefinition{
		ID:        uuid.New().String(),
		Name:      name,
		Type:      input.Type,
		Options:   options,
		Required:  input.Required,
		CreatedAt: uc.now().UTC(),
	}
	if err := uc.repo.Create(ctx, def); err != nil {
		uc.logger.Error("failed to create attribute", zap.Error(err))
		return nil, apperr.Upstream(err, "failed to create attribute")
	}
	return def, nil
}

func (uc *attributeUseCase) Update(ctx context.Context, input *dto.UpdateInput) (*model.AttributeDefinition, error) {
	def, err := uc.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validation("attribute name is required")
	}
	options, err := normalizeOptions(def.Type, input.Options)
	if err != nil {
		return nil, err
	}
	if name != def.Name {
		if err := uc.checkName(ctx, name, def.ID); err != nil {
			return nil, err
		}
	}

	def.Name = name
	def.Options = options
	def.Required = input.Required
	if err := uc.repo.Update(ctx, def); err != nil {
		uc.logger.Error("failed to update attribute", zap.Error(err))
		return nil, apperr.Upstream(err, "failed to update attribute")
	}
	return def, nil
}

func (uc *attributeUseCase) checkName(ctx context.Context, name, excludeID string) error {
	existing, err := uc.repo.FindByName(ctx, name)
	if err != nil {
		return apperr.Upstream(err, "failed to check attribute name")
	}
	if existing != nil && existing.ID != excludeID {
		return apperr.ErrDuplicateName.WithMessage("attribute %q already exists", name)
	}
	return nil
}

// normalizeOptions trims dropdown options and drops empties. Other types carry none.
func normalizeOptions(kind string, raw []string) (model.StringList, error) {
	if kind != model.AttributeDropdown {
		return model.StringList{}, nil
	}
	out := model.StringList{}
	for _, o := range raw {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return nil, apperr.Validation("dropdown attributes need at least one option")
	}
	return out, nil
}

func (uc *attributeUseCase) List(ctx context.Context) ([]model.AttributeDefinition, error) {
	defs, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to list attributes")
	}
	return defs, nil
}

func (uc *attributeUseCase) Get(ctx context.Context, id string) (*model.AttributeDefinition, error) {
	def, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to load attribute")
	}
	if def == nil {
		return nil, apperr.NotFound("attribute")
	}
	return def, nil
}

func (uc *attributeUseCase) Delete(ctx context.Context, id string) error {
	def, err := uc.Get(ctx, id)
	if err != nil {
		return err
	}
	n, err := uc.repo.CountUsage(ctx, id)
	if err != nil {
		return apperr.Upstream(err, "failed to check attribute usage")
	}
	if n > 0 {
		return apperr.ErrInUse.WithMessage("attribute %q is used by %d product(s)", def.Name, n)
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		uc.logger.Error("failed to delete attribute", zap.Error(err))
		return apperr.Upstream(err, "failed to delete attribute")
	}
	return nil
}

func (uc *attributeUseCase) AssignValue(ctx context.Context, productID, attributeID, value string) error {
	exists, err := uc.repo.ProductExists(ctx, productID)
	if err != nil {
		return apperr.Upstream(err, "failed to load product")
	}
	if !exists {
		return apperr.NotFound("product")
	}
	if _, err := uc.Get(ctx, attributeID); err != nil {
		return err
	}

	value = strings.TrimSpace(value)
	if value == "" {
		if err := uc.repo.DeleteValue(ctx, productID, attributeID); err != nil {
			return apperr.Upstream(err, "failed to clear attribute value")
		}
		return nil
	}

	err = uc.repo.UpsertValue(ctx, &model.ProductAttribute{
		ID:          uuid.New().String(),
		ProductID:   productID,
		AttributeID: attributeID,
		Value:       value,
	})
	if err != nil {
		return apperr.Upstream(err, "failed to save attribute value")
	}
	return nil
}

func (uc *attributeUseCase) EnsureDefinition(ctx context.Context, name string) (*model.AttributeDefinition, error) {
	name = strings.TrimSpace(name)
	existing, err := uc.repo.FindByName(ctx, name)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to load attribute")
	}
	if existing != nil {
		return existing, nil
	}
	return uc.Define(ctx, &dto.DefineInput{Name: name, Type: model.AttributeText})
}
