package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/database"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, def *model.AttributeDefinition) error {
	query := `
        INSERT INTO attribute_definitions (id, name, type, options, required, created_at)
        VALUES (:id, :name, :type, :options, :required, :created_at)
    `
	_, err := sqlx.NamedExecContext(ctx, database.Ext(ctx, r.DB), query, def)
	return err
}

func (r *PGRepository) get(ctx context.Context, query string, arg string) (*model.AttributeDefinition, error) {
	ext := database.Ext(ctx, r.DB)
	var def model.AttributeDefinition
	if err := sqlx.GetContext(ctx, ext, &def, ext.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &def, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.AttributeDefinition, error) {
	return r.get(ctx, `SELECT * FROM attribute_definitions WHERE id = ?`, id)
}

func (r *PGRepository) FindByName(ctx context.Context, name string) (*model.AttributeDefinition, error) {
	return r.get(ctx, `SELECT * FROM attribute_definitions WHERE name = ?`, name)
}

func (r *PGRepository) FindAll(ctx context.Context) ([]model.AttributeDefinition, error) {
	defs := []model.AttributeDefinition{}
	err := sqlx.SelectContext(ctx, database.Ext(ctx, r.DB), &defs, `SELECT * FROM attribute_definitions ORDER BY name`)
	return defs, err
}

func (r *PGRepository) Update(ctx context.Context, def *model.AttributeDefinition) error {
	query := `
        UPDATE attribute_definitions
        SET name = :name, options = :options, required = :required
        WHERE id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, database.Ext(ctx, r.DB), query, def)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	ext := database.Ext(ctx, r.DB)
	_, err := ext.ExecContext(ctx, ext.Rebind(`DELETE FROM attribute_definitions WHERE id = ?`), id)
	return err
}

func (r *PGRepository) CountUsage(ctx context.Context, id string) (int, error) {
	ext := database.Ext(ctx, r.DB)
	var n int
	err := sqlx.GetContext(ctx, ext, &n, ext.Rebind(`SELECT count(*) FROM product_attributes WHERE attribute_id = ?`), id)
	return n, err
}

func (r *PGRepository) UpsertValue(ctx context.Context, v *model.ProductAttribute) error {
	query := `
        INSERT INTO product_attributes (id, product_id, attribute_id, value)
        VALUES (:id, :product_id, :attribute_id, :value)
        ON CONFLICT (product_id, attribute_id)
        DO UPDATE SET value = EXCLUDED.value
    `
	_, err := sqlx.NamedExecContext(ctx, database.Ext(ctx, r.DB), query, v)
	return err
}

func (r *PGRepository) DeleteValue(ctx context.Context, productID, attributeID string) error {
	ext := database.Ext(ctx, r.DB)
	_, err := ext.ExecContext(ctx,
		ext.Rebind(`DELETE FROM product_attributes WHERE product_id = ? AND attribute_id = ?`), productID, attributeID)
	return err
}

func (r *PGRepository) ProductExists(ctx context.Context, productID string) (bool, error) {
	ext := database.Ext(ctx, r.DB)
	var n int
	err := sqlx.GetContext(ctx, ext, &n, ext.Rebind(`SELECT count(*) FROM products WHERE id = ?`), productID)
	return n > 0, err
}
