package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/database"
	"github.com/fekuna/omnipos-warehouse/internal/product/dto"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
        INSERT INTO products (
            id, name, sku, barcode, category, size, color, gender, material,
            price_cost, price_sell, quantity, location, created_at, updated_at
        )
        VALUES (
            :id, :name, :sku, :barcode, :category, :size, :color, :gender, :material,
            :price_cost, :price_sell, :quantity, :location, :created_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, database.Ext(ctx, r.DB), query, p)
	return err
}

func (r *PGRepository) findOne(ctx context.Context, column, value string) (*model.Product, error) {
	ext := database.Ext(ctx, r.DB)
	var product model.Product
	query := fmt.Sprintf(`SELECT * FROM products WHERE %s = ? LIMIT 1`, column)
	err := sqlx.GetContext(ctx, ext, &product, ext.Rebind(query), value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	return r.findOne(ctx, "id", id)
}

func (r *PGRepository) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	return r.findOne(ctx, "sku", sku)
}

func (r *PGRepository) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	return r.findOne(ctx, "barcode", barcode)
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	ext := database.Ext(ctx, r.DB)
	products := []model.Product{}
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.Category != "" {
		conditions = append(conditions, "category = :category")
		args["category"] = f.Category
	}
	if f.SearchQuery != "" {
		// LOWER/LIKE instead of ILIKE so the query also runs on SQLite
		conditions = append(conditions, "(LOWER(name) LIKE :search OR LOWER(sku) LIKE :search OR LOWER(COALESCE(barcode, '')) LIKE :search)")
		args["search"] = "%" + strings.ToLower(f.SearchQuery) + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	if err := database.NamedGet(ctx, ext, &count, "SELECT count(*) FROM products"+whereClause, args); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM products" + whereClause + " ORDER BY name ASC, sku ASC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	if err := database.NamedSelect(ctx, ext, &products, query, args); err != nil {
		return nil, 0, err
	}
	return products, count, nil
}

func (r *PGRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products
        SET name = :name,
            sku = :sku,
            barcode = :barcode,
            category = :category,
            size = :size,
            color = :color,
            gender = :gender,
            material = :material,
            price_cost = :price_cost,
            price_sell = :price_sell,
            location = :location,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, database.Ext(ctx, r.DB), query, p)
	return err
}

// Delete removes the product with its images, attribute values and ledger rows.
// Callers run it inside a transaction.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	ext := database.Ext(ctx, r.DB)
	for _, table := range []string{"product_attributes", "product_images", "inventory_logs"} {
		if _, err := ext.ExecContext(ctx, ext.Rebind("DELETE FROM "+table+" WHERE product_id = ?"), id); err != nil {
			return fmt.Errorf("failed to delete %s: %w", table, err)
		}
	}
	_, err := ext.ExecContext(ctx, ext.Rebind("DELETE FROM products WHERE id = ?"), id)
	return err
}

func (r *PGRepository) Categories(ctx context.Context) ([]string, error) {
	cats := []string{}
	err := sqlx.SelectContext(ctx, database.Ext(ctx, r.DB), &cats,
		`SELECT DISTINCT category FROM products WHERE category <> '' ORDER BY category`)
	return cats, err
}

func (r *PGRepository) isUnique(ctx context.Context, column, value, excludeID string) (bool, error) {
	ext := database.Ext(ctx, r.DB)
	var count int
	query := fmt.Sprintf(`SELECT count(*) FROM products WHERE %s = ?`, column)
	args := []interface{}{value}
	if excludeID != "" {
		query += ` AND id <> ?`
		args = append(args, excludeID)
	}

	if err := sqlx.GetContext(ctx, ext, &count, ext.Rebind(query), args...); err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *PGRepository) IsSKUUnique(ctx context.Context, sku, excludeID string) (bool, error) {
	return r.isUnique(ctx, "sku", sku, excludeID)
}

func (r *PGRepository) IsBarcodeUnique(ctx context.Context, barcode, excludeID string) (bool, error) {
	if barcode == "" {
		return true, nil
	}
	return r.isUnique(ctx, "barcode", barcode, excludeID)
}

func (r *PGRepository) ListImages(ctx context.Context, productID string) ([]model.ProductImage, error) {
	ext := database.Ext(ctx, r.DB)
	images := []model.ProductImage{}
	err := sqlx.SelectContext(ctx, ext, &images,
		ext.Rebind(`SELECT * FROM product_images WHERE product_id = ? ORDER BY is_featured DESC, created_at ASC, id ASC`), productID)
	return images, err
}

func (r *PGRepository) FindImage(ctx context.Context, id string) (*model.ProductImage, error) {
	ext := database.Ext(ctx, r.DB)
	var img model.ProductImage
	err := sqlx.GetContext(ctx, ext, &img, ext.Rebind(`SELECT * FROM product_images WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &img, nil
}

func (r *PGRepository) AddImage(ctx context.Context, img *model.ProductImage) error {
	query := `
        INSERT INTO product_images (id, product_id, image_url, is_featured, created_at)
        VALUES (:id, :product_id, :image_url, :is_featured, :created_at)
    `
	_, err := sqlx.NamedExecContext(ctx, database.Ext(ctx, r.DB), query, img)
	return err
}

// SetFeaturedImage leaves imageID as the only featured image of the product.
func (r *PGRepository) SetFeaturedImage(ctx context.Context, productID, imageID string) error {
	ext := database.Ext(ctx, r.DB)
	_, err := ext.ExecContext(ctx,
		ext.Rebind(`UPDATE product_images SET is_featured = (id = ?) WHERE product_id = ?`), imageID, productID)
	return err
}

func (r *PGRepository) DeleteImage(ctx context.Context, id string) error {
	ext := database.Ext(ctx, r.DB)
	_, err := ext.ExecContext(ctx, ext.Rebind(`DELETE FROM product_images WHERE id = ?`), id)
	return err
}

func (r *PGRepository) ListAttributeValues(ctx context.Context, productID string) ([]model.ProductAttributeValue, error) {
	ext := database.Ext(ctx, r.DB)
	values := []model.ProductAttributeValue{}
	query := `
        SELECT pa.attribute_id, d.name, d.type, pa.value
        FROM product_attributes pa
        JOIN attribute_definitions d ON d.id = pa.attribute_id
        WHERE pa.product_id = ?
        ORDER BY d.name
    `
	err := sqlx.SelectContext(ctx, ext, &values, ext.Rebind(query), productID)
	return values, err
}
