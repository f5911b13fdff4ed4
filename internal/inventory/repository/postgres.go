package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/inventory"
	"github.com/fekuna/omnipos-warehouse/internal/inventory/dto"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/database"
)

const logColumns = `l.id, l.product_id, l.action_type, l.quantity, l.quantity_before, l.quantity_after,
	l.reason, l.created_by, l.created_at, p.name AS product_name, p.sku AS product_sku`

type PGRepository struct {
	DB *sqlx.DB
	tx *database.TxManager
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db, tx: database.NewTxManager(db)}
}

func (r *PGRepository) AdjustStockWithMovement(ctx context.Context, productID string, mutate inventory.Mutation, entry *model.InventoryLog) error {
	return r.tx.WithTx(ctx, func(ctx context.Context) error {
		ext := database.Ext(ctx, r.DB)

		// 1. Lock and read current quantity
		query := `SELECT quantity FROM products WHERE id = ?`
		if database.IsPostgres(ext) {
			query += ` FOR UPDATE`
		}
		var current int
		if err := sqlx.GetContext(ctx, ext, &current, ext.Rebind(query), productID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NotFound("product")
			}
			return fmt.Errorf("failed to read quantity: %w", err)
		}

		next, err := mutate(current)
		if err != nil {
			return err
		}
		if next < 0 {
			return apperr.ErrInsufficientStock
		}

		// 2. Update product
		_, err = ext.ExecContext(ctx,
			ext.Rebind(`UPDATE products SET quantity = ?, updated_at = ? WHERE id = ?`),
			next, entry.CreatedAt, productID)
		if err != nil {
			return fmt.Errorf("failed to update quantity: %w", err)
		}

		// 3. Log movement
		entry.ProductID = productID
		entry.QuantityBefore = current
		entry.QuantityAfter = next
		entry.Quantity = next - current

		insertLogQuery := `
            INSERT INTO inventory_logs (
                id, product_id, action_type, quantity, quantity_before, quantity_after,
                reason, created_by, created_at
            )
            VALUES (
                :id, :product_id, :action_type, :quantity, :quantity_before, :quantity_after,
                :reason, :created_by, :created_at
            )
        `
		if _, err := sqlx.NamedExecContext(ctx, ext, insertLogQuery, entry); err != nil {
			return fmt.Errorf("failed to log movement: %w", err)
		}
		return nil
	})
}

func (r *PGRepository) ListLogs(ctx context.Context, f *dto.LogFilters) ([]model.InventoryLog, int, error) {
	ext := database.Ext(ctx, r.DB)
	items := []model.InventoryLog{}
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "l.product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.ActionType != "" {
		conditions = append(conditions, "l.action_type = :action_type")
		args["action_type"] = f.ActionType
	}
	if f.StartDate != nil {
		conditions = append(conditions, "l.created_at >= :start_date")
		args["start_date"] = f.StartDate.UTC()
	}
	if f.EndDate != nil {
		conditions = append(conditions, "l.created_at < :end_date")
		args["end_date"] = f.EndDate.UTC()
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	from := " FROM inventory_logs l JOIN products p ON p.id = l.product_id"
	if err := database.NamedGet(ctx, ext, &count, "SELECT count(*)"+from+whereClause, args); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + logColumns + from + whereClause + " ORDER BY l.created_at DESC, l.id DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	if err := database.NamedSelect(ctx, ext, &items, query, args); err != nil {
		return nil, 0, err
	}
	return items, count, nil
}

func (r *PGRepository) RecentLogs(ctx context.Context, limit int) ([]model.InventoryLog, error) {
	ext := database.Ext(ctx, r.DB)
	items := []model.InventoryLog{}
	query := fmt.Sprintf(`SELECT %s FROM inventory_logs l JOIN products p ON p.id = l.product_id
		ORDER BY l.created_at DESC, l.id DESC LIMIT %d`, logColumns, limit)
	if err := sqlx.SelectContext(ctx, ext, &items, query); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PGRepository) Totals(ctx context.Context) (*dto.Totals, error) {
	var t dto.Totals
	query := `
        SELECT count(*) AS total_products,
               COALESCE(SUM(quantity), 0) AS total_units,
               COALESCE(SUM(quantity * price_cost), 0) AS total_value
        FROM products
    `
	if err := sqlx.GetContext(ctx, database.Ext(ctx, r.DB), &t, query); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PGRepository) LowStock(ctx context.Context, threshold, page, pageSize int) ([]model.Product, int, error) {
	ext := database.Ext(ctx, r.DB)
	items := []model.Product{}
	var count int

	if err := sqlx.GetContext(ctx, ext, &count, ext.Rebind(`SELECT count(*) FROM products WHERE quantity < ?`), threshold); err != nil {
		return nil, 0, err
	}

	query := `SELECT * FROM products WHERE quantity < ? ORDER BY quantity ASC, name ASC`
	if pageSize > 0 {
		offset := (page - 1) * pageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", pageSize, offset)
	}
	if err := sqlx.SelectContext(ctx, ext, &items, ext.Rebind(query), threshold); err != nil {
		return nil, 0, err
	}
	return items, count, nil
}

func (r *PGRepository) MovementTotals(ctx context.Context, from, to time.Time) ([]dto.MonthlyRow, error) {
	ext := database.Ext(ctx, r.DB)
	rows := []dto.MonthlyRow{}
	query := `
        SELECT p.id AS product_id, p.name AS product_name, p.sku AS sku,
               COALESCE(SUM(CASE WHEN l.action_type = 'in' THEN l.quantity ELSE 0 END), 0) AS stock_in,
               COALESCE(SUM(CASE WHEN l.action_type = 'out' THEN -l.quantity ELSE 0 END), 0) AS stock_out,
               COALESCE(SUM(CASE WHEN l.action_type = 'adjust' THEN l.quantity ELSE 0 END), 0) AS adjustments,
               COALESCE(SUM(l.quantity), 0) AS net_change
        FROM inventory_logs l
        JOIN products p ON p.id = l.product_id
        WHERE l.created_at >= ? AND l.created_at < ?
        GROUP BY p.id, p.name, p.sku
        ORDER BY p.name
    `
	if err := sqlx.SelectContext(ctx, ext, &rows, ext.Rebind(query), from.UTC(), to.UTC()); err != nil {
		return nil, err
	}
	return rows, nil
}
