package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/attribute"
	"github.com/fekuna/omnipos-warehouse/internal/importer"
	"github.com/fekuna/omnipos-warehouse/internal/importer/dto"
	"github.com/fekuna/omnipos-warehouse/internal/inventory"
	invdto "github.com/fekuna/omnipos-warehouse/internal/inventory/dto"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/database"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
	"github.com/fekuna/omnipos-warehouse/internal/product"
	productdto "github.com/fekuna/omnipos-warehouse/internal/product/dto"
)

const importReason = "bulk import"

type importUseCase struct {
	tx       database.Transactor
	products product.UseCase
	attrs    attribute.UseCase
	ledger   inventory.UseCase
	logger   logger.ZapLogger
}

func NewImportUseCase(tx database.Transactor, products product.UseCase, attrs attribute.UseCase, ledger inventory.UseCase, log logger.ZapLogger) importer.UseCase {
	return &importUseCase{
		tx:       tx,
		products: products,
		attrs:    attrs,
		ledger:   ledger,
		logger:   log,
	}
}

func (uc *importUseCase) BulkImport(ctx context.Context, rows []dto.Row, userID string) (*dto.Result, error) {
	res := &dto.Result{Errors: []string{}}
	for _, row := range rows {
		var created bool
		err := uc.tx.WithTx(ctx, func(ctx context.Context) error {
			var err error
			created, err = uc.importRow(ctx, row, userID)
			return err
		})
		if err != nil {
			sku, _ := row.Get(dto.ColSKU)
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("row %d (SKU %q): %s", row.Line, strings.TrimSpace(sku), message(err)))
			if apperr.KindOf(err) == apperr.KindUpstream {
				uc.logger.Error("import row failed", zap.Int("line", row.Line), zap.Error(err))
			}
			continue
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}

	uc.logger.Info("bulk import finished",
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

func message(err error) string {
	if e, ok := apperr.As(err); ok {
		return e.Message
	}
	return err.Error()
}

// importRow updates the product matching the row's SKU, or creates it.
func (uc *importUseCase) importRow(ctx context.Context, row dto.Row, userID string) (bool, error) {
	sku := field(row, dto.ColSKU)
	if sku == "" {
		return false, apperr.Validation("SKU is required")
	}
	name := field(row, dto.ColName)
	if name == "" {
		return false, apperr.Validation("Name is required")
	}
	qty, hasQty, err := quantity(row)
	if err != nil {
		return false, err
	}

	existing, err := uc.products.GetBySKU(ctx, sku)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return false, err
	}

	var p *model.Product
	created := existing == nil
	if created {
		p, err = uc.create(ctx, row, sku, name, qty, userID)
	} else {
		p, err = uc.update(ctx, row, existing, name, qty, hasQty, userID)
	}
	if err != nil {
		return false, err
	}

	for col, value := range row.Values {
		if dto.IsStandardColumn(col) || strings.TrimSpace(col) == "" || strings.TrimSpace(value) == "" {
			continue
		}
		def, err := uc.attrs.EnsureDefinition(ctx, col)
		if err != nil {
			return false, err
		}
		if err := uc.attrs.AssignValue(ctx, p.ID, def.ID, value); err != nil {
			return false, err
		}
	}
	return created, nil
}

func (uc *importUseCase) create(ctx context.Context, row dto.Row, sku, name string, qty int, userID string) (*model.Product, error) {
	cost, err := price(row, dto.ColCostPrice, decimal.Zero)
	if err != nil {
		return nil, err
	}
	sell, err := price(row, dto.ColSellPrice, decimal.Zero)
	if err != nil {
		return nil, err
	}
	input := &productdto.CreateProductInput{
		Name:      name,
		SKU:       sku,
		Barcode:   field(row, dto.ColBarcode),
		Category:  field(row, dto.ColCategory),
		Size:      field(row, dto.ColSize),
		Color:     field(row, dto.ColColor),
		Gender:    field(row, dto.ColGender),
		Material:  field(row, dto.ColMaterial),
		CostPrice: cost,
		SellPrice: sell,
		Quantity:  qty,
		Location:  field(row, dto.ColLocation),
		UserID:    userID,
	}
	if url := field(row, dto.ColImageURL); url != "" {
		input.ImageURLs = []string{url}
	}
	return uc.products.CreateProduct(ctx, input)
}

// update overwrites the columns present in the row and keeps the others.
func (uc *importUseCase) update(ctx context.Context, row dto.Row, p *model.Product, name string, qty int, hasQty bool, userID string) (*model.Product, error) {
	cost, err := price(row, dto.ColCostPrice, p.CostPrice)
	if err != nil {
		return nil, err
	}
	sell, err := price(row, dto.ColSellPrice, p.SellPrice)
	if err != nil {
		return nil, err
	}
	barcode := ""
	if p.Barcode != nil {
		barcode = *p.Barcode
	}

	updated, err := uc.products.UpdateProduct(ctx, &productdto.UpdateProductInput{
		ID:        p.ID,
		Name:      name,
		SKU:       p.SKU,
		Barcode:   fieldOr(row, dto.ColBarcode, barcode),
		Category:  fieldOr(row, dto.ColCategory, p.Category),
		Size:      fieldOr(row, dto.ColSize, p.Size),
		Color:     fieldOr(row, dto.ColColor, p.Color),
		Gender:    fieldOr(row, dto.ColGender, p.Gender),
		Material:  fieldOr(row, dto.ColMaterial, p.Material),
		CostPrice: cost,
		SellPrice: sell,
		Location:  fieldOr(row, dto.ColLocation, p.Location),
	})
	if err != nil {
		return nil, err
	}

	if hasQty && qty != updated.Quantity {
		_, err := uc.ledger.Adjust(ctx, &invdto.AdjustInput{
			ProductID:   p.ID,
			NewQuantity: qty,
			Reason:      importReason,
			UserID:      userID,
		})
		if err != nil {
			return nil, err
		}
	}

	if url := field(row, dto.ColImageURL); url != "" && !hasImage(updated, url) {
		if _, err := uc.products.AddImage(ctx, p.ID, url); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

func hasImage(p *model.Product, url string) bool {
	for _, img := range p.Images {
		if img.ImageURL == url {
			return true
		}
	}
	return false
}

func field(row dto.Row, col string) string {
	v, _ := row.Get(col)
	return strings.TrimSpace(v)
}

func fieldOr(row dto.Row, col, fallback string) string {
	if v, ok := row.Get(col); ok {
		return strings.TrimSpace(v)
	}
	return fallback
}

// quantity accepts whole numbers, including spreadsheet floats such as "12.0".
func quantity(row dto.Row) (int, bool, error) {
	raw := field(row, dto.ColQuantity)
	if raw == "" {
		return 0, false, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, true, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.Equal(d.Truncate(0)) {
		return 0, false, apperr.Validation("invalid quantity %q", raw)
	}
	return int(d.IntPart()), true, nil
}

func price(row dto.Row, col string, fallback decimal.Decimal) (decimal.Decimal, error) {
	raw := field(row, col)
	if raw == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperr.Validation("invalid %s %q", strings.ToLower(col), raw)
	}
	return d, nil
}

// ImportCSV reads a header row followed by data rows. Blank lines are skipped.
func (uc *importUseCase) ImportCSV(ctx context.Context, r io.Reader, userID string) (*dto.Result, error) {
	rows, err := ParseCSV(r)
	if err != nil {
		return nil, err
	}
	return uc.BulkImport(ctx, rows, userID)
}

func (uc *importUseCase) ImportXLSX(ctx context.Context, r io.Reader, userID string) (*dto.Result, error) {
	rows, err := ParseXLSX(r)
	if err != nil {
		return nil, err
	}
	return uc.BulkImport(ctx, rows, userID)
}

// ExportCSV writes every product with the standard columns followed by one column per attribute.
func (uc *importUseCase) ExportCSV(ctx context.Context, w io.Writer) error {
	defs, err := uc.attrs.List(ctx)
	if err != nil {
		return err
	}
	products, _, err := uc.products.ListProducts(ctx, &productdto.ProductFilters{Page: 1})
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := append([]string{}, dto.StandardColumns...)
	for _, d := range defs {
		header = append(header, d.Name)
	}
	if err := cw.Write(header); err != nil {
		return apperr.Upstream(err, "failed to write export")
	}

	for i := range products {
		p, err := uc.products.GetProduct(ctx, products[i].ID)
		if err != nil {
			return err
		}
		if err := cw.Write(exportRecord(p, defs)); err != nil {
			return apperr.Upstream(err, "failed to write export")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperr.Upstream(err, "failed to write export")
	}
	return nil
}

func exportRecord(p *model.Product, defs []model.AttributeDefinition) []string {
	barcode, image := "", ""
	if p.Barcode != nil {
		barcode = *p.Barcode
	}
	if img := p.FeaturedImage(); img != nil {
		image = img.ImageURL
	}
	record := []string{
		p.SKU, p.Name, barcode, p.Category, p.Size, p.Color, p.Gender, p.Material,
		strconv.Itoa(p.Quantity), p.CostPrice.StringFixed(2), p.SellPrice.StringFixed(2), p.Location, image,
	}

	values := make(map[string]string, len(p.Attributes))
	for _, a := range p.Attributes {
		values[a.AttributeID] = a.Value
	}
	for _, d := range defs {
		record = append(record, values[d.ID])
	}
	return record
}
