package usecase

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/attribute"
	attrdto "github.com/fekuna/omnipos-warehouse/internal/attribute/dto"
	attrrepo "github.com/fekuna/omnipos-warehouse/internal/attribute/repository"
	attruc "github.com/fekuna/omnipos-warehouse/internal/attribute/usecase"
	invrepo "github.com/fekuna/omnipos-warehouse/internal/inventory/repository"
	invuc "github.com/fekuna/omnipos-warehouse/internal/inventory/usecase"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/cache"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/database"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
	"github.com/fekuna/omnipos-warehouse/internal/product"
	"github.com/fekuna/omnipos-warehouse/internal/product/dto"
	"github.com/fekuna/omnipos-warehouse/internal/product/repository"
	"github.com/fekuna/omnipos-warehouse/internal/testutil"
)

type fixture struct {
	uc    product.UseCase
	db    *sqlx.DB
	attrs attribute.UseCase
}

func newFixture(t *testing.T, c product.Cache) *fixture {
	t.Helper()
	db := testutil.NewSQLite(t)
	log := logger.NewNop()

	ledger := invuc.NewInventoryUseCase(invrepo.NewPGRepository(db), nil, nil, invuc.Options{}, log)
	attrs := attruc.NewAttributeUseCase(attrrepo.NewPGRepository(db), log)
	uc := NewProductUseCase(repository.NewPGRepository(db), database.NewTxManager(db), ledger, c, nil,
		Options{SKUPrefix: "WH", Attributes: attrs}, log)
	return &fixture{uc: uc, db: db, attrs: attrs}
}

func shirt() *dto.CreateProductInput {
	return &dto.CreateProductInput{
		Name:      "Oxford Shirt",
		SKU:       "SH-1",
		Barcode:   "8991",
		Category:  "Shirts",
		CostPrice: decimal.RequireFromString("7.50"),
		SellPrice: decimal.RequireFromString("19.90"),
		Quantity:  5,
		ImageURLs: []string{"/uploads/a.png", "/uploads/b.png"},
		UserID:    "u1",
	}
}

func TestCreateProduct_InitialStockIsLogged(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	p, err := f.uc.CreateProduct(ctx, shirt())
	require.NoError(t, err)
	assert.Equal(t, 5, p.Quantity)
	require.Len(t, p.Images, 2)
	assert.True(t, p.Images[0].IsFeatured)
	require.NotNil(t, p.FeaturedImage())
	assert.Equal(t, "/uploads/a.png", p.FeaturedImage().ImageURL)
	assert.True(t, decimal.RequireFromString("37.50").Equal(p.StockValue()))

	var logs []model.InventoryLog
	require.NoError(t, f.db.Select(&logs, f.db.Rebind(`SELECT * FROM inventory_logs WHERE product_id = ?`), p.ID))
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActionIn, logs[0].ActionType)
	assert.Equal(t, 5, logs[0].Quantity)
	assert.Equal(t, "initial stock", logs[0].Reason)
}

func TestCreateProduct_GeneratesSKU(t *testing.T) {
	f := newFixture(t, nil)
	in := shirt()
	in.SKU = ""
	in.Barcode = ""
	in.Quantity = 0

	p, err := f.uc.CreateProduct(context.Background(), in)
	require.NoError(t, err)
	assert.Regexp(t, `^WH-\d{6}-[0-9A-F]{4}$`, p.SKU)
	assert.Nil(t, p.Barcode)
	assert.Zero(t, p.Quantity)
}

func TestCreateProduct_Conflicts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	_, err := f.uc.CreateProduct(ctx, shirt())
	require.NoError(t, err)

	_, err = f.uc.CreateProduct(ctx, shirt())
	assert.ErrorIs(t, err, apperr.ErrDuplicateSKU)

	in := shirt()
	in.SKU = "SH-2"
	_, err = f.uc.CreateProduct(ctx, in)
	assert.ErrorIs(t, err, apperr.ErrDuplicateBarcode)

	in = shirt()
	in.SKU, in.Barcode, in.Quantity = "SH-3", "", -1
	_, err = f.uc.CreateProduct(ctx, in)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateProduct_RollsBackOnBadAttribute(t *testing.T) {
	f := newFixture(t, nil)
	in := shirt()
	in.Attributes = map[string]string{"missing": "x"}

	_, err := f.uc.CreateProduct(context.Background(), in)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	var n int
	require.NoError(t, f.db.Get(&n, `SELECT count(*) FROM products`))
	assert.Zero(t, n)
	require.NoError(t, f.db.Get(&n, `SELECT count(*) FROM inventory_logs`))
	assert.Zero(t, n)
}

func TestUpdateProduct_KeepsQuantity(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p, err := f.uc.CreateProduct(ctx, shirt())
	require.NoError(t, err)

	def, err := f.attrs.Define(ctx, &attrdto.DefineInput{Name: "Fabric", Type: model.AttributeText})
	require.NoError(t, err)

	updated, err := f.uc.UpdateProduct(ctx, &dto.UpdateProductInput{
		ID:         p.ID,
		Name:       "Oxford Shirt Slim",
		SKU:        "SH-1",
		CostPrice:  decimal.RequireFromString("8"),
		SellPrice:  decimal.RequireFromString("21"),
		Attributes: map[string]string{def.ID: "cotton"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Oxford Shirt Slim", updated.Name)
	assert.Equal(t, 5, updated.Quantity)
	assert.Nil(t, updated.Barcode)
	require.Len(t, updated.Attributes, 1)
	assert.Equal(t, "cotton", updated.Attributes[0].Value)

	other := shirt()
	other.SKU, other.Barcode = "SH-2", ""
	second, err := f.uc.CreateProduct(ctx, other)
	require.NoError(t, err)
	_, err = f.uc.UpdateProduct(ctx, &dto.UpdateProductInput{ID: second.ID, Name: "x", SKU: "SH-1"})
	assert.ErrorIs(t, err, apperr.ErrDuplicateSKU)

	bySKU, err := f.uc.GetBySKU(ctx, "SH-2")
	require.NoError(t, err)
	assert.Equal(t, second.ID, bySKU.ID)
}

func TestImages_FeaturedAndLast(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p, err := f.uc.CreateProduct(ctx, shirt())
	require.NoError(t, err)
	first, second := p.Images[0], p.Images[1]

	require.NoError(t, f.uc.SetFeaturedImage(ctx, p.ID, second.ID))
	got, err := f.uc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FeaturedImage())
	assert.Equal(t, second.ImageURL, got.FeaturedImage().ImageURL)

	assert.ErrorIs(t, f.uc.SetFeaturedImage(ctx, p.ID, "missing"), apperr.ErrNotFound)

	// Deleting the featured image promotes the remaining one
	require.NoError(t, f.uc.DeleteImage(ctx, p.ID, second.ID))
	got, err = f.uc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 1)
	assert.Equal(t, first.ID, got.Images[0].ID)
	assert.True(t, got.Images[0].IsFeatured)

	assert.ErrorIs(t, f.uc.DeleteImage(ctx, p.ID, first.ID), apperr.ErrLastImage)

	img, err := f.uc.AddImage(ctx, p.ID, "/uploads/c.png")
	require.NoError(t, err)
	assert.False(t, img.IsFeatured)
}

func TestDeleteProduct_RemovesLedger(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p, err := f.uc.CreateProduct(ctx, shirt())
	require.NoError(t, err)

	require.NoError(t, f.uc.DeleteProduct(ctx, p.ID))
	_, err = f.uc.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	var n int
	require.NoError(t, f.db.Get(&n, `SELECT count(*) FROM inventory_logs`))
	assert.Zero(t, n)
	assert.ErrorIs(t, f.uc.DeleteProduct(ctx, p.ID), apperr.ErrNotFound)
}

func TestListProducts_FiltersAndCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rc, err := cache.NewRedisClient(&cache.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { rc.Close() })

	f := newFixture(t, rc)
	ctx := context.Background()
	// Seeded directly so no asynchronous invalidation races the cached reads below
	shirtID := testutil.SeedProduct(t, f.db, "Oxford Shirt", "SH-1", 5, "7.50")
	pantsID := testutil.SeedProduct(t, f.db, "Denim Pants", "PA-1", 2, "12.00")
	for id, cat := range map[string]string{shirtID: "Shirts", pantsID: "Pants"} {
		_, err := f.db.Exec(f.db.Rebind(`UPDATE products SET category = ? WHERE id = ?`), cat, id)
		require.NoError(t, err)
	}

	items, total, err := f.uc.ListProducts(ctx, &dto.ProductFilters{SearchQuery: "OXFORD", PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "SH-1", items[0].SKU)

	items, total, err = f.uc.ListProducts(ctx, &dto.ProductFilters{Category: "Pants", PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "PA-1", items[0].SKU)

	// A row written behind the usecase's back is hidden by the cached page
	filters := &dto.ProductFilters{PageSize: 10}
	_, total, err = f.uc.ListProducts(ctx, filters)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	testutil.SeedProduct(t, f.db, "Belt", "BE-1", 1, "1.00")
	_, total, err = f.uc.ListProducts(ctx, filters)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	cats, err := f.uc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pants", "Shirts"}, cats)
}
