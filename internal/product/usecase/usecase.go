package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/inventory"
	invdto "github.com/fekuna/omnipos-warehouse/internal/inventory/dto"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/cache"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/database"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
	"github.com/fekuna/omnipos-warehouse/internal/product"
	"github.com/fekuna/omnipos-warehouse/internal/product/dto"
)

const (
	indexName      = "products"
	cacheTTL       = 5 * time.Minute
	skuAttempts    = 5
	initialReason  = "initial stock"
	defaultSKUPref = "WH"
)

const indexMapping = `{
	"mappings": {
		"properties": {
			"name": { "type": "text" },
			"sku": { "type": "keyword" },
			"barcode": { "type": "keyword" },
			"category": { "type": "keyword" },
			"color": { "type": "keyword" },
			"material": { "type": "text" },
			"price_sell": { "type": "double" },
			"quantity": { "type": "integer" },
			"created_at": { "type": "date" }
		}
	}
}`

type Options struct {
	SKUPrefix  string
	Files      product.FileRemover       // Optional
	Attributes product.AttributeAssigner // Optional
}

type productUseCase struct {
	repo   product.Repository
	tx     database.Transactor
	ledger inventory.UseCase
	cache  product.Cache    // Optional
	es     product.Searcher // Optional
	opts   Options
	logger logger.ZapLogger
	now    func() time.Time
}

func NewProductUseCase(repo product.Repository, tx database.Transactor, ledger inventory.UseCase, cache product.Cache, es product.Searcher, opts Options, log logger.ZapLogger) product.UseCase {
	if opts.SKUPrefix == "" {
		opts.SKUPrefix = defaultSKUPref
	}
	return &productUseCase{
		repo:   repo,
		tx:     tx,
		ledger: ledger,
		cache:  cache,
		es:     es,
		opts:   opts,
		logger: log,
		now:    time.Now,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validation("product name is required")
	}
	if input.Quantity < 0 {
		return nil, apperr.Validation("quantity cannot be negative")
	}
	if input.CostPrice.IsNegative() || input.SellPrice.IsNegative() {
		return nil, apperr.Validation("prices cannot be negative")
	}

	sku, err := uc.resolveSKU(ctx, strings.TrimSpace(input.SKU))
	if err != nil {
		return nil, err
	}
	barcode, err := uc.checkBarcode(ctx, input.Barcode, "")
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	p := &model.Product{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:      name,
		SKU:       sku,
		Barcode:   barcode,
		Category:  strings.TrimSpace(input.Category),
		Size:      strings.TrimSpace(input.Size),
		Color:     strings.TrimSpace(input.Color),
		Gender:    strings.TrimSpace(input.Gender),
		Material:  strings.TrimSpace(input.Material),
		CostPrice: input.CostPrice,
		SellPrice: input.SellPrice,
		Location:  strings.TrimSpace(input.Location),
	}

	err = uc.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.repo.Create(ctx, p); err != nil {
			return apperr.Upstream(err, "failed to create product")
		}
		for _, url := range input.ImageURLs {
			if _, err := uc.addImage(ctx, p.ID, url); err != nil {
				return err
			}
		}
		if err := uc.assignAttributes(ctx, p.ID, input.Attributes); err != nil {
			return err
		}
		if input.Quantity > 0 {
			entry, err := uc.ledger.StockIn(ctx, &invdto.StockInput{
				ProductID: p.ID,
				Quantity:  input.Quantity,
				Reason:    initialReason,
				UserID:    input.UserID,
			})
			if err != nil {
				return err
			}
			p.Quantity = entry.QuantityAfter
		}
		return nil
	})
	if err != nil {
		uc.logError("failed to create product", err)
		return nil, err
	}

	uc.afterWrite(ctx, p)
	return uc.GetProduct(ctx, p.ID)
}

// resolveSKU validates a given SKU or generates a fresh one.
func (uc *productUseCase) resolveSKU(ctx context.Context, sku string) (string, error) {
	if sku != "" {
		unique, err := uc.repo.IsSKUUnique(ctx, sku, "")
		if err != nil {
			return "", apperr.Upstream(err, "failed to check SKU")
		}
		if !unique {
			return "", apperr.ErrDuplicateSKU
		}
		return sku, nil
	}

	for i := 0; i < skuAttempts; i++ {
		candidate := uc.generateSKU()
		unique, err := uc.repo.IsSKUUnique(ctx, candidate, "")
		if err != nil {
			return "", apperr.Upstream(err, "failed to check SKU")
		}
		if unique {
			return candidate, nil
		}
	}
	return "", apperr.ErrDuplicateSKU.WithMessage("could not generate a unique SKU")
}

// generateSKU returns PREFIX-YYMMDD-XXXX.
func (uc *productUseCase) generateSKU() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:4])
	return fmt.Sprintf("%s-%s-%s", uc.opts.SKUPrefix, uc.now().Format("060102"), suffix)
}

func (uc *productUseCase) checkBarcode(ctx context.Context, raw, excludeID string) (*string, error) {
	barcode := strings.TrimSpace(raw)
	if barcode == "" {
		return nil, nil
	}
	unique, err := uc.repo.IsBarcodeUnique(ctx, barcode, excludeID)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to check barcode")
	}
	if !unique {
		return nil, apperr.ErrDuplicateBarcode
	}
	return &barcode, nil
}

func (uc *productUseCase) assignAttributes(ctx context.Context, productID string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	if uc.opts.Attributes == nil {
		return apperr.Validation("attributes are not supported")
	}
	for attrID, value := range values {
		if err := uc.opts.Attributes.AssignValue(ctx, productID, attrID, value); err != nil {
			return err
		}
	}
	return nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to load product")
	}
	if p == nil {
		return nil, apperr.NotFound("product")
	}
	return uc.withDetails(ctx, p)
}

func (uc *productUseCase) GetByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, apperr.Validation("barcode is required")
	}
	p, err := uc.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to load product")
	}
	if p == nil {
		return nil, apperr.NotFound("product")
	}
	return uc.withDetails(ctx, p)
}

func (uc *productUseCase) GetBySKU(ctx context.Context, sku string) (*model.Product, error) {
	p, err := uc.repo.FindBySKU(ctx, strings.TrimSpace(sku))
	if err != nil {
		return nil, apperr.Upstream(err, "failed to load product")
	}
	if p == nil {
		return nil, apperr.NotFound("product")
	}
	return uc.withDetails(ctx, p)
}

func (uc *productUseCase) withDetails(ctx context.Context, p *model.Product) (*model.Product, error) {
	images, err := uc.repo.ListImages(ctx, p.ID)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to load images")
	}
	attrs, err := uc.repo.ListAttributeValues(ctx, p.ID)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to load attributes")
	}
	p.Images = images
	p.Attributes = attrs
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}

	// 1. Check cache
	cacheKey, err := uc.generateCacheKey(filters)
	if err == nil && uc.cache != nil {
		val, found, err := uc.cache.Get(ctx, cacheKey)
		if err == nil && found {
			var result struct {
				Products []model.Product
				Count    int
			}
			if err := json.Unmarshal([]byte(val), &result); err == nil {
				return result.Products, result.Count, nil
			}
		}
	}

	// 2. Search via Elastic (if query present)
	if filters.SearchQuery != "" && uc.es != nil {
		products, count, err := uc.searchElastic(ctx, filters)
		if err == nil {
			return products, count, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	// 3. DB query
	products, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		uc.logError("failed to list products", err)
		return nil, 0, apperr.Upstream(err, "failed to list products")
	}

	// 4. Set cache
	if cacheKey != "" && uc.cache != nil {
		cacheData := struct {
			Products []model.Product
			Count    int
		}{Products: products, Count: count}
		if data, err := json.Marshal(cacheData); err == nil {
			if err := uc.cache.Set(ctx, cacheKey, data, cacheTTL); err != nil {
				uc.logger.Warn("failed to cache product list", zap.Error(err))
			}
		}
	}

	return products, count, nil
}

func (uc *productUseCase) searchElastic(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	must := []map[string]interface{}{
		{
			"query_string": map[string]interface{}{
				"query":  fmt.Sprintf("*%s*", filters.SearchQuery),
				"fields": []string{"name^3", "sku", "barcode", "material"},
			},
		},
	}
	if filters.Category != "" {
		must = append(must, map[string]interface{}{
			"term": map[string]interface{}{"category": filters.Category},
		})
	}
	q := map[string]interface{}{
		"query": map[string]interface{}{"bool": map[string]interface{}{"must": must}},
		"from":  (filters.Page - 1) * filters.PageSize,
	}
	if filters.PageSize > 0 {
		q["size"] = filters.PageSize
	}

	res, err := uc.es.Search(ctx, indexName, q)
	if err != nil {
		return nil, 0, err
	}
	products := make([]model.Product, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var p model.Product
		if err := json.Unmarshal(hit.Source, &p); err == nil {
			products = append(products, p)
		}
	}
	return products, res.Hits.Total.Value, nil
}

func (uc *productUseCase) generateCacheKey(filters *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("products:list:%x", md5.Sum(data)), nil
}

func (uc *productUseCase) invalidateProductCache(ctx context.Context) {
	if err := uc.cache.DeletePattern(ctx, cache.ProductListPattern); err != nil {
		uc.logger.Warn("failed to invalidate product cache", zap.Error(err))
	}
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	_ = uc.es.CreateIndex(ctx, indexName, indexMapping)
	if err := uc.es.Index(ctx, indexName, p.ID, p); err != nil {
		uc.logger.Error("failed to index product", zap.Error(err))
	}
}

// afterWrite refreshes derived copies of p once the outermost transaction commits.
func (uc *productUseCase) afterWrite(ctx context.Context, p *model.Product) {
	doc := *p
	database.AfterCommit(ctx, func() {
		if uc.cache != nil {
			go uc.invalidateProductCache(context.Background())
		}
		if uc.es != nil {
			go uc.syncToElastic(context.Background(), &doc)
		}
	})
}

func (uc *productUseCase) Categories(ctx context.Context) ([]string, error) {
	cats, err := uc.repo.Categories(ctx)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to list categories")
	}
	return cats, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to load product")
	}
	if p == nil {
		return nil, apperr.NotFound("product")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validation("product name is required")
	}
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		return nil, apperr.Validation("SKU is required")
	}
	if input.CostPrice.IsNegative() || input.SellPrice.IsNegative() {
		return nil, apperr.Validation("prices cannot be negative")
	}
	if sku != p.SKU {
		unique, err := uc.repo.IsSKUUnique(ctx, sku, p.ID)
		if err != nil {
			return nil, apperr.Upstream(err, "failed to check SKU")
		}
		if !unique {
			return nil, apperr.ErrDuplicateSKU
		}
	}
	barcode, err := uc.checkBarcode(ctx, input.Barcode, p.ID)
	if err != nil {
		return nil, err
	}

	// Update fields
	p.Name = name
	p.SKU = sku
	p.Barcode = barcode
	p.Category = strings.TrimSpace(input.Category)
	p.Size = strings.TrimSpace(input.Size)
	p.Color = strings.TrimSpace(input.Color)
	p.Gender = strings.TrimSpace(input.Gender)
	p.Material = strings.TrimSpace(input.Material)
	p.CostPrice = input.CostPrice
	p.SellPrice = input.SellPrice
	p.Location = strings.TrimSpace(input.Location)
	p.UpdatedAt = uc.now().UTC()

	err = uc.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.repo.Update(ctx, p); err != nil {
			return apperr.Upstream(err, "failed to update product")
		}
		return uc.assignAttributes(ctx, p.ID, input.Attributes)
	})
	if err != nil {
		uc.logError("failed to update product", err)
		return nil, err
	}

	uc.afterWrite(ctx, p)
	return uc.GetProduct(ctx, p.ID)
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return apperr.Upstream(err, "failed to load product")
	}
	if p == nil {
		return apperr.NotFound("product")
	}
	images, err := uc.repo.ListImages(ctx, id)
	if err != nil {
		return apperr.Upstream(err, "failed to load images")
	}

	err = uc.tx.WithTx(ctx, func(ctx context.Context) error {
		return uc.repo.Delete(ctx, id)
	})
	if err != nil {
		uc.logError("failed to delete product", err)
		return apperr.Upstream(err, "failed to delete product")
	}

	database.AfterCommit(ctx, func() {
		for _, img := range images {
			uc.removeFile(img.ImageURL)
		}
		if uc.cache != nil {
			go uc.invalidateProductCache(context.Background())
		}
		if uc.es != nil {
			go func() {
				if err := uc.es.Delete(context.Background(), indexName, id); err != nil {
					uc.logger.Error("failed to delete product from ES", zap.Error(err))
				}
			}()
		}
	})
	return nil
}

func (uc *productUseCase) AddImage(ctx context.Context, productID, imageURL string) (*model.ProductImage, error) {
	var img *model.ProductImage
	err := uc.tx.WithTx(ctx, func(ctx context.Context) error {
		p, err := uc.repo.FindByID(ctx, productID)
		if err != nil {
			return apperr.Upstream(err, "failed to load product")
		}
		if p == nil {
			return apperr.NotFound("product")
		}
		img, err = uc.addImage(ctx, productID, imageURL)
		return err
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

// addImage makes the first image of a product its featured image.
func (uc *productUseCase) addImage(ctx context.Context, productID, imageURL string) (*model.ProductImage, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, apperr.Validation("image url is required")
	}
	existing, err := uc.repo.ListImages(ctx, productID)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to load images")
	}
	img := &model.ProductImage{
		ID:         uuid.New().String(),
		ProductID:  productID,
		ImageURL:   imageURL,
		IsFeatured: len(existing) == 0,
		CreatedAt:  uc.now().UTC(),
	}
	if err := uc.repo.AddImage(ctx, img); err != nil {
		return nil, apperr.Upstream(err, "failed to save image")
	}
	return img, nil
}

func (uc *productUseCase) SetFeaturedImage(ctx context.Context, productID, imageID string) error {
	img, err := uc.repo.FindImage(ctx, imageID)
	if err != nil {
		return apperr.Upstream(err, "failed to load image")
	}
	if img == nil || img.ProductID != productID {
		return apperr.NotFound("image")
	}
	if err := uc.repo.SetFeaturedImage(ctx, productID, imageID); err != nil {
		return apperr.Upstream(err, "failed to set featured image")
	}
	return nil
}

func (uc *productUseCase) DeleteImage(ctx context.Context, productID, imageID string) error {
	var removed *model.ProductImage
	err := uc.tx.WithTx(ctx, func(ctx context.Context) error {
		images, err := uc.repo.ListImages(ctx, productID)
		if err != nil {
			return apperr.Upstream(err, "failed to load images")
		}

		var next *model.ProductImage
		for i := range images {
			if images[i].ID == imageID {
				removed = &images[i]
			} else if next == nil {
				next = &images[i]
			}
		}
		if removed == nil {
			return apperr.NotFound("image")
		}
		if len(images) <= 1 {
			return apperr.ErrLastImage
		}

		if err := uc.repo.DeleteImage(ctx, imageID); err != nil {
			return apperr.Upstream(err, "failed to delete image")
		}
		if removed.IsFeatured {
			if err := uc.repo.SetFeaturedImage(ctx, productID, next.ID); err != nil {
				return apperr.Upstream(err, "failed to set featured image")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	url := removed.ImageURL
	database.AfterCommit(ctx, func() { uc.removeFile(url) })
	return nil
}

// removeFile is best-effort; a missing file never fails the request.
func (uc *productUseCase) removeFile(url string) {
	if uc.opts.Files == nil {
		return
	}
	if err := uc.opts.Files.Remove(url); err != nil {
		uc.logger.Warn("failed to remove image file", zap.String("url", url), zap.Error(err))
	}
}

func (uc *productUseCase) logError(msg string, err error) {
	if apperr.KindOf(err) == apperr.KindUpstream {
		uc.logger.Error(msg, zap.Error(err))
	}
}
