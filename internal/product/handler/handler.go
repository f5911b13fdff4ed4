package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/auth"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/response"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/storage"
	"github.com/fekuna/omnipos-warehouse/internal/product"
	"github.com/fekuna/omnipos-warehouse/internal/product/dto"
)

// ImageStore persists uploaded image files and returns their public URL.
type ImageStore interface {
	Save(filename string, r io.Reader) (string, error)
}

type ProductHandler struct {
	uc       product.UseCase
	images   ImageStore // Optional
	pageSize int
	logger   logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, images ImageStore, pageSize int, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:       uc,
		images:   images,
		pageSize: pageSize,
		logger:   log,
	}
}

func (h *ProductHandler) Register(r gin.IRouter) {
	g := r.Group("/products")
	g.GET("", h.ListProducts)
	g.POST("", h.CreateProduct)
	g.GET("/categories", h.Categories)
	g.GET("/barcode/:barcode", h.GetByBarcode)
	g.GET("/:id", h.GetProduct)
	g.PUT("/:id", h.UpdateProduct)
	g.DELETE("/:id", h.DeleteProduct)
	g.POST("/:id/images", h.UploadImage)
	g.PUT("/:id/images/:imageId/featured", h.SetFeaturedImage)
	g.DELETE("/:id/images/:imageId", h.DeleteImage)
}

type productRequest struct {
	Name       string            `json:"name"`
	SKU        string            `json:"sku"`
	Barcode    string            `json:"barcode"`
	Category   string            `json:"category"`
	Size       string            `json:"size"`
	Color      string            `json:"color"`
	Gender     string            `json:"gender"`
	Material   string            `json:"material"`
	CostPrice  decimal.Decimal   `json:"price_cost"`
	SellPrice  decimal.Decimal   `json:"price_sell"`
	Quantity   int               `json:"quantity"`
	Location   string            `json:"location"`
	ImageURLs  []string          `json:"image_urls"`
	Attributes map[string]string `json:"attributes"`
}

func (h *ProductHandler) authorize(c *gin.Context, action auth.Action) (*auth.Actor, bool) {
	actor := auth.ActorFromContext(c.Request.Context())
	if err := auth.Authorize(actor, auth.Catalog(auth.KindProduct), action); err != nil {
		response.Error(c, err)
		return nil, false
	}
	return actor, true
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	actor, ok := h.authorize(c, auth.ActionCreate)
	if !ok {
		return
	}
	var req productRequest
	if !response.BindJSON(c, &req) {
		return
	}

	p, err := h.uc.CreateProduct(c.Request.Context(), &dto.CreateProductInput{
		Name:       req.Name,
		SKU:        req.SKU,
		Barcode:    req.Barcode,
		Category:   req.Category,
		Size:       req.Size,
		Color:      req.Color,
		Gender:     req.Gender,
		Material:   req.Material,
		CostPrice:  req.CostPrice,
		SellPrice:  req.SellPrice,
		Quantity:   req.Quantity,
		Location:   req.Location,
		ImageURLs:  req.ImageURLs,
		Attributes: req.Attributes,
		UserID:     actor.UserID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "product created", p)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	if _, ok := h.authorize(c, auth.ActionRead); !ok {
		return
	}
	p, err := h.uc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "product", p)
}

func (h *ProductHandler) GetByBarcode(c *gin.Context) {
	if _, ok := h.authorize(c, auth.ActionRead); !ok {
		return
	}
	p, err := h.uc.GetByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "product", p)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	if _, ok := h.authorize(c, auth.ActionRead); !ok {
		return
	}
	page, size := response.PageParams(c, h.pageSize)
	filters := &dto.ProductFilters{
		SearchQuery: c.Query("search"),
		Category:    c.Query("category"),
		Page:        page,
		PageSize:    size,
	}

	products, total, err := h.uc.ListProducts(c.Request.Context(), filters)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "products", products, page, size, total)
}

func (h *ProductHandler) Categories(c *gin.Context) {
	if _, ok := h.authorize(c, auth.ActionRead); !ok {
		return
	}
	cats, err := h.uc.Categories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "categories", cats)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	if _, ok := h.authorize(c, auth.ActionUpdate); !ok {
		return
	}
	var req productRequest
	if !response.BindJSON(c, &req) {
		return
	}

	p, err := h.uc.UpdateProduct(c.Request.Context(), &dto.UpdateProductInput{
		ID:         c.Param("id"),
		Name:       req.Name,
		SKU:        req.SKU,
		Barcode:    req.Barcode,
		Category:   req.Category,
		Size:       req.Size,
		Color:      req.Color,
		Gender:     req.Gender,
		Material:   req.Material,
		CostPrice:  req.CostPrice,
		SellPrice:  req.SellPrice,
		Location:   req.Location,
		Attributes: req.Attributes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "product updated", p)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if _, ok := h.authorize(c, auth.ActionDelete); !ok {
		return
	}
	if err := h.uc.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "product deleted", nil)
}

// UploadImage accepts a multipart "image" file, or a JSON body with image_url.
func (h *ProductHandler) UploadImage(c *gin.Context) {
	if _, ok := h.authorize(c, auth.ActionUpdate); !ok {
		return
	}

	var url string
	if file, err := c.FormFile("image"); err == nil {
		if h.images == nil {
			response.Error(c, apperr.Validation("image uploads are not enabled"))
			return
		}
		if !storage.AllowedImage(file.Filename) {
			response.Error(c, apperr.Validation("file type not allowed: %s", file.Filename))
			return
		}
		f, err := file.Open()
		if err != nil {
			response.Error(c, apperr.Validation("cannot read upload: %v", err))
			return
		}
		defer f.Close()

		url, err = h.images.Save(file.Filename, f)
		if err != nil {
			h.logger.Error("failed to store image", zap.Error(err))
			response.Error(c, apperr.Upstream(err, "failed to store image"))
			return
		}
	} else {
		var req struct {
			ImageURL string `json:"image_url"`
		}
		if !response.BindJSON(c, &req) {
			return
		}
		url = req.ImageURL
	}

	img, err := h.uc.AddImage(c.Request.Context(), c.Param("id"), url)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "image added", img)
}

func (h *ProductHandler) SetFeaturedImage(c *gin.Context) {
	if _, ok := h.authorize(c, auth.ActionUpdate); !ok {
		return
	}
	if err := h.uc.SetFeaturedImage(c.Request.Context(), c.Param("id"), c.Param("imageId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "featured image updated", nil)
}

func (h *ProductHandler) DeleteImage(c *gin.Context) {
	if _, ok := h.authorize(c, auth.ActionUpdate); !ok {
		return
	}
	if err := h.uc.DeleteImage(c.Request.Context(), c.Param("id"), c.Param("imageId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "image deleted", nil)
}
