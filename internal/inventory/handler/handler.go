package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/auth"
	"github.com/fekuna/omnipos-warehouse/internal/inventory"
	"github.com/fekuna/omnipos-warehouse/internal/inventory/dto"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/response"
)

type InventoryHandler struct {
	uc       inventory.UseCase
	pageSize int
	logger   logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, pageSize int, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:       uc,
		pageSize: pageSize,
		logger:   log,
	}
}

func (h *InventoryHandler) Register(r gin.IRouter) {
	g := r.Group("/inventory")
	g.POST("/stock-in", h.StockIn)
	g.POST("/stock-out", h.StockOut)
	g.POST("/adjust", h.Adjust)
	g.GET("/history", h.History)
	g.GET("/summary", h.Summary)
	g.GET("/low-stock", h.LowStock)
	g.GET("/reports/monthly", h.MonthlyReport)
}

type stockRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

type adjustRequest struct {
	ProductID   string `json:"product_id"`
	NewQuantity *int   `json:"new_quantity"`
	Reason      string `json:"reason"`
}

func (h *InventoryHandler) StockIn(c *gin.Context) {
	h.stock(c, auth.ActionStockIn)
}

func (h *InventoryHandler) StockOut(c *gin.Context) {
	h.stock(c, auth.ActionStockOut)
}

func (h *InventoryHandler) stock(c *gin.Context, action auth.Action) {
	actor := auth.ActorFromContext(c.Request.Context())
	if err := auth.Authorize(actor, auth.Catalog(auth.KindInventory), action); err != nil {
		response.Error(c, err)
		return
	}

	var req stockRequest
	if !response.BindJSON(c, &req) {
		return
	}
	input := &dto.StockInput{ProductID: req.ProductID, Quantity: req.Quantity, Reason: req.Reason, UserID: actor.UserID}

	run, msg := h.uc.StockIn, "stock added"
	if action == auth.ActionStockOut {
		run, msg = h.uc.StockOut, "stock removed"
	}
	entry, err := run(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, msg, entry)
}

func (h *InventoryHandler) Adjust(c *gin.Context) {
	actor := auth.ActorFromContext(c.Request.Context())
	if err := auth.Authorize(actor, auth.Catalog(auth.KindInventory), auth.ActionAdjust); err != nil {
		response.Error(c, err)
		return
	}

	var req adjustRequest
	if !response.BindJSON(c, &req) {
		return
	}
	if req.NewQuantity == nil {
		response.Error(c, apperr.Validation("new_quantity is required"))
		return
	}

	entry, err := h.uc.Adjust(c.Request.Context(), &dto.AdjustInput{
		ProductID:   req.ProductID,
		NewQuantity: *req.NewQuantity,
		Reason:      req.Reason,
		UserID:      actor.UserID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "stock adjusted", entry)
}

func (h *InventoryHandler) History(c *gin.Context) {
	if !h.canRead(c) {
		return
	}
	page, size := response.PageParams(c, h.pageSize)
	q := &dto.HistoryQuery{
		ProductID:  c.Query("product_id"),
		ActionType: c.Query("action_type"),
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
		Page:       page,
		PageSize:   size,
	}
	items, total, err := h.uc.History(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "inventory history", items, page, size, total)
}

func (h *InventoryHandler) Summary(c *gin.Context) {
	if !h.canRead(c) {
		return
	}
	s, err := h.uc.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "inventory summary", s)
}

func (h *InventoryHandler) LowStock(c *gin.Context) {
	if !h.canRead(c) {
		return
	}
	threshold, _ := strconv.Atoi(c.Query("threshold"))
	page, size := response.PageParams(c, h.pageSize)
	items, total, err := h.uc.LowStock(c.Request.Context(), threshold, page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "low stock products", items, page, size, total)
}

func (h *InventoryHandler) MonthlyReport(c *gin.Context) {
	if !h.canRead(c) {
		return
	}
	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			response.Error(c, apperr.Validation("invalid year %q", v))
			return
		}
		year = y
	}
	if v := c.Query("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			response.Error(c, apperr.Validation("invalid month %q", v))
			return
		}
		month = m
	}

	report, err := h.uc.MonthlyReport(c.Request.Context(), year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "monthly movement report", report)
}

func (h *InventoryHandler) canRead(c *gin.Context) bool {
	if err := auth.Authorize(auth.ActorFromContext(c.Request.Context()), auth.Catalog(auth.KindInventory), auth.ActionRead); err != nil {
		response.Error(c, err)
		return false
	}
	return true
}
