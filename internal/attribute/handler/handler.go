package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fekuna/omnipos-warehouse/internal/attribute"
	"github.com/fekuna/omnipos-warehouse/internal/attribute/dto"
	"github.com/fekuna/omnipos-warehouse/internal/auth"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/response"
)

type AttributeHandler struct {
	uc     attribute.UseCase
	logger logger.ZapLogger
}

func NewAttributeHandler(uc attribute.UseCase, log logger.ZapLogger) *AttributeHandler {
	return &AttributeHandler{uc: uc, logger: log}
}

func (h *AttributeHandler) Register(r gin.IRouter) {
	g := r.Group("/attributes")
	g.GET("", h.List)
	g.POST("", h.Define)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)

	r.PUT("/products/:id/attributes/:attributeId", h.AssignValue)
}

type defineRequest struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Options  []string `json:"options"`
	Required bool     `json:"required"`
}

type updateRequest struct {
	Name     string   `json:"name"`
	Options  []string `json:"options"`
	Required bool     `json:"required"`
}

type valueRequest struct {
	Value string `json:"value"`
}

func (h *AttributeHandler) authorize(c *gin.Context, action auth.Action) bool {
	if err := auth.Authorize(auth.ActorFromContext(c.Request.Context()), auth.Catalog(auth.KindAttribute), action); err != nil {
		response.Error(c, err)
		return false
	}
	return true
}

func (h *AttributeHandler) List(c *gin.Context) {
	if !h.authorize(c, auth.ActionRead) {
		return
	}
	defs, err := h.uc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "attributes", defs)
}

func (h *AttributeHandler) Get(c *gin.Context) {
	if !h.authorize(c, auth.ActionRead) {
		return
	}
	def, err := h.uc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "attribute", def)
}

func (h *AttributeHandler) Define(c *gin.Context) {
	if !h.authorize(c, auth.ActionCreate) {
		return
	}
	var req defineRequest
	if !response.BindJSON(c, &req) {
		return
	}
	def, err := h.uc.Define(c.Request.Context(), &dto.DefineInput{
		Name:     req.Name,
		Type:     req.Type,
		Options:  req.Options,
		Required: req.Required,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "attribute created", def)
}

func (h *AttributeHandler) Update(c *gin.Context) {
	if !h.authorize(c, auth.ActionUpdate) {
		return
	}
	var req updateRequest
	if !response.BindJSON(c, &req) {
		return
	}
	def, err := h.uc.Update(c.Request.Context(), &dto.UpdateInput{
		ID:       c.Param("id"),
		Name:     req.Name,
		Options:  req.Options,
		Required: req.Required,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "attribute updated", def)
}

func (h *AttributeHandler) Delete(c *gin.Context) {
	if !h.authorize(c, auth.ActionDelete) {
		return
	}
	if err := h.uc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "attribute deleted", nil)
}

// AssignValue sets a product's value for one attribute. An empty value clears it.
func (h *AttributeHandler) AssignValue(c *gin.Context) {
	err := auth.Authorize(auth.ActorFromContext(c.Request.Context()), auth.Catalog(auth.KindProduct), auth.ActionUpdate)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req valueRequest
	if !response.BindJSON(c, &req) {
		return
	}
	if err := h.uc.AssignValue(c.Request.Context(), c.Param("id"), c.Param("attributeId"), req.Value); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "attribute value saved", nil)
}
