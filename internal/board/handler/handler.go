package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fekuna/omnipos-warehouse/internal/board"
	"github.com/fekuna/omnipos-warehouse/internal/board/dto"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/response"
)

type BoardHandler struct {
	uc     board.UseCase
	logger logger.ZapLogger
}

func NewBoardHandler(uc board.UseCase, log logger.ZapLogger) *BoardHandler {
	return &BoardHandler{uc: uc, logger: log}
}

func (h *BoardHandler) Register(r gin.IRouter) {
	g := r.Group("/boards")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/members", h.AddMember)
	g.DELETE("/:id/members/:userId", h.RemoveMember)

	r.GET("/board-auth/profile", h.SaveProfile)
	r.POST("/board-auth/profile", h.SaveProfile)
}

type boardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type memberRequest struct {
	Email string `json:"email"`
}

func (h *BoardHandler) List(c *gin.Context) {
	boards, err := h.uc.ListBoards(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "boards", boards)
}

func (h *BoardHandler) Create(c *gin.Context) {
	var req boardRequest
	if !response.BindJSON(c, &req) {
		return
	}
	b, err := h.uc.CreateBoard(c.Request.Context(), &dto.BoardInput{Name: req.Name, Description: req.Description})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "board created", b)
}

func (h *BoardHandler) Get(c *gin.Context) {
	detail, err := h.uc.GetBoard(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "board", detail)
}

func (h *BoardHandler) Update(c *gin.Context) {
	var req boardRequest
	if !response.BindJSON(c, &req) {
		return
	}
	b, err := h.uc.UpdateBoard(c.Request.Context(), c.Param("id"), &dto.BoardInput{Name: req.Name, Description: req.Description})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "board updated", b)
}

func (h *BoardHandler) Delete(c *gin.Context) {
	if err := h.uc.DeleteBoard(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "board deleted", nil)
}

func (h *BoardHandler) AddMember(c *gin.Context) {
	var req memberRequest
	if !response.BindJSON(c, &req) {
		return
	}
	m, err := h.uc.AddMember(c.Request.Context(), c.Param("id"), req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "member added", m)
}

func (h *BoardHandler) RemoveMember(c *gin.Context) {
	if err := h.uc.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("userId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "member removed", nil)
}

func (h *BoardHandler) SaveProfile(c *gin.Context) {
	m, err := h.uc.SaveProfile(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "profile saved", m)
}
