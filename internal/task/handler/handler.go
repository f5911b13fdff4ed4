package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/response"
	"github.com/fekuna/omnipos-warehouse/internal/task"
	"github.com/fekuna/omnipos-warehouse/internal/task/dto"
)

type TaskHandler struct {
	uc     task.UseCase
	logger logger.ZapLogger
}

func NewTaskHandler(uc task.UseCase, log logger.ZapLogger) *TaskHandler {
	return &TaskHandler{uc: uc, logger: log}
}

func (h *TaskHandler) Register(r gin.IRouter) {
	g := r.Group("/tasks")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.PUT("/:id/assign", h.Assign)
	g.POST("/:id/toggle", h.ToggleComplete)
}

type createRequest struct {
	BoardID     string   `json:"board_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     string   `json:"due_date"`
	AssignedTo  []string `json:"assigned_to"`
}

type updateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
}

type assignRequest struct {
	UserIDs []string `json:"user_ids"`
}

// parseDueDate accepts RFC 3339 timestamps or plain dates. Empty means no due date.
func parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, apperr.Validation("invalid due_date %q", s)
}

func (h *TaskHandler) List(c *gin.Context) {
	boardID := c.Query("board_id")
	if boardID == "" {
		response.Error(c, apperr.Validation("board_id is required"))
		return
	}
	tasks, err := h.uc.ListByBoard(c.Request.Context(), boardID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "tasks", tasks)
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req createRequest
	if !response.BindJSON(c, &req) {
		return
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	t, err := h.uc.Create(c.Request.Context(), &dto.CreateTaskInput{
		BoardID:     req.BoardID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "task created", t)
}

func (h *TaskHandler) Get(c *gin.Context) {
	t, err := h.uc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "task", t)
}

func (h *TaskHandler) Update(c *gin.Context) {
	var req updateRequest
	if !response.BindJSON(c, &req) {
		return
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	t, err := h.uc.Update(c.Request.Context(), &dto.UpdateTaskInput{
		ID:          c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "task updated", t)
}

func (h *TaskHandler) Assign(c *gin.Context) {
	var req assignRequest
	if !response.BindJSON(c, &req) {
		return
	}
	t, err := h.uc.Assign(c.Request.Context(), c.Param("id"), req.UserIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "task assigned", t)
}

func (h *TaskHandler) ToggleComplete(c *gin.Context) {
	t, err := h.uc.ToggleComplete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "task updated", t)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.uc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "task deleted", nil)
}
