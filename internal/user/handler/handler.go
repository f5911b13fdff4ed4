package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/auth"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/response"
	"github.com/fekuna/omnipos-warehouse/internal/user"
	"github.com/fekuna/omnipos-warehouse/internal/user/dto"
)

type UserHandler struct {
	uc     user.UseCase
	logger logger.ZapLogger
}

func NewUserHandler(uc user.UseCase, log logger.ZapLogger) *UserHandler {
	return &UserHandler{uc: uc, logger: log}
}

// RegisterPublic mounts the routes that need no token.
func (h *UserHandler) RegisterPublic(r gin.IRouter) {
	r.POST("/auth/login", h.Login)
}

func (h *UserHandler) Register(r gin.IRouter) {
	r.GET("/auth/me", h.Me)

	g := r.Group("/users")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.DELETE("/:id", h.Delete)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if !response.BindJSON(c, &req) {
		return
	}
	res, err := h.uc.Login(c.Request.Context(), &dto.LoginInput{Username: req.Username, Password: req.Password})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "login successful", res)
}

func (h *UserHandler) Me(c *gin.Context) {
	actor := auth.ActorFromContext(c.Request.Context())
	if actor == nil {
		response.Error(c, apperr.ErrUnauthenticated)
		return
	}
	response.Success(c, http.StatusOK, "current user", actor)
}

func (h *UserHandler) List(c *gin.Context) {
	if err := auth.Authorize(auth.ActorFromContext(c.Request.Context()), auth.Catalog(auth.KindUser), auth.ActionRead); err != nil {
		response.Error(c, err)
		return
	}
	users, err := h.uc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "users", users)
}

func (h *UserHandler) Create(c *gin.Context) {
	if err := auth.Authorize(auth.ActorFromContext(c.Request.Context()), auth.Catalog(auth.KindUser), auth.ActionCreate); err != nil {
		response.Error(c, err)
		return
	}
	var req createRequest
	if !response.BindJSON(c, &req) {
		return
	}
	u, err := h.uc.Create(c.Request.Context(), &dto.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "user created", u)
}

func (h *UserHandler) Delete(c *gin.Context) {
	actor := auth.ActorFromContext(c.Request.Context())
	if err := auth.Authorize(actor, auth.Catalog(auth.KindUser), auth.ActionDelete); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.uc.Delete(c.Request.Context(), c.Param("id"), actor.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "user deleted", nil)
}
