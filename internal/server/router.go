// Package server assembles the HTTP router and the gRPC health server.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
)

// Registrar mounts a handler's routes.
type Registrar interface {
	Register(r gin.IRouter)
}

// PublicRegistrar mounts routes that skip authentication.
type PublicRegistrar interface {
	RegisterPublic(r gin.IRouter)
}

// HealthCheck reports the state of one dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type RouterConfig struct {
	Tokens TokenParser
	// Public routes are mounted under /api without authentication.
	Public []PublicRegistrar
	// Warehouse routes require a bearer token.
	Warehouse []Registrar
	// Boards routes additionally sync the caller's member profile. Nil when Mongo is off.
	Boards   []Registrar
	Profiles ProfileSaver
	// StaticDir is served under StaticPrefix when set.
	StaticDir    string
	StaticPrefix string
	Checks       []HealthCheck
	Development  bool
}

func NewRouter(cfg RouterConfig, log logger.ZapLogger) *gin.Engine {
	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(RequestLogger(log), Recovery(log))

	r.GET("/health", health(cfg.Checks))
	if cfg.StaticDir != "" && cfg.StaticPrefix != "" {
		r.Static(cfg.StaticPrefix, cfg.StaticDir)
	}

	api := r.Group("/api")
	for _, h := range cfg.Public {
		h.RegisterPublic(api)
	}

	protected := api.Group("", Authenticate(cfg.Tokens))
	for _, h := range cfg.Warehouse {
		h.Register(protected)
	}

	if len(cfg.Boards) > 0 {
		boards := protected.Group("", RequireIdentity())
		if cfg.Profiles != nil {
			boards.Use(SyncProfile(cfg.Profiles, log))
		}
		for _, h := range cfg.Boards {
			h.Register(boards)
		}
	}
	return r
}

func health(checks []HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		deps := make(map[string]string, len(checks))
		for _, hc := range checks {
			if err := hc.Check(ctx); err != nil {
				deps[hc.Name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			deps[hc.Name] = "ok"
		}
		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "dependencies": deps})
	}
}
