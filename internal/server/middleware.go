package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/auth"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/response"
)

// TokenParser verifies bearer tokens. Satisfied by *auth.TokenManager.
type TokenParser interface {
	Parse(tokenString string) (*auth.Claims, error)
}

// ProfileSaver records the board identity of the current request.
type ProfileSaver interface {
	SaveProfile(ctx context.Context) (*model.Member, error)
}

// RequestLogger logs one line per request once the handler has run.
func RequestLogger(log logger.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if uid := auth.GetUserID(c.Request.Context()); uid != "" {
			fields = append(fields, zap.String("user_id", uid))
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("request failed", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request rejected", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// Recovery turns a panic into a 500 envelope.
func Recovery(log logger.ZapLogger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.APIResponse{
			Success:   false,
			Message:   "internal server error",
			Timestamp: time.Now().UTC(),
		})
	})
}

// Authenticate requires a valid bearer token and places its actor on the request context.
func Authenticate(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			response.Error(c, apperr.ErrUnauthenticated.WithMessage("authorization header required"))
			return
		}
		claims, err := tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Request = c.Request.WithContext(auth.WithActor(c.Request.Context(), claims.Actor()))
		c.Next()
	}
}

// RequireIdentity rejects warehouse tokens. Board routes accept identity-provider tokens only.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a := auth.ActorFromContext(c.Request.Context()); a != nil && a.Role != "" {
			response.Error(c, apperr.Forbidden("board routes require an identity token"))
			return
		}
		c.Next()
	}
}

// SyncProfile upserts the caller's member profile before board requests.
// A failed upsert is logged and does not block the request.
func SyncProfile(profiles ProfileSaver, log logger.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := profiles.SaveProfile(c.Request.Context()); err != nil {
			log.Warn("failed to sync member profile",
				zap.String("user_id", auth.GetUserID(c.Request.Context())),
				zap.Error(err),
			)
		}
		c.Next()
	}
}
