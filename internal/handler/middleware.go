package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vidtube/backend/internal/apperror"
	"github.com/vidtube/backend/internal/model"
	"github.com/vidtube/backend/internal/service"
)

const authUserKey = "auth_user"

type authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// Session rejects requests without a valid access token. A missing token is
// a 401; a token that fails verification, or whose account is gone, is
// reported as a 400.
func Session(auth authenticator, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		token, ok := extractToken(c)
		if !ok {
			writeError(c, log, apperror.Unauthenticated("unauthorized request"))
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			writeError(c, log, invalidSession(err))
			return
		}

		c.Set(authUserKey, user)
		c.Next()
	}
}

// OptionalSession attaches the caller when a valid token is present and
// never rejects.
func OptionalSession(auth authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := extractToken(c); ok {
			if user, err := auth.Authenticate(c.Request.Context(), token); err == nil {
				c.Set(authUserKey, user)
			}
		}
		c.Next()
	}
}

func invalidSession(err error) error {
	if errors.Is(err, apperror.ErrInvalidToken) {
		return apperror.Wrap(apperror.KindAuthentication, "invalid access token", err).
			WithStatus(http.StatusBadRequest)
	}
	return err
}

// extractToken prefers the accessToken cookie over the Authorization header.
func extractToken(c *gin.Context) (string, bool) {
	if token, err := c.Cookie(service.AccessCookieName); err == nil {
		if token = strings.TrimSpace(token); token != "" {
			return token, true
		}
	}

	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// CurrentUser is the sanitised account attached by Session or
// OptionalSession, or nil.
func CurrentUser(c *gin.Context) *model.User {
	if value, ok := c.Get(authUserKey); ok {
		if user, ok := value.(*model.User); ok {
			return user
		}
	}
	return nil
}

// RequestLogger writes one line per request.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote_addr", c.ClientIP()),
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request completed", attrs...)
		case status >= http.StatusBadRequest:
			log.Warn("request completed", attrs...)
		default:
			log.Info("request completed", attrs...)
		}
	}
}

// BodyLimit caps request bodies at maxBytes.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
