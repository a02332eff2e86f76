package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidtube/backend/internal/apperror"
	"github.com/vidtube/backend/internal/lib/logger/sl"
	"github.com/vidtube/backend/internal/model"
)

func respond(c *gin.Context, status int, data any, message string) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(status, model.APIResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// writeError answers with the error envelope and aborts the chain. Server
// side failures are logged with their cause; the caller only sees the
// message.
func writeError(c *gin.Context, log *slog.Logger, err error) {
	appErr := apperror.From(err)
	status := appErr.HTTPStatus()

	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			sl.Err(err),
		)
	}
	_ = c.Error(err)

	details := appErr.Details
	if details == nil {
		details = []string{}
	}
	c.AbortWithStatusJSON(status, model.ErrorResponse{
		StatusCode: status,
		Message:    appErr.Message,
		Success:    false,
		Errors:     details,
	})
}

// bind decodes the body by content type. A malformed body is a validation
// error.
func bind(c *gin.Context, log *slog.Logger, dst any) bool {
	if err := c.ShouldBind(dst); err != nil {
		writeError(c, log, apperror.Validation("invalid request body", err.Error()))
		return false
	}
	return true
}
