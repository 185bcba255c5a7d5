package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"NewsAnalyzer/internal/apperr"
)

// ErrorBody is the payload of a rejected request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorBody under "detail".
type ErrorResponse struct {
	Detail ErrorBody `json:"detail"`
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	appErr, ok := apperr.As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	message := err.Error()
	if appErr, ok := apperr.As(err); ok {
		message = appErr.Message
		if appErr.Err != nil && status >= http.StatusInternalServerError {
			message += ": " + appErr.Err.Error()
		}
	}

	if h.logger != nil {
		level := h.logger.Warn
		if status >= http.StatusInternalServerError {
			level = h.logger.Error
		}
		level("request rejected", "path", c.FullPath(), "status", status, "code", apperr.CodeOf(err), "error", err, "request_id", requestID(c))
	}
	writeError(c, status, apperr.CodeOf(err), message)
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Detail: ErrorBody{Code: code, Message: message}})
}
