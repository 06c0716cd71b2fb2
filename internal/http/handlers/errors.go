package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"cabbooking/internal/domain"
	"cabbooking/internal/http/middleware"
	"cabbooking/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the error envelope every endpoint answers with.
type ErrorResponse struct {
	OK        bool   `json:"ok"`
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, kind, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	if c.GetString(middleware.ErrorKindKey) == "" {
		c.Set(middleware.ErrorKindKey, kind)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     kind,
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	c.Set(middleware.ErrorKindKey, domain.Kind(err))
	var (
		verr     domain.ValidationError
		conflict domain.ConflictError
		limited  domain.RateLimitedError
	)
	switch {
	case errors.As(err, &verr):
		var details any
		if verr.Field != "" {
			details = gin.H{"field": verr.Field}
		}
		respondError(c, http.StatusBadRequest, domain.KindValidation, "validation_error", err.Error(), details)
	case errors.As(err, &conflict):
		var details any
		if len(conflict.Details) > 0 {
			details = conflict.Details
		}
		respondError(c, http.StatusConflict, domain.KindValidation, conflict.Code, err.Error(), details)
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, domain.KindUnauthorized, "unauthorized", err.Error(), nil)
	case domain.IsAlreadyUsed(err):
		respondError(c, http.StatusGone, domain.KindAlreadyUsed, "already_used", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, domain.KindNotFound, "not_found", err.Error(), nil)
	case errors.As(err, &limited):
		secs := limited.RetryAfterSeconds()
		c.Header("Retry-After", strconv.Itoa(secs))
		respondError(c, http.StatusTooManyRequests, domain.KindRateLimited, "rate_limited", err.Error(),
			gin.H{"retryAfter": secs, "scope": limited.Scope})
	default:
		utils.LogWarn(middleware.GetRequestID(c), "http", c.Request.Method+" "+c.FullPath(), "request failed", err)
		respondError(c, http.StatusInternalServerError, domain.KindUnknown, "internal_error", "something went wrong, please try again", nil)
	}
}

func respondValidation(c *gin.Context, field, message string) {
	RespondDomainError(c, domain.ValidationError{Field: field, Msg: message})
}
