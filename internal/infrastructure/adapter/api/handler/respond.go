package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	domainerr "github.com/quicrefill/customer-service/internal/domain/error"
	coreport "github.com/quicrefill/customer-service/internal/domain/port/core"
	"github.com/quicrefill/customer-service/internal/infrastructure/adapter/api/dto"
)

// httpStatusFor maps domain errors onto HTTP status codes. Raw vendor and
// database error bodies never reach the client; only the summarized message
// and numeric code do.
func httpStatusFor(err error) int {
	switch {
	case domainerr.IsValidationError(err),
		errors.Is(err, domainerr.ErrInvalidRequest),
		errors.Is(err, domainerr.ErrDuplicatePayment):
		return http.StatusBadRequest
	case domainerr.IsStateConflictError(err),
		errors.Is(err, domainerr.ErrRefundExceedsAmount),
		domainerr.IsInsufficientBalanceError(err):
		return http.StatusBadRequest
	case domainerr.IsNotFoundError(err):
		return http.StatusNotFound
	case errors.Is(err, domainerr.ErrUnauthorized):
		return http.StatusUnauthorized
	case domainerr.IsWalletLockedError(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError emits the standardized error envelope. Unexpected errors are
// logged with full context; structured errors contribute their own fields.
func writeError(c *gin.Context, logger coreport.Logger, err error, context map[string]any) {
	status := httpStatusFor(err)

	if context == nil {
		context = map[string]any{}
	}
	context["path"] = c.Request.URL.Path
	context["http_status"] = status
	context["error"] = err.Error()

	type fielder interface{ LogFields() map[string]any }
	var f fielder
	if errors.As(err, &f) {
		for k, v := range f.LogFields() {
			context[k] = v
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", context)
	} else {
		logger.Warn("Request rejected", context)
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		// Do not leak internals on unexpected failures
		message = "Internal server error"
	}

	c.JSON(status, dto.ErrorResponse{
		Code:    domainerr.ErrorCode(err),
		Message: message,
	})
}
