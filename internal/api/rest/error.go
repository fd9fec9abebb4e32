package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/feral-file/ff-crowdfund/internal/api/shared/errors"
	"github.com/feral-file/ff-crowdfund/internal/logger"
)

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, apierrors.NewBadRequestError(message, details...))
}

// respondValidationError responds with a validation error.
// An *APIError coming out of request validation is forwarded as is.
func respondValidationError(c *gin.Context, err error) {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		c.JSON(http.StatusBadRequest, apiErr)
		return
	}
	c.JSON(http.StatusBadRequest, apierrors.NewValidationError(err.Error()))
}

// respondLedgerError maps a ledger error to its HTTP status and logs server-side failures
func respondLedgerError(c *gin.Context, err error, operation string) {
	status, apiErr := apierrors.FromLedgerError(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorCtx(c.Request.Context(), err,
			zap.String("operation", operation),
			zap.Int("status", status),
		)
	}
	c.JSON(status, apiErr)
}
