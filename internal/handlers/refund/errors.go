package refund

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/palmgrove/refund-service/internal/domain"
)

// respondError maps domain errors onto HTTP status codes. Anything without a
// recognized code is reported as an internal error without leaking details.
func respondError(c *gin.Context, err error) {
	code := domain.GetErrorCode(err)

	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case domain.IsNotFoundError(err):
		status = http.StatusNotFound
		message = domainMessage(err)
	case domain.IsInvalidStateError(err), domain.IsInvalidAmountError(err), domain.IsValidationError(err):
		status = http.StatusBadRequest
		message = domainMessage(err)
	default:
		code = domain.ErrorCodeInternalError
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error": message,
		"code":  string(code),
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error": message,
		"code":  string(domain.ErrorCodeValidationFailed),
	})
}

func domainMessage(err error) string {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}
