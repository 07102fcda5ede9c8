package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/site19/containment-backend/internal/apperr"
	"github.com/site19/containment-backend/internal/logger"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError maps a taxonomy error to its status/code envelope. Anything
// outside the taxonomy is logged and surfaced as a generic 500; storage
// failures are never leaked to the caller.
func RespondError(c *gin.Context, log *logger.Logger, err error) {
	if appErr := apperr.From(err); appErr != nil {
		c.JSON(appErr.Status, ErrorEnvelope{
			Error: APIError{Message: appErr.Error(), Code: appErr.Code},
		})
		return
	}
	if log != nil {
		log.Error("Unexpected error", "error", err)
	}
	c.JSON(http.StatusInternalServerError, ErrorEnvelope{
		Error: APIError{Message: "internal error"},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
