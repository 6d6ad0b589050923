package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is the body of every non-2xx response.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
}

// ErrorEnvelope wraps APIError.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

const (
	codeInvalid   = "invalid_request"
	codeDuplicate = "duplicate_request"
	codeInternal  = "internal"
)

func respondError(c *gin.Context, status int, apiErr APIError) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: apiErr})
}

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
