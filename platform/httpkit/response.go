package httpkit

import (
	"errors"
	"net/http"

	"dentalcare_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

const msgInternal = "internal server error"

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Field   string      `json:"field,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// Created sends a 201 Created response with the given payload.
func Created(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusCreated, payload)
}

// HandleError maps err to an HTTP response. Typed *apperr.Error values,
// wrapped or not, use their Kind; anything else is a 500 whose message is
// not exposed. Returns true if an error was handled.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	status, body := errorBody(err)
	_ = c.Error(err)
	c.JSON(status, body)
	return true
}

// Abort is HandleError for middleware: it stops the handler chain.
func Abort(c *gin.Context, err error) {
	status, body := errorBody(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func errorBody(err error) (int, ErrorResponse) {
	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		return domainErr.HTTPStatus(), ErrorResponse{
			Error:   domainErr.Message,
			Code:    domainErr.Code(),
			Field:   domainErr.Field,
			Details: domainErr.Details,
		}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: msgInternal, Code: apperr.KindInternal.String()}
}
