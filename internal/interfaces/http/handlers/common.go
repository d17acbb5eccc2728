// Package handlers implements the HTTP request handlers for the analysis
// API.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/safespeak/internal/interfaces/http/middleware"
	"github.com/turtacn/safespeak/pkg/errors"
	"github.com/turtacn/safespeak/pkg/types/risk"
)

// writeAppError maps an application error onto the HTTP status taxonomy and
// writes the standard error body.  Internal details are never exposed.
func writeAppError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatus(code)

	message := "internal server error"
	if ae, ok := err.(*errors.AppError); ok && code != errors.CodeInternal && code != errors.CodeUnknown {
		message = ae.Message
	}

	c.JSON(status, risk.ErrorResponse{
		Code:      code.String(),
		Message:   message,
		RequestID: middleware.GetRequestID(c),
		Retryable: errors.IsRetryable(err),
	})
}
