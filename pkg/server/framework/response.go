package framework

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Respond converts a Go value to JSON and sends it to the client.
func Respond(c *gin.Context, data any, statusCode int) {
	// if there's no payload to marshal, set the status code of the response
	// and return
	if statusCode == http.StatusNoContent || data == nil {
		c.Status(statusCode)
		return
	}

	// respond with pretty JSON
	c.IndentedJSON(statusCode, data)
}

// Redirect sends the client a 302 to the given location.
func Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

// RespondError sends an error response back to the client. If the error is a
// `SafeError`, the error message and fields are sent back to the client. If
// the error is not a `SafeError`, a generic error message is sent back to
// the client since it may contain sensitive data.
func RespondError(c *gin.Context, err error) {
	var safeErr *SafeError
	if ok := errors.As(errors.Cause(err), &safeErr); ok {
		Respond(c, ErrorResponse{Error: safeErr.Err.Error(), Fields: safeErr.Fields}, safeErr.StatusCode)
		return
	}
	Respond(c, ErrorResponse{Error: http.StatusText(http.StatusInternalServerError)}, http.StatusInternalServerError)
}

// RespondLoggingError logs the error before responding with it.
func RespondLoggingError(c *gin.Context, err error) {
	logrus.WithError(err).Error("request failed")
	RespondError(c, err)
}
