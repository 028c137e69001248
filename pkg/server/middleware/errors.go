package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/verusid/login-consent/pkg/server/framework"
)

// Errors handles errors coming out of the call stack. It detects safe
// application errors (aka SafeError) that were used to respond to the
// requester in a normalized way; shutdown-worthy errors are marked in the
// context for the server to act on.
func Errors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		errs := c.Errors.ByType(gin.ErrorTypeAny)
		if len(errs) == 0 {
			return
		}

		// check if there's a shutdown-worthy error
		for _, e := range errs {
			if framework.IsShutdown(e.Err) {
				c.Set(framework.ShutdownErrorKey.String(), e.Err)
				return
			}
		}

		// otherwise just log the errors; the handler already responded
		logrus.Errorf("request errors: %v", errs)
	}
}
