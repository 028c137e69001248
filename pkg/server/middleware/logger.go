package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/verusid/login-consent/pkg/server/framework"
)

// Logger logs request info after a handler runs:
// TraceID HTTPMethod Path -> IPAddr (StatusCode) (latency)
func Logger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		v, ok := c.Get(framework.RequestStateKey.String())
		state, isState := v.(*framework.RequestState)
		if !ok || !isState {
			_ = c.Error(framework.NewShutdownError("request state missing from context"))
			return
		}

		log.WithFields(logrus.Fields{
			"traceID": state.TraceID,
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"client":  c.ClientIP(),
			"status":  state.StatusCode,
			"latency": time.Since(state.Now).String(),
		}).Debug("request completed")
	}
}
