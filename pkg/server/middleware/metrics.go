package middleware

import (
	"expvar"
	"runtime"

	"github.com/gin-gonic/gin"
)

// goroutineSampleRate is how many requests pass between goroutine count
// samples.
const goroutineSampleRate = 100

// m contains global program counters
var m = struct {
	gr  *expvar.Int
	req *expvar.Int
	err *expvar.Int
}{
	gr:  expvar.NewInt("goroutines"),
	req: expvar.NewInt("requests"),
	err: expvar.NewInt("errors"),
}

// Metrics counts requests and errors, and periodically samples the number of
// active goroutines.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		m.req.Add(1)
		if m.req.Value()%goroutineSampleRate == 0 {
			m.gr.Set(int64(runtime.NumGoroutine()))
		}
		if len(c.Errors) > 0 {
			m.err.Add(1)
		}
	}
}
