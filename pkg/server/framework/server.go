// Package framework is a minimal web framework.
package framework

import (
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/verusid/login-consent/config"
)

type contextKey string

const (
	TraceIDKey       contextKey = "traceID"
	RequestStateKey  contextKey = "requestState"
	ShutdownErrorKey contextKey = "shutdownError"
)

func (c contextKey) String() string {
	return string(c)
}

// RequestState carries per-request bookkeeping. It is set by the server's
// tracing middleware and read by the logging middleware.
type RequestState struct {
	TraceID    string
	Now        time.Time
	StatusCode int
}

// Server is the entrypoint into our application and what configures our
// context object for each of our http handlers.
type Server struct {
	*http.Server
	router   *gin.Engine
	tracer   trace.Tracer
	shutdown chan os.Signal
}

// NewServer creates a Server that handles a set of routes for the
// application. The server's tracing middleware is registered on the engine
// so every request carries a RequestState.
func NewServer(cfg config.ServerConfig, handler *gin.Engine, shutdown chan os.Signal) *Server {
	var tracer trace.Tracer
	if cfg.JagerEnabled {
		tracer = otel.Tracer(config.ServiceName)
	}

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.APIHost,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
		},
		router:   handler,
		tracer:   tracer,
		shutdown: shutdown,
	}
	server.router.Use(server.Tracing())
	return server
}

// Tracing initializes the request state for each request and, when the
// tracer is configured, opens a span covering the handler. Errors flagged
// as shutdown errors signal a graceful server shutdown.
func (s *Server) Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		state := RequestState{Now: time.Now()}
		c.Set(RequestStateKey.String(), &state)

		if s.tracer != nil {
			ctx, span := s.tracer.Start(c.Request.Context(), c.Request.URL.Path)
			defer span.End()

			state.TraceID = span.SpanContext().TraceID().String()
			c.Set(TraceIDKey.String(), state.TraceID)
			span.SetAttributes(
				attribute.String("method", c.Request.Method),
				attribute.String("path", c.Request.URL.Path),
				attribute.String("host", c.Request.Host),
				attribute.String("user-agent", c.Request.UserAgent()),
				attribute.String("proto", c.Request.Proto),
			)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()

		state.StatusCode = c.Writer.Status()
		for _, e := range c.Errors {
			if IsShutdown(e.Err) {
				c.Set(ShutdownErrorKey.String(), e.Err)
				logrus.WithError(e.Err).Error("unsafe error, shutting down")
				s.SignalShutdown()
				return
			}
		}
	}
}

// SignalShutdown is used to gracefully shut down the server when an
// integrity issue is identified.
func (s *Server) SignalShutdown() {
	s.shutdown <- syscall.SIGTERM
}
