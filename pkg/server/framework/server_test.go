package framework

import (
	"net/http"
	"net/http/httptest"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verusid/login-consent/config"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		Environment:  config.EnvironmentTest,
		APIHost:      "0.0.0.0:1234",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func TestTracingMiddlewareSetsRequestState(t *testing.T) {
	shutdown := make(chan os.Signal, 1)
	engine := gin.New()
	NewServer(testServerConfig(), engine, shutdown)

	var state *RequestState
	engine.GET("/ping", func(c *gin.Context) {
		v, ok := c.Get(RequestStateKey.String())
		require.True(t, ok)
		state, ok = v.(*RequestState)
		require.True(t, ok)
		assert.False(t, state.Now.IsZero())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, state)
	assert.Equal(t, http.StatusNoContent, state.StatusCode)
	assert.Empty(t, shutdown)
}

func TestTracingMiddlewareRecordsTraceID(t *testing.T) {
	shutdown := make(chan os.Signal, 1)
	engine := gin.New()
	cfg := testServerConfig()
	cfg.JagerEnabled = true
	NewServer(cfg, engine, shutdown)

	engine.GET("/ping", func(c *gin.Context) {
		traceID, ok := c.Get(TraceIDKey.String())
		assert.True(t, ok)
		assert.Len(t, traceID, 32)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestShutdownErrorSignalsServer(t *testing.T) {
	shutdown := make(chan os.Signal, 1)
	engine := gin.New()
	NewServer(testServerConfig(), engine, shutdown)

	engine.GET("/broken", func(c *gin.Context) {
		_ = c.Error(NewShutdownError("storage integrity failure"))
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/broken", nil))

	select {
	case sig := <-shutdown:
		assert.Equal(t, syscall.SIGTERM, sig)
	default:
		t.Fatal("expected a shutdown signal")
	}
}
