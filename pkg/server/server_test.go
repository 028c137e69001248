package server

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verusid/login-consent/config"
	"github.com/verusid/login-consent/pkg/server/framework"
	"github.com/verusid/login-consent/pkg/server/router"
	svcframework "github.com/verusid/login-consent/pkg/service/framework"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestHealthCheckAPI(t *testing.T) {
	shutdown := make(chan os.Signal, 1)
	serverConfig := config.ServerConfig{Environment: config.EnvironmentTest, APIHost: "0.0.0.0:1234"}
	engine := setUpEngine(serverConfig)
	framework.NewServer(serverConfig, engine, shutdown)
	engine.GET(HealthPrefix, router.Health)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "https://login-consent.com/health", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp router.GetHealthCheckResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, router.HealthOK, resp.Status)
	assert.Empty(t, shutdown)
}

func TestHealthCheckAPITracingEnabled(t *testing.T) {
	shutdown := make(chan os.Signal, 1)
	serverConfig := config.ServerConfig{Environment: config.EnvironmentTest, APIHost: "0.0.0.0:1234", JagerEnabled: true}
	engine := setUpEngine(serverConfig)
	framework.NewServer(serverConfig, engine, shutdown)
	engine.GET(HealthPrefix, router.Health)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "https://login-consent.com/health", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, shutdown)
}

type readyService struct {
	serviceType svcframework.Type
	status      svcframework.Status
}

func (s readyService) Type() svcframework.Type     { return s.serviceType }
func (s readyService) Status() svcframework.Status { return s.status }

func TestReadinessAPI(t *testing.T) {
	t.Run("all services ready", func(t *testing.T) {
		handler := router.Readiness([]svcframework.Service{
			readyService{serviceType: svcframework.Consent, status: svcframework.Status{Status: svcframework.StatusReady}},
			readyService{serviceType: svcframework.Registry, status: svcframework.Status{Status: svcframework.StatusReady}},
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "https://login-consent.com/readiness", nil)
		handler(newRequestContext(w, req))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp router.GetReadinessResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, svcframework.StatusReady, resp.Status.Status)
		assert.Len(t, resp.ServiceStatuses, 2)
	})

	t.Run("a service is not ready", func(t *testing.T) {
		handler := router.Readiness([]svcframework.Service{
			readyService{serviceType: svcframework.Consent, status: svcframework.Status{Status: svcframework.StatusReady}},
			readyService{serviceType: svcframework.Registry, status: svcframework.Status{
				Status:  svcframework.StatusNotReady,
				Message: "no storage configured",
			}},
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "https://login-consent.com/readiness", nil)
		handler(newRequestContext(w, req))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var resp router.GetReadinessResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, svcframework.StatusNotReady, resp.Status.Status)
	})
}

func newRequestValue(t *testing.T, data any) io.Reader {
	dataBytes, err := json.Marshal(data)
	require.NoError(t, err)
	require.NotEmpty(t, dataBytes)
	return bytes.NewReader(dataBytes)
}

func newRequestContext(w http.ResponseWriter, req *http.Request) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c
}

func newRequestContextWithParams(w http.ResponseWriter, req *http.Request, params map[string]string) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	for k, v := range params {
		c.AddParam(k, v)
	}
	return c
}
