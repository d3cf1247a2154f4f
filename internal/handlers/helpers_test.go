package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tenant-portal/internal/middleware"
	"tenant-portal/internal/mocks"
	"tenant-portal/internal/telemetry"
)

var nopLogger = zap.NewNop().Sugar()

func newTestRouter(uid, email, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.KeyUID, uid)
		c.Set(middleware.KeyEmail, email)
		c.Set(middleware.KeyRole, role)
		c.Set(middleware.KeyToken, "tok")
		c.Set(middleware.KeyIDToken, "idt")
		c.Next()
	})
	return r
}

func newTestEmitter() (*telemetry.Emitter, *mocks.PublisherMock) {
	pub := &mocks.PublisherMock{}
	return telemetry.NewEmitter(pub, "tenant-portal", "test", nopLogger), pub
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}
