package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"svcman/internal/app"
	"svcman/internal/pkg/config"
	"svcman/internal/pkg/executor/executortest"
	"svcman/internal/pkg/logs"
	"svcman/internal/pkg/systemd"
	"svcman/internal/service"

	"github.com/stretchr/testify/assert"
)

func newTestRouter(auth bool) http.Handler {
	cfg := config.Default()
	cfg.Security.EnableAuth = auth
	cfg.Security.APIKey = "secret"

	fake := executortest.New().On(systemd.ListUnitsCommand, "ssh.service loaded active running OpenSSH server\n", nil)
	svc := service.NewService(fake, logs.NewReader(fake, cfg.Logs), nil)
	return New(cfg, app.New(svc, "test"))
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	rec := serve(newTestRouter(true), httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestAuthDisabled(t *testing.T) {
	rec := serve(newTestRouter(false), httptest.NewRequest(http.MethodGet, "/services", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ssh.service")
}

func TestAuthRequired(t *testing.T) {
	h := newTestRouter(true)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/services", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/services", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, serve(h, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/services", nil)
	req.Header.Set("Authorization", "Token secret")
	assert.Equal(t, http.StatusUnauthorized, serve(h, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/services", nil)
	req.Header.Set("Authorization", "Bearer secret")
	assert.Equal(t, http.StatusOK, serve(h, req).Code)
}

func TestCORSPreflight(t *testing.T) {
	rec := serve(newTestRouter(true), httptest.NewRequest(http.MethodOptions, "/services", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownRoute(t *testing.T) {
	rec := serve(newTestRouter(false), httptest.NewRequest(http.MethodDelete, "/services/ssh.service", nil))
	assert.GreaterOrEqual(t, rec.Code, 400)
}

func TestCrossOriginPostWithoutAuthIsRejected(t *testing.T) {
	cfg := config.Default()
	fake := executortest.New()
	svc := service.NewService(fake, logs.NewReader(fake, cfg.Logs), nil)
	h := New(cfg, app.New(svc, "test"))

	for _, action := range []string{"start", "stop", "restart", "disable"} {
		req := httptest.NewRequest(http.MethodPost, "/services/sshd.service/"+action, nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := serve(h, req)

		assert.GreaterOrEqual(t, rec.Code, 400, action)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"), action)
	}
	assert.Empty(t, fake.Calls)
}

func TestPostWithAuthReachesRunner(t *testing.T) {
	cfg := config.Default()
	cfg.Security.EnableAuth = true
	cfg.Security.APIKey = "secret"
	fake := executortest.New()
	svc := service.NewService(fake, logs.NewReader(fake, cfg.Logs), nil)
	h := New(cfg, app.New(svc, "test"))

	req := httptest.NewRequest(http.MethodPost, "/services/sshd.service/stop", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := serve(h, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, []string{"sudo systemctl stop sshd.service"}, fake.Commands())
}

func TestPreflightDoesNotAdvertisePost(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/services/sshd.service/stop", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := serve(newTestRouter(true), req)

	assert.NotContains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}
