package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/database"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type fakeBot struct{}

func (fakeBot) IsReady() bool   { return true }
func (fakeBot) GuildCount() int { return 1 }

func newTestAPI(t *testing.T) (*Server, *moderation.Service) {
	t.Helper()
	ctx := context.Background()

	backend, err := database.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	svc, err := moderation.NewService(ctx, backend, moderation.Options{})
	require.NoError(t, err)

	_, err = svc.IssueWarning(ctx, moderation.WarnRequest{CommunityID: "g", MemberID: "111", Reason: "spam", ModeratorID: "mod"})
	require.NoError(t, err)
	_, err = svc.ApplyManualPunishment(ctx, moderation.PunishRequest{
		CommunityID: "g", MemberID: "222", Kind: moderation.KindBan, DurationMinutes: 60, Reason: "raid", ModeratorID: "mod",
	})
	require.NoError(t, err)

	s := NewServer(Options{})
	gin.SetMode(gin.TestMode)
	SetupAPIRoutes(s, &API{Service: svc, Backend: backend, Bot: fakeBot{}})
	return s, svc
}

func get(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestHealth(t *testing.T) {
	s, _ := newTestAPI(t)
	w, body := get(t, s, "/api/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestStatus(t *testing.T) {
	s, _ := newTestAPI(t)
	w, body := get(t, s, "/api/status")
	require.Equal(t, http.StatusOK, w.Code)

	storage := body["storage"].(map[string]any)
	assert.Equal(t, "json", storage["backend"])
	assert.Equal(t, true, storage["isOnline"])

	mod := body["moderation"].(map[string]any)
	assert.EqualValues(t, 2, mod["activeMutes"].(float64)+mod["activeBans"].(float64))
	assert.EqualValues(t, 1, mod["activeBans"])
	assert.Equal(t, true, body["bot"].(map[string]any)["isOnline"])
}

func TestPunishments(t *testing.T) {
	s, _ := newTestAPI(t)

	_, body := get(t, s, "/api/punishments")
	assert.EqualValues(t, 2, body["count"])

	_, body = get(t, s, "/api/punishments?kind=ban")
	assert.EqualValues(t, 1, body["count"])

	w, _ := get(t, s, "/api/punishments?kind=kick")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMemberRoutes(t *testing.T) {
	s, _ := newTestAPI(t)

	_, body := get(t, s, "/api/members/222/punishments")
	assert.EqualValues(t, 1, body["count"])

	_, body = get(t, s, "/api/members/111/warnings")
	assert.EqualValues(t, 1, body["count"])

	_, body = get(t, s, "/api/members/999/warnings")
	assert.EqualValues(t, 0, body["count"])
	assert.Equal(t, []any{}, body["warnings"])
}

func TestNotFoundAndMetrics(t *testing.T) {
	s, _ := newTestAPI(t)

	w, body := get(t, s, "/api/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.EqualValues(t, 404, body["status"])

	w, _ = get(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestRateLimitPerIP(t *testing.T) {
	s := NewServer(Options{RateLimit: rate.Every(time.Hour), Burst: 2})
	s.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = ip + ":4000"
		w := httptest.NewRecorder()
		s.Engine().ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("10.0.0.2"), "limits are per IP")
}

func TestAllowedHosts(t *testing.T) {
	s := NewServer(Options{AllowedHosts: regexp.MustCompile(`^(.+\.)?miau\.media$`)})
	s.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "http://api.miau.media/ping", nil)
	w = httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestShutdownBeforeStart(t *testing.T) {
	s := NewServer(Options{})
	require.NoError(t, s.Shutdown(context.Background()))
	assert.NoError(t, s.Start("0"), "a closed server does not listen")
}
