package httptransport_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/internal/platform/middleware"
	"veridoc/internal/platform/token"
	httptransport "veridoc/internal/transport/http"
	"veridoc/pkg/platform/audit"
	"veridoc/pkg/platform/audit/publisher"
	auditmemory "veridoc/pkg/platform/audit/store/memory"
)

func newTestRouter(t *testing.T) (http.Handler, *token.Service, *publisher.Publisher) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	tokens := token.NewService("test-key", "veridoc", "veridoc-admin")
	pub := publisher.NewPublisher(auditmemory.NewInMemoryStore())

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         logger,
		TokenValidator: token.NewMiddlewareAdapter(tokens),
		Audit:          pub,
	})
	return router, tokens, pub
}

func TestHealthz(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpointExposed(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDEchoed(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(middleware.RequestIDHeader))
}

func TestAdminRoutesRequireToken(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/audit/sessions/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRejectNonAdminRole(t *testing.T) {
	router, tokens, _ := newTestRouter(t)

	signed, err := tokens.Generate("viewer@example.com", "viewer", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/audit/sessions/abc", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminAuditTrail(t *testing.T) {
	router, tokens, pub := newTestRouter(t)

	err := pub.Emit(context.Background(), audit.Event{
		SessionID: "session-1",
		Action:    string(audit.EventResolutionStarted),
	})
	require.NoError(t, err)

	signed, err := tokens.Generate("ops@example.com", middleware.RoleAdmin, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/audit/sessions/session-1", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var events []audit.Event
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&events))
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventResolutionStarted), events[0].Action)
}
