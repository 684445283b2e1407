package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/crs/internal/health"
)

func newMetricsServerForTest(t *testing.T) *http.Server {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := log.WithField("test", "http-server")
	healthHandler := healthcheck.NewHandler("test")

	// Addr ":0" не биндится к фиксированному порту, маршруты проверяем
	// напрямую через Handler.
	srv := startMetricsServer(ctx, ":0", logger, healthHandler)
	t.Cleanup(func() { shutdownHTTP(srv, logger) })
	return srv
}

func TestStartMetricsServer_Routes(t *testing.T) {
	srv := newMetricsServerForTest(t)

	testCases := []struct {
		path       string
		wantStatus int
	}{
		{path: "/metrics", wantStatus: http.StatusOK},
		{path: "/healthz", wantStatus: http.StatusOK},
		{path: "/readyz", wantStatus: http.StatusOK},
		{path: "/livez", wantStatus: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(strings.TrimPrefix(tc.path, "/"), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			rec := httptest.NewRecorder()

			srv.Handler.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("GET %s: expected status %d, got %d", tc.path, tc.wantStatus, rec.Code)
			}
		})
	}
}

func TestStartMetricsServer_HealthzReportsFailedChecker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := log.WithField("test", "http-server")
	healthHandler := healthcheck.NewHandler("test")
	healthHandler.RegisterCheck("broken", func(context.Context) error {
		return context.DeadlineExceeded
	})

	srv := startMetricsServer(ctx, ":0", logger, healthHandler)
	defer shutdownHTTP(srv, logger)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d with failed checker, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}

func TestStartMetricsServer_UnknownRoute(t *testing.T) {
	srv := newMetricsServerForTest(t)

	req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown route, got %d", rec.Code)
	}
}

func TestShutdownHTTP_NilServer(t *testing.T) {
	// Не должно паниковать
	shutdownHTTP(nil, log.WithField("test", "http-server"))
}
