package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthServer_Liveness(t *testing.T) {
	h := NewHealthServer(":0", slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	h.handleLiveness(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHealthServer_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		wantStatus int
		wantBody   string
	}{
		{
			name:       "not ready before initialization",
			ready:      false,
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "not ready",
		},
		{
			name:       "ready after initialization",
			ready:      true,
			wantStatus: http.StatusOK,
			wantBody:   "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthServer(":0", slog.Default())
			h.SetReady(tt.ready)

			req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
			rec := httptest.NewRecorder()

			h.handleReadiness(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp healthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantBody, resp.Status)
		})
	}
}

func TestHealthServer_ReadinessTransitions(t *testing.T) {
	h := NewHealthServer(":0", slog.Default())

	check := func(wantStatus int) {
		rec := httptest.NewRecorder()
		h.handleReadiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, wantStatus, rec.Code)
	}

	check(http.StatusServiceUnavailable)
	h.SetReady(true)
	check(http.StatusOK)
	h.SetReady(false)
	check(http.StatusServiceUnavailable)
}

func TestHealthServer_GracefulShutdown(t *testing.T) {
	h := NewHealthServer("127.0.0.1:0", slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- h.Start(ctx)
	}()

	// Give the listener a moment to come up, then cancel
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("health server did not shut down")
	}
}
