package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestReady(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		check          func(ctx context.Context) error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "ready",
			check:          func(ctx context.Context) error { return nil },
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"ready"}`,
		},
		{
			name:           "database unreachable",
			check:          func(ctx context.Context) error { return errors.New("dial tcp: connection refused") },
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `{"status":"unavailable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := gin.New()
			r.GET("/readyz", Ready(tt.check))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if w.Body.String() != tt.expectedBody {
				t.Errorf("expected body %s, got %s", tt.expectedBody, w.Body.String())
			}
			if w.Header().Get("Cache-Control") != "no-store" {
				t.Errorf("expected Cache-Control 'no-store', got %q", w.Header().Get("Cache-Control"))
			}
		})
	}
}

func TestReady_PassesDeadline(t *testing.T) {
	t.Parallel()

	var hadDeadline bool
	r := gin.New()
	r.GET("/readyz", Ready(func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	}))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if !hadDeadline {
		t.Error("expected readiness check to run with a deadline")
	}
}
