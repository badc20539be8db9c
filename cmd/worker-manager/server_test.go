// cmd/worker-manager/server_test.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthMux(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		checks     map[string]func(context.Context) error
		wantStatus int
		wantState  string
	}{
		{
			name:       "health is always ok",
			path:       "/health",
			checks:     map[string]func(context.Context) error{"zeebe": func(context.Context) error { return errors.New("down") }},
			wantStatus: http.StatusOK,
			wantState:  "healthy",
		},
		{
			name: "ready when every check passes",
			path: "/ready",
			checks: map[string]func(context.Context) error{
				"zeebe": func(context.Context) error { return nil },
				"redis": func(context.Context) error { return nil },
			},
			wantStatus: http.StatusOK,
			wantState:  "ready",
		},
		{
			name: "not ready when one check fails",
			path: "/ready",
			checks: map[string]func(context.Context) error{
				"zeebe": func(context.Context) error { return nil },
				"redis": func(context.Context) error { return errors.New("connection refused") },
			},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "not_ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newHealthMux(tt.checks).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantState, body["status"])
		})
	}
}

func TestHealthMux_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()
	newHealthMux(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
