package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestExecute tests analyzer execution against a stub service.
func TestExecute(t *testing.T) {
	t.Parallel()

	t.Run("successful execution", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("unexpected method: %s", r.Method)
			}
			if !strings.HasSuffix(r.URL.Path, "/api/v2/skills/skill-1/execute") {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if got := r.Header.Get("X-Browser-Use-API-Key"); got != "key-1" {
				t.Errorf("unexpected api key header: %q", got)
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				t.Errorf("failed to read request body: %v", err)
			}
			var req struct {
				Parameters struct {
					URL string `json:"url"`
				} `json:"parameters"`
			}
			if err := json.Unmarshal(body, &req); err != nil {
				t.Errorf("failed to parse request body: %v", err)
			}
			if req.Parameters.URL != "https://example.com/tos" {
				t.Errorf("unexpected target URL: %q", req.Parameters.URL)
			}

			w.Header().Set("Content-Type", "application/json")
			if _, err := w.Write([]byte(`{"result":{"data":{"summary":{"overall_risk_level":"Low"}}}}`)); err != nil {
				t.Errorf("failed to write response: %v", err)
			}
		}))
		defer server.Close()

		client := NewClient("key-1", "skill-1", WithBaseURL(server.URL))
		payload, err := client.Execute(context.Background(), "https://example.com/tos")
		if err != nil {
			t.Fatalf("execute failed: %v", err)
		}
		if !strings.Contains(string(payload), "overall_risk_level") {
			t.Errorf("unexpected payload: %s", payload)
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		t.Parallel()

		client := NewClient("", "")
		if client.Configured() {
			t.Error("expected unconfigured client")
		}
		if _, err := client.Execute(context.Background(), "https://example.com/tos"); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("expected ErrNotConfigured, got %v", err)
		}
	})

	t.Run("HTTP error surfaces as request failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			if _, err := w.Write([]byte("invalid api key")); err != nil {
				t.Errorf("failed to write response: %v", err)
			}
		}))
		defer server.Close()

		client := NewClient("bad-key", "skill-1", WithBaseURL(server.URL))
		_, err := client.Execute(context.Background(), "https://example.com/tos")
		if !errors.Is(err, ErrRequestFailed) {
			t.Fatalf("expected ErrRequestFailed, got %v", err)
		}
		if !strings.Contains(err.Error(), "401") {
			t.Errorf("expected status code in error, got %v", err)
		}
	})

	t.Run("network failure surfaces as request failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		server.Close() // deliberately closed

		client := NewClient("key-1", "skill-1", WithBaseURL(server.URL))
		if _, err := client.Execute(context.Background(), "https://example.com/tos"); !errors.Is(err, ErrRequestFailed) {
			t.Errorf("expected ErrRequestFailed, got %v", err)
		}
	})
}
