package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/skladapp/sklad-backend/pkg/config"
)

func testImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "label.jpg")
	if err := os.WriteFile(path, []byte("not-really-a-jpeg"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	return path
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(config.VisionConfig{APIKey: "test-key", Endpoint: srv.URL, Timeout: 5 * time.Second})
	if c == nil {
		t.Fatal("expected client")
	}
	return c
}

func TestNewWithoutKeyReturnsNil(t *testing.T) {
	if c := New(config.VisionConfig{}); c != nil {
		t.Fatal("expected nil client without API key")
	}
}

func TestRecognizeTextParsesAnnotation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in query: %s", r.URL.RawQuery)
		}
		var req annotateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if len(req.Requests) != 1 || req.Requests[0].Features[0].Type != "TEXT_DETECTION" {
			t.Errorf("unexpected request payload: %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"responses": []map[string]any{{
				"textAnnotations": []map[string]string{{"description": "BOSCH 0986452041"}},
			}},
		})
	})

	text, err := c.RecognizeText(context.Background(), testImage(t))
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if text != "BOSCH 0986452041" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestRecognizeTextEmptyWhenNoAnnotations(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"responses": []map[string]any{{}}})
	})

	text, err := c.RecognizeText(context.Background(), testImage(t))
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty text, got %q", text)
	}
}

func TestRecognizeTextSurfacesAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"denied"}`))
	})

	if _, err := c.RecognizeText(context.Background(), testImage(t)); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestRecognizeTextMissingImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	if _, err := c.RecognizeText(context.Background(), filepath.Join(t.TempDir(), "nope.jpg")); err == nil {
		t.Fatal("expected error for missing image file")
	}
}
