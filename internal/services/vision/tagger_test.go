package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pic.jpg")
	if err := os.WriteFile(path, []byte("fake-bytes"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	return path
}

func TestNewTaggerDisabledReturnsNoop(t *testing.T) {
	tagger, err := NewTagger(Config{Enabled: false})
	if err != nil {
		t.Fatalf("NewTagger: %v", err)
	}
	labels, err := tagger.Analyze(context.Background(), "does-not-exist.jpg")
	if err != nil {
		t.Fatalf("noop Analyze: %v", err)
	}
	if len(labels) != 0 {
		t.Fatalf("noop returned labels: %v", labels)
	}
}

func TestNewTaggerEnabledRequiresKey(t *testing.T) {
	if _, err := NewTagger(Config{Enabled: true}); err == nil {
		t.Fatal("expected configuration error")
	}
}

func TestAnalyzeReturnsLabels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images:annotate" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "secret" {
			t.Fatalf("missing api key")
		}
		var req annotateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Requests) != 1 || req.Requests[0].Image.Content == "" {
			t.Fatalf("image content missing: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"responses": []map[string]any{{
				"labelAnnotations": []map[string]any{
					{"description": "Beach", "score": 0.98},
					{"description": "Sky", "score": 0.95},
				},
			}},
		})
	}))
	defer server.Close()

	tagger, err := NewTagger(Config{Enabled: true, APIKey: "secret", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewTagger: %v", err)
	}
	labels, err := tagger.Analyze(context.Background(), writeImage(t))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(labels) != 2 || labels[0] != "Beach" || labels[1] != "Sky" {
		t.Fatalf("labels = %v", labels)
	}
}

func TestAnalyzeAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"responses": []map[string]any{{
				"error": map[string]any{"message": "quota exceeded"},
			}},
		})
	}))
	defer server.Close()

	tagger, err := New(Config{Enabled: true, APIKey: "secret", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := tagger.Analyze(context.Background(), writeImage(t)); err == nil {
		t.Fatal("expected API error")
	}
}

func TestAnalyzeEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"responses": []map[string]any{{"labelAnnotations": []any{}}},
		})
	}))
	defer server.Close()

	tagger, err := New(Config{Enabled: true, APIKey: "secret", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	labels, err := tagger.Analyze(context.Background(), writeImage(t))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(labels) != 0 {
		t.Fatalf("expected no labels, got %v", labels)
	}
}
