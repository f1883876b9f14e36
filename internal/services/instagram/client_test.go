package instagram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"postergeist/internal/location"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := New(Config{Username: "user", Password: "pass", BaseURL: baseURL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New(Config{Username: "user"}); err == nil {
		t.Fatal("expected error for missing password")
	}
	if _, err := New(Config{Password: "pass"}); err == nil {
		t.Fatal("expected error for missing username")
	}
}

func TestLoginSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts/login/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("username") != "user" {
			t.Fatalf("missing username in form: %v", r.PostForm)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"logged_in": true, "status": "ok"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if err := client.Login(context.Background()); err != nil {
		t.Fatalf("Login: %v", err)
	}
}

func TestLoginRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"logged_in": false, "message": "bad password"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if err := client.Login(context.Background()); err == nil {
		t.Fatal("expected rejected login to error")
	}
}

func TestSearchLocations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/location_search/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("latitude") != "40.01" {
			t.Fatalf("latitude = %s", r.URL.Query().Get("latitude"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"venues": []map[string]any{
				{"name": "A", "external_id": "1", "lat": 40.0, "lng": -73.0},
				{"name": "B", "external_id": "2", "lat": 41.0, "lng": -73.0},
			},
			"status": "ok",
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	candidates, err := client.SearchLocations(context.Background(), 40.01, -73.0)
	if err != nil {
		t.Fatalf("SearchLocations: %v", err)
	}
	if len(candidates) != 2 || candidates[0].Name != "A" || candidates[1].ExternalID != "2" {
		t.Fatalf("unexpected candidates %+v", candidates)
	}
}

func TestSearchLocationsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"venues": []any{}, "status": "ok"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	candidates, err := client.SearchLocations(context.Background(), 0.01, 0.01)
	if err != nil {
		t.Fatalf("empty venues should not error: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("expected no candidates, got %d", len(candidates))
	}
}

func TestUploadPhoto(t *testing.T) {
	imagePath := filepath.Join(t.TempDir(), "pic.jpg")
	if err := os.WriteFile(imagePath, []byte("fake-jpeg-bytes"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/media/photo/upload/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if r.MultipartForm.Value["caption"][0] != "a day out" {
			t.Fatalf("caption = %v", r.MultipartForm.Value["caption"])
		}
		if r.MultipartForm.Value["location_external_id"][0] != "42" {
			t.Fatalf("location id = %v", r.MultipartForm.Value["location_external_id"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"media_type": 1, "status": "ok"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	upload, err := client.UploadPhoto(context.Background(), imagePath, "a day out",
		location.Candidate{Name: "Park", ExternalID: "42", Lat: 40, Lng: -73})
	if err != nil {
		t.Fatalf("UploadPhoto: %v", err)
	}
	if !upload.Succeeded() {
		t.Fatalf("expected success, got %+v", upload)
	}
}

func TestUploadPhotoServerError(t *testing.T) {
	imagePath := filepath.Join(t.TempDir(), "pic.jpg")
	if err := os.WriteFile(imagePath, []byte("x"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "spam detected", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.UploadPhoto(context.Background(), imagePath, "", location.Candidate{}); err == nil {
		t.Fatal("expected upload error")
	}
}
