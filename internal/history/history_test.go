package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"postergeist/internal/logging"
)

func TestAddThenContains(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	log, err := Open(path, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if log.Contains("beach.jpg") {
		t.Fatal("fresh log should not contain anything")
	}
	if err := log.Add("beach.jpg", nil); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !log.Contains("beach.jpg") {
		t.Fatal("Contains should see the added image")
	}
}

func TestAddDuplicateKeepsSetSemantics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	log, err := Open(path, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := log.Add("sunset.jpg", nil); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	if err := log.Add("sunset.jpg", nil); err != nil {
		t.Fatalf("duplicate Add: %v", err)
	}
	if got := log.Count(); got != 1 {
		t.Fatalf("Count = %d, want 1", got)
	}
}

func TestAddPersistsImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	log, err := Open(path, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := log.Add("hike.jpg", map[string]string{"size": "1080x1080"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// A second Open simulates a fresh process after a crash.
	reopened, err := Open(path, logging.NewNop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !reopened.Contains("hike.jpg") {
		t.Fatal("record lost across reopen")
	}
	entries := reopened.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0]["size"] != "1080x1080" {
		t.Fatalf("extra metadata lost: %+v", entries[0])
	}
	if entries[0]["posted_at"] == nil {
		t.Fatal("posted_at not recorded")
	}
}

func TestCorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	log, err := Open(path, logging.NewNop())
	if err != nil {
		t.Fatalf("Open should tolerate corruption: %v", err)
	}
	if log.Count() != 0 {
		t.Fatalf("corrupt log should start empty, got %d entries", log.Count())
	}
	if err := log.Add("fresh.jpg", nil); err != nil {
		t.Fatalf("Add after corruption: %v", err)
	}
}

func TestUpstreamShapePreserved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	seed := `[{"image_name": "old.jpg", "format": "JPEG"}]`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	log, err := Open(path, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !log.Contains("old.jpg") {
		t.Fatal("upstream entry not recognized")
	}
	if err := log.Add("new.jpg", nil); err != nil {
		t.Fatalf("Add: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("log no longer valid JSON array: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0]["image_name"] != "old.jpg" || records[0]["format"] != "JPEG" {
		t.Fatalf("upstream record rewritten incorrectly: %+v", records[0])
	}
}
