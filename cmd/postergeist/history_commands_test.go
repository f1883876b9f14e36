package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHistoryCheckAndList(t *testing.T) {
	cfgPath := writeWorkspaceConfig(t)

	// Seed log.json next to the images, the default history location.
	base := filepath.Dir(cfgPath)
	logPath := filepath.Join(base, "images", "log.json")
	seed := `[{"image_name": "beach.jpg", "posted_at": "2026-08-01T10:15:00Z", "location": "Pier 7"}]`
	if err := os.WriteFile(logPath, []byte(seed), 0o644); err != nil {
		t.Fatalf("seed history: %v", err)
	}

	out, err := runCommand(t, "--config", cfgPath, "history", "check", "beach.jpg")
	if err != nil {
		t.Fatalf("history check: %v", err)
	}
	if !strings.Contains(out, "beach.jpg: posted") {
		t.Fatalf("unexpected output: %s", out)
	}

	out, err = runCommand(t, "--config", cfgPath, "history", "check", "mountain.jpg")
	if err != nil {
		t.Fatalf("history check: %v", err)
	}
	if !strings.Contains(out, "mountain.jpg: not posted") {
		t.Fatalf("unexpected output: %s", out)
	}

	out, err = runCommand(t, "--config", cfgPath, "history", "list")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	for _, want := range []string{"beach.jpg", "Pier 7", "1 posts recorded"} {
		if !strings.Contains(out, want) {
			t.Fatalf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestHistoryListEmpty(t *testing.T) {
	cfgPath := writeWorkspaceConfig(t)

	out, err := runCommand(t, "--config", cfgPath, "history", "list")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	if !strings.Contains(out, "No posts recorded") {
		t.Fatalf("unexpected output: %s", out)
	}
}
