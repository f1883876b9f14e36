package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"postergeist/internal/logging"
)

// keyImageName is the record key shared with the upstream log format.
const keyImageName = "image_name"

// Record is one posted-image entry. Beyond image_name the shape is open;
// extra metadata from older tools is preserved on rewrite.
type Record map[string]any

// ImageName returns the record's identifier, or "" when malformed.
func (r Record) ImageName() string {
	name, _ := r[keyImageName].(string)
	return name
}

// Log is the append-only membership set of posted image names, backed by a
// JSON array on disk. Every Add persists the whole collection before
// returning, so a crash never loses an acknowledged record.
type Log struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	records []Record
}

// Open loads the history log at path, creating an empty one when the file
// is missing. An unreadable or corrupt file starts fresh rather than
// failing; the previous contents were advisory, not authoritative.
func Open(path string, logger *slog.Logger) (*Log, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path is required")
	}
	logger = logging.NewComponentLogger(logger, "history")

	l := &Log{path: path, logger: logger}
	if err := l.load(); err != nil {
		logger.Warn("starting with empty history",
			logging.String(logging.FieldEventType, "history_load_failed"),
			logging.String("path", path),
			logging.Error(err))
		l.records = nil
	}
	return l, nil
}

// Contains reports whether the named image has already been posted.
func (l *Log) Contains(imageName string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.indexOf(imageName) >= 0
}

// Add records a posted image and persists the log before returning. Adding
// a name that is already present is a logged no-op, keeping set semantics.
func (l *Log) Add(imageName string, extra map[string]string) error {
	imageName = strings.TrimSpace(imageName)
	if imageName == "" {
		return errors.New("image name cannot be empty")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.indexOf(imageName) >= 0 {
		l.logger.Info("image already in history",
			logging.String(logging.FieldImage, imageName))
		return nil
	}

	record := Record{
		keyImageName: imageName,
		"posted_at":  time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range extra {
		if k == keyImageName {
			continue
		}
		record[k] = v
	}

	l.records = append(l.records, record)
	if err := l.save(); err != nil {
		l.records = l.records[:len(l.records)-1]
		return fmt.Errorf("persist history: %w", err)
	}
	return nil
}

// Entries returns a copy of all records in file order.
func (l *Log) Entries() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Count returns the number of recorded posts.
func (l *Log) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Path returns the backing file path.
func (l *Log) Path() string {
	return l.path
}

func (l *Log) indexOf(imageName string) int {
	for i, record := range l.records {
		if record.ImageName() == imageName {
			return i
		}
	}
	return -1
}

func (l *Log) load() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read history file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse history file: %w", err)
	}

	kept := records[:0]
	for _, record := range records {
		if record.ImageName() != "" {
			kept = append(kept, record)
		}
	}
	l.records = kept

	l.logger.Debug("loaded post history",
		logging.Int("entry_count", len(l.records)),
		logging.String("path", l.path))
	return nil
}

// save rewrites the whole collection atomically via a temp file rename.
func (l *Log) save() error {
	data, err := json.MarshalIndent(l.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}

	tmpPath := l.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, l.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
