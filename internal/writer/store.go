package writer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tmalunga/syllabussense/pkg/models"
)

// Sink persists finalized questions keyed by topic. Saving the same batch
// twice appends it twice; implementations merge with whatever is already
// stored under the key.
type Sink interface {
	Save(topic string, questions []models.Question) error
}

// FileStore is a Sink backed by one JSON file per topic. Existing content is
// merged; a corrupted existing file is treated as empty rather than
// poisoning the save.
type FileStore struct {
	dir    string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileStore creates a store rooted at dir, creating it if absent. A path
// that exists but is not a directory is rejected.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return nil, fmt.Errorf("output path exists but is not a directory: %s", dir)
	case os.IsNotExist(err):
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
		logger.Info("created output directory", "path", dir)
	case err != nil:
		return nil, fmt.Errorf("failed to stat output directory: %w", err)
	}

	return &FileStore{dir: dir, logger: logger}, nil
}

// Save appends questions to the topic's file.
func (fs *FileStore) Save(topic string, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	path := filepath.Join(fs.dir, SafeTopicFilename(topic)+".json")
	existing := fs.readExisting(path)

	merged := make([]json.RawMessage, 0, len(existing)+len(questions))
	merged = append(merged, existing...)
	for _, q := range questions {
		raw, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("failed to marshal question %s: %w", q.QuestionID, err)
		}
		merged = append(merged, raw)
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal question file: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write question file: %w", err)
	}

	fs.logger.Info("saved questions",
		"topic", topic,
		"count", len(questions),
		"total", len(merged),
		"path", path)
	return nil
}

// readExisting loads the questions already stored at path. Missing files and
// files that no longer parse both count as empty; in the corrupt case the
// old content is discarded, not propagated.
func (fs *FileStore) readExisting(path string) []json.RawMessage {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			fs.logger.Warn("failed to read existing question file, treating as empty", "path", path, "error", err)
		}
		return nil
	}

	var existing []json.RawMessage
	if err := json.Unmarshal(data, &existing); err != nil {
		fs.logger.Warn("existing question file is corrupt, discarding its content", "path", path, "error", err)
		return nil
	}
	return existing
}

// SafeTopicFilename turns a topic title into a file name that cannot escape
// the store directory or collide with path syntax.
func SafeTopicFilename(topic string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(topic) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		case r == ' ', r == '_', r == '/':
			b.WriteByte('_')
		}
	}
	name := strings.Trim(b.String(), "._")
	if name == "" {
		name = "untitled"
	}
	return name
}
