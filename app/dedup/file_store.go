package dedup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

var _ Store = (*FileStore)(nil)

// FileStore keeps the record as an indented JSON object of feed URL to ID list.
type FileStore struct {
	path           string
	maxSeenPerFeed int
}

func NewFileStore(path string, maxSeenPerFeed int) *FileStore {
	return &FileStore{
		path:           path,
		maxSeenPerFeed: maxSeenPerFeed,
	}
}

func (s *FileStore) Load(ctx context.Context) (*Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("No dedup state found, starting empty", "path", s.path)
		return NewRecord(s.maxSeenPerFeed), nil
	}
	if err != nil {
		return NewRecord(s.maxSeenPerFeed), fmt.Errorf("failed to read dedup state %s: %w", s.path, err)
	}

	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.Warn("Dedup state is corrupted, starting with an empty record", "path", s.path, "error", err)
		return NewRecord(s.maxSeenPerFeed), nil
	}

	record := FromMap(raw, s.maxSeenPerFeed)

	slog.Debug("Dedup state loaded", "path", s.path, "feeds", record.FeedCount(), "entries", record.Total())
	return record, nil
}

func (s *FileStore) Persist(ctx context.Context, record *Record) error {
	data, err := json.MarshalIndent(record.ToMap(), "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode dedup state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	if err := renameio.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write dedup state %s: %w", s.path, err)
	}

	slog.Debug("Dedup state persisted", "path", s.path, "feeds", record.FeedCount(), "entries", record.Total())
	return nil
}
