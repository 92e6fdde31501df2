package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fmuoria/intern-evaluation/internal/models"
)

// FileStore keeps one JSON file per record in a directory
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates a file store rooted at dir. The directory is
// created on the first Put.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Put writes rec as <id>.json, refusing to replace an existing file
func (s *FileStore) Put(ctx context.Context, rec models.EvaluationRecord) error {
	if err := ValidateID(rec.ID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", rec.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create records directory: %w", err)
	}

	file, err := os.OpenFile(s.path(rec.ID), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, rec.ID)
		}
		return fmt.Errorf("failed to create record file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("failed to write record %s: %w", rec.ID, err)
	}
	return nil
}

// Get reads one record by id
func (s *FileStore) Get(ctx context.Context, id string) (models.EvaluationRecord, error) {
	if err := ValidateID(id); err != nil {
		return models.EvaluationRecord{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := readRecord(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return models.EvaluationRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, err
}

// List loads every record in the directory ordered by file name. A missing
// directory is an empty store.
func (s *FileStore) List(ctx context.Context) ([]models.EvaluationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.EvaluationRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read records directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	records := make([]models.EvaluationRecord, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := readRecord(filepath.Join(s.dir, name))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Close is a no-op; files are not held open
func (s *FileStore) Close() error { return nil }

func readRecord(path string) (models.EvaluationRecord, error) {
	var rec models.EvaluationRecord
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return rec, err
		}
		return rec, fmt.Errorf("failed to read file %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("failed to decode record file %s: %w", filepath.Base(path), err)
	}
	return rec, nil
}
