package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/io"
)

// FileStore is a file-based board store for CLI usage.
// Boards are stored as indented JSON files, one per board, in a config
// directory. Writes go through a temporary file and a rename, so a crash
// never leaves a half-written board behind.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based board store.
// If baseDir is empty, defaults to ~/.config/tilegrid/boards/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("get config dir: %w", err)
		}
		baseDir = filepath.Join(dir, "tilegrid", "boards")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create board dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) boardPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Name() string { return BackendFile }

func (s *FileStore) Load(ctx context.Context, id string) (*io.Board, error) {
	if err := errors.ValidateBoardID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.boardPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("read board file: %w", err)
	}
	b, err := io.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse board %s: %w", id, err)
	}
	return b, nil
}

func (s *FileStore) Save(ctx context.Context, id string, b *io.Board) error {
	if err := errors.ValidateBoardID(id); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := io.WriteJSON(b, &buf); err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.baseDir, "."+id+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write board file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write board file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.boardPath(id)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace board file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateBoardID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.boardPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove board file: %w", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read board dir: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for board files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
