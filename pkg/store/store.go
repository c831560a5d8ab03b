// Package store persists board documents.
//
// This package defines the Store interface with implementations for
// different backends:
//   - memory: In-memory storage for tests and throwaway sessions
//   - file: One JSON file per board, for the CLI
//   - redis: Redis-backed storage for multi-instance API deployments
//   - mongo: MongoDB documents, for deployments that already run Mongo
//
// Every backend stores the same [io.Board] document. Stores never
// interpret the document; validation happens when the service turns it
// into a live grid.Board.
//
// # Usage
//
//	s, err := store.New(ctx, store.Config{Backend: store.BackendFile, Dir: dir})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	doc, err := s.Load(ctx, "living-room")
//	if errors.Is(err, store.ErrNotFound) {
//	    // start with an empty board
//	}
//
// [io.Board]: github.com/matzehuels/tilegrid/pkg/io.Board
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/tilegrid/pkg/io"
)

// ErrNotFound is returned by Load when a board does not exist.
var ErrNotFound = errors.New("board not found")

// Store is the interface for board storage backends.
type Store interface {
	// Name returns the backend name ("memory", "file", "redis", "mongo").
	Name() string

	// Load returns the board with the given id, or an error wrapping
	// ErrNotFound.
	Load(ctx context.Context, id string) (*io.Board, error)

	// Save creates or replaces the board with the given id.
	Save(ctx context.Context, id string, b *io.Board) error

	// Delete removes a board. Deleting a missing board is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the ids of all stored boards in sorted order.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	Redis   RedisConfig `toml:"redis"`
	Mongo   MongoConfig `toml:"mongo"`
}

// New opens the configured backend. Network backends are pinged before
// New returns.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendFile:
		return NewFileStore(cfg.Dir)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		return NewRedisStore(ctx, cfg.Redis)
	case BackendMongo:
		return NewMongoStore(ctx, cfg.Mongo)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
