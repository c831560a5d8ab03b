package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	tgerrors "github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/io"
)

func sampleBoard() *io.Board {
	row, col := 0, 1
	return &io.Board{
		Rows: 2,
		Cols: 4,
		Tiles: []io.Tile{
			{ID: "lights", Kind: "switch", Row: &row, Col: &col, SpanX: 2, SpanY: 1},
			{ID: "new", Kind: "camera"},
		},
	}
}

// testStore runs the behavior every backend shares.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Load(ctx, "home"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load(missing) error = %v, want ErrNotFound", err)
	}

	want := sampleBoard()
	if err := s.Save(ctx, "home", want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := s.Load(ctx, "home")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	// Mutating the loaded copy must not affect the stored board.
	*got.Tiles[0].Row = 1
	again, _ := s.Load(ctx, "home")
	if *again.Tiles[0].Row != 0 {
		t.Error("Load() returned shared state")
	}

	if err := s.Save(ctx, "attic", sampleBoard()); err != nil {
		t.Fatalf("Save(attic) error = %v", err)
	}
	ids, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"attic", "home"}) {
		t.Errorf("List() = %v, want [attic home]", ids)
	}

	if err := s.Delete(ctx, "home"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, "home"); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}
	if _, err := s.Load(ctx, "home"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(deleted) error = %v, want ErrNotFound", err)
	}

	if err := s.Save(ctx, "../escape", sampleBoard()); !tgerrors.Is(err, tgerrors.ErrCodeInvalidBoardID) {
		t.Errorf("Save(../escape) error = %v, want INVALID_BOARD_ID", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	testStore(t, s)
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestFileStoreIgnoresStrayFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	for _, name := range []string{"notes.txt", ".home.123.tmp"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	ids, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("List() = %v, want none", ids)
	}
}

func TestFileStoreCorruptBoard(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir)
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := s.Load(context.Background(), "bad")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Load(corrupt) error = %v, want parse error", err)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TILEGRID_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TILEGRID_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, RedisConfig{Addr: addr, Prefix: "tilegrid-test:" + t.Name() + ":"})
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer s.Close()
	for _, id := range []string{"home", "attic"} {
		_ = s.Delete(ctx, id)
	}
	testStore(t, s)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("TILEGRID_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TILEGRID_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, MongoConfig{URI: uri, Database: "tilegrid_test", Collection: t.Name()})
	if err != nil {
		t.Fatalf("NewMongoStore() error = %v", err)
	}
	defer s.Close()
	for _, id := range []string{"home", "attic"} {
		_ = s.Delete(ctx, id)
	}
	testStore(t, s)
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		backend string
		want    string
		wantErr bool
	}{
		{"memory", BackendMemory, false},
		{"file", BackendFile, false},
		{"", BackendFile, false},
		{"sqlite", "", true},
	}
	for _, tt := range tests {
		s, err := New(ctx, Config{Backend: tt.backend, Dir: t.TempDir()})
		if (err != nil) != tt.wantErr {
			t.Errorf("New(%q) error = %v, wantErr %v", tt.backend, err, tt.wantErr)
			continue
		}
		if err == nil {
			if s.Name() != tt.want {
				t.Errorf("New(%q).Name() = %q, want %q", tt.backend, s.Name(), tt.want)
			}
			s.Close()
		}
	}
}
