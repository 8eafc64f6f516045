package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// blobVersion tags the serialized collection so future schema changes can
// migrate old blobs instead of misreading them.
const blobVersion = 1

// Store persists the whole trade collection. The collection is always
// read and written wholesale; the Ledger is the only writer.
type Store interface {
	Load(ctx context.Context) ([]TrackedTrade, error)
	Save(ctx context.Context, trades []TrackedTrade) error
}

type blob struct {
	Version int            `msgpack:"version"`
	SavedAt time.Time      `msgpack:"saved_at"`
	Trades  []TrackedTrade `msgpack:"trades"`
}

// FileStore keeps the collection in a single msgpack blob on disk. Writes go
// through a temp file and rename so a crash mid-write leaves the previous
// blob intact.
type FileStore struct {
	path string
}

// NewFileStore returns a store writing to path. Parent directories are
// created on the first save.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("ledger: store path is empty")
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Load(ctx context.Context) ([]TrackedTrade, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: read store: %w", err)
	}

	var b blob
	if err := msgpack.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("ledger: decode store: %w", err)
	}
	if b.Version > blobVersion {
		return nil, fmt.Errorf("ledger: store version %d is newer than supported %d", b.Version, blobVersion)
	}
	return b.Trades, nil
}

func (s *FileStore) Save(ctx context.Context, trades []TrackedTrade) error {
	data, err := msgpack.Marshal(blob{
		Version: blobVersion,
		SavedAt: time.Now().UTC(),
		Trades:  trades,
	})
	if err != nil {
		return fmt.Errorf("ledger: encode store: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ledger: create store dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("ledger: write store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("ledger: commit store: %w", err)
	}
	return nil
}
