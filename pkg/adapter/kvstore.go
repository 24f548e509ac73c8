package adapter

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
)

// KVStore is the durable key-value store that holds the serialized note
// collection. Values are opaque strings; absence is reported via the
// second return value of Get, not an error.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// fileStore keeps each key as a file under a base directory
type fileStore struct {
	dir string
}

// NewFileStore creates a file-backed KVStore rooted at dir
func NewFileStore(dir string) (KVStore, error) {
	if dir == "" {
		return nil, goerr.New("data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create data directory", goerr.V("dir", dir))
	}
	return &fileStore{dir: dir}, nil
}

func (s *fileStore) path(key string) string {
	// Keys may contain path separators or colons; keep the file name flat
	name := ""
	for _, r := range key {
		switch r {
		case '/', '\\', ':':
			name += "_"
		default:
			name += string(r)
		}
	}
	return filepath.Join(s.dir, name+".json")
}

func (s *fileStore) Get(ctx context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, goerr.Wrap(err, "failed to read value", goerr.V("key", key))
	}
	return string(data), true, nil
}

func (s *fileStore) Set(ctx context.Context, key, value string) error {
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		return goerr.Wrap(err, "failed to write value", goerr.V("key", key))
	}
	if err := os.Rename(tmp, path); err != nil {
		return goerr.Wrap(err, "failed to replace value", goerr.V("key", key))
	}
	return nil
}

func (s *fileStore) Close() error {
	return nil
}
