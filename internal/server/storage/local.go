package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/labbook/internal/common"
)

// LocalStore keeps objects on the server's local disk. It serves as the
// default when a user has not enabled object storage; URLs it returns are
// server-relative paths under /files/.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Upload(ctx context.Context, data []byte, filename string, contentType string) (string, error) {
	key := MakeKey(filename)
	if err := os.WriteFile(filepath.Join(s.dir, key), data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return "/files/" + key, nil
}

func (s *LocalStore) Fetch(ctx context.Context, url string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, s.keyFromURL(url)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrStorageNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return data, nil
}

func (s *LocalStore) Delete(ctx context.Context, url string) bool {
	err := os.Remove(filepath.Join(s.dir, s.keyFromURL(url)))
	return err == nil
}

func (s *LocalStore) keyFromURL(url string) string {
	key := KeyFromURL(url, "files")
	// keys are flat; refuse anything that still looks like a path
	return strings.ReplaceAll(key, "/", "_")
}
