package fsxlocal

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Abraxas-365/reactorbot/pkg/fsx"
)

// LocalFileSystem implements fsx.FileReader using local disk
type LocalFileSystem struct {
	basePath string // Root for relative paths; empty means the working directory
}

// NewLocalFileSystem creates a reader rooted at basePath. Absolute paths
// are read as given.
func NewLocalFileSystem(basePath string) *LocalFileSystem {
	return &LocalFileSystem{basePath: basePath}
}

func (l *LocalFileSystem) ReadFile(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(l.fullPath(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fsx.NotFound(path)
		}
		return nil, fsx.ReadFailed(path, err)
	}
	return data, nil
}

func (l *LocalFileSystem) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(l.fullPath(path))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fsx.ReadFailed(path, err)
}

func (l *LocalFileSystem) fullPath(path string) string {
	if l.basePath == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.basePath, path)
}
