package fsx_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Abraxas-365/reactorbot/pkg/errx"
	"github.com/Abraxas-365/reactorbot/pkg/fsx"
	"github.com/Abraxas-365/reactorbot/pkg/fsx/fsxlocal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReader struct {
	paths []string
}

func (r *recordingReader) ReadFile(_ context.Context, path string) ([]byte, error) {
	r.paths = append(r.paths, path)
	return []byte("remote"), nil
}

func (r *recordingReader) Exists(context.Context, string) (bool, error) { return true, nil }

func TestRouter_ResolvesByScheme(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.yaml"), []byte("local"), 0o600))

	remote := &recordingReader{}
	r := fsx.NewRouter(fsxlocal.NewLocalFileSystem(dir))
	r.Mount("S3", remote)

	data, err := r.ReadFile(context.Background(), "rules.yaml")
	require.NoError(t, err)
	assert.Equal(t, "local", string(data))

	data, err = r.ReadFile(context.Background(), "s3://bucket/path/rules.yaml")
	require.NoError(t, err)
	assert.Equal(t, "remote", string(data))
	assert.Equal(t, []string{"bucket/path/rules.yaml"}, remote.paths)

	_, err = r.ReadFile(context.Background(), "gs://bucket/rules.yaml")
	assert.True(t, errx.HasCode(err, fsx.ErrUnsupportedScheme))
}

func TestLocalFileSystem(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(dir, "abs.yaml")
	require.NoError(t, os.WriteFile(abs, []byte("x"), 0o600))

	l := fsxlocal.NewLocalFileSystem("/does/not/matter")
	data, err := l.ReadFile(context.Background(), abs)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	ok, err := l.Exists(context.Background(), abs)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Exists(context.Background(), filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = l.ReadFile(context.Background(), filepath.Join(dir, "missing"))
	assert.True(t, fsx.IsNotFound(err))
}
