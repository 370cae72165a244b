// Package fsx reads configuration files from local disk or object storage.
// Locations are plain paths or URIs such as s3://bucket/key; a Router picks
// the reader by scheme.
package fsx

import (
	"context"
	"strings"
	"sync"

	"github.com/Abraxas-365/reactorbot/pkg/errx"
)

var fsxErrors = errx.NewRegistry("FSX")

var (
	ErrNotFound          = fsxErrors.Register("NOT_FOUND", errx.TypeNotFound, 0, "File not found")
	ErrReadFailed        = fsxErrors.Register("READ_FAILED", errx.TypeExternal, 0, "Failed to read file")
	ErrUnsupportedScheme = fsxErrors.Register("UNSUPPORTED_SCHEME", errx.TypeValidation, 0, "Unsupported file location scheme")
)

// FileReader provides read-only operations
type FileReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// NotFound builds an ErrNotFound error for path.
func NotFound(path string) *errx.Error {
	return fsxErrors.New(ErrNotFound).WithDetail("path", path)
}

// ReadFailed wraps a backend failure for path.
func ReadFailed(path string, err error) *errx.Error {
	return fsxErrors.NewWithCause(ErrReadFailed, err).WithDetail("path", path)
}

// IsNotFound reports whether err is an ErrNotFound error.
func IsNotFound(err error) bool {
	return errx.HasCode(err, ErrNotFound)
}

// Router dispatches locations to readers by URI scheme. Locations without
// a scheme go to the fallback reader.
type Router struct {
	fallback FileReader
	mu       sync.RWMutex
	schemes  map[string]FileReader
}

// NewRouter returns a router serving scheme-less paths from fallback.
func NewRouter(fallback FileReader) *Router {
	return &Router{fallback: fallback, schemes: make(map[string]FileReader)}
}

// Mount serves scheme://rest locations from r, which receives "rest".
func (r *Router) Mount(scheme string, reader FileReader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemes[strings.ToLower(scheme)] = reader
}

func (r *Router) resolve(location string) (FileReader, string, error) {
	scheme, rest, ok := strings.Cut(location, "://")
	if !ok {
		if r.fallback == nil {
			return nil, "", fsxErrors.New(ErrUnsupportedScheme).WithDetail("location", location)
		}
		return r.fallback, location, nil
	}

	r.mu.RLock()
	reader, found := r.schemes[strings.ToLower(scheme)]
	r.mu.RUnlock()
	if !found {
		return nil, "", fsxErrors.New(ErrUnsupportedScheme).
			WithDetail("location", location).
			WithDetail("scheme", scheme)
	}
	return reader, rest, nil
}

// ReadFile reads location through the reader mounted for its scheme.
func (r *Router) ReadFile(ctx context.Context, location string) ([]byte, error) {
	reader, path, err := r.resolve(location)
	if err != nil {
		return nil, err
	}
	return reader.ReadFile(ctx, path)
}

// Exists reports whether location exists.
func (r *Router) Exists(ctx context.Context, location string) (bool, error) {
	reader, path, err := r.resolve(location)
	if err != nil {
		return false, err
	}
	return reader.Exists(ctx, path)
}
