package storage

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("object not found")

// Cache is the local directory of show soundtracks, one file per show.
type Cache interface {
	// Find returns the first existing file named base plus one of exts,
	// trying exts in order.
	Find(base string, exts []string) (string, bool)

	// Path returns the cache path for base with the given extension.
	Path(base, ext string) string

	// Dir returns the cache directory.
	Dir() string

	EnsureDir() error

	Create(path string) (io.WriteCloser, error)

	Open(path string) (io.ReadCloser, error)

	Remove(path string) error
}

// Mirror is a remote copy of the cache shared between machines.
type Mirror interface {
	// Find returns the object name of the first mirrored file named base
	// plus one of exts.
	Find(ctx context.Context, base string, exts []string) (string, error)

	Download(ctx context.Context, objectName string, w io.Writer) error

	Upload(ctx context.Context, objectName string, r io.Reader) error

	Close() error
}
