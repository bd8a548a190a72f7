package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// LocalCache implements Cache on top of an afero filesystem.
type LocalCache struct {
	fs  afero.Fs
	dir string
}

// NewLocalCache creates a cache rooted at dir. A nil fs means the OS
// filesystem.
func NewLocalCache(fs afero.Fs, dir string) *LocalCache {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &LocalCache{
		fs:  fs,
		dir: dir,
	}
}

func (c *LocalCache) Dir() string {
	return c.dir
}

// Path returns the path of base with ext inside the cache directory
func (c *LocalCache) Path(base, ext string) string {
	return filepath.Join(c.dir, base+ext)
}

// Find checks each candidate extension in order and returns the first
// non-empty regular file.
func (c *LocalCache) Find(base string, exts []string) (string, bool) {
	for _, ext := range exts {
		path := c.Path(base, ext)
		info, err := c.fs.Stat(path)
		if err != nil || info.IsDir() || info.Size() == 0 {
			continue
		}
		return path, true
	}
	return "", false
}

// EnsureDir creates the cache directory if it doesn't exist
func (c *LocalCache) EnsureDir() error {
	if err := c.fs.MkdirAll(c.dir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", c.dir, err)
	}
	return nil
}

// Create returns a writer for the specified file
func (c *LocalCache) Create(path string) (io.WriteCloser, error) {
	if err := c.fs.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}
	return c.fs.Create(path)
}

// Open returns a reader for the specified file
func (c *LocalCache) Open(path string) (io.ReadCloser, error) {
	return c.fs.Open(path)
}

func (c *LocalCache) Remove(path string) error {
	if err := c.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}
