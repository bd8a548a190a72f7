package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const uploadTimeout = 5 * time.Minute

// GCSMirror implements Mirror for a Google Cloud Storage bucket
type GCSMirror struct {
	client       *storage.Client
	bucket       string
	objectPrefix string
}

// NewGCSMirror creates a mirror client. An empty credentials file means
// application default credentials.
func NewGCSMirror(ctx context.Context, bucketName, objectPrefix, credentialsFile string) (*GCSMirror, error) {
	var client *storage.Client
	var err error

	if credentialsFile != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	} else {
		client, err = storage.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSMirror{
		client:       client,
		bucket:       bucketName,
		objectPrefix: strings.Trim(objectPrefix, "/"),
	}, nil
}

func (m *GCSMirror) objectName(name string) string {
	name = strings.TrimPrefix(name, "/")
	if m.objectPrefix == "" {
		return name
	}
	return path.Join(m.objectPrefix, name)
}

// Find lists the objects sharing base as a name prefix and returns the one
// whose extension ranks first in exts.
func (m *GCSMirror) Find(ctx context.Context, base string, exts []string) (string, error) {
	it := m.client.Bucket(m.bucket).Objects(ctx, &storage.Query{
		Prefix: m.objectName(base + "."),
	})

	present := make(map[string]struct{})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return "", fmt.Errorf("error listing objects: %w", err)
		}
		if attrs.Size == 0 {
			continue
		}
		present[path.Base(attrs.Name)] = struct{}{}
	}

	for _, ext := range exts {
		if _, ok := present[base+ext]; ok {
			return base + ext, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrObjectNotFound, base)
}

// Download copies a mirrored object into w
func (m *GCSMirror) Download(ctx context.Context, objectName string, w io.Writer) error {
	reader, err := m.client.Bucket(m.bucket).Object(m.objectName(objectName)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("%w: %s", ErrObjectNotFound, objectName)
		}
		return fmt.Errorf("failed to open GCS object %s: %w", objectName, err)
	}
	defer reader.Close()

	if _, err := io.Copy(w, reader); err != nil {
		return fmt.Errorf("failed to copy GCS object %s: %w", objectName, err)
	}
	slog.Debug("Downloaded from mirror", "bucket", m.bucket, "object", m.objectName(objectName))
	return nil
}

// Upload stores r under objectName
func (m *GCSMirror) Upload(ctx context.Context, objectName string, r io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	wc := m.client.Bucket(m.bucket).Object(m.objectName(objectName)).NewWriter(ctx)
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return fmt.Errorf("failed to copy file to GCS: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}

	slog.Debug("Uploaded to mirror", "bucket", m.bucket, "object", m.objectName(objectName))
	return nil
}

// Close closes the GCS client
func (m *GCSMirror) Close() error {
	return m.client.Close()
}
