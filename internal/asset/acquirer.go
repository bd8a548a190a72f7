// Package asset makes sure a show's soundtrack is on local disk, reusing a
// cached copy when one exists and downloading it otherwise.
package asset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jaki95/showtime-sync/internal/domain"
	"github.com/jaki95/showtime-sync/internal/downloader"
	"github.com/jaki95/showtime-sync/internal/storage"
)

var ErrAcquisitionFailed = errors.New("audio acquisition failed")

var (
	// Checked in order before downloading anything.
	cachedExtensions = []string{".mp3", ".m4a", ".webm", ".wav"}
	// The downloader may leave any of these behind.
	downloadedExtensions = []string{".mp3", ".m4a", ".webm", ".wav", ".opus", ".mp4"}
)

// QueryLookup maps a canonical show name to a search query.
type QueryLookup interface {
	Query(canonicalName string) string
}

type Options struct {
	Transcode bool
	Codec     string
	Quality   string
	// Binary that must be on PATH for transcoding to be requested
	Transcoder string
}

type Option func(*Acquirer)

// WithMirror enables the remote cache mirror.
func WithMirror(m storage.Mirror) Option {
	return func(a *Acquirer) {
		a.mirror = m
	}
}

// Acquirer resolves a canonical show name to a local audio file.
type Acquirer struct {
	cache      storage.Cache
	mirror     storage.Mirror
	downloader downloader.Downloader
	queries    QueryLookup
	opts       Options
	lookPath   func(string) (string, error)
}

func NewAcquirer(cache storage.Cache, dl downloader.Downloader, queries QueryLookup, opts Options, options ...Option) *Acquirer {
	if opts.Transcoder == "" {
		opts.Transcoder = "ffmpeg"
	}
	a := &Acquirer{
		cache:      cache,
		downloader: dl,
		queries:    queries,
		opts:       opts,
		lookPath:   exec.LookPath,
	}
	for _, option := range options {
		option(a)
	}
	return a
}

// NormalizeName turns a canonical name into the cache base name:
// lowercase, spaces to underscores, apostrophes dropped.
func NormalizeName(canonicalName string) string {
	name := strings.ToLower(canonicalName)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "'", "")
	return strings.ReplaceAll(name, "’", "")
}

// Acquire returns the cached soundtrack for a show, fetching it on a miss.
// The returned asset has no duration yet.
func (a *Acquirer) Acquire(ctx context.Context, canonicalName string) (*domain.AudioAsset, error) {
	base := NormalizeName(canonicalName)
	if base == "" {
		return nil, fmt.Errorf("%w: empty show name", ErrAcquisitionFailed)
	}

	if path, ok := a.cache.Find(base, cachedExtensions); ok {
		slog.Info("Using cached audio", "show", canonicalName, "file", path)
		return newAsset(canonicalName, path), nil
	}

	if err := a.cache.EnsureDir(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAcquisitionFailed, err)
	}

	if path, ok := a.fetchFromMirror(ctx, base); ok {
		slog.Info("Restored audio from mirror", "show", canonicalName, "file", path)
		return newAsset(canonicalName, path), nil
	}

	req := downloader.Request{
		Query:          a.queries.Query(canonicalName),
		OutputTemplate: filepath.Join(a.cache.Dir(), base+".%(ext)s"),
		Transcode:      a.transcode(),
		Codec:          a.opts.Codec,
		Quality:        a.opts.Quality,
	}
	slog.Info("Downloading audio", "show", canonicalName, "query", req.Query, "transcode", req.Transcode)

	if err := a.downloader.Download(ctx, req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAcquisitionFailed, err)
	}

	path, ok := a.cache.Find(base, downloadedExtensions)
	if !ok {
		return nil, fmt.Errorf("%w: no audio file for %s in %s", ErrAcquisitionFailed, base, a.cache.Dir())
	}

	slog.Info("Downloaded audio", "show", canonicalName, "file", path)
	a.uploadToMirror(ctx, path)
	return newAsset(canonicalName, path), nil
}

func newAsset(canonicalName, path string) *domain.AudioAsset {
	return &domain.AudioAsset{
		CanonicalName: canonicalName,
		FilePath:      path,
	}
}

// transcode requests conversion only when it is enabled and the transcoder
// is installed.
func (a *Acquirer) transcode() bool {
	if !a.opts.Transcode {
		return false
	}
	if _, err := a.lookPath(a.opts.Transcoder); err != nil {
		slog.Warn("Transcoder not found, keeping downloaded format", "transcoder", a.opts.Transcoder)
		return false
	}
	return true
}

func (a *Acquirer) fetchFromMirror(ctx context.Context, base string) (string, bool) {
	if a.mirror == nil {
		return "", false
	}

	object, err := a.mirror.Find(ctx, base, cachedExtensions)
	if err != nil {
		if !errors.Is(err, storage.ErrObjectNotFound) {
			slog.Warn("Mirror lookup failed", "base", base, "error", err)
		}
		return "", false
	}

	path := a.cache.Path(base, filepath.Ext(object))
	w, err := a.cache.Create(path)
	if err != nil {
		slog.Warn("Failed to create cache file", "file", path, "error", err)
		return "", false
	}

	err = a.mirror.Download(ctx, object, w)
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		slog.Warn("Mirror download failed", "object", object, "error", err)
		if rmErr := a.cache.Remove(path); rmErr != nil {
			slog.Warn("Failed to remove partial file", "file", path, "error", rmErr)
		}
		return "", false
	}

	return path, true
}

// uploadToMirror copies a fresh download to the mirror. Failures are logged
// and never fail the acquisition.
func (a *Acquirer) uploadToMirror(ctx context.Context, path string) {
	if a.mirror == nil {
		return
	}

	r, err := a.cache.Open(path)
	if err != nil {
		slog.Warn("Failed to open audio for mirroring", "file", path, "error", err)
		return
	}
	defer r.Close()

	if err := a.mirror.Upload(ctx, filepath.Base(path), r); err != nil {
		slog.Warn("Mirror upload failed", "file", path, "error", err)
	}
}
