package asset

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jaki95/showtime-sync/internal/catalog"
	"github.com/jaki95/showtime-sync/internal/downloader"
	"github.com/jaki95/showtime-sync/internal/storage"
)

type MockDownloader struct {
	mock.Mock
}

func (m *MockDownloader) Download(ctx context.Context, req downloader.Request) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

type MockMirror struct {
	mock.Mock
}

func (m *MockMirror) Find(ctx context.Context, base string, exts []string) (string, error) {
	args := m.Called(ctx, base, exts)
	return args.String(0), args.Error(1)
}

func (m *MockMirror) Download(ctx context.Context, objectName string, w io.Writer) error {
	args := m.Called(ctx, objectName, w)
	return args.Error(0)
}

func (m *MockMirror) Upload(ctx context.Context, objectName string, r io.Reader) error {
	args := m.Called(ctx, objectName, r)
	return args.Error(0)
}

func (m *MockMirror) Close() error {
	return m.Called().Error(0)
}

func installed(names ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, n := range names {
			if n == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

// writesFile simulates the downloader leaving a file behind.
func writesFile(t *testing.T, fs afero.Fs, path string) func(mock.Arguments) {
	return func(mock.Arguments) {
		require.NoError(t, afero.WriteFile(fs, path, []byte("audio"), 0644))
	}
}

func newTestAcquirer(fs afero.Fs, dl downloader.Downloader, opts Options, options ...Option) *Acquirer {
	a := NewAcquirer(storage.NewLocalCache(fs, "audio"), dl, catalog.Default(), opts, options...)
	a.lookPath = installed()
	return a
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{name: "Happily Ever After", expected: "happily_ever_after"},
		{name: "Minnie's Wonderful Christmastime Fireworks", expected: "minnies_wonderful_christmastime_fireworks"},
		{name: "Minnie’s Fireworks", expected: "minnies_fireworks"},
		{name: "Disney  Enchantment", expected: "disney__enchantment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeName(tt.name))
		})
	}
}

func TestAcquireCacheHit(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, filepath.Join("audio", "happily_ever_after.m4a"), []byte("audio"), 0644))

	dl := new(MockDownloader)
	a := newTestAcquirer(fs, dl, Options{Transcode: true})

	asset, err := a.Acquire(context.Background(), catalog.HappilyEverAfter)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("audio", "happily_ever_after.m4a"), asset.FilePath)
	assert.Equal(t, catalog.HappilyEverAfter, asset.CanonicalName)
	assert.False(t, asset.DurationKnown)
	dl.AssertNotCalled(t, "Download", mock.Anything, mock.Anything)
}

func TestAcquireDownloadsOnceThenHitsCache(t *testing.T) {
	fs := afero.NewMemMapFs()
	target := filepath.Join("audio", "minnies_wonderful_christmastime_fireworks.mp3")

	dl := new(MockDownloader)
	dl.On("Download", mock.Anything, mock.AnythingOfType("downloader.Request")).
		Run(writesFile(t, fs, target)).
		Return(nil).
		Once()

	a := newTestAcquirer(fs, dl, Options{Transcode: true, Codec: "mp3", Quality: "192"})

	first, err := a.Acquire(context.Background(), catalog.MinniesChristmas)
	require.NoError(t, err)
	second, err := a.Acquire(context.Background(), catalog.MinniesChristmas)
	require.NoError(t, err)

	assert.Equal(t, target, first.FilePath)
	assert.Equal(t, first.FilePath, second.FilePath)
	dl.AssertNumberOfCalls(t, "Download", 1)
}

func TestAcquireRequest(t *testing.T) {
	tests := []struct {
		name          string
		show          string
		opts          Options
		tools         []string
		wantQuery     string
		wantTranscode bool
	}{
		{
			name:          "catalog query with transcoding",
			show:          catalog.DisneyEnchantment,
			opts:          Options{Transcode: true, Codec: "mp3", Quality: "192"},
			tools:         []string{"ffmpeg"},
			wantQuery:     "Disney Enchantment Fireworks Full Audio Soundtrack",
			wantTranscode: true,
		},
		{
			name:      "transcoder missing",
			show:      catalog.DisneyEnchantment,
			opts:      Options{Transcode: true, Codec: "mp3", Quality: "192"},
			wantQuery: "Disney Enchantment Fireworks Full Audio Soundtrack",
		},
		{
			name:      "transcoding disabled",
			show:      catalog.DisneyEnchantment,
			opts:      Options{Transcode: false},
			tools:     []string{"ffmpeg"},
			wantQuery: "Disney Enchantment Fireworks Full Audio Soundtrack",
		},
		{
			name:      "fallback query",
			show:      "Wishes",
			tools:     []string{"ffmpeg"},
			wantQuery: "Wishes audio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			base := NormalizeName(tt.show)

			dl := new(MockDownloader)
			dl.On("Download", mock.Anything, mock.MatchedBy(func(req downloader.Request) bool {
				return req.Query == tt.wantQuery &&
					req.OutputTemplate == filepath.Join("audio", base+".%(ext)s") &&
					req.Transcode == tt.wantTranscode
			})).Run(writesFile(t, fs, filepath.Join("audio", base+".webm"))).Return(nil)

			a := newTestAcquirer(fs, dl, tt.opts)
			a.lookPath = installed(tt.tools...)

			asset, err := a.Acquire(context.Background(), tt.show)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join("audio", base+".webm"), asset.FilePath)
			dl.AssertExpectations(t)
		})
	}
}

func TestAcquireFindsPostDownloadExtensions(t *testing.T) {
	fs := afero.NewMemMapFs()
	target := filepath.Join("audio", "happily_ever_after.opus")

	dl := new(MockDownloader)
	dl.On("Download", mock.Anything, mock.Anything).Run(writesFile(t, fs, target)).Return(nil)

	asset, err := newTestAcquirer(fs, dl, Options{}).Acquire(context.Background(), catalog.HappilyEverAfter)
	require.NoError(t, err)
	assert.Equal(t, target, asset.FilePath)
}

func TestAcquireFailures(t *testing.T) {
	t.Run("downloader error", func(t *testing.T) {
		dl := new(MockDownloader)
		dl.On("Download", mock.Anything, mock.Anything).Return(errors.New("HTTP Error 429"))

		asset, err := newTestAcquirer(afero.NewMemMapFs(), dl, Options{}).Acquire(context.Background(), catalog.HappilyEverAfter)
		assert.ErrorIs(t, err, ErrAcquisitionFailed)
		assert.Contains(t, err.Error(), "HTTP Error 429")
		assert.Nil(t, asset)
	})

	t.Run("nothing written", func(t *testing.T) {
		dl := new(MockDownloader)
		dl.On("Download", mock.Anything, mock.Anything).Return(nil)

		asset, err := newTestAcquirer(afero.NewMemMapFs(), dl, Options{}).Acquire(context.Background(), catalog.HappilyEverAfter)
		assert.ErrorIs(t, err, ErrAcquisitionFailed)
		assert.Nil(t, asset)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		dl := new(MockDownloader)
		dl.On("Download", mock.Anything, mock.Anything).Return(context.Canceled)

		_, err := newTestAcquirer(afero.NewMemMapFs(), dl, Options{}).Acquire(ctx, catalog.HappilyEverAfter)
		assert.ErrorIs(t, err, ErrAcquisitionFailed)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("empty name", func(t *testing.T) {
		dl := new(MockDownloader)
		_, err := newTestAcquirer(afero.NewMemMapFs(), dl, Options{}).Acquire(context.Background(), "")
		assert.ErrorIs(t, err, ErrAcquisitionFailed)
		dl.AssertNotCalled(t, "Download", mock.Anything, mock.Anything)
	})
}

func TestAcquireFromMirror(t *testing.T) {
	fs := afero.NewMemMapFs()
	dl := new(MockDownloader)

	mirror := new(MockMirror)
	mirror.On("Find", mock.Anything, "happily_ever_after", cachedExtensions).Return("happily_ever_after.mp3", nil)
	mirror.On("Download", mock.Anything, "happily_ever_after.mp3", mock.Anything).
		Run(func(args mock.Arguments) {
			w := args.Get(2).(io.Writer)
			_, err := io.Copy(w, strings.NewReader("mirrored"))
			require.NoError(t, err)
		}).
		Return(nil)

	a := newTestAcquirer(fs, dl, Options{}, WithMirror(mirror))
	asset, err := a.Acquire(context.Background(), catalog.HappilyEverAfter)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("audio", "happily_ever_after.mp3"), asset.FilePath)
	content, err := afero.ReadFile(fs, asset.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "mirrored", string(content))

	dl.AssertNotCalled(t, "Download", mock.Anything, mock.Anything)
	mirror.AssertExpectations(t)
}

func TestAcquireMirrorMissUploadsDownload(t *testing.T) {
	fs := afero.NewMemMapFs()
	target := filepath.Join("audio", "disney_enchantment.m4a")

	dl := new(MockDownloader)
	dl.On("Download", mock.Anything, mock.Anything).Run(writesFile(t, fs, target)).Return(nil)

	mirror := new(MockMirror)
	mirror.On("Find", mock.Anything, "disney_enchantment", cachedExtensions).Return("", storage.ErrObjectNotFound)
	mirror.On("Upload", mock.Anything, "disney_enchantment.m4a", mock.Anything).Return(errors.New("permission denied"))

	a := newTestAcquirer(fs, dl, Options{}, WithMirror(mirror))
	asset, err := a.Acquire(context.Background(), catalog.DisneyEnchantment)

	require.NoError(t, err, "mirror upload failures are not fatal")
	assert.Equal(t, target, asset.FilePath)
	mirror.AssertExpectations(t)
}

func TestAcquireMirrorDownloadFailureFallsBack(t *testing.T) {
	fs := afero.NewMemMapFs()
	target := filepath.Join("audio", "happily_ever_after.webm")

	dl := new(MockDownloader)
	dl.On("Download", mock.Anything, mock.Anything).Run(writesFile(t, fs, target)).Return(nil)

	mirror := new(MockMirror)
	mirror.On("Find", mock.Anything, "happily_ever_after", cachedExtensions).Return("happily_ever_after.mp3", nil)
	mirror.On("Download", mock.Anything, "happily_ever_after.mp3", mock.Anything).Return(errors.New("connection reset"))
	mirror.On("Upload", mock.Anything, "happily_ever_after.webm", mock.Anything).Return(nil)

	a := newTestAcquirer(fs, dl, Options{}, WithMirror(mirror))
	asset, err := a.Acquire(context.Background(), catalog.HappilyEverAfter)
	require.NoError(t, err)

	assert.Equal(t, target, asset.FilePath)
	exists, err := afero.Exists(fs, filepath.Join("audio", "happily_ever_after.mp3"))
	require.NoError(t, err)
	assert.False(t, exists, "partial mirror download is removed")
	mirror.AssertExpectations(t)
}
