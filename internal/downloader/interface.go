package downloader

import (
	"context"
)

// Request describes a single search-and-download.
type Request struct {
	// Free-text search query; the first result is downloaded
	Query string
	// Output path template, e.g. "audio/happily_ever_after.%(ext)s"
	OutputTemplate string

	// Convert the download to Codec at Quality after fetching
	Transcode bool
	Codec     string
	Quality   string
}

// Downloader fetches the audio of the best search result for a query.
type Downloader interface {
	Download(ctx context.Context, req Request) error
}
