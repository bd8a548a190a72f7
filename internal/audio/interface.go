package audio

import (
	"context"
	"time"
)

// DurationProber reads the playable length of a media file. The boolean is
// false whenever the length could not be determined.
type DurationProber interface {
	Probe(ctx context.Context, path string) (time.Duration, bool)
}

// PlaybackDevice plays a local file. A zero offset plays from the start.
type PlaybackDevice interface {
	Play(ctx context.Context, path string, offset time.Duration) error
}
