package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
)

// CountdownBar renders the wait for showtime as a terminal progress bar.
// Register Listen on a tracker.
type CountdownBar struct {
	mu  sync.Mutex
	w   io.Writer
	bar *progressbar.ProgressBar
}

// NewCountdownBar writes to w, or to an ANSI-aware stderr when w is nil.
func NewCountdownBar(w io.Writer) *CountdownBar {
	if w == nil {
		w = ansi.NewAnsiStderr()
	}
	return &CountdownBar{w: w}
}

// Listen consumes tracker events.
func (c *CountdownBar) Listen(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if event.Stage != StageWaiting {
		c.finish()
		return
	}
	if event.WaitDetails == nil {
		return
	}

	details := *event.WaitDetails
	if c.bar == nil {
		c.bar = progressbar.NewOptions64(
			int64(details.Total.Seconds()),
			progressbar.OptionSetWriter(c.w),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionSetDescription("[cyan]Waiting for showtime[reset]"),
		)
	}

	c.bar.Describe(fmt.Sprintf("[cyan]Showtime in %s[reset]", details.Remaining.Round(time.Second)))
	_ = c.bar.Set64(int64(details.Elapsed().Seconds()))
}

func (c *CountdownBar) finish() {
	if c.bar == nil {
		return
	}
	_ = c.bar.Finish()
	fmt.Fprintln(c.w)
	c.bar = nil
}
