package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jaki95/showtime-sync/internal/catalog"
	"github.com/jaki95/showtime-sync/internal/domain"
)

var (
	ErrProviderUnreachable = errors.New("event status provider unreachable")
	ErrNoShowToday         = errors.New("no show scheduled today")
)

// LiveStatusProvider returns the live items of a venue in provider order.
type LiveStatusProvider interface {
	LiveStatus(ctx context.Context, venueID string) ([]domain.LiveItem, error)
}

// Resolver picks today's catalog show out of a venue's live feed.
type Resolver struct {
	provider LiveStatusProvider
	catalog  *catalog.Catalog
	now      func() time.Time
}

func New(provider LiveStatusProvider, c *catalog.Catalog, now func() time.Time) *Resolver {
	if c == nil {
		c = catalog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Resolver{
		provider: provider,
		catalog:  c,
		now:      now,
	}
}

// ResolveTodayShow returns the first catalog show in provider order together
// with its first start time falling on today's date.
func (r *Resolver) ResolveTodayShow(ctx context.Context, venueID string) (*domain.ResolvedShow, error) {
	items, err := r.provider.LiveStatus(ctx, venueID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnreachable, err)
	}

	for _, item := range items {
		name, ok := r.catalog.Match(item)
		if !ok {
			continue
		}

		window, ok := todayWindow(item.Showtimes, r.now())
		if !ok {
			slog.Info("Show has no performance today", "show", name, "entity", item.ID)
			return nil, ErrNoShowToday
		}

		slog.Info("Found show", "show", name, "entity", item.ID, "start", window.StartTime.Format(time.RFC3339))
		return &domain.ResolvedShow{
			CanonicalName: name,
			EntityID:      item.ID,
			StartTime:     window.StartTime,
		}, nil
	}

	return nil, ErrNoShowToday
}

// todayWindow finds the first window dated today, comparing calendar dates in
// the window's own offset.
func todayWindow(windows []domain.ScheduleWindow, now time.Time) (domain.ScheduleWindow, bool) {
	for _, window := range windows {
		if window.StartTime.IsZero() {
			continue
		}
		if sameDate(window.StartTime, now.In(window.StartTime.Location())) {
			return window, true
		}
	}
	return domain.ScheduleWindow{}, false
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
