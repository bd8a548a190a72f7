// Package themeparks fetches live status data from the themeparks.wiki API.
package themeparks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly"

	"github.com/jaki95/showtime-sync/internal/domain"
)

const DefaultBaseURL = "https://api.themeparks.wiki/v1"

// Client reads a venue's live feed.
type Client struct {
	baseURL   string
	timeout   time.Duration
	userAgent string
	transport http.RoundTripper
}

type Option func(*Client)

// WithTransport replaces the HTTP transport used by the collector.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

func NewClient(baseURL string, timeout time.Duration, userAgent string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		timeout:   timeout,
		userAgent: userAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type liveResponse struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	LiveData []liveDataItem `json:"liveData"`
}

type liveDataItem struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	EntityType string            `json:"entityType"`
	Status     string            `json:"status"`
	Showtimes  []json.RawMessage `json:"showtimes"`
}

type showtime struct {
	Type      string `json:"type"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// LiveURL returns the live-status resource for a venue.
func (c *Client) LiveURL(venueID string) string {
	return fmt.Sprintf("%s/entity/%s/live", c.baseURL, venueID)
}

// LiveStatus returns the venue's live items in provider order.
func (c *Client) LiveStatus(ctx context.Context, venueID string) ([]domain.LiveItem, error) {
	body, err := c.FetchLive(ctx, venueID)
	if err != nil {
		return nil, err
	}

	var response liveResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode live data: %w", err)
	}

	items := make([]domain.LiveItem, 0, len(response.LiveData))
	for _, entry := range response.LiveData {
		items = append(items, domain.LiveItem{
			ID:         entry.ID,
			Name:       entry.Name,
			EntityType: entry.EntityType,
			Status:     entry.Status,
			Showtimes:  parseShowtimes(entry),
		})
	}

	slog.Debug("Fetched live data", "venue", venueID, "items", len(items))
	return items, nil
}

// FetchLive returns the raw live-status payload for a venue.
func (c *Client) FetchLive(ctx context.Context, venueID string) ([]byte, error) {
	if venueID == "" {
		return nil, fmt.Errorf("venue ID is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	url := c.LiveURL(venueID)
	slog.Info("Fetching live data", "url", url)

	collector := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.MaxDepth(1),
	)
	collector.SetRequestTimeout(c.timeout)
	if c.transport != nil {
		collector.WithTransport(c.transport)
	}

	collector.OnRequest(func(r *colly.Request) {
		if c.userAgent != "" {
			r.Headers.Set("User-Agent", c.userAgent)
		}
		r.Headers.Set("Accept", "application/json")
	})

	var body []byte
	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	var requestErr error
	collector.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		requestErr = fmt.Errorf("live data request failed with status %d: %w", status, err)
	})

	if err := collector.Visit(url); err != nil {
		if requestErr != nil {
			return nil, requestErr
		}
		return nil, fmt.Errorf("live data request failed: %w", err)
	}
	if requestErr != nil {
		return nil, requestErr
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("live data response is empty")
	}

	return body, nil
}

// parseShowtimes keeps the windows whose start time parses.
func parseShowtimes(entry liveDataItem) []domain.ScheduleWindow {
	windows := make([]domain.ScheduleWindow, 0, len(entry.Showtimes))
	for _, raw := range entry.Showtimes {
		var st showtime
		if err := json.Unmarshal(raw, &st); err != nil {
			slog.Debug("Skipping unreadable showtime", "entity", entry.ID, "error", err)
			continue
		}
		if st.StartTime == "" {
			continue
		}

		start, err := time.Parse(time.RFC3339, st.StartTime)
		if err != nil {
			slog.Debug("Skipping showtime with invalid start", "entity", entry.ID, "startTime", st.StartTime)
			continue
		}

		window := domain.ScheduleWindow{
			Type:      st.Type,
			StartTime: start,
			Raw:       raw,
		}
		if end, err := time.Parse(time.RFC3339, st.EndTime); err == nil {
			window.EndTime = &end
		}
		windows = append(windows, window)
	}
	return windows
}
