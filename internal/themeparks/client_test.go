package themeparks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const liveFixture = `{
  "id": "75ea578a-adc8-4116-a54d-dccb60765ef9",
  "name": "Magic Kingdom Park",
  "liveData": [
    {
      "id": "22b78ed9-a692-47cb-b6a4-6d1224ff67e3",
      "name": "Happily Ever After",
      "entityType": "SHOW",
      "status": "OPERATING",
      "showtimes": [
        {"type": "Operating", "startTime": "2026-10-16T21:00:00-04:00", "endTime": "2026-10-16T21:20:00-04:00"},
        {"type": "Operating", "startTime": "not-a-time"},
        {"type": "Operating"}
      ]
    },
    {
      "id": "attraction-1",
      "name": "Space Mountain",
      "entityType": "ATTRACTION",
      "status": "OPERATING"
    }
  ]
}`

type receivedRequest struct {
	path      string
	userAgent string
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *receivedRequest) {
	t.Helper()
	received := &receivedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.path = r.URL.Path
		received.userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, received
}

func TestLiveStatus(t *testing.T) {
	server, received := newTestServer(t, http.StatusOK, liveFixture)
	client := NewClient(server.URL+"/v1/", 5*time.Second, "showtime-sync-test")

	items, err := client.LiveStatus(context.Background(), "75ea578a-adc8-4116-a54d-dccb60765ef9")
	require.NoError(t, err)

	assert.Equal(t, "/v1/entity/75ea578a-adc8-4116-a54d-dccb60765ef9/live", received.path)
	assert.Equal(t, "showtime-sync-test", received.userAgent)

	require.Len(t, items, 2)
	assert.Equal(t, "Happily Ever After", items[0].Name)
	assert.Equal(t, "SHOW", items[0].EntityType)
	require.Len(t, items[0].Showtimes, 1, "windows without a valid start are dropped")

	window := items[0].Showtimes[0]
	assert.Equal(t, "Operating", window.Type)
	assert.Equal(t, "2026-10-16T21:00:00-04:00", window.StartTime.Format(time.RFC3339))
	require.NotNil(t, window.EndTime)
	assert.Equal(t, 20*time.Minute, window.EndTime.Sub(window.StartTime))
	assert.Contains(t, string(window.Raw), "startTime")

	assert.Empty(t, items[1].Showtimes)
}

func TestLiveStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"boom"}`},
		{name: "not found", status: http.StatusNotFound, body: ``},
		{name: "malformed json", status: http.StatusOK, body: `{"liveData": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newTestServer(t, tt.status, tt.body)
			client := NewClient(server.URL, time.Second, "")

			items, err := client.LiveStatus(context.Background(), "venue")
			assert.Error(t, err)
			assert.Nil(t, items)
		})
	}
}

func TestLiveStatusCancelledContext(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.LiveStatus(ctx, "venue")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLiveStatusEmptyVenue(t *testing.T) {
	client := NewClient("", 0, "")
	_, err := client.LiveStatus(context.Background(), "")
	assert.Error(t, err)
	assert.Equal(t, DefaultBaseURL+"/entity/abc/live", client.LiveURL("abc"))
}
