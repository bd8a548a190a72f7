package domain

import (
	"encoding/json"
	"time"
)

// EventDescriptor ties a provider entity ID to a canonical show name.
type EventDescriptor struct {
	ID            string `json:"id"`
	CanonicalName string `json:"canonical_name"`
}

// ScheduleWindow is a single scheduled performance of a live item.
// StartTime keeps the offset the provider reported it in.
type ScheduleWindow struct {
	Type      string          `json:"type,omitempty"`
	StartTime time.Time       `json:"start_time"`
	EndTime   *time.Time      `json:"end_time,omitempty"`
	Raw       json.RawMessage `json:"-"`
}

// LiveItem is an entry of a venue's live-status feed.
type LiveItem struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	EntityType string           `json:"entity_type,omitempty"`
	Status     string           `json:"status,omitempty"`
	Showtimes  []ScheduleWindow `json:"showtimes,omitempty"`
}

// ResolvedShow is the show selected for today's run.
type ResolvedShow struct {
	CanonicalName string    `json:"canonical_name"`
	EntityID      string    `json:"entity_id"`
	StartTime     time.Time `json:"start_time"`
}

// AudioAsset is a local soundtrack ready to be played.
type AudioAsset struct {
	CanonicalName string        `json:"canonical_name"`
	FilePath      string        `json:"file_path"`
	Duration      time.Duration `json:"duration,omitempty"`
	DurationKnown bool          `json:"duration_known"`
}

// SetDuration records a probed duration on the asset.
func (a *AudioAsset) SetDuration(d time.Duration) {
	a.Duration = d
	a.DurationKnown = true
}
