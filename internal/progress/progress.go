// Package progress tracks the stages of a sync run and fans them out to
// listeners such as the log and the terminal countdown.
package progress

import (
	"reflect"
	"sync"
	"time"
)

// Stage represents the current stage of a run
type Stage string

const (
	StageIdle        Stage = "idle"
	StageResolved    Stage = "resolved"
	StageAssetReady  Stage = "asset_ready"
	StagePlanned     Stage = "planned"
	StageWaiting     Stage = "waiting"
	StagePlaying     Stage = "playing"
	StageSeekPlaying Stage = "seek_playing"
	StageAborted     Stage = "aborted"
	StageDone        Stage = "done"
)

// Event represents a progress event
type Event struct {
	Stage       Stage
	Message     string
	Timestamp   time.Time
	WaitDetails *WaitDetails
	Error       string
}

// WaitDetails describes the countdown while waiting for showtime
type WaitDetails struct {
	Total     time.Duration
	Remaining time.Duration
}

// Elapsed returns how much of the wait has passed.
func (w WaitDetails) Elapsed() time.Duration {
	if w.Remaining <= 0 {
		return w.Total
	}
	if w.Remaining >= w.Total {
		return 0
	}
	return w.Total - w.Remaining
}

// ProgressTracker manages progress tracking
type ProgressTracker struct {
	mu          sync.RWMutex
	stage       Stage
	message     string
	waitDetails *WaitDetails
	err         error
	listeners   []func(Event)
}

// NewProgressTracker creates a new ProgressTracker instance
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		stage:     StageIdle,
		listeners: make([]func(Event), 0),
	}
}

// AddListener adds a new progress event listener
func (pt *ProgressTracker) AddListener(listener func(Event)) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.listeners = append(pt.listeners, listener)
}

// RemoveListener removes a progress event listener
func (pt *ProgressTracker) RemoveListener(listener func(Event)) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	listenerPtr := reflect.ValueOf(listener).Pointer()
	for i := range pt.listeners {
		if reflect.ValueOf(pt.listeners[i]).Pointer() == listenerPtr {
			pt.listeners = append(pt.listeners[:i], pt.listeners[i+1:]...)
			break
		}
	}
}

// UpdateStage moves to a new stage and notifies all listeners
func (pt *ProgressTracker) UpdateStage(stage Stage, message string) {
	pt.mu.Lock()
	pt.stage = stage
	pt.message = message
	if stage != StageWaiting {
		pt.waitDetails = nil
	}
	pt.mu.Unlock()

	pt.notifyListeners(Event{
		Stage:     stage,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// UpdateWait records the remaining wait and notifies all listeners
func (pt *ProgressTracker) UpdateWait(total, remaining time.Duration) {
	details := &WaitDetails{
		Total:     total,
		Remaining: remaining,
	}

	pt.mu.Lock()
	pt.waitDetails = details
	stage, message := pt.stage, pt.message
	pt.mu.Unlock()

	pt.notifyListeners(Event{
		Stage:       stage,
		Message:     message,
		Timestamp:   time.Now(),
		WaitDetails: details,
	})
}

// SetError records a failure and finishes the run
func (pt *ProgressTracker) SetError(err error) {
	pt.mu.Lock()
	pt.stage = StageDone
	pt.err = err
	pt.message = err.Error()
	pt.waitDetails = nil
	pt.mu.Unlock()

	pt.notifyListeners(Event{
		Stage:     StageDone,
		Message:   err.Error(),
		Timestamp: time.Now(),
		Error:     err.Error(),
	})
}

// notifyListeners sends an event to all registered listeners
func (pt *ProgressTracker) notifyListeners(event Event) {
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	for _, listener := range pt.listeners {
		listener(event)
	}
}

// GetCurrentState returns the current progress state
func (pt *ProgressTracker) GetCurrentState() Event {
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	event := Event{
		Stage:       pt.stage,
		Message:     pt.message,
		Timestamp:   time.Now(),
		WaitDetails: pt.waitDetails,
	}
	if pt.err != nil {
		event.Error = pt.err.Error()
	}
	return event
}
