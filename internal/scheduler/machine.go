package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jaki95/showtime-sync/internal/progress"
)

var ErrInvalidTransition = errors.New("invalid state transition")

var transitions = map[progress.Stage][]progress.Stage{
	progress.StageIdle:        {progress.StageResolved, progress.StageDone},
	progress.StageResolved:    {progress.StageAssetReady, progress.StageDone},
	progress.StageAssetReady:  {progress.StagePlanned, progress.StageDone},
	progress.StagePlanned:     {progress.StageWaiting, progress.StageSeekPlaying, progress.StageAborted, progress.StageDone},
	progress.StageWaiting:     {progress.StagePlaying, progress.StageDone},
	progress.StagePlaying:     {progress.StageDone},
	progress.StageSeekPlaying: {progress.StageDone},
	progress.StageAborted:     {progress.StageDone},
	progress.StageDone:        {},
}

// Machine is the state of one run. Every transition is published to the
// tracker.
type Machine struct {
	mu      sync.Mutex
	state   progress.Stage
	history []progress.Stage
	tracker *progress.ProgressTracker
}

func NewMachine(tracker *progress.ProgressTracker) *Machine {
	if tracker == nil {
		tracker = progress.NewProgressTracker()
	}
	return &Machine{
		state:   progress.StageIdle,
		history: []progress.Stage{progress.StageIdle},
		tracker: tracker,
	}
}

func (m *Machine) State() progress.Stage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// History returns every state the machine has been in, in order.
func (m *Machine) History() []progress.Stage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.history)
}

// Transition moves to the next state if the move is legal.
func (m *Machine) Transition(to progress.Stage, message string) error {
	m.mu.Lock()
	from := m.state
	if !slices.Contains(transitions[from], to) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	m.state = to
	m.history = append(m.history, to)
	m.mu.Unlock()

	slog.Debug("State transition", "from", from, "to", to, "message", message)
	m.tracker.UpdateStage(to, message)
	return nil
}

// Fail ends the run with an error. It is a no-op once the run is done.
func (m *Machine) Fail(err error) {
	m.mu.Lock()
	if m.state == progress.StageDone {
		m.mu.Unlock()
		return
	}
	from := m.state
	m.state = progress.StageDone
	m.history = append(m.history, progress.StageDone)
	m.mu.Unlock()

	slog.Debug("State transition", "from", from, "to", progress.StageDone, "error", err)
	m.tracker.SetError(err)
}

func (m *Machine) reportWait(total, remaining time.Duration) {
	m.tracker.UpdateWait(total, remaining)
}
