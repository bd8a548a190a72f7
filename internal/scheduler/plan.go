package scheduler

import (
	"fmt"
	"time"
)

const (
	DefaultMaxSleep        = 60 * time.Second
	DefaultSettleTolerance = 500 * time.Millisecond
	DefaultGraceWindow     = 1200 * time.Second
)

const (
	ReasonFinished       = "finished"
	ReasonLikelyFinished = "likely finished, duration unknown"
)

// Kind is the outcome of planning.
type Kind string

const (
	KindWaitThenPlay Kind = "wait_then_play"
	KindSeekThenPlay Kind = "seek_then_play"
	KindAbort        Kind = "abort"
)

// Plan is decided once per run. Wait is set for KindWaitThenPlay, Offset for
// KindSeekThenPlay and Reason for KindAbort.
type Plan struct {
	Kind   Kind
	Wait   time.Duration
	Offset time.Duration
	Reason string
}

func (p Plan) String() string {
	switch p.Kind {
	case KindWaitThenPlay:
		return fmt.Sprintf("wait %s then play", p.Wait.Round(time.Second))
	case KindSeekThenPlay:
		return fmt.Sprintf("play from %s", p.Offset.Round(time.Second))
	default:
		return fmt.Sprintf("abort: %s", p.Reason)
	}
}

// Policy holds the timing constants of the scheduler.
type Policy struct {
	// Longest single sleep while waiting
	MaxSleep time.Duration
	// Waiting stops once the start is this close
	SettleTolerance time.Duration
	// How late a show with an unknown duration may still be joined
	GraceWindow time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxSleep:        DefaultMaxSleep,
		SettleTolerance: DefaultSettleTolerance,
		GraceWindow:     DefaultGraceWindow,
	}
}

func (p Policy) withDefaults() Policy {
	if p.MaxSleep <= 0 {
		p.MaxSleep = DefaultMaxSleep
	}
	if p.SettleTolerance <= 0 {
		p.SettleTolerance = DefaultSettleTolerance
	}
	if p.GraceWindow <= 0 {
		p.GraceWindow = DefaultGraceWindow
	}
	return p
}

// ComputePlan decides between waiting, joining late and giving up.
// A show starting exactly now is joined at offset zero.
func (p Policy) ComputePlan(start, now time.Time, duration time.Duration, durationKnown bool) Plan {
	if start.After(now) {
		return Plan{Kind: KindWaitThenPlay, Wait: start.Sub(now)}
	}

	offset := now.Sub(start)
	if durationKnown {
		if offset < duration {
			return Plan{Kind: KindSeekThenPlay, Offset: offset}
		}
		return Plan{Kind: KindAbort, Reason: ReasonFinished}
	}

	if offset < p.withDefaults().GraceWindow {
		return Plan{Kind: KindSeekThenPlay, Offset: offset}
	}
	return Plan{Kind: KindAbort, Reason: ReasonLikelyFinished}
}

// ComputePlan uses the default policy.
func ComputePlan(start, now time.Time, duration time.Duration, durationKnown bool) Plan {
	return DefaultPolicy().ComputePlan(start, now, duration, durationKnown)
}
