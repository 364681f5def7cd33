// Package attempt tracks one timed play-through of a level.
package attempt

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/typechallenge/internal/model"
	"github.com/verte-zerg/typechallenge/internal/scoring"
)

// State is the lifecycle position of an attempt.
type State int

// Attempt states. The only forward transitions are Idle to Running and
// Running to Finished; Restart returns to Idle.
const (
	Idle State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// Attempt owns the transcript and countdown for a single level run.
// It is not safe for concurrent use.
type Attempt struct {
	id         string
	level      model.Level
	reference  string
	clock      Clock
	state      State
	startedAt  time.Time
	matchedAt  time.Time
	remaining  int
	transcript string
	result     model.AttemptResult
}

// New creates an idle attempt for the level.
func New(level model.Level, clock Clock) *Attempt {
	if clock == nil {
		clock = SystemClock()
	}
	return &Attempt{
		id:        uuid.NewString(),
		level:     level,
		reference: scoring.Normalize(level.Text),
		clock:     clock,
		remaining: level.Thresholds.TimeLimitSeconds,
	}
}

// ID returns the attempt handle identifier.
func (a *Attempt) ID() string { return a.id }

// Level returns the level being played.
func (a *Attempt) Level() model.Level { return a.level }

// State returns the current lifecycle state.
func (a *Attempt) State() State { return a.state }

// Remaining returns the seconds left on the countdown.
func (a *Attempt) Remaining() int { return a.remaining }

// Transcript returns the text typed so far.
func (a *Attempt) Transcript() string { return a.transcript }

// Result returns the scored result once the attempt has finished.
func (a *Attempt) Result() (model.AttemptResult, bool) {
	return a.result, a.state == Finished
}

// FinishedTyping reports whether the transcript matched before time ran out.
func (a *Attempt) FinishedTyping() bool { return !a.matchedAt.IsZero() }

// Start moves an idle attempt to running. It returns false in any other state.
func (a *Attempt) Start() bool {
	if a.state != Idle {
		return false
	}
	a.state = Running
	a.startedAt = a.clock.Now()
	a.remaining = a.level.Thresholds.TimeLimitSeconds
	return true
}

// RecordKeystroke stores the latest transcript and reports an early match.
func (a *Attempt) RecordKeystroke(transcript string) bool {
	if a.state != Running {
		return false
	}
	a.transcript = transcript
	if scoring.Normalize(transcript) != a.reference {
		return false
	}
	if a.matchedAt.IsZero() {
		a.matchedAt = a.clock.Now()
	}
	return true
}

// Tick advances the countdown by one second and reports expiry.
func (a *Attempt) Tick() bool {
	if a.state != Running {
		return false
	}
	if a.remaining > 0 {
		a.remaining--
	}
	return a.remaining == 0
}

// End scores the attempt. Only the first call on a running attempt does any
// work; later calls return false.
func (a *Attempt) End() (model.AttemptResult, bool) {
	if a.state != Running {
		return model.AttemptResult{}, false
	}
	a.state = Finished

	limit := a.level.Thresholds.TimeLimitSeconds
	var elapsed float64
	finishedInTime := a.remaining > 0
	if a.FinishedTyping() {
		elapsed = a.matchedAt.Sub(a.startedAt).Seconds()
		finishedInTime = true
	} else {
		elapsed = float64(limit - a.remaining)
	}
	elapsed = math.Max(1, elapsed)

	a.result = scoring.Evaluate(a.level.Text, a.transcript, elapsed, finishedInTime, a.level.Thresholds)
	return a.result, true
}

// Restart discards the transcript and timer state.
func (a *Attempt) Restart() {
	a.state = Idle
	a.startedAt = time.Time{}
	a.matchedAt = time.Time{}
	a.transcript = ""
	a.remaining = a.level.Thresholds.TimeLimitSeconds
	a.result = model.AttemptResult{}
}

// Stats converts a result into the numbers recorded on level completion.
func (a *Attempt) Stats() model.LevelStats {
	return model.LevelStats{
		WPM:           a.result.WPM,
		Accuracy:      a.result.Accuracy,
		Mistakes:      a.result.Mistakes,
		TimeRemaining: a.remaining,
	}
}
