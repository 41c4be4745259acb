// Package interval computes one concrete calendar placement for a task
// from its raw temporal fields.
//
// Placement is due-anchored: when a due time exists, the interval always
// ends exactly at it and the start is derived from the duration, never
// the reverse. A scheduled time is only consulted to infer a duration
// when no explicit one is given; it never decides where the block sits.
package interval

import (
	"fmt"
	"math"
	"time"

	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/task"
)

// Duration provenance values recorded in Computed.DurationSource.
const (
	SourceExplicit = "explicit"
	SourceSpan     = "inferred_from_span"
	SourceDefault  = "default"
)

// Computed is the result of inferring a placement interval.
type Computed struct {
	// Start is the placement start (End minus the duration).
	Start time.Time

	// End is the placement end; always equals the task's due time.
	End time.Time

	// DurationMin is the placement duration in minutes.
	DurationMin int

	// DurationSource records which precedence rule produced DurationMin.
	DurationSource string

	// PlacementSource records what anchored the placement.
	PlacementSource string

	// OK is false when the inferred interval is degenerate; callers must
	// treat the task as unplaced rather than render a non-positive block.
	OK bool

	// Warning carries a non-fatal inference note, if any.
	Warning string
}

// Infer computes the placement interval for a single task. It returns nil
// when due is nil: without a due time the interval cannot be anchored,
// and that is an expected outcome, not an error.
//
// Duration precedence: an explicit positive durationMin wins; otherwise
// the rounded scheduled..due span is used when scheduled is not after due
// and the span lands in [1, maxInferMin] minutes; otherwise defaultMin.
func Infer(due, scheduled *time.Time, durationMin, defaultMin, maxInferMin int) *Computed {
	if due == nil {
		return nil
	}

	c := &Computed{
		End:             *due,
		PlacementSource: "due",
	}

	switch {
	case durationMin > 0:
		c.DurationMin = durationMin
		c.DurationSource = SourceExplicit
	case scheduled != nil && scheduled.After(*due):
		// Taskwarrior permits scheduled > due; it is useless for span
		// inference so fall through to the default.
		c.DurationMin = defaultMin
		c.DurationSource = SourceDefault
		c.Warning = "scheduled is after due; ignored for duration inference"
	case scheduled != nil:
		span := int(math.Round(due.Sub(*scheduled).Minutes()))
		if span >= 1 && span <= maxInferMin {
			c.DurationMin = span
			c.DurationSource = SourceSpan
		} else {
			c.DurationMin = defaultMin
			c.DurationSource = SourceDefault
			c.Warning = fmt.Sprintf("scheduled..due span of %dmin outside [1, %d]; using default", span, maxInferMin)
		}
	default:
		c.DurationMin = defaultMin
		c.DurationSource = SourceDefault
	}

	if c.DurationMin <= 0 {
		c.OK = false
		c.Warning = fmt.Sprintf("non-positive duration %dmin; task left unplaced", c.DurationMin)
		return c
	}

	c.Start = due.Add(-time.Duration(c.DurationMin) * time.Minute)
	if !c.Start.Before(c.End) {
		c.OK = false
		c.Warning = "degenerate interval (start >= end); task left unplaced"
		return c
	}

	c.OK = true
	return c
}

// ForTask returns the effective placement for a task: the already
// computed interval when the task carries one, otherwise a fresh
// inference from its raw fields.
func ForTask(t *task.Task, s task.Settings) *Computed {
	if t.StartCalc != nil && t.EndCalc != nil && t.StartCalc.Before(*t.EndCalc) {
		return &Computed{
			Start:           *t.StartCalc,
			End:             *t.EndCalc,
			DurationMin:     t.DurationCalc,
			DurationSource:  t.DurationSource,
			PlacementSource: t.PlacementSource,
			OK:              true,
		}
	}
	return Infer(t.Due, t.Scheduled, t.DurationMin, s.DefaultDurationMin, s.MaxInferDurationMin)
}
