// Package slots computes bounded candidate placement slots for movable
// tasks: the free/busy arithmetic that tells an external planner what it
// is allowed to choose from.
package slots

import (
	"errors"
	"fmt"
	"time"

	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/interval"
	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/task"
)

// ErrNoViewStart indicates the payload has no resolved view window.
var ErrNoViewStart = errors.New("view start not set")

// Slot is one candidate placement offered to a planner.
type Slot struct {
	// ID is stable and derived purely from the slot's content, so the
	// same window always maps to the same id across independent calls.
	ID string `json:"slot_id"`

	Start time.Time `json:"start"`
	Due   time.Time `json:"due"`

	// StartLabel and DueLabel are human-readable forms in the payload
	// timezone, for prompt composition.
	StartLabel string `json:"start_label"`
	DueLabel   string `json:"due_label"`

	// DayKey is the day bucket of the slot start.
	DayKey string `json:"day_key"`
}

// Window is a catalog entry: the only time-bearing structure a plan op
// may reference by id.
type Window struct {
	Start time.Time `json:"start"`
	Due   time.Time `json:"due"`
}

// Catalog maps slot ids to their windows.
type Catalog map[string]Window

// ID derives the stable slot id for a window. Never counter- or
// random-based: compiled plans must be reproducible across machines.
func ID(start time.Time, durationMin int) string {
	return fmt.Sprintf("s%sm%d", start.UTC().Format("20060102T1504"), durationMin)
}

// Generate computes candidate slots for the selected (movable) tasks.
// Busy time comes from every non-selected, non-terminal task with a
// resolvable interval; free time is the work-hour window minus that busy
// union, walked per visible day. maxSlotsPerTask and maxDaysScan of 0
// fall back to the payload settings / the full visible range.
//
// Selected tasks are deliberately excluded from the busy union, so a
// task can always be offered its own current slot as a candidate.
func Generate(p *task.Payload, selected []string, maxSlotsPerTask, maxDaysScan int) (map[string][]Slot, Catalog, error) {
	loc, err := p.Settings.Location()
	if err != nil {
		return nil, nil, err
	}
	if p.Settings.ViewStart.IsZero() {
		return nil, nil, ErrNoViewStart
	}
	if maxSlotsPerTask <= 0 {
		maxSlotsPerTask = p.Settings.MaxSlotsPerTask
	}
	days := p.Settings.Days
	if maxDaysScan > 0 && maxDaysScan < days {
		days = maxDaysScan
	}
	snap := p.Settings.SnapMin
	if snap <= 0 {
		snap = 1
	}

	isSelected := make(map[string]bool, len(selected))
	for _, uuid := range selected {
		isSelected[uuid] = true
	}

	busy := busyUnion(p, isSelected)
	free := freeByDay(p.Settings, loc, days, busy)

	candidates := make(map[string][]Slot, len(selected))
	catalog := Catalog{}

	for _, uuid := range selected {
		t, ok := p.Lookup(uuid)
		if !ok {
			continue
		}
		durationMin := effectiveDuration(t, p.Settings)
		slots := enumerate(free, loc, snap, durationMin, maxSlotsPerTask)
		for _, s := range slots {
			catalog[s.ID] = Window{Start: s.Start, Due: s.Due}
		}
		candidates[uuid] = slots
	}
	return candidates, catalog, nil
}

// effectiveDuration picks the duration a movable task would occupy:
// an applied plan override first, then inference, then the raw explicit
// duration (an undated task cannot be inferred but still knows its
// length), then the default.
func effectiveDuration(t *task.Task, s task.Settings) int {
	if t.DurationCalc > 0 {
		return t.DurationCalc
	}
	if iv := interval.ForTask(t, s); iv != nil && iv.OK {
		return iv.DurationMin
	}
	if t.DurationMin > 0 {
		return t.DurationMin
	}
	return s.DefaultDurationMin
}

// busyUnion collects and merges the intervals of every non-selected,
// non-terminal task that resolves to a placement.
func busyUnion(p *task.Payload, isSelected map[string]bool) []span {
	var spans []span
	for i := range p.Tasks {
		t := &p.Tasks[i]
		if isSelected[t.UUID] || t.Status.Terminal() {
			continue
		}
		iv := interval.ForTask(t, p.Settings)
		if iv == nil || !iv.OK {
			continue
		}
		spans = append(spans, span{start: iv.Start, end: iv.End})
	}
	return merge(spans)
}

// freeByDay intersects each visible day's work window with the busy
// union. A day with no free time yields an empty contribution, never an
// error; a non-positive work window yields no slots for any day.
func freeByDay(s task.Settings, loc *time.Location, days int, busy []span) []span {
	if s.WorkEndMin <= s.WorkStartMin {
		return nil
	}
	view := s.ViewStart.In(loc)
	var free []span
	for d := 0; d < days; d++ {
		y, m, day := view.AddDate(0, 0, d).Date()
		// time.Date normalizes the minute offsets, which keeps the
		// window correct across DST transitions.
		winStart := time.Date(y, m, day, 0, s.WorkStartMin, 0, 0, loc)
		winEnd := time.Date(y, m, day, 0, s.WorkEndMin, 0, 0, loc)
		free = append(free, subtract(span{start: winStart, end: winEnd}, busy)...)
	}
	return free
}

// enumerate walks the free intervals emitting snap-aligned candidates
// while the full duration fits, stopping at the global per-task cap. The
// cap keeps planner prompts small; slots beyond it are not wrong, just
// not offered.
func enumerate(free []span, loc *time.Location, snapMin, durationMin, maxSlots int) []Slot {
	dur := time.Duration(durationMin) * time.Minute
	out := []Slot{}
	for _, f := range free {
		start := ceilSnap(f.start, snapMin, loc)
		for !start.Add(dur).After(f.end) {
			if len(out) >= maxSlots {
				return out
			}
			due := start.Add(dur)
			out = append(out, Slot{
				ID:         ID(start, durationMin),
				Start:      start,
				Due:        due,
				StartLabel: start.In(loc).Format("Mon 2006-01-02 15:04"),
				DueLabel:   due.In(loc).Format("Mon 2006-01-02 15:04"),
				DayKey:     start.In(loc).Format("2006-01-02"),
			})
			start = start.Add(time.Duration(snapMin) * time.Minute)
		}
	}
	return out
}

// ceilSnap rounds an instant up to the next multiple of the snap
// granularity within its wall-clock day.
func ceilSnap(t time.Time, snapMin int, loc *time.Location) time.Time {
	lt := t.In(loc)
	y, m, d := lt.Date()
	offset := lt.Hour()*60 + lt.Minute()
	if lt.Second() > 0 || lt.Nanosecond() > 0 {
		offset++
	}
	snapped := ((offset + snapMin - 1) / snapMin) * snapMin
	return time.Date(y, m, d, 0, snapped, 0, 0, loc)
}
