package slots

import (
	"sort"
	"time"
)

// span is a half-open [start, end) time interval.
type span struct {
	start time.Time
	end   time.Time
}

// merge sorts spans by start and collapses overlapping or touching ones
// into a non-overlapping union.
func merge(spans []span) []span {
	if len(spans) == 0 {
		return nil
	}
	sorted := make([]span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].start.Before(sorted[j].start)
	})

	out := []span{sorted[0]}
	for _, s := range sorted[1:] {
		last := &out[len(out)-1]
		if !s.start.After(last.end) {
			if s.end.After(last.end) {
				last.end = s.end
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

// subtract removes a merged busy union from a window, emitting the gaps
// before, between and after the busy blocks, clipped to the window.
func subtract(window span, busy []span) []span {
	if !window.end.After(window.start) {
		return nil
	}
	var out []span
	cursor := window.start
	for _, b := range busy {
		if !b.end.After(cursor) {
			continue
		}
		if !b.start.Before(window.end) {
			break
		}
		if b.start.After(cursor) {
			gapEnd := b.start
			if gapEnd.After(window.end) {
				gapEnd = window.end
			}
			out = append(out, span{start: cursor, end: gapEnd})
		}
		if b.end.After(cursor) {
			cursor = b.end
		}
		if !cursor.Before(window.end) {
			return out
		}
	}
	if cursor.Before(window.end) {
		out = append(out, span{start: cursor, end: window.end})
	}
	return out
}
