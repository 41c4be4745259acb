package plan

import (
	"fmt"
	"sort"
	"time"

	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/task"
)

// ValidateOverrides checks every override against the payload and the
// Override invariants, accumulating all violations rather than stopping
// at the first so the caller can report the whole batch.
func ValidateOverrides(p *task.Payload, overrides map[string]Override) []Violation {
	var out []Violation

	uuids := make([]string, 0, len(overrides))
	for uuid := range overrides {
		uuids = append(uuids, uuid)
	}
	// Deterministic report order regardless of map iteration.
	sort.Strings(uuids)

	for _, uuid := range uuids {
		o := overrides[uuid]
		path := fmt.Sprintf("overrides[%s]", uuid)

		if _, ok := p.Lookup(uuid); !ok {
			out = append(out, Violation{Path: path, Reason: "unknown task uuid"})
		}
		if uuid == "" {
			out = append(out, Violation{Path: path, Reason: "empty uuid key"})
		}
		if o.Start.IsZero() || o.Due.IsZero() {
			out = append(out, Violation{Path: path, Reason: "start and due are required"})
			continue
		}
		if !o.Due.After(o.Start) {
			out = append(out, Violation{Path: path, Reason: "due must be after start"})
			continue
		}
		span := o.Span()
		if span%time.Minute != 0 {
			out = append(out, Violation{Path: path, Reason: fmt.Sprintf("start..due span %s is not a whole number of minutes", span)})
			continue
		}
		if o.DurationMin != 0 {
			want := int(span / time.Minute)
			if o.DurationMin != want {
				out = append(out, Violation{
					Path:   path,
					Reason: fmt.Sprintf("duration mismatch: duration_min=%d but start..due span is %d minutes", o.DurationMin, want),
				})
			}
		}
	}
	return out
}
