package wire

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/plan"
)

// TempUUID returns the deterministic synthetic uuid for a planner-chosen
// temporary id. Stripping an existing "tmp:" prefix first makes the
// mapping idempotent: re-compiling output that already carries synthetic
// ids maps them to themselves.
func TempUUID(tempID string) string {
	return "tmp:" + strings.TrimPrefix(strings.TrimSpace(tempID), "tmp:")
}

// Compile turns a validated v2 plan object into the canonical plan
// result. It runs two passes: a temp-id allocation pass over the ops
// that introduce new tasks, so later ops may reference them regardless
// of op order, then the compile pass proper.
//
// Compile is fail-fast. The first malformed instant, non-chronological
// pair, unknown slot_id or missing subtask field aborts the whole
// compile; a partial plan is never returned.
func Compile(obj map[string]any) (*plan.Result, error) {
	rawOps, ok := obj["ops"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: ops must be a list", ErrBadShape)
	}

	ops := make([]Op, 0, len(rawOps))
	for i, raw := range rawOps {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: ops[%d] must be an object", ErrBadShape, i)
		}
		op, err := parseOp(i, m)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}

	catalog, err := decodeCatalog(obj)
	if err != nil {
		return nil, err
	}

	// Pass 1: allocate synthetic uuids for every temp id introduced by
	// create_task and split_task subtasks.
	temp := map[string]string{}
	for _, op := range ops {
		switch o := op.(type) {
		case CreateTask:
			temp[o.TempID] = TempUUID(o.TempID)
		case SplitTask:
			for _, sub := range o.Subtasks {
				temp[sub.TempID] = TempUUID(sub.TempID)
			}
		}
	}

	resolve := func(target string) string {
		if uuid, ok := temp[target]; ok {
			return uuid
		}
		return target
	}

	r := plan.NewResult()

	// Pass 2: compile each op.
	for i, op := range ops {
		switch o := op.(type) {
		case CreateTask:
			r.AddedTasks = append(r.AddedTasks, plan.Draft{
				UUID:        temp[o.TempID],
				Description: o.Description,
				Status:      "pending",
				Project:     o.Project,
				Tags:        o.Tags,
				DurationMin: o.DurationMin,
			})

		case SplitTask:
			parent := resolve(o.Target)
			for _, sub := range o.Subtasks {
				r.AddedTasks = append(r.AddedTasks, plan.Draft{
					UUID:        temp[sub.TempID],
					Description: sub.Description,
					Status:      "pending",
					DurationMin: sub.DurationMin,
					SplitOf:     parent,
				})
			}

		case Place:
			target := resolve(o.Target)
			start, due, err := resolveWindow(i, o, catalog)
			if err != nil {
				return nil, err
			}
			if _, exists := r.Overrides[target]; exists {
				r.Warnings = append(r.Warnings, fmt.Sprintf("place for %s overrides an earlier placement in the same plan", target))
			}
			durationMin := int(math.Round(float64(due.Sub(start)) / float64(time.Minute)))
			if durationMin < 1 {
				durationMin = 1
			}
			r.Overrides[target] = plan.Override{Start: start, Due: due, DurationMin: durationMin}

		case UpdateTask:
			mergePatch(r, resolve(o.Target), o.Set)

		case CompleteTask:
			mergePatch(r, resolve(o.Target), plan.Patch{"status": "completed"})

		case DeleteTask:
			mergePatch(r, resolve(o.Target), plan.Patch{"status": "deleted"})

		case Unknown:
			// Forward compatibility: skipped without error.
		}
	}

	if err := decodeMeta(obj, r); err != nil {
		return nil, err
	}
	return r, nil
}

// resolveWindow resolves a place op's interval, either through the slot
// catalog or from its explicit instant pair.
func resolveWindow(i int, o Place, catalog map[string]plan.Override) (time.Time, time.Time, error) {
	var zero time.Time
	if o.SlotID != "" {
		w, ok := catalog[o.SlotID]
		if !ok {
			return zero, zero, fmt.Errorf("%w: ops[%d] slot_id %q not in slot_catalog", ErrBadReference, i, o.SlotID)
		}
		return w.Start, w.Due, nil
	}
	start, err := parseInstant(o.StartISO)
	if err != nil {
		return zero, zero, fmt.Errorf("%w: ops[%d] start_iso: %v", ErrBadShape, i, err)
	}
	due, err := parseInstant(o.DueISO)
	if err != nil {
		return zero, zero, fmt.Errorf("%w: ops[%d] due_iso: %v", ErrBadShape, i, err)
	}
	if !due.After(start) {
		return zero, zero, fmt.Errorf("%w: ops[%d] due_iso must be after start_iso", ErrBadShape, i)
	}
	return start, due, nil
}

// parseInstant parses an RFC 3339 instant. The offset requirement is the
// point: a naive local timestamp would compile differently on different
// machines, so it is rejected outright.
func parseInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid instant %q (RFC 3339 with UTC offset required)", s)
	}
	return t, nil
}

func decodeCatalog(obj map[string]any) (map[string]plan.Override, error) {
	v, present := obj["slot_catalog"]
	if !present {
		return map[string]plan.Override{}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: slot_catalog must be an object", ErrBadShape)
	}
	out := make(map[string]plan.Override, len(m))
	for id, raw := range m {
		entry, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: slot_catalog[%s] must be an object", ErrBadShape, id)
		}
		startMS, okStart := wholeNumber(entry["start"])
		dueMS, okDue := wholeNumber(entry["due"])
		if !okStart || !okDue || dueMS <= startMS {
			return nil, fmt.Errorf("%w: slot_catalog[%s] requires epoch-millisecond start < due", ErrBadShape, id)
		}
		out[id] = plan.Override{
			Start: time.UnixMilli(int64(startMS)).UTC(),
			Due:   time.UnixMilli(int64(dueMS)).UTC(),
		}
	}
	return out, nil
}

func mergePatch(r *plan.Result, target string, set plan.Patch) {
	existing, ok := r.TaskUpdates[target]
	if !ok {
		existing = plan.Patch{}
		r.TaskUpdates[target] = existing
	}
	for k, v := range set {
		existing[k] = v
	}
}
