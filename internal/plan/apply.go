package plan

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/task"
)

// RenormalizeFunc is the opaque renormalization hook of the external
// schema layer. The core neither knows nor cares what it rebuilds.
type RenormalizeFunc func(*task.Payload) error

// ApplyOptions control plan application.
type ApplyOptions struct {
	// Renormalize, when non-nil, runs after a successful mutation.
	// Batch callers leave it nil and renormalize once at the end.
	Renormalize RenormalizeFunc
}

// ApplyOverrides validates the override map against the payload and, if
// every check passes, writes the computed placement fields of each
// overridden task. On any violation it returns an error wrapping
// ErrPlanInvalid and mutates nothing. The tasks' original due/scheduled
// fields are never touched.
func ApplyOverrides(p *task.Payload, overrides map[string]Override, opts ApplyOptions) error {
	if violations := ValidateOverrides(p, overrides); len(violations) > 0 {
		return violationsError(violations)
	}
	loc, err := p.Settings.Location()
	if err != nil {
		return err
	}

	for uuid, o := range overrides {
		t, ok := p.Lookup(uuid)
		if !ok {
			// Unreachable after validation; kept as a hard stop.
			return fmt.Errorf("%w: %s", ErrUnknownTask, uuid)
		}
		start, due := o.Start, o.Due
		t.StartCalc = &start
		t.EndCalc = &due
		t.DurationCalc = int(o.Span() / time.Minute)
		t.DurationSource = task.DurationExplicit
		t.PlacementSource = task.PlacementPlan
		t.DayKey = start.In(loc).Format("2006-01-02")
	}

	if opts.Renormalize != nil {
		return opts.Renormalize(p)
	}
	return nil
}

// ApplyResult merges a full plan result into the payload in three
// stages: shallow patches onto existing tasks, appended new tasks, then
// the override placements. The whole merge is atomic: any failure leaves
// the payload exactly as it was.
//
// Task order is a committed contract: existing tasks keep their
// positions and added tasks are appended in input order, because
// downstream consumers rely on stable positional indices.
func ApplyResult(p *task.Payload, r *Result, opts ApplyOptions) ([]string, error) {
	staged := stagePayload(p)
	warnings := append([]string(nil), r.Warnings...)

	// Stage 1: shallow patches. An unknown uuid is fatal, not a skip.
	for _, uuid := range sortedKeys(r.TaskUpdates) {
		t, ok := staged.Lookup(uuid)
		if !ok {
			return nil, fmt.Errorf("%w: task_updates references %s", ErrUnknownTask, uuid)
		}
		w, err := applyPatch(t, r.TaskUpdates[uuid])
		if err != nil {
			return nil, fmt.Errorf("task_updates[%s]: %w", uuid, err)
		}
		warnings = append(warnings, w...)
	}

	// Stage 2: appended drafts, rejecting uuid collisions.
	for i, d := range r.AddedTasks {
		if d.UUID == "" || d.Description == "" || d.Status == "" {
			return nil, fmt.Errorf("added_tasks[%d]: uuid, description and status are required", i)
		}
		if _, exists := staged.Lookup(d.UUID); exists {
			return nil, fmt.Errorf("%w: added task %s already present", ErrDuplicateTask, d.UUID)
		}
		staged.Tasks = append(staged.Tasks, task.Task{
			UUID:        d.UUID,
			Description: d.Description,
			Status:      task.Status(d.Status),
			Project:     d.Project,
			Tags:        append([]string(nil), d.Tags...),
			DurationMin: d.DurationMin,
			SplitOf:     d.SplitOf,
		})
		staged.Reindex()
	}

	// Stage 3: placements over the union of updated and added tasks.
	if err := ApplyOverrides(staged, r.Overrides, ApplyOptions{}); err != nil {
		return nil, err
	}

	p.Tasks = staged.Tasks
	p.Reindex()

	if opts.Renormalize != nil {
		if err := opts.Renormalize(p); err != nil {
			return nil, err
		}
	}
	return warnings, nil
}

// stagePayload deep-copies the payload's task slice so the merge can be
// abandoned without partial mutation.
func stagePayload(p *task.Payload) *task.Payload {
	tasks := make([]task.Task, len(p.Tasks))
	copy(tasks, p.Tasks)
	return task.NewPayload(p.Settings, tasks)
}

// applyPatch applies a shallow wire patch to a task. Unknown keys are
// skipped with a warning; the core's computed fields and the uuid are
// not patchable.
func applyPatch(t *task.Task, patch Patch) ([]string, error) {
	var warnings []string
	for _, key := range sortedKeys(patch) {
		v := patch[key]
		switch key {
		case "description":
			s, ok := v.(string)
			if !ok || s == "" {
				return nil, fmt.Errorf("description must be a non-empty string")
			}
			t.Description = s
		case "status":
			s, ok := v.(string)
			if !ok || s == "" {
				return nil, fmt.Errorf("status must be a non-empty string")
			}
			t.Status = task.Status(s)
		case "project":
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("project must be a string")
			}
			t.Project = s
		case "tags":
			tags, err := patchTags(v)
			if err != nil {
				return nil, err
			}
			t.Tags = tags
		case "due":
			ts, err := patchTime(v)
			if err != nil {
				return nil, fmt.Errorf("due: %w", err)
			}
			t.Due = ts
		case "scheduled":
			ts, err := patchTime(v)
			if err != nil {
				return nil, fmt.Errorf("scheduled: %w", err)
			}
			t.Scheduled = ts
		case "duration_min":
			n, ok := asWholeNumber(v)
			if !ok || n < 0 {
				return nil, fmt.Errorf("duration_min must be a non-negative whole number")
			}
			t.DurationMin = n
		default:
			warnings = append(warnings, fmt.Sprintf("patch for %s: unsupported field %q ignored", t.UUID, key))
		}
	}
	return warnings, nil
}

func patchTags(v any) ([]string, error) {
	switch vv := v.(type) {
	case string:
		return strings.Fields(vv), nil
	case []string:
		return append([]string(nil), vv...), nil
	case []any:
		var out []string
		for _, e := range vv {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("tags must be strings")
			}
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("tags must be a list or a string")
	}
}

func patchTime(v any) (*time.Time, error) {
	switch vv := v.(type) {
	case nil:
		return nil, nil
	case string:
		ts, err := time.Parse(time.RFC3339, vv)
		if err != nil {
			return nil, fmt.Errorf("invalid RFC 3339 instant %q", vv)
		}
		return &ts, nil
	default:
		if n, ok := asWholeNumber(v); ok {
			ts := time.UnixMilli(int64(n)).UTC()
			return &ts, nil
		}
		return nil, fmt.Errorf("expected RFC 3339 string or epoch milliseconds")
	}
}

// asWholeNumber accepts the numeric shapes JSON decoding can produce.
func asWholeNumber(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func violationsError(violations []Violation) error {
	msgs := make([]string, len(violations))
	for i, v := range violations {
		msgs[i] = v.String()
	}
	return fmt.Errorf("%w: %s", ErrPlanInvalid, strings.Join(msgs, "; "))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
