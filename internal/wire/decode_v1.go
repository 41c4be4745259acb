package wire

import (
	"fmt"
	"time"

	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/plan"
)

// DecodeV1 converts a validated v1 plan object into the canonical
// result. Callers must run Validate first; shape surprises here still
// error rather than panic, but produce single-shot failures instead of
// an itemized report.
func DecodeV1(obj map[string]any) (*plan.Result, error) {
	r := plan.NewResult()

	if v, present := obj["overrides"]; present {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: overrides must be an object", ErrBadShape)
		}
		for uuid, raw := range m {
			entry, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: overrides[%s] must be an object", ErrBadShape, uuid)
			}
			startMS, okStart := wholeNumber(entry["start"])
			dueMS, okDue := wholeNumber(entry["due"])
			if !okStart || !okDue {
				return nil, fmt.Errorf("%w: overrides[%s] start/due must be epoch milliseconds", ErrBadShape, uuid)
			}
			o := plan.Override{
				Start: time.UnixMilli(int64(startMS)).UTC(),
				Due:   time.UnixMilli(int64(dueMS)).UTC(),
			}
			if dv, present := entry["duration_min"]; present {
				n, ok := wholeNumber(dv)
				if !ok {
					return nil, fmt.Errorf("%w: overrides[%s] duration_min must be a whole number", ErrBadShape, uuid)
				}
				o.DurationMin = n
			}
			r.Overrides[uuid] = o
		}
	}

	if v, present := obj["added_tasks"]; present {
		list, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: added_tasks must be a list", ErrBadShape)
		}
		for i, raw := range list {
			entry, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: added_tasks[%d] must be an object", ErrBadShape, i)
			}
			d := plan.Draft{
				UUID:        str(entry["uuid"]),
				Description: str(entry["description"]),
				Status:      str(entry["status"]),
				Project:     str(entry["project"]),
				SplitOf:     str(entry["split_of"]),
			}
			if d.UUID == "" || d.Description == "" || d.Status == "" {
				return nil, fmt.Errorf("%w: added_tasks[%d] requires uuid, description and status", ErrBadShape, i)
			}
			if tv, present := entry["tags"]; present {
				tags, err := parseTags(tv)
				if err != nil {
					return nil, fmt.Errorf("%w: added_tasks[%d] %v", ErrBadShape, i, err)
				}
				d.Tags = tags
			}
			if dv, present := entry["duration_min"]; present {
				n, ok := wholeNumber(dv)
				if !ok || n < 0 {
					return nil, fmt.Errorf("%w: added_tasks[%d] duration_min must be a non-negative whole number", ErrBadShape, i)
				}
				d.DurationMin = n
			}
			r.AddedTasks = append(r.AddedTasks, d)
		}
	}

	if v, present := obj["task_updates"]; present {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: task_updates must be an object", ErrBadShape)
		}
		for uuid, raw := range m {
			patch, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: task_updates[%s] must be an object", ErrBadShape, uuid)
			}
			r.TaskUpdates[uuid] = plan.Patch(patch)
		}
	}

	if err := decodeMeta(obj, r); err != nil {
		return nil, err
	}
	return r, nil
}

// decodeMeta fills warnings, notes and model_id, shared by the v1
// decoder and the v2 compiler's final stage.
func decodeMeta(obj map[string]any, r *plan.Result) error {
	for field, dst := range map[string]*[]string{"warnings": &r.Warnings, "notes": &r.Notes} {
		v, present := obj[field]
		if !present {
			continue
		}
		list, ok := v.([]any)
		if !ok {
			return fmt.Errorf("%w: %s must be a list of strings", ErrBadShape, field)
		}
		for i, e := range list {
			s, ok := e.(string)
			if !ok {
				return fmt.Errorf("%w: %s[%d] must be a string", ErrBadShape, field, i)
			}
			*dst = append(*dst, s)
		}
	}
	if v, present := obj["model_id"]; present && v != nil {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: model_id must be a string", ErrBadShape)
		}
		r.ModelID = s
	}
	return nil
}
