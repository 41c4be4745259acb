package wire

import (
	"fmt"
	"strings"

	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/plan"
)

// Schema discriminator values. A missing schema field means v1.
const (
	SchemaV1 = "plan.v1"
	SchemaV2 = "plan.v2"
)

// Op tag values of the v2 DSL.
const (
	TagCreateTask   = "create_task"
	TagSplitTask    = "split_task"
	TagPlace        = "place"
	TagUpdateTask   = "update_task"
	TagCompleteTask = "complete_task"
	TagDeleteTask   = "delete_task"
)

// Op is one operation of a v2 plan. The concrete types below form a
// closed union; anything with an unrecognized tag parses as Unknown, so
// "unknown ops are skipped" is a fact of the type, not a convention.
type Op interface {
	isOp()
}

// CreateTask adds a new task under a planner-chosen temporary id.
type CreateTask struct {
	TempID      string
	Description string
	Project     string
	Tags        []string
	DurationMin int
}

// Subtask is one piece of a SplitTask.
type Subtask struct {
	TempID      string
	Description string
	DurationMin int
}

// SplitTask carves an existing task into new subtasks.
type SplitTask struct {
	Target   string
	Subtasks []Subtask
}

// Place assigns a concrete interval to a task, either through a slot
// catalog reference or an explicit offset-carrying instant pair.
type Place struct {
	Target   string
	SlotID   string
	StartISO string
	DueISO   string
}

// UpdateTask shallow-patches fields of a task.
type UpdateTask struct {
	Target string
	Set    plan.Patch
}

// CompleteTask marks a task completed (sugar for a status patch).
type CompleteTask struct {
	Target string
}

// DeleteTask marks a task deleted (sugar for a status patch).
type DeleteTask struct {
	Target string
}

// Unknown is the forward-compatibility variant: an op this build does
// not recognize, carried along so callers can inspect it but never
// compiled.
type Unknown struct {
	Tag string
	Raw map[string]any
}

func (CreateTask) isOp()   {}
func (SplitTask) isOp()    {}
func (Place) isOp()        {}
func (UpdateTask) isOp()   {}
func (CompleteTask) isOp() {}
func (DeleteTask) isOp()   {}
func (Unknown) isOp()      {}

// parseOp converts one raw op object into its union variant. It is
// fail-fast: the compiler calls it only on objects the validator has
// already admitted, so a defect here means the plan is malformed beyond
// what shape validation could see.
func parseOp(i int, m map[string]any) (Op, error) {
	tag, _ := m["op"].(string)
	switch tag {
	case TagCreateTask:
		op := CreateTask{
			TempID:      str(m["temp_id"]),
			Description: str(m["description"]),
			Project:     str(m["project"]),
		}
		if op.TempID == "" {
			return nil, fmt.Errorf("%w: ops[%d] create_task requires temp_id", ErrBadShape, i)
		}
		if op.Description == "" {
			return nil, fmt.Errorf("%w: ops[%d] create_task requires description", ErrBadShape, i)
		}
		if v, present := m["duration_min"]; present {
			n, ok := wholeNumber(v)
			if !ok || n <= 0 {
				return nil, fmt.Errorf("%w: ops[%d] create_task duration_min must be a positive integer", ErrBadShape, i)
			}
			op.DurationMin = n
		}
		tags, err := parseTags(m["tags"])
		if err != nil {
			return nil, fmt.Errorf("%w: ops[%d] create_task %v", ErrBadShape, i, err)
		}
		op.Tags = tags
		return op, nil

	case TagSplitTask:
		op := SplitTask{Target: str(m["target"])}
		if op.Target == "" {
			return nil, fmt.Errorf("%w: ops[%d] split_task requires target", ErrBadShape, i)
		}
		subs, ok := m["subtasks"].([]any)
		if !ok || len(subs) == 0 {
			return nil, fmt.Errorf("%w: ops[%d] split_task requires a non-empty subtasks list", ErrBadShape, i)
		}
		for j, raw := range subs {
			sm, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: ops[%d] subtasks[%d] must be an object", ErrBadShape, i, j)
			}
			sub := Subtask{TempID: str(sm["temp_id"]), Description: str(sm["description"])}
			if sub.TempID == "" || sub.Description == "" {
				return nil, fmt.Errorf("%w: ops[%d] subtasks[%d] requires temp_id and description", ErrBadShape, i, j)
			}
			n, ok := wholeNumber(sm["duration_min"])
			if !ok || n <= 0 {
				return nil, fmt.Errorf("%w: ops[%d] subtasks[%d] requires a positive integer duration_min", ErrBadShape, i, j)
			}
			sub.DurationMin = n
			op.Subtasks = append(op.Subtasks, sub)
		}
		return op, nil

	case TagPlace:
		op := Place{
			Target:   str(m["target"]),
			SlotID:   str(m["slot_id"]),
			StartISO: str(m["start_iso"]),
			DueISO:   str(m["due_iso"]),
		}
		if op.Target == "" {
			return nil, fmt.Errorf("%w: ops[%d] place requires target", ErrBadShape, i)
		}
		hasSlot := op.SlotID != ""
		hasExplicit := op.StartISO != "" && op.DueISO != ""
		if hasSlot == hasExplicit {
			return nil, fmt.Errorf("%w: ops[%d] place requires either slot_id or both start_iso and due_iso", ErrBadShape, i)
		}
		return op, nil

	case TagUpdateTask:
		op := UpdateTask{Target: str(m["target"])}
		if op.Target == "" {
			return nil, fmt.Errorf("%w: ops[%d] update_task requires target", ErrBadShape, i)
		}
		set, ok := m["set"].(map[string]any)
		if !ok || len(set) == 0 {
			return nil, fmt.Errorf("%w: ops[%d] update_task requires a non-empty set object", ErrBadShape, i)
		}
		op.Set = plan.Patch(set)
		return op, nil

	case TagCompleteTask:
		target := str(m["target"])
		if target == "" {
			return nil, fmt.Errorf("%w: ops[%d] complete_task requires target", ErrBadShape, i)
		}
		return CompleteTask{Target: target}, nil

	case TagDeleteTask:
		target := str(m["target"])
		if target == "" {
			return nil, fmt.Errorf("%w: ops[%d] delete_task requires target", ErrBadShape, i)
		}
		return DeleteTask{Target: target}, nil

	default:
		return Unknown{Tag: tag, Raw: m}, nil
	}
}

// parseTags accepts the two tag shapes the DSL allows: a sequence
// (filtered to non-blank entries) or a single whitespace-tokenized
// string.
func parseTags(v any) ([]string, error) {
	switch vv := v.(type) {
	case nil:
		return nil, nil
	case string:
		return strings.Fields(vv), nil
	case []any:
		var out []string
		for _, e := range vv {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("tags entries must be strings")
			}
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("tags must be a list or a string")
	}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// wholeNumber accepts the numeric shapes JSON decoding produces.
func wholeNumber(v any) (int, bool) {
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
