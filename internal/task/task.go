package task

import "time"

// Status is a Taskwarrior task status.
type Status string

const (
	StatusPending   Status = "pending"
	StatusWaiting   Status = "waiting"
	StatusRecurring Status = "recurring"
	StatusCompleted Status = "completed"
	StatusDeleted   Status = "deleted"
)

// Terminal reports whether the status excludes the task from scheduling.
// Terminal tasks never contribute busy time and are never offered slots.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusDeleted
}

// Placement provenance values written into Task.PlacementSource.
const (
	PlacementInferred = "inferred"
	PlacementPlan     = "ai_plan"
)

// Duration provenance values written into Task.DurationSource.
const (
	DurationExplicit = "explicit"
	DurationSpan     = "inferred_from_span"
	DurationDefault  = "default"
)

// Task is a single task record as supplied by the Taskwarrior export
// adapter. The original temporal fields (Due, Scheduled, DurationMin) are
// read-only to the scheduling core; computed placements live in the
// *Calc companion fields so the source of truth stays traceable.
type Task struct {
	// UUID is the stable task identifier.
	UUID string `json:"uuid"`

	// Description is the task summary line.
	Description string `json:"description"`

	// Project is the optional Taskwarrior project.
	Project string `json:"project,omitempty"`

	// Tags are the optional Taskwarrior tags.
	Tags []string `json:"tags,omitempty"`

	// Status is the task lifecycle status.
	Status Status `json:"status"`

	// Entry is when the task was created.
	Entry *time.Time `json:"entry,omitempty"`

	// Due is the optional due time. Never mutated by the core.
	Due *time.Time `json:"due,omitempty"`

	// Scheduled is the optional scheduled time. Never mutated by the core.
	Scheduled *time.Time `json:"scheduled,omitempty"`

	// DurationMin is the optional explicit duration in minutes (0 = absent).
	DurationMin int `json:"duration_min,omitempty"`

	// StartCalc is the computed placement start.
	StartCalc *time.Time `json:"start_calc,omitempty"`

	// EndCalc is the computed placement end.
	EndCalc *time.Time `json:"end_calc,omitempty"`

	// DurationCalc is the computed placement duration in minutes.
	DurationCalc int `json:"duration_calc,omitempty"`

	// DurationSource records how DurationCalc was derived.
	DurationSource string `json:"duration_source,omitempty"`

	// PlacementSource records what produced the current placement.
	PlacementSource string `json:"placement_source,omitempty"`

	// DayKey is the day bucket (YYYY-MM-DD in the payload timezone)
	// of the computed start.
	DayKey string `json:"day_key,omitempty"`

	// SplitOf is the parent uuid when this task was produced by a
	// split_task plan op.
	SplitOf string `json:"split_of,omitempty"`
}

// HasPlacement reports whether the task carries a computed interval.
func (t *Task) HasPlacement() bool {
	return t.StartCalc != nil && t.EndCalc != nil
}
