// Package plan holds the canonical representation of a proposed schedule
// change and the logic that validates and applies it onto a task payload.
//
// The package keeps a strict split between validation and application:
// validators accumulate every violation they find and never raise, while
// appliers fail fast and guarantee that a rejected plan leaves the
// payload untouched.
package plan

import "time"

// Override is one proposed placement for a task: a concrete start/due
// pair, optionally annotated with the duration the planner believes it
// spans. Invariants (Due after Start, minute-aligned span, consistent
// DurationMin) are enforced by ValidateOverrides, never silently fixed.
type Override struct {
	Start time.Time `json:"start"`
	Due   time.Time `json:"due"`

	// DurationMin is optional (0 = absent). When present it must equal
	// the Start..Due span exactly.
	DurationMin int `json:"duration_min,omitempty"`
}

// Span returns the Start..Due duration.
func (o Override) Span() time.Duration {
	return o.Due.Sub(o.Start)
}

// Draft is a task to be added by a plan.
type Draft struct {
	UUID        string   `json:"uuid"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Project     string   `json:"project,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	DurationMin int      `json:"duration_min,omitempty"`

	// SplitOf is the parent uuid when the draft came from a split_task op.
	SplitOf string `json:"split_of,omitempty"`
}

// Patch is a shallow field patch applied to an existing task. Keys are
// wire field names (description, status, project, tags, ...).
type Patch map[string]any

// Result is the canonical, validated outcome of compiling or decoding a
// plan, independent of which wire format produced it. Instances are
// value objects: built once, applied once, then discarded.
type Result struct {
	Overrides   map[string]Override `json:"overrides"`
	AddedTasks  []Draft             `json:"added_tasks,omitempty"`
	TaskUpdates map[string]Patch    `json:"task_updates,omitempty"`
	Warnings    []string            `json:"warnings,omitempty"`
	Notes       []string            `json:"notes,omitempty"`
	ModelID     string              `json:"model_id,omitempty"`
}

// NewResult returns an empty result with allocated maps.
func NewResult() *Result {
	return &Result{
		Overrides:   map[string]Override{},
		TaskUpdates: map[string]Patch{},
	}
}

// Violation is a single contract violation found while validating a plan
// against a payload. Violations are accumulated so a caller can report
// every problem in one pass.
type Violation struct {
	// Path locates the offending entry, e.g. "overrides[<uuid>]".
	Path string

	// Reason is a human-readable explanation.
	Reason string
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Reason
	}
	return v.Path + ": " + v.Reason
}
