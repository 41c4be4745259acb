package engine

import (
	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/plan"
	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/slots"
	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/task"
)

// ApplyPlanRequest represents a request to validate and apply a wire
// plan onto a payload.
type ApplyPlanRequest struct {
	// Payload is the task collection the plan targets.
	Payload *task.Payload

	// Plan is the decoded wire object (v1 or v2).
	Plan map[string]any

	// DryRun compiles and validates without mutating the payload.
	DryRun bool
}

// ApplyPlanResult represents the outcome of applying a plan.
type ApplyPlanResult struct {
	// Schema is the wire schema the plan was handled as.
	Schema string

	// Violations is the itemized contract report; non-empty means the
	// plan was rejected before anything was applied.
	Violations []plan.Violation

	// Result is the canonical compiled/decoded plan.
	Result *plan.Result

	// Warnings are non-fatal notes from compilation and application.
	Warnings []string

	// Applied indicates the payload was mutated (false for DryRun).
	Applied bool
}

// SlotsRequest represents a request for candidate slots.
type SlotsRequest struct {
	// Payload is the task collection to scan.
	Payload *task.Payload

	// Selected is the set of movable task uuids.
	Selected []string

	// MaxSlotsPerTask overrides the payload cap when positive.
	MaxSlotsPerTask int

	// MaxDaysScan bounds how many visible days are scanned (0 = all).
	MaxDaysScan int
}

// SlotsResult represents generated candidate slots.
type SlotsResult struct {
	// Candidates maps each selected uuid to its offered slots.
	Candidates map[string][]slots.Slot

	// Catalog maps slot ids to their windows, for the v2 prompt.
	Catalog slots.Catalog
}

// InferRequest represents a request to compute placements for a payload.
type InferRequest struct {
	// Payload is the task collection to place.
	Payload *task.Payload
}

// InferResult represents computed placements.
type InferResult struct {
	// Placed is the number of tasks that received an interval.
	Placed int

	// Kept is the number of tasks whose plan-applied placement was
	// preserved untouched.
	Kept int

	// Skipped is the number of tasks left unplaced (no due time or a
	// degenerate interval).
	Skipped int

	// Warnings are per-task inference notes.
	Warnings []string
}
