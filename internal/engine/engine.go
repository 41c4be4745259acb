// Package engine orchestrates planning rounds: interval inference at
// load time, candidate slot generation, and the validate/compile/apply
// pipeline for wire plans.
package engine

import (
	"errors"
	"fmt"

	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/clock"
	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/interval"
	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/plan"
	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/slots"
	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/task"
	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/wire"
)

// ErrPlanRejected indicates contract validation found violations; the
// itemized list is in ApplyPlanResult.Violations.
var ErrPlanRejected = errors.New("plan rejected")

// Engine ties the scheduling core together behind request/result calls.
type Engine struct {
	clock       clock.Clock
	renormalize plan.RenormalizeFunc
}

// New creates an engine. The renormalize hook is the opaque external
// schema-layer callback run after successful mutations; nil defaults to
// the payload's own Renormalize.
func New(clk clock.Clock, renormalize plan.RenormalizeFunc) *Engine {
	if clk == nil {
		clk = &clock.RealClock{}
	}
	if renormalize == nil {
		renormalize = func(p *task.Payload) error { return p.Renormalize() }
	}
	return &Engine{clock: clk, renormalize: renormalize}
}

// Infer computes placements for every task in the payload that lacks
// one. Tasks without a due time stay unplaced; that is expected, not an
// error. Placements written by an applied plan are kept as-is: inference
// must never revert a schedule the planner already committed.
func (e *Engine) Infer(req *InferRequest) (*InferResult, error) {
	p := req.Payload
	loc, err := p.Settings.Location()
	if err != nil {
		return nil, err
	}

	res := &InferResult{}
	for i := range p.Tasks {
		t := &p.Tasks[i]
		if t.Status.Terminal() {
			continue
		}
		if t.HasPlacement() && t.PlacementSource == task.PlacementPlan {
			res.Kept++
			continue
		}
		c := interval.Infer(t.Due, t.Scheduled, t.DurationMin, p.Settings.DefaultDurationMin, p.Settings.MaxInferDurationMin)
		if c == nil {
			res.Skipped++
			continue
		}
		if c.Warning != "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %s", t.UUID, c.Warning))
		}
		if !c.OK {
			res.Skipped++
			continue
		}
		start, end := c.Start, c.End
		t.StartCalc = &start
		t.EndCalc = &end
		t.DurationCalc = c.DurationMin
		t.DurationSource = c.DurationSource
		t.PlacementSource = task.PlacementInferred
		t.DayKey = start.In(loc).Format("2006-01-02")
		res.Placed++
	}
	return res, e.renormalize(p)
}

// Slots generates bounded candidate slots for the selected tasks,
// defaulting the payload view window to the clock's current day when
// unset.
func (e *Engine) Slots(req *SlotsRequest) (*SlotsResult, error) {
	p := req.Payload
	if p.Settings.ViewStart.IsZero() {
		loc, err := p.Settings.Location()
		if err != nil {
			return nil, err
		}
		p.Settings.ViewStart = clock.StartOfDay(e.clock, loc)
	}
	candidates, catalog, err := slots.Generate(p, req.Selected, req.MaxSlotsPerTask, req.MaxDaysScan)
	if err != nil {
		return nil, err
	}
	return &SlotsResult{Candidates: candidates, Catalog: catalog}, nil
}

// ApplyPlan runs the full wire pipeline: contract validation, v1 decode
// or v2 compile, then the atomic merge. A rejected plan returns
// ErrPlanRejected with the itemized violations in the result; nothing is
// mutated on any failure path. DryRun runs the same merge against a
// throwaway copy of the payload, so it fails exactly when a real apply
// would.
func (e *Engine) ApplyPlan(req *ApplyPlanRequest) (*ApplyPlanResult, error) {
	obj := req.Plan
	schema, _ := obj["schema"].(string)
	if schema == "" {
		schema = wire.SchemaV1
	}
	res := &ApplyPlanResult{Schema: schema}

	if res.Violations = wire.Validate(obj); len(res.Violations) > 0 {
		return res, fmt.Errorf("%w: %d violation(s)", ErrPlanRejected, len(res.Violations))
	}

	var compiled *plan.Result
	var err error
	switch schema {
	case wire.SchemaV1:
		compiled, err = wire.DecodeV1(obj)
	case wire.SchemaV2:
		compiled, err = wire.Compile(obj)
	default:
		err = fmt.Errorf("unsupported schema %q", schema)
	}
	if err != nil {
		return res, err
	}
	res.Result = compiled

	if req.DryRun {
		warnings, err := plan.ApplyResult(clonePayload(req.Payload), compiled, plan.ApplyOptions{})
		if err != nil {
			return res, err
		}
		res.Warnings = warnings
		return res, nil
	}

	warnings, err := plan.ApplyResult(req.Payload, compiled, plan.ApplyOptions{Renormalize: e.renormalize})
	if err != nil {
		return res, err
	}
	res.Warnings = warnings
	res.Applied = true
	return res, nil
}

// clonePayload deep-copies the task slice so a dry run can run the full
// merge without touching the caller's payload.
func clonePayload(p *task.Payload) *task.Payload {
	tasks := make([]task.Task, len(p.Tasks))
	copy(tasks, p.Tasks)
	return task.NewPayload(p.Settings, tasks)
}
