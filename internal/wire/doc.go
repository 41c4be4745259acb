// Package wire guards the boundary between an external planner and the
// scheduling core. It understands two JSON plan formats: the legacy
// plan.v1 override map and the op-based plan.v2 DSL.
//
// Validation and compilation are deliberately different animals.
// Validate walks an untrusted object tree and accumulates every shape
// problem it can find, so a rejected plan comes back with an itemized
// report. Compile assumes a validated object and fails fast on the first
// unresolvable reference, because a half-compiled schedule is worse than
// none.
//
// Unknown op tags are accepted and skipped. That is forward
// compatibility by contract: a newer planner may emit ops this build
// does not know, and they must not poison the rest of the plan.
package wire
