package wire

import "errors"

var (
	// ErrBadShape indicates a structural defect in a plan object that
	// survived (or bypassed) contract validation.
	ErrBadShape = errors.New("malformed plan")

	// ErrBadReference indicates an op referenced a slot_id or target
	// that cannot be resolved. The compile aborts at the first one,
	// since later ops may be unresolvable only as a consequence.
	ErrBadReference = errors.New("unresolvable plan reference")
)
