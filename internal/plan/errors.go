package plan

import "errors"

var (
	// ErrPlanInvalid indicates validation found at least one violation.
	ErrPlanInvalid = errors.New("plan invalid")

	// ErrUnknownTask indicates a plan referenced a uuid not in the payload.
	ErrUnknownTask = errors.New("unknown task")

	// ErrDuplicateTask indicates an added task collides with an existing uuid.
	ErrDuplicateTask = errors.New("duplicate task")
)
