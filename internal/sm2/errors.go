package sm2

import "errors"

var (
	// ErrInvalidGrade is returned when a grade is outside [0, 5].
	ErrInvalidGrade = errors.New("sm2: invalid grade")
	// ErrInvalidState is returned when a persisted schedule record breaks an invariant.
	ErrInvalidState = errors.New("sm2: invalid schedule state")
)
