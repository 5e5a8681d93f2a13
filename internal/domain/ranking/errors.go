package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrDuplicateID  = errors.New("duplicate candidate id")
	ErrInvalidScore = errors.New("score must be finite")
	ErrInvalidLimit = errors.New("limit must be positive")
)
