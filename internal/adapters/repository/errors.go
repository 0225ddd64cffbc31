package repository

import "errors"

// Sentinel kinds for history errors.
var (
	ErrEmptyLog     = errors.New("session log is empty")
	ErrInvalidLimit = errors.New("invalid query limit")
)
