package geometry

import "errors"

// Sentinel kinds for calculator errors.
var (
	ErrNoHits = errors.New("no hits to score")
)
