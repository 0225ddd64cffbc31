package certificate

import "errors"

// Sentinel kinds for composition errors.
var (
	ErrMissingTargetImage = errors.New("missing target image")
)
