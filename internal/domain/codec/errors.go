package codec

import "errors"

// Sentinel kinds for payload resolution errors. A malformed transport
// token is swallowed and reported as missing, never surfaced separately.
var (
	ErrMissingPayload = errors.New("no payload")
)
