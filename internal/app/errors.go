package service

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotStarted = errors.New("service not started")
	ErrBadImage   = errors.New("target image is not a decodable image")
)
