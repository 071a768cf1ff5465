package cache

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrBackend = errors.New("cache backend failure")
	ErrDecode  = errors.New("cached payload is corrupt")
)
