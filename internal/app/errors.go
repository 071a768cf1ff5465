package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrInvalidGame = errors.New("invalid game id")
)
