package repository

import "errors"

// Sentinel kinds for ranked store errors.
var (
	ErrInvalidMember    = errors.New("invalid member id")
	ErrInvalidScore     = errors.New("invalid score")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrBackend          = errors.New("ranked store backend failure")
	ErrExportFailed     = errors.New("export failed")
	ErrNoArchive        = errors.New("no archive configured")
)
