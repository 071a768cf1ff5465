package archive

import "errors"

// Sentinel kinds for archive errors.
var (
	ErrNotFound = errors.New("leaderboard not archived")
	ErrArchive  = errors.New("archive failure")
	ErrMigrate  = errors.New("archive migration failed")
)
