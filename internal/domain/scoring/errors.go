package scoring

import "errors"

// Sentinel kinds for composite encoding errors.
var (
	ErrScoreOutOfRange     = errors.New("score out of encodable range")
	ErrTimestampOutOfRange = errors.New("timestamp out of encodable range")
	ErrInvalidComposite    = errors.New("invalid composite score")
)
