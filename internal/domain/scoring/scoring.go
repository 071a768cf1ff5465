// Package scoring encodes a (score, timestamp) pair into a single orderable
// composite value and decodes it back.
//
// The composite is score*10^13 + timestampMillis. Ordering by composite orders
// primarily by score and, within equal scores, by timestamp, so a single-dimension
// sorted structure (a Redis sorted set) needs no secondary comparator.
package scoring

import (
	"fmt"
	"math"
	"time"
)

const (
	// Multiplier separates the score digits from the timestamp digits.
	Multiplier uint64 = 10_000_000_000_000

	// MaxTimestampMillis is the largest encodable epoch millisecond value
	// (year 2286).
	MaxTimestampMillis int64 = int64(Multiplier) - 1

	// MaxScore is the largest score whose composite, with any valid timestamp,
	// still fits in a uint64.
	MaxScore int64 = 1_844_673

	// MaxFloatTimestampMillis is the largest timestamp whose composite keeps
	// its score exact after a float64 round trip. Above 2^63 doubles are
	// 2048 apart, so a timestamp closer than half that to 10^13 rounds into
	// the next score.
	MaxFloatTimestampMillis int64 = MaxTimestampMillis - 4096
)

// Encode combines score and timestampMillis into a composite value.
func Encode(score int64, timestampMillis int64) (uint64, error) {
	if score < 0 || score > MaxScore {
		return 0, fmt.Errorf("%w: %d", ErrScoreOutOfRange, score)
	}
	if timestampMillis < 0 || timestampMillis > MaxTimestampMillis {
		return 0, fmt.Errorf("%w: %d", ErrTimestampOutOfRange, timestampMillis)
	}
	return uint64(score)*Multiplier + uint64(timestampMillis), nil
}

// EncodeTime is Encode for a time.Time, truncated to milliseconds.
func EncodeTime(score int64, ts time.Time) (uint64, error) {
	return Encode(score, ts.UnixMilli())
}

// Decode splits a composite value into its score and timestamp.
func Decode(composite uint64) (score int64, timestampMillis int64) {
	return int64(composite / Multiplier), int64(composite % Multiplier)
}

// DecodeFloat decodes a composite that went through a float64 (Redis stores
// sorted-set scores as doubles). Above 2^53 the timestamp part is only as
// precise as the double allows. The score part stays exact only for
// timestamps up to MaxFloatTimestampMillis.
func DecodeFloat(composite float64) (score int64, timestampMillis int64, err error) {
	if math.IsNaN(composite) || composite < 0 || composite >= math.MaxUint64 {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidComposite, composite)
	}
	score, timestampMillis = Decode(uint64(composite))
	return score, timestampMillis, nil
}

// Float returns the composite as the float64 a Redis sorted set stores.
func Float(composite uint64) float64 {
	return float64(composite)
}

// Time converts an encoded millisecond timestamp to a UTC time.
func Time(timestampMillis int64) time.Time {
	return time.UnixMilli(timestampMillis).UTC()
}
