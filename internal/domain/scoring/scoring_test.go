package scoring_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	scoring "github.com/abdulghaffar349/leaderboard-service/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEncodeDecode(t *testing.T) {
	Convey("Given the composite score codec", t, func() {
		Convey("When encoding a typical score and epoch timestamp", func() {
			composite, err := scoring.Encode(100, 1698765432100)

			Convey("Then the digits should not overlap", func() {
				So(err, ShouldBeNil)
				So(composite, ShouldEqual, uint64(1_001_698_765_432_100))
			})

			Convey("And decoding should return the original pair", func() {
				score, ts := scoring.Decode(composite)
				So(score, ShouldEqual, 100)
				So(ts, ShouldEqual, 1698765432100)
			})
		})

		Convey("When round-tripping random pairs in range", func() {
			rng := rand.New(rand.NewSource(7))
			ok := true
			for i := 0; i < 10_000; i++ {
				s := rng.Int63n(1_000_001)
				ts := rng.Int63n(int64(scoring.Multiplier))
				c, err := scoring.Encode(s, ts)
				if err != nil {
					ok = false
					break
				}
				gotS, gotTS := scoring.Decode(c)
				if gotS != s || gotTS != ts {
					ok = false
					break
				}
			}

			Convey("Then every pair should survive", func() {
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When round-tripping the range boundaries", func() {
			cases := [][2]int64{
				{0, 0},
				{0, scoring.MaxTimestampMillis},
				{1_000_000, 0},
				{1_000_000, scoring.MaxTimestampMillis},
				{scoring.MaxScore, scoring.MaxTimestampMillis},
			}

			Convey("Then each boundary should decode exactly", func() {
				for _, c := range cases {
					composite, err := scoring.Encode(c[0], c[1])
					So(err, ShouldBeNil)
					s, ts := scoring.Decode(composite)
					So(s, ShouldEqual, c[0])
					So(ts, ShouldEqual, c[1])
				}
			})
		})

		Convey("When comparing composites", func() {
			low, _ := scoring.Encode(50, 9_000_000_000_000)
			high, _ := scoring.Encode(51, 0)
			early, _ := scoring.Encode(80, 1000)
			late, _ := scoring.Encode(80, 2000)

			Convey("Then score dominates the timestamp", func() {
				So(high, ShouldBeGreaterThan, low)
			})

			Convey("And equal scores order by timestamp", func() {
				So(late, ShouldBeGreaterThan, early)
			})
		})
	})
}

func TestEncodeRejectsOutOfRange(t *testing.T) {
	Convey("Given inputs outside the encodable domain", t, func() {
		Convey("Then a negative score should be rejected", func() {
			_, err := scoring.Encode(-1, 0)
			So(errors.Is(err, scoring.ErrScoreOutOfRange), ShouldBeTrue)
		})

		Convey("Then a score above MaxScore should be rejected", func() {
			_, err := scoring.Encode(scoring.MaxScore+1, 0)
			So(errors.Is(err, scoring.ErrScoreOutOfRange), ShouldBeTrue)
		})

		Convey("Then a negative timestamp should be rejected", func() {
			_, err := scoring.Encode(1, -5)
			So(errors.Is(err, scoring.ErrTimestampOutOfRange), ShouldBeTrue)
		})

		Convey("Then a 14-digit timestamp should be rejected", func() {
			_, err := scoring.Encode(1, int64(scoring.Multiplier))
			So(errors.Is(err, scoring.ErrTimestampOutOfRange), ShouldBeTrue)
		})
	})
}

func TestDecodeFloat(t *testing.T) {
	Convey("Given composites stored as doubles", t, func() {
		Convey("When the composite is below 2^53", func() {
			ts := time.Date(2024, 5, 1, 12, 0, 0, 123_000_000, time.UTC)
			composite, err := scoring.EncodeTime(500, ts)
			So(err, ShouldBeNil)

			s, ms, err := scoring.DecodeFloat(scoring.Float(composite))

			Convey("Then decoding should be exact", func() {
				So(err, ShouldBeNil)
				So(s, ShouldEqual, 500)
				So(scoring.Time(ms).Equal(ts), ShouldBeTrue)
			})
		})

		Convey("When the composite is far above 2^53", func() {
			composite, err := scoring.Encode(1_000_000, 1698765432100)
			So(err, ShouldBeNil)

			s, ms, err := scoring.DecodeFloat(scoring.Float(composite))

			Convey("Then the score should still be exact", func() {
				So(err, ShouldBeNil)
				So(s, ShouldEqual, 1_000_000)
			})

			Convey("And the timestamp should be within double precision", func() {
				So(math.Abs(float64(ms-1698765432100)), ShouldBeLessThanOrEqualTo, 2048)
			})
		})

		Convey("When the timestamp sits at the float-safe ceiling", func() {
			composite, err := scoring.Encode(scoring.MaxScore-1, scoring.MaxFloatTimestampMillis)
			So(err, ShouldBeNil)

			s, _, err := scoring.DecodeFloat(scoring.Float(composite))

			Convey("Then the score should not spill into the next one", func() {
				So(err, ShouldBeNil)
				So(s, ShouldEqual, scoring.MaxScore-1)
			})
		})

		Convey("When the timestamp is past the float-safe ceiling", func() {
			composite, err := scoring.Encode(1_000_000, scoring.MaxTimestampMillis)
			So(err, ShouldBeNil)

			s, _, err := scoring.DecodeFloat(scoring.Float(composite))

			Convey("Then the double rounds into the next score", func() {
				So(err, ShouldBeNil)
				So(s, ShouldEqual, 1_000_001)
			})
		})

		Convey("When the value is not a valid composite", func() {
			_, _, errNaN := scoring.DecodeFloat(math.NaN())
			_, _, errNeg := scoring.DecodeFloat(-1)

			Convey("Then an error should be returned", func() {
				So(errors.Is(errNaN, scoring.ErrInvalidComposite), ShouldBeTrue)
				So(errors.Is(errNeg, scoring.ErrInvalidComposite), ShouldBeTrue)
			})
		})
	})
}
