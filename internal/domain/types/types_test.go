package types_test

import (
	"encoding/json"
	"testing"
	"time"

	types "github.com/abdulghaffar349/leaderboard-service/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScoreRecordJSON(t *testing.T) {
	Convey("Given a score record", t, func() {
		rec := types.ScoreRecord{
			UserID:    "user-1",
			Score:     42,
			Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC),
		}

		Convey("When marshalling it to JSON", func() {
			b, err := json.Marshal(rec)
			So(err, ShouldBeNil)

			Convey("Then it should use the wire field names", func() {
				So(string(b), ShouldEqual, `{"userId":"user-1","score":42,"timestamp":"2024-01-02T03:04:05.006Z"}`)
			})
		})
	})
}

func TestLeaderboardJSON(t *testing.T) {
	Convey("Given an empty leaderboard", t, func() {
		lb := types.Leaderboard{Count: 0, Leaderboard: []types.ScoreRecord{}}

		Convey("When marshalling it to JSON", func() {
			b, err := json.Marshal(lb)
			So(err, ShouldBeNil)

			Convey("Then the slice should encode as an empty array", func() {
				So(string(b), ShouldEqual, `{"count":0,"leaderboard":[]}`)
			})
		})
	})

	Convey("Given an update result", t, func() {
		res := types.UpdateResult{GameID: "g", UserID: "u", Score: 7}

		Convey("When marshalling it to JSON", func() {
			b, err := json.Marshal(res)
			So(err, ShouldBeNil)

			Convey("Then it should carry game, user and score", func() {
				So(string(b), ShouldEqual, `{"gameId":"g","userId":"u","score":7}`)
			})
		})
	})
}
