package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLocalCache(t *testing.T) {
	Convey("Given a local cache with threshold 3", t, func() {
		ctx := context.Background()
		c := NewLocalCache(WithThreshold(3), WithSize(100))

		Convey("When a game stays below the threshold", func() {
			So(c.TrackPopularity(ctx, "g", 2), ShouldBeNil)
			So(c.CacheLeaderboard(ctx, "g", 10, sampleEntries()), ShouldBeNil)

			popular, _ := c.IsPopular(ctx, "g")
			_, found, err := c.GetCachedLeaderboard(ctx, "g", 10)

			Convey("Then it should be neither popular nor cached", func() {
				So(popular, ShouldBeFalse)
				So(err, ShouldBeNil)
				So(found, ShouldBeFalse)
			})
		})

		Convey("When a game reaches the threshold", func() {
			So(c.TrackPopularity(ctx, "g", 3), ShouldBeNil)
			So(c.CacheLeaderboard(ctx, "g", 10, sampleEntries()), ShouldBeNil)

			entries, found, err := c.GetCachedLeaderboard(ctx, "g", 10)

			Convey("Then its responses should be cached per limit", func() {
				So(err, ShouldBeNil)
				So(found, ShouldBeTrue)
				So(entries, ShouldResemble, sampleEntries())
				_, other, _ := c.GetCachedLeaderboard(ctx, "g", 5)
				So(other, ShouldBeFalse)
			})

			Convey("And a lower count should not clear the flag", func() {
				So(c.TrackPopularity(ctx, "g", 1), ShouldBeNil)
				popular, _ := c.IsPopular(ctx, "g")
				So(popular, ShouldBeTrue)
			})

			Convey("And mutating a returned slice should not touch the cache", func() {
				entries[0].Score = -1
				again, _, _ := c.GetCachedLeaderboard(ctx, "g", 10)
				So(again[0].Score, ShouldEqual, 30)
			})
		})

		Convey("When a game's responses are invalidated", func() {
			So(c.TrackPopularity(ctx, "g", 3), ShouldBeNil)
			So(c.TrackPopularity(ctx, "h", 3), ShouldBeNil)
			So(c.CacheLeaderboard(ctx, "g", 10, sampleEntries()), ShouldBeNil)
			So(c.CacheLeaderboard(ctx, "g", 50, sampleEntries()), ShouldBeNil)
			So(c.CacheLeaderboard(ctx, "h", 10, sampleEntries()), ShouldBeNil)

			c.Invalidate(ctx, GamePattern("g"))

			Convey("Then every limit of that game should be gone", func() {
				_, g10, _ := c.GetCachedLeaderboard(ctx, "g", 10)
				_, g50, _ := c.GetCachedLeaderboard(ctx, "g", 50)
				So(g10, ShouldBeFalse)
				So(g50, ShouldBeFalse)
			})

			Convey("And other games and popularity flags should survive", func() {
				_, h10, _ := c.GetCachedLeaderboard(ctx, "h", 10)
				So(h10, ShouldBeTrue)
				popular, _ := c.IsPopular(ctx, "g")
				So(popular, ShouldBeTrue)
			})
		})

		Convey("When the cache is flushed", func() {
			So(c.TrackPopularity(ctx, "g", 3), ShouldBeNil)
			So(c.CacheLeaderboard(ctx, "g", 10, sampleEntries()), ShouldBeNil)

			c.Invalidate(ctx, "")

			Convey("Then flags and responses should be gone", func() {
				popular, _ := c.IsPopular(ctx, "g")
				_, found, _ := c.GetCachedLeaderboard(ctx, "g", 10)
				So(popular, ShouldBeFalse)
				So(found, ShouldBeFalse)
			})
		})
	})

	Convey("Given a local cache with short TTLs", t, func() {
		ctx := context.Background()
		c := NewLocalCache(
			WithThreshold(1),
			WithPopularTTL(40*time.Millisecond),
			WithResponseTTL(20*time.Millisecond),
		)
		So(c.TrackPopularity(ctx, "g", 1), ShouldBeNil)
		So(c.CacheLeaderboard(ctx, "g", 10, sampleEntries()), ShouldBeNil)

		Convey("When the TTLs elapse", func() {
			time.Sleep(80 * time.Millisecond)

			Convey("Then the flag and the response should expire", func() {
				popular, _ := c.IsPopular(ctx, "g")
				_, found, _ := c.GetCachedLeaderboard(ctx, "g", 10)
				So(popular, ShouldBeFalse)
				So(found, ShouldBeFalse)
			})
		})

		Convey("When more games turn popular than responses fit", func() {
			small := NewLocalCache(WithThreshold(1), WithSize(2))
			for i := 0; i < 5; i++ {
				So(small.TrackPopularity(ctx, fmt.Sprintf("game%d", i), 1), ShouldBeNil)
			}

			Convey("Then every flag should outlive the size bound", func() {
				for i := 0; i < 5; i++ {
					popular, _ := small.IsPopular(ctx, fmt.Sprintf("game%d", i))
					So(popular, ShouldBeTrue)
				}
			})
		})

		Convey("Then the backend should be named", func() {
			So(c.Backend(), ShouldEqual, "local")
		})
	})
}
