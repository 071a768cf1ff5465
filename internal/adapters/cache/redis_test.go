package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestRedis() (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	So(err, ShouldBeNil)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	Reset(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func TestRedisCache(t *testing.T) {
	Convey("Given a Redis cache with threshold 3", t, func() {
		ctx := context.Background()
		mr, client := newTestRedis()
		c := NewRedisCache(client,
			WithThreshold(3),
			WithPopularTTL(time.Hour),
			WithResponseTTL(time.Minute),
			WithScanCount(2),
		)

		Convey("When a game stays below the threshold", func() {
			So(c.TrackPopularity(ctx, "g", 2), ShouldBeNil)
			So(c.CacheLeaderboard(ctx, "g", 10, sampleEntries()), ShouldBeNil)

			Convey("Then nothing should be written", func() {
				So(mr.Exists(PopularKey("g")), ShouldBeFalse)
				So(mr.Exists(ResponseKey("g", 10)), ShouldBeFalse)
			})
		})

		Convey("When a game reaches the threshold", func() {
			So(c.TrackPopularity(ctx, "g", 3), ShouldBeNil)
			So(c.CacheLeaderboard(ctx, "g", 10, sampleEntries()), ShouldBeNil)

			entries, found, err := c.GetCachedLeaderboard(ctx, "g", 10)

			Convey("Then the response should round trip through Redis", func() {
				So(err, ShouldBeNil)
				So(found, ShouldBeTrue)
				So(len(entries), ShouldEqual, 2)
				So(entries[0].UserID, ShouldEqual, "a")
				So(entries[0].Timestamp.Equal(sampleEntries()[0].Timestamp), ShouldBeTrue)
			})

			Convey("And keys should carry their TTLs", func() {
				So(mr.TTL(PopularKey("g")), ShouldEqual, time.Hour)
				So(mr.TTL(ResponseKey("g", 10)), ShouldEqual, time.Minute)
			})

			Convey("And the response should expire after its TTL", func() {
				mr.FastForward(2 * time.Minute)
				_, found, err := c.GetCachedLeaderboard(ctx, "g", 10)
				So(err, ShouldBeNil)
				So(found, ShouldBeFalse)
				popular, _ := c.IsPopular(ctx, "g")
				So(popular, ShouldBeTrue)
			})

			Convey("And the flag should expire after its TTL", func() {
				mr.FastForward(2 * time.Hour)
				popular, err := c.IsPopular(ctx, "g")
				So(err, ShouldBeNil)
				So(popular, ShouldBeFalse)
			})
		})

		Convey("When a game's responses are invalidated", func() {
			So(c.TrackPopularity(ctx, "g", 3), ShouldBeNil)
			So(c.TrackPopularity(ctx, "h", 3), ShouldBeNil)
			for _, limit := range []int{1, 5, 10, 50} {
				So(c.CacheLeaderboard(ctx, "g", limit, sampleEntries()), ShouldBeNil)
			}
			So(c.CacheLeaderboard(ctx, "h", 10, sampleEntries()), ShouldBeNil)

			c.Invalidate(ctx, GamePattern("g"))

			Convey("Then every limit of that game should be deleted", func() {
				for _, limit := range []int{1, 5, 10, 50} {
					So(mr.Exists(ResponseKey("g", limit)), ShouldBeFalse)
				}
			})

			Convey("And other keys should survive", func() {
				So(mr.Exists(ResponseKey("h", 10)), ShouldBeTrue)
				So(mr.Exists(PopularKey("g")), ShouldBeTrue)
			})
		})

		Convey("When the cache is flushed", func() {
			So(c.TrackPopularity(ctx, "g", 3), ShouldBeNil)
			So(c.CacheLeaderboard(ctx, "g", 10, sampleEntries()), ShouldBeNil)
			_, err := mr.ZAdd("leaderboard:g", 1, "u")
			So(err, ShouldBeNil)

			c.Invalidate(ctx, "")

			Convey("Then only the cache's keys should be deleted", func() {
				So(mr.Exists(PopularKey("g")), ShouldBeFalse)
				So(mr.Exists(ResponseKey("g", 10)), ShouldBeFalse)
				So(mr.Exists("leaderboard:g"), ShouldBeTrue)
			})
		})

		Convey("When a cached payload is corrupt", func() {
			So(mr.Set(ResponseKey("g", 10), "{not json"), ShouldBeNil)

			_, found, err := c.GetCachedLeaderboard(ctx, "g", 10)

			Convey("Then a decode error should be returned", func() {
				So(found, ShouldBeFalse)
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When Redis is unavailable", func() {
			mr.Close()

			_, perr := c.IsPopular(ctx, "g")
			terr := c.TrackPopularity(ctx, "g", 10)
			_, _, gerr := c.GetCachedLeaderboard(ctx, "g", 10)

			Convey("Then reads and writes should report errors", func() {
				So(perr, ShouldNotBeNil)
				So(terr, ShouldNotBeNil)
				So(gerr, ShouldNotBeNil)
			})

			Convey("And invalidation should swallow the failure", func() {
				So(func() { c.Invalidate(ctx, GamePattern("g")) }, ShouldNotPanic)
			})
		})
	})
}
