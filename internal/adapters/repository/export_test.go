package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestExportAll(t *testing.T) {
	Convey("Given a memory store with an archive", t, func() {
		ctx := context.Background()
		archive := newFakeArchive()
		store := NewMemoryStore(WithArchive(archive), WithExportConcurrency(2))

		So(store.SelectGame("gameA").UpdateMemberScore(ctx, "a1", 10, ms(1)), ShouldBeNil)
		So(store.SelectGame("gameA").UpdateMemberScore(ctx, "a2", 20, ms(2)), ShouldBeNil)
		So(store.SelectGame("gameC").UpdateMemberScore(ctx, "c1", 5, ms(3)), ShouldBeNil)

		Convey("When nothing is dirty", func() {
			store.ResetDirty()
			err := store.ExportAll(ctx)

			Convey("Then nothing should be written", func() {
				So(err, ShouldBeNil)
				So(archive.callCount("gameA"), ShouldEqual, 0)
			})
		})

		Convey("When a write to gameA arrives mid-export", func() {
			archive.onUpsert = func(gameID string) {
				if gameID == "gameA" {
					_ = store.SelectGame("gameA").UpdateMemberScore(ctx, "late", 99, ms(4))
				}
			}

			err := store.ExportAll(ctx)

			Convey("Then both games should hold full snapshots", func() {
				So(err, ShouldBeNil)
				a, okA := archive.doc("gameA")
				c, okC := archive.doc("gameC")
				So(okA, ShouldBeTrue)
				So(okC, ShouldBeTrue)
				So(a, ShouldHaveLength, 2)
				So(a[0].UserID, ShouldEqual, "a2")
				So(c, ShouldHaveLength, 1)
			})

			Convey("And the late write should be dirty for the next cycle only", func() {
				So(store.DirtyGames(), ShouldResemble, []string{"gameA"})
			})

			Convey("And the next cycle should export it", func() {
				archive.onUpsert = nil
				So(store.ExportAll(ctx), ShouldBeNil)
				a, _ := archive.doc("gameA")
				So(a, ShouldHaveLength, 3)
				So(a[0].UserID, ShouldEqual, "late")
				So(store.DirtyGames(), ShouldBeEmpty)
			})
		})

		Convey("When one game fails to upsert", func() {
			archive.fail["gameC"] = errors.New("disk full")

			err := store.ExportAll(ctx)

			Convey("Then the other game should still be exported", func() {
				_, ok := archive.doc("gameA")
				So(ok, ShouldBeTrue)
			})

			Convey("And the error should name the failure", func() {
				So(errors.Is(err, ErrExportFailed), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "gameC")
				So(err.Error(), ShouldContainSubstring, "disk full")
			})

			Convey("And the failed game should be dirty again", func() {
				So(store.DirtyGames(), ShouldResemble, []string{"gameC"})
			})
		})

		Convey("When many games are dirty", func() {
			for i := 0; i < 50; i++ {
				So(store.SelectGame(fmt.Sprintf("bulk-%02d", i)).UpdateMemberScore(ctx, "u", int64(i), ms(1)), ShouldBeNil)
			}

			err := store.ExportAll(ctx)

			Convey("Then every game should be upserted exactly once", func() {
				So(err, ShouldBeNil)
				for i := 0; i < 50; i++ {
					So(archive.callCount(fmt.Sprintf("bulk-%02d", i)), ShouldEqual, 1)
				}
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			err := store.ExportAll(cctx)

			Convey("Then the games should stay dirty", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(store.DirtyGames(), ShouldResemble, []string{"gameA", "gameC"})
			})
		})
	})

	Convey("Given a store without an archive", t, func() {
		ctx := context.Background()
		store := NewMemoryStore()
		So(store.SelectGame("g").UpdateMemberScore(ctx, "u", 1, ms(1)), ShouldBeNil)

		err := store.ExportAll(ctx)

		Convey("Then export should fail and keep the game dirty", func() {
			So(errors.Is(err, ErrNoArchive), ShouldBeTrue)
			So(store.DirtyGames(), ShouldResemble, []string{"g"})
		})
	})
}
