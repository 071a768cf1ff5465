package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

// counterValue sums every series of the named counter family.
func counterValue(name string) float64 {
	families, err := GetRegistry().Gather()
	if err != nil {
		return -1
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func gaugeValue(name string) float64 {
	families, err := GetRegistry().Gather()
	if err != nil {
		return -1
	}
	for _, mf := range families {
		if mf.GetName() == name && len(mf.GetMetric()) > 0 {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	return 0
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then it should be created and enabled", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Enabled(), ShouldBeTrue)
				So(manager.namespace, ShouldEqual, "leaderboard")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(false),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.subsystem, ShouldEqual, "test_subsystem")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.Enabled(), ShouldBeFalse)
			})

			Convey("And the const labels should be attached to registered series", func() {
				manager.scoreUpdates.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, mf := range families {
					if mf.GetName() != "test_namespace_test_subsystem_score_updates_total" {
						continue
					}
					for _, lp := range mf.GetMetric()[0].GetLabel() {
						if lp.GetName() == "env" && lp.GetValue() == "test" {
							found = true
						}
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty options are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then the defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "leaderboard")
				So(manager.subsystem, ShouldEqual, "service")
				So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		SetEnabled(true)

		Convey("When recording score updates", func() {
			before := counterValue("leaderboard_service_score_updates_total")
			RecordScoreUpdate()
			RecordScoreUpdate()

			Convey("Then the counter should advance", func() {
				So(counterValue("leaderboard_service_score_updates_total")-before, ShouldEqual, 2)
			})
		})

		Convey("When recording cache results", func() {
			before := counterValue("leaderboard_service_cache_requests_total")
			RecordCacheHit("local")
			RecordCacheMiss("local")
			RecordCacheError("redis")

			Convey("Then every result should be counted", func() {
				So(counterValue("leaderboard_service_cache_requests_total")-before, ShouldEqual, 3)
			})
		})

		Convey("When recording export outcomes", func() {
			runsBefore := counterValue("leaderboard_service_export_runs_total")
			gamesBefore := counterValue("leaderboard_service_exported_games_total")
			RecordExportRun(true, 12)
			RecordExportRun(false, 3)
			RecordExportedGames(5, 1)
			UpdateDirtyGames(7)

			Convey("Then runs, games and the dirty gauge should reflect them", func() {
				So(counterValue("leaderboard_service_export_runs_total")-runsBefore, ShouldEqual, 2)
				So(counterValue("leaderboard_service_exported_games_total")-gamesBefore, ShouldEqual, 5)
				So(gaugeValue("leaderboard_service_dirty_games"), ShouldEqual, 7)
			})
		})

		Convey("When recording the remaining series", func() {
			Convey("Then none of them should panic", func() {
				So(func() {
					RecordScoreUpdateError()
					RecordLeaderboardRead()
					RecordStoreLatency("memory", "update", 0.4)
					RecordStoreError("redis", "read")
					UpdateTrackedGames(3)
					RecordCacheInvalidation()
					RecordPopularityMark()
					RecordHTTPRequest("/api/update-score", "POST", "200")
					RecordHTTPRequestDuration("/api/update-score", "POST", "200", 1.5)
					RecordErrorByComponent("cache", "redis")
					RecordErrorByEndpoint("/api/leaderboard/{gameId}", "GET", "bad_request")
				}, ShouldNotPanic)
			})
		})

		Convey("When recording is disabled", func() {
			SetEnabled(false)
			before := counterValue("leaderboard_service_score_updates_total")
			RecordScoreUpdate()
			after := counterValue("leaderboard_service_score_updates_total")
			SetEnabled(true)

			Convey("Then nothing should be observed", func() {
				So(after, ShouldEqual, before)
			})
		})
	})
}
