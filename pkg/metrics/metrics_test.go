package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then every metric should be registered under the default namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "tzmeet")
				manager.scheduleRequests.WithLabelValues(OutcomeOK).Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 20)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "unit")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
			})
		})

		Convey("When passing empty option values", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "tzmeet")
				So(manager.subsystem, ShouldEqual, "scheduler")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording a successful schedule", func() {
			before := testutil.ToFloat64(globalManager.slotsEvaluated)
			perfectBefore := testutil.ToFloat64(globalManager.perfectSlots)
			okBefore := testutil.ToFloat64(globalManager.scheduleRequests.WithLabelValues(OutcomeOK))
			RecordSchedule(OutcomeOK, 1.5, 24, 3)

			Convey("Then the counters should advance", func() {
				So(testutil.ToFloat64(globalManager.slotsEvaluated)-before, ShouldEqual, 24)
				So(testutil.ToFloat64(globalManager.perfectSlots)-perfectBefore, ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.scheduleRequests.WithLabelValues(OutcomeOK))-okBefore, ShouldEqual, 1)
			})
		})

		Convey("When recording an invalid timezone", func() {
			before := testutil.ToFloat64(globalManager.timezoneErrors)
			RecordSchedule(OutcomeInvalidTimezone, 0.1, 0, 0)

			Convey("Then the timezone error counter should advance", func() {
				So(testutil.ToFloat64(globalManager.timezoneErrors)-before, ShouldEqual, 1)
			})
		})

		Convey("When recording cache activity", func() {
			hits := testutil.ToFloat64(globalManager.cacheHits)
			misses := testutil.ToFloat64(globalManager.cacheMisses)
			RecordCacheHit()
			RecordCacheMiss()
			RecordCacheMiss()
			UpdateCacheSize(7)

			Convey("Then hits, misses and size should be reported", func() {
				So(testutil.ToFloat64(globalManager.cacheHits)-hits, ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.cacheMisses)-misses, ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.cacheSize), ShouldEqual, 7)
			})
		})

		Convey("When updating queue and worker gauges", func() {
			UpdateQueueCapacity(64)
			UpdateQueueSize(16)
			UpdateQueueUtilization(0.25)
			UpdateWorkerCount(4)
			UpdateWorkerActiveCount(2)

			Convey("Then the gauges should hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 64)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 16)
				So(testutil.ToFloat64(globalManager.queueUtilization), ShouldEqual, 0.25)
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 4)
				So(testutil.ToFloat64(globalManager.workerActiveCount), ShouldEqual, 2)
			})
		})

		Convey("When recording the remaining metrics", func() {
			Convey("Then nothing should panic", func() {
				So(func() {
					RecordSearch(OutcomeOK)
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					RecordWorkerProcessingLatency(3)
					RecordWorkerError()
					RecordHTTPRequest("find", "POST", "200")
					RecordHTTPRequestDuration("find", "POST", "200", 2)
					RecordErrorByComponent("queue", "full")
					RecordErrorByType("client_error", "medium")
					RecordErrorByEndpoint("find", "POST", "client_error")
					RecordErrorLatency("http", "client_error", 1)
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(12)
					RecordSystemGCPauseTime(0.3)
				}, ShouldNotPanic)
			})
		})

		Convey("When fetching the registry", func() {
			Convey("Then it should be the custom registry", func() {
				So(GetRegistry(), ShouldEqual, customRegistry)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		before := testutil.ToFloat64(globalManager.queueEnqueueRate)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					RecordQueueEnqueue()
				}
			}()
		}
		wg.Wait()

		Convey("Then every increment should be counted", func() {
			So(testutil.ToFloat64(globalManager.queueEnqueueRate)-before, ShouldEqual, 1000)
		})
	})
}
