package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	app "github.com/okian/tzmeet/internal/app"
	"github.com/okian/tzmeet/internal/config"
	"github.com/okian/tzmeet/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.InitWith(logger.Options{Level: "error"}); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When configuration comes from the environment", func() {
			_ = os.Setenv("TZMEET_ADDR", ":8080")
			_ = os.Setenv("TZMEET_QUEUE_SIZE", "1000")
			_ = os.Setenv("TZMEET_WORKER_COUNT", "4")
			_ = os.Setenv("TZMEET_WORK_START", "8")
			defer func() {
				_ = os.Unsetenv("TZMEET_ADDR")
				_ = os.Unsetenv("TZMEET_QUEUE_SIZE")
				_ = os.Unsetenv("TZMEET_WORKER_COUNT")
				_ = os.Unsetenv("TZMEET_WORK_START")
			}()

			convey.Convey("Then the service should be built from it", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")

				svc := newService(cfg, logger.Get())
				stats := svc.GetStats()
				convey.So(stats["queueSize"], convey.ShouldEqual, 1000)
				convey.So(stats["workerCount"], convey.ShouldEqual, 4)
				convey.So(stats["workingHours"], convey.ShouldEqual, "08:00-18:00")
			})
		})

		convey.Convey("When the configured working hours are inverted", func() {
			_ = os.Setenv("TZMEET_WORK_START", "20")
			_ = os.Setenv("TZMEET_WORK_END", "8")
			defer func() {
				_ = os.Unsetenv("TZMEET_WORK_START")
				_ = os.Unsetenv("TZMEET_WORK_END")
			}()

			convey.Convey("Then configuration loading should fail", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a fully wired handler", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg := config.New(ctx)
		cfg.WorkerCount = 2
		svc := newService(cfg, logger.Get())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()
		h := newHandler(ctx, cfg, svc)

		convey.Convey("When the docs page is requested", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api-docs", nil))

			convey.Convey("Then it should be served", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When a meeting search is posted", func() {
			body := `{"participants":[{"id":"a","timezone":"Asia/Tokyo"},{"id":"b","timezone":"Australia/Sydney"}],"date":"2025-06-02"}`
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/meetings/search?days=2", strings.NewReader(body)))

			convey.Convey("Then the workers should answer", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, `"date":"2025-06-03"`)
			})
		})

		convey.Convey("When metrics are scraped after updating", func() {
			updateSystemMetrics()
			updateServiceMetrics(svc)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			convey.Convey("Then the service gauges should be exported", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "tzmeet_")
			})
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the background metrics updaters", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		convey.Convey("Then they should return once the context ends", func() {
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, app.New()) }, convey.ShouldNotPanic)
		})
	})
}
