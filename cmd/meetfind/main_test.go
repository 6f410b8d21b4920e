package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fatih/color"
	"github.com/okian/tzmeet/internal/adapters/http/api"
	app "github.com/okian/tzmeet/internal/app"
	"github.com/okian/tzmeet/internal/domain/types"
	"github.com/okian/tzmeet/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	color.NoColor = true
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestBuildRequest(t *testing.T) {
	Convey("Given a zone list", t, func() {
		o := options{zones: "Ana=America/New_York, Europe/London ,", start: 8, end: 17, top: 3}

		Convey("When the request is built", func() {
			req, err := buildRequest(o)

			Convey("Then the first zone should be the host", func() {
				So(err, ShouldBeNil)
				So(req.Participants, ShouldHaveLength, 2)
				So(req.Participants[0].Name, ShouldEqual, "Ana")
				So(req.Participants[0].Host, ShouldBeTrue)
				So(req.Participants[1].Name, ShouldEqual, "London")
				So(req.Participants[1].Host, ShouldBeFalse)
				So(*req.WorkingHours, ShouldResemble, types.HoursInput{Start: 8, End: 17})
				So(req.Limit, ShouldEqual, 3)
			})
		})

		Convey("When no zone is given", func() {
			_, err := buildRequest(options{})

			Convey("Then it should be rejected", func() {
				So(err, ShouldEqual, errNoZones)
			})
		})

		Convey("Then city names should be derived from zones", func() {
			So(cityOf("America/Argentina/Buenos_Aires"), ShouldEqual, "Buenos Aires")
			So(cityOf("UTC"), ShouldEqual, "UTC")
		})
	})
}

func TestRunLocal(t *testing.T) {
	Convey("Given the CLI in local mode", t, func() {
		Convey("When finding New York and London times", func() {
			code, out, _ := runCLI("-tz", "Ana=America/New_York,Ben=Europe/London", "-date", "2025-01-15", "-top", "2")

			Convey("Then the perfect overlap should be printed", func() {
				So(code, ShouldEqual, exitOK)
				So(out, ShouldContainSubstring, "Perfect (2)")
				So(out, ShouldContainSubstring, "Ben              14:00-15:00")
				So(out, ShouldContainSubstring, "Sacrifice (2)")
			})
		})

		Convey("When JSON output is requested", func() {
			code, out, _ := runCLI("-tz", "America/New_York,Europe/London", "-date", "2025-01-15", "-json")
			var plan types.PlanView

			Convey("Then the plan should decode", func() {
				So(code, ShouldEqual, exitOK)
				So(json.Unmarshal([]byte(out), &plan), ShouldBeNil)
				So(plan.Perfect[0].StartHour, ShouldEqual, 9)
				So(plan.ReferenceTimezone, ShouldEqual, "America/New_York")
			})
		})

		Convey("When searching a week", func() {
			code, out, _ := runCLI("-tz", "America/New_York,Europe/London", "-date", "2025-03-03", "-days", "7")

			Convey("Then the US daylight saving day should be marked best", func() {
				So(code, ShouldEqual, exitOK)
				So(out, ShouldContainSubstring, "2025-03-09  perfect  4")
				So(out, ShouldContainSubstring, "<- best")
			})
		})

		Convey("When a timeline is requested", func() {
			code, out, _ := runCLI("-tz", "UTC,Tokyo=Asia/Tokyo", "-date", "2025-01-15", "-timeline")

			Convey("Then one row per zone should be printed", func() {
				So(code, ShouldEqual, exitOK)
				So(out, ShouldContainSubstring, "Timeline for 2025-01-15 (UTC)")
				So(out, ShouldContainSubstring, "Asia/Tokyo")
			})
		})

		Convey("When only one zone is given", func() {
			code, out, _ := runCLI("-tz", "UTC", "-date", "2025-01-15")

			Convey("Then guidance should be printed", func() {
				So(code, ShouldEqual, exitOK)
				So(out, ShouldContainSubstring, types.EmptyGuidance)
			})
		})

		Convey("When a zone is unknown", func() {
			code, _, errOut := runCLI("-tz", "UTC,Mars/Olympus")

			Convey("Then the run should fail", func() {
				So(code, ShouldEqual, exitError)
				So(errOut, ShouldContainSubstring, "invalid timezone")
			})
		})

		Convey("When -tz is missing", func() {
			code, _, _ := runCLI()

			Convey("Then usage should be reported", func() {
				So(code, ShouldEqual, exitUsage)
			})
		})
	})
}

func TestRunRemote(t *testing.T) {
	Convey("Given a running tzmeet server", t, func() {
		So(logger.InitWith(logger.Options{Level: "error"}), ShouldBeNil)
		svc := app.New()
		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(context.Background(), mux)
		srv := httptest.NewServer(mux)
		Reset(srv.Close)

		Convey("When the CLI queries it", func() {
			code, out, _ := runCLI("-server", srv.URL, "-tz", "America/New_York,Europe/London", "-date", "2025-01-15", "-json")
			var plan types.PlanView

			Convey("Then the server's plan should be printed", func() {
				So(code, ShouldEqual, exitOK)
				So(json.Unmarshal([]byte(out), &plan), ShouldBeNil)
				So(plan.Perfect, ShouldHaveLength, 3)
			})
		})
	})
}
