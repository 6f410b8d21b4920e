// Command meetfind prints ranked meeting times for a set of time zones.
//
//	meetfind -tz "Ana=America/New_York,Ben=Europe/London" -date 2025-01-15
//	meetfind -tz "Asia/Tokyo,Europe/Berlin" -days 7 -server http://localhost:9080
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	app "github.com/okian/tzmeet/internal/app"
	"github.com/okian/tzmeet/internal/client"
	"github.com/okian/tzmeet/internal/domain/types"
	"github.com/okian/tzmeet/pkg/logger"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const defaultRequestTimeout = 30 * time.Second

var errNoZones = errors.New("-tz needs at least one time zone")

// backend answers meeting queries either in-process or over HTTP.
type backend interface {
	Find(ctx context.Context, req types.MeetingRequest) (types.PlanView, error)
	Search(ctx context.Context, req types.MeetingRequest, days int) (types.SearchView, error)
	Timeline(ctx context.Context, req types.MeetingRequest) (types.TimelineView, error)
}

type options struct {
	zones    string
	date     string
	duration float64
	start    int
	end      int
	top      int
	days     int
	timeline bool
	json     bool
	server   string
	timeout  time.Duration
	noColor  bool
	logLevel string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var o options
	fs := flag.NewFlagSet("meetfind", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.zones, "tz", "", "comma-separated zones, optionally Name=Zone; the first is the host")
	fs.StringVar(&o.date, "date", "", "reference date YYYY-MM-DD (default: today in the host's zone)")
	fs.Float64Var(&o.duration, "duration", 0, "meeting length in hours (default: server default)")
	fs.IntVar(&o.start, "start", 9, "working day start hour")
	fs.IntVar(&o.end, "end", 18, "working day end hour")
	fs.IntVar(&o.top, "top", 5, "slots to show per tier")
	fs.IntVar(&o.days, "days", 1, "search this many consecutive days")
	fs.BoolVar(&o.timeline, "timeline", false, "print a world-clock timeline instead of slots")
	fs.BoolVar(&o.json, "json", false, "print JSON")
	fs.StringVar(&o.server, "server", "", "query a tzmeet server instead of computing locally")
	fs.DurationVar(&o.timeout, "timeout", defaultRequestTimeout, "overall request timeout")
	fs.BoolVar(&o.noColor, "no-color", false, "disable colored output")
	fs.StringVar(&o.logLevel, "log-level", "error", "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	req, err := buildRequest(o)
	if err != nil {
		fmt.Fprintln(stderr, "meetfind:", err)
		fs.Usage()
		return exitUsage
	}
	if o.noColor {
		color.NoColor = true
	}
	if err := logger.InitWith(logger.Options{Level: o.logLevel, Writer: stderr}); err != nil {
		fmt.Fprintln(stderr, "meetfind:", err)
		return exitUsage
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	b, closeFn, err := newBackend(ctx, o)
	if err != nil {
		fmt.Fprintln(stderr, "meetfind:", err)
		return exitError
	}
	defer closeFn()

	if err := execute(ctx, b, o, req, stdout); err != nil {
		fmt.Fprintln(stderr, "meetfind:", err)
		return exitError
	}
	return exitOK
}

func execute(ctx context.Context, b backend, o options, req types.MeetingRequest, w io.Writer) error {
	switch {
	case o.timeline:
		tl, err := b.Timeline(ctx, req)
		if err != nil {
			return err
		}
		if o.json {
			return writeJSON(w, tl)
		}
		printTimeline(w, tl)
	case o.days > 1:
		search, err := b.Search(ctx, req, o.days)
		if err != nil {
			return err
		}
		if o.json {
			return writeJSON(w, search)
		}
		printSearch(w, search)
	default:
		plan, err := b.Find(ctx, req)
		if err != nil {
			return err
		}
		if o.json {
			return writeJSON(w, plan)
		}
		printPlan(w, plan)
	}
	return nil
}

// buildRequest turns the flags into an API request. The first zone is
// the host, so its zone is the reference clock.
func buildRequest(o options) (types.MeetingRequest, error) {
	req := types.MeetingRequest{
		WorkingHours:  &types.HoursInput{Start: o.start, End: o.end},
		DurationHours: o.duration,
		Date:          o.date,
		Limit:         o.top,
	}
	for _, entry := range strings.Split(o.zones, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, zone, ok := strings.Cut(entry, "=")
		if !ok {
			zone, name = entry, cityOf(entry)
		}
		req.Participants = append(req.Participants, types.ParticipantInput{
			ID:       fmt.Sprintf("p%d", len(req.Participants)+1),
			Name:     strings.TrimSpace(name),
			Timezone: strings.TrimSpace(zone),
			Host:     len(req.Participants) == 0,
		})
	}
	if len(req.Participants) == 0 {
		return req, errNoZones
	}
	return req, nil
}

// cityOf derives a display name from an IANA zone, e.g. "New York".
func cityOf(zone string) string {
	if i := strings.LastIndexByte(zone, '/'); i >= 0 {
		zone = zone[i+1:]
	}
	return strings.ReplaceAll(zone, "_", " ")
}

func newBackend(ctx context.Context, o options) (backend, func(), error) {
	if o.server != "" {
		return client.New(o.server, client.WithLogger(logger.Get().Named("client"))), func() {}, nil
	}
	svc := app.New(app.WithLogger(logger.Get()))
	if o.days > 1 {
		if err := svc.Start(ctx); err != nil {
			return nil, nil, err
		}
		return localBackend{svc: svc}, svc.Stop, nil
	}
	return localBackend{svc: svc}, func() {}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
