// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	service "github.com/okian/tzmeet/internal/app"
	"github.com/okian/tzmeet/internal/domain/model"
	"github.com/okian/tzmeet/internal/domain/scheduler"
	"github.com/okian/tzmeet/internal/domain/timeconv"
	"github.com/okian/tzmeet/internal/domain/types"
	"github.com/okian/tzmeet/pkg/logger"
)

// Default API configuration constants.
const (
	defaultMaxSlotLimit = 24
	defaultSearchDays   = 7
	maxBodyBytes        = 1 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	FindMeetingTimes(ctx context.Context, req model.Request) (service.Plan, error)
	SearchDays(ctx context.Context, req model.Request, days int) (service.Search, error)
	Convert(ctx context.Context, target, reference string, date model.Date, hourOffset float64) (service.Moment, error)
	Timeline(ctx context.Context, req model.Request) (service.Timeline, error)
	Label(zone string, at time.Time) string
	MaxSearchDays() int
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxSlotLimit caps the per-tier slot limit of the find endpoint.
func WithMaxSlotLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxSlotLimit = n
		}
	}
}

// WithRateLimit limits each client to rps requests per second on the /v1
// routes. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps > 0 {
			s.limiter = NewRateLimiter(rps, burst)
		}
	}
}

// WithLogger sets the logger used for server-side failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	meetingsHandler *MeetingsHandler
	clockHandler    *ClockHandler

	maxSlotLimit int
	limiter      *RateLimiter
	logger       logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{maxSlotLimit: defaultMaxSlotLimit}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider, s.maxSlotLimit, s.limiter)
	s.meetingsHandler = NewMeetingsHandler(deps, s.maxSlotLimit, s.logger)
	s.clockHandler = NewClockHandler(deps, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(path, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(path, RequestIDMiddleware(MetricsMiddleware(h, endpoint)))
	}
	limited := func(h http.HandlerFunc) http.HandlerFunc {
		if s.limiter == nil {
			return h
		}
		return s.limiter.Middleware(h)
	}
	route("/healthz", "healthz", s.healthHandler.HandleHealth)
	route("/stats", "stats", s.statsHandler.HandleStats)
	route("/v1/meetings/find", "find", limited(s.meetingsHandler.HandleFind))
	route("/v1/meetings/search", "search", limited(s.meetingsHandler.HandleSearch))
	route("/v1/convert", "convert", limited(s.clockHandler.HandleConvert))
	route("/v1/timeline", "timeline", limited(s.clockHandler.HandleTimeline))
}

// decodeMeetingRequest reads a MeetingRequest body and converts it to a
// domain request.
func decodeMeetingRequest(w http.ResponseWriter, r *http.Request) (types.MeetingRequest, model.Request, error) {
	var in types.MeetingRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return in, model.Request{}, err
	}
	req, err := in.Model()
	return in, req, err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, types.ErrorView{Code: code, Message: msg, RequestID: RequestIDFrom(r.Context())})
}

// statusOf maps domain errors to an HTTP status and error code.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, timeconv.ErrInvalidTimezone):
		return http.StatusBadRequest, "invalid_timezone"
	case errors.Is(err, scheduler.ErrInvalidConfiguration), errors.Is(err, timeconv.ErrInvalidOffset):
		return http.StatusBadRequest, "invalid_configuration"
	case errors.Is(err, scheduler.ErrInsufficientParticipants):
		return http.StatusBadRequest, "insufficient_participants"
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return statusGatewayTimeout, "timeout"
	case errors.Is(err, context.Canceled):
		return statusClientClosed, "cancelled"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// fail writes err with its mapped status, logging server-side failures.
// Cancelled and timed-out requests are logged at debug level.
func fail(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, code := statusOf(err)
	switch {
	case status == statusClientClosed || status == statusGatewayTimeout:
		log.Debug(r.Context(), "request abandoned",
			logger.String("path", r.URL.Path),
			logger.String("request_id", RequestIDFrom(r.Context())),
			logger.Error(err),
		)
	case status >= http.StatusInternalServerError:
		log.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", RequestIDFrom(r.Context())),
			logger.Error(err),
		)
	}
	writeError(w, r, status, code, err)
}
