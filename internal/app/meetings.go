package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/okian/tzmeet/internal/adapters/cache"
	"github.com/okian/tzmeet/internal/domain/model"
	"github.com/okian/tzmeet/internal/domain/scheduler"
	"github.com/okian/tzmeet/pkg/logger"
	"github.com/okian/tzmeet/pkg/metrics"
)

// minScheduled is the smallest selection the scheduler ranks slots for.
const minScheduled = 2

// Plan is a ranked day together with the inputs it was computed for.
type Plan struct {
	ReferenceTimezone string
	Date              model.Date
	Result            model.Result
	Cached            bool
}

// Search is the outcome of a multi-day search. Days are ordered by date;
// Best indexes the most attractive day, or is -1 when no day has a slot.
type Search struct {
	ID   string
	Days []Plan
	Best int
}

// FindMeetingTimes ranks the candidate slots of one day. Unset working
// hours, duration, reference zone and date are filled from the service
// defaults, the host and today's date in the reference zone.
func (s *Service) FindMeetingTimes(ctx context.Context, req model.Request) (Plan, error) {
	req, err := s.normalize(req, minScheduled)
	if err != nil {
		metrics.RecordSchedule(outcomeOf(err), 0, 0, 0)
		return Plan{}, err
	}

	res, cached, err := s.plan(ctx, req)
	if err != nil {
		return Plan{}, err
	}
	return Plan{
		ReferenceTimezone: req.ReferenceTimezone,
		Date:              req.Date,
		Result:            res,
		Cached:            cached,
	}, nil
}

// SearchDays plans days consecutive dates starting at req.Date through the
// worker pool. A full queue fails the whole search with ErrBackpressure.
func (s *Service) SearchDays(ctx context.Context, req model.Request, days int) (Search, error) {
	if days < 1 || days > s.maxSearchDays {
		metrics.RecordSearch(metrics.OutcomeInvalidConfiguration)
		return Search{}, fmt.Errorf("%w: days must be within 1-%d, got %d",
			scheduler.ErrInvalidConfiguration, s.maxSearchDays, days)
	}

	s.mu.RLock()
	started, jobs := s.started, s.jobs
	s.mu.RUnlock()
	if !started {
		return Search{}, ErrNotStarted
	}

	req, err := s.normalize(req, minScheduled)
	if err != nil {
		metrics.RecordSearch(outcomeOf(err))
		return Search{}, err
	}

	search := Search{ID: uuid.NewString(), Best: -1}
	reply := make(chan model.DayOutcome, days)
	for i := range days {
		job := model.DayJob{
			ID:      search.ID + "/" + strconv.Itoa(i),
			Date:    req.Date.AddDays(i),
			Request: req,
			Reply:   reply,
		}
		if err := jobs.Enqueue(ctx, job); err != nil {
			metrics.RecordSearch(metrics.OutcomeError)
			s.log().Warn(ctx, "search rejected",
				logger.String("search", search.ID),
				logger.Int("queued", i),
				logger.Error(err),
			)
			return Search{}, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
	}

	outcomes := make([]model.DayOutcome, 0, days)
	for len(outcomes) < days {
		select {
		case o := <-reply:
			outcomes = append(outcomes, o)
		case <-ctx.Done():
			metrics.RecordSearch(metrics.OutcomeError)
			return Search{}, fmt.Errorf("search %s: %w", search.ID, ctx.Err())
		}
	}

	slices.SortFunc(outcomes, func(a, b model.DayOutcome) int { return a.Date.Compare(b.Date) })
	search.Days = make([]Plan, len(outcomes))
	for i, o := range outcomes {
		if o.Err != nil {
			metrics.RecordSearch(outcomeOf(o.Err))
			return Search{}, fmt.Errorf("search %s on %s: %w", search.ID, o.Date, o.Err)
		}
		search.Days[i] = Plan{ReferenceTimezone: req.ReferenceTimezone, Date: o.Date, Result: o.Result}
	}
	search.Best = bestDay(search.Days)

	metrics.RecordSearch(metrics.OutcomeOK)
	s.log().Debug(ctx, "search complete",
		logger.String("search", search.ID),
		logger.Int("days", days),
		logger.Int("best", search.Best),
	)
	return search, nil
}

// bestDay prefers more perfect slots, then a higher top score, then the
// earlier date.
func bestDay(days []Plan) int {
	best := -1
	for i, d := range days {
		if d.Result.Len() == 0 {
			continue
		}
		if best < 0 || compareDays(d, days[best]) > 0 {
			best = i
		}
	}
	return best
}

func compareDays(a, b Plan) int {
	if c := cmp.Compare(len(a.Result.Perfect), len(b.Result.Perfect)); c != 0 {
		return c
	}
	at, _ := a.Result.Best()
	bt, _ := b.Result.Best()
	if c := cmp.Compare(at.Score, bt.Score); c != 0 {
		return c
	}
	return b.Date.Compare(a.Date)
}

// plan runs the scheduler through the result cache and records metrics.
func (s *Service) plan(ctx context.Context, req model.Request) (model.Result, bool, error) {
	key := cache.Fingerprint(req)
	if res, ok := s.results.Get(key); ok {
		metrics.RecordCacheHit()
		return res, true, nil
	}
	metrics.RecordCacheMiss()

	start := time.Now()
	res, err := s.scheduler.Plan(ctx, req)
	took := time.Since(start)
	latencyMs := float64(took.Microseconds()) / 1000

	if err != nil {
		metrics.RecordSchedule(outcomeOf(err), latencyMs, 0, 0)
		s.log().Debug(ctx, "scheduling failed",
			logger.String("reference", req.ReferenceTimezone),
			logger.String("date", req.Date.String()),
			logger.Error(err),
		)
		return model.Result{}, false, err
	}

	outcome := metrics.OutcomeOK
	if res.Empty {
		outcome = metrics.OutcomeEmpty
	}
	metrics.RecordSchedule(outcome, latencyMs, res.Len(), len(res.Perfect))
	s.results.Put(key, res)
	metrics.UpdateCacheSize(s.results.Size())

	s.log().Debug(ctx, "scheduled",
		logger.String("reference", req.ReferenceTimezone),
		logger.String("date", req.Date.String()),
		logger.Int("perfect", len(res.Perfect)),
		logger.Int("sacrifice", len(res.Sacrifice)),
		logger.Bool("empty", res.Empty),
		logger.Duration("took", took),
	)
	return res, false, nil
}

// normalize applies defaults and the participant cap. Working hours are
// defaulted only when absent; an explicit zero window is validated as is.
// The reference zone
// is only resolved for the default date when at least minSelected
// participants are selected.
func (s *Service) normalize(req model.Request, minSelected int) (model.Request, error) {
	if !req.HoursSet && req.WorkingHours == (model.WorkingHours{}) {
		req.WorkingHours = s.workingHours
	}
	if req.DurationHours == 0 {
		req.DurationHours = s.defaultDuration
	}
	n := len(model.Selected(req.Participants))
	if n > s.maxParticipants {
		return req, fmt.Errorf("%w: %d selected participants exceed the limit of %d",
			scheduler.ErrInvalidConfiguration, n, s.maxParticipants)
	}

	if req.ReferenceTimezone == "" {
		zone, err := scheduler.ReferenceZone(req.Participants)
		switch {
		case errors.Is(err, scheduler.ErrInsufficientParticipants):
			// The scheduler reports this as an empty result.
		case err != nil:
			return req, err
		default:
			req.ReferenceTimezone = zone
		}
	}

	if req.Date.IsZero() {
		req.Date = model.DateOf(time.Now().UTC())
		if req.ReferenceTimezone != "" && n >= minSelected {
			loc, err := s.resolver.Resolve(req.ReferenceTimezone)
			if err != nil {
				return req, fmt.Errorf("reference timezone: %w", err)
			}
			req.Date = model.DateOf(time.Now().In(loc))
		}
	}
	return req, nil
}

// dayPlanner lets the worker pool share the service's cache and metrics.
type dayPlanner struct {
	s *Service
}

func (p dayPlanner) Plan(ctx context.Context, req model.Request) (model.Result, error) {
	res, _, err := p.s.plan(ctx, req)
	return res, err
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, scheduler.ErrInvalidTimezone):
		return metrics.OutcomeInvalidTimezone
	case errors.Is(err, scheduler.ErrInvalidConfiguration):
		return metrics.OutcomeInvalidConfiguration
	default:
		return metrics.OutcomeError
	}
}

func formatHours(wh model.WorkingHours) string {
	return fmt.Sprintf("%02d:00-%02d:00", wh.Start, wh.End)
}
