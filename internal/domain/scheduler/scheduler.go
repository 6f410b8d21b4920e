// Package scheduler ranks candidate meeting times for a day across
// participants in different timezones.
package scheduler

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/okian/tzmeet/internal/domain/model"
	"github.com/okian/tzmeet/internal/domain/timeconv"
)

// Scoring constants.
const (
	MinParticipants = 2
	PerfectScore    = 100.0
	ScoreFloor      = 50.0
	PenaltyPerHour  = 10.0
	hoursPerDay     = 24.0
)

// Scheduler evaluates every whole-hour start of a reference day. It holds
// no per-call state and is safe for concurrent use.
type Scheduler struct {
	resolver timeconv.Resolver
}

// New creates a Scheduler. Without WithResolver it uses a cached system
// tz database resolver.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver == nil {
		s.resolver = timeconv.NewCachedResolver()
	}
	return s
}

// FindBestMeetingTimes classifies and ranks all candidate slots of date.
// reference anchors hour 0 and must name a valid zone whenever at least two
// participants are selected.
func (s *Scheduler) FindBestMeetingTimes(participants []model.Participant, reference string, wh model.WorkingHours, durationHours float64, date model.Date) (model.Result, error) {
	return s.Plan(context.Background(), model.Request{
		Participants:      participants,
		ReferenceTimezone: reference,
		WorkingHours:      wh,
		DurationHours:     durationHours,
		Date:              date,
	})
}

// Plan is FindBestMeetingTimes taking a Request, checking ctx between
// candidate hours.
func (s *Scheduler) Plan(ctx context.Context, req model.Request) (model.Result, error) {
	if err := ValidateConfig(req.WorkingHours, req.DurationHours); err != nil {
		return model.Result{}, err
	}

	selected := model.Selected(req.Participants)
	if len(selected) < MinParticipants {
		return emptyResult(), nil
	}

	refLoc, err := s.resolver.Resolve(req.ReferenceTimezone)
	if err != nil {
		return model.Result{}, fmt.Errorf("reference timezone: %w", err)
	}
	locs := make([]*time.Location, len(selected))
	for i, p := range selected {
		if locs[i], err = s.resolver.Resolve(p.Timezone); err != nil {
			return model.Result{}, fmt.Errorf("participant %q: %w", p.ID, err)
		}
	}

	slots := make([]model.TimeSlot, 0, CandidateCount(req.DurationHours))
	for h := 0; float64(h) <= hoursPerDay-req.DurationHours; h++ {
		if err := ctx.Err(); err != nil {
			return model.Result{}, fmt.Errorf("scheduling cancelled: %w", err)
		}
		slots = append(slots, evaluate(selected, locs, refLoc, req, float64(h)))
	}

	// Stable: equal scores keep ascending start-hour order.
	slices.SortStableFunc(slots, func(a, b model.TimeSlot) int {
		return cmp.Compare(b.Score, a.Score)
	})

	res := model.Result{
		Perfect:   make([]model.TimeSlot, 0, len(slots)),
		Sacrifice: make([]model.TimeSlot, 0, len(slots)),
	}
	for _, slot := range slots {
		if slot.Quality == model.QualityPerfect {
			res.Perfect = append(res.Perfect, slot)
		} else {
			res.Sacrifice = append(res.Sacrifice, slot)
		}
	}
	res.Empty = len(res.Perfect) == 0 && len(res.Sacrifice) == 0
	return res, nil
}

// evaluate scores one candidate start for every selected participant.
func evaluate(selected []model.Participant, locs []*time.Location, refLoc *time.Location, req model.Request, startHour float64) model.TimeSlot {
	endHour := startHour + req.DurationHours
	startAt := timeconv.Instant(refLoc, req.Date, startHour)
	endAt := timeconv.Instant(refLoc, req.Date, endHour)

	slot := model.TimeSlot{
		StartHour:        startHour,
		EndHour:          endHour,
		Start:            startAt.UTC(),
		End:              endAt.UTC(),
		ParticipantTimes: make([]model.ParticipantTime, len(selected)),
		Quality:          model.QualityPerfect,
	}

	var total float64
	for i, p := range selected {
		ls := timeconv.Render(startAt, locs[i], req.Date)
		le := timeconv.Render(endAt, locs[i], req.Date)
		sameDay := ls.Date == le.Date
		within := timeconv.IsWithinWorkingHours(ls.Clock(), le.Clock(), sameDay, req.WorkingHours)

		// Measure the end on the start day's clock so a meeting running past
		// midnight is penalized for the hours it overruns.
		end := le.Clock() + hoursPerDay*float64(ls.Date.DaysUntil(le.Date))
		score := ParticipantScore(within, ls.Clock(), end, req.WorkingHours)

		slot.ParticipantTimes[i] = model.ParticipantTime{
			Participant:        p,
			LocalStart:         ls,
			LocalEnd:           le,
			LocalDate:          ls.Date,
			CrossesToNextDay:   !sameDay,
			WithinWorkingHours: within,
			Score:              score,
		}
		total += score
		if !within {
			slot.Quality = model.QualitySacrifice
		}
	}
	slot.Score = total / float64(len(selected))
	return slot
}

// ParticipantScore is 100 inside working hours; outside, each hour beyond
// the window costs PenaltyPerHour points, floored at ScoreFloor.
func ParticipantScore(within bool, localStart, localEnd float64, wh model.WorkingHours) float64 {
	if within {
		return PerfectScore
	}
	outside := max(0, float64(wh.Start)-localStart, localEnd-float64(wh.End))
	return max(ScoreFloor, PerfectScore-PenaltyPerHour*outside)
}

// CandidateCount returns how many whole-hour starts fit a meeting of
// durationHours into one day.
func CandidateCount(durationHours float64) int {
	if durationHours <= 0 || durationHours > hoursPerDay || math.IsNaN(durationHours) {
		return 0
	}
	return int(math.Floor(hoursPerDay-durationHours)) + 1
}

// ValidateConfig rejects durations outside (0, 24] and working hours that
// are not an ascending range within a day.
func ValidateConfig(wh model.WorkingHours, durationHours float64) error {
	switch {
	case math.IsNaN(durationHours) || math.IsInf(durationHours, 0):
		return fmt.Errorf("%w: duration is not a number", ErrInvalidConfiguration)
	case durationHours <= 0:
		return fmt.Errorf("%w: duration must be positive, got %v", ErrInvalidConfiguration, durationHours)
	case durationHours > hoursPerDay:
		return fmt.Errorf("%w: duration exceeds a day, got %v", ErrInvalidConfiguration, durationHours)
	case wh.Start < 0 || wh.End > int(hoursPerDay):
		return fmt.Errorf("%w: working hours %d-%d outside 0-24", ErrInvalidConfiguration, wh.Start, wh.End)
	case wh.Start >= wh.End:
		return fmt.Errorf("%w: working hours start %d must precede end %d", ErrInvalidConfiguration, wh.Start, wh.End)
	}
	return nil
}

func emptyResult() model.Result {
	return model.Result{
		Perfect:   []model.TimeSlot{},
		Sacrifice: []model.TimeSlot{},
		Empty:     true,
	}
}
