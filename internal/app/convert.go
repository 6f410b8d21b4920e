package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/tzmeet/internal/domain/model"
	"github.com/okian/tzmeet/internal/domain/scheduler"
	"github.com/okian/tzmeet/internal/domain/timeconv"
	"github.com/okian/tzmeet/pkg/logger"
)

// Moment is one converted instant with its display labels.
type Moment struct {
	Timezone          string
	ReferenceTimezone string
	ReferenceDate     model.Date
	HourOffset        float64
	Local             model.LocalMoment
	Offset            string
	Abbreviation      string
}

// Timeline is the world-clock grid of a request's selected participants.
type Timeline struct {
	ReferenceTimezone string
	Date              model.Date
	WorkingHours      model.WorkingHours
	Rows              []timeconv.GridRow
}

// Convert renders the instant hourOffset hours after midnight of date in
// reference as seen in target.
func (s *Service) Convert(ctx context.Context, target, reference string, date model.Date, hourOffset float64) (Moment, error) {
	local, err := s.converter.LocalHourAt(target, reference, date, hourOffset)
	if err != nil {
		s.log().Debug(ctx, "conversion failed",
			logger.String("target", target),
			logger.String("reference", reference),
			logger.Error(err),
		)
		return Moment{}, err
	}

	offset, err := s.labeler.OffsetLabel(target, local.Instant)
	if err != nil {
		return Moment{}, err
	}
	abbr, err := s.labeler.Abbreviation(target, local.Instant)
	if err != nil {
		return Moment{}, err
	}

	return Moment{
		Timezone:          target,
		ReferenceTimezone: reference,
		ReferenceDate:     date,
		HourOffset:        hourOffset,
		Local:             local,
		Offset:            offset,
		Abbreviation:      abbr,
	}, nil
}

// Timeline lines up the selected participants' clocks for each hour of the
// reference day.
func (s *Service) Timeline(ctx context.Context, req model.Request) (Timeline, error) {
	req, err := s.normalize(req, 1)
	if err != nil {
		return Timeline{}, err
	}
	selected := model.Selected(req.Participants)
	if len(selected) == 0 {
		return Timeline{}, fmt.Errorf("timeline: %w", scheduler.ErrInsufficientParticipants)
	}
	if err := scheduler.ValidateConfig(req.WorkingHours, req.DurationHours); err != nil {
		return Timeline{}, err
	}

	rows, err := s.converter.Grid(selected, req.ReferenceTimezone, req.Date, req.WorkingHours)
	if err != nil {
		s.log().Debug(ctx, "timeline failed", logger.Error(err))
		return Timeline{}, err
	}
	return Timeline{
		ReferenceTimezone: req.ReferenceTimezone,
		Date:              req.Date,
		WorkingHours:      req.WorkingHours,
		Rows:              rows,
	}, nil
}

// Label returns the display abbreviation of zone at instant, or "" when
// the zone cannot be resolved.
func (s *Service) Label(zone string, at time.Time) string {
	abbr, err := s.labeler.Abbreviation(zone, at)
	if err != nil {
		return ""
	}
	return abbr
}
