// Package timeconv maps absolute instants, expressed as hour offsets into a
// reference day, onto wall-clock fields of arbitrary IANA zones.
//
// All arithmetic happens on time.Time instants; the zone database handles
// DST. Integer UTC offsets are only ever used for display labels.
package timeconv

import (
	"fmt"
	"math"
	"time"

	"github.com/okian/tzmeet/internal/domain/model"
)

// Converter renders reference-day instants in target zones.
type Converter struct {
	resolver Resolver
}

// NewConverter creates a Converter backed by resolver.
func NewConverter(resolver Resolver) *Converter {
	if resolver == nil {
		resolver = NewCachedResolver()
	}
	return &Converter{resolver: resolver}
}

// Resolver returns the underlying zone resolver.
func (c *Converter) Resolver() Resolver { return c.resolver }

// LocalHourAt computes the instant hourOffset hours after midnight of date in
// the reference zone and returns its wall-clock presentation in target.
func (c *Converter) LocalHourAt(target, reference string, date model.Date, hourOffset float64) (model.LocalMoment, error) {
	if math.IsNaN(hourOffset) || math.IsInf(hourOffset, 0) {
		return model.LocalMoment{}, fmt.Errorf("%w: %v", ErrInvalidOffset, hourOffset)
	}
	refLoc, err := c.resolver.Resolve(reference)
	if err != nil {
		return model.LocalMoment{}, err
	}
	targetLoc, err := c.resolver.Resolve(target)
	if err != nil {
		return model.LocalMoment{}, err
	}
	return Render(Instant(refLoc, date, hourOffset), targetLoc, date), nil
}

// Instant returns midnight of date in ref plus hourOffset hours of elapsed time.
func Instant(ref *time.Location, date model.Date, hourOffset float64) time.Time {
	return date.Midnight(ref).Add(time.Duration(hourOffset * float64(time.Hour)))
}

// Render presents instant in target, flagging which side of referenceDate
// the local calendar day falls on.
func Render(instant time.Time, target *time.Location, referenceDate model.Date) model.LocalMoment {
	local := instant.In(target)
	day := model.DateOf(local)

	crossing := model.CrossingNone
	switch day.Compare(referenceDate) {
	case 1:
		crossing = model.CrossingForward
	case -1:
		crossing = model.CrossingBackward
	}

	return model.LocalMoment{
		Instant:  local,
		Hour:     local.Hour(),
		Minute:   local.Minute(),
		Date:     day,
		Crossing: crossing,
	}
}

// IsWithinWorkingHours reports whether a local meeting [localStart, localEnd)
// satisfies wh. A meeting whose end falls on the next calendar day never
// qualifies, whatever its numeric end hour.
func IsWithinWorkingHours(localStart, localEnd float64, sameCalendarDay bool, wh model.WorkingHours) bool {
	return localStart >= float64(wh.Start) && localEnd < float64(wh.End) && sameCalendarDay
}
