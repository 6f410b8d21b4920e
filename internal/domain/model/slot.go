package model

import (
	"fmt"
	"time"
)

// DayCrossing says on which side of the reference date a local moment falls.
type DayCrossing int

const (
	CrossingNone DayCrossing = iota
	CrossingForward
	CrossingBackward
)

func (c DayCrossing) String() string {
	switch c {
	case CrossingForward:
		return "forward"
	case CrossingBackward:
		return "backward"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c DayCrossing) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Quality is the tier a candidate slot falls into.
type Quality int

const (
	// QualityPerfect means every participant is inside working hours.
	QualityPerfect Quality = iota
	// QualitySacrifice means at least one participant is outside working hours.
	QualitySacrifice
)

func (q Quality) String() string {
	if q == QualityPerfect {
		return "perfect"
	}
	return "sacrifice"
}

// MarshalText implements encoding.TextMarshaler.
func (q Quality) MarshalText() ([]byte, error) { return []byte(q.String()), nil }

// LocalMoment is one absolute instant rendered as wall-clock fields of a zone.
type LocalMoment struct {
	Instant  time.Time // carries the target location
	Hour     int       // 0-23
	Minute   int
	Date     Date
	Crossing DayCrossing // relative to the reference date
}

// Clock returns the wall-clock time as fractional hours, e.g. 14.5 for 14:30.
func (m LocalMoment) Clock() float64 {
	return float64(m.Hour) + float64(m.Minute)/60 + float64(m.Instant.Second())/3600
}

// HHMM formats the wall-clock time as 15:04.
func (m LocalMoment) HHMM() string {
	return fmt.Sprintf("%02d:%02d", m.Hour, m.Minute)
}

// ParticipantTime is how one candidate slot looks for one participant.
type ParticipantTime struct {
	Participant        Participant
	LocalStart         LocalMoment
	LocalEnd           LocalMoment
	LocalDate          Date // calendar day the meeting starts on locally
	CrossesToNextDay   bool // the meeting ends on a later local day than it starts
	WithinWorkingHours bool
	Score              float64 // 50-100
}

// TimeSlot is one scored candidate meeting time.
type TimeSlot struct {
	StartHour        float64 // hours past reference midnight
	EndHour          float64
	Start            time.Time // UTC
	End              time.Time // UTC
	ParticipantTimes []ParticipantTime
	Quality          Quality
	Score            float64 // mean of participant scores
}

// Result is the classified, ranked output of a scheduling call.
type Result struct {
	Perfect   []TimeSlot
	Sacrifice []TimeSlot
	Empty     bool
}

// Len returns the number of slots across both tiers.
func (r Result) Len() int { return len(r.Perfect) + len(r.Sacrifice) }

// Best returns the highest ranked slot, preferring the perfect tier.
func (r Result) Best() (TimeSlot, bool) {
	switch {
	case len(r.Perfect) > 0:
		return r.Perfect[0], true
	case len(r.Sacrifice) > 0:
		return r.Sacrifice[0], true
	default:
		return TimeSlot{}, false
	}
}
