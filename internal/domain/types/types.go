// Package types holds the wire shapes shared by the HTTP API, its client
// and the command line tool.
package types

import (
	"errors"
	"time"

	"github.com/okian/tzmeet/internal/domain/model"
	"github.com/okian/tzmeet/internal/domain/timeconv"
)

// ErrNegativeLimit is returned by MeetingRequest.Model for a limit below zero.
var ErrNegativeLimit = errors.New("limit must not be negative")

// LabelFunc names a zone at an instant, e.g. "PST" or "UTC+05:30".
// A nil LabelFunc leaves labels empty.
type LabelFunc func(zone string, at time.Time) string

// ParticipantInput is a participant as submitted by a client. Selected
// defaults to true when omitted.
type ParticipantInput struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Timezone string `json:"timezone"`
	Selected *bool  `json:"selected,omitempty"`
	Host     bool   `json:"host,omitempty"`
}

// Model converts the input to a domain participant.
func (p ParticipantInput) Model() model.Participant {
	selected := true
	if p.Selected != nil {
		selected = *p.Selected
	}
	return model.Participant{
		ID:       p.ID,
		Name:     p.Name,
		Timezone: p.Timezone,
		Selected: selected,
		Host:     p.Host,
	}
}

// HoursInput is a working-hours window in whole local hours.
type HoursInput struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// MeetingRequest is the body of the find, search and timeline endpoints.
// Zero-valued optional fields fall back to server defaults.
type MeetingRequest struct {
	Participants      []ParticipantInput `json:"participants"`
	WorkingHours      *HoursInput        `json:"working_hours,omitempty"`
	DurationHours     float64            `json:"duration_hours,omitempty"`
	Date              string             `json:"date,omitempty"`
	ReferenceTimezone string             `json:"reference_timezone,omitempty"`
	Limit             int                `json:"limit,omitempty"`
}

// Model converts the request to a domain request. Unset fields stay zero
// so the service can apply its defaults.
func (r MeetingRequest) Model() (model.Request, error) {
	if r.Limit < 0 {
		return model.Request{}, ErrNegativeLimit
	}
	req := model.Request{
		ReferenceTimezone: r.ReferenceTimezone,
		DurationHours:     r.DurationHours,
		Participants:      make([]model.Participant, len(r.Participants)),
	}
	for i, p := range r.Participants {
		req.Participants[i] = p.Model()
	}
	if r.WorkingHours != nil {
		req.WorkingHours = model.WorkingHours{Start: r.WorkingHours.Start, End: r.WorkingHours.End}
		req.HoursSet = true
	}
	if r.Date != "" {
		d, err := model.ParseDate(r.Date)
		if err != nil {
			return model.Request{}, err
		}
		req.Date = d
	}
	return req, nil
}

// MomentView is a rendered local wall-clock moment.
type MomentView struct {
	Time     string `json:"time"`
	Date     string `json:"date"`
	Crossing string `json:"crossing"`
	Label    string `json:"label,omitempty"`
}

// NewMomentView renders m for zone.
func NewMomentView(zone string, m model.LocalMoment, label LabelFunc) MomentView {
	v := MomentView{
		Time:     m.HHMM(),
		Date:     m.Date.String(),
		Crossing: m.Crossing.String(),
	}
	if label != nil {
		v.Label = label(zone, m.Instant)
	}
	return v
}

// ParticipantView is one participant's experience of a slot.
type ParticipantView struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name,omitempty"`
	Timezone           string     `json:"timezone"`
	Start              MomentView `json:"start"`
	End                MomentView `json:"end"`
	CrossesToNextDay   bool       `json:"crosses_to_next_day"`
	WithinWorkingHours bool       `json:"within_working_hours"`
	Score              float64    `json:"score"`
}

// SlotView is a scored candidate meeting time.
type SlotView struct {
	StartHour    float64           `json:"start_hour"`
	EndHour      float64           `json:"end_hour"`
	StartUTC     time.Time         `json:"start_utc"`
	EndUTC       time.Time         `json:"end_utc"`
	Quality      string            `json:"quality"`
	Score        float64           `json:"score"`
	Participants []ParticipantView `json:"participants"`
}

// NewSlotView renders slot.
func NewSlotView(slot model.TimeSlot, label LabelFunc) SlotView {
	v := SlotView{
		StartHour:    slot.StartHour,
		EndHour:      slot.EndHour,
		StartUTC:     slot.Start,
		EndUTC:       slot.End,
		Quality:      slot.Quality.String(),
		Score:        slot.Score,
		Participants: make([]ParticipantView, len(slot.ParticipantTimes)),
	}
	for i, pt := range slot.ParticipantTimes {
		zone := pt.Participant.Timezone
		v.Participants[i] = ParticipantView{
			ID:                 pt.Participant.ID,
			Name:               pt.Participant.Name,
			Timezone:           zone,
			Start:              NewMomentView(zone, pt.LocalStart, label),
			End:                NewMomentView(zone, pt.LocalEnd, label),
			CrossesToNextDay:   pt.CrossesToNextDay,
			WithinWorkingHours: pt.WithinWorkingHours,
			Score:              pt.Score,
		}
	}
	return v
}

// NewSlotViews renders at most limit slots; limit <= 0 renders all.
func NewSlotViews(slots []model.TimeSlot, limit int, label LabelFunc) []SlotView {
	if limit > 0 && len(slots) > limit {
		slots = slots[:limit]
	}
	out := make([]SlotView, len(slots))
	for i, s := range slots {
		out[i] = NewSlotView(s, label)
	}
	return out
}

// PlanView is the response of the find endpoint.
type PlanView struct {
	ReferenceTimezone string     `json:"reference_timezone"`
	Date              string     `json:"date"`
	Perfect           []SlotView `json:"perfect"`
	Sacrifice         []SlotView `json:"sacrifice"`
	Empty             bool       `json:"empty"`
	Guidance          string     `json:"guidance,omitempty"`
	Cached            bool       `json:"cached,omitempty"`
}

// EmptyGuidance explains an empty plan to the caller.
const EmptyGuidance = "select at least two participants to find a meeting time"

// NewPlanView renders result, keeping at most limit slots per tier.
func NewPlanView(reference string, date model.Date, result model.Result, cached bool, limit int, label LabelFunc) PlanView {
	v := PlanView{
		ReferenceTimezone: reference,
		Date:              date.String(),
		Perfect:           NewSlotViews(result.Perfect, limit, label),
		Sacrifice:         NewSlotViews(result.Sacrifice, limit, label),
		Empty:             result.Empty,
		Cached:            cached,
	}
	if result.Empty {
		v.Guidance = EmptyGuidance
	}
	return v
}

// DayPlanView is one day of a multi-day search.
type DayPlanView struct {
	Date string   `json:"date"`
	Plan PlanView `json:"plan"`
}

// SearchView is the response of the search endpoint. Best indexes Days
// and is -1 when no day produced a slot.
type SearchView struct {
	ID   string        `json:"id"`
	Days []DayPlanView `json:"days"`
	Best int           `json:"best"`
}

// ConversionView is the response of the convert endpoint.
type ConversionView struct {
	Timezone          string     `json:"timezone"`
	ReferenceTimezone string     `json:"reference_timezone"`
	ReferenceDate     string     `json:"reference_date"`
	HourOffset        float64    `json:"hour_offset"`
	UTC               time.Time  `json:"utc"`
	Local             MomentView `json:"local"`
	Offset            string     `json:"offset"`
}

// CellView is one hour of a timeline row.
type CellView struct {
	ReferenceHour int        `json:"reference_hour"`
	Local         MomentView `json:"local"`
	Working       bool       `json:"working"`
}

// TimelineRowView is one participant's day on the reference clock.
type TimelineRowView struct {
	ID       string     `json:"id"`
	Name     string     `json:"name,omitempty"`
	Timezone string     `json:"timezone"`
	Cells    []CellView `json:"cells"`
}

// TimelineView is the response of the timeline endpoint.
type TimelineView struct {
	ReferenceTimezone string            `json:"reference_timezone"`
	Date              string            `json:"date"`
	Rows              []TimelineRowView `json:"rows"`
}

// NewTimelineView renders grid rows for the reference day.
func NewTimelineView(reference string, date model.Date, rows []timeconv.GridRow, label LabelFunc) TimelineView {
	out := TimelineView{
		ReferenceTimezone: reference,
		Date:              date.String(),
		Rows:              make([]TimelineRowView, len(rows)),
	}
	for i, row := range rows {
		zone := row.Participant.Timezone
		cells := make([]CellView, len(row.Cells))
		for j, c := range row.Cells {
			cells[j] = CellView{
				ReferenceHour: c.ReferenceHour,
				Local:         NewMomentView(zone, c.Moment, label),
				Working:       c.Working,
			}
		}
		out.Rows[i] = TimelineRowView{
			ID:       row.Participant.ID,
			Name:     row.Participant.Name,
			Timezone: zone,
			Cells:    cells,
		}
	}
	return out
}

// ErrorView is the JSON error envelope.
type ErrorView struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}
