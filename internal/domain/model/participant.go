package model

// Participant is one attendee, identified by the city they were added as.
type Participant struct {
	ID       string // opaque city reference
	Name     string // display name, e.g. "Ho Chi Minh City"
	Timezone string // IANA zone name, e.g. "Asia/Ho_Chi_Minh"
	Selected bool   // only selected participants are scheduled
	Host     bool   // at most one host; anchors the reference timezone
}

// WorkingHours is the half-open local interval [Start, End) in whole hours.
type WorkingHours struct {
	Start int
	End   int
}

// Request bundles the inputs of one scheduling call.
type Request struct {
	Participants      []Participant
	ReferenceTimezone string // optional at the service layer; required by the engine
	WorkingHours      WorkingHours
	HoursSet          bool // WorkingHours was given explicitly, even if zero
	DurationHours     float64
	Date              Date
}

// Selected returns the participants taking part in scheduling, in input order.
func Selected(ps []Participant) []Participant {
	out := make([]Participant, 0, len(ps))
	for _, p := range ps {
		if p.Selected {
			out = append(out, p)
		}
	}
	return out
}
