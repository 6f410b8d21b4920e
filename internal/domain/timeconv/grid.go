package timeconv

import (
	"github.com/okian/tzmeet/internal/domain/model"
)

// HoursPerDay is the number of columns in a reference-day grid.
const HoursPerDay = 24

// GridCell is one column of a participant row: the local time at a
// reference hour.
type GridCell struct {
	ReferenceHour int
	Moment        model.LocalMoment
	Working       bool // local hour lies in [wh.Start, wh.End)
}

// GridRow lines up a participant's local clock with the reference hours.
type GridRow struct {
	Participant model.Participant
	Cells       []GridCell
}

// Grid renders every participant's wall clock for each whole reference hour
// of date, so column h of every row refers to the same instant.
func (c *Converter) Grid(participants []model.Participant, reference string, date model.Date, wh model.WorkingHours) ([]GridRow, error) {
	refLoc, err := c.resolver.Resolve(reference)
	if err != nil {
		return nil, err
	}

	rows := make([]GridRow, 0, len(participants))
	for _, p := range participants {
		loc, err := c.resolver.Resolve(p.Timezone)
		if err != nil {
			return nil, err
		}
		row := GridRow{Participant: p, Cells: make([]GridCell, HoursPerDay)}
		for h := 0; h < HoursPerDay; h++ {
			m := Render(Instant(refLoc, date, float64(h)), loc, date)
			row.Cells[h] = GridCell{
				ReferenceHour: h,
				Moment:        m,
				Working:       m.Hour >= wh.Start && m.Hour < wh.End,
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
