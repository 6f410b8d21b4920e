package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/tzmeet/internal/domain/model"
	"github.com/okian/tzmeet/internal/domain/scheduler"
	"github.com/okian/tzmeet/internal/domain/timeconv"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	winterDay = model.NewDate(2025, time.January, 15)
	nineToSix = model.WorkingHours{Start: 9, End: 18}
)

func laAndSaigon() []model.Participant {
	return []model.Participant{
		{ID: "la", Name: "Los Angeles", Timezone: "America/Los_Angeles", Selected: true, Host: true},
		{ID: "sgn", Name: "Ho Chi Minh City", Timezone: "Asia/Ho_Chi_Minh", Selected: true},
	}
}

func newYorkAndLondon() []model.Participant {
	return []model.Participant{
		{ID: "ny", Name: "New York", Timezone: "America/New_York", Selected: true, Host: true},
		{ID: "ldn", Name: "London", Timezone: "Europe/London", Selected: true},
	}
}

// countingResolver records how many lookups the scheduler performs.
func countingResolver(calls *int) timeconv.Resolver {
	return timeconv.ResolverFunc(func(name string) (*time.Location, error) {
		*calls++
		return timeconv.NewCachedResolver().Resolve(name)
	})
}

func slotAt(slots []model.TimeSlot, hour float64) (model.TimeSlot, bool) {
	for _, s := range slots {
		if s.StartHour == hour {
			return s, true
		}
	}
	return model.TimeSlot{}, false
}

func TestFindBestMeetingTimes_LosAngelesSaigon(t *testing.T) {
	Convey("Given a host in Los Angeles and a participant in Ho Chi Minh City", t, func() {
		s := scheduler.New()

		Convey("When scheduling a one hour meeting on a winter day", func() {
			res, err := s.FindBestMeetingTimes(laAndSaigon(), "America/Los_Angeles", nineToSix, 1, winterDay)
			So(err, ShouldBeNil)

			Convey("Then no slot should suit both working days", func() {
				So(res.Perfect, ShouldBeEmpty)
				So(len(res.Sacrifice), ShouldEqual, 24)
				So(res.Empty, ShouldBeFalse)
			})

			Convey("And the midnight slot should score 75 as a sacrifice", func() {
				slot, ok := slotAt(res.Sacrifice, 0)
				So(ok, ShouldBeTrue)
				So(slot.Score, ShouldEqual, 75)
				So(slot.Quality, ShouldEqual, model.QualitySacrifice)

				la, sgn := slot.ParticipantTimes[0], slot.ParticipantTimes[1]
				So(la.LocalStart.Hour, ShouldEqual, 0)
				So(la.WithinWorkingHours, ShouldBeFalse)
				So(la.Score, ShouldEqual, 50)
				So(sgn.LocalStart.Hour, ShouldEqual, 15)
				So(sgn.LocalEnd.Hour, ShouldEqual, 16)
				So(sgn.WithinWorkingHours, ShouldBeTrue)
				So(sgn.Score, ShouldEqual, 100)
				So(slot.Start, ShouldEqual, time.Date(2025, time.January, 15, 8, 0, 0, 0, time.UTC))
			})
		})
	})
}

func TestFindBestMeetingTimes_NewYorkLondon(t *testing.T) {
	Convey("Given participants in New York and London", t, func() {
		s := scheduler.New()
		res, err := s.FindBestMeetingTimes(newYorkAndLondon(), "America/New_York", nineToSix, 1, winterDay)
		So(err, ShouldBeNil)

		Convey("Then the overlap hours should be perfect in start order", func() {
			So(len(res.Perfect), ShouldEqual, 3)
			So(res.Perfect[0].StartHour, ShouldEqual, 9)
			So(res.Perfect[1].StartHour, ShouldEqual, 10)
			So(res.Perfect[2].StartHour, ShouldEqual, 11)
			for _, slot := range res.Perfect {
				So(slot.Score, ShouldEqual, 100)
			}
		})

		Convey("Then a meeting ending exactly at closing time should be a sacrifice", func() {
			So(res.Sacrifice[0].StartHour, ShouldEqual, 12)
			So(res.Sacrifice[0].Score, ShouldEqual, 100)
			So(res.Sacrifice[0].ParticipantTimes[1].WithinWorkingHours, ShouldBeFalse)
		})

		Convey("Then equal scores should keep ascending start hours", func() {
			So(res.Sacrifice[1].StartHour, ShouldEqual, 8)
			So(res.Sacrifice[1].Score, ShouldEqual, 95)
			So(res.Sacrifice[2].StartHour, ShouldEqual, 13)
			So(res.Sacrifice[2].Score, ShouldEqual, 95)
		})

		Convey("Then each tier should be sorted by descending score", func() {
			for _, tier := range [][]model.TimeSlot{res.Perfect, res.Sacrifice} {
				for i := 1; i < len(tier); i++ {
					So(tier[i-1].Score, ShouldBeGreaterThanOrEqualTo, tier[i].Score)
				}
			}
		})
	})
}

func TestFindBestMeetingTimes_Properties(t *testing.T) {
	Convey("Given three participants spread around the globe", t, func() {
		s := scheduler.New()
		ps := []model.Participant{
			{ID: "sf", Timezone: "America/Los_Angeles", Selected: true, Host: true},
			{ID: "ber", Timezone: "Europe/Berlin", Selected: true},
			{ID: "blr", Timezone: "Asia/Kolkata", Selected: true},
			{ID: "syd", Timezone: "Australia/Sydney"},
		}

		for _, tc := range []struct {
			duration float64
			want     int
		}{{0.5, 24}, {1, 24}, {1.5, 23}, {2, 23}, {8, 17}, {24, 1}} {
			res, err := s.FindBestMeetingTimes(ps, "America/Los_Angeles", nineToSix, tc.duration, winterDay)
			So(err, ShouldBeNil)

			Convey("When the duration is "+time.Duration(tc.duration*float64(time.Hour)).String(), func() {
				Convey("Then every whole-hour start should be evaluated once", func() {
					So(scheduler.CandidateCount(tc.duration), ShouldEqual, tc.want)
					So(res.Len(), ShouldEqual, tc.want)
				})

				Convey("Then tiers should partition by working-hours membership", func() {
					for _, slot := range res.Perfect {
						for _, pt := range slot.ParticipantTimes {
							So(pt.WithinWorkingHours, ShouldBeTrue)
						}
					}
					for _, slot := range res.Sacrifice {
						anyOutside := false
						for _, pt := range slot.ParticipantTimes {
							anyOutside = anyOutside || !pt.WithinWorkingHours
						}
						So(anyOutside, ShouldBeTrue)
					}
				})

				Convey("Then scores should be bounded means of participant scores", func() {
					for _, slot := range append(append([]model.TimeSlot{}, res.Perfect...), res.Sacrifice...) {
						So(len(slot.ParticipantTimes), ShouldEqual, 3)
						var sum float64
						for _, pt := range slot.ParticipantTimes {
							So(pt.Score, ShouldBeBetweenOrEqual, 50, 100)
							sum += pt.Score
						}
						So(slot.Score, ShouldAlmostEqual, sum/3, 1e-9)
						So(slot.Score, ShouldBeBetweenOrEqual, 50, 100)
						So(slot.EndHour-slot.StartHour, ShouldEqual, tc.duration)
					}
				})
			})
		}

		Convey("When scheduling twice with identical inputs", func() {
			a, errA := s.FindBestMeetingTimes(ps, "America/Los_Angeles", nineToSix, 1.5, winterDay)
			b, errB := s.FindBestMeetingTimes(ps, "America/Los_Angeles", nineToSix, 1.5, winterDay)

			Convey("Then the results should be identical", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(a, ShouldResemble, b)
			})
		})
	})
}

func TestFindBestMeetingTimes_Preconditions(t *testing.T) {
	Convey("Given a scheduler with an instrumented resolver", t, func() {
		calls := 0
		s := scheduler.New(scheduler.WithResolver(countingResolver(&calls)))

		Convey("When only one participant is selected", func() {
			ps := laAndSaigon()
			ps[1].Selected = false
			res, err := s.FindBestMeetingTimes(ps, "America/Los_Angeles", nineToSix, 1, winterDay)

			Convey("Then an empty result should come back without any conversion", func() {
				So(err, ShouldBeNil)
				So(res.Empty, ShouldBeTrue)
				So(res.Perfect, ShouldNotBeNil)
				So(res.Perfect, ShouldBeEmpty)
				So(res.Sacrifice, ShouldNotBeNil)
				So(res.Sacrifice, ShouldBeEmpty)
				So(calls, ShouldEqual, 0)
			})
		})

		Convey("When an unselected participant has a broken zone", func() {
			ps := append(laAndSaigon(), model.Participant{ID: "x", Timezone: "Nope/Nope"})
			_, err := s.FindBestMeetingTimes(ps, "America/Los_Angeles", nineToSix, 1, winterDay)

			Convey("Then it should be ignored", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When a selected participant has a malformed zone", func() {
			ps := laAndSaigon()
			ps[1].Timezone = "Asia/Saigon City"
			res, err := s.FindBestMeetingTimes(ps, "America/Los_Angeles", nineToSix, 1, winterDay)

			Convey("Then the whole call should fail with ErrInvalidTimezone", func() {
				So(errors.Is(err, scheduler.ErrInvalidTimezone), ShouldBeTrue)
				So(errors.Is(err, timeconv.ErrInvalidTimezone), ShouldBeTrue)
				So(res.Perfect, ShouldBeNil)
				So(res.Sacrifice, ShouldBeNil)
			})
		})

		Convey("When the reference zone is malformed", func() {
			_, err := s.FindBestMeetingTimes(laAndSaigon(), "", nineToSix, 1, winterDay)

			Convey("Then it should fail with ErrInvalidTimezone", func() {
				So(errors.Is(err, scheduler.ErrInvalidTimezone), ShouldBeTrue)
			})
		})

		Convey("When the configuration is invalid", func() {
			bad := []struct {
				wh       model.WorkingHours
				duration float64
			}{
				{nineToSix, 0},
				{nineToSix, -1},
				{nineToSix, 25},
				{model.WorkingHours{Start: 18, End: 9}, 1},
				{model.WorkingHours{Start: 9, End: 9}, 1},
				{model.WorkingHours{Start: -1, End: 9}, 1},
				{model.WorkingHours{Start: 9, End: 25}, 1},
			}

			Convey("Then it should fail fast with ErrInvalidConfiguration", func() {
				for _, b := range bad {
					_, err := s.FindBestMeetingTimes(laAndSaigon(), "America/Los_Angeles", b.wh, b.duration, winterDay)
					So(errors.Is(err, scheduler.ErrInvalidConfiguration), ShouldBeTrue)
				}
				So(calls, ShouldEqual, 0)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := s.Plan(ctx, model.Request{
				Participants:      laAndSaigon(),
				ReferenceTimezone: "America/Los_Angeles",
				WorkingHours:      nineToSix,
				DurationHours:     1,
				Date:              winterDay,
			})

			Convey("Then it should stop with the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestFindBestMeetingTimes_Midnight(t *testing.T) {
	Convey("Given two UTC participants working until 22:00", t, func() {
		s := scheduler.New()
		ps := []model.Participant{
			{ID: "a", Timezone: "UTC", Selected: true},
			{ID: "b", Timezone: "Etc/UTC", Selected: true},
		}
		wh := model.WorkingHours{Start: 9, End: 22}
		res, err := s.FindBestMeetingTimes(ps, "UTC", wh, 1, winterDay)
		So(err, ShouldBeNil)

		Convey("Then a meeting running past midnight should be penalized for the overrun", func() {
			slot, ok := slotAt(res.Sacrifice, 23)
			So(ok, ShouldBeTrue)
			So(slot.ParticipantTimes[0].CrossesToNextDay, ShouldBeTrue)
			So(slot.ParticipantTimes[0].LocalEnd.Crossing, ShouldEqual, model.CrossingForward)
			So(slot.Score, ShouldEqual, 80)
		})

		Convey("Then a meeting ending an hour late should lose ten points", func() {
			slot, ok := slotAt(res.Sacrifice, 22)
			So(ok, ShouldBeTrue)
			So(slot.ParticipantTimes[0].CrossesToNextDay, ShouldBeFalse)
			So(slot.Score, ShouldEqual, 90)
		})
	})
}

func TestParticipantScore(t *testing.T) {
	Convey("Given working hours 9-18", t, func() {
		So(scheduler.ParticipantScore(true, 10, 11, nineToSix), ShouldEqual, 100)
		So(scheduler.ParticipantScore(false, 8, 9, nineToSix), ShouldEqual, 90)
		So(scheduler.ParticipantScore(false, 7.5, 8.5, nineToSix), ShouldEqual, 85)
		So(scheduler.ParticipantScore(false, 18, 19, nineToSix), ShouldEqual, 90)
		So(scheduler.ParticipantScore(false, 0, 1, nineToSix), ShouldEqual, 50)
		So(scheduler.ParticipantScore(false, 17, 18, nineToSix), ShouldEqual, 100)
	})
}

func TestReferenceZone(t *testing.T) {
	Convey("Given participants with a selected host", t, func() {
		ps := []model.Participant{
			{Timezone: "Europe/Paris", Selected: true},
			{Timezone: "Asia/Tokyo", Selected: true, Host: true},
		}

		Convey("Then the host's zone should be the reference", func() {
			zone, err := scheduler.ReferenceZone(ps)
			So(err, ShouldBeNil)
			So(zone, ShouldEqual, "Asia/Tokyo")
		})

		Convey("When the host is not selected", func() {
			ps[1].Selected = false

			Convey("Then the first selected participant should be the reference", func() {
				zone, err := scheduler.ReferenceZone(ps)
				So(err, ShouldBeNil)
				So(zone, ShouldEqual, "Europe/Paris")
			})
		})

		Convey("When two participants claim to host", func() {
			ps[0].Host = true

			Convey("Then it should be rejected", func() {
				_, err := scheduler.ReferenceZone(ps)
				So(errors.Is(err, scheduler.ErrInvalidConfiguration), ShouldBeTrue)
			})
		})

		Convey("When nobody is selected", func() {
			ps[0].Selected, ps[1].Selected = false, false

			Convey("Then it should report insufficient participants", func() {
				_, err := scheduler.ReferenceZone(ps)
				So(errors.Is(err, scheduler.ErrInsufficientParticipants), ShouldBeTrue)
			})
		})
	})
}
