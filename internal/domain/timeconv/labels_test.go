package timeconv_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/tzmeet/internal/domain/timeconv"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLabeler(t *testing.T) {
	Convey("Given a labeler", t, func() {
		l := timeconv.NewLabeler(timeconv.NewCachedResolver(),
			timeconv.WithAbbreviations(map[string]string{"Asia/Kolkata": "IST"}),
			timeconv.WithLabelCacheSize(32),
		)
		winter := time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)
		summer := time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC)

		Convey("When labelling Los Angeles across seasons", func() {
			w, err1 := l.OffsetLabel("America/Los_Angeles", winter)
			s, err2 := l.OffsetLabel("America/Los_Angeles", summer)

			Convey("Then the offset should follow DST", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(w, ShouldEqual, "UTC-08:00")
				So(s, ShouldEqual, "UTC-07:00")
			})

			Convey("And abbreviations should come from the zone database", func() {
				abbr, err := l.Abbreviation("America/Los_Angeles", winter)
				So(err, ShouldBeNil)
				So(abbr, ShouldEqual, "PST")
			})
		})

		Convey("When labelling a half-hour zone", func() {
			s, err := l.OffsetLabel("Asia/Kolkata", winter)

			Convey("Then minutes should be shown", func() {
				So(err, ShouldBeNil)
				So(s, ShouldEqual, "UTC+05:30")
			})

			Convey("And the override should win for the abbreviation", func() {
				abbr, err := l.Abbreviation("Asia/Kolkata", winter)
				So(err, ShouldBeNil)
				So(abbr, ShouldEqual, "IST")
			})
		})

		Convey("When a zone has only a numeric abbreviation", func() {
			abbr, err := l.Abbreviation("Asia/Ho_Chi_Minh", winter)

			Convey("Then it should fall back to the offset label", func() {
				So(err, ShouldBeNil)
				So(abbr, ShouldEqual, "UTC+07:00")
			})
		})

		Convey("When the zone is unknown", func() {
			_, err := l.OffsetLabel("Nowhere/Land", winter)

			Convey("Then it should report ErrInvalidTimezone", func() {
				So(errors.Is(err, timeconv.ErrInvalidTimezone), ShouldBeTrue)
			})
		})
	})
}

func TestFormatOffset(t *testing.T) {
	Convey("Given raw offsets in seconds", t, func() {
		So(timeconv.FormatOffset(0), ShouldEqual, "UTC+00:00")
		So(timeconv.FormatOffset(-8*3600), ShouldEqual, "UTC-08:00")
		So(timeconv.FormatOffset(5*3600+45*60), ShouldEqual, "UTC+05:45")
		So(timeconv.FormatOffset(-(3*3600 + 30*60)), ShouldEqual, "UTC-03:30")
	})
}
