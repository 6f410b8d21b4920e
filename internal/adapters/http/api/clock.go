package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/tzmeet/internal/domain/model"
	"github.com/okian/tzmeet/internal/domain/types"
	"github.com/okian/tzmeet/pkg/logger"
)

// ClockHandler serves time conversion and world clock requests.
type ClockHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewClockHandler creates a new clock handler.
func NewClockHandler(deps Dependencies, log logger.Logger) *ClockHandler {
	return &ClockHandler{deps: deps, logger: log}
}

// HandleConvert handles GET /v1/convert?tz=&ref=&date=&hour= requests.
func (h *ClockHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	target, ref := q.Get("tz"), q.Get("ref")
	if target == "" || ref == "" {
		fail(w, r, h.logger, WrapKind("convert", ErrBadRequest, errors.New("tz and ref are required")))
		return
	}
	date, err := model.ParseDate(q.Get("date"))
	if err != nil {
		fail(w, r, h.logger, WrapKind("convert", ErrBadRequest, err))
		return
	}
	var hour float64
	if s := q.Get("hour"); s != "" {
		if hour, err = strconv.ParseFloat(s, 64); err != nil {
			fail(w, r, h.logger, WrapKind("convert", ErrBadRequest, err))
			return
		}
	}

	m, err := h.deps.Convert(r.Context(), target, ref, date, hour)
	if err != nil {
		fail(w, r, h.logger, Wrap("convert", err))
		return
	}

	local := types.NewMomentView(target, m.Local, nil)
	local.Label = m.Abbreviation
	writeJSON(w, http.StatusOK, types.ConversionView{
		Timezone:          m.Timezone,
		ReferenceTimezone: m.ReferenceTimezone,
		ReferenceDate:     m.ReferenceDate.String(),
		HourOffset:        m.HourOffset,
		UTC:               m.Local.Instant.UTC(),
		Local:             local,
		Offset:            m.Offset,
	})
}

// HandleTimeline handles POST /v1/timeline requests.
func (h *ClockHandler) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	_, req, err := decodeMeetingRequest(w, r)
	if err != nil {
		fail(w, r, h.logger, WrapKind("timeline", ErrBadRequest, err))
		return
	}

	tl, err := h.deps.Timeline(r.Context(), req)
	if err != nil {
		fail(w, r, h.logger, Wrap("timeline", err))
		return
	}

	out := types.NewTimelineView(tl.ReferenceTimezone, tl.Date, tl.Rows, h.deps.Label)
	writeJSON(w, http.StatusOK, out)
}
