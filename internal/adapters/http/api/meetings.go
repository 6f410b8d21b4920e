package api

import (
	"net/http"
	"strconv"

	service "github.com/okian/tzmeet/internal/app"
	"github.com/okian/tzmeet/internal/domain/types"
	"github.com/okian/tzmeet/pkg/logger"
)

// MeetingsHandler handles meeting search requests.
type MeetingsHandler struct {
	deps         Dependencies
	maxSlotLimit int
	logger       logger.Logger
}

// NewMeetingsHandler creates a new meetings handler.
func NewMeetingsHandler(deps Dependencies, maxSlotLimit int, log logger.Logger) *MeetingsHandler {
	return &MeetingsHandler{deps: deps, maxSlotLimit: maxSlotLimit, logger: log}
}

// HandleFind handles POST /v1/meetings/find requests.
func (h *MeetingsHandler) HandleFind(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	in, req, err := decodeMeetingRequest(w, r)
	if err != nil {
		fail(w, r, h.logger, WrapKind("find", ErrBadRequest, err))
		return
	}

	plan, err := h.deps.FindMeetingTimes(r.Context(), req)
	if err != nil {
		fail(w, r, h.logger, Wrap("find", err))
		return
	}
	writeJSON(w, http.StatusOK, h.planView(plan, in.Limit))
}

// HandleSearch handles POST /v1/meetings/search?days=N requests.
func (h *MeetingsHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	days := defaultSearchDays
	if maxDays := h.deps.MaxSearchDays(); maxDays > 0 && days > maxDays {
		days = maxDays
	}
	if q := r.URL.Query().Get("days"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			fail(w, r, h.logger, WrapKind("search", ErrBadRequest, err))
			return
		}
		days = n
	}

	in, req, err := decodeMeetingRequest(w, r)
	if err != nil {
		fail(w, r, h.logger, WrapKind("search", ErrBadRequest, err))
		return
	}

	search, err := h.deps.SearchDays(r.Context(), req, days)
	if err != nil {
		fail(w, r, h.logger, Wrap("search", err))
		return
	}

	out := types.SearchView{ID: search.ID, Days: make([]types.DayPlanView, len(search.Days)), Best: search.Best}
	for i, d := range search.Days {
		out.Days[i] = types.DayPlanView{Date: d.Date.String(), Plan: h.planView(d, in.Limit)}
	}
	writeJSON(w, http.StatusOK, out)
}

// planView renders plan, capping the per-tier limit at the server maximum.
func (h *MeetingsHandler) planView(plan service.Plan, limit int) types.PlanView {
	if limit <= 0 || limit > h.maxSlotLimit {
		limit = h.maxSlotLimit
	}
	return types.NewPlanView(plan.ReferenceTimezone, plan.Date, plan.Result, plan.Cached, limit, h.deps.Label)
}
