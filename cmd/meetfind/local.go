package main

import (
	"context"

	app "github.com/okian/tzmeet/internal/app"
	"github.com/okian/tzmeet/internal/domain/types"
)

// localBackend answers queries with an in-process service.
type localBackend struct {
	svc *app.Service
}

func (b localBackend) Find(ctx context.Context, in types.MeetingRequest) (types.PlanView, error) {
	req, err := in.Model()
	if err != nil {
		return types.PlanView{}, err
	}
	plan, err := b.svc.FindMeetingTimes(ctx, req)
	if err != nil {
		return types.PlanView{}, err
	}
	return types.NewPlanView(plan.ReferenceTimezone, plan.Date, plan.Result, plan.Cached, in.Limit, b.svc.Label), nil
}

func (b localBackend) Search(ctx context.Context, in types.MeetingRequest, days int) (types.SearchView, error) {
	req, err := in.Model()
	if err != nil {
		return types.SearchView{}, err
	}
	search, err := b.svc.SearchDays(ctx, req, days)
	if err != nil {
		return types.SearchView{}, err
	}
	out := types.SearchView{ID: search.ID, Days: make([]types.DayPlanView, len(search.Days)), Best: search.Best}
	for i, d := range search.Days {
		out.Days[i] = types.DayPlanView{
			Date: d.Date.String(),
			Plan: types.NewPlanView(d.ReferenceTimezone, d.Date, d.Result, d.Cached, in.Limit, b.svc.Label),
		}
	}
	return out, nil
}

func (b localBackend) Timeline(ctx context.Context, in types.MeetingRequest) (types.TimelineView, error) {
	req, err := in.Model()
	if err != nil {
		return types.TimelineView{}, err
	}
	tl, err := b.svc.Timeline(ctx, req)
	if err != nil {
		return types.TimelineView{}, err
	}
	return types.NewTimelineView(tl.ReferenceTimezone, tl.Date, tl.Rows, b.svc.Label), nil
}
