package api

import (
	"maps"
	"net/http"
)

// StatsProvider reports the scheduling service's counters and settings.
type StatsProvider interface {
	GetStats() map[string]any
}

// StatsHandler serves the service stats together with the API's own
// limits under the "api" key.
type StatsHandler struct {
	provider     StatsProvider
	maxSlotLimit int
	limiter      *RateLimiter
}

// NewStatsHandler creates a stats handler. limiter may be nil.
func NewStatsHandler(provider StatsProvider, maxSlotLimit int, limiter *RateLimiter) *StatsHandler {
	return &StatsHandler{provider: provider, maxSlotLimit: maxSlotLimit, limiter: limiter}
}

// HandleStats handles GET /stats.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	stats := make(map[string]any)
	if h.provider != nil {
		maps.Copy(stats, h.provider.GetStats())
	}
	stats["api"] = h.apiStats()
	writeJSON(w, http.StatusOK, stats)
}

func (h *StatsHandler) apiStats() map[string]any {
	out := map[string]any{
		"maxSlotLimit": h.maxSlotLimit,
		"rateLimited":  h.limiter != nil,
	}
	if h.limiter != nil {
		out["rateLimitRPS"] = float64(h.limiter.limit)
		out["rateLimitBurst"] = h.limiter.burst
		out["rateLimitClients"] = h.limiter.Clients()
	}
	return out
}
