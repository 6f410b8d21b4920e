package scheduler

import (
	"errors"

	"github.com/okian/tzmeet/internal/domain/timeconv"
)

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	// ErrInvalidTimezone is fatal for the whole call; no partial results are returned.
	ErrInvalidTimezone = timeconv.ErrInvalidTimezone
	// ErrInvalidConfiguration covers bad durations, working hours and host flags.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInsufficientParticipants is never returned by FindBestMeetingTimes,
	// which reports the condition as an empty result instead.
	ErrInsufficientParticipants = errors.New("insufficient participants")
)
