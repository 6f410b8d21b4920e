package scheduler

import (
	"fmt"

	"github.com/okian/tzmeet/internal/domain/model"
)

// ReferenceZone picks the conventional reference timezone: the selected
// host's, else the first selected participant's.
func ReferenceZone(participants []model.Participant) (string, error) {
	var host *model.Participant
	for i := range participants {
		if !participants[i].Host {
			continue
		}
		if host != nil {
			return "", fmt.Errorf("%w: more than one host", ErrInvalidConfiguration)
		}
		host = &participants[i]
	}
	if host != nil && host.Selected {
		return host.Timezone, nil
	}
	for _, p := range participants {
		if p.Selected {
			return p.Timezone, nil
		}
	}
	return "", ErrInsufficientParticipants
}
