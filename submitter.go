package refreshflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Submitter triggers one remote asynchronous operation per resolved resource.
type Submitter struct {
	trigger JobTriggerService
}

// NewSubmitter wraps a trigger service.
func NewSubmitter(trigger JobTriggerService) *Submitter {
	return &Submitter{trigger: trigger}
}

// Submit starts a remote job for the resource and wraps the returned job id
// into a PENDING handle. Each call starts at most one job; on an ambiguous
// transport failure the job may still have started on the server, so callers
// must not retry blindly.
func (s *Submitter) Submit(ctx context.Context, kind ItemKind, resourceID string) (*JobHandle, error) {
	jobID, err := s.trigger.Trigger(ctx, kind, resourceID)
	if err != nil {
		return nil, fmt.Errorf("%w: trigger %s %s: %v", ErrSubmitFailed, kind, resourceID, err)
	}

	return &JobHandle{
		ItemID:        uuid.NewString(),
		JobID:         jobID,
		Kind:          kind,
		ResourceID:    resourceID,
		Status:        JobPending,
		LastCheckedAt: time.Time{},
	}, nil
}
