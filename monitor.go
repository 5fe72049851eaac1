package refreshflow

import (
	"context"
	"fmt"
	"time"
)

// Monitor drives the job status state machine: PENDING until the remote
// reports SUCCEEDED, FAILED or CANCELLED, after which the handle never
// transitions again.
type Monitor struct {
	status JobStatusService
	cfg    *Config
}

// NewMonitor wraps a status service.
func NewMonitor(status JobStatusService, cfg *Config) *Monitor {
	return &Monitor{status: status, cfg: cfg}
}

// Poll queries the remote status of the handle's job and stamps the handle.
// A handle already in a terminal state is returned unchanged without a
// remote call.
func (m *Monitor) Poll(ctx context.Context, h *JobHandle) (JobStatus, error) {
	if h.Status.Terminal() {
		return h.Status, nil
	}

	st, err := m.status.GetStatus(ctx, h.JobID)
	if err != nil {
		return h.Status, fmt.Errorf("polling job %s: %w", h.JobID, err)
	}

	h.Status = st
	h.LastCheckedAt = time.Now()
	return st, nil
}

// WaitUntilTerminal polls at pollInterval until the job reaches a terminal
// state, the timeout elapses, or the caller's context is cancelled.
//
// A remote FAILED or CANCELLED is a normal return, not an error: in a batch,
// one job's failure must not look like a failure of the wait itself. The
// handle is always returned with its last observed state.
//
// A timeout while still pending returns ErrTimeout. Cancellation of ctx
// returns ErrCallerCancelled within one poll interval and takes priority
// over the deadline when both have fired.
func (m *Monitor) WaitUntilTerminal(ctx context.Context, h *JobHandle, pollInterval, timeout time.Duration) (*JobHandle, error) {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var lastPollErr error
	for {
		select {
		case <-ctx.Done():
			return h, fmt.Errorf("%w: job %s", ErrCallerCancelled, h.JobID)
		default:
		}

		st, err := m.Poll(ctx, h)
		if err != nil {
			// Transient status-service errors don't abort the wait; keep
			// polling until the job answers or the timeout expires.
			lastPollErr = err
			jobID := h.JobID
			m.cfg.logError(LogEvent{
				Message: fmt.Sprintf("Poll of job %s failed, will retry", h.JobID),
				ItemID:  &h.ItemID,
				JobID:   &jobID,
				Err:     err,
			})
		} else if st.Terminal() {
			return h, nil
		}

		select {
		case <-ctx.Done():
			return h, fmt.Errorf("%w: job %s", ErrCallerCancelled, h.JobID)
		case <-deadline:
			// The select picks randomly among ready cases, so re-check
			// cancellation to keep its priority over the deadline.
			select {
			case <-ctx.Done():
				return h, fmt.Errorf("%w: job %s", ErrCallerCancelled, h.JobID)
			default:
			}
			if lastPollErr != nil {
				return h, fmt.Errorf("%w: job %s still %s after %s (last poll error: %v)", ErrTimeout, h.JobID, h.Status, timeout, lastPollErr)
			}
			return h, fmt.Errorf("%w: job %s still %s after %s", ErrTimeout, h.JobID, h.Status, timeout)
		case <-ticker.C:
		}
	}
}
