package refreshflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Coordinator drives a BatchRequest through resolve, submit and monitor,
// aggregating per-item outcomes instead of aborting on the first failure.
type Coordinator struct {
	cfg       *Config
	resolver  *Resolver
	submitter *Submitter
	monitor   *Monitor
}

// New validates the collaborators in cfg and applies defaults.
func New(cfg Config) (*Coordinator, error) {
	if cfg.Lookup == nil {
		return nil, errors.New("refreshflow: Config.Lookup is required")
	}
	if cfg.Trigger == nil {
		return nil, errors.New("refreshflow: Config.Trigger is required")
	}
	if cfg.Status == nil {
		return nil, errors.New("refreshflow: Config.Status is required")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.InfoLog == nil {
		cfg.InfoLog = defaultInfoLog
	}
	if cfg.ErrorLog == nil {
		cfg.ErrorLog = defaultErrorLog
	}

	c := &Coordinator{cfg: &cfg}
	c.resolver = NewResolver(cfg.Lookup)
	c.submitter = NewSubmitter(cfg.Trigger)
	c.monitor = NewMonitor(cfg.Status, c.cfg)
	return c, nil
}

// Run executes one batch and returns one ItemResult per requested item, in
// the original order. Per-item failures (bad filters, failed submits, failed
// or cancelled jobs) are recorded in their slot and never abort siblings.
// Run itself only fails for systemic errors, i.e. the lookup collaborator
// unreachable for every single item.
//
// When Config.Auth is set, the whole run executes inside one session.
func (c *Coordinator) Run(ctx context.Context, batch BatchRequest) (*BatchResult, error) {
	if c.cfg.Auth == nil {
		return c.run(ctx, batch)
	}

	var br *BatchResult
	err := c.cfg.Auth.WithSession(ctx, func(ctx context.Context) error {
		var runErr error
		br, runErr = c.run(ctx, batch)
		return runErr
	})
	if err != nil {
		return nil, err
	}
	return br, nil
}

func (c *Coordinator) run(ctx context.Context, batch BatchRequest) (*BatchResult, error) {
	started := time.Now()
	batchID := uuid.NewString()
	results := make([]ItemResult, len(batch.Items))

	c.cfg.logInfo(LogEvent{
		Message: fmt.Sprintf("Batch %s started with %d items", batchID, len(batch.Items)),
		BatchID: batchID,
	})

	type inFlight struct {
		idx    int
		handle *JobHandle
	}
	var monitored []inFlight
	lookupFailures := 0
	var lastLookupErr error

	// Resolve and submit sequentially in batch order so per-item errors are
	// reported deterministically. Submits are not retried (see Submit).
	for i, ref := range batch.Items {
		results[i] = ItemResult{Index: i, Ref: ref}
		kindStr := string(ref.Kind)

		resourceID, err := c.resolver.Resolve(ctx, ref)
		if err != nil {
			results[i].Outcome = OutcomeResolveFailed
			results[i].Err = err

			var amb *AmbiguousMatchError
			if !errors.Is(err, ErrNotFound) && !errors.As(err, &amb) {
				// Not a filter problem but the lookup itself failing.
				lookupFailures++
				lastLookupErr = err
			}
			c.cfg.logError(LogEvent{
				Message: fmt.Sprintf("Item %d failed resolution", i),
				BatchID: batchID,
				Kind:    &kindStr,
				Err:     err,
			})
			continue
		}

		handle, err := c.submitter.Submit(ctx, ref.Kind, resourceID)
		if err != nil {
			results[i].Outcome = OutcomeSubmitFailed
			results[i].Err = err
			c.cfg.logError(LogEvent{
				Message: fmt.Sprintf("Item %d failed submission for resource %s", i, resourceID),
				BatchID: batchID,
				Kind:    &kindStr,
				Err:     err,
			})
			continue
		}

		results[i].Handle = handle
		monitored = append(monitored, inFlight{idx: i, handle: handle})

		jobID := handle.JobID
		c.cfg.logInfo(LogEvent{
			Message: fmt.Sprintf("Item %d submitted as job %s", i, handle.JobID),
			BatchID: batchID,
			ItemID:  &handle.ItemID,
			JobID:   &jobID,
			Kind:    &kindStr,
		})
	}

	if len(batch.Items) > 0 && lookupFailures == len(batch.Items) {
		return nil, fmt.Errorf("resource lookup unreachable for all %d items: %w", len(batch.Items), lastLookupErr)
	}

	// One goroutine per handle. Each writes only its own result slot; the
	// WaitGroup is the barrier before the slots are read again.
	var wg sync.WaitGroup
	for _, m := range monitored {
		wg.Add(1)
		go func(idx int, h *JobHandle) {
			defer wg.Done()
			c.monitorOne(ctx, batchID, idx, h, &results[idx])
		}(m.idx, m.handle)
	}
	wg.Wait()

	br := &BatchResult{
		BatchID:    batchID,
		Results:    results,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}

	if c.cfg.Journal != nil {
		if err := c.cfg.Journal.Record(ctx, br); err != nil {
			c.cfg.logError(LogEvent{
				Message: fmt.Sprintf("Failed to journal batch %s", batchID),
				BatchID: batchID,
				Err:     err,
			})
		}
	}

	elapsed := time.Since(started)
	c.cfg.logInfo(LogEvent{
		Message:  fmt.Sprintf("Batch %s finished in %v (%d/%d succeeded)", batchID, elapsed, len(br.Succeeded()), len(batch.Items)),
		BatchID:  batchID,
		Duration: &elapsed,
	})
	return br, nil
}

func (c *Coordinator) monitorOne(ctx context.Context, batchID string, idx int, h *JobHandle, res *ItemResult) {
	start := time.Now()
	jobID := h.JobID

	_, err := c.monitor.WaitUntilTerminal(ctx, h, c.cfg.PollInterval, c.cfg.WaitTimeout)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, ErrCallerCancelled) {
			res.Outcome = OutcomeCallerCancelled
		} else {
			res.Outcome = OutcomeTimeout
		}
		res.Err = err
		c.cfg.logError(LogEvent{
			Message:  fmt.Sprintf("Item %d wait ended without terminal state", idx),
			BatchID:  batchID,
			ItemID:   &h.ItemID,
			JobID:    &jobID,
			Err:      err,
			Duration: &elapsed,
		})
		return
	}

	switch h.Status {
	case JobSucceeded:
		res.Outcome = OutcomeSucceeded
		c.cfg.logInfo(LogEvent{
			Message:  fmt.Sprintf("Item %d job %s SUCCEEDED in %v", idx, h.JobID, elapsed),
			BatchID:  batchID,
			ItemID:   &h.ItemID,
			JobID:    &jobID,
			Duration: &elapsed,
		})
	case JobFailed:
		res.Outcome = OutcomeRemoteFailed
		res.Err = fmt.Errorf("job %s reported FAILED", h.JobID)
	case JobCancelled:
		res.Outcome = OutcomeRemoteCancelled
		res.Err = fmt.Errorf("job %s reported CANCELLED", h.JobID)
	}

	if res.Err != nil {
		c.cfg.logError(LogEvent{
			Message:  fmt.Sprintf("Item %d job %s ended %s in %v", idx, h.JobID, h.Status, elapsed),
			BatchID:  batchID,
			ItemID:   &h.ItemID,
			JobID:    &jobID,
			Err:      res.Err,
			Duration: &elapsed,
		})
	}
}
