package refreshflow

import (
	"time"
)

// Config holds the collaborators and settings the coordinator needs.
type Config struct {
	// Lookup resolves filter predicates to resource identifiers. Required.
	Lookup ResourceLookupService

	// Trigger starts remote refresh jobs. Required.
	Trigger JobTriggerService

	// Status reports remote job status. Required.
	Status JobStatusService

	// Auth, when set, scopes every Run inside one authenticated session.
	Auth AuthProvider

	// Journal, when set, records finished batches. Write failures are
	// logged, never fatal to the batch.
	Journal *Journal

	// PollInterval is how frequently the monitor checks pending jobs.
	// Defaults to 10 seconds.
	PollInterval time.Duration

	// WaitTimeout is how long the monitor waits for one job to reach a
	// terminal state. If zero, it waits until the job finishes or the
	// caller's context is cancelled.
	WaitTimeout time.Duration

	// InfoLog is called for informational or success logs.
	// If nil, defaults to printing to stdout.
	InfoLog func(ev LogEvent)

	// ErrorLog is called for error logs.
	// If nil, defaults to printing to stderr.
	ErrorLog func(ev LogEvent)
}

const defaultPollInterval = 10 * time.Second
