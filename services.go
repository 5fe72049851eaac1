package refreshflow

import "context"

// AuthProvider yields an authenticated session for the duration of fn.
// Implementations must sign out when fn returns, even on error or panic.
type AuthProvider interface {
	WithSession(ctx context.Context, fn func(ctx context.Context) error) error
}

// ResourceLookupService is the remote filtering/search capability. Query
// returns the identifiers of every resource of the given kind matching all
// filters. It is read-only and safe to call repeatedly.
type ResourceLookupService interface {
	Query(ctx context.Context, kind ItemKind, filters map[string]string) ([]string, error)
}

// JobTriggerService starts the remote asynchronous operation for one
// resource and returns the server-assigned job identifier. Calling it
// mutates remote state exactly once; it is not idempotent.
type JobTriggerService interface {
	Trigger(ctx context.Context, kind ItemKind, resourceID string) (string, error)
}

// JobStatusService reports the current status of a remote job.
type JobStatusService interface {
	GetStatus(ctx context.Context, jobID string) (JobStatus, error)
}

// DataStreamSink persists a lazy sequence of byte chunks, e.g. a view's CSV
// content. See Drain.
type DataStreamSink interface {
	WriteChunk(ctx context.Context, chunk []byte) error
}
