package refreshflow

import (
	"time"
)

// ItemKind enumerates the remote resource types a refresh can target.
type ItemKind string

const (
	KindDatasource ItemKind = "DATASOURCE"
	KindWorkbook   ItemKind = "WORKBOOK"
	KindFlow       ItemKind = "FLOW"
)

// JobStatus enumerates the possible states of a remote job.
type JobStatus string

const (
	JobPending   JobStatus = "PENDING"
	JobSucceeded JobStatus = "SUCCEEDED"
	JobFailed    JobStatus = "FAILED"
	JobCancelled JobStatus = "CANCELLED"
)

// Terminal reports whether no further transition can occur from s.
func (s JobStatus) Terminal() bool {
	return s == JobSucceeded || s == JobFailed || s == JobCancelled
}

// ItemRef identifies one remote resource to act on. Either ResourceID is set
// directly, or Filters must narrow the lookup to exactly one match.
type ItemRef struct {
	Kind       ItemKind
	ResourceID string
	Filters    map[string]string
}

// JobHandle represents one in-flight remote asynchronous operation.
// Created by the Submitter with status PENDING; mutated only by the Monitor.
type JobHandle struct {
	// ItemID is a client-side identifier, assigned at submission.
	ItemID string

	// JobID is the opaque identifier assigned by the remote system.
	JobID string

	Kind       ItemKind
	ResourceID string
	Status     JobStatus

	// LastCheckedAt is when the Monitor last observed Status.
	LastCheckedAt time.Time
}

// BatchRequest is an ordered collection of items submitted together.
// It is consumed once by Coordinator.Run and may be discarded afterwards.
type BatchRequest struct {
	Items []ItemRef
}

// Outcome tags the final result of one batch item.
type Outcome string

const (
	OutcomeSucceeded       Outcome = "SUCCEEDED"
	OutcomeRemoteFailed    Outcome = "REMOTE_FAILED"
	OutcomeRemoteCancelled Outcome = "REMOTE_CANCELLED"
	OutcomeResolveFailed   Outcome = "RESOLVE_FAILED"
	OutcomeSubmitFailed    Outcome = "SUBMIT_FAILED"
	OutcomeTimeout         Outcome = "TIMEOUT"
	OutcomeCallerCancelled Outcome = "CALLER_CANCELLED"
)

// ItemResult is the per-item outcome of a batch run.
type ItemResult struct {
	// Index is the item's position in the original BatchRequest.
	Index int

	Ref     ItemRef
	Outcome Outcome

	// Handle is nil when the item never reached submission.
	Handle *JobHandle

	// Err carries the resolution, submission, wait or remote error, if any.
	Err error
}

// BatchResult reports one finished batch. Results preserves the order of the
// originating BatchRequest and always has one entry per requested item.
type BatchResult struct {
	BatchID    string
	Results    []ItemResult
	StartedAt  time.Time
	FinishedAt time.Time
}

// Succeeded returns the results that reached OutcomeSucceeded.
func (br *BatchResult) Succeeded() []ItemResult {
	return br.filter(func(r ItemResult) bool { return r.Outcome == OutcomeSucceeded })
}

// Failed returns every result that did not succeed, whatever the reason.
func (br *BatchResult) Failed() []ItemResult {
	return br.filter(func(r ItemResult) bool { return r.Outcome != OutcomeSucceeded })
}

func (br *BatchResult) filter(keep func(ItemResult) bool) []ItemResult {
	var out []ItemResult
	for _, r := range br.Results {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
