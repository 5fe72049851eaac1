package refreshflow

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned by the Resolver when filters match nothing.
	ErrNotFound = errors.New("no matching resource")

	// ErrSubmitFailed wraps any error from the remote trigger call. A submit
	// is never retried here: a transport timeout after the trigger fired may
	// have started the job anyway (at-least-once risk).
	ErrSubmitFailed = errors.New("job submission failed")

	// ErrTimeout is returned by WaitUntilTerminal when the job is still
	// pending after the configured timeout.
	ErrTimeout = errors.New("timed out waiting for job")

	// ErrCallerCancelled is returned by WaitUntilTerminal when the caller's
	// context is cancelled mid-wait. Distinct from the remote CANCELLED
	// status, which is a normal terminal result, not an error.
	ErrCallerCancelled = errors.New("wait cancelled by caller")
)

// AmbiguousMatchError is returned by the Resolver when filters match more
// than one resource. It carries the match count for diagnostics.
type AmbiguousMatchError struct {
	Kind    ItemKind
	Filters map[string]string
	Count   int
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("ambiguous match: %d %s resources match %s", e.Count, e.Kind, formatFilters(e.Filters))
}

func formatFilters(filters map[string]string) string {
	if len(filters) == 0 {
		return "(no filters)"
	}
	parts := make([]string, 0, len(filters))
	for k, v := range filters {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
