package refreshflow

import (
	"context"
	"fmt"
)

// Resolver maps an ItemRef to exactly one remote resource identifier.
type Resolver struct {
	lookup ResourceLookupService
}

// NewResolver wraps a lookup service.
func NewResolver(lookup ResourceLookupService) *Resolver {
	return &Resolver{lookup: lookup}
}

// Resolve returns the single resource identifier the ref points at. A direct
// ResourceID bypasses the lookup. Zero filter matches fail with ErrNotFound,
// multiple matches with an AmbiguousMatchError carrying the count.
func (r *Resolver) Resolve(ctx context.Context, ref ItemRef) (string, error) {
	if ref.ResourceID != "" {
		return ref.ResourceID, nil
	}

	ids, err := r.lookup.Query(ctx, ref.Kind, ref.Filters)
	if err != nil {
		return "", fmt.Errorf("querying %s resources: %w", ref.Kind, err)
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: no %s matches %s", ErrNotFound, ref.Kind, formatFilters(ref.Filters))
	case 1:
		return ids[0], nil
	default:
		return "", &AmbiguousMatchError{Kind: ref.Kind, Filters: ref.Filters, Count: len(ids)}
	}
}
