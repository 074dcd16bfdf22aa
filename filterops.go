package prybar

import (
	"context"

	"github.com/prybar-dev/prybar/internal/filter"
)

// UnfilterScope removes the scope's entries from both suppression maps
// and clears its cached member snapshot, so ordinary lookups on the scope
// stop being filtered. Idempotent; safe under concurrent invalidation.
// The calling goroutine observes the unfiltered state on its next lookup.
func UnfilterScope(scope any) {
	filter.Unfilter(ScopeKey(scope))
}

// FilterScope registers suppressed member names for a scope. A scope that
// was already unfiltered stays unfiltered for the process lifetime.
func FilterScope(scope any, fields, methods []string) {
	filter.Register(ScopeKey(scope), fields, methods)
}

// ListMembers returns the scope's visible field names followed by its
// visible method names, each sorted, under the current suppression maps.
func ListMembers(scope any) []string {
	return filter.ListMembers(typeOf(scope))
}

// ListFields returns the scope's visible field names, sorted.
func ListFields(scope any) []string {
	return filter.ListFields(typeOf(scope))
}

// ListMethods returns the scope's visible method names, sorted.
func ListMethods(scope any) []string {
	return filter.ListMethods(typeOf(scope))
}

// SuppressedMembers returns the currently suppressed field and method
// names for a scope.
func SuppressedMembers(scope any) (fields, methods []string) {
	return filter.Suppressed(ScopeKey(scope))
}

// LoadFilterConfig overlays suppression patterns from a YAML file on the
// built-in defaults. A missing file is not an error.
func LoadFilterConfig(path string) error {
	p, err := filter.Load(path)
	if err != nil {
		return err
	}
	filter.Apply(p)
	return nil
}

// WatchFilterConfig hot-reloads the suppression pattern file on change
// until ctx is cancelled. Blocks; run it in its own goroutine.
func WatchFilterConfig(ctx context.Context, path string) error {
	r, err := filter.NewReloader(path)
	if err != nil {
		return err
	}
	return r.Run(ctx)
}
