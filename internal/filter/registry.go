// Package filter maintains the process-wide suppression registry: per
// scope, the member names hidden from ordinary enumeration, plus a cached
// snapshot of previously enumerated members. Two independent maps exist —
// one for fields, one for methods — each published copy-on-write through
// an atomic pointer so concurrent lookups never observe a half-applied
// change.
package filter

import (
	"sort"
	"sync"
	"sync/atomic"
)

type nameSet map[string]struct{}

// table maps scope key → suppressed member names. Published tables are
// immutable; every mutation publishes a fresh copy.
type table map[string]nameSet

// State is the per-scope filtering lifecycle. A scope never transitions
// back to StateFiltered during the process lifetime.
type State int

const (
	StateFiltered State = iota
	StateUnfiltering
	StateUnfiltered
)

func (s State) String() string {
	switch s {
	case StateFiltered:
		return "filtered"
	case StateUnfiltering:
		return "unfiltering"
	case StateUnfiltered:
		return "unfiltered"
	default:
		return "unknown"
	}
}

var (
	fieldFilters  atomic.Pointer[table]
	methodFilters atomic.Pointer[table]

	scopeLocks sync.Map // scope key → *sync.Mutex
	states     sync.Map // scope key → State, written under the scope lock
)

func init() {
	empty := make(table)
	fieldFilters.Store(&empty)
	methodFilters.Store(&empty)
	Apply(DefaultPatterns)
}

func lockFor(scope string) *sync.Mutex {
	l, ok := scopeLocks.Load(scope)
	if !ok {
		l, _ = scopeLocks.LoadOrStore(scope, &sync.Mutex{})
	}
	return l.(*sync.Mutex)
}

// StateOf returns the scope's filtering state: explicitly recorded
// transitions win; otherwise a scope with suppressions is filtered and one
// without is trivially unfiltered.
func StateOf(scope string) State {
	if s, ok := states.Load(scope); ok {
		return s.(State)
	}
	if hasEntry(fieldFilters.Load(), scope) || hasEntry(methodFilters.Load(), scope) {
		return StateFiltered
	}
	return StateUnfiltered
}

func hasEntry(t *table, scope string) bool {
	_, ok := (*t)[scope]
	return ok
}

// Register adds suppressed names for a scope. Registration against a scope
// that was already unfiltered is ignored: the runtime never re-adds
// suppression once removed. The scope's cached snapshot is invalidated so
// the new suppression takes effect on the next enumeration.
func Register(scope string, fields, methods []string) {
	if len(fields) == 0 && len(methods) == 0 {
		return
	}

	lock := lockFor(scope)
	lock.Lock()
	defer lock.Unlock()

	if s, ok := states.Load(scope); ok && s.(State) != StateFiltered {
		return
	}

	if len(fields) > 0 {
		fieldFilters.Store(withNames(fieldFilters.Load(), scope, fields))
	}
	if len(methods) > 0 {
		methodFilters.Store(withNames(methodFilters.Load(), scope, methods))
	}
	states.Store(scope, StateFiltered)
	dropSnapshot(scope)
}

// withNames returns a copy of t with names added to the scope's set.
func withNames(t *table, scope string, names []string) *table {
	next := make(table, len(*t)+1)
	for k, v := range *t {
		next[k] = v
	}
	set := make(nameSet, len(next[scope])+len(names))
	for n := range next[scope] {
		set[n] = struct{}{}
	}
	for _, n := range names {
		set[n] = struct{}{}
	}
	next[scope] = set
	return &next
}

// without returns a copy of t minus the scope's entry, or t itself when
// the scope has no entry.
func without(t *table, scope string) *table {
	if !hasEntry(t, scope) {
		return t
	}
	next := make(table, len(*t))
	for k, v := range *t {
		if k != scope {
			next[k] = v
		}
	}
	return &next
}

// Unfilter removes the scope's suppression entries from both maps and
// clears its cached member snapshot. The two steps happen under the same
// per-scope lock; skipping the snapshot clear would leave stale filtered
// results visible to ordinary retrieval. Idempotent: concurrent and
// repeated calls converge on the same state.
func Unfilter(scope string) {
	lock := lockFor(scope)
	lock.Lock()
	defer lock.Unlock()

	states.Store(scope, StateUnfiltering)

	if t := fieldFilters.Load(); hasEntry(t, scope) {
		fieldFilters.Store(without(t, scope))
	}
	if t := methodFilters.Load(); hasEntry(t, scope) {
		methodFilters.Store(without(t, scope))
	}

	dropSnapshot(scope)
	states.Store(scope, StateUnfiltered)
}

// Suppressed returns the currently suppressed field and method names for
// a scope, sorted.
func Suppressed(scope string) (fields, methods []string) {
	return sortedNames((*fieldFilters.Load())[scope]), sortedNames((*methodFilters.Load())[scope])
}

func sortedNames(set nameSet) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func suppressedFieldSet(scope string) nameSet  { return (*fieldFilters.Load())[scope] }
func suppressedMethodSet(scope string) nameSet { return (*methodFilters.Load())[scope] }
