package filter

import (
	"reflect"
	"sort"
	"sync"

	"github.com/prybar-dev/prybar/internal/trust"
)

// snapshot is the cached result of enumerating one scope, minus its
// suppressed names at the time of computation. Dropped whenever the
// scope's suppression entry changes.
type snapshot struct {
	fields  []string
	methods []string
}

var snapshots sync.Map // scope key → *snapshot

func dropSnapshot(scope string) {
	snapshots.Delete(scope)
}

// ListFields returns the scope's field names visible under the current
// suppression map, sorted.
func ListFields(t reflect.Type) []string {
	return snapshotFor(t).fields
}

// ListMethods returns the scope's method names visible under the current
// suppression map, sorted.
func ListMethods(t reflect.Type) []string {
	return snapshotFor(t).methods
}

// ListMembers returns visible field names followed by visible method
// names.
func ListMembers(t reflect.Type) []string {
	s := snapshotFor(t)
	out := make([]string, 0, len(s.fields)+len(s.methods))
	out = append(out, s.fields...)
	out = append(out, s.methods...)
	return out
}

func snapshotFor(t reflect.Type) *snapshot {
	scope := trust.ScopeKey(t)
	if s, ok := snapshots.Load(scope); ok {
		return s.(*snapshot)
	}

	lock := lockFor(scope)
	lock.Lock()
	defer lock.Unlock()

	// Another enumerator may have filled the slot while we waited.
	if s, ok := snapshots.Load(scope); ok {
		return s.(*snapshot)
	}

	s := enumerate(t, scope)
	snapshots.Store(scope, s)
	return s
}

// enumerate lists declared fields and the pointer method set of the
// scope, dropping names present in the suppression maps.
func enumerate(t reflect.Type, scope string) *snapshot {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	s := &snapshot{}
	hiddenFields := suppressedFieldSet(scope)
	hiddenMethods := suppressedMethodSet(scope)

	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			name := t.Field(i).Name
			if _, hidden := hiddenFields[name]; hidden {
				continue
			}
			s.fields = append(s.fields, name)
		}
	}

	mt := t
	if t.Kind() != reflect.Interface {
		mt = reflect.PointerTo(t)
	}
	for i := 0; i < mt.NumMethod(); i++ {
		name := mt.Method(i).Name
		if _, hidden := hiddenMethods[name]; hidden {
			continue
		}
		s.methods = append(s.methods, name)
	}

	sort.Strings(s.fields)
	sort.Strings(s.methods)
	return s
}
