// Package trust constructs the execution contexts the broker pins its
// privileged operations to. A context answers "what may code acting as
// scope S touch" without consulting the ordinary visibility rules; the
// fully unrestricted context exists exactly once and never leaves the
// library boundary.
package trust

import (
	"reflect"
	"sync"
)

// Mode is the set of access modes a Context carries.
type Mode uint8

const (
	// ModeRead allows reading checked members.
	ModeRead Mode = 1 << iota
	// ModeWrite allows mutating checked members.
	ModeWrite
	// ModeRestricted allows the unsafe write-alias path.
	ModeRestricted
)

// Context is an opaque token granting access within a scope. The zero
// Context grants nothing.
type Context struct {
	scope string
	mode  Mode
}

// Scope returns the scope key the context is bound to. Empty for the
// internal unrestricted context.
func (c Context) Scope() string { return c.scope }

// Allows reports whether the context carries every mode in m.
func (c Context) Allows(m Mode) bool { return c.mode&m == m }

// unrestricted carries every mode and no scope binding. It is constructed
// once the layout probe passes and must never be returned to callers
// outside this module; only scope-bound derivations are handed out.
var unrestricted = Context{mode: ModeRead | ModeWrite | ModeRestricted}

var contexts sync.Map // scope key → Context

// ContextFor returns a context at least as privileged as the scope's own
// package asking for access. Contexts are created once per distinct scope
// and cached for the process lifetime.
func ContextFor(scope reflect.Type) Context {
	mustBootstrap()
	key := ScopeKey(scope)
	if c, ok := contexts.Load(key); ok {
		return c.(Context)
	}
	derived := Context{scope: key, mode: unrestricted.mode}
	actual, _ := contexts.LoadOrStore(key, derived)
	return actual.(Context)
}

// ScopeKey returns the canonical identifier for a scope: pkgpath.TypeName
// for named types, the type's string form otherwise. Pointer scopes are
// keyed by their element type.
func ScopeKey(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if pkg := t.PkgPath(); pkg != "" {
		return pkg + "." + t.Name()
	}
	return t.String()
}
