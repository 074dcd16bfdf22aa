// Package prybar pries open the Go runtime's reflection access controls.
//
// The broker locates a trusted execution context, overwrites the
// accessibility flag of access-checked member handles, maintains a
// process-wide package visibility policy consulted by the checked lookup
// paths, and invalidates the suppression registry that hides member names
// from ordinary enumeration.
//
// Operations are synchronous and safe for concurrent use. The one-time
// runtime layout probe is bootstrap-fatal: if the running Go runtime does
// not match the expected reflect.Value layout, the first broker operation
// panics with an error wrapping ErrIncompatibleRuntime, and Probe reports
// the same failure without panicking.
package prybar

import (
	"reflect"

	"github.com/prybar-dev/prybar/internal/bridge"
	"github.com/prybar-dev/prybar/internal/member"
	"github.com/prybar-dev/prybar/internal/policy"
	"github.com/prybar-dev/prybar/internal/trust"
)

// Sentinel errors of the broker. Wrapped errors can be tested with
// errors.Is.
var (
	// ErrIncompatibleRuntime: the reflect.Value layout probe failed.
	// Bootstrap-fatal and non-recoverable.
	ErrIncompatibleRuntime = trust.ErrIncompatibleRuntime

	// ErrBridgeUnavailable: no policy mutation surface was registered.
	// Bootstrap-fatal and non-recoverable.
	ErrBridgeUnavailable = bridge.ErrUnavailable

	// ErrMemberNotFound: the requested member does not exist in the
	// target scope. Recoverable.
	ErrMemberNotFound = member.ErrNotFound

	// ErrAccessDenied: a checked operation was rejected by the current
	// package policy. Recoverable.
	ErrAccessDenied = policy.ErrAccessDenied

	// ErrInaccessible: ordinary use of a handle that is still
	// access-checked. Force it first.
	ErrInaccessible = member.ErrInaccessible
)

// Member is a handle to a field or method of a scope, carrying an
// accessibility flag and, for handles obtained through a derived view, a
// back-reference to the canonical declaration.
type Member struct {
	inner *member.Member
}

// Name returns the member's declared name.
func (m *Member) Name() string { return m.inner.Name() }

// Scope returns the scope key of the type the member was obtained from.
func (m *Member) Scope() string { return trust.ScopeKey(m.inner.Owner()) }

// IsField reports whether the member is field-like.
func (m *Member) IsField() bool { return m.inner.Kind() == member.KindField }

// Probe validates the running runtime against the broker's layout
// expectations. The underlying check runs once per process.
func Probe() error {
	return trust.Probe()
}

// ForceAccessible overwrites the member's accessibility flag, bypassing
// the caller-sensitive check the ordinary API performs. When the member
// is a derived view, its canonical root is forced first. Idempotent.
func ForceAccessible(m *Member, accessible bool) {
	member.ForceAccessible(m.inner, accessible)
}

// ForceAllAccessible applies ForceAccessible to each member in turn.
func ForceAllAccessible(accessible bool, members ...*Member) {
	for _, m := range members {
		member.ForceAccessible(m.inner, accessible)
	}
}

// IsAccessible reports whether ordinary use of the handle would pass the
// runtime's access check.
func IsAccessible(m *Member) bool {
	return member.IsAccessible(m.inner)
}

// GetRoot returns the canonical backing member and true, or nil and false
// when m already is the canonical declaration. Pure.
func GetRoot(m *Member) (*Member, bool) {
	if r := member.Root(m.inner); r != nil {
		return &Member{inner: r}, true
	}
	return nil, false
}

// ScopeKey returns the canonical scope identifier for a value or type:
// pkgpath.TypeName. Accepts a reflect.Type or any value.
func ScopeKey(scope any) string {
	return trust.ScopeKey(typeOf(scope))
}

func typeOf(scope any) reflect.Type {
	if t, ok := scope.(reflect.Type); ok {
		return t
	}
	return reflect.TypeOf(scope)
}
