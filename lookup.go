package prybar

import (
	"fmt"
	"reflect"

	"github.com/prybar-dev/prybar/internal/member"
	"github.com/prybar-dev/prybar/internal/policy"
	"github.com/prybar-dev/prybar/internal/trust"
)

// resolve normalizes a lookup target into its scope type and base value.
// Pass a pointer when the member must be writable.
func resolve(target any) (reflect.Type, reflect.Value, error) {
	rv := reflect.ValueOf(target)
	if !rv.IsValid() {
		return nil, reflect.Value{}, fmt.Errorf("prybar: target must not be nil")
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, reflect.Value{}, fmt.Errorf("prybar: target pointer must not be nil")
		}
		rv = rv.Elem()
	}
	return rv.Type(), rv, nil
}

// FieldOf returns a handle to the named field of target, unexported
// fields included. The handle starts out access-checked; force it or use
// the checked read path. Lookup failures report ErrMemberNotFound.
func FieldOf(target any, name string) (*Member, error) {
	t, base, err := resolve(target)
	if err != nil {
		return nil, err
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("prybar: field %q: scope %s is not a struct: %w", name, trust.ScopeKey(t), ErrMemberNotFound)
	}
	m, err := member.Field(t, base, name)
	if err != nil {
		return nil, err
	}
	return &Member{inner: m}, nil
}

// MethodOf returns a handle to the named method of target. The Go runtime
// publishes no reflect handles for unexported methods; those report
// ErrMemberNotFound.
func MethodOf(target any, name string) (*Member, error) {
	t, base, err := resolve(target)
	if err != nil {
		return nil, err
	}
	m, err := member.Method(t, base, name)
	if err != nil {
		return nil, err
	}
	return &Member{inner: m}, nil
}

// Read returns the member's current value via the ordinary path. A handle
// that is still access-checked reports ErrInaccessible.
func Read(m *Member) (any, error) {
	return member.Read(m.inner)
}

// Write stores v into the member. A handle that has been forced
// accessible is usable without further checks; otherwise the caller's
// package must have the member's package opened to it and restricted
// access enabled for its module.
func Write(m *Member, v any) error {
	if !member.IsAccessible(m.inner) {
		caller := policy.CallerPackage(1)
		owner := m.inner.Owner().PkgPath()
		if !policy.MayWrite(caller, owner) {
			return fmt.Errorf("prybar: write %s.%s from %s: %w", m.Scope(), m.Name(), caller, ErrAccessDenied)
		}
		if caller != owner && !policy.RestrictedAllowed(caller) {
			return fmt.Errorf("prybar: write %s.%s from %s: restricted access not enabled: %w", m.Scope(), m.Name(), caller, ErrAccessDenied)
		}
	}
	return member.Write(m.inner, v)
}

// Call invokes a method member and returns its results.
func Call(m *Member, args ...any) ([]any, error) {
	return member.Call(m.inner, args...)
}

// ReadField is the forced convenience path: look up the field, force it
// accessible, and read it.
func ReadField(target any, name string) (any, error) {
	m, err := FieldOf(target, name)
	if err != nil {
		return nil, err
	}
	ForceAccessible(m, true)
	return Read(m)
}

// WriteField is the forced convenience path: look up the field, force it
// accessible, and write it. Target must be a pointer.
func WriteField(target any, name string, v any) error {
	m, err := FieldOf(target, name)
	if err != nil {
		return err
	}
	ForceAccessible(m, true)
	return member.Write(m.inner, v)
}

// TryRead is the ordinary checked path: it consults the package policy
// with the caller's package and reads the field only if the policy
// permits. Unexported members of foreign packages report ErrAccessDenied
// unless their package has been exported or opened to the caller.
func TryRead(target any, name string) (any, error) {
	t, base, err := resolve(target)
	if err != nil {
		return nil, err
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("prybar: field %q: scope %s is not a struct: %w", name, trust.ScopeKey(t), ErrMemberNotFound)
	}
	m, err := member.Field(t, base, name)
	if err != nil {
		return nil, err
	}

	if member.IsAccessible(m) {
		return member.Read(m)
	}

	caller := policy.CallerPackage(1)
	owner := t.PkgPath()
	if !policy.MayRead(caller, owner) {
		return nil, fmt.Errorf("prybar: read %s.%s from %s: %w", trust.ScopeKey(t), name, caller, ErrAccessDenied)
	}

	// Policy granted: satisfy the read through the trusted context for
	// the member's own scope.
	trust.ContextFor(t)
	member.ForceAccessible(m, true)
	return member.Read(m)
}

// TryWrite is the ordinary checked mutation path: the member's package
// must be opened to the caller and the caller's module granted restricted
// access. Target must be a pointer.
func TryWrite(target any, name string, v any) error {
	m, err := FieldOf(target, name)
	if err != nil {
		return err
	}
	if !member.IsAccessible(m.inner) {
		caller := policy.CallerPackage(1)
		owner := m.inner.Owner().PkgPath()
		if !policy.MayWrite(caller, owner) {
			return fmt.Errorf("prybar: write %s.%s from %s: %w", m.Scope(), m.Name(), caller, ErrAccessDenied)
		}
		if caller != owner && !policy.RestrictedAllowed(caller) {
			return fmt.Errorf("prybar: write %s.%s from %s: restricted access not enabled: %w", m.Scope(), m.Name(), caller, ErrAccessDenied)
		}
	}
	return member.Write(m.inner, v)
}
