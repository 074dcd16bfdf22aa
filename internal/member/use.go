package member

import (
	"fmt"
	"reflect"

	"github.com/prybar-dev/prybar/internal/trust"
)

// Read returns the member's current value via the ordinary path. Fails
// with ErrInaccessible while the handle is still access-checked.
func Read(m *Member) (any, error) {
	if m.kind != KindField {
		return nil, fmt.Errorf("read %s %q: only fields can be read", m.kind, m.name)
	}
	if !m.value.CanInterface() {
		return nil, fmt.Errorf("read field %q of %s: %w", m.name, trust.ScopeKey(m.owner), ErrInaccessible)
	}
	return m.value.Interface(), nil
}

// Write stores v into the member through a writable alias of its backing
// storage. The member must have been obtained from an addressable base
// (a pointer to the scope value).
func Write(m *Member, v any) error {
	if m.kind != KindField {
		return fmt.Errorf("write %s %q: only fields can be written", m.kind, m.name)
	}
	alias, err := trust.WritableAlias(m.value)
	if err != nil {
		return fmt.Errorf("write field %q of %s: %w", m.name, trust.ScopeKey(m.owner), err)
	}
	nv := reflect.ValueOf(v)
	if !nv.IsValid() {
		alias.Set(reflect.Zero(m.value.Type()))
		return nil
	}
	if !nv.Type().AssignableTo(m.value.Type()) {
		return fmt.Errorf("write field %q of %s: %s is not assignable to %s",
			m.name, trust.ScopeKey(m.owner), nv.Type(), m.value.Type())
	}
	alias.Set(nv)
	return nil
}

// Call invokes a method member with args and returns its results.
func Call(m *Member, args ...any) ([]any, error) {
	if m.kind != KindMethod {
		return nil, fmt.Errorf("call %s %q: only methods can be called", m.kind, m.name)
	}
	mt := m.value.Type()
	if !mt.IsVariadic() && mt.NumIn() != len(args) {
		return nil, fmt.Errorf("call method %q of %s: got %d args, want %d",
			m.name, trust.ScopeKey(m.owner), len(args), mt.NumIn())
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		av := reflect.ValueOf(a)
		if !av.IsValid() {
			return nil, fmt.Errorf("call method %q of %s: arg %d is untyped nil", m.name, trust.ScopeKey(m.owner), i)
		}
		in[i] = av
	}

	out := m.value.Call(in)
	results := make([]any, len(out))
	for i, o := range out {
		results[i] = o.Interface()
	}
	return results, nil
}
