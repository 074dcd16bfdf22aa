// Package member models access-checked member handles: fields and methods
// of a scope, each carrying an accessibility flag and, for handles obtained
// through a derived view, a back-reference to the canonical declaration.
package member

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/prybar-dev/prybar/internal/trust"
)

// ErrNotFound marks a lookup for a member that does not exist in the
// target scope. Distinct and recoverable; never reported as a nil result.
var ErrNotFound = errors.New("member not found")

// ErrInaccessible marks ordinary use of a handle that is still
// access-checked. Force accessibility first, or take the checked path.
var ErrInaccessible = errors.New("member is not accessible")

// Kind distinguishes field-like from method-like members.
type Kind uint8

const (
	KindField Kind = iota + 1
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindField:
		return "field"
	case KindMethod:
		return "method"
	default:
		return "unknown"
	}
}

// Member is a handle to a field or method of a scope. The accessibility
// flag lives in the wrapped reflect.Value; root is non-nil when the handle
// was obtained through a derived view (an embedding promotion) rather than
// the canonical declaration.
type Member struct {
	name  string
	kind  Kind
	owner reflect.Type
	value reflect.Value
	index []int
	root  *Member
}

// Name returns the member's declared name.
func (m *Member) Name() string { return m.name }

// Kind returns whether the member is field-like or method-like.
func (m *Member) Kind() Kind { return m.kind }

// Owner returns the scope the handle was obtained from. For a derived
// view this is the outer scope, not the declaring one.
func (m *Member) Owner() reflect.Type { return m.owner }

// Value returns the underlying handle.
func (m *Member) Value() reflect.Value { return m.value }

// Field looks up a field named name on scope, reading through base.
// Promoted fields (reached through embedded structs) produce a derived
// view whose root is the canonical member on the declaring type. A
// promotion path through a nil embedded pointer is not traversable and
// reports ErrNotFound.
func Field(scope reflect.Type, base reflect.Value, name string) (*Member, error) {
	sf, ok := scope.FieldByName(name)
	if !ok {
		return nil, fmt.Errorf("field %q in scope %s: %w", name, trust.ScopeKey(scope), ErrNotFound)
	}
	v, err := base.FieldByIndexErr(sf.Index)
	if err != nil {
		return nil, fmt.Errorf("field %q in scope %s: nil embedded pointer on promotion path: %w",
			name, trust.ScopeKey(scope), ErrNotFound)
	}

	m := &Member{
		name:  name,
		kind:  KindField,
		owner: scope,
		value: v,
		index: sf.Index,
	}

	if len(sf.Index) > 1 {
		root, err := canonicalField(scope, base, sf.Index, name)
		if err != nil {
			return nil, fmt.Errorf("field %q in scope %s: %w", name, trust.ScopeKey(scope), ErrNotFound)
		}
		m.root = root
	}
	return m, nil
}

// canonicalField resolves the declaration-backed member behind a promoted
// field: the field as declared on the innermost embedded type.
func canonicalField(scope reflect.Type, base reflect.Value, index []int, name string) (*Member, error) {
	hostIdx := index[:len(index)-1]

	hostType := scope.FieldByIndex(hostIdx).Type
	hostVal, err := base.FieldByIndexErr(hostIdx)
	if err != nil {
		return nil, err
	}
	for hostType.Kind() == reflect.Pointer {
		if hostVal.IsNil() {
			return nil, fmt.Errorf("nil embedded pointer %s", hostType)
		}
		hostType = hostType.Elem()
		hostVal = hostVal.Elem()
	}

	rootSF, _ := hostType.FieldByName(name)
	return &Member{
		name:  name,
		kind:  KindField,
		owner: hostType,
		value: hostVal.FieldByIndex(rootSF.Index),
		index: rootSF.Index,
	}, nil
}

// Method looks up a method named name, preferring the pointer method set
// when base is addressable. The Go runtime publishes no reflect handles
// for unexported methods, so those report ErrNotFound.
func Method(scope reflect.Type, base reflect.Value, name string) (*Member, error) {
	mv := base.MethodByName(name)
	if !mv.IsValid() && base.CanAddr() {
		mv = base.Addr().MethodByName(name)
	}
	if !mv.IsValid() {
		return nil, fmt.Errorf("method %q in scope %s: %w", name, trust.ScopeKey(scope), ErrNotFound)
	}
	return &Member{
		name:  name,
		kind:  KindMethod,
		owner: scope,
		value: mv,
	}, nil
}

// ForceAccessible overwrites the member's accessibility flag through the
// trusted invocation path, skipping the caller-sensitive check the
// ordinary API performs. When a canonical root exists it is forced first
// so per-view flag state cannot drift. Idempotent.
func ForceAccessible(m *Member, accessible bool) {
	if m.root != nil {
		force(m.root, accessible)
	}
	force(m, accessible)
}

func force(m *Member, accessible bool) {
	if m.kind != KindField {
		// Method handles carry no read-only bits; nothing to overwrite.
		return
	}
	if accessible {
		trust.ClearReadOnly(&m.value)
	} else {
		trust.MarkReadOnly(&m.value)
	}
}

// ForceAll applies ForceAccessible to each member in turn. Each single
// force is O(1) after startup, so batching is plain iteration.
func ForceAll(accessible bool, members ...*Member) {
	for _, m := range members {
		ForceAccessible(m, accessible)
	}
}

// IsAccessible reports whether ordinary use of the handle would pass the
// runtime's access check.
func IsAccessible(m *Member) bool {
	if m.kind != KindField {
		return true
	}
	return !trust.ReadOnly(m.value)
}

// Root returns the canonical backing member, or nil when the handle
// already is the canonical declaration.
func Root(m *Member) *Member {
	return m.root
}
