// Package bridge produces the bound policy handle set without a
// compile-time reference to the policy type. It reaches the singleton
// through the internal/access registration point; if nothing registered
// there, the broker cannot expand privileges at all and the failure is
// fatal. The binding runs exactly once per process.
package bridge

import (
	"errors"
	"fmt"

	"github.com/prybar-dev/prybar/internal/access"
	"github.com/prybar-dev/prybar/internal/lazy"
)

// ErrUnavailable is wrapped when no policy mutation surface was registered
// in this process. Bootstrap-fatal: there is no fallback access mechanism.
var ErrUnavailable = errors.New("bridge: policy mutation surface is not registered")

// Handles is the immutable set of early-bound policy-mutation callables.
// Constructed lazily on first use, exactly once per process.
type Handles struct {
	ExportTo            func(source, pkg, target string) error
	ExportToAllUnnamed  func(source, pkg string) error
	ExportUnconditional func(source, pkg string) error
	OpenTo              func(source, pkg, target string) error
	OpenToAllUnnamed    func(source, pkg string) error
	OpenUnconditional   func(source, pkg string) error
	EnableRestricted    func(module string) error
}

var bound = lazy.Of(bind)

// Get returns the process handle set, binding it on first call. A failed
// bind is cached; the bind is never retried.
func Get() (*Handles, error) {
	return bound.Get()
}

func bind() (*Handles, error) {
	m := access.Get()
	if m == nil {
		return nil, fmt.Errorf("bind policy handles: %w", ErrUnavailable)
	}
	return &Handles{
		ExportTo:            m.AddExports,
		ExportToAllUnnamed:  m.AddExportsToAllUnnamed,
		ExportUnconditional: m.AddExportsUnconditional,
		OpenTo:              m.AddOpens,
		OpenToAllUnnamed:    m.AddOpensToAllUnnamed,
		OpenUnconditional:   m.AddOpensUnconditional,
		EnableRestricted:    m.AddEnableRestricted,
	}, nil
}
