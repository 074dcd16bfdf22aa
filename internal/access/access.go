// Package access is the registration point between the policy singleton
// and the rest of the broker. The policy package installs its mutation
// surface here from its init function; the bridge retrieves it without
// holding a compile-time reference to the policy type. This is the one
// blessed accessor path — there is no fallback mechanism.
package access

import "sync"

// PolicyMutator is the runtime's internal policy-mutation surface:
// grant read visibility (exports), read+write visibility (opens), and
// restricted-operation access, each to a named target, to all unnamed
// packages, or unconditionally.
type PolicyMutator interface {
	AddExports(source, pkg, target string) error
	AddExportsToAllUnnamed(source, pkg string) error
	AddExportsUnconditional(source, pkg string) error
	AddOpens(source, pkg, target string) error
	AddOpensToAllUnnamed(source, pkg string) error
	AddOpensUnconditional(source, pkg string) error
	AddEnableRestricted(module string) error
}

var (
	mu         sync.Mutex
	registered PolicyMutator
)

// Set installs the policy mutation surface. The first registration wins;
// later calls are ignored (exactly one policy singleton exists per
// process).
func Set(m PolicyMutator) {
	mu.Lock()
	defer mu.Unlock()
	if registered == nil {
		registered = m
	}
}

// Get returns the registered surface, or nil when the policy package has
// not been linked into the process.
func Get() PolicyMutator {
	mu.Lock()
	defer mu.Unlock()
	return registered
}
