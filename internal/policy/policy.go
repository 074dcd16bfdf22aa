// Package policy holds the process-wide package access policy: which
// packages have been exported (read visibility) or opened (read and write
// visibility) to which callers, and which modules may use restricted
// operations. The checked lookup paths consult it; the forced paths do
// not. Exactly one policy exists per process, registered into
// internal/access at link time.
package policy

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/prybar-dev/prybar/internal/access"
)

// ErrAccessDenied marks a checked operation rejected by the current
// policy. Recoverable: export or open the package, or force the handle.
var ErrAccessDenied = errors.New("access denied by package policy")

// grants records to whom a single package has been made visible.
type grants struct {
	all        bool
	allUnnamed bool
	targets    map[string]bool
}

func (g *grants) permit(target string) {
	if g.targets == nil {
		g.targets = make(map[string]bool)
	}
	g.targets[target] = true
}

func (g *grants) permits(caller string) bool {
	if g == nil {
		return false
	}
	if g.all {
		return true
	}
	if g.allUnnamed && Unnamed(caller) {
		return true
	}
	return g.targets[caller]
}

// Policy is the mutable access table. Mutations validate their inputs and
// propagate failures verbatim; a rejected mutation is never retried.
type Policy struct {
	mu         sync.RWMutex
	exports    map[string]*grants
	opens      map[string]*grants
	restricted map[string]bool
	sink       Sink
}

// Sink receives one record per applied policy mutation.
type Sink interface {
	RecordMutation(op, source, pkg, target string) error
}

var std = &Policy{
	exports:    make(map[string]*grants),
	opens:      make(map[string]*grants),
	restricted: make(map[string]bool),
}

func init() {
	access.Set(std)
}

// SetSink installs the mutation audit sink on the process policy.
// A nil sink disables recording.
func SetSink(s Sink) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.sink = s
}

func validate(source, pkg string) error {
	if source == "" {
		return fmt.Errorf("policy: source module must not be empty")
	}
	if pkg == "" {
		return fmt.Errorf("policy: package must not be empty")
	}
	if pkg != source && !strings.HasPrefix(pkg, source+"/") {
		return fmt.Errorf("policy: package %q does not belong to module %q", pkg, source)
	}
	return nil
}

func (p *Policy) record(op, source, pkg, target string) error {
	if p.sink == nil {
		return nil
	}
	if err := p.sink.RecordMutation(op, source, pkg, target); err != nil {
		return fmt.Errorf("policy: audit %s: %w", op, err)
	}
	return nil
}

func (p *Policy) grantsFor(table map[string]*grants, pkg string) *grants {
	g := table[pkg]
	if g == nil {
		g = &grants{}
		table[pkg] = g
	}
	return g
}

// AddExports grants read visibility of pkg in module source to target.
func (p *Policy) AddExports(source, pkg, target string) error {
	if err := validate(source, pkg); err != nil {
		return err
	}
	if target == "" {
		return fmt.Errorf("policy: export target must not be empty")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.grantsFor(p.exports, pkg).permit(target)
	return p.record("export", source, pkg, target)
}

// AddExportsToAllUnnamed grants read visibility of pkg to every unnamed
// (non domain-qualified) package.
func (p *Policy) AddExportsToAllUnnamed(source, pkg string) error {
	if err := validate(source, pkg); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.grantsFor(p.exports, pkg).allUnnamed = true
	return p.record("export", source, pkg, "ALL-UNNAMED")
}

// AddExportsUnconditional grants read visibility of pkg to every caller.
func (p *Policy) AddExportsUnconditional(source, pkg string) error {
	if err := validate(source, pkg); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.grantsFor(p.exports, pkg).all = true
	return p.record("export", source, pkg, "ALL")
}

// AddOpens grants read and write visibility of pkg to target.
func (p *Policy) AddOpens(source, pkg, target string) error {
	if err := validate(source, pkg); err != nil {
		return err
	}
	if target == "" {
		return fmt.Errorf("policy: open target must not be empty")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.grantsFor(p.opens, pkg).permit(target)
	return p.record("open", source, pkg, target)
}

// AddOpensToAllUnnamed grants read and write visibility of pkg to every
// unnamed package.
func (p *Policy) AddOpensToAllUnnamed(source, pkg string) error {
	if err := validate(source, pkg); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.grantsFor(p.opens, pkg).allUnnamed = true
	return p.record("open", source, pkg, "ALL-UNNAMED")
}

// AddOpensUnconditional grants read and write visibility of pkg to every
// caller.
func (p *Policy) AddOpensUnconditional(source, pkg string) error {
	if err := validate(source, pkg); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.grantsFor(p.opens, pkg).all = true
	return p.record("open", source, pkg, "ALL")
}

// AddEnableRestricted allows callers within module to use restricted
// operations (the unsafe write-alias path) on packages opened to them.
func (p *Policy) AddEnableRestricted(module string) error {
	if module == "" {
		return fmt.Errorf("policy: module must not be empty")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.restricted[module] = true
	return p.record("enable-restricted", module, "", "")
}

// MayRead reports whether caller may read unexported members of owner.
// A package may always read itself; opens imply exports.
func MayRead(caller, owner string) bool {
	if caller == owner || owner == "" {
		return true
	}
	std.mu.RLock()
	defer std.mu.RUnlock()
	return std.exports[owner].permits(caller) || std.opens[owner].permits(caller)
}

// MayWrite reports whether caller may mutate unexported members of owner.
func MayWrite(caller, owner string) bool {
	if caller == owner || owner == "" {
		return true
	}
	std.mu.RLock()
	defer std.mu.RUnlock()
	return std.opens[owner].permits(caller)
}

// RestrictedAllowed reports whether the caller's package lies within a
// module that has been granted restricted-operation access. A package is
// always allowed restricted operations on itself, so own-package callers
// need no grant.
func RestrictedAllowed(caller string) bool {
	std.mu.RLock()
	defer std.mu.RUnlock()
	for m := range std.restricted {
		if caller == m || strings.HasPrefix(caller, m+"/") {
			return true
		}
	}
	return false
}

// Unnamed reports whether a package path is not domain-qualified: its
// first element carries no dot ("main", "mytool/internal/x"). These are
// the Go analogue of callers with no module identity of their own.
func Unnamed(pkg string) bool {
	first := pkg
	if i := strings.IndexByte(pkg, '/'); i >= 0 {
		first = pkg[:i]
	}
	return !strings.Contains(first, ".")
}
