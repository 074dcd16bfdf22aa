package prybar

import (
	"fmt"
	"sync"

	"github.com/prybar-dev/prybar/internal/audit"
	"github.com/prybar-dev/prybar/internal/bridge"
	"github.com/prybar-dev/prybar/internal/policy"
)

// ExportPackage grants read visibility of pkg in module source. With no
// target the export is unconditional; otherwise each target package
// receives the grant. The special target "ALL-UNNAMED" grants every
// package without a domain-qualified module identity.
func ExportPackage(source, pkg string, target ...string) error {
	h, err := bridge.Get()
	if err != nil {
		return err
	}
	if len(target) == 0 {
		return h.ExportUnconditional(source, pkg)
	}
	for _, t := range target {
		if t == "ALL-UNNAMED" {
			if err := h.ExportToAllUnnamed(source, pkg); err != nil {
				return err
			}
			continue
		}
		if err := h.ExportTo(source, pkg, t); err != nil {
			return err
		}
	}
	return nil
}

// OpenPackage grants read and write visibility of pkg in module source.
// Target handling matches ExportPackage.
func OpenPackage(source, pkg string, target ...string) error {
	h, err := bridge.Get()
	if err != nil {
		return err
	}
	if len(target) == 0 {
		return h.OpenUnconditional(source, pkg)
	}
	for _, t := range target {
		if t == "ALL-UNNAMED" {
			if err := h.OpenToAllUnnamed(source, pkg); err != nil {
				return err
			}
			continue
		}
		if err := h.OpenTo(source, pkg, t); err != nil {
			return err
		}
	}
	return nil
}

// EnableRestrictedAccess allows callers within module to use restricted
// operations on packages opened to them.
func EnableRestrictedAccess(module string) error {
	h, err := bridge.Get()
	if err != nil {
		return err
	}
	return h.EnableRestricted(module)
}

var (
	auditMu  sync.Mutex
	auditLog *audit.Log
)

// SetAuditLog opens a hash-chained JSONL audit log at path and records
// every subsequent policy mutation into it. Replaces and closes any log
// set earlier. Safe for concurrent use with CloseAuditLog.
func SetAuditLog(path string) error {
	l, err := audit.Open(path)
	if err != nil {
		return fmt.Errorf("prybar: %w", err)
	}
	auditMu.Lock()
	defer auditMu.Unlock()
	if auditLog != nil {
		auditLog.Close()
	}
	auditLog = l
	policy.SetSink(l)
	return nil
}

// CloseAuditLog detaches and closes the audit log, if one is set.
func CloseAuditLog() error {
	auditMu.Lock()
	defer auditMu.Unlock()
	if auditLog == nil {
		return nil
	}
	policy.SetSink(nil)
	err := auditLog.Close()
	auditLog = nil
	return err
}
