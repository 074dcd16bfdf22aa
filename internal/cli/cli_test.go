package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prybar-dev/prybar/internal/audit"
)

func TestPolicyValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filters.yaml")
	content := "fields:\n  example.com/cfg.Account:\n    - pin\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := policyValidateCmd.RunE(policyValidateCmd, []string{path}); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestPolicyValidateMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filters.yaml")
	if err := os.WriteFile(path, []byte("fields: [broken"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := policyValidateCmd.RunE(policyValidateCmd, []string{path}); err == nil {
		t.Fatal("malformed config should fail validation")
	}
}

func TestAuditVerifyCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	l, err := audit.Open(path)
	if err != nil {
		t.Fatalf("audit.Open: %v", err)
	}
	if err := l.RecordMutation("export", "m", "m/p", "t"); err != nil {
		t.Fatalf("RecordMutation: %v", err)
	}
	l.Close()

	if err := auditVerifyCmd.RunE(auditVerifyCmd, []string{path}); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestAuditVerifyBrokenChain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	line := `{"ts":"2026-01-01T00:00:00.000Z","op":"export","source":"m","prev_hash":"sha256:bogus"}` + "\n"
	if err := os.WriteFile(path, []byte(line), 0o600); err != nil {
		t.Fatalf("write log: %v", err)
	}

	if err := auditVerifyCmd.RunE(auditVerifyCmd, []string{path}); err == nil {
		t.Fatal("broken chain should fail verification")
	}
}

func TestDoctorPasses(t *testing.T) {
	if err := runDoctor(doctorCmd, nil); err != nil {
		t.Fatalf("doctor: %v", err)
	}
}
