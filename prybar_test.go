package prybar

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prybar-dev/prybar/internal/audit"
	"github.com/prybar-dev/prybar/internal/fixture"
)

const (
	selfPkg    = "github.com/prybar-dev/prybar"
	fixturePkg = "github.com/prybar-dev/prybar/internal/fixture"
)

func TestProbe(t *testing.T) {
	if err := Probe(); err != nil {
		t.Fatalf("Probe: %v", err)
	}
}

func TestForcedReadBypassesAccessCheck(t *testing.T) {
	v := fixture.NewVault("prod", "hunter2", 1234)

	m, err := FieldOf(&v, "secret")
	if err != nil {
		t.Fatalf("FieldOf: %v", err)
	}
	if IsAccessible(m) {
		t.Fatal("foreign unexported field should start inaccessible")
	}
	if _, err := Read(m); !errors.Is(err, ErrInaccessible) {
		t.Fatalf("expected ErrInaccessible before forcing, got %v", err)
	}

	ForceAccessible(m, true)

	got, err := Read(m)
	if err != nil {
		t.Fatalf("Read after force: %v", err)
	}
	if got.(string) != "hunter2" {
		t.Fatalf("read %v, want hunter2", got)
	}

	ForceAccessible(m, false)
	if _, err := Read(m); !errors.Is(err, ErrInaccessible) {
		t.Fatal("revoking accessibility should restore the check")
	}
}

func TestForcedWriteBypassesPolicy(t *testing.T) {
	v := fixture.NewVault("prod", "s", 1111)

	m, err := FieldOf(&v, "combo")
	if err != nil {
		t.Fatalf("FieldOf: %v", err)
	}
	ForceAccessible(m, true)

	if err := Write(m, 2222); err != nil {
		t.Fatalf("Write on forced handle: %v", err)
	}
	if v.Combo() != 2222 {
		t.Fatalf("combo = %d, want 2222", v.Combo())
	}
}

func TestReadWriteFieldConvenience(t *testing.T) {
	v := fixture.NewVault("prod", "swordfish", 1)

	got, err := ReadField(&v, "secret")
	if err != nil {
		t.Fatalf("ReadField: %v", err)
	}
	if got.(string) != "swordfish" {
		t.Fatalf("ReadField = %v", got)
	}

	if err := WriteField(&v, "secret", "rosebud"); err != nil {
		t.Fatalf("WriteField: %v", err)
	}
	if v.Secret() != "rosebud" {
		t.Fatalf("secret = %q after WriteField", v.Secret())
	}
}

func TestFieldOfNotFound(t *testing.T) {
	v := fixture.NewVault("a", "b", 0)
	if _, err := FieldOf(&v, "nonexistent"); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
	if _, err := FieldOf(42, "anything"); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("non-struct scope should report ErrMemberNotFound, got %v", err)
	}
	if _, err := FieldOf(nil, "anything"); err == nil {
		t.Fatal("nil target should be an error")
	}
}

func TestMethodOfAndCall(t *testing.T) {
	v := fixture.NewVault("a", "classified", 0)

	m, err := MethodOf(&v, "Secret")
	if err != nil {
		t.Fatalf("MethodOf: %v", err)
	}
	if m.IsField() {
		t.Fatal("method handle should not be field-like")
	}

	out, err := Call(m)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(out) != 1 || out[0].(string) != "classified" {
		t.Fatalf("Call = %v", out)
	}

	if _, err := MethodOf(&v, "Vanish"); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestGetRootForPromotedField(t *testing.T) {
	o := fixture.Outer{Inner: fixture.NewInner("deep"), Tag: "x"}

	view, err := FieldOf(&o, "hidden")
	if err != nil {
		t.Fatalf("FieldOf(hidden): %v", err)
	}

	root, ok := GetRoot(view)
	if !ok {
		t.Fatal("promoted field should expose its canonical root")
	}
	if root.Scope() != fixturePkg+".Inner" {
		t.Fatalf("root scope = %q", root.Scope())
	}
	if _, ok := GetRoot(root); ok {
		t.Fatal("canonical member must not have a root")
	}

	// Forcing the view forces the root first.
	ForceAccessible(view, true)
	if !IsAccessible(root) {
		t.Fatal("root should be accessible after forcing the view")
	}
	got, err := Read(view)
	if err != nil || got.(string) != "deep" {
		t.Fatalf("Read(view) = (%v, %v)", got, err)
	}

	direct, err := FieldOf(&o, "Tag")
	if err != nil {
		t.Fatalf("FieldOf(Tag): %v", err)
	}
	if _, ok := GetRoot(direct); ok {
		t.Fatal("directly declared field must not have a root")
	}
}

func TestFieldOfNilEmbeddedPointer(t *testing.T) {
	o := fixture.PtrOuter{Tag: "x"}
	if _, err := FieldOf(&o, "hidden"); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("lookup through a nil embedded pointer should report ErrMemberNotFound, got %v", err)
	}
}

func TestCheckedReadFollowsPolicy(t *testing.T) {
	v := fixture.NewVault("prod", "letmein", 9)

	// Exported members pass the checked path with no grant.
	got, err := TryRead(&v, "Label")
	if err != nil || got.(string) != "prod" {
		t.Fatalf("TryRead(Label) = (%v, %v)", got, err)
	}

	// Unexported members of a foreign package are denied until granted.
	if _, err := TryRead(&v, "secret"); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	if err := ExportPackage(selfPkg, fixturePkg, selfPkg); err != nil {
		t.Fatalf("ExportPackage: %v", err)
	}

	got, err = TryRead(&v, "secret")
	if err != nil {
		t.Fatalf("TryRead after export: %v", err)
	}
	if got.(string) != "letmein" {
		t.Fatalf("TryRead = %v", got)
	}

	// Export grants read visibility only.
	if err := TryWrite(&v, "combo", 1); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("write should stay denied after export, got %v", err)
	}

	if err := OpenPackage(selfPkg, fixturePkg, selfPkg); err != nil {
		t.Fatalf("OpenPackage: %v", err)
	}

	// Opened, but the caller's module has no restricted-operation grant.
	if err := TryWrite(&v, "combo", 1); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("write should stay denied without restricted access, got %v", err)
	}

	if err := EnableRestrictedAccess(selfPkg); err != nil {
		t.Fatalf("EnableRestrictedAccess: %v", err)
	}

	if err := TryWrite(&v, "combo", 777); err != nil {
		t.Fatalf("TryWrite after open + restricted: %v", err)
	}
	if v.Combo() != 777 {
		t.Fatalf("combo = %d, want 777", v.Combo())
	}
}

func TestExportPackageValidation(t *testing.T) {
	if err := ExportPackage(selfPkg, "example.com/foreign/pkg", selfPkg); err == nil {
		t.Fatal("exporting a package outside the source module should fail")
	}
}

type treasury struct {
	Name   string
	ledger string
	pin    int
}

func (tr *treasury) Audit() string { return tr.ledger }

func TestUnfilterScopeScenario(t *testing.T) {
	FilterScope(treasury{}, []string{"ledger", "pin"}, nil)

	got := ListFields(treasury{})
	if !equal(got, []string{"Name"}) {
		t.Fatalf("filtered fields = %v, want [Name]", got)
	}
	fields, _ := SuppressedMembers(treasury{})
	if !equal(fields, []string{"ledger", "pin"}) {
		t.Fatalf("suppressed = %v", fields)
	}

	UnfilterScope(treasury{})

	got = ListFields(treasury{})
	if !equal(got, []string{"Name", "ledger", "pin"}) {
		t.Fatalf("unfiltered fields = %v", got)
	}
	if fields, _ := SuppressedMembers(treasury{}); len(fields) != 0 {
		t.Fatalf("suppression survived unfilter: %v", fields)
	}

	// One-way: re-registering suppression on an unfiltered scope is a no-op.
	FilterScope(treasury{}, []string{"ledger"}, nil)
	if got := ListFields(treasury{}); !equal(got, []string{"Name", "ledger", "pin"}) {
		t.Fatalf("scope re-filtered after unfilter: %v", got)
	}

	methods := ListMethods(treasury{})
	if !equal(methods, []string{"Audit"}) {
		t.Fatalf("methods = %v, want [Audit]", methods)
	}
	members := ListMembers(&treasury{})
	if !equal(members, []string{"Name", "ledger", "pin", "Audit"}) {
		t.Fatalf("members = %v", members)
	}
}

func TestScopeKey(t *testing.T) {
	want := selfPkg + ".treasury"
	if got := ScopeKey(treasury{}); got != want {
		t.Errorf("ScopeKey(value) = %q, want %q", got, want)
	}
	if got := ScopeKey(&treasury{}); got != want {
		t.Errorf("ScopeKey(pointer) = %q, want %q", got, want)
	}
}

func TestAuditTrailForMutations(t *testing.T) {
	path := t.TempDir() + "/audit.jsonl"
	if err := SetAuditLog(path); err != nil {
		t.Fatalf("SetAuditLog: %v", err)
	}

	if err := ExportPackage(selfPkg, fixturePkg, "ALL-UNNAMED"); err != nil {
		t.Fatalf("ExportPackage: %v", err)
	}
	if err := OpenPackage(selfPkg, fixturePkg); err != nil {
		t.Fatalf("OpenPackage: %v", err)
	}

	if err := CloseAuditLog(); err != nil {
		t.Fatalf("CloseAuditLog: %v", err)
	}

	result := audit.Verify(path)
	if !result.Valid {
		t.Fatalf("audit chain should verify: %+v", result)
	}
	if result.Lines != 2 {
		t.Fatalf("Lines = %d, want 2", result.Lines)
	}
}

func TestAuditLogHolderConcurrent(t *testing.T) {
	dir := t.TempDir()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			path := fmt.Sprintf("%s/audit-%d.jsonl", dir, n)
			for j := 0; j < 10; j++ {
				if err := SetAuditLog(path); err != nil {
					t.Errorf("SetAuditLog: %v", err)
					return
				}
				if err := CloseAuditLog(); err != nil {
					t.Errorf("CloseAuditLog: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	if err := CloseAuditLog(); err != nil {
		t.Fatalf("final CloseAuditLog: %v", err)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
