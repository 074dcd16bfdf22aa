package policy

import (
	"strings"
	"testing"
)

func FuzzPackageOfFunc(f *testing.F) {
	f.Add("example.com/mod/pkg.(*T).Method")
	f.Add("example.com/mod/pkg.Func.func1")
	f.Add("main.run")
	f.Add("noDotAtAll")
	f.Add("")
	f.Add("a/b/c")
	f.Add("....")

	f.Fuzz(func(t *testing.T, symbol string) {
		pkg := packageOfFunc(symbol)
		if !strings.HasPrefix(symbol, pkg) {
			t.Fatalf("packageOfFunc(%q) = %q, not a prefix of its input", symbol, pkg)
		}
		// The remainder after the package is either empty (no dot after
		// the last slash) or starts at a dot.
		rest := symbol[len(pkg):]
		if rest != "" && rest[0] != '.' {
			t.Fatalf("packageOfFunc(%q) = %q split mid-identifier", symbol, pkg)
		}
	})
}
