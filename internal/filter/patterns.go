package filter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Patterns holds suppression entries organized by member kind, keyed by
// scope key (pkgpath.TypeName).
type Patterns struct {
	Fields  map[string][]string `yaml:"fields"`
	Methods map[string][]string `yaml:"methods"`
}

// DefaultPatterns are the built-in suppressions, applied at process start.
// They hide runtime-critical state and unsafe escape hatches from ordinary
// enumeration; unfiltering a scope removes them for the process lifetime.
var DefaultPatterns = Patterns{
	Fields: map[string][]string{
		"sync.Mutex":      {"state", "sema"},
		"sync.RWMutex":    {"w", "writerSem", "readerSem", "readerCount", "readerWait"},
		"sync.Once":       {"done", "m"},
		"reflect.Value":   {"typ_", "ptr", "flag"},
		"strings.Builder": {"addr", "buf"},
	},
	Methods: map[string][]string{
		"reflect.Value": {"UnsafeAddr", "UnsafePointer"},
		"os.File":       {"Fd"},
	},
}

// Load reads suppression patterns from a YAML file. A missing file yields
// empty patterns and no error; malformed YAML is an error.
func Load(path string) (Patterns, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Patterns{}, nil
		}
		return Patterns{}, fmt.Errorf("filter: read patterns: %w", err)
	}

	var p Patterns
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Patterns{}, fmt.Errorf("filter: parse patterns %q: %w", path, err)
	}
	return p, nil
}

// Apply registers every entry in p. Scopes already unfiltered stay
// unfiltered.
func Apply(p Patterns) {
	scopes := make(map[string]bool, len(p.Fields)+len(p.Methods))
	for scope := range p.Fields {
		scopes[scope] = true
	}
	for scope := range p.Methods {
		scopes[scope] = true
	}
	for scope := range scopes {
		Register(scope, p.Fields[scope], p.Methods[scope])
	}
}

// Scopes returns the number of distinct scopes the patterns cover.
func (p Patterns) Scopes() int {
	scopes := make(map[string]bool, len(p.Fields)+len(p.Methods))
	for s := range p.Fields {
		scopes[s] = true
	}
	for s := range p.Methods {
		scopes[s] = true
	}
	return len(scopes)
}
