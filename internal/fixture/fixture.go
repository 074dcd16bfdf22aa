// Package fixture provides types with unexported members for exercising
// the broker from a foreign package.
package fixture

// Vault is a scope with a mix of exported and unexported members.
type Vault struct {
	Label  string
	secret string
	combo  int
}

// NewVault returns a vault holding the given hidden state.
func NewVault(label, secret string, combo int) Vault {
	return Vault{Label: label, secret: secret, combo: combo}
}

// Secret exposes the hidden string for test assertions only.
func (v Vault) Secret() string { return v.secret }

// Combo exposes the hidden int for test assertions only.
func (v Vault) Combo() int { return v.combo }

// Inner declares an unexported field that Outer promotes.
type Inner struct {
	hidden string
}

// NewInner returns an Inner holding the given hidden state.
func NewInner(hidden string) Inner { return Inner{hidden: hidden} }

// Outer embeds Inner, so "hidden" is reachable as a promoted field.
type Outer struct {
	Inner
	Tag string
}

// PtrOuter embeds *Inner; the promotion path to "hidden" exists only while
// the pointer is non-nil.
type PtrOuter struct {
	*Inner
	Tag string
}
