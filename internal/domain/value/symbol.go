package value

import (
	"fmt"
	"strings"

	"github.com/formulaeditor/formulaeditor/internal/shared/functional"
	"golang.org/x/text/unicode/norm"
)

// Symbol describes the three renderings of an operator or keyword.
// Onscreen holds the surface tokens (prefix, infix, postfix or bracket parts),
// OpenMath an optional element template and MathML one fragment per token.
// Symbols are immutable; accessors hand out copies.
type Symbol struct {
	onscreen []string
	openmath string
	mathml   []string
}

// NewSymbol validates and creates a Symbol. Tokens are NFC-normalised so that
// they compare equal to normalised input text.
func NewSymbol(onscreen []string, openmath string, mathml []string) functional.Result[Symbol] {
	if len(onscreen) > 0 && len(mathml) > 0 && len(onscreen) != len(mathml) {
		return functional.Err[Symbol](fmt.Errorf(
			"symbol %q: %d on-screen tokens but %d MathML fragments",
			strings.Join(onscreen, " "), len(onscreen), len(mathml)))
	}

	s := Symbol{
		onscreen: make([]string, len(onscreen)),
		openmath: openmath,
		mathml:   make([]string, len(mathml)),
	}
	for i, tok := range onscreen {
		s.onscreen[i] = norm.NFC.String(tok)
	}
	copy(s.mathml, mathml)

	return functional.Ok(s)
}

// MustSymbol is NewSymbol for literal catalog entries; it panics on invalid input.
func MustSymbol(onscreen []string, openmath string, mathml []string) Symbol {
	return NewSymbol(onscreen, openmath, mathml).Unwrap()
}

// Onscreen returns a copy of the on-screen tokens.
func (s Symbol) Onscreen() []string {
	out := make([]string, len(s.onscreen))
	copy(out, s.onscreen)
	return out
}

// MathML returns a copy of the MathML fragments.
func (s Symbol) MathML() []string {
	out := make([]string, len(s.mathml))
	copy(out, s.mathml)
	return out
}

// OpenMath returns the OpenMath template, empty when the default applies.
func (s Symbol) OpenMath() string {
	return s.openmath
}

// Token returns the i-th on-screen token or "" when absent.
func (s Symbol) Token(i int) string {
	if i < 0 || i >= len(s.onscreen) {
		return ""
	}
	return s.onscreen[i]
}

// MathMLAt returns the i-th MathML fragment or "" when absent.
func (s Symbol) MathMLAt(i int) string {
	if i < 0 || i >= len(s.mathml) {
		return ""
	}
	return s.mathml[i]
}

// Len is the number of on-screen token positions.
func (s Symbol) Len() int {
	return len(s.onscreen)
}

// IsZero reports whether the symbol carries no rendering at all.
func (s Symbol) IsZero() bool {
	return len(s.onscreen) == 0 && len(s.mathml) == 0 && s.openmath == ""
}

// Merge returns s with every non-empty part of override applied.
// Used by themes to replace individual renderings.
func (s Symbol) Merge(override SymbolOverride) functional.Result[Symbol] {
	onscreen, openmath, mathml := s.onscreen, s.openmath, s.mathml
	if len(override.Onscreen) > 0 {
		onscreen = override.Onscreen
	}
	if override.OpenMath != "" {
		openmath = override.OpenMath
	}
	if len(override.MathML) > 0 {
		mathml = override.MathML
	}
	return NewSymbol(onscreen, openmath, mathml)
}

// Equal reports whether two symbols render identically.
func (s Symbol) Equal(other Symbol) bool {
	return s.openmath == other.openmath &&
		equalStrings(s.onscreen, other.onscreen) &&
		equalStrings(s.mathml, other.mathml)
}

// String implements fmt.Stringer.
func (s Symbol) String() string {
	return strings.Join(s.onscreen, " ")
}

func equalStrings(a, b []string) bool {
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

// SymbolKey builds the registry key of a content dictionary symbol.
func SymbolKey(cd, name string) string {
	return cd + "__" + name
}

// SplitSymbolKey is the inverse of SymbolKey.
func SplitSymbolKey(key string) (cd, name string, ok bool) {
	return strings.Cut(key, "__")
}
