package entity

import (
	"fmt"

	"github.com/formulaeditor/formulaeditor/internal/domain/value"
	"github.com/formulaeditor/formulaeditor/internal/shared/functional"
)

// Layout tells renderers where an operator's tokens go relative to its operands.
type Layout int

const (
	// LayoutInfix puts the token between every pair of operands.
	LayoutInfix Layout = iota
	// LayoutPrefix puts the token before the single operand.
	LayoutPrefix
	// LayoutPostfix puts the token after the single operand.
	LayoutPostfix
	// LayoutBracket uses three tokens: open, separator, close.
	LayoutBracket
	// LayoutSuperscript raises the second operand; the token is input-only.
	LayoutSuperscript
)

var layoutNames = map[Layout]string{
	LayoutInfix:       "infix",
	LayoutPrefix:      "prefix",
	LayoutPostfix:     "postfix",
	LayoutBracket:     "bracket",
	LayoutSuperscript: "superscript",
}

func (l Layout) String() string {
	if name, ok := layoutNames[l]; ok {
		return name
	}
	return fmt.Sprintf("layout(%d)", int(l))
}

// tokens is the number of on-screen tokens a layout needs.
func (l Layout) tokens() int {
	if l == LayoutBracket {
		return 3
	}
	return 1
}

// Arity bounds the number of operands. Max < 0 means unbounded.
type Arity struct {
	Min int
	Max int
}

// Unary, Binary and Nary are the common arities.
var (
	Unary  = Arity{Min: 1, Max: 1}
	Binary = Arity{Min: 2, Max: 2}
	Nary   = Arity{Min: 2, Max: -1}
)

// Accepts reports whether n operands satisfy the arity.
func (a Arity) Accepts(n int) bool {
	return n >= a.Min && (a.Max < 0 || n <= a.Max)
}

// OperatorSpec is what a module declares about an operator.
type OperatorSpec struct {
	CD         string
	Name       string
	Symbol     value.Symbol
	Precedence int
	Layout     Layout
	Arity      Arity
	// Flatten merges a+b+c into one n-ary node while parsing.
	Flatten bool
	// RightAssociative changes which operand needs grouping at equal precedence.
	RightAssociative bool
}

// Operator is the immutable descriptor shared by all operation nodes of one
// content dictionary symbol.
type Operator struct {
	spec OperatorSpec
}

// NewOperator validates a spec.
func NewOperator(spec OperatorSpec) functional.Result[*Operator] {
	if spec.CD == "" || spec.Name == "" {
		return functional.Err[*Operator](fmt.Errorf("operator needs a content dictionary and a name"))
	}
	if spec.Precedence < 0 {
		return functional.Err[*Operator](fmt.Errorf("operator %s.%s: negative precedence %d", spec.CD, spec.Name, spec.Precedence))
	}
	if want := spec.Layout.tokens(); spec.Symbol.Len() != want {
		return functional.Err[*Operator](fmt.Errorf("operator %s.%s: %s layout needs %d on-screen token(s), symbol has %d",
			spec.CD, spec.Name, spec.Layout, want, spec.Symbol.Len()))
	}
	if spec.Arity.Min < 0 || (spec.Arity.Max >= 0 && spec.Arity.Max < spec.Arity.Min) {
		return functional.Err[*Operator](fmt.Errorf("operator %s.%s: invalid arity %+v", spec.CD, spec.Name, spec.Arity))
	}
	switch spec.Layout {
	case LayoutPrefix, LayoutPostfix:
		if spec.Arity != Unary {
			return functional.Err[*Operator](fmt.Errorf("operator %s.%s: %s layout must be unary", spec.CD, spec.Name, spec.Layout))
		}
	case LayoutSuperscript:
		if spec.Arity != Binary {
			return functional.Err[*Operator](fmt.Errorf("operator %s.%s: superscript layout must be binary", spec.CD, spec.Name))
		}
	}
	return functional.Ok(&Operator{spec: spec})
}

func (o *Operator) CD() string             { return o.spec.CD }
func (o *Operator) Name() string           { return o.spec.Name }
func (o *Operator) Key() string            { return value.SymbolKey(o.spec.CD, o.spec.Name) }
func (o *Operator) Symbol() value.Symbol   { return o.spec.Symbol }
func (o *Operator) Precedence() int        { return o.spec.Precedence }
func (o *Operator) Layout() Layout         { return o.spec.Layout }
func (o *Operator) Arity() Arity           { return o.spec.Arity }
func (o *Operator) Flatten() bool          { return o.spec.Flatten }
func (o *Operator) RightAssociative() bool { return o.spec.RightAssociative }
func (o *Operator) String() string         { return o.spec.CD + "." + o.spec.Name }
