package entity

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/formulaeditor/formulaeditor/internal/domain/value"
)

// Precedences shared by the grammar and the renderers. Higher binds tighter.
const (
	PrecedenceUnaryMinus  = 140
	PrecedenceApplication = 160
	PrecedenceAtom        = 170
)

// ApplicationStyleSub renders arguments as a subscript without parentheses.
const ApplicationStyleSub = "sub"

// Kind identifies the node variant.
type Kind int

const (
	KindOperation Kind = iota
	KindApplication
	KindKeyword
	KindVariable
	KindInteger
	KindDecimal
)

func (k Kind) String() string {
	switch k {
	case KindOperation:
		return "operation"
	case KindApplication:
		return "application"
	case KindKeyword:
		return "keyword"
	case KindVariable:
		return "variable"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Node is a semantic tree node. The set of variants is closed; renderers
// switch over the concrete types. Nodes are immutable once constructed and
// exclusively own their operands.
type Node interface {
	Kind() Kind
	Precedence() int
	// Operands returns a copy of the child nodes.
	Operands() []Node
	// String is a compact structural form, e.g. plus(unary_minus(x), 1).
	String() string
	node()
}

// MultaryOperation applies an operator to one or more operands.
type MultaryOperation struct {
	operator *Operator
	operands []Node
}

// NewOperation checks the operand count against the operator's arity.
func NewOperation(op *Operator, operands ...Node) (*MultaryOperation, error) {
	if op == nil {
		return nil, fmt.Errorf("operation without operator")
	}
	if !op.Arity().Accepts(len(operands)) || hasNil(operands) {
		return nil, &MalformedOperandCount{
			Symbol: op.String(),
			Min:    op.Arity().Min,
			Max:    op.Arity().Max,
			Got:    countNonNil(operands),
		}
	}
	return &MultaryOperation{operator: op, operands: append([]Node(nil), operands...)}, nil
}

func (m *MultaryOperation) Kind() Kind           { return KindOperation }
func (m *MultaryOperation) Precedence() int      { return m.operator.Precedence() }
func (m *MultaryOperation) Operands() []Node     { return append([]Node(nil), m.operands...) }
func (m *MultaryOperation) Operator() *Operator  { return m.operator }
func (m *MultaryOperation) Symbol() value.Symbol { return m.operator.Symbol() }
func (m *MultaryOperation) Operand(i int) Node   { return m.operands[i] }
func (m *MultaryOperation) Len() int             { return len(m.operands) }
func (m *MultaryOperation) node()                {}
func (m *MultaryOperation) String() string       { return call(m.operator.Name(), m.operands) }

// FunctionApplication applies a function (keyword, variable or any other
// expression) to arguments.
type FunctionApplication struct {
	function  Node
	arguments []Node
	style     string
}

// NewApplication requires a function and at least one argument, none nil.
func NewApplication(function Node, arguments []Node, style string) (*FunctionApplication, error) {
	if function == nil || len(arguments) == 0 || hasNil(arguments) {
		return nil, &MalformedOperandCount{
			Symbol: "application",
			Min:    1,
			Max:    -1,
			Got:    countNonNil(arguments),
		}
	}
	return &FunctionApplication{
		function:  function,
		arguments: append([]Node(nil), arguments...),
		style:     style,
	}, nil
}

func (f *FunctionApplication) Kind() Kind        { return KindApplication }
func (f *FunctionApplication) Precedence() int   { return PrecedenceApplication }
func (f *FunctionApplication) Function() Node    { return f.function }
func (f *FunctionApplication) Arguments() []Node { return append([]Node(nil), f.arguments...) }
func (f *FunctionApplication) Style() string     { return f.style }
func (f *FunctionApplication) node()             {}

// Operands returns the function followed by its arguments.
func (f *FunctionApplication) Operands() []Node {
	return append([]Node{f.function}, f.arguments...)
}

func (f *FunctionApplication) String() string {
	name := "apply"
	if f.style != "" {
		name += "_" + f.style
	}
	return call(name, f.Operands())
}

// KeywordCategory tells the grammar whether a keyword may be applied.
type KeywordCategory string

const (
	CategoryFunction KeywordCategory = "function"
	CategoryConstant KeywordCategory = "constant"
)

// Keyword is a named symbol from a content dictionary, such as pi or sin.
type Keyword struct {
	cd       string
	name     string
	symbol   value.Symbol
	category KeywordCategory
}

// NewKeyword validates a keyword definition.
func NewKeyword(cd, name string, symbol value.Symbol, category KeywordCategory) (*Keyword, error) {
	if cd == "" || name == "" {
		return nil, fmt.Errorf("keyword needs a content dictionary and a name")
	}
	if category != CategoryFunction && category != CategoryConstant {
		return nil, fmt.Errorf("keyword %s.%s: unknown category %q", cd, name, category)
	}
	if symbol.Len() != 1 {
		return nil, fmt.Errorf("keyword %s.%s: needs exactly one on-screen token", cd, name)
	}
	return &Keyword{cd: cd, name: name, symbol: symbol, category: category}, nil
}

func (k *Keyword) Kind() Kind                { return KindKeyword }
func (k *Keyword) Precedence() int           { return PrecedenceAtom }
func (k *Keyword) Operands() []Node          { return nil }
func (k *Keyword) CD() string                { return k.cd }
func (k *Keyword) Name() string              { return k.name }
func (k *Keyword) Key() string               { return value.SymbolKey(k.cd, k.name) }
func (k *Keyword) Symbol() value.Symbol      { return k.symbol }
func (k *Keyword) Category() KeywordCategory { return k.category }
func (k *Keyword) IsFunction() bool          { return k.category == CategoryFunction }
func (k *Keyword) String() string            { return k.cd + "." + k.name }
func (k *Keyword) node()                     {}

// Variable is a free identifier.
type Variable struct {
	name string
}

// NewVariable rejects empty names.
func NewVariable(name string) (*Variable, error) {
	if name == "" {
		return nil, fmt.Errorf("variable without name")
	}
	return &Variable{name: name}, nil
}

func (v *Variable) Kind() Kind       { return KindVariable }
func (v *Variable) Precedence() int  { return PrecedenceAtom }
func (v *Variable) Operands() []Node { return nil }
func (v *Variable) Name() string     { return v.name }
func (v *Variable) String() string   { return v.name }
func (v *Variable) node()            {}

// Integer is an arbitrary precision integer constant.
type Integer struct {
	value *big.Int
}

// NewInteger copies v.
func NewInteger(v *big.Int) *Integer {
	return &Integer{value: new(big.Int).Set(v)}
}

// ParseInteger reads a base-10 integer with optional sign.
func ParseInteger(text string) (*Integer, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(text), 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", text)
	}
	return &Integer{value: v}, nil
}

func (i *Integer) Kind() Kind       { return KindInteger }
func (i *Integer) Operands() []Node { return nil }
func (i *Integer) Value() *big.Int  { return new(big.Int).Set(i.value) }
func (i *Integer) Negative() bool   { return i.value.Sign() < 0 }
func (i *Integer) String() string   { return i.value.String() }
func (i *Integer) node()            {}

// Precedence of a negative integer is that of unary minus, since it displays
// with a leading sign.
func (i *Integer) Precedence() int {
	if i.Negative() {
		return PrecedenceUnaryMinus
	}
	return PrecedenceAtom
}

// Decimal is a decimal fraction constant kept in its textual form.
type Decimal struct {
	value string
}

// ParseDecimal validates a decimal literal such as 1.25 or -0.5. The
// exponent form 1.5e3 is rewritten positionally as 1500.0, keeping at least
// one fractional digit so the value still reads as a decimal.
func ParseDecimal(text string) (*Decimal, error) {
	text = strings.TrimSpace(text)
	if text == "" || strings.ContainsAny(text, "pPxX_") {
		return nil, fmt.Errorf("invalid decimal %q", text)
	}
	mantissa, exponent, scientific := strings.Cut(strings.ToLower(text), "e")
	if !scientific {
		if _, ok := new(big.Float).SetString(text); !ok {
			return nil, fmt.Errorf("invalid decimal %q", text)
		}
		return &Decimal{value: text}, nil
	}

	exp, err := strconv.Atoi(exponent)
	if err != nil || mantissa == "" || strings.ContainsAny(mantissa, "e+") {
		return nil, fmt.Errorf("invalid decimal %q", text)
	}
	r, ok := new(big.Rat).SetString(mantissa + "e" + exponent)
	if !ok {
		return nil, fmt.Errorf("invalid decimal %q", text)
	}
	digits := 0
	if _, frac, found := strings.Cut(mantissa, "."); found {
		digits = len(frac)
	}
	digits -= exp
	if digits < 1 {
		digits = 1
	}
	return &Decimal{value: r.FloatString(digits)}, nil
}

func (d *Decimal) Kind() Kind       { return KindDecimal }
func (d *Decimal) Operands() []Node { return nil }
func (d *Decimal) Value() string    { return d.value }
func (d *Decimal) Negative() bool   { return strings.HasPrefix(d.value, "-") }
func (d *Decimal) String() string   { return d.value }
func (d *Decimal) node()            {}

func (d *Decimal) Precedence() int {
	if d.Negative() {
		return PrecedenceUnaryMinus
	}
	return PrecedenceAtom
}

func call(name string, operands []Node) string {
	parts := make([]string, len(operands))
	for i, op := range operands {
		parts[i] = op.String()
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

func hasNil(nodes []Node) bool {
	for _, n := range nodes {
		if n == nil {
			return true
		}
	}
	return false
}

func countNonNil(nodes []Node) int {
	n := 0
	for _, node := range nodes {
		if node != nil {
			n++
		}
	}
	return n
}
