// Package render turns semantic trees into presentation boxes, OpenMath and
// MathML. Every function is a pure function of its input tree.
package render

import (
	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
)

// Role classifies a symbol for styling.
type Role int

const (
	RoleOperator Role = iota
	RoleIdentifier
	RoleNumber
	RoleKeyword
	RoleGrouping
)

// Box is a layout primitive.
type Box interface {
	box()
}

// Row lays out its children horizontally.
type Row struct {
	Children []Box
}

// Symbol is a literal token.
type Symbol struct {
	Text string
	Role Role
	// Postfix marks the token of a postfix operator. Text keeps it apart
	// from a following operator token: x! =y, not x!=y.
	Postfix bool
}

// Superscript raises its child relative to the preceding box.
type Superscript struct {
	Child Box
}

// Subscript lowers its child relative to the preceding box.
type Subscript struct {
	Child Box
}

func (*Row) box()         {}
func (*Symbol) box()      {}
func (*Superscript) box() {}
func (*Subscript) box()   {}

// Presentation lays out a tree. An operand is wrapped in parentheses when
// its precedence is below what its position requires.
func Presentation(node entity.Node) Box {
	switch n := node.(type) {
	case *entity.Integer:
		return &Symbol{Text: n.String(), Role: RoleNumber}
	case *entity.Decimal:
		return &Symbol{Text: n.String(), Role: RoleNumber}
	case *entity.Variable:
		return &Symbol{Text: n.Name(), Role: RoleIdentifier}
	case *entity.Keyword:
		return &Symbol{Text: n.Symbol().Token(0), Role: RoleKeyword}
	case *entity.MultaryOperation:
		return presentOperation(n)
	case *entity.FunctionApplication:
		return presentApplication(n)
	}
	return &Row{}
}

func presentOperation(n *entity.MultaryOperation) Box {
	op := n.Operator()
	p := op.Precedence()
	sym := op.Symbol()
	row := &Row{}

	switch op.Layout() {
	case entity.LayoutPrefix:
		row.add(operator(sym.Token(0)), grouped(n.Operand(0), p))
	case entity.LayoutPostfix:
		row.add(grouped(n.Operand(0), p), &Symbol{Text: sym.Token(0), Role: RoleOperator, Postfix: true})
	case entity.LayoutSuperscript:
		row.add(grouped(n.Operand(0), p+1), &Superscript{Child: Presentation(n.Operand(1))})
	case entity.LayoutBracket:
		row.add(&Symbol{Text: sym.Token(0), Role: RoleGrouping})
		for i := 0; i < n.Len(); i++ {
			if i > 0 {
				row.add(operator(sym.Token(1)))
			}
			row.add(Presentation(n.Operand(i)))
		}
		row.add(&Symbol{Text: sym.Token(2), Role: RoleGrouping})
	default:
		for i := 0; i < n.Len(); i++ {
			if i > 0 {
				row.add(operator(sym.Token(0)))
			}
			row.add(grouped(n.Operand(i), infixMinimum(op, n.Operand(i), i, n.Len())))
		}
	}
	return row
}

// infixMinimum is the precedence an infix operand needs to stand without
// parentheses. The operand on the associative side may share the
// operator's precedence, unless it is the same flattening operator: a+b+c
// reads back as one node, so plus(plus(a, b), c) keeps its parentheses.
func infixMinimum(op *entity.Operator, operand entity.Node, i, count int) int {
	p := op.Precedence()
	if inner, ok := operand.(*entity.MultaryOperation); ok && op.Flatten() && inner.Operator().Key() == op.Key() {
		return p + 1
	}
	if op.RightAssociative() {
		if i == count-1 {
			return p
		}
		return p + 1
	}
	if i == 0 {
		return p
	}
	return p + 1
}

func presentApplication(n *entity.FunctionApplication) Box {
	row := &Row{}
	row.add(grouped(n.Function(), entity.PrecedenceApplication))

	args := n.Arguments()
	if n.Style() == entity.ApplicationStyleSub {
		sub := &Row{}
		for i, arg := range args {
			if i > 0 {
				sub.add(operator(","))
			}
			sub.add(Presentation(arg))
		}
		row.add(&Subscript{Child: sub})
		return row
	}

	row.add(&Symbol{Text: "(", Role: RoleGrouping})
	for i, arg := range args {
		if i > 0 {
			row.add(operator(","))
		}
		row.add(Presentation(arg))
	}
	row.add(&Symbol{Text: ")", Role: RoleGrouping})
	return row
}

func grouped(node entity.Node, minimum int) Box {
	b := Presentation(node)
	if node.Precedence() >= minimum {
		return b
	}
	return &Row{Children: []Box{
		&Symbol{Text: "(", Role: RoleGrouping},
		b,
		&Symbol{Text: ")", Role: RoleGrouping},
	}}
}

func operator(text string) *Symbol {
	return &Symbol{Text: text, Role: RoleOperator}
}

func (r *Row) add(boxes ...Box) {
	r.Children = append(r.Children, boxes...)
}
