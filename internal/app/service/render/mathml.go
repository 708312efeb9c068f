package render

import (
	"html"
	"strings"

	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
)

// MathML serialises a tree as presentation MathML. Infix operations become
// one mrow; prefix and postfix forms contribute their fragments to the
// enclosing row.
func MathML(node entity.Node) string {
	return mathml(node).xml
}

// MathMLDocument wraps MathML in a math element.
func MathMLDocument(node entity.Node) string {
	return `<math xmlns="http://www.w3.org/1998/Math/MathML">` + element(mathml(node)) + `</math>`
}

type fragment struct {
	xml string
	// single is set when xml is exactly one element.
	single bool
}

func element(f fragment) string {
	if f.single {
		return f.xml
	}
	return "<mrow>" + f.xml + "</mrow>"
}

func mo(text string) string {
	return "<mo>" + html.EscapeString(text) + "</mo>"
}

// token returns the MathML of the i-th symbol position, defaulting to mo.
func token(markup, text string) string {
	if markup != "" || text == "" {
		return markup
	}
	return mo(text)
}

func mathml(node entity.Node) fragment {
	switch n := node.(type) {
	case *entity.Integer:
		return fragment{"<mn>" + n.String() + "</mn>", true}
	case *entity.Decimal:
		return fragment{"<mn>" + n.Value() + "</mn>", true}
	case *entity.Variable:
		return fragment{"<mi>" + html.EscapeString(n.Name()) + "</mi>", true}
	case *entity.Keyword:
		sym := n.Symbol()
		if len(sym.MathML()) > 0 {
			return fragment{sym.MathMLAt(0), true}
		}
		return fragment{"<mi>" + html.EscapeString(sym.Token(0)) + "</mi>", true}
	case *entity.MultaryOperation:
		return mathmlOperation(n)
	case *entity.FunctionApplication:
		var b strings.Builder
		b.WriteString("<mrow>")
		b.WriteString(mathmlGrouped(n.Function(), entity.PrecedenceApplication))
		b.WriteString(mo("("))
		for i, arg := range n.Arguments() {
			if i > 0 {
				b.WriteString(mo(","))
			}
			b.WriteString(mathml(arg).xml)
		}
		b.WriteString(mo(")"))
		b.WriteString("</mrow>")
		return fragment{b.String(), true}
	}
	return fragment{"<mrow/>", true}
}

func mathmlOperation(n *entity.MultaryOperation) fragment {
	op := n.Operator()
	p := op.Precedence()
	sym := op.Symbol()

	switch op.Layout() {
	case entity.LayoutPrefix:
		return fragment{token(sym.MathMLAt(0), sym.Token(0)) + mathmlGrouped(n.Operand(0), p), false}
	case entity.LayoutPostfix:
		return fragment{mathmlGrouped(n.Operand(0), p) + token(sym.MathMLAt(0), sym.Token(0)), false}
	case entity.LayoutSuperscript:
		base := mathmlGrouped(n.Operand(0), p+1)
		if n.Operand(0).Precedence() >= p+1 {
			base = element(mathml(n.Operand(0)))
		}
		return fragment{"<msup>" + base + element(mathml(n.Operand(1))) + "</msup>", true}
	}

	var b strings.Builder
	b.WriteString("<mrow>")
	if op.Layout() == entity.LayoutBracket {
		b.WriteString(token(sym.MathMLAt(0), sym.Token(0)))
		for i := 0; i < n.Len(); i++ {
			if i > 0 {
				b.WriteString(token(sym.MathMLAt(1), sym.Token(1)))
			}
			b.WriteString(mathml(n.Operand(i)).xml)
		}
		b.WriteString(token(sym.MathMLAt(2), sym.Token(2)))
	} else {
		for i := 0; i < n.Len(); i++ {
			if i > 0 {
				b.WriteString(token(sym.MathMLAt(0), sym.Token(0)))
			}
			b.WriteString(mathmlGrouped(n.Operand(i), infixMinimum(op, n.Operand(i), i, n.Len())))
		}
	}
	b.WriteString("</mrow>")
	return fragment{b.String(), true}
}

// mathmlGrouped mirrors the presentation grouping rule.
func mathmlGrouped(node entity.Node, minimum int) string {
	f := mathml(node)
	if node.Precedence() >= minimum {
		return f.xml
	}
	return "<mrow>" + mo("(") + f.xml + mo(")") + "</mrow>"
}
