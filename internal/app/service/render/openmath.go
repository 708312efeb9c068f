package render

import (
	"strings"

	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
)

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `'`, "&apos;", `"`, "&quot;")

// OpenMath serialises a tree as an OpenMath element.
func OpenMath(node entity.Node) string {
	var b strings.Builder
	writeOpenMath(&b, node)
	return b.String()
}

// OpenMathDocument wraps OpenMath in an OMOBJ.
func OpenMathDocument(node entity.Node) string {
	return `<OMOBJ xmlns='http://www.openmath.org/OpenMath' version='2.0'>` + OpenMath(node) + `</OMOBJ>`
}

func writeOpenMath(b *strings.Builder, node entity.Node) {
	switch n := node.(type) {
	case *entity.Integer:
		b.WriteString("<OMI>" + n.String() + "</OMI>")
	case *entity.Decimal:
		b.WriteString("<OMF dec='" + n.Value() + "'/>")
	case *entity.Variable:
		b.WriteString("<OMV name='" + attrEscaper.Replace(n.Name()) + "'/>")
	case *entity.Keyword:
		b.WriteString(symbolElement(n.CD(), n.Name(), n.Symbol()))
	case *entity.MultaryOperation:
		op := n.Operator()
		b.WriteString("<OMA>")
		b.WriteString(symbolElement(op.CD(), op.Name(), op.Symbol()))
		for _, operand := range n.Operands() {
			writeOpenMath(b, operand)
		}
		b.WriteString("</OMA>")
	case *entity.FunctionApplication:
		if n.Style() != "" {
			b.WriteString("<OMA style='" + attrEscaper.Replace(n.Style()) + "'>")
		} else {
			b.WriteString("<OMA>")
		}
		for _, operand := range n.Operands() {
			writeOpenMath(b, operand)
		}
		b.WriteString("</OMA>")
	}
}

// symbolElement uses the symbol's template when it has one.
func symbolElement(cd, name string, sym value.Symbol) string {
	if t := sym.OpenMath(); t != "" {
		return t
	}
	return "<OMS cd='" + attrEscaper.Replace(cd) + "' name='" + attrEscaper.Replace(name) + "'/>"
}
