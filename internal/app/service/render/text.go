package render

import (
	"html"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/formulaeditor/formulaeditor/internal/domain/value"
)

type piece struct {
	text    string
	role    Role
	postfix bool
}

// flatten linearises a box. Scripts are written as ^x or _x, parenthesised
// when the script is more than one token, so the text parses back.
func flatten(b Box, out []piece) []piece {
	switch x := b.(type) {
	case *Symbol:
		if x.Text != "" {
			out = append(out, piece{x.Text, x.Role, x.Postfix})
		}
	case *Row:
		for _, child := range x.Children {
			out = flatten(child, out)
		}
	case *Superscript:
		out = script("^", x.Child, out)
	case *Subscript:
		out = script("_", x.Child, out)
	}
	return out
}

func script(mark string, child Box, out []piece) []piece {
	inner := flatten(child, nil)
	out = append(out, piece{text: mark, role: RoleOperator})
	if len(inner) == 1 {
		return append(out, inner[0])
	}
	out = append(out, piece{text: "(", role: RoleGrouping})
	out = append(out, inner...)
	return append(out, piece{text: ")", role: RoleGrouping})
}

// needsSpace separates adjacent words and numbers, e.g. "not x" or "a and b",
// and a postfix token from a following operator token, whose concatenation
// could read as a different token.
func needsSpace(left, right piece) bool {
	if left.postfix && right.role == RoleOperator {
		return true
	}
	l, _ := utf8.DecodeLastRuneInString(left.text)
	r, _ := utf8.DecodeRuneInString(right.text)
	return isWordRune(l) && isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.'
}

func join(pieces []piece, style func(piece) string) string {
	var b strings.Builder
	for i, p := range pieces {
		if i > 0 && needsSpace(pieces[i-1], p) {
			b.WriteByte(' ')
		}
		b.WriteString(style(p))
	}
	return b.String()
}

// PlainText writes a box as one line of text in the input notation.
func PlainText(b Box) string {
	return join(flatten(b, nil), func(p piece) string { return p.text })
}

// HTML writes a box as nested spans with sup and sub elements.
func HTML(b Box) string {
	var sb strings.Builder
	writeHTML(&sb, b)
	return sb.String()
}

var roleClasses = map[Role]string{
	RoleOperator:   "mo",
	RoleIdentifier: "mi",
	RoleNumber:     "mn",
	RoleKeyword:    "mk",
	RoleGrouping:   "mg",
}

func writeHTML(sb *strings.Builder, b Box) {
	switch x := b.(type) {
	case *Symbol:
		sb.WriteString(`<span class="` + roleClasses[x.Role] + `">`)
		sb.WriteString(html.EscapeString(x.Text))
		sb.WriteString(`</span>`)
	case *Row:
		sb.WriteString(`<span class="row">`)
		for _, child := range x.Children {
			writeHTML(sb, child)
		}
		sb.WriteString(`</span>`)
	case *Superscript:
		sb.WriteString("<sup>")
		writeHTML(sb, x.Child)
		sb.WriteString("</sup>")
	case *Subscript:
		sb.WriteString("<sub>")
		writeHTML(sb, x.Child)
		sb.WriteString("</sub>")
	}
}

// Palette styles symbols by role for terminal output.
type Palette struct {
	Operator   lipgloss.Style
	Identifier lipgloss.Style
	Number     lipgloss.Style
	Keyword    lipgloss.Style
	Grouping   lipgloss.Style
}

// NewPalette builds a palette from theme colours. With color off every
// style is plain.
func NewPalette(colors value.ThemeColors, color bool) Palette {
	if !color {
		plain := lipgloss.NewStyle()
		return Palette{plain, plain, plain, plain, plain}
	}
	fg := func(c string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}
	return Palette{
		Operator:   fg(colors.Operator).Bold(true),
		Identifier: fg(colors.Identifier).Italic(true),
		Number:     fg(colors.Number),
		Keyword:    fg(colors.Keyword),
		Grouping:   lipgloss.NewStyle().Faint(true),
	}
}

func (p Palette) style(role Role) lipgloss.Style {
	switch role {
	case RoleIdentifier:
		return p.Identifier
	case RoleNumber:
		return p.Number
	case RoleKeyword:
		return p.Keyword
	case RoleGrouping:
		return p.Grouping
	}
	return p.Operator
}

// Terminal writes a box like PlainText with each token styled by role.
func Terminal(b Box, palette Palette) string {
	return join(flatten(b, nil), func(pc piece) string {
		return palette.style(pc.role).Render(pc.text)
	})
}
