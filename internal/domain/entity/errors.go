package entity

import (
	"fmt"
	"strings"
)

// ParseFailure reports text that does not match the grammar. Offset, Line
// and Column (1-based, in runes) locate the furthest position any rule reached.
type ParseFailure struct {
	Input    string
	Offset   int
	Line     int
	Column   int
	Expected []string
	// Trailing is set when a prefix parsed but input remained.
	Trailing bool
}

func (e *ParseFailure) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "parse failure at line %d column %d", e.Line, e.Column)
	if len(e.Expected) > 0 {
		fmt.Fprintf(&b, ": expected %s", strings.Join(e.Expected, ", "))
	}
	if e.Trailing {
		b.WriteString(" (unconsumed input)")
	}
	return b.String()
}

// ParseFailureAt builds a ParseFailure for a byte offset into input,
// computing the line and rune column.
func ParseFailureAt(input string, offset int, expected []string, trailing bool) *ParseFailure {
	if offset > len(input) {
		offset = len(input)
	}
	line, col := 1, 1
	for _, r := range input[:offset] {
		if r == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return &ParseFailure{
		Input:    input,
		Offset:   offset,
		Line:     line,
		Column:   col,
		Expected: append([]string(nil), expected...),
		Trailing: trailing,
	}
}

// UnknownSymbol reports an OpenMath symbol without a registered handler.
type UnknownSymbol struct {
	CD   string
	Name string
}

func (e *UnknownSymbol) Error() string {
	return fmt.Sprintf("unknown OpenMath symbol %s.%s", e.CD, e.Name)
}

// MalformedOperandCount reports an operator or application given the wrong
// number of operands. Max < 0 means unbounded.
type MalformedOperandCount struct {
	Symbol string
	Min    int
	Max    int
	Got    int
}

func (e *MalformedOperandCount) Error() string {
	switch {
	case e.Max < 0:
		return fmt.Sprintf("%s expects at least %d operand(s), got %d", e.Symbol, e.Min, e.Got)
	case e.Min == e.Max:
		return fmt.Sprintf("%s expects %d operand(s), got %d", e.Symbol, e.Min, e.Got)
	default:
		return fmt.Sprintf("%s expects %d to %d operands, got %d", e.Symbol, e.Min, e.Max, e.Got)
	}
}

// UnsupportedElement reports an OpenMath element the converter cannot read.
type UnsupportedElement struct {
	Element string
	Reason  string
}

func (e *UnsupportedElement) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("unsupported OpenMath element <%s>", e.Element)
	}
	return fmt.Sprintf("unsupported OpenMath element <%s>: %s", e.Element, e.Reason)
}
