package grammar

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Cursor is a position in the input of one parse. It is an immutable value.
type Cursor struct {
	grammar *Grammar
	input   string
	offset  int
}

// NewCursor positions a cursor at the start of input. g may be nil for rules
// that do not use Ref.
func NewCursor(g *Grammar, input string) Cursor {
	return Cursor{grammar: g, input: input}
}

// Offset is the byte offset into the input.
func (c Cursor) Offset() int { return c.offset }

// Input returns the complete input text.
func (c Cursor) Input() string { return c.input }

// Rest returns the unconsumed input.
func (c Cursor) Rest() string { return c.input[c.offset:] }

// AtEnd reports whether all input has been consumed.
func (c Cursor) AtEnd() bool { return c.offset >= len(c.input) }

// Grammar returns the grammar named rules are resolved against.
func (c Cursor) Grammar() *Grammar { return c.grammar }

// Advance returns a cursor n bytes further on.
func (c Cursor) Advance(n int) Cursor {
	c.offset += n
	if c.offset > len(c.input) {
		c.offset = len(c.input)
	}
	return c
}

// Peek decodes the rune at the cursor. size is 0 at the end of input.
func (c Cursor) Peek() (r rune, size int) {
	if c.AtEnd() {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(c.Rest())
}

// SkipSpace returns a cursor past any white space.
func (c Cursor) SkipSpace() Cursor {
	for {
		r, size := c.Peek()
		if size == 0 || !unicode.IsSpace(r) {
			return c
		}
		c.offset += size
	}
}

func (c Cursor) String() string {
	return fmt.Sprintf("@%d", c.offset)
}

// Expectation records the furthest offset any rule reached and what it
// expected to find there.
type Expectation struct {
	Offset   int
	Expected []string
}

// Expect creates an expectation at the cursor.
func Expect(c Cursor, expected ...string) Expectation {
	return Expectation{Offset: c.offset, Expected: expected}
}

// Merge keeps the expectation with the larger offset. At equal offsets the
// expected items are united, sorted and deduplicated. An expectation without
// items carries no information and never wins.
func (e Expectation) Merge(other Expectation) Expectation {
	switch {
	case len(other.Expected) == 0:
		return e
	case len(e.Expected) == 0, other.Offset > e.Offset:
		return other
	case other.Offset < e.Offset:
		return e
	}

	seen := make(map[string]bool, len(e.Expected)+len(other.Expected))
	merged := make([]string, 0, len(e.Expected)+len(other.Expected))
	for _, list := range [][]string{e.Expected, other.Expected} {
		for _, item := range list {
			if !seen[item] {
				seen[item] = true
				merged = append(merged, item)
			}
		}
	}
	sort.Strings(merged)
	return Expectation{Offset: e.Offset, Expected: merged}
}

func (e Expectation) String() string {
	return fmt.Sprintf("expected %s at %d", strings.Join(e.Expected, ", "), e.Offset)
}

// Match is the result of a successful rule application.
type Match struct {
	Value any
	Next  Cursor
	// Farthest is the deepest failure seen on the way, used for diagnostics
	// when the overall parse fails later.
	Farthest Expectation
}

// Sequence is the value of Concatenation and the repetition combinators.
// Transform spreads it into its function's argument slice.
type Sequence []any

// Mismatch is the recoverable failure of a rule.
type Mismatch struct {
	Farthest Expectation
}

func (m *Mismatch) Error() string {
	return "mismatch: " + m.Farthest.String()
}

// Decline is returned by Transform functions and fold tails to refuse a
// match without aborting the parse. The combinator places the mismatch at
// the position where the declined rule started.
func Decline(expected ...string) *Mismatch {
	return &Mismatch{Farthest: Expectation{Expected: expected}}
}

// UnknownRule is the fatal error of a Ref to an undefined rule.
type UnknownRule struct {
	Name string
}

func (e *UnknownRule) Error() string {
	return fmt.Sprintf("unknown grammar rule %q", e.Name)
}
