package grammar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/formulaeditor/formulaeditor/internal/shared/functional"
	"golang.org/x/text/unicode/norm"
)

// Rule parses a prefix of the input at a cursor.
type Rule func(Cursor) functional.Result[Match]

func matched(value any, next Cursor, farthest Expectation) functional.Result[Match] {
	return functional.Ok(Match{Value: value, Next: next, Farthest: farthest})
}

func mismatched(farthest Expectation) functional.Result[Match] {
	return functional.Err[Match](&Mismatch{Farthest: farthest})
}

// AsMismatch reports whether err is a recoverable mismatch.
func AsMismatch(err error) (*Mismatch, bool) {
	var m *Mismatch
	if errors.As(err, &m) {
		return m, true
	}
	return nil, false
}

// Literal matches token exactly. The token is NFC-normalised to agree with
// normalised input.
func Literal(token string) Rule {
	token = norm.NFC.String(token)
	quoted := strconv.Quote(token)
	return func(c Cursor) functional.Result[Match] {
		if strings.HasPrefix(c.Rest(), token) {
			return matched(token, c.Advance(len(token)), Expectation{})
		}
		return mismatched(Expect(c, quoted))
	}
}

// Token is a Literal preceded by optional white space.
func Token(token string) Rule {
	return Spaced(Literal(token))
}

// Ref defers to the rule registered under name in the cursor's grammar.
func Ref(name string) Rule {
	return func(c Cursor) functional.Result[Match] {
		if c.grammar == nil {
			return functional.Err[Match](&UnknownRule{Name: name})
		}
		rule, ok := c.grammar.rules[name]
		if !ok {
			return functional.Err[Match](&UnknownRule{Name: name})
		}
		return rule(c)
	}
}

// Alternation tries rules in order at the same cursor; the first match wins.
func Alternation(rules ...Rule) Rule {
	return func(c Cursor) functional.Result[Match] {
		var farthest Expectation
		for _, rule := range rules {
			result := rule(c)
			if result.IsOk() {
				m := result.Unwrap()
				m.Farthest = farthest.Merge(m.Farthest)
				return functional.Ok(m)
			}
			mm, ok := AsMismatch(result.Error())
			if !ok {
				return result
			}
			farthest = farthest.Merge(mm.Farthest)
		}
		return mismatched(farthest)
	}
}

// Concatenation applies rules in sequence. Its value is a Sequence with one
// element per rule.
func Concatenation(rules ...Rule) Rule {
	return func(c Cursor) functional.Result[Match] {
		values := make(Sequence, 0, len(rules))
		cur := c
		var farthest Expectation
		for _, rule := range rules {
			result := rule(cur)
			if result.IsErr() {
				if mm, ok := AsMismatch(result.Error()); ok {
					return mismatched(farthest.Merge(mm.Farthest))
				}
				return result
			}
			m := result.Unwrap()
			values = append(values, m.Value)
			farthest = farthest.Merge(m.Farthest)
			cur = m.Next
		}
		return matched(values, cur, farthest)
	}
}

// Transform maps the value of rule through fn. A Sequence value is passed as
// the argument slice; any other value as a one-element slice. An error from
// fn is fatal unless it is a *Mismatch (see Decline).
func Transform(rule Rule, fn func(values []any) (any, error)) Rule {
	return func(c Cursor) functional.Result[Match] {
		result := rule(c)
		if result.IsErr() {
			return result
		}
		m := result.Unwrap()
		values, ok := m.Value.(Sequence)
		if !ok {
			values = Sequence{m.Value}
		}
		v, err := fn(values)
		if err != nil {
			if mm, ok := AsMismatch(err); ok {
				return mismatched(m.Farthest.Merge(Expectation{Offset: c.offset, Expected: mm.Farthest.Expected}))
			}
			return functional.Err[Match](fmt.Errorf("at offset %d: %w", c.offset, err))
		}
		m.Value = v
		return functional.Ok(m)
	}
}

// Runes matches a single rune satisfying pred. description names the class
// in diagnostics.
func Runes(description string, pred func(rune) bool) Rule {
	return func(c Cursor) functional.Result[Match] {
		r, size := c.Peek()
		if size > 0 && pred(r) {
			return matched(string(r), c.Advance(size), Expectation{})
		}
		return mismatched(Expect(c, description))
	}
}

// Range matches one rune between lo and hi inclusive.
func Range(lo, hi rune) Rule {
	return Runes(fmt.Sprintf("%q-%q", lo, hi), func(r rune) bool {
		return r >= lo && r <= hi
	})
}

// Repetition matches rule zero or more times. It stops at the first mismatch
// or when rule matches without consuming input.
func Repetition(rule Rule) Rule {
	return func(c Cursor) functional.Result[Match] {
		return repeat(rule, c, 0)
	}
}

// RepetitionPlus matches rule one or more times.
func RepetitionPlus(rule Rule) Rule {
	return func(c Cursor) functional.Result[Match] {
		return repeat(rule, c, 1)
	}
}

func repeat(rule Rule, c Cursor, min int) functional.Result[Match] {
	values := Sequence{}
	cur := c
	var farthest Expectation
	for {
		result := rule(cur)
		if result.IsErr() {
			mm, ok := AsMismatch(result.Error())
			if !ok {
				return result
			}
			farthest = farthest.Merge(mm.Farthest)
			break
		}
		m := result.Unwrap()
		farthest = farthest.Merge(m.Farthest)
		if m.Next.offset == cur.offset {
			break
		}
		values = append(values, m.Value)
		cur = m.Next
	}
	if len(values) < min {
		return mismatched(farthest)
	}
	return matched(values, cur, farthest)
}

// Optional matches rule or nothing; the value is nil when absent.
func Optional(rule Rule) Rule {
	return Alternation(rule, Empty(nil))
}

// Empty always matches without consuming input.
func Empty(value any) Rule {
	return func(c Cursor) functional.Result[Match] {
		return matched(value, c, Expectation{})
	}
}

// Fail never matches.
func Fail(expected ...string) Rule {
	return func(c Cursor) functional.Result[Match] {
		return mismatched(Expect(c, expected...))
	}
}

// Spaced skips white space before rule.
func Spaced(rule Rule) Rule {
	return func(c Cursor) functional.Result[Match] {
		return rule(c.SkipSpace())
	}
}

// Accumulated is the left-hand value handed to a fold tail.
type Accumulated struct {
	Value any
	// Folded is set when Value was produced by an earlier tail of the same
	// fold rather than by the head.
	Folded bool
}

// Tail combines the accumulated value with what the tail rule parsed.
// Returning a *Mismatch stops the fold before the tail's input.
type Tail func(Accumulated) (any, error)

// LeftFold parses head and then tail as often as possible, feeding each
// result into the next. Every tail value must be a Tail.
func LeftFold(head, tail Rule) Rule {
	return func(c Cursor) functional.Result[Match] {
		result := head(c)
		if result.IsErr() {
			return result
		}
		m := result.Unwrap()
		acc := Accumulated{Value: m.Value}
		cur, farthest := m.Next, m.Farthest

		for {
			tr := tail(cur)
			if tr.IsErr() {
				mm, ok := AsMismatch(tr.Error())
				if !ok {
					return tr
				}
				farthest = farthest.Merge(mm.Farthest)
				break
			}
			tm := tr.Unwrap()
			fn, ok := tm.Value.(Tail)
			if !ok {
				return functional.Err[Match](fmt.Errorf("at offset %d: fold tail yielded %T, not a Tail", cur.offset, tm.Value))
			}
			if tm.Next.offset == cur.offset {
				break
			}
			v, err := fn(acc)
			if err != nil {
				if mm, ok := AsMismatch(err); ok {
					farthest = farthest.Merge(Expectation{Offset: cur.offset, Expected: mm.Farthest.Expected})
					break
				}
				return functional.Err[Match](fmt.Errorf("at offset %d: %w", cur.offset, err))
			}
			farthest = farthest.Merge(tm.Farthest)
			acc = Accumulated{Value: v, Folded: true}
			cur = tm.Next
		}
		return matched(acc.Value, cur, farthest)
	}
}

// Not succeeds without consuming input when rule does not match at the
// cursor. Its value is nil.
func Not(rule Rule) Rule {
	return func(c Cursor) functional.Result[Match] {
		result := rule(c)
		if result.IsOk() {
			return mismatched(Expectation{})
		}
		if _, ok := AsMismatch(result.Error()); ok {
			return matched(nil, c, Expectation{})
		}
		return result
	}
}

// Word matches token when it is not followed by a letter or digit.
func Word(token string) Rule {
	return Transform(Concatenation(Token(token), Not(Runes("letter or digit", isWordRune))),
		func(values []any) (any, error) {
			return values[0], nil
		})
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
