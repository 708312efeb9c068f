package grammar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/testconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
)

func parse(t *testing.T, rule Rule, input string) (Match, error) {
	t.Helper()
	result := rule(NewCursor(nil, input))
	if result.IsErr() {
		return Match{}, result.Error()
	}
	return result.Unwrap(), nil
}

func TestLiteral(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	m, err := parse(t, Literal("ab"), "abc")
	require.NoError(t, err)
	assert.Equal(t, "ab", m.Value)
	assert.Equal(t, 2, m.Next.Offset())

	_, err = parse(t, Literal("ab"), "ac")
	mm, ok := AsMismatch(err)
	require.True(t, ok)
	assert.Equal(t, 0, mm.Farthest.Offset)
	assert.Equal(t, []string{`"ab"`}, mm.Farthest.Expected)
}

func TestAlternation_FirstMatchWins(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	rule := Alternation(Literal("a"), Literal("ab"))
	m, err := parse(t, rule, "ab")
	require.NoError(t, err)
	assert.Equal(t, "a", m.Value, "ordered choice, not longest match")
	assert.Equal(t, 1, m.Next.Offset())
}

func TestConcatenation_RewindsOnFailure(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	rule := Alternation(
		Concatenation(Literal("a"), Literal("b")),
		Concatenation(Literal("a"), Literal("c")),
	)
	m, err := parse(t, rule, "ac")
	require.NoError(t, err)
	assert.Equal(t, Sequence{"a", "c"}, m.Value)

	_, err = parse(t, rule, "ad")
	mm, ok := AsMismatch(err)
	require.True(t, ok)
	assert.Equal(t, 1, mm.Farthest.Offset)
	assert.Equal(t, []string{`"b"`, `"c"`}, mm.Farthest.Expected)
}

func TestTransform(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	digits := Transform(RepetitionPlus(Range('0', '9')), func(values []any) (any, error) {
		var b strings.Builder
		for _, v := range values {
			b.WriteString(v.(string))
		}
		return strconv.Atoi(b.String())
	})
	m, err := parse(t, digits, "042x")
	require.NoError(t, err)
	assert.Equal(t, 42, m.Value)

	single := Transform(Literal("x"), func(values []any) (any, error) {
		require.Len(t, values, 1)
		return strings.ToUpper(values[0].(string)), nil
	})
	m, err = parse(t, single, "x")
	require.NoError(t, err)
	assert.Equal(t, "X", m.Value)
}

func TestTransform_Errors(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	boom := errors.New("boom")
	fatal := Alternation(
		Transform(Literal("x"), func([]any) (any, error) { return nil, boom }),
		Literal("x"),
	)
	_, err := parse(t, fatal, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom, "fatal errors are not caught by alternation")

	declined := Alternation(
		Transform(Literal("x"), func([]any) (any, error) { return nil, Decline("something else") }),
		Literal("x"),
	)
	m, err := parse(t, declined, "x")
	require.NoError(t, err)
	assert.Equal(t, "x", m.Value)
}

func TestRef_UnknownRuleIsFatal(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	b := NewBuilder()
	require.NoError(t, b.Define("root", "test", Alternation(Ref("missing"), Literal("x"))))
	g, err := b.Build("root")
	require.NoError(t, err)

	result := g.Parse("x")
	require.True(t, result.IsErr())
	var unknown *UnknownRule
	require.True(t, errors.As(result.Error(), &unknown))
	assert.Equal(t, "missing", unknown.Name)
}

func TestRepetitionAndOptional(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	m, err := parse(t, Repetition(Literal("a")), "aab")
	require.NoError(t, err)
	assert.Equal(t, Sequence{"a", "a"}, m.Value)

	m, err = parse(t, Repetition(Literal("a")), "b")
	require.NoError(t, err)
	assert.Equal(t, Sequence{}, m.Value)

	_, err = parse(t, RepetitionPlus(Literal("a")), "b")
	assert.Error(t, err)

	// a rule matching the empty string must not loop forever
	m, err = parse(t, Repetition(Empty("e")), "b")
	require.NoError(t, err)
	assert.Equal(t, 0, m.Next.Offset())

	m, err = parse(t, Concatenation(Optional(Literal("-")), Literal("1")), "1")
	require.NoError(t, err)
	assert.Equal(t, Sequence{nil, "1"}, m.Value)

	_, err = parse(t, Fail("nothing"), "")
	assert.Error(t, err)
}

// arithmetic builds a two-level grammar: sum and product of digits.
func arithmetic(t *testing.T) *Builder {
	t.Helper()
	b := NewBuilder()

	number := Transform(Spaced(RepetitionPlus(Range('0', '9'))), func(values []any) (any, error) {
		var s strings.Builder
		for _, v := range values {
			s.WriteString(v.(string))
		}
		return s.String(), nil
	})
	binary := func(op string, next string) Rule {
		return Transform(Concatenation(Token(op), Ref(next)), func(values []any) (any, error) {
			rhs := values[1]
			return Tail(func(acc Accumulated) (any, error) {
				if acc.Folded && op == "+" && strings.HasPrefix(acc.Value.(string), "(+ ") {
					return strings.TrimSuffix(acc.Value.(string), ")") + " " + rhs.(string) + ")", nil
				}
				return fmt.Sprintf("(%s %v %v)", op, acc.Value, rhs), nil
			}), nil
		})
	}

	require.NoError(t, b.Define("sum", "core", LeftFold(Ref("product"), Ref("sum.infix"))))
	require.NoError(t, b.Define("sum.infix", "core", Fail("operator")))
	require.NoError(t, b.Define("product", "core", LeftFold(Ref("atom"), Ref("product.infix"))))
	require.NoError(t, b.Define("product.infix", "core", Fail("operator")))
	require.NoError(t, b.Define("atom", "core", Alternation(
		number,
		Transform(Concatenation(Token("("), Ref("sum"), Token(")")), func(values []any) (any, error) {
			return values[1], nil
		}),
	)))
	require.NoError(t, b.ExtendFirst("sum.infix", "plus", binary("+", "product")))
	require.NoError(t, b.ExtendFirst("sum.infix", "minus", binary("-", "product")))
	require.NoError(t, b.ExtendFirst("product.infix", "times", binary("*", "atom")))
	return b
}

func TestLeftFold(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	g, err := arithmetic(t).Build("sum")
	require.NoError(t, err)

	tests := map[string]string{
		"1":           "1",
		"1+2+3":       "(+ 1 2 3)",
		"(1+2)+3":     "(+ (+ 1 2) 3)",
		"1-2+3":       "(+ (- 1 2) 3)",
		"1+2*3 ":      "(+ 1 (* 2 3))",
		" 2 * ( 3+4)": "(* 2 (+ 3 4))",
	}
	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			result := g.Parse(input)
			require.True(t, result.IsOk(), "%v", result.Error())
			assert.Equal(t, want, result.Unwrap())
		})
	}
}

func TestParse_Failures(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	g, err := arithmetic(t).Build("sum")
	require.NoError(t, err)

	t.Run("dangling operator reports the furthest position", func(t *testing.T) {
		result := g.Parse("1+")
		var failure *entity.ParseFailure
		require.True(t, errors.As(result.Error(), &failure))
		assert.Equal(t, 2, failure.Offset)
		assert.Equal(t, 3, failure.Column)
		assert.True(t, failure.Trailing)
		assert.Contains(t, failure.Expected, `"("`)
	})

	t.Run("empty input", func(t *testing.T) {
		result := g.Parse("")
		var failure *entity.ParseFailure
		require.True(t, errors.As(result.Error(), &failure))
		assert.Equal(t, 0, failure.Offset)
		assert.False(t, failure.Trailing)
	})

	t.Run("multi-line input", func(t *testing.T) {
		result := g.Parse("1+\n2)")
		var failure *entity.ParseFailure
		require.True(t, errors.As(result.Error(), &failure))
		assert.Equal(t, 2, failure.Line)
		assert.Equal(t, 2, failure.Column)
	})

	t.Run("unknown rule", func(t *testing.T) {
		result := g.ParseRule("nope", "1")
		var unknown *UnknownRule
		assert.True(t, errors.As(result.Error(), &unknown))
	})
}

func TestBuilder_OverrideFallbackAndPriority(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	b := NewBuilder()
	identifier := Transform(RepetitionPlus(Range('a', 'z')), func(values []any) (any, error) {
		var s strings.Builder
		for _, v := range values {
			s.WriteString(v.(string))
		}
		return "var:" + s.String(), nil
	})
	require.NoError(t, b.Define("atom", "core", identifier))
	require.NoError(t, b.ExtendFirst("atom", "keywords", Transform(Literal("pi"), func([]any) (any, error) {
		return "const:pi", nil
	})))
	g, err := b.Build("atom")
	require.NoError(t, err)

	assert.Equal(t, "const:pi", g.Parse("pi").Unwrap(), "new alternative takes priority")
	assert.Equal(t, "var:x", g.Parse("x").Unwrap(), "parent still serves the rest")
	assert.Equal(t, []string{"keywords", "core"}, g.Chain("atom"))
}

func TestBuilder_Errors(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	b := NewBuilder()
	require.NoError(t, b.Define("a", "one", Literal("a")))
	err := b.Define("a", "two", Literal("a"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already defined by one")

	err = b.Extend("b", "two", func(parent Rule) Rule { return parent })
	var unknown *UnknownRule
	assert.True(t, errors.As(err, &unknown))

	_, err = b.Build("b")
	assert.Error(t, err)

	require.NoError(t, b.Define("c", "one", Literal("c")))
	g, err := b.Build("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, g.Names())
	assert.True(t, g.Rule("c").IsSome())
}

func TestParse_NormalisesInput(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	b := NewBuilder()
	require.NoError(t, b.Define("word", "test", Literal("\u00e9t\u00e9")))
	g, err := b.Build("word")
	require.NoError(t, err)

	result := g.Parse("e\u0301te\u0301")
	assert.True(t, result.IsOk())
}

func TestExpectation_Merge(t *testing.T) {
	a := Expectation{Offset: 2, Expected: []string{"x"}}
	b := Expectation{Offset: 2, Expected: []string{"a", "x"}}
	c := Expectation{Offset: 5, Expected: []string{"z"}}

	assert.Equal(t, []string{"a", "x"}, a.Merge(b).Expected)
	assert.Equal(t, c, a.Merge(c))
	assert.Equal(t, c, c.Merge(a))
	assert.Equal(t, a, a.Merge(Expectation{Offset: 9}))
	assert.Equal(t, a, Expectation{}.Merge(a))
}

func TestNotAndWord(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	m, err := parse(t, Concatenation(Literal("!"), Not(Literal("="))), "!x")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Next.Offset())

	_, err = parse(t, Concatenation(Literal("!"), Not(Literal("="))), "!=")
	_, ok := AsMismatch(err)
	assert.True(t, ok)

	m, err = parse(t, Word("not"), " not x")
	require.NoError(t, err)
	assert.Equal(t, "not", m.Value)

	_, err = parse(t, Word("not"), "note")
	assert.Error(t, err)
}
