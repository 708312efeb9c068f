package modules

import (
	"strings"
	"unicode"

	"github.com/formulaeditor/formulaeditor/internal/app/service/grammar"
	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
)

// Core defines the precedence ladder, numbers, identifiers and
// parentheses. Every other module builds on it.
func Core() Module {
	return New("core", registerCore)
}

func registerCore(r *Registrar) error {
	for _, k := range Levels {
		if k == MaxLevel {
			continue
		}
		if err := r.Define(Infix(k), grammar.Fail()); err != nil {
			return err
		}
		if err := r.Define(Level(k), grammar.LeftFold(ref(k+LevelStep), grammar.Ref(Infix(k)))); err != nil {
			return err
		}
	}

	if err := r.Define(RuleVariable, grammar.Transform(identifier(), func(values []any) (any, error) {
		name := values[0].(string)
		if kw, ok := r.LookupKeyword(name); ok {
			return kw, nil
		}
		return entity.NewVariable(name)
	})); err != nil {
		return err
	}

	parens := grammar.Transform(
		grammar.Concatenation(grammar.Token("("), grammar.Ref(Root), grammar.Token(")")),
		func(values []any) (any, error) {
			return values[1], nil
		})

	primary := grammar.Alternation(decimal(), integer(), grammar.Ref(RuleVariable), parens)
	if err := r.Define(Level(MaxLevel), primary); err != nil {
		return err
	}
	return r.Define(Root, ref(0))
}

func concat(values []any) string {
	var b strings.Builder
	for _, v := range values {
		switch x := v.(type) {
		case string:
			b.WriteString(x)
		case grammar.Sequence:
			b.WriteString(concat(x))
		}
	}
	return b.String()
}

func digits() grammar.Rule {
	return grammar.RepetitionPlus(grammar.Range('0', '9'))
}

func integer() grammar.Rule {
	return grammar.Transform(grammar.Spaced(digits()), func(values []any) (any, error) {
		return entity.ParseInteger(concat(values))
	})
}

func decimal() grammar.Rule {
	return grammar.Transform(
		grammar.Spaced(grammar.Concatenation(digits(), grammar.Literal("."), digits())),
		func(values []any) (any, error) {
			return entity.ParseDecimal(concat(values))
		})
}

// identifier reads a letter followed by letters and digits.
func identifier() grammar.Rule {
	letter := grammar.Runes("letter", unicode.IsLetter)
	letterOrDigit := grammar.Runes("letter or digit", func(c rune) bool {
		return unicode.IsLetter(c) || unicode.IsDigit(c)
	})
	return grammar.Transform(
		grammar.Spaced(grammar.Concatenation(letter, grammar.Repetition(letterOrDigit))),
		func(values []any) (any, error) {
			return concat(values), nil
		})
}
