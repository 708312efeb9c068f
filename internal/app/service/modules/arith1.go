package modules

import (
	"github.com/formulaeditor/formulaeditor/internal/app/service/grammar"
	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
)

// Arith1 registers the arithmetic operators of the arith1 content
// dictionary.
func Arith1() Module {
	return New("arith1", registerArith1)
}

func registerArith1(r *Registrar) error {
	infix := []struct {
		name    string
		token   string
		prec    int
		arity   entity.Arity
		flatten bool
		aliases []string
	}{
		{"plus", "+", 120, entity.Nary, true, nil},
		{"minus", "-", 120, entity.Binary, false, []string{"−"}},
		{"times", "·", 130, entity.Nary, true, []string{"*"}},
		{"divide", "/", 130, entity.Binary, false, []string{"÷"}},
	}
	for _, o := range infix {
		if _, err := r.InfixOperator(entity.OperatorSpec{
			CD:         "arith1",
			Name:       o.name,
			Symbol:     value.MustSymbol([]string{o.token}, "", []string{"<mo>" + o.token + "</mo>"}),
			Precedence: o.prec,
			Arity:      o.arity,
			Flatten:    o.flatten,
		}, o.aliases...); err != nil {
			return err
		}
	}

	if _, err := r.PrefixOperator(entity.OperatorSpec{
		CD:         "arith1",
		Name:       "unary_minus",
		Symbol:     value.MustSymbol([]string{"-"}, "", []string{"<mo>-</mo>"}),
		Precedence: entity.PrecedenceUnaryMinus,
	}, "−"); err != nil {
		return err
	}

	if _, err := r.SuperscriptOperator(entity.OperatorSpec{
		CD:               "arith1",
		Name:             "power",
		Symbol:           value.MustSymbol([]string{"^"}, "", nil),
		Precedence:       150,
		RightAssociative: true,
	}); err != nil {
		return err
	}

	// abs(x) is accepted besides |x|
	alternate := grammar.Transform(
		grammar.Concatenation(grammar.Token("abs"), grammar.Token("("), grammar.Ref(Root), grammar.Token(")")),
		func(values []any) (any, error) {
			return values[2], nil
		})
	_, err := r.BracketOperator(entity.OperatorSpec{
		CD:         "arith1",
		Name:       "abs",
		Symbol:     value.MustSymbol([]string{"|", ",", "|"}, "", []string{"<mo>|</mo>", "<mo>,</mo>", "<mo>|</mo>"}),
		Precedence: entity.PrecedenceAtom,
		Arity:      entity.Unary,
	}, alternate)
	return err
}
