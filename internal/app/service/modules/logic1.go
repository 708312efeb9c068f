package modules

import (
	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
)

// Logic1 registers disjunction, conjunction and negation.
func Logic1() Module {
	return New("logic1", func(r *Registrar) error {
		if _, err := r.InfixOperator(entity.OperatorSpec{
			CD: "logic1", Name: "or",
			Symbol:     value.MustSymbol([]string{"∨"}, "", []string{"<mo>∨</mo>"}),
			Precedence: 70, Arity: entity.Nary, Flatten: true,
		}); err != nil {
			return err
		}
		if _, err := r.InfixOperator(entity.OperatorSpec{
			CD: "logic1", Name: "and",
			Symbol:     value.MustSymbol([]string{"∧"}, "", []string{"<mo>∧</mo>"}),
			Precedence: 80, Arity: entity.Nary, Flatten: true,
		}); err != nil {
			return err
		}
		_, err := r.PrefixOperator(entity.OperatorSpec{
			CD: "logic1", Name: "not",
			Symbol:     value.MustSymbol([]string{"¬"}, "", []string{"<mo>¬</mo>"}),
			Precedence: 90,
		})
		return err
	})
}
