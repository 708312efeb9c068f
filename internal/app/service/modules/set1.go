package modules

import (
	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
)

// Set1 registers set literals {a, b, c} and the empty set {}.
func Set1() Module {
	return New("set1", func(r *Registrar) error {
		_, err := r.BracketOperator(entity.OperatorSpec{
			CD:         "set1",
			Name:       "set",
			Symbol:     value.MustSymbol([]string{"{", ",", "}"}, "", []string{"<mo>{</mo>", "<mo>,</mo>", "<mo>}</mo>"}),
			Precedence: entity.PrecedenceAtom,
			Arity:      entity.Arity{Min: 0, Max: -1},
		})
		return err
	})
}
