package modules

import (
	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
)

// PrecedenceRelation is shared by all relation1 operators.
const PrecedenceRelation = 100

// Relation1 registers equality and order relations. The two-character
// forms are registered last so they are tried before their prefixes.
func Relation1() Module {
	return New("relation1", func(r *Registrar) error {
		relations := []struct {
			name, token string
			aliases     []string
		}{
			{"eq", "=", nil},
			{"lt", "<", nil},
			{"gt", ">", nil},
			{"neq", "≠", []string{"!="}},
			{"leq", "≤", []string{"<="}},
			{"geq", "≥", []string{">="}},
		}
		for _, rel := range relations {
			if _, err := r.InfixOperator(entity.OperatorSpec{
				CD:         "relation1",
				Name:       rel.name,
				Symbol:     value.MustSymbol([]string{rel.token}, "", []string{"<mo>" + htmlEscape(rel.token) + "</mo>"}),
				Precedence: PrecedenceRelation,
				Arity:      entity.Binary,
			}, rel.aliases...); err != nil {
				return err
			}
		}
		return nil
	})
}
