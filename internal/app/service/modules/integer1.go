package modules

import (
	"github.com/formulaeditor/formulaeditor/internal/app/service/grammar"
	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
)

// Integer1 registers the factorial.
func Integer1() Module {
	return New("integer1", func(r *Registrar) error {
		op, err := r.Operator(entity.OperatorSpec{
			CD:         "integer1",
			Name:       "factorial",
			Symbol:     value.MustSymbol([]string{"!"}, "", []string{"<mo>!</mo>"}),
			Precedence: entity.PrecedenceApplication,
			Layout:     entity.LayoutPostfix,
			Arity:      entity.Unary,
		})
		if err != nil {
			return err
		}
		// x!=y is a relation, not (x!)=y
		token := grammar.Concatenation(r.Tokens(op, 0), grammar.Not(grammar.Literal("=")))
		return r.Postfix(op, token)
	})
}
