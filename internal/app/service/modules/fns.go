package modules

import (
	"github.com/formulaeditor/formulaeditor/internal/app/service/grammar"
	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
)

// Fns registers function application f(a, b) and subscript application
// x_i, x_(i, j). OpenMath applications need no handler.
func Fns() Module {
	return New("fns", func(r *Registrar) error {
		arguments := grammar.Transform(
			grammar.Concatenation(grammar.Token("("), SeparatedList(grammar.Ref(Root), grammar.Token(",")), grammar.Token(")")),
			func(values []any) (any, error) {
				return values[1], nil
			})

		if err := r.ExtendInfix(entity.PrecedenceApplication, grammar.Transform(arguments, applicationTail(""))); err != nil {
			return err
		}

		index := grammar.Alternation(arguments, grammar.Transform(ref(MaxLevel), func(values []any) (any, error) {
			return grammar.Sequence{values[0]}, nil
		}))
		sub := grammar.Transform(grammar.Concatenation(grammar.Literal("_"), index), func(values []any) (any, error) {
			return applicationTail(entity.ApplicationStyleSub)(values[1:])
		})
		return r.ExtendInfix(entity.PrecedenceApplication, sub)
	})
}

// applicationTail folds argument lists onto the preceding expression.
// Constants and numbers cannot be applied.
func applicationTail(style string) func([]any) (any, error) {
	return func(values []any) (any, error) {
		var list grammar.Sequence
		for _, v := range values {
			if seq, ok := v.(grammar.Sequence); ok {
				list = append(list, seq...)
			} else {
				list = append(list, v)
			}
		}
		args := make([]entity.Node, len(list))
		for i, v := range list {
			args[i] = v.(entity.Node)
		}
		return grammar.Tail(func(acc grammar.Accumulated) (any, error) {
			fn := acc.Value.(entity.Node)
			switch head := fn.(type) {
			case *entity.Keyword:
				if !head.IsFunction() {
					return nil, grammar.Decline("operator")
				}
			case *entity.Integer, *entity.Decimal:
				return nil, grammar.Decline("operator")
			}
			return entity.NewApplication(fn, args, style)
		}), nil
	}
}
