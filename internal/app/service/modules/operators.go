package modules

import (
	"github.com/formulaeditor/formulaeditor/internal/app/service/grammar"
	"github.com/formulaeditor/formulaeditor/internal/app/service/openmath"
	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
)

// Tokens matches the on-screen token at position i of op's symbol. At
// position 0 the aliases of op are accepted too.
func (r *Registrar) Tokens(op *entity.Operator, i int) grammar.Rule {
	texts := []string{op.Symbol().Token(i)}
	if i == 0 {
		texts = append(texts, r.Aliases(op.CD(), op.Name())...)
	}
	texts = dedupe(texts)
	alts := make([]grammar.Rule, 0, len(texts))
	for _, text := range texts {
		switch {
		case text == "":
		case isWord(text):
			alts = append(alts, grammar.Word(text))
		default:
			alts = append(alts, grammar.Token(text))
		}
	}
	if len(alts) == 1 {
		return alts[0]
	}
	return grammar.Alternation(alts...)
}

// InfixOperator registers an operator written between its operands. The
// right operand is parsed one ladder level up, so chains fold to the left.
// Operators with Flatten collect a+b+c into one node.
func (r *Registrar) InfixOperator(spec entity.OperatorSpec, aliases ...string) (*entity.Operator, error) {
	spec.Layout = entity.LayoutInfix
	op, err := r.Operator(spec, aliases...)
	if err != nil {
		return nil, err
	}
	p := op.Precedence()
	tail := grammar.Transform(grammar.Concatenation(r.Tokens(op, 0), ref(p+LevelStep)),
		func(values []any) (any, error) {
			rhs := values[1].(entity.Node)
			return grammar.Tail(func(acc grammar.Accumulated) (any, error) {
				lhs := acc.Value.(entity.Node)
				if prev, ok := lhs.(*entity.MultaryOperation); ok && acc.Folded && op.Flatten() && prev.Operator().Key() == op.Key() {
					return entity.NewOperation(op, append(prev.Operands(), rhs)...)
				}
				return entity.NewOperation(op, lhs, rhs)
			}), nil
		})
	if err := r.ExtendInfix(p, tail); err != nil {
		return nil, err
	}
	r.Handle(op.CD(), op.Name(), openmath.OperationHandler(op))
	return op, nil
}

// PrefixOperator registers a unary operator written before its operand.
func (r *Registrar) PrefixOperator(spec entity.OperatorSpec, aliases ...string) (*entity.Operator, error) {
	spec.Layout, spec.Arity = entity.LayoutPrefix, entity.Unary
	op, err := r.Operator(spec, aliases...)
	if err != nil {
		return nil, err
	}
	p := op.Precedence()
	rule := grammar.Transform(grammar.Concatenation(r.Tokens(op, 0), ref(p)),
		func(values []any) (any, error) {
			return entity.NewOperation(op, values[1].(entity.Node))
		})
	if err := r.ExtendLevel(p, rule); err != nil {
		return nil, err
	}
	r.Handle(op.CD(), op.Name(), openmath.OperationHandler(op))
	return op, nil
}

// PostfixOperator registers a unary operator written after its operand.
func (r *Registrar) PostfixOperator(spec entity.OperatorSpec, aliases ...string) (*entity.Operator, error) {
	spec.Layout, spec.Arity = entity.LayoutPostfix, entity.Unary
	op, err := r.Operator(spec, aliases...)
	if err != nil {
		return nil, err
	}
	if err := r.Postfix(op, r.Tokens(op, 0)); err != nil {
		return nil, err
	}
	return op, nil
}

// Postfix installs op as a postfix tail matched by token, for operators
// whose token needs a guard beyond Tokens.
func (r *Registrar) Postfix(op *entity.Operator, token grammar.Rule) error {
	tail := grammar.Transform(token, func([]any) (any, error) {
		return grammar.Tail(func(acc grammar.Accumulated) (any, error) {
			return entity.NewOperation(op, acc.Value.(entity.Node))
		}), nil
	})
	if err := r.ExtendInfix(op.Precedence(), tail); err != nil {
		return err
	}
	r.Handle(op.CD(), op.Name(), openmath.OperationHandler(op))
	return nil
}

// SuperscriptOperator registers a binary operator whose second operand is
// raised. The exponent is parsed one level below the operator, so it may
// carry a sign and nests to the right.
func (r *Registrar) SuperscriptOperator(spec entity.OperatorSpec, aliases ...string) (*entity.Operator, error) {
	spec.Layout, spec.Arity = entity.LayoutSuperscript, entity.Binary
	op, err := r.Operator(spec, aliases...)
	if err != nil {
		return nil, err
	}
	p := op.Precedence()
	exponent := p - LevelStep
	if exponent < 0 {
		exponent = 0
	}
	tail := grammar.Transform(grammar.Concatenation(r.Tokens(op, 0), ref(exponent)),
		func(values []any) (any, error) {
			rhs := values[1].(entity.Node)
			return grammar.Tail(func(acc grammar.Accumulated) (any, error) {
				return entity.NewOperation(op, acc.Value.(entity.Node), rhs)
			}), nil
		})
	if err := r.ExtendInfix(p, tail); err != nil {
		return nil, err
	}
	r.Handle(op.CD(), op.Name(), openmath.OperationHandler(op))
	return op, nil
}

// BracketOperator registers an operator written as open, operands separated
// by the separator, close. Operands are full expressions; the list may be
// empty when the arity allows none. alternates are further accepted forms
// yielding the operand list as a Sequence of nodes.
func (r *Registrar) BracketOperator(spec entity.OperatorSpec, alternates ...grammar.Rule) (*entity.Operator, error) {
	spec.Layout = entity.LayoutBracket
	op, err := r.Operator(spec)
	if err != nil {
		return nil, err
	}
	build := func(operands []any) (any, error) {
		nodes := make([]entity.Node, len(operands))
		for i, v := range operands {
			nodes[i] = v.(entity.Node)
		}
		return entity.NewOperation(op, nodes...)
	}

	list := SeparatedList(grammar.Ref(Root), r.Tokens(op, 1))
	if op.Arity().Min == 0 {
		list = grammar.Alternation(list, grammar.Empty(grammar.Sequence{}))
	}
	forms := []grammar.Rule{
		grammar.Transform(grammar.Concatenation(
			r.Tokens(op, 0),
			list,
			r.Tokens(op, 2),
		), func(values []any) (any, error) {
			return build(values[1].(grammar.Sequence))
		}),
	}
	for _, alt := range alternates {
		forms = append(forms, grammar.Transform(alt, build))
	}
	if err := r.ExtendLevel(op.Precedence(), grammar.Alternation(forms...)); err != nil {
		return nil, err
	}
	r.Handle(op.CD(), op.Name(), openmath.OperationHandler(op))
	return op, nil
}

// SeparatedList matches one or more items separated by sep. Its value is a
// Sequence of the item values.
func SeparatedList(item, sep grammar.Rule) grammar.Rule {
	more := grammar.Transform(grammar.Concatenation(sep, item), func(values []any) (any, error) {
		return values[1], nil
	})
	return grammar.Transform(grammar.Concatenation(item, grammar.Repetition(more)), func(values []any) (any, error) {
		rest := values[1].(grammar.Sequence)
		return append(grammar.Sequence{values[0]}, rest...), nil
	})
}
