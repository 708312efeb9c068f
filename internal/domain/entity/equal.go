package entity

// Equal reports structural equality of two trees. Operators and keywords are
// compared by content dictionary and name, not by identity.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch x := a.(type) {
	case *MultaryOperation:
		y := b.(*MultaryOperation)
		return x.operator.Key() == y.operator.Key() && equalAll(x.operands, y.operands)
	case *FunctionApplication:
		y := b.(*FunctionApplication)
		return x.style == y.style && Equal(x.function, y.function) && equalAll(x.arguments, y.arguments)
	case *Keyword:
		y := b.(*Keyword)
		return x.Key() == y.Key()
	case *Variable:
		return x.name == b.(*Variable).name
	case *Integer:
		return x.value.Cmp(b.(*Integer).value) == 0
	case *Decimal:
		return x.value == b.(*Decimal).value
	}
	return false
}

func equalAll(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Walk visits n and its operands depth-first, parents before children.
// Returning false from fn skips the node's operands.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.Operands() {
		Walk(child, fn)
	}
}
