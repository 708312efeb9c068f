package grammar

import (
	"fmt"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// definition is the current head of a rule's override chain.
type definition struct {
	rule Rule
	// origins lists who installed each layer, oldest first.
	origins []string
}

// Builder accumulates rule definitions and extensions. It is not safe for
// concurrent use; Build freezes the result.
type Builder struct {
	rules *linkedhashmap.Map
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{rules: linkedhashmap.New()}
}

func (b *Builder) lookup(name string) (*definition, bool) {
	v, found := b.rules.Get(name)
	if !found {
		return nil, false
	}
	return v.(*definition), true
}

// Has reports whether name is defined.
func (b *Builder) Has(name string) bool {
	_, ok := b.lookup(name)
	return ok
}

// Define registers a new rule. origin names the module installing it.
func (b *Builder) Define(name, origin string, rule Rule) error {
	if name == "" || rule == nil {
		return fmt.Errorf("define %q: empty name or rule", name)
	}
	if d, ok := b.lookup(name); ok {
		return fmt.Errorf("rule %q already defined by %s", name, d.origins[0])
	}
	T().Debugf("grammar: %s defines %s", origin, name)
	b.rules.Put(name, &definition{rule: rule, origins: []string{origin}})
	return nil
}

// Extend replaces the rule name by wrap(parent), where parent is the
// definition in place before the call.
func (b *Builder) Extend(name, origin string, wrap func(parent Rule) Rule) error {
	d, ok := b.lookup(name)
	if !ok {
		return fmt.Errorf("%s cannot extend %q: %w", origin, name, &UnknownRule{Name: name})
	}
	rule := wrap(d.rule)
	if rule == nil {
		return fmt.Errorf("%s: extension of %q produced no rule", origin, name)
	}
	T().Debugf("grammar: %s extends %s (layer %d)", origin, name, len(d.origins)+1)
	b.rules.Put(name, &definition{
		rule:    rule,
		origins: append(append([]string(nil), d.origins...), origin),
	})
	return nil
}

// ExtendFirst makes alt the first alternative of name, falling back to the
// previous definition.
func (b *Builder) ExtendFirst(name, origin string, alt Rule) error {
	return b.Extend(name, origin, func(parent Rule) Rule {
		return Alternation(alt, parent)
	})
}

// Build freezes the definitions into a Grammar whose Parse starts at root.
func (b *Builder) Build(root string) (*Grammar, error) {
	if !b.Has(root) {
		return nil, fmt.Errorf("build grammar: root %w", &UnknownRule{Name: root})
	}

	g := &Grammar{
		root:   root,
		rules:  make(map[string]Rule, b.rules.Size()),
		chains: make(map[string][]string, b.rules.Size()),
		names:  make([]string, 0, b.rules.Size()),
	}
	it := b.rules.Iterator()
	for it.Next() {
		name := it.Key().(string)
		d := it.Value().(*definition)
		g.names = append(g.names, name)
		g.rules[name] = d.rule
		chain := make([]string, len(d.origins))
		for i, origin := range d.origins {
			chain[len(d.origins)-1-i] = origin
		}
		g.chains[name] = chain
	}
	T().Infof("grammar: built %d rules, root %s", len(g.names), root)
	return g, nil
}
