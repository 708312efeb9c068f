package grammar

import (
	"fmt"

	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
	"github.com/formulaeditor/formulaeditor/internal/shared/functional"
	"golang.org/x/text/unicode/norm"
)

// Grammar is an immutable set of named rules.
type Grammar struct {
	root   string
	rules  map[string]Rule
	chains map[string][]string
	names  []string
}

// Root returns the name of the entry rule.
func (g *Grammar) Root() string { return g.root }

// Rule looks up a rule by name.
func (g *Grammar) Rule(name string) functional.Option[Rule] {
	return functional.FromLookup(g.rules, name)
}

// Names returns the rule names in definition order.
func (g *Grammar) Names() []string {
	return append([]string(nil), g.names...)
}

// Chain returns who installed each layer of a rule, newest first. The first
// entry is tried first at parse time.
func (g *Grammar) Chain(name string) []string {
	return append([]string(nil), g.chains[name]...)
}

// Parse parses the whole input with the root rule.
func (g *Grammar) Parse(input string) functional.Result[any] {
	return g.ParseRule(g.root, input)
}

// ParseRule parses the whole input with the named rule. Input is normalised
// to NFC; trailing white space is ignored. Mismatches and unconsumed input
// are reported as *entity.ParseFailure at the furthest position reached.
func (g *Grammar) ParseRule(name, input string) functional.Result[any] {
	text := norm.NFC.String(input)
	rule, ok := g.rules[name]
	if !ok {
		return functional.Err[any](&UnknownRule{Name: name})
	}

	result := rule(NewCursor(g, text))
	if result.IsErr() {
		if mm, ok := AsMismatch(result.Error()); ok {
			failure := entity.ParseFailureAt(text, mm.Farthest.Offset, mm.Farthest.Expected, false)
			T().Debugf("grammar: %s", failure)
			return functional.Err[any](failure)
		}
		return functional.Err[any](fmt.Errorf("parse %q: %w", input, result.Error()))
	}

	m := result.Unwrap()
	end := m.Next.SkipSpace()
	if !end.AtEnd() {
		far := m.Farthest.Merge(Expect(end, "end of input"))
		failure := entity.ParseFailureAt(text, far.Offset, far.Expected, true)
		T().Debugf("grammar: %s", failure)
		return functional.Err[any](failure)
	}
	return functional.Ok(m.Value)
}
