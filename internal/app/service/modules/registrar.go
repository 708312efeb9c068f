package modules

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/formulaeditor/formulaeditor/internal/app/service/grammar"
	"github.com/formulaeditor/formulaeditor/internal/app/service/openmath"
	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
)

// Registrar is handed to Module.Register. Every registration is attributed
// to the module being loaded.
type Registrar struct {
	module   string
	grammar  *grammar.Builder
	openmath *openmath.Builder
	keywords *KeywordTable
	theme    value.Theme
	aliases  map[string][]string
	entry    *ModuleReport
}

// Module returns the name of the module being registered.
func (r *Registrar) Module() string { return r.module }

// Theme returns the active theme.
func (r *Registrar) Theme() value.Theme { return r.theme }

// Define adds a new named rule.
func (r *Registrar) Define(name string, rule grammar.Rule) error {
	if err := r.grammar.Define(name, r.module, rule); err != nil {
		return err
	}
	r.entry.addRule(name)
	return nil
}

// ExtendRule replaces a rule by a wrapper around its current definition.
func (r *Registrar) ExtendRule(name string, wrap func(parent grammar.Rule) grammar.Rule) error {
	if err := r.grammar.Extend(name, r.module, wrap); err != nil {
		return err
	}
	r.entry.addRule(name)
	return nil
}

// ExtendLevel puts rule in front of the alternatives of ladder level k.
// Prefix and bracket forms are installed this way.
func (r *Registrar) ExtendLevel(k int, rule grammar.Rule) error {
	if err := validLevel(k); err != nil {
		return fmt.Errorf("%s: %w", r.module, err)
	}
	return r.ExtendRule(Level(k), func(parent grammar.Rule) grammar.Rule {
		return grammar.Alternation(rule, parent)
	})
}

// ExtendInfix puts tail in front of the tails of level k. A tail rule must
// yield a grammar.Tail.
func (r *Registrar) ExtendInfix(k int, tail grammar.Rule) error {
	if err := validLevel(k); err != nil {
		return fmt.Errorf("%s: %w", r.module, err)
	}
	if k == MaxLevel {
		return fmt.Errorf("%s: level %d has no tails", r.module, k)
	}
	return r.ExtendRule(Infix(k), func(parent grammar.Rule) grammar.Rule {
		return grammar.Alternation(tail, parent)
	})
}

// Handle registers an OpenMath handler. A later registration of the same
// key wins.
func (r *Registrar) Handle(cd, name string, h openmath.Handler) {
	r.openmath.Handle(cd, name, h)
	r.entry.addHandler(value.SymbolKey(cd, name))
}

// Symbol applies the theme's override for cd__name to def.
func (r *Registrar) Symbol(cd, name string, def value.Symbol) (value.Symbol, error) {
	override := r.theme.Override(value.SymbolKey(cd, name))
	if override.IsNone() {
		return def, nil
	}
	merged := def.Merge(override.Unwrap())
	if merged.IsErr() {
		return value.Symbol{}, fmt.Errorf("theme %s, symbol %s.%s: %w", r.theme.Name(), cd, name, merged.Error())
	}
	return merged.Unwrap(), nil
}

// Aliases returns the extra input tokens accepted for cd__name: those the
// module declared followed by those of the theme.
func (r *Registrar) Aliases(cd, name string) []string {
	key := value.SymbolKey(cd, name)
	out := append([]string(nil), r.aliases[key]...)
	if o := r.theme.Override(key); o.IsSome() {
		out = append(out, o.Unwrap().Aliases...)
	}
	return out
}

// Operator creates an operator with the theme applied to its symbol.
// aliases are additional input tokens for single-token symbols.
func (r *Registrar) Operator(spec entity.OperatorSpec, aliases ...string) (*entity.Operator, error) {
	sym, err := r.Symbol(spec.CD, spec.Name, spec.Symbol)
	if err != nil {
		return nil, err
	}
	spec.Symbol = sym
	result := entity.NewOperator(spec)
	if result.IsErr() {
		return nil, fmt.Errorf("%s: %w", r.module, result.Error())
	}
	key := value.SymbolKey(spec.CD, spec.Name)
	r.aliases[key] = append(r.aliases[key], aliases...)
	r.entry.addSymbol(key)
	return result.Unwrap(), nil
}

// Keyword registers a keyword in both keyword tables. It is typed as its
// on-screen token or any of inputs and the aliases; tokens that are not
// plain words get literal alternatives in front of the variable rule.
func (r *Registrar) Keyword(cd, name string, def value.Symbol, category entity.KeywordCategory, inputs ...string) (*entity.Keyword, error) {
	sym, err := r.Symbol(cd, name, def)
	if err != nil {
		return nil, err
	}
	kw, err := entity.NewKeyword(cd, name, sym, category)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.module, err)
	}
	r.aliases[kw.Key()] = append(r.aliases[kw.Key()], inputs...)

	texts := dedupe(append([]string{sym.Token(0)}, r.Aliases(cd, name)...))
	r.keywords.add(kw, texts)
	r.openmath.Keyword(kw)
	r.entry.addSymbol(kw.Key())

	for _, text := range texts {
		if strings.TrimSpace(text) == "" || isWord(text) {
			continue
		}
		literal := grammar.Transform(grammar.Token(text), func([]any) (any, error) {
			return kw, nil
		})
		if err := r.ExtendRule(RuleVariable, func(parent grammar.Rule) grammar.Rule {
			return grammar.Alternation(literal, parent)
		}); err != nil {
			return nil, err
		}
	}
	return kw, nil
}

// LookupKeyword resolves typed text against the keyword table at parse
// time. Rules defined during loading may call it.
func (r *Registrar) LookupKeyword(text string) (*entity.Keyword, bool) {
	kw := r.keywords.ByText(text)
	if kw.IsNone() {
		return nil, false
	}
	return kw.Unwrap(), true
}

// isWord reports whether text would be read by the identifier rule.
func isWord(text string) bool {
	for i, c := range text {
		if !unicode.IsLetter(c) && (i == 0 || !unicode.IsDigit(c)) {
			return false
		}
	}
	return text != ""
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
