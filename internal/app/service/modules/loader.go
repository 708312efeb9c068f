package modules

import (
	"context"
	"fmt"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/formulaeditor/formulaeditor/internal/app/service/grammar"
	"github.com/formulaeditor/formulaeditor/internal/app/service/openmath"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
	"github.com/formulaeditor/formulaeditor/internal/shared/functional"
)

// ModuleReport lists what one module registered.
type ModuleReport struct {
	Name     string   `json:"name" yaml:"name"`
	Rules    []string `json:"rules,omitempty" yaml:"rules,omitempty"`
	Handlers []string `json:"handlers,omitempty" yaml:"handlers,omitempty"`
	Symbols  []string `json:"symbols,omitempty" yaml:"symbols,omitempty"`
}

func appendOnce(list []string, item string) []string {
	for _, existing := range list {
		if existing == item {
			return list
		}
	}
	return append(list, item)
}

func (m *ModuleReport) addRule(name string)   { m.Rules = appendOnce(m.Rules, name) }
func (m *ModuleReport) addHandler(key string) { m.Handlers = appendOnce(m.Handlers, key) }
func (m *ModuleReport) addSymbol(key string)  { m.Symbols = appendOnce(m.Symbols, key) }

// Report lists the loaded modules in load order.
type Report struct {
	modules *linkedhashmap.Map
}

func newReport() *Report {
	return &Report{modules: linkedhashmap.New()}
}

// Modules returns the module reports in load order.
func (r *Report) Modules() []ModuleReport {
	out := make([]ModuleReport, 0, r.modules.Size())
	for _, v := range r.modules.Values() {
		out = append(out, *v.(*ModuleReport))
	}
	return out
}

// Module returns the report of one module.
func (r *Report) Module(name string) functional.Option[ModuleReport] {
	v, found := r.modules.Get(name)
	if !found {
		return functional.None[ModuleReport]()
	}
	return functional.Some(*v.(*ModuleReport))
}

// Bundle is the frozen result of loading modules.
type Bundle struct {
	Grammar    *grammar.Grammar
	Dispatcher *openmath.Dispatcher
	Keywords   *KeywordTable
	Report     *Report
	Theme      value.Theme
}

// Loader runs module registrations against fresh builders.
type Loader struct {
	theme value.Theme
}

// NewLoader creates a loader applying theme to every symbol.
func NewLoader(theme value.Theme) *Loader {
	return &Loader{theme: theme}
}

// Load registers mods in order and freezes the result. Cancellation is
// checked between modules.
func (l *Loader) Load(ctx context.Context, mods []Module) functional.Result[*Bundle] {
	gb := grammar.NewBuilder()
	ob := openmath.NewBuilder()
	keywords := newKeywordTable()
	report := newReport()
	aliases := make(map[string][]string)

	for _, m := range mods {
		if err := ctx.Err(); err != nil {
			return functional.Err[*Bundle](fmt.Errorf("loading modules: %w", err))
		}
		if _, dup := report.modules.Get(m.Name()); dup {
			return functional.Err[*Bundle](fmt.Errorf("module %s loaded twice", m.Name()))
		}

		entry := &ModuleReport{Name: m.Name()}
		r := &Registrar{
			module:   m.Name(),
			grammar:  gb,
			openmath: ob,
			keywords: keywords,
			theme:    l.theme,
			aliases:  aliases,
			entry:    entry,
		}
		if err := m.Register(r); err != nil {
			return functional.Err[*Bundle](fmt.Errorf("module %s: %w", m.Name(), err))
		}
		report.modules.Put(m.Name(), entry)
		T().Debugf("modules: loaded %s (%d rules, %d handlers, %d symbols)",
			m.Name(), len(entry.Rules), len(entry.Handlers), len(entry.Symbols))
	}

	g, err := gb.Build(Root)
	if err != nil {
		return functional.Err[*Bundle](fmt.Errorf("no module defined the %s rule: %w", Root, err))
	}
	T().Infof("modules: %d modules loaded with theme %s", report.modules.Size(), l.theme.Name())
	return functional.Ok(&Bundle{
		Grammar:    g,
		Dispatcher: ob.Build(),
		Keywords:   keywords,
		Report:     report,
		Theme:      l.theme,
	})
}
