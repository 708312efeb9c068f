package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/formulaeditor/formulaeditor/internal/app/service/modules"
	"github.com/formulaeditor/formulaeditor/internal/app/service/render"
	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
	"github.com/formulaeditor/formulaeditor/internal/shared/functional"
)

// EngineOptions are the collaborators of an Engine. Nil fields get defaults.
type EngineOptions struct {
	Config   *value.Config
	Themes   *ThemeService
	Profiles *ProfileRegistry
	Plugins  *PluginManager
}

// Engine is a loaded module set with its theme. It is immutable after
// NewEngine and safe for concurrent use.
type Engine struct {
	config  *value.Config
	bundle  *modules.Bundle
	modules []string
}

// NewEngine resolves the configured module list (explicit modules, else the
// profile), creates the theme and loads the modules.
func NewEngine(ctx context.Context, opts EngineOptions) functional.Result[*Engine] {
	config := opts.Config
	if config == nil {
		config = value.NewConfig()
	}
	if err := config.Validate(); err != nil {
		return functional.Err[*Engine](fmt.Errorf("invalid configuration: %w", err))
	}
	themes := opts.Themes
	if themes == nil {
		themes = NewThemeService("")
	}
	profiles := opts.Profiles
	if profiles == nil {
		profiles = NewProfileRegistry()
	}

	names, err := moduleNames(config, profiles)
	if err != nil {
		return functional.Err[*Engine](err)
	}
	mods, err := lookupModules(names, opts.Plugins)
	if err != nil {
		return functional.Err[*Engine](err)
	}

	themeResult := themes.CreateTheme(ctx, config.Theme)
	if themeResult.IsErr() {
		return functional.Err[*Engine](fmt.Errorf("theme: %w", themeResult.Error()))
	}

	bundle := modules.NewLoader(themeResult.Unwrap()).Load(ctx, mods)
	if bundle.IsErr() {
		return functional.Err[*Engine](bundle.Error())
	}
	T().Debugf("engine: modules %s", strings.Join(names, ", "))
	return functional.Ok(&Engine{config: config.Clone(), bundle: bundle.Unwrap(), modules: names})
}

func moduleNames(config *value.Config, profiles *ProfileRegistry) ([]string, error) {
	if len(config.Modules) > 0 {
		return append([]string(nil), config.Modules...), nil
	}
	if err := profiles.RegisterConfigured(config); err != nil {
		return nil, fmt.Errorf("profiles: %w", err)
	}
	names, err := profiles.Resolve(config.Profile)
	if err != nil {
		return nil, fmt.Errorf("profiles: %w", err)
	}
	return names, nil
}

// lookupModules resolves names against the built-in catalog, then plugins.
func lookupModules(names []string, plugins *PluginManager) ([]modules.Module, error) {
	mods := make([]modules.Module, 0, len(names))
	for _, name := range names {
		if m, ok := modules.Lookup(name); ok {
			mods = append(mods, m)
			continue
		}
		if plugins != nil {
			if m, ok := plugins.Module(name); ok {
				mods = append(mods, m)
				continue
			}
		}
		return nil, fmt.Errorf("unknown module %s", name)
	}
	return mods, nil
}

func (e *Engine) Config() *value.Config   { return e.config.Clone() }
func (e *Engine) Bundle() *modules.Bundle { return e.bundle }
func (e *Engine) Theme() value.Theme      { return e.bundle.Theme }

// Modules returns the loaded module names in load order.
func (e *Engine) Modules() []string {
	return append([]string(nil), e.modules...)
}

// Parse parses formula text into a semantic tree.
func (e *Engine) Parse(input string) functional.Result[entity.Node] {
	parsed := e.bundle.Grammar.Parse(input)
	if parsed.IsErr() {
		return functional.Err[entity.Node](parsed.Error())
	}
	node, ok := parsed.Unwrap().(entity.Node)
	if !ok || node == nil {
		return functional.Errf[entity.Node]("expression rule produced %T, not a formula", parsed.Unwrap())
	}
	return functional.Ok(node)
}

// FromOpenMath reads an OpenMath document into a semantic tree.
func (e *Engine) FromOpenMath(r io.Reader) functional.Result[entity.Node] {
	return e.bundle.Dispatcher.Read(r)
}

// Palette returns the terminal palette of the theme, honouring the colour setting.
func (e *Engine) Palette() render.Palette {
	return render.NewPalette(e.bundle.Theme.Colors(), e.config.ColorEnabled())
}

// Render renders node in one of the single output formats.
func (e *Engine) Render(node entity.Node, format string) functional.Result[string] {
	switch format {
	case value.FormatPresentation:
		return functional.Ok(render.PlainText(render.Presentation(node)))
	case value.FormatOpenMath:
		return functional.Ok(render.OpenMathDocument(node))
	case value.FormatMathML:
		return functional.Ok(render.MathMLDocument(node))
	case value.FormatHTML:
		return functional.Ok(render.HTML(render.Presentation(node)))
	}
	return functional.Errf[string]("cannot render format %q", format)
}

// InputKind tells Convert how to read an Input.
type InputKind int

const (
	InputText InputKind = iota
	InputOpenMath
)

// Input is one formula to convert.
type Input struct {
	Name string
	Kind InputKind
	Data string
}

// Conversion is the outcome for one Input. Err is set when it failed.
type Conversion struct {
	Name string
	Node entity.Node
	Err  error
}

// Convert reads one input.
func (e *Engine) Convert(input Input) Conversion {
	var result functional.Result[entity.Node]
	switch input.Kind {
	case InputOpenMath:
		result = e.FromOpenMath(strings.NewReader(input.Data))
	default:
		result = e.Parse(input.Data)
	}
	node, err := result.Value()
	return Conversion{Name: input.Name, Node: node, Err: err}
}

// ConvertAll converts inputs with at most workers in parallel, keeping input
// order. Failed inputs are reported per Conversion; only cancellation of ctx
// fails the whole batch.
func (e *Engine) ConvertAll(ctx context.Context, inputs []Input, workers int) functional.Result[[]Conversion] {
	if workers < 1 {
		workers = 1
	}
	out := make([]Conversion, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = e.Convert(input)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return functional.Err[[]Conversion](fmt.Errorf("conversion cancelled: %w", err))
	}
	return functional.Ok(out)
}

// FailureCount counts the failed conversions.
func FailureCount(conversions []Conversion) int {
	n := 0
	for _, c := range conversions {
		if c.Err != nil {
			n++
		}
	}
	return n
}

// AsParseFailure extracts a parse failure from err.
func AsParseFailure(err error) (*entity.ParseFailure, bool) {
	var pf *entity.ParseFailure
	if errors.As(err, &pf) {
		return pf, true
	}
	return nil, false
}
