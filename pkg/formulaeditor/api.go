// Package formulaeditor is the library interface of the formula engine:
// parse formula text or OpenMath into a semantic tree and render it as text,
// OpenMath, MathML or HTML.
package formulaeditor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/formulaeditor/formulaeditor/internal/app/service"
	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
	"github.com/formulaeditor/formulaeditor/pkg/formulaeditor/plugin"
)

// Version returns the version of the formulaeditor library.
const Version = "1.0.0"

// Output formats accepted by Formula.Render.
const (
	FormatPresentation = value.FormatPresentation
	FormatOpenMath     = value.FormatOpenMath
	FormatMathML       = value.FormatMathML
	FormatHTML         = value.FormatHTML
)

// SymbolOverride replaces the input and output spellings of one symbol.
type SymbolOverride = value.SymbolOverride

// ParseError locates text that does not match the loaded notation.
type ParseError = entity.ParseFailure

// Options select the notation and theme of an Editor. The zero value loads
// every built-in module with the default theme.
type Options struct {
	// ConfigFile, when set, is read first; the fields below override it.
	ConfigFile string `json:"configFile,omitempty"`

	Profile string   `json:"profile,omitempty"`
	Modules []string `json:"modules,omitempty"`

	Theme      string                    `json:"theme,omitempty"`
	PlainMarks bool                      `json:"plainMarks,omitempty"`
	Overrides  map[string]SymbolOverride `json:"overrides,omitempty"`

	// ThemesDir holds custom theme files.
	ThemesDir string `json:"themesDir,omitempty"`

	// Plugins contribute modules that Modules or a profile can name.
	Plugins []plugin.Plugin `json:"-"`
}

// Editor parses and renders formulae. It is safe for concurrent use.
type Editor struct {
	engine *service.Engine
}

// New loads the modules selected by options.
func New(ctx context.Context, options Options) (*Editor, error) {
	config, err := configFor(ctx, options)
	if err != nil {
		return nil, err
	}

	var plugins *service.PluginManager
	if len(options.Plugins) > 0 {
		plugins = service.NewPluginManager(plugin.PluginConfig{})
		for _, p := range options.Plugins {
			if err := plugins.AddPlugin(ctx, p); err != nil {
				return nil, err
			}
		}
	}

	engine := service.NewEngine(ctx, service.EngineOptions{
		Config:  config,
		Themes:  service.NewThemeService(options.ThemesDir),
		Plugins: plugins,
	})
	if engine.IsErr() {
		return nil, fmt.Errorf("failed to create editor: %w", engine.Error())
	}
	return &Editor{engine: engine.Unwrap()}, nil
}

func configFor(ctx context.Context, options Options) (*value.Config, error) {
	config := value.NewConfig()
	if options.ConfigFile != "" {
		resolved := service.NewConfigResolver().ResolveConfig(ctx, options.ConfigFile)
		if resolved.IsErr() {
			return nil, resolved.Error()
		}
		config = resolved.Unwrap()
	}
	if options.Profile != "" {
		config.Profile = options.Profile
		config.Modules = nil
	}
	if len(options.Modules) > 0 {
		config.Modules = append([]string(nil), options.Modules...)
	}
	if options.Theme != "" {
		config.Theme.ThemeName = options.Theme
	}
	if options.PlainMarks {
		config.Theme.PlainMarks = true
	}
	if config.Theme.Overrides == nil {
		config.Theme.Overrides = make(map[string]value.SymbolOverride)
	}
	for key, override := range options.Overrides {
		config.Theme.Overrides[key] = override
	}
	return config, nil
}

// Modules returns the loaded module names in load order.
func (e *Editor) Modules() []string {
	return e.engine.Modules()
}

// Theme returns the name of the theme in use.
func (e *Editor) Theme() string {
	return e.engine.Theme().Name()
}

// Parse parses formula text. Failures are *ParseError.
func (e *Editor) Parse(text string) (*Formula, error) {
	node, err := e.engine.Parse(text).Value()
	if err != nil {
		return nil, err
	}
	return &Formula{node: node, engine: e.engine}, nil
}

// FromOpenMath reads one OpenMath object.
func (e *Editor) FromOpenMath(r io.Reader) (*Formula, error) {
	node, err := e.engine.FromOpenMath(r).Value()
	if err != nil {
		return nil, err
	}
	return &Formula{node: node, engine: e.engine}, nil
}

// ParseAll parses texts with up to workers in parallel. The result has one
// entry per text; failed texts have a nil Formula and their error in errs.
func (e *Editor) ParseAll(ctx context.Context, texts []string, workers int) ([]*Formula, []error, error) {
	inputs := make([]service.Input, len(texts))
	for i, text := range texts {
		inputs[i] = service.Input{Name: fmt.Sprint(i), Kind: service.InputText, Data: text}
	}
	conversions, err := e.engine.ConvertAll(ctx, inputs, workers).Value()
	if err != nil {
		return nil, nil, err
	}
	formulas := make([]*Formula, len(conversions))
	errs := make([]error, len(conversions))
	for i, c := range conversions {
		if c.Err != nil {
			errs[i] = c.Err
			continue
		}
		formulas[i] = &Formula{node: c.Node, engine: e.engine}
	}
	return formulas, errs, nil
}

// Formula is a parsed formula.
type Formula struct {
	node   entity.Node
	engine *service.Engine
}

// String returns the semantic tree, e.g. "plus(x, 1)".
func (f *Formula) String() string {
	return f.node.String()
}

// Render renders the formula in one of the Format constants.
func (f *Formula) Render(format string) (string, error) {
	return f.engine.Render(f.node, format).Value()
}

// Text returns the presentation form in the editor's theme.
func (f *Formula) Text() string {
	return f.must(FormatPresentation)
}

// OpenMath returns the formula as an OpenMath document.
func (f *Formula) OpenMath() string {
	return f.must(FormatOpenMath)
}

// MathML returns the formula as a MathML document.
func (f *Formula) MathML() string {
	return f.must(FormatMathML)
}

// HTML returns the presentation form as HTML spans.
func (f *Formula) HTML() string {
	return f.must(FormatHTML)
}

func (f *Formula) must(format string) string {
	text, err := f.Render(format)
	if err != nil {
		panic(err)
	}
	return text
}

// ToJSON returns every rendering of the formula as a JSON object.
func (f *Formula) ToJSON() (string, error) {
	data, err := json.Marshal(map[string]string{
		"tree":         f.String(),
		"presentation": f.Text(),
		"openmath":     f.OpenMath(),
		"mathml":       f.MathML(),
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParseString parses text with the default editor.
func ParseString(ctx context.Context, text string) (*Formula, error) {
	editor, err := New(ctx, Options{})
	if err != nil {
		return nil, err
	}
	return editor.Parse(text)
}

// AsParseError extracts a parse failure from err.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// GetVersion returns the version of the formulaeditor library.
func GetVersion() string {
	return Version
}

// Convert reads a formula in one notation and renders it in another. from is
// "text" or FormatOpenMath.
func Convert(ctx context.Context, input, from, to string) (string, error) {
	editor, err := New(ctx, Options{})
	if err != nil {
		return "", err
	}
	var formula *Formula
	switch from {
	case "text", FormatPresentation:
		formula, err = editor.Parse(input)
	case FormatOpenMath:
		formula, err = editor.FromOpenMath(strings.NewReader(input))
	default:
		return "", fmt.Errorf("cannot read format %q", from)
	}
	if err != nil {
		return "", err
	}
	return formula.Render(to)
}
