package value

import (
	"fmt"
	"sort"

	"github.com/formulaeditor/formulaeditor/internal/shared/functional"
)

// ThemeConfig selects a theme and layers per-symbol overrides on top of it.
type ThemeConfig struct {
	ThemeName string `json:"theme" yaml:"theme" mapstructure:"theme"`

	// Overrides is keyed by "cd__name".
	Overrides map[string]SymbolOverride `json:"overrides,omitempty" yaml:"overrides,omitempty" mapstructure:"overrides"`

	// PlainMarks replaces the status marks of CLI output by ASCII.
	PlainMarks bool `json:"plain_marks,omitempty" yaml:"plain_marks,omitempty" mapstructure:"plain_marks"`
}

// SymbolOverride replaces parts of a registered symbol. Empty parts keep the
// module's default. Aliases are additional on-screen tokens accepted on input.
type SymbolOverride struct {
	Onscreen []string `json:"onscreen,omitempty" yaml:"onscreen,omitempty"`
	OpenMath string   `json:"openmath,omitempty" yaml:"openmath,omitempty"`
	MathML   []string `json:"mathml,omitempty" yaml:"mathml,omitempty"`
	Aliases  []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// Theme is a resolved, immutable set of symbol overrides plus the marks and
// colours used by terminal output.
type Theme struct {
	name      string
	overrides map[string]SymbolOverride
	marks     ThemeMarks
	colors    ThemeColors
}

// ThemeMarks are the status markers printed by the CLI.
type ThemeMarks struct {
	Success string `json:"success"`
	Error   string `json:"error"`
	Arrow   string `json:"arrow"`
	Caret   string `json:"caret"`
}

// ThemeColors are lipgloss colour specifications for rendered formulas.
type ThemeColors struct {
	Operator   string `json:"operator" yaml:"operator"`
	Identifier string `json:"identifier" yaml:"identifier"`
	Number     string `json:"number" yaml:"number"`
	Keyword    string `json:"keyword" yaml:"keyword"`
	Error      string `json:"error" yaml:"error"`
}

// DefaultThemeName is the theme used when none is configured.
const DefaultThemeName = "default"

// NewThemeConfig creates a ThemeConfig selecting the default theme.
func NewThemeConfig() ThemeConfig {
	return ThemeConfig{
		ThemeName: DefaultThemeName,
		Overrides: make(map[string]SymbolOverride),
	}
}

// BuiltinThemeNames lists the themes NewTheme knows without a provider.
func BuiltinThemeNames() []string {
	return []string{"ascii", "default", "nl"}
}

// NewTheme resolves a builtin theme and applies the configured overrides.
func NewTheme(config ThemeConfig) functional.Result[Theme] {
	base, ok := builtinOverrides()[config.ThemeName]
	if !ok {
		return functional.Err[Theme](fmt.Errorf("unknown builtin theme: %s", config.ThemeName))
	}
	return NewThemeFrom(config.ThemeName, base, config)
}

// NewThemeFrom creates a theme from base overrides (builtin or loaded from a
// theme file) with the config's overrides applied last.
func NewThemeFrom(name string, base map[string]SymbolOverride, config ThemeConfig) functional.Result[Theme] {
	overrides := make(map[string]SymbolOverride, len(base)+len(config.Overrides))
	for key, o := range base {
		overrides[key] = o
	}
	for key, o := range config.Overrides {
		if _, _, ok := SplitSymbolKey(key); !ok {
			return functional.Err[Theme](fmt.Errorf("theme %s: override key %q is not of the form cd__name", name, key))
		}
		overrides[key] = o
	}

	marks := unicodeMarks()
	if config.PlainMarks || name == "ascii" {
		marks = asciiMarks()
	}

	return functional.Ok(Theme{
		name:      name,
		overrides: overrides,
		marks:     marks,
		colors:    standardColors(),
	})
}

// Name returns the theme name.
func (t Theme) Name() string {
	return t.name
}

// Override returns the override registered for the symbol key, if any.
func (t Theme) Override(key string) functional.Option[SymbolOverride] {
	return functional.FromLookup(t.overrides, key)
}

// OverrideKeys returns the overridden symbol keys in sorted order.
func (t Theme) OverrideKeys() []string {
	keys := make([]string, 0, len(t.overrides))
	for key := range t.overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Marks returns the CLI status marks.
func (t Theme) Marks() ThemeMarks {
	return t.marks
}

// Colors returns the formula colours.
func (t Theme) Colors() ThemeColors {
	return t.colors
}

func builtinOverrides() map[string]map[string]SymbolOverride {
	return map[string]map[string]SymbolOverride{
		"default": {},
		"ascii": {
			"arith1__times":   {Onscreen: []string{"*"}, Aliases: []string{"·"}},
			"nums1__pi":       {Onscreen: []string{"pi"}, Aliases: []string{"π"}},
			"nums1__infinity": {Onscreen: []string{"oo"}, Aliases: []string{"∞"}},
			"relation1__neq":  {Onscreen: []string{"!="}, Aliases: []string{"≠"}},
			"relation1__leq":  {Onscreen: []string{"<="}, Aliases: []string{"≤"}},
			"relation1__geq":  {Onscreen: []string{">="}, Aliases: []string{"≥"}},
			"logic1__and":     {Onscreen: []string{"and"}},
			"logic1__or":      {Onscreen: []string{"or"}},
			"logic1__not":     {Onscreen: []string{"not"}},
		},
		"nl": {
			"arith1__gcd": {Onscreen: []string{"ggd"}, MathML: []string{"<mi>ggd</mi>"}},
			"arith1__lcm": {Onscreen: []string{"kgv"}, MathML: []string{"<mi>kgv</mi>"}},
			"nums1__e":    {Aliases: []string{"ℯ"}},
		},
	}
}

// BuiltinOverrides returns a copy of the overrides of a builtin theme.
func BuiltinOverrides(name string) (map[string]SymbolOverride, bool) {
	base, ok := builtinOverrides()[name]
	if !ok {
		return nil, false
	}
	out := make(map[string]SymbolOverride, len(base))
	for k, v := range base {
		out[k] = v
	}
	return out, true
}

func unicodeMarks() ThemeMarks {
	return ThemeMarks{Success: "✓", Error: "✗", Arrow: "→", Caret: "^"}
}

func asciiMarks() ThemeMarks {
	return ThemeMarks{Success: "[OK]", Error: "[ERROR]", Arrow: "=>", Caret: "^"}
}

func standardColors() ThemeColors {
	return ThemeColors{
		Operator:   "212",
		Identifier: "81",
		Number:     "214",
		Keyword:    "46",
		Error:      "196",
	}
}

// WithColors returns a copy of t with the non-empty colours of c applied.
func (t Theme) WithColors(c ThemeColors) Theme {
	if c.Operator != "" {
		t.colors.Operator = c.Operator
	}
	if c.Identifier != "" {
		t.colors.Identifier = c.Identifier
	}
	if c.Number != "" {
		t.colors.Number = c.Number
	}
	if c.Keyword != "" {
		t.colors.Keyword = c.Keyword
	}
	if c.Error != "" {
		t.colors.Error = c.Error
	}
	return t
}
