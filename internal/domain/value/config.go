package value

import (
	"fmt"
	"strings"
)

// Output formats understood by the renderers.
const (
	FormatPresentation = "presentation"
	FormatOpenMath     = "openmath"
	FormatMathML       = "mathml"
	FormatHTML         = "html"
	FormatAll          = "all"
)

// Config is the engine configuration, loaded from JSON or YAML files that may
// extend each other.
type Config struct {
	// Profile names a module list from the profile registry.
	Profile string `json:"profile,omitempty" yaml:"profile,omitempty"`

	// Modules, when set, replaces the profile's module list. Order matters:
	// later modules take priority at the same precedence level.
	Modules []string `json:"modules,omitempty" yaml:"modules,omitempty"`

	Theme ThemeConfig `json:"theme" yaml:"theme"`

	Plugins map[string]PluginConfiguration `json:"plugins,omitempty" yaml:"plugins,omitempty"`

	Profiles map[string]ProfileConfiguration `json:"profiles,omitempty" yaml:"profiles,omitempty"`

	Output OutputConfiguration `json:"output" yaml:"output"`

	// TraceLevel is one of debug, info, error.
	TraceLevel string `json:"trace_level,omitempty" yaml:"trace_level,omitempty"`

	Extends []string `json:"extends,omitempty" yaml:"extends,omitempty"`

	Schema  string `json:"$schema,omitempty" yaml:"$schema,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// PluginConfiguration points at a .so bundle contributing modules.
type PluginConfiguration struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
}

// ProfileConfiguration is a user-defined named module list.
type ProfileConfiguration struct {
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Extends     string   `json:"extends,omitempty" yaml:"extends,omitempty"`
	Modules     []string `json:"modules" yaml:"modules"`
}

// OutputConfiguration controls what the CLI prints.
type OutputConfiguration struct {
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
	Color  *bool  `json:"color,omitempty" yaml:"color,omitempty"`
}

// NewConfig creates a configuration with default values.
func NewConfig() *Config {
	return &Config{
		Profile:  "full",
		Theme:    NewThemeConfig(),
		Plugins:  make(map[string]PluginConfiguration),
		Profiles: make(map[string]ProfileConfiguration),
		Output:   OutputConfiguration{Format: FormatAll},
		Extends:  make([]string, 0),
	}
}

// Merge returns a new configuration with other layered on top of c.
func (c *Config) Merge(other *Config) *Config {
	merged := c.Clone()

	if other.Profile != "" {
		merged.Profile = other.Profile
	}
	if len(other.Modules) > 0 {
		merged.Modules = append([]string(nil), other.Modules...)
	}
	if other.Theme.ThemeName != "" {
		merged.Theme.ThemeName = other.Theme.ThemeName
	}
	if other.Theme.PlainMarks {
		merged.Theme.PlainMarks = true
	}
	for key, o := range other.Theme.Overrides {
		merged.Theme.Overrides[key] = o
	}
	for name, p := range other.Plugins {
		merged.Plugins[name] = p
	}
	for name, p := range other.Profiles {
		merged.Profiles[name] = cloneProfile(p)
	}
	if other.Output.Format != "" {
		merged.Output.Format = other.Output.Format
	}
	if other.Output.Color != nil {
		color := *other.Output.Color
		merged.Output.Color = &color
	}
	if other.TraceLevel != "" {
		merged.TraceLevel = other.TraceLevel
	}
	if other.Schema != "" {
		merged.Schema = other.Schema
	}
	if other.Version != "" {
		merged.Version = other.Version
	}

	return merged
}

// Validate checks the configuration for values no component could use.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "", FormatPresentation, FormatOpenMath, FormatMathML, FormatHTML, FormatAll:
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}

	switch strings.ToLower(c.TraceLevel) {
	case "", "debug", "info", "error":
	default:
		return fmt.Errorf("unknown trace level %q", c.TraceLevel)
	}

	for name, plugin := range c.Plugins {
		if plugin.Enabled && plugin.Path == "" {
			return fmt.Errorf("invalid plugin config for %s: enabled plugin must have a path", name)
		}
	}

	for name, profile := range c.Profiles {
		if len(profile.Modules) == 0 && profile.Extends == "" {
			return fmt.Errorf("profile %s lists no modules", name)
		}
	}

	for i, name := range c.Modules {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("module #%d has an empty name", i+1)
		}
	}

	return nil
}

// ColorEnabled reports whether coloured output is enabled, defaulting to true.
func (c *Config) ColorEnabled() bool {
	return c.Output.Color == nil || *c.Output.Color
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := &Config{
		Profile:    c.Profile,
		Modules:    append([]string(nil), c.Modules...),
		Theme:      cloneThemeConfig(c.Theme),
		Plugins:    make(map[string]PluginConfiguration, len(c.Plugins)),
		Profiles:   make(map[string]ProfileConfiguration, len(c.Profiles)),
		Output:     OutputConfiguration{Format: c.Output.Format},
		TraceLevel: c.TraceLevel,
		Extends:    append([]string{}, c.Extends...),
		Schema:     c.Schema,
		Version:    c.Version,
	}
	if c.Output.Color != nil {
		color := *c.Output.Color
		clone.Output.Color = &color
	}
	for name, p := range c.Plugins {
		clone.Plugins[name] = p
	}
	for name, p := range c.Profiles {
		clone.Profiles[name] = cloneProfile(p)
	}
	return clone
}

func cloneThemeConfig(tc ThemeConfig) ThemeConfig {
	out := ThemeConfig{
		ThemeName:  tc.ThemeName,
		PlainMarks: tc.PlainMarks,
		Overrides:  make(map[string]SymbolOverride, len(tc.Overrides)),
	}
	for key, o := range tc.Overrides {
		out.Overrides[key] = SymbolOverride{
			Onscreen: append([]string(nil), o.Onscreen...),
			OpenMath: o.OpenMath,
			MathML:   append([]string(nil), o.MathML...),
			Aliases:  append([]string(nil), o.Aliases...),
		}
	}
	return out
}

func cloneProfile(p ProfileConfiguration) ProfileConfiguration {
	return ProfileConfiguration{
		Description: p.Description,
		Extends:     p.Extends,
		Modules:     append([]string(nil), p.Modules...),
	}
}
