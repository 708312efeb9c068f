package theme

import (
	"context"
	"fmt"

	"github.com/formulaeditor/formulaeditor/internal/domain/value"
	"github.com/formulaeditor/formulaeditor/internal/shared/functional"
)

// CustomProvider creates themes from definitions installed in a Store.
// A definition layers its overrides on a builtin base theme.
type CustomProvider struct {
	store *Store
}

func NewCustomProvider(store *Store) *CustomProvider {
	return &CustomProvider{store: store}
}

func (cp *CustomProvider) Name() string {
	return "custom"
}

func (cp *CustomProvider) CanHandle(config value.ThemeConfig) bool {
	return cp.store.Exists(config.ThemeName)
}

func (cp *CustomProvider) Available() []string {
	definitions, err := cp.store.List()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(definitions))
	for _, d := range definitions {
		names = append(names, d.Name)
	}
	return names
}

func (cp *CustomProvider) CreateTheme(ctx context.Context, config value.ThemeConfig) functional.Result[value.Theme] {
	if err := cp.ValidateConfig(config); err != nil {
		return functional.Err[value.Theme](err)
	}
	definition, err := cp.store.Load(config.ThemeName)
	if err != nil {
		return functional.Err[value.Theme](err)
	}
	return CreateFromDefinition(*definition, config)
}

func (cp *CustomProvider) ValidateConfig(config value.ThemeConfig) error {
	if config.ThemeName == "" {
		return fmt.Errorf("theme name cannot be empty")
	}
	if err := validateOverrides(config.Overrides); err != nil {
		return fmt.Errorf("invalid overrides: %w", err)
	}
	return nil
}

// CreateFromDefinition resolves a definition against its base theme. The
// config's own overrides still win over the definition's.
func CreateFromDefinition(definition Definition, config value.ThemeConfig) functional.Result[value.Theme] {
	baseName := definition.Base
	if baseName == "" {
		baseName = value.DefaultThemeName
	}
	base, ok := value.BuiltinOverrides(baseName)
	if !ok {
		return functional.Err[value.Theme](fmt.Errorf("theme %s: unknown base theme %s", definition.Name, baseName))
	}
	if err := validateOverrides(definition.Overrides); err != nil {
		return functional.Err[value.Theme](fmt.Errorf("theme %s: %w", definition.Name, err))
	}
	for key, o := range definition.Overrides {
		base[key] = o
	}

	config.PlainMarks = config.PlainMarks || definition.PlainMarks || baseName == "ascii"
	return functional.MapResult(value.NewThemeFrom(definition.Name, base, config), func(t value.Theme) value.Theme {
		return t.WithColors(definition.Colors)
	})
}
