package theme

import (
	"context"
	"fmt"

	"github.com/formulaeditor/formulaeditor/internal/domain/value"
	"github.com/formulaeditor/formulaeditor/internal/shared/functional"
)

// BuiltinProvider provides the themes compiled into the value package.
type BuiltinProvider struct {
	supportedThemes map[string]bool
}

func NewBuiltinProvider() *BuiltinProvider {
	supported := make(map[string]bool)
	for _, name := range value.BuiltinThemeNames() {
		supported[name] = true
	}
	return &BuiltinProvider{supportedThemes: supported}
}

func (bp *BuiltinProvider) Name() string {
	return "builtin"
}

func (bp *BuiltinProvider) CanHandle(config value.ThemeConfig) bool {
	return bp.supportedThemes[config.ThemeName]
}

func (bp *BuiltinProvider) Available() []string {
	return value.BuiltinThemeNames()
}

// CreateTheme creates a builtin theme with the config's overrides applied.
func (bp *BuiltinProvider) CreateTheme(ctx context.Context, config value.ThemeConfig) functional.Result[value.Theme] {
	if err := bp.ValidateConfig(config); err != nil {
		return functional.Err[value.Theme](err)
	}
	return value.NewTheme(config)
}

func (bp *BuiltinProvider) ValidateConfig(config value.ThemeConfig) error {
	if !bp.supportedThemes[config.ThemeName] {
		return fmt.Errorf("unsupported builtin theme: %s", config.ThemeName)
	}
	if err := validateOverrides(config.Overrides); err != nil {
		return fmt.Errorf("invalid overrides: %w", err)
	}
	return nil
}
