package service

import (
	"context"

	jj "github.com/cloudfoundry/jibber_jabber"
	"golang.org/x/text/language"

	"github.com/formulaeditor/formulaeditor/internal/app/provider/theme"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
	"github.com/formulaeditor/formulaeditor/internal/shared/functional"
)

// AutoTheme selects a builtin theme from the user's locale.
const AutoTheme = "auto"

// localeThemes maps a language base to the builtin theme for it.
var localeThemes = map[string]string{
	"nl": "nl",
}

// ThemeService resolves theme configurations against the builtin themes and
// the installed theme files.
type ThemeService struct {
	manager *theme.Manager
	store   *theme.Store
	detect  func() (string, error)
}

// NewThemeService creates a service over the theme files in themesDir. An
// empty themesDir disables installed themes.
func NewThemeService(themesDir string) *ThemeService {
	var store *theme.Store
	if themesDir != "" {
		store = theme.NewStore(themesDir)
	}
	return &ThemeService{
		manager: theme.NewManager(store),
		store:   store,
		detect:  jj.DetectIETF,
	}
}

// ResolveName maps AutoTheme to a concrete theme name.
func (ts *ThemeService) ResolveName(name string) string {
	if name != AutoTheme {
		return name
	}
	locale, err := ts.detect()
	if err != nil {
		T().Infof("theme: no user locale (%v), using default theme", err)
		return "default"
	}
	base, _ := language.Make(locale).Base()
	if themeName, ok := localeThemes[base.String()]; ok {
		T().Debugf("theme: locale %s selects theme %s", locale, themeName)
		return themeName
	}
	return "default"
}

// CreateTheme resolves config to a theme.
func (ts *ThemeService) CreateTheme(ctx context.Context, config value.ThemeConfig) functional.Result[value.Theme] {
	config.ThemeName = ts.ResolveName(config.ThemeName)
	return ts.manager.CreateTheme(ctx, config)
}

func (ts *ThemeService) ValidateConfig(config value.ThemeConfig) error {
	config.ThemeName = ts.ResolveName(config.ThemeName)
	return ts.manager.ValidateConfig(config)
}

// ListAvailableThemes returns builtin and installed theme names.
func (ts *ThemeService) ListAvailableThemes() []string {
	return ts.manager.ListAvailableThemes()
}

// Store returns the installed-theme store, or nil when disabled.
func (ts *ThemeService) Store() *theme.Store {
	return ts.store
}

// InstallTheme copies a theme file into the store.
func (ts *ThemeService) InstallTheme(path string) functional.Result[*theme.Definition] {
	if ts.store == nil {
		return functional.Errf[*theme.Definition]("no theme directory configured")
	}
	definition, err := ts.store.Install(path)
	if err != nil {
		return functional.Err[*theme.Definition](err)
	}
	ts.manager.ClearCache()
	return functional.Ok(definition)
}

func (ts *ThemeService) ClearCache() {
	ts.manager.ClearCache()
}
