package theme

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/formulaeditor/formulaeditor/internal/domain/value"
	"github.com/formulaeditor/formulaeditor/internal/shared/functional"
)

// Provider resolves theme configurations to themes.
type Provider interface {
	Name() string

	// CanHandle reports whether the provider knows the configured theme name.
	CanHandle(config value.ThemeConfig) bool

	CreateTheme(ctx context.Context, config value.ThemeConfig) functional.Result[value.Theme]

	ValidateConfig(config value.ThemeConfig) error

	// Available lists the theme names the provider can create.
	Available() []string
}

// Manager asks its providers in registration order and caches the result.
type Manager struct {
	mu        sync.RWMutex
	providers []Provider
	cache     map[string]value.Theme
}

// NewManager creates a manager with the builtin provider and, when store is
// non-nil, a provider for installed theme files.
func NewManager(store *Store) *Manager {
	m := &Manager{
		providers: []Provider{NewBuiltinProvider()},
		cache:     make(map[string]value.Theme),
	}
	if store != nil {
		m.providers = append(m.providers, NewCustomProvider(store))
	}
	return m
}

// RegisterProvider appends a provider. Earlier providers win for a name.
func (tm *Manager) RegisterProvider(provider Provider) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.providers = append(tm.providers, provider)
}

// CreateTheme resolves config with the first provider that handles it.
func (tm *Manager) CreateTheme(ctx context.Context, config value.ThemeConfig) functional.Result[value.Theme] {
	key := cacheKey(config)

	tm.mu.RLock()
	cached, ok := tm.cache[key]
	providers := append([]Provider(nil), tm.providers...)
	tm.mu.RUnlock()
	if ok {
		return functional.Ok(cached)
	}

	for _, provider := range providers {
		if !provider.CanHandle(config) {
			continue
		}
		result := provider.CreateTheme(ctx, config)
		if result.IsErr() {
			return result
		}
		tm.mu.Lock()
		tm.cache[key] = result.Unwrap()
		tm.mu.Unlock()
		return result
	}

	return functional.Err[value.Theme](fmt.Errorf("no provider found for theme: %s", config.ThemeName))
}

// ValidateConfig validates config with the provider that would create it.
func (tm *Manager) ValidateConfig(config value.ThemeConfig) error {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	for _, provider := range tm.providers {
		if provider.CanHandle(config) {
			return provider.ValidateConfig(config)
		}
	}
	return fmt.Errorf("no provider found for theme: %s", config.ThemeName)
}

// ListAvailableThemes returns the sorted union of every provider's themes.
func (tm *Manager) ListAvailableThemes() []string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	seen := make(map[string]bool)
	var names []string
	for _, provider := range tm.providers {
		for _, name := range provider.Available() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

func (tm *Manager) ClearCache() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.cache = make(map[string]value.Theme)
}

func cacheKey(config value.ThemeConfig) string {
	keys := make([]string, 0, len(config.Overrides))
	for key, o := range config.Overrides {
		keys = append(keys, fmt.Sprintf("%s=%v", key, o))
	}
	sort.Strings(keys)
	return fmt.Sprintf("%s|%t|%s", config.ThemeName, config.PlainMarks, strings.Join(keys, ";"))
}

// validateOverrides checks override keys and tokens.
func validateOverrides(overrides map[string]value.SymbolOverride) error {
	for key, o := range overrides {
		if _, _, ok := value.SplitSymbolKey(key); !ok {
			return fmt.Errorf("override key %q is not of the form cd__name", key)
		}
		tokens := append(append([]string(nil), o.Onscreen...), o.Aliases...)
		for _, token := range tokens {
			if strings.TrimSpace(token) == "" {
				return fmt.Errorf("override %s: blank on-screen token", key)
			}
			for _, r := range token {
				if r < 32 {
					return fmt.Errorf("override %s: token %q contains a control character", key, token)
				}
			}
		}
	}
	return nil
}
