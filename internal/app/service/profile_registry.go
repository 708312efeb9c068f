package service

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/formulaeditor/formulaeditor/internal/app/service/modules"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
)

// Profile is a named, ordered list of modules. Extends names a profile whose
// modules come first.
type Profile struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Extends     string   `yaml:"extends,omitempty" json:"extends,omitempty"`
	Modules     []string `yaml:"modules" json:"modules"`
	Builtin     bool     `yaml:"-" json:"-"`
}

// ProfileRegistry holds the builtin and user-defined profiles.
type ProfileRegistry struct {
	profiles map[string]Profile
	mutex    sync.RWMutex
}

// NewProfileRegistry creates a registry with the builtin profiles.
func NewProfileRegistry() *ProfileRegistry {
	pr := &ProfileRegistry{profiles: make(map[string]Profile)}
	for _, p := range builtinProfiles() {
		pr.profiles[p.Name] = p
	}
	return pr
}

func builtinProfiles() []Profile {
	return []Profile{
		{
			Name:        "arithmetic",
			Description: "Numbers, variables, arithmetic and factorial",
			Modules:     []string{"core", "arith1", "integer1"},
			Builtin:     true,
		},
		{
			Name:        "standard",
			Description: "Arithmetic plus relations, functions and the keyword catalog",
			Extends:     "arithmetic",
			Modules:     []string{"relation1", "fns", "keywords"},
			Builtin:     true,
		},
		{
			Name:        "full",
			Description: "Every built-in module",
			Modules:     modules.Names(),
			Builtin:     true,
		},
	}
}

// Get returns a copy of a profile.
func (pr *ProfileRegistry) Get(name string) (Profile, error) {
	pr.mutex.RLock()
	defer pr.mutex.RUnlock()
	p, ok := pr.profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile %s not found", name)
	}
	p.Modules = append([]string(nil), p.Modules...)
	return p, nil
}

// List returns the profile names in sorted order.
func (pr *ProfileRegistry) List() []string {
	pr.mutex.RLock()
	defer pr.mutex.RUnlock()
	names := make([]string, 0, len(pr.profiles))
	for name := range pr.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds or replaces a user profile. Builtin profiles cannot be replaced.
func (pr *ProfileRegistry) Register(p Profile) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	if len(p.Modules) == 0 && p.Extends == "" {
		return fmt.Errorf("profile %s lists no modules", p.Name)
	}

	pr.mutex.Lock()
	defer pr.mutex.Unlock()
	if existing, ok := pr.profiles[p.Name]; ok && existing.Builtin {
		return fmt.Errorf("cannot replace built-in profile: %s", p.Name)
	}
	p.Builtin = false
	p.Modules = append([]string(nil), p.Modules...)
	pr.profiles[p.Name] = p
	return nil
}

// RegisterConfigured registers every profile of a configuration.
func (pr *ProfileRegistry) RegisterConfigured(config *value.Config) error {
	names := make([]string, 0, len(config.Profiles))
	for name := range config.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		pc := config.Profiles[name]
		if err := pr.Register(Profile{
			Name:        name,
			Description: pc.Description,
			Extends:     pc.Extends,
			Modules:     pc.Modules,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (pr *ProfileRegistry) Unregister(name string) error {
	pr.mutex.Lock()
	defer pr.mutex.Unlock()
	p, ok := pr.profiles[name]
	if !ok {
		return fmt.Errorf("profile %s not found", name)
	}
	if p.Builtin {
		return fmt.Errorf("cannot unregister built-in profile: %s", name)
	}
	delete(pr.profiles, name)
	return nil
}

// Resolve flattens the extends chain of a profile into one module list.
// Duplicates keep their first position.
func (pr *ProfileRegistry) Resolve(name string) ([]string, error) {
	pr.mutex.RLock()
	defer pr.mutex.RUnlock()

	var chain []string
	var resolved []string
	seen := make(map[string]bool)
	for current := name; current != ""; {
		for _, visited := range chain {
			if visited == current {
				return nil, fmt.Errorf("circular profile extension: %s -> %s", strings.Join(chain, " -> "), current)
			}
		}
		p, ok := pr.profiles[current]
		if !ok {
			if len(chain) == 0 {
				return nil, fmt.Errorf("profile %s not found", current)
			}
			return nil, fmt.Errorf("profile %s extends unknown profile %s", chain[len(chain)-1], current)
		}
		chain = append(chain, current)
		current = p.Extends
	}

	for i := len(chain) - 1; i >= 0; i-- {
		for _, m := range pr.profiles[chain[i]].Modules {
			if !seen[m] {
				seen[m] = true
				resolved = append(resolved, m)
			}
		}
	}
	return resolved, nil
}

// ExportProfile writes a profile, with its chain resolved, as YAML.
func (pr *ProfileRegistry) ExportProfile(name, filename string) error {
	p, err := pr.Get(name)
	if err != nil {
		return err
	}
	mods, err := pr.Resolve(name)
	if err != nil {
		return err
	}
	p.Extends = ""
	p.Modules = mods

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to format profile: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write profile file: %w", err)
	}
	return nil
}
