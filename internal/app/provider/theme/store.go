package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/formulaeditor/formulaeditor/internal/domain/value"
)

// Definition is a theme file. JSON files are read with the same decoder.
type Definition struct {
	Name        string                          `yaml:"name" json:"name"`
	Description string                          `yaml:"description,omitempty" json:"description,omitempty"`
	Author      string                          `yaml:"author,omitempty" json:"author,omitempty"`
	Version     string                          `yaml:"version,omitempty" json:"version,omitempty"`
	Base        string                          `yaml:"base,omitempty" json:"base,omitempty"`
	PlainMarks  bool                            `yaml:"plain_marks,omitempty" json:"plain_marks,omitempty"`
	Colors      value.ThemeColors               `yaml:"colors,omitempty" json:"colors,omitempty"`
	Overrides   map[string]value.SymbolOverride `yaml:"overrides,omitempty" json:"overrides,omitempty"`
}

var themeExtensions = []string{".yaml", ".yml", ".json"}

// ErrThemeNotFound is returned by Load and Delete for unknown names.
var ErrThemeNotFound = errors.New("theme not found")

// Store manages the theme files of one directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

func sanitizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("theme name cannot be empty")
	}
	if strings.ContainsAny(name, `/\:*?"<>|`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid theme name %q", name)
	}
	if len(name) > 50 {
		return "", fmt.Errorf("theme name too long (max 50 characters)")
	}
	return name, nil
}

func (s *Store) find(name string) (string, bool) {
	for _, ext := range themeExtensions {
		path := filepath.Join(s.dir, name+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Exists reports whether a theme file for name is installed.
func (s *Store) Exists(name string) bool {
	name, err := sanitizeName(name)
	if err != nil || s.dir == "" {
		return false
	}
	_, ok := s.find(name)
	return ok
}

// Load reads the theme file for name.
func (s *Store) Load(name string) (*Definition, error) {
	name, err := sanitizeName(name)
	if err != nil {
		return nil, err
	}
	path, ok := s.find(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrThemeNotFound, name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme file: %w", err)
	}
	var definition Definition
	if err := yaml.Unmarshal(data, &definition); err != nil {
		return nil, fmt.Errorf("failed to parse theme %s: %w", name, err)
	}
	if definition.Name == "" {
		definition.Name = name
	}
	return &definition, nil
}

// List returns every readable theme, sorted by name. Unreadable files are skipped.
func (s *Store) List() ([]Definition, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read themes directory: %w", err)
	}

	seen := make(map[string]bool)
	var definitions []Definition
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || !isThemeExtension(ext) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		if seen[name] {
			continue
		}
		seen[name] = true
		definition, err := s.Load(name)
		if err != nil {
			continue
		}
		definitions = append(definitions, *definition)
	}
	sort.Slice(definitions, func(i, j int) bool { return definitions[i].Name < definitions[j].Name })
	return definitions, nil
}

func isThemeExtension(ext string) bool {
	for _, known := range themeExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// Save writes definition as YAML, replacing any file of the same name.
func (s *Store) Save(definition *Definition) error {
	name, err := sanitizeName(definition.Name)
	if err != nil {
		return err
	}
	if err := validateOverrides(definition.Overrides); err != nil {
		return fmt.Errorf("theme %s: %w", name, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create themes directory: %w", err)
	}
	data, err := yaml.Marshal(definition)
	if err != nil {
		return fmt.Errorf("failed to marshal theme: %w", err)
	}
	if path, ok := s.find(name); ok {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to replace theme file: %w", err)
		}
	}
	return os.WriteFile(filepath.Join(s.dir, name+".yaml"), data, 0o644)
}

// Delete removes an installed theme. Builtin names cannot be deleted.
func (s *Store) Delete(name string) error {
	name, err := sanitizeName(name)
	if err != nil {
		return err
	}
	if _, ok := value.BuiltinOverrides(name); ok {
		return fmt.Errorf("cannot delete built-in theme %s", name)
	}
	path, ok := s.find(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrThemeNotFound, name)
	}
	return os.Remove(path)
}

// Install copies a theme file from path into the store and returns its definition.
func (s *Store) Install(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var definition Definition
	if err := yaml.Unmarshal(data, &definition); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if definition.Name == "" {
		base := filepath.Base(path)
		definition.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if _, ok := value.BuiltinOverrides(definition.Name); ok {
		return nil, fmt.Errorf("theme name %s is reserved for a built-in theme", definition.Name)
	}
	if err := s.Save(&definition); err != nil {
		return nil, err
	}
	return &definition, nil
}
