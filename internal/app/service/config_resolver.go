package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/formulaeditor/formulaeditor/internal/domain/value"
	"github.com/formulaeditor/formulaeditor/internal/shared/functional"
	"github.com/formulaeditor/formulaeditor/internal/shared/utils"
)

// ConfigLoader reads one configuration file into a raw map.
type ConfigLoader interface {
	LoadRaw(ctx context.Context, configPath string) functional.Result[map[string]interface{}]
	SupportsPath(path string) bool
}

// ConfigResolver resolves extends chains and configuration hierarchies.
type ConfigResolver struct {
	loaders      []ConfigLoader
	mu           sync.Mutex
	cache        map[string]map[string]interface{}
	resolveStack []string
}

// NewConfigResolver creates a resolver trying loaders in order. With no
// loaders, YAML and JSON are supported.
func NewConfigResolver(loaders ...ConfigLoader) *ConfigResolver {
	if len(loaders) == 0 {
		loaders = []ConfigLoader{NewYAMLConfigLoader(), NewJSONConfigLoader()}
	}
	return &ConfigResolver{
		loaders: loaders,
		cache:   make(map[string]map[string]interface{}),
	}
}

func (cr *ConfigResolver) loaderFor(path string) (ConfigLoader, error) {
	for _, loader := range cr.loaders {
		if loader.SupportsPath(path) {
			return loader, nil
		}
	}
	return nil, fmt.Errorf("no loader for configuration file %s", path)
}

// ResolveRaw loads configPath and merges every file it extends beneath it.
// Extensions are applied in order, later ones winning; relative paths are
// resolved against the extending file.
func (cr *ConfigResolver) ResolveRaw(ctx context.Context, configPath string) functional.Result[map[string]interface{}] {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.resolveRaw(ctx, configPath)
}

func (cr *ConfigResolver) resolveRaw(ctx context.Context, configPath string) functional.Result[map[string]interface{}] {
	if err := ctx.Err(); err != nil {
		return functional.Err[map[string]interface{}](err)
	}
	for _, path := range cr.resolveStack {
		if path == configPath {
			return functional.Err[map[string]interface{}](
				fmt.Errorf("circular dependency detected: %s -> %s", strings.Join(cr.resolveStack, " -> "), configPath),
			)
		}
	}
	if cached, ok := cr.cache[configPath]; ok {
		return functional.Ok(utils.DeepMergeConfig(cached))
	}

	cr.resolveStack = append(cr.resolveStack, configPath)
	defer func() {
		cr.resolveStack = cr.resolveStack[:len(cr.resolveStack)-1]
	}()

	loader, err := cr.loaderFor(configPath)
	if err != nil {
		return functional.Err[map[string]interface{}](err)
	}
	baseResult := loader.LoadRaw(ctx, configPath)
	if baseResult.IsErr() {
		return baseResult
	}
	base := baseResult.Unwrap()

	extends, err := extendsList(base["extends"])
	if err != nil {
		return functional.Err[map[string]interface{}](fmt.Errorf("%s: %w", configPath, err))
	}
	delete(base, "extends")

	layers := make([]map[string]interface{}, 0, len(extends)+1)
	for _, extendPath := range extends {
		if !filepath.IsAbs(extendPath) {
			extendPath = filepath.Join(filepath.Dir(configPath), extendPath)
		}
		extended := cr.resolveRaw(ctx, extendPath)
		if extended.IsErr() {
			return functional.Err[map[string]interface{}](
				fmt.Errorf("failed to resolve extension %s: %w", extendPath, extended.Error()),
			)
		}
		layers = append(layers, extended.Unwrap())
	}
	layers = append(layers, base)

	resolved := utils.DeepMergeConfig(layers...)
	cr.cache[configPath] = resolved
	return functional.Ok(utils.DeepMergeConfig(resolved))
}

func extendsList(raw interface{}) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("extends entries must be strings, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("extends must be a string or a list, got %T", raw)
}

// ResolveConfig resolves configPath into a validated configuration.
func (cr *ConfigResolver) ResolveConfig(ctx context.Context, configPath string) functional.Result[*value.Config] {
	raw := cr.ResolveRaw(ctx, configPath)
	if raw.IsErr() {
		return functional.Err[*value.Config](raw.Error())
	}
	return DecodeConfig(raw.Unwrap())
}

// ResolvedConfig is a configuration with the files it came from.
type ResolvedConfig struct {
	Config  *value.Config
	Sources []string
}

// ResolveHierarchy merges the system, user and project configuration files
// found for appName, then explicitPath on top when given. Overrides, if
// non-nil, are applied last as command-line values.
func (cr *ConfigResolver) ResolveHierarchy(ctx context.Context, appName, explicitPath string, overrides map[string]interface{}) functional.Result[*ResolvedConfig] {
	merger := utils.NewConfigurationMerger()

	for _, location := range utils.FindAllConfigFiles(appName) {
		raw := cr.ResolveRaw(ctx, location.Path)
		if raw.IsErr() {
			return functional.Err[*ResolvedConfig](raw.Error())
		}
		merger.AddSource(raw.Unwrap(), location.Path, utils.ConfigSourceType(location.Type))
	}

	if explicitPath != "" {
		raw := cr.ResolveRaw(ctx, explicitPath)
		if raw.IsErr() {
			return functional.Err[*ResolvedConfig](raw.Error())
		}
		merger.AddSource(raw.Unwrap(), explicitPath, utils.ConfigSourceCLI)
	}
	merger.AddSource(overrides, "", utils.ConfigSourceCLI)

	config := DecodeConfig(merger.Merge())
	if config.IsErr() {
		return functional.Err[*ResolvedConfig](config.Error())
	}
	return functional.Ok(&ResolvedConfig{Config: config.Unwrap(), Sources: merger.SourcePaths()})
}

// DecodeConfig turns a merged raw map into a validated configuration on top
// of the defaults.
func DecodeConfig(raw map[string]interface{}) functional.Result[*value.Config] {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return functional.Err[*value.Config](fmt.Errorf("failed to encode configuration: %w", err))
	}
	config := value.NewConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil {
		return functional.Err[*value.Config](fmt.Errorf("invalid configuration: %w", err))
	}
	if err := config.Validate(); err != nil {
		return functional.Err[*value.Config](fmt.Errorf("invalid configuration: %w", err))
	}
	return functional.Ok(config)
}

func (cr *ConfigResolver) ClearCache() {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	cr.cache = make(map[string]map[string]interface{})
}

// CacheSize reports how many resolved files are cached.
func (cr *ConfigResolver) CacheSize() int {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return len(cr.cache)
}

func readConfigFile(configPath string) ([]byte, error) {
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}
	return data, nil
}

// JSONConfigLoader reads .json files.
type JSONConfigLoader struct{}

func NewJSONConfigLoader() *JSONConfigLoader {
	return &JSONConfigLoader{}
}

func (jcl *JSONConfigLoader) LoadRaw(ctx context.Context, configPath string) functional.Result[map[string]interface{}] {
	data, err := readConfigFile(configPath)
	if err != nil {
		return functional.Err[map[string]interface{}](err)
	}
	raw := make(map[string]interface{})
	if err := json.Unmarshal(data, &raw); err != nil {
		return functional.Err[map[string]interface{}](fmt.Errorf("failed to parse JSON config %s: %w", configPath, err))
	}
	return functional.Ok(raw)
}

func (jcl *JSONConfigLoader) SupportsPath(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".json"
}

// YAMLConfigLoader reads .yaml and .yml files.
type YAMLConfigLoader struct{}

func NewYAMLConfigLoader() *YAMLConfigLoader {
	return &YAMLConfigLoader{}
}

func (ycl *YAMLConfigLoader) LoadRaw(ctx context.Context, configPath string) functional.Result[map[string]interface{}] {
	data, err := readConfigFile(configPath)
	if err != nil {
		return functional.Err[map[string]interface{}](err)
	}
	raw := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return functional.Err[map[string]interface{}](fmt.Errorf("failed to parse YAML config %s: %w", configPath, err))
	}
	return functional.Ok(raw)
}

func (ycl *YAMLConfigLoader) SupportsPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
