package utils

import (
	"fmt"
	"sort"
)

// DeepMergeConfig merges raw configuration maps, later maps winning. Nested
// maps merge recursively; lists and scalars are replaced.
func DeepMergeConfig(configs ...map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for _, config := range configs {
		if config == nil {
			continue
		}
		result = mergeMap(result, config)
	}
	return result
}

func mergeMap(base, override map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(base)+len(override))
	for key, value := range base {
		result[key] = deepCopyValue(value)
	}
	for key, value := range override {
		baseMap, baseIsMap := asMap(result[key])
		overrideMap, overrideIsMap := asMap(value)
		if baseIsMap && overrideIsMap {
			result[key] = mergeMap(baseMap, overrideMap)
			continue
		}
		result[key] = deepCopyValue(value)
	}
	return result
}

// asMap also accepts map[interface{}]interface{}, which some YAML decoders
// produce for nested mappings.
func asMap(value interface{}) (map[string]interface{}, bool) {
	switch v := value.(type) {
	case map[string]interface{}:
		return v, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, val := range v {
			out[fmt.Sprint(key)] = val
		}
		return out, true
	}
	return nil, false
}

func deepCopyValue(value interface{}) interface{} {
	if m, ok := asMap(value); ok {
		out := make(map[string]interface{}, len(m))
		for key, val := range m {
			out[key] = deepCopyValue(val)
		}
		return out
	}
	if list, ok := value.([]interface{}); ok {
		out := make([]interface{}, len(list))
		for i, val := range list {
			out[i] = deepCopyValue(val)
		}
		return out
	}
	return value
}

// ConfigSourceType is the origin of a configuration layer.
type ConfigSourceType string

const (
	ConfigSourceSystem  ConfigSourceType = "system"
	ConfigSourceUser    ConfigSourceType = "user"
	ConfigSourceProject ConfigSourceType = "project"
	ConfigSourceCLI     ConfigSourceType = "cli"
)

var sourcePriority = map[ConfigSourceType]int{
	ConfigSourceSystem:  10,
	ConfigSourceUser:    20,
	ConfigSourceProject: 30,
	ConfigSourceCLI:     40,
}

// ConfigSource is one raw configuration layer.
type ConfigSource struct {
	Config map[string]interface{}
	Path   string
	Type   ConfigSourceType
}

// ConfigurationMerger layers raw configuration maps by source priority.
type ConfigurationMerger struct {
	sources []ConfigSource
}

func NewConfigurationMerger() *ConfigurationMerger {
	return &ConfigurationMerger{}
}

// AddSource records a layer; nil maps are ignored.
func (cm *ConfigurationMerger) AddSource(config map[string]interface{}, path string, sourceType ConfigSourceType) {
	if config == nil {
		return
	}
	cm.sources = append(cm.sources, ConfigSource{Config: config, Path: path, Type: sourceType})
}

// Sources returns the layers from lowest to highest priority. Layers of the
// same type keep their insertion order.
func (cm *ConfigurationMerger) Sources() []ConfigSource {
	sorted := append([]ConfigSource(nil), cm.sources...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sourcePriority[sorted[i].Type] < sourcePriority[sorted[j].Type]
	})
	return sorted
}

// Merge deep-merges every layer, higher priority winning.
func (cm *ConfigurationMerger) Merge() map[string]interface{} {
	sources := cm.Sources()
	configs := make([]map[string]interface{}, len(sources))
	for i, source := range sources {
		configs[i] = source.Config
	}
	return DeepMergeConfig(configs...)
}

// SourcePaths describes the layers in merge order, for diagnostics.
func (cm *ConfigurationMerger) SourcePaths() []string {
	var paths []string
	for _, source := range cm.Sources() {
		if source.Path != "" {
			paths = append(paths, fmt.Sprintf("%s (%s)", source.Path, source.Type))
		}
	}
	return paths
}
