package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	goplugin "plugin"
	"sort"
	"sync"
	"time"

	"github.com/formulaeditor/formulaeditor/internal/app/service/modules"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
	"github.com/formulaeditor/formulaeditor/pkg/formulaeditor/plugin"
)

// PluginManager loads module plugins and serves their modules by name.
type PluginManager struct {
	plugins     map[string]plugin.Plugin
	pluginPaths map[string]string
	config      plugin.PluginConfig
	status      map[string]plugin.PluginStatus
	open        func(path string) (plugin.Plugin, error)
	mutex       sync.RWMutex
}

func NewPluginManager(config plugin.PluginConfig) *PluginManager {
	return &PluginManager{
		plugins:     make(map[string]plugin.Plugin),
		pluginPaths: make(map[string]string),
		config:      config,
		status:      make(map[string]plugin.PluginStatus),
		open:        openPlugin,
	}
}

// openPlugin opens a .so file and calls its NewPlugin constructor.
func openPlugin(path string) (plugin.Plugin, error) {
	p, err := goplugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plugin %s: %w", path, err)
	}
	sym, err := p.Lookup("NewPlugin")
	if err != nil {
		return nil, fmt.Errorf("plugin %s missing NewPlugin function: %w", path, err)
	}
	constructor, ok := sym.(plugin.Constructor)
	if !ok {
		return nil, fmt.Errorf("plugin %s NewPlugin has wrong signature %T", path, sym)
	}
	return constructor(), nil
}

// LoadPlugin opens the plugin file at path and adds it.
func (pm *PluginManager) LoadPlugin(ctx context.Context, path string) error {
	status := plugin.PluginStatus{Name: filepath.Base(path), Path: path, LoadTime: time.Now().Unix()}

	p, err := pm.open(path)
	if err != nil {
		status.Error = err
		pm.setStatus(status)
		return err
	}
	return pm.add(ctx, p, path, status)
}

// AddPlugin adds an already constructed plugin, e.g. one linked into the binary.
func (pm *PluginManager) AddPlugin(ctx context.Context, p plugin.Plugin) error {
	return pm.add(ctx, p, "", plugin.PluginStatus{Name: p.Name(), LoadTime: time.Now().Unix()})
}

func (pm *PluginManager) add(ctx context.Context, p plugin.Plugin, path string, status plugin.PluginStatus) error {
	status.Name = p.Name()
	status.Loaded = true

	pm.mutex.RLock()
	_, dup := pm.plugins[p.Name()]
	config := pm.config
	pm.mutex.RUnlock()
	if dup {
		status.Error = fmt.Errorf("plugin %s already loaded", p.Name())
		pm.setStatus(status)
		return status.Error
	}

	if err := p.Initialize(ctx, config); err != nil {
		status.Error = fmt.Errorf("failed to initialize plugin %s: %w", p.Name(), err)
		pm.setStatus(status)
		return status.Error
	}
	status.Initialized = true
	status.ModuleCount = len(p.Modules())

	pm.mutex.Lock()
	pm.plugins[p.Name()] = p
	pm.pluginPaths[p.Name()] = path
	pm.status[p.Name()] = status
	pm.mutex.Unlock()

	T().Infof("plugins: loaded %s %s with %d module(s)", p.Name(), p.Version(), status.ModuleCount)
	return nil
}

func (pm *PluginManager) setStatus(status plugin.PluginStatus) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	pm.status[status.Name] = status
	T().Errorf("plugins: %s: %v", status.Name, status.Error)
}

// UnloadPlugin shuts a plugin down and forgets it.
func (pm *PluginManager) UnloadPlugin(ctx context.Context, name string) error {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	p, exists := pm.plugins[name]
	if !exists {
		return fmt.Errorf("plugin %s not found", name)
	}
	if err := p.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown plugin %s: %w", name, err)
	}
	delete(pm.plugins, name)
	delete(pm.pluginPaths, name)
	delete(pm.status, name)
	return nil
}

// LoadPluginsFromDirectory loads every .so file in dir, continuing past failures.
func (pm *PluginManager) LoadPluginsFromDirectory(ctx context.Context, dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "*.so"))
	if err != nil {
		return fmt.Errorf("failed to scan plugin directory %s: %w", dir, err)
	}
	var errs []error
	for _, match := range matches {
		if err := pm.LoadPlugin(ctx, match); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadConfigured loads the enabled plugins of a configuration in name order.
func (pm *PluginManager) LoadConfigured(ctx context.Context, config *value.Config) error {
	names := make([]string, 0, len(config.Plugins))
	for name, pc := range config.Plugins {
		if pc.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	var errs []error
	for _, name := range names {
		if err := pm.LoadPlugin(ctx, config.Plugins[name].Path); err != nil {
			errs = append(errs, fmt.Errorf("plugin %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (pm *PluginManager) GetPlugin(name string) (plugin.Plugin, error) {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()
	p, exists := pm.plugins[name]
	if !exists {
		return nil, fmt.Errorf("plugin %s not found", name)
	}
	return p, nil
}

// Module finds a module contributed by any loaded plugin.
func (pm *PluginManager) Module(name string) (modules.Module, bool) {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()
	for _, pluginName := range pm.sortedNames() {
		for _, m := range pm.plugins[pluginName].Modules() {
			if m.Name() == name {
				return m, true
			}
		}
	}
	return nil, false
}

// ModuleNames lists every plugin-contributed module, grouped by plugin name.
func (pm *PluginManager) ModuleNames() []string {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()
	var names []string
	for _, pluginName := range pm.sortedNames() {
		for _, m := range pm.plugins[pluginName].Modules() {
			names = append(names, m.Name())
		}
	}
	return names
}

func (pm *PluginManager) sortedNames() []string {
	names := make([]string, 0, len(pm.plugins))
	for name := range pm.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListPlugins describes the loaded plugins in name order.
func (pm *PluginManager) ListPlugins() []plugin.PluginInfo {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()
	infos := make([]plugin.PluginInfo, 0, len(pm.plugins))
	for _, name := range pm.sortedNames() {
		p := pm.plugins[name]
		info := plugin.PluginInfo{
			Name:        p.Name(),
			Version:     p.Version(),
			Description: p.Description(),
			Author:      p.Author(),
		}
		for _, m := range p.Modules() {
			info.Modules = append(info.Modules, m.Name())
		}
		infos = append(infos, info)
	}
	return infos
}

// HealthCheckAll returns the failing health checks by plugin name.
func (pm *PluginManager) HealthCheckAll(ctx context.Context) map[string]error {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()
	results := make(map[string]error)
	for name, p := range pm.plugins {
		if err := p.HealthCheck(ctx); err != nil {
			results[name] = err
		}
	}
	return results
}

func (pm *PluginManager) GetPluginStatus(name string) plugin.PluginStatus {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()
	if status, exists := pm.status[name]; exists {
		return status
	}
	return plugin.PluginStatus{Name: name}
}

// Shutdown unloads every plugin, collecting failures.
func (pm *PluginManager) Shutdown(ctx context.Context) error {
	pm.mutex.RLock()
	names := pm.sortedNames()
	pm.mutex.RUnlock()
	var errs []error
	for _, name := range names {
		if err := pm.UnloadPlugin(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
