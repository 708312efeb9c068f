// Package plugin is the contract for module bundles loaded from Go plugin
// (.so) files. A bundle exports
//
//	func NewPlugin() plugin.Plugin
//
// and contributes modules that register grammar rules, OpenMath handlers
// and symbols exactly like the built-in ones.
package plugin

import (
	"context"

	"github.com/formulaeditor/formulaeditor/internal/app/service/modules"
)

// Module and Registrar are the registration protocol of the engine.
type (
	Module    = modules.Module
	Registrar = modules.Registrar
)

// NewModule wraps a registration function as a Module.
func NewModule(name string, register func(*Registrar) error) Module {
	return modules.New(name, register)
}

// Plugin is a loadable bundle of modules.
type Plugin interface {
	Name() string
	Version() string
	Description() string
	Author() string

	Initialize(ctx context.Context, config PluginConfig) error
	Shutdown(ctx context.Context) error

	// Modules returns the contributed modules. Their names must not clash
	// with built-in modules or modules of other plugins.
	Modules() []Module

	HealthCheck(ctx context.Context) error
}

// Constructor is the type of the exported NewPlugin symbol.
type Constructor = func() Plugin

// PluginConfig is passed to Initialize.
type PluginConfig struct {
	DataDir     string
	ConfigDir   string
	CacheDir    string
	LogLevel    string
	Environment map[string]string
}

// PluginInfo describes a loaded plugin.
type PluginInfo struct {
	Name        string
	Version     string
	Description string
	Author      string
	Modules     []string
}

// PluginStatus is the outcome of the last load attempt of a plugin file.
type PluginStatus struct {
	Name        string
	Path        string
	Loaded      bool
	Initialized bool
	Error       error
	LoadTime    int64
	ModuleCount int
}
