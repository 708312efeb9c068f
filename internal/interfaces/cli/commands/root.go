package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/spf13/cobra"

	"github.com/formulaeditor/formulaeditor/internal/app/service"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
	"github.com/formulaeditor/formulaeditor/internal/interfaces/cli/output"
	"github.com/formulaeditor/formulaeditor/internal/shared/utils"
	"github.com/formulaeditor/formulaeditor/pkg/formulaeditor/plugin"
)

const appName = "formulaeditor"

// NewRootCommand creates the formulaeditor command tree.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Parse, convert and edit mathematical formulae",
		Long: `formulaeditor reads formulae written in plain text or OpenMath and renders
them as text, OpenMath, MathML or HTML. The accepted notation is assembled
from modules, which can be chosen per profile or loaded from plugins.`,
		Version:       fmt.Sprintf("%s (commit: %s, date: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(
		NewParseCommand(),
		NewConvertCommand(),
		NewEditCommand(),
		NewModulesCommand(),
		NewThemeCommand(),
		NewProfileCommand(),
		NewConfigCommand(),
		NewPluginCommand(),
		NewVersionCommand(version, commit, date),
	)
	return rootCmd
}

func addGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	cmd.PersistentFlags().Bool("no-config", false, "Ignore configuration files")

	cmd.PersistentFlags().String("theme", "", "Theme name (builtin, custom or auto)")
	cmd.PersistentFlags().String("profile", "", "Module profile")
	cmd.PersistentFlags().StringSlice("module", []string{}, "Load exactly these modules, in order")

	cmd.PersistentFlags().String("to", "", "Output format (presentation, openmath, mathml, html, all)")
	cmd.PersistentFlags().Bool("color", true, "Enable colored output")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}

// environment is everything a command needs, built from flags and
// configuration files.
type environment struct {
	config   *value.Config
	sources  []string
	themes   *service.ThemeService
	profiles *service.ProfileRegistry
	plugins  *service.PluginManager
	paths    *utils.XDGPaths
	out      *output.ThemedOutput
}

// flagOverrides turns the global flags that were set into a raw
// configuration layer.
func flagOverrides(cmd *cobra.Command) map[string]interface{} {
	overrides := make(map[string]interface{})
	flags := cmd.Flags()

	if flags.Changed("theme") {
		name, _ := flags.GetString("theme")
		overrides["theme"] = map[string]interface{}{"theme": name}
	}
	if flags.Changed("profile") {
		name, _ := flags.GetString("profile")
		overrides["profile"] = name
		overrides["modules"] = []interface{}{}
	}
	if flags.Changed("module") {
		names, _ := flags.GetStringSlice("module")
		list := make([]interface{}, len(names))
		for i, n := range names {
			list[i] = n
		}
		overrides["modules"] = list
	}
	outputLayer := make(map[string]interface{})
	if flags.Changed("to") {
		format, _ := flags.GetString("to")
		outputLayer["format"] = format
	}
	if flags.Changed("color") {
		color, _ := flags.GetBool("color")
		outputLayer["color"] = color
	}
	if len(outputLayer) > 0 {
		overrides["output"] = outputLayer
	}
	if verbose, _ := flags.GetBool("verbose"); verbose {
		overrides["trace_level"] = "debug"
	}
	return overrides
}

// loadEnvironment resolves the configuration, sets the trace level and
// loads plugins. Plugin failures are reported but do not stop the command.
func loadEnvironment(cmd *cobra.Command) (*environment, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	configPath, _ := cmd.Flags().GetString("config")
	noConfig, _ := cmd.Flags().GetBool("no-config")
	overrides := flagOverrides(cmd)

	env := &environment{paths: utils.GetXDGPaths(appName)}
	if noConfig {
		config := service.DecodeConfig(overrides)
		if config.IsErr() {
			return nil, config.Error()
		}
		env.config = config.Unwrap()
	} else {
		resolved := service.NewConfigResolver().ResolveHierarchy(ctx, appName, configPath, overrides)
		if resolved.IsErr() {
			return nil, resolved.Error()
		}
		env.config = resolved.Unwrap().Config
		env.sources = resolved.Unwrap().Sources
	}
	setTraceLevel(env.config.TraceLevel)

	env.themes = service.NewThemeService(env.paths.ThemesDir())
	env.profiles = service.NewProfileRegistry()
	env.plugins = service.NewPluginManager(plugin.PluginConfig{
		DataDir:   env.paths.DataHome,
		ConfigDir: env.paths.ConfigHome,
		CacheDir:  env.paths.CacheHome,
		LogLevel:  env.config.TraceLevel,
	})

	// The theme is needed for diagnostics before the engine exists.
	themeResult := env.themes.CreateTheme(ctx, env.config.Theme)
	if themeResult.IsErr() {
		return nil, fmt.Errorf("theme: %w", themeResult.Error())
	}
	env.out = output.NewThemedOutput(themeResult.Unwrap(), env.config.ColorEnabled()).
		WithWriter(cmd.OutOrStdout()).
		WithErrorWriter(cmd.ErrOrStderr())

	if !noConfig {
		if err := env.plugins.LoadPluginsFromDirectory(ctx, env.paths.PluginsDir()); err != nil {
			env.out.Error("%v", err)
		}
	}
	if err := env.plugins.LoadConfigured(ctx, env.config); err != nil {
		env.out.Error("%v", err)
	}
	return env, nil
}

// engine builds the formula engine of the environment.
func (env *environment) engine(ctx context.Context) (*service.Engine, error) {
	return service.NewEngine(ctx, service.EngineOptions{
		Config:   env.config,
		Themes:   env.themes,
		Profiles: env.profiles,
		Plugins:  env.plugins,
	}).Value()
}

func setTraceLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	case "info":
		gtrace.CoreTracer.SetTraceLevel(tracing.LevelInfo)
	default:
		gtrace.CoreTracer.SetTraceLevel(tracing.LevelError)
	}
}

// outputFormats expands a format name into the formats to print.
func outputFormats(format string) ([]string, error) {
	switch format {
	case "", value.FormatAll:
		return []string{value.FormatPresentation, value.FormatOpenMath, value.FormatMathML}, nil
	case value.FormatPresentation, value.FormatOpenMath, value.FormatMathML, value.FormatHTML:
		return []string{format}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}
