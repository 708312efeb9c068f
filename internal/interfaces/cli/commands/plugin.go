package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/formulaeditor/formulaeditor/internal/app/service"
	"github.com/formulaeditor/formulaeditor/internal/shared/utils"
	"github.com/formulaeditor/formulaeditor/pkg/formulaeditor/plugin"
)

// NewPluginCommand creates the plugin management command
func NewPluginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugin",
		Short: "Plugin management",
		Long: `Manage plugins contributing notation modules. Plugins are Go plugin
files (.so) in the plugins directory or listed under "plugins" in the
configuration.`,
	}

	cmd.AddCommand(
		newPluginListCommand(),
		newPluginInfoCommand(),
		newPluginInstallCommand(),
		newPluginUninstallCommand(),
		newPluginBuildCommand(),
		newPluginHealthCommand(),
	)
	return cmd
}

func newPluginListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List loaded plugins",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			plugins := env.plugins.ListPlugins()
			if len(plugins) == 0 {
				env.out.Info("No plugins installed (directory: %s)", env.paths.PluginsDir())
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tVERSION\tMODULES\tSTATUS")
			for _, info := range plugins {
				status := env.plugins.GetPluginStatus(info.Name)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.Name, info.Version, strings.Join(info.Modules, ","), statusString(status))
			}
			return w.Flush()
		},
	}
}

func newPluginInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <plugin-name>",
		Short: "Show plugin information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			p, err := env.plugins.GetPlugin(args[0])
			if err != nil {
				return err
			}
			status := env.plugins.GetPluginStatus(args[0])
			env.out.Heading("Plugin " + p.Name())
			env.out.Plain("  Version: %s\n", p.Version())
			env.out.Plain("  Description: %s\n", p.Description())
			env.out.Plain("  Author: %s\n", p.Author())
			env.out.Plain("  Path: %s\n", status.Path)
			env.out.Plain("  Status: %s\n", statusString(status))
			env.out.Plain("  Modules:\n")
			for _, m := range p.Modules() {
				env.out.Plain("    - %s\n", m.Name())
			}
			return nil
		},
	}
}

func newPluginInstallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <plugin.so>",
		Short: "Install a plugin file into the plugins directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			source := args[0]
			if filepath.Ext(source) != ".so" {
				return fmt.Errorf("plugin must be a .so file")
			}
			dir, err := utils.EnsureDir(env.paths.PluginsDir())
			if err != nil {
				return fmt.Errorf("failed to create plugins directory: %w", err)
			}
			target := filepath.Join(dir, filepath.Base(source))
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(target); err == nil && !force {
				return fmt.Errorf("plugin %s already installed (use --force to override)", filepath.Base(source))
			}

			// Load it first so broken plugins are never installed.
			probe := service.NewPluginManager(plugin.PluginConfig{DataDir: env.paths.DataHome})
			if err := probe.LoadPlugin(cmd.Context(), source); err != nil {
				return fmt.Errorf("failed to load plugin: %w", err)
			}
			defer probe.Shutdown(context.Background())

			if err := copyFile(source, target); err != nil {
				return fmt.Errorf("failed to install plugin: %w", err)
			}
			env.out.Success("Installed %s (modules: %s)", target, strings.Join(probe.ModuleNames(), ", "))
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "Replace an installed plugin file")
	return cmd
}

func copyFile(source, target string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func newPluginUninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <plugin-name>",
		Short: "Remove an installed plugin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			status := env.plugins.GetPluginStatus(args[0])
			if status.Path == "" {
				return fmt.Errorf("plugin %s not found", args[0])
			}
			if filepath.Dir(status.Path) != filepath.Clean(env.paths.PluginsDir()) {
				return fmt.Errorf("plugin %s is loaded from %s by the configuration; remove it there", args[0], status.Path)
			}
			if err := env.plugins.UnloadPlugin(cmd.Context(), args[0]); err != nil {
				return err
			}
			if err := os.Remove(status.Path); err != nil {
				return fmt.Errorf("failed to uninstall plugin: %w", err)
			}
			env.out.Success("Uninstalled plugin %s", args[0])
			return nil
		},
	}
}

func newPluginBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <source-dir>",
		Short: "Build a plugin from source",
		Long:  "Build a Go plugin with go build -buildmode=plugin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceDir := args[0]
			if _, err := os.Stat(filepath.Join(sourceDir, "go.mod")); err != nil {
				return fmt.Errorf("source directory must contain a go.mod file")
			}
			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				output = filepath.Join(sourceDir, "plugin.so")
			}
			output, err := filepath.Abs(output)
			if err != nil {
				return err
			}
			build := exec.Command("go", "build", "-buildmode=plugin", "-o", output, ".")
			build.Dir = sourceDir
			build.Stdout = cmd.OutOrStdout()
			build.Stderr = cmd.ErrOrStderr()
			if err := build.Run(); err != nil {
				return fmt.Errorf("failed to build plugin: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Plugin built: %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "Output plugin file path")
	return cmd
}

func newPluginHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check plugin health",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			plugins := env.plugins.ListPlugins()
			if len(plugins) == 0 {
				env.out.Info("No plugins installed.")
				return nil
			}
			results := env.plugins.HealthCheckAll(ctx)
			unhealthy := 0
			for _, info := range plugins {
				if err := results[info.Name]; err != nil {
					unhealthy++
					env.out.Error("%s: %v", info.Name, err)
				} else {
					env.out.Success("%s", info.Name)
				}
			}
			if unhealthy > 0 {
				return fmt.Errorf("%d plugin(s) unhealthy", unhealthy)
			}
			return nil
		},
	}
}

func statusString(status plugin.PluginStatus) string {
	switch {
	case status.Error != nil:
		return "error: " + status.Error.Error()
	case !status.Loaded:
		return "not loaded"
	case !status.Initialized:
		return "loaded"
	}
	return "active"
}
