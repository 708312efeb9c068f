package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/formulaeditor/formulaeditor/internal/app/service"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
	"github.com/formulaeditor/formulaeditor/internal/shared/utils"
)

// NewConfigCommand creates the config command for configuration management.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long: `Manage formulaeditor configuration files. Files are merged in the order
system < user < project < --config < command-line flags.`,
	}

	cmd.AddCommand(
		newConfigInitCommand(),
		newConfigValidateCommand(),
		newConfigShowCommand(),
		newConfigWhichCommand(),
	)
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new configuration file",
		Long: `Create a configuration file in the XDG config directory, or with
--project in the current directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			project, _ := cmd.Flags().GetBool("project")
			dir := utils.GetXDGPaths(appName).ConfigHome
			if project {
				cwd, err := os.Getwd()
				if err != nil {
					return err
				}
				dir = cwd
			}
			path := filepath.Join(dir, "config.yaml")
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("configuration file %s already exists", path)
			}
			if _, err := utils.EnsureDir(dir); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			data, err := yaml.Marshal(value.NewConfig())
			if err != nil {
				return fmt.Errorf("failed to marshal configuration: %w", err)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("failed to write configuration file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", path)
			return nil
		},
	}
	cmd.Flags().Bool("project", false, "Create config.yaml in the current directory")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate configuration files",
		Long: `Validate a configuration file, or by default the merged hierarchy. The
configuration is valid when its modules load with its theme.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			config := env.config
			if len(args) == 1 {
				config, err = service.NewConfigResolver().ResolveConfig(cmd.Context(), args[0]).Value()
				if err != nil {
					return fmt.Errorf("validation failed: %w", err)
				}
				env.config = config
			}
			engine, err := env.engine(cmd.Context())
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			env.out.Success("Configuration is valid (%d modules, theme %s)", len(engine.Modules()), engine.Theme().Name())
			return nil
		},
	}
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(env.config)
			if err != nil {
				return fmt.Errorf("failed to format configuration: %w", err)
			}
			env.out.Plain("%s", data)
			return nil
		},
	}
}

func newConfigWhichCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "which",
		Short: "Show which configuration files are being used",
		Long: `Display the configuration files that were merged, lowest priority first.
Use --paths to list every location that is searched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			styles := newConfigStyles(env.out.ColorsEnabled())
			if len(env.sources) == 0 {
				env.out.Info("No configuration files found, using built-in defaults")
			} else {
				env.out.Plain("%s\n", styles.header.Render(fmt.Sprintf("Configuration hierarchy (%d files merged):", len(env.sources))))
				for i, source := range env.sources {
					branch := "├─"
					if i == len(env.sources)-1 {
						branch = "└─"
					}
					env.out.Plain("%s %s %s\n", styles.treeBranch.Render(branch), renderSource(source, styles), styles.priority.Render(fmt.Sprintf("[%d]", i+1)))
				}
			}
			if paths, _ := cmd.Flags().GetBool("paths"); paths {
				displaySearchPaths(env, styles)
			}
			return nil
		},
	}
	cmd.Flags().Bool("paths", false, "Show every searched location")
	return cmd
}

// configStyles holds the styling for configuration output
type configStyles struct {
	header     lipgloss.Style
	treeBranch lipgloss.Style
	path       lipgloss.Style
	source     lipgloss.Style
	priority   lipgloss.Style
}

func newConfigStyles(enableColors bool) configStyles {
	if !enableColors {
		plain := lipgloss.NewStyle()
		return configStyles{plain, plain, plain, plain, plain}
	}
	return configStyles{
		header:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		treeBranch: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		path:       lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		source:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		priority:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Faint(true),
	}
}

// renderSource styles a "path (type)" source description, shortening the
// home directory.
func renderSource(source string, styles configStyles) string {
	path, kind := source, ""
	if i := strings.LastIndex(source, " ("); i >= 0 {
		path, kind = source[:i], source[i+1:]
	}
	if homeDir, err := os.UserHomeDir(); err == nil && homeDir != "" && strings.HasPrefix(path, homeDir) {
		path = "~" + strings.TrimPrefix(path, homeDir)
	}
	return strings.TrimSpace(styles.path.Render(path) + " " + styles.source.Render(kind))
}

func displaySearchPaths(env *environment, styles configStyles) {
	dirs := []string{}
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	dirs = append(dirs, env.paths.ConfigHome)
	dirs = append(dirs, env.paths.ConfigDirs...)

	env.out.Plain("\n%s\n", styles.header.Render("Search order (highest priority first):"))
	for i, dir := range dirs {
		env.out.Plain("%d. %s\n", i+1, styles.path.Render(dir))
		for _, filename := range utils.ConfigFilenames(appName) {
			mark := ""
			if _, err := os.Stat(filepath.Join(dir, filename)); err == nil {
				mark = " " + env.out.Theme().Marks().Success
			}
			env.out.Plain("   - %s%s\n", filename, mark)
		}
	}
}
