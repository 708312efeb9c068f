package commands

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/formulaeditor/formulaeditor/internal/app/provider/theme"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
)

// NewThemeCommand creates the theme command for theme management
func NewThemeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Manage themes",
		Long: `Manage the themes that set the symbols shown for each operator, the
status marks and the colours. Custom themes live as YAML or JSON files in the
themes directory and start from a built-in base theme.`,
	}

	cmd.AddCommand(
		newThemeListCommand(),
		newThemeShowCommand(),
		newThemeCreateCommand(),
		newThemeEditCommand(),
		newThemeDeleteCommand(),
		newThemeInstallCommand(),
	)
	return cmd
}

func newThemeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			definitions, err := env.themes.Store().List()
			if err != nil {
				return fmt.Errorf("failed to list themes: %w", err)
			}
			custom := make(map[string]theme.Definition, len(definitions))
			for _, d := range definitions {
				custom[d.Name] = d
			}

			styles := newThemeStyles(env.out.ColorsEnabled())
			env.out.Heading("Available themes:")
			for _, name := range env.themes.ListAvailableThemes() {
				d, ok := custom[name]
				if !ok {
					env.out.Plain("  %s %s\n", styles.builtin.Render(fmt.Sprintf("%-16s", name)), "built-in")
					continue
				}
				description := d.Description
				if len(description) > 45 {
					description = description[:42] + "..."
				}
				env.out.Plain("  %s %s\n", styles.custom.Render(fmt.Sprintf("%-16s", name)), description)
			}
			return nil
		},
	}
}

func newThemeShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <theme-name>",
		Short: "Show theme details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			config := value.NewThemeConfig()
			config.ThemeName = args[0]
			result := env.themes.CreateTheme(cmd.Context(), config)
			if result.IsErr() {
				return result.Error()
			}
			t := result.Unwrap()
			styles := newThemeStyles(env.out.ColorsEnabled())

			env.out.Plain("%s %s\n", styles.label.Render("Theme:"), t.Name())
			if env.themes.Store().Exists(t.Name()) {
				d, err := env.themes.Store().Load(t.Name())
				if err != nil {
					return err
				}
				if d.Description != "" {
					env.out.Plain("%s %s\n", styles.label.Render("Description:"), d.Description)
				}
				if d.Author != "" {
					env.out.Plain("%s %s\n", styles.label.Render("Author:"), d.Author)
				}
				base := d.Base
				if base == "" {
					base = value.DefaultThemeName
				}
				env.out.Plain("%s %s\n", styles.label.Render("Base:"), base)
				env.out.Plain("%s %s\n", styles.label.Render("Location:"), env.themes.Store().Dir())
			}

			marks := t.Marks()
			env.out.Plain("%s %s %s %s %s\n", styles.label.Render("Marks:"), marks.Success, marks.Error, marks.Arrow, marks.Caret)
			colors := t.Colors()
			env.out.Plain("%s operator=%s identifier=%s number=%s keyword=%s error=%s\n",
				styles.label.Render("Colors:"), colors.Operator, colors.Identifier, colors.Number, colors.Keyword, colors.Error)

			keys := t.OverrideKeys()
			if len(keys) == 0 {
				return nil
			}
			env.out.Plain("%s\n", styles.label.Render("Symbols:"))
			for _, key := range keys {
				override := t.Override(key).Unwrap()
				env.out.Plain("  %-24s %s\n", key, strings.Join(override.Onscreen, " "))
			}
			return nil
		},
	}
}

func newThemeCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <theme-name>",
		Short: "Create a new theme from a built-in base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			name := args[0]
			if _, ok := value.BuiltinOverrides(name); ok {
				return fmt.Errorf("theme name %s is reserved for a built-in theme", name)
			}
			store := env.themes.Store()
			if store.Exists(name) {
				return fmt.Errorf("theme '%s' already exists", name)
			}
			base, _ := cmd.Flags().GetString("base")
			description, _ := cmd.Flags().GetString("description")
			if description == "" {
				description = fmt.Sprintf("Custom theme based on %s", base)
			}
			definition := &theme.Definition{
				Name:        name,
				Description: description,
				Version:     "1.0.0",
				Base:        base,
			}
			if result := theme.CreateFromDefinition(*definition, value.NewThemeConfig()); result.IsErr() {
				return result.Error()
			}
			if err := store.Save(definition); err != nil {
				return fmt.Errorf("failed to save theme: %w", err)
			}
			env.out.Success("Created theme '%s'", name)
			env.out.Info("Location: %s", filepath.Join(store.Dir(), name+".yaml"))
			return nil
		},
	}
	cmd.Flags().StringP("base", "b", value.DefaultThemeName, "Built-in theme to start from")
	cmd.Flags().String("description", "", "Theme description")
	return cmd
}

func newThemeEditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <theme-name>",
		Short: "Open a custom theme in $EDITOR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			store := env.themes.Store()
			name := args[0]
			if !store.Exists(name) {
				return fmt.Errorf("theme '%s' not found", name)
			}
			path, err := themeFile(store, name)
			if err != nil {
				return err
			}
			editor, err := findEditor()
			if err != nil {
				return err
			}
			env.out.Info("Opening %s in %s", path, editor)

			run := exec.Command(editor, path)
			run.Stdin = os.Stdin
			run.Stdout = os.Stdout
			run.Stderr = os.Stderr
			if err := run.Run(); err != nil {
				return fmt.Errorf("failed to open editor '%s': %w", editor, err)
			}

			d, err := store.Load(name)
			if err != nil {
				return err
			}
			if result := theme.CreateFromDefinition(*d, value.NewThemeConfig()); result.IsErr() {
				return fmt.Errorf("theme %s is no longer valid: %w", name, result.Error())
			}
			env.out.Success("Theme '%s' saved", name)
			return nil
		},
	}
}

func themeFile(store *theme.Store, name string) (string, error) {
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		path := filepath.Join(store.Dir(), name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", theme.ErrThemeNotFound, name)
}

func findEditor() (string, error) {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor, nil
	}
	for _, e := range []string{"nano", "vim", "vi"} {
		if _, err := exec.LookPath(e); err == nil {
			return e, nil
		}
	}
	return "", fmt.Errorf("no editor found; set the EDITOR environment variable")
}

func newThemeDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <theme-name>",
		Short: "Delete a custom theme",
		Long:  `Delete a custom theme. Built-in themes cannot be deleted.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			name := args[0]
			if force, _ := cmd.Flags().GetBool("force"); !force {
				if !confirmAction(cmd, fmt.Sprintf("Delete theme '%s'?", name)) {
					env.out.Info("Operation cancelled")
					return nil
				}
			}
			if err := env.themes.Store().Delete(name); err != nil {
				return fmt.Errorf("failed to delete theme: %w", err)
			}
			env.themes.ClearCache()
			env.out.Success("Deleted theme '%s'", name)
			return nil
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Delete without confirmation")
	return cmd
}

func newThemeInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "install <file>",
		Short: "Install a theme file",
		Long:  `Copy a YAML or JSON theme definition into the themes directory.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			definition, err := env.themes.InstallTheme(args[0]).Value()
			if err != nil {
				return err
			}
			env.out.Success("Installed theme '%s'", definition.Name)
			env.out.Info("Location: %s", env.themes.Store().Dir())
			return nil
		},
	}
}

// confirmAction asks a yes/no question on the command's input.
func confirmAction(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N]: ", question)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

type themeStyles struct {
	label   lipgloss.Style
	builtin lipgloss.Style
	custom  lipgloss.Style
}

func newThemeStyles(enableColors bool) themeStyles {
	if !enableColors {
		plain := lipgloss.NewStyle()
		return themeStyles{plain, plain, plain}
	}
	return themeStyles{
		label:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		builtin: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		custom:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	}
}
