package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewProfileCommand creates the profile command.
func NewProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect module profiles",
		Long: `Profiles are named module lists. Besides the built-in profiles, the
"profiles" section of a configuration file defines more, each optionally
extending another.`,
	}
	cmd.AddCommand(
		newProfileListCommand(),
		newProfileShowCommand(),
		newProfileExportCommand(),
	)
	return cmd
}

// profileEnvironment loads the environment with configured profiles registered.
func profileEnvironment(cmd *cobra.Command) (*environment, error) {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return nil, err
	}
	if err := env.profiles.RegisterConfigured(env.config); err != nil {
		return nil, err
	}
	return env, nil
}

func newProfileListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := profileEnvironment(cmd)
			if err != nil {
				return err
			}
			for _, name := range env.profiles.List() {
				p, err := env.profiles.Get(name)
				if err != nil {
					return err
				}
				marker := " "
				if name == env.config.Profile && len(env.config.Modules) == 0 {
					marker = "*"
				}
				origin := "configured"
				if p.Builtin {
					origin = "built-in"
				}
				env.out.Plain("%s %-14s %-10s %s\n", marker, name, origin, p.Description)
			}
			return nil
		},
	}
}

func newProfileShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <profile>",
		Short: "Show the resolved module list of a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := profileEnvironment(cmd)
			if err != nil {
				return err
			}
			p, err := env.profiles.Get(args[0])
			if err != nil {
				return err
			}
			mods, err := env.profiles.Resolve(args[0])
			if err != nil {
				return err
			}
			env.out.Heading("Profile " + p.Name)
			if p.Description != "" {
				env.out.Plain("Description: %s\n", p.Description)
			}
			if p.Extends != "" {
				env.out.Plain("Extends: %s\n", p.Extends)
			}
			env.out.Plain("Modules: %s\n", strings.Join(mods, ", "))
			return nil
		},
	}
}

func newProfileExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <profile>",
		Short: "Write a resolved profile as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := profileEnvironment(cmd)
			if err != nil {
				return err
			}
			file, _ := cmd.Flags().GetString("output")
			if file == "" {
				file = args[0] + ".yaml"
			}
			if err := env.profiles.ExportProfile(args[0], file); err != nil {
				return fmt.Errorf("failed to export profile: %w", err)
			}
			env.out.Success("Exported profile '%s' to %s", args[0], file)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "Output file (default: <profile>.yaml)")
	return cmd
}
