package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/formulaeditor/formulaeditor/internal/app/service/modules"
)

// NewModulesCommand creates the modules command.
func NewModulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "Inspect the notation modules",
		Long:  `Display the available modules and what the loaded ones contribute to the grammar.`,
	}

	cmd.AddCommand(
		newModulesListCommand(),
		newModulesInfoCommand(),
		newModulesRulesCommand(),
		newModulesKeywordsCommand(),
	)
	return cmd
}

func newModulesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in and plugin modules",
		Long:  `List every known module. Loaded modules are marked and shown in load order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			engine, err := env.engine(cmd.Context())
			if err != nil {
				return err
			}

			loaded := engine.Modules()
			position := make(map[string]int, len(loaded))
			for i, name := range loaded {
				position[name] = i + 1
			}

			env.out.Heading(fmt.Sprintf("Modules (%d loaded):", len(loaded)))
			names := append(modules.Names(), env.plugins.ModuleNames()...)
			for _, name := range names {
				origin := "built-in"
				if _, ok := modules.Lookup(name); !ok {
					origin = "plugin"
				}
				if n, ok := position[name]; ok {
					env.out.Plain("  %s %-10s %-8s [%d]\n", env.out.Theme().Marks().Success, name, origin, n)
				} else {
					env.out.Plain("    %-10s %s\n", name, origin)
				}
			}
			return nil
		},
	}
}

func newModulesInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <module>",
		Short: "Show what a loaded module registered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			engine, err := env.engine(cmd.Context())
			if err != nil {
				return err
			}
			report := engine.Bundle().Report.Module(args[0])
			if report.IsNone() {
				return fmt.Errorf("module %s is not loaded (loaded: %s)", args[0], strings.Join(engine.Modules(), ", "))
			}
			m := report.Unwrap()
			env.out.Heading("Module " + m.Name)
			printList(env.out.Plain, "Rules", m.Rules)
			printList(env.out.Plain, "Handlers", m.Handlers)
			printList(env.out.Plain, "Symbols", m.Symbols)
			return nil
		},
	}
}

func printList(printf func(string, ...interface{}), title string, items []string) {
	if len(items) == 0 {
		return
	}
	printf("%s (%d):\n", title, len(items))
	for _, item := range items {
		printf("  %s\n", item)
	}
}

func newModulesRulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rules [rule]",
		Short: "List grammar rules and the modules that installed them",
		Long: `List the grammar rules in definition order. Each rule shows the modules
that defined or extended it, the one tried first leading.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			engine, err := env.engine(cmd.Context())
			if err != nil {
				return err
			}
			g := engine.Bundle().Grammar
			names := g.Names()
			if len(args) == 1 {
				if g.Rule(args[0]).IsNone() {
					return fmt.Errorf("unknown rule %s", args[0])
				}
				names = args
			}
			width := 0
			for _, name := range names {
				if len(name) > width {
					width = len(name)
				}
			}
			for _, name := range names {
				marker := " "
				if name == g.Root() {
					marker = "*"
				}
				env.out.Plain("%s %-*s  %s\n", marker, width, name, strings.Join(g.Chain(name), " > "))
			}
			return nil
		},
	}
}

func newModulesKeywordsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keywords",
		Short: "List the keywords accepted as input",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			engine, err := env.engine(cmd.Context())
			if err != nil {
				return err
			}
			table := engine.Bundle().Keywords
			keywords := table.Keywords()
			sort.SliceStable(keywords, func(i, j int) bool {
				return keywords[i].Category() < keywords[j].Category()
			})
			for _, k := range keywords {
				env.out.Plain("%-20s %-9s %s\n", k.String(), k.Category(), strings.Join(table.Texts(k.Key()), " "))
			}
			return nil
		},
	}
}
