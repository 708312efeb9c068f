package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/formulaeditor/formulaeditor/internal/app/service"
	"github.com/formulaeditor/formulaeditor/internal/app/service/render"
	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
	"github.com/formulaeditor/formulaeditor/internal/interfaces/cli/output"
)

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [formula]",
		Short: "Parse a formula and print its renderings",
		Long: `Parse one formula given as arguments (joined by spaces) or read from
standard input, and print it in the formats selected with --to.`,
		Example: `  formulaeditor parse "sin(x)^2 + cos(x)^2 = 1"
  echo "a·(b+c)" | formulaeditor parse --to mathml`,
		RunE: runParse,
	}
	cmd.Flags().Bool("tree", false, "Print the semantic tree")
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	engine, err := env.engine(cmd.Context())
	if err != nil {
		return err
	}
	formats, err := outputFormats(env.config.Output.Format)
	if err != nil {
		return err
	}

	input := strings.Join(args, " ")
	if len(args) == 0 || input == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read formula: %w", err)
		}
		input = strings.TrimRight(string(data), "\r\n")
	}

	node, err := engine.Parse(input).Value()
	if err != nil {
		env.out.Failure("", err)
		return ErrFailed
	}
	if tree, _ := cmd.Flags().GetBool("tree"); tree {
		env.out.Plain("%s\n", node)
	}
	return writeFormula(env.out, engine, node, formats)
}

// ErrFailed is returned once failures have been reported to the user.
var ErrFailed = fmt.Errorf("formula failed")

// writeFormula prints node in each format, with headings when there is
// more than one.
func writeFormula(out *output.ThemedOutput, engine *service.Engine, node entity.Node, formats []string) error {
	for _, format := range formats {
		text, err := renderFormat(out, engine, node, format)
		if err != nil {
			return err
		}
		if len(formats) > 1 {
			out.Heading(format)
		}
		out.Plain("%s\n", strings.TrimRight(text, "\n"))
	}
	return nil
}

func renderFormat(out *output.ThemedOutput, engine *service.Engine, node entity.Node, format string) (string, error) {
	if format == value.FormatPresentation && out.ColorsEnabled() {
		return render.Terminal(render.Presentation(node), engine.Palette()), nil
	}
	return engine.Render(node, format).Value()
}
