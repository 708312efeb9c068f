package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/formulaeditor/formulaeditor/internal/app/service"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
)

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Convert formula files between notations",
		Long: `Convert formulae read from files, or from standard input when no file or
"-" is given. Files ending in .om or .xml, and input starting with "<", are
read as one OpenMath document. Other input holds one text formula per line;
blank lines and lines starting with "#" are skipped.`,
		Example: `  formulaeditor convert formulas.txt --to openmath
  formulaeditor convert --jobs 4 a.om b.om --to presentation`,
		RunE: runConvert,
	}
	cmd.Flags().IntP("jobs", "j", runtime.NumCPU(), "Number of formulae converted in parallel")
	return cmd
}

func runConvert(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	engine, err := env.engine(cmd.Context())
	if err != nil {
		return err
	}
	format := env.config.Output.Format
	if !cmd.Flags().Changed("to") && format == value.FormatAll {
		format = value.FormatOpenMath
	}
	formats, err := outputFormats(format)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		args = []string{"-"}
	}
	var inputs []service.Input
	for _, arg := range args {
		read, err := readInputs(cmd, arg)
		if err != nil {
			return err
		}
		inputs = append(inputs, read...)
	}

	jobs, _ := cmd.Flags().GetInt("jobs")
	conversions, err := engine.ConvertAll(cmd.Context(), inputs, jobs).Value()
	if err != nil {
		return err
	}

	for _, c := range conversions {
		if c.Err != nil {
			env.out.Failure(c.Name, c.Err)
			continue
		}
		env.out.Heading(c.Name)
		if err := writeFormula(env.out, engine, c.Node, formats); err != nil {
			return err
		}
	}

	failed := service.FailureCount(conversions)
	if failed > 0 {
		env.out.Error("%d of %d formulae failed", failed, len(conversions))
		return ErrFailed
	}
	env.out.Success("%d formulae converted", len(conversions))
	return nil
}

// readInputs reads one file argument into conversion inputs.
func readInputs(cmd *cobra.Command, path string) ([]service.Input, error) {
	var (
		data []byte
		err  error
		name = path
	)
	if path == "-" {
		name = "stdin"
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return splitInputs(name, string(data)), nil
}

// splitInputs treats data as an OpenMath document or as text formulae, one
// per line, named name:line.
func splitInputs(name, data string) []service.Input {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".om" || ext == ".xml" || strings.HasPrefix(strings.TrimSpace(data), "<") {
		return []service.Input{{Name: name, Kind: service.InputOpenMath, Data: data}}
	}
	var inputs []service.Input
	for i, line := range strings.Split(data, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		inputs = append(inputs, service.Input{
			Name: fmt.Sprintf("%s:%d", name, i+1),
			Kind: service.InputText,
			Data: line,
		})
	}
	return inputs
}
