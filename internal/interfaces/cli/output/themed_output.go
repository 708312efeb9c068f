// Package output prints command results with the theme's marks and colours.
package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
)

// ThemedOutput writes results to writer and diagnostics to errorWriter.
type ThemedOutput struct {
	theme        value.Theme
	writer       io.Writer
	errorWriter  io.Writer
	enableColors bool
}

// NewThemedOutput creates an output on stdout and stderr.
func NewThemedOutput(theme value.Theme, enableColors bool) *ThemedOutput {
	return &ThemedOutput{
		theme:        theme,
		writer:       os.Stdout,
		errorWriter:  os.Stderr,
		enableColors: enableColors,
	}
}

// WithWriter returns a copy writing results to writer.
func (to *ThemedOutput) WithWriter(writer io.Writer) *ThemedOutput {
	clone := *to
	clone.writer = writer
	return &clone
}

// WithErrorWriter returns a copy writing diagnostics to writer.
func (to *ThemedOutput) WithErrorWriter(writer io.Writer) *ThemedOutput {
	clone := *to
	clone.errorWriter = writer
	return &clone
}

func (to *ThemedOutput) WithColors(enable bool) *ThemedOutput {
	clone := *to
	clone.enableColors = enable
	return &clone
}

func (to *ThemedOutput) Theme() value.Theme { return to.theme }

func (to *ThemedOutput) ColorsEnabled() bool { return to.enableColors }

func (to *ThemedOutput) style(color string) lipgloss.Style {
	if !to.enableColors || color == "" {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// Success prints a message after the success mark.
func (to *ThemedOutput) Success(format string, args ...interface{}) {
	mark := to.style(to.theme.Colors().Keyword).Render(to.theme.Marks().Success)
	to.line(to.errorWriter, mark, fmt.Sprintf(format, args...))
}

// Error prints a message after the error mark.
func (to *ThemedOutput) Error(format string, args ...interface{}) {
	mark := to.style(to.theme.Colors().Error).Bold(to.enableColors).Render(to.theme.Marks().Error)
	to.line(to.errorWriter, mark, fmt.Sprintf(format, args...))
}

// Info prints a message after the arrow mark.
func (to *ThemedOutput) Info(format string, args ...interface{}) {
	to.line(to.errorWriter, to.theme.Marks().Arrow, fmt.Sprintf(format, args...))
}

// Heading prints a section title to the result writer.
func (to *ThemedOutput) Heading(title string) {
	style := lipgloss.NewStyle()
	if to.enableColors {
		style = style.Bold(true).Foreground(lipgloss.Color(to.theme.Colors().Operator))
	}
	fmt.Fprintln(to.writer, style.Render(title))
}

// Plain prints to the result writer without decoration.
func (to *ThemedOutput) Plain(format string, args ...interface{}) {
	fmt.Fprintf(to.writer, format, args...)
}

func (to *ThemedOutput) PlainError(format string, args ...interface{}) {
	fmt.Fprintf(to.errorWriter, format, args...)
}

func (to *ThemedOutput) line(w io.Writer, mark, message string) {
	if mark != "" {
		message = mark + " " + message
	}
	if !strings.HasSuffix(message, "\n") {
		message += "\n"
	}
	fmt.Fprint(w, message)
}

// Failure prints err. Parse failures show the failing input line with a
// caret under the failing column.
func (to *ThemedOutput) Failure(name string, err error) {
	prefix := ""
	if name != "" {
		prefix = name + ": "
	}
	var pf *entity.ParseFailure
	if !errors.As(err, &pf) {
		to.Error("%s%v", prefix, err)
		return
	}
	to.Error("%s%v", prefix, pf)
	for _, l := range CaretLines(pf, to.theme.Marks().Caret) {
		fmt.Fprintln(to.errorWriter, "  "+to.style(to.theme.Colors().Error).Render(l))
	}
}

// CaretLines returns the failing input line and a caret line beneath it.
func CaretLines(pf *entity.ParseFailure, caret string) []string {
	lines := strings.Split(pf.Input, "\n")
	if pf.Line < 1 || pf.Line > len(lines) {
		return nil
	}
	source := lines[pf.Line-1]
	return []string{source, strings.Repeat(" ", pf.Column-1) + caret}
}
