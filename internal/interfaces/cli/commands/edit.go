package commands

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/formulaeditor/formulaeditor/internal/app/service"
	"github.com/formulaeditor/formulaeditor/internal/domain/entity"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
	"github.com/formulaeditor/formulaeditor/internal/interfaces/cli/output"
)

// NewEditCommand creates the interactive formula editor command.
func NewEditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit [formula]",
		Short: "Edit a formula interactively",
		Long: `Launch a terminal editor that parses the formula on every keystroke and
shows it rendered in the selected format.

Keys:
  tab          cycle output format
  enter        keep the formula in the history and start a new one
  up/down      recall history
  ctrl+t       toggle the semantic tree
  esc, ctrl+c  quit`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			engine, err := env.engine(cmd.Context())
			if err != nil {
				return err
			}
			model := newEditModel(engine, env.config.ColorEnabled(), strings.Join(args, " "))
			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			final, err := program.Run()
			if err != nil {
				return fmt.Errorf("editor error: %w", err)
			}
			for _, formula := range final.(*editModel).history {
				fmt.Fprintln(cmd.OutOrStdout(), formula)
			}
			return nil
		},
	}
}

var editFormats = []string{value.FormatPresentation, value.FormatOpenMath, value.FormatMathML, value.FormatHTML}

// editModel is the state of the interactive editor.
type editModel struct {
	engine *service.Engine
	color  bool

	input  []rune
	cursor int

	node entity.Node
	err  error

	format   int
	showTree bool

	history  []string
	recalled int

	width  int
	status string
	styles *editStyles
}

// parsedMsg carries the parse result of one input text.
type parsedMsg struct {
	input string
	node  entity.Node
	err   error
}

type editStyles struct {
	header lipgloss.Style
	input  lipgloss.Style
	cursor lipgloss.Style
	error  lipgloss.Style
	status lipgloss.Style
	help   lipgloss.Style
	border lipgloss.Style
}

func newEditStyles(theme value.Theme, color bool) *editStyles {
	if !color {
		plain := lipgloss.NewStyle()
		return &editStyles{
			header: plain.Bold(true),
			input:  plain,
			cursor: plain.Reverse(true),
			error:  plain,
			status: plain,
			help:   plain,
			border: plain.Border(lipgloss.NormalBorder()).Padding(0, 1),
		}
	}
	return &editStyles{
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Background(lipgloss.Color("57")).Padding(0, 1),
		input:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		cursor: lipgloss.NewStyle().Reverse(true),
		error:  lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Colors().Error)).Bold(true),
		status: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		help:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		border: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1),
	}
}

func newEditModel(engine *service.Engine, color bool, initial string) *editModel {
	return &editModel{
		engine:   engine,
		color:    color,
		input:    []rune(initial),
		cursor:   len([]rune(initial)),
		recalled: -1,
		status:   "Ready",
		styles:   newEditStyles(engine.Theme(), color),
	}
}

// Init implements bubbletea.Model.
func (m *editModel) Init() tea.Cmd {
	return m.parse()
}

// parse parses the current input off the update loop.
func (m *editModel) parse() tea.Cmd {
	input := string(m.input)
	engine := m.engine
	return func() tea.Msg {
		node, err := engine.Parse(input).Value()
		return parsedMsg{input: input, node: node, err: err}
	}
}

// Update implements bubbletea.Model.
func (m *editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case parsedMsg:
		if msg.input != string(m.input) {
			return m, nil
		}
		m.node, m.err = msg.node, msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *editModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyTab:
		m.format = (m.format + 1) % len(editFormats)
		m.status = "Format: " + editFormats[m.format]
		return m, nil

	case tea.KeyCtrlT:
		m.showTree = !m.showTree
		return m, nil

	case tea.KeyEnter:
		if m.err != nil || m.node == nil {
			m.status = "Formula does not parse"
			return m, nil
		}
		m.history = append(m.history, string(m.input))
		m.status = fmt.Sprintf("Kept formula %d at %s", len(m.history), time.Now().Format("15:04:05"))
		m.setInput("")
		m.recalled = -1
		return m, m.parse()

	case tea.KeyUp:
		if len(m.history) == 0 {
			return m, nil
		}
		if m.recalled < 0 {
			m.recalled = len(m.history)
		}
		if m.recalled > 0 {
			m.recalled--
		}
		m.setInput(m.history[m.recalled])
		return m, m.parse()

	case tea.KeyDown:
		if m.recalled < 0 {
			return m, nil
		}
		m.recalled++
		if m.recalled >= len(m.history) {
			m.recalled = -1
			m.setInput("")
		} else {
			m.setInput(m.history[m.recalled])
		}
		return m, m.parse()

	case tea.KeyLeft:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case tea.KeyRight:
		if m.cursor < len(m.input) {
			m.cursor++
		}
		return m, nil
	case tea.KeyHome, tea.KeyCtrlA:
		m.cursor = 0
		return m, nil
	case tea.KeyEnd, tea.KeyCtrlE:
		m.cursor = len(m.input)
		return m, nil

	case tea.KeyBackspace:
		if m.cursor == 0 {
			return m, nil
		}
		m.input = append(m.input[:m.cursor-1], m.input[m.cursor:]...)
		m.cursor--
		return m, m.parse()
	case tea.KeyDelete:
		if m.cursor >= len(m.input) {
			return m, nil
		}
		m.input = append(m.input[:m.cursor], m.input[m.cursor+1:]...)
		return m, m.parse()

	case tea.KeySpace:
		m.insert([]rune{' '})
		return m, m.parse()
	case tea.KeyRunes:
		m.insert(msg.Runes)
		return m, m.parse()
	}
	return m, nil
}

func (m *editModel) setInput(text string) {
	m.input = []rune(text)
	m.cursor = len(m.input)
}

func (m *editModel) insert(runes []rune) {
	tail := append([]rune(nil), m.input[m.cursor:]...)
	m.input = append(append(m.input[:m.cursor], runes...), tail...)
	m.cursor += len(runes)
}

// View implements bubbletea.Model.
func (m *editModel) View() string {
	header := m.styles.header.Render("formulaeditor") + " " +
		m.styles.status.Render(fmt.Sprintf("%s • %s", m.engine.Theme().Name(), editFormats[m.format]))

	sections := []string{header, m.renderInput(), m.renderResult()}
	if m.showTree && m.node != nil {
		sections = append(sections, m.styles.status.Render(m.node.String()))
	}
	help := m.styles.help
	if m.width > 0 {
		help = help.Width(m.width)
	}
	sections = append(sections,
		m.styles.status.Render(m.status),
		help.Render("tab: format • enter: keep • ↑/↓: history • ctrl+t: tree • esc: quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *editModel) renderInput() string {
	before := string(m.input[:m.cursor])
	at, after := " ", ""
	if m.cursor < len(m.input) {
		at = string(m.input[m.cursor])
		after = string(m.input[m.cursor+1:])
	}
	line := "> " + m.styles.input.Render(before) + m.styles.cursor.Render(at) + m.styles.input.Render(after)
	if pf, ok := service.AsParseFailure(m.err); ok && len(m.input) > 0 {
		line += "\n  " + m.styles.error.Render(strings.Repeat(" ", pf.Column-1)+m.engine.Theme().Marks().Caret)
	}
	return line
}

func (m *editModel) renderResult() string {
	if len(m.input) == 0 {
		return m.styles.border.Render(m.styles.help.Render("type a formula"))
	}
	if m.err != nil {
		return m.styles.border.Render(m.styles.error.Render(m.err.Error()))
	}
	if m.node == nil {
		return m.styles.border.Render("")
	}
	out := output.NewThemedOutput(m.engine.Theme(), m.color)
	text, err := renderFormat(out, m.engine, m.node, editFormats[m.format])
	if err != nil {
		return m.styles.border.Render(m.styles.error.Render(err.Error()))
	}
	return m.styles.border.Render(strings.TrimRight(text, "\n"))
}
