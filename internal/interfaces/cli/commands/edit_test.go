package commands

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/npillmayer/schuko/testconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formulaeditor/formulaeditor/internal/app/service"
	"github.com/formulaeditor/formulaeditor/internal/domain/value"
)

func newTestEditModel(t *testing.T, initial string) *editModel {
	t.Helper()
	engine, err := service.NewEngine(context.Background(), service.EngineOptions{}).Value()
	require.NoError(t, err)
	m := newEditModel(engine, false, initial)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m.settle(m.Init())
	return m
}

// settle runs a parse command synchronously and feeds its message back.
func (m *editModel) settle(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg, ok := cmd().(parsedMsg); ok {
		m.Update(msg)
	}
}

func (m *editModel) press(msg tea.KeyMsg) {
	_, cmd := m.Update(msg)
	m.settle(cmd)
}

func (m *editModel) typeText(text string) {
	for _, r := range text {
		if r == ' ' {
			m.press(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		m.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestEditModel_TypingParses(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	m := newTestEditModel(t, "")
	assert.Contains(t, m.View(), "type a formula")

	m.typeText("1+")
	assert.Error(t, m.err)
	assert.Contains(t, m.View(), "^")

	m.typeText("2")
	require.NoError(t, m.err)
	assert.Equal(t, "plus(1, 2)", m.node.String())
	assert.Contains(t, m.View(), "1+2")
}

func TestEditModel_Cursor(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	m := newTestEditModel(t, "a+c")
	m.press(tea.KeyMsg{Type: tea.KeyLeft})
	m.typeText("b")
	assert.Equal(t, "a+bc", string(m.input))

	m.press(tea.KeyMsg{Type: tea.KeyBackspace})
	m.press(tea.KeyMsg{Type: tea.KeyHome})
	m.press(tea.KeyMsg{Type: tea.KeyDelete})
	assert.Equal(t, "+c", string(m.input))
	assert.Equal(t, 0, m.cursor)

	m.press(tea.KeyMsg{Type: tea.KeyEnd})
	assert.Equal(t, 2, m.cursor)
}

func TestEditModel_FormatsAndHistory(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	m := newTestEditModel(t, "x")
	m.press(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, value.FormatOpenMath, editFormats[m.format])
	assert.Contains(t, m.View(), "<OMV name='x'/>")

	m.press(tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.True(t, m.showTree)

	m.press(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"x"}, m.history)
	assert.Empty(t, m.input)

	m.typeText("y")
	m.press(tea.KeyMsg{Type: tea.KeyEnter})
	m.press(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "y", string(m.input))
	m.press(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "x", string(m.input))
	m.press(tea.KeyMsg{Type: tea.KeyDown})
	m.press(tea.KeyMsg{Type: tea.KeyDown})
	assert.Empty(t, m.input)
}

func TestEditModel_RejectsUnparsedFormula(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	m := newTestEditModel(t, "1+")
	m.press(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, m.history)
	assert.Equal(t, "Formula does not parse", m.status)
}

func TestEditModel_StaleParseIgnored(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	m := newTestEditModel(t, "x")
	m.Update(parsedMsg{input: "old", err: assert.AnError})
	assert.NoError(t, m.err)
}

func TestEditModel_Quit(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()

	m := newTestEditModel(t, "")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
