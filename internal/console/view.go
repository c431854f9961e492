package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nekonora/xcodebuild/internal/output"
	"github.com/nekonora/xcodebuild/internal/ui"
)

// formHeight is the title, six fields and the blank line around them.
const formHeight = 10

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := m.viewHeader()
	form := m.viewForm()
	statusBar := m.viewStatusBar()

	outputHeight := m.height - lipgloss.Height(header) - lipgloss.Height(form) - lipgloss.Height(statusBar)
	if outputHeight < 5 {
		outputHeight = 5
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, form, m.viewOutput(outputHeight), statusBar)
}

func (m *Model) viewHeader() string {
	def, ok := m.ops.DefaultScheme()
	if !ok {
		def = "(none)"
	}
	content := fmt.Sprintf("xcodebuild console  Default scheme: %s", def)
	if m.state == stateRunning {
		content += "  " + ui.WarningStyle.Render(m.label+"...")
	}
	return ui.HeaderStyle.Width(m.width).Render(content)
}

func (m *Model) viewForm() string {
	var b strings.Builder
	b.WriteString(ui.Title("Project"))
	b.WriteString("\n")

	inputWidth := m.width - labelWidth - 4
	if inputWidth < 10 {
		inputWidth = 10
	}

	for f := formField(0); f < fieldCount; f++ {
		focused := m.focused == f
		b.WriteString(ui.Label(fieldNames[f], labelWidth, focused))
		b.WriteString(" ")
		if f == fieldFilter {
			b.WriteString(m.viewFilter(focused))
		} else {
			m.inputs[f].Width = inputWidth
			b.WriteString(m.inputs[f].View())
		}
		b.WriteString("\n")
	}

	if m.message != "" {
		b.WriteString(ui.DimStyle.Render(m.message))
	}
	return lipgloss.NewStyle().Height(formHeight).Render(b.String())
}

func (m *Model) viewFilter(focused bool) string {
	var parts []string
	for i, mode := range output.Modes {
		name := string(mode)
		switch {
		case i == m.filterIdx && focused:
			parts = append(parts, ui.FocusedLabelStyle.Render("["+name+"]"))
		case i == m.filterIdx:
			parts = append(parts, ui.BoldStyle.Render("["+name+"]"))
		default:
			parts = append(parts, ui.DimStyle.Render(name))
		}
	}
	return strings.Join(parts, " ")
}

func (m *Model) viewOutput(height int) string {
	// Panel border takes two columns and two rows, padding two columns.
	contentWidth := m.width - 4
	if contentWidth < 10 {
		contentWidth = 10
	}
	contentHeight := height - 2
	if contentHeight < 3 {
		contentHeight = 3
	}

	oldWidth := m.viewport.Width
	m.viewport.Width = contentWidth
	m.viewport.Height = contentHeight
	if oldWidth != contentWidth && m.output.Len() > 0 {
		m.updateViewportContent()
	}

	content := m.viewport.View()
	if m.output.Len() == 0 {
		content = ui.DimStyle.Render("Output will appear here...")
	}
	return ui.Panel("Output", content, m.width, height, m.state == stateRunning)
}

func (m *Model) viewStatusBar() string {
	var parts []string
	for _, kb := range m.shortHelp() {
		if kb.Enabled() {
			parts = append(parts, ui.StatusKey(kb.Help().Key, kb.Help().Desc))
		}
	}
	return ui.StatusBar(m.width, parts...)
}
