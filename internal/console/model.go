// Package console is an interactive terminal front end for the build, test
// and scheme operations.
package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wrap"

	"github.com/nekonora/xcodebuild/internal/output"
	"github.com/nekonora/xcodebuild/internal/service"
	"github.com/nekonora/xcodebuild/internal/ui"
	"github.com/nekonora/xcodebuild/internal/xcode"
)

// Operations is the subset of *service.Service the console drives.
type Operations interface {
	Build(ctx context.Context, req service.Request) (*service.Report, error)
	Test(ctx context.Context, req service.Request) (*service.Report, error)
	Schemes(ctx context.Context, folder string) ([]string, error)
	SetDefaultScheme(ctx context.Context, folder, scheme string) error
	DefaultScheme() (string, bool)
}

type formField int

const (
	fieldFolder formField = iota
	fieldScheme
	fieldSimulator
	fieldOS
	fieldFilter
	fieldMatch
	fieldCount
)

var fieldNames = [fieldCount]string{"Folder", "Scheme", "Simulator", "iOS", "Filter", "Match"}

type consoleState int

const (
	stateIdle consoleState = iota
	stateRunning
)

const labelWidth = 10

// resultMsg carries the outcome of an operation back to the model.
type resultMsg struct {
	label  string
	report *service.Report
	text   string
	err    error
}

// Model is the bubbletea model of the console.
type Model struct {
	ops Operations
	ctx context.Context

	inputs    [fieldCount]textinput.Model
	filterIdx int
	focused   formField

	state   consoleState
	label   string
	cancel  context.CancelFunc
	output  strings.Builder
	message string

	viewport      viewport.Model
	width, height int
}

// New creates a console model. folder pre-fills the folder field.
func New(ctx context.Context, ops Operations, folder string) *Model {
	m := &Model{ops: ops, ctx: ctx, viewport: viewport.New(0, 0)}

	placeholders := [fieldCount]string{
		fieldFolder:    "path to the folder holding the project",
		fieldScheme:    "default or first available",
		fieldSimulator: "e.g. iPhone 16",
		fieldOS:        "e.g. 18.3.1",
		fieldMatch:     "text to match with string_match",
	}
	for i := range m.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 256
		in.Placeholder = placeholders[i]
		m.inputs[i] = in
	}
	m.inputs[fieldFolder].SetValue(folder)
	m.inputs[fieldFolder].Focus()
	return m
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case resultMsg:
		m.complete(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, Keys.Quit) {
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	}

	// While running, only scrolling and cancel.
	if m.state == stateRunning {
		if key.Matches(msg, Keys.Cancel) && m.cancel != nil {
			m.cancel()
			m.message = "Cancelling..."
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, Keys.Build):
		return m, m.startRun(xcode.ActionBuild)
	case key.Matches(msg, Keys.Test):
		return m, m.startRun(xcode.ActionTest)
	case key.Matches(msg, Keys.Schemes):
		return m, m.startSchemes()
	case key.Matches(msg, Keys.SetDefault):
		return m, m.startSetDefault()
	case key.Matches(msg, Keys.NextField):
		m.advanceField(1)
		return m, nil
	case key.Matches(msg, Keys.PrevField):
		m.advanceField(-1)
		return m, nil
	}

	if m.focused == fieldFilter {
		if key.Matches(msg, Keys.CycleFilter) {
			step := 1
			if msg.String() == "left" {
				step = -1
			}
			m.filterIdx = (m.filterIdx + len(output.Modes) + step) % len(output.Modes)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m *Model) advanceField(dir int) {
	m.inputs[m.focused].Blur()
	m.focused = formField((int(m.focused) + int(fieldCount) + dir) % int(fieldCount))
	if m.focused != fieldFilter {
		m.inputs[m.focused].Focus()
	}
}

func (m *Model) value(f formField) string {
	return strings.TrimSpace(m.inputs[f].Value())
}

func (m *Model) filterMode() output.Mode {
	return output.Modes[m.filterIdx]
}

func (m *Model) request() service.Request {
	return service.Request{
		Folder: m.value(fieldFolder),
		Scheme: m.value(fieldScheme),
		Criteria: xcode.Criteria{
			DeviceName: m.value(fieldSimulator),
			OSVersion:  m.value(fieldOS),
		},
		Filter: output.Spec{Mode: m.filterMode(), Match: m.value(fieldMatch)},
	}
}

// begin switches to the running state and returns the context the
// operation must use.
func (m *Model) begin(label string) context.Context {
	ctx, cancel := context.WithCancel(m.ctx)
	m.state = stateRunning
	m.label = label
	m.cancel = cancel
	m.message = ""
	m.output.Reset()
	m.output.WriteString(label + "...\n")
	m.updateViewportContent()
	return ctx
}

func (m *Model) startRun(action xcode.Action) tea.Cmd {
	req := m.request()
	label := "Building"
	run := m.ops.Build
	if action == xcode.ActionTest {
		label = "Testing"
		run = m.ops.Test
	}
	ctx := m.begin(label)
	return func() tea.Msg {
		report, err := run(ctx, req)
		return resultMsg{label: label, report: report, err: err}
	}
}

func (m *Model) startSchemes() tea.Cmd {
	folder := m.value(fieldFolder)
	ctx := m.begin("Listing schemes")
	return func() tea.Msg {
		schemes, err := m.ops.Schemes(ctx, folder)
		if err != nil {
			return resultMsg{label: "Listing schemes", err: err}
		}
		return resultMsg{label: "Listing schemes", text: service.FormatSchemes(schemes)}
	}
}

func (m *Model) startSetDefault() tea.Cmd {
	folder, scheme := m.value(fieldFolder), m.value(fieldScheme)
	ctx := m.begin("Setting default scheme")
	return func() tea.Msg {
		if err := m.ops.SetDefaultScheme(ctx, folder, scheme); err != nil {
			return resultMsg{label: "Setting default scheme", err: err}
		}
		return resultMsg{label: "Setting default scheme", text: service.FormatDefaultSet(scheme)}
	}
}

func (m *Model) complete(msg resultMsg) {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.state = stateIdle
	m.output.Reset()

	switch {
	case msg.err != nil:
		m.output.WriteString(describeError(msg.err))
	case msg.report != nil:
		m.output.WriteString(ui.OutcomeBadge(msg.report.ExitCode) + " " + msg.label + " finished in " + msg.report.Duration.String() + "\n\n")
		m.output.WriteString(strings.Join(msg.report.Segments(), "\n\n"))
	default:
		m.output.WriteString(msg.text)
	}
	m.output.WriteString("\n")
	m.updateViewportContent()
	m.viewport.GotoTop()
}

func describeError(err error) string {
	var (
		pe       *service.ParamsError
		notFound *xcode.SchemeNotFoundError
	)
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		return service.ProjectNotFoundText
	case errors.Is(err, context.Canceled):
		return ui.WarningStyle.Render("Cancelled")
	case errors.As(err, &notFound):
		return notFound.Error()
	case errors.As(err, &pe):
		return ui.ErrorStyle.Render("Rejected: ") + pe.Error()
	}
	return ui.ErrorStyle.Render("Error: ") + err.Error()
}

func (m *Model) updateViewportContent() {
	content := m.output.String()
	if m.viewport.Width <= 0 {
		m.viewport.SetContent(content)
		return
	}
	// Hard wrap, then truncate anything still wider than the pane.
	wrapped := wrap.String(content, m.viewport.Width)
	lines := strings.Split(wrapped, "\n")
	for i, line := range lines {
		if ansi.PrintableRuneWidth(line) > m.viewport.Width {
			lines[i] = truncate.String(line, uint(m.viewport.Width))
		}
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
}

func (m *Model) shortHelp() []key.Binding {
	if m.state == stateRunning {
		return []key.Binding{Keys.Cancel, Keys.Quit}
	}
	bindings := []key.Binding{Keys.Build, Keys.Test, Keys.Schemes, Keys.SetDefault, Keys.NextField}
	if m.focused == fieldFilter {
		bindings = append(bindings, Keys.CycleFilter)
	}
	return append(bindings, Keys.Quit)
}

// Output returns the plain text currently shown in the output pane.
func (m *Model) Output() string {
	return m.output.String()
}

// Run starts the console on the terminal and blocks until the user quits.
func Run(ctx context.Context, ops Operations, folder string) error {
	p := tea.NewProgram(New(ctx, ops, folder), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}
