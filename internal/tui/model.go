// Package tui provides the Bubble Tea kiosk interface.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/blindcode/internal/evaluator"
	"github.com/verte-zerg/blindcode/internal/kiosk"
	"github.com/verte-zerg/blindcode/internal/session"
)

type screen int

const (
	screenRegister screen = iota
	screenChallenge
	screenResults
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusWarn
	statusError
)

// tickMsg is one countdown second for the session that owns id.
type tickMsg struct {
	id session.TimerID
}

// resultMsg carries a finished execution back to the event loop.
type resultMsg struct {
	session *session.Machine
	index   int
	eval    evaluator.Evaluation
}

// Options configures the kiosk UI.
type Options struct {
	Passcode          string
	MaxUnlockAttempts int
	Logger            *zap.Logger
}

// Model implements the Bubble Tea kiosk UI.
type Model struct {
	svc  *kiosk.Service
	opts Options
	log  *zap.Logger

	screen screen
	width  int
	height int

	regInputs []textinput.Model
	regIndex  int
	regError  string

	session *session.Machine
	editor  textarea.Model
	console viewport.Model
	spinner spinner.Model

	passcodeMode  bool
	passcode      textinput.Model
	passcodeError string

	jumpMode  bool
	jump      textinput.Model
	jumpError string

	table    table.Model
	complete bool

	status     string
	statusKind statusKind
}

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	paneStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	blindStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// NewModel constructs the kiosk UI. A registered participant resumes on the challenge screen.
func NewModel(svc *kiosk.Service, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	m := &Model{
		svc:  svc,
		opts: opts,
		log:  opts.Logger,
	}
	m.initRegisterInputs()
	m.initEditor()
	m.initModals()
	m.console = viewport.New(0, 0)
	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle))
	m.table = buildResultsTable(nil, 0, 1)

	if _, ok := svc.Registration(); ok {
		m.screen = screenChallenge
		m.loadChallenge()
	} else {
		m.screen = screenRegister
		m.setRegIndex(0)
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.screen == screenRegister {
		return textinput.Blink
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tickMsg:
		return m, m.handleTick(msg)
	case resultMsg:
		return m, m.handleResult(msg)
	case spinner.TickMsg:
		if m.session == nil || m.session.State() != session.StateSubmitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case screenRegister:
			return m.updateRegister(msg)
		case screenResults:
			return m.updateResults(msg)
		default:
			return m.updateChallenge(msg)
		}
	}
	return m, m.forward(msg)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	switch m.screen {
	case screenRegister:
		return fitLines(m.renderRegister(), m.width, m.height)
	case screenResults:
		return m.renderResults()
	}
	if m.passcodeMode {
		return fitLines(m.renderPasscodeModal(), m.width, m.height)
	}
	if m.jumpMode {
		return fitLines(m.renderJumpModal(), m.width, m.height)
	}
	return m.renderChallenge()
}

// forward passes non-key messages (cursor blinks) to the focused component.
func (m *Model) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case m.screen == screenRegister:
		m.regInputs[m.regIndex], cmd = m.regInputs[m.regIndex].Update(msg)
	case m.passcodeMode:
		m.passcode, cmd = m.passcode.Update(msg)
	case m.jumpMode:
		m.jump, cmd = m.jump.Update(msg)
	case m.editor.Focused():
		m.editor, cmd = m.editor.Update(msg)
	}
	return cmd
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, rightWidth, editorHeight, consoleHeight := m.challengeLayout()
	m.editor.SetWidth(max(10, rightWidth-2))
	m.editor.SetHeight(max(1, editorHeight-2))
	m.console.Width = max(10, rightWidth-2)
	m.console.Height = max(1, consoleHeight-3)
	m.refreshConsole()

	for i := range m.regInputs {
		m.regInputs[i].Width = max(10, min(m.width-lipgloss.Width(m.regInputs[i].Prompt)-2, 50))
	}
	m.passcode.Width = max(12, modalInnerWidth(m.width)-lipgloss.Width(m.passcode.Prompt))
	m.jump.Width = max(4, modalInnerWidth(m.width)-lipgloss.Width(m.jump.Prompt))
	m.resizeResultsTable()
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = text
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	text := truncateLine(m.status, m.width)
	switch m.statusKind {
	case statusSuccess:
		return successStyle.Render(text)
	case statusWarn:
		return warnStyle.Render(text)
	case statusError:
		return errorStyle.Render(text)
	default:
		return infoStyle.Render(text)
	}
}

func modalWidth(width int) int {
	return max(40, min(width-4, 70))
}

func modalInnerWidth(width int) int {
	w := modalWidth(width)
	w -= 6 // 2 border + 4 padding
	if w < 10 {
		return 10
	}
	return w
}

func (m *Model) renderModal(lines []string) string {
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

