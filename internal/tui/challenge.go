package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/blindcode/internal/evaluator"
	"github.com/verte-zerg/blindcode/internal/session"
)

const (
	consolePlaceholder = "Output will be shown here..."
	blindTitle         = "Blind Mode Activated"
	indent             = "    "
)

func tick(id session.TimerID) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{id: id}
	})
}

func (m *Model) initEditor() {
	m.editor = textarea.New()
	m.editor.Prompt = ""
	m.editor.Placeholder = "# Write your Python solution here"
	m.editor.ShowLineNumbers = true
	m.editor.CharLimit = 0
	m.editor.MaxHeight = 0
	m.editor.Blur()
}

func (m *Model) initModals() {
	m.passcode = newInput("Passcode: ")
	m.passcode.EchoMode = textinput.EchoPassword
	m.passcode.EchoCharacter = '•'

	m.jump = newInput("Challenge #: ")
	m.jump.CharLimit = 3
}

// loadChallenge replaces the session with a fresh idle one for the current challenge.
// Ticks still in flight for the previous session carry its handle and are ignored.
func (m *Model) loadChallenge() {
	ch := m.svc.Current()
	m.session = session.New(ch.TimerSeconds, session.Options{
		Passcode:          m.opts.Passcode,
		MaxUnlockAttempts: m.opts.MaxUnlockAttempts,
	})
	m.editor.Reset()
	m.editor.Blur()
	m.passcodeMode = false
	m.jumpMode = false
	m.refreshConsole()
	m.setStatus(statusInfo, "Press enter to start the challenge.")
}

func (m *Model) updateChallenge(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.passcodeMode {
		return m.updatePasscode(msg)
	}
	if m.jumpMode {
		return m.updateJump(msg)
	}
	switch msg.String() {
	case "ctrl+s":
		return m, m.submit()
	case "ctrl+o":
		return m, m.startPasscode()
	case "ctrl+x":
		return m, m.skip()
	case "ctrl+p":
		return m, m.selectChallenge(m.svc.Index() - 1)
	case "ctrl+n":
		return m, m.selectChallenge(m.svc.Index() + 1)
	case "ctrl+g":
		return m, m.startJump()
	case "ctrl+r":
		return m, m.showResults()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.console, cmd = m.console.Update(msg)
		return m, cmd
	case "enter":
		switch {
		case m.session.State() == session.StateIdle:
			return m, m.start()
		case m.session.CanAdvance():
			return m, m.advance()
		}
	case "tab":
		if m.session.Editable() {
			m.editor.InsertString(indent)
			m.session.SetCode(m.editor.Value())
		}
		return m, nil
	}
	if !m.session.Editable() {
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.session.SetCode(m.editor.Value())
	return m, cmd
}

func (m *Model) start() tea.Cmd {
	id, err := m.session.Start()
	if err != nil {
		return nil
	}
	m.editor.Reset()
	m.refreshConsole()
	m.setStatus(statusInfo, "Blind mode is on. Your code stays hidden until you submit.")
	m.log.Info("challenge started", zap.String("challenge", m.svc.Current().Title))
	return tea.Batch(tick(id), m.editor.Focus())
}

func (m *Model) submit() tea.Cmd {
	code, err := m.session.Submit()
	if err != nil {
		switch {
		case errors.Is(err, session.ErrEmptyCode):
			m.setStatus(statusWarn, "Please write some code before submitting.")
		case m.session.State() == session.StateIdle:
			m.setStatus(statusWarn, "Press enter to start the challenge first.")
		case m.session.State() == session.StateSubmitting:
			m.setStatus(statusWarn, "Your code is already running.")
		default:
			m.setStatus(statusInfo, "This challenge is already solved.")
		}
		return nil
	}
	m.editor.Blur()
	m.refreshConsole()
	m.setStatus(statusInfo, "Running your code...")

	svc := m.svc
	sess := m.session
	index := svc.Index()
	run := func() tea.Msg {
		return resultMsg{
			session: sess,
			index:   index,
			eval:    svc.Execute(context.Background(), index, code),
		}
	}
	return tea.Batch(run, m.spinner.Tick)
}

func (m *Model) handleResult(msg resultMsg) tea.Cmd {
	if msg.session != m.session {
		return nil
	}
	_, recordErr := m.svc.Record(context.Background(), msg.index, msg.eval)
	var cmd tea.Cmd
	switch m.session.Resolve(msg.eval.DisplayText, msg.eval.Success) {
	case session.TransitionSolved:
		if _, ok := m.svc.Catalog().Next(msg.index); ok {
			m.setStatus(statusSuccess, "Correct! Press enter for the next challenge.")
		} else {
			m.setStatus(statusSuccess, "Correct! Press enter to see your results.")
		}
	case session.TransitionRetry:
		if strings.HasPrefix(msg.eval.DisplayText, evaluator.ErrorPrefix) {
			m.setStatus(statusError, "Your code did not run. Fix it and try again.")
		} else {
			m.setStatus(statusWarn, "Incorrect output. Try again.")
		}
		cmd = m.editor.Focus()
	case session.TransitionFinished:
		m.setStatus(statusWarn, "Incorrect output, and time is up.")
	}
	m.refreshConsole()
	if recordErr != nil {
		m.log.Error("failed to record submission", zap.Error(recordErr))
		m.setStatus(statusError, "Failed to save your result.")
	}
	return cmd
}

func (m *Model) handleTick(msg tickMsg) tea.Cmd {
	if m.session == nil {
		return nil
	}
	res := m.session.Tick(msg.id)
	if res.Expired {
		m.editor.Blur()
		m.passcodeMode = false
		m.setStatus(statusWarn, "Time's up! Your code is now read-only. You can still submit it.")
		m.log.Info("challenge time expired", zap.String("challenge", m.svc.Current().Title))
		return nil
	}
	if res.Continue {
		return tick(msg.id)
	}
	return nil
}

func (m *Model) advance() tea.Cmd {
	_, done, err := m.svc.Advance(context.Background())
	if err != nil {
		m.log.Error("failed to advance", zap.Error(err))
		m.setStatus(statusError, "Failed to save your progress.")
		return nil
	}
	if done {
		m.complete = true
		return m.showResults()
	}
	m.loadChallenge()
	return nil
}

func (m *Model) skip() tea.Cmd {
	if !m.session.CanSkip() {
		if m.session.State() == session.StateSubmitting {
			m.setStatus(statusWarn, "Please wait for the current submission to finish.")
		} else {
			m.setStatus(statusInfo, "This challenge is already solved.")
		}
		return nil
	}
	title := m.svc.Current().Title
	_, done, err := m.svc.Skip(context.Background(), m.svc.Index())
	if err != nil {
		m.log.Error("failed to skip", zap.Error(err))
		m.setStatus(statusError, "Failed to save your progress.")
		return nil
	}
	if done {
		m.complete = true
		return m.showResults()
	}
	m.loadChallenge()
	m.setStatus(statusInfo, fmt.Sprintf("Skipped %q. Press enter to start the next challenge.", title))
	return nil
}

func (m *Model) selectChallenge(i int) tea.Cmd {
	if m.session.State() == session.StateSubmitting {
		m.setStatus(statusWarn, "Please wait for the current submission to finish.")
		return nil
	}
	if m.svc.Catalog().Clamp(i) == m.svc.Index() {
		return nil
	}
	if _, err := m.svc.Select(context.Background(), i); err != nil {
		m.log.Error("failed to select challenge", zap.Error(err))
		m.setStatus(statusError, "Failed to save your progress.")
	}
	m.loadChallenge()
	return nil
}

func (m *Model) refocusEditor() tea.Cmd {
	if m.session != nil && m.session.Editable() {
		return m.editor.Focus()
	}
	return nil
}

func (m *Model) startPasscode() tea.Cmd {
	if !m.session.BlindMode() {
		m.setStatus(statusInfo, "Blind mode is not active.")
		return nil
	}
	m.passcodeMode = true
	m.passcodeError = ""
	m.passcode.SetValue("")
	m.editor.Blur()
	return m.passcode.Focus()
}

func (m *Model) closePasscode() tea.Cmd {
	m.passcodeMode = false
	m.passcodeError = ""
	m.passcode.SetValue("")
	m.passcode.Blur()
	return m.refocusEditor()
}

func (m *Model) updatePasscode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, m.closePasscode()
	case tea.KeyEnter:
		code := m.passcode.Value()
		if len(code) != session.PasscodeLength {
			m.passcodeError = fmt.Sprintf("Enter the %d-digit passcode.", session.PasscodeLength)
			return m, nil
		}
		err := m.session.Unlock(code)
		switch {
		case err == nil:
			m.log.Info("blind mode unlocked", zap.String("challenge", m.svc.Current().Title))
			m.setStatus(statusSuccess, "Blind mode disabled for this challenge.")
			return m, m.closePasscode()
		case errors.Is(err, session.ErrUnlockRejected):
			m.log.Warn("wrong unlock passcode")
			m.passcodeError = "Incorrect passcode."
			m.passcode.SetValue("")
			return m, nil
		case errors.Is(err, session.ErrUnlockLocked):
			m.setStatus(statusError, "Too many incorrect passcodes.")
			return m, m.closePasscode()
		default:
			return m, m.closePasscode()
		}
	}
	var cmd tea.Cmd
	m.passcode, cmd = m.passcode.Update(msg)
	value := m.passcode.Value()
	if clean := session.SanitizePasscode(value); clean != value {
		m.passcode.SetValue(clean)
	}
	return m, cmd
}

func (m *Model) startJump() tea.Cmd {
	m.jumpMode = true
	m.jumpError = ""
	m.jump.SetValue("")
	m.editor.Blur()
	return m.jump.Focus()
}

func (m *Model) updateJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.jumpMode = false
		m.jump.Blur()
		return m, m.refocusEditor()
	case tea.KeyEnter:
		n, err := strconv.Atoi(m.jump.Value())
		if err != nil {
			m.jumpError = fmt.Sprintf("Enter a number between 1 and %d.", m.svc.Catalog().Count())
			return m, nil
		}
		m.jumpMode = false
		m.jump.Blur()
		if cmd := m.selectChallenge(n - 1); cmd != nil {
			return m, cmd
		}
		return m, m.refocusEditor()
	}
	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	value := m.jump.Value()
	if clean := digitsOnly(value, 3); clean != value {
		m.jump.SetValue(clean)
	}
	return m, cmd
}

func (m *Model) refreshConsole() {
	text := consolePlaceholder
	if m.session != nil && m.session.Console() != "" {
		text = m.session.Console()
	}
	m.console.SetContent(wrapText(text, m.console.Width))
	m.console.GotoTop()
}

// challengeLayout splits the body into the challenge pane and the editor column.
func (m *Model) challengeLayout() (leftWidth, rightWidth, editorHeight, consoleHeight int) {
	bodyHeight := max(6, m.height-3)
	leftWidth = max(24, m.width*2/5)
	rightWidth = max(24, m.width-leftWidth-1)
	consoleHeight = max(5, bodyHeight/3)
	editorHeight = max(3, bodyHeight-consoleHeight)
	return leftWidth, rightWidth, editorHeight, consoleHeight
}

func (m *Model) renderChallenge() string {
	leftWidth, rightWidth, editorHeight, consoleHeight := m.challengeLayout()
	bodyHeight := editorHeight + consoleHeight

	left := fitLines(m.renderDescription(leftWidth-2), leftWidth, bodyHeight)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.renderEditor(rightWidth, editorHeight),
		m.renderConsole(rightWidth, consoleHeight),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	header := fitLines(m.renderChallengeHeader(), m.width, 1)
	status := fitLines(m.renderStatus(), m.width, 1)
	help := fitLines(headerStyle.Render(truncateLine(m.challengeHelp(), m.width)), m.width, 1)
	return strings.Join([]string{header, fitLines(body, m.width, bodyHeight), status, help}, "\n")
}

func (m *Model) renderChallengeHeader() string {
	const brand = "Blind Coding"
	reg, _ := m.svc.Registration()
	segments := []string{
		fmt.Sprintf("%s (%s)", reg.Name, reg.RegistrationNumber),
		fmt.Sprintf("Challenge %d of %d", m.svc.Index()+1, m.svc.Catalog().Count()),
		fmt.Sprintf("Time %s", m.session.Clock()),
		fmt.Sprintf("Attempts %d", m.session.Attempts()),
	}
	if r, ok := m.svc.Find(m.svc.Current().Title); ok && r.Success {
		segments = append(segments, "Solved")
	}
	rest := truncateLine(strings.Join(segments, "  "), max(0, m.width-len(brand)-2))
	return accentStyle.Render(brand) + "  " + infoStyle.Render(rest)
}

func (m *Model) renderDescription(width int) string {
	ch := m.svc.Current()
	lines := []string{
		mutedStyle.Render(fmt.Sprintf("Challenge %d of %d", m.svc.Index()+1, m.svc.Catalog().Count())),
		titleStyle.Render(wrapText(ch.Title, width)),
		"",
		wrapText(ch.Description, width),
	}
	if len(ch.Details) > 0 {
		lines = append(lines, "", accentStyle.Render("Requirements"))
		for _, d := range ch.Details {
			lines = append(lines, wrapText("• "+d, width))
		}
	}
	lines = append(lines, "", accentStyle.Render("Expected output"), wrapText(ch.SampleOutput, width))
	if ch.Stdin != "" {
		lines = append(lines, "", accentStyle.Render("Input"), wrapText(ch.Stdin, width))
	}
	lines = append(lines, "", mutedStyle.Render(fmt.Sprintf("Time limit: %02d:%02d", ch.TimerSeconds/60, ch.TimerSeconds%60)))
	return lipgloss.NewStyle().PaddingLeft(1).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderEditor(width, height int) string {
	innerWidth := max(1, width-2)
	innerHeight := max(1, height-2)
	switch {
	case m.session.State() == session.StateIdle:
		msg := mutedStyle.Render("Press enter to start the challenge.")
		return paneStyle.Render(lipgloss.Place(innerWidth, innerHeight, lipgloss.Center, lipgloss.Center, msg))
	case m.session.BlindMode():
		msg := strings.Join([]string{
			accentStyle.Render(blindTitle),
			"",
			mutedStyle.Render("Your code is hidden while the timer runs."),
			mutedStyle.Render("Keep typing. Submit with ctrl+s."),
		}, "\n")
		return blindStyle.Render(lipgloss.Place(innerWidth, innerHeight, lipgloss.Center, lipgloss.Center, msg))
	default:
		return paneStyle.Render(fitLines(m.editor.View(), innerWidth, innerHeight))
	}
}

func (m *Model) renderConsole(width, height int) string {
	innerWidth := max(1, width-2)
	innerHeight := max(1, height-2)
	title := mutedStyle.Render("Console")
	if m.session.State() == session.StateSubmitting {
		title = m.spinner.View() + " " + mutedStyle.Render(session.ExecutingMessage)
	}
	content := title + "\n" + m.console.View()
	return paneStyle.Render(fitLines(content, innerWidth, innerHeight))
}

func (m *Model) challengeHelp() string {
	switch {
	case m.session.State() == session.StateIdle:
		return "enter: start  ctrl+x: skip  ctrl+p/ctrl+n: prev/next  ctrl+g: jump  ctrl+r: results  ctrl+c: quit"
	case m.session.CanAdvance():
		return "enter: next challenge  ctrl+p/ctrl+n: prev/next  ctrl+r: results  ctrl+c: quit"
	case m.session.BlindMode():
		return "ctrl+s: submit  ctrl+o: unlock  ctrl+x: skip  pgup/pgdn: console  ctrl+r: results  ctrl+c: quit"
	default:
		return "ctrl+s: submit  ctrl+x: skip  pgup/pgdn: console  ctrl+p/ctrl+n: prev/next  ctrl+r: results  ctrl+c: quit"
	}
}

func (m *Model) renderPasscodeModal() string {
	lines := []string{
		titleStyle.Render("Unlock Blind Mode"),
		m.passcode.View(),
		headerStyle.Render("Ask an organizer for the passcode."),
		headerStyle.Render("Enter to unlock / Esc to cancel"),
	}
	if m.passcodeError != "" {
		lines = append(lines, errorStyle.Render(m.passcodeError))
	}
	return m.renderModal(lines)
}

func (m *Model) renderJumpModal() string {
	lines := []string{
		titleStyle.Render("Go to Challenge"),
		m.jump.View(),
		headerStyle.Render(fmt.Sprintf("1-%d. Enter to go / Esc to cancel", m.svc.Catalog().Count())),
	}
	if m.jumpError != "" {
		lines = append(lines, errorStyle.Render(m.jumpError))
	}
	return m.renderModal(lines)
}
