package tui

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/blindcode/internal/kiosk"
	"github.com/verte-zerg/blindcode/internal/session"
)

const (
	fieldName = iota
	fieldRegNumber
	fieldPhone
)

func newInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) initRegisterInputs() {
	m.regInputs = []textinput.Model{
		newInput("Name:                "),
		newInput("Registration number: "),
		newInput("Phone (10 digits):   "),
	}
	m.regInputs[fieldName].CharLimit = 64
	m.regInputs[fieldRegNumber].CharLimit = 32
	m.regInputs[fieldPhone].CharLimit = kiosk.PhoneDigits
	m.regInputs[fieldPhone].Placeholder = "9876543210"
}

func (m *Model) setRegIndex(idx int) tea.Cmd {
	count := len(m.regInputs)
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.regIndex = idx
	var cmd tea.Cmd
	for i := range m.regInputs {
		if i == m.regIndex {
			cmd = m.regInputs[i].Focus()
		} else {
			m.regInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) startRegistration() tea.Cmd {
	m.editor.Blur()
	for i := range m.regInputs {
		m.regInputs[i].SetValue("")
	}
	m.regError = ""
	m.screen = screenRegister
	return m.setRegIndex(fieldName)
}

func (m *Model) updateRegister(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if _, ok := m.svc.Registration(); ok && m.session != nil {
			m.screen = screenChallenge
			return m, m.refocusEditor()
		}
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.setRegIndex(m.regIndex + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setRegIndex(m.regIndex - 1)
	case tea.KeyEnter:
		if m.regIndex < len(m.regInputs)-1 {
			return m, m.setRegIndex(m.regIndex + 1)
		}
		return m, m.register()
	}
	var cmd tea.Cmd
	m.regInputs[m.regIndex], cmd = m.regInputs[m.regIndex].Update(msg)
	if m.regIndex == fieldPhone {
		value := m.regInputs[fieldPhone].Value()
		if digits := digitsOnly(value, kiosk.PhoneDigits); digits != value {
			m.regInputs[fieldPhone].SetValue(digits)
		}
	}
	return m, cmd
}

func (m *Model) register() tea.Cmd {
	if m.session != nil && m.session.State() == session.StateSubmitting {
		m.regError = "Please wait for the current submission to finish."
		return nil
	}
	reg, err := m.svc.Register(context.Background(),
		m.regInputs[fieldName].Value(),
		m.regInputs[fieldRegNumber].Value(),
		m.regInputs[fieldPhone].Value(),
	)
	if err != nil {
		m.regError = registrationMessage(err)
		m.log.Warn("registration rejected", zap.Error(err))
		return nil
	}
	m.regError = ""
	for i := range m.regInputs {
		m.regInputs[i].Blur()
	}
	m.complete = false
	m.screen = screenChallenge
	m.loadChallenge()
	m.setStatus(statusSuccess, fmt.Sprintf("Welcome, %s! Press enter to start the first challenge.", reg.Name))
	return nil
}

func registrationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), kiosk.ErrInvalidRegistration.Error()+": ")
	if msg == "" {
		return msg
	}
	runes := []rune(msg)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes) + "."
}

func digitsOnly(input string, limit int) string {
	var b strings.Builder
	for _, r := range input {
		if limit > 0 && b.Len() >= limit {
			break
		}
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (m *Model) renderRegister() string {
	lines := []string{
		titleStyle.Render("Blind Coding Challenge"),
		mutedStyle.Render("Register to begin. Your code stays hidden while the timer runs."),
		"",
	}
	for _, input := range m.regInputs {
		lines = append(lines, input.View())
	}
	lines = append(lines, "")
	if m.regError != "" {
		lines = append(lines, errorStyle.Render(m.regError))
	} else {
		lines = append(lines, "")
	}
	help := "tab/shift+tab: next field  enter: continue  ctrl+c: quit"
	if _, ok := m.svc.Registration(); ok {
		help = "tab/shift+tab: next field  enter: continue  esc: back  ctrl+c: quit"
	}
	lines = append(lines, headerStyle.Render(help))
	form := lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
}
