package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/blindcode/internal/catalog"
	"github.com/verte-zerg/blindcode/internal/model"
	"github.com/verte-zerg/blindcode/internal/results"
	"github.com/verte-zerg/blindcode/internal/session"
)

// Fixed widths of the Status, Attempts, Language and Bonus columns.
var resultsFixedWidths = []int{8, 8, 8, 5}

func (m *Model) showResults() tea.Cmd {
	m.editor.Blur()
	m.screen = screenResults
	m.table.SetRows(resultsRows(m.svc.Results()))
	m.resizeResultsTable()
	m.table.GotoTop()
	m.table.Focus()
	return nil
}

func (m *Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.table.Blur()
		m.screen = screenChallenge
		return m, m.refocusEditor()
	case "q":
		return m, tea.Quit
	case "n":
		if m.session != nil && m.session.State() == session.StateSubmitting {
			m.setStatus(statusWarn, "Please wait for the current submission to finish.")
			return m, nil
		}
		m.table.Blur()
		return m, m.startRegistration()
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func buildResultsTable(rows []table.Row, width, height int) table.Model {
	t := table.New(
		table.WithColumns(resultsColumns(width)),
		table.WithRows(rows),
		table.WithHeight(max(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(resultsTableStyles())
	return t
}

func resultsColumns(width int) []table.Column {
	fixed := 0
	for _, w := range resultsFixedWidths {
		fixed += w + 1
	}
	return []table.Column{
		{Title: "Challenge", Width: max(16, width-fixed-1)},
		{Title: "Status", Width: resultsFixedWidths[0]},
		{Title: "Attempts", Width: resultsFixedWidths[1]},
		{Title: "Language", Width: resultsFixedWidths[2]},
		{Title: "Bonus", Width: resultsFixedWidths[3]},
	}
}

func resultsRows(ledger []model.ChallengeResult) []table.Row {
	rows := make([]table.Row, 0, len(ledger))
	for _, r := range ledger {
		bonus := "-"
		if r.Bonus && r.Success {
			bonus = "yes"
		}
		rows = append(rows, table.Row{
			r.ChallengeName,
			results.Status(r),
			strconv.Itoa(r.Attempts),
			catalog.LanguageLabel(r.Language),
			bonus,
		})
	}
	return rows
}

func resultsTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) resizeResultsTable() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	width := max(40, m.width-4)
	m.table.SetColumns(resultsColumns(width))
	m.table.SetWidth(width)
	m.table.SetHeight(max(1, m.height-8))
}

func (m *Model) renderResults() string {
	reg, _ := m.svc.Registration()
	summary := m.svc.Summary()
	heading := results.CardTitle
	if m.complete {
		heading += "  " + successStyle.Render("All challenges complete!")
	}
	lines := []string{
		titleStyle.Render(heading),
		infoStyle.Render(fmt.Sprintf("Participant: %s (%s)", reg.Name, reg.RegistrationNumber)),
		infoStyle.Render(fmt.Sprintf("Solved %d/%d  Bonus %d  Skipped %d  Submissions %d",
			summary.Solved, summary.Total, summary.Bonus, summary.Skipped, summary.Submissions)),
		"",
	}
	if len(m.table.Rows()) == 0 {
		lines = append(lines, mutedStyle.Render("No challenges attempted yet."))
	} else {
		lines = append(lines, m.table.View())
	}
	body := lipgloss.NewStyle().Padding(0, 2).Render(strings.Join(lines, "\n"))
	bodyHeight := max(1, m.height-2)
	status := fitLines(m.renderStatus(), m.width, 1)
	help := headerStyle.Render(truncateLine("up/down: scroll  esc: back  n: new participant  q: quit", m.width))
	return strings.Join([]string{fitLines(body, m.width, bodyHeight), status, fitLines(help, m.width, 1)}, "\n")
}
