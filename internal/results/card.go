package results

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/blindcode/internal/catalog"
	"github.com/verte-zerg/blindcode/internal/model"
)

// CardTitle heads every results card.
const CardTitle = "Blind Coding Results"

// CardOptions controls card rendering.
type CardOptions struct {
	Color bool
	// MaxTitleWidth truncates long challenge titles; zero keeps them whole.
	MaxTitleWidth int
}

var (
	cardBorder   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	solvedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// FormatCard renders the results card as text.
func FormatCard(reg model.Registration, results []model.ChallengeResult, total int, opts CardOptions) string {
	headers := []string{"Challenge", "Status", "Attempts", "Language", "Bonus"}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		name := r.ChallengeName
		if opts.MaxTitleWidth > 0 {
			name = runewidth.Truncate(name, opts.MaxTitleWidth, "…")
		}
		bonus := "-"
		if r.Bonus && r.Success {
			bonus = "yes"
		}
		rows = append(rows, []string{
			name,
			Status(r),
			strconv.Itoa(r.Attempts),
			catalog.LanguageLabel(r.Language),
			bonus,
		})
	}

	lines := []string{CardTitle}
	if opts.Color {
		lines[0] = titleStyle.Render(CardTitle)
	}
	lines = append(lines, fmt.Sprintf("Participant: %s (%s)", reg.Name, reg.RegistrationNumber), "")
	if len(rows) == 0 {
		lines = append(lines, "No challenges attempted yet.")
	} else {
		table := formatTable(headers, rows, map[int]bool{2: true})
		if opts.Color {
			for i := 1; i < len(table); i++ {
				table[i] = colorStatus(table[i], results[i-1])
			}
		}
		lines = append(lines, table...)
	}
	s := Summarize(results, total)
	lines = append(lines, "", fmt.Sprintf("Solved %d/%d  Bonus %d  Skipped %d  Submissions %d",
		s.Solved, s.Total, s.Bonus, s.Skipped, s.Submissions))

	card := strings.Join(lines, "\n")
	if opts.Color {
		return cardBorder.Render(card)
	}
	return card
}

func colorStatus(line string, r model.ChallengeResult) string {
	status := Status(r)
	style := failedStyle
	switch status {
	case StatusSolved:
		style = solvedStyle
	case StatusSkipped:
		style = skippedStyle
	}
	return strings.Replace(line, status, style.Render(status), 1)
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, row := range rows {
		for i := 0; i < colCount && i < len(row); i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, formatRow(headers, widths, rightAlignCols))
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(cell, widths[i], rightAlignCols[i]))
	}
	return strings.TrimRight(b.String(), " ")
}

func padCell(value string, width int, rightAlign bool) string {
	padding := width - runewidth.StringWidth(value)
	if padding <= 0 {
		return value
	}
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}
