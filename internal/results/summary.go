// Package results summarizes the ledger and renders the shareable results card.
package results

import "github.com/verte-zerg/blindcode/internal/model"

// Status labels shown on the card.
const (
	StatusSolved  = "Solved"
	StatusFailed  = "Failed"
	StatusSkipped = "Skipped"
)

// Summary holds aggregate counts over a ledger.
type Summary struct {
	Total        int
	Attempted    int
	Solved       int
	Failed       int
	Skipped      int
	Bonus        int
	Submissions  int
	NotAttempted int
}

// Summarize counts ledger records against the catalog size.
func Summarize(results []model.ChallengeResult, total int) Summary {
	s := Summary{Total: total}
	for _, r := range results {
		s.Submissions += r.Attempts
		switch Status(r) {
		case StatusSolved:
			s.Solved++
		case StatusSkipped:
			s.Skipped++
		default:
			s.Failed++
		}
		if r.Attempts > 0 {
			s.Attempted++
		}
		if r.Bonus && r.Success {
			s.Bonus++
		}
	}
	if rest := total - len(results); rest > 0 {
		s.NotAttempted = rest
	}
	return s
}

// Status returns the card label for a record.
func Status(r model.ChallengeResult) string {
	switch {
	case r.Success:
		return StatusSolved
	case r.Attempts == 0:
		return StatusSkipped
	default:
		return StatusFailed
	}
}
