package evaluator

import "github.com/verte-zerg/blindcode/internal/model"

// Fold applies one verdict to the existing record for a challenge (nil if none).
//
// A first fold creates the record with one attempt and awards the bonus only on success.
// Later folds on an unsolved record count the attempt and make success sticky; the bonus is
// never touched. A fold on a solved record returns it unchanged.
func Fold(existing *model.ChallengeResult, title string, verdict bool, lang model.Language) model.ChallengeResult {
	if existing == nil {
		return model.ChallengeResult{
			ChallengeName: title,
			Success:       verdict,
			Attempts:      1,
			Language:      lang,
			Bonus:         verdict,
		}
	}
	next := *existing
	if next.Success {
		return next
	}
	next.Attempts++
	next.Success = verdict
	next.Language = lang
	return next
}

// SkipResult returns the record created by skipping a challenge.
// ok is false when a record already exists and skipping changes nothing.
func SkipResult(existing *model.ChallengeResult, title string) (model.ChallengeResult, bool) {
	if existing != nil {
		return *existing, false
	}
	return model.ChallengeResult{
		ChallengeName: title,
		Language:      model.LanguagePython,
	}, true
}

// Ledger is the ordered list of challenge results, at most one per title.
type Ledger struct {
	results []model.ChallengeResult
}

// NewLedger builds a ledger from persisted results. Later duplicates of a title are dropped.
func NewLedger(results []model.ChallengeResult) *Ledger {
	l := &Ledger{}
	seen := make(map[string]struct{}, len(results))
	for _, r := range results {
		if _, ok := seen[r.ChallengeName]; ok {
			continue
		}
		seen[r.ChallengeName] = struct{}{}
		if r.Bonus && !r.Success {
			r.Bonus = false
		}
		l.results = append(l.results, r)
	}
	return l
}

// Find returns the record for a title.
func (l *Ledger) Find(title string) (model.ChallengeResult, bool) {
	if i := l.index(title); i >= 0 {
		return l.results[i], true
	}
	return model.ChallengeResult{}, false
}

// Apply folds a verdict into the ledger and returns the updated record.
func (l *Ledger) Apply(title string, verdict bool, lang model.Language) model.ChallengeResult {
	i := l.index(title)
	if i < 0 {
		r := Fold(nil, title, verdict, lang)
		l.results = append(l.results, r)
		return r
	}
	r := Fold(&l.results[i], title, verdict, lang)
	l.results[i] = r
	return r
}

// Skip records a zero-attempt failure unless a record already exists.
func (l *Ledger) Skip(title string) bool {
	var existing *model.ChallengeResult
	if i := l.index(title); i >= 0 {
		existing = &l.results[i]
	}
	r, changed := SkipResult(existing, title)
	if changed {
		l.results = append(l.results, r)
	}
	return changed
}

// Results returns a copy of the ledger in insertion order.
func (l *Ledger) Results() []model.ChallengeResult {
	out := make([]model.ChallengeResult, len(l.results))
	copy(out, l.results)
	return out
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	return len(l.results)
}

// Clear empties the ledger.
func (l *Ledger) Clear() {
	l.results = nil
}

func (l *Ledger) index(title string) int {
	for i, r := range l.results {
		if r.ChallengeName == title {
			return i
		}
	}
	return -1
}
