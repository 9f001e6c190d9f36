package evaluator

import (
	"testing"

	"github.com/verte-zerg/blindcode/internal/model"
)

const title = "Sum of Two Numbers"

func TestFoldFirstTrySuccess(t *testing.T) {
	r := Fold(nil, title, true, model.LanguagePython)
	if !r.Success || r.Attempts != 1 || !r.Bonus {
		t.Fatalf("unexpected first-try result: %+v", r)
	}
}

func TestFoldSecondTrySuccessHasNoBonus(t *testing.T) {
	r := Fold(nil, title, false, model.LanguagePython)
	if r.Success || r.Attempts != 1 || r.Bonus {
		t.Fatalf("unexpected first result: %+v", r)
	}
	r = Fold(&r, title, true, model.LanguagePython)
	if !r.Success || r.Attempts != 2 || r.Bonus {
		t.Fatalf("unexpected second result: %+v", r)
	}
}

func TestFoldSuccessIsStickyAndStopsCounting(t *testing.T) {
	r := Fold(nil, title, false, model.LanguagePython)
	r = Fold(&r, title, true, model.LanguagePython)
	for i := 0; i < 3; i++ {
		r = Fold(&r, title, false, "other")
	}
	if !r.Success {
		t.Fatalf("success must be sticky")
	}
	if r.Attempts != 2 {
		t.Fatalf("attempts must stop once solved, got %d", r.Attempts)
	}
	if r.Language != model.LanguagePython {
		t.Fatalf("solved record must be unchanged, got language %q", r.Language)
	}
}

func TestFoldSequencesKeepInvariants(t *testing.T) {
	sequences := [][]bool{
		{false, false, false},
		{false, true, false, true},
		{true, false, true},
		{false, false, true, false},
	}
	for _, seq := range sequences {
		var current *model.ChallengeResult
		prevAttempts := 0
		everSolved := false
		for i, verdict := range seq {
			r := Fold(current, title, verdict, model.LanguagePython)
			if r.Attempts < prevAttempts {
				t.Fatalf("%v: attempts decreased at %d", seq, i)
			}
			if everSolved && !r.Success {
				t.Fatalf("%v: success reverted at %d", seq, i)
			}
			if r.Bonus && !r.Success {
				t.Fatalf("%v: bonus without success at %d", seq, i)
			}
			if r.Bonus != seq[0] {
				t.Fatalf("%v: bonus must equal first verdict, got %v at %d", seq, r.Bonus, i)
			}
			everSolved = everSolved || r.Success
			prevAttempts = r.Attempts
			current = &r
		}
	}
}

func TestLedgerScenarioB(t *testing.T) {
	l := NewLedger(nil)
	r := l.Apply(title, false, model.LanguagePython)
	if r.Success || r.Attempts != 1 || r.Bonus {
		t.Fatalf("unexpected first fold: %+v", r)
	}
	r = l.Apply(title, true, model.LanguagePython)
	if !r.Success || r.Attempts != 2 || r.Bonus {
		t.Fatalf("unexpected second fold: %+v", r)
	}
	if l.Len() != 1 {
		t.Fatalf("expected one record per title, got %d", l.Len())
	}
}

func TestLedgerSkipBeforeSubmit(t *testing.T) {
	l := NewLedger(nil)
	if !l.Skip(title) {
		t.Fatalf("expected skip to create a record")
	}
	r, ok := l.Find(title)
	if !ok || r.Success || r.Attempts != 0 || r.Bonus {
		t.Fatalf("unexpected skip record: %+v", r)
	}
	before := l.Results()
	if l.Skip(title) {
		t.Fatalf("second skip must be a no-op")
	}
	after := l.Results()
	if len(before) != len(after) || before[0] != after[0] {
		t.Fatalf("ledger changed on second skip: %+v -> %+v", before, after)
	}
}

func TestLedgerSkipAfterSubmitIsNoop(t *testing.T) {
	l := NewLedger(nil)
	l.Apply(title, false, model.LanguagePython)
	if l.Skip(title) {
		t.Fatalf("skip must not touch an existing record")
	}
	r, _ := l.Find(title)
	if r.Attempts != 1 {
		t.Fatalf("unexpected record after skip: %+v", r)
	}
}

func TestLedgerSkipThenSubmitCountsFromZero(t *testing.T) {
	l := NewLedger(nil)
	l.Skip(title)
	r := l.Apply(title, true, model.LanguagePython)
	if !r.Success || r.Attempts != 1 || r.Bonus {
		t.Fatalf("solving a skipped challenge must not award a bonus: %+v", r)
	}
}

func TestNewLedgerSanitizes(t *testing.T) {
	l := NewLedger([]model.ChallengeResult{
		{ChallengeName: "a", Bonus: true},
		{ChallengeName: "b", Success: true, Attempts: 1, Bonus: true},
		{ChallengeName: "a", Success: true, Attempts: 3},
	})
	if l.Len() != 2 {
		t.Fatalf("expected duplicates dropped, got %d", l.Len())
	}
	a, _ := l.Find("a")
	if a.Bonus {
		t.Fatalf("bonus without success must be cleared")
	}
	results := l.Results()
	results[0].Attempts = 99
	if again, _ := l.Find("a"); again.Attempts == 99 {
		t.Fatalf("Results must return a copy")
	}
}
