// Package evaluator decides verdicts and folds them into the results ledger.
package evaluator

import (
	"strings"

	"github.com/verte-zerg/blindcode/internal/model"
)

// ErrorPrefix is prepended to error text shown in the console.
const ErrorPrefix = "Error:\n"

// Evaluation is the verdict for one outcome.
// DisplayText is shown to the participant; Compared is what was matched against the expected output.
type Evaluation struct {
	DisplayText string
	Compared    string
	Success     bool
}

// Evaluate compares an execution outcome with the challenge's expected output.
func Evaluate(outcome model.Outcome, challenge model.Challenge) Evaluation {
	if outcome.Failed() {
		display := ErrorPrefix + outcome.Error
		return Evaluation{DisplayText: display, Compared: Normalize(display)}
	}
	compared := Normalize(outcome.Output)
	return Evaluation{
		DisplayText: outcome.Output,
		Compared:    compared,
		Success:     compared == challenge.ExpectedOutput,
	}
}

// Normalize strips exactly one trailing line break.
func Normalize(s string) string {
	return strings.TrimSuffix(s, "\n")
}
