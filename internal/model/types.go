// Package model defines shared data structures.
package model

import "time"

// Language is a submission language tag.
type Language string

// LanguagePython is the only language the kiosk offers by default.
const LanguagePython Language = "python"

// Challenge is an immutable catalog entry.
type Challenge struct {
	ID             int
	Title          string
	Description    string
	Details        []string
	TimerSeconds   int
	ExpectedOutput string
	SampleOutput   string
	Stdin          string
}

// FailureKind classifies why an execution produced no usable output.
type FailureKind string

// Failure kinds reported by the judge gateway.
const (
	FailureNone          FailureKind = ""
	FailureConfiguration FailureKind = "configuration"
	FailureTransport     FailureKind = "transport"
	FailureTimeout       FailureKind = "timeout"
	FailureRuntime       FailureKind = "runtime"
	FailureCompilation   FailureKind = "compilation"
)

// Outcome is the normalized result of one remote execution.
// Output and Error are mutually exclusive in practice; callers only need to check Error.
type Outcome struct {
	Output  string
	Error   string
	Status  string
	Failure FailureKind
}

// Failed reports whether the outcome carries an error.
func (o Outcome) Failed() bool {
	return o.Error != ""
}

// ChallengeResult is the per-challenge ledger record.
type ChallengeResult struct {
	ChallengeName string   `json:"challengeName"`
	Success       bool     `json:"success"`
	Attempts      int      `json:"attempts"`
	Language      Language `json:"language"`
	Bonus         bool     `json:"bonus"`
}

// Registration identifies the current participant.
type Registration struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	RegistrationNumber string    `json:"registrationNumber"`
	Phone              string    `json:"phone"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Attempt is one history row for a submission.
type Attempt struct {
	ID             string
	RegistrationID string
	Challenge      string
	Attempt        int
	Language       Language
	Success        bool
	Output         string
	CreatedAt      time.Time
}
