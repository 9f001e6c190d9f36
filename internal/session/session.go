// Package session implements the per-challenge timed editing state machine.
package session

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"unicode"
)

// State is the lifecycle state of a session.
type State int

// Session states.
const (
	StateIdle State = iota
	StateRunning
	StateSubmitting
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSubmitting:
		return "submitting"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DefaultPasscode unlocks blind mode unless configured otherwise.
const DefaultPasscode = "316365684906"

// PasscodeLength is the number of digits in a passcode.
const PasscodeLength = 12

// ExecutingMessage is shown in the console while a submission runs.
const ExecutingMessage = "Executing your code..."

// Errors returned by session operations.
var (
	ErrEmptyCode       = errors.New("please write some code before submitting")
	ErrNotSubmittable  = errors.New("session is not accepting submissions")
	ErrAlreadyStarted  = errors.New("session already started")
	ErrUnlockLocked    = errors.New("too many wrong codes")
	ErrUnlockRejected  = errors.New("wrong code")
	ErrUnlockNotActive = errors.New("blind mode is not active")
)

// TimerID identifies the countdown owned by a session. Zero means no countdown.
type TimerID uint64

var timerSeq atomic.Uint64

func newTimerID() TimerID {
	return TimerID(timerSeq.Add(1))
}

// Transition describes what Resolve did.
type Transition int

// Resolve transitions.
const (
	TransitionNone Transition = iota
	TransitionSolved
	TransitionRetry
	TransitionFinished
)

// TickResult tells the caller whether to keep the countdown alive.
type TickResult struct {
	Continue bool
	Expired  bool
}

// Options configures a Machine.
type Options struct {
	Passcode          string
	MaxUnlockAttempts int
}

// Machine drives one challenge attempt. It is not safe for concurrent use; callers
// serialize every call onto the goroutine that owns the session.
type Machine struct {
	opts     Options
	duration int

	state    State
	code     string
	console  string
	timeLeft int
	attempts int

	hasVerdict bool
	success    bool
	expired    bool
	override   bool

	timer          TimerID
	unlockFailures int
}

// New returns an idle session for a challenge with the given countdown in seconds.
func New(durationSeconds int, opts Options) *Machine {
	if opts.Passcode == "" {
		opts.Passcode = DefaultPasscode
	}
	m := &Machine{opts: opts, duration: durationSeconds}
	m.Reset()
	return m
}

// Start moves idle -> running and returns the countdown handle to schedule ticks for.
func (m *Machine) Start() (TimerID, error) {
	if m.state != StateIdle {
		return 0, ErrAlreadyStarted
	}
	m.code = ""
	m.console = ""
	m.hasVerdict = false
	m.success = false
	m.expired = false
	m.attempts = 0
	m.timeLeft = m.duration
	m.state = StateRunning
	m.timer = newTimerID()
	return m.timer, nil
}

// Reset discards all session fields, releases the countdown and returns to idle.
func (m *Machine) Reset() {
	m.state = StateIdle
	m.code = ""
	m.console = ""
	m.timeLeft = m.duration
	m.attempts = 0
	m.hasVerdict = false
	m.success = false
	m.expired = false
	m.override = false
	m.timer = 0
	m.unlockFailures = 0
}

// SetCode replaces the code buffer if the session is editable.
func (m *Machine) SetCode(code string) bool {
	if !m.Editable() {
		return false
	}
	m.code = code
	return true
}

// Submit moves to submitting and returns the code to execute.
// Blank code is rejected without any state change.
func (m *Machine) Submit() (string, error) {
	if !m.CanSubmit() {
		return "", ErrNotSubmittable
	}
	if strings.TrimSpace(m.code) == "" {
		return "", ErrEmptyCode
	}
	m.attempts++
	m.state = StateSubmitting
	m.console = ExecutingMessage
	return m.code, nil
}

// Resolve settles a submission. A failed verdict re-enters running while time remains.
func (m *Machine) Resolve(display string, success bool) Transition {
	if m.state != StateSubmitting {
		return TransitionNone
	}
	m.console = display
	m.hasVerdict = true
	m.success = success
	m.state = StateFinished
	switch {
	case success:
		m.timer = 0
		return TransitionSolved
	case m.timeLeft > 0 && !m.expired:
		m.state = StateRunning
		return TransitionRetry
	default:
		return TransitionFinished
	}
}

// Tick advances the countdown by one second. Ticks for a stale handle are ignored and
// ticks while submitting are consumed without counting down.
func (m *Machine) Tick(id TimerID) TickResult {
	if id == 0 || id != m.timer {
		return TickResult{}
	}
	switch m.state {
	case StateSubmitting:
		return TickResult{Continue: true}
	case StateRunning:
		if m.timeLeft > 0 {
			m.timeLeft--
		}
		if m.timeLeft > 0 {
			return TickResult{Continue: true}
		}
		m.expired = true
		m.state = StateFinished
		m.timer = 0
		return TickResult{Expired: true}
	default:
		m.timer = 0
		return TickResult{}
	}
}

// Unlock checks a passcode and, when it matches, shows the code for the rest of the session.
func (m *Machine) Unlock(code string) error {
	if m.state != StateRunning {
		return ErrUnlockNotActive
	}
	if m.opts.MaxUnlockAttempts > 0 && m.unlockFailures >= m.opts.MaxUnlockAttempts {
		return ErrUnlockLocked
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(m.opts.Passcode)) == 1 {
		m.override = true
		return nil
	}
	m.unlockFailures++
	return ErrUnlockRejected
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Code returns the code buffer.
func (m *Machine) Code() string { return m.code }

// Console returns the console text.
func (m *Machine) Console() string { return m.console }

// TimeLeft returns the remaining seconds.
func (m *Machine) TimeLeft() int { return m.timeLeft }

// Attempts returns the number of submissions in this session.
func (m *Machine) Attempts() int { return m.attempts }

// Expired reports whether the countdown reached zero.
func (m *Machine) Expired() bool { return m.expired }

// Overridden reports whether blind mode was unlocked.
func (m *Machine) Overridden() bool { return m.override }

// Timer returns the live countdown handle, or zero.
func (m *Machine) Timer() TimerID { return m.timer }

// Verdict returns the last verdict; ok is false before the first result.
func (m *Machine) Verdict() (success, ok bool) {
	return m.success, m.hasVerdict
}

// Solved reports whether the session finished with a correct submission.
func (m *Machine) Solved() bool {
	return m.state == StateFinished && m.hasVerdict && m.success
}

// BlindMode reports whether typed code is hidden.
func (m *Machine) BlindMode() bool {
	return m.state == StateRunning && !m.override
}

// Editable reports whether the code buffer accepts edits.
// Once time runs out the buffer stays read-only for the rest of the session.
func (m *Machine) Editable() bool {
	switch {
	case m.expired:
		return false
	case m.state == StateIdle, m.state == StateSubmitting:
		return false
	case m.Solved():
		return false
	default:
		return true
	}
}

// CanSubmit reports whether Submit may be called.
func (m *Machine) CanSubmit() bool {
	switch m.state {
	case StateRunning:
		return true
	case StateFinished:
		return !m.Solved()
	default:
		return false
	}
}

// CanSkip reports whether the challenge may be skipped.
func (m *Machine) CanSkip() bool {
	return m.state != StateSubmitting && !m.Solved()
}

// CanAdvance reports whether "next challenge" is available.
func (m *Machine) CanAdvance() bool {
	return m.Solved()
}

// Clock formats the remaining time as MM:SS.
func (m *Machine) Clock() string {
	return fmt.Sprintf("%02d:%02d", m.timeLeft/60, m.timeLeft%60)
}

// SanitizePasscode keeps digits only and truncates to PasscodeLength.
func SanitizePasscode(input string) string {
	var b strings.Builder
	for _, r := range input {
		if b.Len() >= PasscodeLength {
			break
		}
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
