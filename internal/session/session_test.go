package session

import (
	"errors"
	"testing"
)

func started(t *testing.T, seconds int) (*Machine, TimerID) {
	t.Helper()
	m := New(seconds, Options{})
	id, err := m.Start()
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return m, id
}

func TestNewSessionIsIdleAndReadOnly(t *testing.T) {
	m := New(60, Options{})
	if m.State() != StateIdle {
		t.Fatalf("expected idle, got %s", m.State())
	}
	if m.Editable() || m.BlindMode() || m.CanSubmit() {
		t.Fatalf("idle session must be read-only and not submittable")
	}
	if m.SetCode("print(1)") {
		t.Fatalf("idle session accepted code")
	}
	if m.Clock() != "01:00" {
		t.Fatalf("unexpected clock %q", m.Clock())
	}
}

func TestStartEntersBlindRunning(t *testing.T) {
	m, id := started(t, 60)
	if id == 0 || m.Timer() != id {
		t.Fatalf("expected a live timer handle")
	}
	if m.State() != StateRunning || !m.BlindMode() || !m.Editable() {
		t.Fatalf("unexpected running session: state=%s blind=%v editable=%v", m.State(), m.BlindMode(), m.Editable())
	}
	if _, err := m.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestSubmitRejectsBlankCode(t *testing.T) {
	m, _ := started(t, 60)
	m.SetCode("  \n\t")
	if _, err := m.Submit(); !errors.Is(err, ErrEmptyCode) {
		t.Fatalf("expected ErrEmptyCode, got %v", err)
	}
	if m.State() != StateRunning || m.Attempts() != 0 {
		t.Fatalf("blank submit must not change state: %s attempts=%d", m.State(), m.Attempts())
	}
}

func TestFailedVerdictReturnsToRunning(t *testing.T) {
	m, id := started(t, 60)
	m.SetCode("print(41)")
	code, err := m.Submit()
	if err != nil || code != "print(41)" {
		t.Fatalf("submit: code=%q err=%v", code, err)
	}
	if m.State() != StateSubmitting || m.Console() != ExecutingMessage || m.Editable() {
		t.Fatalf("unexpected submitting session")
	}
	if tr := m.Resolve("41", false); tr != TransitionRetry {
		t.Fatalf("expected retry, got %v", tr)
	}
	if m.State() != StateRunning || !m.BlindMode() || !m.Editable() {
		t.Fatalf("expected blind running after failed verdict")
	}
	if m.Attempts() != 1 || m.Timer() != id {
		t.Fatalf("retry must keep attempts and the same countdown")
	}
	if m.Console() != "41" {
		t.Fatalf("unexpected console %q", m.Console())
	}

	m.SetCode("print(42)")
	if _, err := m.Submit(); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if tr := m.Resolve("42\n", true); tr != TransitionSolved {
		t.Fatalf("expected solved, got %v", tr)
	}
	if !m.Solved() || m.Editable() || m.CanSkip() || !m.CanAdvance() || m.CanSubmit() {
		t.Fatalf("solved session must only allow advancing")
	}
	if m.Attempts() != 2 {
		t.Fatalf("expected 2 attempts, got %d", m.Attempts())
	}
}

func TestCountdownPausesWhileSubmitting(t *testing.T) {
	m, id := started(t, 2)
	m.SetCode("x")
	if _, err := m.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	for i := 0; i < 5; i++ {
		if res := m.Tick(id); !res.Continue || res.Expired {
			t.Fatalf("tick while submitting must be consumed: %+v", res)
		}
	}
	if m.TimeLeft() != 2 {
		t.Fatalf("countdown advanced while submitting: %d", m.TimeLeft())
	}
	if m.Resolve("no", false) != TransitionRetry {
		t.Fatalf("expected retry with time remaining")
	}
	if res := m.Tick(id); !res.Continue {
		t.Fatalf("countdown must continue after retry")
	}
	if m.TimeLeft() != 1 {
		t.Fatalf("expected 1s left, got %d", m.TimeLeft())
	}
}

func TestExpiryLocksBufferPermanently(t *testing.T) {
	m, id := started(t, 2)
	m.SetCode("print(1)")
	m.Tick(id)
	res := m.Tick(id)
	if !res.Expired || res.Continue {
		t.Fatalf("expected expiry, got %+v", res)
	}
	if m.State() != StateFinished || !m.Expired() || m.TimeLeft() != 0 {
		t.Fatalf("unexpected expired session: %s left=%d", m.State(), m.TimeLeft())
	}
	if m.Editable() || m.SetCode("changed") {
		t.Fatalf("expired session must be read-only")
	}
	if m.Code() != "print(1)" {
		t.Fatalf("code changed after expiry: %q", m.Code())
	}
	if !m.CanSubmit() {
		t.Fatalf("submits remain possible after expiry")
	}
	if _, err := m.Submit(); err != nil {
		t.Fatalf("submit after expiry: %v", err)
	}
	if tr := m.Resolve("1", false); tr != TransitionFinished {
		t.Fatalf("expected finished without time, got %v", tr)
	}
	if m.Editable() || m.BlindMode() {
		t.Fatalf("expired session must stay locked and visible")
	}
	if res := m.Tick(id); res.Continue || res.Expired {
		t.Fatalf("released countdown must ignore ticks: %+v", res)
	}
}

func TestResetReleasesTimerAndOverride(t *testing.T) {
	m, id := started(t, 30)
	if err := m.Unlock(DefaultPasscode); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	m.SetCode("x")
	m.Reset()
	if m.State() != StateIdle || m.Overridden() || m.Code() != "" || m.TimeLeft() != 30 || m.Attempts() != 0 {
		t.Fatalf("reset left state behind")
	}
	if res := m.Tick(id); res.Continue {
		t.Fatalf("stale tick must be ignored after reset")
	}
	next, err := m.Start()
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if next == id {
		t.Fatalf("restart must issue a new countdown handle")
	}
	if res := m.Tick(id); res.Continue || m.TimeLeft() != 30 {
		t.Fatalf("old handle must not drive the new countdown")
	}
}

func TestUnlock(t *testing.T) {
	m, _ := started(t, 30)
	if err := m.Unlock("000000000000"); !errors.Is(err, ErrUnlockRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if !m.BlindMode() {
		t.Fatalf("wrong code must keep blind mode")
	}
	if err := m.Unlock(DefaultPasscode); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if m.BlindMode() || m.State() != StateRunning || m.TimeLeft() != 30 || m.Attempts() != 0 {
		t.Fatalf("unlock must only affect blind mode")
	}
}

func TestUnlockRequiresRunning(t *testing.T) {
	m := New(30, Options{})
	if err := m.Unlock(DefaultPasscode); !errors.Is(err, ErrUnlockNotActive) {
		t.Fatalf("expected ErrUnlockNotActive, got %v", err)
	}
}

func TestUnlockLockout(t *testing.T) {
	m := New(30, Options{Passcode: "111111111111", MaxUnlockAttempts: 2})
	if _, err := m.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	_ = m.Unlock("1")
	_ = m.Unlock("2")
	if err := m.Unlock("111111111111"); !errors.Is(err, ErrUnlockLocked) {
		t.Fatalf("expected lockout, got %v", err)
	}
}

func TestSkipRules(t *testing.T) {
	m, _ := started(t, 30)
	if !m.CanSkip() {
		t.Fatalf("running session must be skippable")
	}
	m.SetCode("x")
	_, _ = m.Submit()
	if m.CanSkip() {
		t.Fatalf("submitting session must not be skippable")
	}
}

func TestSanitizePasscode(t *testing.T) {
	if got := SanitizePasscode("31a6-3656 849061234"); got != "316365684906" {
		t.Fatalf("unexpected sanitized passcode %q", got)
	}
}

func TestClockFormat(t *testing.T) {
	m := New(150, Options{})
	if m.Clock() != "02:30" {
		t.Fatalf("unexpected clock %q", m.Clock())
	}
}
