package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/blindcode/internal/catalog"
	"github.com/verte-zerg/blindcode/internal/config"
	"github.com/verte-zerg/blindcode/internal/judge"
	"github.com/verte-zerg/blindcode/internal/session"
)

func TestApplyConfigRespectsChangedFlags(t *testing.T) {
	var lang string
	var wait time.Duration
	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().StringVar(&lang, "language", "python", "")
	cmd.Flags().DurationVar(&wait, "max-wait", time.Minute, "")
	if err := cmd.Flags().Parse([]string{"--max-wait", "5s"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	fromFile := "go"
	fileWait := config.Duration{Duration: 2 * time.Minute}
	applyStringConfig(cmd, "language", &lang, &fromFile)
	applyDurationConfig(cmd, "max-wait", &wait, &fileWait)

	if lang != "go" {
		t.Fatalf("expected config value for unchanged flag, got %q", lang)
	}
	if wait != 5*time.Second {
		t.Fatalf("explicit flag must win over config, got %s", wait)
	}

	applyStringConfig(cmd, "language", &lang, nil)
	if lang != "go" {
		t.Fatalf("nil config value must keep the current value")
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var cfg config.FileConfig
	md, err := toml.Decode(defaultConfigTemplate(), &cfg)
	if err != nil {
		t.Fatalf("template must be valid TOML: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		t.Fatalf("template has unknown keys: %v", undecoded)
	}
	if cfg.Judge.URL != nil || cfg.Kiosk.Passcode != nil || cfg.Log.Level != nil {
		t.Fatalf("template values must be commented out")
	}
	if !strings.Contains(defaultConfigTemplate(), config.APIKeyEnv) {
		t.Fatalf("template must mention the credential variable")
	}
}

func validSettings() settings {
	return settings{
		Language:       "python",
		JudgeURL:       judge.DefaultBaseURL,
		PollInterval:   time.Second,
		MaxWait:        time.Minute,
		RequestTimeout: time.Second,
		Passcode:       session.DefaultPasscode,
	}
}

func TestValidateSettings(t *testing.T) {
	if err := validateSettings(validSettings()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cases := []struct {
		name   string
		mutate func(*settings)
	}{
		{"language", func(s *settings) { s.Language = "cobol" }},
		{"url", func(s *settings) { s.JudgeURL = " " }},
		{"poll", func(s *settings) { s.PollInterval = 0 }},
		{"wait", func(s *settings) { s.MaxWait = -time.Second }},
		{"timeout", func(s *settings) { s.RequestTimeout = 0 }},
		{"short passcode", func(s *settings) { s.Passcode = "1234" }},
		{"non-digit passcode", func(s *settings) { s.Passcode = "31636568490a" }},
		{"unlock attempts", func(s *settings) { s.UnlockMaxAttempts = -1 }},
	}
	for _, tc := range cases {
		s := validSettings()
		tc.mutate(&s)
		if err := validateSettings(s); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestWriteChallenges(t *testing.T) {
	var buf bytes.Buffer
	cat := catalog.Default()
	if err := writeChallenges(&buf, cat); err != nil {
		t.Fatalf("write challenges: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != cat.Count() {
		t.Fatalf("expected %d lines, got %d", cat.Count(), len(lines))
	}
	first := cat.Get(0)
	if !strings.HasPrefix(lines[0], " 1. "+first.Title+" (") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
}

func TestShouldUseColor(t *testing.T) {
	var buf bytes.Buffer
	t.Setenv("NO_COLOR", "")
	if shouldUseColor(&buf, false) {
		t.Fatalf("non-terminal writer must not use color")
	}
	if !shouldUseColor(&buf, true) {
		t.Fatalf("force must enable color")
	}
	t.Setenv("NO_COLOR", "1")
	if shouldUseColor(&buf, true) {
		t.Fatalf("NO_COLOR must disable color")
	}
}
