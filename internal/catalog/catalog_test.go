package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/blindcode/internal/model"
)

func TestDefaultCatalogLookupIsStable(t *testing.T) {
	c := Default()
	if c.Count() != 11 {
		t.Fatalf("expected 11 challenges, got %d", c.Count())
	}
	for i := 0; i < c.Count(); i++ {
		a := c.Get(i)
		b := c.Get(i)
		if a.Title != b.Title || a.ExpectedOutput != b.ExpectedOutput || a.TimerSeconds != b.TimerSeconds {
			t.Fatalf("lookup %d not stable: %+v vs %+v", i, a, b)
		}
	}
	first := c.Get(0)
	if first.Title != "Sum of Two Numbers" || first.ExpectedOutput != "42" || first.TimerSeconds != 60 {
		t.Fatalf("unexpected first challenge: %+v", first)
	}
	last := c.Get(c.Count() - 1)
	if last.Stdin != "10\n7" {
		t.Fatalf("expected stdin on interactive challenge, got %q", last.Stdin)
	}
}

func TestGetReturnsCopyOfDetails(t *testing.T) {
	c := Default()
	ch := c.Get(3)
	ch.Details[0] = "mutated"
	if c.Get(3).Details[0] == "mutated" {
		t.Fatalf("catalog entry was mutated through Get")
	}
}

func TestGetPanicsOutOfRange(t *testing.T) {
	c := Default()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for out-of-range index")
		}
	}()
	c.Get(c.Count())
}

func TestLookupOutOfRange(t *testing.T) {
	c := Default()
	if _, err := c.Lookup(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestClampAndNext(t *testing.T) {
	c := Default()
	if got := c.Clamp(-3); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := c.Clamp(99); got != c.Count()-1 {
		t.Fatalf("expected last index, got %d", got)
	}
	next, ok := c.Next(0)
	if !ok || next != 1 {
		t.Fatalf("expected next 1, got %d ok=%v", next, ok)
	}
	if _, ok := c.Next(c.Count() - 1); ok {
		t.Fatalf("expected completion after last challenge")
	}
}

func TestNewRejectsDuplicateTitles(t *testing.T) {
	_, err := New([]model.Challenge{
		{Title: "A", TimerSeconds: 10},
		{Title: "A", TimerSeconds: 10},
	})
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate title error, got %v", err)
	}
}

func TestLanguageID(t *testing.T) {
	id, ok := LanguageID(model.LanguagePython)
	if !ok || id != 71 {
		t.Fatalf("expected python -> 71, got %d ok=%v", id, ok)
	}
	if _, ok := LanguageID("cobol"); ok {
		t.Fatalf("expected cobol to be unsupported")
	}
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "challenges.toml")
	content := `
[[challenge]]
title = "Hello"
description = "Say hello."
details = ["Print hello."]
timer = 30
expected-output = "hello"

[[challenge]]
title = "Echo"
timer = 45
expected-output = "7"
stdin = "7"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if c.Count() != 2 {
		t.Fatalf("expected 2 challenges, got %d", c.Count())
	}
	if got := c.Get(0); got.ID != 1 || got.SampleOutput != "hello" {
		t.Fatalf("unexpected first challenge: %+v", got)
	}
	if idx, ok := c.IndexOf("Echo"); !ok || idx != 1 {
		t.Fatalf("expected Echo at 1, got %d ok=%v", idx, ok)
	}
}

func TestLoadCatalogRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for empty catalog")
	}
}
