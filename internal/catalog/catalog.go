// Package catalog holds the ordered challenge definitions.
package catalog

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/blindcode/internal/model"
)

// ErrIndexOutOfRange is returned by lookups that validate their index.
var ErrIndexOutOfRange = errors.New("challenge index out of range")

// LanguageInfo maps a language tag to the judge runtime identifier.
type LanguageInfo struct {
	Value model.Language
	Label string
	ID    int
}

// Languages lists the runtimes known to the judge (Judge0 language ids).
var Languages = []LanguageInfo{
	{Value: model.LanguagePython, Label: "Python", ID: 71},
}

// LanguageID returns the judge runtime id for a language tag.
func LanguageID(lang model.Language) (int, bool) {
	for _, l := range Languages {
		if l.Value == lang {
			return l.ID, true
		}
	}
	return 0, false
}

// LanguageLabel returns a display label for a language tag.
func LanguageLabel(lang model.Language) string {
	for _, l := range Languages {
		if l.Value == lang {
			return l.Label
		}
	}
	return string(lang)
}

// Catalog is an ordered, read-only list of challenges.
type Catalog struct {
	challenges []model.Challenge
}

// New builds a catalog from the given challenges. Titles must be unique.
func New(challenges []model.Challenge) (*Catalog, error) {
	if len(challenges) == 0 {
		return nil, fmt.Errorf("catalog has no challenges")
	}
	seen := make(map[string]struct{}, len(challenges))
	out := make([]model.Challenge, len(challenges))
	for i, ch := range challenges {
		if ch.Title == "" {
			return nil, fmt.Errorf("challenge %d has no title", i+1)
		}
		if _, ok := seen[ch.Title]; ok {
			return nil, fmt.Errorf("duplicate challenge title %q", ch.Title)
		}
		if ch.TimerSeconds <= 0 {
			return nil, fmt.Errorf("challenge %q: timer must be > 0", ch.Title)
		}
		seen[ch.Title] = struct{}{}
		ch.Details = append([]string(nil), ch.Details...)
		out[i] = ch
	}
	return &Catalog{challenges: out}, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(builtin())
	if err != nil {
		panic(err)
	}
	return c
}

// Count returns the number of challenges.
func (c *Catalog) Count() int {
	return len(c.challenges)
}

// Get returns the challenge at index i. Out-of-range indices panic.
func (c *Catalog) Get(i int) model.Challenge {
	if i < 0 || i >= len(c.challenges) {
		panic(fmt.Sprintf("%v: %d (count %d)", ErrIndexOutOfRange, i, len(c.challenges)))
	}
	ch := c.challenges[i]
	ch.Details = append([]string(nil), ch.Details...)
	return ch
}

// Lookup is the checked form of Get.
func (c *Catalog) Lookup(i int) (model.Challenge, error) {
	if i < 0 || i >= len(c.challenges) {
		return model.Challenge{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	return c.Get(i), nil
}

// All returns a copy of every challenge in order.
func (c *Catalog) All() []model.Challenge {
	out := make([]model.Challenge, len(c.challenges))
	for i := range c.challenges {
		out[i] = c.Get(i)
	}
	return out
}

// Clamp bounds an index to [0, Count).
func (c *Catalog) Clamp(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(c.challenges) {
		return len(c.challenges) - 1
	}
	return i
}

// Next returns the index after i. ok is false once the last challenge is passed.
func (c *Catalog) Next(i int) (next int, ok bool) {
	if i+1 >= len(c.challenges) {
		return i, false
	}
	return i + 1, true
}

// IndexOf finds a challenge by title.
func (c *Catalog) IndexOf(title string) (int, bool) {
	for i, ch := range c.challenges {
		if ch.Title == title {
			return i, true
		}
	}
	return -1, false
}
