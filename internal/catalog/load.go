package catalog

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/blindcode/internal/model"
)

type fileCatalog struct {
	Challenges []fileChallenge `toml:"challenge"`
}

type fileChallenge struct {
	Title          string   `toml:"title"`
	Description    string   `toml:"description"`
	Details        []string `toml:"details"`
	Timer          int      `toml:"timer"`
	ExpectedOutput string   `toml:"expected-output"`
	SampleOutput   string   `toml:"sample-output"`
	Stdin          string   `toml:"stdin"`
}

// Load reads a catalog from a TOML file made of [[challenge]] tables.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return nil, fmt.Errorf("catalog path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat catalog: %w", err)
	}
	var fc fileCatalog
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	challenges := make([]model.Challenge, 0, len(fc.Challenges))
	for i, fch := range fc.Challenges {
		sample := fch.SampleOutput
		if sample == "" {
			sample = fch.ExpectedOutput
		}
		challenges = append(challenges, model.Challenge{
			ID:             i + 1,
			Title:          fch.Title,
			Description:    fch.Description,
			Details:        fch.Details,
			TimerSeconds:   fch.Timer,
			ExpectedOutput: fch.ExpectedOutput,
			SampleOutput:   sample,
			Stdin:          fch.Stdin,
		})
	}
	c, err := New(challenges)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return c, nil
}
