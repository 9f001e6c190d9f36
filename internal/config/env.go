package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// APIKeyEnv holds the judge credential.
const APIKeyEnv = "JUDGE0_API_KEY"

// LoadEnv loads .env files into the process environment. Missing files are skipped and
// variables that are already set are kept.
func LoadEnv(paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// APIKey returns the judge credential from the environment.
func APIKey() string {
	return strings.TrimSpace(os.Getenv(APIKeyEnv))
}
