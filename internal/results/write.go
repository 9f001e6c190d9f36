package results

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteCard writes the card to path through a temp file and rename.
func WriteCard(path, card string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create card dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "card-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create temp card: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.WriteString(card + "\n"); err != nil {
		return fmt.Errorf("failed to write card: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close card: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write card: %w", err)
	}
	return nil
}
