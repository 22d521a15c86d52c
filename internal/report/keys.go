package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rafabd1/hashes/internal/utils"
)

// SaveKeys writes keys to path, one per line ("text") or as a JSON array
// ("json"). Keys are written byte for byte, spaces included.
func SaveKeys(path string, keys []string, format string) error {
	if err := utils.EnsureFilepathExists(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create keys file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(keys); err != nil {
			return fmt.Errorf("failed to encode keys: %w", err)
		}
	case "text", "":
		for _, k := range keys {
			if _, err := w.WriteString(k + "\n"); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported keys format %q", format)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}
