package input

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Reader loads previously saved collision keys.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadKeysFromFile reads keys saved by report.SaveKeys. Files ending in
// ".json" hold a JSON array; anything else holds one key per line. Lines are
// not trimmed since keys may begin or end with a space; blank lines are
// skipped.
func (r *Reader) ReadKeysFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(filePath), ".json") {
		var keys []string
		if err := json.NewDecoder(file).Decode(&keys); err != nil {
			return nil, fmt.Errorf("failed to decode keys file %s: %w", filePath, err)
		}
		return keys, nil
	}

	var keys []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		keys = append(keys, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading keys file %s: %w", filePath, err)
	}
	return keys, nil
}
