// Package validation checks user-supplied paths before any work starts.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// InputExtensions are the record file types the classify command reads.
var InputExtensions = []string{".csv", ".txt", ".json"}

// IsValidInputFile checks that path is an existing regular file with one of the
// supported extensions.
func IsValidInputFile(path string) error {
	if path == "" {
		return fmt.Errorf("input file is required")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("input path is not a regular file: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range InputExtensions {
		if ext == supported {
			return nil
		}
	}
	return fmt.Errorf("unsupported input file type %q. Supported types are %s", ext, strings.Join(InputExtensions, ", "))
}

// IsValidDirectory checks that path exists and is a directory.
func IsValidDirectory(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("directory does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}
	return nil
}
