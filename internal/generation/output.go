package generation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// DefaultOutputDir is where run output files are written.
const DefaultOutputDir = "output"

// OutputFilename returns content_<topic>.txt with the topic lower-cased and
// spaces turned into underscores. Characters unsafe in file names are dropped.
func OutputFilename(topic string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(topic)) {
		switch {
		case r == ' ':
			sb.WriteRune('_')
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-', r == '.':
			sb.WriteRune(r)
		}
	}
	name := strings.Trim(sb.String(), ".")
	if name == "" {
		name = "untitled"
	}
	return "content_" + name + ".txt"
}

// WriteOutput writes content to dir/OutputFilename(topic), creating dir.
func WriteOutput(dir, topic, content string) (string, error) {
	if dir == "" {
		dir = DefaultOutputDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, OutputFilename(topic))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	return path, nil
}
