// Package parsers decodes template documents and payload files in the
// formats the CLI accepts.
package parsers

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/ersonp/lore-forge/internal/domain/entities"
)

// RawTemplate is a template read from a file before validation.
type RawTemplate struct {
	Template entities.Template
	// Line is where the document starts in the source: the line number
	// for YAML and CSV, the array position (1-indexed) for JSON.
	Line int
}

// Parser reads template documents.
type Parser interface {
	Parse(r io.Reader) ([]RawTemplate, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "yaml", "csv".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "yaml", "yml":
		return &YAMLParser{}
	case "csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	return ForFormat(formatOf(filename))
}

func formatOf(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}
