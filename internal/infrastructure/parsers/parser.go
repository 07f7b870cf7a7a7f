// Package parsers provides parsers for importing character sheets from various formats.
package parsers

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/ersonp/sheetkeeper/internal/domain/entities"
)

// RawSheet represents a character sheet parsed from an external source before validation.
type RawSheet struct {
	System     string               `json:"system"`
	Campaign   string               `json:"campaign"`
	Name       string               `json:"name"`
	Money      *float64             `json:"money,omitempty"` // Pointer to distinguish 0 from unset
	Attributes []entities.Attribute `json:"attributes,omitempty"`
	LineNum    int                  `json:"-"` // Line number in source file (set by parser)
}

// Parser defines the interface for parsing sheets from various formats.
type Parser interface {
	Parse(r io.Reader) ([]RawSheet, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "csv".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{}
	case ".csv":
		return &CSVParser{}
	default:
		return nil
	}
}
