// Package entities contains core domain data structures.
package entities

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Identity is the lookup tuple that names a character sheet.
// Matching is case-insensitive on every textual field.
type Identity struct {
	OwnerID  string `json:"owner_id"`
	System   string `json:"system"`
	Campaign string `json:"campaign"`
	Name     string `json:"name"`
}

// Normalized returns the identity with every textual field folded.
func (i Identity) Normalized() Identity {
	return Identity{
		OwnerID:  NormalizeName(i.OwnerID),
		System:   NormalizeName(i.System),
		Campaign: NormalizeName(i.Campaign),
		Name:     NormalizeName(i.Name),
	}
}

// Character is a stored character sheet header.
type Character struct {
	ID             int64     `json:"id"`
	OwnerID        string    `json:"owner_id"`
	System         string    `json:"system"`          // Folded (e.g., "tormenta20")
	Campaign       string    `json:"campaign"`        // Folded
	Name           string    `json:"name"`            // Display name (e.g., "Aria")
	NormalizedName string    `json:"normalized_name"` // Folded for matching (e.g., "aria")
	Money          float64   `json:"money"`
	CreatedAt      time.Time `json:"created_at"`
}

// Identity returns the lookup tuple for the character.
func (c *Character) Identity() Identity {
	return Identity{
		OwnerID:  c.OwnerID,
		System:   c.System,
		Campaign: c.Campaign,
		Name:     c.Name,
	}
}

// Attribute is a single named value on a sheet. Values are free text;
// numeric attributes are parsed on demand.
type Attribute struct {
	CharacterID int64  `json:"character_id,omitempty"`
	Name        string `json:"name"`
	Value       string `json:"value"`
}

// Sheet is a character with its full attribute set.
type Sheet struct {
	Character  Character   `json:"character"`
	Attributes []Attribute `json:"attributes"`
}

// Attribute returns the value stored under name, matched case-insensitively.
func (s *Sheet) Attribute(name string) (string, bool) {
	key := NormalizeName(name)
	for _, a := range s.Attributes {
		if a.Name == key {
			return a.Value, true
		}
	}
	return "", false
}

// NormalizeAttributes folds attribute names and collapses duplicates.
// The last value for a folded name wins; first-seen order is kept.
func NormalizeAttributes(attrs []Attribute) []Attribute {
	index := make(map[string]int, len(attrs))
	result := make([]Attribute, 0, len(attrs))
	for _, a := range attrs {
		key := NormalizeName(a.Name)
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			result[i].Value = a.Value
			continue
		}
		index[key] = len(result)
		result = append(result, Attribute{Name: key, Value: a.Value})
	}
	return result
}

// NormalizeName trims and case-folds a name for case-insensitive matching.
// Folding is Unicode-aware, so "FORÇA" and "força" compare equal.
func NormalizeName(name string) string {
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Fold().String(strings.TrimSpace(name))
}
