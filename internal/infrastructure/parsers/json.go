package parsers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ersonp/sheetkeeper/internal/domain/entities"
)

// JSONParser parses sheets from a JSON array or a single JSON object.
// Attribute values may be strings, numbers, booleans or null.
type JSONParser struct{}

type jsonSheet struct {
	System     string          `json:"system"`
	Campaign   string          `json:"campaign"`
	Name       string          `json:"name"`
	Money      *float64        `json:"money,omitempty"`
	Attributes []jsonAttribute `json:"attributes,omitempty"`
}

type jsonAttribute struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// Parse reads JSON from the reader and returns parsed sheets.
func (p *JSONParser) Parse(r io.Reader) ([]RawSheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading JSON: %w", err)
	}

	var docs []jsonSheet
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var doc jsonSheet
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		docs = []jsonSheet{doc}
	} else if err := json.Unmarshal(trimmed, &docs); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	sheets := make([]RawSheet, 0, len(docs))
	for i, doc := range docs {
		sheet := RawSheet{
			System:   doc.System,
			Campaign: doc.Campaign,
			Name:     doc.Name,
			Money:    doc.Money,
			LineNum:  i + 1, // array index, 1-indexed
		}
		for _, a := range doc.Attributes {
			value, err := attributeValue(a.Value)
			if err != nil {
				return nil, fmt.Errorf("parsing JSON: sheet %d attribute %q: %w", i+1, a.Name, err)
			}
			sheet.Attributes = append(sheet.Attributes, entities.Attribute{Name: a.Name, Value: value})
		}
		sheets = append(sheets, sheet)
	}

	return sheets, nil
}

// attributeValue renders a scalar JSON value as sheet text.
func attributeValue(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", fmt.Errorf("value must be a string, number or boolean")
	default:
		return string(raw), nil
	}
}
