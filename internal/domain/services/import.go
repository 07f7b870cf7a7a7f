package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ersonp/sheetkeeper/internal/domain/entities"
	"github.com/ersonp/sheetkeeper/internal/infrastructure/parsers"
)

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun bool // Validate without saving
}

// ImportError represents an error for a specific sheet during import.
type ImportError struct {
	Line    int    // Line number (1-indexed, 0 if unknown)
	Field   string // Which field has the error
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Created []entities.Character
	Skipped []string // Names of sheets that already existed
	Errors  []ImportError
}

// ImportService creates characters from parsed sheets.
type ImportService struct {
	characters *CharacterService
	ledger     *LedgerService
}

// NewImportService creates a new import service.
func NewImportService(characters *CharacterService, ledger *LedgerService) *ImportService {
	return &ImportService{
		characters: characters,
		ledger:     ledger,
	}
}

// Import validates raw sheets and creates a character for each valid one.
// Sheets whose identity already exists are skipped, not overwritten.
func (s *ImportService) Import(ctx context.Context, ownerID string, rawSheets []parsers.RawSheet, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	valid, validationErrors := s.validateSheets(rawSheets)
	result.Errors = validationErrors

	for i := range valid {
		raw := &valid[i]
		identity := entities.Identity{
			OwnerID:  ownerID,
			System:   raw.System,
			Campaign: raw.Campaign,
			Name:     raw.Name,
		}

		if opts.DryRun {
			if _, err := s.characters.Resolve(ctx, identity); err == nil {
				result.Skipped = append(result.Skipped, raw.Name)
				continue
			} else if !errors.Is(err, entities.ErrCharacterNotFound) {
				return nil, fmt.Errorf("checking existing character: %w", err)
			}
			result.Created = append(result.Created, entities.Character{
				OwnerID:  ownerID,
				System:   entities.NormalizeName(raw.System),
				Campaign: entities.NormalizeName(raw.Campaign),
				Name:     strings.TrimSpace(raw.Name),
			})
			continue
		}

		c, err := s.characters.Create(ctx, identity, raw.Attributes)
		if errors.Is(err, entities.ErrDuplicateCharacter) {
			result.Skipped = append(result.Skipped, raw.Name)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("importing %s: %w", raw.Name, err)
		}

		if raw.Money != nil && *raw.Money != 0 {
			balance, err := s.ledger.AdjustMoney(ctx, c.ID, *raw.Money)
			if err != nil {
				return nil, fmt.Errorf("setting money for %s: %w", raw.Name, err)
			}
			c.Money = balance
		}

		result.Created = append(result.Created, *c)
	}

	return result, nil
}

// validateSheets validates raw sheets and returns valid ones with any errors.
func (s *ImportService) validateSheets(rawSheets []parsers.RawSheet) ([]parsers.RawSheet, []ImportError) {
	valid := make([]parsers.RawSheet, 0, len(rawSheets))
	var errs []ImportError

	for i := range rawSheets {
		raw := &rawSheets[i]
		lineNum := raw.LineNum
		if lineNum == 0 {
			lineNum = i + 1
		}

		if err := validateRawSheet(raw, lineNum); err != nil {
			errs = append(errs, *err)
			continue
		}

		valid = append(valid, *raw)
	}

	return valid, errs
}

// validateRawSheet validates a single raw sheet and returns an error if invalid.
func validateRawSheet(raw *parsers.RawSheet, lineNum int) *ImportError {
	if strings.TrimSpace(raw.System) == "" {
		return &ImportError{Line: lineNum, Field: "system", Message: "missing required field: system"}
	}
	if strings.TrimSpace(raw.Campaign) == "" {
		return &ImportError{Line: lineNum, Field: "campaign", Message: "missing required field: campaign"}
	}
	if strings.TrimSpace(raw.Name) == "" {
		return &ImportError{Line: lineNum, Field: "name", Message: "missing required field: name"}
	}
	for _, attr := range raw.Attributes {
		if strings.TrimSpace(attr.Name) == "" {
			return &ImportError{
				Line:    lineNum,
				Field:   "attributes",
				Value:   attr.Value,
				Message: "attribute with empty name",
			}
		}
	}
	return nil
}
