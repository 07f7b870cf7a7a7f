package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ersonp/sheetkeeper/internal/domain/entities"
)

// Reserved CSV columns. Every other column is an attribute.
var reservedColumns = map[string]bool{
	"system":   true,
	"campaign": true,
	"name":     true,
	"money":    true,
}

// CSVParser parses sheets from CSV format, one sheet per row.
type CSVParser struct{}

// csvHeader maps reserved columns to their index and keeps attribute
// columns in file order.
type csvHeader struct {
	index      map[string]int
	attributes []csvColumn
}

type csvColumn struct {
	name  string
	index int
}

// Parse reads CSV from the reader and returns parsed sheets.
// Expected columns: system, campaign, name, optional money, then any attributes.
func (p *CSVParser) Parse(r io.Reader) ([]RawSheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, header)
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) (*csvHeader, error) {
	row, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	header := &csvHeader{index: make(map[string]int)}
	for i, col := range row {
		col = strings.TrimSpace(col)
		key := strings.ToLower(col)
		if reservedColumns[key] {
			header.index[key] = i
			continue
		}
		if col != "" {
			header.attributes = append(header.attributes, csvColumn{name: col, index: i})
		}
	}

	for _, col := range []string{"system", "campaign", "name"} {
		if _, ok := header.index[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	return header, nil
}

// readRecords reads all data rows and converts them to RawSheets.
func (p *CSVParser) readRecords(reader *csv.Reader, header *csvHeader) ([]RawSheet, error) {
	var sheets []RawSheet
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		sheet, err := p.parseRecord(record, header, lineNum)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, sheet)
	}

	return sheets, nil
}

// parseRecord converts a CSV record to a RawSheet. Empty attribute cells
// are left off the sheet.
func (p *CSVParser) parseRecord(record []string, header *csvHeader, lineNum int) (RawSheet, error) {
	sheet := RawSheet{
		System:   getColumn(record, header.index, "system"),
		Campaign: getColumn(record, header.index, "campaign"),
		Name:     getColumn(record, header.index, "name"),
		LineNum:  lineNum,
	}

	moneyStr := getColumn(record, header.index, "money")
	if moneyStr != "" {
		money, err := strconv.ParseFloat(moneyStr, 64)
		if err != nil {
			return RawSheet{}, fmt.Errorf("line %d: invalid money value %q: %w", lineNum, moneyStr, err)
		}
		sheet.Money = &money
	}

	for _, col := range header.attributes {
		if col.index >= len(record) {
			continue
		}
		value := strings.TrimSpace(record[col.index])
		if value == "" {
			continue
		}
		sheet.Attributes = append(sheet.Attributes, entities.Attribute{Name: col.name, Value: value})
	}

	return sheet, nil
}

// getColumn safely retrieves a trimmed column value from a record.
func getColumn(record []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}
