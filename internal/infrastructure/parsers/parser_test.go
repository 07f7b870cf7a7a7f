package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/sheetkeeper/internal/domain/entities"
)

func TestJSONParser_Parse_ValidInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []RawSheet
	}{
		{
			name:  "single sheet",
			input: `[{"system": "tormenta20", "campaign": "camp1", "name": "Aria"}]`,
			expected: []RawSheet{
				{System: "tormenta20", Campaign: "camp1", Name: "Aria", LineNum: 1},
			},
		},
		{
			name:     "empty array",
			input:    "[]",
			expected: []RawSheet{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &JSONParser{}
			result, err := parser.Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestJSONParser_Parse_AllFields(t *testing.T) {
	input := `[{
		"system": "Ordem Paranormal",
		"campaign": "Calamidade",
		"name": "Dante",
		"money": 12.5,
		"attributes": [
			{"name": "PV", "value": "20"},
			{"name": "Classe", "value": "Ocultista"}
		]
	}]`

	parser := &JSONParser{}
	result, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result, 1)

	sheet := result[0]
	assert.Equal(t, "Ordem Paranormal", sheet.System)
	assert.Equal(t, "Calamidade", sheet.Campaign)
	assert.Equal(t, "Dante", sheet.Name)
	require.NotNil(t, sheet.Money)
	assert.InDelta(t, 12.5, *sheet.Money, 0.0001)
	assert.Equal(t, []entities.Attribute{
		{Name: "PV", Value: "20"},
		{Name: "Classe", Value: "Ocultista"},
	}, sheet.Attributes)
	assert.Equal(t, 1, sheet.LineNum)
}

func TestJSONParser_Parse_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "scalar", input: `42`},
		{name: "malformed", input: `[{"name": `},
		{name: "malformed object", input: `{"name": `},
		{name: "object attribute value", input: `[{"name": "Aria", "attributes": [{"name": "PV", "value": {"max": 30}}]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &JSONParser{}
			_, err := parser.Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "parsing JSON")
		})
	}
}

func TestJSONParser_Parse_SingleObject(t *testing.T) {
	input := `{"system": "tormenta20", "campaign": "camp1", "name": "Aria", "attributes": [
		{"name": "PV", "value": 30},
		{"name": "Vivo", "value": true},
		{"name": "Notas", "value": null},
		{"name": "Classe", "value": "Guerreira"}
	]}`

	parser := &JSONParser{}
	result, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result, 1)

	assert.Equal(t, "Aria", result[0].Name)
	assert.Equal(t, 1, result[0].LineNum)
	assert.Equal(t, []entities.Attribute{
		{Name: "PV", Value: "30"},
		{Name: "Vivo", Value: "true"},
		{Name: "Notas", Value: ""},
		{Name: "Classe", Value: "Guerreira"},
	}, result[0].Attributes)
}

func TestCSVParser_Parse_ValidInput(t *testing.T) {
	input := "system,campaign,name,money,PV,Classe\n" +
		"tormenta20,camp1,Aria,10,30,Guerreira\n" +
		"tormenta20,camp1,Bram,,12,\n"

	parser := &CSVParser{}
	result, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result, 2)

	aria := result[0]
	assert.Equal(t, "tormenta20", aria.System)
	assert.Equal(t, "Aria", aria.Name)
	require.NotNil(t, aria.Money)
	assert.InDelta(t, 10.0, *aria.Money, 0.0001)
	assert.Equal(t, []entities.Attribute{
		{Name: "PV", Value: "30"},
		{Name: "Classe", Value: "Guerreira"},
	}, aria.Attributes)
	assert.Equal(t, 2, aria.LineNum)

	bram := result[1]
	assert.Nil(t, bram.Money)
	assert.Equal(t, []entities.Attribute{{Name: "PV", Value: "12"}}, bram.Attributes)
	assert.Equal(t, 3, bram.LineNum)
}

func TestCSVParser_Parse_HeaderCaseInsensitive(t *testing.T) {
	input := "Name,System,Campaign\nAria,tormenta20,camp1\n"

	parser := &CSVParser{}
	result, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Aria", result[0].Name)
	assert.Empty(t, result[0].Attributes)
}

func TestCSVParser_Parse_MissingColumn(t *testing.T) {
	input := "system,name\ntormenta20,Aria\n"

	parser := &CSVParser{}
	_, err := parser.Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column: campaign")
}

func TestCSVParser_Parse_InvalidMoney(t *testing.T) {
	input := "system,campaign,name,money\ntormenta20,camp1,Aria,lots\n"

	parser := &CSVParser{}
	_, err := parser.Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "invalid money value")
}

func TestCSVParser_Parse_EmptyInput(t *testing.T) {
	parser := &CSVParser{}
	_, err := parser.Parse(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading CSV header")
}

func TestForFormat(t *testing.T) {
	assert.IsType(t, &JSONParser{}, ForFormat("JSON"))
	assert.IsType(t, &CSVParser{}, ForFormat("csv"))
	assert.Nil(t, ForFormat("xml"))
}

func TestForFile(t *testing.T) {
	assert.IsType(t, &JSONParser{}, ForFile("sheets.json"))
	assert.IsType(t, &CSVParser{}, ForFile("/tmp/SHEETS.CSV"))
	assert.Nil(t, ForFile("sheets.txt"))
}
