package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/sheetkeeper/internal/domain/entities"
	"github.com/ersonp/sheetkeeper/internal/infrastructure/parsers"
)

type exportFlags struct {
	format string
	output string
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export SYSTEM [CAMPAIGN NAME]",
		Short: "Export character sheets to file",
		Long: `Exports one sheet, or every sheet you own in SYSTEM, to JSON, CSV, or markdown.

JSON and CSV output can be read back with 'sheetkeeper import'.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 && len(args) != 3 {
				return fmt.Errorf("expected SYSTEM or SYSTEM CAMPAIGN NAME, got %d args", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format (json, csv, markdown)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, args []string, flags exportFlags) error {
	if !slices.Contains(validFormats, flags.format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, validFormats)
	}

	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		sheets, err := fetchSheets(ctx, d, args)
		if err != nil {
			return err
		}
		return exportSheets(sheets, flags)
	})
}

func fetchSheets(ctx context.Context, d *Deps, args []string) ([]entities.Sheet, error) {
	if len(args) == 3 {
		sheet, err := d.Characters.HandleView(ctx, identityArgs(d.Owner, args))
		if err != nil {
			return nil, fmt.Errorf("reading sheet: %w", err)
		}
		return []entities.Sheet{*sheet}, nil
	}

	characters, err := d.Characters.HandleList(ctx, d.Owner, args[0])
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	if len(characters) == 0 {
		return nil, fmt.Errorf("no sheets found to export")
	}

	sheets := make([]entities.Sheet, 0, len(characters))
	for _, c := range characters {
		sheet, err := d.Characters.HandleView(ctx, c.Identity())
		if err != nil {
			return nil, fmt.Errorf("reading sheet %s: %w", c.Name, err)
		}
		sheets = append(sheets, *sheet)
	}
	return sheets, nil
}

func exportSheets(sheets []entities.Sheet, flags exportFlags) (err error) {
	var w io.Writer

	if flags.output != "" {
		f, err := os.OpenFile(flags.output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("creating file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing file: %w", cerr)
			}
		}()
		w = f
	} else {
		w = os.Stdout
	}

	if err := formatSheets(w, flags.format, sheets); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if flags.output != "" {
		fmt.Printf("Exported %d sheets to %s\n", len(sheets), flags.output)
	}

	return nil
}

func formatSheets(w io.Writer, format string, sheets []entities.Sheet) error {
	switch format {
	case "json":
		return formatJSON(w, sheets)
	case "csv":
		return formatCSV(w, sheets)
	case "markdown":
		return formatMarkdown(w, sheets)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// toRawSheet converts a sheet to the shape the import parsers read.
func toRawSheet(sheet entities.Sheet) parsers.RawSheet {
	money := sheet.Character.Money
	attrs := make([]entities.Attribute, 0, len(sheet.Attributes))
	for _, a := range sheet.Attributes {
		attrs = append(attrs, entities.Attribute{Name: a.Name, Value: a.Value})
	}
	return parsers.RawSheet{
		System:     sheet.Character.System,
		Campaign:   sheet.Character.Campaign,
		Name:       sheet.Character.Name,
		Money:      &money,
		Attributes: attrs,
	}
}

func formatJSON(w io.Writer, sheets []entities.Sheet) error {
	raw := make([]parsers.RawSheet, 0, len(sheets))
	for _, s := range sheets {
		raw = append(raw, toRawSheet(s))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(raw)
}

// formatCSV writes one row per sheet. Attribute columns are the union of
// all attribute names in first-seen order.
func formatCSV(w io.Writer, sheets []entities.Sheet) error {
	var columns []string
	seen := make(map[string]bool)
	for _, s := range sheets {
		for _, a := range s.Attributes {
			if !seen[a.Name] {
				seen[a.Name] = true
				columns = append(columns, a.Name)
			}
		}
	}

	writer := csv.NewWriter(w)

	header := append([]string{"system", "campaign", "name", "money"}, columns...)
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, s := range sheets {
		row := []string{
			s.Character.System,
			s.Character.Campaign,
			s.Character.Name,
			formatMoney(s.Character.Money),
		}
		for _, col := range columns {
			value, _ := s.Attribute(col)
			row = append(row, value)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatMarkdown(w io.Writer, sheets []entities.Sheet) error {
	if _, err := fmt.Fprintf(w, "# Exported Sheets\n\nTotal: %d sheets\n", len(sheets)); err != nil {
		return err
	}

	for _, s := range sheets {
		c := s.Character
		if _, err := fmt.Fprintf(w, "\n## %s\n\n- System: %s\n- Campaign: %s\n- Money: %s\n\n",
			escapeMarkdown(c.Name), escapeMarkdown(c.System), escapeMarkdown(c.Campaign), formatMoney(c.Money)); err != nil {
			return err
		}

		if len(s.Attributes) == 0 {
			continue
		}

		if _, err := fmt.Fprint(w, "| Attribute | Value |\n|-----------|-------|\n"); err != nil {
			return err
		}
		for _, a := range s.Attributes {
			if _, err := fmt.Fprintf(w, "| %s | %s |\n", escapeMarkdown(displayName(a.Name)), escapeMarkdown(a.Value)); err != nil {
				return err
			}
		}
	}

	return nil
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
