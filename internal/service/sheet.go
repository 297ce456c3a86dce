package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
)

// SheetRow is one data row keyed by normalised header. Line is the
// 1-based line in the source sheet, header included.
type SheetRow struct {
	Line   int               `json:"line"`
	Values map[string]string `json:"values"`
}

func (r SheetRow) lookup(aliases []string) string {
	for _, a := range aliases {
		if v, ok := r.Values[a]; ok && v != "" {
			return v
		}
	}
	return ""
}

// ParseSheet reads the first worksheet of an .xlsx file, or a .csv file.
// The first row is the header; blank rows are skipped.
func ParseSheet(filename string, r io.Reader) ([]SheetRow, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx", ".xlsm":
		return parseXLSX(r)
	case ".csv":
		return parseCSV(r)
	default:
		return nil, invalid("file", "unsupported file type %q, upload .xlsx or .csv", ext)
	}
}

func parseXLSX(r io.Reader) ([]SheetRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, invalid("file", "cannot read spreadsheet: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, invalid("file", "spreadsheet has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return toSheetRows(records)
}

func parseCSV(r io.Reader) ([]SheetRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, invalid("file", "cannot read csv: %v", err)
	}
	return toSheetRows(records)
}

func toSheetRows(records [][]string) ([]SheetRow, error) {
	if len(records) == 0 {
		return nil, invalid("file", "spreadsheet is empty")
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = normalizeHeader(h)
	}

	var rows []SheetRow
	for i, rec := range records[1:] {
		values := make(map[string]string, len(header))
		blank := true
		for j, cell := range rec {
			if j >= len(header) || header[j] == "" {
				continue
			}
			v := strings.TrimSpace(cell)
			if v != "" {
				blank = false
			}
			values[header[j]] = v
		}
		if blank {
			continue
		}
		rows = append(rows, SheetRow{Line: i + 2, Values: values})
	}
	return rows, nil
}

// normalizeHeader lower-cases and drops everything but letters and digits,
// so "Phone Number", "phone_number" and a BOM-prefixed "PhoneNumber" compare equal.
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
