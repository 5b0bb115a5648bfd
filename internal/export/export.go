// Package export writes commerce records to spreadsheet and data-interchange files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/bce-import/internal/bce"
)

// Format is an output file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// SheetName is the worksheet holding the records in XLSX output.
const SheetName = "commerces"

// Columns is the column order of tabular output (CSV and XLSX).
var Columns = []string{
	"establishment_number",
	"enterprise_number",
	"name",
	"slug",
	"category",
	"nace_version",
	"nace_code",
	"matched_nace_codes",
	"address_line",
	"postal_code",
	"city",
	"country",
	"phone",
	"email",
	"website",
	"source",
	"source_snapshot_date",
	"source_extracted_at",
}

// ParseFormat validates a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatYAML, FormatXLSX:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", eris.Errorf("export: unknown format %q (want csv, json, yaml or xlsx)", s)
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", eris.Errorf("export: cannot infer format of %s", path)
	}
	return ParseFormat(ext)
}

// Write encodes records to w in the given format.
func Write(w io.Writer, format Format, records []bce.CommerceRecord) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, records)
	case FormatJSON:
		return writeJSON(w, records)
	case FormatYAML:
		return writeYAML(w, records)
	case FormatXLSX:
		return writeXLSX(w, records)
	default:
		return eris.Errorf("export: unknown format %q", format)
	}
}

// WriteFile creates path and writes records to it.
func WriteFile(path string, format Format, records []bce.CommerceRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "export: create dir for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	if err := Write(f, format, records); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}

func writeCSV(w io.Writer, records []bce.CommerceRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for i := range records {
		if err := cw.Write(row(&records[i])); err != nil {
			return eris.Wrapf(err, "export: write csv row %s", records[i].EstablishmentNumber)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

func writeJSON(w io.Writer, records []bce.CommerceRecord) error {
	if records == nil {
		records = []bce.CommerceRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(records), "export: encode json")
}

func writeYAML(w io.Writer, records []bce.CommerceRecord) error {
	if records == nil {
		records = []bce.CommerceRecord{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return eris.Wrap(err, "export: encode yaml")
	}
	return eris.Wrap(enc.Close(), "export: close yaml encoder")
}

func writeXLSX(w io.Writer, records []bce.CommerceRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	addRow(sheet, Columns)
	for i := range records {
		addRow(sheet, row(&records[i]))
	}

	return eris.Wrap(f.Write(w), "export: write xlsx")
}

func addRow(sheet *xlsx.Sheet, cells []string) {
	r := sheet.AddRow()
	for _, v := range cells {
		r.AddCell().SetString(v)
	}
}

// row flattens a record in Columns order. Matched codes are joined with "|".
func row(rec *bce.CommerceRecord) []string {
	return []string{
		rec.EstablishmentNumber,
		rec.EnterpriseNumber,
		rec.Name,
		rec.Slug,
		string(rec.Category),
		rec.NaceVersion,
		rec.NaceCode,
		strings.Join(rec.MatchedNaceCodes, "|"),
		rec.AddressLine,
		rec.PostalCode,
		rec.City,
		rec.Country,
		rec.Phone,
		rec.Email,
		rec.Website,
		rec.Source,
		formatTime(rec.SourceSnapshotDate),
		formatTime(rec.SourceExtractedAt),
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
