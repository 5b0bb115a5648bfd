package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/bce-import/internal/bce"
	"github.com/sells-group/bce-import/internal/bce/transform"
)

func sampleRecords() []bce.CommerceRecord {
	snapshot := time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC)
	return []bce.CommerceRecord{
		{
			EstablishmentNumber: "2.000.000.111",
			EnterpriseNumber:    "0123.456.789",
			Name:                "Boucherie Centrale",
			Slug:                "boucherie-centrale-1000-2000000111",
			Category:            transform.CategoryBoucherie,
			NaceVersion:         "2025",
			NaceCode:            "47221",
			MatchedNaceCodes:    []string{"4722", "47221"},
			AddressLine:         "Rue de Test 12",
			PostalCode:          "1000",
			City:                "Bruxelles",
			Country:             "BE",
			Phone:               "02 000 00 00",
			Source:              "bce-kbo",
			SourceSnapshotDate:  &snapshot,
		},
		{
			EstablishmentNumber: "2.000.000.222",
			EnterpriseNumber:    "0987.654.321",
			Name:                "Slagerij Luik",
			Slug:                "slagerij-luik-4000-2000000222",
			Category:            transform.CategoryBoucherie,
			NaceVersion:         "2025",
			NaceCode:            "4722",
			MatchedNaceCodes:    []string{"4722"},
			AddressLine:         "Maasstraat 7",
			PostalCode:          "4000",
			City:                "Luik",
			Country:             "BE",
			Source:              "bce-kbo",
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"xlsx", FormatXLSX, false},
		{"xml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("/tmp/out/commerces.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = FormatFromPath("/tmp/out/commerces")
	assert.ErrorContains(t, err, "cannot infer format")
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleRecords()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "2.000.000.111", rows[1][0])
	assert.Equal(t, "4722|47221", rows[1][7])
	assert.Equal(t, "2026-01-18T00:00:00Z", rows[1][16])
	assert.Equal(t, "", rows[2][12])
	assert.Equal(t, "", rows[2][16])
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleRecords()))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "boucherie-centrale-1000-2000000111", got[0]["slug"])
	assert.Equal(t, "02 000 00 00", got[0]["phone"])
	_, hasPhone := got[1]["phone"]
	assert.False(t, hasPhone)
}

func TestWrite_JSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, nil))
	assert.JSONEq(t, "[]", buf.String())
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, sampleRecords()))

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Slagerij Luik", got[1]["name"])
	assert.Equal(t, "boucherie", got[1]["category"])
	assert.Contains(t, buf.String(), "establishment_number: 2.000.000.111")
}

func TestWriteFile_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "commerces.xlsx")
	require.NoError(t, WriteFile(path, FormatXLSX, sampleRecords()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet, ok := f.Sheet[SheetName]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "establishment_number", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "Boucherie Centrale", sheet.Rows[1].Cells[2].String())
	assert.Equal(t, "Luik", sheet.Rows[2].Cells[10].String())
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Format("pdf"), sampleRecords())
	assert.ErrorContains(t, err, "unknown format")
}
