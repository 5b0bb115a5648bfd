package bce

import (
	"time"

	"github.com/sells-group/bce-import/internal/bce/transform"
)

// CandidateActivity is the activity match of one candidate establishment.
type CandidateActivity struct {
	PrimaryCode  string
	Category     transform.Category
	MatchedCodes map[string]struct{}
}

// newCandidateActivity starts a candidate from its first matching code.
func newCandidateActivity(code string, category transform.Category) *CandidateActivity {
	return &CandidateActivity{
		PrimaryCode:  code,
		Category:     category,
		MatchedCodes: map[string]struct{}{code: {}},
	}
}

// Address is one resolved registry address.
type Address struct {
	Country     string
	PostalCode  string
	City        string
	Street      string
	HouseNumber string
	Box         string
}

// RankedValue is a candidate denomination; lower rank wins.
type RankedValue struct {
	Rank  int
	Value string
}

// Contact holds the first non-empty contact value per channel.
type Contact struct {
	Phone   string
	Email   string
	Website string
}

// CommerceRecord is one assembled commerce, ready to be persisted.
type CommerceRecord struct {
	EstablishmentNumber string             `json:"establishment_number" yaml:"establishment_number"`
	EnterpriseNumber    string             `json:"enterprise_number" yaml:"enterprise_number"`
	Name                string             `json:"name" yaml:"name"`
	Slug                string             `json:"slug" yaml:"slug"`
	Category            transform.Category `json:"category" yaml:"category"`
	NaceVersion         string             `json:"nace_version" yaml:"nace_version"`
	NaceCode            string             `json:"nace_code" yaml:"nace_code"`
	MatchedNaceCodes    []string           `json:"matched_nace_codes" yaml:"matched_nace_codes"`
	AddressLine         string             `json:"address_line" yaml:"address_line"`
	PostalCode          string             `json:"postal_code" yaml:"postal_code"`
	City                string             `json:"city" yaml:"city"`
	Country             string             `json:"country" yaml:"country"`
	Phone               string             `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email               string             `json:"email,omitempty" yaml:"email,omitempty"`
	Website             string             `json:"website,omitempty" yaml:"website,omitempty"`
	Source              string             `json:"source" yaml:"source"`
	SourceSnapshotDate  *time.Time         `json:"source_snapshot_date,omitempty" yaml:"source_snapshot_date,omitempty"`
	SourceExtractedAt   *time.Time         `json:"source_extracted_at,omitempty" yaml:"source_extracted_at,omitempty"`
}

// Result is the outcome of one Build call.
type Result struct {
	// RowsScanned counts data rows read across all source files.
	RowsScanned int64 `json:"rows_scanned"`
	// RowsSelected counts distinct candidate establishments.
	RowsSelected int `json:"rows_selected"`
	RowsEmitted  int `json:"rows_emitted"`
	RowsSkipped  int `json:"rows_skipped"`

	SnapshotDate *time.Time `json:"snapshot_date,omitempty"`
	ExtractedAt  *time.Time `json:"extracted_at,omitempty"`

	Records []CommerceRecord `json:"-"`
}
