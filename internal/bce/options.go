package bce

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/bce-import/internal/bce/transform"
)

const (
	// DefaultNaceVersion is the NACE-BEL edition used when none is configured.
	DefaultNaceVersion = "2025"
	// DefaultSource tags the provenance of imported records.
	DefaultSource = "bce-kbo"
	// DefaultCountry is used when an address row carries no country.
	DefaultCountry = "BE"
)

// DefaultNaceCodes covers retail sale of meat (47.22) and its two sub-classes.
var DefaultNaceCodes = []string{"47.22", "47.221", "47.222"}

var (
	// ErrMissingFiles is returned when the data directory lacks a required file.
	ErrMissingFiles = eris.New("bce: missing required files")
	// ErrUnsupportedNaceCode is returned when the allow-list holds a code
	// without a category.
	ErrUnsupportedNaceCode = eris.New("bce: unsupported exact NACE code")
)

// Options configures one Build call.
type Options struct {
	DataDir     string
	NaceVersion string   // default DefaultNaceVersion
	NaceCodes   []string // exact codes, dots allowed; default DefaultNaceCodes
	Source      string   // default DefaultSource

	// NormalizeNames title-cases commerce and city names.
	NormalizeNames bool
	// ExcludeNames drops candidates whose resolved name contains one of these terms.
	ExcludeNames []string
}

// settings are Options with defaults applied and the allow-list resolved.
type settings struct {
	dataDir        string
	naceVersion    string
	source         string
	allow          map[string]transform.Category
	normalizeNames bool
	excludeNames   []string
}

func (o Options) resolve() (settings, error) {
	s := settings{
		naceVersion:    strings.TrimSpace(o.NaceVersion),
		source:         strings.TrimSpace(o.Source),
		normalizeNames: o.NormalizeNames,
		excludeNames:   o.ExcludeNames,
	}
	if s.naceVersion == "" {
		s.naceVersion = DefaultNaceVersion
	}
	if s.source == "" {
		s.source = DefaultSource
	}

	allow, err := ResolveAllowList(o.NaceCodes)
	if err != nil {
		return settings{}, err
	}
	s.allow = allow

	if strings.TrimSpace(o.DataDir) == "" {
		return settings{}, eris.New("bce: data dir is required")
	}
	dir, err := filepath.Abs(o.DataDir)
	if err != nil {
		return settings{}, eris.Wrapf(err, "bce: resolve data dir %s", o.DataDir)
	}
	s.dataDir = dir

	return s, nil
}

// ResolveAllowList normalizes codes and maps each one to its category.
// An empty list selects DefaultNaceCodes. Any code without a category is fatal.
func ResolveAllowList(codes []string) (map[string]transform.Category, error) {
	if len(codes) == 0 {
		codes = DefaultNaceCodes
	}

	allow := make(map[string]transform.Category, len(codes))
	for _, raw := range codes {
		code := transform.NormalizeNaceCode(raw)
		category, ok := transform.NaceCategory(code)
		if !ok {
			return nil, eris.Wrapf(ErrUnsupportedNaceCode, "%q (allowed: %s)",
				code, strings.Join(transform.SupportedNaceCodes(), ", "))
		}
		allow[code] = category
	}
	return allow, nil
}
