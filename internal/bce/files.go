package bce

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Source files of a BCE/KBO open-data extract.
const (
	FileMeta          = "meta.csv"
	FileActivity      = "activity.csv"
	FileEstablishment = "establishment.csv"
	FileAddress       = "address.csv"
	FileDenomination  = "denomination.csv"
	FileContact       = "contact.csv"
)

// RequiredFiles lists the extract files in the order they are read.
var RequiredFiles = []string{
	FileMeta,
	FileActivity,
	FileEstablishment,
	FileAddress,
	FileDenomination,
	FileContact,
}

// CheckFiles verifies every required file exists in dir. The error names all
// missing files and wraps ErrMissingFiles.
func CheckFiles(dir string) error {
	var missing []string
	for _, name := range RequiredFiles {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || info.IsDir() {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return eris.Wrapf(ErrMissingFiles, "%s in %s", strings.Join(missing, ", "), dir)
	}
	return nil
}
