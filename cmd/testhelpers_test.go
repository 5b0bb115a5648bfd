package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/bce-import/internal/bce"
	"github.com/sells-group/bce-import/internal/store"
)

// writeTestExtract writes a one-shop extract and returns its directory.
func writeTestExtract(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string][]string{
		bce.FileMeta: {
			`"Variable","Value"`,
			`"SnapshotDate","18-01-2026"`,
			`"ExtractTimestamp","19-01-2026 07:09:14"`,
		},
		bce.FileActivity: {
			`"EntityNumber","ActivityGroup","NaceVersion","NaceCode","Classification"`,
			`"2.000.000.111","001","2025","47221","MAIN"`,
		},
		bce.FileEstablishment: {
			`"EstablishmentNumber","StartDate","EnterpriseNumber"`,
			`"2.000.000.111","01-01-2010","0123.456.789"`,
		},
		bce.FileAddress: {
			`"EntityNumber","TypeOfAddress","CountryNL","CountryFR","Zipcode","MunicipalityNL","MunicipalityFR","StreetNL","StreetFR","HouseNumber","Box","ExtraAddressInfo","DateStrikingOff"`,
			`"2.000.000.111","BAET","België","Belgique","1000","Brussel","Bruxelles","Teststraat","Rue de Test","12","","",""`,
		},
		bce.FileDenomination: {
			`"EntityNumber","Language","TypeOfDenomination","Denomination"`,
			`"2.000.000.111","1","003","Boucherie Centrale"`,
		},
		bce.FileContact: {
			`"EntityNumber","EntityContact","ContactType","Value"`,
			`"2.000.000.111","EST","TEL","02 000 00 00"`,
		},
	}
	for name, lines := range files {
		content := strings.Join(lines, "\n") + "\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

// newTestStore opens a migrated SQLite store in a temp dir.
func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "bce.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}
