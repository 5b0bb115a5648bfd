package fetcher

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestZIP(t *testing.T, files map[string]string) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "test.zip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return zipPath
}

func TestExtractZIP_All(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"meta.csv":   "Variable,Value",
		"README.txt": "notes",
	})

	destDir := t.TempDir()
	extracted, err := ExtractZIP(zipPath, destDir, nil)
	require.NoError(t, err)
	assert.Len(t, extracted, 2)

	data, err := os.ReadFile(filepath.Join(destDir, "README.txt"))
	require.NoError(t, err)
	assert.Equal(t, "notes", string(data))
}

func TestExtractZIP_CSVOnlyFlattens(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"KboOpenData_0140/meta.csv":     "Variable,Value",
		"KboOpenData_0140/activity.CSV": "EntityNumber",
		"KboOpenData_0140/readme.pdf":   "%PDF",
	})

	destDir := filepath.Join(t.TempDir(), "data")
	extracted, err := ExtractZIP(zipPath, destDir, CSVOnly)
	require.NoError(t, err)

	sort.Strings(extracted)
	assert.Equal(t, []string{
		filepath.Join(destDir, "activity.CSV"),
		filepath.Join(destDir, "meta.csv"),
	}, extracted)

	_, err = os.Stat(filepath.Join(destDir, "readme.pdf"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtractZIP_TraversalNamesStayInside(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"../../evil.csv": "x",
	})

	destDir := t.TempDir()
	extracted, err := ExtractZIP(zipPath, destDir, nil)
	require.NoError(t, err)
	require.Len(t, extracted, 1)
	assert.Equal(t, filepath.Join(destDir, "evil.csv"), extracted[0])
}

func TestExtractZIP_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.zip")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	_, err := ExtractZIP(path, t.TempDir(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zip: open archive")
}

func TestCSVOnly(t *testing.T) {
	assert.True(t, CSVOnly("meta.csv"))
	assert.True(t, CSVOnly("META.CSV"))
	assert.False(t, CSVOnly("meta.csv.bak"))
	assert.False(t, CSVOnly("meta"))
}
