package fsutil

import (
	"path/filepath"
	"testing"

	"github.com/specialistvlad/boreimp/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindBoreFiles(t *testing.T) {
	// --- Arrange ---
	dir := testutil.WriteFiles(t, map[string]string{
		"b.xmen":             "",
		"a.men":              "",
		"notes.txt":          "",
		"nested/c.MEN":       "",
		".hidden/skip.men":   "",
		"nested/deep/d.xmen": "",
	})

	// --- Act ---
	files, err := FindBoreFiles(dir)

	// --- Assert ---
	require.NoError(t, err)
	rel := make([]string, len(files))
	for i, f := range files {
		r, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		rel[i] = filepath.ToSlash(r)
	}
	assert.Equal(t, []string{"a.men", "b.xmen", "nested/c.MEN", "nested/deep/d.xmen"}, rel)
}

func TestFindFilesByExtension_Errors(t *testing.T) {
	_, err := FindFilesByExtension(t.TempDir())
	assert.Error(t, err)

	_, err = FindFilesByExtension(t.TempDir(), "")
	assert.ErrorContains(t, err, "extension must not be empty")

	_, err = FindFilesByExtension(filepath.Join(t.TempDir(), "missing"), ".men")
	assert.Error(t, err)
}
