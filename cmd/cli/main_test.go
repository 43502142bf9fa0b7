package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/boreimp/internal/cli"
	"github.com/specialistvlad/boreimp/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, errOut, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, errOut.String(), "Usage:", "Expected help text on the diagnostic writer")
	require.Empty(t, out.String())
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"--this-is-not-a-valid-flag"}

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, args)

	// --- Assert ---
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_Sweep(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := testutil.WriteFile(t, "horn.xmen", testutil.ValveStructured)
	args := []string{"-max-freq", "200", "-points", "4", "-valve", "valve1=on", path}
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, errOut, args)

	// --- Assert ---
	require.NoError(t, err)
	rows := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, rows, 5)
	assert.Equal(t, "freq,imp.real,imp.imag,mag", rows[0])
	assert.True(t, strings.HasPrefix(rows[1], "50.000000,"), rows[1])
	assert.True(t, strings.HasPrefix(rows[4], "200.000000,"), rows[4])
	assert.Contains(t, errOut.String(), "Computed impedance.")
}

func TestRun_DumpAndConvert(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := testutil.WriteFiles(t, map[string]string{"horn.xmen": testutil.ValveStructured})
	in := filepath.Join(dir, "horn.xmen")
	converted := filepath.Join(dir, "horn.men")

	// --- Act ---
	require.NoError(t, run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"-convert", converted, in}))
	dumpOut := &bytes.Buffer{}
	err := run(context.Background(), dumpOut, &bytes.Buffer{}, []string{"-dump", converted})

	// --- Assert ---
	require.NoError(t, err)
	content, err := os.ReadFile(converted)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "# converted from horn.xmen"))
	assert.Contains(t, dumpOut.String(), "5.75,5.75,25,valve bypass")
}

func TestRun_BoreError(t *testing.T) {
	t.Parallel()

	path := testutil.WriteFile(t, "bad.xmen", "MAIN\nINSERT, ghost\nEND_MAIN\n")

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{path})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined reference: `ghost`")
}
