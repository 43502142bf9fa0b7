package calcimp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/boreimp/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quickOptions() Options {
	opts := DefaultOptions()
	opts.MaxFrequency = 1200
	opts.Step = 10
	return opts
}

func TestComputeImpedance_StructuredMatchesCanonical(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"horn.xmen":   testutil.ValveStructured,
		"open.men":    testutil.ValveCanonicalOpen,
		"pressed.men": testutil.ValveCanonicalPressed,
	})
	ctx := context.Background()

	testCases := []struct {
		name      string
		canonical string
		valves    map[string]bool
	}{
		{"valve released", "open.men", nil},
		{"valve pressed", "pressed.men", map[string]bool{"valve1": true}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			opts := quickOptions()
			opts.Valves = tc.valves

			// --- Act ---
			got, err := ComputeImpedance(ctx, filepath.Join(dir, "horn.xmen"), opts)
			require.NoError(t, err)
			want, err := ComputeImpedance(ctx, filepath.Join(dir, tc.canonical), opts)
			require.NoError(t, err)

			// --- Assert ---
			assert.Equal(t, want.Frequency, got.Frequency)
			testutil.AssertAllClose(t, want.Real, got.Real, 1e-5, 1e-8, "real")
			testutil.AssertAllClose(t, want.Imag, got.Imag, 1e-5, 1e-8, "imag")
			testutil.AssertAllClose(t, want.MagnitudeDB, got.MagnitudeDB, 1e-5, 1e-8, "magnitude")
		})
	}
}

func TestComputeImpedance_ValveChangesResponse(t *testing.T) {
	path := testutil.WriteFile(t, "horn.xmen", testutil.ValveStructured)
	opts := quickOptions()

	open, err := ComputeImpedance(context.Background(), path, opts)
	require.NoError(t, err)
	opts.Valves = map[string]bool{"valve1": true}
	pressed, err := ComputeImpedance(context.Background(), path, opts)
	require.NoError(t, err)

	assert.NotEqual(t, open.MagnitudeDB, pressed.MagnitudeDB)
}

func TestComputeImpedance_Repeatable(t *testing.T) {
	path := testutil.WriteFile(t, "horn.xmen", testutil.ValveStructured)
	opts := quickOptions()
	opts.SectionVariation = true

	first, err := ComputeImpedance(context.Background(), path, opts)
	require.NoError(t, err)
	second, err := ComputeImpedance(context.Background(), path, opts)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated sweep differs (-first +second):\n%s", diff)
	}
}

func TestComputeImpedance_PointCount(t *testing.T) {
	path := testutil.WriteFile(t, "open.men", testutil.ValveCanonicalOpen)
	opts := quickOptions()
	opts.Points = 64

	res, err := ComputeImpedance(context.Background(), path, opts)
	require.NoError(t, err)

	require.Equal(t, 64, res.Len())
	assert.Len(t, res.Real, 64)
	assert.Len(t, res.Imag, 64)
	assert.Len(t, res.MagnitudeDB, 64)
	assert.Greater(t, res.Frequency[0], 0.0)
	assert.Equal(t, opts.MaxFrequency, res.Frequency[63])
	assert.IsIncreasing(t, res.Frequency)
}

func TestDumpCanonicalSegments(t *testing.T) {
	t.Run("variables resolve into fields", func(t *testing.T) {
		path := testutil.WriteFile(t, "vars.xmen", `
v1 = 1
v2 = 1 - v1
radius = 10/2
MAIN
  radius, radius, 100 * v1, straight
  BRANCH, loop, v2
  radius, radius, 5
  MERGE, loop
END_MAIN
GROUP, loop
  radius, radius, 50
END_GROUP
`)
		got, err := DumpCanonicalSegments(context.Background(), path, DefaultOptions())
		require.NoError(t, err)

		want := []Tuple{
			{FrontRadius: 5, BackRadius: 5, Length: 100, Comment: "straight"},
			{FrontRadius: 5, BackRadius: 5, Length: 5},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("tuples mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("branch free structured equals canonical", func(t *testing.T) {
		dir := testutil.WriteFiles(t, map[string]string{
			"a.xmen": "MAIN\n  3, 3, 10, a\n  INSERT, g\n  CLOSED_END\nEND_MAIN\nGROUP, g\n  3, 4, 20\nEND_GROUP\n",
			"a.men":  "3,3,10,a\n3,4,20\nCLOSED_END\n",
		})
		structured, err := DumpCanonicalSegments(context.Background(), filepath.Join(dir, "a.xmen"), DefaultOptions())
		require.NoError(t, err)
		canonical, err := DumpCanonicalSegments(context.Background(), filepath.Join(dir, "a.men"), DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, canonical, structured)
	})
}

func TestConvertStructuredToCanonical(t *testing.T) {
	// --- Arrange ---
	dir := testutil.WriteFiles(t, map[string]string{"horn.xmen": testutil.ValveStructured})
	in := filepath.Join(dir, "horn.xmen")
	out := filepath.Join(dir, "horn.men")
	opts := DefaultOptions()
	opts.Valves = map[string]bool{"valve1": true}

	// --- Act ---
	err := ConvertStructuredToCanonical(context.Background(), in, out, opts)

	// --- Assert ---
	require.NoError(t, err)
	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "# converted from horn.xmen\n"))
	assert.True(t, strings.HasSuffix(string(content), "OPEN_END\n"))

	converted, err := DumpCanonicalSegments(context.Background(), out, DefaultOptions())
	require.NoError(t, err)
	original, err := DumpCanonicalSegments(context.Background(), in, opts)
	require.NoError(t, err)
	assert.Equal(t, original, converted)
}

func TestConvertStructuredToCanonical_DefaultOutput(t *testing.T) {
	// --- Arrange ---
	dir := testutil.WriteFiles(t, map[string]string{"horn.xmen": testutil.ValveStructured})
	in := filepath.Join(dir, "horn.xmen")

	// --- Act ---
	err := ConvertStructuredToCanonical(context.Background(), in, "", DefaultOptions())

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "horn.men"), CanonicalPath(in))
	content, err := os.ReadFile(filepath.Join(dir, "horn.men"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "# converted from horn.xmen\n"))
}

func TestConvertStructuredToCanonical_RefusesToOverwriteInput(t *testing.T) {
	path := testutil.WriteFile(t, "plain.men", testutil.ValveCanonicalOpen)

	err := ConvertStructuredToCanonical(context.Background(), path, "", DefaultOptions())

	assert.ErrorIs(t, err, ErrValue)
	content, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, testutil.ValveCanonicalOpen, string(content))
}

func TestConvertStructuredToCanonical_FailureLeavesNoFile(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"bad.xmen": "MAIN\nINSERT, ghost\nEND_MAIN\n"})
	out := filepath.Join(dir, "bad.men")

	err := ConvertStructuredToCanonical(context.Background(), filepath.Join(dir, "bad.xmen"), out, DefaultOptions())
	assert.ErrorIs(t, err, ErrStructure)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestErrors(t *testing.T) {
	testCases := []struct {
		name    string
		file    string
		content string
		kind    error
		msg     string
	}{
		{"duplicate group", "a.xmen", "MAIN\nEND_MAIN\nGROUP, g\nEND_GROUP\nGROUP, g\nEND_GROUP\n", ErrStructure, "a.xmen:5: structure error: Duplicate GROUP name: `g`"},
		{"multiple main", "a.xmen", "MAIN\nEND_MAIN\nMAIN\nEND_MAIN\n", ErrStructure, "Multiple MAIN"},
		{"no main", "a.xmen", "GROUP, g\nEND_GROUP\n", ErrStructure, "No MAIN"},
		{"bad expression", "a.xmen", "MAIN\n1, nope, 3\nEND_MAIN\n", ErrExpression, "unknown identifier"},
		{"bad canonical line", "a.men", "1,2\n", ErrSyntax, "a.men:1: syntax error"},
		{"negative radius", "a.men", "-1,2,3\n", ErrValue, "front radius must not be negative"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := testutil.WriteFile(t, tc.file, tc.content)
			_, err := ComputeImpedance(context.Background(), path, quickOptions())
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.kind)
			assert.ErrorContains(t, err, tc.msg)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := ComputeImpedance(context.Background(), filepath.Join(t.TempDir(), "nope.men"), quickOptions())
		assert.ErrorIs(t, err, ErrIO)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid sweep", func(t *testing.T) {
		path := testutil.WriteFile(t, "a.men", testutil.ValveCanonicalOpen)
		opts := quickOptions()
		opts.Step = 0
		_, err := ComputeImpedance(context.Background(), path, opts)
		assert.ErrorIs(t, err, ErrValue)
	})
}

func TestParseBore_FormatOverride(t *testing.T) {
	content := []byte("MAIN\n2, 2, 10\nEND_MAIN\n")
	opts := DefaultOptions()

	b, err := ParseBore(context.Background(), "input.txt", content, opts)
	require.NoError(t, err, "MAIN is sniffed as structured")
	assert.Equal(t, 1, b.Len())

	opts.Format = FormatCanonical
	_, err = ParseBore(context.Background(), "input.txt", content, opts)
	assert.ErrorIs(t, err, ErrSyntax)
}
