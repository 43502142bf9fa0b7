package bore

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCanonical(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []Tuple
		terminal Terminal
	}{
		{
			name: "explicit open end",
			input: `# simple tube
5,5,100,lead pipe
5,6,50
OPEN_END
`,
			expected: []Tuple{{5, 5, 100, "lead pipe"}, {5, 6, 50, ""}},
			terminal: TerminalOpen,
		},
		{
			name:     "closed end keyword is case insensitive",
			input:    "5,5,100\nclosed_end\n",
			expected: []Tuple{{5, 5, 100, ""}},
			terminal: TerminalClosed,
		},
		{
			name:     "legacy open terminator",
			input:    "5,5,100\n5,0,0\n",
			expected: []Tuple{{5, 5, 100, ""}},
			terminal: TerminalOpen,
		},
		{
			name:     "legacy closed terminator",
			input:    "5,5,100\n0,0,0\n",
			expected: []Tuple{{5, 5, 100, ""}},
			terminal: TerminalClosed,
		},
		{
			name:     "no terminator defaults to open",
			input:    "5,5,100\n",
			expected: []Tuple{{5, 5, 100, ""}},
			terminal: TerminalOpen,
		},
		{
			name:     "zero length junction is dropped",
			input:    "5,5,100\n5,7,0,step\n7,7,20\nOPEN_END\n",
			expected: []Tuple{{5, 5, 100, ""}, {7, 7, 20, ""}},
			terminal: TerminalOpen,
		},
		{
			name:     "lines after terminator are ignored",
			input:    "5,5,100\nOPEN_END\n9,9,9\n",
			expected: []Tuple{{5, 5, 100, ""}},
			terminal: TerminalOpen,
		},
		{
			name:     "comment keeps inner commas and trailing text is stripped",
			input:    "5,5,100, bell, part one   # note\n",
			expected: []Tuple{{5, 5, 100, "bell, part one"}},
			terminal: TerminalOpen,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := ReadCanonical(strings.NewReader(tc.input))
			require.NoError(t, err)
			if diff := cmp.Diff(tc.expected, b.Tuples()); diff != "" {
				t.Errorf("tuples mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tc.terminal, b.Terminal())
		})
	}
}

func TestReadCanonical_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		kind  error
		msg   string
	}{
		{"too few fields", "5,5\n", ErrSyntax, "expected front,back,length"},
		{"not a number", "5,x,100\n", ErrSyntax, `field 2 "x" is not a number`},
		{"negative length", "5,5,-1\n", ErrValue, "length must not be negative"},
		{"zero radius", "0,5,100\n", ErrStructure, "zero radius"},
		{"empty", "# nothing here\n", ErrStructure, "no segments"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadCanonical(strings.NewReader(tc.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.kind), "unexpected kind: %v", err)
			assert.ErrorContains(t, err, tc.msg)
		})
	}
}

func TestWriteCanonical_RoundTrip(t *testing.T) {
	// --- Arrange ---
	original, err := New([]Segment{
		{FrontRadius: 4.25, BackRadius: 4.25, Length: 120, Comment: "mouthpiece"},
		{FrontRadius: 4.25, BackRadius: 61.5, Length: 300.125},
	}, TerminalClosed)
	require.NoError(t, err)

	// --- Act ---
	var buf bytes.Buffer
	require.NoError(t, WriteCanonical(&buf, original, "generated\nsecond line"))
	reread, err := ReadCanonical(&buf)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, original.Segments(), reread.Segments())
	assert.Equal(t, TerminalClosed, reread.Terminal())
}

func TestReadCanonical_LegacyRadiatingRadius(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		radius float64
	}{
		{"legacy line sets the mouth", "5,5,100\n5,8,50\n12,0,0\n", 12},
		{"keyword radiates at the last back radius", "5,5,100\n5,8,50\nOPEN_END\n", 8},
		{"closed legacy line has no mouth", "5,5,100\n0,0,0\n", 5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := ReadCanonical(strings.NewReader(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.radius, b.TerminalRadius())
		})
	}
}

func TestWriteCanonical_KeepsLegacyRadius(t *testing.T) {
	// --- Arrange ---
	b, err := NewWithMouth([]Segment{{FrontRadius: 5, BackRadius: 8, Length: 50}}, TerminalOpen, 12)
	require.NoError(t, err)

	// --- Act ---
	var buf bytes.Buffer
	require.NoError(t, WriteCanonical(&buf, b, ""))
	reread, err := ReadCanonical(strings.NewReader(buf.String()))

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "5,8,50\n12,0,0\n", buf.String())
	assert.Equal(t, 12.0, reread.TerminalRadius())
}

func TestWriteCanonical_Layout(t *testing.T) {
	b, err := New([]Segment{{FrontRadius: 5, BackRadius: 5, Length: 100, Comment: "tube"}}, TerminalOpen)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCanonical(&buf, b, "header"))

	assert.Equal(t, "# header\n5,5,100,tube\nOPEN_END\n", buf.String())
}
