package topology

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/boreimp/internal/bore"
	"github.com/specialistvlad/boreimp/internal/structured"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const valveBore = `
share = 0
MAIN
  5, 5, 100, lead pipe
  BRANCH, valve1, share
  5, 5, 20, bypass
  MERGE, valve1
  5, 30, 400, bell
END_MAIN
GROUP, valve1
  5, 5, 60, loop in
  5, 5, 0, placeholder
  5, 5, 70, loop out
  OPEN_END
END_GROUP
`

func mustParse(t *testing.T, src string) *structured.Document {
	t.Helper()
	doc, err := structured.Parse(context.Background(), strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

func mustCanonical(t *testing.T, src string) *bore.Bore {
	t.Helper()
	b, err := bore.ReadCanonical(strings.NewReader(src))
	require.NoError(t, err)
	return b
}

func TestResolve_BranchFreeMatchesCanonical(t *testing.T) {
	// --- Arrange ---
	doc := mustParse(t, `
MAIN
  5, 5, 100, lead
  INSERT, mid
  5, 30, 400, bell
END_MAIN
GROUP, mid
  5, 6, 50
  INSERT, inner
END_GROUP
GROUP, inner
  6, 5, 50
END_GROUP
`)
	want := mustCanonical(t, "5,5,100,lead\n5,6,50\n6,5,50\n5,30,400,bell\nOPEN_END\n")

	// --- Act ---
	got, err := Dump(context.Background(), doc, Options{})

	// --- Assert ---
	require.NoError(t, err)
	if diff := cmp.Diff(want.Tuples(), got); diff != "" {
		t.Errorf("tuples mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_RouteSelection(t *testing.T) {
	bypass := []bore.Tuple{
		{FrontRadius: 5, BackRadius: 5, Length: 100, Comment: "lead pipe"},
		{FrontRadius: 5, BackRadius: 5, Length: 20, Comment: "bypass"},
		{FrontRadius: 5, BackRadius: 30, Length: 400, Comment: "bell"},
	}
	branch := []bore.Tuple{
		{FrontRadius: 5, BackRadius: 5, Length: 100, Comment: "lead pipe"},
		{FrontRadius: 5, BackRadius: 5, Length: 60, Comment: "loop in"},
		{FrontRadius: 5, BackRadius: 5, Length: 70, Comment: "loop out"},
		{FrontRadius: 5, BackRadius: 30, Length: 400, Comment: "bell"},
	}

	testCases := []struct {
		name  string
		src   string
		opts  Options
		want  []bore.Tuple
		route bool
	}{
		{"default takes bypass", valveBore, Options{}, bypass, false},
		{"majority ratio takes branch", strings.Replace(valveBore, "share = 0", "share = 0.75", 1), Options{}, branch, true},
		{"half ratio keeps bypass", strings.Replace(valveBore, "share = 0", "share = 0.5", 1), Options{}, bypass, false},
		{"engaged valve", valveBore, Options{Engaged: map[string]bool{"valve1": true}}, branch, true},
		{"released valve overrides ratio", strings.Replace(valveBore, "share = 0", "share = 1", 1), Options{Engaged: map[string]bool{"valve1": false}}, bypass, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Resolve(context.Background(), mustParse(t, tc.src), tc.opts)
			require.NoError(t, err)

			if diff := cmp.Diff(tc.want, res.Bore.Tuples()); diff != "" {
				t.Errorf("tuples mismatch (-want +got):\n%s", diff)
			}
			require.Len(t, res.Routes, 1)
			assert.Equal(t, Route{Name: "valve1", Branch: tc.route, Line: 5}, res.Routes[0])
			assert.Equal(t, bore.TerminalOpen, res.Bore.Terminal(), "group terminators are ignored")
		})
	}
}

func TestResolve_NoMarkerArtifacts(t *testing.T) {
	for _, engaged := range []bool{false, true} {
		res, err := Resolve(context.Background(), mustParse(t, valveBore), Options{Engaged: map[string]bool{"valve1": engaged}})
		require.NoError(t, err)

		for i, seg := range res.Bore.Segments() {
			assert.NotZero(t, seg.FrontRadius, "segment %d", i)
			assert.NotZero(t, seg.BackRadius, "segment %d", i)
			assert.NotZero(t, seg.Length, "segment %d", i)
		}
		if engaged {
			assert.Equal(t, 1, res.Dropped)
		}
	}
}

func TestResolve_NestedBranches(t *testing.T) {
	doc := mustParse(t, `
MAIN
  4, 4, 10
  BRANCH, outer
  4, 4, 1
  MERGE, outer
  CLOSED_END
END_MAIN
GROUP, outer
  4, 4, 2
  BRANCH, inner
  4, 4, 3
  MERGE, inner
END_GROUP
GROUP, inner
  4, 4, 4
END_GROUP
`)
	res, err := Resolve(context.Background(), doc, Options{Engaged: map[string]bool{"outer": true, "inner": true}})
	require.NoError(t, err)

	var lengths []float64
	for _, seg := range res.Bore.Segments() {
		lengths = append(lengths, seg.Length)
	}
	assert.Equal(t, []float64{10, 2, 4}, lengths)
	assert.Equal(t, bore.TerminalClosed, res.Bore.Terminal())
	assert.Len(t, res.Routes, 2)
}

func TestResolve_LegacyMouthReachesBore(t *testing.T) {
	// --- Arrange ---
	doc := mustParse(t, "MAIN\n5, 5, 100\nINSERT, bell\n40, 0, 0\nEND_MAIN\nGROUP, bell\n5, 30, 200\nEND_GROUP\n")
	canonical := mustCanonical(t, "5,5,100\n5,30,200\n40,0,0\n")

	// --- Act ---
	res, err := Resolve(context.Background(), doc, Options{})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 40.0, res.Bore.TerminalRadius())
	assert.Equal(t, canonical.TerminalRadius(), res.Bore.TerminalRadius())
}

func TestResolve_Deterministic(t *testing.T) {
	render := func() []byte {
		res, err := Resolve(context.Background(), mustParse(t, valveBore), Options{Engaged: map[string]bool{"valve1": true}})
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, bore.WriteCanonical(&buf, res.Bore, ""))
		return buf.Bytes()
	}
	assert.Equal(t, render(), render())
}

func TestResolve_Errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		msg  string
	}{
		{
			name: "cycle through groups",
			src:  "MAIN\nINSERT, a\nEND_MAIN\nGROUP, a\nINSERT, b\nEND_GROUP\nGROUP, b\n1,1,1\nINSERT, a\nEND_GROUP\n",
			msg:  "cyclic reference a -> b -> a",
		},
		{
			name: "branch contains itself",
			src:  "MAIN\nBRANCH, a\nMERGE, a\nEND_MAIN\nGROUP, a\nBRANCH, a\nMERGE, a\nEND_GROUP\n",
			msg:  "cyclic reference a -> a",
		},
		{
			name: "zero radius with length",
			src:  "MAIN\n0, 5, 10\nEND_MAIN\n",
			msg:  "2: structure error: degenerate segment",
		},
		{
			name: "nothing left",
			src:  "MAIN\n5, 5, 0\nEND_MAIN\n",
			msg:  "bore has no segments",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(context.Background(), mustParse(t, tc.src), Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, bore.ErrStructure)
			assert.ErrorContains(t, err, tc.msg)
		})
	}
}

// handBuilt returns a document whose main block holds a segment followed by
// the given markers for branch "v".
func handBuilt(kinds ...structured.ItemKind) *structured.Document {
	doc := structured.NewDocument()
	main := structured.Block{Main: true, Line: 1}
	main.Items = append(main.Items, structured.Item{
		Kind:    structured.ItemSegment,
		Segment: bore.Segment{FrontRadius: 1, BackRadius: 1, Length: 1},
		Line:    2,
	})
	for i, k := range kinds {
		main.Items = append(main.Items, structured.Item{Kind: k, Ref: "v", Line: 3 + i})
	}
	doc.AddBlock(main)
	doc.AddBlock(structured.Block{Name: "v", Line: 10})
	return doc
}

func TestResolve_SideReferenceChecks(t *testing.T) {
	t.Run("join without side reference", func(t *testing.T) {
		doc := handBuilt(structured.ItemSplit, structured.ItemJoin)
		// Only the split is known to the worklist.
		doc.Pairings = []structured.Pairing{{Block: 0, Split: 1, Join: 5, Name: "v"}}

		_, err := Resolve(context.Background(), doc, Options{})
		assert.ErrorIs(t, err, bore.ErrStructure)
		assert.ErrorContains(t, err, "unresolved side reference for join `v`")
	})

	t.Run("split without side reference", func(t *testing.T) {
		doc := handBuilt(structured.ItemSplit, structured.ItemJoin)

		_, err := Resolve(context.Background(), doc, Options{})
		assert.ErrorContains(t, err, "3: structure error: unresolved side reference for split `v`")
	})

	t.Run("insertion index out of range", func(t *testing.T) {
		doc := handBuilt(structured.ItemJoin)
		doc.Pairings = []structured.Pairing{{Block: 0, Split: 3, Join: 1, Name: "v"}}

		_, err := Resolve(context.Background(), doc, Options{})
		assert.ErrorIs(t, err, bore.ErrStructure)
		assert.ErrorContains(t, err, "insertion index 4 out of range for `v` (2 items)")
	})

	t.Run("well formed pairing", func(t *testing.T) {
		doc := handBuilt(structured.ItemSplit, structured.ItemJoin)
		doc.Pairings = []structured.Pairing{{Block: 0, Split: 1, Join: 2, Name: "v"}}

		res, err := Resolve(context.Background(), doc, Options{})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Bore.Len())
	})

	t.Run("missing main", func(t *testing.T) {
		_, err := Resolve(context.Background(), structured.NewDocument(), Options{})
		assert.ErrorContains(t, err, "No MAIN definition found")
	})
}

func TestGraph_DetectCycles(t *testing.T) {
	t.Run("acyclic", func(t *testing.T) {
		g := newGraph([]string{"MAIN", "a", "b"})
		g.addEdge(0, 1)
		g.addEdge(0, 2)
		g.addEdge(1, 2)
		assert.NoError(t, g.detectCycles())
	})

	t.Run("cycle in a disjoint component", func(t *testing.T) {
		g := newGraph([]string{"MAIN", "x", "y", "z"})
		g.addEdge(1, 2)
		g.addEdge(2, 3)
		g.addEdge(3, 2)
		assert.EqualError(t, g.detectCycles(), "cyclic reference y -> z -> y")
	})
}
