package topology

import (
	"context"
	"errors"
	"sort"

	"github.com/specialistvlad/boreimp/internal/bore"
	"github.com/specialistvlad/boreimp/internal/ctxlog"
	"github.com/specialistvlad/boreimp/internal/structured"
)

// Options controls route selection.
type Options struct {
	// Engaged forces the route of a branch by name: true takes the branch
	// group, false the bypass. Other branches take the branch group only
	// when their ratio exceeds one half.
	Engaged map[string]bool
}

// SideRef links a Split or Join marker to its branch. Both markers of a
// pair carry the same Branch, Entry, Exit and Insertion; Partner is the
// item index of the opposite marker.
type SideRef struct {
	// Branch is the block index of the branch group.
	Branch int
	// Entry and Exit are the item indices of the Split and the Join.
	Entry int
	Exit  int
	// Insertion is the item index where the selected route is spliced in.
	Insertion int
	Partner   int
}

type markerKey struct {
	Block int
	Item  int
}

// Route records which way a branch was resolved.
type Route struct {
	Name   string
	Branch bool
	Line   int
}

// Result is the output of one resolution pass.
type Result struct {
	Bore   *bore.Bore
	Routes []Route
	// Dropped counts zero-length placeholders removed from the output.
	Dropped int
}

// resolver holds the state of one Resolve call.
type resolver struct {
	doc   *structured.Document
	opts  Options
	sides map[markerKey]SideRef

	segments []bore.Segment
	routes   []Route
	dropped  int
}

// Resolve validates doc and linearizes its main block.
func Resolve(ctx context.Context, doc *structured.Document, opts Options) (*Result, error) {
	if doc == nil || doc.Main < 0 || doc.Main >= len(doc.Blocks) {
		return nil, bore.Structuref(0, "No MAIN definition found")
	}
	r := &resolver{doc: doc, opts: opts}
	logger := ctxlog.FromContext(ctx)

	if err := r.attachSides(); err != nil {
		return nil, err
	}
	if err := r.verifySides(); err != nil {
		return nil, err
	}
	if err := r.checkCycles(); err != nil {
		return nil, err
	}
	r.warnUnknownValves(ctx)
	if err := r.expand(doc.Main); err != nil {
		return nil, err
	}

	mainBlock := &doc.Blocks[doc.Main]
	term, _ := mainBlock.Terminal()
	b, err := bore.NewWithMouth(r.segments, term, mainBlock.Mouth())
	if err != nil {
		return nil, err
	}

	logger.Debug("Resolved bore topology",
		"segments", b.Len(),
		"routes", len(r.routes),
		"placeholders_dropped", r.dropped,
		"terminal", b.Terminal().String(),
	)
	return &Result{Bore: b, Routes: r.routes, Dropped: r.dropped}, nil
}

// Dump resolves doc and returns the diagnostic tuple list.
func Dump(ctx context.Context, doc *structured.Document, opts Options) ([]bore.Tuple, error) {
	res, err := Resolve(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	return res.Bore.Tuples(), nil
}

// attachSides fills the side table from the pairing worklist. Split and
// Join are handled by the same statement so neither can be left behind.
func (r *resolver) attachSides() error {
	r.sides = make(map[markerKey]SideRef, 2*len(r.doc.Pairings))
	for _, p := range r.doc.Pairings {
		branch, ok := r.doc.Group(p.Name)
		if !ok {
			line := 0
			if p.Block >= 0 && p.Block < len(r.doc.Blocks) && p.Split >= 0 && p.Split < len(r.doc.Blocks[p.Block].Items) {
				line = r.doc.Blocks[p.Block].Items[p.Split].Line
			}
			return bore.Structuref(line, "Undefined reference: `%s`", p.Name)
		}
		side := SideRef{Branch: branch, Entry: p.Split, Exit: p.Join, Insertion: p.Split + 1}
		for _, m := range [...]struct{ at, partner int }{{p.Split, p.Join}, {p.Join, p.Split}} {
			s := side
			s.Partner = m.partner
			r.sides[markerKey{Block: p.Block, Item: m.at}] = s
		}
	}
	return nil
}

// verifySides checks that every marker in the document carries a side
// reference, then that each reference is consistent with its block.
func (r *resolver) verifySides() error {
	for bi := range r.doc.Blocks {
		for ii, it := range r.doc.Blocks[bi].Items {
			if !isMarker(it) {
				continue
			}
			if _, ok := r.sides[markerKey{Block: bi, Item: ii}]; !ok {
				return bore.Structuref(it.Line, "unresolved side reference for %s `%s`", it.Kind, it.Ref)
			}
		}
	}
	for bi := range r.doc.Blocks {
		items := r.doc.Blocks[bi].Items
		for ii, it := range items {
			if !isMarker(it) {
				continue
			}
			side := r.sides[markerKey{Block: bi, Item: ii}]
			if side.Insertion < 0 || side.Insertion > len(items) {
				return bore.Structuref(it.Line, "insertion index %d out of range for `%s` (%d items)", side.Insertion, it.Ref, len(items))
			}
			if side.Entry < 0 || side.Exit >= len(items) || side.Entry >= side.Exit ||
				items[side.Entry].Kind != structured.ItemSplit || items[side.Exit].Kind != structured.ItemJoin {
				return bore.Structuref(it.Line, "inconsistent side reference for `%s`", it.Ref)
			}
		}
	}
	return nil
}

func isMarker(it structured.Item) bool {
	return it.Kind == structured.ItemSplit || it.Kind == structured.ItemJoin
}

func (r *resolver) checkCycles() error {
	names := make([]string, len(r.doc.Blocks))
	for i, b := range r.doc.Blocks {
		names[i] = b.Name
		if b.Main {
			names[i] = "MAIN"
		}
	}
	g := newGraph(names)
	for bi, b := range r.doc.Blocks {
		for _, it := range b.Items {
			if it.Kind != structured.ItemInsert && it.Kind != structured.ItemSplit {
				continue
			}
			to, ok := r.doc.Group(it.Ref)
			if !ok {
				return bore.Structuref(it.Line, "Undefined reference: `%s`", it.Ref)
			}
			g.addEdge(bi, to)
		}
	}
	if err := g.detectCycles(); err != nil {
		var ce *cycleError
		if errors.As(err, &ce) {
			return bore.Structuref(0, "%s", ce.Error())
		}
		return err
	}
	return nil
}

func (r *resolver) warnUnknownValves(ctx context.Context) {
	known := make(map[string]bool, len(r.doc.Pairings))
	for _, p := range r.doc.Pairings {
		known[p.Name] = true
	}
	var unknown []string
	for name := range r.opts.Engaged {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		ctxlog.FromContext(ctx).Warn("Valve settings do not match any BRANCH", "valves", unknown)
	}
}

func (r *resolver) useBranch(name string, ratio float64) bool {
	if on, ok := r.opts.Engaged[name]; ok {
		return on
	}
	return ratio > 0.5
}

// expand appends the active path of block to the output. The reference
// graph is acyclic by now, so recursion terminates.
func (r *resolver) expand(block int) error {
	items := r.doc.Blocks[block].Items
	for i := 0; i < len(items); i++ {
		it := items[i]
		switch it.Kind {
		case structured.ItemSegment:
			if err := r.emit(it); err != nil {
				return err
			}
		case structured.ItemInsert:
			group, _ := r.doc.Group(it.Ref)
			if err := r.expand(group); err != nil {
				return err
			}
		case structured.ItemSplit:
			side := r.sides[markerKey{Block: block, Item: i}]
			branch := r.useBranch(it.Ref, it.Ratio)
			r.routes = append(r.routes, Route{Name: it.Ref, Branch: branch, Line: it.Line})
			if !branch {
				continue
			}
			if err := r.expand(side.Branch); err != nil {
				return err
			}
			// Skip the bypass; the loop increment steps past the Join.
			i = side.Exit
		case structured.ItemJoin, structured.ItemTerminal:
			// Markers and terminators contribute no segments.
		}
	}
	return nil
}

func (r *resolver) emit(it structured.Item) error {
	seg := it.Segment
	if seg.IsPlaceholder() {
		r.dropped++
		return nil
	}
	if seg.FrontRadius == 0 || seg.BackRadius == 0 {
		return bore.Structuref(it.Line, "degenerate segment: zero radius with length %g", seg.Length)
	}
	seg.Terminal = bore.TerminalNone
	r.segments = append(r.segments, seg)
	return nil
}
