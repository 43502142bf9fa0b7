package structured

import (
	"github.com/specialistvlad/boreimp/internal/bore"
)

// ItemKind identifies what a block item stands for.
type ItemKind int

const (
	ItemSegment ItemKind = iota + 1
	// ItemInsert splices a group in place.
	ItemInsert
	// ItemSplit and ItemJoin bracket the bypass route of a branch.
	ItemSplit
	ItemJoin
	ItemTerminal
)

func (k ItemKind) String() string {
	switch k {
	case ItemSegment:
		return "segment"
	case ItemInsert:
		return "insert"
	case ItemSplit:
		return "split"
	case ItemJoin:
		return "join"
	case ItemTerminal:
		return "terminal"
	}
	return "unknown"
}

// Item is one entry of a block.
type Item struct {
	Kind ItemKind
	// Segment is set for ItemSegment.
	Segment bore.Segment
	// Terminal is set for ItemTerminal.
	Terminal bore.Terminal
	// Mouth is the radiating radius of a legacy "d,0,0" terminator.
	Mouth float64
	// Ref names the group used by ItemInsert, ItemSplit and ItemJoin.
	Ref string
	// Ratio is the share routed through the branch, for ItemSplit and ItemJoin.
	Ratio float64
	Line  int
}

// Block is a named, ordered sequence of items. The main block has no name.
type Block struct {
	Name  string
	Main  bool
	Items []Item
	Line  int
}

// Terminal returns the terminator of the block when its last item is one.
func (b *Block) Terminal() (bore.Terminal, bool) {
	if n := len(b.Items); n > 0 && b.Items[n-1].Kind == ItemTerminal {
		return b.Items[n-1].Terminal, true
	}
	return bore.TerminalNone, false
}

// Mouth returns the radiating radius carried by the block's terminator,
// or zero when there is none.
func (b *Block) Mouth() float64 {
	if n := len(b.Items); n > 0 && b.Items[n-1].Kind == ItemTerminal {
		return b.Items[n-1].Mouth
	}
	return 0
}

// Pairing is a BRANCH/MERGE pair still waiting for its side references.
// Split and Join are item indices inside Blocks[Block].
type Pairing struct {
	Block int
	Split int
	Join  int
	Name  string
	Ratio float64
}

// Binding records a resolved variable.
type Binding struct {
	Name  string
	Value float64
	Line  int
}

// Document is the unresolved model of one structured file.
type Document struct {
	Blocks   []Block
	Main     int
	Pairings []Pairing
	Bindings []Binding

	groups map[string]int
}

// NewDocument returns an empty document with no main block.
func NewDocument() *Document {
	return &Document{Main: -1, groups: make(map[string]int)}
}

// AddBlock appends b and returns its index. Group names are indexed for
// Group; callers check uniqueness before adding.
func (d *Document) AddBlock(b Block) int {
	idx := len(d.Blocks)
	d.Blocks = append(d.Blocks, b)
	if b.Main {
		d.Main = idx
	} else {
		if d.groups == nil {
			d.groups = make(map[string]int)
		}
		d.groups[b.Name] = idx
	}
	return idx
}

// Group returns the index of the named group.
func (d *Document) Group(name string) (int, bool) {
	idx, ok := d.groups[name]
	return idx, ok
}

// Value returns the value bound to a variable.
func (d *Document) Value(name string) (float64, bool) {
	for _, b := range d.Bindings {
		if b.Name == name {
			return b.Value, true
		}
	}
	return 0, false
}
