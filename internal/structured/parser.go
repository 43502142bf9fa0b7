package structured

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/boreimp/internal/bore"
	"github.com/specialistvlad/boreimp/internal/ctxlog"
	"github.com/specialistvlad/boreimp/internal/expr"
)

const (
	kwMain     = "MAIN"
	kwEndMain  = "END_MAIN"
	kwGroup    = "GROUP"
	kwEndGroup = "END_GROUP"
	kwInsert   = "INSERT"
	kwBranch   = "BRANCH"
	kwMerge    = "MERGE"
)

func isKeyword(s string) bool {
	switch strings.ToUpper(s) {
	case kwMain, kwEndMain, kwGroup, kwEndGroup, kwInsert, kwBranch, kwMerge:
		return true
	}
	_, ok := bore.ParseTerminal(strings.ToUpper(s))
	return ok
}

// frame is an open block together with the item indices of its BRANCH
// markers still waiting for a MERGE.
type frame struct {
	block    int
	branches []int
}

// parser is the explicit state of one Parse call.
type parser struct {
	doc   *Document
	vars  *expr.Table
	stack []frame
	line  int
}

// Parse reads a structured bore document. All numeric fields are evaluated
// and every structural rule that does not need the resolver is checked
// before it returns.
func Parse(ctx context.Context, r io.Reader) (*Document, error) {
	return ParseWith(ctx, r, nil)
}

// ParseWith is Parse with a caller supplied evaluator. A nil evaluator
// selects the default one.
func ParseWith(ctx context.Context, r io.Reader, e *expr.Evaluator) (*Document, error) {
	p := &parser{doc: NewDocument(), vars: expr.NewTable(e)}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		p.line++
		text := bore.CleanLine(sc.Text())
		if text == "" {
			continue
		}
		if err := p.parseLine(text); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, bore.IO("", err)
	}
	if err := p.finish(); err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Debug("Parsed structured bore",
		"blocks", len(p.doc.Blocks),
		"pairings", len(p.doc.Pairings),
		"variables", len(p.doc.Bindings),
	)
	return p.doc, nil
}

func (p *parser) parseLine(text string) error {
	fields := bore.SplitFields(text, 0)
	head := fields[0]
	// Allow "GROUP name" as well as "GROUP, name".
	if sp := strings.IndexAny(head, " \t"); sp > 0 && isKeyword(head[:sp]) {
		fields = append([]string{head[:sp], strings.TrimSpace(head[sp:])}, fields[1:]...)
		head = fields[0]
	}
	args := fields[1:]

	switch kw := strings.ToUpper(head); kw {
	case kwMain:
		return p.beginMain(args)
	case kwGroup:
		return p.beginGroup(args)
	case kwEndMain:
		return p.end(true, args)
	case kwEndGroup:
		return p.end(false, args)
	case kwInsert:
		return p.insert(args)
	case kwBranch:
		return p.branch(args)
	case kwMerge:
		return p.merge(args)
	default:
		if term, ok := bore.ParseTerminal(kw); ok {
			if len(args) > 0 {
				return bore.Syntaxf(p.line, "%s takes no arguments", kw)
			}
			return p.appendItem(Item{Kind: ItemTerminal, Terminal: term, Line: p.line})
		}
	}

	if name, src, ok := splitBinding(text); ok {
		return p.bind(name, src)
	}
	return p.segment(text)
}

// splitBinding recognizes "name = expression". Comparison operators are
// not mistaken for an assignment.
func splitBinding(text string) (name, src string, ok bool) {
	i := strings.IndexByte(text, '=')
	if i <= 0 || (i+1 < len(text) && text[i+1] == '=') {
		return "", "", false
	}
	if strings.ContainsRune("!<>", rune(text[i-1])) {
		return "", "", false
	}
	name = strings.TrimSpace(text[:i])
	if !expr.ValidName(name) {
		return "", "", false
	}
	return name, strings.TrimSpace(text[i+1:]), true
}

func (p *parser) bind(name, src string) error {
	if src == "" {
		return bore.Syntaxf(p.line, "missing expression for %q", name)
	}
	v, err := p.vars.Bind(name, src)
	if err != nil {
		return bore.Expression(p.line, src, err)
	}
	p.doc.Bindings = append(p.doc.Bindings, Binding{Name: name, Value: v, Line: p.line})
	return nil
}

func (p *parser) eval(src string) (float64, error) {
	v, err := p.vars.Eval(src)
	if err != nil {
		return 0, bore.Expression(p.line, src, err)
	}
	return v, nil
}

func (p *parser) top() *frame {
	if len(p.stack) == 0 {
		return nil
	}
	return &p.stack[len(p.stack)-1]
}

func (p *parser) describe(block int) string {
	b := &p.doc.Blocks[block]
	if b.Main {
		return kwMain
	}
	return fmt.Sprintf("GROUP `%s`", b.Name)
}

func (p *parser) beginMain(args []string) error {
	if len(args) > 0 {
		return bore.Syntaxf(p.line, "MAIN takes no arguments")
	}
	if p.doc.Main >= 0 {
		return bore.Structuref(p.line, "Multiple MAIN definitions found")
	}
	if f := p.top(); f != nil {
		return bore.Structuref(p.line, "MAIN cannot be nested inside %s", p.describe(f.block))
	}
	idx := p.doc.AddBlock(Block{Main: true, Line: p.line})
	p.stack = append(p.stack, frame{block: idx})
	return nil
}

func (p *parser) beginGroup(args []string) error {
	name, err := p.nameArg(kwGroup, args, 1)
	if err != nil {
		return err
	}
	if _, dup := p.doc.Group(name); dup {
		return bore.Structuref(p.line, "Duplicate GROUP name: `%s`", name)
	}
	idx := p.doc.AddBlock(Block{Name: name, Line: p.line})
	p.stack = append(p.stack, frame{block: idx})
	return nil
}

func (p *parser) end(main bool, args []string) error {
	kw := kwEndGroup
	if main {
		kw = kwEndMain
	}
	if len(args) > 0 && args[0] != "" {
		return bore.Syntaxf(p.line, "%s takes no arguments", kw)
	}
	f := p.top()
	if f == nil || p.doc.Blocks[f.block].Main != main {
		return bore.Structuref(p.line, "%s without matching %s", kw, strings.TrimPrefix(kw, "END_"))
	}
	if n := len(f.branches); n > 0 {
		it := p.doc.Blocks[f.block].Items[f.branches[n-1]]
		return bore.Structuref(it.Line, "Cannot find joining point for `%s`", it.Ref)
	}
	p.stack = p.stack[:len(p.stack)-1]
	return nil
}

func (p *parser) insert(args []string) error {
	name, err := p.nameArg(kwInsert, args, 1)
	if err != nil {
		return err
	}
	return p.appendItem(Item{Kind: ItemInsert, Ref: name, Line: p.line})
}

func (p *parser) branch(args []string) error {
	name, err := p.nameArg(kwBranch, args, 2)
	if err != nil {
		return err
	}
	ratio, err := p.ratioArg(args)
	if err != nil {
		return err
	}
	f := p.top()
	if f != nil {
		for _, at := range f.branches {
			if p.doc.Blocks[f.block].Items[at].Ref == name {
				return bore.Structuref(p.line, "BRANCH `%s` is already open", name)
			}
		}
	}
	if err := p.appendItem(Item{Kind: ItemSplit, Ref: name, Ratio: ratio, Line: p.line}); err != nil {
		return err
	}
	f.branches = append(f.branches, len(p.doc.Blocks[f.block].Items)-1)
	return nil
}

func (p *parser) merge(args []string) error {
	name, err := p.nameArg(kwMerge, args, 2)
	if err != nil {
		return err
	}
	f := p.top()
	if f == nil || !p.isOpen(f, name) {
		return bore.Structuref(p.line, "MERGE without matching BRANCH: `%s`", name)
	}
	block := &p.doc.Blocks[f.block]
	split := f.branches[len(f.branches)-1]
	if open := block.Items[split].Ref; open != name {
		// Routes must nest; closing an outer branch first would cross them.
		return bore.Structuref(block.Items[split].Line, "Cannot find joining point for `%s`", open)
	}

	ratio := block.Items[split].Ratio
	if len(args) > 1 {
		if ratio, err = p.ratioArg(args); err != nil {
			return err
		}
	}
	if err := p.appendItem(Item{Kind: ItemJoin, Ref: name, Ratio: ratio, Line: p.line}); err != nil {
		return err
	}
	f.branches = f.branches[:len(f.branches)-1]
	p.doc.Pairings = append(p.doc.Pairings, Pairing{
		Block: f.block,
		Split: split,
		Join:  len(block.Items) - 1,
		Name:  name,
		Ratio: block.Items[split].Ratio,
	})
	return nil
}

func (p *parser) isOpen(f *frame, name string) bool {
	for _, at := range f.branches {
		if p.doc.Blocks[f.block].Items[at].Ref == name {
			return true
		}
	}
	return false
}

func (p *parser) segment(text string) error {
	fields := bore.SplitFields(text, 4)
	if len(fields) < 3 {
		return bore.Syntaxf(p.line, "unrecognized line %q", text)
	}
	var vals [3]float64
	for i := range vals {
		v, err := p.eval(fields[i])
		if err != nil {
			return err
		}
		vals[i] = v
	}
	if err := bore.CheckDimensions(p.line, vals[0], vals[1], vals[2]); err != nil {
		return err
	}
	if term, ok := bore.LegacyTerminator(vals[0], vals[1], vals[2]); ok {
		return p.appendItem(Item{Kind: ItemTerminal, Terminal: term, Mouth: vals[0], Line: p.line})
	}

	seg := bore.Segment{FrontRadius: vals[0], BackRadius: vals[1], Length: vals[2]}
	if len(fields) == 4 {
		seg.Comment = fields[3]
	}
	return p.appendItem(Item{Kind: ItemSegment, Segment: seg, Line: p.line})
}

func (p *parser) appendItem(it Item) error {
	f := p.top()
	if f == nil {
		return bore.Structuref(p.line, "%s outside of MAIN or GROUP", it.Kind)
	}
	block := &p.doc.Blocks[f.block]
	if term, ok := block.Terminal(); ok {
		return bore.Structuref(p.line, "%s after %s in %s", it.Kind, term.Keyword(), p.describe(f.block))
	}
	if it.Kind == ItemTerminal && len(f.branches) > 0 {
		open := block.Items[f.branches[len(f.branches)-1]]
		return bore.Structuref(open.Line, "Cannot find joining point for `%s`", open.Ref)
	}
	block.Items = append(block.Items, it)
	return nil
}

func (p *parser) nameArg(kw string, args []string, maxArgs int) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", bore.Syntaxf(p.line, "%s requires a name", kw)
	}
	if len(args) > maxArgs {
		return "", bore.Syntaxf(p.line, "too many arguments for %s", kw)
	}
	if !expr.ValidName(args[0]) {
		return "", bore.Syntaxf(p.line, "invalid %s name %q", kw, args[0])
	}
	return args[0], nil
}

func (p *parser) ratioArg(args []string) (float64, error) {
	if len(args) < 2 || args[1] == "" {
		return 0, nil
	}
	ratio, err := p.eval(args[1])
	if err != nil {
		return 0, err
	}
	if ratio < 0 || ratio > 1 {
		return 0, bore.Valuef(p.line, "branch ratio must be within [0, 1], got %g", ratio)
	}
	return ratio, nil
}

func (p *parser) finish() error {
	if f := p.top(); f != nil {
		return bore.Structuref(p.doc.Blocks[f.block].Line, "%s is not closed", p.describe(f.block))
	}
	if p.doc.Main < 0 {
		return bore.Structuref(0, "No MAIN definition found")
	}
	for bi := range p.doc.Blocks {
		for _, it := range p.doc.Blocks[bi].Items {
			switch it.Kind {
			case ItemInsert, ItemSplit, ItemJoin:
				if _, ok := p.doc.Group(it.Ref); !ok {
					return bore.Structuref(it.Line, "Undefined reference: `%s`", it.Ref)
				}
			}
		}
	}
	return nil
}
