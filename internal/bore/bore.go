package bore

import "math"

// Bore is the Canonical Bore: an ordered, marker-free sequence of strictly
// positive segments from the input end to the radiating end. A Bore is
// immutable once created.
type Bore struct {
	segments []Segment
	mouth    float64
}

// New validates segs and builds a Bore whose last segment carries term.
// TerminalNone defaults to an open end. The input slice is copied.
func New(segs []Segment, term Terminal) (*Bore, error) {
	return NewWithMouth(segs, term, 0)
}

// NewWithMouth is New with an explicit radiating radius in mm, as set by
// a legacy "d,0,0" terminator. Zero radiates at the last back radius;
// closed ends ignore it.
func NewWithMouth(segs []Segment, term Terminal, mouth float64) (*Bore, error) {
	if len(segs) == 0 {
		return nil, Structuref(0, "bore has no segments")
	}
	if term == TerminalNone {
		term = TerminalOpen
	}

	out := make([]Segment, len(segs))
	for i, s := range segs {
		if err := CheckDimensions(0, s.FrontRadius, s.BackRadius, s.Length); err != nil {
			return nil, err
		}
		if s.FrontRadius == 0 || s.BackRadius == 0 || s.Length == 0 {
			return nil, Structuref(0, "degenerate segment %d (%g,%g,%g) in bore", i, s.FrontRadius, s.BackRadius, s.Length)
		}
		s.Terminal = TerminalNone
		out[i] = s
	}
	out[len(out)-1].Terminal = term

	if math.IsNaN(mouth) || math.IsInf(mouth, 0) || mouth < 0 {
		return nil, Valuef(0, "radiating radius must be a finite non-negative number, got %g", mouth)
	}
	if term != TerminalOpen {
		mouth = 0
	}
	return &Bore{segments: out, mouth: mouth}, nil
}

// Len returns the number of segments.
func (b *Bore) Len() int {
	return len(b.segments)
}

// Segment returns the i-th segment, counted from the input end.
func (b *Bore) Segment(i int) Segment {
	return b.segments[i]
}

// Segments returns a copy of the segment sequence.
func (b *Bore) Segments() []Segment {
	out := make([]Segment, len(b.segments))
	copy(out, b.segments)
	return out
}

// Terminal returns how the bore ends.
func (b *Bore) Terminal() Terminal {
	return b.segments[len(b.segments)-1].Terminal
}

// TerminalRadius returns the radius at the radiating end.
func (b *Bore) TerminalRadius() float64 {
	if b.mouth > 0 {
		return b.mouth
	}
	return b.segments[len(b.segments)-1].BackRadius
}

// explicitMouth reports whether the radiating radius differs from the
// last back radius.
func (b *Bore) explicitMouth() bool {
	return b.mouth > 0 && b.mouth != b.segments[len(b.segments)-1].BackRadius
}

// TotalLength returns the summed length of every segment.
func (b *Bore) TotalLength() float64 {
	var l float64
	for _, s := range b.segments {
		l += s.Length
	}
	return l
}

// Tuples returns the diagnostic dump of the bore.
func (b *Bore) Tuples() []Tuple {
	out := make([]Tuple, len(b.segments))
	for i, s := range b.segments {
		out[i] = s.Tuple()
	}
	return out
}
