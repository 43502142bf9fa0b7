package bore

import (
	"math"
)

// Terminal describes how the active path ends.
type Terminal int

const (
	TerminalNone Terminal = iota
	TerminalOpen
	TerminalClosed
)

const (
	keywordOpenEnd   = "OPEN_END"
	keywordClosedEnd = "CLOSED_END"
)

func (t Terminal) String() string {
	switch t {
	case TerminalOpen:
		return "open"
	case TerminalClosed:
		return "closed"
	}
	return "none"
}

// Keyword returns the file-format line that encodes t.
func (t Terminal) Keyword() string {
	if t == TerminalClosed {
		return keywordClosedEnd
	}
	return keywordOpenEnd
}

// ParseTerminal recognizes an OPEN_END or CLOSED_END keyword.
func ParseTerminal(keyword string) (Terminal, bool) {
	switch keyword {
	case keywordOpenEnd:
		return TerminalOpen, true
	case keywordClosedEnd:
		return TerminalClosed, true
	}
	return TerminalNone, false
}

// LegacyTerminator reports whether a "d,0,0" data line encodes a
// terminator. A positive d is an open end, zero a closed end.
func LegacyTerminator(front, back, length float64) (Terminal, bool) {
	if back != 0 || length != 0 {
		return TerminalNone, false
	}
	if front > 0 {
		return TerminalOpen, true
	}
	return TerminalClosed, true
}

// Segment is a straight or conical duct element. Dimensions are in mm.
type Segment struct {
	FrontRadius float64
	BackRadius  float64
	Length      float64
	Comment     string
	// Terminal is meaningful only on the last segment of a path.
	Terminal Terminal
}

// IsStraight reports whether the segment is cylindrical.
func (s Segment) IsStraight() bool {
	return s.FrontRadius == s.BackRadius
}

// IsPlaceholder reports whether the segment has zero length. Such a segment
// is acoustically inert and never survives into a Canonical Bore.
func (s Segment) IsPlaceholder() bool {
	return s.Length == 0
}

// Tuple returns the diagnostic dump form of the segment.
func (s Segment) Tuple() Tuple {
	return Tuple{FrontRadius: s.FrontRadius, BackRadius: s.BackRadius, Length: s.Length, Comment: s.Comment}
}

// CheckDimensions rejects negative or non-finite dimensions.
func CheckDimensions(line int, front, back, length float64) error {
	for _, v := range [...]struct {
		name string
		val  float64
	}{{"front radius", front}, {"back radius", back}, {"length", length}} {
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) {
			return Valuef(line, "%s is not finite", v.name)
		}
		if v.val < 0 {
			return Valuef(line, "%s must not be negative, got %g", v.name, v.val)
		}
	}
	return nil
}

// Tuple is the (frontRadius, backRadius, length, comment) diagnostic form.
type Tuple struct {
	FrontRadius float64
	BackRadius  float64
	Length      float64
	Comment     string
}
