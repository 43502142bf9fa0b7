package bore

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadCanonical parses the flat canonical format: one
// "front,back,length[,comment]" line per segment, terminated by OPEN_END,
// CLOSED_END, a legacy "d,0,0" line, or the end of input. Lines after the
// terminator are not part of the active path and are ignored. Zero-length
// junction lines are dropped.
func ReadCanonical(r io.Reader) (*Bore, error) {
	sc := bufio.NewScanner(r)
	var segs []Segment
	term := TerminalNone
	mouth := 0.0
	lineNo := 0

scan:
	for sc.Scan() {
		lineNo++
		line := CleanLine(sc.Text())
		if line == "" {
			continue
		}
		if t, ok := ParseTerminal(strings.ToUpper(line)); ok {
			term = t
			break
		}

		fields := SplitFields(line, 4)
		if len(fields) < 3 {
			return nil, Syntaxf(lineNo, "expected front,back,length[,comment], got %q", line)
		}
		var vals [3]float64
		for i := range vals {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, Syntaxf(lineNo, "field %d %q is not a number", i+1, fields[i])
			}
			vals[i] = v
		}
		if err := CheckDimensions(lineNo, vals[0], vals[1], vals[2]); err != nil {
			return nil, err
		}
		if t, ok := LegacyTerminator(vals[0], vals[1], vals[2]); ok {
			term, mouth = t, vals[0]
			break scan
		}
		if vals[2] == 0 {
			continue
		}
		if vals[0] == 0 || vals[1] == 0 {
			return nil, Structuref(lineNo, "segment has zero radius")
		}

		seg := Segment{FrontRadius: vals[0], BackRadius: vals[1], Length: vals[2]}
		if len(fields) == 4 {
			seg.Comment = fields[3]
		}
		segs = append(segs, seg)
	}
	if err := sc.Err(); err != nil {
		return nil, IO("", err)
	}

	return NewWithMouth(segs, term, mouth)
}

// WriteCanonical writes b in canonical format. Each header line becomes a
// comment line at the top of the output.
func WriteCanonical(w io.Writer, b *Bore, header string) error {
	bw := bufio.NewWriter(w)
	if header != "" {
		for _, l := range strings.Split(header, "\n") {
			fmt.Fprintf(bw, "%c %s\n", CommentChar, l)
		}
	}
	for _, s := range b.segments {
		bw.WriteString(formatNumber(s.FrontRadius))
		bw.WriteByte(',')
		bw.WriteString(formatNumber(s.BackRadius))
		bw.WriteByte(',')
		bw.WriteString(formatNumber(s.Length))
		if s.Comment != "" {
			bw.WriteByte(',')
			bw.WriteString(s.Comment)
		}
		bw.WriteByte('\n')
	}
	if b.explicitMouth() {
		bw.WriteString(formatNumber(b.mouth) + ",0,0")
	} else {
		bw.WriteString(b.Terminal().Keyword())
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

// formatNumber prints the shortest representation that parses back to v.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
