package bore

import (
	"bufio"
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// Format names one of the two input dialects.
type Format int

const (
	FormatCanonical Format = iota + 1
	FormatStructured
)

// File extensions conventionally used by each dialect.
const (
	CanonicalExt  = ".men"
	StructuredExt = ".xmen"
)

func (f Format) String() string {
	switch f {
	case FormatCanonical:
		return "canonical"
	case FormatStructured:
		return "structured"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// ParseFormat accepts a format name or its file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "canonical", "men":
		return FormatCanonical, nil
	case "structured", "xmen":
		return FormatStructured, nil
	}
	return 0, fmt.Errorf("unknown bore format %q", s)
}

// DetectFormat decides the dialect once, from the file extension when it is
// conclusive, otherwise by looking for a MAIN block delimiter in content.
func DetectFormat(path string, content []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case StructuredExt:
		return FormatStructured
	case CanonicalExt:
		return FormatCanonical
	}

	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		if strings.EqualFold(CleanLine(sc.Text()), "MAIN") {
			return FormatStructured
		}
	}
	return FormatCanonical
}
