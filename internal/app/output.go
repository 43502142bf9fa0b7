package app

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/specialistvlad/boreimp/pkg/calcimp"
)

// writeImpedance writes one CSV row per frequency.
func writeImpedance(w io.Writer, res *calcimp.Result) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "freq,imp.real,imp.imag,mag")
	for _, smp := range res.Samples() {
		fmt.Fprintf(bw, "%.6f,%.10E,%.10E,%.10E\n", smp.Frequency, real(smp.Impedance), imag(smp.Impedance), smp.MagnitudeDB)
	}
	return bw.Flush()
}

// writeTuples writes the resolved segments as CSV. Comments are quoted
// when they contain commas.
func writeTuples(w io.Writer, tuples []calcimp.Tuple) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"front", "back", "length", "comment"}); err != nil {
		return err
	}
	for _, t := range tuples {
		row := []string{
			fmt.Sprint(t.FrontRadius),
			fmt.Sprint(t.BackRadius),
			fmt.Sprint(t.Length),
			t.Comment,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
