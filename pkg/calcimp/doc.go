// Package calcimp computes the acoustic input impedance of a wind
// instrument bore described in a file.
//
// Two dialects are read. The canonical format lists one segment per line
// as "frontRadius,backRadius,length[,comment]" in millimetres and ends
// with OPEN_END or CLOSED_END. The structured format adds variables,
// expressions, reusable GROUP blocks and BRANCH/MERGE routes such as valve
// loops; it is resolved to the canonical form before any computation.
//
//	res, err := calcimp.ComputeImpedance(ctx, "horn.xmen", calcimp.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	for i, f := range res.Frequency {
//		fmt.Println(f, res.Real[i], res.Imag[i], res.MagnitudeDB[i])
//	}
//
// Every failure is a *bore.Error whose kind can be tested with errors.Is
// against ErrSyntax, ErrExpression, ErrStructure, ErrValue and ErrIO.
package calcimp
