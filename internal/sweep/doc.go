// Package sweep evaluates an impedance model over a frequency grid.
//
// Frequencies are independent of each other, so Run spreads them over a
// bounded pool of goroutines. Every worker writes only its own index of
// the output, and the result is identical for any worker count.
package sweep
