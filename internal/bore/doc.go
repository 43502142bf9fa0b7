// Package bore holds the resolved geometry model shared by every layer: the
// Segment, the immutable Canonical Bore produced by topology resolution, the
// flat canonical file format, and the typed error taxonomy used across
// parsing, resolution and impedance computation.
//
// All dimensions in this package are millimeters. Conversion to SI units
// happens inside the acoustics engine.
package bore
