// Package acoustics computes the acoustic input impedance of a Canonical
// Bore with a transmission-line model.
//
// Each segment is a two-port whose transfer matrix relates pressure and
// volume velocity at its two ends. The radiation load at the open end is
// carried back to the input through every segment in turn. Propagation
// may include viscothermal wall losses, and tapers may be modeled with
// section variation, which accounts for the rate of area change and
// subdivides long tapers into short cells.
//
// Bore dimensions are in millimetres; all physics here is SI.
package acoustics
