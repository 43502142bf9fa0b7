// Package topology resolves a structured Document into a Canonical Bore.
//
// Resolution runs in three steps: side references are attached to every
// Split and Join marker from the parser's pairing worklist, the block
// reference graph is checked for cycles, and the main block is expanded
// depth first with each branch taking either its bypass route or the
// branch group's route. Markers never become segments and zero-length
// placeholders are dropped, so the output holds only real duct elements.
package topology
