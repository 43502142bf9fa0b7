// Package expr evaluates the arithmetic formulas allowed in structured bore
// files and keeps the sequential Variable Table they are evaluated against.
//
// Formulas use HCL native expression syntax: numbers, identifiers, the
// operators + - * / %, parentheses, and a small set of math functions
// (abs, ceil, floor, int, log, ln, exp, pow, sqrt, sin, cos, tan, asin,
// acos, atan, min, max, signum). Identifiers must be bare names; attribute
// or index access is rejected.
package expr
