package expr

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

var (
	ErrDuplicateVariable = errors.New("duplicate variable")
	ErrInvalidName       = errors.New("invalid variable name")
)

var nameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Table holds sequential name to value bindings. Each name is bound once,
// in file order, and a binding may only reference names bound before it.
// The constant pi is bound by NewTable.
type Table struct {
	eval   *Evaluator
	order  []string
	values map[string]float64
}

// NewTable creates a table evaluating with e, or a fresh evaluator when e
// is nil.
func NewTable(e *Evaluator) *Table {
	if e == nil {
		e = NewEvaluator()
	}
	t := &Table{eval: e, values: make(map[string]float64)}
	t.set("pi", math.Pi)
	return t
}

func (t *Table) set(name string, v float64) {
	t.order = append(t.order, name)
	t.values[name] = v
}

// Bind evaluates src against the current bindings and binds the result
// to name.
func (t *Table) Bind(name, src string) (float64, error) {
	if !nameRegex.MatchString(name) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if _, ok := t.values[name]; ok {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateVariable, name)
	}
	v, err := t.Eval(src)
	if err != nil {
		return 0, err
	}
	t.set(name, v)
	return v, nil
}

// Eval evaluates a numeric field. Plain finite literals bypass the
// expression evaluator.
func (t *Table) Eval(src string) (float64, error) {
	if v, err := strconv.ParseFloat(src, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v, nil
	}
	return t.eval.Eval(src, t.values)
}

// Lookup returns the value bound to name.
func (t *Table) Lookup(name string) (float64, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Names returns the bound names in binding order.
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of bindings, pi included.
func (t *Table) Len() int {
	return len(t.order)
}

// ValidName reports whether s can be bound as a variable name.
func ValidName(s string) bool {
	return nameRegex.MatchString(s)
}
