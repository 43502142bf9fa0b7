package expr

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

var (
	ErrMalformed         = errors.New("malformed expression")
	ErrUnknownIdentifier = errors.New("unknown identifier")
	ErrEvaluation        = errors.New("evaluation failed")
	ErrNotNumber         = errors.New("expression does not yield a finite number")
)

// Evaluator evaluates formulas against a name to value mapping. It holds no
// mutable state and is safe for concurrent use.
type Evaluator struct {
	funcs map[string]function.Function
}

// NewEvaluator creates an evaluator with the standard math function set.
func NewEvaluator() *Evaluator {
	return &Evaluator{funcs: mathFunctions()}
}

// Functions returns the sorted names of the callable functions.
func (e *Evaluator) Functions() []string {
	names := make([]string, 0, len(e.funcs))
	for name := range e.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Eval parses src and evaluates it with vars bound as numbers. Besides
// HCL arithmetic, src may use ^ for powers and write r-1 without spaces.
func (e *Evaluator) Eval(src string, vars map[string]float64) (float64, error) {
	rewritten, err := normalize(src)
	if err != nil {
		return 0, err
	}
	parsed, diags := hclsyntax.ParseExpression([]byte(rewritten), "expression", hcl.InitialPos)
	if diags.HasErrors() {
		return 0, fmt.Errorf("%w: %s", ErrMalformed, diags.Error())
	}

	for _, tr := range parsed.Variables() {
		name := tr.RootName()
		if len(tr) > 1 {
			return 0, fmt.Errorf("%w: %q is not a plain name", ErrMalformed, name)
		}
		if _, ok := vars[name]; !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownIdentifier, name)
		}
	}

	ctx := &hcl.EvalContext{
		Variables: make(map[string]cty.Value, len(vars)),
		Functions: e.funcs,
	}
	for name, v := range vars {
		ctx.Variables[name] = cty.NumberFloatVal(v)
	}

	val, diags := parsed.Value(ctx)
	if diags.HasErrors() {
		return 0, fmt.Errorf("%w: %s", ErrEvaluation, diags.Error())
	}
	val, err = convert.Convert(val, cty.Number)
	if err != nil || val.IsNull() || !val.IsKnown() {
		return 0, ErrNotNumber
	}

	f, _ := val.AsBigFloat().Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrNotNumber
	}
	return f, nil
}

func mathFunctions() map[string]function.Function {
	return map[string]function.Function{
		"abs":    stdlib.AbsoluteFunc,
		"ceil":   stdlib.CeilFunc,
		"floor":  stdlib.FloorFunc,
		"int":    stdlib.IntFunc,
		"log":    stdlib.LogFunc,
		"pow":    stdlib.PowFunc,
		"min":    stdlib.MinFunc,
		"max":    stdlib.MaxFunc,
		"signum": stdlib.SignumFunc,
		"ln":     unaryFunc(math.Log),
		"exp":    unaryFunc(math.Exp),
		"sqrt":   unaryFunc(math.Sqrt),
		"sin":    unaryFunc(math.Sin),
		"cos":    unaryFunc(math.Cos),
		"tan":    unaryFunc(math.Tan),
		"asin":   unaryFunc(math.Asin),
		"acos":   unaryFunc(math.Acos),
		"atan":   unaryFunc(math.Atan),
		"log10":  unaryFunc(math.Log10),
		"sinh":   unaryFunc(math.Sinh),
		"cosh":   unaryFunc(math.Cosh),
		"tanh":   unaryFunc(math.Tanh),
	}
}

// unaryFunc adapts a float64 function into a cty function of one number.
func unaryFunc(fn func(float64) float64) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: "x", Type: cty.Number}},
		Type:   function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			x, _ := args[0].AsBigFloat().Float64()
			r := fn(x)
			if math.IsNaN(r) || math.IsInf(r, 0) {
				return cty.UnknownVal(cty.Number), fmt.Errorf("result of %g is not finite", x)
			}
			return cty.NumberFloatVal(r), nil
		},
	})
}
