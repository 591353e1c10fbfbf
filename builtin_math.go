// builtin_math.go: the numeric builtin-function catalog.
//
// Builtins are looked up case-insensitively. A builtin with minArgs == 0 can
// also be referenced as a bare name (pi, now, rand).
package mathpad

import (
	"math"
	"math/rand"
	"strings"
)

type builtin struct {
	minArgs int
	maxArgs int // -1 = variadic
	fn      func(ctx *EvalContext, args []float64) (float64, error)
}

var builtins = map[string]builtin{}

func register(name string, minArgs, maxArgs int, fn func(ctx *EvalContext, args []float64) (float64, error)) {
	builtins[strings.ToLower(name)] = builtin{minArgs: minArgs, maxArgs: maxArgs, fn: fn}
}

// register1 installs a one-argument pure function.
func register1(name string, fn func(x float64) float64) {
	register(name, 1, 1, func(_ *EvalContext, args []float64) (float64, error) {
		return fn(args[0]), nil
	})
}

func lookupBuiltin(name string) (builtin, bool) {
	b, ok := builtins[strings.ToLower(name)]
	return b, ok
}

func init() {
	register1("abs", math.Abs)
	register1("sign", func(x float64) float64 {
		switch {
		case x > 0:
			return 1
		case x < 0:
			return -1
		}
		return 0
	})
	register1("int", math.Trunc)
	register1("frac", func(x float64) float64 { return x - math.Trunc(x) })
	register1("floor", math.Floor)
	register1("ceil", math.Ceil)
	register1("sqrt", math.Sqrt)
	register1("cbrt", math.Cbrt)
	register1("exp", math.Exp)
	register1("ln", math.Log)

	register("round", 1, 2, func(_ *EvalContext, args []float64) (float64, error) {
		if len(args) == 1 {
			return math.Round(args[0]), nil
		}
		scale := math.Pow(10, math.Trunc(args[1]))
		return math.Round(args[0]*scale) / scale, nil
	})

	// root(x, n) is the real n-th root; odd integer n admits negative x.
	register("root", 2, 2, func(_ *EvalContext, args []float64) (float64, error) {
		x, n := args[0], args[1]
		if n == 0 {
			return math.NaN(), nil
		}
		if x < 0 && n == math.Trunc(n) && math.Mod(n, 2) != 0 {
			return -math.Pow(-x, 1/n), nil
		}
		return math.Pow(x, 1/n), nil
	})

	register("log", 1, 2, func(_ *EvalContext, args []float64) (float64, error) {
		if len(args) == 2 {
			return math.Log(args[0]) / math.Log(args[1]), nil
		}
		return math.Log10(args[0]), nil
	})

	// fact(n): Gamma(n+1) for non-integer n; saturates past 170!.
	register1("fact", func(n float64) float64 {
		switch {
		case n < 0:
			return math.NaN()
		case n > 170:
			return math.Inf(1)
		}
		return math.Gamma(n + 1)
	})

	register("pi", 0, 0, func(_ *EvalContext, _ []float64) (float64, error) {
		return math.Pi, nil
	})
	register("nan", 0, 0, func(_ *EvalContext, _ []float64) (float64, error) {
		return math.NaN(), nil
	})
	register("infinity", 0, 0, func(_ *EvalContext, _ []float64) (float64, error) {
		return math.Inf(1), nil
	})

	// Trig honors degrees mode at the boundary; hyperbolics do not.
	registerTrig("sin", math.Sin)
	registerTrig("cos", math.Cos)
	registerTrig("tan", math.Tan)
	registerInvTrig("asin", math.Asin)
	registerInvTrig("acos", math.Acos)
	registerInvTrig("atan", math.Atan)
	register1("sinh", math.Sinh)
	register1("cosh", math.Cosh)
	register1("tanh", math.Tanh)
	register1("asinh", math.Asinh)
	register1("acosh", math.Acosh)
	register1("atanh", math.Atanh)

	register1("radians", func(x float64) float64 { return x * math.Pi / 180 })
	register1("degrees", func(x float64) float64 { return x * 180 / math.Pi })

	// choose(n, v1..): 1-indexed selection; out of range yields 0.
	register("choose", 1, -1, func(_ *EvalContext, args []float64) (float64, error) {
		n := int(math.Trunc(args[0]))
		if n < 1 || n >= len(args) {
			return 0, nil
		}
		return args[n], nil
	})

	register("min", 1, -1, func(_ *EvalContext, args []float64) (float64, error) {
		out := args[0]
		for _, v := range args[1:] {
			out = math.Min(out, v)
		}
		return out, nil
	})
	register("max", 1, -1, func(_ *EvalContext, args []float64) (float64, error) {
		out := args[0]
		for _, v := range args[1:] {
			out = math.Max(out, v)
		}
		return out, nil
	})
	register("sum", 1, -1, func(_ *EvalContext, args []float64) (float64, error) {
		out := 0.0
		for _, v := range args {
			out += v
		}
		return out, nil
	})
	register("avg", 1, -1, func(_ *EvalContext, args []float64) (float64, error) {
		out := 0.0
		for _, v := range args {
			out += v
		}
		return out / float64(len(args)), nil
	})

	// rand() -> [0,1); rand(hi) -> [0,hi); rand(lo,hi) -> [lo,hi).
	register("rand", 0, 2, func(_ *EvalContext, args []float64) (float64, error) {
		switch len(args) {
		case 0:
			return rand.Float64(), nil
		case 1:
			return rand.Float64() * args[0], nil
		default:
			return args[0] + rand.Float64()*(args[1]-args[0]), nil
		}
	})
}

func registerTrig(name string, fn func(float64) float64) {
	register(name, 1, 1, func(ctx *EvalContext, args []float64) (float64, error) {
		x := args[0]
		if ctx.degrees {
			x = x * math.Pi / 180
		}
		return fn(x), nil
	})
}

func registerInvTrig(name string, fn func(float64) float64) {
	register(name, 1, 1, func(ctx *EvalContext, args []float64) (float64, error) {
		v := fn(args[0])
		if ctx.degrees {
			v = v * 180 / math.Pi
		}
		return v, nil
	})
}
