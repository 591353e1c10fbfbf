// builtin_math_test.go
package mathpad

import (
	"math"
	"testing"
)

func wantEvalIn(t *testing.T, ctx *EvalContext, src string, want float64) {
	t.Helper()
	got := evalSrcIn(t, src, ctx)
	if math.Abs(got-want) > 1e-9*math.Max(1, math.Abs(want)) {
		t.Fatalf("%s: want %v, got %v", src, want, got)
	}
}

func Test_Builtin_Basic(t *testing.T) {
	ctx := NewEvalContext(nil, nil, false)
	wantEvalIn(t, ctx, "abs(-3)", 3)
	wantEvalIn(t, ctx, "sign(-7)", -1)
	wantEvalIn(t, ctx, "sign(0)", 0)
	wantEvalIn(t, ctx, "int(3.9)", 3)
	wantEvalIn(t, ctx, "int(-3.9)", -3)
	wantEvalIn(t, ctx, "frac(3.25)", 0.25)
	wantEvalIn(t, ctx, "floor(-3.1)", -4)
	wantEvalIn(t, ctx, "ceil(3.1)", 4)
	wantEvalIn(t, ctx, "sqrt(16)", 4)
	wantEvalIn(t, ctx, "cbrt(-27)", -3)
	wantEvalIn(t, ctx, "exp(0)", 1)
	wantEvalIn(t, ctx, "ln(exp(2))", 2)
}

func Test_Builtin_Round(t *testing.T) {
	ctx := NewEvalContext(nil, nil, false)
	wantEvalIn(t, ctx, "round(2.6)", 3)
	wantEvalIn(t, ctx, "round(2.4)", 2)
	wantEvalIn(t, ctx, "round(2.345; 2)", 2.35)
	wantEvalIn(t, ctx, "round(1234; -2)", 1200)
}

func Test_Builtin_Root_Log(t *testing.T) {
	ctx := NewEvalContext(nil, nil, false)
	wantEvalIn(t, ctx, "root(27; 3)", 3)
	wantEvalIn(t, ctx, "root(-8; 3)", -2)
	wantEvalIn(t, ctx, "log(1000)", 3)
	wantEvalIn(t, ctx, "log(8; 2)", 3)
}

func Test_Builtin_Fact(t *testing.T) {
	ctx := NewEvalContext(nil, nil, false)
	wantEvalIn(t, ctx, "fact(5)", 120)
	wantEvalIn(t, ctx, "fact(0)", 1)

	node, _ := ParseExpr(Tokenize("fact(-1)"))
	v, err := ctx.Eval(node)
	if err != nil || !math.IsNaN(v) {
		t.Fatalf("fact(-1): want NaN, got %v (%v)", v, err)
	}
	node, _ = ParseExpr(Tokenize("fact(171)"))
	v, _ = ctx.Eval(node)
	if !math.IsInf(v, 1) {
		t.Fatalf("fact(171): want +Infinity, got %v", v)
	}
}

func Test_Builtin_Trig_Radians(t *testing.T) {
	ctx := NewEvalContext(nil, nil, false)
	wantEvalIn(t, ctx, "sin(pi / 2)", 1)
	wantEvalIn(t, ctx, "cos(0)", 1)
	wantEvalIn(t, ctx, "atan(1)", math.Pi/4)
}

func Test_Builtin_Trig_Degrees_Mode(t *testing.T) {
	ctx := NewEvalContext(nil, nil, true)
	wantEvalIn(t, ctx, "sin(90)", 1)
	wantEvalIn(t, ctx, "cos(60)", 0.5)
	wantEvalIn(t, ctx, "asin(1)", 90)
	// Hyperbolics ignore degrees mode.
	wantEvalIn(t, ctx, "sinh(1)", math.Sinh(1))
}

func Test_Builtin_Angle_Conversions(t *testing.T) {
	ctx := NewEvalContext(nil, nil, false)
	wantEvalIn(t, ctx, "radians(180)", math.Pi)
	wantEvalIn(t, ctx, "degrees(pi)", 180)
}

func Test_Builtin_Choose(t *testing.T) {
	ctx := NewEvalContext(nil, nil, false)
	wantEvalIn(t, ctx, "choose(2; 10; 20; 30)", 20)
	wantEvalIn(t, ctx, "choose(0; 10; 20)", 0)
	wantEvalIn(t, ctx, "choose(9; 10; 20)", 0)
}

func Test_Builtin_Variadic(t *testing.T) {
	ctx := NewEvalContext(nil, nil, false)
	wantEvalIn(t, ctx, "min(3; 1; 2)", 1)
	wantEvalIn(t, ctx, "max(3; 1; 2)", 3)
	wantEvalIn(t, ctx, "sum(1; 2; 3; 4)", 10)
	wantEvalIn(t, ctx, "avg(1; 2; 3; 4)", 2.5)
}

func Test_Builtin_Rand_Bounds(t *testing.T) {
	ctx := NewEvalContext(nil, nil, false)
	for i := 0; i < 100; i++ {
		v := evalSrcIn(t, "rand(5; 10)", ctx)
		if v < 5 || v >= 10 {
			t.Fatalf("rand(5;10): %v out of range", v)
		}
	}
}

func Test_Builtin_Special_Values(t *testing.T) {
	ctx := NewEvalContext(nil, nil, false)
	if v := evalSrcIn(t, "NaN", ctx); !math.IsNaN(v) {
		t.Fatalf("NaN: got %v", v)
	}
	if v := evalSrcIn(t, "Infinity", ctx); !math.IsInf(v, 1) {
		t.Fatalf("Infinity: got %v", v)
	}
	if v := evalSrcIn(t, "-Infinity", ctx); !math.IsInf(v, -1) {
		t.Fatalf("-Infinity: got %v", v)
	}
}

func Test_Builtin_Wrong_Arity(t *testing.T) {
	ctx := NewEvalContext(nil, nil, false)
	node, _ := ParseExpr(Tokenize("sqrt(1; 2)"))
	if _, err := ctx.Eval(node); err == nil {
		t.Fatal("sqrt(1;2): expected an error")
	}
}
