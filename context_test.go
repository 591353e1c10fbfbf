// context_test.go
package mathpad

import (
	"strings"
	"testing"
)

func Test_Context_Constants_Basic(t *testing.T) {
	text := "e: 2.718281828\n" +
		"g: 9.80665 \"standard gravity\"\n" +
		"twopi: 2 * 3.141592653589793"
	ctx, errs := NewContext(text, "", DefaultConfig())
	if len(errs) != 0 {
		t.Fatalf("errors: %v", errs)
	}
	if got := ctx.Constants["g"]; got != 9.80665 {
		t.Fatalf("g: got %v", got)
	}
	if got := ctx.Constants["twopi"]; got != 2*3.141592653589793 {
		t.Fatalf("twopi: got %v", got)
	}
}

func Test_Context_Constants_Percent_Marker(t *testing.T) {
	ctx, errs := NewContext("vat%: 19", "", DefaultConfig())
	if len(errs) != 0 {
		t.Fatalf("errors: %v", errs)
	}
	if got := ctx.Constants["vat"]; got != 0.19 {
		t.Fatalf("vat: got %v", got)
	}
}

func Test_Context_Constants_Percent_Literal(t *testing.T) {
	// A percent literal already carries the division; the marker must not
	// divide twice.
	ctx, errs := NewContext("vat: 19%", "", DefaultConfig())
	if len(errs) != 0 {
		t.Fatalf("errors: %v", errs)
	}
	if got := ctx.Constants["vat"]; got != 0.19 {
		t.Fatalf("vat: got %v", got)
	}
}

func Test_Context_Constants_Malformed_Collected(t *testing.T) {
	text := "good: 1\n" +
		"this is not a constant\n" +
		"bad: 2 +\n" +
		"alsogood: 3"
	ctx, errs := NewContext(text, "", DefaultConfig())
	if len(errs) != 2 {
		t.Fatalf("errors: %v", errs)
	}
	if ctx.Constants["good"] != 1 || ctx.Constants["alsogood"] != 3 {
		t.Fatalf("constants: %v", ctx.Constants)
	}
}

func Test_Context_Functions_Single_Line(t *testing.T) {
	ctx, errs := NewContext("", "sq(x) = x * x", DefaultConfig())
	if len(errs) != 0 {
		t.Fatalf("errors: %v", errs)
	}
	fn := ctx.Functions["sq"]
	if fn == nil || len(fn.Params) != 1 || fn.Params[0] != "x" {
		t.Fatalf("sq: got %+v", fn)
	}
}

func Test_Context_Functions_Braced_Multiline(t *testing.T) {
	text := "hyp(a; b) = {\n" +
		"  sqrt(a ** 2 + b ** 2)\n" +
		"}"
	ctx, errs := NewContext("", text, DefaultConfig())
	if len(errs) != 0 {
		t.Fatalf("errors: %v", errs)
	}
	fn := ctx.Functions["hyp"]
	if fn == nil || len(fn.Params) != 2 {
		t.Fatalf("hyp: got %+v", fn)
	}
	eval := NewEvalContext(nil, ctx.Functions, false)
	if v := evalSrcIn(t, "hyp(3; 4)", eval); v != 5 {
		t.Fatalf("hyp(3; 4): got %v", v)
	}
}

func Test_Context_Functions_Malformed_Collected(t *testing.T) {
	text := "sq(x) = x * x\n" +
		"broken(x = x + 1\n" +
		"dbl(x) = 2 * x"
	ctx, errs := NewContext("", text, DefaultConfig())
	if len(errs) != 1 {
		t.Fatalf("errors: %v", errs)
	}
	if !strings.Contains(errs[0], "broken") {
		t.Fatalf("error text: %q", errs[0])
	}
	if ctx.Functions["sq"] == nil || ctx.Functions["dbl"] == nil {
		t.Fatalf("functions: %v", ctx.Functions)
	}
}

func Test_Context_Empty_Texts(t *testing.T) {
	ctx, errs := NewContext("", "", DefaultConfig())
	if len(errs) != 0 {
		t.Fatalf("errors: %v", errs)
	}
	if len(ctx.Constants) != 0 || len(ctx.Functions) != 0 {
		t.Fatalf("expected empty tables: %+v", ctx)
	}
}
