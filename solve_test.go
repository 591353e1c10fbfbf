// solve_test.go
package mathpad

import (
	"strings"
	"testing"
)

func solveDoc(t *testing.T, text string) Result {
	t.Helper()
	return Solve(text, nil, DefaultConfig())
}

func wantSolve(t *testing.T, text, want string, solved int) Result {
	t.Helper()
	res := solveDoc(t, text)
	if len(res.Errors) != 0 {
		t.Fatalf("errors: %v\ninput:\n%s", res.Errors, text)
	}
	if res.Text != want {
		t.Fatalf("text:\nwant %q\ngot  %q", want, res.Text)
	}
	if res.Solved != solved {
		t.Fatalf("solved: want %d, got %d", solved, res.Solved)
	}
	return res
}

func Test_Solve_Expression_Output(t *testing.T) {
	wantSolve(t,
		"a: 2\nb: 3\na + b->",
		"a: 2\nb: 3\na + b-> 5",
		1)
}

func Test_Solve_Limits_Pick_Root(t *testing.T) {
	wantSolve(t,
		"x**2 = 9\nx[0:10]:",
		"x**2 = 9\nx[0:10]: 3",
		1)
	wantSolve(t,
		"x**2 = 9\nx[-10:0]:",
		"x**2 = 9\nx[-10:0]: -3",
		1)
}

func Test_Solve_Single_Unknown(t *testing.T) {
	wantSolve(t,
		"a: 2\nb: 3\na + b = c\nc:",
		"a: 2\nb: 3\na + b = c\nc: 5",
		1)
}

func Test_Solve_Chained_Equations(t *testing.T) {
	wantSolve(t,
		"a: 2\na + b = 5\nb + c = 10\nb:\nc:",
		"a: 2\na + b = 5\nb + c = 10\nb: 3\nc: 7",
		2)
}

func Test_Solve_Idempotent(t *testing.T) {
	first := solveDoc(t, "a: 2\nb: 3\na + b = c\nc:")
	again := solveDoc(t, first.Text)
	if again.Solved != 0 {
		t.Fatalf("re-solve solved %d", again.Solved)
	}
	if again.Text != first.Text {
		t.Fatalf("re-solve changed text:\n%q\n%q", first.Text, again.Text)
	}
	if len(again.Errors) != 0 {
		t.Fatalf("re-solve errors: %v", again.Errors)
	}
}

func Test_Solve_Deterministic(t *testing.T) {
	src := "a: 2\na + b = 5\nb + c = 10\nb:\nc:\nb * c->"
	r1 := solveDoc(t, src)
	r2 := solveDoc(t, src)
	if r1.Text != r2.Text || r1.Solved != r2.Solved {
		t.Fatalf("non-deterministic:\n%q %d\n%q %d", r1.Text, r1.Solved, r2.Text, r2.Solved)
	}
}

func Test_Solve_Multi_Unknown_Deferred(t *testing.T) {
	// One equation, two unknowns: no progress, but no error either.
	src := "a: 2\na + b = c"
	res := solveDoc(t, src)
	if res.Solved != 0 || len(res.Errors) != 0 {
		t.Fatalf("got %+v", res)
	}
	if res.Text != src {
		t.Fatalf("text changed: %q", res.Text)
	}
}

func Test_Solve_Cycle_Terminates(t *testing.T) {
	src := "x = y\ny = x"
	res := solveDoc(t, src)
	if res.Solved != 0 || len(res.Errors) != 0 {
		t.Fatalf("got %+v", res)
	}
	if res.Text != src {
		t.Fatalf("text changed: %q", res.Text)
	}
}

func Test_Solve_Complete_Equation(t *testing.T) {
	wantSolve(t,
		"a: 2\nb: 3\na * b =",
		"a: 2\nb: 3\na * b = 6",
		1)
}

func Test_Solve_Complete_Full_Precision(t *testing.T) {
	res := solveDoc(t, "1 / 3 =")
	if res.Text != "1 / 3 = 0.3333333333333333" {
		t.Fatalf("got %q", res.Text)
	}
	// The completed text must balance when solved again.
	again := solveDoc(t, res.Text)
	if len(again.Errors) != 0 || again.Solved != 0 {
		t.Fatalf("re-solve: %+v", again)
	}
}

func Test_Solve_Braced_Equation(t *testing.T) {
	wantSolve(t,
		"p: 2\nq: 3\n{ r = p * q }\nr:",
		"p: 2\nq: 3\n{ r = p * q }\nr: 6",
		1)
}

func Test_Solve_Braced_Completion(t *testing.T) {
	res := solveDoc(t, "{ 2 + 3 =}")
	if len(res.Errors) != 0 || res.Solved != 1 {
		t.Fatalf("got %+v", res)
	}
	if !strings.Contains(res.Text, "= 5 }") {
		t.Fatalf("text: %q", res.Text)
	}
}

func Test_Solve_Document_Function(t *testing.T) {
	wantSolve(t,
		"dbl(z) = 2 * z\ndbl(4)->",
		"dbl(z) = 2 * z\ndbl(4)-> 8",
		1)
}

func Test_Solve_Document_Function_Braced_Body(t *testing.T) {
	wantSolve(t,
		"area(w; h) = { w * h }\narea(3; 4)->",
		"area(w; h) = { w * h }\narea(3; 4)-> 12",
		1)
}

func Test_Solve_Inline_Evaluation(t *testing.T) {
	wantSolve(t,
		"price: 10\ntotal is \\price * 3\\ dollars",
		"price: 10\ntotal is 30 dollars",
		0)
}

func Test_Solve_Unresolved_Inline_Reported(t *testing.T) {
	// An inline that never resolves stays verbatim, and the final pass
	// reports why instead of failing silently.
	res := solveDoc(t, "total is \\q + 1\\ units")
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "undefined: q") {
		t.Fatalf("errors: %v", res.Errors)
	}
	if res.Text != "total is \\q + 1\\ units" {
		t.Fatalf("text: %q", res.Text)
	}
}

func Test_Solve_Money_Literal_Output(t *testing.T) {
	wantSolve(t,
		"Enter 3.25$->>",
		"Enter 3.25$->> $3.25",
		1)
}

func Test_Solve_Stale_Output_Refreshed(t *testing.T) {
	wantSolve(t,
		"x: 7\nx-> 3",
		"x: 7\nx-> 7",
		1)
}

func Test_Solve_Output_Keeps_Unit_Text(t *testing.T) {
	wantSolve(t,
		"v: 42\nspeed v-> 0 mph",
		"v: 42\nspeed v-> 42 mph",
		1)
}

func Test_Solve_Percent_Declaration(t *testing.T) {
	wantSolve(t,
		"rate%: 5\nrate * 100->",
		"rate%: 5\nrate * 100-> 5",
		1)
}

func Test_Solve_Duplicate_Declaration_Error(t *testing.T) {
	res := solveDoc(t, "x: 1\nx: 2")
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "already defined") {
		t.Fatalf("errors: %v", res.Errors)
	}
}

func Test_Solve_Undefined_Reference_Error(t *testing.T) {
	res := solveDoc(t, "a: b + 1")
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "references undefined: b") {
		t.Fatalf("errors: %v", res.Errors)
	}
}

func Test_Solve_Inconsistent_Equation(t *testing.T) {
	res := solveDoc(t, "a: 2\nb: 3\na + b = 6")
	if len(res.Errors) != 1 {
		t.Fatalf("errors: %v", res.Errors)
	}
	if !strings.Contains(res.Errors[0], "line 3 is inconsistent: 5 != 6") {
		t.Fatalf("message: %q", res.Errors[0])
	}
	if res.Solved != 0 {
		t.Fatalf("solved: %d", res.Solved)
	}
}

func Test_Solve_No_Root_Error(t *testing.T) {
	res := solveDoc(t, "x[0:10]:\nx**2 = -1")
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], `cannot solve for "x"`) {
		t.Fatalf("errors: %v", res.Errors)
	}
}

func Test_Solve_Constant_Shadowing(t *testing.T) {
	ctx, errs := NewContext("g0: 10", "", DefaultConfig())
	if len(errs) != 0 {
		t.Fatal(errs)
	}
	res := Solve("g0 * 2->\ng0: 3\ng0 * 2->", ctx, DefaultConfig())
	if len(res.Errors) != 0 {
		t.Fatalf("errors: %v", res.Errors)
	}
	// Above its declaration the name is the constant; below, the local.
	want := "g0 * 2-> 20\ng0: 3\ng0 * 2-> 6"
	if res.Text != want {
		t.Fatalf("text:\nwant %q\ngot  %q", want, res.Text)
	}
}

func Test_Solve_Shadowing_Disabled(t *testing.T) {
	ctx, _ := NewContext("g0: 10", "", DefaultConfig())
	cfg := DefaultConfig()
	cfg.ShadowConstants = false
	res := Solve("g0: 3\ng0 * 2->", ctx, cfg)
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "conflicts with a constant") {
		t.Fatalf("errors: %v", res.Errors)
	}
	if !strings.HasSuffix(res.Text, "g0 * 2-> 20") {
		t.Fatalf("text: %q", res.Text)
	}
}

func Test_Solve_Shadowing_Disabled_Constant_Wins(t *testing.T) {
	// The rejected declaration must not hide the constant from lines
	// below it; equations still solve through the constant's value.
	ctx, _ := NewContext("k: 7", "", DefaultConfig())
	cfg := DefaultConfig()
	cfg.ShadowConstants = false
	res := Solve("k: 3\nout = k\nout:", ctx, cfg)
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "conflicts with a constant") {
		t.Fatalf("errors: %v", res.Errors)
	}
	if !strings.HasSuffix(res.Text, "out: 7") {
		t.Fatalf("text: %q", res.Text)
	}
}

func Test_Solve_User_Value_Constrains_Equation(t *testing.T) {
	// c already has a user value, so the definition solves for b instead.
	wantSolve(t,
		"a: 2\nc: 9\na + b = c\nb:",
		"a: 2\nc: 9\na + b = c\nb: 7",
		1)
}

func Test_Solve_Empty_Document(t *testing.T) {
	res := solveDoc(t, "")
	if res.Text != "" || res.Solved != 0 || len(res.Errors) != 0 {
		t.Fatalf("got %+v", res)
	}
}
