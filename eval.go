// eval.go: tree-walking evaluator.
//
// Evaluation is pure given the context. Call frames are cheap structural
// clones: constants, user functions, angle mode and the recursion budget are
// shared by reference; only the small variable map is copied per frame, which
// is what makes recursive user functions work.
package mathpad

import (
	"fmt"
	"math"
	"strings"
)

// UserFunc is a user-defined function: positional parameters and a body AST.
type UserFunc struct {
	Name   string
	Params []string
	Body   Node
}

// maxEvalDepth caps user-function call nesting. It is a non-termination
// guard, not a tunable.
const maxEvalDepth = 500

// EvalContext holds everything an expression evaluates against. Variables
// are owned per frame; constants and user functions are shared read-only
// across frames and may be shared across concurrent solves.
type EvalContext struct {
	vars     map[string]float64
	consts   map[string]float64
	funcs    map[string]*UserFunc
	declLine map[string]int  // first declaration index per name; shadow positions
	used     map[string]bool // constants actually consulted
	degrees  bool
	atLine   int // current evaluation position, for positional shadowing
	depth    *int
}

// NewEvalContext builds a context over shared constants and user functions.
// Either map may be nil.
func NewEvalContext(consts map[string]float64, funcs map[string]*UserFunc, degrees bool) *EvalContext {
	if consts == nil {
		consts = map[string]float64{}
	}
	if funcs == nil {
		funcs = map[string]*UserFunc{}
	}
	depth := 0
	return &EvalContext{
		vars:     map[string]float64{},
		consts:   consts,
		funcs:    funcs,
		declLine: map[string]int{},
		used:     map[string]bool{},
		degrees:  degrees,
		atLine:   math.MaxInt32,
		depth:    &depth,
	}
}

// frame clones the context for a function call: variables are copied,
// everything else is shared.
func (ctx *EvalContext) frame() *EvalContext {
	vars := make(map[string]float64, len(ctx.vars))
	for k, v := range ctx.vars {
		vars[k] = v
	}
	cp := *ctx
	cp.vars = vars
	return &cp
}

// SetVar binds name in the current frame.
func (ctx *EvalContext) SetVar(name string, v float64) { ctx.vars[name] = v }

// Var returns the explicit variable binding for name, if any.
func (ctx *EvalContext) Var(name string) (float64, bool) {
	v, ok := ctx.vars[name]
	return v, ok
}

// DeleteVar removes an explicit binding.
func (ctx *EvalContext) DeleteVar(name string) { delete(ctx.vars, name) }

// lookupName resolves a bare name: explicit variable first, else an
// unshadowed constant (recording the use), else a zero-argument builtin.
func (ctx *EvalContext) lookupName(name string) (float64, bool) {
	if v, ok := ctx.vars[name]; ok {
		// A constant shadowed by a later declaration still wins for uses
		// that appear earlier in the text than the declaration itself.
		if cv, isConst := ctx.consts[name]; isConst {
			if dl, ok := ctx.declLine[name]; ok && dl > ctx.atLine {
				ctx.used[name] = true
				return cv, true
			}
		}
		return v, true
	}
	if cv, ok := ctx.consts[name]; ok {
		if dl, declared := ctx.declLine[name]; !declared || dl > ctx.atLine {
			ctx.used[name] = true
			return cv, true
		}
	}
	if b, ok := lookupBuiltin(name); ok && b.minArgs == 0 {
		v, err := b.fn(ctx, nil)
		if err == nil {
			return v, true
		}
	}
	return 0, false
}

// Eval evaluates the tree to a number.
func (ctx *EvalContext) Eval(n Node) (float64, error) {
	switch t := n.(type) {
	case *NumberNode:
		return t.Value, nil

	case *VariableNode:
		if v, ok := ctx.lookupName(t.Name); ok {
			return v, nil
		}
		return 0, &EvalError{Line: t.Line, Col: t.Col, Msg: fmt.Sprintf("undefined: %s", t.Name)}

	case *UnaryNode:
		v, err := ctx.Eval(t.Operand)
		if err != nil {
			return 0, err
		}
		switch t.Op {
		case MINUS:
			return -v, nil
		case PLUS:
			return v, nil
		case TILDE:
			return float64(^int64(v)), nil
		case BANG:
			if v == 0 {
				return 1, nil
			}
			return 0, nil
		}
		return 0, &EvalError{Msg: "unknown unary operator"}

	case *BinaryNode:
		return ctx.evalBinary(t)

	case *CallNode:
		return ctx.evalCall(t)
	}
	return 0, &EvalError{Msg: "unknown expression node"}
}

func boolToNum(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (ctx *EvalContext) evalBinary(b *BinaryNode) (float64, error) {
	// Short-circuit forms evaluate the right side only when needed.
	switch b.Op {
	case ANDAND:
		l, err := ctx.Eval(b.Left)
		if err != nil {
			return 0, err
		}
		if l == 0 {
			return 0, nil
		}
		r, err := ctx.Eval(b.Right)
		if err != nil {
			return 0, err
		}
		return boolToNum(r != 0), nil
	case OROR:
		l, err := ctx.Eval(b.Left)
		if err != nil {
			return 0, err
		}
		if l != 0 {
			return 1, nil
		}
		r, err := ctx.Eval(b.Right)
		if err != nil {
			return 0, err
		}
		return boolToNum(r != 0), nil
	}

	l, err := ctx.Eval(b.Left)
	if err != nil {
		return 0, err
	}
	r, err := ctx.Eval(b.Right)
	if err != nil {
		return 0, err
	}

	switch b.Op {
	case PLUS:
		return l + r, nil
	case MINUS:
		return l - r, nil
	case STAR:
		return l * r, nil
	case SLASH:
		if r == 0 {
			return 0, &EvalError{Msg: "division by zero"}
		}
		return l / r, nil
	case MOD:
		return math.Mod(l, r), nil
	case POW:
		// General real power: out-of-domain yields NaN, never an error.
		return math.Pow(l, r), nil
	case AMP:
		return float64(int64(l) & int64(r)), nil
	case PIPE:
		return float64(int64(l) | int64(r)), nil
	case CARET:
		return float64(int64(l) ^ int64(r)), nil
	case SHL:
		return float64(int64(l) << uint(int64(r))), nil
	case SHR:
		return float64(int64(l) >> uint(int64(r))), nil
	case XORXOR:
		return boolToNum((l != 0) != (r != 0)), nil
	case EQ:
		return boolToNum(l == r), nil
	case NEQ:
		return boolToNum(l != r), nil
	case LESS:
		return boolToNum(l < r), nil
	case LESS_EQ:
		return boolToNum(l <= r), nil
	case GREATER:
		return boolToNum(l > r), nil
	case GREATER_EQ:
		return boolToNum(l >= r), nil
	}
	return 0, &EvalError{Msg: "unknown binary operator"}
}

// evalCall resolves calls in order: user-defined function, the lazy special
// form if(cond; then[; else]), then the builtin table (case-insensitive).
func (ctx *EvalContext) evalCall(c *CallNode) (float64, error) {
	if fn, ok := ctx.funcs[c.Name]; ok {
		return ctx.callUserFunc(fn, c)
	}

	if strings.EqualFold(c.Name, "if") {
		return ctx.evalIf(c)
	}

	if b, ok := lookupBuiltin(c.Name); ok {
		if len(c.Args) < b.minArgs || (b.maxArgs >= 0 && len(c.Args) > b.maxArgs) {
			return 0, &EvalError{Line: c.Line, Col: c.Col,
				Msg: fmt.Sprintf("wrong number of arguments to %s", c.Name)}
		}
		args := make([]float64, len(c.Args))
		for i, a := range c.Args {
			v, err := ctx.Eval(a)
			if err != nil {
				return 0, err
			}
			args[i] = v
		}
		return b.fn(ctx, args)
	}

	return 0, &EvalError{Line: c.Line, Col: c.Col, Msg: fmt.Sprintf("unknown function: %s", c.Name)}
}

func (ctx *EvalContext) callUserFunc(fn *UserFunc, c *CallNode) (float64, error) {
	if len(c.Args) > len(fn.Params) {
		return 0, &EvalError{Line: c.Line, Col: c.Col,
			Msg: fmt.Sprintf("too many arguments to %s", fn.Name)}
	}
	*ctx.depth++
	defer func() { *ctx.depth-- }()
	if *ctx.depth > maxEvalDepth {
		return 0, &EvalError{Line: c.Line, Col: c.Col,
			Msg: fmt.Sprintf("recursion too deep in %s", fn.Name)}
	}

	frame := ctx.frame()
	for i, p := range fn.Params {
		// Missing trailing arguments default to 0.
		var v float64
		if i < len(c.Args) {
			var err error
			v, err = ctx.Eval(c.Args[i])
			if err != nil {
				return 0, err
			}
		}
		frame.vars[p] = v
	}
	return frame.Eval(fn.Body)
}

// evalIf is the lazy conditional: the condition is evaluated first and only
// the selected branch is evaluated, so recursive functions guarded by if
// terminate.
func (ctx *EvalContext) evalIf(c *CallNode) (float64, error) {
	if len(c.Args) < 2 || len(c.Args) > 3 {
		return 0, &EvalError{Line: c.Line, Col: c.Col, Msg: "if takes 2 or 3 arguments"}
	}
	cond, err := ctx.Eval(c.Args[0])
	if err != nil {
		return 0, err
	}
	if cond != 0 {
		return ctx.Eval(c.Args[1])
	}
	if len(c.Args) == 3 {
		return ctx.Eval(c.Args[2])
	}
	return 0, nil
}

// Unknowns returns the names referenced by n that resolve to nothing in the
// context, in first-appearance order.
func (ctx *EvalContext) Unknowns(n Node) []string {
	var out []string
	seen := map[string]bool{}
	WalkVars(n, func(v *VariableNode) {
		if seen[v.Name] {
			return
		}
		seen[v.Name] = true
		if _, ok := ctx.lookupName(v.Name); !ok {
			out = append(out, v.Name)
		}
	})
	// Unknowns hiding inside user-function argument expressions are found by
	// WalkVars; unknown function names are surfaced at evaluation time.
	return out
}
