// solve.go: the three-pass solve pipeline.
//
// Pass 1 (discovery) splices resolvable inline evaluations, classifies every
// line, and walks declarations top to bottom, binding each as soon as it is
// evaluable. Pass 2 (equation solving) repeats up to maxSolveRounds: rescan
// equations, substitute known definitions, complete "expr =" lines, and
// root-solve any equation left with exactly one unknown, writing results back
// at the unknown's declaration sites. Pass 3 (final output) splices the
// remaining inline evaluations, fills every declared-but-empty variable at
// every site, and reports equations that do not balance.
//
// The round ceiling is the non-termination guard for cyclic or contradictory
// input; it is correctness-critical, not a tunable.
package mathpad

import (
	"fmt"
	"math"
	"strings"
)

// maxSolveRounds caps pass-2 iteration.
const maxSolveRounds = 50

// balanceRelTol is the relative tolerance of the final consistency check.
const balanceRelTol = 1e-10

// Result is the outcome of one Solve call.
type Result struct {
	Text   string
	Solved int
	Errors []string
}

// Solve runs the full pipeline over a working copy of the document text.
// ctx may be shared across concurrent solves; all mutable state is local to
// the call.
func Solve(text string, ctx *Context, cfg Config) Result {
	s := newSolver(text, ctx, cfg)
	s.discover()
	for round := 0; round < maxSolveRounds; round++ {
		if !s.solveRound() {
			break
		}
	}
	s.finish()
	return Result{Text: strings.Join(s.lines, "\n"), Solved: s.solved, Errors: s.errs}
}

// statement is one logical statement: a run of physical lines kept together
// by unbalanced brackets or braces.
type statement struct {
	toks      []Token
	startLine int
	endLine   int
}

// equation is one rediscovered equality. Equations are not persisted across
// rounds; the underlying text mutates.
type equation struct {
	left   []Token
	right  []Token
	line   int
	braced bool
	// completion insertion point: after the last meaningful token
	insLine int
	insCol  int
}

type solver struct {
	cfg    Config
	lines  []string
	eval   *EvalContext
	funcs  map[string]*UserFunc
	solved int

	errs   []string
	errSet map[string]bool

	// rebuilt by refresh()
	stmts     []statement
	decls     []*Declaration
	declSites map[string][]*Declaration
	equations []*equation

	userValued map[string]bool
}

func newSolver(text string, ctx *Context, cfg Config) *solver {
	if ctx == nil {
		ctx = &Context{}
	}
	// The function table is copied so document-defined functions never leak
	// into the shared context.
	funcs := make(map[string]*UserFunc, len(ctx.Functions))
	for k, v := range ctx.Functions {
		funcs[k] = v
	}
	return &solver{
		cfg:        cfg,
		lines:      strings.Split(text, "\n"),
		eval:       NewEvalContext(ctx.Constants, funcs, cfg.DegreesMode),
		funcs:      funcs,
		errSet:     map[string]bool{},
		userValued: map[string]bool{},
	}
}

func (s *solver) addError(msg string) {
	if s.errSet[msg] {
		return
	}
	s.errSet[msg] = true
	s.errs = append(s.errs, msg)
}

// ----- text plumbing -----

// editLine replaces lines[line-1][col:col+del] with insert.
func (s *solver) editLine(line, col, del int, insert string) {
	if line < 1 || line > len(s.lines) {
		return
	}
	txt := s.lines[line-1]
	if col > len(txt) {
		col = len(txt)
	}
	end := col + del
	if end > len(txt) {
		end = len(txt)
	}
	s.lines[line-1] = txt[:col] + insert + txt[end:]
}

// refresh re-tokenizes the working text and rebuilds statements,
// declarations and equations.
func (s *solver) refresh() {
	s.stmts = splitStatements(Tokenize(strings.Join(s.lines, "\n")))
	// Fresh slices here: callers iterate over snapshots of the previous
	// round's decls and equations while a mid-round refresh rebuilds them.
	s.decls = nil
	s.declSites = map[string][]*Declaration{}
	s.equations = nil

	for _, st := range s.stmts {
		if len(st.toks) == 0 {
			continue
		}
		if d := ClassifyLine(st.toks); d != nil {
			s.decls = append(s.decls, d)
			if d.Kind == KindDeclaration {
				s.declSites[d.Name] = append(s.declSites[d.Name], d)
			}
			continue
		}
		if eq := extractEquation(st); eq != nil {
			s.equations = append(s.equations, eq)
		}
	}
}

// splitStatements groups tokens into logical statements: newlines inside
// unbalanced brackets or braces do not split, so multi-line limits spans and
// braced equations hold together.
func splitStatements(toks []Token) []statement {
	var out []statement
	var cur []Token
	start := 1
	depth := 0
	flush := func(endLine int) {
		out = append(out, statement{toks: cur, startLine: start, endLine: endLine})
		cur = nil
		start = endLine + 1
	}
	for _, t := range toks {
		switch t.Type {
		case LBRACKET, LCURLY:
			depth++
			cur = append(cur, t)
		case RBRACKET, RCURLY:
			if depth > 0 {
				depth--
			}
			cur = append(cur, t)
		case NEWLINE:
			if depth > 0 {
				continue
			}
			flush(t.Line)
		case EOF:
		default:
			if len(cur) == 0 {
				start = t.Line
			}
			cur = append(cur, t)
		}
	}
	if len(cur) > 0 {
		flush(cur[len(cur)-1].Line)
	}
	return out
}

// extractEquation recognizes "expr = expr", "expr =", and the braced form
// "{ expr = expr }" within one statement. The assignment inside braces may
// span lines.
func extractEquation(st statement) *equation {
	work, _, _, _ := splitComments(st.toks)
	if len(work) == 0 {
		return nil
	}

	// First '=' outside any braces.
	depth := 0
	split := -1
	for i, t := range work {
		switch t.Type {
		case LCURLY:
			depth++
		case RCURLY:
			depth--
		case ASSIGN:
			if depth == 0 && split < 0 {
				split = i
			}
		}
	}

	if split >= 0 {
		eq := &equation{left: work[:split], right: work[split+1:], line: st.startLine}
		eq.insLine, eq.insCol = insertionAfter(work[split:])
		return eq
	}

	// Braced form: tokens between the outermost { } with an '=' inside.
	open := -1
	for i, t := range work {
		if t.Type == LCURLY {
			open = i
			break
		}
	}
	if open < 0 {
		return nil
	}
	closing := -1
	depth = 0
	for i := open; i < len(work); i++ {
		switch work[i].Type {
		case LCURLY:
			depth++
		case RCURLY:
			depth--
			if depth == 0 {
				closing = i
			}
		}
		if closing >= 0 {
			break
		}
	}
	if closing < 0 {
		return nil
	}
	inner := work[open+1 : closing]
	split = -1
	for i, t := range inner {
		if t.Type == ASSIGN {
			split = i
			break
		}
	}
	if split < 0 {
		return nil
	}
	eq := &equation{
		left:   inner[:split],
		right:  inner[split+1:],
		line:   st.startLine,
		braced: true,
	}
	// Completion text goes just before the closing brace.
	eq.insLine = work[closing].Line
	eq.insCol = work[closing].Col
	return eq
}

// insertionAfter returns the position just past the last token of the slice.
func insertionAfter(toks []Token) (line, col int) {
	last := toks[len(toks)-1]
	return last.Line, last.Col + len(last.Lexeme)
}

// ----- formatting helpers -----

func (s *solver) formatOpts(d *Declaration) FormatOpts {
	o := FormatOpts{
		Places:      s.cfg.Places,
		StripZeros:  s.cfg.StripZeros,
		GroupDigits: s.cfg.GroupDigits,
		Notation:    s.cfg.Notation,
	}
	if d != nil {
		o.FullPrecision = d.FullPrecision
		o.Format = d.Format
		if d.Base != 10 {
			o.Base = d.Base
		}
	}
	return o
}

// ----- inline evaluations -----

// spliceInlines evaluates every \expr\ whose expression has no unresolved
// variables and replaces the whole span with the formatted result. When
// must is set, failures are recorded as errors (final pass).
func (s *solver) spliceInlines(must bool) bool {
	changed := false
	for i := range s.lines {
		for {
			toks := lineTokens(s.lines[i], i+1)
			spans := inlineSpans(toks)
			if len(spans) == 0 {
				break
			}
			splicedOne := false
			for _, sp := range spans {
				if s.spliceOne(i+1, toks, sp, must) {
					changed = true
					splicedOne = true
					break // positions shifted; re-tokenize the line
				}
			}
			if !splicedOne {
				break
			}
		}
	}
	return changed
}

type inlineSpan struct{ open, close int } // token indices of the backslashes

func inlineSpans(toks []Token) []inlineSpan {
	var out []inlineSpan
	open := -1
	for i, t := range toks {
		if t.Type != BACKSLASH {
			continue
		}
		if open < 0 {
			open = i
		} else {
			out = append(out, inlineSpan{open, i})
			open = -1
		}
	}
	return out
}

func (s *solver) spliceOne(line int, toks []Token, sp inlineSpan, must bool) bool {
	exprToks := toks[sp.open+1 : sp.close]
	node, err := ParseExpr(exprToks)
	if err != nil {
		if must {
			s.addError(err.Error())
		}
		return false
	}
	s.eval.atLine = line
	if !must && len(s.eval.Unknowns(node)) > 0 {
		return false
	}
	v, err := s.eval.Eval(node)
	if err != nil {
		if must {
			s.addError(err.Error())
		}
		return false
	}
	text := FormatNumber(v, s.formatOpts(nil))
	openTok, closeTok := toks[sp.open], toks[sp.close]
	s.editLine(line, openTok.Col, closeTok.Col+1-openTok.Col, text)
	return true
}

// lineTokens tokenizes a single already-extracted line, fixing up the line
// number so edits land on the right physical line.
func lineTokens(text string, line int) []Token {
	toks := Tokenize(text)
	out := toks[:0]
	for i := range toks {
		if toks[i].Type == EOF {
			break
		}
		toks[i].Line = line
		out = append(out, toks[i])
	}
	return out
}

// ----- pass 1: discovery -----

func (s *solver) discover() {
	s.spliceInlines(false)
	s.refresh()

	seen := map[string]bool{}
	for _, d := range s.decls {
		if d.Kind != KindDeclaration {
			continue
		}
		if _, isConst := s.eval.consts[d.Name]; isConst && !s.cfg.ShadowConstants {
			s.addError(fmt.Sprintf("Variable %q conflicts with a constant", d.Name))
			continue
		}
		// Shadow positions are recorded only for accepted declarations; a
		// rejected one must not suppress the constant it collided with.
		s.eval.declLine[d.Name] = min(d.Line, lookupDeclLine(s.eval.declLine, d.Name, d.Line))
		if !d.IsOutput() {
			if seen[d.Name] {
				s.addError(fmt.Sprintf("Variable %q is already defined", d.Name))
				continue
			}
			seen[d.Name] = true
		}
		if d.IsOutput() || !d.HasValue() {
			continue
		}
		v, err := s.declValue(d)
		if err != nil {
			if ee, ok := err.(*EvalError); ok && strings.HasPrefix(ee.Msg, "undefined: ") {
				s.addError(fmt.Sprintf("Variable %q references undefined: %s",
					d.Name, strings.TrimPrefix(ee.Msg, "undefined: ")))
			} else {
				s.addError(err.Error())
			}
			continue
		}
		s.eval.SetVar(d.Name, v)
		s.userValued[d.Name] = true
	}
}

func lookupDeclLine(m map[string]int, name string, def int) int {
	if v, ok := m[name]; ok {
		return v
	}
	return def
}

// declValue parses and evaluates a declaration's value tokens, applying the
// percent decoration unless the literal already carried its own.
func (s *solver) declValue(d *Declaration) (float64, error) {
	node, err := ParseExpr(d.ValueToks)
	if err != nil {
		return 0, err
	}
	s.eval.atLine = d.Line
	v, err := s.eval.Eval(node)
	if err != nil {
		return 0, err
	}
	if d.Format == FmtPercent && !hasPercentLiteral(d.ValueToks) {
		v /= 100
	}
	return v, nil
}

func hasPercentLiteral(toks []Token) bool {
	for _, t := range toks {
		if t.Type == NUMBER && t.Format == FmtPercent {
			return true
		}
	}
	return false
}

// ----- pass 2: equation solving -----

func (s *solver) solveRound() bool {
	changed := s.spliceInlines(false)
	s.refresh()

	// Document-local function definitions are picked out of the equation
	// set each round; defining one is progress only the first time.
	remaining := s.equations[:0]
	for _, eq := range s.equations {
		if fn := s.tryFuncDef(eq); fn != nil {
			if old, ok := s.funcs[fn.Name]; !ok || !sameFunc(old, fn) {
				s.funcs[fn.Name] = fn
				changed = true
			}
			continue
		}
		remaining = append(remaining, eq)
	}
	s.equations = remaining

	subst := s.buildSubstitutions()

	for _, eq := range s.equations {
		if s.processEquation(eq, subst) {
			changed = true
			// Text and token positions moved; rescan before the next one.
			s.refresh()
			subst = s.buildSubstitutions()
		}
	}

	if s.writeOutputs() {
		changed = true
	}
	return changed
}

// tryFuncDef recognizes name(p1;p2) = body where every argument is a bare
// identifier; such an equality defines a function rather than an equation.
func (s *solver) tryFuncDef(eq *equation) *UserFunc {
	if len(eq.left) < 3 || eq.left[0].Type != IDENT || eq.left[1].Type != LPAREN {
		return nil
	}
	node, err := ParseExpr(eq.left)
	if err != nil {
		return nil
	}
	call, ok := node.(*CallNode)
	if !ok {
		return nil
	}
	params := make([]string, len(call.Args))
	for i, a := range call.Args {
		v, ok := a.(*VariableNode)
		if !ok {
			return nil
		}
		params[i] = v.Name
	}
	if _, isBuiltin := lookupBuiltin(call.Name); isBuiltin {
		return nil
	}
	body := eq.right
	if len(body) > 1 && body[0].Type == LCURLY && body[len(body)-1].Type == RCURLY {
		body = body[1 : len(body)-1]
	}
	bodyNode, err := ParseExpr(body)
	if err != nil {
		return nil
	}
	return &UserFunc{Name: call.Name, Params: params, Body: bodyNode}
}

func sameFunc(a, b *UserFunc) bool {
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return false
		}
	}
	return sameNode(a.Body, b.Body)
}

// sameNode compares two expression trees structurally, ignoring source
// positions.
func sameNode(a, b Node) bool {
	switch x := a.(type) {
	case *NumberNode:
		y, ok := b.(*NumberNode)
		return ok && (x.Value == y.Value || (math.IsNaN(x.Value) && math.IsNaN(y.Value)))
	case *VariableNode:
		y, ok := b.(*VariableNode)
		return ok && x.Name == y.Name
	case *UnaryNode:
		y, ok := b.(*UnaryNode)
		return ok && x.Op == y.Op && sameNode(x.Operand, y.Operand)
	case *BinaryNode:
		y, ok := b.(*BinaryNode)
		return ok && x.Op == y.Op && sameNode(x.Left, y.Left) && sameNode(x.Right, y.Right)
	case *CallNode:
		y, ok := b.(*CallNode)
		if !ok || x.Name != y.Name || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !sameNode(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// buildSubstitutions derives name -> expression rewrites from definition
// equations whose right side is fully known.
func (s *solver) buildSubstitutions() map[string]Node {
	subst := map[string]Node{}
	for _, eq := range s.equations {
		name, rhs := s.definitionOf(eq)
		if name == "" {
			continue
		}
		s.eval.atLine = eq.line
		if len(s.eval.Unknowns(rhs)) == 0 {
			subst[name] = rhs
		}
	}
	return subst
}

// definitionOf returns (name, rhsNode) when the equation is name = expr or
// expr = name, else ("", nil).
func (s *solver) definitionOf(eq *equation) (string, Node) {
	try := func(one, other []Token) (string, Node) {
		if len(one) != 1 || one[0].Type != IDENT || len(other) == 0 {
			return "", nil
		}
		rhs, err := ParseExpr(other)
		if err != nil {
			return "", nil
		}
		return one[0].Lexeme, rhs
	}
	if n, r := try(eq.left, eq.right); n != "" {
		return n, r
	}
	return try(eq.right, eq.left)
}

// processEquation handles one equation; reports whether it changed anything.
func (s *solver) processEquation(eq *equation, subst map[string]Node) bool {
	s.eval.atLine = eq.line

	// Incomplete "expr =": complete it by evaluating and appending.
	if len(eq.right) == 0 {
		return s.completeEquation(eq)
	}
	if len(eq.left) == 0 {
		return false
	}

	left, err := ParseExpr(eq.left)
	if err != nil {
		return false // deferred; reported unresolved at the end
	}
	right, err := ParseExpr(eq.right)
	if err != nil {
		return false
	}

	// A definition whose variable already has a user-supplied value turns
	// into an equation over the right side's unknowns.
	selfName, selfRHS := s.definitionOf(eq)
	if selfName != "" && s.userValued[selfName] {
		target, _ := s.eval.Var(selfName)
		unknowns := s.eval.Unknowns(selfRHS)
		if len(unknowns) == 0 {
			return false // consistency is pass 3's business
		}
		if len(unknowns) > 1 {
			return false
		}
		return s.solveFor(eq, &NumberNode{Value: target}, selfRHS, unknowns[0])
	}

	// Substitute solved definitions into both sides, then count unknowns.
	// An equation never substitutes its own definition into itself; that
	// would erase the very unknown it determines.
	for name, repl := range subst {
		if name == selfName {
			continue
		}
		left = Substitute(left, name, repl)
		right = Substitute(right, name, repl)
	}
	unknowns := unionUnknowns(s.eval, left, right)
	switch len(unknowns) {
	case 0:
		return false // already consistent or checked in pass 3
	case 1:
		return s.solveFor(eq, left, right, unknowns[0])
	default:
		return false // deferred to a later round
	}
}

func unionUnknowns(eval *EvalContext, left, right Node) []string {
	seen := map[string]bool{}
	var out []string
	for _, u := range append(eval.Unknowns(left), eval.Unknowns(right)...) {
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}

// completeEquation appends the evaluated left side after the '='.
func (s *solver) completeEquation(eq *equation) bool {
	node, err := ParseExpr(eq.left)
	if err != nil {
		return false
	}
	if len(s.eval.Unknowns(node)) > 0 {
		return false
	}
	v, err := s.eval.Eval(node)
	if err != nil {
		return false
	}
	// Full precision so the completed text balances exactly on re-solve.
	opts := s.formatOpts(nil)
	opts.FullPrecision = true
	text := " " + FormatNumber(v, opts)
	if eq.braced {
		text += " "
	}
	s.editLine(eq.insLine, eq.insCol, 0, text)
	s.solved++
	return true
}

// solveFor finds x with left(x) == right(x), honoring declared limits, and
// writes the result back at x's declaration sites.
func (s *solver) solveFor(eq *equation, left, right Node, x string) bool {
	// Direct evaluation when the equation is x = known (or known = x).
	if v, ok := s.directAssign(left, right, x); ok {
		s.assign(x, v)
		return true
	}

	frame := s.eval.frame()
	frame.atLine = eq.line
	f := func(v float64) float64 {
		frame.SetVar(x, v)
		l, err := frame.Eval(left)
		if err != nil {
			return math.NaN()
		}
		r, err := frame.Eval(right)
		if err != nil {
			return math.NaN()
		}
		return l - r
	}

	limits := s.limitsOf(x)
	root, err := FindRoot(f, limits)
	if err != nil {
		s.addError((&SolveError{Line: eq.line, Msg: fmt.Sprintf("cannot solve for %q: %s", x, err)}).Error())
		return false
	}
	s.assign(x, root)
	return true
}

func (s *solver) directAssign(left, right Node, x string) (float64, bool) {
	if v, ok := left.(*VariableNode); ok && v.Name == x {
		if len(s.eval.Unknowns(right)) == 0 {
			if val, err := s.eval.Eval(right); err == nil {
				return val, true
			}
		}
	}
	if v, ok := right.(*VariableNode); ok && v.Name == x {
		if len(s.eval.Unknowns(left)) == 0 {
			if val, err := s.eval.Eval(left); err == nil {
				return val, true
			}
		}
	}
	return 0, false
}

// limitsOf evaluates the declared [low:high] limits of name, if any.
func (s *solver) limitsOf(name string) *Limits {
	for _, d := range s.declSites[name] {
		if !d.HasLimits {
			continue
		}
		s.eval.atLine = d.Line
		lowNode, err1 := ParseExpr(d.LowToks)
		highNode, err2 := ParseExpr(d.HighToks)
		if err1 != nil || err2 != nil {
			return nil
		}
		low, err1 := s.eval.Eval(lowNode)
		high, err2 := s.eval.Eval(highNode)
		if err1 != nil || err2 != nil {
			return nil
		}
		return &Limits{Low: low, High: high}
	}
	return nil
}

// assign records a solved value and writes it at the variable's declaration
// sites.
func (s *solver) assign(name string, v float64) {
	s.eval.SetVar(name, v)
	s.solved++
	s.fillSites(name)
}

// fillSites writes name's value at each of its empty (or stale output)
// declaration sites. Reports whether any text changed.
func (s *solver) fillSites(name string) bool {
	v, ok := s.eval.Var(name)
	if !ok {
		return false
	}
	changed := false
	for _, d := range s.declSites[name] {
		if d.HasValue() && !d.IsOutput() {
			continue
		}
		text := FormatNumber(v, s.formatOpts(d))
		if !d.HasValue() {
			s.editLine(d.Marker.Line, markerEnd(d.Marker), 0, " "+text)
			changed = true
			continue
		}
		start := d.ValueToks[0].Col
		last := d.ValueToks[len(d.ValueToks)-1]
		if cur := s.lineSlice(last.Line, start, last.Col+len(last.Lexeme)); cur != text {
			s.editLine(last.Line, start, last.Col+len(last.Lexeme)-start, text)
			changed = true
		}
	}
	if changed {
		s.refresh()
	}
	return changed
}

func markerEnd(m Token) int { return m.Col + len(m.Lexeme) }

func (s *solver) lineSlice(line, start, end int) string {
	if line < 1 || line > len(s.lines) {
		return ""
	}
	txt := s.lines[line-1]
	if start > len(txt) {
		start = len(txt)
	}
	if end > len(txt) {
		end = len(txt)
	}
	return txt[start:end]
}

// writeOutputs evaluates expression-output lines and output declarations,
// rewriting their displayed values. Newly produced values count as solved.
func (s *solver) writeOutputs() bool {
	changed := false
	for _, d := range s.decls {
		switch d.Kind {
		case KindExprOutput:
			node, err := ParseExpr(d.ExprToks)
			if err != nil {
				continue
			}
			s.eval.atLine = d.Line
			if len(s.eval.Unknowns(node)) > 0 {
				continue
			}
			v, err := s.eval.Eval(node)
			if err != nil {
				continue
			}
			if s.writeDeclValue(d, v) {
				changed = true
			}
		case KindDeclaration:
			if !d.IsOutput() {
				continue
			}
			s.eval.atLine = d.Line
			v, ok := s.eval.lookupName(d.Name)
			if !ok {
				continue
			}
			if s.writeDeclValue(d, v) {
				changed = true
			}
		}
	}
	if changed {
		s.refresh()
	}
	return changed
}

// writeDeclValue writes v after d's marker, replacing a stale value.
func (s *solver) writeDeclValue(d *Declaration, v float64) bool {
	text := FormatNumber(v, s.formatOpts(d))
	if !d.HasValue() {
		s.editLine(d.Marker.Line, markerEnd(d.Marker), 0, " "+text)
		s.solved++
		return true
	}
	start := d.ValueToks[0].Col
	last := d.ValueToks[len(d.ValueToks)-1]
	end := last.Col + len(last.Lexeme)
	if s.lineSlice(last.Line, start, end) == text {
		return false
	}
	s.editLine(last.Line, start, end-start, text)
	s.solved++
	return true
}

// ----- pass 3: final output -----

func (s *solver) finish() {
	s.spliceInlines(true)
	s.refresh()
	s.writeOutputs()

	// Fill every declared-but-empty variable at every declaration site.
	for name := range s.declSites {
		if _, ok := s.eval.Var(name); ok {
			s.fillSites(name)
		}
	}

	// Re-check every equation for numeric balance.
	for _, eq := range s.equations {
		s.checkBalance(eq)
	}
}

func (s *solver) checkBalance(eq *equation) {
	if len(eq.left) == 0 || len(eq.right) == 0 {
		return
	}
	if s.tryFuncDef(eq) != nil {
		return // a function definition, not an equation
	}
	left, errL := ParseExpr(eq.left)
	right, errR := ParseExpr(eq.right)
	if errL != nil {
		s.addError(errL.Error())
		return
	}
	if errR != nil {
		s.addError(errR.Error())
		return
	}
	s.eval.atLine = eq.line
	if len(s.eval.Unknowns(left)) > 0 || len(s.eval.Unknowns(right)) > 0 {
		return // still has unknowns; not an error
	}
	l, err := s.eval.Eval(left)
	if err != nil {
		return
	}
	r, err := s.eval.Eval(right)
	if err != nil {
		return
	}
	if math.IsNaN(l) || math.IsNaN(r) {
		return
	}
	if math.Abs(l-r) > balanceRelTol*math.Max(1, math.Max(math.Abs(l), math.Abs(r))) {
		s.addError(fmt.Sprintf("Equation at line %d is inconsistent: %v != %v", eq.line, l, r))
	}
}
