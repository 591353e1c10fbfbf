// line.go: per-line grammar classifier.
//
// Given one line's tokens, the classifier decides whether the line is a
// variable declaration, an expression-output line, or neither, and extracts
// the structured fields: name or left-side expression, marker, limits,
// value tokens, comment, and label span. Classification is deliberately
// heuristic — labels are free text that may contain colons, minus signs and
// numbers — and replicates the original notation's tie-breaks exactly.
package mathpad

import "strings"

// ClearBehavior says when a declaration's value is discarded.
type ClearBehavior int

const (
	ClearNone    ClearBehavior = iota // <- input values persist
	ClearOnClear                      // : and :: variables
	ClearOnSolve                      // -> and ->> outputs, recomputed every solve
)

// DeclKind distinguishes bare-name declarations from expression outputs.
type DeclKind int

const (
	KindDeclaration DeclKind = iota
	KindExprOutput
)

// Declaration is one classified line. For KindDeclaration, Name is the
// declared identifier; for KindExprOutput, ExprToks hold the left-side
// expression instead.
type Declaration struct {
	Kind     DeclKind
	Name     string
	ExprToks []Token

	Marker        Token
	Clear         ClearBehavior
	Format        Format
	Base          int // display base; 10 when undecorated
	FullPrecision bool

	HasLimits bool
	LowToks   []Token
	HighToks  []Token

	ValueToks []Token
	UnitText  string // implicit trailing comment after an output value
	Comment   string // quoted comment, wins over UnitText
	HasQuoted bool

	LabelEnd int // tokens before this index are label text
	Line     int // 1-based source line of the marker
}

// HasValue reports whether the declaration carries a value payload.
func (d *Declaration) HasValue() bool { return len(d.ValueToks) > 0 }

// IsOutput reports whether the marker is -> or ->>.
func (d *Declaration) IsOutput() bool {
	return d.Marker.Type == OUTPUT || d.Marker.Type == FULLOUT
}

// ClassifyLine classifies one line's tokens (NEWLINE/EOF excluded). It
// returns nil for plain text, equations, and lines deferred to the equation
// finder.
func ClassifyLine(toks []Token) *Declaration {
	work, quoted, hasQuoted, lineComment := splitComments(toks)
	_ = lineComment

	mi := pickMarker(work)
	if mi < 0 {
		return nil
	}
	marker := work[mi]

	// A brace right after the marker belongs to a (possibly multi-line)
	// braced equation; the equation finder owns it.
	if mi+1 < len(work) && work[mi+1].Type == LCURLY {
		return nil
	}

	d := &Declaration{
		Marker:        marker,
		Format:        marker.Format,
		Base:          10,
		FullPrecision: marker.Type == DCOLON || marker.Type == FULLOUT,
		Comment:       quoted,
		HasQuoted:     hasQuoted,
		Line:          marker.Line,
	}
	if marker.Base != 0 {
		d.Base = marker.Base
	}
	switch marker.Type {
	case INPUT:
		d.Clear = ClearNone
	case OUTPUT, FULLOUT:
		d.Clear = ClearOnSolve
	default:
		d.Clear = ClearOnClear
	}

	if !d.walkBack(work, mi) {
		// Input variables can never be computed expressions.
		if marker.Type == INPUT {
			return nil
		}
		if !d.scanExpr(work, mi) {
			return nil
		}
		d.Kind = KindExprOutput
		// An undecorated output inherits the format of a money or percent
		// literal inside the expression, so "3.25$->>" prints as money.
		if d.Format == FmtNone {
			for _, t := range d.ExprToks {
				if t.Type == NUMBER && t.Format != FmtNone {
					d.Format = t.Format
					break
				}
			}
		}
	}

	d.splitPayload(work, mi)
	return d
}

// splitComments strips COMMENT/LINECOMMENT tokens, returning the remaining
// tokens and the first quoted comment's text.
func splitComments(toks []Token) (work []Token, quoted string, hasQuoted bool, lineComment string) {
	work = make([]Token, 0, len(toks))
	for _, t := range toks {
		switch t.Type {
		case COMMENT:
			if !hasQuoted {
				quoted, hasQuoted = t.Lexeme, true
			}
		case LINECOMMENT:
			lineComment = t.Lexeme
		case NEWLINE, EOF:
		default:
			work = append(work, t)
		}
	}
	return
}

// pickMarker chooses the active marker index, or -1.
//
// An input marker always wins (leftmost if several). Otherwise precedence is
// ->> over -> over :: over :. Arrow markers prefer the leftmost occurrence;
// colon markers prefer the rightmost, because labels frequently contain
// internal colons and the final colon is the real separator.
func pickMarker(toks []Token) int {
	best := -1
	rank := func(tt TokenType) int {
		switch tt {
		case FULLOUT:
			return 4
		case OUTPUT:
			return 3
		case DCOLON:
			return 2
		case COLON:
			return 1
		}
		return 0
	}
	for i, t := range toks {
		if t.Type == INPUT {
			return i
		}
		r := rank(t.Type)
		if r == 0 {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		br := rank(toks[best].Type)
		switch {
		case r > br:
			best = i
		case r == br && (t.Type == COLON || t.Type == DCOLON):
			best = i // rightmost colon wins
		}
	}
	return best
}

// walkBack walks leftward from the marker looking for the declaration shape
// identifier suffix? limits? — decoration, an optional [low:high] bracket, an
// optional #digits suffix, then a single identifier. Reports success.
func (d *Declaration) walkBack(toks []Token, mi int) bool {
	i := mi - 1

	// Unabsorbed $/% decoration between the shape and the marker.
	for i >= 0 && (toks[i].Type == DOLLAR || toks[i].Type == MOD) {
		i--
	}

	if i >= 0 && toks[i].Type == RBRACKET {
		open, colon := scanLimits(toks, i)
		if open < 0 {
			return false
		}
		d.HasLimits = true
		d.LowToks = toks[open+1 : colon]
		d.HighToks = toks[colon+1 : i]
		i = open - 1
	}

	if i >= 0 && toks[i].Type == HASH {
		if d.Base == 10 && d.Marker.Base == 0 {
			d.Base = toks[i].Base
		}
		i--
	}

	if i < 0 || toks[i].Type != IDENT {
		return false
	}

	// An operator or ')' before the identifier means it is the tail of an
	// expression, not a bare name; so does a number glued directly to it.
	if i > 0 {
		prev := toks[i-1].Type
		if isBinaryOpToken(prev) || prev == TILDE || prev == BANG || prev == RPAREN {
			return false
		}
		if prev == NUMBER && toks[i].Adjoined {
			return false
		}
	}

	d.Kind = KindDeclaration
	d.Name = toks[i].Lexeme
	d.LabelEnd = i
	return true
}

// scanLimits finds the [ matching the ] at close and the colon separating
// low from high at nesting depth 1. Colons nested in deeper brackets or in
// parentheses are not separators.
func scanLimits(toks []Token, close int) (open, colon int) {
	depth := 0
	colon = -1
	for i := close; i >= 0; i-- {
		switch toks[i].Type {
		case RBRACKET, RPAREN:
			depth++
		case LBRACKET, LPAREN:
			depth--
			if depth == 0 {
				if colon < 0 {
					return -1, -1
				}
				return i, colon
			}
		case COLON:
			if depth == 1 && colon < 0 {
				colon = i
			}
		}
	}
	return -1, -1
}

// scanExpr locates the left-side expression of an expression-output line by
// scanning leftward from the marker. Everything left of the start is label
// text. Reports whether a plausible expression was found.
func (d *Declaration) scanExpr(toks []Token, mi int) bool {
	end := mi // exclusive
	i := mi - 1

	// Stray $/% decoration left of the marker; glued forms were already
	// folded by the lexer.
	for i >= 0 && (toks[i].Type == DOLLAR || (toks[i].Type == MOD && i == mi-1)) {
		i--
		end = i + 1
	}
	if i < 0 {
		return false
	}

	start := -1
	expectOperand := true
	for i >= 0 {
		t := toks[i]
		if expectOperand {
			switch t.Type {
			case NUMBER:
				start = i
				i--
				expectOperand = false
			case IDENT:
				start = i
				i--
				expectOperand = false
			case HASH:
				// base suffix; the literal it decorates comes next
				i--
			case RPAREN:
				open := matchParenLeft(toks, i)
				if open < 0 {
					return false
				}
				start = open
				i = open - 1
				// A glued identifier before '(' is a call.
				if i >= 0 && toks[i].Type == IDENT && toks[open].Adjoined {
					start = i
					i--
				}
				expectOperand = false
			default:
				i = -1
			}
			continue
		}

		// Just consumed an operand; an operator extends the expression left.
		switch {
		case t.Type == MINUS || t.Type == PLUS:
			// Unary sign is label punctuation unless something that could be
			// its left operand precedes it.
			if i == 0 || !canBeLeftOperand(toks[i-1].Type) {
				i = -1
				break
			}
			i--
			expectOperand = true
		case isBinaryOpToken(t.Type):
			i--
			expectOperand = true
		case t.Type == TILDE || t.Type == BANG:
			// Prefix operator; keep the operand expectation.
			start = i
			i--
			expectOperand = false
		default:
			i = -1
		}
	}

	if start < 0 {
		return false
	}

	// A bare trailing identifier with no operator at all is a declaration
	// shape, which walkBack already rejected; here it means the identifier
	// sits directly before a number (label, not operand) or similar. Require
	// the expression to not be a lone identifier.
	if start == mi-1 && toks[start].Type == IDENT {
		return false
	}

	d.ExprToks = toks[start:end]
	d.LabelEnd = start
	return true
}

func matchParenLeft(toks []Token, close int) int {
	depth := 0
	for i := close; i >= 0; i-- {
		switch toks[i].Type {
		case RPAREN:
			depth++
		case LPAREN:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func canBeLeftOperand(tt TokenType) bool {
	switch tt {
	case IDENT, NUMBER, RPAREN, RBRACKET:
		return true
	}
	return isBinaryOpToken(tt)
}

func isBinaryOpToken(tt TokenType) bool {
	switch tt {
	case PLUS, MINUS, STAR, SLASH, MOD, POW, AMP, PIPE, CARET, SHL, SHR,
		ANDAND, OROR, XORXOR, EQ, NEQ, LESS, LESS_EQ, GREATER, GREATER_EQ:
		return true
	}
	return false
}

// splitPayload extracts the right-hand payload after the marker. Output
// markers split a leading signed number or special value as the value; any
// trailing text becomes an implicit unit comment. Other markers take the
// whole remainder as the value.
func (d *Declaration) splitPayload(toks []Token, mi int) {
	rest := toks[mi+1:]
	if len(rest) == 0 {
		return
	}

	if !d.IsOutput() {
		d.ValueToks = rest
		return
	}

	n := valueTokenCount(rest)
	d.ValueToks = rest[:n]
	if n < len(rest) {
		d.UnitText = rawTokenText(rest[n:])
	}
}

// valueTokenCount measures the leading signed-number-or-special-value run:
// an optional sign, then a number, NaN, Infinity, or a base literal.
func valueTokenCount(toks []Token) int {
	i := 0
	if i < len(toks) && (toks[i].Type == MINUS || toks[i].Type == PLUS) {
		i++
	}
	if i >= len(toks) {
		return 0
	}
	switch toks[i].Type {
	case NUMBER:
		return i + 1
	case IDENT:
		lex := strings.ToLower(toks[i].Lexeme)
		if lex == "nan" || lex == "infinity" {
			return i + 1
		}
		// Base literal spelled with letter digits: ff#16.
		if i+1 < len(toks) && toks[i+1].Type == HASH && toks[i+1].Adjoined {
			return i + 2
		}
	}
	return 0
}

// rawTokenText reassembles token lexemes with single spaces; used only for
// implicit unit comments.
func rawTokenText(toks []Token) string {
	parts := make([]string, 0, len(toks))
	for _, t := range toks {
		parts = append(parts, t.Lexeme)
	}
	return strings.Join(parts, " ")
}
