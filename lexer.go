// lexer.go: line-oriented tokenizer for the mathpad notation.
package mathpad

import (
	"strconv"
	"strings"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL
	NEWLINE // the grammar is line-based; newlines are significant

	// Literals & identifiers
	NUMBER
	IDENT
	COMMENT     // quoted "..." comment (text in Lexeme, quotes stripped)
	LINECOMMENT // // comment (text in Lexeme)

	// Punctuation
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	LCURLY
	RCURLY
	SEMI
	COMMA
	DOLLAR
	HASH      // #digits base suffix; parsed base in Base
	BACKSLASH // inline-eval delimiter

	// Declaration markers
	COLON   // ":"
	DCOLON  // "::"
	INPUT   // "<-"
	OUTPUT  // "->"
	FULLOUT // "->>"

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	MOD // "%" (also percent decoration when glued to a marker)
	POW // "**"
	AMP
	PIPE
	CARET
	TILDE
	BANG
	SHL
	SHR
	ANDAND
	OROR
	XORXOR
	ASSIGN // "="
	EQ     // "=="
	NEQ
	LESS
	LESS_EQ
	GREATER
	GREATER_EQ
)

// Format is the display decoration attached to markers and money literals.
type Format int

const (
	FmtNone Format = iota
	FmtMoney
	FmtPercent
)

// Token is a lexical token. NUMBER tokens carry Value/Base/Lexeme; marker
// tokens carry Format/Base decoration absorbed from a glued $, % or #digits
// suffix. Adjoined is true when no whitespace separated this token from the
// previous one on the same line.
type Token struct {
	Type     TokenType
	Lexeme   string
	Value    float64 // NUMBER
	Base     int     // NUMBER literal base, HASH suffix, marker decoration
	Format   Format  // marker decoration or money literal
	Line     int     // 1-based
	Col      int     // 0-based
	Adjoined bool
}

// IsMarker reports whether the token is a declaration marker.
func (t Token) IsMarker() bool {
	switch t.Type {
	case COLON, DCOLON, INPUT, OUTPUT, FULLOUT:
		return true
	}
	return false
}

// Lexer scans mathpad notation into tokens. It never fails: unrecognized
// characters become ILLEGAL tokens so callers can report them precisely
// without aborting the whole lex.
type Lexer struct {
	src              string
	start            int
	cur              int
	line             int // 1-based
	col              int // 0-based column within line
	tokens           []Token
	whitespaceBefore bool

	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1}
}

// Tokenize scans an entire source string, EOF sentinel included.
func Tokenize(src string) []Token {
	return NewLexer(src).Scan()
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) peekN(n int) (byte, bool) {
	idx := l.cur + n
	if idx >= len(l.src) {
		return 0, false
	}
	return l.src[idx], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch, true
}

func (l *Lexer) addToken(tt TokenType) *Token {
	tok := Token{
		Type:     tt,
		Lexeme:   l.src[l.start:l.cur],
		Line:     l.tokStartLine,
		Col:      l.tokStartCol,
		Adjoined: !l.whitespaceBefore && l.lastOnSameLine(),
	}
	l.tokens = append(l.tokens, tok)
	l.start = l.cur
	l.whitespaceBefore = false
	return &l.tokens[len(l.tokens)-1]
}

func (l *Lexer) lastOnSameLine() bool {
	p := l.previousToken()
	return p != nil && p.Type != NEWLINE
}

func (l *Lexer) previousToken() *Token {
	if len(l.tokens) == 0 {
		return nil
	}
	return &l.tokens[len(l.tokens)-1]
}

func (l *Lexer) popToken() Token {
	tok := l.tokens[len(l.tokens)-1]
	l.tokens = l.tokens[:len(l.tokens)-1]
	return tok
}

func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() {
		ch, _ := l.peek()
		switch ch {
		case ' ', '\r', '\t':
			l.whitespaceBefore = true
			l.advance()
			l.start = l.cur
		default:
			return
		}
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

// ----- scanners -----

// scanIdentifier parses [A-Za-z_][A-Za-z0-9_]*
func (l *Lexer) scanIdentifier() string {
	for {
		b, ok := l.peek()
		if !ok || !isAlphaNum(b) {
			break
		}
		l.advance()
	}
	return l.src[l.start:l.cur]
}

// scanQuotedComment parses a "..." comment terminated by the closing quote or
// end of line. Quotes are not escapable. Returns the inner text.
func (l *Lexer) scanQuotedComment() string {
	l.advance() // opening quote
	textStart := l.cur
	for {
		b, ok := l.peek()
		if !ok || b == '\n' {
			return l.src[textStart:l.cur]
		}
		if b == '"' {
			text := l.src[textStart:l.cur]
			l.advance()
			return text
		}
		l.advance()
	}
}

// scanLineComment consumes "//" to end of line and returns the trailing text.
func (l *Lexer) scanLineComment() string {
	l.advance()
	l.advance() // the two slashes
	textStart := l.cur
	for {
		b, ok := l.peek()
		if !ok || b == '\n' {
			return l.src[textStart:l.cur]
		}
		l.advance()
	}
}

// scanBasePrefixed parses 0x/0b/0o integers. The '0' and prefix letter are
// already consumed.
func (l *Lexer) scanBasePrefixed(base int) *Token {
	digStart := l.cur
	for {
		b, ok := l.peek()
		if !ok || !isAlphaNum(b) {
			break
		}
		l.advance()
	}
	v, err := strconv.ParseUint(l.src[digStart:l.cur], base, 64)
	if err != nil {
		return l.addToken(ILLEGAL)
	}
	tok := l.addToken(NUMBER)
	tok.Value = float64(v)
	tok.Base = base
	return tok
}

// scanNumber parses a decimal number with optional fraction/exponent, or a
// digit-starting base literal of the form digits#base (e.g. 7v#32). A token
// starting with a digit is never an identifier, so word#digits here is
// always a numeric literal.
func (l *Lexer) scanNumber() *Token {
	// Base literal lookahead: a full alnum run glued to '#digits'.
	if run, base, end, ok := l.baseLiteralAhead(); ok {
		for l.cur < end {
			l.advance()
		}
		v, err := strconv.ParseUint(strings.ToLower(run), base, 64)
		if err != nil {
			return l.addToken(ILLEGAL)
		}
		tok := l.addToken(NUMBER)
		tok.Value = float64(v)
		tok.Base = base
		return tok
	}

	// 0x / 0b / 0o prefixes
	if b, ok := l.peek(); ok && b == '0' {
		if p, ok := l.peekN(1); ok {
			switch p {
			case 'x', 'X':
				l.advance()
				l.advance()
				return l.scanBasePrefixed(16)
			case 'b', 'B':
				if d, ok := l.peekN(2); ok && (d == '0' || d == '1') {
					l.advance()
					l.advance()
					return l.scanBasePrefixed(2)
				}
			case 'o', 'O':
				l.advance()
				l.advance()
				return l.scanBasePrefixed(8)
			}
		}
	}

	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
	}
	if b, ok := l.peek(); ok && b == '.' {
		if b2, ok2 := l.peekN(1); ok2 && isDigit(b2) {
			l.advance()
			for {
				b, ok := l.peek()
				if !ok || !isDigit(b) {
					break
				}
				l.advance()
			}
		}
	}
	if b, ok := l.peek(); ok && (b == 'e' || b == 'E') {
		save := l.cur
		l.advance()
		if b2, ok := l.peek(); ok && (b2 == '+' || b2 == '-') {
			l.advance()
		}
		if b3, ok := l.peek(); ok && isDigit(b3) {
			for {
				b4, ok := l.peek()
				if !ok || !isDigit(b4) {
					break
				}
				l.advance()
			}
		} else {
			l.cur = save
		}
	}

	lex := l.src[l.start:l.cur]
	v, err := strconv.ParseFloat(lex, 64)
	if err != nil {
		return l.addToken(ILLEGAL)
	}
	tok := l.addToken(NUMBER)
	tok.Value = v
	tok.Base = 10
	return tok
}

// baseLiteralAhead looks for an alnum run glued to '#digits' starting at the
// current position. Returns the run, the base, and the index past the suffix.
func (l *Lexer) baseLiteralAhead() (run string, base, end int, ok bool) {
	i := l.cur
	for i < len(l.src) && isAlphaNum(l.src[i]) {
		i++
	}
	if i >= len(l.src) || l.src[i] != '#' {
		return "", 0, 0, false
	}
	j := i + 1
	for j < len(l.src) && isDigit(l.src[j]) {
		j++
	}
	if j == i+1 {
		return "", 0, 0, false
	}
	b, err := strconv.Atoi(l.src[i+1 : j])
	if err != nil || b < 2 || b > 36 {
		return "", 0, 0, false
	}
	return l.src[l.cur:i], b, j, true
}

// scanHashSuffix parses '#digits'. The '#' is already consumed.
func (l *Lexer) scanHashSuffix() *Token {
	digStart := l.cur
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
	}
	if l.cur == digStart {
		return l.addToken(ILLEGAL)
	}
	base, err := strconv.Atoi(l.src[digStart:l.cur])
	if err != nil || base < 2 || base > 36 {
		return l.addToken(ILLEGAL)
	}
	tok := l.addToken(HASH)
	tok.Base = base
	return tok
}

// ----- decoration -----

// addMarker emits a marker token, absorbing a glued $, % or #digits suffix
// from the previous token as Format/Base decoration. Later stages rely on
// this so they never re-derive format from surrounding context.
func (l *Lexer) addMarker(tt TokenType) *Token {
	var format Format
	base := 0
	adjoined := false
	if p := l.previousToken(); p != nil && !l.whitespaceBefore && p.Type != NEWLINE {
		switch p.Type {
		case DOLLAR:
			format = FmtMoney
			adjoined = p.Adjoined
			l.popToken()
		case MOD:
			format = FmtPercent
			adjoined = p.Adjoined
			l.popToken()
		case HASH:
			base = p.Base
			adjoined = p.Adjoined
			l.popToken()
		}
	}
	tok := l.addToken(tt)
	if format != FmtNone || base != 0 {
		tok.Format = format
		tok.Base = base
		tok.Adjoined = adjoined
	}
	return tok
}

// addDollar emits '$', or folds it into a directly preceding NUMBER as a
// money literal (e.g. 3.25$).
func (l *Lexer) addDollar() *Token {
	if p := l.previousToken(); p != nil && !l.whitespaceBefore && p.Type == NUMBER {
		p.Format = FmtMoney
		p.Lexeme += "$"
		l.start = l.cur
		l.whitespaceBefore = false
		return p
	}
	return l.addToken(DOLLAR)
}

// addPercent emits '%', or folds it into a directly preceding NUMBER as a
// percent literal (5% == 0.05) when what follows cannot start an operand, so
// 5%2 stays modulo while a trailing 5% is a percentage.
func (l *Lexer) addPercent() *Token {
	if p := l.previousToken(); p != nil && !l.whitespaceBefore && p.Type == NUMBER && p.Format == FmtNone {
		if b, ok := l.peek(); !ok || !(isAlphaNum(b) || b == '(' || b == '.') {
			p.Format = FmtPercent
			p.Value /= 100
			p.Lexeme += "%"
			l.start = l.cur
			l.whitespaceBefore = false
			return p
		}
	}
	return l.addToken(MOD)
}

// foldLeadingDollar folds $3.25 into a single money NUMBER token.
func (l *Lexer) foldLeadingDollar(tok *Token) *Token {
	n := len(l.tokens)
	if n < 2 {
		return tok
	}
	prev := l.tokens[n-2]
	if prev.Type == DOLLAR && tok.Adjoined {
		merged := *tok
		merged.Format = FmtMoney
		merged.Lexeme = "$" + merged.Lexeme
		merged.Col = prev.Col
		merged.Adjoined = prev.Adjoined
		l.tokens[n-2] = merged
		l.tokens = l.tokens[:n-1]
		return &l.tokens[n-2]
	}
	return tok
}

// ----- main scanner -----

func (l *Lexer) scanToken() *Token {
	l.skipWhitespace()
	l.tokStartLine = l.line
	l.tokStartCol = l.col
	l.start = l.cur

	if l.isAtEnd() {
		return l.addToken(EOF)
	}

	ch, _ := l.peek()

	switch ch {
	case '\n':
		l.advance()
		tok := l.addToken(NEWLINE)
		l.whitespaceBefore = false
		return tok
	case '(':
		l.advance()
		return l.addToken(LPAREN)
	case ')':
		l.advance()
		return l.addToken(RPAREN)
	case '[':
		l.advance()
		return l.addToken(LBRACKET)
	case ']':
		l.advance()
		return l.addToken(RBRACKET)
	case '{':
		l.advance()
		return l.addToken(LCURLY)
	case '}':
		l.advance()
		return l.addToken(RCURLY)
	case ';':
		l.advance()
		return l.addToken(SEMI)
	case ',':
		l.advance()
		return l.addToken(COMMA)
	case '$':
		l.advance()
		return l.addDollar()
	case '~':
		l.advance()
		return l.addToken(TILDE)
	case '+':
		l.advance()
		return l.addToken(PLUS)
	case '\\':
		l.advance()
		return l.addToken(BACKSLASH)
	case '"':
		text := l.scanQuotedComment()
		tok := l.addToken(COMMENT)
		tok.Lexeme = text
		return tok
	}

	switch ch {
	case ':':
		l.advance()
		if b, ok := l.peek(); ok && b == ':' {
			l.advance()
			return l.addMarker(DCOLON)
		}
		return l.addMarker(COLON)
	case '-':
		l.advance()
		if b, ok := l.peek(); ok && b == '>' {
			l.advance()
			if b2, ok2 := l.peek(); ok2 && b2 == '>' {
				l.advance()
				return l.addMarker(FULLOUT)
			}
			return l.addMarker(OUTPUT)
		}
		return l.addToken(MINUS)
	case '<':
		l.advance()
		if b, ok := l.peek(); ok {
			switch b {
			case '-':
				l.advance()
				return l.addMarker(INPUT)
			case '<':
				l.advance()
				return l.addToken(SHL)
			case '=':
				l.advance()
				return l.addToken(LESS_EQ)
			}
		}
		return l.addToken(LESS)
	case '>':
		l.advance()
		if b, ok := l.peek(); ok {
			switch b {
			case '>':
				l.advance()
				return l.addToken(SHR)
			case '=':
				l.advance()
				return l.addToken(GREATER_EQ)
			}
		}
		return l.addToken(GREATER)
	case '*':
		l.advance()
		if b, ok := l.peek(); ok && b == '*' {
			l.advance()
			return l.addToken(POW)
		}
		return l.addToken(STAR)
	case '/':
		if b, ok := l.peekN(1); ok && b == '/' {
			text := l.scanLineComment()
			tok := l.addToken(LINECOMMENT)
			tok.Lexeme = text
			return tok
		}
		l.advance()
		return l.addToken(SLASH)
	case '%':
		l.advance()
		return l.addPercent()
	case '&':
		l.advance()
		if b, ok := l.peek(); ok && b == '&' {
			l.advance()
			return l.addToken(ANDAND)
		}
		return l.addToken(AMP)
	case '|':
		l.advance()
		if b, ok := l.peek(); ok && b == '|' {
			l.advance()
			return l.addToken(OROR)
		}
		return l.addToken(PIPE)
	case '^':
		l.advance()
		if b, ok := l.peek(); ok && b == '^' {
			l.advance()
			return l.addToken(XORXOR)
		}
		return l.addToken(CARET)
	case '=':
		l.advance()
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(EQ)
		}
		return l.addToken(ASSIGN)
	case '!':
		l.advance()
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(NEQ)
		}
		return l.addToken(BANG)
	case '#':
		l.advance()
		return l.scanHashSuffix()
	}

	if isDigit(ch) {
		tok := l.scanNumber()
		if tok.Type == NUMBER {
			tok = l.foldLeadingDollar(tok)
		}
		return tok
	}
	if isAlpha(ch) {
		l.scanIdentifier()
		return l.addToken(IDENT)
	}

	// Unrecognized character: report it as a token, never as a fatal error.
	l.advance()
	return l.addToken(ILLEGAL)
}

// Scan tokenizes the entire source and returns tokens (EOF included).
func (l *Lexer) Scan() []Token {
	for {
		tok := l.scanToken()
		if tok.Type == EOF {
			return l.tokens
		}
	}
}
