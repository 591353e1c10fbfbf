// context.go: shared solve context and its text formats.
//
// A Context carries the constants and user-function tables shared by every
// solve. It is read-only once built and safe to share (or cache) across
// concurrent solves of different documents.
package mathpad

import (
	"fmt"
	"strings"
)

// Config holds the per-solve display and evaluation settings.
type Config struct {
	Places          int
	StripZeros      bool
	GroupDigits     bool
	Notation        Notation
	DegreesMode     bool
	ShadowConstants bool
}

// DefaultConfig mirrors the notation's historical defaults: two places,
// stripped zeros, constants shadowable.
func DefaultConfig() Config {
	return Config{
		Places:          2,
		StripZeros:      true,
		ShadowConstants: true,
	}
}

// Context is the shared constants/functions environment for solves.
type Context struct {
	Constants map[string]float64
	Functions map[string]*UserFunc
}

// NewContext parses the constants and functions texts into a Context.
// Constants text is one "name: literal" per line, optionally followed by a
// quoted comment. Functions text is "name(p1;p2;...) = body", single-line or
// brace-delimited across lines. Malformed entries are collected as error
// strings; the rest of the text still loads.
func NewContext(constantsText, functionsText string, cfg Config) (*Context, []string) {
	ctx := &Context{
		Constants: map[string]float64{},
		Functions: map[string]*UserFunc{},
	}
	var errs []string

	errs = append(errs, ctx.loadConstants(constantsText, cfg)...)
	errs = append(errs, ctx.loadFunctions(functionsText)...)
	return ctx, errs
}

func (c *Context) loadConstants(text string, cfg Config) []string {
	var errs []string
	if strings.TrimSpace(text) == "" {
		return nil
	}
	eval := NewEvalContext(nil, nil, cfg.DegreesMode)
	for _, line := range splitLines(Tokenize(text)) {
		work, _, _, _ := splitComments(line)
		if len(work) == 0 {
			continue
		}
		if len(work) < 2 || work[0].Type != IDENT || !work[1].IsMarker() {
			errs = append(errs, fmt.Sprintf("constant: malformed line %d", work[0].Line))
			continue
		}
		name := work[0].Lexeme
		node, err := ParseExpr(work[2:])
		if err != nil {
			errs = append(errs, fmt.Sprintf("constant %q: %s", name, err))
			continue
		}
		v, err := eval.Eval(node)
		if err != nil {
			errs = append(errs, fmt.Sprintf("constant %q: %s", name, err))
			continue
		}
		if work[1].Format == FmtPercent {
			v /= 100
		}
		c.Constants[name] = v
	}
	return errs
}

func (c *Context) loadFunctions(text string) []string {
	var errs []string
	if strings.TrimSpace(text) == "" {
		return nil
	}
	for _, stmt := range splitBraceAware(Tokenize(text)) {
		work, _, _, _ := splitComments(stmt)
		if len(work) == 0 {
			continue
		}
		fn, err := parseFuncDef(work)
		if err != nil {
			errs = append(errs, fmt.Sprintf("function: %s", err))
			continue
		}
		c.Functions[fn.Name] = fn
	}
	return errs
}

// parseFuncDef parses name(p1;p2;...) = body from one statement's tokens.
func parseFuncDef(toks []Token) (*UserFunc, error) {
	i := 0
	if i >= len(toks) || toks[i].Type != IDENT {
		return nil, fmt.Errorf("line %d: expected function name", tokLine(toks))
	}
	name := toks[i].Lexeme
	i++
	if i >= len(toks) || toks[i].Type != LPAREN {
		return nil, fmt.Errorf("%s: expected '('", name)
	}
	i++
	var params []string
	for i < len(toks) && toks[i].Type != RPAREN {
		if toks[i].Type == IDENT {
			params = append(params, toks[i].Lexeme)
			i++
			if i < len(toks) && (toks[i].Type == SEMI || toks[i].Type == COMMA) {
				i++
			}
			continue
		}
		return nil, fmt.Errorf("%s: bad parameter list", name)
	}
	if i >= len(toks) {
		return nil, fmt.Errorf("%s: unterminated parameter list", name)
	}
	i++ // ')'
	if i >= len(toks) || toks[i].Type != ASSIGN {
		return nil, fmt.Errorf("%s: expected '='", name)
	}
	i++
	body := toks[i:]
	// Brace-delimited bodies may span lines.
	if len(body) > 0 && body[0].Type == LCURLY && body[len(body)-1].Type == RCURLY {
		body = body[1 : len(body)-1]
	}
	node, err := ParseExpr(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %s", name, err)
	}
	return &UserFunc{Name: name, Params: params, Body: node}, nil
}

func tokLine(toks []Token) int {
	if len(toks) > 0 {
		return toks[0].Line
	}
	return 0
}

// splitLines groups a token stream into per-line slices, dropping NEWLINE
// and EOF sentinels.
func splitLines(toks []Token) [][]Token {
	var out [][]Token
	var cur []Token
	for _, t := range toks {
		switch t.Type {
		case NEWLINE:
			out = append(out, cur)
			cur = nil
		case EOF:
		default:
			cur = append(cur, t)
		}
	}
	out = append(out, cur)
	return out
}

// splitBraceAware is splitLines except that newlines inside a { } group do
// not end the statement.
func splitBraceAware(toks []Token) [][]Token {
	var out [][]Token
	var cur []Token
	depth := 0
	for _, t := range toks {
		switch t.Type {
		case LCURLY:
			depth++
			cur = append(cur, t)
		case RCURLY:
			depth--
			cur = append(cur, t)
		case NEWLINE:
			if depth > 0 {
				continue
			}
			out = append(out, cur)
			cur = nil
		case EOF:
		default:
			cur = append(cur, t)
		}
	}
	out = append(out, cur)
	return out
}
