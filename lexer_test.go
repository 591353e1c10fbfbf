// lexer_test.go
package mathpad

import (
	"math"
	"reflect"
	"testing"
)

func typesWithoutEOF(tokens []Token) []TokenType {
	if len(tokens) == 0 {
		return nil
	}
	end := len(tokens)
	if tokens[end-1].Type == EOF {
		end--
	}
	out := make([]TokenType, 0, end)
	for i := 0; i < end; i++ {
		out = append(out, tokens[i].Type)
	}
	return out
}

func wantTypes(t *testing.T, src string, want []TokenType) []Token {
	t.Helper()
	got := Tokenize(src)
	gotTypes := typesWithoutEOF(got)
	if !reflect.DeepEqual(gotTypes, want) {
		t.Fatalf("\nsource:\n%s\nwant types:\n%v\ngot types:\n%v\n", src, want, gotTypes)
	}
	return got
}

func Test_Lexer_Declaration_Basic(t *testing.T) {
	got := wantTypes(t, "Width w: 4", []TokenType{IDENT, IDENT, COLON, NUMBER})
	if got[3].Value != 4 {
		t.Fatalf("value: want 4, got %v", got[3].Value)
	}
}

func Test_Lexer_Markers(t *testing.T) {
	wantTypes(t, "a: b:: c<- d-> e->>", []TokenType{
		IDENT, COLON, IDENT, DCOLON, IDENT, INPUT, IDENT, OUTPUT, IDENT, FULLOUT,
	})
}

func Test_Lexer_Marker_Decoration_Money(t *testing.T) {
	got := wantTypes(t, "price$: 3", []TokenType{IDENT, COLON, NUMBER})
	if got[1].Format != FmtMoney {
		t.Fatalf("marker format: want FmtMoney, got %v", got[1].Format)
	}
}

func Test_Lexer_Marker_Decoration_Percent(t *testing.T) {
	got := wantTypes(t, "rate%->", []TokenType{IDENT, OUTPUT})
	if got[1].Format != FmtPercent {
		t.Fatalf("marker format: want FmtPercent, got %v", got[1].Format)
	}
}

func Test_Lexer_Marker_Decoration_Base(t *testing.T) {
	got := wantTypes(t, "mask#16->", []TokenType{IDENT, OUTPUT})
	if got[1].Base != 16 {
		t.Fatalf("marker base: want 16, got %d", got[1].Base)
	}
}

func Test_Lexer_Marker_Decoration_Requires_Adjacency(t *testing.T) {
	// Whitespace between '$' and ':' leaves them as separate tokens.
	got := wantTypes(t, "x $ :", []TokenType{IDENT, DOLLAR, COLON})
	if got[2].Format != FmtNone {
		t.Fatalf("marker format: want FmtNone, got %v", got[2].Format)
	}
}

func Test_Lexer_Money_Literal_Trailing(t *testing.T) {
	got := wantTypes(t, "3.25$", []TokenType{NUMBER})
	if got[0].Format != FmtMoney || got[0].Value != 3.25 {
		t.Fatalf("money literal: got %+v", got[0])
	}
}

func Test_Lexer_Money_Literal_Leading(t *testing.T) {
	got := wantTypes(t, "$3.25", []TokenType{NUMBER})
	if got[0].Format != FmtMoney || got[0].Value != 3.25 {
		t.Fatalf("money literal: got %+v", got[0])
	}
	if got[0].Lexeme != "$3.25" {
		t.Fatalf("money lexeme: got %q", got[0].Lexeme)
	}
}

func Test_Lexer_Percent_Literal(t *testing.T) {
	got := wantTypes(t, "5%", []TokenType{NUMBER})
	if got[0].Format != FmtPercent || got[0].Value != 0.05 {
		t.Fatalf("percent literal: got %+v", got[0])
	}
}

func Test_Lexer_Percent_Stays_Modulo(t *testing.T) {
	// '%' followed by an operand is the modulo operator.
	wantTypes(t, "5%2", []TokenType{NUMBER, MOD, NUMBER})
	wantTypes(t, "5%x", []TokenType{NUMBER, MOD, IDENT})
	wantTypes(t, "5%(2)", []TokenType{NUMBER, MOD, LPAREN, NUMBER, RPAREN})
}

func Test_Lexer_Base_Literals(t *testing.T) {
	cases := []struct {
		src  string
		want float64
		base int
	}{
		{"0x1f", 31, 16},
		{"0b101", 5, 2},
		{"0o17", 15, 8},
		{"ff#16", 255, 16},
		{"7v#32", 7*32 + 31, 32},
		{"101#2", 5, 2},
	}
	for _, c := range cases {
		got := wantTypes(t, c.src, []TokenType{NUMBER})
		if got[0].Value != c.want || got[0].Base != c.base {
			t.Fatalf("%s: want (%v, base %d), got (%v, base %d)",
				c.src, c.want, c.base, got[0].Value, got[0].Base)
		}
	}
}

func Test_Lexer_Ident_With_Hash_Suffix(t *testing.T) {
	// 'v' is not a valid digit string in base 8, so it stays IDENT + HASH.
	got := wantTypes(t, "v#8", []TokenType{IDENT, HASH})
	if got[1].Base != 8 {
		t.Fatalf("hash base: want 8, got %d", got[1].Base)
	}
}

func Test_Lexer_Numbers(t *testing.T) {
	cases := []struct {
		src  string
		want float64
	}{
		{"42", 42},
		{"3.25", 3.25},
		{"1e3", 1000},
		{"2.5e-2", 0.025},
	}
	for _, c := range cases {
		got := wantTypes(t, c.src, []TokenType{NUMBER})
		if got[0].Value != c.want {
			t.Fatalf("%s: want %v, got %v", c.src, c.want, got[0].Value)
		}
	}
}

func Test_Lexer_Operators(t *testing.T) {
	wantTypes(t, "a ** b << c >> d && e || f ^^ g", []TokenType{
		IDENT, POW, IDENT, SHL, IDENT, SHR, IDENT, ANDAND, IDENT, OROR, IDENT, XORXOR, IDENT,
	})
	wantTypes(t, "a == b != c <= d >= e < f > g", []TokenType{
		IDENT, EQ, IDENT, NEQ, IDENT, LESS_EQ, IDENT, GREATER_EQ, IDENT, LESS, IDENT, GREATER, IDENT,
	})
}

func Test_Lexer_Quoted_Comment(t *testing.T) {
	got := wantTypes(t, `x: 4 "width in meters"`, []TokenType{IDENT, COLON, NUMBER, COMMENT})
	if got[3].Lexeme != "width in meters" {
		t.Fatalf("comment text: got %q", got[3].Lexeme)
	}
}

func Test_Lexer_Quoted_Comment_Unterminated(t *testing.T) {
	// End of line closes an unterminated quote.
	got := wantTypes(t, "x: 4 \"meters\ny: 5", []TokenType{
		IDENT, COLON, NUMBER, COMMENT, NEWLINE, IDENT, COLON, NUMBER,
	})
	if got[3].Lexeme != "meters" {
		t.Fatalf("comment text: got %q", got[3].Lexeme)
	}
}

func Test_Lexer_Line_Comment(t *testing.T) {
	got := wantTypes(t, "x: 4 // note", []TokenType{IDENT, COLON, NUMBER, LINECOMMENT})
	if got[3].Lexeme != " note" {
		t.Fatalf("comment text: got %q", got[3].Lexeme)
	}
}

func Test_Lexer_Newlines_Significant(t *testing.T) {
	wantTypes(t, "a: 1\nb: 2", []TokenType{
		IDENT, COLON, NUMBER, NEWLINE, IDENT, COLON, NUMBER,
	})
}

func Test_Lexer_Illegal_Character(t *testing.T) {
	got := wantTypes(t, "x: 4 @", []TokenType{IDENT, COLON, NUMBER, ILLEGAL})
	if got[3].Lexeme != "@" {
		t.Fatalf("illegal lexeme: got %q", got[3].Lexeme)
	}
}

func Test_Lexer_Adjoined(t *testing.T) {
	got := wantTypes(t, "f(x) g (y)", []TokenType{
		IDENT, LPAREN, IDENT, RPAREN, IDENT, LPAREN, IDENT, RPAREN,
	})
	if !got[1].Adjoined {
		t.Fatalf("'(' after f should be adjoined")
	}
	if got[5].Adjoined {
		t.Fatalf("'(' after g should not be adjoined")
	}
}

func Test_Lexer_Positions(t *testing.T) {
	got := wantTypes(t, "a: 1\nbb: 22", []TokenType{
		IDENT, COLON, NUMBER, NEWLINE, IDENT, COLON, NUMBER,
	})
	if got[4].Line != 2 || got[4].Col != 0 {
		t.Fatalf("bb position: want 2:0, got %d:%d", got[4].Line, got[4].Col)
	}
	if got[6].Line != 2 || got[6].Col != 4 {
		t.Fatalf("22 position: want 2:4, got %d:%d", got[6].Line, got[6].Col)
	}
}

func Test_Lexer_Percent_Literal_Value_Precision(t *testing.T) {
	got := wantTypes(t, "12.5%", []TokenType{NUMBER})
	if math.Abs(got[0].Value-0.125) > 1e-15 {
		t.Fatalf("12.5%%: want 0.125, got %v", got[0].Value)
	}
}
