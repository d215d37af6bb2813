package lexer

import (
	"testing"

	"github.com/Rohithoctacter/orion/internal/token"
)

func kinds(t *testing.T, source string) []token.Kind {
	t.Helper()
	toks, err := New(source).Tokenize()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenizeRecognizesEveryTokenFamily(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []token.Kind
	}{
		{
			name:   "integer and float literals",
			source: "1 2.5",
			want:   []token.Kind{token.INT, token.FLOAT, token.EOF},
		},
		{
			name:   "string literal with escapes",
			source: `"a\nb"`,
			want:   []token.Kind{token.STRING, token.EOF},
		},
		{
			name:   "keywords vs identifiers",
			source: "fn if elif else while for in return break continue pass global local struct enum foo",
			want: []token.Kind{
				token.FN, token.IF, token.ELIF, token.ELSE, token.WHILE, token.FOR, token.IN,
				token.RETURN, token.BREAK, token.CONTINUE, token.PASS, token.GLOBAL, token.LOCAL,
				token.STRUCT, token.ENUM, token.IDENT, token.EOF,
			},
		},
		{
			name:   "two-char operators take priority over their one-char prefixes",
			source: "== != <= >= ** // += -= *= /= %= -> =>",
			want: []token.Kind{
				token.EQ, token.NE, token.LE, token.GE, token.STARSTAR, token.SLASHSLASH,
				token.PLUSEQ, token.MINUSEQ, token.STAREQ, token.SLASHEQ, token.PERCENTEQ,
				token.ARROW, token.FATARROW, token.EOF,
			},
		},
		{
			name:   "newline is a significant token",
			source: "x = 1\ny = 2\n",
			want: []token.Kind{
				token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
				token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
				token.EOF,
			},
		},
		{
			name:   "line comment stops before the newline",
			source: "x = 1 # comment\n",
			want:   []token.Kind{token.IDENT, token.ASSIGN, token.INT, token.NEWLINE, token.EOF},
		},
		{
			name:   "block comment can span lines without emitting a token",
			source: "x /* multi\nline */ = 1\n",
			want:   []token.Kind{token.IDENT, token.ASSIGN, token.INT, token.NEWLINE, token.EOF},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := kinds(t, tc.source)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d tokens %v, want %d %v", len(got), got, len(tc.want), tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("token %d: got %v, want %v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestTokenizeStripsCarriageReturns(t *testing.T) {
	toks, err := New("x = 1\r\ny = 2\r\n").Tokenize()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	for _, tok := range toks {
		if tok.Kind == token.NEWLINE && tok.Lexeme != "\n" {
			t.Errorf("expected a bare LF newline lexeme, got %q", tok.Lexeme)
		}
	}
}

func TestTokenizeTracksLineAndColumn(t *testing.T) {
	toks, err := New("x = 1\nyy = 2\n").Tokenize()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	// yy on the second line should start at line 2, column 1.
	for _, tok := range toks {
		if tok.Kind == token.IDENT && tok.Lexeme == "yy" {
			if tok.Pos.Line != 2 || tok.Pos.Column != 1 {
				t.Errorf("expected yy at line 2 column 1, got %+v", tok.Pos)
			}
			return
		}
	}
	t.Fatal("did not find the yy identifier token")
}

func TestTokenizeRejectsUnterminatedString(t *testing.T) {
	_, err := New(`"unterminated`).Tokenize()
	if err == nil {
		t.Fatal("expected a LexError for an unterminated string")
	}
}

func TestTokenizeRejectsStringSpanningNewline(t *testing.T) {
	_, err := New("\"a\nb\"").Tokenize()
	if err == nil {
		t.Fatal("expected a LexError for a string literal spanning a newline")
	}
}

func TestTokenizeRejectsOverflowingIntegerLiteral(t *testing.T) {
	_, err := New("99999999999999999999").Tokenize()
	if err == nil {
		t.Fatal("expected a LexError for an integer literal overflowing int64")
	}
}

func TestTokenizeRejectsUnknownCharacter(t *testing.T) {
	_, err := New("x = 1 ~ 2").Tokenize()
	if err == nil {
		t.Fatal("expected a LexError for an unrecognized character")
	}
}

func TestTokenizeAlwaysEndsInEOF(t *testing.T) {
	for _, source := range []string{"", "x", "x = 1\n", "   \n\n  "} {
		toks, err := New(source).Tokenize()
		if err != nil {
			t.Fatalf("unexpected lex error for %q: %v", source, err)
		}
		if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
			t.Errorf("expected %q to end in EOF, got %v", source, toks)
		}
	}
}
