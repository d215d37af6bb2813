package checker

import (
	"testing"

	"github.com/Rohithoctacter/orion/internal/lexer"
	"github.com/Rohithoctacter/orion/internal/parser"
)

func checkSource(t *testing.T, source string) []string {
	t.Helper()
	toks, lexErr := lexer.New(source).Tokenize()
	if lexErr != nil {
		t.Fatalf("lex error: %v", lexErr)
	}
	prog, pdiags := parser.New(toks).Parse()
	if pdiags.HasErrors() {
		t.Fatalf("parse error: %v", pdiags.All())
	}
	diags := Check(prog)
	msgs := make([]string, 0, diags.Len())
	for _, d := range diags.All() {
		msgs = append(msgs, d.String())
	}
	return msgs
}

func TestCheckAcceptsWellTypedPrograms(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{
			name:   "int arithmetic",
			source: "x = 1 + 2\nout(x)\n",
		},
		{
			name:   "numeric widening in addition",
			source: "x = 1\ny = 2.5\nz = x + y\nout(z)\n",
		},
		{
			name:   "string concatenation",
			source: "a = \"foo\"\nb = \"bar\"\nout(a + b)\n",
		},
		{
			name: "function call with explicit params",
			source: `fn add(a int64, b int64) -> int64 {
	return a + b
}
out(add(1, 2))
`,
		},
		{
			name: "while loop with break",
			source: `i = 0
while i < 10 {
	if i == 5 {
		break
	}
	i = i + 1
}
`,
		},
		{
			name:   "for-in over a range",
			source: "for i in range(0, 10) {\n\tout(i)\n}\n",
		},
		{
			name: "global keeps a function writing the root binding",
			source: `count = 0
fn bump() {
	global count
	count = count + 1
}
bump()
out(count)
`,
		},
		{
			name: "struct declaration and field read",
			source: `struct Point {
	x int64
	y int64
}
p = Point(1, 2)
out(p.x)
`,
		},
		{
			name: "enum declaration and member read",
			source: `enum Color {
	Red
	Green
	Blue
}
out(Red)
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if msgs := checkSource(t, tt.source); len(msgs) != 0 {
				t.Errorf("expected no diagnostics, got %v", msgs)
			}
		})
	}
}

func TestCheckRejectsIllTypedPrograms(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{
			name:   "undeclared identifier",
			source: "out(missing)\n",
		},
		{
			name:   "break outside a loop",
			source: "break\n",
		},
		{
			name:   "continue outside a loop",
			source: "continue\n",
		},
		{
			name:   "return outside a function",
			source: "return 1\n",
		},
		{
			name: "wrong argument count",
			source: `fn add(a int64, b int64) -> int64 {
	return a + b
}
out(add(1))
`,
		},
		{
			name:   "call to an unknown function",
			source: "out(mystery(1, 2))\n",
		},
		{
			name:   "string plus int has no operator",
			source: "out(\"x\" + 1)\n",
		},
		{
			name: "explicit declaration rejects a mismatched value",
			source: "x int64 = \"not a number\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if msgs := checkSource(t, tt.source); len(msgs) == 0 {
				t.Errorf("expected at least one diagnostic, got none")
			}
		})
	}
}

func TestCheckResolvesIdentifierScope(t *testing.T) {
	source := `fn f(a int64) -> int64 {
	b = a + 1
	return b
}
`
	toks, lexErr := lexer.New(source).Tokenize()
	if lexErr != nil {
		t.Fatalf("lex error: %v", lexErr)
	}
	prog, pdiags := parser.New(toks).Parse()
	if pdiags.HasErrors() {
		t.Fatalf("parse error: %v", pdiags.All())
	}
	if diags := Check(prog); diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.All())
	}
}
