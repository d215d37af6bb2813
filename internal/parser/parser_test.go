package parser

import (
	"testing"

	"github.com/Rohithoctacter/orion/internal/ast"
	"github.com/Rohithoctacter/orion/internal/lexer"
)

func parseSource(t *testing.T, source string) (*ast.Program, []string) {
	t.Helper()
	toks, lexErr := lexer.New(source).Tokenize()
	if lexErr != nil {
		t.Fatalf("unexpected lex error: %v", lexErr)
	}
	prog, diags := New(toks).Parse()
	msgs := make([]string, 0, diags.Len())
	for _, d := range diags.All() {
		msgs = append(msgs, d.String())
	}
	return prog, msgs
}

func TestParseBuildsExpectedTopLevelShapes(t *testing.T) {
	tests := []struct {
		name   string
		source string
		check  func(t *testing.T, prog *ast.Program)
	}{
		{
			name:   "variable declaration from an arithmetic expression",
			source: "x = 1 + 2\n",
			check: func(t *testing.T, prog *ast.Program) {
				if len(prog.Statements) != 1 {
					t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
				}
				decl, ok := prog.Statements[0].(*ast.VariableDecl)
				if !ok {
					t.Fatalf("expected a VariableDecl, got %T", prog.Statements[0])
				}
				if decl.Name != "x" {
					t.Errorf("expected name x, got %q", decl.Name)
				}
				bin, ok := decl.Init.(*ast.Binary)
				if !ok {
					t.Fatalf("expected the initializer to be a Binary expression, got %T", decl.Init)
				}
				if bin.Op != ast.OpAdd {
					t.Errorf("expected OpAdd, got %v", bin.Op)
				}
			},
		},
		{
			name:   "function declaration with a block body",
			source: "fn add(a int64, b int64) -> int64 {\n\treturn a + b\n}\n",
			check: func(t *testing.T, prog *ast.Program) {
				fn, ok := prog.Statements[0].(*ast.FunctionDecl)
				if !ok {
					t.Fatalf("expected a FunctionDecl, got %T", prog.Statements[0])
				}
				if fn.Name != "add" || len(fn.Params) != 2 {
					t.Errorf("unexpected function shape: name=%q params=%d", fn.Name, len(fn.Params))
				}
				if fn.Body == nil || fn.Expr != nil {
					t.Errorf("expected a block body and no single-expression body")
				}
			},
		},
		{
			name:   "single-expression function uses the fat-arrow form",
			source: "fn square(n int64) -> int64 => n * n\n",
			check: func(t *testing.T, prog *ast.Program) {
				fn, ok := prog.Statements[0].(*ast.FunctionDecl)
				if !ok {
					t.Fatalf("expected a FunctionDecl, got %T", prog.Statements[0])
				}
				if fn.Body != nil || fn.Expr == nil {
					t.Errorf("expected a single expression body and no block")
				}
			},
		},
		{
			name:   "if/elif/else chains nest as If.Else",
			source: "if x == 1 {\n\tpass\n} elif x == 2 {\n\tpass\n} else {\n\tpass\n}\n",
			check: func(t *testing.T, prog *ast.Program) {
				top, ok := prog.Statements[0].(*ast.If)
				if !ok {
					t.Fatalf("expected an If, got %T", prog.Statements[0])
				}
				elif, ok := top.Else.(*ast.If)
				if !ok {
					t.Fatalf("expected elif to desugar to a nested If, got %T", top.Else)
				}
				if _, ok := elif.Else.(*ast.Block); !ok {
					t.Errorf("expected the final else branch to be a Block, got %T", elif.Else)
				}
			},
		},
		{
			name:   "for-in over a range call",
			source: "for i in range(0, 10) {\n\tout(i)\n}\n",
			check: func(t *testing.T, prog *ast.Program) {
				forIn, ok := prog.Statements[0].(*ast.ForIn)
				if !ok {
					t.Fatalf("expected a ForIn, got %T", prog.Statements[0])
				}
				if forIn.Var != "i" {
					t.Errorf("expected loop variable i, got %q", forIn.Var)
				}
				if _, ok := forIn.Iterable.(*ast.Call); !ok {
					t.Errorf("expected the iterable to be a Call, got %T", forIn.Iterable)
				}
			},
		},
		{
			name:   "tuple assignment collects all targets and values",
			source: "a, b = 1, 2\n",
			check: func(t *testing.T, prog *ast.Program) {
				ta, ok := prog.Statements[0].(*ast.TupleAssignment)
				if !ok {
					t.Fatalf("expected a TupleAssignment, got %T", prog.Statements[0])
				}
				if len(ta.Targets) != 2 || len(ta.Values) != 2 {
					t.Errorf("expected 2 targets and 2 values, got %d/%d", len(ta.Targets), len(ta.Values))
				}
			},
		},
		{
			name:   "struct declaration collects typed fields",
			source: "struct Point {\n\tx int64\n\ty int64\n}\n",
			check: func(t *testing.T, prog *ast.Program) {
				sd, ok := prog.Statements[0].(*ast.StructDecl)
				if !ok {
					t.Fatalf("expected a StructDecl, got %T", prog.Statements[0])
				}
				if sd.Name != "Point" || len(sd.Fields) != 2 {
					t.Errorf("unexpected struct shape: name=%q fields=%d", sd.Name, len(sd.Fields))
				}
			},
		},
		{
			name:   "enum declaration collects members",
			source: "enum Color {\n\tRed\n\tGreen\n\tBlue\n}\n",
			check: func(t *testing.T, prog *ast.Program) {
				ed, ok := prog.Statements[0].(*ast.EnumDecl)
				if !ok {
					t.Fatalf("expected an EnumDecl, got %T", prog.Statements[0])
				}
				if ed.Name != "Color" || len(ed.Members) != 3 {
					t.Errorf("unexpected enum shape: name=%q members=%d", ed.Name, len(ed.Members))
				}
			},
		},
		{
			name:   "list and dict literals",
			source: `xs = [1, 2, 3]` + "\n" + `d = {"a": 1}` + "\n",
			check: func(t *testing.T, prog *ast.Program) {
				xs, ok := prog.Statements[0].(*ast.VariableDecl)
				if !ok {
					t.Fatalf("expected a VariableDecl, got %T", prog.Statements[0])
				}
				list, ok := xs.Init.(*ast.ListLit)
				if !ok || len(list.Elems) != 3 {
					t.Fatalf("expected a 3-element ListLit, got %T", xs.Init)
				}
				d, ok := prog.Statements[1].(*ast.VariableDecl)
				if !ok {
					t.Fatalf("expected a VariableDecl, got %T", prog.Statements[1])
				}
				dict, ok := d.Init.(*ast.DictLit)
				if !ok || len(dict.Entries) != 1 {
					t.Fatalf("expected a 1-entry DictLit, got %T", d.Init)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			prog, msgs := parseSource(t, tc.source)
			if len(msgs) != 0 {
				t.Fatalf("unexpected parse diagnostics: %v", msgs)
			}
			tc.check(t, prog)
		})
	}
}

func TestParseRecoversAfterAStatementBoundary(t *testing.T) {
	// The dangling "+" breaks the first statement, but the parser should
	// resynchronize at the newline and still parse the second one.
	prog, msgs := parseSource(t, "x = 1 +\ny = 2\n")
	if len(msgs) == 0 {
		t.Fatal("expected a parse diagnostic for the dangling operator")
	}
	found := false
	for _, s := range prog.Statements {
		if decl, ok := s.(*ast.VariableDecl); ok && decl.Name == "y" {
			found = true
		}
	}
	if !found {
		t.Error("expected parsing to recover and still produce the y declaration")
	}
}

func TestParseRejectsBreakOutsideLoopOnlyAtCheckTime(t *testing.T) {
	// The grammar itself accepts a bare break anywhere a statement can
	// appear; rejecting it outside a loop is the checker's job, not the
	// parser's (spec.md §4.2 vs §4.3).
	prog, msgs := parseSource(t, "break\n")
	if len(msgs) != 0 {
		t.Fatalf("expected the parser to accept a bare break, got: %v", msgs)
	}
	if _, ok := prog.Statements[0].(*ast.Break); !ok {
		t.Fatalf("expected a Break statement, got %T", prog.Statements[0])
	}
}
