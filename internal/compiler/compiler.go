// Package compiler wires the pipeline stages together: source text in,
// assembly text (or a parsed/checked AST) out. Its Parse, Check and
// Compile are what cmd/orion calls; none of the phase packages know about each other
// beyond what's threaded through here.
package compiler

import (
	"github.com/Rohithoctacter/orion/internal/ast"
	"github.com/Rohithoctacter/orion/internal/checker"
	"github.com/Rohithoctacter/orion/internal/codegen"
	"github.com/Rohithoctacter/orion/internal/diagnostics"
	"github.com/Rohithoctacter/orion/internal/lexer"
	"github.com/Rohithoctacter/orion/internal/parser"
	"github.com/Rohithoctacter/orion/internal/target"
	"github.com/Rohithoctacter/orion/internal/token"
)

// Result holds every artifact Compile produces: the parsed program, the
// assembly text, and the collected diagnostics.
type Result struct {
	Program *ast.Program
	Asm     string
	Diags   *diagnostics.Bag
}

// Parse runs the lexer and parser only, stopping before type checking.
// Used by `--ast` to dump the tree even when checking would fail, and
// as the first half of Check/Compile.
func Parse(source string) (*ast.Program, *diagnostics.Bag) {
	diags := diagnostics.NewBag()

	toks, lexErr := lexer.New(source).Tokenize()
	if lexErr != nil {
		diags.Addf(diagnostics.PhaseLex, diagnostics.LexError,
			token.Position{Line: lexErr.Line, Column: lexErr.Column}, "%s", lexErr.Msg)
		return nil, diags
	}

	prog, pdiags := parser.New(toks).Parse()
	diags.Merge(pdiags)
	return prog, diags
}

// Check runs lex+parse+type-check, the full pipeline `--check` needs.
func Check(source string) (*ast.Program, *diagnostics.Bag) {
	prog, diags := Parse(source)
	if diags.HasErrors() || prog == nil {
		return prog, diags
	}
	diags.Merge(checker.Check(prog))
	return prog, diags
}

// Compile runs the full pipeline through code generation for the given
// ABI. If checking failed, no codegen is attempted and Result.Asm is
// empty.
func Compile(source string, abi target.ABI) Result {
	prog, diags := Check(source)
	if diags.HasErrors() || prog == nil {
		return Result{Program: prog, Diags: diags}
	}

	asm, cdiags := codegen.Generate(prog, abi)
	diags.Merge(cdiags)
	return Result{Program: prog, Asm: asm, Diags: diags}
}
