// Package codegen turns a type-checked AST into AT&T-syntax x86-64
// assembly text (spec.md §4.5), ready to be assembled and linked by GCC
// against runtime/runtime.c. Grounded structurally on
// original_source/compiler/codegen.cpp's accumulator-based, one-pass
// tree-walking generator, reworked to dispatch statically on the
// checker-resolved type of every expression (spec.md's REDESIGN FLAG:
// list/dict indexing and print calls pick their runtime entry point at
// compile time instead of through print_smart's run-time type probe).
package codegen

import (
	"fmt"
	"strings"

	"github.com/Rohithoctacter/orion/internal/ast"
	"github.com/Rohithoctacter/orion/internal/diagnostics"
	"github.com/Rohithoctacter/orion/internal/rtabi"
	"github.com/Rohithoctacter/orion/internal/target"
	"github.com/Rohithoctacter/orion/internal/types"
)

// varSlot is one local variable or parameter's stack home, addressed as
// -offset(%rbp), mirroring codegen.cpp's VariableInfo.
type varSlot struct {
	offset  int
	typ     types.Type
	isParam bool
}

// loopCtx is one active loop's break/continue targets.
type loopCtx struct {
	contLabel, breakLabel string
}

// Generator walks a checked *ast.Program and emits assembly text.
type Generator struct {
	abi   target.ABI
	diags *diagnostics.Bag

	text strings.Builder
	data strings.Builder

	strLabels map[string]string // prefixed literal key -> data-section label
	strCount  int
	labelNum  int

	structs map[string]*ast.StructDecl
	enums   map[string]*ast.EnumDecl
	globals map[string]types.Type // root-scope bindings, each a .bss slot

	vars       map[string]*varSlot
	frameBytes int
	curFunc    string
	curIsMain  bool
	loops      []loopCtx

	// userMainSymbol is the internal symbol a source-level `fn main()`
	// was emitted under (see genProgram); empty when no such
	// declaration exists. genUserCall consults it so a top-level
	// `main()` call resolves to that function instead of colliding
	// with the literal `main` process-entry symbol genEntry owns.
	userMainSymbol string
}

// Generate type-checks nothing itself (the caller must have already run
// internal/checker.Check over prog) and returns the emitted assembly
// text plus any codegen-phase diagnostics (spec.md §7's CodegenAssertion
// kind, raised only for internal invariants the checker should already
// have ruled out).
func Generate(prog *ast.Program, abi target.ABI) (string, *diagnostics.Bag) {
	g := &Generator{
		abi:       abi,
		diags:     diagnostics.NewBag(),
		strLabels: make(map[string]string),
		structs:   make(map[string]*ast.StructDecl),
		enums:     make(map[string]*ast.EnumDecl),
		globals:   make(map[string]types.Type),
		vars:      make(map[string]*varSlot),
	}
	g.registerTopLevel(prog)
	g.genProgram(prog)
	return g.assemble(), g.diags
}

func (g *Generator) newLabel(prefix string) string {
	g.labelNum++
	return fmt.Sprintf(".L%s%d", prefix, g.labelNum)
}

func (g *Generator) emit(format string, args ...any) {
	fmt.Fprintf(&g.text, "\t"+format+"\n", args...)
}

func (g *Generator) label(name string) {
	fmt.Fprintf(&g.text, "%s:\n", name)
}

func (g *Generator) codegenError(pos ast.Node, format string, args ...any) {
	g.diags.Addf(diagnostics.PhaseCodegen, diagnostics.CodegenAssertion, pos.Pos(), format, args...)
}

// ---- registration ----------------------------------------------------------

// registerTopLevel scans the whole program once for struct/enum layouts
// and the set of root-scope (global) bindings, applying the same
// global-vs-local split checker.go's collectAssignedNames/bindName pair
// applies, so every name the checker resolved to a global binding gets
// exactly one .bss slot here.
func (g *Generator) registerTopLevel(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *ast.StructDecl:
			g.structs[s.Name] = s
		case *ast.EnumDecl:
			g.enums[s.Name] = s
			for _, m := range s.Members {
				g.globals[m.Name] = types.EnumType(s.Name)
			}
		}
	}
	collectGlobalNames(prog.Statements, g.globals)

	// A function's `global name` can introduce a binding that is never
	// itself assigned at root scope (checker.bindName lazily creates it
	// in c.globals on first write); fold those in too so every such name
	// still gets a .bss slot.
	for _, stmt := range prog.Statements {
		fn, ok := stmt.(*ast.FunctionDecl)
		if !ok || fn.Body == nil {
			continue
		}
		assigned := map[string]types.Type{}
		globalNames := map[string]bool{}
		localNames := map[string]bool{}
		collectLocalTypes(fn.Body.Statements, assigned, globalNames, localNames)
		for name := range globalNames {
			if localNames[name] {
				continue
			}
			if _, ok := g.globals[name]; ok {
				continue
			}
			if typ, ok := assigned[name]; ok {
				g.globals[name] = typ
			}
		}
	}
}

// collectGlobalNames folds every root-scope assignment target's name and
// inferred type into globals, recursing into control-flow bodies the way
// checker.collectAssignedNames does for a function body.
func collectGlobalNames(stmts []ast.Statement, globals map[string]types.Type) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.VariableDecl:
			globals[s.Name] = exprResultType(s)
		case *ast.Assignment:
			if id, ok := s.Target.(*ast.Identifier); ok {
				globals[id.Name] = id.ExprType()
			}
		case *ast.TupleAssignment:
			for _, t := range s.Targets {
				if id, ok := t.(*ast.Identifier); ok {
					globals[id.Name] = id.ExprType()
				}
			}
		case *ast.ForIn:
			globals[s.Var] = types.TInt64
			if s.Body != nil {
				collectGlobalNames(s.Body.Statements, globals)
			}
		case *ast.If:
			if s.Then != nil {
				collectGlobalNames(s.Then.Statements, globals)
			}
			if s.Else != nil {
				collectGlobalNames([]ast.Statement{s.Else}, globals)
			}
		case *ast.While:
			if s.Body != nil {
				collectGlobalNames(s.Body.Statements, globals)
			}
		case *ast.Block:
			collectGlobalNames(s.Statements, globals)
		}
	}
}

func exprResultType(s *ast.VariableDecl) types.Type {
	if s.Init != nil {
		if t := s.Init.ExprType(); t.Tag != types.Unknown {
			return t
		}
	}
	return s.DeclaredType
}

func globalSymbol(name string) string { return "orion_g_" + name }

// ---- program & function structure ------------------------------------------

func (g *Generator) genProgram(prog *ast.Program) {
	var topLevel []ast.Statement
	var funcs []*ast.FunctionDecl
	var userMain *ast.FunctionDecl

	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *ast.FunctionDecl:
			if s.Name == "main" {
				userMain = s
				continue
			}
			funcs = append(funcs, s)
		case *ast.StructDecl, *ast.EnumDecl:
			// layout-only; nothing to emit
		default:
			topLevel = append(topLevel, stmt)
		}
	}

	// The emitted "main" symbol is always the process entry GCC's crt0
	// calls into, running the script's top-level statements with root
	// scope (every assignment there is a global binding, never a stack
	// local — checker.Check applies that same rule by skipping the
	// locals map entirely for statements outside any function). A
	// source-level `fn main()` keeps its own ordinary function scope
	// instead: it is emitted under an internal symbol and the entry
	// point calls it after running the top-level statements (unless
	// those statements already call main() themselves), since a
	// literal "main" symbol can only be defined once.
	var userMainSymbol string
	if userMain != nil {
		userMainSymbol = "orion_user_main"
		g.userMainSymbol = userMainSymbol
	}
	for _, decl := range funcs {
		g.genFunction(decl, g.abi.Symbol(decl.Name))
	}
	if userMain != nil {
		g.genFunction(userMain, userMainSymbol)
	}
	g.genEntry(topLevel, userMainSymbol)
}

// genEntry emits the process entry point: a normal C `main` returning
// int, so GCC's ordinary crt0/libc startup applies — Orion relies on
// being linked by GCC rather than hand-rolling a _start the way
// original_source's no-libc backend did.
func (g *Generator) genEntry(body []ast.Statement, userMainSymbol string) {
	g.curFunc = "main"
	g.curIsMain = true
	// Root scope has no locals at all: checker.Check resolves every
	// top-level assignment against the global table (its newRootScope
	// carries no locals map), so nothing here ever gets a stack slot.
	g.vars = make(map[string]*varSlot)
	g.frameBytes = 0

	sym := g.abi.Symbol("main")
	fmt.Fprintf(&g.text, "\n.globl %s\n", sym)
	g.label(sym)
	g.emit("push %%rbp")
	g.emit("mov %%rsp, %%rbp")

	start := g.text.Len()
	for _, stmt := range body {
		g.genStmt(stmt)
	}
	// A top-level main() call already ran the user's main through
	// genUserCall's redirect; calling it again would run it twice.
	if userMainSymbol != "" && !strings.Contains(g.text.String()[start:], "call "+userMainSymbol+"\n") {
		g.emit("call %s", userMainSymbol)
	}

	g.emit("xor %%eax, %%eax")
	g.emit("leave")
	g.emit("ret")
}

func (g *Generator) genFunction(decl *ast.FunctionDecl, symbol string) {
	g.curFunc = decl.Name
	g.curIsMain = false
	g.vars = make(map[string]*varSlot)
	g.frameBytes = 0

	for _, p := range decl.Params {
		g.allocSlot(p.Name, paramType(p), true)
	}

	var bodyStmts []ast.Statement
	if decl.Body != nil {
		bodyStmts = decl.Body.Statements
	}
	locals := map[string]types.Type{}
	globalNamesInFunc := map[string]bool{}
	localOverrides := map[string]bool{}
	collectLocalTypes(bodyStmts, locals, globalNamesInFunc, localOverrides)
	var heapLocals []*varSlot
	for name, typ := range locals {
		if _, isParam := g.vars[name]; isParam {
			continue
		}
		if globalNamesInFunc[name] && !localOverrides[name] {
			continue
		}
		g.allocSlot(name, typ, false)
		if typ.IsHeapReference() {
			heapLocals = append(heapLocals, g.vars[name])
		}
	}

	fmt.Fprintf(&g.text, "\n.globl %s\n", symbol)
	g.label(symbol)
	frame := g.abi.AlignedFrameSize(g.frameBytes)
	g.emit("push %%rbp")
	g.emit("mov %%rsp, %%rbp")
	if frame > 0 {
		g.emit("sub $%d, %%rsp", frame)
	}

	for i, p := range decl.Params {
		slot := g.vars[p.Name]
		if isFloatType(paramType(p)) {
			if reg, ok := g.abi.FloatArg(i); ok {
				g.emit("movsd %%%s, -%d(%%rbp)", reg, slot.offset)
				continue
			}
		}
		if reg, ok := g.abi.IntArg(i); ok {
			g.emit("mov %%%s, -%d(%%rbp)", reg, slot.offset)
		}
	}

	// Heap-typed locals start at NULL, the same guarantee .bss gives
	// globals: a reassignment can then always release whatever the slot
	// held before overwriting it (storeIdentReleasingOld), and
	// releaseLocals can always release what a local holds at scope
	// exit, without caring whether a conditional branch actually ran a
	// store into it first. Every runtime *_release treats a NULL
	// argument as a no-op.
	for _, slot := range heapLocals {
		g.emit("mov $0, -%d(%%rbp)", slot.offset)
	}

	if decl.Expr != nil {
		g.genExprInto(decl.Expr, decl.ReturnType)
		g.funcEpilogue()
	} else {
		for _, stmt := range bodyStmts {
			g.genStmt(stmt)
		}
		// Fallthrough return for a function whose body doesn't end with
		// an explicit `return` on every path.
		g.funcEpilogue()
	}
}

func paramType(p ast.Param) types.Type {
	if p.Explicit {
		return p.Type
	}
	return types.TInt64
}

// funcEpilogue releases any still-live heap-referenced locals and
// returns. Statement-level `return` has already done this for the path
// it covers; this only runs for a body that falls off the end.
func (g *Generator) funcEpilogue() {
	g.releaseLocals()
	g.emit("leave")
	g.emit("ret")
}

// releaseLocals emits a release call for every local or parameter slot
// whose static type is a heap reference (spec.md §4.5/§5's refcounting
// discipline): scope exit drops one reference from everything it owns.
func (g *Generator) releaseLocals() {
	for name, slot := range g.vars {
		if !slot.typ.IsHeapReference() {
			continue
		}
		g.emit("mov -%d(%%rbp), %%rdi # release %s", slot.offset, name)
		g.emit("call %s", g.abi.Symbol(releaseFuncFor(slot.typ)))
	}
}

func releaseFuncFor(t types.Type) string {
	switch t.Tag {
	case types.List:
		return rtabi.ListRelease
	case types.Dict:
		return rtabi.DictRelease
	case types.Range:
		return rtabi.RangeRelease
	case types.String:
		return rtabi.StringRelease
	default:
		return rtabi.StringRelease
	}
}

func (g *Generator) allocSlot(name string, typ types.Type, isParam bool) {
	g.frameBytes += 8
	g.vars[name] = &varSlot{offset: g.frameBytes, typ: typ, isParam: isParam}
}

// collectLocalTypes mirrors checker.collectAssignedNames, additionally
// recording each assigned name's static type (read back off the
// checker's own annotations, never re-inferred) so the generator can
// give a float-valued local a slot it actually stores with movsd.
func collectLocalTypes(stmts []ast.Statement, assigned map[string]types.Type, globalNames, localNames map[string]bool) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.VariableDecl:
			assigned[s.Name] = exprResultType(s)
		case *ast.Assignment:
			if id, ok := s.Target.(*ast.Identifier); ok {
				assigned[id.Name] = id.ExprType()
			}
		case *ast.TupleAssignment:
			for _, t := range s.Targets {
				if id, ok := t.(*ast.Identifier); ok {
					assigned[id.Name] = id.ExprType()
				}
			}
		case *ast.ForIn:
			assigned[s.Var] = types.TInt64
			if s.Body != nil {
				collectLocalTypes(s.Body.Statements, assigned, globalNames, localNames)
			}
		case *ast.Global:
			for _, n := range s.Names {
				globalNames[n] = true
			}
		case *ast.Local:
			for _, n := range s.Names {
				localNames[n] = true
			}
		case *ast.If:
			if s.Then != nil {
				collectLocalTypes(s.Then.Statements, assigned, globalNames, localNames)
			}
			if s.Else != nil {
				collectLocalTypes([]ast.Statement{s.Else}, assigned, globalNames, localNames)
			}
		case *ast.While:
			if s.Body != nil {
				collectLocalTypes(s.Body.Statements, assigned, globalNames, localNames)
			}
		case *ast.Block:
			collectLocalTypes(s.Statements, assigned, globalNames, localNames)
		}
	}
}

// ---- assembly assembly ------------------------------------------------------

func (g *Generator) assemble() string {
	var out strings.Builder
	out.WriteString(g.abi.DataSection)
	out.WriteByte('\n')
	enumValues := map[string]int64{}
	for _, e := range g.enums {
		for _, m := range e.Members {
			enumValues[m.Name] = m.Value
		}
	}
	for _, name := range sortedGlobalNames(g.globals) {
		fmt.Fprintf(&out, "%s: .quad %d\n", globalSymbol(name), enumValues[name])
	}
	out.WriteString(g.data.String())
	out.WriteByte('\n')
	out.WriteString(g.abi.TextSection)
	out.WriteByte('\n')
	out.WriteString(g.text.String())
	return out.String()
}

func sortedGlobalNames(m map[string]types.Type) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	// Stable, deterministic output regardless of map iteration order.
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j-1] > names[j]; j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
	return names
}
