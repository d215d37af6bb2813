package codegen

import (
	"fmt"

	"github.com/Rohithoctacter/orion/internal/ast"
	"github.com/Rohithoctacter/orion/internal/rtabi"
	"github.com/Rohithoctacter/orion/internal/types"
)

func isFloatType(t types.Type) bool { return t.Tag == types.Float32 || t.Tag == types.Float64 }

// ---- statements --------------------------------------------------------

func (g *Generator) genStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VariableDecl:
		g.genVariableDecl(s)
	case *ast.Assignment:
		g.genAssignment(s)
	case *ast.IndexAssignment:
		g.genIndexAssignment(s)
	case *ast.TupleAssignment:
		g.genTupleAssignment(s)
	case *ast.If:
		g.genIf(s)
	case *ast.While:
		g.genWhile(s)
	case *ast.ForIn:
		g.genForIn(s)
	case *ast.Return:
		g.genReturn(s)
	case *ast.Break:
		if len(g.loops) > 0 {
			g.emit("jmp %s", g.loops[len(g.loops)-1].breakLabel)
		}
	case *ast.Continue:
		if len(g.loops) > 0 {
			g.emit("jmp %s", g.loops[len(g.loops)-1].contLabel)
		}
	case *ast.Pass:
		// no-op
	case *ast.Global, *ast.Local:
		// purely declarative; already folded into collectLocalTypes
	case *ast.Block:
		for _, inner := range s.Statements {
			g.genStmt(inner)
		}
	case *ast.ExprStmt:
		g.genDiscard(s.X)
	case *ast.FunctionDecl, *ast.StructDecl, *ast.EnumDecl:
		// handled at program level
	default:
		g.codegenError(stmt, "unhandled statement kind in codegen")
	}
}

func (g *Generator) genDiscard(e ast.Expression) {
	t := e.ExprType()
	if isFloatType(t) {
		g.genExprFloat(e)
		return
	}
	g.genExprInt(e)
	if t.IsHeapReference() {
		// A bare expression statement's value owns one reference it never
		// hands off to anything; drop it immediately.
		g.emit("mov %%rax, %%rdi")
		g.emit("call %s", g.abi.Symbol(releaseFuncFor(t)))
	}
}

func (g *Generator) slotRef(name string) (string, *varSlot, bool) {
	if slot, ok := g.vars[name]; ok {
		return fmt.Sprintf("-%d(%%rbp)", slot.offset), slot, true
	}
	return "", nil, false
}

func (g *Generator) storeIdent(name string, t types.Type, fromFloat bool) {
	if ref, slot, ok := g.slotRef(name); ok {
		if fromFloat && isFloatType(slot.typ) {
			g.emit("movsd %%xmm0, %s", ref)
		} else {
			g.emit("mov %%rax, %s", ref)
		}
		return
	}
	sym := globalSymbol(name) + "(%rip)"
	if fromFloat && isFloatType(t) {
		g.emit("movsd %%xmm0, %s", sym)
	} else {
		g.emit("mov %%rax, %s", sym)
	}
}

// storeIdentReleasingOld stores a freshly-retained heap-typed value into
// name's slot, releasing whatever reference the slot held before the
// overwrite. The new value is already retained (retainIfHeap) and sits
// in %rax; it's saved across the release call because release has no
// reason to preserve %rax. Heap-typed locals are zeroed at function
// entry (genFunction) and heap-typed globals are .bss, so the "old"
// value is always either NULL (a guaranteed no-op release) or a real
// reference this slot actually owned — correct regardless of which
// control-flow path produced the slot's current contents. Evaluating
// the new value and retaining it before releasing the old one also
// makes self-assignment (x = x) safe: the reference is never dropped to
// zero before the new store re-establishes it.
func (g *Generator) storeIdentReleasingOld(name string, t types.Type) {
	if ref, _, ok := g.slotRef(name); ok {
		g.emit("push %%rax")
		g.emit("mov %s, %%rdi", ref)
		g.emit("call %s", g.abi.Symbol(releaseFuncFor(t)))
		g.emit("pop %%rax")
		g.emit("mov %%rax, %s", ref)
		return
	}
	sym := globalSymbol(name) + "(%rip)"
	g.emit("push %%rax")
	g.emit("mov %s, %%rdi", sym)
	g.emit("call %s", g.abi.Symbol(releaseFuncFor(t)))
	g.emit("pop %%rax")
	g.emit("mov %%rax, %s", sym)
}

func (g *Generator) genVariableDecl(s *ast.VariableDecl) {
	if s.Init == nil {
		return
	}
	evalType := exprResultType(s)
	if isFloatType(evalType) {
		g.genExprFloat(s.Init)
		g.storeIdent(s.Name, evalType, true)
		return
	}
	g.genExprInt(s.Init)
	g.retainIfHeap(s.Init.ExprType())
	if evalType.IsHeapReference() {
		g.storeIdentReleasingOld(s.Name, evalType)
		return
	}
	g.storeIdent(s.Name, evalType, false)
}

func (g *Generator) retainIfHeap(t types.Type) {
	if !t.IsHeapReference() {
		return
	}
	g.emit("mov %%rax, %%rdi")
	g.emit("call %s", g.abi.Symbol(retainFuncFor(t)))
}

func retainFuncFor(t types.Type) string {
	switch t.Tag {
	case types.List:
		return rtabi.ListRetain
	case types.Dict:
		return rtabi.DictRetain
	case types.Range:
		return rtabi.RangeRetain
	default:
		return rtabi.StringRetain
	}
}

func (g *Generator) genAssignment(s *ast.Assignment) {
	id, ok := s.Target.(*ast.Identifier)
	if !ok {
		if fa, ok := s.Target.(*ast.FieldAccess); ok {
			g.genFieldAssign(fa, s.Value)
			return
		}
		g.codegenError(s, "unsupported assignment target")
		return
	}
	t := id.ExprType()
	if isFloatType(t) {
		g.genExprFloat(s.Value)
		g.storeIdent(id.Name, t, true)
		return
	}
	g.genExprInt(s.Value)
	g.retainIfHeap(s.Value.ExprType())
	if t.IsHeapReference() {
		g.storeIdentReleasingOld(id.Name, t)
		return
	}
	g.storeIdent(id.Name, t, false)
}

func (g *Generator) genFieldAssign(fa *ast.FieldAccess, value ast.Expression) {
	fieldIdx, fieldType := g.fieldLayout(fa)
	if isFloatType(fieldType) {
		g.genExprFloat(value)
		g.genExprInt(fa.Object)
		g.emit("movsd %%xmm0, %d(%%rax)", fieldIdx*8)
		return
	}
	g.genExprInt(value)
	g.emit("push %%rax")
	g.genExprInt(fa.Object)
	g.emit("pop %%rcx")
	g.emit("mov %%rcx, %d(%%rax)", fieldIdx*8)
}

func (g *Generator) fieldLayout(fa *ast.FieldAccess) (idx int, typ types.Type) {
	objType := fa.Object.ExprType()
	decl, ok := g.structs[objType.Name]
	if !ok {
		g.codegenError(fa, "field access on unregistered struct %q", objType.Name)
		return 0, types.TInt64
	}
	for i, f := range decl.Fields {
		if f.Name == fa.Field {
			return i, f.Type
		}
	}
	g.codegenError(fa, "unknown field %q on struct %q", fa.Field, objType.Name)
	return 0, types.TInt64
}

func (g *Generator) genIndexAssignment(s *ast.IndexAssignment) {
	objType := s.Object.ExprType()
	g.genExprInt(s.Value)
	g.emit("push %%rax")
	g.genExprInt(s.Index)
	g.emit("push %%rax")
	g.genExprInt(s.Object)
	g.emit("pop %%rsi") // index
	g.emit("pop %%rdx") // value
	g.emit("mov %%rax, %%rdi")
	switch objType.Tag {
	case types.Dict:
		g.emit("call %s", g.abi.Symbol(rtabi.DictSet))
	default:
		g.emit("call %s", g.abi.Symbol(rtabi.ListSet))
	}
}

func (g *Generator) genTupleAssignment(s *ast.TupleAssignment) {
	// Every value is evaluated before any target is written.
	for _, v := range s.Values {
		if isFloatType(v.ExprType()) {
			g.genExprFloat(v)
			g.emit("movq %%xmm0, %%rax")
		} else {
			g.genExprInt(v)
		}
		g.emit("push %%rax")
	}
	for i := len(s.Targets) - 1; i >= 0; i-- {
		id, ok := s.Targets[i].(*ast.Identifier)
		if !ok {
			continue
		}
		g.emit("pop %%rax")
		if isFloatType(id.ExprType()) {
			g.emit("movq %%rax, %%xmm0")
			g.storeIdent(id.Name, id.ExprType(), true)
		} else {
			g.storeIdent(id.Name, id.ExprType(), false)
		}
	}
}

func (g *Generator) genIf(s *ast.If) {
	elseLabel := g.newLabel("else")
	endLabel := g.newLabel("endif")
	g.genExprInt(s.Cond)
	g.emit("test %%rax, %%rax")
	g.emit("jz %s", elseLabel)
	for _, stmt := range s.Then.Statements {
		g.genStmt(stmt)
	}
	g.emit("jmp %s", endLabel)
	g.label(elseLabel)
	if s.Else != nil {
		g.genStmt(s.Else)
	}
	g.label(endLabel)
}

func (g *Generator) genWhile(s *ast.While) {
	topLabel := g.newLabel("whiletop")
	bodyLabel := g.newLabel("whilebody")
	endLabel := g.newLabel("whileend")
	g.loops = append(g.loops, loopCtx{contLabel: topLabel, breakLabel: endLabel})

	g.label(topLabel)
	g.genExprInt(s.Cond)
	g.emit("test %%rax, %%rax")
	g.emit("jz %s", endLabel)
	g.label(bodyLabel)
	for _, stmt := range s.Body.Statements {
		g.genStmt(stmt)
	}
	g.emit("jmp %s", topLabel)
	g.label(endLabel)

	g.loops = g.loops[:len(g.loops)-1]
}

// genForIn specializes on the iterable's static type (range vs list)
// instead of materializing an iterator object, the way
// codegen.cpp's ForInStatement visitor special-cases Range literals.
func (g *Generator) genForIn(s *ast.ForIn) {
	iterType := s.Iterable.ExprType()
	condLabel := g.newLabel("fortop")
	bodyLabel := g.newLabel("forbody")
	stepLabel := g.newLabel("forstep")
	endLabel := g.newLabel("forend")
	g.loops = append(g.loops, loopCtx{contLabel: stepLabel, breakLabel: endLabel})

	// Stack layout while the loop runs, lowest address first:
	// index(0), length(8), iterable handle(16). Every statement the body
	// emits must leave rsp exactly where it found it.
	g.genExprInt(s.Iterable)
	g.emit("push %%rax # iterable handle")

	lenFunc := rtabi.ListLen
	getFunc := rtabi.ListGet
	if iterType.Tag == types.Range {
		lenFunc = rtabi.RangeLen
		getFunc = rtabi.RangeGet
	}
	g.emit("mov %%rax, %%rdi")
	g.emit("call %s", g.abi.Symbol(lenFunc))
	g.emit("push %%rax # length")
	g.emit("push $0 # index")

	g.label(condLabel)
	g.emit("mov (%%rsp), %%rax")
	g.emit("cmp 8(%%rsp), %%rax")
	g.emit("jge %s", endLabel)

	g.label(bodyLabel)
	g.emit("mov 16(%%rsp), %%rdi")
	g.emit("mov (%%rsp), %%rsi")
	g.emit("call %s", g.abi.Symbol(getFunc))
	g.storeIdent(s.Var, types.TInt64, false)
	for _, stmt := range s.Body.Statements {
		g.genStmt(stmt)
	}

	g.label(stepLabel)
	g.emit("incq (%%rsp)")
	g.emit("jmp %s", condLabel)

	g.label(endLabel)
	g.emit("add $16, %%rsp # discard index, length")
	g.emit("pop %%rdi # iterable handle")
	g.emit("call %s", g.abi.Symbol(releaseFuncFor(iterType)))

	g.loops = g.loops[:len(g.loops)-1]
}

func (g *Generator) genReturn(s *ast.Return) {
	if s.Value != nil {
		if isFloatType(s.Value.ExprType()) {
			g.genExprFloat(s.Value)
		} else {
			g.genExprInt(s.Value)
		}
	} else if !g.curIsMain {
		g.emit("xor %%eax, %%eax")
	}
	g.releaseLocals()
	if g.curIsMain {
		g.emit("xor %%eax, %%eax")
	}
	g.emit("leave")
	g.emit("ret")
}

// genExprInto evaluates e and leaves the result in the return-value
// register dictated by declared, used for single-expression (`=> expr`)
// function bodies.
func (g *Generator) genExprInto(e ast.Expression, declared types.Type) {
	if isFloatType(declared) {
		g.genExprFloat(e)
	} else {
		g.genExprInt(e)
	}
}

// ---- integer/pointer-path expression codegen --------------------------

// genExprInt evaluates e, leaving an integer, pointer, or boolean result
// in %rax. A float-typed e is converted via cvttsd2si (truncating),
// matching the checker's widening rule that a float only appears here
// through an explicit int(...) builtin call.
func (g *Generator) genExprInt(e ast.Expression) {
	switch x := e.(type) {
	case *ast.IntLiteral:
		g.emit("mov $%d, %%rax", x.Value)
	case *ast.BoolLiteral:
		if x.Value {
			g.emit("mov $1, %%rax")
		} else {
			g.emit("mov $0, %%rax")
		}
	case *ast.FloatLiteral:
		g.genExprFloat(x)
		g.emit("cvttsd2si %%xmm0, %%rax")
	case *ast.StringLiteral:
		g.loadStringLiteral(x.Value)
	case *ast.Identifier:
		g.loadIdentInt(x)
	case *ast.Binary:
		g.genBinaryInt(x)
	case *ast.Unary:
		g.genUnaryInt(x)
	case *ast.Call:
		if isFloatType(x.ExprType()) {
			g.genExprFloat(x)
			g.emit("cvttsd2si %%xmm0, %%rax")
			return
		}
		g.genCallInt(x)
	case *ast.Index:
		g.genIndexInt(x)
	case *ast.FieldAccess:
		g.genFieldAccessInt(x)
	case *ast.ListLit:
		g.genListLit(x)
	case *ast.DictLit:
		g.genDictLit(x)
	default:
		g.codegenError(e, "unhandled expression kind in integer codegen")
	}
}

func (g *Generator) loadIdentInt(id *ast.Identifier) {
	if ref, _, ok := g.slotRef(id.Name); ok {
		g.emit("mov %s, %%rax", ref)
		return
	}
	g.emit("mov %s(%%rip), %%rax", globalSymbol(id.Name))
}

// internString interns a literal's raw bytes as a .data label; it does
// not by itself produce a value any runtime string entry point can
// use — every OrionString the runtime touches is a {refcount, data}
// struct (runtime/runtime.c's OrionString), never a bare char* into
// the text. loadStringLiteral wraps this label into one.
func (g *Generator) internString(s string) string {
	key := "s:" + s
	if label, ok := g.strLabels[key]; ok {
		return label
	}
	g.strCount++
	label := fmt.Sprintf(".Lstr%d", g.strCount)
	g.strLabels[key] = label
	fmt.Fprintf(&g.data, "%s: .asciz %q\n", label, s)
	return label
}

// stringCacheLabel returns the .data label of the writable pointer cell
// that memoizes the OrionString* a given literal's text was wrapped
// into, allocating it (zero-initialized) the first time the literal is
// seen. Keyed with a "c:" prefix, distinct from internString's "s:" and
// internFloat's "f" prefixes in the same map, so a literal whose text
// happens to collide with another key's format can't alias a cache slot.
func (g *Generator) stringCacheLabel(s string) string {
	key := "c:" + s
	if label, ok := g.strLabels[key]; ok {
		return label
	}
	g.strCount++
	label := fmt.Sprintf(".Lstrc%d", g.strCount)
	g.strLabels[key] = label
	fmt.Fprintf(&g.data, "%s: .quad 0\n", label)
	return label
}

// loadStringLiteral leaves a real OrionString* for s in %rax: every
// runtime entry point that takes a string (print_string, string_len,
// string_concat_parts, retain/release) dereferences a {refcount, data}
// struct, not a bare pointer into the literal's own text, so a literal
// must be wrapped via string_new before it can flow into any of them.
// The wrap happens at most once per literal per process run — the
// result is cached in a dedicated pointer cell the first time control
// reaches this literal, and loaded directly on every later visit.
func (g *Generator) loadStringLiteral(s string) {
	dataLabel := g.internString(s)
	cacheLabel := g.stringCacheLabel(s)
	skip := g.newLabel("strlit")
	g.emit("mov %s(%%rip), %%rax", cacheLabel)
	g.emit("test %%rax, %%rax")
	g.emit("jnz %s", skip)
	g.emit("lea %s(%%rip), %%rdi", dataLabel)
	g.emit("call %s", g.abi.Symbol(rtabi.StringNew))
	g.emit("mov %%rax, %s(%%rip)", cacheLabel)
	g.label(skip)
}

func (g *Generator) genBinaryInt(b *ast.Binary) {
	if isFloatType(b.Left.ExprType()) || isFloatType(b.Right.ExprType()) {
		g.genBinaryFloat(b)
		g.emit("cvttsd2si %%xmm0, %%rax")
		return
	}

	switch b.Op {
	case ast.OpOr, ast.OpAnd:
		g.genShortCircuit(b)
		return
	case ast.OpAdd:
		if b.Left.ExprType().Tag == types.String {
			g.genStringConcat(b.Left, b.Right)
			return
		}
	}

	g.genExprInt(b.Left)
	g.emit("push %%rax")
	g.genExprInt(b.Right)
	g.emit("mov %%rax, %%rcx") // rhs
	g.emit("pop %%rax")        // lhs

	switch b.Op {
	case ast.OpAdd:
		g.emit("add %%rcx, %%rax")
	case ast.OpSub:
		g.emit("sub %%rcx, %%rax")
	case ast.OpMul:
		g.emit("imul %%rcx, %%rax")
	case ast.OpDiv, ast.OpFloorDiv:
		g.emit("cqto")
		g.emit("idiv %%rcx")
	case ast.OpMod:
		g.emit("cqto")
		g.emit("idiv %%rcx")
		g.emit("mov %%rdx, %%rax")
	case ast.OpPow:
		g.genIntPow()
	case ast.OpEq:
		g.emit("cmp %%rcx, %%rax")
		g.emit("sete %%al")
		g.emit("movzx %%al, %%rax")
	case ast.OpNe:
		g.emit("cmp %%rcx, %%rax")
		g.emit("setne %%al")
		g.emit("movzx %%al, %%rax")
	case ast.OpLt:
		g.emit("cmp %%rcx, %%rax")
		g.emit("setl %%al")
		g.emit("movzx %%al, %%rax")
	case ast.OpLe:
		g.emit("cmp %%rcx, %%rax")
		g.emit("setle %%al")
		g.emit("movzx %%al, %%rax")
	case ast.OpGt:
		g.emit("cmp %%rcx, %%rax")
		g.emit("setg %%al")
		g.emit("movzx %%al, %%rax")
	case ast.OpGe:
		g.emit("cmp %%rcx, %%rax")
		g.emit("setge %%al")
		g.emit("movzx %%al, %%rax")
	default:
		g.codegenError(b, "unhandled integer binary operator")
	}
}

// genIntPow computes %rax ** %rcx via repeated squaring, since x86 has no
// integer exponent instruction.
func (g *Generator) genIntPow() {
	base := g.newLabel("powbase")
	loop := g.newLabel("powloop")
	skip := g.newLabel("powskip")
	done := g.newLabel("powdone")
	g.emit("mov %%rax, %%r10") // base
	g.emit("mov %%rcx, %%r11") // exponent
	g.emit("mov $1, %%rax")    // accumulator
	g.label(base)
	g.label(loop)
	g.emit("test %%r11, %%r11")
	g.emit("jz %s", done)
	g.emit("test $1, %%r11")
	g.emit("jz %s", skip)
	g.emit("imul %%r10, %%rax")
	g.label(skip)
	g.emit("imul %%r10, %%r10")
	g.emit("shr $1, %%r11")
	g.emit("jmp %s", loop)
	g.label(done)
}

func (g *Generator) genShortCircuit(b *ast.Binary) {
	shortLabel := g.newLabel("short")
	endLabel := g.newLabel("shortend")
	g.genBoolInt(b.Left)
	g.emit("test %%rax, %%rax")
	if b.Op == ast.OpOr {
		g.emit("jnz %s", shortLabel)
	} else {
		g.emit("jz %s", shortLabel)
	}
	g.genBoolInt(b.Right)
	g.emit("jmp %s", endLabel)
	g.label(shortLabel)
	if b.Op == ast.OpOr {
		g.emit("mov $1, %%rax")
	} else {
		g.emit("mov $0, %%rax")
	}
	g.label(endLabel)
}

// genBoolInt evaluates e's truthiness into %rax as 0 or 1.
func (g *Generator) genBoolInt(e ast.Expression) {
	if isFloatType(e.ExprType()) {
		g.genExprFloat(e)
		g.emit("xorpd %%xmm1, %%xmm1")
		g.emit("comisd %%xmm1, %%xmm0")
		g.emit("setne %%al")
		g.emit("movzx %%al, %%rax")
		return
	}
	g.genExprInt(e)
	g.emit("test %%rax, %%rax")
	g.emit("setne %%al")
	g.emit("movzx %%al, %%rax")
}

// genStringConcat builds the two-element OrionString* array
// string_concat_parts expects (runtime/runtime.c: `parts, count`, not
// two bare string arguments) directly on the stack: reserve the array,
// evaluate each operand in left-to-right order into its slot, then pass
// the array's address as parts and 2 as count.
func (g *Generator) genStringConcat(left, right ast.Expression) {
	g.emit("sub $16, %%rsp # OrionString* parts[2]")
	g.genExprInt(left)
	g.emit("mov %%rax, (%%rsp)")
	g.genExprInt(right)
	g.emit("mov %%rax, 8(%%rsp)")
	g.emit("mov %%rsp, %%rdi")
	g.emit("mov $2, %%rsi")
	g.emit("call %s", g.abi.Symbol(rtabi.StringConcatParts))
	g.emit("add $16, %%rsp")
}

func (g *Generator) genUnaryInt(u *ast.Unary) {
	if isFloatType(u.Operand.ExprType()) && u.Op == ast.OpNeg {
		g.genUnaryFloat(u)
		g.emit("cvttsd2si %%xmm0, %%rax")
		return
	}
	g.genExprInt(u.Operand)
	switch u.Op {
	case ast.OpNeg:
		g.emit("neg %%rax")
	case ast.OpPos:
		// no-op
	case ast.OpNot:
		g.emit("test %%rax, %%rax")
		g.emit("sete %%al")
		g.emit("movzx %%al, %%rax")
	}
}

func (g *Generator) genIndexInt(ix *ast.Index) {
	objType := ix.Object.ExprType()
	g.genExprInt(ix.Object)
	g.emit("push %%rax")
	g.genExprInt(ix.Idx)
	g.emit("mov %%rax, %%rsi")
	g.emit("pop %%rdi")
	switch objType.Tag {
	case types.Dict:
		g.emit("call %s", g.abi.Symbol(rtabi.DictGet))
	case types.Range:
		g.emit("call %s", g.abi.Symbol(rtabi.RangeGet))
	default:
		g.emit("call %s", g.abi.Symbol(rtabi.ListGet))
	}
}

func (g *Generator) genFieldAccessInt(fa *ast.FieldAccess) {
	idx, _ := g.fieldLayout(fa)
	g.genExprInt(fa.Object)
	g.emit("mov %d(%%rax), %%rax", idx*8)
}

func (g *Generator) genListLit(l *ast.ListLit) {
	g.emit("mov $%d, %%rdi", len(l.Elems))
	g.emit("call %s", g.abi.Symbol(rtabi.ListNew))
	for _, elem := range l.Elems {
		g.emit("push %%rax")
		g.genExprInt(elem)
		g.emit("mov %%rax, %%rsi")
		g.emit("pop %%rdi")
		g.emit("push %%rdi")
		g.emit("call %s", g.abi.Symbol(rtabi.ListAppend))
		g.emit("pop %%rax")
	}
}

func (g *Generator) genDictLit(d *ast.DictLit) {
	g.emit("call %s", g.abi.Symbol(rtabi.DictNew))
	for _, entry := range d.Entries {
		g.emit("push %%rax")
		g.genExprInt(entry.Key)
		g.emit("push %%rax")
		g.genExprInt(entry.Value)
		g.emit("mov %%rax, %%rdx")
		g.emit("pop %%rsi")
		g.emit("pop %%rdi")
		g.emit("push %%rdi")
		g.emit("call %s", g.abi.Symbol(rtabi.DictSet))
		g.emit("pop %%rax")
	}
}

// ---- float-path expression codegen -------------------------------------

// genExprFloat evaluates e, leaving a float64 result in %xmm0. An
// integer-typed e is converted via cvtsi2sd, the widening path the
// checker's types.Widen mandates for mixed numeric operands.
func (g *Generator) genExprFloat(e ast.Expression) {
	switch x := e.(type) {
	case *ast.FloatLiteral:
		label := g.internFloat(x.Value)
		g.emit("movsd %s(%%rip), %%xmm0", label)
	case *ast.IntLiteral:
		g.emit("mov $%d, %%rax", x.Value)
		g.emit("cvtsi2sd %%rax, %%xmm0")
	case *ast.Identifier:
		g.loadIdentFloat(x)
	case *ast.Binary:
		g.genBinaryFloat(x)
	case *ast.Unary:
		g.genUnaryFloat(x)
	case *ast.Call:
		g.genCallFloat(x)
	case *ast.FieldAccess:
		idx, _ := g.fieldLayout(x)
		g.genExprInt(x.Object)
		g.emit("movsd %d(%%rax), %%xmm0", idx*8)
	case *ast.Index:
		g.genIndexInt(x)
		g.emit("movq %%rax, %%xmm0")
	default:
		if !isFloatType(e.ExprType()) {
			g.genExprInt(e)
			g.emit("cvtsi2sd %%rax, %%xmm0")
			return
		}
		g.codegenError(e, "unhandled expression kind in float codegen")
	}
}

func (g *Generator) internFloat(v float64) string {
	key := fmt.Sprintf("f%x", v)
	if label, ok := g.strLabels[key]; ok {
		return label
	}
	g.strCount++
	label := fmt.Sprintf(".Lflt%d", g.strCount)
	g.strLabels[key] = label
	fmt.Fprintf(&g.data, "%s: .double %v\n", label, v)
	return label
}

func (g *Generator) loadIdentFloat(id *ast.Identifier) {
	if !isFloatType(id.ExprType()) {
		g.genExprInt(id)
		g.emit("cvtsi2sd %%rax, %%xmm0")
		return
	}
	if ref, _, ok := g.slotRef(id.Name); ok {
		g.emit("movsd %s, %%xmm0", ref)
		return
	}
	g.emit("movsd %s(%%rip), %%xmm0", globalSymbol(id.Name))
}

func (g *Generator) genBinaryFloat(b *ast.Binary) {
	switch b.Op {
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		g.genFloatCompare(b)
		g.emit("movzx %%al, %%rax")
		g.emit("cvtsi2sd %%rax, %%xmm0")
		return
	}

	g.genExprFloat(b.Left)
	g.emit("sub $8, %%rsp")
	g.emit("movsd %%xmm0, (%%rsp)")
	g.genExprFloat(b.Right)
	g.emit("movsd (%%rsp), %%xmm1")
	g.emit("add $8, %%rsp")
	// xmm1 = left, xmm0 = right; operate with left as destination.
	g.emit("movsd %%xmm0, %%xmm2")
	g.emit("movsd %%xmm1, %%xmm0")
	switch b.Op {
	case ast.OpAdd:
		g.emit("addsd %%xmm2, %%xmm0")
	case ast.OpSub:
		g.emit("subsd %%xmm2, %%xmm0")
	case ast.OpMul:
		g.emit("mulsd %%xmm2, %%xmm0")
	case ast.OpDiv:
		g.emit("divsd %%xmm2, %%xmm0")
	case ast.OpPow:
		g.emit("movsd %%xmm2, %%xmm1")
		g.emit("call %s", g.abi.Symbol(rtabi.FloatPow))
	default:
		g.codegenError(b, "unhandled float binary operator")
	}
}

// genFloatCompare leaves a 0/1 boolean result in %al.
func (g *Generator) genFloatCompare(b *ast.Binary) {
	g.genExprFloat(b.Left)
	g.emit("sub $8, %%rsp")
	g.emit("movsd %%xmm0, (%%rsp)")
	g.genExprFloat(b.Right)
	g.emit("movsd %%xmm0, %%xmm1")
	g.emit("movsd (%%rsp), %%xmm0")
	g.emit("add $8, %%rsp")
	g.emit("comisd %%xmm1, %%xmm0")
	switch b.Op {
	case ast.OpEq:
		g.emit("sete %%al")
	case ast.OpNe:
		g.emit("setne %%al")
	case ast.OpLt:
		g.emit("setb %%al")
	case ast.OpLe:
		g.emit("setbe %%al")
	case ast.OpGt:
		g.emit("seta %%al")
	case ast.OpGe:
		g.emit("setae %%al")
	}
}

func (g *Generator) genUnaryFloat(u *ast.Unary) {
	g.genExprFloat(u.Operand)
	if u.Op == ast.OpNeg {
		label := g.internFloat(-0.0)
		g.emit("movsd %s(%%rip), %%xmm1", label)
		g.emit("xorpd %%xmm1, %%xmm0")
	}
}

// ---- calls --------------------------------------------------------------

func (g *Generator) genCallInt(c *ast.Call) {
	if decl, ok := g.structs[c.Callee]; ok {
		g.genStructConstruct(decl, c)
		return
	}
	if g.genBuiltinInt(c) {
		return
	}
	g.genUserCall(c)
}

func (g *Generator) genCallFloat(c *ast.Call) {
	if c.Callee == "float" {
		arg := c.Args[0]
		if isFloatType(arg.ExprType()) {
			g.genExprFloat(arg)
		} else {
			g.genExprInt(arg)
			g.emit("cvtsi2sd %%rax, %%xmm0")
		}
		return
	}
	g.genUserCall(c)
	g.emit("movq %%rax, %%xmm0")
}

func (g *Generator) genStructConstruct(decl *ast.StructDecl, c *ast.Call) {
	g.emit("mov $%d, %%rdi", len(decl.Fields)*8)
	g.emit("call %s", g.abi.Symbol(rtabi.Malloc))
	for i, arg := range c.Args {
		g.emit("push %%rax")
		if isFloatType(decl.Fields[i].Type) {
			g.genExprFloat(arg)
			g.emit("pop %%rax")
			g.emit("push %%rax")
			g.emit("movsd %%xmm0, %d(%%rax)", i*8)
			g.emit("pop %%rax")
		} else {
			g.genExprInt(arg)
			g.emit("mov %%rax, %%rcx")
			g.emit("pop %%rax")
			g.emit("mov %%rcx, %d(%%rax)", i*8)
		}
	}
}

// genUserCall marshals arguments per the target ABI's register
// assignment and calls a user-declared function by name.
func (g *Generator) genUserCall(c *ast.Call) {
	type argSlot struct {
		isFloat bool
		reg     string
		ok      bool
	}
	slots := make([]argSlot, len(c.Args))
	intIdx, floatIdx := 0, 0
	for i, a := range c.Args {
		isF := isFloatType(a.ExprType())
		slots[i].isFloat = isF
		if isF {
			slots[i].reg, slots[i].ok = g.abi.FloatArg(floatIdx)
			floatIdx++
		} else {
			slots[i].reg, slots[i].ok = g.abi.IntArg(intIdx)
			intIdx++
		}
	}

	for i, a := range c.Args {
		if slots[i].isFloat {
			g.genExprFloat(a)
			g.emit("sub $8, %%rsp")
			g.emit("movsd %%xmm0, (%%rsp)")
		} else {
			g.genExprInt(a)
			g.emit("push %%rax")
		}
	}
	for i := len(slots) - 1; i >= 0; i-- {
		if slots[i].isFloat {
			if slots[i].ok {
				g.emit("movsd (%%rsp), %%%s", slots[i].reg)
				g.emit("add $8, %%rsp")
			}
		} else if slots[i].ok {
			g.emit("pop %%%s", slots[i].reg)
		} else {
			g.emit("pop %%rax")
		}
	}

	if g.abi.ShadowSpaceBytes > 0 {
		g.emit("sub $%d, %%rsp", g.abi.ShadowSpaceBytes)
	}
	// A source-level call to "main" must never compile to a literal
	// "call main": that symbol is the process entry genEntry owns, so
	// calling it recurses into the entry point instead of into the
	// user's fn main. Redirect to the internal symbol it was emitted
	// under instead.
	if c.Callee == "main" && g.userMainSymbol != "" {
		g.emit("call %s", g.userMainSymbol)
	} else {
		g.emit("call %s", g.abi.Symbol(c.Callee))
	}
	if g.abi.ShadowSpaceBytes > 0 {
		g.emit("add $%d, %%rsp", g.abi.ShadowSpaceBytes)
	}
}
