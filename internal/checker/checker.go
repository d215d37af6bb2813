// Package checker implements Orion's semantic analyzer and type checker
// (spec.md §4.3): it walks the AST produced by internal/parser, annotates
// every expression with a concrete type, resolves every identifier to a
// scope, and rejects ill-typed programs — collecting every diagnostic it
// can rather than stopping at the first one, mirroring internal/parser's
// recovery discipline.
package checker

import (
	"fmt"

	"github.com/Rohithoctacter/orion/internal/ast"
	"github.com/Rohithoctacter/orion/internal/diagnostics"
	"github.com/Rohithoctacter/orion/internal/token"
	"github.com/Rohithoctacter/orion/internal/types"
)

// binding records a name's current type together with whether its
// governing declaration carried an explicit type annotation — spec.md
// §4.3's rule that reassigning to a different type is only legal when the
// original declaration was NOT explicitly typed needs both facts.
type binding struct {
	typ      types.Type
	explicit bool
}

// scope is either the root (fn == nil) or a single function's body.
// Functions never nest (spec.md §3: only the root scope is a parent), so
// there is never more than one of these active for user code plus the
// root at any time.
type scope struct {
	fn            *ast.FunctionDecl
	params        map[string]*binding
	locals        map[string]*binding
	globalAlias   map[string]bool // declared via `global`
	localOverride map[string]bool // declared via `local`, masks a same-named global
	loopDepth     int
}

func newRootScope() *scope { return &scope{} }

func newFuncScope(fn *ast.FunctionDecl) *scope {
	s := &scope{
		fn:            fn,
		params:        make(map[string]*binding),
		locals:        make(map[string]*binding),
		globalAlias:   make(map[string]bool),
		localOverride: make(map[string]bool),
	}
	for _, p := range fn.Params {
		typ := p.Type
		if !p.Explicit {
			// Every expression must leave checking with a concrete type
			// (spec.md §8 "Typing covers all expressions"); an
			// unannotated parameter defaults to int64, Orion's default
			// numeric type, rather than staying unknown forever.
			typ = types.TInt64
		}
		s.params[p.Name] = &binding{typ: typ, explicit: p.Explicit}
	}
	return s
}

// Checker carries the whole-program symbol tables built once up front.
type Checker struct {
	diags          *diagnostics.Bag
	funcs          map[string]*ast.FunctionDecl
	structs        map[string]*ast.StructDecl
	enums          map[string]*ast.EnumDecl
	globals        map[string]*binding
	enumConstValue map[string]int64
}

func New() *Checker {
	return &Checker{
		diags:          diagnostics.NewBag(),
		funcs:          make(map[string]*ast.FunctionDecl),
		structs:        make(map[string]*ast.StructDecl),
		enums:          make(map[string]*ast.EnumDecl),
		globals:        make(map[string]*binding),
		enumConstValue: make(map[string]int64),
	}
}

// Check type-checks prog in place (every Expression's type is annotated
// via SetExprType) and returns every diagnostic collected.
func Check(prog *ast.Program) *diagnostics.Bag {
	c := New()
	c.registerTopLevel(prog)
	c.checkTopLevel(prog)
	return c.diags
}

func (c *Checker) errorf(kind diagnostics.Kind, pos token.Position, format string, args ...any) {
	c.diags.Addf(diagnostics.PhaseCheck, kind, pos, format, args...)
}

// ---- registration --------------------------------------------------------

// registerTopLevel populates the whole-program symbol tables before any
// expression is checked, so forward references (a function calling one
// declared later in the file) resolve correctly.
func (c *Checker) registerTopLevel(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *ast.FunctionDecl:
			if _, dup := c.funcs[s.Name]; dup {
				c.errorf(diagnostics.TypeError, s.Pos(), "function %q is already declared", s.Name)
				continue
			}
			c.funcs[s.Name] = s
		case *ast.StructDecl:
			if _, dup := c.structs[s.Name]; dup {
				c.errorf(diagnostics.TypeError, s.Pos(), "struct %q is already declared", s.Name)
				continue
			}
			c.structs[s.Name] = s
		case *ast.EnumDecl:
			if _, dup := c.enums[s.Name]; dup {
				c.errorf(diagnostics.TypeError, s.Pos(), "enum %q is already declared", s.Name)
				continue
			}
			c.enums[s.Name] = s
			// Enum members behave as global int-valued constants of the
			// enum's nominal type (spec.md §3's EnumDecl carries
			// (name, value) pairs; reading a member by its bare name is
			// the most Python-like surface for that, and avoids needing
			// a dedicated member-access expression the grammar doesn't
			// define).
			for _, m := range s.Members {
				c.globals[m.Name] = &binding{typ: types.EnumType(s.Name), explicit: true}
				c.enumConstValue[m.Name] = m.Value
			}
		}
	}
}

// ---- top level ------------------------------------------------------------

func (c *Checker) checkTopLevel(prog *ast.Program) {
	root := newRootScope()
	for _, stmt := range prog.Statements {
		if fn, ok := stmt.(*ast.FunctionDecl); ok {
			c.checkFunction(fn)
			continue
		}
		c.checkStmt(stmt, root)
	}
}

func (c *Checker) checkFunction(fn *ast.FunctionDecl) {
	sc := newFuncScope(fn)

	if fn.Expr != nil {
		t := c.checkExpr(fn.Expr, sc)
		if fn.ReturnType.Equal(types.TVoid) {
			fn.ReturnType = t
		} else if !assignable(t, fn.ReturnType) {
			c.errorf(diagnostics.TypeError, fn.Expr.Pos(), "function %q returns %s, declared %s", fn.Name, t, fn.ReturnType)
		}
		return
	}

	assigned := map[string]bool{}
	globalNames := map[string]bool{}
	localNames := map[string]bool{}
	var bodyStmts []ast.Statement
	if fn.Body != nil {
		bodyStmts = fn.Body.Statements
	}
	collectAssignedNames(bodyStmts, assigned, globalNames, localNames)
	for n := range globalNames {
		sc.globalAlias[n] = true
	}
	for n := range localNames {
		sc.localOverride[n] = true
	}
	for n := range assigned {
		if _, isParam := sc.params[n]; isParam {
			continue
		}
		if sc.globalAlias[n] && !sc.localOverride[n] {
			continue // resolved against the root binding, no local slot
		}
		sc.locals[n] = &binding{typ: types.TUnknown}
	}

	for _, stmt := range bodyStmts {
		c.checkStmt(stmt, sc)
	}
}

// collectAssignedNames implements spec.md §4.3's first pass over a
// function body: every name appearing on the LHS of a plain assignment
// (outside of `global`) becomes function-local.
func collectAssignedNames(stmts []ast.Statement, assigned, globalNames, localNames map[string]bool) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.VariableDecl:
			assigned[s.Name] = true
		case *ast.Assignment:
			if id, ok := s.Target.(*ast.Identifier); ok {
				assigned[id.Name] = true
			}
		case *ast.TupleAssignment:
			for _, t := range s.Targets {
				if id, ok := t.(*ast.Identifier); ok {
					assigned[id.Name] = true
				}
			}
		case *ast.ForIn:
			assigned[s.Var] = true
			if s.Body != nil {
				collectAssignedNames(s.Body.Statements, assigned, globalNames, localNames)
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
				collectAssignedNames(s.Then.Statements, assigned, globalNames, localNames)
			}
			if s.Else != nil {
				collectAssignedNames([]ast.Statement{s.Else}, assigned, globalNames, localNames)
			}
		case *ast.While:
			if s.Body != nil {
				collectAssignedNames(s.Body.Statements, assigned, globalNames, localNames)
			}
		case *ast.Block:
			collectAssignedNames(s.Statements, assigned, globalNames, localNames)
		}
	}
}

// ---- statements -----------------------------------------------------------

func (c *Checker) checkStmt(stmt ast.Statement, sc *scope) {
	switch s := stmt.(type) {
	case *ast.FunctionDecl:
		c.errorf(diagnostics.TypeError, s.Pos(), "nested function declarations are not supported")
	case *ast.VariableDecl:
		c.checkVariableDecl(s, sc)
	case *ast.Assignment:
		c.checkAssignment(s, sc)
	case *ast.IndexAssignment:
		c.checkIndexAssignment(s, sc)
	case *ast.TupleAssignment:
		c.checkTupleAssignment(s, sc)
	case *ast.If:
		c.checkIf(s, sc)
	case *ast.While:
		c.checkWhile(s, sc)
	case *ast.ForIn:
		c.checkForIn(s, sc)
	case *ast.Return:
		c.checkReturn(s, sc)
	case *ast.Break:
		if sc.loopDepth == 0 {
			c.errorf(diagnostics.BreakOutsideLoop, s.Pos(), "break outside loop")
		}
	case *ast.Continue:
		if sc.loopDepth == 0 {
			c.errorf(diagnostics.BreakOutsideLoop, s.Pos(), "continue outside loop")
		}
	case *ast.Pass:
		// no-op
	case *ast.Block:
		for _, inner := range s.Statements {
			c.checkStmt(inner, sc)
		}
	case *ast.StructDecl, *ast.EnumDecl:
		// already registered in registerTopLevel
	case *ast.Global, *ast.Local:
		// names already folded into sc during checkFunction's first pass
	case *ast.ExprStmt:
		c.checkExpr(s.X, sc)
	default:
		c.errorf(diagnostics.TypeError, stmt.Pos(), "internal: unhandled statement kind")
	}
}

func (c *Checker) checkVariableDecl(s *ast.VariableDecl, sc *scope) {
	initType := c.checkExpr(s.Init, sc)
	existing, existed := c.lookupBinding(s.Name, sc)

	declared := s.DeclaredType
	explicit := s.Explicit

	if s.Explicit {
		if !assignable(initType, declared) {
			c.errorf(diagnostics.TypeError, s.Pos(), "cannot initialize %q of declared type %s with %s", s.Name, declared, initType)
		}
	} else {
		declared = initType
		if existed && existing.explicit {
			if !assignable(initType, existing.typ) {
				c.errorf(diagnostics.TypeError, s.Pos(), "cannot reassign %q (declared %s) with %s", s.Name, existing.typ, initType)
			}
			declared = existing.typ
			explicit = true
		}
	}

	c.bindName(s.Name, declared, explicit, sc)
}

func (c *Checker) checkAssignment(s *ast.Assignment, sc *scope) {
	valueType := c.checkExpr(s.Value, sc)
	switch target := s.Target.(type) {
	case *ast.Identifier:
		c.resolveIdentifier(target, sc)
		if existing, ok := c.lookupBinding(target.Name, sc); ok {
			if !assignable(valueType, existing.typ) {
				c.errorf(diagnostics.TypeError, s.Pos(), "cannot assign %s to %q of type %s", valueType, target.Name, existing.typ)
			}
		} else {
			c.errorf(diagnostics.ScopeError, s.Pos(), "assignment to undeclared name %q", target.Name)
		}
	case *ast.FieldAccess:
		fieldType := c.checkExpr(target, sc)
		if !assignable(valueType, fieldType) {
			c.errorf(diagnostics.TypeError, s.Pos(), "cannot assign %s to field %q of type %s", valueType, target.Field, fieldType)
		}
	default:
		c.checkExpr(s.Target, sc)
	}
}

func (c *Checker) checkIndexAssignment(s *ast.IndexAssignment, sc *scope) {
	objType := c.checkExpr(s.Object, sc)
	idxType := c.checkExpr(s.Index, sc)
	valueType := c.checkExpr(s.Value, sc)
	switch objType.Tag {
	case types.List:
		if !idxType.IsInteger() {
			c.errorf(diagnostics.OperatorError, s.Pos(), "list index must be an integer, got %s", idxType)
		}
		if !valueType.IsInteger() {
			c.errorf(diagnostics.TypeError, s.Pos(), "list elements are int64, got %s", valueType)
		}
	case types.Dict:
		if !idxType.IsInteger() && idxType.Tag != types.String {
			c.errorf(diagnostics.OperatorError, s.Pos(), "dict key must be int64 or string, got %s", idxType)
		}
		if !valueType.IsInteger() {
			c.errorf(diagnostics.TypeError, s.Pos(), "dict values are int64, got %s", valueType)
		}
	default:
		c.errorf(diagnostics.OperatorError, s.Pos(), "cannot index-assign into %s", objType)
	}
}

func (c *Checker) checkTupleAssignment(s *ast.TupleAssignment, sc *scope) {
	valueTypes := make([]types.Type, len(s.Values))
	for i, v := range s.Values {
		valueTypes[i] = c.checkExpr(v, sc)
	}
	if len(s.Targets) != len(s.Values) {
		c.errorf(diagnostics.ArityMismatch, s.Pos(), "tuple assignment has %d targets but %d values", len(s.Targets), len(s.Values))
	}
	for i, t := range s.Targets {
		id, ok := t.(*ast.Identifier)
		if !ok {
			c.errorf(diagnostics.TypeError, t.Pos(), "tuple assignment targets must be plain names")
			continue
		}
		c.resolveIdentifier(id, sc)
		var vt types.Type
		if i < len(valueTypes) {
			vt = valueTypes[i]
		} else {
			vt = types.TUnknown
		}
		existing, existed := c.lookupBinding(id.Name, sc)
		if !existed || !existing.explicit {
			c.bindName(id.Name, vt, false, sc)
		} else if !assignable(vt, existing.typ) {
			c.errorf(diagnostics.TypeError, t.Pos(), "cannot assign %s to %q of type %s", vt, id.Name, existing.typ)
		}
	}
}

func (c *Checker) checkIf(s *ast.If, sc *scope) {
	condType := c.checkExpr(s.Cond, sc)
	c.requireBoolCoercible(condType, s.Cond.Pos())
	if s.Then != nil {
		c.checkStmt(s.Then, sc)
	}
	if s.Else != nil {
		c.checkStmt(s.Else, sc)
	}
}

func (c *Checker) checkWhile(s *ast.While, sc *scope) {
	condType := c.checkExpr(s.Cond, sc)
	c.requireBoolCoercible(condType, s.Cond.Pos())
	sc.loopDepth++
	if s.Body != nil {
		c.checkStmt(s.Body, sc)
	}
	sc.loopDepth--
}

func (c *Checker) checkForIn(s *ast.ForIn, sc *scope) {
	iterType := c.checkExpr(s.Iterable, sc)
	switch iterType.Tag {
	case types.Range, types.List:
		c.bindName(s.Var, types.TInt64, false, sc)
	default:
		c.errorf(diagnostics.OperatorError, s.Iterable.Pos(), "cannot iterate over %s", iterType)
		c.bindName(s.Var, types.TInt64, false, sc)
	}
	sc.loopDepth++
	if s.Body != nil {
		c.checkStmt(s.Body, sc)
	}
	sc.loopDepth--
}

func (c *Checker) checkReturn(s *ast.Return, sc *scope) {
	if sc.fn == nil {
		c.errorf(diagnostics.ReturnOutsideFunc, s.Pos(), "return outside function")
		if s.Value != nil {
			c.checkExpr(s.Value, sc)
		}
		return
	}
	var got types.Type = types.TVoid
	if s.Value != nil {
		got = c.checkExpr(s.Value, sc)
	}
	want := sc.fn.ReturnType
	if want.Equal(types.TVoid) && !got.Equal(types.TVoid) {
		sc.fn.ReturnType = got
		return
	}
	if !assignable(got, want) {
		c.errorf(diagnostics.TypeError, s.Pos(), "function %q returns %s, declared %s", sc.fn.Name, got, want)
	}
}

func (c *Checker) requireBoolCoercible(t types.Type, pos token.Position) {
	if t.Tag == types.Bool || t.IsNumeric() {
		return
	}
	c.errorf(diagnostics.OperatorError, pos, "cannot use %s as a boolean condition", t)
}

// ---- scope plumbing --------------------------------------------------------

func (c *Checker) lookupBinding(name string, sc *scope) (*binding, bool) {
	if sc.fn != nil {
		if b, ok := sc.params[name]; ok {
			return b, true
		}
		if !(sc.globalAlias[name] && !sc.localOverride[name]) {
			if b, ok := sc.locals[name]; ok {
				return b, true
			}
		}
	}
	if b, ok := c.globals[name]; ok {
		return b, true
	}
	return nil, false
}

func (c *Checker) bindName(name string, typ types.Type, explicit bool, sc *scope) {
	if sc.fn != nil {
		if b, ok := sc.params[name]; ok {
			b.typ, b.explicit = typ, explicit
			return
		}
		if sc.globalAlias[name] && !sc.localOverride[name] {
			c.globals[name] = &binding{typ: typ, explicit: explicit}
			return
		}
		sc.locals[name] = &binding{typ: typ, explicit: explicit}
		return
	}
	c.globals[name] = &binding{typ: typ, explicit: explicit}
}

// resolveIdentifier fills in id.Scope per spec.md §3/§8's scope-closure
// property: every identifier resolves to exactly one of param, local, or
// global, or a ScopeError is recorded.
func (c *Checker) resolveIdentifier(id *ast.Identifier, sc *scope) types.Type {
	if sc.fn != nil {
		if b, ok := sc.params[id.Name]; ok {
			id.Scope = ast.ScopeParam
			return b.typ
		}
		if !(sc.globalAlias[id.Name] && !sc.localOverride[id.Name]) {
			if b, ok := sc.locals[id.Name]; ok {
				id.Scope = ast.ScopeLocal
				if b.typ.Tag == types.Unknown {
					c.errorf(diagnostics.ScopeError, id.Pos(), "%q used before assignment", id.Name)
					return types.TInt64
				}
				return b.typ
			}
		}
	}
	if b, ok := c.globals[id.Name]; ok {
		id.Scope = ast.ScopeGlobal
		return b.typ
	}
	id.Scope = ast.ScopeUnresolved
	c.errorf(diagnostics.ScopeError, id.Pos(), "undeclared name %q", id.Name)
	return types.TInt64
}

// ---- expressions -----------------------------------------------------------

func (c *Checker) checkExpr(expr ast.Expression, sc *scope) types.Type {
	if expr == nil {
		return types.TVoid
	}
	t := c.inferExpr(expr, sc)
	expr.SetExprType(t)
	return t
}

func (c *Checker) inferExpr(expr ast.Expression, sc *scope) types.Type {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return types.TInt64
	case *ast.FloatLiteral:
		return types.TFloat64
	case *ast.BoolLiteral:
		return types.TBool
	case *ast.StringLiteral:
		return types.TString
	case *ast.Identifier:
		return c.resolveIdentifier(e, sc)
	case *ast.Binary:
		return c.checkBinary(e, sc)
	case *ast.Unary:
		return c.checkUnary(e, sc)
	case *ast.Call:
		return c.checkCall(e, sc)
	case *ast.Index:
		return c.checkIndex(e, sc)
	case *ast.Tuple:
		for _, el := range e.Elems {
			c.checkExpr(el, sc)
		}
		return types.TUnknown // only legal as an assignment operand; never read as a value
	case *ast.ListLit:
		for _, el := range e.Elems {
			t := c.checkExpr(el, sc)
			if !t.IsInteger() && t.Tag != types.Unknown {
				// erased-to-int64 runtime representation (spec.md §9)
			}
		}
		return types.TList
	case *ast.DictLit:
		for _, entry := range e.Entries {
			c.checkExpr(entry.Key, sc)
			c.checkExpr(entry.Value, sc)
		}
		return types.TDict
	case *ast.FieldAccess:
		return c.checkFieldAccess(e, sc)
	default:
		c.errorf(diagnostics.TypeError, expr.Pos(), "internal: unhandled expression kind")
		return types.TUnknown
	}
}

func (c *Checker) checkBinary(e *ast.Binary, sc *scope) types.Type {
	lt := c.checkExpr(e.Left, sc)
	rt := c.checkExpr(e.Right, sc)
	pos := e.Pos()

	switch e.Op {
	case ast.OpOr, ast.OpAnd:
		c.requireBoolCoercible(lt, e.Left.Pos())
		c.requireBoolCoercible(rt, e.Right.Pos())
		return types.TBool

	case ast.OpEq, ast.OpNe:
		if lt.IsNumeric() && rt.IsNumeric() {
			return types.TBool
		}
		if lt.Equal(rt) {
			return types.TBool
		}
		c.errorf(diagnostics.OperatorError, pos, "cannot compare %s and %s", lt, rt)
		return types.TBool

	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		if lt.IsNumeric() && rt.IsNumeric() {
			return types.TBool
		}
		if lt.Tag == types.String && rt.Tag == types.String {
			return types.TBool
		}
		c.errorf(diagnostics.OperatorError, pos, "cannot compare %s and %s with %s", lt, rt, binaryOpSymbol(e.Op))
		return types.TBool

	case ast.OpAdd:
		if lt.Tag == types.String && rt.Tag == types.String {
			return types.TString
		}
		if w, ok := types.Widen(lt, rt); ok {
			return w
		}
		c.errorf(diagnostics.OperatorError, pos, "operator + is not defined for %s and %s", lt, rt)
		return types.TInt64

	case ast.OpSub, ast.OpMul:
		if w, ok := types.Widen(lt, rt); ok {
			return w
		}
		c.errorf(diagnostics.OperatorError, pos, "operator %s is not defined for %s and %s", binaryOpSymbol(e.Op), lt, rt)
		return types.TInt64

	case ast.OpDiv:
		if w, ok := types.Widen(lt, rt); ok {
			return w
		}
		c.errorf(diagnostics.OperatorError, pos, "operator / is not defined for %s and %s", lt, rt)
		return types.TFloat64

	case ast.OpFloorDiv, ast.OpMod:
		if !lt.IsInteger() || !rt.IsInteger() {
			c.errorf(diagnostics.OperatorError, pos, "%s requires integer operands, got %s and %s", binaryOpSymbol(e.Op), lt, rt)
			return types.TInt64
		}
		return types.TInt64

	case ast.OpPow:
		if !lt.IsNumeric() || !rt.IsNumeric() {
			c.errorf(diagnostics.OperatorError, pos, "** requires numeric operands, got %s and %s", lt, rt)
			return types.TInt64
		}
		return lt // spec.md §4.3: power returns the left operand's numeric type

	default:
		c.errorf(diagnostics.OperatorError, pos, "internal: unhandled binary operator")
		return types.TUnknown
	}
}

func binaryOpSymbol(op ast.BinaryOp) string {
	switch op {
	case ast.OpOr:
		return "or"
	case ast.OpAnd:
		return "and"
	case ast.OpEq:
		return "=="
	case ast.OpNe:
		return "!="
	case ast.OpLt:
		return "<"
	case ast.OpLe:
		return "<="
	case ast.OpGt:
		return ">"
	case ast.OpGe:
		return ">="
	case ast.OpAdd:
		return "+"
	case ast.OpSub:
		return "-"
	case ast.OpMul:
		return "*"
	case ast.OpDiv:
		return "/"
	case ast.OpMod:
		return "%"
	case ast.OpFloorDiv:
		return "//"
	case ast.OpPow:
		return "**"
	default:
		return "?"
	}
}

func (c *Checker) checkUnary(e *ast.Unary, sc *scope) types.Type {
	t := c.checkExpr(e.Operand, sc)
	switch e.Op {
	case ast.OpNot:
		c.requireBoolCoercible(t, e.Operand.Pos())
		return types.TBool
	case ast.OpNeg, ast.OpPos:
		if !t.IsNumeric() {
			c.errorf(diagnostics.OperatorError, e.Pos(), "unary %s requires a numeric operand, got %s", unaryOpSymbol(e.Op), t)
			return types.TInt64
		}
		return t
	default:
		return types.TUnknown
	}
}

func unaryOpSymbol(op ast.UnaryOp) string {
	switch op {
	case ast.OpNot:
		return "not"
	case ast.OpNeg:
		return "-"
	case ast.OpPos:
		return "+"
	default:
		return "?"
	}
}

func (c *Checker) checkIndex(e *ast.Index, sc *scope) types.Type {
	objType := c.checkExpr(e.Object, sc)
	idxType := c.checkExpr(e.Idx, sc)
	switch objType.Tag {
	case types.List:
		if !idxType.IsInteger() {
			c.errorf(diagnostics.OperatorError, e.Pos(), "list index must be an integer, got %s", idxType)
		}
		return types.TInt64
	case types.Dict:
		if !idxType.IsInteger() && idxType.Tag != types.String {
			c.errorf(diagnostics.OperatorError, e.Pos(), "dict key must be int64 or string, got %s", idxType)
		}
		return types.TInt64
	default:
		c.errorf(diagnostics.OperatorError, e.Pos(), "cannot index into %s", objType)
		return types.TInt64
	}
}

func (c *Checker) checkFieldAccess(e *ast.FieldAccess, sc *scope) types.Type {
	objType := c.checkExpr(e.Object, sc)
	if objType.Tag != types.Struct {
		c.errorf(diagnostics.OperatorError, e.Pos(), "cannot access field %q on %s", e.Field, objType)
		return types.TInt64
	}
	decl, ok := c.structs[objType.Name]
	if !ok {
		c.errorf(diagnostics.ScopeError, e.Pos(), "unknown struct type %q", objType.Name)
		return types.TInt64
	}
	for _, f := range decl.Fields {
		if f.Name == e.Field {
			return f.Type
		}
	}
	c.errorf(diagnostics.TypeError, e.Pos(), "struct %q has no field %q", objType.Name, e.Field)
	return types.TInt64
}

// checkCall resolves e.Callee against builtins, user functions, and
// struct constructors (calling a struct's name with one argument per
// field builds a value of that struct type — spec.md's grammar has no
// dedicated struct-literal expression, so construction rides the call
// syntax already defined for ordinary functions).
func (c *Checker) checkCall(e *ast.Call, sc *scope) types.Type {
	argTypes := make([]types.Type, len(e.Args))
	for i, a := range e.Args {
		argTypes[i] = c.checkExpr(a, sc)
	}

	if b, ok := builtinTable[e.Callee]; ok {
		if len(e.Args) < b.minArgs || (b.maxArgs >= 0 && len(e.Args) > b.maxArgs) {
			c.errorf(diagnostics.ArityMismatch, e.Pos(), "%q expects %s arguments, got %d", e.Callee, arityDesc(b.minArgs, b.maxArgs), len(e.Args))
		}
		return b.result(argTypes)
	}

	if fn, ok := c.funcs[e.Callee]; ok {
		if len(e.Args) != len(fn.Params) {
			c.errorf(diagnostics.ArityMismatch, e.Pos(), "%q expects %d arguments, got %d", e.Callee, len(fn.Params), len(e.Args))
		}
		for i := 0; i < len(e.Args) && i < len(fn.Params); i++ {
			want := fn.Params[i].Type
			if fn.Params[i].Explicit && !assignable(argTypes[i], want) {
				c.errorf(diagnostics.TypeError, e.Args[i].Pos(), "argument %d to %q: cannot use %s as %s", i+1, e.Callee, argTypes[i], want)
			}
		}
		if fn.ReturnType.Equal(types.TVoid) && fn.Expr == nil && !returnsValue(fn) {
			return types.TVoid
		}
		return fn.ReturnType
	}

	if decl, ok := c.structs[e.Callee]; ok {
		if len(e.Args) != len(decl.Fields) {
			c.errorf(diagnostics.ArityMismatch, e.Pos(), "struct %q constructor expects %d arguments, got %d", e.Callee, len(decl.Fields), len(e.Args))
		}
		for i := 0; i < len(e.Args) && i < len(decl.Fields); i++ {
			if !assignable(argTypes[i], decl.Fields[i].Type) {
				c.errorf(diagnostics.TypeError, e.Args[i].Pos(), "field %d of %q: cannot use %s as %s", i+1, e.Callee, argTypes[i], decl.Fields[i].Type)
			}
		}
		return types.StructType(e.Callee)
	}

	c.errorf(diagnostics.UnknownFunction, e.Pos(), "call to unknown function %q", e.Callee)
	return types.TInt64
}

// returnsValue scans a function's body for any Return with a value, used
// only to decide a still-unannotated (types.TVoid) return type when the
// function is called before its own body has been checked.
func returnsValue(fn *ast.FunctionDecl) bool {
	if fn.Body == nil {
		return false
	}
	var walk func([]ast.Statement) bool
	walk = func(stmts []ast.Statement) bool {
		for _, s := range stmts {
			switch st := s.(type) {
			case *ast.Return:
				if st.Value != nil {
					return true
				}
			case *ast.If:
				if st.Then != nil && walk(st.Then.Statements) {
					return true
				}
				if blk, ok := st.Else.(*ast.Block); ok && walk(blk.Statements) {
					return true
				}
				if inner, ok := st.Else.(*ast.If); ok && walk([]ast.Statement{inner}) {
					return true
				}
			case *ast.While:
				if st.Body != nil && walk(st.Body.Statements) {
					return true
				}
			case *ast.ForIn:
				if st.Body != nil && walk(st.Body.Statements) {
					return true
				}
			case *ast.Block:
				if walk(st.Statements) {
					return true
				}
			}
		}
		return false
	}
	return walk(fn.Body.Statements)
}

func arityDesc(min, max int) string {
	if max < 0 {
		return fmt.Sprintf("at least %d", min)
	}
	if min == max {
		return fmt.Sprintf("exactly %d", min)
	}
	return fmt.Sprintf("between %d and %d", min, max)
}

// assignable reports whether a value of type got may be stored where want
// is declared: identical types always work; any numeric got may widen
// into a float want (spec.md §4.3's numeric-widening rule extended to
// assignment, not just binary operators).
func assignable(got, want types.Type) bool {
	if want.Tag == types.Unknown || got.Tag == types.Unknown {
		return true
	}
	if got.Equal(want) {
		return true
	}
	if want.IsFloat() && got.IsNumeric() {
		return true
	}
	return false
}
