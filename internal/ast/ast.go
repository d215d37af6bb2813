// Package ast defines Orion's typed syntax tree: two closed node
// families, Statement and Expression, each a small interface implemented
// by a tagged struct per variant (spec.md §3, design note §9 — tagged
// variants instead of a visitor hierarchy, so the checker and code
// generator dispatch with a Go type switch over the concrete node type
// rather than a double dispatch).
//
// Every subtree is uniquely owned: no node is shared between two parents,
// and nothing here is cloned during checking or codegen.
package ast

import (
	"github.com/Rohithoctacter/orion/internal/token"
	"github.com/Rohithoctacter/orion/internal/types"
)

// Kind discriminates a node's concrete variant.
type Kind int

const (
	// Statement kinds
	KProgram Kind = iota
	KFunctionDecl
	KVariableDecl
	KAssignment
	KIndexAssignment
	KTupleAssignment
	KIf
	KWhile
	KForIn
	KReturn
	KBreak
	KContinue
	KPass
	KBlock
	KStructDecl
	KEnumDecl
	KGlobal
	KLocal
	KExprStmt

	// Expression kinds
	KIntLiteral
	KFloatLiteral
	KBoolLiteral
	KStringLiteral
	KIdentifier
	KBinary
	KUnary
	KCall
	KIndex
	KTuple
	KListLit
	KDictLit
	KFieldAccess
)

var kindNames = map[Kind]string{
	KProgram: "Program", KFunctionDecl: "FunctionDecl", KVariableDecl: "VariableDecl",
	KAssignment: "Assignment", KIndexAssignment: "IndexAssignment", KTupleAssignment: "TupleAssignment",
	KIf: "If", KWhile: "While", KForIn: "ForIn", KReturn: "Return", KBreak: "Break",
	KContinue: "Continue", KPass: "Pass", KBlock: "Block", KStructDecl: "StructDecl",
	KEnumDecl: "EnumDecl", KGlobal: "Global", KLocal: "Local", KExprStmt: "ExprStmt",
	KIntLiteral: "IntLiteral", KFloatLiteral: "FloatLiteral", KBoolLiteral: "BoolLiteral",
	KStringLiteral: "StringLiteral", KIdentifier: "Identifier", KBinary: "Binary",
	KUnary: "Unary", KCall: "Call", KIndex: "Index", KTuple: "Tuple", KListLit: "ListLit",
	KDictLit: "DictLit", KFieldAccess: "FieldAccess",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Node is implemented by every Statement and Expression variant.
type Node interface {
	Kind() Kind
	Pos() token.Position
}

// Statement is implemented by every statement-family node.
type Statement interface {
	Node
	statementNode()
}

// Expression is implemented by every expression-family node. Type is
// filled in by the checker; it is types.TUnknown until then, and per
// spec.md's invariant must never remain Unknown after a successful check.
type Expression interface {
	Node
	expressionNode()
	ExprType() types.Type
	SetExprType(types.Type)
}

// base carries the fields every node needs: its source position.
type base struct {
	pos token.Position
}

func (b base) Pos() token.Position { return b.pos }

// exprBase adds the mutable type slot shared by every Expression variant.
type exprBase struct {
	base
	typ types.Type
}

func (e *exprBase) ExprType() types.Type     { return e.typ }
func (e *exprBase) SetExprType(t types.Type) { e.typ = t }
func (*exprBase) expressionNode()            {}

func (*base) statementNode() {}

// ---- Statements -----------------------------------------------------

// Program is the root of every compilation unit.
type Program struct {
	base
	Statements []Statement
}

func (*Program) Kind() Kind { return KProgram }

// Param is one function parameter.
type Param struct {
	Name     string
	Type     types.Type
	Explicit bool // true if the source wrote an explicit type annotation
}

// FunctionDecl declares a top-level function. Body is set when the
// function has a block body; Expr is set (and Body nil) for
// single-expression functions (`fn f(...) => expr`).
type FunctionDecl struct {
	base
	Name       string
	Params     []Param
	ReturnType types.Type
	Body       *Block
	Expr       Expression
}

func (*FunctionDecl) Kind() Kind { return KFunctionDecl }

// VariableDecl introduces a new binding, inferring its type from Init
// when DeclaredType is types.TUnknown.
type VariableDecl struct {
	base
	Name         string
	DeclaredType types.Type
	Explicit     bool
	Init         Expression
}

func (*VariableDecl) Kind() Kind { return KVariableDecl }

// AssignOp enumerates the assignment operators spec.md §3 lists.
type AssignOp int

const (
	OpAssign AssignOp = iota
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign
	OpModAssign
)

var assignOpNames = map[AssignOp]string{
	OpAssign: "=", OpAddAssign: "+=", OpSubAssign: "-=",
	OpMulAssign: "*=", OpDivAssign: "/=", OpModAssign: "%=",
}

func (o AssignOp) String() string {
	if s, ok := assignOpNames[o]; ok {
		return s
	}
	return "unknown"
}

// Assignment stores a simple `target op value` statement. Compound
// operators are desugared at parse time (spec.md §4.2) into OpAssign with
// Value rewritten as a Binary node, so by the time the checker sees an
// Assignment, Op is always OpAssign; the original compound operator is
// not kept.
type Assignment struct {
	base
	Target Expression // *Identifier
	Op     AssignOp
	Value  Expression
}

func (*Assignment) Kind() Kind { return KAssignment }

// IndexAssignment stores `object[index] = value` (and its compound
// forms, likewise desugared).
type IndexAssignment struct {
	base
	Object Expression
	Index  Expression
	Op     AssignOp
	Value  Expression
}

func (*IndexAssignment) Kind() Kind { return KIndexAssignment }

// TupleAssignment stores `a, b = x, y`. All values are evaluated before
// any target is written (spec.md §5).
type TupleAssignment struct {
	base
	Targets []Expression // each *Identifier
	Values  []Expression
}

func (*TupleAssignment) Kind() Kind { return KTupleAssignment }

// If stores an if/elif/else chain; an `elif` is represented as an If
// whose Else is itself an If (not wrapped in a Block).
type If struct {
	base
	Cond Expression
	Then *Block
	Else Statement // *Block, *If, or nil
}

func (*If) Kind() Kind { return KIf }

// While stores a head-tested loop.
type While struct {
	base
	Cond Expression
	Body *Block
}

func (*While) Kind() Kind { return KWhile }

// ForIn stores `for var in iterable { body }`.
type ForIn struct {
	base
	Var      string
	Iterable Expression
	Body     *Block
}

func (*ForIn) Kind() Kind { return KForIn }

// Return stores an optional return value; Value is nil for a bare
// `return`.
type Return struct {
	base
	Value Expression
}

func (*Return) Kind() Kind { return KReturn }

// Break, Continue, and Pass carry no data beyond their position.
type Break struct{ base }

func (*Break) Kind() Kind { return KBreak }

type Continue struct{ base }

func (*Continue) Kind() Kind { return KContinue }

type Pass struct{ base }

func (*Pass) Kind() Kind { return KPass }

// Block is an ordered sequence of statements, the body of a function,
// loop, or conditional branch.
type Block struct {
	base
	Statements []Statement
}

func (*Block) Kind() Kind { return KBlock }

// StructField is one field of a struct declaration.
type StructField struct {
	Name string
	Type types.Type
}

// StructDecl declares a nominal struct type.
type StructDecl struct {
	base
	Name   string
	Fields []StructField
}

func (*StructDecl) Kind() Kind { return KStructDecl }

// EnumMember is one (name, value) pair of an enum declaration.
type EnumMember struct {
	Name  string
	Value int64
}

// EnumDecl declares a nominal enum type.
type EnumDecl struct {
	base
	Name    string
	Members []EnumMember
}

func (*EnumDecl) Kind() Kind { return KEnumDecl }

// Global declares that the named variables, assigned to within the
// enclosing function, refer to root-scope bindings (spec.md §3).
type Global struct {
	base
	Names []string
}

func (*Global) Kind() Kind { return KGlobal }

// Local declares that the named variables are function-local even if a
// same-named global exists (the mirror image of Global).
type Local struct {
	base
	Names []string
}

func (*Local) Kind() Kind { return KLocal }

// ExprStmt wraps an expression evaluated for its side effect, discarding
// its value.
type ExprStmt struct {
	base
	X Expression
}

func (*ExprStmt) Kind() Kind { return KExprStmt }

// ---- Expressions ------------------------------------------------------

type IntLiteral struct {
	exprBase
	Value int64
}

func (*IntLiteral) Kind() Kind { return KIntLiteral }

type FloatLiteral struct {
	exprBase
	Value float64
}

func (*FloatLiteral) Kind() Kind { return KFloatLiteral }

type BoolLiteral struct {
	exprBase
	Value bool
}

func (*BoolLiteral) Kind() Kind { return KBoolLiteral }

type StringLiteral struct {
	exprBase
	Value string
}

func (*StringLiteral) Kind() Kind { return KStringLiteral }

// Identifier resolves to a parameter, function-local, or global binding;
// Scope is filled in by the checker.
type Identifier struct {
	exprBase
	Name  string
	Scope Scope
}

func (*Identifier) Kind() Kind { return KIdentifier }

// Scope names where an Identifier's binding was resolved, per spec.md §3.
type Scope int

const (
	ScopeUnresolved Scope = iota
	ScopeParam
	ScopeLocal
	ScopeGlobal
)

// BinaryOp enumerates every binary operator in spec.md §4.2's precedence
// table.
type BinaryOp int

const (
	OpOr BinaryOp = iota
	OpAnd
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpFloorDiv
	OpPow
)

var binaryOpNames = map[BinaryOp]string{
	OpOr: "or", OpAnd: "and", OpEq: "==", OpNe: "!=", OpLt: "<", OpLe: "<=",
	OpGt: ">", OpGe: ">=", OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/",
	OpMod: "%", OpFloorDiv: "//", OpPow: "**",
}

func (o BinaryOp) String() string {
	if s, ok := binaryOpNames[o]; ok {
		return s
	}
	return "unknown"
}

type Binary struct {
	exprBase
	Left  Expression
	Op    BinaryOp
	Right Expression
}

func (*Binary) Kind() Kind { return KBinary }

// UnaryOp enumerates the three unary operators.
type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNeg
	OpPos
)

var unaryOpNames = map[UnaryOp]string{OpNot: "not", OpNeg: "-", OpPos: "+"}

func (o UnaryOp) String() string {
	if s, ok := unaryOpNames[o]; ok {
		return s
	}
	return "unknown"
}

type Unary struct {
	exprBase
	Op      UnaryOp
	Operand Expression
}

func (*Unary) Kind() Kind { return KUnary }

// Call stores a function call by callee name (spec.md §3: user functions
// and the fixed builtin table share one call node).
type Call struct {
	exprBase
	Callee string
	Args   []Expression
}

func (*Call) Kind() Kind { return KCall }

// Index stores `object[index]`.
type Index struct {
	exprBase
	Object Expression
	Idx    Expression
}

func (*Index) Kind() Kind { return KIndex }

// Tuple stores a parenthesized comma-separated expression list. Valid
// only as the RHS of a TupleAssignment or as a single-element
// parenthesization (spec.md §4.2).
type Tuple struct {
	exprBase
	Elems []Expression
}

func (*Tuple) Kind() Kind { return KTuple }

// ListLit stores a `[e1, e2, ...]` literal.
type ListLit struct {
	exprBase
	Elems []Expression
}

func (*ListLit) Kind() Kind { return KListLit }

// DictEntry is one key/value pair of a dict literal.
type DictEntry struct {
	Key   Expression
	Value Expression
}

// DictLit stores a `{k1: v1, k2: v2, ...}` literal.
type DictLit struct {
	exprBase
	Entries []DictEntry
}

func (*DictLit) Kind() Kind { return KDictLit }

// FieldAccess stores `object.field`, used for struct field reads (and,
// as an Assignment/IndexAssignment-style target, struct field writes).
type FieldAccess struct {
	exprBase
	Object Expression
	Field  string
}

func (*FieldAccess) Kind() Kind { return KFieldAccess }

// ---- Constructors ------------------------------------------------------
//
// One constructor per variant keeps position-stamping in a single place
// and lets callers build nodes with positional literals, matching how the
// parser emits them.

func NewProgram(pos token.Position, stmts []Statement) *Program {
	return &Program{base: base{pos}, Statements: stmts}
}

func NewBlock(pos token.Position, stmts []Statement) *Block {
	return &Block{base: base{pos}, Statements: stmts}
}

func NewIntLiteral(pos token.Position, v int64) *IntLiteral {
	return &IntLiteral{exprBase: exprBase{base: base{pos}, typ: types.TUnknown}, Value: v}
}

func NewFloatLiteral(pos token.Position, v float64) *FloatLiteral {
	return &FloatLiteral{exprBase: exprBase{base: base{pos}, typ: types.TUnknown}, Value: v}
}

func NewBoolLiteral(pos token.Position, v bool) *BoolLiteral {
	return &BoolLiteral{exprBase: exprBase{base: base{pos}, typ: types.TUnknown}, Value: v}
}

func NewStringLiteral(pos token.Position, v string) *StringLiteral {
	return &StringLiteral{exprBase: exprBase{base: base{pos}, typ: types.TUnknown}, Value: v}
}

func NewIdentifier(pos token.Position, name string) *Identifier {
	return &Identifier{exprBase: exprBase{base: base{pos}, typ: types.TUnknown}, Name: name}
}

func NewBinary(pos token.Position, left Expression, op BinaryOp, right Expression) *Binary {
	return &Binary{exprBase: exprBase{base: base{pos}, typ: types.TUnknown}, Left: left, Op: op, Right: right}
}

func NewUnary(pos token.Position, op UnaryOp, operand Expression) *Unary {
	return &Unary{exprBase: exprBase{base: base{pos}, typ: types.TUnknown}, Op: op, Operand: operand}
}

func NewCall(pos token.Position, callee string, args []Expression) *Call {
	return &Call{exprBase: exprBase{base: base{pos}, typ: types.TUnknown}, Callee: callee, Args: args}
}

func NewIndex(pos token.Position, object, idx Expression) *Index {
	return &Index{exprBase: exprBase{base: base{pos}, typ: types.TUnknown}, Object: object, Idx: idx}
}

func NewTuple(pos token.Position, elems []Expression) *Tuple {
	return &Tuple{exprBase: exprBase{base: base{pos}, typ: types.TUnknown}, Elems: elems}
}

func NewListLit(pos token.Position, elems []Expression) *ListLit {
	return &ListLit{exprBase: exprBase{base: base{pos}, typ: types.TUnknown}, Elems: elems}
}

func NewDictLit(pos token.Position, entries []DictEntry) *DictLit {
	return &DictLit{exprBase: exprBase{base: base{pos}, typ: types.TUnknown}, Entries: entries}
}

func NewFunctionDecl(pos token.Position, name string, params []Param, ret types.Type, body *Block, expr Expression) *FunctionDecl {
	return &FunctionDecl{base: base{pos}, Name: name, Params: params, ReturnType: ret, Body: body, Expr: expr}
}

func NewVariableDecl(pos token.Position, name string, declared types.Type, explicit bool, init Expression) *VariableDecl {
	return &VariableDecl{base: base{pos}, Name: name, DeclaredType: declared, Explicit: explicit, Init: init}
}

func NewAssignment(pos token.Position, target Expression, op AssignOp, value Expression) *Assignment {
	return &Assignment{base: base{pos}, Target: target, Op: op, Value: value}
}

func NewIndexAssignment(pos token.Position, object, index Expression, op AssignOp, value Expression) *IndexAssignment {
	return &IndexAssignment{base: base{pos}, Object: object, Index: index, Op: op, Value: value}
}

func NewTupleAssignment(pos token.Position, targets, values []Expression) *TupleAssignment {
	return &TupleAssignment{base: base{pos}, Targets: targets, Values: values}
}

func NewIf(pos token.Position, cond Expression, then *Block, els Statement) *If {
	return &If{base: base{pos}, Cond: cond, Then: then, Else: els}
}

func NewWhile(pos token.Position, cond Expression, body *Block) *While {
	return &While{base: base{pos}, Cond: cond, Body: body}
}

func NewForIn(pos token.Position, v string, iterable Expression, body *Block) *ForIn {
	return &ForIn{base: base{pos}, Var: v, Iterable: iterable, Body: body}
}

func NewReturn(pos token.Position, value Expression) *Return {
	return &Return{base: base{pos}, Value: value}
}

func NewBreak(pos token.Position) *Break       { return &Break{base: base{pos}} }
func NewContinue(pos token.Position) *Continue { return &Continue{base: base{pos}} }
func NewPass(pos token.Position) *Pass         { return &Pass{base: base{pos}} }

func NewStructDecl(pos token.Position, name string, fields []StructField) *StructDecl {
	return &StructDecl{base: base{pos}, Name: name, Fields: fields}
}

func NewEnumDecl(pos token.Position, name string, members []EnumMember) *EnumDecl {
	return &EnumDecl{base: base{pos}, Name: name, Members: members}
}

func NewGlobal(pos token.Position, names []string) *Global { return &Global{base: base{pos}, Names: names} }
func NewLocal(pos token.Position, names []string) *Local   { return &Local{base: base{pos}, Names: names} }

func NewExprStmt(pos token.Position, x Expression) *ExprStmt {
	return &ExprStmt{base: base{pos}, X: x}
}

func NewFieldAccess(pos token.Position, object Expression, field string) *FieldAccess {
	return &FieldAccess{exprBase: exprBase{base: base{pos}, typ: types.TUnknown}, Object: object, Field: field}
}
