// Package parser implements Orion's recursive-descent parser (spec.md
// §4.2): tokens in, a typed AST out, with statement-level error recovery
// so a single compile reports every parse error it can find rather than
// stopping at the first one.
package parser

import (
	"strconv"

	"github.com/Rohithoctacter/orion/internal/ast"
	"github.com/Rohithoctacter/orion/internal/diagnostics"
	"github.com/Rohithoctacter/orion/internal/token"
	"github.com/Rohithoctacter/orion/internal/types"
)

// Parser consumes a fixed token slice and builds an *ast.Program,
// collecting diagnostics rather than failing fast.
type Parser struct {
	toks  []token.Token
	pos   int
	diags *diagnostics.Bag
}

// New returns a Parser over toks, which must end in an EOF token (as
// produced by internal/lexer.Lexer.Tokenize).
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks, diags: diagnostics.NewBag()}
}

// Parse returns the parsed program and every diagnostic collected along
// the way. The program is non-nil even when diagnostics were recorded, so
// callers can still inspect partial structure if they choose to.
func (p *Parser) Parse() (*ast.Program, *diagnostics.Bag) {
	pos := p.curPos()
	var stmts []ast.Statement
	for !p.atEnd() {
		if p.check(token.NEWLINE) {
			p.advance()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return ast.NewProgram(pos, stmts), p.diags
}

// ---- token-stream primitives -----------------------------------------

func (p *Parser) atEnd() bool { return p.peek().Kind == token.EOF }

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(offset int) token.Token {
	idx := p.pos + offset
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[idx]
}

func (p *Parser) previous() token.Token {
	if p.pos == 0 {
		return p.toks[0]
	}
	return p.toks[p.pos-1]
}

func (p *Parser) curPos() token.Position { return p.peek().Pos }

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if !p.atEnd() {
		p.pos++
	}
	return tok
}

func (p *Parser) check(k token.Kind) bool { return p.peek().Kind == k }

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

// consume advances past a token of kind k, or records a ParseError and
// returns the zero Token if the current token doesn't match.
func (p *Parser) consume(k token.Kind, context string) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	p.errorf("expected %s %s, got %s", k, context, p.peek().Kind)
	return token.Token{}, false
}

func (p *Parser) errorf(format string, args ...any) {
	p.diags.Addf(diagnostics.PhaseParse, diagnostics.ParseError, p.curPos(), format, args...)
}

// skipTerminator consumes an optional NEWLINE or SEMICOLON, matching the
// grammar's "statement terminators are optional" rule (spec.md §4.2).
func (p *Parser) skipTerminator() { p.match(token.NEWLINE, token.SEMICOLON) }

// synchronize implements the recovery rule from spec.md §4.2: skip tokens
// until a statement terminator or a statement-starting keyword, then
// resume parsing from there.
func (p *Parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		prev := p.previous().Kind
		if prev == token.SEMICOLON || prev == token.NEWLINE {
			return
		}
		switch p.peek().Kind {
		case token.FN, token.STRUCT, token.ENUM, token.IF, token.WHILE, token.FOR, token.RETURN, token.BREAK, token.CONTINUE, token.PASS, token.GLOBAL, token.LOCAL:
			return
		}
		p.advance()
	}
}

// ---- statements --------------------------------------------------------

func (p *Parser) parseStatement() ast.Statement {
	startPos := p.pos
	stmt := p.dispatchStatement()
	if stmt == nil && p.pos == startPos {
		// No progress was made (e.g. an error deep in an expression left
		// the cursor where it started) — force an advance so
		// synchronize/the outer loop can't spin forever.
		p.synchronize()
	}
	return stmt
}

func (p *Parser) dispatchStatement() ast.Statement {
	switch p.peek().Kind {
	case token.FN:
		return p.parseFunctionDecl()
	case token.LPAREN:
		return p.parseAssignOrExprStmt()
	case token.GLOBAL:
		return p.parseNameListStmt(true)
	case token.LOCAL:
		return p.parseNameListStmt(false)
	case token.STRUCT:
		return p.parseStructDecl()
	case token.ENUM:
		return p.parseEnumDecl()
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.FOR:
		return p.parseForStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	case token.BREAK:
		pos := p.advance().Pos
		p.skipTerminator()
		return ast.NewBreak(pos)
	case token.CONTINUE:
		pos := p.advance().Pos
		p.skipTerminator()
		return ast.NewContinue(pos)
	case token.PASS:
		pos := p.advance().Pos
		p.skipTerminator()
		return ast.NewPass(pos)
	case token.LBRACE:
		return p.parseBlock()
	default:
		return p.parseVarDeclOrExprStmt()
	}
}

func (p *Parser) parseFunctionDecl() ast.Statement {
	pos := p.curPos()
	p.advance() // 'fn'
	nameTok, ok := p.consume(token.IDENT, "for function name")
	if !ok {
		p.synchronize()
		return nil
	}
	if _, ok := p.consume(token.LPAREN, "after function name"); !ok {
		p.synchronize()
		return nil
	}
	var params []ast.Param
	if !p.check(token.RPAREN) {
		for {
			pnameTok, ok := p.consume(token.IDENT, "for parameter name")
			if !ok {
				break
			}
			var ptyp types.Type
			explicit := false
			switch {
			case p.check(token.COLON):
				p.advance()
				ptyp = p.parseType()
				explicit = true
			case p.peek().Kind.IsTypeName() || p.check(token.IDENT):
				ptyp = p.parseType()
				explicit = true
			default:
				ptyp = types.TUnknown
			}
			params = append(params, ast.Param{Name: pnameTok.Lexeme, Type: ptyp, Explicit: explicit})
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, ok := p.consume(token.RPAREN, "after parameters"); !ok {
		p.synchronize()
		return nil
	}
	retType := types.TVoid
	if p.match(token.ARROW) {
		retType = p.parseType()
	}
	if p.match(token.FATARROW) {
		expr := p.parseExpression()
		p.skipTerminator()
		return ast.NewFunctionDecl(pos, nameTok.Lexeme, params, retType, nil, expr)
	}
	body := p.parseBlock()
	return ast.NewFunctionDecl(pos, nameTok.Lexeme, params, retType, body, nil)
}

func (p *Parser) parseType() types.Type {
	tok := p.peek()
	switch tok.Kind {
	case token.INT32:
		p.advance()
		return types.TInt32
	case token.INT64:
		p.advance()
		return types.TInt64
	case token.FLOAT32:
		p.advance()
		return types.TFloat32
	case token.FLOAT64:
		p.advance()
		return types.TFloat64
	case token.STRINGTYPE:
		p.advance()
		return types.TString
	case token.BOOLTYPE:
		p.advance()
		return types.TBool
	case token.VOIDTYPE:
		p.advance()
		return types.TVoid
	case token.LISTTYPE:
		p.advance()
		return types.TList
	case token.DICTTYPE:
		p.advance()
		return types.TDict
	case token.RANGETYPE:
		p.advance()
		return types.TRange
	case token.IDENT:
		name := p.advance().Lexeme
		// A bare name is always recorded as a struct type; nothing later
		// retags it, so an enum name used as a type stays a struct type.
		return types.StructType(name)
	default:
		p.errorf("expected a type, got %s", tok.Kind)
		return types.TUnknown
	}
}

// parseVarDeclOrExprStmt handles the three declaration-shaped productions
// of spec.md §4.2's varDeclOrExpr rule, falling back to the general
// assignment-or-expression path for everything else (index/field targets,
// bare expression statements).
func (p *Parser) parseVarDeclOrExprStmt() ast.Statement {
	// "type IDENT = expr"
	if p.peek().Kind.IsTypeName() && p.peekAt(1).Kind == token.IDENT {
		pos := p.curPos()
		typ := p.parseType()
		nameTok, ok := p.consume(token.IDENT, "after type in variable declaration")
		if !ok {
			p.synchronize()
			return nil
		}
		if _, ok := p.consume(token.ASSIGN, "after variable name"); !ok {
			p.synchronize()
			return nil
		}
		init := p.parseExpression()
		p.skipTerminator()
		return ast.NewVariableDecl(pos, nameTok.Lexeme, typ, true, init)
	}

	if p.check(token.IDENT) {
		// "IDENT type = expr"
		if p.peekAt(1).Kind.IsTypeName() && p.peekAt(2).Kind == token.ASSIGN {
			pos := p.curPos()
			name := p.advance().Lexeme
			typ := p.parseType()
			p.advance() // '='
			init := p.parseExpression()
			p.skipTerminator()
			return ast.NewVariableDecl(pos, name, typ, true, init)
		}

		// "IDENT assignOp rhs"
		if isAssignOpKind(p.peekAt(1).Kind) {
			pos := p.curPos()
			name := p.advance().Lexeme
			opTok := p.advance()
			if opTok.Kind == token.ASSIGN {
				if p.peek().Kind.IsTypeName() && p.peekAt(1).Kind != token.LPAREN {
					typ := p.parseType()
					init := p.parseExpression()
					p.skipTerminator()
					return ast.NewVariableDecl(pos, name, typ, true, init)
				}
				init := p.parseExpression()
				p.skipTerminator()
				return ast.NewVariableDecl(pos, name, types.TUnknown, false, init)
			}
			// Compound assignment on a bare identifier desugars into a
			// VariableDeclaration whose initializer re-reads the
			// identifier: "x += e" becomes "x = x + e" (spec.md §4.2).
			rhs := p.parseExpression()
			left := ast.NewIdentifier(pos, name)
			combined := ast.NewBinary(pos, left, binaryOpForAssign(opTok.Kind), rhs)
			p.skipTerminator()
			return ast.NewVariableDecl(pos, name, types.TUnknown, false, combined)
		}
	}

	return p.parseAssignOrExprStmt()
}

// parseAssignOrExprStmt parses a general expression and, if it is
// followed by an assignment operator, turns it into the appropriate
// assignment statement kind based on the shape of its target: Tuple →
// TupleAssignment, Index → IndexAssignment, Identifier/FieldAccess →
// Assignment. With no assignment operator it is an ExprStmt.
func (p *Parser) parseAssignOrExprStmt() ast.Statement {
	pos := p.curPos()
	left := p.parseExpression()
	// An unparenthesized comma list (`a, b = 1, 2`) is a tuple on either
	// side of the `=`.
	if p.check(token.COMMA) {
		elems := []ast.Expression{left}
		for p.match(token.COMMA) {
			elems = append(elems, p.parseExpression())
		}
		left = ast.NewTuple(pos, elems)
	}

	if p.check(token.ASSIGN) {
		p.advance()
		right := p.parseExpression()
		if p.check(token.COMMA) {
			elems := []ast.Expression{right}
			for p.match(token.COMMA) {
				elems = append(elems, p.parseExpression())
			}
			right = ast.NewTuple(pos, elems)
		}
		p.skipTerminator()
		if isTupleLike(left) || isTupleLike(right) {
			return ast.NewTupleAssignment(pos, tupleElemsOrSelf(left), tupleElemsOrSelf(right))
		}
		return p.buildSimpleAssign(pos, left, right)
	}

	if isAssignOpKind(p.peek().Kind) {
		if !isSimpleTarget(left) {
			p.errorf("compound assignment target must be an identifier, index, or field access")
			p.synchronize()
			return nil
		}
		opTok := p.advance()
		rhs := p.parseExpression()
		combined := ast.NewBinary(pos, left, binaryOpForAssign(opTok.Kind), rhs)
		p.skipTerminator()
		return p.buildSimpleAssign(pos, left, combined)
	}

	p.skipTerminator()
	return ast.NewExprStmt(pos, left)
}

func (p *Parser) buildSimpleAssign(pos token.Position, target, value ast.Expression) ast.Statement {
	switch t := target.(type) {
	case *ast.Index:
		return ast.NewIndexAssignment(pos, t.Object, t.Idx, ast.OpAssign, value)
	case *ast.Identifier, *ast.FieldAccess:
		return ast.NewAssignment(pos, target, ast.OpAssign, value)
	default:
		p.errorf("invalid assignment target")
		return nil
	}
}

func isAssignOpKind(k token.Kind) bool {
	switch k {
	case token.ASSIGN, token.PLUSEQ, token.MINUSEQ, token.STAREQ, token.SLASHEQ, token.PERCENTEQ:
		return true
	default:
		return false
	}
}

func binaryOpForAssign(k token.Kind) ast.BinaryOp {
	switch k {
	case token.PLUSEQ:
		return ast.OpAdd
	case token.MINUSEQ:
		return ast.OpSub
	case token.STAREQ:
		return ast.OpMul
	case token.SLASHEQ:
		return ast.OpDiv
	case token.PERCENTEQ:
		return ast.OpMod
	default:
		return ast.OpAdd
	}
}

func isSimpleTarget(e ast.Expression) bool {
	switch e.(type) {
	case *ast.Identifier, *ast.Index, *ast.FieldAccess:
		return true
	default:
		return false
	}
}

func isTupleLike(e ast.Expression) bool {
	_, ok := e.(*ast.Tuple)
	return ok
}

func tupleElemsOrSelf(e ast.Expression) []ast.Expression {
	if t, ok := e.(*ast.Tuple); ok {
		return t.Elems
	}
	return []ast.Expression{e}
}

func (p *Parser) parseNameListStmt(isGlobal bool) ast.Statement {
	pos := p.curPos()
	p.advance() // 'global' or 'local'
	var names []string
	for {
		tok, ok := p.consume(token.IDENT, "in global/local statement")
		if !ok {
			break
		}
		names = append(names, tok.Lexeme)
		if !p.match(token.COMMA) {
			break
		}
	}
	p.skipTerminator()
	if isGlobal {
		return ast.NewGlobal(pos, names)
	}
	return ast.NewLocal(pos, names)
}

func (p *Parser) parseStructDecl() ast.Statement {
	pos := p.curPos()
	p.advance() // 'struct'
	nameTok, ok := p.consume(token.IDENT, "for struct name")
	if !ok {
		p.synchronize()
		return nil
	}
	if _, ok := p.consume(token.LBRACE, "after struct name"); !ok {
		p.synchronize()
		return nil
	}
	var fields []ast.StructField
	for !p.check(token.RBRACE) && !p.atEnd() {
		if p.match(token.NEWLINE) {
			continue
		}
		fnameTok, ok := p.consume(token.IDENT, "for struct field name")
		if !ok {
			break
		}
		ftype := p.parseType()
		fields = append(fields, ast.StructField{Name: fnameTok.Lexeme, Type: ftype})
		p.match(token.NEWLINE, token.SEMICOLON)
	}
	p.consume(token.RBRACE, "after struct fields")
	return ast.NewStructDecl(pos, nameTok.Lexeme, fields)
}

func (p *Parser) parseEnumDecl() ast.Statement {
	pos := p.curPos()
	p.advance() // 'enum'
	nameTok, ok := p.consume(token.IDENT, "for enum name")
	if !ok {
		p.synchronize()
		return nil
	}
	if _, ok := p.consume(token.LBRACE, "after enum name"); !ok {
		p.synchronize()
		return nil
	}
	var members []ast.EnumMember
	var value int64
	for !p.check(token.RBRACE) && !p.atEnd() {
		if p.match(token.NEWLINE) {
			continue
		}
		vnameTok, ok := p.consume(token.IDENT, "for enum member name")
		if !ok {
			break
		}
		if p.match(token.ASSIGN) {
			if numTok, ok := p.consume(token.INT, "for enum member value"); ok {
				if n, err := strconv.ParseInt(numTok.Lexeme, 10, 64); err == nil {
					value = n
				}
			}
		}
		members = append(members, ast.EnumMember{Name: vnameTok.Lexeme, Value: value})
		value++
		if !p.check(token.RBRACE) {
			p.match(token.COMMA, token.NEWLINE)
		}
	}
	p.consume(token.RBRACE, "after enum members")
	return ast.NewEnumDecl(pos, nameTok.Lexeme, members)
}

func (p *Parser) parseIfStmt() ast.Statement {
	pos := p.curPos()
	p.advance() // 'if'
	cond := p.parseExpression()
	then := p.parseBlock()
	var els ast.Statement
	if p.check(token.ELIF) {
		els = p.parseElifChain()
	} else if p.match(token.ELSE) {
		els = p.parseBlock()
	}
	return ast.NewIf(pos, cond, then, els)
}

// parseElifChain parses `elif cond { ... }` as a nested If wrapped as the
// enclosing If's else-branch, per spec.md §4.2.
func (p *Parser) parseElifChain() ast.Statement {
	pos := p.curPos()
	p.advance() // 'elif'
	cond := p.parseExpression()
	then := p.parseBlock()
	var els ast.Statement
	if p.check(token.ELIF) {
		els = p.parseElifChain()
	} else if p.match(token.ELSE) {
		els = p.parseBlock()
	}
	return ast.NewIf(pos, cond, then, els)
}

func (p *Parser) parseWhileStmt() ast.Statement {
	pos := p.curPos()
	p.advance() // 'while'
	cond := p.parseExpression()
	body := p.parseBlock()
	return ast.NewWhile(pos, cond, body)
}

// parseForStmt accepts only Python-style for-in loops (spec.md §4.2);
// C-style for(;;) is rejected by requiring 'in' right after the loop
// variable.
func (p *Parser) parseForStmt() ast.Statement {
	pos := p.curPos()
	p.advance() // 'for'
	nameTok, ok := p.consume(token.IDENT, "after 'for'")
	if !ok {
		p.synchronize()
		return nil
	}
	if _, ok := p.consume(token.IN, "after for-loop variable (C-style for loops are not supported)"); !ok {
		p.synchronize()
		return nil
	}
	iterable := p.parseExpression()
	body := p.parseBlock()
	return ast.NewForIn(pos, nameTok.Lexeme, iterable, body)
}

func (p *Parser) parseReturnStmt() ast.Statement {
	pos := p.curPos()
	p.advance() // 'return'
	var value ast.Expression
	if !p.check(token.NEWLINE) && !p.check(token.SEMICOLON) && !p.check(token.RBRACE) && !p.atEnd() {
		value = p.parseExpression()
	}
	p.skipTerminator()
	return ast.NewReturn(pos, value)
}

func (p *Parser) parseBlock() *ast.Block {
	pos := p.curPos()
	if _, ok := p.consume(token.LBRACE, "to start a block"); !ok {
		return ast.NewBlock(pos, nil)
	}
	var stmts []ast.Statement
	for !p.check(token.RBRACE) && !p.atEnd() {
		if p.match(token.NEWLINE) {
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	p.consume(token.RBRACE, "to close a block")
	return ast.NewBlock(pos, stmts)
}

// ---- expressions --------------------------------------------------------
//
// Precedence climb per spec.md §4.2's table, lowest to highest:
// or, and, equality, comparison, term, factor, power (right-assoc),
// unary, call/index, primary.

func (p *Parser) parseExpression() ast.Expression {
	return p.parseOr()
}

func (p *Parser) parseOr() ast.Expression {
	left := p.parseAnd()
	for p.check(token.OR) {
		pos := p.curPos()
		p.advance()
		right := p.parseAnd()
		left = ast.NewBinary(pos, left, ast.OpOr, right)
	}
	return left
}

func (p *Parser) parseAnd() ast.Expression {
	left := p.parseEquality()
	for p.check(token.AND) {
		pos := p.curPos()
		p.advance()
		right := p.parseEquality()
		left = ast.NewBinary(pos, left, ast.OpAnd, right)
	}
	return left
}

func (p *Parser) parseEquality() ast.Expression {
	left := p.parseComparison()
	for p.check(token.EQ) || p.check(token.NE) {
		pos := p.curPos()
		opKind := p.advance().Kind
		right := p.parseComparison()
		op := ast.OpEq
		if opKind == token.NE {
			op = ast.OpNe
		}
		left = ast.NewBinary(pos, left, op, right)
	}
	return left
}

func (p *Parser) parseComparison() ast.Expression {
	left := p.parseTerm()
	for {
		var op ast.BinaryOp
		switch p.peek().Kind {
		case token.LT:
			op = ast.OpLt
		case token.LE:
			op = ast.OpLe
		case token.GT:
			op = ast.OpGt
		case token.GE:
			op = ast.OpGe
		default:
			return left
		}
		pos := p.curPos()
		p.advance()
		right := p.parseTerm()
		left = ast.NewBinary(pos, left, op, right)
	}
}

func (p *Parser) parseTerm() ast.Expression {
	left := p.parseFactor()
	for {
		var op ast.BinaryOp
		switch p.peek().Kind {
		case token.PLUS:
			op = ast.OpAdd
		case token.MINUS:
			op = ast.OpSub
		default:
			return left
		}
		pos := p.curPos()
		p.advance()
		right := p.parseFactor()
		left = ast.NewBinary(pos, left, op, right)
	}
}

func (p *Parser) parseFactor() ast.Expression {
	left := p.parsePower()
	for {
		var op ast.BinaryOp
		switch p.peek().Kind {
		case token.STAR:
			op = ast.OpMul
		case token.SLASH:
			op = ast.OpDiv
		case token.PERCENT:
			op = ast.OpMod
		case token.SLASHSLASH:
			op = ast.OpFloorDiv
		default:
			return left
		}
		pos := p.curPos()
		p.advance()
		right := p.parsePower()
		left = ast.NewBinary(pos, left, op, right)
	}
}

// parsePower is right-associative: a**b**c parses as a**(b**c).
func (p *Parser) parsePower() ast.Expression {
	left := p.parseUnary()
	if p.check(token.STARSTAR) {
		pos := p.curPos()
		p.advance()
		right := p.parsePower()
		return ast.NewBinary(pos, left, ast.OpPow, right)
	}
	return left
}

func (p *Parser) parseUnary() ast.Expression {
	switch p.peek().Kind {
	case token.NOT:
		pos := p.curPos()
		p.advance()
		return ast.NewUnary(pos, ast.OpNot, p.parseUnary())
	case token.MINUS:
		pos := p.curPos()
		p.advance()
		return ast.NewUnary(pos, ast.OpNeg, p.parseUnary())
	case token.PLUS:
		pos := p.curPos()
		p.advance()
		return ast.NewUnary(pos, ast.OpPos, p.parseUnary())
	default:
		return p.parseCallIndex()
	}
}

func (p *Parser) parseCallIndex() ast.Expression {
	expr := p.parsePrimary()
	for {
		switch {
		case p.check(token.LPAREN):
			pos := p.curPos()
			ident, ok := expr.(*ast.Identifier)
			if !ok {
				p.errorf("only a plain name can be called")
				return expr
			}
			p.advance()
			var args []ast.Expression
			if !p.check(token.RPAREN) {
				for {
					args = append(args, p.parseExpression())
					if !p.match(token.COMMA) {
						break
					}
				}
			}
			p.consume(token.RPAREN, "after call arguments")
			expr = ast.NewCall(pos, ident.Name, args)
		case p.check(token.LBRACKET):
			pos := p.curPos()
			p.advance()
			idx := p.parseExpression()
			p.consume(token.RBRACKET, "after index expression")
			expr = ast.NewIndex(pos, expr, idx)
		case p.check(token.DOT):
			pos := p.curPos()
			p.advance()
			fieldTok, ok := p.consume(token.IDENT, "after '.'")
			if !ok {
				return expr
			}
			expr = ast.NewFieldAccess(pos, expr, fieldTok.Lexeme)
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.peek()
	switch tok.Kind {
	case token.TRUE:
		p.advance()
		return ast.NewBoolLiteral(tok.Pos, true)
	case token.FALSE:
		p.advance()
		return ast.NewBoolLiteral(tok.Pos, false)
	case token.INT:
		p.advance()
		v, _ := strconv.ParseInt(tok.Lexeme, 10, 64)
		return ast.NewIntLiteral(tok.Pos, v)
	case token.FLOAT:
		p.advance()
		v, _ := strconv.ParseFloat(tok.Lexeme, 64)
		return ast.NewFloatLiteral(tok.Pos, v)
	case token.STRING:
		p.advance()
		return ast.NewStringLiteral(tok.Pos, tok.Lexeme)
	case token.IDENT:
		p.advance()
		return ast.NewIdentifier(tok.Pos, tok.Lexeme)
	case token.LPAREN:
		return p.parseParenOrTuple()
	case token.LBRACKET:
		return p.parseListLit()
	case token.LBRACE:
		return p.parseDictLit()
	default:
		// Builtins spelled like type keywords (range, int, float, bool)
		// are ordinary calls in expression position.
		if tok.Kind.IsTypeName() && p.peekAt(1).Kind == token.LPAREN {
			p.advance()
			return ast.NewIdentifier(tok.Pos, tok.Lexeme)
		}
		p.errorf("unexpected token %s in expression", tok.Kind)
		p.advance()
		return ast.NewIntLiteral(tok.Pos, 0)
	}
}

// parseParenOrTuple disambiguates a parenthesized expression from a tuple
// literal: any comma after the first expression (including a trailing
// one) promotes the production to a Tuple (spec.md §4.2).
func (p *Parser) parseParenOrTuple() ast.Expression {
	pos := p.curPos()
	p.advance() // '('
	if p.check(token.RPAREN) {
		p.advance()
		return ast.NewTuple(pos, nil)
	}
	first := p.parseExpression()
	if p.check(token.COMMA) {
		elems := []ast.Expression{first}
		for p.match(token.COMMA) {
			if p.check(token.RPAREN) {
				break // trailing comma
			}
			elems = append(elems, p.parseExpression())
		}
		p.consume(token.RPAREN, "after tuple elements")
		return ast.NewTuple(pos, elems)
	}
	p.consume(token.RPAREN, "after parenthesized expression")
	return first
}

func (p *Parser) parseListLit() ast.Expression {
	pos := p.curPos()
	p.advance() // '['
	var elems []ast.Expression
	if !p.check(token.RBRACKET) {
		for {
			elems = append(elems, p.parseExpression())
			if !p.match(token.COMMA) {
				break
			}
			if p.check(token.RBRACKET) {
				break
			}
		}
	}
	p.consume(token.RBRACKET, "after list elements")
	return ast.NewListLit(pos, elems)
}

func (p *Parser) parseDictLit() ast.Expression {
	pos := p.curPos()
	p.advance() // '{'
	var entries []ast.DictEntry
	if !p.check(token.RBRACE) {
		for {
			key := p.parseExpression()
			p.consume(token.COLON, "after dict key")
			value := p.parseExpression()
			entries = append(entries, ast.DictEntry{Key: key, Value: value})
			if !p.match(token.COMMA) {
				break
			}
			if p.check(token.RBRACE) {
				break
			}
		}
	}
	p.consume(token.RBRACE, "after dict entries")
	return ast.NewDictLit(pos, entries)
}
