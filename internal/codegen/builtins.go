package codegen

import (
	"github.com/Rohithoctacter/orion/internal/ast"
	"github.com/Rohithoctacter/orion/internal/rtabi"
	"github.com/Rohithoctacter/orion/internal/types"
)

// genBuiltinInt emits code for a builtin call whose result (if any)
// belongs in %rax, reporting false if c.Callee isn't a builtin at all so
// the caller falls through to a user-function call.
func (g *Generator) genBuiltinInt(c *ast.Call) bool {
	switch c.Callee {
	case "print", "out":
		g.genPrint(c.Args)
		return true
	case "len":
		g.genCollectionLen(c.Args[0])
		return true
	case "range":
		g.genRange(c.Args)
		return true
	case "str":
		g.genStr(c.Args[0])
		return true
	case "int":
		g.genToInt(c.Args[0])
		return true
	case "bool":
		g.genBoolInt(c.Args[0])
		return true
	case "input":
		g.genInput(c.Args)
		return true
	case "append":
		g.genCollectionCall2(rtabi.ListAppend, c.Args[0], c.Args[1])
		return true
	case "pop":
		g.genArg1Call(rtabi.ListPop, c.Args[0])
		return true
	case "insert":
		g.genCollectionCall3(rtabi.ListInsert, c.Args[0], c.Args[1], c.Args[2])
		return true
	case "concat":
		g.genCollectionCall2(rtabi.ListConcat, c.Args[0], c.Args[1])
		return true
	case "repeat":
		g.genCollectionCall2(rtabi.ListRepeat, c.Args[0], c.Args[1])
		return true
	case "extend":
		g.genCollectionCall2(rtabi.ListExtend, c.Args[0], c.Args[1])
		return true
	case "keys":
		g.genArg1Call(rtabi.DictKeys, c.Args[0])
		return true
	case "values":
		g.genArg1Call(rtabi.DictValues, c.Args[0])
		return true
	case "items":
		g.genArg1Call(rtabi.DictItems, c.Args[0])
		return true
	case "clear":
		g.genClear(c.Args[0])
		return true
	case "update":
		g.genCollectionCall2(rtabi.DictUpdate, c.Args[0], c.Args[1])
		return true
	case "contains":
		g.genCollectionCall2(rtabi.DictContains, c.Args[0], c.Args[1])
		return true
	case "delete":
		g.genCollectionCall2(rtabi.DictDelete, c.Args[0], c.Args[1])
		return true
	}
	return false
}

// genPrint dispatches each argument to the runtime print function its
// static type demands, rather than routing everything through
// print_smart's run-time type switch.
func (g *Generator) genPrint(args []ast.Expression) {
	for _, a := range args {
		switch a.ExprType().Tag {
		case types.Int32, types.Int64:
			g.genExprInt(a)
			g.emit("mov %%rax, %%rdi")
			g.emit("call %s", g.abi.Symbol(rtabi.PrintInt))
		case types.Float32, types.Float64:
			g.genExprFloat(a)
			g.emit("call %s", g.abi.Symbol(rtabi.PrintFloat))
		case types.Bool:
			g.genExprInt(a)
			g.emit("mov %%rax, %%rdi")
			g.emit("call %s", g.abi.Symbol(rtabi.PrintBool))
		case types.String:
			g.genExprInt(a)
			g.emit("mov %%rax, %%rdi")
			g.emit("call %s", g.abi.Symbol(rtabi.PrintString))
		default:
			// List/Dict/Range/Struct/Enum have no dedicated pretty
			// printer in the runtime ABI; fall back to the generic one.
			g.genExprInt(a)
			g.emit("mov %%rax, %%rdi")
			g.emit("call %s", g.abi.Symbol(rtabi.PrintSmart))
		}
	}
}

func (g *Generator) genCollectionLen(obj ast.Expression) {
	g.genExprInt(obj)
	g.emit("mov %%rax, %%rdi")
	switch obj.ExprType().Tag {
	case types.Dict:
		g.emit("call %s", g.abi.Symbol(rtabi.DictLen))
	case types.Range:
		g.emit("call %s", g.abi.Symbol(rtabi.RangeLen))
	case types.String:
		g.emit("call %s", g.abi.Symbol(rtabi.StringLen))
	default:
		g.emit("call %s", g.abi.Symbol(rtabi.ListLen))
	}
}

func (g *Generator) genRange(args []ast.Expression) {
	for _, a := range args {
		g.genExprInt(a)
		g.emit("push %%rax")
	}
	switch len(args) {
	case 1:
		g.emit("pop %%rdi")
		g.emit("call %s", g.abi.Symbol(rtabi.RangeNew))
	case 2:
		g.emit("pop %%rsi")
		g.emit("pop %%rdi")
		g.emit("call %s", g.abi.Symbol(rtabi.RangeNewStartStop))
	case 3:
		g.emit("pop %%rdx")
		g.emit("pop %%rsi")
		g.emit("pop %%rdi")
		g.emit("call %s", g.abi.Symbol(rtabi.RangeNewStep))
	}
}

func (g *Generator) genStr(arg ast.Expression) {
	switch arg.ExprType().Tag {
	case types.Int32, types.Int64:
		g.genExprInt(arg)
		g.emit("mov %%rax, %%rdi")
		g.emit("call %s", g.abi.Symbol(rtabi.IntToString))
	case types.Float32, types.Float64:
		g.genExprFloat(arg)
		g.emit("call %s", g.abi.Symbol(rtabi.FloatToString))
	case types.Bool:
		g.genExprInt(arg)
		g.emit("mov %%rax, %%rdi")
		g.emit("call %s", g.abi.Symbol(rtabi.BoolToString))
	default:
		g.genExprInt(arg) // already a string handle
	}
}

func (g *Generator) genToInt(arg ast.Expression) {
	if isFloatType(arg.ExprType()) {
		g.genExprFloat(arg)
		g.emit("cvttsd2si %%xmm0, %%rax")
		return
	}
	g.genExprInt(arg)
}

func (g *Generator) genInput(args []ast.Expression) {
	if len(args) == 0 {
		g.emit("call %s", g.abi.Symbol(rtabi.OrionInput))
		return
	}
	g.genExprInt(args[0])
	g.emit("mov %%rax, %%rdi")
	g.emit("call %s", g.abi.Symbol(rtabi.OrionInputPrompt))
}

func (g *Generator) genArg1Call(sym string, a ast.Expression) {
	g.genExprInt(a)
	g.emit("mov %%rax, %%rdi")
	g.emit("call %s", g.abi.Symbol(sym))
}

func (g *Generator) genCollectionCall2(sym string, a, b ast.Expression) {
	g.genExprInt(a)
	g.emit("push %%rax")
	g.genExprInt(b)
	g.emit("mov %%rax, %%rsi")
	g.emit("pop %%rdi")
	g.emit("call %s", g.abi.Symbol(sym))
}

func (g *Generator) genCollectionCall3(sym string, a, b, c ast.Expression) {
	g.genExprInt(a)
	g.emit("push %%rax")
	g.genExprInt(b)
	g.emit("push %%rax")
	g.genExprInt(c)
	g.emit("mov %%rax, %%rdx")
	g.emit("pop %%rsi")
	g.emit("pop %%rdi")
	g.emit("call %s", g.abi.Symbol(sym))
}

func (g *Generator) genClear(obj ast.Expression) {
	g.genExprInt(obj)
	g.emit("mov %%rax, %%rdi")
	if obj.ExprType().Tag == types.Dict {
		g.emit("call %s", g.abi.Symbol(rtabi.DictClear))
	} else {
		g.emit("call %s", g.abi.Symbol(rtabi.ListClear))
	}
}
