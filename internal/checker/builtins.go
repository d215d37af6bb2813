package checker

import "github.com/Rohithoctacter/orion/internal/types"

// builtinSig describes a fixed-arity (or bounded-arity) builtin's
// signature, per spec.md §4.3's builtin table. maxArgs of -1 means
// unbounded.
type builtinSig struct {
	minArgs, maxArgs int
	result           func(args []types.Type) types.Type
}

func fixedResult(t types.Type) func([]types.Type) types.Type {
	return func([]types.Type) types.Type { return t }
}

// builtinTable is Orion's fixed set of free-function builtins. List and
// dict "methods" are modeled as ordinary calls taking the collection as
// their first argument (append(xs, v), keys(d), ...) since the grammar
// has no receiver-call syntax — the same shape the runtime ABI already
// uses (list_append(list, value), dict_keys(dict), ...).
var builtinTable = map[string]builtinSig{
	"print": {minArgs: 1, maxArgs: -1, result: fixedResult(types.TVoid)},
	"out":   {minArgs: 1, maxArgs: -1, result: fixedResult(types.TVoid)},

	"len": {minArgs: 1, maxArgs: 1, result: fixedResult(types.TInt64)},

	"range": {minArgs: 1, maxArgs: 3, result: fixedResult(types.TRange)},

	"str":   {minArgs: 1, maxArgs: 1, result: fixedResult(types.TString)},
	"int":   {minArgs: 1, maxArgs: 1, result: fixedResult(types.TInt64)},
	"float": {minArgs: 1, maxArgs: 1, result: fixedResult(types.TFloat64)},
	"bool":  {minArgs: 1, maxArgs: 1, result: fixedResult(types.TBool)},

	"input": {minArgs: 0, maxArgs: 1, result: fixedResult(types.TString)},

	"append": {minArgs: 2, maxArgs: 2, result: fixedResult(types.TVoid)},
	"pop":    {minArgs: 1, maxArgs: 1, result: fixedResult(types.TInt64)},
	"insert": {minArgs: 3, maxArgs: 3, result: fixedResult(types.TVoid)},
	"concat": {minArgs: 2, maxArgs: 2, result: fixedResult(types.TList)},
	"repeat": {minArgs: 2, maxArgs: 2, result: fixedResult(types.TList)},
	"extend": {minArgs: 2, maxArgs: 2, result: fixedResult(types.TVoid)},

	"keys":     {minArgs: 1, maxArgs: 1, result: fixedResult(types.TList)},
	"values":   {minArgs: 1, maxArgs: 1, result: fixedResult(types.TList)},
	"items":    {minArgs: 1, maxArgs: 1, result: fixedResult(types.TList)},
	"clear":    {minArgs: 1, maxArgs: 1, result: fixedResult(types.TVoid)},
	"update":   {minArgs: 2, maxArgs: 2, result: fixedResult(types.TVoid)},
	"contains": {minArgs: 2, maxArgs: 2, result: fixedResult(types.TBool)},
	"delete":   {minArgs: 2, maxArgs: 2, result: fixedResult(types.TVoid)},
}
