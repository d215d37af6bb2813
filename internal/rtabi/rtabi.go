// Package rtabi names the fixed set of C runtime symbols the code
// generator calls into (spec.md §4.6). Grounded on
// original_source/compiler/runtime.c: every symbol here has a concrete
// C definition in runtime/runtime.c, kept "verbatim in semantics" (same
// refcounting, growth, and load-factor behavior) even though the C
// source itself was rewritten rather than translated line for line.
package rtabi

const (
	Malloc  = "orion_malloc"
	Free    = "orion_free"
	Realloc = "orion_realloc"

	ListNew      = "list_new"
	ListFromData = "list_from_data"
	ListLen      = "list_len"
	ListGet      = "list_get"
	ListSet      = "list_set"
	ListAppend   = "list_append"
	ListPop      = "list_pop"
	ListInsert   = "list_insert"
	ListConcat   = "list_concat"
	ListRepeat   = "list_repeat"
	ListExtend   = "list_extend"
	ListClear    = "list_clear"
	ListRetain   = "list_retain"
	ListRelease  = "list_release"

	DictNew      = "dict_new"
	DictGet      = "dict_get"
	DictSet      = "dict_set"
	DictContains = "dict_contains"
	DictDelete   = "dict_delete"
	DictLen      = "dict_len"
	DictKeys     = "dict_keys"
	DictValues   = "dict_values"
	DictItems    = "dict_items"
	DictClear    = "dict_clear"
	DictUpdate   = "dict_update"
	DictRetain   = "dict_retain"
	DictRelease  = "dict_release"

	RangeNew          = "range_new"
	RangeNewStartStop = "range_new_start_stop"
	RangeNewStep      = "range_new_step"
	RangeLen          = "range_len"
	RangeGet          = "range_get"
	RangeRetain       = "range_retain"
	RangeRelease      = "range_release"

	StringNew        = "string_new"
	StringRetain     = "string_retain"
	StringRelease    = "string_release"
	StringGetCStr    = "string_get_cstr"
	StringLen        = "string_len"
	StringConcatParts = "string_concat_parts"

	IntToString   = "int_to_string"
	FloatToString = "float_to_string"
	BoolToString  = "bool_to_string"

	FloatPow = "float_pow"

	OrionInput       = "orion_input"
	OrionInputPrompt = "orion_input_prompt"

	PrintSmart  = "print_smart"
	PrintInt    = "print_int"
	PrintFloat  = "print_float"
	PrintBool   = "print_bool"
	PrintString = "print_string"
)
