// Package diagnostics implements Orion's error taxonomy (spec.md §7):
// diagnostics are collected across a phase rather than aborting on the
// first failure, deduplicated by (location, text), and rendered as
// "Error: <phase> at line N: <text> [<Kind>]".
package diagnostics

import (
	"fmt"
	"sort"

	"github.com/Rohithoctacter/orion/internal/token"
)

// Phase names a compilation stage a diagnostic was raised in.
type Phase string

const (
	PhaseLex     Phase = "lex"
	PhaseParse   Phase = "parse"
	PhaseCheck   Phase = "check"
	PhaseCodegen Phase = "codegen"
	PhaseIO      Phase = "io"
)

// Kind names the specific diagnostic taxonomy entry, per spec.md §7's table.
type Kind string

const (
	LexError            Kind = "LexError"
	ParseError          Kind = "ParseError"
	ScopeError          Kind = "ScopeError"
	TypeError           Kind = "TypeError"
	OperatorError       Kind = "OperatorError"
	ArityMismatch       Kind = "ArityMismatch"
	ReturnOutsideFunc   Kind = "ReturnOutsideFunction"
	BreakOutsideLoop    Kind = "BreakOutsideLoop"
	UnknownFunction     Kind = "UnknownFunction"
	CodegenAssertion    Kind = "CodegenAssertion"
	IOErrorKind         Kind = "IOError"
)

// Diagnostic is a single collected error. Severity is always "error" —
// spec.md defines no warning tier.
type Diagnostic struct {
	Phase Phase
	Kind  Kind
	Pos   token.Position
	Msg   string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("Error: %s at line %d: %s [%s]", d.Phase, d.Pos.Line, d.Msg, d.Kind)
}

// key identifies a diagnostic for deduplication purposes: location + text,
// per spec.md §7 ("Diagnostics are deduplicated by (location, text)").
type key struct {
	line, col int
	msg       string
}

// Bag collects diagnostics across a single phase or an entire compile,
// deduplicating as they arrive. It is not safe for concurrent use — the
// compiler is single-threaded (spec.md §5).
type Bag struct {
	items []Diagnostic
	seen  map[key]bool
}

// NewBag returns an empty diagnostic bag.
func NewBag() *Bag {
	return &Bag{seen: make(map[key]bool)}
}

// Add appends d to the bag unless an identical (location, text) diagnostic
// was already recorded.
func (b *Bag) Add(d Diagnostic) {
	k := key{line: d.Pos.Line, col: d.Pos.Column, msg: d.Msg}
	if b.seen[k] {
		return
	}
	b.seen[k] = true
	b.items = append(b.items, d)
}

// Addf is a convenience wrapper that formats Msg with fmt.Sprintf.
func (b *Bag) Addf(phase Phase, kind Kind, pos token.Position, format string, args ...any) {
	b.Add(Diagnostic{Phase: phase, Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any diagnostic was collected.
func (b *Bag) HasErrors() bool { return len(b.items) > 0 }

// Len reports the number of collected diagnostics.
func (b *Bag) Len() int { return len(b.items) }

// All returns the collected diagnostics in a stable order: by line, then
// column, then insertion order.
func (b *Bag) All() []Diagnostic {
	out := make([]Diagnostic, len(b.items))
	copy(out, b.items)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Pos.Line != out[j].Pos.Line {
			return out[i].Pos.Line < out[j].Pos.Line
		}
		return out[i].Pos.Column < out[j].Pos.Column
	})
	return out
}

// Merge appends every diagnostic from other into b, respecting
// deduplication.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	for _, d := range other.items {
		b.Add(d)
	}
}
