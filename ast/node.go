// Package ast contains the tagged tree the parser builds and the
// emitter walks: one Node shape per statement/expression kind, plus
// the Function and local-variable bookkeeping the parser resolves as
// it goes.
//
// Nodes are a single tagged struct rather than an interface hierarchy
// per kind, following the same "one type, a byte tag, and only the
// fields that kind needs" shape the instructions package of this
// repository's ancestor used for its own (flatter) intermediate form.
package ast

// Kind tags which shape a Node holds. Only the fields documented next
// to each Kind below are meaningful for that Node.
type Kind byte

const (
	// NUM holds an integer literal in Val.
	NUM Kind = iota

	// LVAR holds a local variable's frame-relative byte offset in
	// Offset.
	LVAR

	// ASSIGN holds Lhs (always an LVAR) and Rhs.
	ASSIGN

	// ADD, SUB, MUL, DIV, EQ, NE, LT, LTE are binary operators; each
	// holds Lhs and Rhs. LT and LTE are the only forms `>` and `>=`
	// ever produce, with operands swapped by the parser.
	ADD
	SUB
	MUL
	DIV
	EQ
	NE
	LT
	LTE

	// RETURN holds the returned expression in Lhs.
	RETURN

	// IF holds Cond, Then, and optionally Else.
	IF

	// WHILE holds Cond and Then (the loop body).
	WHILE

	// FOR holds optional Init, Cond, Inc, and a required Then (body).
	FOR

	// BLOCK holds an ordered Children list.
	BLOCK

	// FUNCALL holds FuncName and an ordered Args list.
	FUNCALL
)

// Node is the tagged AST value. Exactly one group of fields is valid
// for a given Kind, per the table in the Kind docs above.
type Node struct {
	Kind Kind

	// NUM
	Val int64

	// LVAR
	Offset int

	// ASSIGN, binary ops
	Lhs *Node
	Rhs *Node

	// RETURN reuses Lhs for its operand.

	// IF, WHILE, FOR
	Cond *Node
	Then *Node
	Else *Node
	Init *Node
	Inc  *Node

	// BLOCK
	Children []*Node

	// FUNCALL
	FuncName string
	Args     []*Node
}

// MaxArgs is the largest number of parameters a function definition or
// call site may carry — one slot per System V integer argument
// register.
const MaxArgs = 6

// LVar is a local variable: its source name and its byte offset from
// the function's frame base.
type LVar struct {
	Name   string
	Offset int
}

// Locals is the per-function variable table built up as the parser
// walks that function's body. Offsets are assigned 8, 16, 24, … in
// first-encountered order; parameters are always inserted first.
type Locals struct {
	vars []*LVar
}

// NewLocals returns an empty variable table.
func NewLocals() *Locals {
	return &Locals{}
}

// Lookup returns the existing variable named name, or nil if none has
// been seen yet.
func (l *Locals) Lookup(name string) *LVar {
	for _, v := range l.vars {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// Insert appends a new variable named name, assigning it the next
// unused offset, and returns it. Callers must first confirm via
// Lookup that name is not already present.
func (l *Locals) Insert(name string) *LVar {
	offset := 8
	if n := len(l.vars); n > 0 {
		offset = l.vars[n-1].Offset + 8
	}
	v := &LVar{Name: name, Offset: offset}
	l.vars = append(l.vars, v)
	return v
}

// Len reports how many distinct variables (including parameters) the
// table holds.
func (l *Locals) Len() int {
	return len(l.vars)
}

// FrameSize is the number of bytes of local-variable storage the
// function's prologue must reserve: 8 bytes per distinct variable.
func (l *Locals) FrameSize() int {
	return l.Len() * 8
}

// Function is one top-level function definition: its name, its
// parameter list (a prefix of Locals, in declaration order), its full
// local-variable table (parameters plus every variable discovered in
// the body), and its ordered statement list.
type Function struct {
	Name   string
	Params []*LVar
	Locals *Locals
	Body   []*Node
}
