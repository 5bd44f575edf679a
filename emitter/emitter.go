// Package emitter walks a parsed program's functions and writes
// x86-64 assembly (Intel syntax, System V calling convention) to a
// text sink. It is a stack machine: every expression node leaves
// exactly one 8-byte value on the runtime stack.
package emitter

import (
	"bufio"
	"fmt"
	"io"

	"github.com/kbocek/subc/ast"
)

// argRegs holds the System V integer argument registers, in order.
var argRegs = []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

// InternalError marks a programming-error condition: an AST shape the
// parser should never have produced. It is distinct from LexError and
// ParseError, which report malformed user input.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal compiler error: %s", e.Msg)
}

// Emitter holds the state shared across one compiled unit: the output
// sink, an optional debug-comment mode, and the monotonic label
// counter that keeps every minted label globally unique within that
// unit.
type Emitter struct {
	w       *bufio.Writer
	debug   bool
	labelID int
}

// New creates an Emitter writing to w.
func New(w io.Writer) *Emitter {
	return &Emitter{w: bufio.NewWriter(w)}
}

// SetDebug toggles whether generated output carries extra comments and
// an int3 debug-break at the start of each function body.
func (e *Emitter) SetDebug(debug bool) {
	e.debug = debug
}

// Emit writes the complete assembly listing for functions to the
// Emitter's sink.
func Emit(w io.Writer, functions []*ast.Function) error {
	return New(w).Emit(functions)
}

// Emit writes the complete assembly listing for functions.
func (e *Emitter) Emit(functions []*ast.Function) error {
	e.line(".intel_syntax noprefix")

	for _, fn := range functions {
		if err := e.function(fn); err != nil {
			return err
		}
	}

	return e.w.Flush()
}

// line writes a flush-left line (a label, or a directive such as
// ".intel_syntax noprefix"/".global").
func (e *Emitter) line(format string, args ...interface{}) {
	fmt.Fprintf(e.w, format+"\n", args...)
}

// ins writes a single tab-indented instruction.
func (e *Emitter) ins(format string, args ...interface{}) {
	fmt.Fprintf(e.w, "\t"+format+"\n", args...)
}

// comment writes a tab-indented comment, only when debug mode is on.
func (e *Emitter) comment(format string, args ...interface{}) {
	if !e.debug {
		return
	}
	fmt.Fprintf(e.w, "\t# "+format+"\n", args...)
}

// nextLabel returns a fresh, process-unique-within-this-Emitter label
// id.
func (e *Emitter) nextLabel() int {
	e.labelID++
	return e.labelID
}

// function emits one function's prologue, body, and epilogue.
func (e *Emitter) function(fn *ast.Function) error {
	if len(fn.Params) > len(argRegs) {
		return &InternalError{Msg: fmt.Sprintf("function %q has more than %d parameters", fn.Name, len(argRegs))}
	}

	e.line(".global %s", fn.Name)
	e.line("%s:", fn.Name)

	e.ins("push rbp")
	e.ins("mov rbp, rsp")
	e.ins("sub rsp, %d", fn.Locals.FrameSize())

	if e.debug {
		e.ins("int3")
	}

	for i, param := range fn.Params {
		e.ins("mov [rbp-%d], %s", param.Offset, argRegs[i])
	}

	for _, stmt := range fn.Body {
		if err := e.node(stmt); err != nil {
			return err
		}
	}

	// Discard the trailing value left by the last statement, then tear
	// down the frame. Any earlier statement's un-popped residual is
	// harmless garbage below rsp: mov rsp, rbp abandons it along with
	// the frame.
	e.ins("pop rax")
	e.epilogue()
	return nil
}

// epilogue restores the caller's frame and returns.
func (e *Emitter) epilogue() {
	e.ins("mov rsp, rbp")
	e.ins("pop rbp")
	e.ins("ret")
}
