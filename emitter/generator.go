// generator.go holds the per-node-kind code generation: one function
// per ast.Kind, each leaving its node's result exactly as the stack
// machine discipline in the package doc promises.

package emitter

import (
	"fmt"

	"github.com/kbocek/subc/ast"
)

// node emits node, dispatching on its Kind. Every branch that
// produces a value leaves exactly one 8-byte value on the stack, per
// the kind-specific rules below.
func (e *Emitter) node(n *ast.Node) error {
	if n == nil {
		return &InternalError{Msg: "nil AST node reached the emitter"}
	}

	switch n.Kind {
	case ast.NUM:
		e.genNum(n)
	case ast.LVAR:
		e.genLvar(n)
	case ast.ASSIGN:
		return e.genAssign(n)
	case ast.ADD, ast.SUB, ast.MUL, ast.DIV, ast.EQ, ast.NE, ast.LT, ast.LTE:
		return e.genBinary(n)
	case ast.RETURN:
		return e.genReturn(n)
	case ast.IF:
		return e.genIf(n)
	case ast.WHILE:
		return e.genWhile(n)
	case ast.FOR:
		return e.genFor(n)
	case ast.BLOCK:
		return e.genBlock(n)
	case ast.FUNCALL:
		return e.genFuncall(n)
	default:
		return &InternalError{Msg: fmt.Sprintf("unrecognized node kind %d", n.Kind)}
	}
	return nil
}

// genNum pushes a literal.
func (e *Emitter) genNum(n *ast.Node) {
	e.comment("[NUM]")
	e.ins("push %d", n.Val)
}

// genLvalAddr pushes the address of a local variable: rbp - offset.
func (e *Emitter) genLvalAddr(n *ast.Node) error {
	if n.Kind != ast.LVAR {
		return &InternalError{Msg: "assignment target is not an LVAR"}
	}
	e.ins("mov rax, rbp")
	e.ins("sub rax, %d", n.Offset)
	e.ins("push rax")
	return nil
}

// genLvar pushes a local variable's value.
func (e *Emitter) genLvar(n *ast.Node) {
	e.comment("[LVAR]")
	e.ins("mov rax, rbp")
	e.ins("sub rax, %d", n.Offset)
	e.ins("push rax")
	e.ins("pop rax")
	e.ins("mov rax, [rax]")
	e.ins("push rax")
}

// genAssign evaluates the address of lhs and the value of rhs, stores
// rhs into lhs, and leaves the assigned value on the stack.
func (e *Emitter) genAssign(n *ast.Node) error {
	e.comment("[ASSIGN]")
	if err := e.genLvalAddr(n.Lhs); err != nil {
		return err
	}
	if err := e.node(n.Rhs); err != nil {
		return err
	}
	e.ins("pop rdi")
	e.ins("pop rax")
	e.ins("mov [rax], rdi")
	e.ins("push rdi")
	return nil
}

// genBinary evaluates lhs then rhs, applies the operator, and pushes
// the result.
func (e *Emitter) genBinary(n *ast.Node) error {
	if err := e.node(n.Lhs); err != nil {
		return err
	}
	if err := e.node(n.Rhs); err != nil {
		return err
	}

	e.ins("pop rdi")
	e.ins("pop rax")

	switch n.Kind {
	case ast.ADD:
		e.ins("add rax, rdi")
	case ast.SUB:
		e.ins("sub rax, rdi")
	case ast.MUL:
		e.ins("imul rax, rdi")
	case ast.DIV:
		e.ins("cqo")
		e.ins("idiv rdi")
	case ast.EQ:
		e.ins("cmp rax, rdi")
		e.ins("sete al")
		e.ins("movzb rax, al")
	case ast.NE:
		e.ins("cmp rax, rdi")
		e.ins("setne al")
		e.ins("movzb rax, al")
	case ast.LT:
		e.ins("cmp rax, rdi")
		e.ins("setl al")
		e.ins("movzb rax, al")
	case ast.LTE:
		e.ins("cmp rax, rdi")
		e.ins("setle al")
		e.ins("movzb rax, al")
	default:
		return &InternalError{Msg: fmt.Sprintf("genBinary called with non-binary kind %d", n.Kind)}
	}

	e.ins("push rax")
	return nil
}

// genReturn evaluates its operand, pops it into rax, and emits the
// function epilogue directly. Control never falls through past this
// node.
func (e *Emitter) genReturn(n *ast.Node) error {
	e.comment("[RETURN]")
	if err := e.node(n.Lhs); err != nil {
		return err
	}
	e.ins("pop rax")
	e.epilogue()
	return nil
}

// genBlock emits each child in order, discarding each child's residual
// value as it goes, so a BLOCK nets to zero on the stack.
func (e *Emitter) genBlock(n *ast.Node) error {
	for _, child := range n.Children {
		if err := e.node(child); err != nil {
			return err
		}
		e.ins("pop rax")
	}
	return nil
}

// genIf emits the condition, a conditional jump around (or to) the
// else branch, and the two branches, under a single fresh label id.
func (e *Emitter) genIf(n *ast.Node) error {
	id := e.nextLabel()

	if err := e.node(n.Cond); err != nil {
		return err
	}
	e.ins("pop rax")
	e.ins("cmp rax, 0")

	if n.Else != nil {
		e.ins("je .Lelse%d", id)
		if err := e.node(n.Then); err != nil {
			return err
		}
		e.ins("jmp .Lend%d", id)
		e.line(".Lelse%d:", id)
		if err := e.node(n.Else); err != nil {
			return err
		}
	} else {
		e.ins("je .Lend%d", id)
		if err := e.node(n.Then); err != nil {
			return err
		}
	}
	e.line(".Lend%d:", id)
	return nil
}

// genWhile emits the classic test-at-top loop under a fresh label id.
func (e *Emitter) genWhile(n *ast.Node) error {
	id := e.nextLabel()

	e.line(".Lbegin%d:", id)
	if err := e.node(n.Cond); err != nil {
		return err
	}
	e.ins("pop rax")
	e.ins("cmp rax, 0")
	e.ins("je .Lend%d", id)
	if err := e.node(n.Then); err != nil {
		return err
	}
	e.ins("jmp .Lbegin%d", id)
	e.line(".Lend%d:", id)
	return nil
}

// genFor emits the C-style for-loop, skipping whichever of
// init/cond/inc the parser left nil.
func (e *Emitter) genFor(n *ast.Node) error {
	id := e.nextLabel()

	if n.Init != nil {
		if err := e.node(n.Init); err != nil {
			return err
		}
	}

	e.line(".Lbegin%d:", id)
	if n.Cond != nil {
		if err := e.node(n.Cond); err != nil {
			return err
		}
		e.ins("pop rax")
		e.ins("cmp rax, 0")
		e.ins("je .Lend%d", id)
	}

	if err := e.node(n.Then); err != nil {
		return err
	}

	if n.Inc != nil {
		if err := e.node(n.Inc); err != nil {
			return err
		}
	}

	e.ins("jmp .Lbegin%d", id)
	e.line(".Lend%d:", id)
	return nil
}

// genFuncall evaluates its arguments left to right, loads them into
// the System V integer argument registers, aligns the stack to 16
// bytes for the call (the classic chibicc-style dance: a call-site
// label pair chosen by whether rsp's low four bits are zero), and
// pushes the return value.
func (e *Emitter) genFuncall(n *ast.Node) error {
	if len(n.Args) > len(argRegs) {
		return &InternalError{Msg: fmt.Sprintf("call to %q has more than %d arguments", n.FuncName, len(argRegs))}
	}

	for _, arg := range n.Args {
		if err := e.node(arg); err != nil {
			return err
		}
	}
	for i := len(n.Args) - 1; i >= 0; i-- {
		e.ins("pop %s", argRegs[i])
	}

	id := e.nextLabel()
	e.ins("mov rax, rsp")
	e.ins("and rax, 15")
	e.ins("jnz .L.call.%d", id)
	e.ins("mov rax, 0")
	e.ins("call %s", n.FuncName)
	e.ins("jmp .L.end.%d", id)
	e.line(".L.call.%d:", id)
	e.ins("sub rsp, 8")
	e.ins("mov rax, 0")
	e.ins("call %s", n.FuncName)
	e.ins("add rsp, 8")
	e.line(".L.end.%d:", id)
	e.ins("push rax")
	return nil
}
