package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kbocek/subc/ast"
	"github.com/kbocek/subc/lexer"
)

func mustParse(t *testing.T, src string) []*ast.Function {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	assert.NoError(t, err)
	fns, err := Parse(toks)
	assert.NoError(t, err)
	return fns
}

func TestParse_BinaryPrecedence(t *testing.T) {
	fns := mustParse(t, "main() { return 1 + 2 * 3; }")
	assert := assert.New(t)

	assert.Len(fns, 1)
	body := fns[0].Body
	assert.Len(body, 1)

	ret := body[0]
	assert.Equal(ast.RETURN, ret.Kind)

	top := ret.Lhs
	assert.Equal(ast.ADD, top.Kind)
	assert.Equal(ast.NUM, top.Lhs.Kind)
	assert.Equal(int64(1), top.Lhs.Val)
	assert.Equal(ast.MUL, top.Rhs.Kind)
	assert.Equal(int64(2), top.Rhs.Lhs.Val)
	assert.Equal(int64(3), top.Rhs.Rhs.Val)
}

func TestParse_RelationalPrecedenceOverEquality(t *testing.T) {
	fns := mustParse(t, "main() { return 1 < 2 == 3 < 4; }")
	assert := assert.New(t)

	top := fns[0].Body[0].Lhs
	assert.Equal(ast.EQ, top.Kind)
	assert.Equal(ast.LT, top.Lhs.Kind)
	assert.Equal(ast.LT, top.Rhs.Kind)
}

func TestParse_GreaterThanLoweredToSwappedLess(t *testing.T) {
	lt := mustParse(t, "main() { return 1 < 2; }")
	gt := mustParse(t, "main() { return 2 > 1; }")
	assert := assert.New(t)

	ltNode := lt[0].Body[0].Lhs
	gtNode := gt[0].Body[0].Lhs

	assert.Equal(ast.LT, gtNode.Kind)
	assert.Equal(ltNode.Kind, gtNode.Kind)
	assert.Equal(int64(1), gtNode.Lhs.Val)
	assert.Equal(int64(2), gtNode.Rhs.Val)
}

func TestParse_GreaterEqualLoweredToSwappedLessEqual(t *testing.T) {
	fns := mustParse(t, "main() { return 2 >= 1; }")
	node := fns[0].Body[0].Lhs

	assert := assert.New(t)
	assert.Equal(ast.LTE, node.Kind)
	assert.Equal(int64(1), node.Lhs.Val)
	assert.Equal(int64(2), node.Rhs.Val)
}

func TestParse_UnaryMinusLoweredToZeroMinus(t *testing.T) {
	fns := mustParse(t, "main() { return -5; }")
	node := fns[0].Body[0].Lhs

	assert := assert.New(t)
	assert.Equal(ast.SUB, node.Kind)
	assert.Equal(ast.NUM, node.Lhs.Kind)
	assert.Equal(int64(0), node.Lhs.Val)
	assert.Equal(int64(5), node.Rhs.Val)
}

func TestParse_UnaryPlusIsBare(t *testing.T) {
	fns := mustParse(t, "main() { return +5; }")
	node := fns[0].Body[0].Lhs

	assert := assert.New(t)
	assert.Equal(ast.NUM, node.Kind)
	assert.Equal(int64(5), node.Val)
}

func TestParse_AssignmentIsRightAssociative(t *testing.T) {
	fns := mustParse(t, "main() { a = b = 1; }")
	assign := fns[0].Body[0]

	assert := assert.New(t)
	assert.Equal(ast.ASSIGN, assign.Kind)
	assert.Equal(ast.LVAR, assign.Lhs.Kind)
	assert.Equal(ast.ASSIGN, assign.Rhs.Kind)
}

func TestParse_LocalVariableOffsetsAreStableAndSequential(t *testing.T) {
	fns := mustParse(t, "main() { a = 1; b = 2; a = a + b; }")
	assert := assert.New(t)

	first := fns[0].Body[0] // a = 1
	second := fns[0].Body[1] // b = 2
	third := fns[0].Body[2]  // a = a + b

	assert.Equal(8, first.Lhs.Offset)
	assert.Equal(16, second.Lhs.Offset)
	assert.Equal(8, third.Lhs.Offset)        // a reused, not reinserted
	assert.Equal(8, third.Rhs.Lhs.Offset)    // a on the rhs
	assert.Equal(16, third.Rhs.Rhs.Offset)   // b on the rhs
}

func TestParse_ParametersOccupyTheFirstOffsets(t *testing.T) {
	fns := mustParse(t, "add(x, y) { return x + y; }")
	assert := assert.New(t)

	assert.Len(fns[0].Params, 2)
	assert.Equal(8, fns[0].Params[0].Offset)
	assert.Equal(16, fns[0].Params[1].Offset)
	assert.Equal(16, fns[0].Locals.FrameSize())
}

func TestParse_BlockCollectsChildrenInOrder(t *testing.T) {
	fns := mustParse(t, "main() { { 1; 2; } }")
	block := fns[0].Body[0]

	assert := assert.New(t)
	assert.Equal(ast.BLOCK, block.Kind)
	assert.Len(block.Children, 2)
	assert.Equal(int64(1), block.Children[0].Val)
	assert.Equal(int64(2), block.Children[1].Val)
}

func TestParse_IfWithoutElse(t *testing.T) {
	fns := mustParse(t, "main() { if (1) 2; }")
	node := fns[0].Body[0]

	assert := assert.New(t)
	assert.Equal(ast.IF, node.Kind)
	assert.NotNil(node.Cond)
	assert.NotNil(node.Then)
	assert.Nil(node.Else)
}

func TestParse_ForWithAllClausesOptional(t *testing.T) {
	fns := mustParse(t, "main() { for (;;) 1; }")
	node := fns[0].Body[0]

	assert := assert.New(t)
	assert.Equal(ast.FOR, node.Kind)
	assert.Nil(node.Init)
	assert.Nil(node.Cond)
	assert.Nil(node.Inc)
	assert.NotNil(node.Then)
}

func TestParse_FunctionCallArguments(t *testing.T) {
	fns := mustParse(t, "main() { return add(1, 2); }")
	call := fns[0].Body[0].Lhs

	assert := assert.New(t)
	assert.Equal(ast.FUNCALL, call.Kind)
	assert.Equal("add", call.FuncName)
	assert.Len(call.Args, 2)
}

func TestParse_MissingSemicolonIsAParseError(t *testing.T) {
	toks, err := lexer.Tokenize("main() { return 1 }")
	assert := assert.New(t)
	assert.NoError(err)

	_, err = Parse(toks)
	var perr *Error
	assert.ErrorAs(err, &perr)
}

func TestParse_TooManyParametersIsAParseError(t *testing.T) {
	toks, err := lexer.Tokenize("f(a, b, c, d, e, g, h) { return 1; }")
	assert := assert.New(t)
	assert.NoError(err)

	_, err = Parse(toks)
	var perr *Error
	assert.ErrorAs(err, &perr)
}
