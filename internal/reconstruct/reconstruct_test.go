package reconstruct

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/loopkernel/internal/astview/astfake"
	"github.com/sunholo/loopkernel/internal/kernel"
)

func kernelOptionsWithBadCompiler() kernel.Options {
	return kernel.Options{CompilerPath: "loopkernel-test-nonexistent-cc"}
}

// requireCC skips when no C compiler is on PATH, mirroring the teacher's
// own convention of skipping tests that depend on an external tool
// (internal/planning/integration_test.go's "ailang not in PATH" skip).
func requireCC(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("cc"); err != nil {
		t.Skip("cc not in PATH, skipping compile-check integration test")
	}
}

// buildSingleLoopFunction mirrors spec.md Scenario 1: `for (int i = 0;
// i < 10; i++) y[i] = x;` over a free scalar x and a free array y.
func buildSingleLoopFunction() (*astfake.Func, *astfake.Variable, *astfake.Variable) {
	x := astfake.NewVariable("x", "int")
	y := astfake.NewVariable("y", "int [10]")

	access := astfake.NewStmt("ArraySubscriptExpr").
		WithRefs(y).
		WithTokens(astfake.Toks(14, "y", "[", "i", "]")...)
	assign := astfake.NewStmt("BinaryOperator").
		WithChildren(access).
		WithRefs(x).
		WithTokens(astfake.Toks(18, "=", "x", ";")...)
	body := astfake.NewStmt("CompoundStmt").WithChildren(assign)
	loop := astfake.NewStmt("ForStmt").
		WithChildren(body).
		WithTokens(astfake.Toks(0, "for", "(", "int", "i", "=", "0", ";", "i", "<", "10", ";", "i", "++", ")")...)
	entry := astfake.NewStmt("CompoundStmt").WithChildren(loop)

	fn := astfake.NewFunc("kernel_fn", entry, x, y)
	return fn, x, y
}

func TestFromFunctionProducesOneKernelForSingleLoop(t *testing.T) {
	requireCC(t)

	fn, _, _ := buildSingleLoopFunction()
	records, err := FromFunction(context.Background(), fn, Options{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, 1, rec.Meta.MaxLoopDepth)
	assert.Equal(t, 0, rec.Meta.ClangReturncode)
	assert.Contains(t, rec.Src, "int x")
	assert.Contains(t, rec.Src, "y[10]")
}

func TestFromFunctionOrdersLoopsBySourcePosition(t *testing.T) {
	requireCC(t)

	mk := func(startIndex int, arrayName string) *astfake.Stmt {
		access := astfake.NewStmt("ArraySubscriptExpr").WithTokens(astfake.Toks(startIndex, arrayName, "[", "0", "]")...)
		return astfake.NewStmt("ForStmt").
			WithChildren(access).
			WithTokens(astfake.Toks(startIndex-1, "for")...)
	}
	second := mk(20, "second_arr")
	first := mk(0, "first_arr")
	entry := astfake.NewStmt("CompoundStmt").WithChildren(second, first)
	fn := astfake.NewFunc("two_loops", entry)

	records, err := FromFunction(context.Background(), fn, Options{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Contains(t, records[0].Body, "first_arr")
	assert.Contains(t, records[1].Body, "second_arr")
}

func TestFromFunctionPropagatesMissingCompilerError(t *testing.T) {
	fn, _, _ := buildSingleLoopFunction()
	opts := Options{Kernel: kernelOptionsWithBadCompiler()}
	_, err := FromFunction(context.Background(), fn, opts)
	require.Error(t, err)
}
