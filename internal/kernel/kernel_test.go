package kernel

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/loopkernel/internal/astview"
	"github.com/sunholo/loopkernel/internal/astview/astfake"
	"github.com/sunholo/loopkernel/testutil"
)

// missingBinaryOptions points both soft- and hard-dependency subprocess
// calls at a binary name that can never resolve via exec.LookPath,
// exercising the pass-through / propagate-error paths without needing a
// real compiler or indenter installed on the test runner.
func missingBinaryOptions() Options {
	return Options{
		CompilerPath: "loopkernel-test-nonexistent-cc",
		IndenterPath: "loopkernel-test-nonexistent-indent",
	}
}

func TestAssembleReturnsErrorWhenCompilerMissing(t *testing.T) {
	loop := astfake.NewStmt("ForStmt").WithTokens(astfake.Toks(0, "for", "(", ")", "{", "}")...)

	_, err := Assemble(context.Background(), loop, 1, nil, "", nil, missingBinaryOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ASM001")
}

func TestIndentTextPassesThroughWhenIndenterMissing(t *testing.T) {
	got := indentText(context.Background(), "int x;", missingBinaryOptions())
	assert.Equal(t, "int x;", got)
}

func TestLocalInitializersBuildsVerbatimRedefinitions(t *testing.T) {
	bar := astfake.NewVariable("bar", "int").WithInitializer("1337")
	other := astfake.NewVariable("y", "int")
	out := localInitializers([]astview.Decl{bar, other})
	require.Len(t, out, 1)
	assert.Equal(t, "int bar = 1337;", out[0])
}

func TestLocalInitializersEmptyWhenNoneCarryOne(t *testing.T) {
	y := astfake.NewVariable("y", "int")
	assert.Empty(t, localInitializers([]astview.Decl{y}))
}

// TestAssembleGoldenKernelAssembly golden-diffs the fully assembled src
// text for a minimal array-touching loop, forcing the indenter off (so
// the comparison is stable across hosts) and skipping when no real C
// compiler is available to compile-check against — mirrors the
// teacher-style exec.LookPath skip guard used for integration tests that
// genuinely need an external toolchain.
func TestAssembleGoldenKernelAssembly(t *testing.T) {
	if _, err := exec.LookPath("cc"); err != nil {
		t.Skip("cc not found in PATH; skipping compile-checked golden test")
	}

	loop := astfake.NewStmt("ForStmt").WithTokens(astfake.Toks(0,
		"for", "(", "int", "i", "=", "0", ";", "i", "<", "10", ";", "i", "++", ")",
		"{", "x", "[", "i", "]", "=", "0", ";", "}",
	)...)

	preambleText := "#include <stdint.h>\n#include <stdio.h>"
	params := []string{"int x[10]"}
	opts := Options{IndenterPath: "loopkernel-test-nonexistent-indent"}

	rec, err := Assemble(context.Background(), loop, 1, nil, preambleText, params, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Meta.ClangReturncode)

	testutil.CompareGolden(t, "kernel", "array_loop_wrapper", rec.Src)
}
