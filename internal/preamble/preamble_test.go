package preamble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/loopkernel/internal/astview"
	"github.com/sunholo/loopkernel/internal/astview/astfake"
	"github.com/sunholo/loopkernel/internal/freeuse"
	"github.com/sunholo/loopkernel/testutil"
)

func TestSynthesizeIncludesFixedHeaders(t *testing.T) {
	text, _ := Synthesize(nil, nil, freeuse.DerivedSets{})
	assert.Contains(t, text, "#include <stdint.h>")
	assert.Contains(t, text, "#include <stdio.h>")
}

func TestSynthesizeScalarAndArrayParams(t *testing.T) {
	x := astfake.NewVariable("x", "int")
	y := astfake.NewVariable("y", "int [10]")
	_, params := Synthesize([]astview.Decl{x, y}, nil, freeuse.DerivedSets{})
	require.Len(t, params, 2)
	assert.Equal(t, "int x", params[0])
	assert.Equal(t, "int  y[10]", params[1])
}

func TestSynthesizeFunctionPointerParam(t *testing.T) {
	fp := astfake.NewVariable("cb", "int (*)(int)")
	_, params := Synthesize([]astview.Decl{fp}, nil, freeuse.DerivedSets{})
	require.Len(t, params, 1)
	assert.Equal(t, "int (*cb)(int)", params[0])
}

func TestSynthesizeFreeFunctionBecomesPreambleExtern(t *testing.T) {
	fn := astfake.NewFunction("helper", "int (int, int)")
	text, params := Synthesize([]astview.Decl{fn}, nil, freeuse.DerivedSets{})
	assert.Contains(t, text, "int  helper (int, int);")
	assert.Empty(t, params)
}

func TestSynthesizeSkipsAllUppercaseEnumShadow(t *testing.T) {
	e := astfake.NewEnum("Color", astfake.Toks(0, "enum", "Color", "{", "RED", "}")...)
	red := astfake.NewVariable("RED", "int")
	_, params := Synthesize([]astview.Decl{red}, nil, freeuse.DerivedSets{Enums: []astview.EnumDecl{e}})
	assert.Empty(t, params)
}

func TestSynthesizeSkipsInitializerBearingLocals(t *testing.T) {
	bar := astfake.NewVariable("bar", "int").WithInitializer("1337")
	_, params := Synthesize([]astview.Decl{bar}, nil, freeuse.DerivedSets{})
	assert.Empty(t, params)
}

func TestSynthesizeRecordForwardDeclBeforeDefinition(t *testing.T) {
	rec := astfake.NewRecord("point", astfake.Toks(0, "struct", "point", "{", "int", "x", ";", "}")...)
	text, _ := Synthesize(nil, []astview.RecordDecl{rec}, freeuse.DerivedSets{})
	fwdIdx := indexOf(text, "typedef struct point point;")
	defIdx := indexOf(text, "typedef struct point { int x ; } point;")
	require.GreaterOrEqual(t, fwdIdx, 0)
	require.GreaterOrEqual(t, defIdx, 0)
	assert.Less(t, fwdIdx, defIdx)
}

func TestSynthesizeSkipsAnonymousRecords(t *testing.T) {
	rec := astfake.NewRecord("(anonymous)", astfake.Toks(0, "struct", "{", "}")...)
	text, _ := Synthesize(nil, []astview.RecordDecl{rec}, freeuse.DerivedSets{})
	assert.NotContains(t, text, "(anonymous)")
}

// TestSynthesizeGoldenPreambleLayout exercises every non-empty §4.D
// section in one pass — builtin typedef, enum, mutually-recursive record
// forward decls/definitions, free-function extern — and golden-diffs the
// full assembled text, catching section-order regressions a targeted
// substring check would miss.
func TestSynthesizeGoldenPreambleLayout(t *testing.T) {
	u32 := astfake.NewTypedef("u32", "unsigned int", astview.TypedefBuiltin,
		astfake.Toks(0, "typedef", "unsigned", "int", "u32")...)
	color := astfake.NewEnum("Color", astfake.Toks(0, "enum", "Color", "{", "RED", ",", "GREEN", "}")...)
	recA := astfake.NewRecord("A", astfake.Toks(0, "struct", "A", "{", "struct", "B", "*", "b", ";", "}")...)
	recB := astfake.NewRecord("B", astfake.Toks(0, "struct", "B", "{", "struct", "A", "*", "a", ";", "}")...)
	helper := astfake.NewFunction("helper", "int (int, int)")
	x := astfake.NewVariable("x", "int")
	y := astfake.NewVariable("y", "int [10]")

	derived := freeuse.DerivedSets{
		Enums:           []astview.EnumDecl{color},
		BuiltinTypedefs: []astview.TypedefDecl{u32},
	}

	text, params := Synthesize(
		[]astview.Decl{helper, x, y},
		[]astview.RecordDecl{recA, recB},
		derived,
	)

	require.Equal(t, []string{"int x", "int  y[10]"}, params)
	testutil.CompareGolden(t, "preamble", "mutual_records_with_externs", text)
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
