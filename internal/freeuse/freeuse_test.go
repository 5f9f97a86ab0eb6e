package freeuse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/loopkernel/internal/astview"
	"github.com/sunholo/loopkernel/internal/astview/astfake"
)

func TestFreeDeclsExcludesLocallyDeclaredCounter(t *testing.T) {
	i := astfake.NewVariable("i", "int")
	y := astfake.NewVariable("y", "int *")

	init := astfake.NewStmt("DeclStmt").WithRefs(i)
	body := astfake.NewStmt("ArraySubscriptExpr").WithRefs(y, i)
	loop := astfake.NewStmt("ForStmt").WithChildren(init, body)

	free := FreeDecls(loop)
	require.Len(t, free, 1)
	assert.Same(t, y, free[0])
}

func TestFreeDeclsPreservesFirstUseOrderAndDedupes(t *testing.T) {
	x := astfake.NewVariable("x", "int")
	y := astfake.NewVariable("y", "int")

	s1 := astfake.NewStmt("BinaryOperator").WithRefs(y, x)
	s2 := astfake.NewStmt("BinaryOperator").WithRefs(x, y)
	loop := astfake.NewStmt("ForStmt").WithChildren(s1, s2)

	free := FreeDecls(loop)
	require.Len(t, free, 2)
	assert.Same(t, y, free[0])
	assert.Same(t, x, free[1])
}

func TestFreeDeclsIncludesWrapperScopeInitializer(t *testing.T) {
	bar := astfake.NewVariable("bar", "int").WithInitializer("1337")
	use := astfake.NewStmt("DeclRefExpr").WithRefs(bar)
	loop := astfake.NewStmt("ForStmt").WithChildren(use)

	free := FreeDecls(loop)
	require.Len(t, free, 1)
	init, ok := free[0].(astview.VariableDecl).Initializer()
	require.True(t, ok)
	assert.Equal(t, "1337", init)
}

func TestRecordClosureHandlesCycle(t *testing.T) {
	// struct node { struct node *next; }; a self-referential record.
	node := astfake.NewRecord("node")
	node.References([]*astfake.Record{node}, nil, nil)

	v := astfake.NewVariable("head", "struct node *").OfRecord(node)
	free := []astview.Decl{v}

	closure := RecordClosure(free)
	require.Len(t, closure, 1)
	assert.Same(t, node, closure[0])
}

func TestRecordClosurePostOrderAcrossMultipleRoots(t *testing.T) {
	leaf := astfake.NewRecord("leaf")
	mid := astfake.NewRecord("mid")
	mid.References([]*astfake.Record{leaf}, nil, nil)

	other := astfake.NewRecord("other")

	v1 := astfake.NewVariable("m", "struct mid").OfRecord(mid)
	v2 := astfake.NewVariable("o", "struct other").OfRecord(other)
	free := []astview.Decl{v1, v2}

	closure := RecordClosure(free)
	require.Len(t, closure, 3)
	// mid's subtree (leaf, then mid) is fully emitted before other's root
	// is visited, since recordRoots walks free decls in order.
	assert.Same(t, leaf, closure[0])
	assert.Same(t, mid, closure[1])
	assert.Same(t, other, closure[2])
}

func TestRecordClosureDedupesSharedRecordAcrossRoots(t *testing.T) {
	shared := astfake.NewRecord("shared")
	a := astfake.NewRecord("a")
	a.References([]*astfake.Record{shared}, nil, nil)
	b := astfake.NewRecord("b")
	b.References([]*astfake.Record{shared}, nil, nil)

	v1 := astfake.NewVariable("va", "struct a").OfRecord(a)
	v2 := astfake.NewVariable("vb", "struct b").OfRecord(b)
	free := []astview.Decl{v1, v2}

	closure := RecordClosure(free)
	require.Len(t, closure, 3)
	assert.Same(t, shared, closure[0])
	assert.Same(t, a, closure[1])
	assert.Same(t, b, closure[2])
}

func TestDeriveCollectsEnumsAndPartitionsTypedefsBySubtype(t *testing.T) {
	e := astfake.NewEnum("Color")
	builtinTd := astfake.NewTypedef("uint32_t", "unsigned int", astview.TypedefBuiltin)
	otherTd := astfake.NewTypedef("point_t", "struct point", astview.TypedefOther)
	rec := astfake.NewRecord("point")
	rec.References(nil, []*astfake.Enum{e}, []*astfake.Typedef{builtinTd, otherTd})

	varTd := astfake.NewTypedef("size_t", "unsigned long", astview.TypedefBuiltin)
	v := astfake.NewVariable("n", "size_t").OfTypedef(varTd)

	d := Derive([]astview.Decl{v}, []astview.RecordDecl{rec})
	require.Len(t, d.Enums, 1)
	assert.Same(t, e, d.Enums[0])
	require.Len(t, d.BuiltinTypedefs, 1)
	assert.Same(t, builtinTd, d.BuiltinTypedefs[0])
	require.Len(t, d.OtherTypedefs, 1)
	assert.Same(t, otherTd, d.OtherTypedefs[0])
	require.Len(t, d.VariableTypedefs, 1)
	assert.Same(t, varTd, d.VariableTypedefs[0])
}
