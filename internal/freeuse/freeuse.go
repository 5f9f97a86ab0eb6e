// Package freeuse implements component C of the reconstruction pipeline:
// finding the declarations a loop subtree uses but doesn't define, and
// the transitive closure of record/enum/typedef types those declarations
// drag in.
package freeuse

import (
	"github.com/sunholo/loopkernel/internal/astview"
	"github.com/sunholo/loopkernel/internal/ctoken"
)

const declStmtKind = "DeclStmt"

// localDecls returns the set of Decls introduced by a DeclStmt somewhere
// in stmts — e.g. a for-init counter or a `int bar = 1337;` declared
// inside the loop itself. These are never free, regardless of how many
// times they're referenced.
func localDecls(stmts []astview.Statement) map[astview.Decl]bool {
	local := map[astview.Decl]bool{}
	for _, s := range stmts {
		if s.Kind() == declStmtKind {
			for _, d := range s.References() {
				local[d] = true
			}
		}
	}
	return local
}

// FreeDecls returns every Decl referenced from inside loop's subtree that
// isn't declared inside it, in first-use order, deduplicated by
// declaration identity (§4.C Step 1).
func FreeDecls(loop astview.Statement) []astview.Decl {
	stmts := ctoken.AllStatements(loop)
	local := localDecls(stmts)

	seen := map[astview.Decl]bool{}
	var out []astview.Decl
	for _, s := range stmts {
		for _, d := range s.References() {
			if local[d] || seen[d] {
				continue
			}
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

// recordRoots extracts the distinct record types of every free Variable
// decl, in first-use order (§4.C Step 2's "for each free Decl that is a
// Variable whose type involves a record").
func recordRoots(frees []astview.Decl) []astview.RecordDecl {
	seen := map[astview.RecordDecl]bool{}
	var out []astview.RecordDecl
	for _, d := range frees {
		v, ok := d.(astview.VariableDecl)
		if !ok {
			continue
		}
		r := v.RecordType()
		if r == nil || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

// three-colour marks, mirroring original_source's get_referenced_records_rpo.
const (
	white = iota
	gray
	black
)

// bfsReachable collects every record reachable from root via
// ReferencedRecords (root included), in BFS order, deduplicated by
// identity. This seeds the "revisit any still-WHITE node" pass below.
func bfsReachable(root astview.RecordDecl) []astview.RecordDecl {
	seen := map[astview.RecordDecl]bool{root: true}
	queue := []astview.RecordDecl{root}
	out := []astview.RecordDecl{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range cur.ReferencedRecords() {
			if seen[child] {
				continue
			}
			seen[child] = true
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}

// dfsPostOrder runs a three-colour DFS from node, appending to *out in
// post-order. A GRAY neighbour means a cycle back to an ancestor; it's
// skipped rather than re-entered, which is what makes cyclic record
// graphs terminate.
func dfsPostOrder(node astview.RecordDecl, color map[astview.RecordDecl]int, out *[]astview.RecordDecl) {
	if color[node] == black {
		return
	}
	color[node] = gray
	for _, child := range node.ReferencedRecords() {
		if color[child] == black || color[child] == gray {
			continue
		}
		dfsPostOrder(child, color, out)
	}
	color[node] = black
	*out = append(*out, node)
}

// RecordClosure computes the transitive closure of record types reachable
// from frees' record-typed free variables, in the post-order three-colour
// DFS order described by §4.C Step 2, merged and deduplicated across
// every root.
func RecordClosure(frees []astview.Decl) []astview.RecordDecl {
	color := map[astview.RecordDecl]int{}
	var out []astview.RecordDecl
	for _, root := range recordRoots(frees) {
		reachable := bfsReachable(root)
		dfsPostOrder(root, color, &out)
		for _, r := range reachable {
			if color[r] != black {
				dfsPostOrder(r, color, &out)
			}
		}
	}
	return out
}

// DerivedSets holds the §4.C Step 3 byproducts of a record closure.
type DerivedSets struct {
	// Enums transitively referenced by any record in the closure.
	Enums []astview.EnumDecl
	// BuiltinTypedefs are closure-reached typedefs tagged TypedefBuiltin.
	BuiltinTypedefs []astview.TypedefDecl
	// OtherTypedefs are closure-reached typedefs of any other subtype.
	OtherTypedefs []astview.TypedefDecl
	// VariableTypedefs are typedefs a free variable's declared type
	// aliases directly (via VariableDecl.ReferencedTypedef), independent
	// of the record closure.
	VariableTypedefs []astview.TypedefDecl
}

// Derive extracts DerivedSets from a free-decl list and its record
// closure, each sub-list deduplicated by identity and in first-use order.
func Derive(frees []astview.Decl, records []astview.RecordDecl) DerivedSets {
	var d DerivedSets

	seenEnum := map[astview.EnumDecl]bool{}
	seenBuiltin := map[astview.TypedefDecl]bool{}
	seenOther := map[astview.TypedefDecl]bool{}
	for _, r := range records {
		for _, e := range r.ReferencedEnums() {
			if !seenEnum[e] {
				seenEnum[e] = true
				d.Enums = append(d.Enums, e)
			}
		}
		for _, td := range r.ReferencedTypedefs() {
			if td.Subtype() == astview.TypedefBuiltin {
				if !seenBuiltin[td] {
					seenBuiltin[td] = true
					d.BuiltinTypedefs = append(d.BuiltinTypedefs, td)
				}
			} else if !seenOther[td] {
				seenOther[td] = true
				d.OtherTypedefs = append(d.OtherTypedefs, td)
			}
		}
	}

	seenVarTypedef := map[astview.TypedefDecl]bool{}
	for _, decl := range frees {
		v, ok := decl.(astview.VariableDecl)
		if !ok {
			continue
		}
		td := v.ReferencedTypedef()
		if td == nil || seenVarTypedef[td] {
			continue
		}
		seenVarTypedef[td] = true
		d.VariableTypedefs = append(d.VariableTypedefs, td)
	}

	return d
}
