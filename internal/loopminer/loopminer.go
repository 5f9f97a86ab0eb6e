// Package loopminer implements component B of the reconstruction
// pipeline: finding innermost, array-touching for-loops in a function
// body and the depth of the nest they sit in.
package loopminer

import (
	"github.com/sunholo/loopkernel/internal/astview"
	"github.com/sunholo/loopkernel/internal/ctoken"
)

const forStmtKind = "ForStmt"
const arraySubscriptKind = "ArraySubscriptExpr"

// DefaultDepthMin is the default minimum chain length, meaning "at least
// one for-statement" (spec.md's Open Question resolution — see
// DESIGN.md).
const DefaultDepthMin = 1

// Options configures Mine.
type Options struct {
	// DepthMin filters out loop-nest chains shorter than this many
	// ForStmts. Chains are kept when len(chain) >= DepthMin.
	DepthMin int
}

// chain collection mirrors original_source's collect_loop_sequences: a
// depth-first walk that extends the current chain whenever it descends
// into a ForStmt, recording every root-to-node chain that ends in one.
func collectChains(stmt astview.Statement, current []astview.Statement) [][]astview.Statement {
	next := current
	var out [][]astview.Statement
	if stmt.Kind() == forStmtKind {
		next = append(append([]astview.Statement{}, current...), stmt)
		out = append(out, next)
	}
	for _, c := range stmt.Children() {
		out = append(out, collectChains(c, next)...)
	}
	return out
}

func hasArraySubscript(stmt astview.Statement) bool {
	if stmt.Kind() == arraySubscriptKind {
		return true
	}
	for _, c := range stmt.Children() {
		if hasArraySubscript(c) {
			return true
		}
	}
	return false
}

// Mine walks entry's subtree and returns every innermost ForStmt that
// touches an array, mapped to the depth of the longest nest chain
// ending at it (§4.B).
func Mine(entry astview.Statement, opts Options) map[astview.Statement]int {
	depthMin := opts.DepthMin
	if depthMin <= 0 {
		depthMin = DefaultDepthMin
	}

	chains := collectChains(entry, nil)

	var filtered [][]astview.Statement
	for _, chain := range chains {
		if len(chain) >= depthMin {
			filtered = append(filtered, chain)
		}
	}

	var withSubscripts [][]astview.Statement
	for _, chain := range filtered {
		tail := chain[len(chain)-1]
		if hasArraySubscript(tail) {
			withSubscripts = append(withSubscripts, chain)
		}
	}

	// Keep the maximum chain length observed per distinct tail.
	depthByTail := map[astview.Statement]int{}
	for _, chain := range withSubscripts {
		tail := chain[len(chain)-1]
		if d := len(chain); d > depthByTail[tail] {
			depthByTail[tail] = d
		}
	}

	// Strictly-innermost filter: the tail's own subtree must contain
	// exactly one ForStmt (itself).
	result := map[astview.Statement]int{}
	for tail, depth := range depthByTail {
		if ctoken.CountKind(tail, forStmtKind) == 1 {
			result[tail] = depth
		}
	}
	return result
}
