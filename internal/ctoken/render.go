// Package ctoken renders the token stream covered by a Statement subtree
// back into C source text, and computes the statement-kind histogram
// used in kernel metadata. Both operations are pure functions over
// astview — component F of the spec, shared by the free-use analyser,
// the preamble synthesiser, and the kernel assembler.
package ctoken

import (
	"sort"
	"strings"

	"github.com/sunholo/loopkernel/internal/astview"
)

// AllStatements returns stmt and every descendant in its child-edge
// subtree, pre-order.
func AllStatements(stmt astview.Statement) []astview.Statement {
	out := []astview.Statement{stmt}
	for _, c := range stmt.Children() {
		out = append(out, AllStatements(c)...)
	}
	return out
}

// TokensOf returns the multiset union of stmt's own tokens and every
// descendant's tokens (§3 Invariant 2), unsorted.
func TokensOf(stmt astview.Statement) []astview.Token {
	toks := append([]astview.Token(nil), stmt.Tokens()...)
	for _, c := range stmt.Children() {
		toks = append(toks, TokensOf(c)...)
	}
	return toks
}

// Render implements §4.F: a stable sort by global source index, pragma
// tokens filtered out, spellings joined with single spaces.
func Render(toks []astview.Token) string {
	filtered := make([]astview.Token, 0, len(toks))
	for _, t := range toks {
		if !t.IsPragma() {
			filtered = append(filtered, t)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Index < filtered[j].Index })

	spellings := make([]string, len(filtered))
	for i, t := range filtered {
		spellings[i] = t.Spelling
	}
	return strings.Join(spellings, " ")
}

// RenderStmt is a convenience wrapper: Render(TokensOf(stmt)).
func RenderStmt(stmt astview.Statement) string {
	return Render(TokensOf(stmt))
}

// countableSuffixes are the substrings that make a statement kind
// contribute to the histogram (spec.md's "Statement-count metadata").
var countableSuffixes = []string{"Stmt", "Expr", "Operator", "Literal"}

func isCountable(kind string) bool {
	for _, s := range countableSuffixes {
		if strings.Contains(kind, s) {
			return true
		}
	}
	return false
}

// StatementCounts computes the histogram over root's subtree: every
// countable-kind statement increments its own key, and BinaryOperator/
// UnaryOperator additionally contribute a refined
// "<kind>_<tokenKind1>_<tokenKind2>..." key built from their own
// tokens' kinds, so `a + b` and `a * b` count separately.
func StatementCounts(root astview.Statement) map[string]int {
	counts := map[string]int{}
	var walk func(s astview.Statement)
	walk = func(s astview.Statement) {
		kind := s.Kind()
		if isCountable(kind) {
			counts[kind]++

			if kind == "BinaryOperator" || kind == "UnaryOperator" {
				kinds := make([]string, 0, len(s.Tokens()))
				for _, t := range s.Tokens() {
					kinds = append(kinds, t.Kind)
				}
				refined := kind + "_" + strings.Join(kinds, "_")
				counts[refined]++
			}
		}
		for _, c := range s.Children() {
			walk(c)
		}
	}
	walk(root)
	return counts
}

// CountKind returns the total number of nodes in stmt's subtree (stmt
// itself included) whose Kind() equals kindName. This is the "kind-based
// max-depth computation" §4.B step 4 relies on: a tail is strictly
// innermost iff CountKind(tail, "ForStmt") == 1, i.e. the tail's own
// ForStmt is the only one anywhere in its subtree. Grounded on
// original_source's max_depth, which despite its name sums occurrences
// across the whole subtree rather than tracking chain depth.
func CountKind(stmt astview.Statement, kindName string) int {
	count := 0
	if stmt.Kind() == kindName {
		count = 1
	}
	for _, c := range stmt.Children() {
		count += CountKind(c, kindName)
	}
	return count
}
