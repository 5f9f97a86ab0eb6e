// Package reconstruct wires components B through E into the end-to-end
// pipeline: mine loops, compute their free-use closure, synthesise a
// preamble, and assemble+verify a kernel for each one.
package reconstruct

import (
	"context"
	"math"
	"sort"

	"github.com/sunholo/loopkernel/internal/astview"
	"github.com/sunholo/loopkernel/internal/ctoken"
	"github.com/sunholo/loopkernel/internal/freeuse"
	"github.com/sunholo/loopkernel/internal/kernel"
	"github.com/sunholo/loopkernel/internal/loopminer"
	"github.com/sunholo/loopkernel/internal/preamble"
)

// Options configures a full reconstruction run.
type Options struct {
	LoopMiner loopminer.Options
	Kernel    kernel.Options
}

// minTokenIndex finds the lowest source-order token index anywhere in
// stmt's subtree, used to restore source order across a map's loop
// set (§5 "within a single function, loops are emitted in source
// order").
func minTokenIndex(stmt astview.Statement) int {
	min := math.MaxInt
	for _, t := range ctoken.TokensOf(stmt) {
		if t.Index < min {
			min = t.Index
		}
	}
	return min
}

// FromFunction runs the full pipeline over one function, returning its
// kernels in source order.
func FromFunction(ctx context.Context, fn astview.Function, opts Options) ([]kernel.Record, error) {
	loops := loopminer.Mine(fn.Entry(), opts.LoopMiner)

	type found struct {
		stmt  astview.Statement
		depth int
		pos   int
	}
	ordered := make([]found, 0, len(loops))
	for stmt, depth := range loops {
		ordered = append(ordered, found{stmt: stmt, depth: depth, pos: minTokenIndex(stmt)})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].pos < ordered[j].pos })

	records := make([]kernel.Record, 0, len(ordered))
	for _, f := range ordered {
		frees := freeuse.FreeDecls(f.stmt)
		closure := freeuse.RecordClosure(frees)
		derived := freeuse.Derive(frees, closure)
		preambleText, params := preamble.Synthesize(frees, closure, derived)

		rec, err := kernel.Assemble(ctx, f.stmt, f.depth, frees, preambleText, params, opts.Kernel)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// FromUnit runs the pipeline over every function in tu, concatenating
// results in the order VisitFunctions dispatches them.
func FromUnit(ctx context.Context, tu astview.TranslationUnit, opts Options) ([]kernel.Record, error) {
	var all []kernel.Record
	var firstErr error
	tu.VisitFunctions(func(fn astview.Function) {
		if firstErr != nil {
			return
		}
		recs, err := FromFunction(ctx, fn, opts)
		if err != nil {
			firstErr = err
			return
		}
		all = append(all, recs...)
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return all, nil
}
