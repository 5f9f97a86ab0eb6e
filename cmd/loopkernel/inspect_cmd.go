package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/sunholo/loopkernel/internal/astview"
	"github.com/sunholo/loopkernel/internal/astview/astjson"
	"github.com/sunholo/loopkernel/internal/ctoken"
	"github.com/sunholo/loopkernel/internal/loopminer"
)

func newInspectCmd() *cobra.Command {
	var astPath string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Interactively browse a decoded AST's functions and mined loops",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(astPath)
			if err != nil {
				return fmt.Errorf("opening AST file: %w", err)
			}
			defer f.Close()

			tu, err := astjson.Decode(f)
			if err != nil {
				return fmt.Errorf("decoding AST: %w", err)
			}

			newInspector(tu).run(os.Stdin, os.Stdout)
			return nil
		},
	}

	cmd.Flags().StringVar(&astPath, "ast", "", "path to a serialized AST JSON file (required)")
	cmd.MarkFlagRequired("ast")
	return cmd
}

// inspector is a liner-backed read-eval-print loop over a decoded
// translation unit, grounded on the teacher's internal/repl shape
// (liner for readline, fatih/color for status text, a ":command"
// dispatch table) — rebuilt fresh since this domain has nothing to
// evaluate, only an AST to walk.
type inspector struct {
	functions []astview.Function
}

func newInspector(tu astview.TranslationUnit) *inspector {
	return &inspector{functions: tu.Functions()}
}

func (in *inspector) run(stdin io.Reader, stdout io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(false)

	historyFile := filepath.Join(os.TempDir(), ".loopkernel_inspect_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	line.SetCompleter(func(prefix string) (c []string) {
		for _, cmd := range []string{":functions", ":loops", ":tokens", ":help", ":quit"} {
			if strings.HasPrefix(cmd, prefix) {
				c = append(c, cmd)
			}
		}
		return
	})

	fmt.Fprintln(stdout, bold("loopkernel inspect"))
	fmt.Fprintln(stdout, "Type :help for commands, :quit to exit")

	for {
		text, err := line.Prompt("loopkernel> ")
		if err != nil {
			break
		}
		line.AppendHistory(text)

		if !in.dispatch(strings.TrimSpace(text), stdout) {
			break
		}
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

func (in *inspector) dispatch(text string, out io.Writer) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return true
	}

	switch fields[0] {
	case ":quit", ":q":
		return false
	case ":help":
		fmt.Fprintln(out, ":functions              list function names")
		fmt.Fprintln(out, ":loops <fn-index>       list mined loops for a function")
		fmt.Fprintln(out, ":tokens <fn-index>      render a function's full token stream")
		fmt.Fprintln(out, ":quit                   exit")
	case ":functions":
		for i, fn := range in.functions {
			fmt.Fprintf(out, "%d: %s\n", i, cyan(fn.Name()))
		}
	case ":loops":
		in.cmdLoops(fields, out)
	case ":tokens":
		in.cmdTokens(fields, out)
	default:
		fmt.Fprintf(out, "%s: unknown command %q (try :help)\n", yellow("warning"), fields[0])
	}
	return true
}

func (in *inspector) resolveFunction(fields []string, out io.Writer) (astview.Function, bool) {
	if len(fields) < 2 {
		fmt.Fprintln(out, "usage: "+fields[0]+" <fn-index>")
		return nil, false
	}
	idx, err := strconv.Atoi(fields[1])
	if err != nil || idx < 0 || idx >= len(in.functions) {
		fmt.Fprintf(out, "%s: invalid function index %q\n", red("error"), fields[1])
		return nil, false
	}
	return in.functions[idx], true
}

func (in *inspector) cmdLoops(fields []string, out io.Writer) {
	fn, ok := in.resolveFunction(fields, out)
	if !ok {
		return
	}
	loops := loopminer.Mine(fn.Entry(), loopminer.Options{})
	if len(loops) == 0 {
		fmt.Fprintln(out, "(no innermost array-touching loops found)")
		return
	}
	type entry struct {
		depth int
		body  string
	}
	var entries []entry
	for stmt, depth := range loops {
		entries = append(entries, entry{depth: depth, body: ctoken.RenderStmt(stmt)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].depth < entries[j].depth })
	for i, e := range entries {
		fmt.Fprintf(out, "loop %d (depth %d): %s\n", i, e.depth, e.body)
	}
}

func (in *inspector) cmdTokens(fields []string, out io.Writer) {
	fn, ok := in.resolveFunction(fields, out)
	if !ok {
		return
	}
	fmt.Fprintln(out, ctoken.RenderStmt(fn.Entry()))
}
