// Package kernel implements component E of the reconstruction pipeline:
// assembling a self-contained wrapper function around a mined loop and
// verifying it compiles.
package kernel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sunholo/loopkernel/internal/astview"
	"github.com/sunholo/loopkernel/internal/ctoken"
	lkerrors "github.com/sunholo/loopkernel/internal/errors"
)

// TimeoutReturnCode is the sentinel meta.ClangReturncode value stored
// when a subprocess exceeds its wall-clock budget (§5 Concurrency model —
// original_source has no such timeout; this is new behaviour spec.md
// adds on top of it).
const TimeoutReturnCode = -1

const (
	defaultCompiler       = "cc"
	defaultIndenter       = "indent"
	defaultCompileTimeout = 5 * time.Second
	defaultIndentTimeout  = 5 * time.Second
)

// Options configures one Assemble call.
type Options struct {
	CompilerPath   string
	IndenterPath   string
	CompileTimeout time.Duration
	IndentTimeout  time.Duration
	Filename       string
	DatasetName    string
}

// Meta is the per-kernel metadata §4.E's record carries alongside the
// rendered source. Field tags match the documented external schema
// (`meta.max_loop_depth`, `meta.clang_returncode`, ...) so serialised
// output is consumable by the surrounding harness without translation.
type Meta struct {
	MaxLoopDepth    int            `json:"max_loop_depth"`
	NumTokens       int            `json:"num_tokens"`
	StmtCounts      map[string]int `json:"stmt_counts"`
	ClangReturncode int            `json:"clang_returncode"`
	Filename        string         `json:"filename"`
	DatasetName     string         `json:"dataset_name"`
}

// Record is one reconstructed kernel.
type Record struct {
	Src  string `json:"src"`
	Body string `json:"body"`
	Meta Meta   `json:"meta"`
}

// localInitializers extracts, in order, the verbatim redefinitions for
// every free variable carrying an Initializer — the Scenario 5 case
// (DESIGN.md) where a local constant must be redeclared inside the
// wrapper body rather than passed in as a wrapper parameter.
func localInitializers(frees []astview.Decl) []string {
	var out []string
	for _, d := range frees {
		v, ok := d.(astview.VariableDecl)
		if !ok {
			continue
		}
		init, has := v.Initializer()
		if !has {
			continue
		}
		out = append(out, v.Type()+" "+v.Name()+" = "+init+";")
	}
	return out
}

// Assemble builds the wrapper function around loop, pretty-prints it,
// and compile-checks the result (§4.E).
//
// frees must be the same free-declaration list preamble.Synthesize was
// given; params must be its returned wrapper-parameter list.
func Assemble(ctx context.Context, loop astview.Statement, depth int, frees []astview.Decl, preambleText string, params []string, opts Options) (Record, error) {
	body := ctoken.RenderStmt(loop)
	numTokens := len(ctoken.TokensOf(loop))
	stmtCounts := ctoken.StatementCounts(loop)

	wrapperBody := body
	if locals := localInitializers(frees); len(locals) > 0 {
		wrapperBody = strings.Join(locals, " ") + " " + body
	}

	wrapper := "int fn(" + strings.Join(params, ", ") + ") { " + wrapperBody + " }"
	unindentedSrc := preambleText + "\n\n" + wrapper

	src := indentText(ctx, unindentedSrc, opts)
	indentedBody := indentText(ctx, wrapperBody, opts)

	code, err := compileCheck(ctx, src, opts)
	if err != nil {
		return Record{}, err
	}

	return Record{
		Src:  src,
		Body: indentedBody,
		Meta: Meta{
			MaxLoopDepth:    depth,
			NumTokens:       numTokens,
			StmtCounts:      stmtCounts,
			ClangReturncode: code,
			Filename:        opts.Filename,
			DatasetName:     opts.DatasetName,
		},
	}, nil
}

// indentText pretty-prints text via an external indenter. The indenter
// is a soft dependency: if it's missing, or it fails, text passes
// through unchanged rather than failing the whole kernel.
func indentText(ctx context.Context, text string, opts Options) string {
	path := opts.IndenterPath
	if path == "" {
		path = defaultIndenter
	}
	bin, err := exec.LookPath(path)
	if err != nil {
		return text
	}

	timeout := opts.IndentTimeout
	if timeout <= 0 {
		timeout = defaultIndentTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(cctx, bin)
	cmd.Stdin = strings.NewReader(text)
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return text
	}
	return out.String()
}

// compileCheck invokes the C compiler in parse-and-compile-only mode,
// discarding object output and returning its exit status. A missing
// compiler binary is infrastructural and propagates as an error; a
// timeout degrades to TimeoutReturnCode and is not an error — §5
// requires the pipeline to keep the kernel rather than dead-lock or
// drop it.
func compileCheck(ctx context.Context, src string, opts Options) (int, error) {
	path := opts.CompilerPath
	if path == "" {
		path = defaultCompiler
	}
	bin, err := exec.LookPath(path)
	if err != nil {
		return 0, fmt.Errorf("%s: compiler binary %q not found: %w", lkerrors.ASM001, path, err)
	}

	timeout := opts.CompileTimeout
	if timeout <= 0 {
		timeout = defaultCompileTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, bin, "-x", "c", "-c", "-", "-o", os.DevNull)
	cmd.Stdin = strings.NewReader(src)
	runErr := cmd.Run()

	if cctx.Err() == context.DeadlineExceeded {
		return TimeoutReturnCode, nil
	}
	if runErr == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, fmt.Errorf("%s: invoking compiler %q: %w", lkerrors.ASM001, path, runErr)
}
