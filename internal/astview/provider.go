package astview

import "context"

// Language is the source language a Provider should parse as.
type Language int

const (
	LanguageC Language = iota
	LanguageCXX
)

func (l Language) String() string {
	if l == LanguageCXX {
		return "c++"
	}
	return "c"
}

// OptimizationLevel mirrors the compiler -O flag passed through to the
// front end; it affects what the front end's own constant-folding and
// inlining expose to the AST, not anything this package computes.
type OptimizationLevel int

const (
	O0 OptimizationLevel = iota
	O1
	O2
	O3
)

func (o OptimizationLevel) String() string {
	return [...]string{"O0", "O1", "O2", "O3"}[o]
}

// IncludeDirKind tags an include path the way the driver does: user
// paths (-I) are searched before system paths (-isystem).
type IncludeDirKind int

const (
	IncludeUser IncludeDirKind = iota
	IncludeSystem
)

// IncludeDir is one include search path with its kind tag.
type IncludeDir struct {
	Path string
	Kind IncludeDirKind
}

// Options is the configuration surface §6 describes: everything a
// Provider needs to parse one compilation invocation. The core never
// reads environment variables; all configuration flows through here.
type Options struct {
	Language    Language
	OptLevel    OptimizationLevel
	IncludeDirs []IncludeDir
	Flags       []string
	// Filename is used for diagnostics and for any scoped per-parse
	// override the Provider supports (Design Note: "Scoped driver
	// options").
	Filename string
}

// Provider is the external AST builder the core consumes. A real
// implementation wraps a Clang-based front end; the core treats it as an
// opaque collaborator (§1: "out of scope... the core consumes an AST it
// did not build").
type Provider interface {
	Parse(ctx context.Context, source []byte, opts Options) (TranslationUnit, error)
}
