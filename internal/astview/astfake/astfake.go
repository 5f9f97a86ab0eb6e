// Package astfake provides lightweight, hand-built implementations of
// the astview interfaces for tests, in place of the duck-typed stand-ins
// spec.md's Design Notes describe ("test suites substitute lightweight
// stand-ins for Statement/Decl"). Every type here is just a struct
// literal implementing the relevant astview interface — no behaviour
// beyond what the interface requires.
package astfake

import "github.com/sunholo/loopkernel/internal/astview"

// Stmt is a fake astview.Statement.
type Stmt struct {
	StmtKind string
	Kids     []astview.Statement
	Refs     []astview.Decl
	Toks     []astview.Token
}

func (s *Stmt) Kind() string                   { return s.StmtKind }
func (s *Stmt) Children() []astview.Statement  { return s.Kids }
func (s *Stmt) References() []astview.Decl     { return s.Refs }
func (s *Stmt) Tokens() []astview.Token        { return s.Toks }

// NewStmt builds a Stmt with the given kind and no children/refs/tokens
// set; use the With* helpers to attach them.
func NewStmt(kind string) *Stmt { return &Stmt{StmtKind: kind} }

// WithChildren appends AST children in source order.
func (s *Stmt) WithChildren(children ...*Stmt) *Stmt {
	for _, c := range children {
		s.Kids = append(s.Kids, c)
	}
	return s
}

// WithRefs appends referenced Decls in first-use order.
func (s *Stmt) WithRefs(refs ...astview.Decl) *Stmt {
	s.Refs = append(s.Refs, refs...)
	return s
}

// WithTokens appends this statement's own lexed tokens.
func (s *Stmt) WithTokens(toks ...astview.Token) *Stmt {
	s.Toks = append(s.Toks, toks...)
	return s
}

// Tok is a convenience constructor for astview.Token.
func Tok(index int, kind, spelling string) astview.Token {
	return astview.Token{Spelling: spelling, Kind: kind, Index: index}
}

// Toks renders a whitespace-split string into sequentially indexed
// identifier/punctuation tokens starting at startIndex, for tests that
// don't care about precise token kinds.
func Toks(startIndex int, spellings ...string) []astview.Token {
	out := make([]astview.Token, len(spellings))
	for i, s := range spellings {
		out[i] = astview.Token{Spelling: s, Kind: "tok", Index: startIndex + i}
	}
	return out
}

// Variable is a fake astview.VariableDecl.
type Variable struct {
	VName    string
	VType    string
	VRecord  *Record
	VTypedef *Typedef
	VInit    *string
}

func (v *Variable) Kind() astview.DeclKind { return astview.DeclVariable }
func (v *Variable) Name() string           { return v.VName }
func (v *Variable) Type() string           { return v.VType }
func (v *Variable) RecordType() astview.RecordDecl {
	if v.VRecord == nil {
		return nil
	}
	return v.VRecord
}
func (v *Variable) ReferencedTypedef() astview.TypedefDecl {
	if v.VTypedef == nil {
		return nil
	}
	return v.VTypedef
}
func (v *Variable) Initializer() (string, bool) {
	if v.VInit == nil {
		return "", false
	}
	return *v.VInit, true
}

// NewVariable builds a scalar/array/function-pointer Variable decl.
func NewVariable(name, typ string) *Variable { return &Variable{VName: name, VType: typ} }

// OfRecord attaches a record type to this variable.
func (v *Variable) OfRecord(r *Record) *Variable { v.VRecord = r; return v }

// OfTypedef attaches a referenced typedef to this variable.
func (v *Variable) OfTypedef(td *Typedef) *Variable { v.VTypedef = td; return v }

// WithInitializer marks this variable as a local (non-linkage) decl that
// must be redefined verbatim in the wrapper body; s is the initializer
// expression alone, e.g. "1337".
func (v *Variable) WithInitializer(s string) *Variable { v.VInit = &s; return v }

// Function is a fake astview.FunctionDecl.
type Function struct {
	FName string
	FType string
}

func (f *Function) Kind() astview.DeclKind { return astview.DeclFunction }
func (f *Function) Name() string           { return f.FName }
func (f *Function) Type() string           { return f.FType }

// NewFunction builds a free function decl; typ is the full prototype,
// e.g. "int foo(int, int)".
func NewFunction(name, typ string) *Function { return &Function{FName: name, FType: typ} }

// Record is a fake astview.RecordDecl.
type Record struct {
	RName     string
	RRecords  []*Record
	REnums    []*Enum
	RTypedefs []*Typedef
	RTokens   []astview.Token
}

func (r *Record) Kind() astview.DeclKind { return astview.DeclRecord }
func (r *Record) Name() string           { return r.RName }
func (r *Record) Type() string           { return "struct " + r.RName }
func (r *Record) ReferencedRecords() []astview.RecordDecl {
	out := make([]astview.RecordDecl, len(r.RRecords))
	for i, x := range r.RRecords {
		out[i] = x
	}
	return out
}
func (r *Record) ReferencedEnums() []astview.EnumDecl {
	out := make([]astview.EnumDecl, len(r.REnums))
	for i, x := range r.REnums {
		out[i] = x
	}
	return out
}
func (r *Record) ReferencedTypedefs() []astview.TypedefDecl {
	out := make([]astview.TypedefDecl, len(r.RTypedefs))
	for i, x := range r.RTypedefs {
		out[i] = x
	}
	return out
}
func (r *Record) Tokens() []astview.Token { return r.RTokens }
func (r *Record) Anonymous() bool         { return containsSubstring(r.RName, "(anonymous)") }

// NewRecord builds a record decl with the given defining tokens (the
// full "struct NAME { ... }" spelling, without the trailing typedef
// wrapper the preamble synthesiser adds).
func NewRecord(name string, tokens ...astview.Token) *Record {
	return &Record{RName: name, RTokens: tokens}
}

// References attaches this record's structural dependency edges.
func (r *Record) References(records []*Record, enums []*Enum, typedefs []*Typedef) *Record {
	r.RRecords = records
	r.REnums = enums
	r.RTypedefs = typedefs
	return r
}

// Enum is a fake astview.EnumDecl.
type Enum struct {
	EName   string
	ETokens []astview.Token
}

func (e *Enum) Kind() astview.DeclKind { return astview.DeclEnum }
func (e *Enum) Name() string           { return e.EName }
func (e *Enum) Type() string           { return "enum " + e.EName }
func (e *Enum) Tokens() []astview.Token { return e.ETokens }

// NewEnum builds an enum decl with its defining tokens.
func NewEnum(name string, tokens ...astview.Token) *Enum {
	return &Enum{EName: name, ETokens: tokens}
}

// Typedef is a fake astview.TypedefDecl.
type Typedef struct {
	TName    string
	TType    string
	TSubtype astview.TypedefSubtype
	TTokens  []astview.Token
}

func (t *Typedef) Kind() astview.DeclKind         { return astview.DeclTypedef }
func (t *Typedef) Name() string                   { return t.TName }
func (t *Typedef) Type() string                   { return t.TType }
func (t *Typedef) Subtype() astview.TypedefSubtype { return t.TSubtype }
func (t *Typedef) Tokens() []astview.Token         { return t.TTokens }

// NewTypedef builds a typedef decl.
func NewTypedef(name, typ string, subtype astview.TypedefSubtype, tokens ...astview.Token) *Typedef {
	return &Typedef{TName: name, TType: typ, TSubtype: subtype, TTokens: tokens}
}

// Func is a fake astview.Function.
type Func struct {
	FName   string
	FParams []astview.Decl
	FEntry  astview.Statement
}

func (f *Func) Name() string             { return f.FName }
func (f *Func) Params() []astview.Decl   { return f.FParams }
func (f *Func) Entry() astview.Statement { return f.FEntry }

// NewFunc builds a fake top-level function with the given entry statement.
func NewFunc(name string, entry astview.Statement, params ...astview.Decl) *Func {
	return &Func{FName: name, FParams: params, FEntry: entry}
}

func containsSubstring(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
