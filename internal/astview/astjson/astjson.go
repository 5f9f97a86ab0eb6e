// Package astjson adapts a serialized AST — the form an external
// Clang-based extractor emits — into the astview interfaces. It is the
// one concrete AST view adapter this repository ships; the core itself
// never parses C/C++, it only walks whatever TranslationUnit a Provider
// (real or, here, this JSON decoder) hands it.
//
// Decoding is two-pass because record/typedef reference graphs may be
// cyclic (§3 Invariant 1: "record-to-record reference edges may form
// cycles"): every node is allocated first, then every edge is resolved
// by id, so a forward reference to a not-yet-filled-in record is still
// a valid pointer once decoding completes.
package astjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/text/unicode/norm"

	"github.com/sunholo/loopkernel/internal/astview"
	lkerrors "github.com/sunholo/loopkernel/internal/errors"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// normalize strips a UTF-8 BOM and applies NFC normalization, mirroring
// the teacher's lexer-boundary normalization so that lexically
// equivalent source text produces byte-identical rendered kernels
// regardless of encoding (§8 Determinism).
func normalize(s string) string {
	b := []byte(s)
	b = bytes.TrimPrefix(b, bomUTF8)
	if !norm.NFC.IsNormal(b) {
		b = norm.NFC.Bytes(b)
	}
	return string(b)
}

type rawToken struct {
	Spelling string `json:"spelling"`
	Kind     string `json:"kind"`
	Index    int    `json:"index"`
}

type rawDecl struct {
	ID                 string     `json:"id"`
	Kind               string     `json:"kind"` // Variable, Function, Record, Enum, Typedef
	Name               string     `json:"name"`
	Type               string     `json:"type"`
	RecordType         string     `json:"record_type,omitempty"`
	ReferencedTypedef  string     `json:"referenced_typedef,omitempty"`
	ReferencedRecords  []string   `json:"referenced_records,omitempty"`
	ReferencedEnums    []string   `json:"referenced_enums,omitempty"`
	ReferencedTypedefs []string   `json:"referenced_typedefs,omitempty"`
	Subtype            string     `json:"subtype,omitempty"` // Builtin, Paren, "" (other)
	Tokens             []rawToken `json:"tokens,omitempty"`
	Initializer        *string    `json:"initializer,omitempty"`
}

type rawStatement struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Children   []string   `json:"children,omitempty"`
	References []string   `json:"references,omitempty"`
	Tokens     []rawToken `json:"tokens,omitempty"`
}

type rawFunction struct {
	Name   string   `json:"name"`
	Params []string `json:"params,omitempty"`
	Entry  string   `json:"entry"`
}

type rawUnit struct {
	Decls      []rawDecl      `json:"decls"`
	Statements []rawStatement `json:"statements"`
	Functions  []rawFunction  `json:"functions"`
}

func convertTokens(ts []rawToken) []astview.Token {
	out := make([]astview.Token, len(ts))
	for i, t := range ts {
		out[i] = astview.Token{Spelling: normalize(t.Spelling), Kind: t.Kind, Index: t.Index}
	}
	return out
}

// decl is the single concrete Decl implementation; which accessor methods
// are meaningful depends on kind, exactly as astview.Decl documents.
type decl struct {
	kind               astview.DeclKind
	name               string
	typ                string
	recordType         *decl
	referencedTypedef  *decl
	referencedRecords  []*decl
	referencedEnums    []*decl
	referencedTypedefs []*decl
	subtype            astview.TypedefSubtype
	tokens             []astview.Token
	initializer        *string
}

func (d *decl) Kind() astview.DeclKind { return d.kind }
func (d *decl) Name() string           { return d.name }
func (d *decl) Type() string           { return d.typ }

func (d *decl) RecordType() astview.RecordDecl {
	if d.recordType == nil {
		return nil
	}
	return d.recordType
}

func (d *decl) ReferencedTypedef() astview.TypedefDecl {
	if d.referencedTypedef == nil {
		return nil
	}
	return d.referencedTypedef
}

// Initializer implements astview.VariableDecl.
func (d *decl) Initializer() (string, bool) {
	if d.initializer == nil {
		return "", false
	}
	return *d.initializer, true
}

func (d *decl) ReferencedRecords() []astview.RecordDecl {
	out := make([]astview.RecordDecl, len(d.referencedRecords))
	for i, r := range d.referencedRecords {
		out[i] = r
	}
	return out
}

func (d *decl) ReferencedEnums() []astview.EnumDecl {
	out := make([]astview.EnumDecl, len(d.referencedEnums))
	for i, e := range d.referencedEnums {
		out[i] = e
	}
	return out
}

func (d *decl) ReferencedTypedefs() []astview.TypedefDecl {
	out := make([]astview.TypedefDecl, len(d.referencedTypedefs))
	for i, t := range d.referencedTypedefs {
		out[i] = t
	}
	return out
}

func (d *decl) Tokens() []astview.Token { return d.tokens }

func (d *decl) Anonymous() bool {
	return containsSubstring(d.name, "(anonymous)")
}

func (d *decl) Subtype() astview.TypedefSubtype { return d.subtype }

func containsSubstring(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

type statement struct {
	kind       string
	children   []*statement
	references []*decl
	tokens     []astview.Token
}

func (s *statement) Kind() string { return s.kind }

func (s *statement) Children() []astview.Statement {
	out := make([]astview.Statement, len(s.children))
	for i, c := range s.children {
		out[i] = c
	}
	return out
}

func (s *statement) References() []astview.Decl {
	out := make([]astview.Decl, len(s.references))
	for i, r := range s.references {
		out[i] = r
	}
	return out
}

func (s *statement) Tokens() []astview.Token { return s.tokens }

type function struct {
	name   string
	params []*decl
	entry  *statement
}

func (f *function) Name() string { return f.name }

func (f *function) Params() []astview.Decl {
	out := make([]astview.Decl, len(f.params))
	for i, p := range f.params {
		out[i] = p
	}
	return out
}

func (f *function) Entry() astview.Statement { return f.entry }

type unit struct {
	functions []*function
}

func (u *unit) Functions() []astview.Function {
	out := make([]astview.Function, len(u.functions))
	for i, f := range u.functions {
		out[i] = f
	}
	return out
}

func (u *unit) VisitFunctions(fn func(astview.Function)) {
	for _, f := range u.functions {
		fn(f)
	}
}

func declKindFromString(s string) (astview.DeclKind, error) {
	switch s {
	case "Variable":
		return astview.DeclVariable, nil
	case "Function":
		return astview.DeclFunction, nil
	case "Record":
		return astview.DeclRecord, nil
	case "Enum":
		return astview.DeclEnum, nil
	case "Typedef":
		return astview.DeclTypedef, nil
	default:
		return 0, fmt.Errorf("%s: unknown decl kind %q", lkerrors.AST003, s)
	}
}

func typedefSubtypeFromString(s string) astview.TypedefSubtype {
	switch s {
	case "Builtin":
		return astview.TypedefBuiltin
	case "Paren":
		return astview.TypedefParen
	default:
		return astview.TypedefOther
	}
}

// Decode parses a serialized translation unit (the JSON schema this
// package defines) into an astview.TranslationUnit.
func Decode(r io.Reader) (astview.TranslationUnit, error) {
	var raw rawUnit
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s: decoding AST JSON: %w", lkerrors.AST003, err)
	}
	return build(&raw)
}

func build(raw *rawUnit) (astview.TranslationUnit, error) {
	decls := make(map[string]*decl, len(raw.Decls))
	for _, rd := range raw.Decls {
		k, err := declKindFromString(rd.Kind)
		if err != nil {
			return nil, err
		}
		var init *string
		if rd.Initializer != nil {
			v := normalize(*rd.Initializer)
			init = &v
		}
		decls[rd.ID] = &decl{
			kind:        k,
			name:        normalize(rd.Name),
			typ:         normalize(rd.Type),
			subtype:     typedefSubtypeFromString(rd.Subtype),
			tokens:      convertTokens(rd.Tokens),
			initializer: init,
		}
	}

	// Second pass: wire decl-to-decl edges now that every node exists.
	for _, rd := range raw.Decls {
		d := decls[rd.ID]
		if rd.RecordType != "" {
			rt, ok := decls[rd.RecordType]
			if !ok {
				return nil, fmt.Errorf("%s: decl %q references unknown record_type %q", lkerrors.AST003, rd.ID, rd.RecordType)
			}
			d.recordType = rt
		}
		if rd.ReferencedTypedef != "" {
			td, ok := decls[rd.ReferencedTypedef]
			if !ok {
				return nil, fmt.Errorf("%s: decl %q references unknown referenced_typedef %q", lkerrors.AST003, rd.ID, rd.ReferencedTypedef)
			}
			d.referencedTypedef = td
		}
		for _, id := range rd.ReferencedRecords {
			rr, ok := decls[id]
			if !ok {
				return nil, fmt.Errorf("%s: decl %q references unknown record %q", lkerrors.AST003, rd.ID, id)
			}
			d.referencedRecords = append(d.referencedRecords, rr)
		}
		for _, id := range rd.ReferencedEnums {
			re, ok := decls[id]
			if !ok {
				return nil, fmt.Errorf("%s: decl %q references unknown enum %q", lkerrors.AST003, rd.ID, id)
			}
			d.referencedEnums = append(d.referencedEnums, re)
		}
		for _, id := range rd.ReferencedTypedefs {
			rt, ok := decls[id]
			if !ok {
				return nil, fmt.Errorf("%s: decl %q references unknown typedef %q", lkerrors.AST003, rd.ID, id)
			}
			d.referencedTypedefs = append(d.referencedTypedefs, rt)
		}
	}

	stmts := make(map[string]*statement, len(raw.Statements))
	for _, rs := range raw.Statements {
		stmts[rs.ID] = &statement{kind: rs.Kind, tokens: convertTokens(rs.Tokens)}
	}
	for _, rs := range raw.Statements {
		s := stmts[rs.ID]
		for _, id := range rs.Children {
			c, ok := stmts[id]
			if !ok {
				return nil, fmt.Errorf("%s: statement %q references unknown child %q", lkerrors.AST003, rs.ID, id)
			}
			s.children = append(s.children, c)
		}
		for _, id := range rs.References {
			d, ok := decls[id]
			if !ok {
				return nil, fmt.Errorf("%s: statement %q references unknown decl %q", lkerrors.AST003, rs.ID, id)
			}
			s.references = append(s.references, d)
		}
	}

	fns := make([]*function, 0, len(raw.Functions))
	for _, rf := range raw.Functions {
		entry, ok := stmts[rf.Entry]
		if !ok {
			return nil, fmt.Errorf("%s: function %q references unknown entry statement %q", lkerrors.AST003, rf.Name, rf.Entry)
		}
		f := &function{name: normalize(rf.Name), entry: entry}
		for _, id := range rf.Params {
			p, ok := decls[id]
			if !ok {
				return nil, fmt.Errorf("%s: function %q references unknown param decl %q", lkerrors.AST003, rf.Name, id)
			}
			f.params = append(f.params, p)
		}
		fns = append(fns, f)
	}

	return &unit{functions: fns}, nil
}
