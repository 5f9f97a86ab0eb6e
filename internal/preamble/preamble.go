// Package preamble implements component D of the reconstruction
// pipeline: turning a free-use closure into compilable C preamble text
// plus the wrapper-parameter declarations §4.E needs to close over the
// loop's free variables.
//
// The synthesiser aims for "compiles cleanly" rather than "semantically
// faithful" — see original_source's define_undef_vars, whose four
// string-surgery branches this package reproduces deliberately, warts
// and all, rather than attempting a more principled C type re-printer.
//
// The all-uppercase shadowing rule in formatVariableDecl is a heuristic:
// it tests whether the name occurs as a substring of the concatenated
// enum text, and does not look at the declaration's kind.
package preamble

import (
	"strings"
	"unicode"

	"github.com/sunholo/loopkernel/internal/astview"
	"github.com/sunholo/loopkernel/internal/ctoken"
	"github.com/sunholo/loopkernel/internal/freeuse"
)

var fixedHeaders = []string{
	"#include <stdint.h>",
	"#include <stdio.h>",
}

// dedupByName keeps, for each name, the longest text ever added for it —
// the "longest spelling wins" rule repeated across §4.D steps 2, 3 and 6 —
// while preserving first-seen name order for deterministic output.
type dedupByName struct {
	order []string
	best  map[string]string
}

func (d *dedupByName) add(name, text string) {
	if d.best == nil {
		d.best = map[string]string{}
	}
	cur, ok := d.best[name]
	if !ok {
		d.order = append(d.order, name)
		d.best[name] = text
		return
	}
	if len(text) > len(cur) {
		d.best[name] = text
	}
}

func (d *dedupByName) lines() []string {
	out := make([]string, len(d.order))
	for i, n := range d.order {
		out[i] = d.best[n]
	}
	return out
}

func isAllUpper(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// Synthesize builds the preamble text (§4.D, fixed section order 1-6 plus
// the free-function extern half of step 7) and the ordered list of
// wrapper-parameter declarations for free variables (the non-function
// half of step 7, reused by §4.E rather than re-declared as externs).
// Free variables carrying an Initializer are omitted from params — the
// kernel assembler redefines those verbatim inside the wrapper body
// instead (see DESIGN.md's Scenario 5 decision).
func Synthesize(frees []astview.Decl, records []astview.RecordDecl, derived freeuse.DerivedSets) (text string, params []string) {
	var sections []string
	sections = append(sections, strings.Join(fixedHeaders, "\n"))

	builtinTypedefs := &dedupByName{}
	for _, td := range derived.BuiltinTypedefs {
		builtinTypedefs.add(td.Name(), ctoken.Render(td.Tokens())+";")
	}
	if lines := builtinTypedefs.lines(); len(lines) > 0 {
		sections = append(sections, strings.Join(lines, "\n"))
	}

	varTypedefs := &dedupByName{}
	for _, td := range derived.VariableTypedefs {
		varTypedefs.add(td.Name(), ctoken.Render(td.Tokens())+";")
	}
	if lines := varTypedefs.lines(); len(lines) > 0 {
		sections = append(sections, strings.Join(lines, "\n"))
	}

	var enumLines []string
	for _, e := range derived.Enums {
		enumLines = append(enumLines, ctoken.Render(e.Tokens())+";")
	}
	if len(enumLines) > 0 {
		sections = append(sections, strings.Join(enumLines, "\n"))
	}
	enumText := strings.Join(enumLines, "")

	seenFwd := map[string]bool{}
	var fwdLines []string
	for _, r := range records {
		if r.Anonymous() || seenFwd[r.Name()] {
			continue
		}
		seenFwd[r.Name()] = true
		fwdLines = append(fwdLines, "typedef struct "+r.Name()+" "+r.Name()+";")
	}
	if len(fwdLines) > 0 {
		sections = append(sections, strings.Join(fwdLines, "\n"))
	}

	recordDefs := &dedupByName{}
	for _, r := range records {
		if r.Anonymous() {
			continue
		}
		recordDefs.add(r.Name(), "typedef "+ctoken.Render(r.Tokens())+" "+r.Name()+";")
	}
	if lines := recordDefs.lines(); len(lines) > 0 {
		sections = append(sections, strings.Join(lines, "\n"))
	}

	seenExtern := map[string]bool{}
	var externLines []string
	var paramSet = map[string]bool{}
	for _, d := range frees {
		if d.Kind() == astview.DeclFunction {
			decl := formatFunctionDecl(d.Name(), d.Type())
			if !seenExtern[decl] {
				seenExtern[decl] = true
				externLines = append(externLines, decl+";")
			}
			continue
		}

		v, ok := d.(astview.VariableDecl)
		if !ok {
			continue
		}
		if _, hasInit := v.Initializer(); hasInit {
			continue
		}
		decl, shadowed := formatVariableDecl(d.Name(), d.Type(), enumText)
		if shadowed || paramSet[decl] {
			continue
		}
		paramSet[decl] = true
		params = append(params, decl)
	}
	if len(externLines) > 0 {
		sections = append(sections, strings.Join(externLines, "\n"))
	}

	return strings.Join(sections, "\n\n"), params
}

// formatFunctionDecl implements the Function branch of §4.D step 7:
// splitting the prototype at its parameter list to insert the name.
func formatFunctionDecl(name, typ string) string {
	i := strings.Index(typ, "(")
	if i < 0 {
		return typ + " " + name
	}
	return typ[:i] + " " + name + " " + typ[i:]
}

// formatVariableDecl implements the three non-Function branches of §4.D
// step 7 plus the all-uppercase shadowing rule.
func formatVariableDecl(name, typ, enumText string) (decl string, shadowed bool) {
	switch {
	case strings.Contains(typ, "(*)"):
		decl = strings.Replace(typ, "(*)", "(*"+name+")", 1)
	case strings.Contains(typ, "["):
		decl = strings.Replace(typ, "[", " "+name+"[", 1)
	default:
		decl = typ + " " + name
	}
	if isAllUpper(name) && strings.Contains(enumText, name) {
		return decl, true
	}
	return decl, false
}
