// Package config loads the YAML document describing one compilation
// invocation: the language, optimisation level, include search paths,
// and compiler flags a Provider needs to have built the AST the core
// consumes (§6 "Configuration surface").
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sunholo/loopkernel/internal/astview"
	lkerrors "github.com/sunholo/loopkernel/internal/errors"
)

// IncludeDir is one tagged include search path.
type IncludeDir struct {
	Path string `yaml:"path"`
	Kind string `yaml:"kind"` // "user" or "system"
}

// CompilationSpec is the YAML-serialized form of astview.Options plus the
// bookkeeping fields (filename, dataset name) kernel.Record.Meta carries
// through the pipeline.
type CompilationSpec struct {
	Source      string       `yaml:"source"`
	Language    string       `yaml:"language"` // "c" or "c++"
	OptLevel    string       `yaml:"opt_level"`
	IncludeDirs []IncludeDir `yaml:"include_dirs"`
	Flags       []string     `yaml:"flags"`
	DatasetName string       `yaml:"dataset_name"`
}

// LoadSpec reads and validates a CompilationSpec YAML document.
func LoadSpec(path string) (*CompilationSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: reading compilation spec: %w", lkerrors.CFG001, err)
	}

	var spec CompilationSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("%s: parsing compilation spec YAML: %w", lkerrors.CFG001, err)
	}

	if spec.Source == "" {
		return nil, fmt.Errorf("%s: compilation spec missing required field: source", lkerrors.CFG001)
	}
	if spec.Language == "" {
		spec.Language = "c"
	}
	if spec.OptLevel == "" {
		spec.OptLevel = "O0"
	}

	return &spec, nil
}

// Options converts the spec into the astview.Options a Provider consumes.
func (s *CompilationSpec) Options() (astview.Options, error) {
	lang, err := languageFromString(s.Language)
	if err != nil {
		return astview.Options{}, err
	}
	opt, err := optLevelFromString(s.OptLevel)
	if err != nil {
		return astview.Options{}, err
	}

	dirs := make([]astview.IncludeDir, len(s.IncludeDirs))
	for i, d := range s.IncludeDirs {
		kind, err := includeKindFromString(d.Kind)
		if err != nil {
			return astview.Options{}, err
		}
		dirs[i] = astview.IncludeDir{Path: d.Path, Kind: kind}
	}

	return astview.Options{
		Language:    lang,
		OptLevel:    opt,
		IncludeDirs: dirs,
		Flags:       append([]string(nil), s.Flags...),
		Filename:    s.Source,
	}, nil
}

func languageFromString(s string) (astview.Language, error) {
	switch s {
	case "c":
		return astview.LanguageC, nil
	case "c++", "cxx", "cpp":
		return astview.LanguageCXX, nil
	default:
		return 0, fmt.Errorf("%s: unrecognised language %q", lkerrors.CFG002, s)
	}
}

func optLevelFromString(s string) (astview.OptimizationLevel, error) {
	switch s {
	case "O0", "":
		return astview.O0, nil
	case "O1":
		return astview.O1, nil
	case "O2":
		return astview.O2, nil
	case "O3":
		return astview.O3, nil
	default:
		return 0, fmt.Errorf("%s: unrecognised optimisation level %q", lkerrors.CFG002, s)
	}
}

func includeKindFromString(s string) (astview.IncludeDirKind, error) {
	switch s {
	case "user", "":
		return astview.IncludeUser, nil
	case "system":
		return astview.IncludeSystem, nil
	default:
		return 0, fmt.Errorf("%s: unrecognised include dir kind %q", lkerrors.CFG002, s)
	}
}
