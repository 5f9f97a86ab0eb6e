// Package testutil provides golden-file comparison helpers shared across
// the reconstruction pipeline's packages.
package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// UpdateGoldens controls whether CompareGolden writes golden files
// instead of comparing against them.
// Usage: go test -update ./...
var UpdateGoldens = flag.Bool("update", false, "update golden files")

// GoldenPath returns the path to a golden file for the given feature
// and case name.
func GoldenPath(feature, name string) string {
	return filepath.Join("testdata", feature, name+".golden")
}

// CompareGolden compares got against the golden file for feature/name.
// With -update it (re)writes the golden file instead of comparing.
func CompareGolden(t *testing.T, feature, name, got string) {
	t.Helper()

	path := GoldenPath(feature, name)

	if *UpdateGoldens {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("creating golden directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0o644); err != nil {
			t.Fatalf("writing golden file %s: %v", path, err)
		}
		t.Logf("updated golden file: %s", path)
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading golden file %s: %v\nrun with -update to create it", path, err)
	}

	if diff := cmp.Diff(string(want), got); diff != "" {
		t.Errorf("golden mismatch for %s/%s (-want +got):\n%s", feature, name, diff)
	}
}
