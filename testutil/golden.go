// Package testutil provides golden-file comparison shared by the core
// packages' tests.
package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Update controls whether GoldenCompare writes the golden file instead of
// comparing against it. Usage: go test -update ./...
var Update = flag.Bool("update", false, "update golden files")

// GoldenCompare compares got against the golden file testdata/<feature>/<name>.golden.
// With -update it (re)writes the golden file instead of comparing.
func GoldenCompare(t *testing.T, feature, name, got string) {
	t.Helper()

	path := filepath.Join("testdata", feature, name+".golden")

	if *Update {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create golden directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0o644); err != nil {
			t.Fatalf("failed to write golden file: %v", err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file does not exist: %s\nRun with -update to create it", path)
		}
		t.Fatalf("failed to read golden file: %v", err)
	}

	if diff := cmp.Diff(string(want), got); diff != "" {
		t.Errorf("golden mismatch for %s/%s (-want +got):\n%s", feature, name, diff)
	}
}
