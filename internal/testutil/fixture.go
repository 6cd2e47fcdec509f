package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/pdxkit/clausewitz/internal/parser"
	"github.com/pdxkit/clausewitz/script"
)

// RepoRoot returns the module root directory.
func RepoRoot() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..")
}

// FixturePath returns the path of a file under the repository testdata
// directory.
func FixturePath(rel string) string {
	return filepath.Join(RepoRoot(), "testdata", filepath.FromSlash(rel))
}

// ReadFixture reads a file under the repository testdata directory.
func ReadFixture(t testing.TB, rel string) []byte {
	t.Helper()
	data, err := os.ReadFile(FixturePath(rel))
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", rel, err)
	}
	return data
}

// MustParse parses src with the default diagnostic config and fails the
// test on a syntax error.
func MustParse(t testing.TB, filename, src string) *script.Document {
	t.Helper()
	doc, err := parser.New([]byte(src), filename, nil, script.DefaultConfig()).Parse()
	if err != nil {
		t.Fatalf("parse %s: %v", filename, err)
	}
	return doc
}

// ParseFixture parses a file under the repository testdata directory,
// using its path relative to testdata as the document filename.
func ParseFixture(t testing.TB, rel string) *script.Document {
	t.Helper()
	return MustParse(t, rel, string(ReadFixture(t, rel)))
}

// Codes returns the codes of diags in order.
func Codes(diags []script.Diagnostic) []string {
	codes := make([]string, len(diags))
	for i, d := range diags {
		codes[i] = d.Code
	}
	return codes
}
