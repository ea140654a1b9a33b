package arch_test

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	maxFilesPerPackage = 20
	maxLinesPerFile    = 500
)

// lineCountExceptions lists files allowed past maxLinesPerFile, with the
// count they are capped at.
var lineCountExceptions = map[string]int{
	"internal/ledger/ledger_test.go": 700,
}

func isGenerated(t *testing.T, filePath string) bool {
	t.Helper()

	f, err := os.Open(filePath)
	if err != nil {
		t.Fatalf("opening %s: %v", filePath, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		return strings.HasPrefix(scanner.Text(), "// Code generated")
	}
	return false
}

// TestPackageFileCount keeps packages small enough to read in one sitting.
func TestPackageFileCount(t *testing.T) {
	t.Parallel()

	dir := internalDirPath(t)
	for _, pkg := range internalPackages(t) {
		if n := len(goFilesIn(t, filepath.Join(dir, pkg))); n > maxFilesPerPackage {
			t.Errorf("package %s has %d .go files (limit: %d); consider splitting", pkg, n, maxFilesPerPackage)
		}
	}
}

// TestFileLineCount verifies that no .go file under internal/, tests
// included, exceeds its line limit.
func TestFileLineCount(t *testing.T) {
	t.Parallel()

	root := repoRoot(t)
	dir := internalDirPath(t)

	for _, pkg := range internalPackages(t) {
		for _, filePath := range allGoFilesIn(t, filepath.Join(dir, pkg)) {
			rel, err := filepath.Rel(root, filePath)
			if err != nil {
				t.Fatalf("computing relative path for %s: %v", filePath, err)
			}
			rel = filepath.ToSlash(rel)
			if isGenerated(t, filePath) {
				continue
			}

			limit := maxLinesPerFile
			if capped, ok := lineCountExceptions[rel]; ok {
				limit = capped
			}
			if count := lineCount(t, filePath); count > limit {
				t.Errorf("%s has %d lines (limit: %d); consider decomposing", rel, count, limit)
			}
		}
	}
}
