package graph

import (
	"bufio"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// FileRecord holds the build state of one source file. A record exists
// only for files whose last compile attempt succeeded.
type FileRecord struct {
	// Path is the absolute source path.
	Path string

	// Hash is the hex-encoded xxhash64 of the file content at the last
	// successful compile.
	Hash string

	// MTime is the file's modification time (unix nanoseconds) at the
	// last successful compile.
	MTime int64

	// Deps are the absolute paths this file imports.
	Deps []string
}

// HashFile computes the content hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ParseImports extracts the files imported by a PohLang source file.
// Import statements have the form:
//
//	Import "lib/util.poh"
//
// Paths are resolved relative to the importing file first, then relative
// to the project root. Imports that resolve to nothing are skipped; the
// compiler reports them properly when the file is built.
func ParseImports(path, projectRoot string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var deps []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "Import") && !strings.HasPrefix(line, "import") {
			continue
		}
		parts := strings.Split(line, `"`)
		if len(parts) < 2 {
			continue
		}
		if resolved := resolveImport(parts[1], path, projectRoot); resolved != "" {
			deps = append(deps, resolved)
		}
	}
	return deps, scanner.Err()
}

// resolveImport resolves an import path to an absolute file path, or
// returns "" if it does not exist.
func resolveImport(imp, source, projectRoot string) string {
	relative := filepath.Join(filepath.Dir(source), imp)
	if _, err := os.Stat(relative); err == nil {
		abs, err := filepath.Abs(relative)
		if err == nil {
			return filepath.Clean(abs)
		}
	}

	fromRoot := filepath.Join(projectRoot, imp)
	if _, err := os.Stat(fromRoot); err == nil {
		abs, err := filepath.Abs(fromRoot)
		if err == nil {
			return filepath.Clean(abs)
		}
	}

	return ""
}
