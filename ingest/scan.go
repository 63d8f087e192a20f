package ingest

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern matches every CSV below the input directory.
const DefaultPattern = "**/*.csv"

// Source is one input file. Each file holds the executions of a single
// account, named after the file.
type Source struct {
	AccountID string
	Path      string
}

// AccountID derives the account id from a file path: the base name
// without its extension.
func AccountID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Scan lists the files under dir that match pattern, sorted by path.
func Scan(dir, pattern string) ([]Source, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("scan: invalid pattern %q", pattern)
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(dir, pattern), doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(matches)

	out := make([]Source, 0, len(matches))
	for _, m := range matches {
		out = append(out, Source{AccountID: AccountID(m), Path: m})
	}
	return out, nil
}
