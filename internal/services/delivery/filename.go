package delivery

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// OutputFilename derives <prefix>_<basename-without-extension>.<ext> from the uploaded filename.
// Characters unsafe in a download filename are replaced with '_'.
func OutputFilename(prefix, original, ext string) string {
	// uploads from Windows clients may carry backslash paths
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' || r == ' ' {
			return r
		}
		return '_'
	}, base)
	base = strings.TrimSpace(base)
	if base == "" || base == "." {
		base = "document"
	}
	ext = strings.TrimPrefix(ext, ".")
	if prefix == "" {
		return base + "." + ext
	}
	return prefix + "_" + base + "." + ext
}

// UniqueFilenames returns names with repeats renamed to <base>_2.<ext>, <base>_3.<ext>
// and so on, in order. Comparison ignores case so the result is safe on
// case-insensitive filesystems. A generated name never takes one that appears
// later in names.
func UniqueFilenames(names []string) []string {
	original := make(map[string]bool, len(names))
	for _, n := range names {
		original[strings.ToLower(n)] = true
	}

	used := make(map[string]bool, len(names))
	out := make([]string, len(names))
	for i, n := range names {
		key := strings.ToLower(n)
		if !used[key] {
			used[key] = true
			out[i] = n
			continue
		}

		ext := filepath.Ext(n)
		base := strings.TrimSuffix(n, ext)
		for suffix := 2; ; suffix++ {
			candidate := fmt.Sprintf("%s_%d%s", base, suffix, ext)
			ck := strings.ToLower(candidate)
			if used[ck] || original[ck] {
				continue
			}
			used[ck] = true
			out[i] = candidate
			break
		}
	}
	return out
}
