package filewalker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

// Walker turns command-line arguments into the list of files to normalize.
type Walker struct {
	extensions map[string]bool
}

// NewWalker creates a Walker matching the given extensions (".strings").
func NewWalker(extensions []string) *Walker {
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = true
	}
	return &Walker{extensions: exts}
}

// Walk resolves each root to absolute file paths. Directories are searched
// recursively for matching extensions, skipping hidden directories; files
// named explicitly are taken as-is. The result is sorted and holds each
// path once, so no two pipelines ever target the same file.
func (w *Walker) Walk(roots ...string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolve path %s: %w", root, err)
		}

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(abs)
			continue
		}

		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("Error walking path")
				return nil
			}

			if d.IsDir() {
				if path != abs && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}

			if w.extensions[strings.ToLower(filepath.Ext(path))] {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk directory %s: %w", root, err)
		}
	}

	slices.Sort(paths)
	log.Debug().Int("count", len(paths)).Strs("roots", roots).Msg("Discovered files")
	return paths, nil
}
