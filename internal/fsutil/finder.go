// Package fsutil provides file system utility functions.
package fsutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/specialistvlad/boreimp/internal/bore"
)

// FindFilesByExtension recursively searches root for files ending with any
// of the given extensions, compared case-insensitively. Hidden directories
// are skipped. The paths are returned sorted so batch output is stable.
func FindFilesByExtension(root string, extensions ...string) ([]string, error) {
	if len(extensions) == 0 {
		return nil, errors.New("at least one extension is required")
	}
	exts := make([]string, len(extensions))
	for i, e := range extensions {
		if e == "" {
			return nil, errors.New("extension must not be empty")
		}
		exts[i] = strings.ToLower(e)
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		name := strings.ToLower(d.Name())
		for _, ext := range exts {
			if strings.HasSuffix(name, ext) {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)
	return files, nil
}

// FindBoreFiles returns every canonical and structured bore file under root.
func FindBoreFiles(root string) ([]string, error) {
	return FindFilesByExtension(root, bore.CanonicalExt, bore.StructuredExt)
}
