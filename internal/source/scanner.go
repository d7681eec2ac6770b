package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Scan resolves each path to JSONL record files. A file is taken as is; a
// directory is walked for *.jsonl files. Results are sorted by path.
func Scan(paths ...string) ([]DiscoveredFile, error) {
	var files []DiscoveredFile
	seen := make(map[string]struct{})
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, DiscoveredFile{Path: path, Name: filepath.Base(path)})
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}

		err = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // intentionally skip unreadable entries
			}
			if d.IsDir() || filepath.Ext(path) != ".jsonl" {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", p, err)
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
