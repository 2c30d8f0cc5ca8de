package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// sourceExts are the file types a loader can read.
var sourceExts = map[string]bool{
	".json": true, ".jsonl": true, ".ndjson": true,
	".yaml": true, ".yml": true,
	".db": true, ".sqlite": true, ".sqlite3": true,
}

// DiscoverSources scans the configured paths (default: <root>/.treetable)
// for data files and returns them sorted. The config file itself is skipped.
func DiscoverSources(cfg Config) []string {
	scanPaths := cfg.Discovery.ScanPaths
	if len(scanPaths) == 0 && cfg.root != "" {
		scanPaths = []string{filepath.Join(cfg.root, Dir)}
	}
	maxDepth := cfg.Discovery.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 2
	}

	seen := make(map[string]bool)
	var result []string
	for _, scanPath := range scanPaths {
		for _, f := range scanForSources(cfg.resolve(scanPath), maxDepth) {
			if !seen[f] {
				seen[f] = true
				result = append(result, f)
			}
		}
	}
	sort.Strings(result)
	return result
}

// scanForSources walks a directory tree up to maxDepth levels deep,
// collecting files with a loadable extension.
func scanForSources(root string, maxDepth int) []string {
	var results []string

	rootDepth := strings.Count(filepath.Clean(root), string(filepath.Separator))

	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		currentDepth := strings.Count(filepath.Clean(path), string(filepath.Separator)) - rootDepth
		name := d.Name()

		if d.IsDir() {
			if currentDepth > maxDepth {
				return filepath.SkipDir
			}
			// Skip hidden directories below the scan root
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if currentDepth > maxDepth || name == FileName || strings.HasPrefix(name, ".") {
			return nil
		}
		if sourceExts[strings.ToLower(filepath.Ext(name))] {
			results = append(results, path)
		}
		return nil
	})

	return results
}

// FindRoot walks up from dir looking for a .treetable/ directory.
func FindRoot(dir string) (string, bool) {
	home, _ := os.UserHomeDir()

	for {
		settingsDir := filepath.Join(dir, Dir)
		if info, err := os.Stat(settingsDir); err == nil && info.IsDir() {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached filesystem root
		}
		// Don't go above home directory
		if home != "" && dir == home {
			break
		}
		dir = parent
	}
	return "", false
}
