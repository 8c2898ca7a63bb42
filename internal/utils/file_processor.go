package utils

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// RecursiveSuffix marks a Go-style recursive pattern such as "./..."
const RecursiveSuffix = "/..."

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info fs.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be descended into
type DirectoryFilter func(path string, info fs.DirEntry) bool

// FileWalkOptions configures file walking behavior
type FileWalkOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
	SkipErrors      bool
}

// SuffixFileFilter matches regular files whose name ends with suffix
func SuffixFileFilter(suffix string) FileFilter {
	return func(_ string, info fs.DirEntry) bool {
		return !info.IsDir() && strings.HasSuffix(info.Name(), suffix)
	}
}

// DefaultDirectoryFilter skips hidden directories and ones that never hold sources
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		"testdata":     true,
		"build":        true,
		"dist":         true,
		"target":       true,
		"_deps":        true,
	}

	return func(_ string, info fs.DirEntry) bool {
		name := info.Name()
		if strings.HasPrefix(name, ".") && name != "." && name != ".." {
			return false
		}
		return !skipDirs[name]
	}
}

// FileProcessor finds source files for the generator and cleaner
type FileProcessor struct {
	directoryFilter DirectoryFilter
}

// NewFileProcessor creates a file processor using the default directory filter
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{directoryFilter: DefaultDirectoryFilter()}
}

// WalkFiles walks a directory tree and returns the files accepted by options, sorted
func (fp *FileProcessor) WalkFiles(rootDir string, options FileWalkOptions) ([]string, error) {
	var matched []string

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if options.SkipErrors {
				return nil
			}
			return err
		}

		if d.IsDir() {
			if path != rootDir && options.DirectoryFilter != nil && !options.DirectoryFilter(path, d) {
				return filepath.SkipDir
			}
			return nil
		}

		if options.FileFilter == nil || options.FileFilter(path, d) {
			matched = append(matched, path)
		}
		return nil
	})

	slices.Sort(matched)
	return matched, err
}

// ExpandPatterns resolves command line patterns to files accepted by filter.
// "dir/..." walks dir recursively, a directory lists its direct entries and
// a file is taken as is. Results keep pattern order without duplicates.
func (fp *FileProcessor) ExpandPatterns(patterns []string, filter FileFilter) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(paths ...string) {
		for _, p := range paths {
			clean := filepath.Clean(p)
			if !seen[clean] {
				seen[clean] = true
				files = append(files, clean)
			}
		}
	}

	for _, pattern := range patterns {
		if strings.HasSuffix(pattern, RecursiveSuffix) {
			base := strings.TrimSuffix(pattern, RecursiveSuffix)
			if base == "" {
				base = "."
			}
			found, err := fp.WalkFiles(base, FileWalkOptions{
				FileFilter:      filter,
				DirectoryFilter: fp.directoryFilter,
			})
			if err != nil {
				return nil, &PatternError{Op: "walk", Pattern: pattern, Err: err}
			}
			add(found...)
			continue
		}

		info, err := os.Stat(pattern)
		if err != nil {
			return nil, &PatternError{Op: "stat", Pattern: pattern, Err: err}
		}
		if !info.IsDir() {
			add(pattern)
			continue
		}

		entries, err := os.ReadDir(pattern)
		if err != nil {
			return nil, &PatternError{Op: "read directory", Pattern: pattern, Err: err}
		}
		for _, entry := range entries {
			path := filepath.Join(pattern, entry.Name())
			if filter == nil || filter(path, entry) {
				add(path)
			}
		}
	}

	return files, nil
}

// Directories returns the directories a set of patterns covers, for watching.
// Recursive patterns contribute every directory the walk would visit.
func (fp *FileProcessor) Directories(patterns []string) ([]string, error) {
	var dirs []string
	seen := make(map[string]bool)
	add := func(dir string) {
		clean := filepath.Clean(dir)
		if !seen[clean] {
			seen[clean] = true
			dirs = append(dirs, clean)
		}
	}

	for _, pattern := range patterns {
		if !strings.HasSuffix(pattern, RecursiveSuffix) {
			info, err := os.Stat(pattern)
			if err != nil {
				return nil, &PatternError{Op: "stat", Pattern: pattern, Err: err}
			}
			if info.IsDir() {
				add(pattern)
			} else {
				add(filepath.Dir(pattern))
			}
			continue
		}

		base := strings.TrimSuffix(pattern, RecursiveSuffix)
		if base == "" {
			base = "."
		}
		err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if path != base && !fp.directoryFilter(path, d) {
				return filepath.SkipDir
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, &PatternError{Op: "walk", Pattern: pattern, Err: err}
		}
	}

	return dirs, nil
}

// RemoveFiles deletes every file and returns the ones that were removed
func (fp *FileProcessor) RemoveFiles(paths []string) ([]string, error) {
	var removed []string
	for _, path := range paths {
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, &PatternError{Op: "remove", Pattern: path, Err: err}
		}
		removed = append(removed, path)
	}
	return removed, nil
}
