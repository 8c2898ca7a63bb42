package cli

import (
	"strings"

	"github.com/toyz/defn/internal/errors"
	"github.com/toyz/defn/internal/parser"
	"github.com/toyz/defn/internal/utils"
)

// DirectoryScanner finds .defn sources and generated headers
type DirectoryScanner struct {
	fileProcessor *utils.FileProcessor
	headerSuffix  string
}

// NewDirectoryScanner creates a scanner recognizing headers by headerSuffix
func NewDirectoryScanner(headerSuffix string) *DirectoryScanner {
	if headerSuffix == "" {
		headerSuffix = parser.HeaderSuffix
	}
	return &DirectoryScanner{
		fileProcessor: utils.NewFileProcessor(),
		headerSuffix:  headerSuffix,
	}
}

// ScanSources returns the .defn files matched by patterns. Patterns follow
// the Go convention: "./..." recurses, a directory lists its own files.
func (s *DirectoryScanner) ScanSources(patterns []string) ([]string, error) {
	files, err := s.fileProcessor.ExpandPatterns(defaultPatterns(patterns), utils.SuffixFileFilter(parser.FileExtension))
	if err != nil {
		return nil, errors.Wrap(errors.FileSystemErrorCode, "failed to scan for sources", err).
			WithContext("patterns", strings.Join(patterns, " ")).
			WithSuggestion("Check that the paths exist, or use './...' to scan recursively")
	}
	return files, nil
}

// ScanHeaders returns the generated headers matched by patterns
func (s *DirectoryScanner) ScanHeaders(patterns []string) ([]string, error) {
	files, err := s.fileProcessor.ExpandPatterns(defaultPatterns(patterns), utils.SuffixFileFilter(s.headerSuffix))
	if err != nil {
		return nil, errors.Wrap(errors.FileSystemErrorCode, "failed to scan for generated headers", err).
			WithContext("patterns", strings.Join(patterns, " "))
	}
	return files, nil
}

// WatchDirectories returns the directories that hold files matched by patterns
func (s *DirectoryScanner) WatchDirectories(patterns []string) ([]string, error) {
	dirs, err := s.fileProcessor.Directories(defaultPatterns(patterns))
	if err != nil {
		return nil, errors.Wrap(errors.FileSystemErrorCode, "failed to resolve watched directories", err).
			WithContext("patterns", strings.Join(patterns, " "))
	}
	return dirs, nil
}

func defaultPatterns(patterns []string) []string {
	if len(patterns) == 0 {
		return []string{"." + utils.RecursiveSuffix}
	}
	return patterns
}
