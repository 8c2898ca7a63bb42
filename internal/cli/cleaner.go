package cli

import (
	"github.com/toyz/defn/internal/errors"
	"github.com/toyz/defn/internal/utils"
)

// Cleaner handles cleaning up generated headers
type Cleaner struct {
	scanner       *DirectoryScanner
	fileProcessor *utils.FileProcessor
}

// NewCleaner creates a cleaner removing headers with the given suffix
func NewCleaner(headerSuffix string) *Cleaner {
	return &Cleaner{
		scanner:       NewDirectoryScanner(headerSuffix),
		fileProcessor: utils.NewFileProcessor(),
	}
}

// CleanGeneratedFiles removes every generated header matched by patterns and
// returns the removed paths
func (c *Cleaner) CleanGeneratedFiles(patterns []string) ([]string, error) {
	headers, err := c.scanner.ScanHeaders(patterns)
	if err != nil {
		return nil, err
	}

	removed, err := c.fileProcessor.RemoveFiles(headers)
	if err != nil {
		return removed, errors.Wrap(errors.FileSystemErrorCode, "failed to remove generated headers", err).
			WithSuggestion("Check write permissions for the directories being cleaned")
	}
	return removed, nil
}
