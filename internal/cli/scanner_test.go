package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/defn/internal/errors"
)

func TestDirectoryScanner_ScanSources(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.defn":                 "",
		"a.defn.hpp":             "",
		"notes.txt":              "",
		"lib/b.defn":             "",
		"lib/deep/c.defn":        "",
		"lib/.hidden/d.defn":     "",
		"vendor/e.defn":          "",
		"testdata/f.defn":        "",
		"lib/deep/c.defn.hpp":    "",
		"other/g.defn":           "",
		"other/nested/h.defn":    "",
		"build/generated/i.defn": "",
	})
	chdir(t, root)

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{
			name: "no patterns recurse from the working directory",
			want: []string{"a.defn", "lib/b.defn", "lib/deep/c.defn", "other/g.defn", "other/nested/h.defn"},
		},
		{
			name:     "directory lists its own files",
			patterns: []string{"lib"},
			want:     []string{"lib/b.defn"},
		},
		{
			name:     "recursive pattern",
			patterns: []string{"./lib/..."},
			want:     []string{"lib/b.defn", "lib/deep/c.defn"},
		},
		{
			name:     "explicit file and directory",
			patterns: []string{"other/nested/h.defn", "other"},
			want:     []string{"other/nested/h.defn", "other/g.defn"},
		},
		{
			name:     "duplicates are dropped",
			patterns: []string{"lib", "./lib/..."},
			want:     []string{"lib/b.defn", "lib/deep/c.defn"},
		},
	}

	scanner := NewDirectoryScanner("")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scanner.ScanSources(tt.patterns)
			require.NoError(t, err)

			want := make([]string, len(tt.want))
			for i, w := range tt.want {
				want[i] = filepath.FromSlash(w)
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestDirectoryScanner_MissingPath(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := NewDirectoryScanner("").ScanSources([]string{"missing"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.FileSystemErrorCode))
}

func TestDirectoryScanner_ScanHeaders(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.defn":           "",
		"a.defn.hpp":       "",
		"a.gen.hpp":        "",
		"lib/b.defn.hpp":   "",
		"lib/b.gen.hpp":    "",
		"lib/handmade.hpp": "",
	})
	chdir(t, root)

	got, err := NewDirectoryScanner("").ScanHeaders(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.defn.hpp", filepath.Join("lib", "b.defn.hpp")}, got)

	got, err = NewDirectoryScanner(".gen.hpp").ScanHeaders([]string{"./..."})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.gen.hpp", filepath.Join("lib", "b.gen.hpp")}, got)
}

func TestDirectoryScanner_WatchDirectories(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.defn":          "",
		"lib/b.defn":      "",
		"lib/deep/c.defn": "",
		".git/config":     "",
	})
	chdir(t, root)

	dirs, err := NewDirectoryScanner("").WatchDirectories(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{".", "lib", filepath.Join("lib", "deep")}, dirs)

	dirs, err = NewDirectoryScanner("").WatchDirectories([]string{"lib"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lib"}, dirs)
}
