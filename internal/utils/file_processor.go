package utils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// GeneratedFilePrefix marks files written by mediatorgen
const GeneratedFilePrefix = "autogen_"

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info os.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info os.DirEntry) bool

// DefaultGoFileFilter filters for .go files, excluding tests and autogen files
func DefaultGoFileFilter() FileFilter {
	return func(path string, info os.DirEntry) bool {
		if info.IsDir() {
			return false
		}

		name := info.Name()
		return strings.HasSuffix(name, ".go") &&
			!strings.HasSuffix(name, "_test.go") &&
			!strings.HasPrefix(name, GeneratedFilePrefix)
	}
}

// DefaultDirectoryFilter skips common directories that shouldn't contain source code
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		"testdata":     true,
	}

	return func(path string, info os.DirEntry) bool {
		if !info.IsDir() {
			return true
		}

		name := info.Name()

		// Skip hidden and underscore directories, like the go tool does
		if (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) && name != "." && name != ".." {
			return false
		}

		return !skipDirs[name]
	}
}

// FileProcessor provides utilities for common file processing operations
type FileProcessor struct {
	fileFilter      FileFilter
	directoryFilter DirectoryFilter
}

// NewFileProcessor creates a new file processor
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{
		fileFilter:      DefaultGoFileFilter(),
		directoryFilter: DefaultDirectoryFilter(),
	}
}

// HasGoFiles checks if a directory contains any .go files (excluding test files and autogen files)
func (fp *FileProcessor) HasGoFiles(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}

	for _, entry := range entries {
		if fp.fileFilter(filepath.Join(dir, entry.Name()), entry) {
			return true, nil
		}
	}

	return false, nil
}

// PackageDirs returns dir itself, and every directory below it when
// recursive is set, that contains Go source files. The result is sorted.
func (fp *FileProcessor) PackageDirs(dir string, recursive bool) ([]string, error) {
	if !recursive {
		ok, err := fp.HasGoFiles(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
		}
		if !ok {
			return nil, nil
		}
		return []string{dir}, nil
	}

	var dirs []string
	err := filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if path != dir && !fp.directoryFilter(path, entry) {
			return filepath.SkipDir
		}

		ok, err := fp.HasGoFiles(path)
		if err != nil {
			return err
		}
		if ok {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	sort.Strings(dirs)
	return dirs, nil
}

// FindFiles returns every file called name in dir, and below it when
// recursive is set
func (fp *FileProcessor) FindFiles(dir, name string, recursive bool) ([]string, error) {
	if !recursive {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, err
		}
		return []string{path}, nil
	}

	var found []string
	err := filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path != dir && !fp.directoryFilter(path, entry) {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.Name() == name {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	sort.Strings(found)
	return found, nil
}

// WriteFileIfChanged writes content to path unless the file already holds
// exactly that content. It reports whether the file was written.
func WriteFileIfChanged(path string, content []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, content) {
		return false, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return false, err
	}
	return true, nil
}

// FileMatches reports whether path exists and holds exactly content
func FileMatches(path string, content []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(existing, content), nil
}
