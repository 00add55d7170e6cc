package cli

import (
	"path/filepath"
	"strings"

	mederrors "github.com/toyz/mediator/internal/errors"
	"github.com/toyz/mediator/internal/utils"
)

// RecursiveSuffix marks a directory argument that includes every
// subdirectory, as in "./..."
const RecursiveSuffix = "/..."

// DirectoryScanner expands directory arguments into package directories
type DirectoryScanner struct {
	fileProcessor *utils.FileProcessor
}

// NewDirectoryScanner creates a new directory scanner
func NewDirectoryScanner() *DirectoryScanner {
	return &DirectoryScanner{
		fileProcessor: utils.NewFileProcessor(),
	}
}

// splitPattern returns the absolute base directory of arg and whether it
// should be walked recursively
func splitPattern(arg string) (string, bool, error) {
	recursive := false
	base := arg
	if base == "..." {
		base, recursive = ".", true
	} else if strings.HasSuffix(base, RecursiveSuffix) {
		base, recursive = strings.TrimSuffix(base, RecursiveSuffix), true
		if base == "" {
			base = "."
		}
	}

	abs, err := filepath.Abs(base)
	if err != nil {
		return "", false, mederrors.WrapFileSystemError("resolve", base, err)
	}
	return abs, recursive, nil
}

// ScanDirectories returns every directory holding Go source files named by
// the arguments, deduplicated and in argument order. Recursive patterns
// expand in sorted order.
func (s *DirectoryScanner) ScanDirectories(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var packageDirs []string

	for _, arg := range args {
		base, recursive, err := splitPattern(arg)
		if err != nil {
			return nil, err
		}

		dirs, err := s.fileProcessor.PackageDirs(base, recursive)
		if err != nil {
			return nil, mederrors.WrapFileSystemError("scan", base, err)
		}

		for _, dir := range dirs {
			if !seen[dir] {
				seen[dir] = true
				packageDirs = append(packageDirs, dir)
			}
		}
	}

	return packageDirs, nil
}

// FindGenerated returns every file called name under the arguments
func (s *DirectoryScanner) FindGenerated(args []string, name string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, arg := range args {
		base, recursive, err := splitPattern(arg)
		if err != nil {
			return nil, err
		}

		found, err := s.fileProcessor.FindFiles(base, name, recursive)
		if err != nil {
			return nil, mederrors.WrapFileSystemError("scan", base, err)
		}

		for _, file := range found {
			if !seen[file] {
				seen[file] = true
				files = append(files, file)
			}
		}
	}

	return files, nil
}
