package parser

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/mediator/internal/models"
	"github.com/toyz/mediator/internal/utils"
)

// Loader parses package directories into compilations
type Loader struct {
	fileSet *token.FileSet
}

// NewLoader creates a new loader with its own file set
func NewLoader() *Loader {
	return &Loader{fileSet: token.NewFileSet()}
}

// IsSourceFile reports whether name is a Go file that belongs to a compilation
func IsSourceFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, ".go") &&
		!strings.HasSuffix(base, "_test.go") &&
		!strings.HasPrefix(base, utils.GeneratedFilePrefix)
}

// LoadDir parses the Go files of the package in dir. Test files and
// previously generated files are skipped. Files are ordered by name.
func (l *Loader) LoadDir(dir, importPath string) (*models.Compilation, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !IsSourceFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	sources := make(map[string]string, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		sources[filepath.Join(dir, name)] = string(data)
	}

	comp, err := l.LoadSource(importPath, sources)
	if err != nil {
		return nil, err
	}
	comp.Dir = dir
	return comp, nil
}

// LoadSource parses in-memory files (file name -> contents) as one package
func (l *Loader) LoadSource(importPath string, sources map[string]string) (*models.Compilation, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no Go files found for package %q", importPath)
	}

	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	comp := &models.Compilation{
		ImportPath: importPath,
		FileSet:    l.fileSet,
	}

	for _, name := range names {
		file, err := parser.ParseFile(l.fileSet, name, sources[name], parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}

		// We expect only one package per directory
		if comp.PackageName == "" {
			comp.PackageName = file.Name.Name
		} else if file.Name.Name != comp.PackageName {
			return nil, fmt.Errorf("multiple packages found for %q: %s and %s", importPath, comp.PackageName, file.Name.Name)
		}

		comp.Files = append(comp.Files, models.SourceFile{Name: name, AST: file})
	}

	return comp, nil
}

// fileASTs returns the syntax trees of a compilation in order
func fileASTs(comp *models.Compilation) []*ast.File {
	files := make([]*ast.File, 0, len(comp.Files))
	for _, f := range comp.Files {
		files = append(files, f.AST)
	}
	return files
}
