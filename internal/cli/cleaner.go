package cli

import (
	"bufio"
	"os"
	"strings"

	mederrors "github.com/toyz/mediator/internal/errors"
	"github.com/toyz/mediator/internal/generator"
	"github.com/toyz/mediator/internal/utils"
)

// Cleaner handles cleaning up generated files
type Cleaner struct {
	scanner     *DirectoryScanner
	diagnostics *utils.DiagnosticSystem
}

// NewCleaner creates a new cleaner
func NewCleaner(diagnostics *utils.DiagnosticSystem) *Cleaner {
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	return &Cleaner{
		scanner:     NewDirectoryScanner(),
		diagnostics: diagnostics,
	}
}

// CleanGeneratedFiles removes every generated file called name under the
// directories and returns the removed paths. Files with that name that were
// not written by mediatorgen are left alone.
func (c *Cleaner) CleanGeneratedFiles(directories []string, name string) ([]string, error) {
	if name == "" {
		name = generator.OutputFileName
	}

	files, err := c.scanner.FindGenerated(directories, name)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, file := range files {
		generated, err := isGenerated(file)
		if err != nil {
			return removed, mederrors.WrapFileSystemError("read", file, err)
		}
		if !generated {
			c.diagnostics.Warn("Keeping %s: not generated by mediatorgen", file)
			continue
		}

		if err := os.Remove(file); err != nil {
			return removed, mederrors.WrapFileSystemError("remove", file, err)
		}
		c.diagnostics.Verbose("Removed %s", file)
		removed = append(removed, file)
	}

	return removed, nil
}

// isGenerated reports whether the first line of path is the generated header
func isGenerated(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		return false, scanner.Err()
	}
	return strings.TrimSpace(scanner.Text()) == generator.GeneratedHeader, nil
}
