package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"

	mederrors "github.com/toyz/mediator/internal/errors"
	"github.com/toyz/mediator/internal/generator"
	"github.com/toyz/mediator/internal/models"
	"github.com/toyz/mediator/internal/parser"
	"github.com/toyz/mediator/internal/utils"
)

// GenerationSummary counts what a run did
type GenerationSummary struct {
	PackagesScanned    int
	PackagesSkipped    int // packages that cannot see the handler contracts
	FilesWritten       []string
	FilesUnchanged     []string
	StaleFiles         []string
	HandlersRegistered int
	Warnings           int
}

// Stats returns the summary in the form printed at the end of a run
func (s GenerationSummary) Stats() map[string]interface{} {
	return map[string]interface{}{
		"Packages scanned":    s.PackagesScanned,
		"Packages skipped":    s.PackagesSkipped,
		"Files written":       len(s.FilesWritten),
		"Files unchanged":     len(s.FilesUnchanged),
		"Handlers registered": s.HandlersRegistered,
		"Warnings":            s.Warnings,
	}
}

// Generator coordinates the CLI generation process
type Generator struct {
	config      Config
	scanner     *DirectoryScanner
	resolver    *ModuleResolver
	loader      *parser.Loader
	pipeline    *generator.Generator
	diagnostics *utils.DiagnosticSystem
	stdout      io.Writer
	summary     GenerationSummary
}

// NewGenerator creates a CLI generator for cfg
func NewGenerator(cfg Config, diagnostics *utils.DiagnosticSystem) *Generator {
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(cfg.DiagnosticLevel())
	}
	if cfg.DryRun {
		// stdout carries the generated files
		diagnostics.UseErrorStream()
	}
	if cfg.Output == "" {
		cfg.Output = generator.OutputFileName
	}
	return &Generator{
		config:      cfg,
		scanner:     NewDirectoryScanner(),
		resolver:    NewModuleResolver(cfg.ModuleName),
		loader:      parser.NewLoader(),
		pipeline:    generator.New(cfg.GeneratorOptions()),
		diagnostics: diagnostics,
		stdout:      os.Stdout,
	}
}

// SetOutput sets where --dry-run prints generated files
func (g *Generator) SetOutput(w io.Writer) {
	g.stdout = w
}

// Summary returns the summary of the last run
func (g *Generator) Summary() GenerationSummary {
	return g.summary
}

// Run scans the configured directories and generates every package. A
// failing package does not stop the others; all failures are returned
// together.
func (g *Generator) Run() error {
	startTime := time.Now()
	g.summary = GenerationSummary{}

	g.diagnostics.Verbose("Starting code generation at %s", startTime.Format("15:04:05"))
	g.diagnostics.Debug("Scanning directories: %v", g.config.Directories)

	packageDirs, err := g.scanner.ScanDirectories(g.config.Directories)
	if err != nil {
		g.diagnostics.Error("Failed to scan directories: %v", err)
		return err
	}
	if len(packageDirs) == 0 {
		err := mederrors.New(mederrors.FileSystemErrorCode, "no Go packages found in specified directories").
			WithContext("directories", g.config.Directories).
			WithSuggestions(
				"Ensure the directories contain Go files",
				"Use the './...' pattern to scan subdirectories",
			)
		g.diagnostics.Error("%v", err)
		return err
	}

	g.diagnostics.Info("Found %d packages to process", len(packageDirs))

	var errs error
	for _, dir := range packageDirs {
		if err := g.processPackage(dir); err != nil {
			g.diagnostics.Error("%v", err)
			errs = multierr.Append(errs, err)
		}
	}

	g.diagnostics.Verbose("Generation finished in %s", time.Since(startTime).Round(time.Millisecond))
	return errs
}

func (g *Generator) processPackage(dir string) error {
	importPath, err := g.resolver.ImportPath(dir)
	if err != nil {
		return err
	}

	g.diagnostics.Debug("Loading %s from %s", importPath, dir)
	comp, err := g.loader.LoadDir(dir, importPath)
	if err != nil {
		return mederrors.WrapParseError(dir, err)
	}
	g.summary.PackagesScanned++

	result, err := g.pipeline.Generate(comp)
	if err != nil {
		return mederrors.WrapGenerateError(importPath, err)
	}

	if result.Aborted() {
		g.summary.PackagesSkipped++
		g.diagnostics.Verbose("Skipping %s: %s", importPath, result.Diagnostic.Message)
		return nil
	}

	g.diagnostics.Report(importPath, result.Diagnostic)
	if result.Diagnostic.Severity == models.SeverityWarning {
		g.summary.Warnings++
	}
	g.summary.HandlersRegistered += len(result.Records)

	return g.emit(filepath.Join(dir, g.config.Output), result.Source)
}

// emit prints, checks or writes one generated file depending on the mode
func (g *Generator) emit(target string, source []byte) error {
	switch {
	case g.config.DryRun:
		if _, err := fmt.Fprintf(g.stdout, "// %s\n%s", target, source); err != nil {
			return mederrors.WrapFileSystemError("print", target, err)
		}
		return nil

	case g.config.Check:
		ok, err := utils.FileMatches(target, source)
		if err != nil {
			return mederrors.WrapFileSystemError("read", target, err)
		}
		if !ok {
			g.summary.StaleFiles = append(g.summary.StaleFiles, target)
			return mederrors.StaleOutputError(target)
		}
		g.summary.FilesUnchanged = append(g.summary.FilesUnchanged, target)
		return nil

	default:
		written, err := utils.WriteFileIfChanged(target, source)
		if err != nil {
			return mederrors.WrapFileSystemError("write", target, err)
		}
		if written {
			g.summary.FilesWritten = append(g.summary.FilesWritten, target)
			g.diagnostics.PhaseItem("%s", target)
		} else {
			g.summary.FilesUnchanged = append(g.summary.FilesUnchanged, target)
			g.diagnostics.Verbose("%s is up to date", target)
		}
		return nil
	}
}
