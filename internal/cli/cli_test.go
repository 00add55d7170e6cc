package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	mederrors "github.com/toyz/mediator/internal/errors"
	"github.com/toyz/mediator/internal/generator"
	"github.com/toyz/mediator/internal/models"
	"github.com/toyz/mediator/internal/utils"
)

const pingHandlerSource = `package handlers

import (
	"context"

	"github.com/toyz/mediator/pkg/mediator"
)

type PingRequest struct{}

//mediator::lifetime Singleton
type PingHandler struct{}

var _ mediator.RequestHandler[PingRequest, string] = (*PingHandler)(nil)

func (h *PingHandler) HandleRequest(ctx context.Context, req PingRequest) (string, error) {
	return "Pong", nil
}
`

const plainSource = `package util

func Add(a, b int) int { return a + b }
`

// writeTree creates files under root and returns root
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func quietDiagnostics() *utils.DiagnosticSystem {
	var sink bytes.Buffer
	d := utils.NewDiagnosticSystem(utils.DiagnosticDebug)
	d.SetOutput(&sink, &sink)
	return d
}

func testConfig(dirs ...string) Config {
	return Config{
		Directories:      dirs,
		ContractPackage:  models.DefaultContractPackage,
		ContainerPackage: models.DefaultContainerPackage,
		Output:           generator.OutputFileName,
	}
}

func TestConfigFromViper(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := ConfigFromViper(NewViper(), nil)
		require.NoError(t, err)

		assert.Equal(t, []string{"."}, cfg.Directories)
		assert.Equal(t, models.DefaultContractPackage, cfg.ContractPackage)
		assert.Equal(t, models.DefaultContainerPackage, cfg.ContainerPackage)
		assert.Equal(t, generator.OutputFileName, cfg.Output)
		assert.Equal(t, utils.DiagnosticInfo, cfg.DiagnosticLevel())
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("MEDIATORGEN_DRY_RUN", "true")
		t.Setenv("MEDIATORGEN_MODULE", "example.com/env")

		cfg, err := ConfigFromViper(NewViper(), []string{"./..."})
		require.NoError(t, err)
		assert.True(t, cfg.DryRun)
		assert.Equal(t, "example.com/env", cfg.ModuleName)
		assert.Equal(t, []string{"./..."}, cfg.Directories)
	})

	tests := []struct {
		name string
		key  string
		set  func(v map[string]interface{})
	}{
		{"verbose and quiet", KeyQuiet, func(v map[string]interface{}) { v[KeyVerbose] = true; v[KeyQuiet] = true }},
		{"check and dry run", KeyCheck, func(v map[string]interface{}) { v[KeyCheck] = true; v[KeyDryRun] = true }},
		{"invalid module", KeyModule, func(v map[string]interface{}) { v[KeyModule] = "bad module" }},
		{"output with directory", KeyOutput, func(v map[string]interface{}) { v[KeyOutput] = "sub/autogen_handlers.go" }},
		{"output without prefix", KeyOutput, func(v map[string]interface{}) { v[KeyOutput] = "handlers_gen.go" }},
		{"test output", KeyOutput, func(v map[string]interface{}) { v[KeyOutput] = "autogen_handlers_test.go" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := map[string]interface{}{}
			tt.set(values)

			v := NewViper()
			for key, value := range values {
				v.Set(key, value)
			}

			_, err := ConfigFromViper(v, nil)
			require.Error(t, err)
			assert.Equal(t, mederrors.ConfigurationErrorCode, mederrors.CodeOf(err))
			assert.Contains(t, err.Error(), "'"+tt.key+"'")
		})
	}
}

func TestReadConfig(t *testing.T) {
	root := writeTree(t, map[string]string{
		".mediatorgen.yaml": "module: example.com/fromfile\nverbose: true\n",
		"other.yaml":        "output: autogen_other.go\n",
	})

	t.Run("searched in working directory", func(t *testing.T) {
		t.Chdir(root)

		v := NewViper()
		require.NoError(t, ReadConfig(v, ""))

		cfg, err := ConfigFromViper(v, nil)
		require.NoError(t, err)
		assert.Equal(t, "example.com/fromfile", cfg.ModuleName)
		assert.True(t, cfg.Verbose)
	})

	t.Run("explicit file", func(t *testing.T) {
		v := NewViper()
		require.NoError(t, ReadConfig(v, filepath.Join(root, "other.yaml")))
		assert.Equal(t, "autogen_other.go", v.GetString(KeyOutput))
	})

	t.Run("missing file without path is ignored", func(t *testing.T) {
		t.Chdir(t.TempDir())
		assert.NoError(t, ReadConfig(NewViper(), ""))
	})

	t.Run("missing explicit file", func(t *testing.T) {
		err := ReadConfig(NewViper(), filepath.Join(root, "missing.yaml"))
		require.Error(t, err)
		assert.Equal(t, mederrors.ConfigurationErrorCode, mederrors.CodeOf(err))
	})
}

func TestLoadDotEnv(t *testing.T) {
	root := writeTree(t, map[string]string{
		".env": "MEDIATORGEN_CONTRACTS=example.com/contracts\n",
	})

	// Register a restore, then clear the variable so the file can set it
	t.Setenv("MEDIATORGEN_CONTRACTS", "")
	require.NoError(t, os.Unsetenv("MEDIATORGEN_CONTRACTS"))

	require.NoError(t, LoadDotEnv(filepath.Join(root, ".env")))
	assert.NoError(t, LoadDotEnv(filepath.Join(root, "missing.env")))

	cfg, err := ConfigFromViper(NewViper(), nil)
	require.NoError(t, err)
	assert.Equal(t, "example.com/contracts", cfg.ContractPackage)
}

func TestDirectoryScanner_ScanDirectories(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod":               "module example.com/app\n",
		"main.go":              "package main",
		"handlers/ping.go":     "package handlers",
		"handlers/sub/deep.go": "package sub",
		"docs/README.md":       "# docs",
	})

	scanner := NewDirectoryScanner()

	dirs, err := scanner.ScanDirectories([]string{root + "/..."})
	require.NoError(t, err)
	assert.Equal(t, []string{
		root,
		filepath.Join(root, "handlers"),
		filepath.Join(root, "handlers", "sub"),
	}, dirs)

	dirs, err = scanner.ScanDirectories([]string{
		filepath.Join(root, "handlers"),
		filepath.Join(root, "handlers") + "/...",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "handlers"),
		filepath.Join(root, "handlers", "sub"),
	}, dirs)

	t.Run("relative pattern", func(t *testing.T) {
		t.Chdir(root)
		dirs, err := scanner.ScanDirectories([]string{"./handlers/..."})
		require.NoError(t, err)
		assert.Len(t, dirs, 2)
	})

	_, err = scanner.ScanDirectories([]string{filepath.Join(root, "missing")})
	assert.Error(t, err)
}

func TestModuleResolver(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod":                 "module example.com/app\n\ngo 1.25\n",
		"internal/handlers/a.go": "package handlers",
		"nested/go.mod":          "module example.com/nested\n",
		"nested/pkg/b.go":        "package pkg",
	})

	t.Run("from go.mod", func(t *testing.T) {
		resolver := NewModuleResolver("")

		path, err := resolver.ImportPath(root)
		require.NoError(t, err)
		assert.Equal(t, "example.com/app", path)

		path, err = resolver.ImportPath(filepath.Join(root, "internal", "handlers"))
		require.NoError(t, err)
		assert.Equal(t, "example.com/app/internal/handlers", path)

		path, err = resolver.ImportPath(filepath.Join(root, "nested", "pkg"))
		require.NoError(t, err)
		assert.Equal(t, "example.com/nested/pkg", path)
	})

	t.Run("custom module", func(t *testing.T) {
		resolver := NewModuleResolver("github.com/custom/app")

		path, err := resolver.ImportPath(filepath.Join(root, "internal", "handlers"))
		require.NoError(t, err)
		assert.Equal(t, "github.com/custom/app/internal/handlers", path)
	})

	t.Run("outside module root", func(t *testing.T) {
		_, err := BuildPackagePath(ModuleInfo{Path: "example.com/app", Root: filepath.Join(root, "nested")}, root)
		assert.Error(t, err)
	})
}

func TestGenerator_Run(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod":           "module example.com/app\n",
		"handlers/ping.go": pingHandlerSource,
		"util/util.go":     plainSource,
	})
	target := filepath.Join(root, "handlers", generator.OutputFileName)

	gen := NewGenerator(testConfig(root+"/..."), quietDiagnostics())
	require.NoError(t, gen.Run())

	summary := gen.Summary()
	assert.Equal(t, 2, summary.PackagesScanned)
	assert.Equal(t, 1, summary.PackagesSkipped)
	assert.Equal(t, 1, summary.HandlersRegistered)
	assert.Equal(t, []string{target}, summary.FilesWritten)
	assert.NoFileExists(t, filepath.Join(root, "util", generator.OutputFileName))

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), generator.GeneratedHeader)
	assert.Contains(t, string(content), "package handlers")
	assert.Contains(t, string(content),
		"container.AddSingleton(c, func() mediator.RequestHandler[PingRequest, string] { return new(PingHandler) })")

	// A second run finds nothing to change
	require.NoError(t, gen.Run())
	assert.Empty(t, gen.Summary().FilesWritten)
	assert.Equal(t, []string{target}, gen.Summary().FilesUnchanged)
	assert.Equal(t, 1, gen.Summary().Stats()["Files unchanged"])
}

func TestGenerator_Check(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod":           "module example.com/app\n",
		"handlers/ping.go": pingHandlerSource,
	})
	dir := filepath.Join(root, "handlers")
	target := filepath.Join(dir, generator.OutputFileName)

	cfg := testConfig(dir)
	cfg.Check = true

	// Nothing generated yet
	err := NewGenerator(cfg, quietDiagnostics()).Run()
	require.Error(t, err)
	assert.Equal(t, mederrors.StaleOutputErrorCode, mederrors.CodeOf(err))
	assert.NoFileExists(t, target)

	require.NoError(t, NewGenerator(testConfig(dir), quietDiagnostics()).Run())

	gen := NewGenerator(cfg, quietDiagnostics())
	require.NoError(t, gen.Run())
	assert.Equal(t, []string{target}, gen.Summary().FilesUnchanged)

	// Changing the lifetime makes the file stale
	changed := bytes.Replace([]byte(pingHandlerSource), []byte("Singleton"), []byte("Transient"), 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ping.go"), changed, 0644))

	gen = NewGenerator(cfg, quietDiagnostics())
	err = gen.Run()
	require.Error(t, err)
	assert.Equal(t, []string{target}, gen.Summary().StaleFiles)
}

func TestGenerator_DryRun(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod":           "module example.com/app\n",
		"handlers/ping.go": pingHandlerSource,
	})
	dir := filepath.Join(root, "handlers")

	cfg := testConfig(dir)
	cfg.DryRun = true

	var out, diagOut, diagErr bytes.Buffer
	diagnostics := utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	diagnostics.SetOutput(&diagOut, &diagErr)

	gen := NewGenerator(cfg, diagnostics)
	gen.SetOutput(&out)
	require.NoError(t, gen.Run())

	assert.True(t, strings.HasPrefix(out.String(), "// "+filepath.Join(dir, generator.OutputFileName)+"\n"), out.String())
	assert.NotContains(t, out.String(), "[INFO]")
	assert.Empty(t, diagOut.String())
	assert.Contains(t, diagErr.String(), "[INFO] Found 1 packages to process")
	assert.Contains(t, out.String(), "func RegisterHandlers(c *container.Container) *container.Container {")
	assert.NoFileExists(t, filepath.Join(dir, generator.OutputFileName))
}

func TestGenerator_AggregatesPackageErrors(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod":           "module example.com/app\n",
		"broken/broken.go": "package broken\n\nfunc {",
		"handlers/ping.go": pingHandlerSource,
		"mixed/a.go":       "package a",
		"mixed/b.go":       "package b",
	})

	gen := NewGenerator(testConfig(root+"/..."), quietDiagnostics())
	err := gen.Run()
	require.Error(t, err)

	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	for _, e := range errs {
		assert.Equal(t, mederrors.SyntaxErrorCode, mederrors.CodeOf(e))
	}

	// The healthy package is still generated
	assert.FileExists(t, filepath.Join(root, "handlers", generator.OutputFileName))
	assert.Equal(t, 1, gen.Summary().PackagesScanned)
}

func TestGenerator_NoPackages(t *testing.T) {
	root := writeTree(t, map[string]string{"README.md": "# empty"})

	err := NewGenerator(testConfig(root), quietDiagnostics()).Run()
	require.Error(t, err)
	assert.Equal(t, mederrors.FileSystemErrorCode, mederrors.CodeOf(err))
}

func TestGenerator_NoHandlersWarns(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod": "module example.com/app\n",
		"app/app.go": `package app

import "github.com/toyz/mediator/pkg/mediator"

var _ mediator.Mediator = (*mediator.Dispatcher)(nil)
`,
	})

	gen := NewGenerator(testConfig(filepath.Join(root, "app")), quietDiagnostics())
	require.NoError(t, gen.Run())

	assert.Equal(t, 1, gen.Summary().Warnings)
	assert.Equal(t, 0, gen.Summary().HandlersRegistered)
	assert.FileExists(t, filepath.Join(root, "app", generator.OutputFileName))
}

func TestCleaner_CleanGeneratedFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/" + generator.OutputFileName:   generator.GeneratedHeader + "\n\npackage a\n",
		"a/b/" + generator.OutputFileName: generator.GeneratedHeader + "\n\npackage b\n",
		"c/" + generator.OutputFileName:   "package c\n",
		"a/keep.go":                       "package a\n",
	})

	cleaner := NewCleaner(quietDiagnostics())
	removed, err := cleaner.CleanGeneratedFiles([]string{root + "/..."}, "")
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "a", generator.OutputFileName),
		filepath.Join(root, "a", "b", generator.OutputFileName),
	}, removed)
	assert.NoFileExists(t, filepath.Join(root, "a", generator.OutputFileName))
	assert.FileExists(t, filepath.Join(root, "c", generator.OutputFileName))
	assert.FileExists(t, filepath.Join(root, "a", "keep.go"))

	removed, err = cleaner.CleanGeneratedFiles([]string{filepath.Join(root, "a")}, "")
	require.NoError(t, err)
	assert.Empty(t, removed)
}
