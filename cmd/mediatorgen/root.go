package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/toyz/mediator/internal/cli"
	mederrors "github.com/toyz/mediator/internal/errors"
	"github.com/toyz/mediator/internal/utils"
)

// app carries the state shared by the commands of one invocation
type app struct {
	v          *viper.Viper
	configFile string
	envFile    string

	// stdout and stderr replace the process streams when set
	stdout io.Writer
	stderr io.Writer
}

func (a *app) diagnostics(level utils.DiagnosticLevel) *utils.DiagnosticSystem {
	d := utils.NewDiagnosticSystem(level)
	if a.stdout != nil {
		d.SetOutput(a.stdout, a.stderr)
	}
	return d
}

// load reads .env and the config file before any command runs
func (a *app) load(cmd *cobra.Command, args []string) error {
	if err := cli.LoadDotEnv(a.envFile); err != nil {
		return err
	}
	return cli.ReadConfig(a.v, a.configFile)
}

// reportFailure prints err followed by its suggestions
func reportFailure(d *utils.DiagnosticSystem, err error) {
	d.Error("%v", err)
	if suggestions := mederrors.SuggestionsOf(err); len(suggestions) > 0 {
		d.Indent()
		for _, s := range suggestions {
			d.List("%s", s)
		}
		d.Unindent()
	}
}

// bindFlags binds each named flag of set to the viper key of the same name
func bindFlags(v *viper.Viper, set *pflag.FlagSet, keys ...string) error {
	for _, key := range keys {
		if err := v.BindPFlag(key, set.Lookup(key)); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", key, err)
		}
	}
	return nil
}

func newRootCommand(stdout, stderr io.Writer) (*cobra.Command, error) {
	a := &app{v: cli.NewViper(), stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "mediatorgen [directories...]",
		Short: "Generate handler registrations for mediator packages",
		Long: `mediatorgen scans Go packages for types that assert the mediator handler
contracts and writes an autogen_handlers.go file into each package. The file
exposes RegisterHandlers, which binds the dispatcher and every handler into a
container.

Directories may use the Go pattern './...' to include every subdirectory.`,
		Example: `  mediatorgen ./...
  mediatorgen ./internal/handlers
  mediatorgen --check ./...
  mediatorgen --dry-run --verbose ./internal/...
  mediatorgen clean ./...`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
		RunE:              a.runGenerate,
	}
	if stdout != nil {
		root.SetOut(stdout)
		root.SetErr(stderr)
	}

	persistent := root.PersistentFlags()
	persistent.BoolP(cli.KeyVerbose, "v", false, "Enable verbose output and detailed error reporting")
	persistent.BoolP(cli.KeyQuiet, "q", false, "Only show errors")
	persistent.String(cli.KeyOutput, "", "Name of the generated file (default \"autogen_handlers.go\")")
	persistent.StringVar(&a.configFile, "config", "", "Config file (default .mediatorgen.yaml in the working directory)")
	persistent.StringVar(&a.envFile, "env-file", ".env", "Environment file loaded before reading MEDIATORGEN_* variables")

	flags := root.Flags()
	flags.String(cli.KeyModule, "", "Module path for import resolution (defaults to the go.mod module)")
	flags.String(cli.KeyContracts, "", "Import path declaring Handler and RequestHandler")
	flags.String(cli.KeyContainer, "", "Import path of the registration container")
	flags.Bool(cli.KeyCheck, false, "Fail when a generated file is missing or out of date instead of writing it")
	flags.Bool(cli.KeyDryRun, false, "Print generated files instead of writing them")

	if err := bindFlags(a.v, persistent, cli.KeyVerbose, cli.KeyQuiet, cli.KeyOutput); err != nil {
		return nil, err
	}
	if err := bindFlags(a.v, flags, cli.KeyModule, cli.KeyContracts, cli.KeyContainer, cli.KeyCheck, cli.KeyDryRun); err != nil {
		return nil, err
	}

	root.AddCommand(newCleanCommand(a))
	return root, nil
}

func (a *app) runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := cli.ConfigFromViper(a.v, args)
	if err != nil {
		reportFailure(a.diagnostics(utils.DiagnosticError), err)
		return err
	}

	diagnostics := a.diagnostics(cfg.DiagnosticLevel())
	gen := cli.NewGenerator(cfg, diagnostics)
	gen.SetOutput(cmd.OutOrStdout())

	if !cfg.DryRun {
		diagnostics.Section("Mediator Code Generator")
	}
	if cfg.Verbose {
		diagnostics.Subsection("Configuration")
		diagnostics.List("Directories: %v", cfg.Directories)
		if cfg.ModuleName != "" {
			diagnostics.List("Module: %s", cfg.ModuleName)
		}
		diagnostics.List("Contracts: %s", cfg.ContractPackage)
		diagnostics.List("Container: %s", cfg.ContainerPackage)
		diagnostics.List("Output: %s", cfg.Output)
	}

	runErr := gen.Run()

	summary := gen.Summary()
	if !cfg.DryRun {
		diagnostics.Summary("Generation Complete!", summary.Stats())
	}
	if cfg.Verbose && len(summary.FilesWritten) > 0 {
		diagnostics.Subsection("Generated Files")
		for _, file := range summary.FilesWritten {
			diagnostics.List("%s", file)
		}
	}
	if cfg.Check && len(summary.StaleFiles) > 0 {
		diagnostics.Error("%d generated files are out of date; run mediatorgen to update them", len(summary.StaleFiles))
	}

	return runErr
}
