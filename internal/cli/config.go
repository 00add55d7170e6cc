package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	mederrors "github.com/toyz/mediator/internal/errors"
	"github.com/toyz/mediator/internal/generator"
	"github.com/toyz/mediator/internal/models"
	"github.com/toyz/mediator/internal/utils"
)

// Configuration keys shared by flags, the config file and the environment
const (
	KeyModule    = "module"
	KeyContracts = "contracts"
	KeyContainer = "container"
	KeyOutput    = "output"
	KeyVerbose   = "verbose"
	KeyQuiet     = "quiet"
	KeyCheck     = "check"
	KeyDryRun    = "dry-run"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. MEDIATORGEN_DRY_RUN
	EnvPrefix = "MEDIATORGEN"
	// ConfigName is the config file searched for in the working directory
	ConfigName = ".mediatorgen"
)

// Config holds the configuration for the CLI generator
type Config struct {
	// Directories is the list of directories to scan, "./..." patterns included
	Directories []string

	// ModuleName overrides the module path read from go.mod
	ModuleName string

	// ContractPackage is the import path declaring the handler contracts
	ContractPackage string

	// ContainerPackage is the import path of the registration container
	ContainerPackage string

	// Output is the file name written into each package
	Output string

	// Verbose enables detailed logging and error reporting
	Verbose bool

	// Quiet only reports errors
	Quiet bool

	// Check fails instead of writing when a generated file is out of date
	Check bool

	// DryRun prints generated files to stdout instead of writing them
	DryRun bool
}

// GeneratorOptions returns the pipeline options for this configuration
func (c Config) GeneratorOptions() generator.Options {
	return generator.Options{
		ContractPackage:  c.ContractPackage,
		ContainerPackage: c.ContainerPackage,
	}
}

// DiagnosticLevel maps the verbosity flags to a diagnostic level
func (c Config) DiagnosticLevel() utils.DiagnosticLevel {
	switch {
	case c.Quiet:
		return utils.DiagnosticError
	case c.Verbose:
		return utils.DiagnosticVerbose
	default:
		return utils.DiagnosticInfo
	}
}

// Validate checks flag combinations and values
func (c Config) Validate() error {
	if c.Verbose && c.Quiet {
		return mederrors.ConfigurationError(KeyQuiet, "--quiet cannot be combined with --verbose")
	}
	if c.Check && c.DryRun {
		return mederrors.ConfigurationError(KeyCheck, "--check cannot be combined with --dry-run")
	}
	if c.ModuleName != "" {
		if err := utils.ValidateModulePath(c.ModuleName); err != nil {
			return mederrors.ConfigurationError(KeyModule, "invalid import path").WithCause(err)
		}
	}
	if err := utils.ValidateModulePath(c.ContractPackage); err != nil {
		return mederrors.ConfigurationError(KeyContracts, "invalid import path").WithCause(err)
	}
	if err := utils.ValidateModulePath(c.ContainerPackage); err != nil {
		return mederrors.ConfigurationError(KeyContainer, "invalid import path").WithCause(err)
	}

	// The output must keep the generated prefix so later runs skip it when
	// loading the package.
	if filepath.Base(c.Output) != c.Output ||
		!strings.HasSuffix(c.Output, ".go") ||
		strings.HasSuffix(c.Output, "_test.go") ||
		!strings.HasPrefix(c.Output, utils.GeneratedFilePrefix) {
		return mederrors.ConfigurationError(KeyOutput, "output must be a file name of the form "+utils.GeneratedFilePrefix+"*.go").
			WithSuggestions("Use the default " + generator.OutputFileName)
	}
	return nil
}

// NewViper returns a viper instance with defaults and environment binding
// for every configuration key.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyContracts, models.DefaultContractPackage)
	v.SetDefault(KeyContainer, models.DefaultContainerPackage)
	v.SetDefault(KeyOutput, generator.OutputFileName)
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyQuiet, false)
	v.SetDefault(KeyCheck, false)
	v.SetDefault(KeyDryRun, false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	return v
}

// ReadConfig reads the config file. An explicit path must exist; without one
// the working directory is searched and a missing file is not an error.
func ReadConfig(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return mederrors.ConfigurationError("config", "cannot read config file").WithCause(err)
	}
	return nil
}

// LoadDotEnv loads environment overrides from path when it exists
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return mederrors.WrapFileSystemError("stat", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return mederrors.ConfigurationError("env", "cannot load "+path).WithCause(err)
	}
	return nil
}

// ConfigFromViper builds a validated Config from v and the directory
// arguments. No arguments means the current directory.
func ConfigFromViper(v *viper.Viper, dirs []string) (Config, error) {
	if len(dirs) == 0 {
		dirs = []string{"."}
	}

	cfg := Config{
		Directories:      dirs,
		ModuleName:       strings.TrimSpace(v.GetString(KeyModule)),
		ContractPackage:  strings.TrimSpace(v.GetString(KeyContracts)),
		ContainerPackage: strings.TrimSpace(v.GetString(KeyContainer)),
		Output:           strings.TrimSpace(v.GetString(KeyOutput)),
		Verbose:          v.GetBool(KeyVerbose),
		Quiet:            v.GetBool(KeyQuiet),
		Check:            v.GetBool(KeyCheck),
		DryRun:           v.GetBool(KeyDryRun),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
