package generator

import (
	"errors"
	"fmt"

	"github.com/toyz/mediator/internal/annotations"
	"github.com/toyz/mediator/internal/models"
	"github.com/toyz/mediator/internal/parser"
)

// Options configures a generation run
type Options struct {
	// ContractPackage is the import path declaring Handler and RequestHandler
	ContractPackage string
	// ContainerPackage is the import path of the container registered into
	ContainerPackage string
}

func (o Options) withDefaults() Options {
	if o.ContractPackage == "" {
		o.ContractPackage = models.DefaultContractPackage
	}
	if o.ContainerPackage == "" {
		o.ContainerPackage = models.DefaultContainerPackage
	}
	return o
}

// Generator runs the collect, classify, emit and report phases over one
// compilation at a time. It keeps no state between runs.
type Generator struct {
	opts Options
}

// New creates a generator
func New(opts Options) *Generator {
	return &Generator{opts: opts.withDefaults()}
}

// Generate is shorthand for New(opts).Generate(comp)
func Generate(comp *models.Compilation, opts Options) (*models.GenerationResult, error) {
	return New(opts).Generate(comp)
}

// Generate produces the registration file for comp. A package that cannot
// see the handler contracts yields an aborted result carrying an Error
// diagnostic and no source; err is reserved for failures rendering the file.
func (g *Generator) Generate(comp *models.Compilation) (*models.GenerationResult, error) {
	if comp == nil {
		return nil, fmt.Errorf("compilation cannot be nil")
	}

	candidates := parser.Collect(comp)

	classifier, err := parser.NewClassifier(comp, models.DefaultContracts(g.opts.ContractPackage))
	if err != nil {
		if errors.Is(err, parser.ErrMissingContracts) {
			return &models.GenerationResult{Diagnostic: ReportMissingContracts(err)}, nil
		}
		return nil, err
	}

	var records []models.RegistrationRecord
	for _, cand := range candidates {
		shapes := classifier.Classify(cand)
		if len(shapes) == 0 {
			continue
		}

		lifetime := annotations.ResolveLifetime(cand.Markers)
		for _, shape := range shapes {
			records = append(records, models.RegistrationRecord{
				Shape:       shape,
				HandlerType: cand.Name,
				Lifetime:    lifetime,
			})
		}
	}

	source, err := NewEmitter(comp.PackageName, comp.ImportPath, g.opts).
		Reserve(parser.PackageScope(comp)...).
		Emit(records)
	if err != nil {
		return nil, fmt.Errorf("failed to emit %s for package %s: %w", OutputFileName, comp.PackageName, err)
	}

	return &models.GenerationResult{
		Records:    records,
		Source:     source,
		Diagnostic: Report(len(records)),
	}, nil
}
