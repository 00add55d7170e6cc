package generator

import (
	"bytes"
	"fmt"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/toyz/mediator/internal/models"
	"github.com/toyz/mediator/pkg/container"
)

// OutputFileName is the name of the file written next to each package
const OutputFileName = "autogen_handlers.go"

// RegisterFuncName is the entry point exposed by the generated file
const RegisterFuncName = "RegisterHandlers"

// GeneratedHeader is the first line of every generated file
const GeneratedHeader = "// Code generated by mediatorgen. DO NOT EDIT."

const handlersTemplate = GeneratedHeader + `

package {{.PackageName}}

{{- if .Imports}}

import (
{{- range .Imports}}{{if .Break}}
{{end}}
	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{- end}}
)
{{- end}}

// {{.FuncName}} registers the mediator and every handler declared in this
// package with c and returns c.
func {{.FuncName}}({{.Param}} *{{.Container}}Container) *{{.Container}}Container {
	{{.Container}}AddScoped({{.Param}}, func() {{.Mediator}}Mediator { return new({{.Mediator}}Dispatcher) })
{{- range .Registrations}}
	{{$.Container}}{{.Method}}({{$.Param}}, func() {{.Service}} { return new({{.Handler}}) })
{{- end}}
	return {{.Param}}
}
`

var fileTemplate = template.Must(template.New("handlers").Parse(handlersTemplate))

// registration is one rendered registration statement
type registration struct {
	Method  string // container function selected by the lifetime
	Service string // contract instantiation the handler is bound to
	Handler string // concrete handler type
}

type fileData struct {
	PackageName   string
	FuncName      string
	Param         string // name of the container parameter
	Imports       []importSpec
	Container     string // qualifier of the container package, with the dot
	Mediator      string // qualifier of the contract package, with the dot
	Registrations []registration
}

// Emitter renders registration records into a Go source file
type Emitter struct {
	packageName      string
	importPath       string
	contractPackage  string
	containerPackage string
	reserved         []string
}

// NewEmitter creates an emitter for the package packageName at importPath
func NewEmitter(packageName, importPath string, opts Options) *Emitter {
	opts = opts.withDefaults()
	return &Emitter{
		packageName:      packageName,
		importPath:       importPath,
		contractPackage:  opts.ContractPackage,
		containerPackage: opts.ContainerPackage,
	}
}

// Reserve marks identifiers declared at package level so generated import
// names and the container parameter do not collide with them.
func (e *Emitter) Reserve(names ...string) *Emitter {
	e.reserved = append(e.reserved, names...)
	return e
}

// Emit renders the registration file. The dispatcher registration always
// comes first, followed by one statement per record in order.
func (e *Emitter) Emit(records []models.RegistrationRecord) ([]byte, error) {
	im := newImportManager(e.importPath)
	im.reserve(e.reserved...)
	param := im.unused("c")
	im.reserve(param)

	data := fileData{
		PackageName: e.packageName,
		FuncName:    RegisterFuncName,
		Param:       param,
		Container:   im.qualifier(e.containerPackage),
		Mediator:    im.qualifier(e.contractPackage),
	}

	for _, record := range records {
		reg, err := e.render(record, im)
		if err != nil {
			return nil, fmt.Errorf("failed to render registration for %s: %w", record.HandlerType, err)
		}
		data.Registrations = append(data.Registrations, reg)
	}
	data.Imports = im.specs()

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	formatted, err := imports.Process(OutputFileName, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to format generated code: %w\n%s", err, buf.String())
	}

	return formatted, nil
}

func (e *Emitter) render(record models.RegistrationRecord, im *importManager) (registration, error) {
	def := record.Shape.Definition

	request, err := renderType(record.Shape.Request, im)
	if err != nil {
		return registration{}, err
	}

	args := request
	if def.Kind == models.RequestResponse {
		response, err := renderType(record.Shape.Response, im)
		if err != nil {
			return registration{}, err
		}
		args += ", " + response
	}

	return registration{
		Method:  registrationMethod(record.Lifetime),
		Service: fmt.Sprintf("%s%s[%s]", im.qualifier(def.ImportPath), def.Name, args),
		Handler: record.HandlerType,
	}, nil
}

// registrationMethod selects the container function for a lifetime
func registrationMethod(lifetime container.Lifetime) string {
	switch lifetime {
	case container.Singleton:
		return "AddSingleton"
	case container.Transient:
		return "AddTransient"
	default:
		return "AddScoped"
	}
}
