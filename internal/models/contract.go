package models

import "go/ast"

const (
	// DefaultContractPackage is the import path declaring Handler and RequestHandler
	DefaultContractPackage = "github.com/toyz/mediator/pkg/mediator"

	// DefaultContainerPackage is the import path of the container generated code registers into
	DefaultContainerPackage = "github.com/toyz/mediator/pkg/container"
)

// ContractKind distinguishes the two handler contract shapes
type ContractKind int

const (
	// FireAndForget is Handler[TRequest]
	FireAndForget ContractKind = iota + 1
	// RequestResponse is RequestHandler[TRequest, TResponse]
	RequestResponse
)

// String returns the string representation of the contract kind
func (k ContractKind) String() string {
	switch k {
	case FireAndForget:
		return "FireAndForget"
	case RequestResponse:
		return "RequestResponse"
	default:
		return "Unknown"
	}
}

// Arity returns the number of type parameters of the contract
func (k ContractKind) Arity() int {
	switch k {
	case FireAndForget:
		return 1
	case RequestResponse:
		return 2
	default:
		return 0
	}
}

// ContractDefinition names one reference contract: the generic interface
// Name declared in the package at ImportPath.
type ContractDefinition struct {
	Kind       ContractKind
	ImportPath string
	Name       string
}

// DefaultContracts returns the two reference contracts declared in importPath
func DefaultContracts(importPath string) []ContractDefinition {
	if importPath == "" {
		importPath = DefaultContractPackage
	}
	return []ContractDefinition{
		{Kind: FireAndForget, ImportPath: importPath, Name: "Handler"},
		{Kind: RequestResponse, ImportPath: importPath, Name: "RequestHandler"},
	}
}

// TypeRef is a type expression lifted out of a source file together with the
// imports its package qualifiers refer to.
type TypeRef struct {
	Expr       ast.Expr          // type expression as written in the source
	Imports    map[string]string // qualifier used in Expr -> import path
	Unresolved []string          // qualifiers used in Expr that match no import
}

// ContractShape is one matched contract instantiation
type ContractShape struct {
	Definition ContractDefinition
	Request    TypeRef
	Response   TypeRef // only set for RequestResponse
}

// Kind returns the shape's contract kind
func (s ContractShape) Kind() ContractKind {
	return s.Definition.Kind
}
