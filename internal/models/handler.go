package models

import (
	"go/ast"

	"github.com/toyz/mediator/pkg/container"
)

// CandidateType is a struct type declaration that may be a handler
type CandidateType struct {
	Name          string         // type name as declared
	QualifiedName string         // import path (or package name) + "." + Name
	IsAbstract    bool           // true for generic types, which cannot be registered
	Assertions    []InterfaceRef // directly asserted interfaces, in source order
	Markers       []string       // lifetime marker comments from the type's doc, in order
	File          string         // file declaring the type
	Line          int            // line of the type name
}

// InterfaceRef is one compile-time assertion `var _ I = (*T)(nil)` naming an
// interface the candidate implements.
type InterfaceRef struct {
	Type ast.Expr  // asserted interface type expression
	File *ast.File // file containing the assertion, used to resolve qualifiers
	Line int       // line of the assertion
}

// RegistrationRecord binds one contract instantiation to a concrete handler
type RegistrationRecord struct {
	Shape       ContractShape
	HandlerType string // name of the concrete handler type, local to the package
	Lifetime    container.Lifetime
}
