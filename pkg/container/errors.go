package container

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/google/uuid"
)

var (
	// ErrNotRegistered is returned when no binding exists for a service type
	ErrNotRegistered = errors.New("service not registered")

	// ErrScopeClosed is returned when resolving from a closed scope or provider
	ErrScopeClosed = errors.New("scope is closed")

	// ErrNilInstance is returned when a factory produces a nil instance
	ErrNilInstance = errors.New("factory returned nil")
)

// ResolutionError describes a failed lookup of a service type
type ResolutionError struct {
	ServiceType reflect.Type // requested service type
	ScopeID     uuid.UUID    // scope the lookup ran in
	Err         error        // underlying cause
}

// Error implements the error interface
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("container: cannot resolve %s (scope %s): %v", typeName(e.ServiceType), e.ScopeID, e.Err)
}

// Unwrap returns the underlying cause
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// IsNotRegistered reports whether err is a lookup of an unregistered service
func IsNotRegistered(err error) bool {
	return errors.Is(err, ErrNotRegistered)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

type typeMismatchError struct {
	actual reflect.Type
}

func (e *typeMismatchError) Error() string {
	return fmt.Sprintf("instance of type %s does not satisfy the service type", typeName(e.actual))
}

func errTypeMismatch(actual reflect.Type) error {
	return &typeMismatchError{actual: actual}
}
