package mediator

import (
	"context"
	"errors"

	"github.com/toyz/mediator/pkg/container"
)

// ErrNoResolver is returned when a Dispatcher is used before it was bound to
// a container scope.
var ErrNoResolver = errors.New("mediator: dispatcher is not bound to a container")

// Mediator routes requests to the handler registered for their contract
type Mediator interface {
	// Resolver returns the scope handlers are resolved from
	Resolver() container.Resolver
}

// Dispatcher is the Mediator registered by generated code. The container
// binds it to the scope it was resolved from.
type Dispatcher struct {
	resolver container.Resolver
}

// SetResolver implements container.ResolverAware
func (d *Dispatcher) SetResolver(r container.Resolver) {
	d.resolver = r
}

// Resolver implements Mediator
func (d *Dispatcher) Resolver() container.Resolver {
	if d == nil {
		return nil
	}
	return d.resolver
}

// FromResolver resolves the registered Mediator from r
func FromResolver(r container.Resolver) (Mediator, error) {
	return container.Resolve[Mediator](r)
}

// Send dispatches a fire-and-forget request to its Handler. A missing
// registration is returned as a *container.ResolutionError.
func Send[TRequest any](ctx context.Context, m Mediator, request TRequest) error {
	r, err := resolverOf(m)
	if err != nil {
		return err
	}

	handler, err := container.Resolve[Handler[TRequest]](r)
	if err != nil {
		return err
	}

	return handler.Handle(ctx, request)
}

// SendRequest dispatches a request to its RequestHandler and returns the
// handler's response.
func SendRequest[TRequest, TResponse any](ctx context.Context, m Mediator, request TRequest) (TResponse, error) {
	var zero TResponse

	r, err := resolverOf(m)
	if err != nil {
		return zero, err
	}

	handler, err := container.Resolve[RequestHandler[TRequest, TResponse]](r)
	if err != nil {
		return zero, err
	}

	return handler.HandleRequest(ctx, request)
}

func resolverOf(m Mediator) (container.Resolver, error) {
	if m == nil {
		return nil, ErrNoResolver
	}
	r := m.Resolver()
	if r == nil {
		return nil, ErrNoResolver
	}
	return r, nil
}
