package transport

import (
	"net/http"

	"github.com/toyz/mediator/pkg/container"
	"github.com/toyz/mediator/pkg/mediator"
)

// Binder fills the request value from the HTTP request
type Binder func(rc RequestContext, target any) error

// BindBody decodes the JSON body into target
func BindBody(rc RequestContext, target any) error {
	return rc.Bind(target)
}

type endpointOptions struct {
	status      int
	binder      Binder
	middlewares []MiddlewareFunc
}

// Option configures a mounted endpoint
type Option func(*endpointOptions)

// WithStatus sets the status code of successful responses
func WithStatus(code int) Option {
	return func(o *endpointOptions) {
		o.status = code
	}
}

// WithBinder replaces the body binder, e.g. to read path parameters
func WithBinder(binder Binder) Option {
	return func(o *endpointOptions) {
		if binder != nil {
			o.binder = binder
		}
	}
}

// WithMiddleware adds route middleware
func WithMiddleware(middlewares ...MiddlewareFunc) Option {
	return func(o *endpointOptions) {
		o.middlewares = append(o.middlewares, middlewares...)
	}
}

func buildOptions(defaultStatus int, opts []Option) endpointOptions {
	o := endpointOptions{status: defaultStatus, binder: BindBody}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// dispatch opens a scope for one HTTP request, binds the request value and
// hands the request and the scope's mediator to send.
func dispatch[TRequest any](p *container.Provider, binder Binder, rc RequestContext, send func(mediator.Mediator, TRequest) error) error {
	scope := p.CreateScope(rc.Context())
	defer scope.Close()

	var request TRequest
	if err := binder(rc, &request); err != nil {
		he := NewHTTPError(http.StatusBadRequest, "invalid request body")
		he.Internal = err
		return he
	}

	m, err := mediator.FromResolver(scope)
	if err != nil {
		return err
	}

	return send(m, request)
}

// Mount exposes the RequestHandler for TRequest at method and path. Each
// HTTP request gets its own container scope; the response is written as
// JSON.
func Mount[TRequest, TResponse any](s Server, p *container.Provider, method, path string, opts ...Option) {
	o := buildOptions(http.StatusOK, opts)

	s.Handle(method, path, func(rc RequestContext) error {
		return dispatch(p, o.binder, rc, func(m mediator.Mediator, request TRequest) error {
			response, err := mediator.SendRequest[TRequest, TResponse](rc.Context(), m, request)
			if err != nil {
				return err
			}
			return rc.JSON(o.status, response)
		})
	}, o.middlewares...)
}

// MountHandler exposes the fire-and-forget Handler for TRequest at method
// and path. Successful requests answer 204 No Content.
func MountHandler[TRequest any](s Server, p *container.Provider, method, path string, opts ...Option) {
	o := buildOptions(http.StatusNoContent, opts)

	s.Handle(method, path, func(rc RequestContext) error {
		return dispatch(p, o.binder, rc, func(m mediator.Mediator, request TRequest) error {
			if err := mediator.Send(rc.Context(), m, request); err != nil {
				return err
			}
			return rc.NoContent(o.status)
		})
	}, o.middlewares...)
}
