// Package transport exposes mediator requests as HTTP endpoints. Adapters in
// the adapters subpackage bind the Server interface to gin, echo, fiber and
// chi.
package transport

import (
	"context"
	"errors"
	"net/http"

	"github.com/toyz/mediator/pkg/container"
)

// Server is the framework-agnostic surface endpoints are mounted on
type Server interface {
	// Handle registers handler for method and path. Path parameters use the
	// ":name" form and are translated by the adapter.
	Handle(method, path string, handler HandlerFunc, middlewares ...MiddlewareFunc)

	// Use registers a middleware for every route
	Use(middleware MiddlewareFunc)

	// Start listens on addr and serves until Stop is called
	Start(addr string) error
	Stop(ctx context.Context) error

	// Name returns the adapter name
	Name() string
}

// RequestContext provides a framework-agnostic view of one HTTP request
type RequestContext interface {
	// Context is cancelled when the client goes away
	Context() context.Context

	Method() string
	Path() string
	Param(name string) string
	QueryParam(name string) string
	Header(name string) string

	// Bind decodes the JSON body into v. An empty body leaves v untouched.
	Bind(v any) error

	// Get and Set carry values from middleware to handlers
	Get(key string) any
	Set(key string, value any)

	JSON(code int, v any) error
	NoContent(code int) error
}

// HandlerFunc defines the signature for HTTP handlers
type HandlerFunc func(RequestContext) error

// MiddlewareFunc defines the signature for middleware
type MiddlewareFunc func(HandlerFunc) HandlerFunc

// HTTPError is an error with the status code it should be reported with
type HTTPError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Internal error  `json:"-"`
}

// Error makes HTTPError implement the error interface
func (he *HTTPError) Error() string {
	if he.Internal != nil {
		return he.Message + ": " + he.Internal.Error()
	}
	return he.Message
}

// Unwrap returns the internal error
func (he *HTTPError) Unwrap() error {
	return he.Internal
}

// NewHTTPError creates an HTTPError. The message defaults to the status text.
func NewHTTPError(code int, message ...string) *HTTPError {
	he := &HTTPError{Code: code, Message: http.StatusText(code)}
	if len(message) > 0 {
		he.Message = message[0]
	}
	return he
}

// ErrorResponse is the body written for failed requests
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusOf returns the status code err should be reported with
func StatusOf(err error) int {
	var he *HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case container.IsNotRegistered(err):
		return http.StatusNotImplemented
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError reports err on rc. Adapters call it for errors returned by
// handlers.
func WriteError(rc RequestContext, err error) error {
	code := StatusOf(err)

	message := err.Error()
	var he *HTTPError
	if errors.As(err, &he) {
		message = he.Message
	} else if code == http.StatusInternalServerError {
		message = http.StatusText(code)
	}

	return rc.JSON(code, ErrorResponse{Error: message})
}
