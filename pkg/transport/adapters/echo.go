package adapters

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/toyz/mediator/pkg/transport"
)

// EchoAdapter implements transport.Server for the Echo framework
type EchoAdapter struct {
	echo *echo.Echo
}

// NewEchoAdapter creates a new Echo adapter
func NewEchoAdapter(e *echo.Echo) *EchoAdapter {
	return &EchoAdapter{echo: e}
}

// NewDefaultEchoAdapter creates a new Echo adapter with a default Echo instance
func NewDefaultEchoAdapter() *EchoAdapter {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return &EchoAdapter{echo: e}
}

// Handle registers a route with the Echo server
func (ea *EchoAdapter) Handle(method, path string, handler transport.HandlerFunc, middlewares ...transport.MiddlewareFunc) {
	echoMiddlewares := make([]echo.MiddlewareFunc, 0, len(middlewares))
	for _, middleware := range middlewares {
		echoMiddlewares = append(echoMiddlewares, ea.convertMiddleware(middleware))
	}

	ea.echo.Add(method, path, ea.convertHandler(handler), echoMiddlewares...)
}

// Use registers a global middleware with the Echo server
func (ea *EchoAdapter) Use(middleware transport.MiddlewareFunc) {
	ea.echo.Use(ea.convertMiddleware(middleware))
}

// Start serves on addr until Stop is called
func (ea *EchoAdapter) Start(addr string) error {
	if err := ea.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down
func (ea *EchoAdapter) Stop(ctx context.Context) error {
	return ea.echo.Shutdown(ctx)
}

// Name returns the adapter name
func (ea *EchoAdapter) Name() string {
	return "Echo"
}

// Echo returns the underlying Echo instance
func (ea *EchoAdapter) Echo() *echo.Echo {
	return ea.echo
}

func (ea *EchoAdapter) convertHandler(handler transport.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		rc := &EchoRequestContext{context: c}
		if err := handler(rc); err != nil {
			return transport.WriteError(rc, err)
		}
		return nil
	}
}

func (ea *EchoAdapter) convertMiddleware(middleware transport.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			transportNext := func(transport.RequestContext) error {
				return next(c)
			}

			rc := &EchoRequestContext{context: c}
			if err := middleware(transportNext)(rc); err != nil {
				return transport.WriteError(rc, err)
			}
			return nil
		}
	}
}

// EchoRequestContext implements transport.RequestContext for Echo
type EchoRequestContext struct {
	context echo.Context
}

// Context returns the request context
func (erc *EchoRequestContext) Context() context.Context {
	return erc.context.Request().Context()
}

// Method returns the HTTP method
func (erc *EchoRequestContext) Method() string {
	return erc.context.Request().Method
}

// Path returns the request path
func (erc *EchoRequestContext) Path() string {
	return erc.context.Request().URL.Path
}

// Param returns a path parameter
func (erc *EchoRequestContext) Param(name string) string {
	return erc.context.Param(name)
}

// QueryParam returns a query parameter
func (erc *EchoRequestContext) QueryParam(name string) string {
	return erc.context.QueryParam(name)
}

// Header returns a request header
func (erc *EchoRequestContext) Header(name string) string {
	return erc.context.Request().Header.Get(name)
}

// Bind decodes the request body according to its content type
func (erc *EchoRequestContext) Bind(v any) error {
	binder := &echo.DefaultBinder{}
	return binder.BindBody(erc.context, v)
}

// Get returns a value from the context
func (erc *EchoRequestContext) Get(key string) any {
	return erc.context.Get(key)
}

// Set stores a value in the context
func (erc *EchoRequestContext) Set(key string, value any) {
	erc.context.Set(key, value)
}

// JSON writes v as the response body
func (erc *EchoRequestContext) JSON(code int, v any) error {
	return erc.context.JSON(code, v)
}

// NoContent writes an empty response
func (erc *EchoRequestContext) NoContent(code int) error {
	return erc.context.NoContent(code)
}
