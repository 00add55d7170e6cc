package adapters

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/toyz/mediator/pkg/transport"
)

// FiberAdapter wraps a Fiber app to implement transport.Server
type FiberAdapter struct {
	app *fiber.App
}

// NewFiberAdapter creates a Fiber adapter whose error handler reports
// errors in the transport error format
func NewFiberAdapter() *FiberAdapter {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(transport.ErrorResponse{Error: err.Error()})
		},
	})

	return &FiberAdapter{app: app}
}

// NewDefaultFiberAdapter creates a Fiber adapter that recovers from panics
func NewDefaultFiberAdapter() *FiberAdapter {
	adapter := NewFiberAdapter()
	adapter.app.Use(recover.New())
	return adapter
}

// Handle registers a route with the Fiber app
func (fa *FiberAdapter) Handle(method, path string, handler transport.HandlerFunc, middlewares ...transport.MiddlewareFunc) {
	handlers := make([]fiber.Handler, 0, len(middlewares)+1)
	for _, middleware := range middlewares {
		handlers = append(handlers, convertFiberMiddleware(middleware))
	}
	handlers = append(handlers, convertFiberHandler(handler))

	fa.app.Add(method, path, handlers...)
}

// Use registers a global middleware with the Fiber app
func (fa *FiberAdapter) Use(middleware transport.MiddlewareFunc) {
	fa.app.Use(convertFiberMiddleware(middleware))
}

// Start serves on addr until Stop is called
func (fa *FiberAdapter) Start(addr string) error {
	return fa.app.Listen(addr)
}

// Stop gracefully shuts the app down
func (fa *FiberAdapter) Stop(ctx context.Context) error {
	return fa.app.ShutdownWithContext(ctx)
}

// Name returns the adapter name
func (fa *FiberAdapter) Name() string {
	return "Fiber"
}

// App returns the underlying Fiber app
func (fa *FiberAdapter) App() *fiber.App {
	return fa.app
}

func convertFiberHandler(handler transport.HandlerFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc := &FiberRequestContext{ctx: c}
		if err := handler(rc); err != nil {
			return transport.WriteError(rc, err)
		}
		return nil
	}
}

func convertFiberMiddleware(middleware transport.MiddlewareFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		next := func(transport.RequestContext) error {
			return c.Next()
		}

		rc := &FiberRequestContext{ctx: c}
		if err := middleware(next)(rc); err != nil {
			return transport.WriteError(rc, err)
		}
		return nil
	}
}

// FiberRequestContext implements transport.RequestContext for Fiber. It is
// only valid while the handler runs.
type FiberRequestContext struct {
	ctx *fiber.Ctx
}

// Context returns the user context of the request
func (frc *FiberRequestContext) Context() context.Context {
	return frc.ctx.UserContext()
}

// Method returns the HTTP method
func (frc *FiberRequestContext) Method() string {
	return frc.ctx.Method()
}

// Path returns the request path
func (frc *FiberRequestContext) Path() string {
	return frc.ctx.Path()
}

// Param returns a path parameter
func (frc *FiberRequestContext) Param(name string) string {
	return frc.ctx.Params(name)
}

// QueryParam returns a query parameter
func (frc *FiberRequestContext) QueryParam(name string) string {
	return frc.ctx.Query(name)
}

// Header returns a request header
func (frc *FiberRequestContext) Header(name string) string {
	return frc.ctx.Get(name)
}

// Bind decodes the request body according to its content type
func (frc *FiberRequestContext) Bind(v any) error {
	if len(frc.ctx.Body()) == 0 {
		return nil
	}
	return frc.ctx.BodyParser(v)
}

// Get returns a value from the request locals
func (frc *FiberRequestContext) Get(key string) any {
	return frc.ctx.Locals(key)
}

// Set stores a value in the request locals
func (frc *FiberRequestContext) Set(key string, value any) {
	frc.ctx.Locals(key, value)
}

// JSON writes v as the response body
func (frc *FiberRequestContext) JSON(code int, v any) error {
	return frc.ctx.Status(code).JSON(v)
}

// NoContent writes an empty response
func (frc *FiberRequestContext) NoContent(code int) error {
	return frc.ctx.SendStatus(code)
}
