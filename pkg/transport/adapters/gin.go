package adapters

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/toyz/mediator/pkg/transport"
)

// GinAdapter implements transport.Server for the Gin framework
type GinAdapter struct {
	engine *gin.Engine
	server *http.Server
}

// NewGinAdapter creates a new Gin adapter
func NewGinAdapter(g *gin.Engine) *GinAdapter {
	return &GinAdapter{engine: g}
}

// NewDefaultGinAdapter creates a new Gin adapter with a bare Gin engine
func NewDefaultGinAdapter() *GinAdapter {
	return &GinAdapter{engine: gin.New()}
}

// Handle registers a route with the Gin engine
func (ga *GinAdapter) Handle(method, path string, handler transport.HandlerFunc, middlewares ...transport.MiddlewareFunc) {
	handlers := make([]gin.HandlerFunc, 0, len(middlewares)+1)
	for _, middleware := range middlewares {
		handlers = append(handlers, ga.convertMiddleware(middleware))
	}
	handlers = append(handlers, ga.convertHandler(handler))

	ga.engine.Handle(method, ginPath(path), handlers...)
}

// Use registers a global middleware with the Gin engine
func (ga *GinAdapter) Use(middleware transport.MiddlewareFunc) {
	ga.engine.Use(ga.convertMiddleware(middleware))
}

// Start serves the engine on addr until Stop is called
func (ga *GinAdapter) Start(addr string) error {
	ga.server = &http.Server{Addr: addr, Handler: ga.engine}
	if err := ga.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down
func (ga *GinAdapter) Stop(ctx context.Context) error {
	if ga.server == nil {
		return nil
	}
	return ga.server.Shutdown(ctx)
}

// Name returns the adapter name
func (ga *GinAdapter) Name() string {
	return "Gin"
}

// Engine returns the underlying Gin engine
func (ga *GinAdapter) Engine() *gin.Engine {
	return ga.engine
}

// ginPath converts "/*" wildcards to Gin's named catch-all
func ginPath(path string) string {
	if strings.HasSuffix(path, "/*") {
		return path + "path"
	}
	return path
}

func (ga *GinAdapter) convertHandler(handler transport.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc := &GinRequestContext{ctx: c}
		if err := handler(rc); err != nil {
			_ = transport.WriteError(rc, err)
		}
	}
}

func (ga *GinAdapter) convertMiddleware(middleware transport.MiddlewareFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc := &GinRequestContext{ctx: c}

		next := func(transport.RequestContext) error {
			c.Next()
			return nil
		}

		if err := middleware(next)(rc); err != nil {
			_ = transport.WriteError(rc, err)
			c.Abort()
		}
	}
}

// GinRequestContext implements transport.RequestContext for Gin
type GinRequestContext struct {
	ctx *gin.Context
}

// Context returns the request context
func (grc *GinRequestContext) Context() context.Context {
	return grc.ctx.Request.Context()
}

// Method returns the HTTP method
func (grc *GinRequestContext) Method() string {
	return grc.ctx.Request.Method
}

// Path returns the request path
func (grc *GinRequestContext) Path() string {
	return grc.ctx.Request.URL.Path
}

// Param returns a path parameter
func (grc *GinRequestContext) Param(name string) string {
	if name == "*" {
		return strings.TrimPrefix(grc.ctx.Param("path"), "/")
	}
	return grc.ctx.Param(name)
}

// QueryParam returns a query parameter
func (grc *GinRequestContext) QueryParam(name string) string {
	return grc.ctx.Query(name)
}

// Header returns a request header
func (grc *GinRequestContext) Header(name string) string {
	return grc.ctx.GetHeader(name)
}

// Bind decodes the JSON body
func (grc *GinRequestContext) Bind(v any) error {
	if grc.ctx.Request.ContentLength == 0 {
		return nil
	}
	return grc.ctx.ShouldBindJSON(v)
}

// Get returns a value from the context
func (grc *GinRequestContext) Get(key string) any {
	value, _ := grc.ctx.Get(key)
	return value
}

// Set stores a value in the context
func (grc *GinRequestContext) Set(key string, value any) {
	grc.ctx.Set(key, value)
}

// JSON writes v as the response body
func (grc *GinRequestContext) JSON(code int, v any) error {
	grc.ctx.JSON(code, v)
	return nil
}

// NoContent writes an empty response
func (grc *GinRequestContext) NoContent(code int) error {
	grc.ctx.Status(code)
	return nil
}
