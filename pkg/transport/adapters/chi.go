package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/toyz/mediator/pkg/transport"
)

// ChiAdapter implements transport.Server for the chi router
type ChiAdapter struct {
	router chi.Router
	server *http.Server
}

// NewChiAdapter creates a new chi adapter
func NewChiAdapter(r chi.Router) *ChiAdapter {
	return &ChiAdapter{router: r}
}

// NewDefaultChiAdapter creates a new chi adapter with a fresh router
func NewDefaultChiAdapter() *ChiAdapter {
	return &ChiAdapter{router: chi.NewRouter()}
}

// Handle registers a route with the router
func (ca *ChiAdapter) Handle(method, path string, handler transport.HandlerFunc, middlewares ...transport.MiddlewareFunc) {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	ca.router.Method(method, chiPath(path), convertChiHandler(handler))
}

// Use registers a global middleware with the router. chi requires
// middleware to be added before the first route.
func (ca *ChiAdapter) Use(middleware transport.MiddlewareFunc) {
	ca.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := newChiRequestContext(w, r)
			err := middleware(func(transport.RequestContext) error {
				next.ServeHTTP(w, rc.withValues(r))
				return nil
			})(rc)
			if err != nil {
				_ = transport.WriteError(rc, err)
			}
		})
	})
}

// Start serves the router on addr until Stop is called
func (ca *ChiAdapter) Start(addr string) error {
	ca.server = &http.Server{Addr: addr, Handler: ca.router}
	if err := ca.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down
func (ca *ChiAdapter) Stop(ctx context.Context) error {
	if ca.server == nil {
		return nil
	}
	return ca.server.Shutdown(ctx)
}

// Name returns the adapter name
func (ca *ChiAdapter) Name() string {
	return "Chi"
}

// Router returns the underlying chi router
func (ca *ChiAdapter) Router() chi.Router {
	return ca.router
}

// chiPath converts ":name" segments to chi's "{name}" form
func chiPath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if strings.HasPrefix(segment, ":") && len(segment) > 1 {
			segments[i] = "{" + segment[1:] + "}"
		}
	}
	return strings.Join(segments, "/")
}

func convertChiHandler(handler transport.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := newChiRequestContext(w, r)
		if err := handler(rc); err != nil {
			_ = transport.WriteError(rc, err)
		}
	})
}

type valuesKey struct{}

// requestValues carries Set values across chi middleware, which only see
// the *http.Request
type requestValues struct {
	mu     sync.RWMutex
	values map[string]any
}

// ChiRequestContext implements transport.RequestContext for chi
type ChiRequestContext struct {
	w      http.ResponseWriter
	r      *http.Request
	values *requestValues
}

func newChiRequestContext(w http.ResponseWriter, r *http.Request) *ChiRequestContext {
	values, ok := r.Context().Value(valuesKey{}).(*requestValues)
	if !ok {
		values = &requestValues{values: make(map[string]any)}
	}
	return &ChiRequestContext{w: w, r: r, values: values}
}

// withValues returns r carrying the context's values
func (crc *ChiRequestContext) withValues(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), valuesKey{}, crc.values))
}

// Context returns the request context
func (crc *ChiRequestContext) Context() context.Context {
	return crc.r.Context()
}

// Method returns the HTTP method
func (crc *ChiRequestContext) Method() string {
	return crc.r.Method
}

// Path returns the request path
func (crc *ChiRequestContext) Path() string {
	return crc.r.URL.Path
}

// Param returns a path parameter
func (crc *ChiRequestContext) Param(name string) string {
	return chi.URLParam(crc.r, name)
}

// QueryParam returns a query parameter
func (crc *ChiRequestContext) QueryParam(name string) string {
	return crc.r.URL.Query().Get(name)
}

// Header returns a request header
func (crc *ChiRequestContext) Header(name string) string {
	return crc.r.Header.Get(name)
}

// Bind decodes the JSON body
func (crc *ChiRequestContext) Bind(v any) error {
	if crc.r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(crc.r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Get returns a value stored with Set
func (crc *ChiRequestContext) Get(key string) any {
	crc.values.mu.RLock()
	defer crc.values.mu.RUnlock()
	return crc.values.values[key]
}

// Set stores a value for later middleware and the handler
func (crc *ChiRequestContext) Set(key string, value any) {
	crc.values.mu.Lock()
	defer crc.values.mu.Unlock()
	crc.values.values[key] = value
}

// JSON writes v as the response body
func (crc *ChiRequestContext) JSON(code int, v any) error {
	crc.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	crc.w.WriteHeader(code)
	return json.NewEncoder(crc.w).Encode(v)
}

// NoContent writes an empty response
func (crc *ChiRequestContext) NoContent(code int) error {
	crc.w.WriteHeader(code)
	return nil
}
