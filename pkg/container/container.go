package container

import (
	"context"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// Factory builds an instance of a service. The resolver is the scope the
// instance is being created for, so factories can pull their own dependencies.
type Factory func(r Resolver) (any, error)

// Resolver looks up service instances by type
type Resolver interface {
	Resolve(serviceType reflect.Type) (any, error)
	Context() context.Context
}

// ResolverAware is implemented by services that need the resolver they were
// created from. SetResolver is called once, right after construction.
type ResolverAware interface {
	SetResolver(r Resolver)
}

type registration struct {
	serviceType reflect.Type
	lifetime    Lifetime
	factory     Factory
}

// Container collects service registrations. Registering the same service
// type twice replaces the earlier binding (last write wins).
type Container struct {
	mu            sync.RWMutex
	registrations map[reflect.Type]*registration
	logger        *zap.Logger
}

// Option configures a Container
type Option func(*Container)

// WithLogger sets the logger used for registration and resolution events
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an empty container
func New(opts ...Option) *Container {
	c := &Container{
		registrations: make(map[reflect.Type]*registration),
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register binds serviceType to factory under the given lifetime and returns
// the container for chaining.
func (c *Container) Register(serviceType reflect.Type, lifetime Lifetime, factory Factory) *Container {
	if !lifetime.Valid() {
		lifetime = Scoped
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.registrations[serviceType]; ok {
		c.logger.Debug("replacing registration",
			zap.Stringer("service", serviceType),
			zap.Stringer("previous_lifetime", existing.lifetime),
			zap.Stringer("lifetime", lifetime))
	}

	c.registrations[serviceType] = &registration{
		serviceType: serviceType,
		lifetime:    lifetime,
		factory:     factory,
	}
	return c
}

// LifetimeOf returns the lifetime serviceType is registered with
func (c *Container) LifetimeOf(serviceType reflect.Type) (Lifetime, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	reg, ok := c.registrations[serviceType]
	if !ok {
		return Scoped, false
	}
	return reg.lifetime, true
}

// Len returns the number of bound service types
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.registrations)
}

// Build snapshots the current registrations into a Provider. Later changes
// to the container do not affect providers that were already built.
func (c *Container) Build() *Provider {
	c.mu.RLock()
	snapshot := make(map[reflect.Type]*registration, len(c.registrations))
	for t, reg := range c.registrations {
		snapshot[t] = reg
	}
	c.mu.RUnlock()

	p := &Provider{
		registrations: snapshot,
		singletons:    newInstanceCache(),
		logger:        c.logger,
	}
	p.root = p.newScope(context.Background())
	return p
}

// AddScoped binds S to factory with the Scoped lifetime
func AddScoped[S any](c *Container, factory func() S) *Container {
	return add(c, Scoped, factory)
}

// AddSingleton binds S to factory with the Singleton lifetime
func AddSingleton[S any](c *Container, factory func() S) *Container {
	return add(c, Singleton, factory)
}

// AddTransient binds S to factory with the Transient lifetime
func AddTransient[S any](c *Container, factory func() S) *Container {
	return add(c, Transient, factory)
}

// Add binds S to a resolver-aware factory with the given lifetime
func Add[S any](c *Container, lifetime Lifetime, factory func(r Resolver) (S, error)) *Container {
	return c.Register(reflect.TypeFor[S](), lifetime, func(r Resolver) (any, error) {
		return factory(r)
	})
}

func add[S any](c *Container, lifetime Lifetime, factory func() S) *Container {
	return c.Register(reflect.TypeFor[S](), lifetime, func(Resolver) (any, error) {
		return factory(), nil
	})
}

// Resolve looks up S in r
func Resolve[S any](r Resolver) (S, error) {
	var zero S
	instance, err := r.Resolve(reflect.TypeFor[S]())
	if err != nil {
		return zero, err
	}
	service, ok := instance.(S)
	if !ok {
		return zero, &ResolutionError{
			ServiceType: reflect.TypeFor[S](),
			Err:         errTypeMismatch(reflect.TypeOf(instance)),
		}
	}
	return service, nil
}
