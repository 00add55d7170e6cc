package container

import (
	"context"
	"io"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// instanceCache holds lazily created instances keyed by registration. Each
// slot has its own lock so a factory may resolve other services while its
// own instance is being built.
type instanceCache struct {
	mu    sync.Mutex
	slots map[*registration]*instanceSlot
	order []*instanceSlot
}

type instanceSlot struct {
	mu       sync.Mutex
	done     bool
	instance any
}

func newInstanceCache() *instanceCache {
	return &instanceCache{slots: make(map[*registration]*instanceSlot)}
}

func (c *instanceCache) slot(reg *registration) *instanceSlot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[reg]
	if !ok {
		s = &instanceSlot{}
		c.slots[reg] = s
		c.order = append(c.order, s)
	}
	return s
}

func (c *instanceCache) getOrCreate(reg *registration, create func() (any, error)) (any, error) {
	s := c.slot(reg)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return s.instance, nil
	}
	instance, err := create()
	if err != nil {
		return nil, err
	}
	s.instance = instance
	s.done = true
	return instance, nil
}

// close releases cached instances that implement io.Closer, newest first
func (c *instanceCache) close() error {
	c.mu.Lock()
	slots := c.order
	c.order = nil
	c.slots = make(map[*registration]*instanceSlot)
	c.mu.Unlock()

	var err error
	for i := len(slots) - 1; i >= 0; i-- {
		if closer, ok := slots[i].instance.(io.Closer); ok {
			err = multierr.Append(err, closer.Close())
		}
	}
	return err
}

// Provider resolves services from a built container. Singletons live on the
// provider; the provider itself also acts as the root scope.
type Provider struct {
	registrations map[reflect.Type]*registration
	singletons    *instanceCache
	root          *Scope
	logger        *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// CreateScope starts a new scope bound to ctx. Scoped services resolved from
// it are shared within the scope only.
func (p *Provider) CreateScope(ctx context.Context) *Scope {
	if ctx == nil {
		ctx = context.Background()
	}
	return p.newScope(ctx)
}

// Resolve looks up serviceType in the root scope
func (p *Provider) Resolve(serviceType reflect.Type) (any, error) {
	return p.root.Resolve(serviceType)
}

// Context returns the root scope context
func (p *Provider) Context() context.Context {
	return p.root.Context()
}

// Close releases the root scope and all singletons. Resolving after Close
// fails with ErrScopeClosed.
func (p *Provider) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	return multierr.Combine(p.root.Close(), p.singletons.close())
}

func (p *Provider) isClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

func (p *Provider) newScope(ctx context.Context) *Scope {
	return &Scope{
		id:        uuid.New(),
		ctx:       ctx,
		provider:  p,
		instances: newInstanceCache(),
	}
}

// Scope is a unit of work, typically one request. It is safe for
// concurrent use.
type Scope struct {
	id        uuid.UUID
	ctx       context.Context
	provider  *Provider
	instances *instanceCache

	mu     sync.RWMutex
	closed bool
}

// ID returns the scope identifier
func (s *Scope) ID() uuid.UUID {
	return s.id
}

// Context returns the context the scope was created with
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Resolve looks up serviceType, creating the instance according to its
// lifetime.
func (s *Scope) Resolve(serviceType reflect.Type) (any, error) {
	if s.isClosed() || s.provider.isClosed() {
		return nil, s.fail(serviceType, ErrScopeClosed)
	}

	reg, ok := s.provider.registrations[serviceType]
	if !ok {
		return nil, s.fail(serviceType, ErrNotRegistered)
	}

	var (
		instance any
		err      error
	)
	switch reg.lifetime {
	case Singleton:
		root := s.provider.root
		instance, err = s.provider.singletons.getOrCreate(reg, func() (any, error) {
			return root.build(reg)
		})
	case Transient:
		instance, err = s.build(reg)
	default:
		instance, err = s.instances.getOrCreate(reg, func() (any, error) {
			return s.build(reg)
		})
	}
	if err != nil {
		return nil, err
	}

	s.provider.logger.Debug("resolved service",
		zap.Stringer("service", serviceType),
		zap.Stringer("lifetime", reg.lifetime),
		zap.String("scope", s.id.String()))

	return instance, nil
}

// Close releases scoped instances that implement io.Closer
func (s *Scope) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	return s.instances.close()
}

func (s *Scope) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Scope) build(reg *registration) (any, error) {
	instance, err := reg.factory(s)
	if err != nil {
		return nil, s.fail(reg.serviceType, err)
	}
	if instance == nil {
		return nil, s.fail(reg.serviceType, ErrNilInstance)
	}
	if actual := reflect.TypeOf(instance); !actual.AssignableTo(reg.serviceType) {
		return nil, s.fail(reg.serviceType, errTypeMismatch(actual))
	}
	if aware, ok := instance.(ResolverAware); ok {
		aware.SetResolver(s)
	}
	return instance, nil
}

func (s *Scope) fail(serviceType reflect.Type, err error) error {
	return &ResolutionError{ServiceType: serviceType, ScopeID: s.id, Err: err}
}
