package mediator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyz/mediator/pkg/container"
)

type pingRequest struct{}

type pingHandler struct{}

var _ RequestHandler[pingRequest, string] = (*pingHandler)(nil)

func (h *pingHandler) HandleRequest(ctx context.Context, req pingRequest) (string, error) {
	return "Pong", nil
}

type auditEvent struct {
	Action string
}

type auditHandler struct {
	mu     sync.Mutex
	events []string
}

var _ Handler[auditEvent] = (*auditHandler)(nil)

func (h *auditHandler) Handle(ctx context.Context, event auditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event.Action)
	return nil
}

// dualHandler implements both contract shapes
type dualHandler struct{}

func (dualHandler) Handle(ctx context.Context, event auditEvent) error { return nil }

func (dualHandler) HandleRequest(ctx context.Context, req pingRequest) (string, error) {
	return "dual", nil
}

func registerHandlers(c *container.Container, audit *auditHandler) *container.Container {
	container.AddScoped(c, func() Mediator { return new(Dispatcher) })
	container.AddScoped(c, func() RequestHandler[pingRequest, string] { return new(pingHandler) })
	container.AddSingleton(c, func() Handler[auditEvent] { return audit })
	return c
}

func TestSendRequest_ReturnsHandlerResponse(t *testing.T) {
	provider := registerHandlers(container.New(), &auditHandler{}).Build()
	scope := provider.CreateScope(context.Background())

	m, err := FromResolver(scope)
	require.NoError(t, err)

	response, err := SendRequest[pingRequest, string](context.Background(), m, pingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Pong", response)
}

func TestSend_InvokesHandler(t *testing.T) {
	audit := &auditHandler{}
	provider := registerHandlers(container.New(), audit).Build()

	m, err := FromResolver(provider.CreateScope(context.Background()))
	require.NoError(t, err)

	require.NoError(t, Send(context.Background(), m, auditEvent{Action: "login"}))
	require.NoError(t, Send(context.Background(), m, auditEvent{Action: "logout"}))

	assert.Equal(t, []string{"login", "logout"}, audit.events)
}

func TestSend_ForwardsCancellation(t *testing.T) {
	provider := registerHandlers(container.New(), &auditHandler{}).Build()
	m, err := FromResolver(provider.CreateScope(context.Background()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = Send(ctx, m, auditEvent{Action: "late"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSend_UnregisteredHandler(t *testing.T) {
	provider := registerHandlers(container.New(), &auditHandler{}).Build()
	m, err := FromResolver(provider.CreateScope(context.Background()))
	require.NoError(t, err)

	_, err = SendRequest[auditEvent, string](context.Background(), m, auditEvent{})
	require.Error(t, err)
	assert.True(t, container.IsNotRegistered(err))

	var resErr *container.ResolutionError
	assert.True(t, errors.As(err, &resErr))

	err = Send(context.Background(), m, pingRequest{})
	assert.True(t, container.IsNotRegistered(err))
}

func TestSend_DualShapeHandler(t *testing.T) {
	c := container.New()
	container.AddScoped(c, func() Mediator { return new(Dispatcher) })
	container.AddScoped(c, func() Handler[auditEvent] { return new(dualHandler) })
	container.AddScoped(c, func() RequestHandler[pingRequest, string] { return new(dualHandler) })

	m, err := FromResolver(c.Build().CreateScope(context.Background()))
	require.NoError(t, err)

	assert.NoError(t, Send(context.Background(), m, auditEvent{}))

	response, err := SendRequest[pingRequest, string](context.Background(), m, pingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "dual", response)
}

func TestDispatcher_Unbound(t *testing.T) {
	err := Send(context.Background(), &Dispatcher{}, auditEvent{})
	assert.ErrorIs(t, err, ErrNoResolver)

	_, err = SendRequest[pingRequest, string](context.Background(), nil, pingRequest{})
	assert.ErrorIs(t, err, ErrNoResolver)

	var d *Dispatcher
	assert.Nil(t, d.Resolver())
}

func TestDispatcher_ScopedPerScope(t *testing.T) {
	provider := registerHandlers(container.New(), &auditHandler{}).Build()
	scopeA := provider.CreateScope(context.Background())
	scopeB := provider.CreateScope(context.Background())

	a, err := FromResolver(scopeA)
	require.NoError(t, err)
	b, err := FromResolver(scopeB)
	require.NoError(t, err)

	assert.Same(t, scopeA, a.Resolver())
	assert.Same(t, scopeB, b.Resolver())
}
