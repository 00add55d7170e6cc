package mediatorfx

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/toyz/mediator/pkg/container"
	"github.com/toyz/mediator/pkg/mediator"
)

type shout struct{ Text string }

type shoutHandler struct{}

func (h *shoutHandler) HandleRequest(ctx context.Context, s shout) (string, error) {
	return strings.ToUpper(s.Text), nil
}

func registerShout(c *container.Container) *container.Container {
	container.AddScoped(c, func() mediator.Mediator { return new(mediator.Dispatcher) })
	container.AddScoped(c, func() mediator.RequestHandler[shout, string] { return new(shoutHandler) })
	return c
}

func TestModule(t *testing.T) {
	var (
		m        mediator.Mediator
		provider *container.Provider
	)

	app := fxtest.New(t,
		fx.NopLogger,
		Module(registerShout),
		fx.Populate(&m, &provider),
	)
	app.RequireStart()

	got, err := mediator.SendRequest[shout, string](context.Background(), m, shout{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "HI", got)

	scope := provider.CreateScope(context.Background())
	scoped, err := mediator.FromResolver(scope)
	require.NoError(t, err)
	got, err = mediator.SendRequest[shout, string](context.Background(), scoped, shout{Text: "scoped"})
	require.NoError(t, err)
	assert.Equal(t, "SCOPED", got)
	require.NoError(t, scope.Close())

	app.RequireStop()

	_, err = mediator.SendRequest[shout, string](context.Background(), m, shout{Text: "late"})
	assert.ErrorIs(t, err, container.ErrScopeClosed)
}

func TestModule_UsesLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	var m mediator.Mediator
	app := fxtest.New(t,
		fx.NopLogger,
		fx.Supply(zap.New(core)),
		Module(registerShout, nil),
		fx.Populate(&m),
	)
	defer app.RequireStart().RequireStop()

	_, err := mediator.SendRequest[shout, string](context.Background(), m, shout{Text: "log"})
	require.NoError(t, err)

	assert.NotZero(t, logs.FilterMessage("resolved service").Len())
}
