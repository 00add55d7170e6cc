// Package mediatorfx wires generated handler registrations into a
// go.uber.org/fx application.
package mediatorfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/toyz/mediator/pkg/container"
	"github.com/toyz/mediator/pkg/mediator"
)

// RegisterFunc adds registrations to a container, usually a generated
// RegisterHandlers function
type RegisterFunc func(c *container.Container) *container.Container

type providerParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    *zap.Logger `optional:"true"`
}

// Module provides a *container.Provider holding every registration made by
// the register functions, plus the Mediator of its root scope. The provider
// is closed when the application stops. A *zap.Logger in the graph is used
// for container logging.
//
// Use Provider.CreateScope for per-request work; the root Mediator resolves
// scoped handlers once for the whole application.
func Module(register ...RegisterFunc) fx.Option {
	return fx.Module("mediator",
		fx.Provide(
			func(p providerParams) *container.Provider {
				c := container.New(container.WithLogger(p.Logger))
				for _, fn := range register {
					if fn != nil {
						c = fn(c)
					}
				}

				provider := c.Build()
				p.Lifecycle.Append(fx.Hook{
					OnStop: func(context.Context) error {
						return provider.Close()
					},
				})
				return provider
			},
			func(p *container.Provider) (mediator.Mediator, error) {
				return mediator.FromResolver(p)
			},
		),
	)
}
