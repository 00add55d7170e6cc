// Package mediator defines the handler contracts discovered by mediatorgen and
// the dispatcher that routes requests to them.
//
// Handlers declare the contracts they implement with compile-time assertions:
//
//	//mediator::lifetime Singleton
//	type PingHandler struct{}
//
//	var _ mediator.RequestHandler[PingRequest, string] = (*PingHandler)(nil)
//
//	func (h *PingHandler) HandleRequest(ctx context.Context, req PingRequest) (string, error) {
//		return "Pong", nil
//	}
//
// Running mediatorgen over the package writes RegisterHandlers, which binds
// the dispatcher and every handler into a container.Container.
package mediator

import (
	"context"

	"github.com/toyz/mediator/pkg/container"
)

// Handler processes a request that produces no response (fire-and-forget)
type Handler[TRequest any] interface {
	Handle(ctx context.Context, request TRequest) error
}

// RequestHandler processes a request and produces a typed response
type RequestHandler[TRequest, TResponse any] interface {
	HandleRequest(ctx context.Context, request TRequest) (TResponse, error)
}

// Lifetime values usable in //mediator::lifetime markers
const (
	Scoped    = container.Scoped
	Singleton = container.Singleton
	Transient = container.Transient
)
