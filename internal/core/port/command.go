package port

import (
	"context"
	"hyperbot/internal/core/domain"
)

type Handler interface {
	// Respond handles one inbound message on behalf of a registered command or listener. conn is the
	// transport the message arrived on; the transport-native envelope is reachable through msg.Raw.
	Respond(ctx context.Context, conn Transport, msg *domain.Message, dc *domain.DispatchContext) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, conn Transport, msg *domain.Message, dc *domain.DispatchContext) error

func (f HandlerFunc) Respond(ctx context.Context, conn Transport, msg *domain.Message,
	dc *domain.DispatchContext) error {
	return f(ctx, conn, msg, dc)
}
