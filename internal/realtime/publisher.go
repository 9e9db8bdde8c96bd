package realtime

import (
	"context"

	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

// Relay carries messages to every API instance (see bus.Bus).
type Relay interface {
	Publish(ctx context.Context, msg SSEMessage) error
}

type Publisher interface {
	Publish(ctx context.Context, msgs ...SSEMessage)
}

type publisher struct {
	log   *logger.Logger
	hub   *SSEHub
	relay Relay
}

// NewPublisher broadcasts through relay when set, and straight to the local hub otherwise.
// When a relay is used the hub receives messages back through the bus forwarder.
func NewPublisher(log *logger.Logger, hub *SSEHub, relay Relay) Publisher {
	return &publisher{log: log.With("component", "SSEPublisher"), hub: hub, relay: relay}
}

func (p *publisher) Publish(ctx context.Context, msgs ...SSEMessage) {
	for _, m := range msgs {
		if p.relay == nil {
			if p.hub != nil {
				p.hub.Broadcast(m)
			}
			continue
		}
		if err := p.relay.Publish(ctx, m); err != nil {
			p.log.Warn("Relay publish failed; delivering locally", "channel", m.Channel, "error", err)
			if p.hub != nil {
				p.hub.Broadcast(m)
			}
		}
	}
}
