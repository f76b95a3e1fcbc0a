package events

import (
	"context"

	"github.com/yungbote/cinebridge-backend/internal/realtime/bus"
)

// Listen subscribes to topic and hands every message, decoded, to onEvent.
// Malformed messages arrive as KindInvalid.
func Listen(ctx context.Context, b bus.Bus, topic string, onEvent func(Event)) error {
	return b.Subscribe(ctx, topic, func(payload []byte) {
		onEvent(Decode(payload))
	})
}
