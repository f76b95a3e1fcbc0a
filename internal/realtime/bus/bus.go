package bus

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("event bus closed")

// Bus is the broker client the event publisher hands encoded messages to.
// Topics map onto broker channels; payloads are opaque bytes.
type Bus interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string, onMsg func(payload []byte)) error
	Close() error
}
