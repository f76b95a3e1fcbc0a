package events

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/cinebridge-backend/internal/platform/logger"
	"github.com/yungbote/cinebridge-backend/internal/realtime/bus"
)

const defaultPublishTimeout = 5 * time.Second

// Publisher sends events to one topic without making callers wait on the
// broker. Failures are logged and dropped.
type Publisher interface {
	Publish(e Event)
	Close() error
}

type publisher struct {
	log     *logger.Logger
	bus     bus.Bus
	topic   string
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewPublisher(log *logger.Logger, b bus.Bus, topic string, timeout time.Duration) Publisher {
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &publisher{
		log:     log.With("service", "EventPublisher", "topic", topic),
		bus:     b,
		topic:   topic,
		timeout: timeout,
	}
}

func (p *publisher) Publish(e Event) {
	msg, err := Encode(e)
	if err != nil {
		p.log.Warn("event encode failed", "kind", e.Kind.String(), "error", err)
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed || p.bus == nil {
		p.log.Warn("event dropped, publisher closed", "kind", e.Kind.String())
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		ctx, span := otel.Tracer("events").Start(ctx, "events.publish")
		defer span.End()
		span.SetAttributes(
			attribute.String("messaging.destination", p.topic),
			attribute.String("event.kind", e.Kind.String()),
		)

		if err := p.bus.Publish(ctx, p.topic, msg); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "publish failed")
			p.log.Warn("event publish failed", "kind", e.Kind.String(), "error", err)
			return
		}
		p.log.Debug("event published", "kind", e.Kind.String(), "bytes", len(msg))
	}()
}

// Close waits for in-flight sends, then closes the underlying bus.
func (p *publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.wg.Wait()
	if p.bus == nil {
		return nil
	}
	return p.bus.Close()
}
