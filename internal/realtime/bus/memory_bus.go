package bus

import (
	"context"
	"sync"
)

// MemoryBus delivers messages in-process, synchronously. It backs local runs
// without REDIS_ADDR and tests.
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[string][]func([]byte)
	closed bool
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: map[string][]func([]byte){}}
}

func (b *MemoryBus) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	for _, fn := range b.subs[topic] {
		fn(append([]byte(nil), payload...))
	}
	return nil
}

func (b *MemoryBus) Subscribe(_ context.Context, topic string, onMsg func([]byte)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.subs[topic] = append(b.subs[topic], onMsg)
	return nil
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = map[string][]func([]byte){}
	return nil
}
