package intake

// dispatch.go — worker pool que reparte eventos por chat.
//
// Cada chat va siempre al mismo worker, así los eventos de una conversación se
// procesan en orden de llegada mientras chats distintos avanzan en paralelo.

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
)

// ErrDispatcherStopped se devuelve al enviar eventos después de Stop.
var ErrDispatcherStopped = errors.New("dispatcher stopped")

const defaultQueueSize = 64

// Dispatcher encola eventos hacia un Handler usando un worker por shard.
type Dispatcher struct {
	handler Handler
	queues  []chan Event

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher crea un dispatcher con el número de workers dado.
// Si workers <= 0 usa runtime.NumCPU() × 2.
func NewDispatcher(handler Handler, workers int) *Dispatcher {
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	queues := make([]chan Event, workers)
	for i := range queues {
		queues[i] = make(chan Event, defaultQueueSize)
	}
	return &Dispatcher{handler: handler, queues: queues}
}

// Start lanza los workers. Los handlers reciben ctx.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, q := range d.queues {
		d.wg.Add(1)
		go func(worker int, q <-chan Event) {
			defer d.wg.Done()
			for ev := range q {
				if err := d.handler.Handle(ctx, ev); err != nil {
					slog.Error("event handling failed",
						"worker", worker,
						"chat_id", ev.ChatID,
						"kind", ev.Kind,
						"err", err,
					)
				}
			}
		}(i, q)
	}
	slog.Debug("dispatcher started", "workers", len(d.queues))
}

// Submit encola el evento en el shard de su chat. Bloquea si la cola está llena.
func (d *Dispatcher) Submit(ctx context.Context, ev Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrDispatcherStopped
	}

	select {
	case d.queues[d.shard(ev.ChatID)] <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop cierra las colas y espera a que los workers terminen lo encolado.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// Workers devuelve el número de workers.
func (d *Dispatcher) Workers() int {
	return len(d.queues)
}

// shard asigna el chat a un worker. Los ids de grupo de Telegram son negativos.
func (d *Dispatcher) shard(chatID int64) int {
	return int(uint64(chatID) % uint64(len(d.queues)))
}
