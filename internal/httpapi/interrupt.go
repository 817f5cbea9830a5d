package httpapi

import (
	"context"
	"errors"
	"sync"
)

// ErrInterrupted is the cancellation cause of a streaming completion that
// was superseded by a newer completion for the same model.
var ErrInterrupted = errors.New("interrupted by a newer request")

type inflightStream struct {
	id     uint64
	cancel context.CancelCauseFunc
}

// interrupter tracks at most one interruptible stream per model.
type interrupter struct {
	mu       sync.Mutex
	seq      uint64
	inflight map[string]inflightStream
}

func newInterrupter() *interrupter {
	return &interrupter{inflight: make(map[string]inflightStream)}
}

// interrupt cancels the stream in flight for model, if any, and reports
// whether one was canceled.
func (i *interrupter) interrupt(model string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.interruptLocked(model)
}

func (i *interrupter) interruptLocked(model string) bool {
	prev, ok := i.inflight[model]
	if !ok {
		return false
	}
	delete(i.inflight, model)
	prev.cancel(ErrInterrupted)
	return true
}

// register interrupts the stream in flight for model and makes the returned
// context the new interruptible stream. release must be called when the
// stream ends.
func (i *interrupter) register(parent context.Context, model string) (ctx context.Context, release func(), interrupted bool) {
	ctx, cancel := context.WithCancelCause(parent)
	i.mu.Lock()
	interrupted = i.interruptLocked(model)
	i.seq++
	id := i.seq
	i.inflight[model] = inflightStream{id: id, cancel: cancel}
	i.mu.Unlock()
	return ctx, func() {
		i.mu.Lock()
		if cur, ok := i.inflight[model]; ok && cur.id == id {
			delete(i.inflight, model)
		}
		i.mu.Unlock()
		cancel(nil)
	}, interrupted
}

// active returns the number of registered streams.
func (i *interrupter) active() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.inflight)
}
