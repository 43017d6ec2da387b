package durable

import (
	"bytes"
	"sync"

	"go.uber.org/zap"
)

// writer is the single background consumer behind SaveAsync. Each document
// has one pending slot; a newer request overwrites an undrained one.
type writer struct {
	store *Store

	mu      sync.Mutex
	pending map[string][]byte
	order   []string
	started bool
	closed  bool

	wake      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newWriter(s *Store) *writer {
	return &writer{
		store:   s,
		pending: make(map[string][]byte),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (w *writer) enqueue(name string, data []byte) error {
	buf := bytes.Clone(data)
	if buf == nil {
		buf = []byte{}
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if _, queued := w.pending[name]; !queued {
		w.order = append(w.order, name)
	}
	w.pending[name] = buf
	if !w.started {
		w.started = true
		go w.run()
	}
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return nil
}

func (w *writer) take() (string, []byte, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.order) == 0 {
		return "", nil, false
	}
	name := w.order[0]
	w.order = w.order[1:]
	data := w.pending[name]
	delete(w.pending, name)
	return name, data, true
}

func (w *writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.stop:
			w.drain()
			return
		}
	}
}

func (w *writer) drain() {
	for {
		name, data, ok := w.take()
		if !ok {
			return
		}
		doc, err := w.store.document(name)
		if err != nil {
			continue
		}
		if err := w.store.write(doc, data); err != nil {
			w.store.logger.Warn("async save failed", zap.String("document", name), zap.Error(err))
		}
	}
}

// shutdown rejects new work, lets the goroutine drain what is queued, and
// waits for it to exit. Safe to call more than once.
func (w *writer) shutdown() {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		started := w.started
		w.mu.Unlock()

		if started {
			close(w.stop)
		} else {
			close(w.done)
		}
	})
	<-w.done
}
