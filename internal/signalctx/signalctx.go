// Package signalctx cancels a context on SIGINT or SIGTERM.
package signalctx

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Watcher remembers which signal, if any, cancelled its context.
type Watcher struct {
	ch     chan os.Signal
	cancel context.CancelFunc

	mu       sync.Mutex
	received os.Signal
	stopOnce sync.Once
}

// WithSignals returns a child of parent that is cancelled on the first
// SIGINT or SIGTERM. Call Stop to restore default signal handling.
func WithSignals(parent context.Context) (context.Context, *Watcher) {
	ctx, cancel := context.WithCancel(parent)
	w := &Watcher{ch: make(chan os.Signal, 1), cancel: cancel}
	signal.Notify(w.ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-ctx.Done():
		case sig := <-w.ch:
			w.mu.Lock()
			w.received = sig
			w.mu.Unlock()
			cancel()
		}
	}()

	return ctx, w
}

// Signal returns the signal that cancelled the context, or nil.
func (w *Watcher) Signal() os.Signal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.received
}

// Stop stops signal delivery and cancels the context. Safe to call twice.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		signal.Stop(w.ch)
		w.cancel()
	})
}
