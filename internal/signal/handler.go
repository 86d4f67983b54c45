// Package signal provides graceful shutdown handling for minutes CLI commands.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages (to avoid circular dependencies)
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler manages graceful shutdown by listening for interrupt signals.
//
// A plain handler cancels its context on the first SIGINT or SIGTERM.
// A two-stage handler (see NewTwoStageHandler) first closes StopRequested so
// a recording can be finished and submitted, and only cancels the context on
// the second signal.
type Handler struct {
	ctx           context.Context //nolint:containedctx // intentional: handler manages context lifecycle
	cancel        context.CancelFunc
	stopRequested chan struct{}
	interrupted   chan struct{}
	done          chan struct{} // signals listen() to exit cleanly
	twoStage      bool
	mu            sync.Mutex
	received      int
	stopOnce      sync.Once
	sigChan       chan os.Signal
}

// NewHandler creates a signal handler that cancels its context on the first
// SIGINT or SIGTERM.
//
// Usage:
//
//	h := signal.NewHandler(ctx)
//	defer h.Stop()
//	ctx = h.Context()
func NewHandler(parent context.Context) *Handler {
	return newHandler(parent, false)
}

// NewTwoStageHandler creates a signal handler where the first signal only
// requests a stop and the second one aborts.
//
// Usage:
//
//	h := signal.NewTwoStageHandler(ctx)
//	defer h.Stop()
//	select {
//	case <-h.StopRequested():
//	    // finish the recording, keep processing
//	case <-h.Interrupted():
//	    // abort
//	}
func NewTwoStageHandler(parent context.Context) *Handler {
	return newHandler(parent, true)
}

func newHandler(parent context.Context, twoStage bool) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:           ctx,
		cancel:        cancel,
		stopRequested: make(chan struct{}),
		interrupted:   make(chan struct{}),
		done:          make(chan struct{}),
		twoStage:      twoStage,
		// Buffer of 1 ensures signal.Notify doesn't drop signals if handler is busy.
		// See: https://pkg.go.dev/os/signal#Notify
		sigChan: make(chan os.Signal, 1),
	}

	signal.Notify(h.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// Context returns the cancellable context.
// Use this context for all operations that should be interruptible.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// StopRequested returns a channel that closes on the first signal.
// For a plain handler it closes together with Interrupted.
func (h *Handler) StopRequested() <-chan struct{} {
	return h.stopRequested
}

// Interrupted returns a channel that closes when the handler aborts.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// Stop cleans up the signal handler and stops listening for signals.
// Always call this when done to prevent resource leaks.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		close(h.done) // Signal listen() to exit before closing sigChan
		h.cancel()
	})
}

// handleSignal processes a received signal.
func (h *Handler) handleSignal() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.received++
	switch {
	case h.received == 1:
		close(h.stopRequested)
		if !h.twoStage {
			h.abort()
		}
	case h.received == 2 && h.twoStage:
		h.abort()
	}
}

func (h *Handler) abort() {
	h.cancel()
	close(h.interrupted)
}

// listen waits for signals and handles them until Stop() is called
// or the context is canceled.
func (h *Handler) listen() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.done:
			return
		case <-h.sigChan:
			h.handleSignal()
		}
	}
}
