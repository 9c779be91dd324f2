// Package signal cancels a command's context on SIGINT or SIGTERM and runs
// its shutdown hooks exactly once, whether the command was interrupted or
// finished normally.
package signal

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
)

// ShutdownFunc flushes state on exit. It receives a context that is not
// canceled by the interrupt.
type ShutdownFunc func(ctx context.Context) error

// Handler owns the context of one command invocation.
type Handler struct {
	ctx         context.Context //nolint:containedctx // the handler owns this context's lifecycle
	cancel      context.CancelFunc
	interrupted chan struct{}
	done        chan struct{}
	signals     chan os.Signal
	logger      zerolog.Logger

	mu       sync.Mutex
	received os.Signal
	hooks    []ShutdownFunc

	interruptOnce sync.Once
	stopOnce      sync.Once
	stopErr       error
}

// NewHandler starts listening for SIGINT and SIGTERM.
//
//	h := signal.NewHandler(ctx, logger)
//	h.OnShutdown(svc.Shutdown)
//	defer func() { _ = h.Stop(context.Background()) }()
func NewHandler(parent context.Context, logger zerolog.Logger) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		done:        make(chan struct{}),
		signals:     make(chan os.Signal, 1),
		logger:      logger,
	}
	signal.Notify(h.signals, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()
	return h
}

// Context is canceled on the first signal or on Stop.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted is closed on the first signal.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// Received returns the first signal, or nil.
func (h *Handler) Received() os.Signal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.received
}

// OnShutdown registers fn to run on Stop. Hooks run in reverse order of
// registration.
func (h *Handler) OnShutdown(fn ShutdownFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, fn)
}

// Stop stops listening, cancels the context, and runs every shutdown hook.
// Only the first call does any work; every call returns the joined hook errors.
func (h *Handler) Stop(ctx context.Context) error {
	h.stopOnce.Do(func() {
		signal.Stop(h.signals)
		close(h.done)
		h.cancel()

		h.mu.Lock()
		hooks := make([]ShutdownFunc, len(h.hooks))
		copy(hooks, h.hooks)
		h.mu.Unlock()

		var errs []error
		for i := len(hooks) - 1; i >= 0; i-- {
			if err := hooks[i](context.WithoutCancel(ctx)); err != nil {
				errs = append(errs, err)
			}
		}
		h.stopErr = errors.Join(errs...)
		if h.stopErr != nil {
			h.logger.Warn().Err(h.stopErr).Msg("shutdown hooks failed")
		}
	})
	return h.stopErr
}

// ExitCode is the conventional exit status after an interrupt: 128 plus
// the signal number. It returns 0 when no signal was received.
func (h *Handler) ExitCode() int {
	sig, ok := h.Received().(syscall.Signal)
	if !ok {
		return 0
	}
	return 128 + int(sig)
}

func (h *Handler) interrupt(sig os.Signal) {
	h.interruptOnce.Do(func() {
		h.mu.Lock()
		h.received = sig
		h.mu.Unlock()

		h.logger.Warn().Str("signal", sig.String()).Msg("interrupted, shutting down")
		h.cancel()
		close(h.interrupted)
	})
}

func (h *Handler) listen() {
	for {
		select {
		case <-h.done:
			return
		case sig := <-h.signals:
			h.interrupt(sig)
		}
	}
}
