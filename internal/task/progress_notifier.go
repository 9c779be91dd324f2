package task

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mrz1836/forge/internal/domain"
)

// Observer receives progress events. It runs synchronously on the
// executor's goroutine, so it should return quickly.
type Observer func(event domain.ProgressEvent) error

// ProgressNotifier fans progress events out to registered observers. A
// failing or panicking observer is logged and skipped; it never affects the
// run or the other observers.
type ProgressNotifier struct {
	mu        sync.RWMutex
	observers []Observer
	logger    zerolog.Logger
}

// NewProgressNotifier creates a notifier with no observers.
func NewProgressNotifier(logger zerolog.Logger) *ProgressNotifier {
	return &ProgressNotifier{logger: logger}
}

// Register adds an observer. Nil observers are ignored.
func (n *ProgressNotifier) Register(o Observer) {
	if o == nil {
		return
	}
	n.mu.Lock()
	n.observers = append(n.observers, o)
	n.mu.Unlock()
}

// Len returns the number of registered observers.
func (n *ProgressNotifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.observers)
}

// Notify delivers event to every observer in registration order.
func (n *ProgressNotifier) Notify(event domain.ProgressEvent) {
	n.mu.RLock()
	observers := make([]Observer, len(n.observers))
	copy(observers, n.observers)
	n.mu.RUnlock()

	for i, o := range observers {
		if err := n.deliver(o, event); err != nil {
			n.logger.Warn().
				Err(err).
				Int("observer", i).
				Str("current_task", event.CurrentTask).
				Str("status", event.Status.String()).
				Msg("progress observer failed")
		}
	}
}

func (n *ProgressNotifier) deliver(o Observer, event domain.ProgressEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer panic: %v", r) //nolint:err113 // panic value is dynamic
		}
	}()
	return o(event)
}
