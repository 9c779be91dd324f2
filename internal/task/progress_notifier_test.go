package task

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
	"github.com/mrz1836/forge/internal/testutil"
)

func TestProgressNotifier_IsolatesFailingObservers(t *testing.T) {
	n := NewProgressNotifier(zerolog.Nop())
	var seen []string

	n.Register(func(domain.ProgressEvent) error { return testutil.ErrMockHandler })
	n.Register(func(domain.ProgressEvent) error { panic("observer bug") })
	n.Register(nil)
	n.Register(func(e domain.ProgressEvent) error {
		seen = append(seen, e.CurrentTask)
		return nil
	})

	assert.Equal(t, 3, n.Len())
	assert.NotPanics(t, func() {
		n.Notify(domain.ProgressEvent{CurrentTask: "Testing", Status: constants.ProgressStarting})
		n.Notify(domain.ProgressEvent{CurrentTask: "Deployment", Status: constants.ProgressCompleted})
	})
	assert.Equal(t, []string{"Testing", "Deployment"}, seen)
}

func TestProgressNotifier_RegisterDuringNotify(t *testing.T) {
	n := NewProgressNotifier(zerolog.Nop())
	calls := 0
	n.Register(func(domain.ProgressEvent) error {
		calls++
		n.Register(func(domain.ProgressEvent) error { calls++; return nil })
		return nil
	})

	n.Notify(domain.ProgressEvent{})
	assert.Equal(t, 1, calls, "observers added during delivery wait for the next event")
	assert.Equal(t, 2, n.Len())
}
