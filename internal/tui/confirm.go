package tui

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	forgeerrors "github.com/mrz1836/forge/internal/errors"
)

// IsInteractive reports whether stdin is a terminal. Tests may replace it.
//
//nolint:gochecknoglobals // test seam
var IsInteractive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Confirm asks a yes/no question. It fails with ErrNonInteractiveMode when
// stdin is not a terminal and with ErrOperationCanceled when the user aborts.
func Confirm(title, description string) (bool, error) {
	if !IsInteractive() {
		return false, forgeerrors.ErrNonInteractiveMode
	}
	CheckNoColor()

	var confirmed bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(description).
			Affirmative("Yes").
			Negative("No").
			Value(&confirmed),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, forgeerrors.ErrOperationCanceled
		}
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	return confirmed, nil
}
