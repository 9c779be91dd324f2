package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	forgeerrors "github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/tui"
	"github.com/mrz1836/forge/internal/workflow"
)

// openService loads configuration and creates the workflow service for the
// selected project. Callers must call Shutdown on the returned service.
func openService(ctx context.Context, env *commandEnv) (*workflow.Service, error) {
	cfg, err := env.config(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := workflow.New(ctx, cfg, GetLogger(), env.serviceOptions...)
	if err != nil {
		return nil, asInputError(err)
	}
	return svc, nil
}

// asInputError marks validation failures so the process exits with code 2.
func asInputError(err error) error {
	if errors.Is(err, forgeerrors.ErrValidation) {
		return forgeerrors.NewExitCode2Error(err)
	}
	return err
}

// terminalWidth is the width of w when it is a terminal and
// tui.DefaultLineWidth otherwise.
func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return tui.DefaultLineWidth
}

// joinArgs turns positional arguments back into one requirement string.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
