package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinels to user-facing text. Order matters: the
// first entry matched by errors.Is wins, so more specific sentinels that are
// commonly joined with others (retry exhaustion) come before their causes.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	{
		err: ErrCriticalTaskFailed,
		info: ErrorInfo{
			Message: "A high priority task failed and the remaining plan was skipped.",
			Action:  "Run 'forge memory insights' to see the recorded errors, then retry the build.",
		},
	},
	{
		err: ErrRetryExhausted,
		info: ErrorInfo{
			Message: "The operation kept failing after every retry.",
			Action:  "Increase retry.task.max_attempts or check the generation command.",
		},
	},
	{
		err: ErrGenerationFailed,
		info: ErrorInfo{
			Message: "The generation command failed.",
			Action:  "Check ai.command in your configuration and that it runs on its own.",
		},
	},
	{
		err: ErrEmptyGeneration,
		info: ErrorInfo{
			Message: "The generation command returned no content.",
			Action:  "Check that ai.command writes its answer to stdout.",
		},
	},
	{
		err: ErrTestFailure,
		info: ErrorInfo{
			Message: "One or more generated files failed their checks.",
			Action:  "Inspect the files listed in the log and fix them by hand.",
		},
	},
	{
		err: ErrDeploymentFailed,
		info: ErrorInfo{
			Message: "Deployment did not succeed.",
			Action:  "Check deploy.command and its output in the log.",
		},
	},
	{
		err: ErrPersistence,
		info: ErrorInfo{
			Message: "Context memory could not be saved or loaded.",
			Action:  "Check permissions on ~/.forge/memory.",
		},
	},
	{
		err: ErrLockTimeout,
		info: ErrorInfo{
			Message: "Another forge process is writing the same project memory.",
			Action:  "Wait for it to finish and retry.",
		},
	},
	{
		err: ErrTaskNotFound,
		info: ErrorInfo{
			Message: "The requested task does not exist.",
			Action:  "",
		},
	},
	{
		err: ErrFileNotFound,
		info: ErrorInfo{
			Message: "The file does not exist in the project directory.",
			Action:  "Paths are relative to the project directory; run 'forge run' first.",
		},
	},
	{
		err: ErrEmptyValue,
		info: ErrorInfo{
			Message: "A required value is missing.",
			Action:  "",
		},
	},
	{
		err: ErrValidation,
		info: ErrorInfo{
			Message: "A task referenced an unknown task or dependency.",
			Action:  "",
		},
	},
	{
		err: ErrCommandNotConfigured,
		info: ErrorInfo{
			Message: "A required external command is not configured.",
			Action:  "Set it in ~/.forge/config.yaml or via FORGE_* environment variables.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Unsupported output format.",
			Action:  "Use --output text or --output json.",
		},
	},
	{
		err: ErrNonInteractiveMode,
		info: ErrorInfo{
			Message: "This command needs confirmation but no terminal is attached.",
			Action:  "Re-run with --force.",
		},
	},
}

func getErrorInfo(err error) ErrorInfo {
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}
	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for an error.
// Unknown errors return their own text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action. The action is empty when there is nothing useful to suggest.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
