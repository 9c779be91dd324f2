package errors

import "fmt"

// Wrap adds context to errors at package boundaries.
// It returns nil if err is nil, allowing for safe inline usage:
//
//	if err := store.Save(ctx); err != nil {
//	    return errors.Wrap(err, "failed to flush context store")
//	}
//
// The original error chain is preserved, so errors.Is() keeps working
// against the sentinels in this package.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf adds formatted context to errors at package boundaries.
// It returns nil if err is nil.
//
//	return errors.Wrapf(err, "task %s", taskID)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", msg, err)
}

// Join wraps last with sentinel so that errors.Is matches both.
// Used where a failure must be classified without hiding its cause.
func Join(sentinel, last error, msg string) error {
	if last == nil {
		return fmt.Errorf("%s: %w", msg, sentinel)
	}
	return fmt.Errorf("%s: %w: %w", msg, sentinel, last)
}
