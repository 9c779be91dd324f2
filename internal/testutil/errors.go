// Package testutil provides testing utilities for forge.
//
// This package contains mock errors and test helpers used across test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate various failure scenarios in tests.
var (
	// ErrMockGeneration indicates a mock generator call failed (used in tests).
	ErrMockGeneration = errors.New("generation backend unavailable")

	// ErrMockDeploy indicates a mock deploy target rejected the project (used in tests).
	ErrMockDeploy = errors.New("deploy target unavailable")

	// ErrMockIO indicates a mock filesystem write failed (used in tests).
	ErrMockIO = errors.New("disk full")

	// ErrMockExec indicates a mock subprocess failed to start (used in tests).
	ErrMockExec = errors.New("exec: \"gen\": executable file not found in $PATH")

	// ErrMockHandler indicates a mock handler failed (used in tests).
	ErrMockHandler = errors.New("handler failed")
)
