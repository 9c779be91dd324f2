package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	forgeerrors "github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/testutil"
)

func TestTestingHandler_NoArtifacts(t *testing.T) {
	f := newFixture(t)
	res, err := NewTestingHandler(f.deps).Handle(context.Background(), request("Testing", nil))
	require.NoError(t, err)
	assert.Equal(t, "no artifacts to test", res.Details)
	assert.Empty(t, f.tester.calls)
}

func TestTestingHandler_AllPass(t *testing.T) {
	f := newFixture(t)
	f.store.AddCodeContext("main.py", "print(1)", "python")
	f.store.AddCodeContext("models.py", "class A: pass", "python")

	res, err := NewTestingHandler(f.deps).Handle(context.Background(), request("Testing", nil))
	require.NoError(t, err)
	assert.Empty(t, res.Artifacts)
	assert.Equal(t, []string{"main.py", "models.py"}, f.tester.calls)
	assert.Empty(t, f.gen.prompts, "no fix requested for passing files")
}

func TestTestingHandler_FixAccepted(t *testing.T) {
	f := newFixture(t)
	f.store.AddCodeContext("main.py", "BROKEN code", "python")
	f.gen.answers = []string{"```python\nprint('fixed')\n```"}

	var events []event
	res, err := NewTestingHandler(f.deps).Handle(context.Background(), request("Testing", &events))
	require.NoError(t, err)
	assert.Equal(t, []string{"main.py"}, res.Artifacts)

	art, _ := f.store.Artifact("main.py")
	assert.Equal(t, "print('fixed')", art.Content)
	assert.Equal(t, "python", art.Language)

	content, ok, err := f.files.Read(context.Background(), "main.py")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "print('fixed')\n", content)

	learned := f.store.Learnings("fix:main.py")
	require.Len(t, learned, 1)
	assert.True(t, learned[0].Success)
	assert.Equal(t, []string{"main.py", "main.py"}, f.tester.calls, "test then retest")
	assert.Contains(t, f.gen.prompts[0], "BROKEN marker")
}

func TestTestingHandler_FixRejectedLeavesArtifact(t *testing.T) {
	f := newFixture(t)
	f.store.AddCodeContext("main.py", "BROKEN code", "python")
	f.store.AddCodeContext("models.py", "class A: pass", "python")
	f.gen.answers = []string{"still BROKEN"}

	res, err := NewTestingHandler(f.deps).Handle(context.Background(), request("Testing", nil))
	require.Error(t, err)
	require.ErrorIs(t, err, forgeerrors.ErrTestFailure)
	assert.Contains(t, err.Error(), "main.py")
	assert.Empty(t, res.Artifacts)

	art, _ := f.store.Artifact("main.py")
	assert.Equal(t, "BROKEN code", art.Content)
	_, ok, _ := f.files.Read(context.Background(), "main.py")
	assert.False(t, ok, "rejected fix is never written")

	assert.Len(t, f.gen.prompts, 1, "exactly one fix attempt per file")
	assert.Equal(t, []string{"main.py", "main.py", "models.py"}, f.tester.calls)

	learned := f.store.Learnings("fix:main.py")
	require.Len(t, learned, 1)
	assert.False(t, learned[0].Success)
}

func TestTestingHandler_FixGenerationFails(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
		errs    []error
	}{
		{"generator error", nil, []error{testutil.ErrMockGeneration}},
		{"unchanged answer", []string{"BROKEN code"}, nil},
		{"empty answer", []string{""}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.store.AddCodeContext("main.py", "BROKEN code", "python")
			f.gen.answers, f.gen.errs = tt.answers, tt.errs

			_, err := NewTestingHandler(f.deps).Handle(context.Background(), request("Testing", nil))
			require.ErrorIs(t, err, forgeerrors.ErrTestFailure)
			assert.Equal(t, []string{"main.py"}, f.tester.calls, "no retest without a candidate")
			require.Len(t, f.store.Learnings("fix:main.py"), 1)
		})
	}
}

func TestTestingHandler_Canceled(t *testing.T) {
	f := newFixture(t)
	f.store.AddCodeContext("main.py", "print(1)", "python")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTestingHandler(f.deps).Handle(ctx, request("Testing", nil))
	require.ErrorIs(t, err, context.Canceled)
}
