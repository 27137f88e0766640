package reason

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedService counts calls and replies from a fixed answer.
type scriptedService struct {
	calls  int
	answer string
	err    error
}

func (s *scriptedService) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestCache_ReusesFirstAttemptOnly(t *testing.T) {
	t.Parallel()

	inner := &scriptedService{answer: "cached answer"}
	cache := NewCache(inner, "model-a", t.TempDir(), true, testLogger())
	defer cache.Close()

	ctx := context.Background()

	// First call populates the cache.
	text, err := cache.Complete(ctx, "prompt")
	require.NoError(t, err)
	assert.Equal(t, "cached answer", text)
	assert.Equal(t, 1, inner.calls)

	// Second first-attempt call is served from cache.
	text, err = cache.Complete(ctx, "prompt")
	require.NoError(t, err)
	assert.Equal(t, "cached answer", text)
	assert.Equal(t, 1, inner.calls)

	// A retry bypasses the lookup and reaches the service again.
	text, err = cache.Complete(WithAttempt(ctx, 2), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "cached answer", text)
	assert.Equal(t, 2, inner.calls)
}

func TestCache_StoresRetryResults(t *testing.T) {
	t.Parallel()

	inner := &scriptedService{answer: "first"}
	cache := NewCache(inner, "model-a", t.TempDir(), true, testLogger())
	defer cache.Close()

	ctx := context.Background()

	// A retry both bypasses the lookup and refreshes the stored value.
	_, err := cache.Complete(ctx, "p")
	require.NoError(t, err)

	inner.answer = "second"
	text, err := cache.Complete(WithAttempt(ctx, 3), "p")
	require.NoError(t, err)
	assert.Equal(t, "second", text)

	text, err = cache.Complete(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "second", text)
	assert.Equal(t, 2, inner.calls)
}

func TestCache_DisabledPassesThrough(t *testing.T) {
	t.Parallel()

	inner := &scriptedService{answer: "x"}
	cache := NewCache(inner, "model-a", t.TempDir(), false, testLogger())
	defer cache.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := cache.Complete(ctx, "p")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, inner.calls)
}

func TestCache_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	inner := &scriptedService{answer: "persisted"}
	cache := NewCache(inner, "model-a", dir, true, testLogger())
	_, err := cache.Complete(ctx, "p")
	require.NoError(t, err)
	require.NoError(t, cache.Close())

	// A fresh cache over a failing service still answers from disk.
	second := NewCache(&scriptedService{err: errors.New("down")}, "model-a", dir, true, testLogger())
	defer second.Close()

	text, err := second.Complete(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "persisted", text)
}

func TestCache_DistinctModelsDoNotCollide(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	innerA := &scriptedService{answer: "from a"}
	cacheA := NewCache(innerA, "model-a", dir, true, testLogger())
	_, err := cacheA.Complete(ctx, "p")
	require.NoError(t, err)
	require.NoError(t, cacheA.Close())

	innerB := &scriptedService{answer: "from b"}
	cacheB := NewCache(innerB, "model-b", dir, true, testLogger())
	defer cacheB.Close()

	text, err := cacheB.Complete(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "from b", text)
	assert.Equal(t, 1, innerB.calls)
}

func TestCache_ErrorNotCached(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	inner := &scriptedService{err: boom}
	cache := NewCache(inner, "model-a", t.TempDir(), true, testLogger())
	defer cache.Close()

	_, err := cache.Complete(context.Background(), "p")
	assert.ErrorIs(t, err, boom)

	inner.err = nil
	inner.answer = "recovered"
	text, err := cache.Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
}

func TestAttempt(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Equal(t, 1, Attempt(ctx))
	assert.Equal(t, 4, Attempt(WithAttempt(ctx, 4)))
	assert.Equal(t, 1, Attempt(WithAttempt(ctx, 0)))
}
