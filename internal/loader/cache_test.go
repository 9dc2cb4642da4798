package loader

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pedigree/internal/errors"
	"pedigree/internal/extractor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheMemoizesSuccess(t *testing.T) {
	var calls atomic.Int32
	c := NewCache(Func(func(ctx context.Context, id string) (*extractor.Person, error) {
		calls.Add(1)
		return &extractor.Person{ID: id}, nil
	}))

	first, err := c.LoadPerson(context.Background(), "I1")
	require.NoError(t, err)
	second, err := c.LoadPerson(context.Background(), "I1")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestCacheDoesNotKeepFailures(t *testing.T) {
	var calls atomic.Int32
	c := NewCache(Func(func(ctx context.Context, id string) (*extractor.Person, error) {
		if calls.Add(1) == 1 {
			return nil, errors.Mark(errors.New("flaky"), errors.ErrLinkUnresolved)
		}
		return &extractor.Person{ID: id}, nil
	}))

	_, err := c.LoadPerson(context.Background(), "I1")
	require.Error(t, err)
	assert.Zero(t, c.Len())

	p, err := c.LoadPerson(context.Background(), "I1")
	require.NoError(t, err)
	assert.Equal(t, "I1", p.ID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCacheSharesConcurrentFetches(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	c := NewCache(Func(func(ctx context.Context, id string) (*extractor.Person, error) {
		calls.Add(1)
		<-release
		return &extractor.Person{ID: id}, nil
	}))

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*extractor.Person, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := c.LoadPerson(context.Background(), "I7")
			assert.NoError(t, err)
			results[i] = p
		}()
	}

	// Give the callers time to pile onto the in-flight fetch.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(callers))
	assert.Equal(t, 1, c.Len())
	for _, p := range results {
		require.NotNil(t, p)
		assert.Equal(t, "I7", p.ID)
	}
}

func TestCacheWaiterSurvivesLeaderCancel(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	c := NewCache(Func(func(ctx context.Context, id string) (*extractor.Person, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return &extractor.Person{ID: id}, nil
	}))

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := c.LoadPerson(leaderCtx, "I7")
		leaderErr <- err
	}()
	<-started

	type result struct {
		p   *extractor.Person
		err error
	}
	waiter := make(chan result, 1)
	go func() {
		p, err := c.LoadPerson(context.Background(), "I7")
		waiter <- result{p, err}
	}()

	// Let the waiter join the in-flight fetch before the leader gives up.
	time.Sleep(50 * time.Millisecond)
	cancel()

	err := <-leaderErr
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, errors.IsLinkUnresolved(err))

	close(release)
	res := <-waiter
	require.NoError(t, res.err)
	assert.Equal(t, "I7", res.p.ID)
	assert.Equal(t, 1, c.Len())
}

func TestCacheCancelledBeforeFetch(t *testing.T) {
	var calls atomic.Int32
	c := NewCache(Func(func(ctx context.Context, id string) (*extractor.Person, error) {
		calls.Add(1)
		return &extractor.Person{ID: id}, nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.LoadPerson(ctx, "I1")
	assert.True(t, errors.IsLinkUnresolved(err))
	assert.Zero(t, calls.Load())
}
