package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisconnectedCacheIsNoop(t *testing.T) {
	RDB = nil
	ctx := context.Background()

	var dest []string
	assert.False(t, Get(ctx, "catalog:active", &dest))
	assert.NoError(t, Set(ctx, "catalog:active", []string{"a"}, time.Minute))
	assert.NoError(t, Del(ctx, "catalog:active"))
	assert.NoError(t, Close())
}

func TestRememberLoadsOnMiss(t *testing.T) {
	RDB = nil
	calls := 0

	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"Turmeric Powder"}, nil
	}

	for i := 0; i < 2; i++ {
		got, err := Remember(context.Background(), "catalog:test", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, []string{"Turmeric Powder"}, got)
	}
	assert.Equal(t, 2, calls, "without redis every call loads")
}

func TestRememberPropagatesError(t *testing.T) {
	RDB = nil
	boom := errors.New("db down")

	got, err := Remember(context.Background(), "catalog:err", time.Minute, func(context.Context) ([]string, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, got)
}

func TestRememberCollapsesConcurrentMisses(t *testing.T) {
	RDB = nil
	var calls int32
	release := make(chan struct{})

	load := func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 42, nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]int, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Remember(context.Background(), "catalog:collapse", time.Minute, load)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	// Give the goroutines time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}
