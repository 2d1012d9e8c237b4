package workpool_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotehq/rote/pkg/workpool"
)

func TestRunAppliesFnToEveryItem(t *testing.T) {
	var sum int64
	err := workpool.Run(context.Background(), 4, []int{1, 2, 3, 4, 5}, func(ctx context.Context, item int) error {
		atomic.AddInt64(&sum, int64(item))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), sum)
}

func TestRunReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	err := workpool.Run(context.Background(), 2, []int{1, 2, 3}, func(ctx context.Context, item int) error {
		if item == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestRunEmptyItemsIsNoop(t *testing.T) {
	err := workpool.Run(context.Background(), 4, []int{}, func(ctx context.Context, item int) error {
		t.Fatal("fn should never be called for an empty item list")
		return nil
	})
	assert.NoError(t, err)
}

func TestPoolRespectsConcurrencyCeiling(t *testing.T) {
	var current, max int32
	p := workpool.New(context.Background(), 2)
	for i := 0; i < 8; i++ {
		p.Go(func(ctx context.Context) error {
			n := atomic.AddInt32(&current, 1)
			for {
				old := atomic.LoadInt32(&max)
				if n <= old || atomic.CompareAndSwapInt32(&max, old, n) {
					break
				}
			}
			atomic.AddInt32(&current, -1)
			return nil
		})
	}
	require.NoError(t, p.Wait())
	assert.LessOrEqual(t, max, int32(2))
}
