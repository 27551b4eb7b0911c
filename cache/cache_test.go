package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCompute_CachesFirstResult(t *testing.T) {
	c := New[string, int](10, time.Minute, func(k string) string { return k })
	var calls atomic.Int32

	compute := func() (int, error) {
		calls.Add(1)
		return 42, nil
	}

	v, err := c.GetOrCompute("k", compute)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = c.GetOrCompute("k", compute)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetOrCompute_CollapsesConcurrentMisses(t *testing.T) {
	c := New[string, int](10, time.Minute, func(k string) string { return k })
	var calls atomic.Int32
	release := make(chan struct{})

	compute := func() (int, error) {
		calls.Add(1)
		<-release
		return 7, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			v, err := c.GetOrCompute("same", compute)
			require.NoError(t, err)
			results[idx] = v
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, 7, v)
	}
}

func TestGetOrCompute_FailedComputationNotCached(t *testing.T) {
	c := New[string, int](10, time.Minute, func(k string) string { return k })
	var calls atomic.Int32
	wantErr := errors.New("boom")

	compute := func() (int, error) {
		calls.Add(1)
		return 0, wantErr
	}

	_, err := c.GetOrCompute("k", compute)
	require.ErrorIs(t, err, wantErr)

	_, err = c.GetOrCompute("k", compute)
	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPurgeAndLen(t *testing.T) {
	c := New[string, int](10, time.Minute, func(k string) string { return k })
	_, _ = c.GetOrCompute("a", func() (int, error) { return 1, nil })
	_, _ = c.GetOrCompute("b", func() (int, error) { return 2, nil })
	assert.Equal(t, 2, c.Len())

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestSelectionTuple_KeyIsOrderIndependent(t *testing.T) {
	a := SelectionTuple{
		EntityType: "dataset", EntityName: "orders", UserIdentity: "u1",
		Selections:    map[string]string{"country": "US", "city": "NYC"},
		Configurables: map[string]string{"theme": "dark"},
	}
	b := SelectionTuple{
		EntityType: "dataset", EntityName: "orders", UserIdentity: "u1",
		Selections:    map[string]string{"city": "NYC", "country": "US"},
		Configurables: map[string]string{"theme": "dark"},
	}
	assert.Equal(t, a.Key(), b.Key())
}

func TestSelectionTuple_KeyDistinguishesSelections(t *testing.T) {
	a := SelectionTuple{EntityType: "dataset", EntityName: "orders", Selections: map[string]string{"country": "US"}}
	b := SelectionTuple{EntityType: "dataset", EntityName: "orders", Selections: map[string]string{"country": "CA"}}
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestSelectionTuple_KeyDistinguishesUser(t *testing.T) {
	a := SelectionTuple{EntityType: "dataset", EntityName: "orders", UserIdentity: "u1"}
	b := SelectionTuple{EntityType: "dataset", EntityName: "orders", UserIdentity: "u2"}
	assert.NotEqual(t, a.Key(), b.Key())
}
