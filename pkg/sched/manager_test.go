package sched

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerLazyPoolCreation(t *testing.T) {
	m := NewManager()
	defer m.Shutdown()

	rendering := m.Pool(RoleRendering)
	require.NotNil(t, rendering)

	// Repeated lookups return the same pool.
	assert.Same(t, rendering, m.Pool(RoleRendering))

	// Different roles get independent pools.
	assert.NotSame(t, rendering, m.Pool(RoleGeneral))
}

func TestManagerInputPoolDefaultsToOneWorker(t *testing.T) {
	m := NewManager()
	defer m.Shutdown()

	assert.Equal(t, 1, m.Pool(RoleInput).WorkerCount())
}

func TestManagerInitializeReplacesPools(t *testing.T) {
	m := NewManager()
	defer m.Shutdown()

	old := m.Pool(RoleRendering)

	m.Initialize(Config{General: 2, Rendering: 3, Loading: 2, Input: 1})

	replacement := m.Pool(RoleRendering)
	assert.NotSame(t, old, replacement)
	assert.Equal(t, 3, replacement.WorkerCount())

	// The replaced pool was closed; its tasks are refused.
	handle := old.Submit(PriorityNormal, func() (interface{}, error) { return nil, nil })
	_, err := handle.Wait(context.Background())
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestManagerConcurrentAccess(t *testing.T) {
	m := NewManager()
	defer m.Shutdown()

	roles := []Role{RoleGeneral, RoleRendering, RoleLoading, RoleInput}

	var wg sync.WaitGroup
	pools := make([]*Pool, 32)
	for i := range pools {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pools[i] = m.Pool(roles[i%len(roles)])
		}(i)
	}
	wg.Wait()

	// Every goroutine asking for the same role got the same pool.
	for i := range pools {
		assert.Same(t, m.Pool(roles[i%len(roles)]), pools[i])
	}
}

func TestManagerShutdownClosesAllPools(t *testing.T) {
	m := NewManager()
	general := m.Pool(RoleGeneral)

	m.Shutdown()

	handle := general.Submit(PriorityNormal, func() (interface{}, error) { return nil, nil })
	_, err := handle.Wait(context.Background())
	assert.ErrorIs(t, err, ErrPoolClosed)
}
