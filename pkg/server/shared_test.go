package server

import (
	"sync"
	"testing"

	"github.com/harun/loginstats/pkg/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharedLedger_SwapAndStats(t *testing.T) {
	shared := NewSharedLedger(nil)
	assert.Equal(t, 0, shared.Stats().Events)

	next := ledger.New()
	next.Insert(login(1, 1000, "alice"))
	next.Insert(login(2, 2000, "bob"))

	prev := shared.Swap(next)
	require.NotNil(t, prev)
	assert.Equal(t, 0, prev.Len())

	stats := shared.Stats()
	assert.Equal(t, 2, stats.Events)
	assert.Equal(t, 2, stats.Users)
	assert.False(t, stats.LoadedAt.IsZero())
}

func TestSharedLedger_ConcurrentReadersAndSwaps(t *testing.T) {
	shared := NewSharedLedger(ledger.New())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			next := ledger.New()
			for j := 0; j <= i; j++ {
				next.Insert(login(1, int64(j)*1000, "alice"))
			}
			shared.Swap(next)
		}(i)
		go func() {
			defer wg.Done()
			_ = shared.View(func(l *ledger.Ledger) error {
				_, _ = l.FirstSession("alice")
				return nil
			})
		}()
	}
	wg.Wait()

	events := shared.Stats().Events
	assert.GreaterOrEqual(t, events, 1)
	assert.LessOrEqual(t, events, 8)
}
