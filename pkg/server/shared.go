package server

import (
	"sync"
	"time"

	"github.com/harun/loginstats/pkg/ledger"
)

// SharedLedger guards a ledger for concurrent readers. Reloads build a new
// ledger off-lock and swap it in, so queries never observe a partial load.
type SharedLedger struct {
	mu       sync.RWMutex
	ledger   *ledger.Ledger
	loadedAt time.Time
}

// NewSharedLedger wraps l. A nil l is replaced by an empty ledger.
func NewSharedLedger(l *ledger.Ledger) *SharedLedger {
	if l == nil {
		l = ledger.New()
	}
	return &SharedLedger{ledger: l, loadedAt: time.Now()}
}

// View runs fn with shared access to the current ledger. fn must not retain
// or mutate the ledger.
func (s *SharedLedger) View(fn func(*ledger.Ledger) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(s.ledger)
}

// Swap installs l and returns the previous ledger.
func (s *SharedLedger) Swap(l *ledger.Ledger) *ledger.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.ledger
	s.ledger = l
	s.loadedAt = time.Now()
	return prev
}

// Stats reports the size of the current ledger.
func (s *SharedLedger) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		Events:   s.ledger.Len(),
		Users:    len(s.ledger.Users()),
		LoadedAt: s.loadedAt,
	}
}
