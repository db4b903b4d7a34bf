package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// MemoryStore keeps accounts in a mutex-guarded map. It backs tests and the
// default daemon configuration.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[solana.PublicKey]*Record
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[solana.PublicKey]*Record)}
}

func (s *MemoryStore) Get(ctx context.Context, address solana.PublicKey) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.accounts[address]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", address, ErrNotFound)
	}
	return r.Clone(), nil
}

func (s *MemoryStore) ListByOwner(ctx context.Context, owner solana.PublicKey) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Record
	for _, r := range s.accounts {
		if r.Owner.Equals(owner) {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Address.String() < out[j].Address.String()
	})
	return out, nil
}

func (s *MemoryStore) Put(ctx context.Context, records ...*Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		s.accounts[r.Address] = r.Clone()
	}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
