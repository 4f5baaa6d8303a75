// Package memory implements the ledger store in process memory. It backs
// tests and local runs where no external store is available.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"dompet/internal/core"
	"dompet/internal/ledger"
)

type Store struct {
	mu           sync.Mutex
	transactions map[string]core.Transaction
	goals        map[string]core.SavingsGoal
	wishlist     map[string]core.WishlistItem
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		transactions: make(map[string]core.Transaction),
		goals:        make(map[string]core.SavingsGoal),
		wishlist:     make(map[string]core.WishlistItem),
	}
}

func (s *Store) CreateTransaction(_ context.Context, t *core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	s.transactions[t.ID] = *t
	return nil
}

func (s *Store) UpdateTransaction(_ context.Context, t *core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.transactions[t.ID]
	if !ok || existing.OwnerID != t.OwnerID {
		return ledger.ErrNotFound
	}
	t.CreatedAt = existing.CreatedAt
	s.transactions[t.ID] = *t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.transactions[id]
	if !ok || existing.OwnerID != ownerID {
		return ledger.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, ownerID, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.OwnerID != ownerID {
		return core.Transaction{}, ledger.ErrNotFound
	}
	return t, nil
}

func (s *Store) ListTransactions(_ context.Context, ownerID string, filter ledger.TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		if t.OwnerID != ownerID {
			continue
		}
		if filter.Kind != "" && t.Kind != filter.Kind {
			continue
		}
		out = append(out, t)
	}
	// Newest first, id as tie breaker for a stable order.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt.Time) {
			return out[i].OccurredAt.After(out[j].OccurredAt.Time)
		}
		return out[i].ID > out[j].ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) CreateSavingsGoal(_ context.Context, g *core.SavingsGoal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	s.goals[g.ID] = *g
	return nil
}

func (s *Store) UpdateSavingsGoal(_ context.Context, g *core.SavingsGoal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.goals[g.ID]
	if !ok || existing.OwnerID != g.OwnerID {
		return ledger.ErrNotFound
	}
	g.CreatedAt = existing.CreatedAt
	s.goals[g.ID] = *g
	return nil
}

func (s *Store) DeleteSavingsGoal(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.goals[id]
	if !ok || existing.OwnerID != ownerID {
		return ledger.ErrNotFound
	}
	delete(s.goals, id)
	return nil
}

func (s *Store) GetSavingsGoal(_ context.Context, ownerID, id string) (core.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.OwnerID != ownerID {
		return core.SavingsGoal{}, ledger.ErrNotFound
	}
	return g, nil
}

func (s *Store) ListSavingsGoals(_ context.Context, ownerID string) ([]core.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.SavingsGoal, 0, len(s.goals))
	for _, g := range s.goals {
		if g.OwnerID == ownerID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) IncrementSavingsGoal(_ context.Context, ownerID, id string, delta core.Money) (core.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.OwnerID != ownerID {
		return core.SavingsGoal{}, ledger.ErrNotFound
	}
	g.CurrentAmount.Units += delta.Units
	s.goals[id] = g
	return g, nil
}

func (s *Store) CreateWishlistItem(_ context.Context, w *core.WishlistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}
	s.wishlist[w.ID] = *w
	return nil
}

func (s *Store) UpdateWishlistItem(_ context.Context, w *core.WishlistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.wishlist[w.ID]
	if !ok || existing.OwnerID != w.OwnerID {
		return ledger.ErrNotFound
	}
	w.CreatedAt = existing.CreatedAt
	s.wishlist[w.ID] = *w
	return nil
}

func (s *Store) DeleteWishlistItem(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.wishlist[id]
	if !ok || existing.OwnerID != ownerID {
		return ledger.ErrNotFound
	}
	delete(s.wishlist, id)
	return nil
}

func (s *Store) GetWishlistItem(_ context.Context, ownerID, id string) (core.WishlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wishlist[id]
	if !ok || w.OwnerID != ownerID {
		return core.WishlistItem{}, ledger.ErrNotFound
	}
	return w, nil
}

func (s *Store) ListWishlistItems(_ context.Context, ownerID string) ([]core.WishlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.WishlistItem, 0, len(s.wishlist))
	for _, w := range s.wishlist {
		if w.OwnerID == ownerID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority.Rank() != out[j].Priority.Rank() {
			return out[i].Priority.Rank() < out[j].Priority.Rank()
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) IncrementWishlistItem(_ context.Context, ownerID, id string, delta core.Money) (core.WishlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wishlist[id]
	if !ok || w.OwnerID != ownerID {
		return core.WishlistItem{}, ledger.ErrNotFound
	}
	w.SavedAmount.Units += delta.Units
	s.wishlist[id] = w
	return w, nil
}

func (s *Store) Close() error { return nil }
