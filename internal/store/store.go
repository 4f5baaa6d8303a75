// Package store exposes owner-scoped accessors over a ledger backend.
// Every mutation validates before touching the backend, returns the
// authoritative stored record and emits a change event afterwards.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"dompet/internal/auth"
	"dompet/internal/core"
	"dompet/internal/ledger"
	"dompet/internal/notify"
)

// Publisher forwards change events to an external feed. The notifier and
// the AMQP feed both satisfy it.
type Publisher interface {
	Publish(notify.Event)
}

type Store struct {
	backend    ledger.Store
	publishers []Publisher
	logger     *slog.Logger
}

func New(backend ledger.Store, logger *slog.Logger, publishers ...Publisher) *Store {
	return &Store{
		backend:    backend,
		publishers: publishers,
		logger:     logger,
	}
}

func (s *Store) emit(collection ledger.Collection, kind notify.Kind, id, ownerID string) {
	e := notify.Event{Collection: collection, Kind: kind, ID: id, OwnerID: ownerID}
	for _, p := range s.publishers {
		p.Publish(e)
	}
}

// TransactionInput carries the caller-controlled fields of a transaction.
type TransactionInput struct {
	Title      string
	Amount     core.Money
	Kind       core.TransactionKind
	Category   string
	OccurredAt core.Date
	Notes      string
}

// TransactionPatch updates a subset of fields; nil means unchanged.
type TransactionPatch struct {
	Title      *string
	Amount     *core.Money
	Kind       *core.TransactionKind
	Category   *string
	OccurredAt *core.Date
	Notes      *string
}

func (s *Store) CreateTransaction(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	ownerID, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return core.Transaction{}, err
	}

	t := core.Transaction{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Title:      in.Title,
		Amount:     in.Amount,
		Kind:       in.Kind,
		Category:   in.Category,
		OccurredAt: in.OccurredAt,
		Notes:      in.Notes,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.backend.CreateTransaction(ctx, &t); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	s.emit(ledger.Transactions, notify.KindInsert, t.ID, ownerID)
	return t, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, id string, patch TransactionPatch) (core.Transaction, error) {
	ownerID, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return core.Transaction{}, err
	}

	t, err := s.backend.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Amount != nil {
		t.Amount = *patch.Amount
	}
	if patch.Kind != nil {
		t.Kind = *patch.Kind
	}
	if patch.Category != nil {
		t.Category = *patch.Category
	}
	if patch.OccurredAt != nil {
		t.OccurredAt = *patch.OccurredAt
	}
	if patch.Notes != nil {
		t.Notes = *patch.Notes
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.backend.UpdateTransaction(ctx, &t); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.emit(ledger.Transactions, notify.KindUpdate, t.ID, ownerID)
	return t, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	ownerID, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.backend.DeleteTransaction(ctx, ownerID, id); err != nil {
		return err
	}
	s.emit(ledger.Transactions, notify.KindDelete, id, ownerID)
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	ownerID, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	return s.backend.GetTransaction(ctx, ownerID, id)
}

func (s *Store) ListTransactions(ctx context.Context, filter ledger.TransactionFilter) ([]core.Transaction, error) {
	ownerID, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.backend.ListTransactions(ctx, ownerID, filter)
}

// SavingsGoalInput carries the caller-controlled fields of a savings goal.
type SavingsGoalInput struct {
	Title         string
	TargetAmount  core.Money
	CurrentAmount core.Money
	Deadline      core.Date
}

type SavingsGoalPatch struct {
	Title         *string
	TargetAmount  *core.Money
	CurrentAmount *core.Money
	Deadline      *core.Date
}

func (s *Store) CreateSavingsGoal(ctx context.Context, in SavingsGoalInput) (core.SavingsGoal, error) {
	ownerID, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return core.SavingsGoal{}, err
	}

	g := core.SavingsGoal{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Title:         in.Title,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
		Deadline:      in.Deadline,
	}
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}

	if err := s.backend.CreateSavingsGoal(ctx, &g); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("create savings goal: %w", err)
	}
	s.emit(ledger.SavingsGoals, notify.KindInsert, g.ID, ownerID)
	return g, nil
}

func (s *Store) UpdateSavingsGoal(ctx context.Context, id string, patch SavingsGoalPatch) (core.SavingsGoal, error) {
	ownerID, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return core.SavingsGoal{}, err
	}

	g, err := s.backend.GetSavingsGoal(ctx, ownerID, id)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	if patch.Title != nil {
		g.Title = *patch.Title
	}
	if patch.TargetAmount != nil {
		g.TargetAmount = *patch.TargetAmount
	}
	if patch.CurrentAmount != nil {
		g.CurrentAmount = *patch.CurrentAmount
	}
	if patch.Deadline != nil {
		g.Deadline = *patch.Deadline
	}
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}

	if err := s.backend.UpdateSavingsGoal(ctx, &g); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("update savings goal: %w", err)
	}
	s.emit(ledger.SavingsGoals, notify.KindUpdate, g.ID, ownerID)
	return g, nil
}

func (s *Store) DeleteSavingsGoal(ctx context.Context, id string) error {
	ownerID, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.backend.DeleteSavingsGoal(ctx, ownerID, id); err != nil {
		return err
	}
	s.emit(ledger.SavingsGoals, notify.KindDelete, id, ownerID)
	return nil
}

func (s *Store) GetSavingsGoal(ctx context.Context, id string) (core.SavingsGoal, error) {
	ownerID, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	return s.backend.GetSavingsGoal(ctx, ownerID, id)
}

func (s *Store) ListSavingsGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	ownerID, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.backend.ListSavingsGoals(ctx, ownerID)
}

// IncrementSavingsGoal adds delta to the goal's saved amount in the
// backend and returns the updated goal.
func (s *Store) IncrementSavingsGoal(ctx context.Context, id string, delta core.Money) (core.SavingsGoal, error) {
	ownerID, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	g, err := s.backend.IncrementSavingsGoal(ctx, ownerID, id, delta)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	s.emit(ledger.SavingsGoals, notify.KindUpdate, g.ID, ownerID)
	return g, nil
}

// WishlistItemInput carries the caller-controlled fields of a wishlist item.
type WishlistItemInput struct {
	Title        string
	TargetAmount core.Money
	SavedAmount  core.Money
	Priority     core.Priority
}

type WishlistItemPatch struct {
	Title        *string
	TargetAmount *core.Money
	SavedAmount  *core.Money
	Priority     *core.Priority
}

func (s *Store) CreateWishlistItem(ctx context.Context, in WishlistItemInput) (core.WishlistItem, error) {
	ownerID, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return core.WishlistItem{}, err
	}

	w := core.WishlistItem{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Title:        in.Title,
		TargetAmount: in.TargetAmount,
		SavedAmount:  in.SavedAmount,
		Priority:     in.Priority,
	}
	if err := w.Validate(); err != nil {
		return core.WishlistItem{}, err
	}

	if err := s.backend.CreateWishlistItem(ctx, &w); err != nil {
		return core.WishlistItem{}, fmt.Errorf("create wishlist item: %w", err)
	}
	s.emit(ledger.WishlistItems, notify.KindInsert, w.ID, ownerID)
	return w, nil
}

func (s *Store) UpdateWishlistItem(ctx context.Context, id string, patch WishlistItemPatch) (core.WishlistItem, error) {
	ownerID, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return core.WishlistItem{}, err
	}

	w, err := s.backend.GetWishlistItem(ctx, ownerID, id)
	if err != nil {
		return core.WishlistItem{}, err
	}
	if patch.Title != nil {
		w.Title = *patch.Title
	}
	if patch.TargetAmount != nil {
		w.TargetAmount = *patch.TargetAmount
	}
	if patch.SavedAmount != nil {
		w.SavedAmount = *patch.SavedAmount
	}
	if patch.Priority != nil {
		w.Priority = *patch.Priority
	}
	if err := w.Validate(); err != nil {
		return core.WishlistItem{}, err
	}

	if err := s.backend.UpdateWishlistItem(ctx, &w); err != nil {
		return core.WishlistItem{}, fmt.Errorf("update wishlist item: %w", err)
	}
	s.emit(ledger.WishlistItems, notify.KindUpdate, w.ID, ownerID)
	return w, nil
}

func (s *Store) DeleteWishlistItem(ctx context.Context, id string) error {
	ownerID, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.backend.DeleteWishlistItem(ctx, ownerID, id); err != nil {
		return err
	}
	s.emit(ledger.WishlistItems, notify.KindDelete, id, ownerID)
	return nil
}

func (s *Store) GetWishlistItem(ctx context.Context, id string) (core.WishlistItem, error) {
	ownerID, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return core.WishlistItem{}, err
	}
	return s.backend.GetWishlistItem(ctx, ownerID, id)
}

func (s *Store) ListWishlistItems(ctx context.Context) ([]core.WishlistItem, error) {
	ownerID, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.backend.ListWishlistItems(ctx, ownerID)
}

func (s *Store) IncrementWishlistItem(ctx context.Context, id string, delta core.Money) (core.WishlistItem, error) {
	ownerID, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return core.WishlistItem{}, err
	}
	w, err := s.backend.IncrementWishlistItem(ctx, ownerID, id, delta)
	if err != nil {
		return core.WishlistItem{}, err
	}
	s.emit(ledger.WishlistItems, notify.KindUpdate, w.ID, ownerID)
	return w, nil
}
