// Package ledger defines the ports between the ledger engine and its
// storage backends.
package ledger

import (
	"context"
	"errors"

	"dompet/internal/core"
)

// ErrNotFound is returned when a row vanished between read and write, or
// never existed for the requesting owner.
var ErrNotFound = errors.New("not found")

// Collection names the three persisted collections. The values double as
// table names and change-feed routing keys.
type Collection string

const (
	Transactions  Collection = "transactions"
	SavingsGoals  Collection = "savings_goals"
	WishlistItems Collection = "wishlist_items"
)

// TransactionFilter narrows transaction listings. Zero value lists
// everything for the owner, newest first.
type TransactionFilter struct {
	Kind  core.TransactionKind // optional, empty matches both kinds
	Limit int                  // optional, 0 means no limit
}

// Store is the row-oriented persistence surface every backend provides.
// All operations are scoped to a single owner; no call may touch another
// owner's rows. Writes to the same row are serialized by the backend,
// which is the only ordering guarantee the client relies on.
type Store interface {
	CreateTransaction(ctx context.Context, t *core.Transaction) error
	UpdateTransaction(ctx context.Context, t *core.Transaction) error
	DeleteTransaction(ctx context.Context, ownerID, id string) error
	GetTransaction(ctx context.Context, ownerID, id string) (core.Transaction, error)
	ListTransactions(ctx context.Context, ownerID string, filter TransactionFilter) ([]core.Transaction, error)

	CreateSavingsGoal(ctx context.Context, g *core.SavingsGoal) error
	UpdateSavingsGoal(ctx context.Context, g *core.SavingsGoal) error
	DeleteSavingsGoal(ctx context.Context, ownerID, id string) error
	GetSavingsGoal(ctx context.Context, ownerID, id string) (core.SavingsGoal, error)
	ListSavingsGoals(ctx context.Context, ownerID string) ([]core.SavingsGoal, error)
	// IncrementSavingsGoal applies a server-side increment to the goal's
	// accumulated amount and returns the updated row. Concurrent
	// contributions must not lose updates where the backend can avoid it.
	IncrementSavingsGoal(ctx context.Context, ownerID, id string, delta core.Money) (core.SavingsGoal, error)

	CreateWishlistItem(ctx context.Context, w *core.WishlistItem) error
	UpdateWishlistItem(ctx context.Context, w *core.WishlistItem) error
	DeleteWishlistItem(ctx context.Context, ownerID, id string) error
	GetWishlistItem(ctx context.Context, ownerID, id string) (core.WishlistItem, error)
	ListWishlistItems(ctx context.Context, ownerID string) ([]core.WishlistItem, error)
	IncrementWishlistItem(ctx context.Context, ownerID, id string, delta core.Money) (core.WishlistItem, error)

	Close() error
}
