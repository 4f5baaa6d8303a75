// Package supabase implements the ledger store against a Supabase
// project, the remote store the original wallet ran on. Rows are scoped
// with owner_id filters on every query.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/supabase-community/supabase-go"

	"dompet/internal/core"
	"dompet/internal/ledger"
)

const dateLayout = "2006-01-02"

type Repository struct {
	client *supabase.Client
}

var _ ledger.Store = (*Repository)(nil)

func NewRepository(url, key string) (*Repository, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &Repository{client: client}, nil
}

func (r *Repository) Close() error { return nil }

// transactionRow mirrors the transactions table layout. CreatedAt is a
// pointer so fresh inserts omit the column and the database default
// applies; a zero time.Time would serialize as year 1 and override it.
type transactionRow struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"owner_id"`
	Title      string     `json:"title"`
	Amount     int64      `json:"amount"`
	Kind       string     `json:"kind"`
	Category   string     `json:"category"`
	OccurredAt string     `json:"occurred_at"`
	Notes      string     `json:"notes"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

type goalRow struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	Title         string     `json:"title"`
	TargetAmount  int64      `json:"target_amount"`
	CurrentAmount int64      `json:"current_amount"`
	Deadline      *string    `json:"deadline,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

type wishlistRow struct {
	ID           string     `json:"id"`
	OwnerID      string     `json:"owner_id"`
	Title        string     `json:"title"`
	TargetAmount int64      `json:"target_amount"`
	SavedAmount  int64      `json:"saved_amount"`
	Priority     string     `json:"priority"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

func (r *Repository) CreateTransaction(ctx context.Context, t *core.Transaction) error {
	row := toTransactionRow(*t)
	data, _, err := r.client.From(string(ledger.Transactions)).
		Insert(row, false, "", "representation", "").
		Execute()
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	var created []transactionRow
	if err := json.Unmarshal(data, &created); err != nil {
		return fmt.Errorf("parse created transaction: %w", err)
	}
	if len(created) > 0 {
		t.CreatedAt = createdAtValue(created[0].CreatedAt)
	}
	return nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, t *core.Transaction) error {
	row := toTransactionRow(*t)
	data, _, err := r.client.From(string(ledger.Transactions)).
		Update(row, "representation", "").
		Eq("id", t.ID).
		Eq("owner_id", t.OwnerID).
		Execute()
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRows(data)
}

func (r *Repository) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	data, _, err := r.client.From(string(ledger.Transactions)).
		Delete("representation", "").
		Eq("id", id).
		Eq("owner_id", ownerID).
		Execute()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRows(data)
}

func (r *Repository) GetTransaction(ctx context.Context, ownerID, id string) (core.Transaction, error) {
	data, _, err := r.client.From(string(ledger.Transactions)).
		Select("*", "", false).
		Eq("id", id).
		Eq("owner_id", ownerID).
		Execute()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	var rows []transactionRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction: %w", err)
	}
	if len(rows) == 0 {
		return core.Transaction{}, ledger.ErrNotFound
	}
	return fromTransactionRow(rows[0])
}

func (r *Repository) ListTransactions(ctx context.Context, ownerID string, filter ledger.TransactionFilter) ([]core.Transaction, error) {
	query := r.client.From(string(ledger.Transactions)).
		Select("*", "", false).
		Eq("owner_id", ownerID)
	if filter.Kind != "" {
		query = query.Eq("kind", string(filter.Kind))
	}
	query = query.Order("occurred_at.desc", nil)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit, "")
	}

	data, _, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	var rows []transactionRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := fromTransactionRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *Repository) CreateSavingsGoal(ctx context.Context, g *core.SavingsGoal) error {
	row := toGoalRow(*g)
	data, _, err := r.client.From(string(ledger.SavingsGoals)).
		Insert(row, false, "", "representation", "").
		Execute()
	if err != nil {
		return fmt.Errorf("create savings goal: %w", err)
	}
	var created []goalRow
	if err := json.Unmarshal(data, &created); err != nil {
		return fmt.Errorf("parse created savings goal: %w", err)
	}
	if len(created) > 0 {
		g.CreatedAt = createdAtValue(created[0].CreatedAt)
	}
	return nil
}

func (r *Repository) UpdateSavingsGoal(ctx context.Context, g *core.SavingsGoal) error {
	row := toGoalRow(*g)
	data, _, err := r.client.From(string(ledger.SavingsGoals)).
		Update(row, "representation", "").
		Eq("id", g.ID).
		Eq("owner_id", g.OwnerID).
		Execute()
	if err != nil {
		return fmt.Errorf("update savings goal: %w", err)
	}
	return requireRows(data)
}

func (r *Repository) DeleteSavingsGoal(ctx context.Context, ownerID, id string) error {
	data, _, err := r.client.From(string(ledger.SavingsGoals)).
		Delete("representation", "").
		Eq("id", id).
		Eq("owner_id", ownerID).
		Execute()
	if err != nil {
		return fmt.Errorf("delete savings goal: %w", err)
	}
	return requireRows(data)
}

func (r *Repository) GetSavingsGoal(ctx context.Context, ownerID, id string) (core.SavingsGoal, error) {
	data, _, err := r.client.From(string(ledger.SavingsGoals)).
		Select("*", "", false).
		Eq("id", id).
		Eq("owner_id", ownerID).
		Execute()
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("get savings goal: %w", err)
	}
	var rows []goalRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("parse savings goal: %w", err)
	}
	if len(rows) == 0 {
		return core.SavingsGoal{}, ledger.ErrNotFound
	}
	return fromGoalRow(rows[0])
}

func (r *Repository) ListSavingsGoals(ctx context.Context, ownerID string) ([]core.SavingsGoal, error) {
	data, _, err := r.client.From(string(ledger.SavingsGoals)).
		Select("*", "", false).
		Eq("owner_id", ownerID).
		Order("created_at.desc", nil).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	var rows []goalRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse savings goals: %w", err)
	}
	out := make([]core.SavingsGoal, 0, len(rows))
	for _, row := range rows {
		g, err := fromGoalRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// IncrementSavingsGoal falls back to read-modify-write: PostgREST has no
// increment verb without a database function. Concurrent contributions
// through this backend keep last-writer-wins semantics.
func (r *Repository) IncrementSavingsGoal(ctx context.Context, ownerID, id string, delta core.Money) (core.SavingsGoal, error) {
	g, err := r.GetSavingsGoal(ctx, ownerID, id)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	g.CurrentAmount.Units += delta.Units
	if err := r.UpdateSavingsGoal(ctx, &g); err != nil {
		return core.SavingsGoal{}, err
	}
	return g, nil
}

func (r *Repository) CreateWishlistItem(ctx context.Context, w *core.WishlistItem) error {
	row := toWishlistRow(*w)
	data, _, err := r.client.From(string(ledger.WishlistItems)).
		Insert(row, false, "", "representation", "").
		Execute()
	if err != nil {
		return fmt.Errorf("create wishlist item: %w", err)
	}
	var created []wishlistRow
	if err := json.Unmarshal(data, &created); err != nil {
		return fmt.Errorf("parse created wishlist item: %w", err)
	}
	if len(created) > 0 {
		w.CreatedAt = createdAtValue(created[0].CreatedAt)
	}
	return nil
}

func (r *Repository) UpdateWishlistItem(ctx context.Context, w *core.WishlistItem) error {
	row := toWishlistRow(*w)
	data, _, err := r.client.From(string(ledger.WishlistItems)).
		Update(row, "representation", "").
		Eq("id", w.ID).
		Eq("owner_id", w.OwnerID).
		Execute()
	if err != nil {
		return fmt.Errorf("update wishlist item: %w", err)
	}
	return requireRows(data)
}

func (r *Repository) DeleteWishlistItem(ctx context.Context, ownerID, id string) error {
	data, _, err := r.client.From(string(ledger.WishlistItems)).
		Delete("representation", "").
		Eq("id", id).
		Eq("owner_id", ownerID).
		Execute()
	if err != nil {
		return fmt.Errorf("delete wishlist item: %w", err)
	}
	return requireRows(data)
}

func (r *Repository) GetWishlistItem(ctx context.Context, ownerID, id string) (core.WishlistItem, error) {
	data, _, err := r.client.From(string(ledger.WishlistItems)).
		Select("*", "", false).
		Eq("id", id).
		Eq("owner_id", ownerID).
		Execute()
	if err != nil {
		return core.WishlistItem{}, fmt.Errorf("get wishlist item: %w", err)
	}
	var rows []wishlistRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return core.WishlistItem{}, fmt.Errorf("parse wishlist item: %w", err)
	}
	if len(rows) == 0 {
		return core.WishlistItem{}, ledger.ErrNotFound
	}
	return fromWishlistRow(rows[0]), nil
}

func (r *Repository) ListWishlistItems(ctx context.Context, ownerID string) ([]core.WishlistItem, error) {
	data, _, err := r.client.From(string(ledger.WishlistItems)).
		Select("*", "", false).
		Eq("owner_id", ownerID).
		Order("created_at.desc", nil).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("list wishlist items: %w", err)
	}
	var rows []wishlistRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse wishlist items: %w", err)
	}
	out := make([]core.WishlistItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromWishlistRow(row))
	}
	// Priority order is rank-based, which the column's text values do
	// not sort to on the server.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() < out[j].Priority.Rank()
	})
	return out, nil
}

func (r *Repository) IncrementWishlistItem(ctx context.Context, ownerID, id string, delta core.Money) (core.WishlistItem, error) {
	w, err := r.GetWishlistItem(ctx, ownerID, id)
	if err != nil {
		return core.WishlistItem{}, err
	}
	w.SavedAmount.Units += delta.Units
	if err := r.UpdateWishlistItem(ctx, &w); err != nil {
		return core.WishlistItem{}, err
	}
	return w, nil
}

// requireRows maps an empty representation payload to ledger.ErrNotFound.
func requireRows(data []byte) error {
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("parse write response: %w", err)
	}
	if len(rows) == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func toTransactionRow(t core.Transaction) transactionRow {
	return transactionRow{
		ID:         t.ID,
		OwnerID:    t.OwnerID,
		Title:      t.Title,
		Amount:     t.Amount.Units,
		Kind:       string(t.Kind),
		Category:   t.Category,
		OccurredAt: t.OccurredAt.Format(dateLayout),
		Notes:      t.Notes,
		CreatedAt:  createdAtColumn(t.CreatedAt),
	}
}

// createdAtColumn keeps an unset creation time out of the payload.
func createdAtColumn(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func fromTransactionRow(row transactionRow) (core.Transaction, error) {
	occurred, err := time.Parse(dateLayout, row.OccurredAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse occurred_at %q: %w", row.OccurredAt, err)
	}
	return core.Transaction{
		ID:         row.ID,
		OwnerID:    row.OwnerID,
		Title:      row.Title,
		Amount:     core.Money{Units: row.Amount},
		Kind:       core.TransactionKind(row.Kind),
		Category:   row.Category,
		OccurredAt: core.Date{Time: occurred},
		Notes:      row.Notes,
		CreatedAt:  createdAtValue(row.CreatedAt),
	}, nil
}

func createdAtValue(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func toGoalRow(g core.SavingsGoal) goalRow {
	row := goalRow{
		ID:            g.ID,
		OwnerID:       g.OwnerID,
		Title:         g.Title,
		TargetAmount:  g.TargetAmount.Units,
		CurrentAmount: g.CurrentAmount.Units,
		CreatedAt:     createdAtColumn(g.CreatedAt),
	}
	if !g.Deadline.IsEmpty() {
		d := g.Deadline.Format(dateLayout)
		row.Deadline = &d
	}
	return row
}

func fromGoalRow(row goalRow) (core.SavingsGoal, error) {
	g := core.SavingsGoal{
		ID:            row.ID,
		OwnerID:       row.OwnerID,
		Title:         row.Title,
		TargetAmount:  core.Money{Units: row.TargetAmount},
		CurrentAmount: core.Money{Units: row.CurrentAmount},
		CreatedAt:     createdAtValue(row.CreatedAt),
	}
	if row.Deadline != nil && *row.Deadline != "" {
		d, err := time.Parse(dateLayout, *row.Deadline)
		if err != nil {
			return core.SavingsGoal{}, fmt.Errorf("parse deadline %q: %w", *row.Deadline, err)
		}
		g.Deadline = core.Date{Time: d}
	}
	return g, nil
}

func toWishlistRow(w core.WishlistItem) wishlistRow {
	return wishlistRow{
		ID:           w.ID,
		OwnerID:      w.OwnerID,
		Title:        w.Title,
		TargetAmount: w.TargetAmount.Units,
		SavedAmount:  w.SavedAmount.Units,
		Priority:     string(w.Priority),
		CreatedAt:    createdAtColumn(w.CreatedAt),
	}
}

func fromWishlistRow(row wishlistRow) core.WishlistItem {
	return core.WishlistItem{
		ID:           row.ID,
		OwnerID:      row.OwnerID,
		Title:        row.Title,
		TargetAmount: core.Money{Units: row.TargetAmount},
		SavedAmount:  core.Money{Units: row.SavedAmount},
		Priority:     core.Priority(row.Priority),
		CreatedAt:    createdAtValue(row.CreatedAt),
	}
}
