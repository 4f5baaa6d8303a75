package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"dompet/internal/core"
	"dompet/internal/ledger"

	_ "modernc.org/sqlite"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339Nano
)

// SQLiteRepository implements ledger.Store on a local SQLite database.
// SQLite serializes writes to a row, which is what the increment
// operations rely on for lost-update safety.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t *core.Transaction) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, owner_id, title, amount_units, kind, category, occurred_at, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.Title, t.Amount.Units, string(t.Kind), t.Category,
		t.OccurredAt.Format(dateLayout), t.Notes, t.CreatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"kind", t.Kind,
		"amount_units", t.Amount.Units)
	return nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t *core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET title = ?, amount_units = ?, kind = ?, category = ?, occurred_at = ?, notes = ?
		 WHERE id = ? AND owner_id = ?`,
		t.Title, t.Amount.Units, string(t.Kind), t.Category,
		t.OccurredAt.Format(dateLayout), t.Notes, t.ID, t.OwnerID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, ownerID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, amount_units, kind, category, occurred_at, notes, created_at
		 FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	return scanTransaction(row)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, ownerID string, filter ledger.TransactionFilter) ([]core.Transaction, error) {
	query := `SELECT id, owner_id, title, amount_units, kind, category, occurred_at, notes, created_at
	          FROM transactions WHERE owner_id = ?`
	args := []any{ownerID}
	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(filter.Kind))
	}
	query += ` ORDER BY occurred_at DESC, created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateSavingsGoal(ctx context.Context, g *core.SavingsGoal) error {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	var deadline any
	if !g.Deadline.IsEmpty() {
		deadline = g.Deadline.Format(dateLayout)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_goals (id, owner_id, title, target_amount, current_amount, deadline, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.OwnerID, g.Title, g.TargetAmount.Units, g.CurrentAmount.Units,
		deadline, g.CreatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("create savings goal: %w", err)
	}

	slog.InfoContext(ctx, "Savings goal saved",
		"id", g.ID,
		"target_units", g.TargetAmount.Units)
	return nil
}

func (r *SQLiteRepository) UpdateSavingsGoal(ctx context.Context, g *core.SavingsGoal) error {
	var deadline any
	if !g.Deadline.IsEmpty() {
		deadline = g.Deadline.Format(dateLayout)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE savings_goals
		 SET title = ?, target_amount = ?, current_amount = ?, deadline = ?
		 WHERE id = ? AND owner_id = ?`,
		g.Title, g.TargetAmount.Units, g.CurrentAmount.Units, deadline, g.ID, g.OwnerID)
	if err != nil {
		return fmt.Errorf("update savings goal: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteSavingsGoal(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM savings_goals WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete savings goal: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) GetSavingsGoal(ctx context.Context, ownerID, id string) (core.SavingsGoal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, target_amount, current_amount, deadline, created_at
		 FROM savings_goals WHERE id = ? AND owner_id = ?`, id, ownerID)
	return scanSavingsGoal(row)
}

func (r *SQLiteRepository) ListSavingsGoals(ctx context.Context, ownerID string) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, title, target_amount, current_amount, deadline, created_at
		 FROM savings_goals WHERE owner_id = ?
		 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsGoal
	for rows.Next() {
		g, err := scanSavingsGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// IncrementSavingsGoal adds delta inside the database so concurrent
// contributions never lose updates to a stale client-side read.
func (r *SQLiteRepository) IncrementSavingsGoal(ctx context.Context, ownerID, id string, delta core.Money) (core.SavingsGoal, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE savings_goals SET current_amount = current_amount + ?
		 WHERE id = ? AND owner_id = ?`,
		delta.Units, id, ownerID)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("increment savings goal: %w", err)
	}
	if err := requireRow(res); err != nil {
		return core.SavingsGoal{}, err
	}
	return r.GetSavingsGoal(ctx, ownerID, id)
}

func (r *SQLiteRepository) CreateWishlistItem(ctx context.Context, w *core.WishlistItem) error {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO wishlist_items (id, owner_id, title, target_amount, saved_amount, priority, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.OwnerID, w.Title, w.TargetAmount.Units, w.SavedAmount.Units,
		string(w.Priority), w.CreatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("create wishlist item: %w", err)
	}

	slog.InfoContext(ctx, "Wishlist item saved",
		"id", w.ID,
		"priority", w.Priority)
	return nil
}

func (r *SQLiteRepository) UpdateWishlistItem(ctx context.Context, w *core.WishlistItem) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE wishlist_items
		 SET title = ?, target_amount = ?, saved_amount = ?, priority = ?
		 WHERE id = ? AND owner_id = ?`,
		w.Title, w.TargetAmount.Units, w.SavedAmount.Units, string(w.Priority), w.ID, w.OwnerID)
	if err != nil {
		return fmt.Errorf("update wishlist item: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteWishlistItem(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM wishlist_items WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete wishlist item: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) GetWishlistItem(ctx context.Context, ownerID, id string) (core.WishlistItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, target_amount, saved_amount, priority, created_at
		 FROM wishlist_items WHERE id = ? AND owner_id = ?`, id, ownerID)
	return scanWishlistItem(row)
}

func (r *SQLiteRepository) ListWishlistItems(ctx context.Context, ownerID string) ([]core.WishlistItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, title, target_amount, saved_amount, priority, created_at
		 FROM wishlist_items WHERE owner_id = ?
		 ORDER BY CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END, created_at DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist items: %w", err)
	}
	defer rows.Close()

	var out []core.WishlistItem
	for rows.Next() {
		w, err := scanWishlistItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) IncrementWishlistItem(ctx context.Context, ownerID, id string, delta core.Money) (core.WishlistItem, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE wishlist_items SET saved_amount = saved_amount + ?
		 WHERE id = ? AND owner_id = ?`,
		delta.Units, id, ownerID)
	if err != nil {
		return core.WishlistItem{}, fmt.Errorf("increment wishlist item: %w", err)
	}
	if err := requireRow(res); err != nil {
		return core.WishlistItem{}, err
	}
	return r.GetWishlistItem(ctx, ownerID, id)
}

// requireRow maps a zero-row write to ledger.ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t                    core.Transaction
		kind                 string
		occurredAt, createdAt string
	)
	err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Amount.Units, &kind,
		&t.Category, &occurredAt, &t.Notes, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Kind = core.TransactionKind(kind)
	if t.OccurredAt, err = parseDate(occurredAt); err != nil {
		return core.Transaction{}, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func scanSavingsGoal(row rowScanner) (core.SavingsGoal, error) {
	var (
		g         core.SavingsGoal
		deadline  sql.NullString
		createdAt string
	)
	err := row.Scan(&g.ID, &g.OwnerID, &g.Title, &g.TargetAmount.Units,
		&g.CurrentAmount.Units, &deadline, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingsGoal{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("scan savings goal: %w", err)
	}
	if deadline.Valid {
		if g.Deadline, err = parseDate(deadline.String); err != nil {
			return core.SavingsGoal{}, err
		}
	}
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.SavingsGoal{}, err
	}
	return g, nil
}

func scanWishlistItem(row rowScanner) (core.WishlistItem, error) {
	var (
		w         core.WishlistItem
		priority  string
		createdAt string
	)
	err := row.Scan(&w.ID, &w.OwnerID, &w.Title, &w.TargetAmount.Units,
		&w.SavedAmount.Units, &priority, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.WishlistItem{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.WishlistItem{}, fmt.Errorf("scan wishlist item: %w", err)
	}
	w.Priority = core.Priority(priority)
	if w.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.WishlistItem{}, err
	}
	return w, nil
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse stored date %q: %w", s, err)
	}
	return core.Date{Time: t}, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", s, err)
	}
	return t, nil
}
