package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"dompet/internal/core"
	"dompet/internal/ledger"
)

func TestOwnerScoping(t *testing.T) {
	s := New()
	ctx := context.Background()

	tx := core.Transaction{ID: "t1", OwnerID: "alice", Title: "Lunch",
		Amount: core.Money{Units: 50000}, Kind: core.Expense, OccurredAt: core.NewDate(2025, 5, 1)}
	if err := s.CreateTransaction(ctx, &tx); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := s.GetTransaction(ctx, "bob", "t1"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("cross-owner read should be not found, got %v", err)
	}
	if err := s.DeleteTransaction(ctx, "bob", "t1"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("cross-owner delete should be not found, got %v", err)
	}

	list, err := s.ListTransactions(ctx, "bob", ledger.TransactionFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("bob should see no rows, got %d", len(list))
	}
}

func TestListTransactionsOrderAndFilter(t *testing.T) {
	s := New()
	ctx := context.Background()

	dates := []core.Date{core.NewDate(2025, 1, 10), core.NewDate(2025, 3, 2), core.NewDate(2025, 2, 20)}
	kinds := []core.TransactionKind{core.Income, core.Expense, core.Expense}
	for i := range dates {
		tx := core.Transaction{ID: string(rune('a' + i)), OwnerID: "o", Title: "t",
			Amount: core.Money{Units: 1}, Kind: kinds[i], OccurredAt: dates[i]}
		if err := s.CreateTransaction(ctx, &tx); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	list, err := s.ListTransactions(ctx, "o", ledger.TransactionFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || !list[0].OccurredAt.Equal(core.NewDate(2025, 3, 2).Time) {
		t.Fatalf("expected newest first, got %+v", list)
	}

	expenses, err := s.ListTransactions(ctx, "o", ledger.TransactionFilter{Kind: core.Expense})
	if err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	if len(expenses) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(expenses))
	}

	limited, err := s.ListTransactions(ctx, "o", ledger.TransactionFilter{Limit: 1})
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 row, got %d", len(limited))
	}
}

func TestIncrementSavingsGoal(t *testing.T) {
	s := New()
	ctx := context.Background()

	g := core.SavingsGoal{ID: "g1", OwnerID: "o", Title: "Fund",
		TargetAmount: core.Money{Units: 1000000}}
	if err := s.CreateSavingsGoal(ctx, &g); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.IncrementSavingsGoal(ctx, "o", "g1", core.Money{Units: 300000})
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if got.CurrentAmount.Units != 300000 {
		t.Fatalf("current = %d, want 300000", got.CurrentAmount.Units)
	}

	got, err = s.IncrementSavingsGoal(ctx, "o", "g1", core.Money{Units: 800000})
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	// Overfunding past the target is storage-legal.
	if got.CurrentAmount.Units != 1100000 {
		t.Fatalf("current = %d, want 1100000", got.CurrentAmount.Units)
	}

	if _, err := s.IncrementSavingsGoal(ctx, "o", "missing", core.Money{Units: 1}); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWishlistPriorityOrder(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i, p := range []core.Priority{core.PriorityLow, core.PriorityHigh, core.PriorityMedium} {
		w := core.WishlistItem{ID: string(rune('a' + i)), OwnerID: "o", Title: "w",
			TargetAmount: core.Money{Units: 10}, Priority: p,
			CreatedAt: time.Now()}
		if err := s.CreateWishlistItem(ctx, &w); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	list, err := s.ListWishlistItems(ctx, "o")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []core.Priority{core.PriorityHigh, core.PriorityMedium, core.PriorityLow}
	for i, w := range list {
		if w.Priority != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, w.Priority, want[i])
		}
	}
}

func TestUpdatePreservesCreatedAt(t *testing.T) {
	s := New()
	ctx := context.Background()

	g := core.SavingsGoal{ID: "g1", OwnerID: "o", Title: "Fund",
		TargetAmount: core.Money{Units: 100}}
	if err := s.CreateSavingsGoal(ctx, &g); err != nil {
		t.Fatalf("create: %v", err)
	}
	created := g.CreatedAt

	upd := g
	upd.Title = "Renamed"
	upd.CreatedAt = time.Time{}
	if err := s.UpdateSavingsGoal(ctx, &upd); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !upd.CreatedAt.Equal(created) {
		t.Fatalf("update must keep original CreatedAt")
	}

	stored, err := s.GetSavingsGoal(ctx, "o", "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Title != "Renamed" {
		t.Fatalf("title = %q", stored.Title)
	}
}
