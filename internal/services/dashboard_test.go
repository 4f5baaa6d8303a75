package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"dompet/internal/auth"
	"dompet/internal/core"
	"dompet/internal/memory"
	"dompet/internal/notify"
	"dompet/internal/store"
)

func date2026(t *testing.T, month, day int) core.Date {
	t.Helper()
	return core.NewDate(2026, month, day)
}

func TestDashboardStats(t *testing.T) {
	notifier := notify.New(slog.Default())
	defer notifier.Close()

	s := store.New(memory.New(), slog.Default(), notifier)
	svc := NewDashboardService(s, notifier, slog.Default())
	ctx := auth.WithOwner(context.Background(), "user-1")

	mustCreateTransaction(t, s, ctx, "Salary", 2000000, core.Income)
	mustCreateTransaction(t, s, ctx, "Rent", 500000, core.Expense)
	if _, err := s.CreateSavingsGoal(ctx, store.SavingsGoalInput{
		Title:         "Emergency fund",
		TargetAmount:  core.Money{Units: 5000000},
		CurrentAmount: core.Money{Units: 100000},
	}); err != nil {
		t.Fatalf("CreateSavingsGoal() error = %v", err)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalIncome.Units != 2000000 {
		t.Errorf("total income = %d, want 2000000", stats.TotalIncome.Units)
	}
	if stats.TotalExpense.Units != 500000 {
		t.Errorf("total expense = %d, want 500000", stats.TotalExpense.Units)
	}
	if stats.Balance.Units != 1500000 {
		t.Errorf("balance = %d, want 1500000", stats.Balance.Units)
	}
	if stats.SavingsTotal.Units != 100000 {
		t.Errorf("savings total = %d, want 100000", stats.SavingsTotal.Units)
	}
}

func TestDashboardStatsRequiresOwner(t *testing.T) {
	s := store.New(memory.New(), slog.Default())
	svc := NewDashboardService(s, nil, slog.Default())

	if _, err := svc.Stats(context.Background()); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
}

func TestDashboardStatsRefreshAfterMutation(t *testing.T) {
	notifier := notify.New(slog.Default())

	s := store.New(memory.New(), slog.Default(), notifier)
	svc := NewDashboardService(s, notifier, slog.Default())
	ctx := auth.WithOwner(context.Background(), "user-1")

	mustCreateTransaction(t, s, ctx, "Salary", 1000000, core.Income)
	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Balance.Units != 1000000 {
		t.Fatalf("balance = %d, want 1000000", stats.Balance.Units)
	}

	mustCreateTransaction(t, s, ctx, "Groceries", 200000, core.Expense)
	// Close drains the queue so the invalidation has happened.
	notifier.Close()

	stats, err = svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Balance.Units != 800000 {
		t.Errorf("balance after mutation = %d, want 800000", stats.Balance.Units)
	}
}

func TestDashboardStatsScopedPerOwner(t *testing.T) {
	s := store.New(memory.New(), slog.Default())
	svc := NewDashboardService(s, nil, slog.Default())

	ctx1 := auth.WithOwner(context.Background(), "user-1")
	ctx2 := auth.WithOwner(context.Background(), "user-2")
	mustCreateTransaction(t, s, ctx1, "Salary", 1000000, core.Income)

	stats, err := svc.Stats(ctx2)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Balance.Units != 0 {
		t.Errorf("other owner's balance = %d, want 0", stats.Balance.Units)
	}
}

func mustCreateTransaction(t *testing.T, s *store.Store, ctx context.Context, title string, units int64, kind core.TransactionKind) {
	t.Helper()
	if _, err := s.CreateTransaction(ctx, store.TransactionInput{
		Title:      title,
		Amount:     core.Money{Units: units},
		Kind:       kind,
		OccurredAt: date2026(t, 1, 15),
	}); err != nil {
		t.Fatalf("CreateTransaction(%q) error = %v", title, err)
	}
}
