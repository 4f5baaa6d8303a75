package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"dompet/internal/auth"
	"dompet/internal/core"
	"dompet/internal/ledger"
	"dompet/internal/memory"
	"dompet/internal/store"
)

// failingBackend wraps a real backend and fails increments on demand.
type failingBackend struct {
	ledger.Store
	failIncrements bool
}

func (f *failingBackend) IncrementSavingsGoal(ctx context.Context, ownerID, id string, delta core.Money) (core.SavingsGoal, error) {
	if f.failIncrements {
		return core.SavingsGoal{}, errors.New("backend unavailable")
	}
	return f.Store.IncrementSavingsGoal(ctx, ownerID, id, delta)
}

func (f *failingBackend) IncrementWishlistItem(ctx context.Context, ownerID, id string, delta core.Money) (core.WishlistItem, error) {
	if f.failIncrements {
		return core.WishlistItem{}, errors.New("backend unavailable")
	}
	return f.Store.IncrementWishlistItem(ctx, ownerID, id, delta)
}

func newContributionFixture(t *testing.T) (*ContributionService, *store.Store, *failingBackend, context.Context) {
	t.Helper()
	backend := &failingBackend{Store: memory.New()}
	s := store.New(backend, slog.Default())
	svc := NewContributionService(s, slog.Default())
	ctx := auth.WithOwner(context.Background(), "user-1")
	return svc, s, backend, ctx
}

func TestContributeToGoal(t *testing.T) {
	svc, s, _, ctx := newContributionFixture(t)

	goal, err := s.CreateSavingsGoal(ctx, store.SavingsGoalInput{
		Title:        "Vacation",
		TargetAmount: core.Money{Units: 1000000},
	})
	if err != nil {
		t.Fatalf("CreateSavingsGoal() error = %v", err)
	}

	result, err := svc.ContributeToGoal(ctx, goal.ID, core.Money{Units: 300000})
	if err != nil {
		t.Fatalf("ContributeToGoal() error = %v", err)
	}

	if result.Goal.CurrentAmount.Units != 300000 {
		t.Errorf("current amount = %d, want 300000", result.Goal.CurrentAmount.Units)
	}
	tx := result.Transaction
	if tx.Kind != core.Expense {
		t.Errorf("transaction kind = %q, want expense", tx.Kind)
	}
	if tx.Category != core.CategorySavings {
		t.Errorf("transaction category = %q, want %q", tx.Category, core.CategorySavings)
	}
	if tx.Title != "Saving for Vacation" {
		t.Errorf("transaction title = %q, want %q", tx.Title, "Saving for Vacation")
	}
	if tx.Amount.Units != 300000 {
		t.Errorf("transaction amount = %d, want 300000", tx.Amount.Units)
	}

	listed, err := s.ListTransactions(ctx, ledger.TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed %d transactions, want 1", len(listed))
	}
}

func TestDeletingContributionTransactionKeepsGoalAmount(t *testing.T) {
	svc, s, _, ctx := newContributionFixture(t)

	goal, err := s.CreateSavingsGoal(ctx, store.SavingsGoalInput{
		Title:        "Vacation",
		TargetAmount: core.Money{Units: 1000000},
	})
	if err != nil {
		t.Fatalf("CreateSavingsGoal() error = %v", err)
	}

	result, err := svc.ContributeToGoal(ctx, goal.ID, core.Money{Units: 300000})
	if err != nil {
		t.Fatalf("ContributeToGoal() error = %v", err)
	}

	// The transaction and the goal balance are not linked; removing one
	// never cascades into the other.
	if err := s.DeleteTransaction(ctx, result.Transaction.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}

	got, err := s.GetSavingsGoal(ctx, goal.ID)
	if err != nil {
		t.Fatalf("GetSavingsGoal() error = %v", err)
	}
	if got.CurrentAmount.Units != 300000 {
		t.Errorf("current amount after delete = %d, want 300000", got.CurrentAmount.Units)
	}
}

func TestContributeToGoalAllowsOverfunding(t *testing.T) {
	svc, s, _, ctx := newContributionFixture(t)

	goal, err := s.CreateSavingsGoal(ctx, store.SavingsGoalInput{
		Title:         "Laptop",
		TargetAmount:  core.Money{Units: 1000000},
		CurrentAmount: core.Money{Units: 900000},
	})
	if err != nil {
		t.Fatalf("CreateSavingsGoal() error = %v", err)
	}

	result, err := svc.ContributeToGoal(ctx, goal.ID, core.Money{Units: 200000})
	if err != nil {
		t.Fatalf("ContributeToGoal() error = %v", err)
	}
	if result.Goal.CurrentAmount.Units != 1100000 {
		t.Errorf("current amount = %d, want 1100000 (past target)", result.Goal.CurrentAmount.Units)
	}
}

func TestContributeToGoalRejectsNonPositiveAmount(t *testing.T) {
	svc, s, _, ctx := newContributionFixture(t)

	goal, err := s.CreateSavingsGoal(ctx, store.SavingsGoalInput{
		Title:        "Vacation",
		TargetAmount: core.Money{Units: 1000000},
	})
	if err != nil {
		t.Fatalf("CreateSavingsGoal() error = %v", err)
	}

	for _, units := range []int64{0, -100} {
		if _, err := svc.ContributeToGoal(ctx, goal.ID, core.Money{Units: units}); !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("amount %d: error = %v, want ErrInvalidAmount", units, err)
		}
	}

	listed, err := s.ListTransactions(ctx, ledger.TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(listed) != 0 {
		t.Fatal("rejected contributions must not create transactions")
	}
}

func TestContributeToMissingGoalCreatesNothing(t *testing.T) {
	svc, s, _, ctx := newContributionFixture(t)

	if _, err := svc.ContributeToGoal(ctx, "no-such-goal", core.Money{Units: 100000}); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}

	listed, err := s.ListTransactions(ctx, ledger.TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(listed) != 0 {
		t.Fatal("failed contribution must not create transactions")
	}
}

func TestContributeToGoalPartialFailure(t *testing.T) {
	svc, s, backend, ctx := newContributionFixture(t)

	goal, err := s.CreateSavingsGoal(ctx, store.SavingsGoalInput{
		Title:        "Vacation",
		TargetAmount: core.Money{Units: 1000000},
	})
	if err != nil {
		t.Fatalf("CreateSavingsGoal() error = %v", err)
	}

	backend.failIncrements = true
	_, err = svc.ContributeToGoal(ctx, goal.ID, core.Money{Units: 300000})

	var pf *PartialFailureError
	if !errors.As(err, &pf) {
		t.Fatalf("error = %v, want PartialFailureError", err)
	}
	if pf.Step != StepIncrementGoal {
		t.Errorf("step = %q, want %q", pf.Step, StepIncrementGoal)
	}
	if pf.TransactionID == "" {
		t.Error("partial failure must carry the persisted transaction id")
	}

	// The expense transaction stays persisted for reconciliation.
	if _, err := s.GetTransaction(ctx, pf.TransactionID); err != nil {
		t.Errorf("persisted transaction not found: %v", err)
	}

	// The goal itself is untouched.
	got, err := s.GetSavingsGoal(ctx, goal.ID)
	if err != nil {
		t.Fatalf("GetSavingsGoal() error = %v", err)
	}
	if got.CurrentAmount.Units != 0 {
		t.Errorf("current amount = %d, want unchanged 0", got.CurrentAmount.Units)
	}
}

func TestContributeToWishlistItem(t *testing.T) {
	svc, s, _, ctx := newContributionFixture(t)

	item, err := s.CreateWishlistItem(ctx, store.WishlistItemInput{
		Title:        "Camera",
		TargetAmount: core.Money{Units: 7500000},
		Priority:     core.PriorityMedium,
	})
	if err != nil {
		t.Fatalf("CreateWishlistItem() error = %v", err)
	}

	result, err := svc.ContributeToWishlistItem(ctx, item.ID, core.Money{Units: 500000})
	if err != nil {
		t.Fatalf("ContributeToWishlistItem() error = %v", err)
	}
	if result.Item.SavedAmount.Units != 500000 {
		t.Errorf("saved amount = %d, want 500000", result.Item.SavedAmount.Units)
	}
	if result.Transaction.Title != "Saving for Camera" {
		t.Errorf("transaction title = %q, want %q", result.Transaction.Title, "Saving for Camera")
	}
}

func TestContributeToWishlistItemPartialFailure(t *testing.T) {
	svc, s, backend, ctx := newContributionFixture(t)

	item, err := s.CreateWishlistItem(ctx, store.WishlistItemInput{
		Title:        "Camera",
		TargetAmount: core.Money{Units: 7500000},
		Priority:     core.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("CreateWishlistItem() error = %v", err)
	}

	backend.failIncrements = true
	_, err = svc.ContributeToWishlistItem(ctx, item.ID, core.Money{Units: 100000})

	var pf *PartialFailureError
	if !errors.As(err, &pf) {
		t.Fatalf("error = %v, want PartialFailureError", err)
	}
	if pf.Step != StepIncrementWishlist {
		t.Errorf("step = %q, want %q", pf.Step, StepIncrementWishlist)
	}
}
