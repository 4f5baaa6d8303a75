// Package services holds the workflows that span more than one record
// type: recording contributions and deriving dashboard statistics.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dompet/internal/core"
	"dompet/internal/store"
)

// Contribution steps, reported when a workflow fails partway.
const (
	StepCreateTransaction = "create_transaction"
	StepIncrementGoal     = "increment_goal"
	StepIncrementWishlist = "increment_wishlist"
)

// PartialFailureError reports a contribution that recorded its expense
// transaction but failed to update the target record. The transaction id
// lets the caller reconcile by hand.
type PartialFailureError struct {
	Step          string
	TransactionID string
	Err           error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("contribution failed at %s (transaction %s persisted): %v",
		e.Step, e.TransactionID, e.Err)
}

func (e *PartialFailureError) Unwrap() error { return e.Err }

// ContributionService moves money into savings goals and wishlist items.
// Each contribution records an expense transaction first, then increments
// the target's saved amount in the backend.
type ContributionService struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewContributionService(s *store.Store, logger *slog.Logger) *ContributionService {
	return &ContributionService{
		store:  s,
		logger: logger,
		now:    time.Now,
	}
}

// GoalContribution is the outcome of a successful goal contribution.
type GoalContribution struct {
	Transaction core.Transaction
	Goal        core.SavingsGoal
}

// ContributeToGoal records an expense transaction for amount and adds it
// to the goal's current amount. Overfunding past the target is legal.
func (s *ContributionService) ContributeToGoal(ctx context.Context, goalID string, amount core.Money) (GoalContribution, error) {
	if err := amount.ValidatePositive(); err != nil {
		return GoalContribution{}, err
	}

	goal, err := s.store.GetSavingsGoal(ctx, goalID)
	if err != nil {
		return GoalContribution{}, err
	}

	tx, err := s.store.CreateTransaction(ctx, store.TransactionInput{
		Title:      "Saving for " + goal.Title,
		Amount:     amount,
		Kind:       core.Expense,
		Category:   core.CategorySavings,
		OccurredAt: core.Date{Time: s.now()},
	})
	if err != nil {
		return GoalContribution{}, fmt.Errorf("%s: %w", StepCreateTransaction, err)
	}

	updated, err := s.store.IncrementSavingsGoal(ctx, goalID, amount)
	if err != nil {
		s.logger.ErrorContext(ctx, "contribution persisted transaction but goal update failed",
			"goal_id", goalID,
			"transaction_id", tx.ID,
			"amount", amount.Units,
			"error", err)
		return GoalContribution{}, &PartialFailureError{
			Step:          StepIncrementGoal,
			TransactionID: tx.ID,
			Err:           err,
		}
	}

	s.logger.InfoContext(ctx, "contribution recorded",
		"goal_id", goalID,
		"transaction_id", tx.ID,
		"amount", amount.Units,
		"current_amount", updated.CurrentAmount.Units)
	return GoalContribution{Transaction: tx, Goal: updated}, nil
}

// WishlistContribution is the outcome of a successful wishlist contribution.
type WishlistContribution struct {
	Transaction core.Transaction
	Item        core.WishlistItem
}

// ContributeToWishlistItem is the wishlist counterpart of ContributeToGoal.
func (s *ContributionService) ContributeToWishlistItem(ctx context.Context, itemID string, amount core.Money) (WishlistContribution, error) {
	if err := amount.ValidatePositive(); err != nil {
		return WishlistContribution{}, err
	}

	item, err := s.store.GetWishlistItem(ctx, itemID)
	if err != nil {
		return WishlistContribution{}, err
	}

	tx, err := s.store.CreateTransaction(ctx, store.TransactionInput{
		Title:      "Saving for " + item.Title,
		Amount:     amount,
		Kind:       core.Expense,
		Category:   core.CategorySavings,
		OccurredAt: core.Date{Time: s.now()},
	})
	if err != nil {
		return WishlistContribution{}, fmt.Errorf("%s: %w", StepCreateTransaction, err)
	}

	updated, err := s.store.IncrementWishlistItem(ctx, itemID, amount)
	if err != nil {
		s.logger.ErrorContext(ctx, "contribution persisted transaction but wishlist update failed",
			"item_id", itemID,
			"transaction_id", tx.ID,
			"amount", amount.Units,
			"error", err)
		return WishlistContribution{}, &PartialFailureError{
			Step:          StepIncrementWishlist,
			TransactionID: tx.ID,
			Err:           err,
		}
	}

	s.logger.InfoContext(ctx, "wishlist contribution recorded",
		"item_id", itemID,
		"transaction_id", tx.ID,
		"amount", amount.Units,
		"saved_amount", updated.SavedAmount.Units)
	return WishlistContribution{Transaction: tx, Item: updated}, nil
}
