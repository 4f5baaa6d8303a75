package core

import (
	"math/rand"
	"testing"
)

func tx(kind TransactionKind, units int64) Transaction {
	return Transaction{
		Title:      "t",
		Kind:       kind,
		Amount:     Money{Units: units},
		OccurredAt: NewDate(2025, 1, 1),
	}
}

func TestComputeStats(t *testing.T) {
	transactions := []Transaction{
		tx(Income, 2000000),
		tx(Expense, 500000),
	}
	goals := []SavingsGoal{
		{Title: "g", TargetAmount: Money{Units: 1000000}, CurrentAmount: Money{Units: 100000}},
	}

	stats := ComputeStats(transactions, goals)
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

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil, nil)
	if stats != (DashboardStats{}) {
		t.Fatalf("empty snapshot should yield zero stats, got %+v", stats)
	}
}

func TestComputeStatsBalanceIdentity(t *testing.T) {
	transactions := []Transaction{
		tx(Income, 100), tx(Income, 250), tx(Expense, 40),
		tx(Expense, 310), tx(Income, 5), tx(Expense, 5),
	}
	stats := ComputeStats(transactions, nil)
	var signed int64
	for _, tr := range transactions {
		if tr.Kind == Income {
			signed += tr.Amount.Units
		} else {
			signed -= tr.Amount.Units
		}
	}
	if stats.Balance.Units != signed {
		t.Fatalf("balance = %d, want signed sum %d", stats.Balance.Units, signed)
	}
}

// Recomputation is idempotent and order-independent: permuting the
// snapshot must never change the result.
func TestComputeStatsOrderIndependent(t *testing.T) {
	transactions := []Transaction{
		tx(Income, 2000000), tx(Expense, 500000), tx(Income, 75000),
		tx(Expense, 125000), tx(Expense, 1),
	}
	goals := []SavingsGoal{
		{Title: "a", TargetAmount: Money{Units: 10}, CurrentAmount: Money{Units: 3}},
		{Title: "b", TargetAmount: Money{Units: 10}, CurrentAmount: Money{Units: 7}},
	}
	want := ComputeStats(transactions, goals)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		rng.Shuffle(len(transactions), func(a, b int) {
			transactions[a], transactions[b] = transactions[b], transactions[a]
		})
		rng.Shuffle(len(goals), func(a, b int) {
			goals[a], goals[b] = goals[b], goals[a]
		})
		if got := ComputeStats(transactions, goals); got != want {
			t.Fatalf("permutation %d changed stats: %+v != %+v", i, got, want)
		}
		if again := ComputeStats(transactions, goals); again != want {
			t.Fatalf("recompute %d not idempotent", i)
		}
	}
}
