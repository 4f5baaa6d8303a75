package core

// DashboardStats are the derived aggregate metrics shown on the
// dashboard. They are never persisted; every relevant change triggers a
// full recompute from the latest snapshot.
type DashboardStats struct {
	TotalIncome  Money
	TotalExpense Money
	Balance      Money
	SavingsTotal Money
}

// ComputeStats derives dashboard metrics from a snapshot of transactions
// and savings goals. Pure integer arithmetic, independent of input order;
// partial sums are never cached across calls, trading work for the
// absence of drift.
func ComputeStats(transactions []Transaction, goals []SavingsGoal) DashboardStats {
	var income, expense int64
	for _, t := range transactions {
		switch t.Kind {
		case Income:
			income += t.Amount.Units
		case Expense:
			expense += t.Amount.Units
		}
	}

	var savings int64
	for _, g := range goals {
		savings += g.CurrentAmount.Units
	}

	return DashboardStats{
		TotalIncome:  Money{Units: income},
		TotalExpense: Money{Units: expense},
		Balance:      Money{Units: income - expense},
		SavingsTotal: Money{Units: savings},
	}
}
