package supabase

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"dompet/internal/core"
)

func mustMarshal(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal row: %v", err)
	}
	return string(data)
}

func TestInsertRowsOmitUnsetCreatedAt(t *testing.T) {
	tests := []struct {
		name string
		row  any
	}{
		{
			name: "transaction",
			row: toTransactionRow(core.Transaction{
				ID:         "tx-1",
				OwnerID:    "user-1",
				Title:      "Groceries",
				Amount:     core.Money{Units: 150000},
				Kind:       core.Expense,
				Category:   "Food",
				OccurredAt: core.Date{Time: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
			}),
		},
		{
			name: "savings goal",
			row: toGoalRow(core.SavingsGoal{
				ID:           "g-1",
				OwnerID:      "user-1",
				Title:        "Vacation",
				TargetAmount: core.Money{Units: 1000000},
			}),
		},
		{
			name: "wishlist item",
			row: toWishlistRow(core.WishlistItem{
				ID:           "w-1",
				OwnerID:      "user-1",
				Title:        "Camera",
				TargetAmount: core.Money{Units: 5000000},
				Priority:     core.PriorityHigh,
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := mustMarshal(t, tt.row)
			// A zero timestamp in the insert payload would override the
			// database default with year 1.
			if strings.Contains(payload, "created_at") {
				t.Errorf("insert payload contains created_at: %s", payload)
			}
			if strings.Contains(payload, "0001-01-01") {
				t.Errorf("insert payload contains zero timestamp: %s", payload)
			}
		})
	}
}

func TestRowsCarryKnownCreatedAt(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	row := toGoalRow(core.SavingsGoal{
		ID:           "g-1",
		OwnerID:      "user-1",
		Title:        "Vacation",
		TargetAmount: core.Money{Units: 1000000},
		CreatedAt:    created,
	})
	payload := mustMarshal(t, row)
	if !strings.Contains(payload, "2024-03-01T10:30:00Z") {
		t.Errorf("payload missing known created_at: %s", payload)
	}

	got, err := fromGoalRow(row)
	if err != nil {
		t.Fatalf("fromGoalRow() error = %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("round-tripped CreatedAt = %v, want %v", got.CreatedAt, created)
	}
}

func TestCreatedAtValueHandlesMissingColumn(t *testing.T) {
	if got := createdAtValue(nil); !got.IsZero() {
		t.Errorf("createdAtValue(nil) = %v, want zero", got)
	}
}
