package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"
)

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// CategorySavings is the reserved category assigned to transactions
// recorded by the contribution workflow.
const CategorySavings = "Savings"

// SuggestedCategories lists the category suggestions per transaction kind.
// They are hints for entry forms; the category field itself is free text.
var SuggestedCategories = map[TransactionKind][]string{
	Income:  {"Salary", "Bonus", "Investment", "Other"},
	Expense: {"Food", "Transport", "Shopping", "Bills", "Entertainment", "Other"},
}

type (
	TransactionKind string

	Priority string

	Date struct {
		time.Time
	}

	// Money is an amount in the smallest currency unit. Sums and
	// comparisons happen on Units only; no float enters the math.
	Money struct {
		Units int64
	}

	Transaction struct {
		ID         string
		OwnerID    string
		Title      string
		Amount     Money
		Kind       TransactionKind
		Category   string
		OccurredAt Date
		Notes      string
		CreatedAt  time.Time
	}

	SavingsGoal struct {
		ID            string
		OwnerID       string
		Title         string
		TargetAmount  Money
		CurrentAmount Money
		Deadline      Date // optional, zero means none
		CreatedAt     time.Time
	}

	WishlistItem struct {
		ID           string
		OwnerID      string
		Title        string
		TargetAmount Money
		SavedAmount  Money
		Priority     Priority
		CreatedAt    time.Time
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyTitle      = errors.New("empty title")
	ErrInvalidKind     = errors.New("invalid transaction kind")
	ErrInvalidPriority = errors.New("invalid priority")
)

// ValidationError reports the specific field that failed validation so
// callers can surface it next to the offending input.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalidField(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

func (k TransactionKind) Valid() bool {
	return k == Income || k == Expense
}

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Rank orders priorities for listing, high first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// IsEmpty reports whether the date was never set (optional deadlines).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// Validate checks a Money value used as a transaction magnitude.
// Magnitudes are non-negative; the sign comes from the kind.
func (m Money) Validate() error {
	if m.Units < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ValidatePositive checks a Money value used as a target: strictly positive.
func (m Money) ValidatePositive() error {
	if m.Units <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return invalidField("title", ErrEmptyTitle)
	}
	if len(t.Title) > 200 {
		return invalidField("title", errors.New("too long (max 200 characters)"))
	}
	if !t.Kind.Valid() {
		return invalidField("kind", ErrInvalidKind)
	}
	if err := t.Amount.Validate(); err != nil {
		return invalidField("amount", err)
	}
	if err := t.OccurredAt.Validate(); err != nil {
		return invalidField("occurred_at", err)
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return invalidField("title", ErrEmptyTitle)
	}
	if len(g.Title) > 200 {
		return invalidField("title", errors.New("too long (max 200 characters)"))
	}
	if err := g.TargetAmount.ValidatePositive(); err != nil {
		return invalidField("target_amount", err)
	}
	if err := g.CurrentAmount.Validate(); err != nil {
		return invalidField("current_amount", err)
	}
	return nil
}

func (w WishlistItem) Validate() error {
	if strings.TrimSpace(w.Title) == "" {
		return invalidField("title", ErrEmptyTitle)
	}
	if len(w.Title) > 200 {
		return invalidField("title", errors.New("too long (max 200 characters)"))
	}
	if err := w.TargetAmount.ValidatePositive(); err != nil {
		return invalidField("target_amount", err)
	}
	if err := w.SavedAmount.Validate(); err != nil {
		return invalidField("saved_amount", err)
	}
	if !w.Priority.Valid() {
		return invalidField("priority", ErrInvalidPriority)
	}
	return nil
}

// Progress returns the funding percentage of current against target,
// clamped to [0,100] for display. Stored amounts are never clamped.
func Progress(current, target Money) float64 {
	if target.Units <= 0 {
		return 0
	}
	p := float64(current.Units) / float64(target.Units) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
