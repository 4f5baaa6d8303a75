package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"dompet/internal/auth"
	"dompet/internal/core"
	"dompet/internal/ledger"
	"dompet/internal/services"
)

const dateLayout = "2006-01-02"

// errorBody is the envelope for every non-2xx response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	Field         string `json:"field,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("encode response failed", "error", err)
		}
	}
}

// writeError maps domain errors onto the response taxonomy. Unknown
// errors become opaque 500s so internals never leak to clients.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	var pf *services.PartialFailureError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: errorDetail{
			Code:    "validation_failed",
			Message: verr.Error(),
			Field:   verr.Field,
		}})
	case errors.Is(err, core.ErrInvalidAmount):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: errorDetail{
			Code:    "invalid_amount",
			Message: "amount must be a positive number",
		}})
	case errors.Is(err, auth.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: errorDetail{
			Code:    "unauthorized",
			Message: "missing or invalid credentials",
		}})
	case errors.Is(err, ledger.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: errorDetail{
			Code:    "not_found",
			Message: "record not found",
		}})
	case errors.As(err, &pf):
		writeJSON(w, http.StatusBadGateway, errorBody{Error: errorDetail{
			Code:          "partial_failure",
			Message:       "contribution recorded a transaction but the target update failed",
			TransactionID: pf.TransactionID,
		}})
	default:
		slog.ErrorContext(r.Context(), "request failed", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: errorDetail{
			Code:    "internal_error",
			Message: "internal server error",
		}})
	}
}

type moneyJSON struct {
	Units     int64  `json:"units"`
	Formatted string `json:"formatted"`
}

func toMoneyJSON(m core.Money) moneyJSON {
	return moneyJSON{Units: m.Units, Formatted: m.FormatCurrency()}
}

type transactionJSON struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Amount     moneyJSON `json:"amount"`
	Kind       string    `json:"kind"`
	Category   string    `json:"category,omitempty"`
	OccurredAt string    `json:"occurred_at"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  string    `json:"created_at,omitempty"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	out := transactionJSON{
		ID:         t.ID,
		Title:      t.Title,
		Amount:     toMoneyJSON(t.Amount),
		Kind:       string(t.Kind),
		Category:   t.Category,
		OccurredAt: t.OccurredAt.Format(dateLayout),
		Notes:      t.Notes,
	}
	if !t.CreatedAt.IsZero() {
		out.CreatedAt = t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return out
}

type savingsGoalJSON struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	TargetAmount  moneyJSON `json:"target_amount"`
	CurrentAmount moneyJSON `json:"current_amount"`
	Progress      float64   `json:"progress"`
	Deadline      string    `json:"deadline,omitempty"`
}

func toSavingsGoalJSON(g core.SavingsGoal) savingsGoalJSON {
	out := savingsGoalJSON{
		ID:            g.ID,
		Title:         g.Title,
		TargetAmount:  toMoneyJSON(g.TargetAmount),
		CurrentAmount: toMoneyJSON(g.CurrentAmount),
		Progress:      core.Progress(g.CurrentAmount, g.TargetAmount),
	}
	if !g.Deadline.IsEmpty() {
		out.Deadline = g.Deadline.Format(dateLayout)
	}
	return out
}

type wishlistItemJSON struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	TargetAmount moneyJSON `json:"target_amount"`
	SavedAmount  moneyJSON `json:"saved_amount"`
	Progress     float64   `json:"progress"`
	Priority     string    `json:"priority"`
}

func toWishlistItemJSON(w core.WishlistItem) wishlistItemJSON {
	return wishlistItemJSON{
		ID:           w.ID,
		Title:        w.Title,
		TargetAmount: toMoneyJSON(w.TargetAmount),
		SavedAmount:  toMoneyJSON(w.SavedAmount),
		Progress:     core.Progress(w.SavedAmount, w.TargetAmount),
		Priority:     string(w.Priority),
	}
}

type dashboardJSON struct {
	TotalIncome  moneyJSON `json:"total_income"`
	TotalExpense moneyJSON `json:"total_expense"`
	Balance      moneyJSON `json:"balance"`
	SavingsTotal moneyJSON `json:"savings_total"`
}

func toDashboardJSON(s core.DashboardStats) dashboardJSON {
	return dashboardJSON{
		TotalIncome:  toMoneyJSON(s.TotalIncome),
		TotalExpense: toMoneyJSON(s.TotalExpense),
		Balance:      toMoneyJSON(s.Balance),
		SavingsTotal: toMoneyJSON(s.SavingsTotal),
	}
}
