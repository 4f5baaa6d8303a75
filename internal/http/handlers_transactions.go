package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"dompet/internal/core"
	"dompet/internal/ledger"
	"dompet/internal/store"
)

type transactionRequest struct {
	Title      string `json:"title"`
	Amount     string `json:"amount"`
	Kind       string `json:"kind"`
	Category   string `json:"category"`
	OccurredAt string `json:"occurred_at"`
	Notes      string `json:"notes"`
}

type transactionPatchRequest struct {
	Title      *string `json:"title"`
	Amount     *string `json:"amount"`
	Kind       *string `json:"kind"`
	Category   *string `json:"category"`
	OccurredAt *string `json:"occurred_at"`
	Notes      *string `json:"notes"`
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
		Code:    "bad_request",
		Message: message,
	}})
}

func parseDate(value string) (core.Date, error) {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return core.Date{}, err
	}
	return core.Date{Time: parsed}, nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter := ledger.TransactionFilter{}
	if kind := r.URL.Query().Get("kind"); kind != "" {
		filter.Kind = core.TransactionKind(kind)
		if !filter.Kind.Valid() {
			badRequest(w, "kind must be 'income' or 'expense'")
			return
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			badRequest(w, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	transactions, err := s.store.ListTransactions(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]transactionJSON, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, toTransactionJSON(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}

	in, err := transactionInputFromRequest(req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.store.CreateTransaction(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionJSON(created))
}

func transactionInputFromRequest(req transactionRequest) (store.TransactionInput, error) {
	units, err := core.ParseAmount(req.Amount)
	if err != nil {
		return store.TransactionInput{}, &core.ValidationError{Field: "amount", Err: err}
	}
	occurred, err := parseDate(req.OccurredAt)
	if err != nil {
		return store.TransactionInput{}, &core.ValidationError{Field: "occurred_at", Err: errors.New("must be a YYYY-MM-DD date")}
	}
	return store.TransactionInput{
		Title:      req.Title,
		Amount:     core.Money{Units: units},
		Kind:       core.TransactionKind(req.Kind),
		Category:   req.Category,
		OccurredAt: occurred,
		Notes:      req.Notes,
	}, nil
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionJSON(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionPatchRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}

	patch := store.TransactionPatch{
		Title:    req.Title,
		Category: req.Category,
		Notes:    req.Notes,
	}
	if req.Amount != nil {
		units, err := core.ParseAmount(*req.Amount)
		if err != nil {
			writeError(w, r, &core.ValidationError{Field: "amount", Err: err})
			return
		}
		patch.Amount = &core.Money{Units: units}
	}
	if req.Kind != nil {
		kind := core.TransactionKind(*req.Kind)
		patch.Kind = &kind
	}
	if req.OccurredAt != nil {
		occurred, err := parseDate(*req.OccurredAt)
		if err != nil {
			writeError(w, r, &core.ValidationError{Field: "occurred_at", Err: errors.New("must be a YYYY-MM-DD date")})
			return
		}
		patch.OccurredAt = &occurred
	}

	updated, err := s.store.UpdateTransaction(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionJSON(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
