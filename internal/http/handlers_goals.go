package http

import (
	"errors"
	"net/http"

	"dompet/internal/core"
	"dompet/internal/store"
)

type savingsGoalRequest struct {
	Title         string `json:"title"`
	TargetAmount  string `json:"target_amount"`
	CurrentAmount string `json:"current_amount"`
	Deadline      string `json:"deadline"`
}

type savingsGoalPatchRequest struct {
	Title         *string `json:"title"`
	TargetAmount  *string `json:"target_amount"`
	CurrentAmount *string `json:"current_amount"`
	Deadline      *string `json:"deadline"`
}

type contributionRequest struct {
	Amount string `json:"amount"`
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.store.ListSavingsGoals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]savingsGoalJSON, 0, len(goals))
	for _, g := range goals {
		out = append(out, toSavingsGoalJSON(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": out})
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req savingsGoalRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}

	in := store.SavingsGoalInput{Title: req.Title}

	target, err := core.ParseAmount(req.TargetAmount)
	if err != nil {
		writeError(w, r, &core.ValidationError{Field: "target_amount", Err: err})
		return
	}
	in.TargetAmount = core.Money{Units: target}

	if req.CurrentAmount != "" {
		current, err := core.ParseAmount(req.CurrentAmount)
		if err != nil {
			writeError(w, r, &core.ValidationError{Field: "current_amount", Err: err})
			return
		}
		in.CurrentAmount = core.Money{Units: current}
	}
	if req.Deadline != "" {
		deadline, err := parseDate(req.Deadline)
		if err != nil {
			writeError(w, r, &core.ValidationError{Field: "deadline", Err: errors.New("must be a YYYY-MM-DD date")})
			return
		}
		in.Deadline = deadline
	}

	created, err := s.store.CreateSavingsGoal(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSavingsGoalJSON(created))
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.GetSavingsGoal(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSavingsGoalJSON(g))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req savingsGoalPatchRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}

	patch := store.SavingsGoalPatch{Title: req.Title}
	if req.TargetAmount != nil {
		target, err := core.ParseAmount(*req.TargetAmount)
		if err != nil {
			writeError(w, r, &core.ValidationError{Field: "target_amount", Err: err})
			return
		}
		patch.TargetAmount = &core.Money{Units: target}
	}
	if req.CurrentAmount != nil {
		current, err := core.ParseAmount(*req.CurrentAmount)
		if err != nil {
			writeError(w, r, &core.ValidationError{Field: "current_amount", Err: err})
			return
		}
		patch.CurrentAmount = &core.Money{Units: current}
	}
	if req.Deadline != nil {
		deadline, err := parseDate(*req.Deadline)
		if err != nil {
			writeError(w, r, &core.ValidationError{Field: "deadline", Err: errors.New("must be a YYYY-MM-DD date")})
			return
		}
		patch.Deadline = &deadline
	}

	updated, err := s.store.UpdateSavingsGoal(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSavingsGoalJSON(updated))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSavingsGoal(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleContributeToGoal(w http.ResponseWriter, r *http.Request) {
	var req contributionRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}

	amount, err := core.ParseContribution(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.contributions.ContributeToGoal(r.Context(), r.PathValue("id"), amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"goal":        toSavingsGoalJSON(result.Goal),
		"transaction": toTransactionJSON(result.Transaction),
	})
}
