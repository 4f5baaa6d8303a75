package http

import (
	"net/http"

	"dompet/internal/core"
	"dompet/internal/store"
)

type wishlistItemRequest struct {
	Title        string `json:"title"`
	TargetAmount string `json:"target_amount"`
	SavedAmount  string `json:"saved_amount"`
	Priority     string `json:"priority"`
}

type wishlistItemPatchRequest struct {
	Title        *string `json:"title"`
	TargetAmount *string `json:"target_amount"`
	SavedAmount  *string `json:"saved_amount"`
	Priority     *string `json:"priority"`
}

func (s *Server) handleListWishlist(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListWishlistItems(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]wishlistItemJSON, 0, len(items))
	for _, item := range items {
		out = append(out, toWishlistItemJSON(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (s *Server) handleCreateWishlistItem(w http.ResponseWriter, r *http.Request) {
	var req wishlistItemRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}

	in := store.WishlistItemInput{
		Title:    req.Title,
		Priority: core.Priority(req.Priority),
	}

	target, err := core.ParseAmount(req.TargetAmount)
	if err != nil {
		writeError(w, r, &core.ValidationError{Field: "target_amount", Err: err})
		return
	}
	in.TargetAmount = core.Money{Units: target}

	if req.SavedAmount != "" {
		saved, err := core.ParseAmount(req.SavedAmount)
		if err != nil {
			writeError(w, r, &core.ValidationError{Field: "saved_amount", Err: err})
			return
		}
		in.SavedAmount = core.Money{Units: saved}
	}

	created, err := s.store.CreateWishlistItem(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWishlistItemJSON(created))
}

func (s *Server) handleGetWishlistItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.store.GetWishlistItem(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWishlistItemJSON(item))
}

func (s *Server) handleUpdateWishlistItem(w http.ResponseWriter, r *http.Request) {
	var req wishlistItemPatchRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}

	patch := store.WishlistItemPatch{Title: req.Title}
	if req.TargetAmount != nil {
		target, err := core.ParseAmount(*req.TargetAmount)
		if err != nil {
			writeError(w, r, &core.ValidationError{Field: "target_amount", Err: err})
			return
		}
		patch.TargetAmount = &core.Money{Units: target}
	}
	if req.SavedAmount != nil {
		saved, err := core.ParseAmount(*req.SavedAmount)
		if err != nil {
			writeError(w, r, &core.ValidationError{Field: "saved_amount", Err: err})
			return
		}
		patch.SavedAmount = &core.Money{Units: saved}
	}
	if req.Priority != nil {
		priority := core.Priority(*req.Priority)
		patch.Priority = &priority
	}

	updated, err := s.store.UpdateWishlistItem(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWishlistItemJSON(updated))
}

func (s *Server) handleDeleteWishlistItem(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteWishlistItem(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleContributeToWishlistItem(w http.ResponseWriter, r *http.Request) {
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

	result, err := s.contributions.ContributeToWishlistItem(r.Context(), r.PathValue("id"), amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"item":        toWishlistItemJSON(result.Item),
		"transaction": toTransactionJSON(result.Transaction),
	})
}
