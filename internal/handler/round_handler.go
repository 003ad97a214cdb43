package handler

import (
	"errors"
	"net/http"

	"github.com/akngs/territory/internal/auth"
	"github.com/akngs/territory/internal/service"
)

// RoundHandler handles round collection and history endpoints.
type RoundHandler struct {
	roundSvc *service.RoundService
}

// NewRoundHandler creates a RoundHandler.
func NewRoundHandler(roundSvc *service.RoundService) *RoundHandler {
	return &RoundHandler{roundSvc: roundSvc}
}

func roundErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, service.ErrNoActiveRound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrGameNotActive), errors.Is(err, service.ErrNotInGame):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidOrder):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// SubmitDeclaration handles POST /api/v1/games/{id}/declarations
func (h *RoundHandler) SubmitDeclaration(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.roundSvc.SubmitDeclaration(r.Context(), gameID, userID, req.Text); err != nil {
		writeError(w, roundErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "submitted"})
}

// SubmitOrders handles POST /api/v1/games/{id}/orders
func (h *RoundHandler) SubmitOrders(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var req struct {
		Line string `json:"line"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.roundSvc.SubmitOrders(r.Context(), gameID, userID, req.Line); err != nil {
		writeError(w, roundErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "submitted"})
}

// UnmarkReady handles DELETE /api/v1/games/{id}/orders/ready
func (h *RoundHandler) UnmarkReady(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	if err := h.roundSvc.UnmarkReady(r.Context(), gameID, userID); err != nil {
		writeError(w, roundErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unmarked"})
}

// ResolveRoundEarly handles POST /api/v1/games/{id}/resolve
func (h *RoundHandler) ResolveRoundEarly(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	game, err := h.roundSvc.GetGameForResolve(r.Context(), gameID)
	if err != nil {
		writeError(w, roundErrorStatus(err), err.Error())
		return
	}
	if game.CreatorID != userID {
		writeError(w, http.StatusForbidden, "only the creator can force-resolve a round")
		return
	}

	if err := h.roundSvc.ResolveRoundEarly(r.Context(), gameID); err != nil {
		writeError(w, roundErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}

// CurrentRound handles GET /api/v1/games/{id}/rounds/current
func (h *RoundHandler) CurrentRound(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	round, err := h.roundSvc.GetCurrentRound(r.Context(), gameID)
	if err != nil {
		writeError(w, roundErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, round)
}

// ListRounds handles GET /api/v1/games/{id}/rounds
func (h *RoundHandler) ListRounds(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	rounds, err := h.roundSvc.ListRounds(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rounds == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, rounds)
}
