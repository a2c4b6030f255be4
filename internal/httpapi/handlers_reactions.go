package httpapi

import (
	"net/http"

	"github.com/ionutdr23/GameMate/internal/domain"
)

type reactRequest struct {
	Type domain.ReactionType `json:"type"`
}

// handleReactionsPut answers 201 for a first reaction and 200 when it
// replaces an earlier one.
func (a *api) handleReactionsPut(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	postID, err := idParam(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	var req reactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	res, err := a.reactionsSvc.React(r.Context(), userID, postID, req.Type)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	status := http.StatusOK
	if res.IsNew {
		status = http.StatusCreated
	}
	WriteJSON(w, status, res)
}

func (a *api) handleReactionsMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	postID, err := idParam(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	reaction, err := a.reactionsSvc.Mine(r.Context(), userID, postID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, reaction)
}

func (a *api) handleReactionsDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	postID, err := idParam(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.reactionsSvc.Remove(r.Context(), userID, postID); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleReactionsList(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	postID, err := idParam(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	reactions, err := a.reactionsSvc.List(r.Context(), userID, postID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string][]domain.Reaction{"reactions": reactions})
}

func (a *api) handleReactionsCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	postID, err := idParam(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	counts, err := a.reactionsSvc.Counts(r.Context(), userID, postID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]map[domain.ReactionType]int{"counts": counts})
}
