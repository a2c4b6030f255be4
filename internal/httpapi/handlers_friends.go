package httpapi

import (
	"net/http"

	"github.com/ionutdr23/GameMate/internal/domain"
)

func (a *api) handleFriendsList(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	friends, err := a.friendsSvc.ListFriends(r.Context(), userID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string][]domain.ProfilePreview{"friends": friends})
}

func (a *api) handleFriendsRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	out, err := a.friendsSvc.ListRequests(r.Context(), userID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

type createFriendRequestRequest struct {
	ReceiverProfileID string `json:"receiverProfileId"`
}

func (a *api) handleFriendsCreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if !a.friendLimiter.Allow(userID, a.now()) {
		WriteDomainError(w, domain.ErrRateLimited)
		return
	}

	var req createFriendRequestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	fr, err := a.friendsSvc.SendRequest(r.Context(), userID, req.ReceiverProfileID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, fr)
}

type respondFriendRequestRequest struct {
	Accept *bool `json:"accept"`
}

func (a *api) handleFriendsRespond(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	var req respondFriendRequestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}
	if req.Accept == nil {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"accept": "required"}))
		return
	}

	if err := a.friendsSvc.Respond(r.Context(), userID, id, *req.Accept); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleFriendsCancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.friendsSvc.Cancel(r.Context(), userID, id); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleFriendsUnfriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, "profileId")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.friendsSvc.Unfriend(r.Context(), userID, id); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
