package httpapi

import (
	"net/http"

	"github.com/ionutdr23/GameMate/internal/domain"
)

func (a *api) handleCommentsCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	postID, err := idParam(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	var req domain.CommentInput
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	c, err := a.commentsSvc.Create(r.Context(), userID, postID, req)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, c)
}

func (a *api) handleCommentsList(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	postID, err := idParam(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	comments, err := a.commentsSvc.TopLevel(r.Context(), userID, postID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string][]domain.Comment{"comments": comments})
}

func (a *api) handleCommentsReplies(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	replies, err := a.commentsSvc.Replies(r.Context(), userID, id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string][]domain.Comment{"replies": replies})
}

type updateCommentRequest struct {
	Content string `json:"content"`
}

func (a *api) handleCommentsUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	var req updateCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	c, err := a.commentsSvc.Update(r.Context(), userID, id, req.Content)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, c)
}

func (a *api) handleCommentsDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.commentsSvc.Delete(r.Context(), userID, id); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
