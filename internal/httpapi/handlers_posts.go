package httpapi

import (
	"net/http"
	"strconv"

	"github.com/ionutdr23/GameMate/internal/domain"
	"github.com/ionutdr23/GameMate/internal/service"
)

func (a *api) handlePostsCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req domain.PostInput
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	p, err := a.postsSvc.Create(r.Context(), userID, req)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, p)
}

func (a *api) handlePostsGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	p, err := a.postsSvc.Get(r.Context(), userID, id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// handlePostsByProfile serves ?page (zero-based) and ?size.
func (a *api) handlePostsByProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	profileID, err := idParam(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	page, err := intQuery(r, "page", 0)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	size, err := intQuery(r, "size", service.DefaultPostPageSize)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out, err := a.postsSvc.ListByProfile(r.Context(), userID, profileID, page, size)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

func (a *api) handlePostsUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	var req domain.PostInput
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	p, err := a.postsSvc.Update(r.Context(), userID, id, req)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

func (a *api) handlePostsDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.postsSvc.Delete(r.Context(), userID, id); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(map[string]string{name: "must be an integer"})
	}
	return n, nil
}
