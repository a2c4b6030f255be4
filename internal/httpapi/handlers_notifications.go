package httpapi

import (
	"net/http"
	"time"

	"github.com/ionutdr23/GameMate/internal/domain"
)

type notificationTokenRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type notificationTokenResponse struct {
	Token     string `json:"token"`
	Platform  string `json:"platform"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func formatMillis(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func (a *api) handleNotificationsTokenUpsert(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req notificationTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	out, err := a.notificationsSvc.RegisterToken(r.Context(), userID, req.Token, req.Platform)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, notificationTokenResponse{
		Token:     out.Token,
		Platform:  out.Platform,
		CreatedAt: formatMillis(out.CreatedAt),
		UpdatedAt: formatMillis(out.UpdatedAt),
	})
}

func (a *api) handleNotificationsTokenDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"token": "required"}))
		return
	}

	if err := a.notificationsSvc.DeleteToken(r.Context(), userID, token); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
