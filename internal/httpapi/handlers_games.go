package httpapi

import (
	"net/http"

	"github.com/ionutdr23/GameMate/internal/domain"
)

func (a *api) handleGamesList(w http.ResponseWriter, r *http.Request) {
	games, err := a.gamesSvc.List(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string][]domain.Game{"games": games})
}

type createGameRequest struct {
	Name        string   `json:"name"`
	SkillLevels []string `json:"skillLevels"`
}

func (a *api) handleGamesCreate(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	g, err := a.gamesSvc.Create(r.Context(), req.Name, req.SkillLevels)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, g)
}

func (a *api) handleGamesDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if err := a.gamesSvc.Delete(r.Context(), id); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
