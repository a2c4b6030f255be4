package httpapi

import (
	"net/http"

	"github.com/ionutdr23/GameMate/internal/domain"
)

func (a *api) handleMetaPlaystyles(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string][]string{"playstyles": domain.Playstyles()})
}

func (a *api) handleMetaPlatforms(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string][]string{"platforms": domain.Platforms()})
}
