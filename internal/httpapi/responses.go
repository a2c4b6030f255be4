package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ionutdr23/GameMate/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: message}})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		WriteJSON(w, http.StatusBadRequest, errorEnvelope{Error: apiError{
			Code:    "validation_error",
			Message: "invalid request",
			Fields:  domain.ValidationFields(err),
		}})
	case errors.Is(err, domain.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden", "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, domain.ErrNicknameTaken):
		WriteError(w, http.StatusConflict, "nickname_taken", "nickname already taken")
	case errors.Is(err, domain.ErrProfileExists):
		WriteError(w, http.StatusConflict, "profile_exists", "profile already exists")
	case errors.Is(err, domain.ErrGameExists):
		WriteError(w, http.StatusConflict, "game_exists", "game already exists")
	case errors.Is(err, domain.ErrGameProfileExists):
		WriteError(w, http.StatusConflict, "game_profile_exists", "game profile already exists for this game")
	case errors.Is(err, domain.ErrFriendRequestExists):
		WriteError(w, http.StatusConflict, "friend_request_exists", "friend request already exists")
	case errors.Is(err, domain.ErrAlreadyFriends):
		WriteError(w, http.StatusConflict, "already_friends", "already friends")
	case errors.Is(err, domain.ErrRateLimited):
		WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
