package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ionutdr23/GameMate/internal/domain"
)

// Kind classifies a failed backend call.
type Kind string

const (
	KindTransport  Kind = "transport"
	KindAuth       Kind = "auth"
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindOther      Kind = "other"
)

// TransportError is a request that never produced an HTTP response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code == "" {
		return fmt.Sprintf("api error %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, msg)
}

var codeSentinels = map[string]error{
	"unauthorized":          domain.ErrUnauthorized,
	"forbidden":             domain.ErrForbidden,
	"not_found":             domain.ErrNotFound,
	"nickname_taken":        domain.ErrNicknameTaken,
	"profile_exists":        domain.ErrProfileExists,
	"game_exists":           domain.ErrGameExists,
	"game_profile_exists":   domain.ErrGameProfileExists,
	"friend_request_exists": domain.ErrFriendRequestExists,
	"already_friends":       domain.ErrAlreadyFriends,
	"rate_limited":          domain.ErrRateLimited,
	"validation_error":      domain.ErrValidation,
}

// Unwrap exposes the matching domain sentinel, plus a *domain.ValidationError
// when the response carried field errors.
func (e *APIError) Unwrap() []error {
	var out []error
	if s, ok := codeSentinels[e.Code]; ok {
		out = append(out, s)
	} else if s := statusSentinel(e.Status); s != nil {
		out = append(out, s)
	}
	if len(e.Fields) > 0 {
		out = append(out, domain.NewValidationError(e.Fields))
	}
	return out
}

func (e *APIError) Kind() Kind {
	switch {
	case e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden:
		return KindAuth
	case e.Status == http.StatusNotFound:
		return KindNotFound
	case e.Status == http.StatusBadRequest || e.Status == http.StatusConflict || e.Status == http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindOther
	}
}

func statusSentinel(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.ErrValidation
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	}
	return nil
}

// KindOf classifies any error returned by Client.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind()
	}
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return KindTransport
	}
	return KindOther
}
