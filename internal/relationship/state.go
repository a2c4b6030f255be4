// Package relationship derives the friend relationship between the viewer and
// another profile and drives the transitions between relationship states.
package relationship

import (
	"errors"
	"fmt"

	"github.com/ionutdr23/GameMate/internal/domain"
)

var ErrInvalidTransition = errors.New("invalid relationship transition")

type State int

const (
	None State = iota
	Self
	Friend
	RequestReceived
	RequestSent
)

func (s State) String() string {
	switch s {
	case Self:
		return "self"
	case Friend:
		return "friend"
	case RequestReceived:
		return "request_received"
	case RequestSent:
		return "request_sent"
	case None:
		return "none"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

type Action string

const (
	ActionSendRequest   Action = "send_request"
	ActionCancelRequest Action = "cancel_request"
	ActionAccept        Action = "accept"
	ActionDecline       Action = "decline"
	ActionUnfriend      Action = "unfriend"
)

var transitions = map[State]map[Action]State{
	None:            {ActionSendRequest: RequestSent},
	RequestSent:     {ActionCancelRequest: None},
	RequestReceived: {ActionAccept: Friend, ActionDecline: None},
	Friend:          {ActionUnfriend: None},
}

// actionOrder fixes the order Actions are reported in.
var actionOrder = []Action{ActionSendRequest, ActionCancelRequest, ActionAccept, ActionDecline, ActionUnfriend}

// Relationship is the viewer's relation to one target profile.
type Relationship struct {
	TargetID string `json:"targetId"`
	State    State  `json:"state"`
	// RequestID is set for RequestSent and RequestReceived.
	RequestID string   `json:"requestId,omitempty"`
	Actions   []Action `json:"actions"`
}

// Derive computes the relationship from the viewer's own friend and request
// lists. A friendship takes precedence over any stale request for the same
// pair, and a received request over a sent one. An empty targetID names no
// profile and yields None with no actions.
func Derive(viewer domain.Profile, targetID string) Relationship {
	r := Relationship{TargetID: targetID, State: None}
	switch {
	case targetID == "":
		r.Actions = []Action{}
		return r
	case targetID == viewer.ID:
		r.State = Self
	case isFriend(viewer, targetID):
		r.State = Friend
	default:
		if req, ok := findReceived(viewer, targetID); ok {
			r.State, r.RequestID = RequestReceived, req.ID
		} else if req, ok := findSent(viewer, targetID); ok {
			r.State, r.RequestID = RequestSent, req.ID
		}
	}
	r.Actions = Actions(r.State)
	return r
}

// Actions lists the actions valid in s. Self has none.
func Actions(s State) []Action {
	out := []Action{}
	for _, a := range actionOrder {
		if Allowed(s, a) {
			out = append(out, a)
		}
	}
	return out
}

func Allowed(s State, a Action) bool {
	_, ok := transitions[s][a]
	return ok
}

// Next returns the state the backend should be in once a succeeds from s.
func Next(s State, a Action) (State, error) {
	next, ok := transitions[s][a]
	if !ok {
		return s, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, a, s)
	}
	return next, nil
}

func isFriend(viewer domain.Profile, targetID string) bool {
	for _, f := range viewer.Friends {
		if f.ID == targetID {
			return true
		}
	}
	return false
}

func findReceived(viewer domain.Profile, targetID string) (domain.FriendRequest, bool) {
	for _, fr := range viewer.ReceivedFriendRequests {
		if fr.Sender.ID == targetID {
			return fr, true
		}
	}
	return domain.FriendRequest{}, false
}

func findSent(viewer domain.Profile, targetID string) (domain.FriendRequest, bool) {
	for _, fr := range viewer.SentFriendRequests {
		if fr.Receiver.ID == targetID {
			return fr, true
		}
	}
	return domain.FriendRequest{}, false
}
