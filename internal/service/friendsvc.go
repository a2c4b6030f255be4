package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ionutdr23/GameMate/internal/domain"
)

type FriendRequestNotification struct {
	RequestID  string
	SenderID   string
	ReceiverID string
}

type FriendAcceptedNotification struct {
	// SenderID sent the original request; AccepterID accepted it.
	SenderID   string
	AccepterID string
}

type FriendNotifier interface {
	NotifyFriendRequest(ctx context.Context, n FriendRequestNotification) error
	NotifyFriendAccepted(ctx context.Context, n FriendAcceptedNotification) error
}

type FriendsService struct {
	Profiles ProfilesStore
	Friends  FriendsStore
	Notifier FriendNotifier
	Logger   *slog.Logger
	Now      func() time.Time
}

// FriendRequests are the caller's pending requests.
type FriendRequests struct {
	Incoming []domain.FriendRequest `json:"incoming"`
	Outgoing []domain.FriendRequest `json:"outgoing"`
}

func (s *FriendsService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *FriendsService) ListFriends(ctx context.Context, userID string) ([]domain.ProfilePreview, error) {
	own, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	friends, err := s.Friends.ListFriends(ctx, own.ID)
	if err != nil {
		return nil, err
	}
	if friends == nil {
		friends = []domain.ProfilePreview{}
	}
	return friends, nil
}

func (s *FriendsService) ListRequests(ctx context.Context, userID string) (FriendRequests, error) {
	own, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return FriendRequests{}, err
	}
	out := FriendRequests{Incoming: []domain.FriendRequest{}, Outgoing: []domain.FriendRequest{}}
	incoming, err := s.Friends.ListIncoming(ctx, own.ID)
	if err != nil {
		return FriendRequests{}, err
	}
	outgoing, err := s.Friends.ListOutgoing(ctx, own.ID)
	if err != nil {
		return FriendRequests{}, err
	}
	out.Incoming = append(out.Incoming, incoming...)
	out.Outgoing = append(out.Outgoing, outgoing...)
	return out, nil
}

func (s *FriendsService) SendRequest(ctx context.Context, userID, receiverProfileID string) (domain.FriendRequest, error) {
	receiverProfileID = strings.TrimSpace(receiverProfileID)
	if receiverProfileID == "" {
		return domain.FriendRequest{}, domain.NewValidationError(map[string]string{"receiverProfileId": "required"})
	}
	own, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	if own.ID == receiverProfileID {
		return domain.FriendRequest{}, domain.NewValidationError(map[string]string{"receiverProfileId": "cannot friend yourself"})
	}
	if _, err := s.Profiles.GetProfileByID(ctx, receiverProfileID); err != nil {
		return domain.FriendRequest{}, err
	}

	friends, err := s.Friends.AreFriends(ctx, own.ID, receiverProfileID)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	if friends {
		return domain.FriendRequest{}, domain.ErrAlreadyFriends
	}
	pending, err := s.Friends.RequestBetween(ctx, own.ID, receiverProfileID)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	if pending {
		return domain.FriendRequest{}, domain.ErrFriendRequestExists
	}

	fr, err := s.Friends.CreateRequest(ctx, own.ID, receiverProfileID, stamp(s.Now))
	if err != nil {
		return domain.FriendRequest{}, err
	}
	if s.Notifier != nil {
		n := FriendRequestNotification{RequestID: fr.ID, SenderID: own.ID, ReceiverID: receiverProfileID}
		if err := s.Notifier.NotifyFriendRequest(ctx, n); err != nil {
			s.logger().Warn("friends: request notification failed", "err", err, "request_id", fr.ID)
		}
	}
	return fr, nil
}

// Respond accepts or declines a request addressed to the caller.
func (s *FriendsService) Respond(ctx context.Context, userID, requestID string, accept bool) error {
	own, fr, err := s.loadRequest(ctx, userID, requestID)
	if err != nil {
		return err
	}
	if fr.Receiver.ID != own.ID {
		return domain.ErrForbidden
	}
	if !accept {
		return s.Friends.DeleteRequest(ctx, fr.ID)
	}
	if err := s.Friends.AcceptRequest(ctx, fr.ID, stamp(s.Now)); err != nil {
		return err
	}
	if s.Notifier != nil {
		n := FriendAcceptedNotification{SenderID: fr.Sender.ID, AccepterID: own.ID}
		if err := s.Notifier.NotifyFriendAccepted(ctx, n); err != nil {
			s.logger().Warn("friends: accepted notification failed", "err", err, "request_id", fr.ID)
		}
	}
	return nil
}

// Cancel withdraws a request the caller sent.
func (s *FriendsService) Cancel(ctx context.Context, userID, requestID string) error {
	own, fr, err := s.loadRequest(ctx, userID, requestID)
	if err != nil {
		return err
	}
	if fr.Sender.ID != own.ID {
		return domain.ErrForbidden
	}
	return s.Friends.DeleteRequest(ctx, fr.ID)
}

func (s *FriendsService) Unfriend(ctx context.Context, userID, friendProfileID string) error {
	friendProfileID = strings.TrimSpace(friendProfileID)
	if friendProfileID == "" {
		return domain.NewValidationError(map[string]string{"profileId": "required"})
	}
	own, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return err
	}
	return s.Friends.DeleteFriendship(ctx, own.ID, friendProfileID)
}

func (s *FriendsService) loadRequest(ctx context.Context, userID, requestID string) (domain.Profile, domain.FriendRequest, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return domain.Profile{}, domain.FriendRequest{}, domain.NewValidationError(map[string]string{"id": "required"})
	}
	own, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return domain.Profile{}, domain.FriendRequest{}, err
	}
	fr, err := s.Friends.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Profile{}, domain.FriendRequest{}, domain.ErrNotFound
		}
		return domain.Profile{}, domain.FriendRequest{}, err
	}
	return own, fr, nil
}
