package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ionutdr23/GameMate/internal/domain"
	"github.com/ionutdr23/GameMate/internal/notifications"
)

type PushSender interface {
	Send(ctx context.Context, token string, msg notifications.Message) error
}

// NotificationService keeps device tokens and pushes friend events to them.
// It implements FriendNotifier.
type NotificationService struct {
	Profiles ProfilesStore
	Tokens   NotificationTokensStore
	Sender   PushSender
	Logger   *slog.Logger
	Now      func() time.Time
}

var _ FriendNotifier = (*NotificationService)(nil)

func (s *NotificationService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *NotificationService) RegisterToken(ctx context.Context, userID, token, platform string) (domain.NotificationToken, error) {
	if s.Tokens == nil {
		return domain.NotificationToken{}, errors.New("notifications unavailable")
	}
	token = strings.TrimSpace(token)
	platform = strings.TrimSpace(strings.ToLower(platform))
	fields := map[string]string{}
	if token == "" {
		fields["token"] = "required"
	}
	switch platform {
	case "android", "ios", "web":
	case "":
		fields["platform"] = "required"
	default:
		fields["platform"] = "must be ios, android or web"
	}
	if len(fields) > 0 {
		return domain.NotificationToken{}, domain.NewValidationError(fields)
	}
	own, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return domain.NotificationToken{}, err
	}
	when := stamp(s.Now)
	return s.Tokens.UpsertToken(ctx, own.ID, token, platform, when)
}

func (s *NotificationService) DeleteToken(ctx context.Context, userID, token string) error {
	if s.Tokens == nil {
		return errors.New("notifications unavailable")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.NewValidationError(map[string]string{"token": "required"})
	}
	own, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return err
	}
	return s.Tokens.DeleteToken(ctx, own.ID, token)
}

func (s *NotificationService) NotifyFriendRequest(ctx context.Context, n FriendRequestNotification) error {
	sender, err := s.lookup(ctx, n.SenderID)
	if err != nil || sender.ID == "" {
		return err
	}
	payload := map[string]string{
		"type":       "friend_request",
		"request_id": n.RequestID,
		"profile_id": sender.ID,
		"nickname":   sender.Nickname,
	}
	return s.push(ctx, n.ReceiverID, payload, &notifications.Notification{
		Title: "Friend request",
		Body:  sender.Nickname + " sent you a friend request.",
	})
}

func (s *NotificationService) NotifyFriendAccepted(ctx context.Context, n FriendAcceptedNotification) error {
	accepter, err := s.lookup(ctx, n.AccepterID)
	if err != nil || accepter.ID == "" {
		return err
	}
	payload := map[string]string{
		"type":       "friend_accepted",
		"profile_id": accepter.ID,
		"nickname":   accepter.Nickname,
	}
	return s.push(ctx, n.SenderID, payload, &notifications.Notification{
		Title: "Friend request accepted",
		Body:  accepter.Nickname + " accepted your friend request.",
	})
}

// lookup returns the zero profile when notifications are not configured.
func (s *NotificationService) lookup(ctx context.Context, profileID string) (domain.Profile, error) {
	if s.Tokens == nil || s.Sender == nil || s.Profiles == nil {
		return domain.Profile{}, nil
	}
	p, err := s.Profiles.GetProfileByID(ctx, profileID)
	if err != nil {
		s.logger().Error("notifications: profile lookup failed", "err", err, "profile_id", profileID)
		return domain.Profile{}, err
	}
	return p, nil
}

// push sends to every device of profileID. iOS devices get a visible alert,
// others a data-only message. Tokens FCM reports as unregistered are removed.
func (s *NotificationService) push(ctx context.Context, profileID string, data map[string]string, alert *notifications.Notification) error {
	logger := s.logger()
	tokens, err := s.Tokens.ListTokens(ctx, profileID)
	if err != nil {
		logger.Error("notifications: list tokens failed", "err", err, "profile_id", profileID)
		return err
	}

	for _, token := range tokens {
		msg := notifications.Message{Data: data}
		if strings.EqualFold(strings.TrimSpace(token.Platform), "ios") {
			msg.Notification = alert
		}
		if err := s.Sender.Send(ctx, token.Token, msg); err != nil {
			if errors.Is(err, notifications.ErrInvalidToken) {
				if delErr := s.Tokens.DeleteToken(ctx, profileID, token.Token); delErr != nil {
					logger.Error("notifications: delete invalid token failed", "err", delErr, "profile_id", profileID)
				}
				continue
			}
			logger.Error("notifications: send failed", "err", err, "profile_id", profileID)
		}
	}
	return nil
}
