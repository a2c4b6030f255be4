package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ionutdr23/GameMate/internal/domain"
	"github.com/ionutdr23/GameMate/internal/notifications"
)

func TestNotificationServiceRegisterTokenValidation(t *testing.T) {
	svc := &NotificationService{
		Tokens: &stubNotificationTokensStore{},
	}

	if _, err := svc.RegisterToken(context.Background(), "user-1", "", "android"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty token, got %v", err)
	}
	if _, err := svc.RegisterToken(context.Background(), "user-1", "token", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty platform, got %v", err)
	}
	_, err := svc.RegisterToken(context.Background(), "user-1", "token", "blackberry")
	if fields := domain.ValidationFields(err); fields["platform"] == "" {
		t.Fatalf("expected platform field error, got %v", err)
	}
}

func TestNotificationServiceRegisterTokenUsesProfileID(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var gotProfile, gotPlatform string
	svc := &NotificationService{
		Profiles: &stubProfilesStore{getByUserIDFunc: ownProfile(map[string]string{"google|1": "p-1"})},
		Tokens: &stubNotificationTokensStore{
			upsertFunc: func(_ context.Context, profileID, token, platform string, when time.Time) (domain.NotificationToken, error) {
				gotProfile, gotPlatform = profileID, platform
				if !when.Equal(now) {
					t.Fatalf("when = %v, want %v", when, now)
				}
				return domain.NotificationToken{Token: token, Platform: platform}, nil
			},
		},
		Now: func() time.Time { return now },
	}

	if _, err := svc.RegisterToken(context.Background(), "google|1", " tok ", "iOS"); err != nil {
		t.Fatalf("RegisterToken: %v", err)
	}
	if gotProfile != "p-1" || gotPlatform != "ios" {
		t.Fatalf("upsert got profile=%q platform=%q", gotProfile, gotPlatform)
	}
}

func TestNotificationServiceNotifyFriendRequestDeletesInvalidToken(t *testing.T) {
	deleted := false
	tokens := &stubNotificationTokensStore{
		listFunc: func(_ context.Context, profileID string) ([]domain.NotificationToken, error) {
			if profileID != "p-2" {
				t.Fatalf("unexpected profile id: %s", profileID)
			}
			return []domain.NotificationToken{
				{Token: "stale", Platform: "android"},
				{Token: "good", Platform: "android"},
			}, nil
		},
		deleteFunc: func(_ context.Context, profileID, token string) error {
			if profileID != "p-2" || token != "stale" {
				t.Fatalf("unexpected delete: %s %s", profileID, token)
			}
			deleted = true
			return nil
		},
	}
	var sent []string
	sender := &stubPushSender{
		sendFunc: func(_ context.Context, token string, msg notifications.Message) error {
			sent = append(sent, token)
			if msg.Data["type"] != "friend_request" || msg.Data["request_id"] != "fr-1" {
				t.Fatalf("unexpected payload: %#v", msg.Data)
			}
			if msg.Notification != nil {
				t.Fatalf("android message should be data-only")
			}
			if token == "stale" {
				return notifications.ErrInvalidToken
			}
			return nil
		},
	}
	profiles := &stubProfilesStore{
		getByIDFunc: func(_ context.Context, id string) (domain.Profile, error) {
			return domain.Profile{ID: id, Nickname: "alice"}, nil
		},
	}
	svc := &NotificationService{Profiles: profiles, Tokens: tokens, Sender: sender}

	err := svc.NotifyFriendRequest(context.Background(), FriendRequestNotification{RequestID: "fr-1", SenderID: "p-1", ReceiverID: "p-2"})
	if err != nil {
		t.Fatalf("NotifyFriendRequest: %v", err)
	}
	if !deleted {
		t.Fatalf("expected stale token to be deleted")
	}
	if len(sent) != 2 {
		t.Fatalf("sent to %v, want both tokens", sent)
	}
}

func TestNotificationServiceNotifyFriendAcceptedAlertsIOS(t *testing.T) {
	var got notifications.Message
	svc := &NotificationService{
		Profiles: &stubProfilesStore{
			getByIDFunc: func(_ context.Context, id string) (domain.Profile, error) {
				return domain.Profile{ID: id, Nickname: "bob"}, nil
			},
		},
		Tokens: &stubNotificationTokensStore{
			listFunc: func(_ context.Context, profileID string) ([]domain.NotificationToken, error) {
				if profileID != "p-1" {
					t.Fatalf("accept notice should go to the original sender, got %s", profileID)
				}
				return []domain.NotificationToken{{Token: "ios-tok", Platform: "ios"}}, nil
			},
		},
		Sender: &stubPushSender{
			sendFunc: func(_ context.Context, _ string, msg notifications.Message) error {
				got = msg
				return nil
			},
		},
	}

	if err := svc.NotifyFriendAccepted(context.Background(), FriendAcceptedNotification{SenderID: "p-1", AccepterID: "p-2"}); err != nil {
		t.Fatalf("NotifyFriendAccepted: %v", err)
	}
	if got.Notification == nil || got.Notification.Body != "bob accepted your friend request." {
		t.Fatalf("unexpected alert: %#v", got.Notification)
	}
	if got.Data["profile_id"] != "p-2" {
		t.Fatalf("profile_id = %q", got.Data["profile_id"])
	}
}

func TestNotificationServiceUnconfiguredIsNoop(t *testing.T) {
	svc := &NotificationService{}
	if err := svc.NotifyFriendRequest(context.Background(), FriendRequestNotification{SenderID: "a", ReceiverID: "b"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
