package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ionutdr23/GameMate/internal/domain"
)

func TestValidNickname(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"abc", true},
		{"Player_One_99", true},
		{"ab", false},
		{strings.Repeat("a", 21), false},
		{"has space", false},
		{"dash-ed", false},
		{"émile", false},
	}
	for _, tc := range tests {
		if got := validNickname(tc.in); got != tc.want {
			t.Fatalf("validNickname(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestProfileServiceCreate(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	var created domain.Profile
	profiles := &stubProfilesStore{
		getByUserIDFunc:   func(context.Context, string) (domain.Profile, error) { return domain.Profile{}, domain.ErrNotFound },
		nicknameTakenFunc: func(context.Context, string, string) (bool, error) { return false, nil },
		createFunc: func(_ context.Context, p domain.Profile) (domain.Profile, error) {
			created = p
			p.ID = "p-1"
			return p, nil
		},
	}
	svc := &ProfileService{Profiles: profiles, Now: func() time.Time { return now }}

	got, err := svc.Create(context.Background(), "google|1", domain.ProfileInput{Nickname: "  gamer_1 ", Bio: " hi "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.ID != "p-1" {
		t.Fatalf("ID = %q", got.ID)
	}
	if created.Nickname != "gamer_1" || created.Bio != "hi" {
		t.Fatalf("input not trimmed: %+v", created)
	}
	if created.AvatarURL != DefaultAvatarURL {
		t.Fatalf("AvatarURL = %q", created.AvatarURL)
	}
	if !created.CreatedAt.Equal(now) || !created.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps = %v/%v", created.CreatedAt, created.UpdatedAt)
	}
}

func TestProfileServiceCreateRejects(t *testing.T) {
	t.Run("existing profile", func(t *testing.T) {
		svc := &ProfileService{Profiles: &stubProfilesStore{
			getByUserIDFunc: ownProfile(map[string]string{"u-1": "p-1"}),
		}}
		_, err := svc.Create(context.Background(), "u-1", domain.ProfileInput{Nickname: "gamer"})
		if !errors.Is(err, domain.ErrProfileExists) {
			t.Fatalf("err = %v, want profile exists", err)
		}
	})
	t.Run("nickname taken", func(t *testing.T) {
		svc := &ProfileService{Profiles: &stubProfilesStore{
			getByUserIDFunc:   ownProfile(nil),
			nicknameTakenFunc: func(context.Context, string, string) (bool, error) { return true, nil },
		}}
		_, err := svc.Create(context.Background(), "u-1", domain.ProfileInput{Nickname: "gamer"})
		if !errors.Is(err, domain.ErrNicknameTaken) {
			t.Fatalf("err = %v, want nickname taken", err)
		}
	})
	t.Run("invalid fields", func(t *testing.T) {
		svc := &ProfileService{Profiles: &stubProfilesStore{}}
		_, err := svc.Create(context.Background(), "u-1", domain.ProfileInput{
			Nickname: "x",
			Bio:      strings.Repeat("b", 251),
			Location: strings.Repeat("l", 101),
		})
		fields := domain.ValidationFields(err)
		for _, f := range []string{"nickname", "bio", "location"} {
			if fields[f] == "" {
				t.Fatalf("missing field error %q in %v", f, err)
			}
		}
	})
}

func TestProfileServiceUpdateExcludesOwnNickname(t *testing.T) {
	var excluded string
	svc := &ProfileService{Profiles: &stubProfilesStore{
		getByUserIDFunc: ownProfile(map[string]string{"u-1": "p-1"}),
		nicknameTakenFunc: func(_ context.Context, _ string, excludeID string) (bool, error) {
			excluded = excludeID
			return false, nil
		},
		updateFunc: func(_ context.Context, id string, in domain.ProfileInput, _ time.Time) (domain.Profile, error) {
			return domain.Profile{ID: id, Nickname: in.Nickname}, nil
		},
	}}

	got, err := svc.Update(context.Background(), "u-1", domain.ProfileInput{Nickname: "Renamed"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if excluded != "p-1" {
		t.Fatalf("excludeID = %q, want p-1", excluded)
	}
	if got.Nickname != "Renamed" {
		t.Fatalf("Nickname = %q", got.Nickname)
	}
}

func TestProfileServiceGetOwnAggregates(t *testing.T) {
	svc := &ProfileService{
		Profiles: &stubProfilesStore{getByUserIDFunc: ownProfile(map[string]string{"u-1": "p-1"})},
		GameProfiles: &stubGameProfilesStore{
			listFunc: func(context.Context, string) ([]domain.GameProfile, error) {
				return []domain.GameProfile{{ID: "gp-1"}}, nil
			},
		},
		Friends: &stubFriendsStore{
			listFriendsFunc: func(context.Context, string) ([]domain.ProfilePreview, error) { return nil, nil },
			listIncomingFunc: func(context.Context, string) ([]domain.FriendRequest, error) {
				return []domain.FriendRequest{{ID: "in"}}, nil
			},
			listOutgoingFunc: func(context.Context, string) ([]domain.FriendRequest, error) {
				return []domain.FriendRequest{{ID: "out"}}, nil
			},
		},
	}

	p, err := svc.GetOwn(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("GetOwn: %v", err)
	}
	if len(p.GameProfiles) != 1 || p.Friends == nil {
		t.Fatalf("unexpected aggregate: %+v", p)
	}
	if p.ReceivedFriendRequests[0].ID != "in" || p.SentFriendRequests[0].ID != "out" {
		t.Fatalf("requests mixed up: %+v / %+v", p.ReceivedFriendRequests, p.SentFriendRequests)
	}
}

func TestProfileServiceGetHidesPrivateFields(t *testing.T) {
	svc := &ProfileService{
		Profiles: &stubProfilesStore{
			getByIDFunc: func(_ context.Context, id string) (domain.Profile, error) {
				return domain.Profile{ID: id, UserID: "google|secret"}, nil
			},
		},
		GameProfiles: &stubGameProfilesStore{listFunc: func(context.Context, string) ([]domain.GameProfile, error) { return nil, nil }},
		Friends:      &stubFriendsStore{listFriendsFunc: func(context.Context, string) ([]domain.ProfilePreview, error) { return nil, nil }},
	}

	p, err := svc.Get(context.Background(), "p-2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.UserID != "" {
		t.Fatalf("UserID leaked: %q", p.UserID)
	}
	if len(p.SentFriendRequests) != 0 || len(p.ReceivedFriendRequests) != 0 {
		t.Fatalf("requests leaked")
	}
}

func TestProfileServiceSearch(t *testing.T) {
	svc := &ProfileService{Profiles: &stubProfilesStore{
		getByUserIDFunc: ownProfile(map[string]string{"u-1": "p-1"}),
		searchFunc: func(_ context.Context, viewerID, nickname string, limit int) ([]domain.SearchResult, error) {
			if viewerID != "p-1" || nickname != "ga" || limit != searchLimit {
				t.Fatalf("search(%q, %q, %d)", viewerID, nickname, limit)
			}
			return nil, nil
		},
	}}

	if _, err := svc.Search(context.Background(), "u-1", "g"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("short query: err = %v", err)
	}
	got, err := svc.Search(context.Background(), "u-1", " ga ")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got == nil {
		t.Fatalf("expected empty slice")
	}
}

func TestProfileServiceNicknameAvailable(t *testing.T) {
	svc := &ProfileService{Profiles: &stubProfilesStore{
		nicknameTakenFunc: func(_ context.Context, nickname, _ string) (bool, error) {
			return strings.EqualFold(nickname, "taken"), nil
		},
	}}

	ok, err := svc.NicknameAvailable(context.Background(), "TAKEN")
	if err != nil || ok {
		t.Fatalf("TAKEN: ok=%v err=%v", ok, err)
	}
	ok, err = svc.NicknameAvailable(context.Background(), "free_one")
	if err != nil || !ok {
		t.Fatalf("free_one: ok=%v err=%v", ok, err)
	}
	if _, err := svc.NicknameAvailable(context.Background(), "a b"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("invalid: err = %v", err)
	}
}
