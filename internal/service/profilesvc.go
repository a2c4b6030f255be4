package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ionutdr23/GameMate/internal/domain"
)

const (
	DefaultAvatarURL = "https://cdn.gamemate.app/avatars/blank-profile-picture.png"
	searchLimit      = 20
)

type ProfileService struct {
	Profiles     ProfilesStore
	GameProfiles GameProfilesStore
	Friends      FriendsStore
	Now          func() time.Time
}

func validNickname(s string) bool {
	if len(s) < 3 || len(s) > 20 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}

func normalizeInput(in domain.ProfileInput) (domain.ProfileInput, error) {
	in.Nickname = strings.TrimSpace(in.Nickname)
	in.Bio = strings.TrimSpace(in.Bio)
	in.Location = strings.TrimSpace(in.Location)

	fields := map[string]string{}
	if !validNickname(in.Nickname) {
		fields["nickname"] = "must be 3-20 letters, digits or underscores"
	}
	if utf8.RuneCountInString(in.Bio) > 250 {
		fields["bio"] = "must be 250 characters or less"
	}
	if utf8.RuneCountInString(in.Location) > 100 {
		fields["location"] = "must be 100 characters or less"
	}
	if len(fields) > 0 {
		return in, domain.NewValidationError(fields)
	}
	return in, nil
}

func (s *ProfileService) now() time.Time {
	return stamp(s.Now)
}

func (s *ProfileService) Create(ctx context.Context, userID string, in domain.ProfileInput) (domain.Profile, error) {
	in, err := normalizeInput(in)
	if err != nil {
		return domain.Profile{}, err
	}
	if _, err := s.Profiles.GetProfileByUserID(ctx, userID); err == nil {
		return domain.Profile{}, domain.ErrProfileExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Profile{}, err
	}
	taken, err := s.Profiles.NicknameTaken(ctx, in.Nickname, "")
	if err != nil {
		return domain.Profile{}, err
	}
	if taken {
		return domain.Profile{}, domain.ErrNicknameTaken
	}

	now := s.now()
	return s.Profiles.CreateProfile(ctx, domain.Profile{
		UserID:    userID,
		Nickname:  in.Nickname,
		AvatarURL: DefaultAvatarURL,
		Bio:       in.Bio,
		Location:  in.Location,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *ProfileService) Update(ctx context.Context, userID string, in domain.ProfileInput) (domain.Profile, error) {
	in, err := normalizeInput(in)
	if err != nil {
		return domain.Profile{}, err
	}
	own, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	taken, err := s.Profiles.NicknameTaken(ctx, in.Nickname, own.ID)
	if err != nil {
		return domain.Profile{}, err
	}
	if taken {
		return domain.Profile{}, domain.ErrNicknameTaken
	}
	return s.Profiles.UpdateProfile(ctx, own.ID, in, s.now())
}

// GetOwn returns the viewer's aggregate profile: base fields, game profiles,
// friends and pending requests in both directions.
func (s *ProfileService) GetOwn(ctx context.Context, userID string) (domain.Profile, error) {
	p, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	if err := s.fillPublic(ctx, &p); err != nil {
		return domain.Profile{}, err
	}
	if p.SentFriendRequests, err = s.Friends.ListOutgoing(ctx, p.ID); err != nil {
		return domain.Profile{}, fmt.Errorf("list sent requests: %w", err)
	}
	if p.ReceivedFriendRequests, err = s.Friends.ListIncoming(ctx, p.ID); err != nil {
		return domain.Profile{}, fmt.Errorf("list received requests: %w", err)
	}
	nonNil(&p)
	return p, nil
}

// Get returns another profile as anyone may see it: no pending requests and
// no identity subject.
func (s *ProfileService) Get(ctx context.Context, profileID string) (domain.Profile, error) {
	p, err := s.Profiles.GetProfileByID(ctx, profileID)
	if err != nil {
		return domain.Profile{}, err
	}
	if err := s.fillPublic(ctx, &p); err != nil {
		return domain.Profile{}, err
	}
	p.UserID = ""
	nonNil(&p)
	return p, nil
}

func (s *ProfileService) fillPublic(ctx context.Context, p *domain.Profile) error {
	var err error
	if p.GameProfiles, err = s.GameProfiles.ListGameProfiles(ctx, p.ID); err != nil {
		return fmt.Errorf("list game profiles: %w", err)
	}
	if p.Friends, err = s.Friends.ListFriends(ctx, p.ID); err != nil {
		return fmt.Errorf("list friends: %w", err)
	}
	return nil
}

func nonNil(p *domain.Profile) {
	if p.GameProfiles == nil {
		p.GameProfiles = []domain.GameProfile{}
	}
	if p.Friends == nil {
		p.Friends = []domain.ProfilePreview{}
	}
	if p.SentFriendRequests == nil {
		p.SentFriendRequests = []domain.FriendRequest{}
	}
	if p.ReceivedFriendRequests == nil {
		p.ReceivedFriendRequests = []domain.FriendRequest{}
	}
}

func (s *ProfileService) Search(ctx context.Context, userID, nickname string) ([]domain.SearchResult, error) {
	nickname = strings.TrimSpace(nickname)
	if utf8.RuneCountInString(nickname) < 2 {
		return nil, domain.NewValidationError(map[string]string{"nickname": "must be at least 2 characters"})
	}
	own, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	results, err := s.Profiles.SearchProfiles(ctx, own.ID, nickname, searchLimit)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	return results, nil
}

func (s *ProfileService) NicknameAvailable(ctx context.Context, nickname string) (bool, error) {
	nickname = strings.TrimSpace(nickname)
	if !validNickname(nickname) {
		return false, domain.NewValidationError(map[string]string{"nickname": "must be 3-20 letters, digits or underscores"})
	}
	taken, err := s.Profiles.NicknameTaken(ctx, nickname, "")
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// ProfileID resolves the caller's profile id.
func (s *ProfileService) ProfileID(ctx context.Context, userID string) (string, error) {
	p, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}
