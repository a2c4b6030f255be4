// Package session holds the signed-in viewer's profile for the lifetime of a
// client session. The snapshot is only ever replaced by a full refetch from the
// backend; nothing mutates it locally.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ionutdr23/GameMate/internal/domain"
)

// ProfileFetcher loads the viewer's aggregate profile.
type ProfileFetcher interface {
	FetchMyProfile(ctx context.Context) (domain.Profile, error)
}

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	Profile     domain.Profile
	Loaded      bool
	LastUpdated time.Time
	LastError   error
}

type Session struct {
	fetcher ProfileFetcher
	now     func() time.Time

	mu       sync.RWMutex
	snapshot Snapshot
}

func New(fetcher ProfileFetcher) *Session {
	return &Session{fetcher: fetcher, now: time.Now}
}

// Refresh refetches the viewer profile. On failure the previous profile is kept
// and the error is recorded alongside it.
func (s *Session) Refresh(ctx context.Context) (domain.Profile, error) {
	if s == nil || s.fetcher == nil {
		return domain.Profile{}, errors.New("session not configured")
	}
	p, err := s.fetcher.FetchMyProfile(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.LastUpdated = s.now()
	s.snapshot.LastError = err
	if err != nil {
		return cloneProfile(s.snapshot.Profile), err
	}
	s.snapshot.Profile = cloneProfile(p)
	s.snapshot.Loaded = true
	return cloneProfile(p), nil
}

// Ensure returns the cached profile, loading it first when the session has
// never been loaded.
func (s *Session) Ensure(ctx context.Context) (domain.Profile, error) {
	if p, ok := s.Profile(); ok {
		return p, nil
	}
	return s.Refresh(ctx)
}

func (s *Session) Profile() (domain.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProfile(s.snapshot.Profile), s.snapshot.Loaded
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.snapshot
	out.Profile = cloneProfile(s.snapshot.Profile)
	return out
}

func cloneProfile(p domain.Profile) domain.Profile {
	out := p
	if p.GameProfiles != nil {
		out.GameProfiles = make([]domain.GameProfile, len(p.GameProfiles))
		for i, gp := range p.GameProfiles {
			gp.Game.SkillLevels = cloneStrings(gp.Game.SkillLevels)
			gp.Playstyles = cloneStrings(gp.Playstyles)
			gp.Platforms = cloneStrings(gp.Platforms)
			out.GameProfiles[i] = gp
		}
	}
	out.Friends = append([]domain.ProfilePreview(nil), p.Friends...)
	out.SentFriendRequests = append([]domain.FriendRequest(nil), p.SentFriendRequests...)
	out.ReceivedFriendRequests = append([]domain.FriendRequest(nil), p.ReceivedFriendRequests...)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
