package service

import (
	"context"
	"time"

	"github.com/ionutdr23/GameMate/internal/domain"
)

// ProfilesStore persists the base profile row. Returned profiles carry no
// game profiles, friends or requests.
type ProfilesStore interface {
	CreateProfile(ctx context.Context, p domain.Profile) (domain.Profile, error)
	UpdateProfile(ctx context.Context, profileID string, in domain.ProfileInput, when time.Time) (domain.Profile, error)
	GetProfileByID(ctx context.Context, id string) (domain.Profile, error)
	GetProfileByUserID(ctx context.Context, userID string) (domain.Profile, error)
	// NicknameTaken reports whether another profile than excludeID uses the
	// nickname, compared case-insensitively.
	NicknameTaken(ctx context.Context, nickname, excludeID string) (bool, error)
	SearchProfiles(ctx context.Context, viewerID, nickname string, limit int) ([]domain.SearchResult, error)
}

type GamesStore interface {
	ListGames(ctx context.Context) ([]domain.Game, error)
	GetGame(ctx context.Context, id string) (domain.Game, error)
	CreateGame(ctx context.Context, name string, skillLevels []string) (domain.Game, error)
	DeleteGame(ctx context.Context, id string) error
}

type GameProfilesStore interface {
	ListGameProfiles(ctx context.Context, profileID string) ([]domain.GameProfile, error)
	CreateGameProfile(ctx context.Context, profileID string, r domain.GameProfileRequest) (domain.GameProfile, error)
	UpdateGameProfile(ctx context.Context, profileID string, r domain.GameProfileRequest) (domain.GameProfile, error)
	// GameProfileOwner returns the profile id owning the game profile.
	GameProfileOwner(ctx context.Context, gameProfileID string) (string, error)
	DeleteGameProfile(ctx context.Context, gameProfileID string) error
}

type FriendsStore interface {
	ListFriends(ctx context.Context, profileID string) ([]domain.ProfilePreview, error)
	ListIncoming(ctx context.Context, profileID string) ([]domain.FriendRequest, error)
	ListOutgoing(ctx context.Context, profileID string) ([]domain.FriendRequest, error)
	AreFriends(ctx context.Context, a, b string) (bool, error)
	// RequestBetween reports whether a pending request exists in either direction.
	RequestBetween(ctx context.Context, a, b string) (bool, error)
	CreateRequest(ctx context.Context, senderID, receiverID string, when time.Time) (domain.FriendRequest, error)
	GetRequest(ctx context.Context, id string) (domain.FriendRequest, error)
	// AcceptRequest deletes the request and stores the friendship in both
	// directions atomically.
	AcceptRequest(ctx context.Context, id string, when time.Time) error
	DeleteRequest(ctx context.Context, id string) error
	// DeleteFriendship removes both directions; ErrNotFound when none existed.
	DeleteFriendship(ctx context.Context, a, b string) error
}

type NotificationTokensStore interface {
	UpsertToken(ctx context.Context, profileID, token, platform string, when time.Time) (domain.NotificationToken, error)
	DeleteToken(ctx context.Context, profileID, token string) error
	ListTokens(ctx context.Context, profileID string) ([]domain.NotificationToken, error)
}

type PostsStore interface {
	CreatePost(ctx context.Context, p domain.Post) (domain.Post, error)
	GetPost(ctx context.Context, id string) (domain.Post, error)
	// ListPosts returns one page of profileID's posts whose visibility is in
	// visible, newest first, plus the number of such posts.
	ListPosts(ctx context.Context, profileID string, visible []domain.Visibility, offset, limit int) ([]domain.Post, int, error)
	UpdatePost(ctx context.Context, p domain.Post) (domain.Post, error)
	// DeletePost removes the post with its comments and reactions.
	DeletePost(ctx context.Context, id string) error
}

type CommentsStore interface {
	// CreateComment stores c and bumps the post's comment count atomically.
	CreateComment(ctx context.Context, c domain.Comment) (domain.Comment, error)
	GetComment(ctx context.Context, id string) (domain.Comment, error)
	// ListComments returns every comment of postID, oldest first.
	ListComments(ctx context.Context, postID string) ([]domain.Comment, error)
	UpdateComment(ctx context.Context, id, content string, when time.Time) (domain.Comment, error)
	// DeleteComments removes ids from postID and lowers its comment count by
	// the number of rows removed.
	DeleteComments(ctx context.Context, postID string, ids []string) error
}

type ReactionsStore interface {
	// UpsertReaction sets profileID's reaction to postID. created reports a
	// new row, in which case the post's reaction count was bumped with it.
	UpsertReaction(ctx context.Context, postID, profileID string, t domain.ReactionType, when time.Time) (r domain.Reaction, created bool, err error)
	GetReaction(ctx context.Context, postID, profileID string) (domain.Reaction, error)
	// DeleteReaction removes the reaction and lowers the post's reaction
	// count; ErrNotFound when there was none.
	DeleteReaction(ctx context.Context, postID, profileID string) error
	ListReactions(ctx context.Context, postID string) ([]domain.Reaction, error)
}

// GameCache holds the full game list. Misses return ok=false.
type GameCache interface {
	Get(ctx context.Context) (games []domain.Game, ok bool, err error)
	Set(ctx context.Context, games []domain.Game) error
	Invalidate(ctx context.Context) error
}

// stamp reads now (time.Now when nil) at the millisecond precision the
// stores keep.
func stamp(now func() time.Time) time.Time {
	if now == nil {
		now = time.Now
	}
	return now().UTC().Truncate(time.Millisecond)
}
