package service

import (
	"context"
	"errors"
	"time"

	"github.com/ionutdr23/GameMate/internal/domain"
	"github.com/ionutdr23/GameMate/internal/notifications"
)

type stubProfilesStore struct {
	createFunc        func(context.Context, domain.Profile) (domain.Profile, error)
	updateFunc        func(context.Context, string, domain.ProfileInput, time.Time) (domain.Profile, error)
	getByIDFunc       func(context.Context, string) (domain.Profile, error)
	getByUserIDFunc   func(context.Context, string) (domain.Profile, error)
	nicknameTakenFunc func(context.Context, string, string) (bool, error)
	searchFunc        func(context.Context, string, string, int) ([]domain.SearchResult, error)
}

func (s *stubProfilesStore) CreateProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	if s.createFunc != nil {
		return s.createFunc(ctx, p)
	}
	return domain.Profile{}, errors.New("create not stubbed")
}

func (s *stubProfilesStore) UpdateProfile(ctx context.Context, id string, in domain.ProfileInput, when time.Time) (domain.Profile, error) {
	if s.updateFunc != nil {
		return s.updateFunc(ctx, id, in, when)
	}
	return domain.Profile{}, errors.New("update not stubbed")
}

func (s *stubProfilesStore) GetProfileByID(ctx context.Context, id string) (domain.Profile, error) {
	if s.getByIDFunc != nil {
		return s.getByIDFunc(ctx, id)
	}
	return domain.Profile{}, errors.New("get by id not stubbed")
}

func (s *stubProfilesStore) GetProfileByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	if s.getByUserIDFunc != nil {
		return s.getByUserIDFunc(ctx, userID)
	}
	return domain.Profile{}, errors.New("get by user id not stubbed")
}

func (s *stubProfilesStore) NicknameTaken(ctx context.Context, nickname, excludeID string) (bool, error) {
	if s.nicknameTakenFunc != nil {
		return s.nicknameTakenFunc(ctx, nickname, excludeID)
	}
	return false, errors.New("nickname taken not stubbed")
}

func (s *stubProfilesStore) SearchProfiles(ctx context.Context, viewerID, nickname string, limit int) ([]domain.SearchResult, error) {
	if s.searchFunc != nil {
		return s.searchFunc(ctx, viewerID, nickname, limit)
	}
	return nil, errors.New("search not stubbed")
}

// ownProfile answers GetProfileByUserID with a fixed profile per user id.
func ownProfile(byUser map[string]string) func(context.Context, string) (domain.Profile, error) {
	return func(_ context.Context, userID string) (domain.Profile, error) {
		id, ok := byUser[userID]
		if !ok {
			return domain.Profile{}, domain.ErrNotFound
		}
		return domain.Profile{ID: id, UserID: userID, Nickname: "nick_" + id}, nil
	}
}

type stubGamesStore struct {
	listFunc   func(context.Context) ([]domain.Game, error)
	getFunc    func(context.Context, string) (domain.Game, error)
	createFunc func(context.Context, string, []string) (domain.Game, error)
	deleteFunc func(context.Context, string) error
}

func (s *stubGamesStore) ListGames(ctx context.Context) ([]domain.Game, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx)
	}
	return nil, errors.New("list not stubbed")
}

func (s *stubGamesStore) GetGame(ctx context.Context, id string) (domain.Game, error) {
	if s.getFunc != nil {
		return s.getFunc(ctx, id)
	}
	return domain.Game{}, errors.New("get not stubbed")
}

func (s *stubGamesStore) CreateGame(ctx context.Context, name string, levels []string) (domain.Game, error) {
	if s.createFunc != nil {
		return s.createFunc(ctx, name, levels)
	}
	return domain.Game{}, errors.New("create not stubbed")
}

func (s *stubGamesStore) DeleteGame(ctx context.Context, id string) error {
	if s.deleteFunc != nil {
		return s.deleteFunc(ctx, id)
	}
	return errors.New("delete not stubbed")
}

type stubGameProfilesStore struct {
	listFunc   func(context.Context, string) ([]domain.GameProfile, error)
	createFunc func(context.Context, string, domain.GameProfileRequest) (domain.GameProfile, error)
	updateFunc func(context.Context, string, domain.GameProfileRequest) (domain.GameProfile, error)
	ownerFunc  func(context.Context, string) (string, error)
	deleteFunc func(context.Context, string) error
}

func (s *stubGameProfilesStore) ListGameProfiles(ctx context.Context, profileID string) ([]domain.GameProfile, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, profileID)
	}
	return nil, errors.New("list not stubbed")
}

func (s *stubGameProfilesStore) CreateGameProfile(ctx context.Context, profileID string, r domain.GameProfileRequest) (domain.GameProfile, error) {
	if s.createFunc != nil {
		return s.createFunc(ctx, profileID, r)
	}
	return domain.GameProfile{}, errors.New("create not stubbed")
}

func (s *stubGameProfilesStore) UpdateGameProfile(ctx context.Context, profileID string, r domain.GameProfileRequest) (domain.GameProfile, error) {
	if s.updateFunc != nil {
		return s.updateFunc(ctx, profileID, r)
	}
	return domain.GameProfile{}, errors.New("update not stubbed")
}

func (s *stubGameProfilesStore) GameProfileOwner(ctx context.Context, id string) (string, error) {
	if s.ownerFunc != nil {
		return s.ownerFunc(ctx, id)
	}
	return "", errors.New("owner not stubbed")
}

func (s *stubGameProfilesStore) DeleteGameProfile(ctx context.Context, id string) error {
	if s.deleteFunc != nil {
		return s.deleteFunc(ctx, id)
	}
	return errors.New("delete not stubbed")
}

type stubFriendsStore struct {
	listFriendsFunc    func(context.Context, string) ([]domain.ProfilePreview, error)
	listIncomingFunc   func(context.Context, string) ([]domain.FriendRequest, error)
	listOutgoingFunc   func(context.Context, string) ([]domain.FriendRequest, error)
	areFriendsFunc     func(context.Context, string, string) (bool, error)
	requestBetweenFunc func(context.Context, string, string) (bool, error)
	createFunc         func(context.Context, string, string, time.Time) (domain.FriendRequest, error)
	getFunc            func(context.Context, string) (domain.FriendRequest, error)
	acceptFunc         func(context.Context, string, time.Time) error
	deleteRequestFunc  func(context.Context, string) error
	deleteFriendFunc   func(context.Context, string, string) error
}

func (s *stubFriendsStore) ListFriends(ctx context.Context, id string) ([]domain.ProfilePreview, error) {
	if s.listFriendsFunc != nil {
		return s.listFriendsFunc(ctx, id)
	}
	return nil, errors.New("list friends not stubbed")
}

func (s *stubFriendsStore) ListIncoming(ctx context.Context, id string) ([]domain.FriendRequest, error) {
	if s.listIncomingFunc != nil {
		return s.listIncomingFunc(ctx, id)
	}
	return nil, errors.New("list incoming not stubbed")
}

func (s *stubFriendsStore) ListOutgoing(ctx context.Context, id string) ([]domain.FriendRequest, error) {
	if s.listOutgoingFunc != nil {
		return s.listOutgoingFunc(ctx, id)
	}
	return nil, errors.New("list outgoing not stubbed")
}

func (s *stubFriendsStore) AreFriends(ctx context.Context, a, b string) (bool, error) {
	if s.areFriendsFunc != nil {
		return s.areFriendsFunc(ctx, a, b)
	}
	return false, errors.New("are friends not stubbed")
}

func (s *stubFriendsStore) RequestBetween(ctx context.Context, a, b string) (bool, error) {
	if s.requestBetweenFunc != nil {
		return s.requestBetweenFunc(ctx, a, b)
	}
	return false, errors.New("request between not stubbed")
}

func (s *stubFriendsStore) CreateRequest(ctx context.Context, sender, receiver string, when time.Time) (domain.FriendRequest, error) {
	if s.createFunc != nil {
		return s.createFunc(ctx, sender, receiver, when)
	}
	return domain.FriendRequest{}, errors.New("create request not stubbed")
}

func (s *stubFriendsStore) GetRequest(ctx context.Context, id string) (domain.FriendRequest, error) {
	if s.getFunc != nil {
		return s.getFunc(ctx, id)
	}
	return domain.FriendRequest{}, errors.New("get request not stubbed")
}

func (s *stubFriendsStore) AcceptRequest(ctx context.Context, id string, when time.Time) error {
	if s.acceptFunc != nil {
		return s.acceptFunc(ctx, id, when)
	}
	return errors.New("accept not stubbed")
}

func (s *stubFriendsStore) DeleteRequest(ctx context.Context, id string) error {
	if s.deleteRequestFunc != nil {
		return s.deleteRequestFunc(ctx, id)
	}
	return errors.New("delete request not stubbed")
}

func (s *stubFriendsStore) DeleteFriendship(ctx context.Context, a, b string) error {
	if s.deleteFriendFunc != nil {
		return s.deleteFriendFunc(ctx, a, b)
	}
	return errors.New("delete friendship not stubbed")
}

type stubNotificationTokensStore struct {
	upsertFunc func(context.Context, string, string, string, time.Time) (domain.NotificationToken, error)
	deleteFunc func(context.Context, string, string) error
	listFunc   func(context.Context, string) ([]domain.NotificationToken, error)
}

func (s *stubNotificationTokensStore) UpsertToken(ctx context.Context, profileID, token, platform string, when time.Time) (domain.NotificationToken, error) {
	if s.upsertFunc != nil {
		return s.upsertFunc(ctx, profileID, token, platform, when)
	}
	return domain.NotificationToken{}, errors.New("upsert not stubbed")
}

func (s *stubNotificationTokensStore) DeleteToken(ctx context.Context, profileID, token string) error {
	if s.deleteFunc != nil {
		return s.deleteFunc(ctx, profileID, token)
	}
	return errors.New("delete not stubbed")
}

func (s *stubNotificationTokensStore) ListTokens(ctx context.Context, profileID string) ([]domain.NotificationToken, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, profileID)
	}
	return nil, errors.New("list not stubbed")
}

type stubPushSender struct {
	sendFunc func(context.Context, string, notifications.Message) error
}

func (s *stubPushSender) Send(ctx context.Context, token string, msg notifications.Message) error {
	if s.sendFunc != nil {
		return s.sendFunc(ctx, token, msg)
	}
	return nil
}

type stubGameCache struct {
	games       []domain.Game
	cached      bool
	getErr      error
	sets        int
	invalidated int
}

func (c *stubGameCache) Get(context.Context) ([]domain.Game, bool, error) {
	return c.games, c.cached, c.getErr
}

func (c *stubGameCache) Set(_ context.Context, games []domain.Game) error {
	c.games, c.cached = games, true
	c.sets++
	return nil
}

func (c *stubGameCache) Invalidate(context.Context) error {
	c.games, c.cached = nil, false
	c.invalidated++
	return nil
}

type stubPostsStore struct {
	createFunc func(context.Context, domain.Post) (domain.Post, error)
	getFunc    func(context.Context, string) (domain.Post, error)
	listFunc   func(context.Context, string, []domain.Visibility, int, int) ([]domain.Post, int, error)
	updateFunc func(context.Context, domain.Post) (domain.Post, error)
	deleteFunc func(context.Context, string) error
}

func (s *stubPostsStore) CreatePost(ctx context.Context, p domain.Post) (domain.Post, error) {
	if s.createFunc != nil {
		return s.createFunc(ctx, p)
	}
	return domain.Post{}, errors.New("create post not stubbed")
}

func (s *stubPostsStore) GetPost(ctx context.Context, id string) (domain.Post, error) {
	if s.getFunc != nil {
		return s.getFunc(ctx, id)
	}
	return domain.Post{}, errors.New("get post not stubbed")
}

func (s *stubPostsStore) ListPosts(ctx context.Context, profileID string, visible []domain.Visibility, offset, limit int) ([]domain.Post, int, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, profileID, visible, offset, limit)
	}
	return nil, 0, errors.New("list posts not stubbed")
}

func (s *stubPostsStore) UpdatePost(ctx context.Context, p domain.Post) (domain.Post, error) {
	if s.updateFunc != nil {
		return s.updateFunc(ctx, p)
	}
	return domain.Post{}, errors.New("update post not stubbed")
}

func (s *stubPostsStore) DeletePost(ctx context.Context, id string) error {
	if s.deleteFunc != nil {
		return s.deleteFunc(ctx, id)
	}
	return errors.New("delete post not stubbed")
}

// postsByID answers GetPost from a fixed set of posts.
func postsByID(posts ...domain.Post) func(context.Context, string) (domain.Post, error) {
	return func(_ context.Context, id string) (domain.Post, error) {
		for _, p := range posts {
			if p.ID == id {
				return p, nil
			}
		}
		return domain.Post{}, domain.ErrNotFound
	}
}

type stubCommentsStore struct {
	createFunc func(context.Context, domain.Comment) (domain.Comment, error)
	getFunc    func(context.Context, string) (domain.Comment, error)
	listFunc   func(context.Context, string) ([]domain.Comment, error)
	updateFunc func(context.Context, string, string, time.Time) (domain.Comment, error)
	deleteFunc func(context.Context, string, []string) error
}

func (s *stubCommentsStore) CreateComment(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	if s.createFunc != nil {
		return s.createFunc(ctx, c)
	}
	return domain.Comment{}, errors.New("create comment not stubbed")
}

func (s *stubCommentsStore) GetComment(ctx context.Context, id string) (domain.Comment, error) {
	if s.getFunc != nil {
		return s.getFunc(ctx, id)
	}
	return domain.Comment{}, errors.New("get comment not stubbed")
}

func (s *stubCommentsStore) ListComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, postID)
	}
	return nil, errors.New("list comments not stubbed")
}

func (s *stubCommentsStore) UpdateComment(ctx context.Context, id, content string, when time.Time) (domain.Comment, error) {
	if s.updateFunc != nil {
		return s.updateFunc(ctx, id, content, when)
	}
	return domain.Comment{}, errors.New("update comment not stubbed")
}

func (s *stubCommentsStore) DeleteComments(ctx context.Context, postID string, ids []string) error {
	if s.deleteFunc != nil {
		return s.deleteFunc(ctx, postID, ids)
	}
	return errors.New("delete comments not stubbed")
}

type stubReactionsStore struct {
	upsertFunc func(context.Context, string, string, domain.ReactionType, time.Time) (domain.Reaction, bool, error)
	getFunc    func(context.Context, string, string) (domain.Reaction, error)
	deleteFunc func(context.Context, string, string) error
	listFunc   func(context.Context, string) ([]domain.Reaction, error)
}

func (s *stubReactionsStore) UpsertReaction(ctx context.Context, postID, profileID string, t domain.ReactionType, when time.Time) (domain.Reaction, bool, error) {
	if s.upsertFunc != nil {
		return s.upsertFunc(ctx, postID, profileID, t, when)
	}
	return domain.Reaction{}, false, errors.New("upsert reaction not stubbed")
}

func (s *stubReactionsStore) GetReaction(ctx context.Context, postID, profileID string) (domain.Reaction, error) {
	if s.getFunc != nil {
		return s.getFunc(ctx, postID, profileID)
	}
	return domain.Reaction{}, errors.New("get reaction not stubbed")
}

func (s *stubReactionsStore) DeleteReaction(ctx context.Context, postID, profileID string) error {
	if s.deleteFunc != nil {
		return s.deleteFunc(ctx, postID, profileID)
	}
	return errors.New("delete reaction not stubbed")
}

func (s *stubReactionsStore) ListReactions(ctx context.Context, postID string) ([]domain.Reaction, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, postID)
	}
	return nil, errors.New("list reactions not stubbed")
}
