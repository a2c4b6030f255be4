package httpapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ionutdr23/GameMate/internal/domain"
	"github.com/ionutdr23/GameMate/internal/service"
)

func (s *testServer) befriend(t *testing.T, from, to string, toProfile domain.Profile) {
	t.Helper()
	var fr domain.FriendRequest
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/friends/requests", from,
		createFriendRequestRequest{ReceiverProfileID: toProfile.ID}, &fr))
	require.Equal(t, http.StatusNoContent, s.do(t, http.MethodPost, "/v1/friends/requests/"+fr.ID+"/respond", to,
		map[string]bool{"accept": true}, nil))
}

func (s *testServer) createPost(t *testing.T, subject string, body map[string]any) domain.Post {
	t.Helper()
	var p domain.Post
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/posts", subject, body, &p))
	return p
}

func TestPostLifecycle(t *testing.T) {
	s := newTestServer(t, 0)
	alice := s.createProfile(t, "alice", "Alice")
	s.createProfile(t, "bob", "Bobby")

	var missing errorEnvelope
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/v1/posts", "alice",
		map[string]any{"tags": []string{"rpg"}}, &missing))
	assert.Contains(t, missing.Error.Fields, "content")

	p := s.createPost(t, "alice", map[string]any{"content": "  looking for a duo  ", "tags": []string{"ranked", " ranked", ""}})
	assert.Equal(t, alice.ID, p.ProfileID)
	assert.Equal(t, "looking for a duo", p.Content)
	assert.Equal(t, domain.VisibilityPublic, p.Visibility)
	assert.Equal(t, []string{"ranked"}, p.Tags)
	assert.False(t, p.Edited)

	var got domain.Post
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/posts/"+p.ID, "bob", nil, &got))
	assert.Equal(t, p.ID, got.ID)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPatch, "/v1/posts/"+p.ID, "bob",
		map[string]any{"content": "mine now"}, nil))

	var empty errorEnvelope
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPatch, "/v1/posts/"+p.ID, "alice",
		map[string]any{}, &empty))

	var edited domain.Post
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPatch, "/v1/posts/"+p.ID, "alice",
		map[string]any{"content": "found one"}, &edited))
	assert.Equal(t, "found one", edited.Content)
	assert.True(t, edited.Edited)
	assert.Equal(t, []string{"ranked"}, edited.Tags)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, "/v1/posts/"+p.ID, "bob", nil, nil))
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/v1/posts/"+p.ID, "alice", nil, nil))
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/v1/posts/"+p.ID, "alice", nil, nil))
}

func TestPostVisibilityFollowsFriendship(t *testing.T) {
	s := newTestServer(t, 0)
	alice := s.createProfile(t, "alice", "Alice")
	bob := s.createProfile(t, "bob", "Bobby")

	public := s.createPost(t, "alice", map[string]any{"content": "public"})
	friends := s.createPost(t, "alice", map[string]any{"content": "friends", "visibility": "FRIENDS"})
	private := s.createPost(t, "alice", map[string]any{"content": "private", "visibility": "PRIVATE"})

	var page domain.PostPage
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/profiles/"+alice.ID+"/posts", "bob", nil, &page))
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, public.ID, page.Posts[0].ID)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/v1/posts/"+friends.ID, "bob", nil, nil))

	s.befriend(t, "alice", "bob", bob)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/profiles/"+alice.ID+"/posts", "bob", nil, &page))
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/posts/"+friends.ID, "bob", nil, nil))
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/v1/posts/"+private.ID, "bob", nil, nil))

	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/profiles/"+alice.ID+"/posts?page=1&size=2", "alice", nil, &page))
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Posts, 1)

	var bad errorEnvelope
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/v1/profiles/"+alice.ID+"/posts?size=abc", "alice", nil, &bad))
	assert.Contains(t, bad.Error.Fields, "size")
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/v1/profiles/"+alice.ID+"/posts?size=51", "alice", nil, nil))
}

func TestCommentThreads(t *testing.T) {
	s := newTestServer(t, 0)
	s.createProfile(t, "alice", "Alice")
	s.createProfile(t, "bob", "Bobby")
	p := s.createPost(t, "alice", map[string]any{"content": "gg"})

	var top domain.Comment
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/posts/"+p.ID+"/comments", "bob",
		domain.CommentInput{Content: "wp"}, &top))
	assert.Empty(t, top.ParentID)

	var reply domain.Comment
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/posts/"+p.ID+"/comments", "alice",
		domain.CommentInput{Content: "thanks", ParentID: top.ID}, &reply))
	assert.Equal(t, top.ID, reply.ParentID)

	var nested domain.Comment
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/posts/"+p.ID+"/comments", "bob",
		domain.CommentInput{Content: "again?", ParentID: reply.ID}, &nested))

	var blank errorEnvelope
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/v1/posts/"+p.ID+"/comments", "bob",
		domain.CommentInput{Content: "   "}, &blank))
	assert.Contains(t, blank.Error.Fields, "content")

	var list map[string][]domain.Comment
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/posts/"+p.ID+"/comments", "alice", nil, &list))
	require.Len(t, list["comments"], 1)
	assert.Equal(t, top.ID, list["comments"][0].ID)
	assert.Equal(t, 1, list["comments"][0].ReplyCount)

	var replies map[string][]domain.Comment
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/comments/"+top.ID+"/replies", "alice", nil, &replies))
	require.Len(t, replies["replies"], 1)
	assert.Equal(t, reply.ID, replies["replies"][0].ID)
	require.Len(t, replies["replies"][0].Replies, 1)
	assert.Equal(t, nested.ID, replies["replies"][0].Replies[0].ID)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPatch, "/v1/comments/"+top.ID, "alice",
		map[string]string{"content": "edited"}, nil))
	var edited domain.Comment
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPatch, "/v1/comments/"+top.ID, "bob",
		map[string]string{"content": "well played"}, &edited))
	assert.True(t, edited.Edited)

	var post domain.Post
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/posts/"+p.ID, "alice", nil, &post))
	assert.Equal(t, 3, post.CommentCount)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/v1/comments/"+top.ID, "bob", nil, nil))
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPatch, "/v1/comments/"+nested.ID, "bob",
		map[string]string{"content": "gone"}, nil))
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/posts/"+p.ID, "alice", nil, &post))
	assert.Equal(t, 0, post.CommentCount)
}

func TestReactions(t *testing.T) {
	s := newTestServer(t, 0)
	s.createProfile(t, "alice", "Alice")
	s.createProfile(t, "bob", "Bobby")
	p := s.createPost(t, "alice", map[string]any{"content": "clutch"})
	private := s.createPost(t, "alice", map[string]any{"content": "notes", "visibility": "PRIVATE"})

	var bad errorEnvelope
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, "/v1/posts/"+p.ID+"/reaction", "bob",
		map[string]string{"type": "MEH"}, &bad))
	assert.Contains(t, bad.Error.Fields, "type")

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPut, "/v1/posts/"+private.ID+"/reaction", "bob",
		map[string]string{"type": "LIKE"}, nil))
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/v1/posts/"+p.ID+"/reaction", "bob", nil, nil))

	var res service.ReactionResult
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPut, "/v1/posts/"+p.ID+"/reaction", "bob",
		map[string]string{"type": "LIKE"}, &res))
	assert.True(t, res.IsNew)
	assert.Equal(t, domain.ReactionLike, res.Type)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/v1/posts/"+p.ID+"/reaction", "bob",
		map[string]string{"type": "WOW"}, &res))
	assert.False(t, res.IsNew)
	assert.Equal(t, domain.ReactionWow, res.Type)

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPut, "/v1/posts/"+p.ID+"/reaction", "alice",
		map[string]string{"type": "WOW"}, nil))

	var counts map[string]map[domain.ReactionType]int
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/posts/"+p.ID+"/reactions/count", "bob", nil, &counts))
	assert.Equal(t, 2, counts["counts"][domain.ReactionWow])
	assert.Equal(t, 0, counts["counts"][domain.ReactionLike])
	assert.Len(t, counts["counts"], len(domain.ReactionTypes()))

	var list map[string][]domain.Reaction
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/posts/"+p.ID+"/reactions", "bob", nil, &list))
	assert.Len(t, list["reactions"], 2)

	var mine domain.Reaction
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/posts/"+p.ID+"/reaction", "bob", nil, &mine))
	assert.Equal(t, domain.ReactionWow, mine.Type)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/v1/posts/"+p.ID+"/reaction", "bob", nil, nil))
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/v1/posts/"+p.ID+"/reaction", "bob", nil, nil))

	var post domain.Post
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/posts/"+p.ID, "alice", nil, &post))
	assert.Equal(t, 1, post.ReactionCount)
}
