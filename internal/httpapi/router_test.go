package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ionutdr23/GameMate/internal/auth"
	"github.com/ionutdr23/GameMate/internal/domain"
	"github.com/ionutdr23/GameMate/internal/service"
	"github.com/ionutdr23/GameMate/internal/store/sqlite"
)

const testIssuer = "gamemate-test"

type testServer struct {
	srv      *httptest.Server
	verifier *auth.JWTVerifier
}

func newTestServer(t *testing.T, friendRate int) *testServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	verifier, err := auth.NewJWTVerifier("0123456789abcdef-test", testIssuer, "")
	require.NoError(t, err)

	router := NewRouter(RouterOpts{
		Verifier:          verifier,
		IsModerator:       func(subject string) bool { return subject == "mod" },
		FriendRequestRate: friendRate,
		Profiles:          &service.ProfileService{Profiles: db, GameProfiles: db, Friends: db},
		Games:             &service.GameService{Games: db},
		GameProfiles:      &service.GameProfileService{Profiles: db, Games: db, GameProfiles: db},
		Friends:           &service.FriendsService{Profiles: db, Friends: db},
		Notifications:     &service.NotificationService{Profiles: db, Tokens: db},
		Posts:             &service.PostService{Profiles: db, Posts: db, Friends: db},
		Comments:          &service.CommentService{Profiles: db, Posts: db, Friends: db, Comments: db},
		Reactions:         &service.ReactionService{Profiles: db, Posts: db, Friends: db, Reactions: db},
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, verifier: verifier}
}

func (s *testServer) token(t *testing.T, subject string) string {
	t.Helper()
	tok, err := s.verifier.Mint(subject, subject+"@example.com", time.Hour)
	require.NoError(t, err)
	return tok
}

// do sends body as JSON with a bearer token for subject (none when empty)
// and decodes the response into out when out is non-nil.
func (s *testServer) do(t *testing.T, method, path, subject string, body any, out any) int {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.srv.URL+path, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if subject != "" {
		req.Header.Set("Authorization", "Bearer "+s.token(t, subject))
	}

	resp, err := s.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *testServer) createProfile(t *testing.T, subject, nickname string) domain.Profile {
	t.Helper()
	var p domain.Profile
	status := s.do(t, http.MethodPost, "/v1/profiles", subject, domain.ProfileInput{Nickname: nickname}, &p)
	require.Equal(t, http.StatusCreated, status)
	return p
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, 0)
	resp, err := s.srv.Client().Get(s.srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	s := newTestServer(t, 0)
	var env errorEnvelope
	status := s.do(t, http.MethodGet, "/v1/nope", "", nil, &env)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", env.Error.Code)
}

func TestMetaEndpointsArePublic(t *testing.T) {
	s := newTestServer(t, 0)

	var styles map[string][]string
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/meta/playstyles", "", nil, &styles))
	assert.Equal(t, domain.Playstyles(), styles["playstyles"])

	var platforms map[string][]string
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/meta/platforms", "", nil, &platforms))
	assert.Equal(t, domain.Platforms(), platforms["platforms"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, 0)

	var env errorEnvelope
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/v1/profiles/me", "", nil, &env))
	assert.Equal(t, "unauthorized", env.Error.Code)

	req, err := http.NewRequest(http.MethodGet, s.srv.URL+"/v1/profiles/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err := s.srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProfileLifecycle(t *testing.T) {
	s := newTestServer(t, 0)

	var env errorEnvelope
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/v1/profiles/me", "alice", nil, &env))

	created := s.createProfile(t, "alice", "Alice_1")
	assert.Equal(t, "Alice_1", created.Nickname)

	var dup errorEnvelope
	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, "/v1/profiles", "alice", domain.ProfileInput{Nickname: "Other"}, &dup))
	assert.Equal(t, "profile_exists", dup.Error.Code)

	var taken errorEnvelope
	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, "/v1/profiles", "bob", domain.ProfileInput{Nickname: "alice_1"}, &taken))
	assert.Equal(t, "nickname_taken", taken.Error.Code)

	var avail map[string]bool
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/profiles/check-nickname?nickname=ALICE_1", "bob", nil, &avail))
	assert.False(t, avail["available"])

	var bad errorEnvelope
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, "/v1/profiles/me", "alice", domain.ProfileInput{Nickname: "x"}, &bad))
	assert.Equal(t, "validation_error", bad.Error.Code)
	assert.Contains(t, bad.Error.Fields, "nickname")

	var updated domain.Profile
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/v1/profiles/me", "alice", domain.ProfileInput{Nickname: "Alice_1", Bio: "hi"}, &updated))
	assert.Equal(t, "hi", updated.Bio)

	var public domain.Profile
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/profiles/"+created.ID, "bob", nil, &public))
	assert.Equal(t, created.ID, public.ID)
	assert.Empty(t, public.UserID)

	var badID errorEnvelope
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/v1/profiles/not-a-uuid", "bob", nil, &badID))
}

func TestUnknownJSONFieldsRejected(t *testing.T) {
	s := newTestServer(t, 0)
	var env errorEnvelope
	status := s.do(t, http.MethodPost, "/v1/profiles", "alice", map[string]string{"nickname": "Alice", "role": "admin"}, &env)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "bad_json", env.Error.Code)
}

func TestGamesRequireModeratorToWrite(t *testing.T) {
	s := newTestServer(t, 0)
	body := createGameRequest{Name: "Chess", SkillLevels: []string{"Beginner", "Master"}}

	var env errorEnvelope
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/v1/games", "alice", body, &env))
	assert.Equal(t, "forbidden", env.Error.Code)

	var g domain.Game
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/games", "mod", body, &g))
	assert.Equal(t, "Chess", g.Name)

	var list map[string][]domain.Game
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/games", "alice", nil, &list))
	require.Len(t, list["games"], 1)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/v1/games/"+g.ID, "mod", nil, nil))
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/games", "alice", nil, &list))
	assert.Empty(t, list["games"])
}

func TestGameProfileEndpoints(t *testing.T) {
	s := newTestServer(t, 0)
	s.createProfile(t, "alice", "Alice")

	var g domain.Game
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/games", "mod",
		createGameRequest{Name: "Chess", SkillLevels: []string{"Beginner", "Master"}}, &g))

	req := domain.GameProfileRequest{
		GameID:     g.ID,
		SkillLevel: "Beginner",
		Playstyles: []string{domain.PlaystyleTactical},
		Platforms:  []string{domain.PlatformPC},
	}
	var gp domain.GameProfile
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/profiles/me/games", "alice", req, &gp))
	assert.Equal(t, g.ID, gp.Game.ID)

	var dup errorEnvelope
	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, "/v1/profiles/me/games", "alice", req, &dup))
	assert.Equal(t, "game_profile_exists", dup.Error.Code)

	req.SkillLevel = "Grandmaster"
	var bad errorEnvelope
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, "/v1/profiles/me/games", "alice", req, &bad))
	assert.Contains(t, bad.Error.Fields, "skillLevel")

	req.SkillLevel = "Master"
	var updated domain.GameProfile
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/v1/profiles/me/games", "alice", req, &updated))
	assert.Equal(t, "Master", updated.SkillLevel)
	assert.Equal(t, gp.ID, updated.ID)

	s.createProfile(t, "bob", "Bobby")
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, "/v1/profiles/me/games/"+gp.ID, "bob", nil, nil))
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/v1/profiles/me/games/"+gp.ID, "alice", nil, nil))

	var me domain.Profile
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/profiles/me", "alice", nil, &me))
	assert.Empty(t, me.GameProfiles)
}

func TestFriendFlow(t *testing.T) {
	s := newTestServer(t, 0)
	alice := s.createProfile(t, "alice", "Alice")
	bob := s.createProfile(t, "bob", "Bobby")

	var self errorEnvelope
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/v1/friends/requests", "alice",
		createFriendRequestRequest{ReceiverProfileID: alice.ID}, &self))

	var fr domain.FriendRequest
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/friends/requests", "alice",
		createFriendRequestRequest{ReceiverProfileID: bob.ID}, &fr))
	assert.Equal(t, alice.ID, fr.Sender.ID)
	assert.Equal(t, bob.ID, fr.Receiver.ID)

	var dup errorEnvelope
	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, "/v1/friends/requests", "alice",
		createFriendRequestRequest{ReceiverProfileID: bob.ID}, &dup))
	assert.Equal(t, "friend_request_exists", dup.Error.Code)

	var reqs service.FriendRequests
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/friends/requests", "bob", nil, &reqs))
	require.Len(t, reqs.Incoming, 1)
	assert.Empty(t, reqs.Outgoing)

	// Only the receiver can respond.
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/v1/friends/requests/"+fr.ID+"/respond", "alice",
		map[string]bool{"accept": true}, nil))

	var missing errorEnvelope
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/v1/friends/requests/"+fr.ID+"/respond", "bob",
		map[string]any{}, &missing))
	assert.Contains(t, missing.Error.Fields, "accept")

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodPost, "/v1/friends/requests/"+fr.ID+"/respond", "bob",
		map[string]bool{"accept": true}, nil))

	var friends map[string][]domain.ProfilePreview
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/friends", "alice", nil, &friends))
	require.Len(t, friends["friends"], 1)
	assert.Equal(t, bob.ID, friends["friends"][0].ID)

	var search map[string][]domain.SearchResult
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/profiles/search?nickname=bob", "alice", nil, &search))
	require.Len(t, search["results"], 1)
	assert.True(t, search["results"][0].IsFriend)

	var again errorEnvelope
	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, "/v1/friends/requests", "bob",
		createFriendRequestRequest{ReceiverProfileID: alice.ID}, &again))
	assert.Equal(t, "already_friends", again.Error.Code)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/v1/friends/"+alice.ID, "bob", nil, nil))
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/friends", "alice", nil, &friends))
	assert.Empty(t, friends["friends"])
}

func TestFriendRequestCancelBySenderOnly(t *testing.T) {
	s := newTestServer(t, 0)
	s.createProfile(t, "alice", "Alice")
	bob := s.createProfile(t, "bob", "Bobby")

	var fr domain.FriendRequest
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/friends/requests", "alice",
		createFriendRequestRequest{ReceiverProfileID: bob.ID}, &fr))

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, "/v1/friends/requests/"+fr.ID, "bob", nil, nil))
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/v1/friends/requests/"+fr.ID, "alice", nil, nil))
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/v1/friends/requests/"+fr.ID, "alice", nil, nil))
}

func TestFriendRequestRateLimit(t *testing.T) {
	s := newTestServer(t, 1)
	s.createProfile(t, "alice", "Alice")
	bob := s.createProfile(t, "bob", "Bobby")
	carol := s.createProfile(t, "carol", "Carol")

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/friends/requests", "alice",
		createFriendRequestRequest{ReceiverProfileID: bob.ID}, nil))

	var env errorEnvelope
	assert.Equal(t, http.StatusTooManyRequests, s.do(t, http.MethodPost, "/v1/friends/requests", "alice",
		createFriendRequestRequest{ReceiverProfileID: carol.ID}, &env))
	assert.Equal(t, "rate_limited", env.Error.Code)

	// Limits are per user.
	assert.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/friends/requests", "bob",
		createFriendRequestRequest{ReceiverProfileID: carol.ID}, nil))
}

func TestNotificationTokenEndpoints(t *testing.T) {
	s := newTestServer(t, 0)
	s.createProfile(t, "alice", "Alice")

	var bad errorEnvelope
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/v1/notifications/tokens", "alice",
		notificationTokenRequest{Token: "tok", Platform: "fax"}, &bad))
	assert.Equal(t, "validation_error", bad.Error.Code)

	var out notificationTokenResponse
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/v1/notifications/tokens", "alice",
		notificationTokenRequest{Token: "tok", Platform: "ios"}, &out))
	assert.Equal(t, "tok", out.Token)
	assert.Equal(t, "ios", out.Platform)
	_, err := time.Parse(time.RFC3339, out.CreatedAt)
	assert.NoError(t, err)

	var missing errorEnvelope
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodDelete, "/v1/notifications/tokens", "alice", nil, &missing))
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/v1/notifications/tokens?token=tok", "alice", nil, nil))
}
