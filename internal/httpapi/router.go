package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ionutdr23/GameMate/internal/auth"
	"github.com/ionutdr23/GameMate/internal/service"
)

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	DBPing func(context.Context) error

	Verifier    auth.Verifier
	IsModerator func(subject string) bool
	// FriendRequestRate caps friend requests per user per minute; 0 disables it.
	FriendRequestRate int

	Profiles      *service.ProfileService
	Games         *service.GameService
	GameProfiles  *service.GameProfileService
	Friends       *service.FriendsService
	Notifications *service.NotificationService
	Posts         *service.PostService
	Comments      *service.CommentService
	Reactions     *service.ReactionService
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &api{
		logger:           logger,
		dbPing:           opts.DBPing,
		verifier:         opts.Verifier,
		isModerator:      opts.IsModerator,
		profilesSvc:      opts.Profiles,
		gamesSvc:         opts.Games,
		gameProfilesSvc:  opts.GameProfiles,
		friendsSvc:       opts.Friends,
		notificationsSvc: opts.Notifications,
		postsSvc:         opts.Posts,
		commentsSvc:      opts.Comments,
		reactionsSvc:     opts.Reactions,
		friendLimiter:    newUserLimiter(opts.FriendRequestRate),
		now:              time.Now,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(RequestID())
	r.Use(RequestLogger(logger))
	r.Use(Recoverer(logger, opts.IsProd))

	r.NotFound(handleV1NotFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Get("/healthz", a.handleHealthz)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/meta/playstyles", a.handleMetaPlaystyles)
		r.Get("/meta/platforms", a.handleMetaPlatforms)

		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth)

			if a.profilesSvc != nil {
				r.Post("/profiles", a.handleProfilesCreate)
				r.Get("/profiles/me", a.handleProfilesMe)
				r.Put("/profiles/me", a.handleProfilesMeUpdate)
				r.Get("/profiles/check-nickname", a.handleProfilesCheckNickname)
				r.Get("/profiles/search", a.handleProfilesSearch)
				r.Get("/profiles/{id}", a.handleProfilesGet)
			}

			if a.gameProfilesSvc != nil {
				r.Post("/profiles/me/games", a.handleGameProfilesCreate)
				r.Put("/profiles/me/games", a.handleGameProfilesUpdate)
				r.Delete("/profiles/me/games/{id}", a.handleGameProfilesDelete)
			}

			if a.gamesSvc != nil {
				r.Get("/games", a.handleGamesList)
				r.With(a.requireModerator).Post("/games", a.handleGamesCreate)
				r.With(a.requireModerator).Delete("/games/{id}", a.handleGamesDelete)
			}

			if a.friendsSvc != nil {
				r.Get("/friends", a.handleFriendsList)
				r.Delete("/friends/{profileId}", a.handleFriendsUnfriend)
				r.Get("/friends/requests", a.handleFriendsRequests)
				r.Post("/friends/requests", a.handleFriendsCreateRequest)
				r.Post("/friends/requests/{id}/respond", a.handleFriendsRespond)
				r.Delete("/friends/requests/{id}", a.handleFriendsCancel)
			}

			if a.notificationsSvc != nil {
				r.Post("/notifications/tokens", a.handleNotificationsTokenUpsert)
				r.Delete("/notifications/tokens", a.handleNotificationsTokenDelete)
			}

			if a.postsSvc != nil {
				r.Post("/posts", a.handlePostsCreate)
				r.Get("/posts/{id}", a.handlePostsGet)
				r.Patch("/posts/{id}", a.handlePostsUpdate)
				r.Delete("/posts/{id}", a.handlePostsDelete)
				r.Get("/profiles/{id}/posts", a.handlePostsByProfile)
			}

			if a.commentsSvc != nil {
				r.Post("/posts/{id}/comments", a.handleCommentsCreate)
				r.Get("/posts/{id}/comments", a.handleCommentsList)
				r.Get("/comments/{id}/replies", a.handleCommentsReplies)
				r.Patch("/comments/{id}", a.handleCommentsUpdate)
				r.Delete("/comments/{id}", a.handleCommentsDelete)
			}

			if a.reactionsSvc != nil {
				r.Put("/posts/{id}/reaction", a.handleReactionsPut)
				r.Get("/posts/{id}/reaction", a.handleReactionsMine)
				r.Delete("/posts/{id}/reaction", a.handleReactionsDelete)
				r.Get("/posts/{id}/reactions", a.handleReactionsList)
				r.Get("/posts/{id}/reactions/count", a.handleReactionsCount)
			}
		})
	})

	return r
}

func handleV1NotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, "not_found", "not found")
}

type api struct {
	logger *slog.Logger

	dbPing func(context.Context) error

	verifier    auth.Verifier
	isModerator func(subject string) bool

	profilesSvc      *service.ProfileService
	gamesSvc         *service.GameService
	gameProfilesSvc  *service.GameProfileService
	friendsSvc       *service.FriendsService
	notificationsSvc *service.NotificationService
	postsSvc         *service.PostService
	commentsSvc      *service.CommentService
	reactionsSvc     *service.ReactionService

	friendLimiter *userLimiter
	now           func() time.Time
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if a.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()
		if err := a.dbPing(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}
