package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ionutdr23/GameMate/internal/auth"
	"github.com/ionutdr23/GameMate/internal/cache"
	"github.com/ionutdr23/GameMate/internal/catalog"
	"github.com/ionutdr23/GameMate/internal/config"
	"github.com/ionutdr23/GameMate/internal/httpapi"
	"github.com/ionutdr23/GameMate/internal/notifications"
	"github.com/ionutdr23/GameMate/internal/service"
	"github.com/ionutdr23/GameMate/internal/store/postgres"
	"github.com/ionutdr23/GameMate/internal/store/sqlite"
)

const defaultSQLitePath = "gamemate.db"

type storeSet struct {
	profiles     service.ProfilesStore
	games        service.GamesStore
	gameProfiles service.GameProfilesStore
	friends      service.FriendsStore
	tokens       service.NotificationTokensStore
	posts        service.PostsStore
	comments     service.CommentsStore
	reactions    service.ReactionsStore
	ping         func(context.Context) error
	close        func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg)
	ctx := context.Background()

	stores, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("db open failed", "err", err)
		os.Exit(1)
	}
	defer stores.close()

	verifier, err := newVerifier(cfg)
	if err != nil {
		logger.Error("auth setup failed", "err", err)
		os.Exit(1)
	}
	if verifier == nil {
		logger.Warn("no token verifier configured; every /v1 route except meta will return 401")
	}

	gamesSvc := &service.GameService{Games: stores.games, Logger: logger}
	if cfg.RedisAddr != "" {
		client := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		gamesSvc.Cache = cache.NewGameCache(client, cfg.GameCacheTTL)
		logger.Info("game cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.GameCacheTTL)
	}

	if cfg.GamesSeedPath != "" {
		games, err := catalog.Load(cfg.GamesSeedPath)
		if err != nil {
			logger.Error("games seed failed", "err", err)
			os.Exit(1)
		}
		created, err := gamesSvc.Seed(ctx, games)
		if err != nil {
			logger.Error("games seed failed", "err", err)
			os.Exit(1)
		}
		logger.Info("games seeded", "path", cfg.GamesSeedPath, "created", created, "total", len(games))
	}

	notificationsSvc := &service.NotificationService{
		Profiles: stores.profiles,
		Tokens:   stores.tokens,
		Logger:   logger,
	}
	if cfg.FCMProjectID != "" {
		sender, err := notifications.NewFCMSender(ctx, cfg.FCMProjectID, cfg.FCMCredentialsFile)
		if err != nil {
			logger.Error("fcm setup failed", "err", err)
			os.Exit(1)
		}
		notificationsSvc.Sender = sender
		logger.Info("push notifications enabled", "project", cfg.FCMProjectID)
	}

	apiRouter := httpapi.NewRouter(httpapi.RouterOpts{
		Logger:            logger,
		IsProd:            cfg.IsProd(),
		DBPing:            stores.ping,
		Verifier:          verifier,
		IsModerator:       cfg.IsModerator,
		FriendRequestRate: cfg.FriendRequestRate,
		Profiles: &service.ProfileService{
			Profiles:     stores.profiles,
			GameProfiles: stores.gameProfiles,
			Friends:      stores.friends,
		},
		Games: gamesSvc,
		GameProfiles: &service.GameProfileService{
			Profiles:     stores.profiles,
			Games:        stores.games,
			GameProfiles: stores.gameProfiles,
		},
		Friends: &service.FriendsService{
			Profiles: stores.profiles,
			Friends:  stores.friends,
			Notifier: notificationsSvc,
			Logger:   logger,
		},
		Notifications: notificationsSvc,
		Posts: &service.PostService{
			Profiles: stores.profiles,
			Posts:    stores.posts,
			Friends:  stores.friends,
		},
		Comments: &service.CommentService{
			Profiles: stores.profiles,
			Posts:    stores.posts,
			Friends:  stores.friends,
			Comments: stores.comments,
		},
		Reactions: &service.ReactionService{
			Profiles:  stores.profiles,
			Posts:     stores.posts,
			Friends:   stores.friends,
			Reactions: stores.reactions,
		},
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           apiRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}

// openStores uses postgres when APP_DB_DSN is set and a local sqlite file
// otherwise.
func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (storeSet, error) {
	if cfg.DBDSN != "" {
		pool, err := postgres.Open(ctx, cfg.DBDSN)
		if err != nil {
			return storeSet{}, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return storeSet{}, err
		}
		s := postgres.NewStores(pool)
		logger.Info("using postgres")
		return storeSet{
			profiles:     s.Profiles,
			games:        s.Games,
			gameProfiles: s.GameProfiles,
			friends:      s.Friends,
			tokens:       s.NotificationTokens,
			posts:        s.Posts,
			comments:     s.Comments,
			reactions:    s.Reactions,
			ping:         pool.Ping,
			close:        pool.Close,
		}, nil
	}

	path := cfg.SQLitePath
	if path == "" {
		path = defaultSQLitePath
	}
	db, err := sqlite.New(path)
	if err != nil {
		return storeSet{}, err
	}
	logger.Info("using sqlite", "path", path)
	return storeSet{
		profiles:     db,
		games:        db,
		gameProfiles: db,
		friends:      db,
		tokens:       db,
		posts:        db,
		comments:     db,
		reactions:    db,
		ping:         db.Ping,
		close:        func() { _ = db.Close() },
	}, nil
}

// newVerifier chains every configured identity provider. It returns nil when
// none is configured.
func newVerifier(cfg config.Config) (auth.Verifier, error) {
	var chain auth.Chain
	if cfg.JWTSecret != "" {
		v, err := auth.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
		if err != nil {
			return nil, fmt.Errorf("APP_JWT_SECRET: %w", err)
		}
		chain = append(chain, v)
	}
	if cfg.GoogleClientID != "" {
		chain = append(chain, auth.NewGoogleVerifier(cfg.GoogleClientID))
	}
	if cfg.AppleServiceID != "" {
		chain = append(chain, auth.NewAppleVerifier(cfg.AppleServiceID))
	}
	if len(chain) == 0 {
		return nil, nil
	}
	return chain, nil
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
