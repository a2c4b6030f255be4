package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ionutdr23/GameMate/internal/client"
	"github.com/ionutdr23/GameMate/internal/clientconfig"
	"github.com/ionutdr23/GameMate/internal/session"
)

const usage = `usage: gamemate [-config path] [-v] <command> [args]

commands:
  profile                                   show your profile
  games                                     list the game catalog
  sync -file games.toml [-dry-run]          make your game profiles match a file
  relation <profileId>                      show your relationship with a profile
  friend send|cancel|accept|decline|unfriend <profileId>
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("gamemate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := fs.String("config", "", "client config path (default "+clientconfig.DefaultPath+")")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := clientconfig.Load(*configPath, os.Getenv)
	if err != nil {
		fmt.Fprintf(stderr, "gamemate: %v\n", err)
		return 1
	}
	api, err := client.New(client.Options{
		BaseURL:     cfg.APIURL,
		TokenSource: client.StaticToken(cfg.Token),
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		fmt.Fprintf(stderr, "gamemate: %v\n", err)
		return 1
	}

	app := &app{
		api:     api,
		session: session.New(api),
		logger:  logger,
		out:     stdout,
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	var cmdErr error
	switch cmd {
	case "profile":
		cmdErr = app.profile(ctx)
	case "games":
		cmdErr = app.games(ctx)
	case "sync":
		cmdErr = app.sync(ctx, rest, stderr)
	case "relation":
		cmdErr = app.relation(ctx, rest)
	case "friend":
		cmdErr = app.friend(ctx, rest)
	default:
		fmt.Fprintf(stderr, "gamemate: unknown command %q\n", cmd)
		fs.Usage()
		return 2
	}
	if cmdErr != nil {
		fmt.Fprintf(stderr, "gamemate: %v\n", cmdErr)
		if client.KindOf(cmdErr) == client.KindAuth {
			fmt.Fprintf(stderr, "gamemate: set token in %s or GAMEMATE_TOKEN\n", clientconfig.DefaultPath)
		}
		return 1
	}
	return 0
}
