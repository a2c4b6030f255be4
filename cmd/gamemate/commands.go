package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/ionutdr23/GameMate/internal/client"
	"github.com/ionutdr23/GameMate/internal/clientconfig"
	"github.com/ionutdr23/GameMate/internal/gamesync"
	"github.com/ionutdr23/GameMate/internal/reconcile"
	"github.com/ionutdr23/GameMate/internal/relationship"
	"github.com/ionutdr23/GameMate/internal/session"
)

type app struct {
	api     *client.Client
	session *session.Session
	logger  *slog.Logger
	out     io.Writer
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) profile(ctx context.Context) error {
	p, err := a.session.Refresh(ctx)
	if err != nil {
		return err
	}
	return a.printJSON(p)
}

func (a *app) games(ctx context.Context) error {
	games, err := a.api.ListGames(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSKILL LEVELS")
	for _, g := range games {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", g.ID, g.Name, strings.Join(g.SkillLevels, ", "))
	}
	return tw.Flush()
}

func (a *app) sync(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", "", "TOML file of [[game]] entries")
	dryRun := fs.Bool("dry-run", false, "print the plan without applying it")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("sync: -file is required")
	}

	desired, err := clientconfig.LoadDesired(*file)
	if err != nil {
		return err
	}
	catalog, err := a.api.ListGames(ctx)
	if err != nil {
		return err
	}
	target, rejected := reconcile.FilterValid(desired, catalog)
	for _, r := range rejected {
		fmt.Fprintf(a.out, "skip %q: %s\n", r.Request.GameID, formatFields(r.Fields))
	}

	syncer := &gamesync.Syncer{Backend: a.api, Session: a.session, Logger: a.logger}
	if *dryRun {
		plan, err := syncer.Plan(ctx, target)
		if err != nil {
			return err
		}
		a.printPlan(plan)
		return nil
	}

	res, err := syncer.Sync(ctx, target)
	for _, o := range res.Outcomes {
		status := "ok"
		if o.Err != nil {
			status = o.Err.Error()
		}
		fmt.Fprintf(a.out, "%s %s: %s\n", o.Op, o.GameID, status)
	}
	if errors.Is(err, gamesync.ErrPartialFailure) {
		if remaining, rerr := res.Retry(target); rerr == nil {
			fmt.Fprintln(a.out, "remaining changes:")
			a.printPlan(remaining)
		} else {
			fmt.Fprintln(a.out, "remaining changes unknown: run sync again")
		}
	}
	if err != nil {
		return err
	}
	if res.Plan.Empty() {
		fmt.Fprintln(a.out, "already in sync")
	}
	return nil
}

func (a *app) printPlan(plan reconcile.GameProfilePlan) {
	if plan.Empty() {
		fmt.Fprintln(a.out, "no changes")
		return
	}
	for _, r := range plan.Create {
		fmt.Fprintf(a.out, "create %s (%s)\n", r.GameID, r.SkillLevel)
	}
	for _, r := range plan.Update {
		fmt.Fprintf(a.out, "update %s (%s)\n", r.GameID, r.SkillLevel)
	}
	for _, gp := range plan.Delete {
		fmt.Fprintf(a.out, "delete %s\n", gp.Game.ID)
	}
}

func formatFields(fields map[string]string) string {
	parts := make([]string, 0, len(fields))
	for k, v := range fields {
		parts = append(parts, k+" "+v)
	}
	return strings.Join(parts, "; ")
}

func (a *app) controller() *relationship.Controller {
	return &relationship.Controller{Backend: a.api, Session: a.session, Logger: a.logger}
}

func (a *app) relation(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("relation: expected <profileId>")
	}
	rel, err := a.controller().Relationship(ctx, args[0])
	if err != nil {
		return err
	}
	return a.printJSON(rel)
}

var friendActions = map[string]relationship.Action{
	"send":     relationship.ActionSendRequest,
	"cancel":   relationship.ActionCancelRequest,
	"accept":   relationship.ActionAccept,
	"decline":  relationship.ActionDecline,
	"unfriend": relationship.ActionUnfriend,
}

func (a *app) friend(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("friend: expected send|cancel|accept|decline|unfriend <profileId>")
	}
	action, ok := friendActions[args[0]]
	if !ok {
		return fmt.Errorf("friend: unknown action %q", args[0])
	}

	rel, err := a.controller().Do(ctx, args[1], action)
	if err != nil {
		return err
	}
	return a.printJSON(rel)
}
