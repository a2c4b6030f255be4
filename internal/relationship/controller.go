package relationship

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ionutdr23/GameMate/internal/domain"
)

var (
	ErrInFlight = errors.New("relationship action already in flight")
	// ErrRefreshFailed means the mutation was applied but the viewer profile
	// could not be refetched afterwards.
	ErrRefreshFailed = errors.New("profile refresh failed after relationship change")
)

type Backend interface {
	SendFriendRequest(ctx context.Context, receiverID string) (domain.FriendRequest, error)
	CancelFriendRequest(ctx context.Context, requestID string) error
	RespondFriendRequest(ctx context.Context, requestID string, accept bool) error
	Unfriend(ctx context.Context, friendID string) error
}

// Session supplies the viewer profile. *session.Session satisfies it.
type Session interface {
	Ensure(ctx context.Context) (domain.Profile, error)
	Refresh(ctx context.Context) (domain.Profile, error)
}

// Controller runs relationship actions: one backend mutation each, followed by
// a refetch of the viewer profile. At most one action per target runs at a time.
type Controller struct {
	Backend Backend
	Session Session
	Logger  *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// Relationship derives the current relationship with targetID, loading the
// viewer profile if needed.
func (c *Controller) Relationship(ctx context.Context, targetID string) (Relationship, error) {
	viewer, err := c.Session.Ensure(ctx)
	if err != nil {
		return Relationship{}, err
	}
	return Derive(viewer, targetID), nil
}

func (c *Controller) SendRequest(ctx context.Context, targetID string) (Relationship, error) {
	return c.run(ctx, targetID, ActionSendRequest, func(ctx context.Context, _ Relationship) error {
		_, err := c.Backend.SendFriendRequest(ctx, targetID)
		return err
	})
}

func (c *Controller) CancelRequest(ctx context.Context, targetID string) (Relationship, error) {
	return c.run(ctx, targetID, ActionCancelRequest, func(ctx context.Context, rel Relationship) error {
		return c.Backend.CancelFriendRequest(ctx, rel.RequestID)
	})
}

// Respond accepts or declines the request received from targetID.
func (c *Controller) Respond(ctx context.Context, targetID string, accept bool) (Relationship, error) {
	action := ActionDecline
	if accept {
		action = ActionAccept
	}
	return c.run(ctx, targetID, action, func(ctx context.Context, rel Relationship) error {
		return c.Backend.RespondFriendRequest(ctx, rel.RequestID, accept)
	})
}

func (c *Controller) Unfriend(ctx context.Context, targetID string) (Relationship, error) {
	return c.run(ctx, targetID, ActionUnfriend, func(ctx context.Context, _ Relationship) error {
		return c.Backend.Unfriend(ctx, targetID)
	})
}

// Do dispatches a by name.
func (c *Controller) Do(ctx context.Context, targetID string, a Action) (Relationship, error) {
	switch a {
	case ActionSendRequest:
		return c.SendRequest(ctx, targetID)
	case ActionCancelRequest:
		return c.CancelRequest(ctx, targetID)
	case ActionAccept:
		return c.Respond(ctx, targetID, true)
	case ActionDecline:
		return c.Respond(ctx, targetID, false)
	case ActionUnfriend:
		return c.Unfriend(ctx, targetID)
	default:
		return Relationship{}, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, a)
	}
}

func (c *Controller) run(ctx context.Context, targetID string, action Action, call func(context.Context, Relationship) error) (Relationship, error) {
	logger := c.logger().With("target_id", targetID, "action", string(action))

	viewer, err := c.Session.Ensure(ctx)
	if err != nil {
		return Relationship{}, err
	}
	rel := Derive(viewer, targetID)
	if targetID == "" {
		return rel, fmt.Errorf("%w: no target profile", ErrInvalidTransition)
	}
	if _, err := Next(rel.State, action); err != nil {
		return rel, err
	}

	if !c.acquire(targetID) {
		return rel, ErrInFlight
	}
	defer c.release(targetID)

	if err := call(ctx, rel); err != nil {
		logger.Warn("relationship action failed", "state", rel.State.String(), "err", err)
		return rel, err
	}

	fresh, err := c.Session.Refresh(ctx)
	if err != nil {
		logger.Error("refresh after relationship action failed", "err", err)
		return rel, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	next := Derive(fresh, targetID)
	logger.Debug("relationship changed", "from", rel.State.String(), "to", next.State.String())
	return next, nil
}

func (c *Controller) acquire(targetID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight == nil {
		c.inFlight = make(map[string]struct{})
	}
	if _, busy := c.inFlight[targetID]; busy {
		return false
	}
	c.inFlight[targetID] = struct{}{}
	return true
}

func (c *Controller) release(targetID string) {
	c.mu.Lock()
	delete(c.inFlight, targetID)
	c.mu.Unlock()
}

func (c *Controller) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
