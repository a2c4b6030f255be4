package service

import (
	"context"
	"time"

	"github.com/ionutdr23/GameMate/internal/domain"
)

type ReactionService struct {
	Profiles  ProfilesStore
	Posts     PostsStore
	Friends   FriendsStore
	Reactions ReactionsStore
	Now       func() time.Time
}

// ReactionResult is the caller's reaction after a change. IsNew is set when
// the caller had not reacted to the post before.
type ReactionResult struct {
	domain.Reaction
	IsNew bool `json:"isNew"`
}

// React sets the caller's reaction to the post, replacing any earlier one.
func (s *ReactionService) React(ctx context.Context, userID, postID string, t domain.ReactionType) (ReactionResult, error) {
	if !t.Valid() {
		return ReactionResult{}, domain.NewValidationError(map[string]string{"type": "unknown reaction type"})
	}
	own, post, err := s.load(ctx, userID, postID)
	if err != nil {
		return ReactionResult{}, err
	}
	r, created, err := s.Reactions.UpsertReaction(ctx, post.ID, own.ID, t, stamp(s.Now))
	if err != nil {
		return ReactionResult{}, err
	}
	return ReactionResult{Reaction: r, IsNew: created}, nil
}

func (s *ReactionService) Remove(ctx context.Context, userID, postID string) error {
	own, post, err := s.load(ctx, userID, postID)
	if err != nil {
		return err
	}
	return s.Reactions.DeleteReaction(ctx, post.ID, own.ID)
}

// Mine returns the caller's reaction to the post, ErrNotFound if none.
func (s *ReactionService) Mine(ctx context.Context, userID, postID string) (domain.Reaction, error) {
	own, post, err := s.load(ctx, userID, postID)
	if err != nil {
		return domain.Reaction{}, err
	}
	return s.Reactions.GetReaction(ctx, post.ID, own.ID)
}

func (s *ReactionService) List(ctx context.Context, userID, postID string) ([]domain.Reaction, error) {
	_, post, err := s.load(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	out, err := s.Reactions.ListReactions(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Reaction{}
	}
	return out, nil
}

// Counts tallies the post's reactions per type. Every known type is present.
func (s *ReactionService) Counts(ctx context.Context, userID, postID string) (map[domain.ReactionType]int, error) {
	reactions, err := s.List(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.ReactionType]int, len(domain.ReactionTypes()))
	for _, t := range domain.ReactionTypes() {
		counts[t] = 0
	}
	for _, r := range reactions {
		counts[r.Type]++
	}
	return counts, nil
}

func (s *ReactionService) load(ctx context.Context, userID, postID string) (domain.Profile, domain.Post, error) {
	own, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return domain.Profile{}, domain.Post{}, err
	}
	post, err := visiblePost(ctx, s.Posts, s.Friends, own.ID, postID)
	if err != nil {
		return domain.Profile{}, domain.Post{}, err
	}
	return own, post, nil
}
