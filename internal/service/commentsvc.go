package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ionutdr23/GameMate/internal/domain"
)

// CommentService manages threaded comments. Reading or writing comments
// requires that the caller may read the post.
type CommentService struct {
	Profiles ProfilesStore
	Posts    PostsStore
	Friends  FriendsStore
	Comments CommentsStore
	Now      func() time.Time
}

func (s *CommentService) Create(ctx context.Context, userID, postID string, in domain.CommentInput) (domain.Comment, error) {
	content, err := commentContent(in.Content)
	if err != nil {
		return domain.Comment{}, err
	}
	own, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return domain.Comment{}, err
	}
	post, err := visiblePost(ctx, s.Posts, s.Friends, own.ID, postID)
	if err != nil {
		return domain.Comment{}, err
	}

	parentID := strings.TrimSpace(in.ParentID)
	if parentID != "" {
		parent, err := s.Comments.GetComment(ctx, parentID)
		if err != nil {
			return domain.Comment{}, err
		}
		if parent.PostID != post.ID {
			return domain.Comment{}, domain.NewValidationError(map[string]string{"parentCommentId": "belongs to another post"})
		}
	}

	when := stamp(s.Now)
	c, err := s.Comments.CreateComment(ctx, domain.Comment{
		PostID:    post.ID,
		ProfileID: own.ID,
		ParentID:  parentID,
		Content:   content,
		CreatedAt: when,
		UpdatedAt: when,
	})
	if err != nil {
		return domain.Comment{}, err
	}
	c.Replies = []domain.Comment{}
	return c, nil
}

// TopLevel lists the post's comments that reply to no other comment, oldest
// first, each with its number of direct replies and no nested replies.
func (s *CommentService) TopLevel(ctx context.Context, userID, postID string) ([]domain.Comment, error) {
	own, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	post, err := visiblePost(ctx, s.Posts, s.Friends, own.ID, postID)
	if err != nil {
		return nil, err
	}
	all, err := s.Comments.ListComments(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	children := childrenByParent(all)

	out := []domain.Comment{}
	for _, c := range children[""] {
		c.ReplyCount = len(children[c.ID])
		c.Replies = []domain.Comment{}
		out = append(out, c)
	}
	return out, nil
}

// Replies returns the reply tree below commentID: its direct replies, oldest
// first, each nested with its own replies.
func (s *CommentService) Replies(ctx context.Context, userID, commentID string) ([]domain.Comment, error) {
	own, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	root, err := s.Comments.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if _, err := visiblePost(ctx, s.Posts, s.Friends, own.ID, root.PostID); err != nil {
		return nil, err
	}
	all, err := s.Comments.ListComments(ctx, root.PostID)
	if err != nil {
		return nil, err
	}
	return replyTree(root.ID, childrenByParent(all)), nil
}

func (s *CommentService) Update(ctx context.Context, userID, commentID, content string) (domain.Comment, error) {
	content, err := commentContent(content)
	if err != nil {
		return domain.Comment{}, err
	}
	c, err := s.owned(ctx, userID, commentID)
	if err != nil {
		return domain.Comment{}, err
	}
	c, err = s.Comments.UpdateComment(ctx, c.ID, content, stamp(s.Now))
	if err != nil {
		return domain.Comment{}, err
	}
	c.Replies = []domain.Comment{}
	return c, nil
}

// Delete removes the caller's comment together with every reply below it.
func (s *CommentService) Delete(ctx context.Context, userID, commentID string) error {
	c, err := s.owned(ctx, userID, commentID)
	if err != nil {
		return err
	}
	all, err := s.Comments.ListComments(ctx, c.PostID)
	if err != nil {
		return err
	}
	ids := []string{c.ID}
	queue := []string{c.ID}
	children := childrenByParent(all)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range children[id] {
			ids = append(ids, child.ID)
			queue = append(queue, child.ID)
		}
	}
	return s.Comments.DeleteComments(ctx, c.PostID, ids)
}

func (s *CommentService) owned(ctx context.Context, userID, commentID string) (domain.Comment, error) {
	own, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return domain.Comment{}, err
	}
	c, err := s.Comments.GetComment(ctx, commentID)
	if err != nil {
		return domain.Comment{}, err
	}
	if c.ProfileID != own.ID {
		return domain.Comment{}, domain.ErrForbidden
	}
	return c, nil
}

func commentContent(s string) (string, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return "", domain.NewValidationError(map[string]string{"content": "required"})
	case utf8.RuneCountInString(s) > maxCommentLength:
		return "", domain.NewValidationError(map[string]string{"content": "too long"})
	}
	return s, nil
}

// childrenByParent groups comments by parent id, keeping their order.
// Top-level comments are under "".
func childrenByParent(all []domain.Comment) map[string][]domain.Comment {
	out := make(map[string][]domain.Comment)
	for _, c := range all {
		out[c.ParentID] = append(out[c.ParentID], c)
	}
	return out
}

func replyTree(parentID string, children map[string][]domain.Comment) []domain.Comment {
	out := []domain.Comment{}
	for _, c := range children[parentID] {
		c.Replies = replyTree(c.ID, children)
		c.ReplyCount = len(children[c.ID])
		out = append(out, c)
	}
	return out
}
