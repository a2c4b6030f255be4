package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ionutdr23/GameMate/internal/domain"
)

const (
	maxPostLength    = 5000
	maxPostTags      = 10
	maxCommentLength = 1000

	DefaultPostPageSize = 10
	MaxPostPageSize     = 50
)

type PostService struct {
	Profiles ProfilesStore
	Posts    PostsStore
	Friends  FriendsStore
	Now      func() time.Time
}

func (s *PostService) Create(ctx context.Context, userID string, in domain.PostInput) (domain.Post, error) {
	own, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return domain.Post{}, err
	}
	p := domain.Post{ProfileID: own.ID, Visibility: domain.VisibilityPublic, Tags: []string{}}
	if in.Content == nil {
		return domain.Post{}, domain.NewValidationError(map[string]string{"content": "required"})
	}
	if err := applyPostInput(&p, in); err != nil {
		return domain.Post{}, err
	}
	p.CreatedAt = stamp(s.Now)
	p.UpdatedAt = p.CreatedAt
	return s.Posts.CreatePost(ctx, p)
}

// Get returns the post if the caller may read it. Posts hidden from the
// caller are reported as ErrNotFound.
func (s *PostService) Get(ctx context.Context, userID, postID string) (domain.Post, error) {
	own, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return domain.Post{}, err
	}
	return visiblePost(ctx, s.Posts, s.Friends, own.ID, postID)
}

// ListByProfile pages through profileID's posts that the caller may read.
func (s *PostService) ListByProfile(ctx context.Context, userID, profileID string, page, size int) (domain.PostPage, error) {
	fields := map[string]string{}
	if page < 0 {
		fields["page"] = "must not be negative"
	}
	if size < 1 || size > MaxPostPageSize {
		fields["size"] = "must be between 1 and 50"
	}
	if len(fields) > 0 {
		return domain.PostPage{}, domain.NewValidationError(fields)
	}

	own, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return domain.PostPage{}, err
	}
	if _, err := s.Profiles.GetProfileByID(ctx, profileID); err != nil {
		return domain.PostPage{}, err
	}
	owner := own.ID == profileID
	friend := false
	if !owner {
		if friend, err = s.Friends.AreFriends(ctx, own.ID, profileID); err != nil {
			return domain.PostPage{}, err
		}
	}

	posts, total, err := s.Posts.ListPosts(ctx, profileID, domain.VisibleTo(owner, friend), page*size, size)
	if err != nil {
		return domain.PostPage{}, err
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	return domain.PostPage{
		Posts:      posts,
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: (total + size - 1) / size,
	}, nil
}

// Update edits the caller's own post. At least one field must be set.
func (s *PostService) Update(ctx context.Context, userID, postID string, in domain.PostInput) (domain.Post, error) {
	if in.Content == nil && in.Visibility == nil && in.Tags == nil {
		return domain.Post{}, domain.NewValidationError(map[string]string{"post": "at least one field must be updated"})
	}
	p, err := s.owned(ctx, userID, postID)
	if err != nil {
		return domain.Post{}, err
	}
	if err := applyPostInput(&p, in); err != nil {
		return domain.Post{}, err
	}
	p.Edited = true
	p.UpdatedAt = stamp(s.Now)
	return s.Posts.UpdatePost(ctx, p)
}

func (s *PostService) Delete(ctx context.Context, userID, postID string) error {
	p, err := s.owned(ctx, userID, postID)
	if err != nil {
		return err
	}
	return s.Posts.DeletePost(ctx, p.ID)
}

func (s *PostService) owned(ctx context.Context, userID, postID string) (domain.Post, error) {
	own, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return domain.Post{}, err
	}
	p, err := s.Posts.GetPost(ctx, postID)
	if err != nil {
		return domain.Post{}, err
	}
	if p.ProfileID != own.ID {
		return domain.Post{}, domain.ErrForbidden
	}
	return p, nil
}

func applyPostInput(p *domain.Post, in domain.PostInput) error {
	fields := map[string]string{}
	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		switch {
		case content == "":
			fields["content"] = "required"
		case utf8.RuneCountInString(content) > maxPostLength:
			fields["content"] = "too long"
		}
		p.Content = content
	}
	if in.Visibility != nil {
		if !in.Visibility.Valid() {
			fields["visibility"] = "must be PUBLIC, FRIENDS or PRIVATE"
		}
		p.Visibility = *in.Visibility
	}
	if in.Tags != nil {
		p.Tags = domain.DedupeTags(in.Tags)
		if len(p.Tags) > maxPostTags {
			fields["tags"] = "at most 10 tags"
		}
	}
	if len(fields) > 0 {
		return domain.NewValidationError(fields)
	}
	return nil
}

// visiblePost loads postID for viewerID, hiding posts the viewer may not read.
func visiblePost(ctx context.Context, posts PostsStore, friends FriendsStore, viewerID, postID string) (domain.Post, error) {
	p, err := posts.GetPost(ctx, postID)
	if err != nil {
		return domain.Post{}, err
	}
	owner := p.ProfileID == viewerID
	friend := false
	if !owner && p.Visibility == domain.VisibilityFriends {
		if friend, err = friends.AreFriends(ctx, viewerID, p.ProfileID); err != nil {
			return domain.Post{}, err
		}
	}
	for _, v := range domain.VisibleTo(owner, friend) {
		if v == p.Visibility {
			return p, nil
		}
	}
	return domain.Post{}, domain.ErrNotFound
}
