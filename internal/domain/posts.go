package domain

import "time"

// Visibility decides who may read a post.
type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityFriends Visibility = "FRIENDS"
	VisibilityPrivate Visibility = "PRIVATE"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFriends, VisibilityPrivate:
		return true
	}
	return false
}

// VisibleTo lists the visibilities of a profile's posts that a viewer may
// read. The owner sees everything and a friend sees PUBLIC and FRIENDS.
func VisibleTo(owner, friend bool) []Visibility {
	switch {
	case owner:
		return []Visibility{VisibilityPublic, VisibilityFriends, VisibilityPrivate}
	case friend:
		return []Visibility{VisibilityPublic, VisibilityFriends}
	}
	return []Visibility{VisibilityPublic}
}

type ReactionType string

const (
	ReactionLike  ReactionType = "LIKE"
	ReactionLove  ReactionType = "LOVE"
	ReactionHaha  ReactionType = "HAHA"
	ReactionWow   ReactionType = "WOW"
	ReactionSad   ReactionType = "SAD"
	ReactionAngry ReactionType = "ANGRY"
)

func ReactionTypes() []ReactionType {
	return []ReactionType{ReactionLike, ReactionLove, ReactionHaha, ReactionWow, ReactionSad, ReactionAngry}
}

func (t ReactionType) Valid() bool {
	for _, known := range ReactionTypes() {
		if t == known {
			return true
		}
	}
	return false
}

type Post struct {
	ID            string     `json:"id"`
	ProfileID     string     `json:"profileId"`
	Content       string     `json:"content"`
	Visibility    Visibility `json:"visibility"`
	Tags          []string   `json:"tags"`
	CommentCount  int        `json:"commentCount"`
	ReactionCount int        `json:"reactionCount"`
	Edited        bool       `json:"isEdited"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"lastUpdatedAt"`
}

// PostInput carries a post edit. Nil fields are left unchanged on update.
type PostInput struct {
	Content    *string     `json:"content"`
	Visibility *Visibility `json:"visibility"`
	Tags       []string    `json:"tags"`
}

// PostPage is one page of a profile's posts, newest first. Page is zero-based.
type PostPage struct {
	Posts      []Post `json:"posts"`
	Page       int    `json:"page"`
	Size       int    `json:"size"`
	Total      int    `json:"totalElements"`
	TotalPages int    `json:"totalPages"`
}

// Comment is a comment on a post. ParentID is empty for top-level comments.
type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"postId"`
	ProfileID  string    `json:"profileId"`
	ParentID   string    `json:"parentCommentId,omitempty"`
	Content    string    `json:"content"`
	Edited     bool      `json:"isEdited"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"lastUpdatedAt"`
	Replies    []Comment `json:"replies"`
	ReplyCount int       `json:"replyCount"`
}

type CommentInput struct {
	Content  string `json:"content"`
	ParentID string `json:"parentCommentId"`
}

// Reaction is one profile's reaction to a post. A profile holds at most one
// reaction per post.
type Reaction struct {
	ID        string       `json:"-"`
	PostID    string       `json:"postId"`
	ProfileID string       `json:"profileId"`
	Type      ReactionType `json:"type"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"reactedAt"`
}
