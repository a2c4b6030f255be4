package domain

import "time"

// FriendRequest is a pending, directed proposal to become friends.
type FriendRequest struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	Sender    ProfilePreview `json:"sender"`
	Receiver  ProfilePreview `json:"receiver"`
}
