package domain

import "time"

type NotificationToken struct {
	ID        string    `json:"-"`
	ProfileID string    `json:"-"`
	Token     string    `json:"token"`
	Platform  string    `json:"platform"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
