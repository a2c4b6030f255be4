package domain

import "time"

// Profile is the aggregate view of an account as returned to its owner.
type Profile struct {
	ID                     string           `json:"id"`
	UserID                 string           `json:"userId,omitempty"`
	Nickname               string           `json:"nickname"`
	AvatarURL              string           `json:"avatarUrl"`
	Bio                    string           `json:"bio,omitempty"`
	Location               string           `json:"location,omitempty"`
	CreatedAt              time.Time        `json:"createdAt"`
	UpdatedAt              time.Time        `json:"updatedAt"`
	GameProfiles           []GameProfile    `json:"gameProfiles"`
	Friends                []ProfilePreview `json:"friends"`
	SentFriendRequests     []FriendRequest  `json:"sentFriendRequests"`
	ReceivedFriendRequests []FriendRequest  `json:"receivedFriendRequests"`
}

// ProfilePreview is the lightweight reference used inside friend lists and requests.
type ProfilePreview struct {
	ID        string `json:"id"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

func (p Profile) Preview() ProfilePreview {
	return ProfilePreview{ID: p.ID, Nickname: p.Nickname, AvatarURL: p.AvatarURL}
}

type ProfileInput struct {
	Nickname string `json:"nickname"`
	Bio      string `json:"bio,omitempty"`
	Location string `json:"location,omitempty"`
}

// SearchResult is one hit of a nickname search, annotated from the viewer's side.
type SearchResult struct {
	ProfileID string `json:"profileId"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	IsFriend  bool   `json:"isFriend"`
}

type Game struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	SkillLevels []string `json:"skillLevels"`
}

func (g Game) HasSkillLevel(level string) bool {
	for _, l := range g.SkillLevels {
		if l == level {
			return true
		}
	}
	return false
}

type GameProfile struct {
	ID         string   `json:"id"`
	Game       Game     `json:"game"`
	SkillLevel string   `json:"skillLevel"`
	Playstyles []string `json:"playstyles"`
	Platforms  []string `json:"platforms"`
}

// Request returns the edit shape of gp, as the editor would submit it unchanged.
func (gp GameProfile) Request() GameProfileRequest {
	return GameProfileRequest{
		GameID:     gp.Game.ID,
		SkillLevel: gp.SkillLevel,
		Playstyles: append([]string(nil), gp.Playstyles...),
		Platforms:  append([]string(nil), gp.Platforms...),
	}
}

// GameProfileRequest carries the desired state of one game profile, keyed by game.
type GameProfileRequest struct {
	GameID     string   `json:"gameId" toml:"game_id"`
	SkillLevel string   `json:"skillLevel" toml:"skill_level"`
	Playstyles []string `json:"playstyles" toml:"playstyles"`
	Platforms  []string `json:"platforms" toml:"platforms"`
}

const (
	PlaystyleAggressive = "Aggressive"
	PlaystyleDefensive  = "Defensive"
	PlaystyleSupportive = "Supportive"
	PlaystyleTactical   = "Tactical"
)

const (
	PlatformPC          = "PC"
	PlatformPlayStation = "PlayStation"
	PlatformXbox        = "Xbox"
	PlatformSwitch      = "Switch"
	PlatformMobile      = "Mobile"
)

func Playstyles() []string {
	return []string{PlaystyleAggressive, PlaystyleDefensive, PlaystyleSupportive, PlaystyleTactical}
}

func Platforms() []string {
	return []string{PlatformPC, PlatformPlayStation, PlatformXbox, PlatformSwitch, PlatformMobile}
}

func IsPlaystyle(s string) bool { return contains(Playstyles(), s) }

func IsPlatform(s string) bool { return contains(Platforms(), s) }

func contains(ss []string, needle string) bool {
	for _, s := range ss {
		if s == needle {
			return true
		}
	}
	return false
}
