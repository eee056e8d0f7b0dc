package models

import (
	"encoding/json"
	"slices"
)

// DefaultTitle is the title given to every newly registered citizen.
const DefaultTitle = "Citizen"

// DefaultProfileColor is the accent color used when a profile never picked one.
const DefaultProfileColor = "#46178f"

// User is a registered citizen. The shape matches the persisted record, so
// documents written by earlier builds decode without migration.
type User struct {
	DisplayName  string      `json:"displayName"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	Password     string      `json:"password,omitempty"`
	Followers    []string    `json:"followers"`
	Following    []string    `json:"following"`
	Friends      []string    `json:"friends"`
	ProfilePic   string      `json:"profilePic,omitempty"`
	BannerPic    string      `json:"bannerPic,omitempty"`
	ProfileColor string      `json:"profileColor,omitempty"`
	Title        string      `json:"title,omitempty"`
	BlockedUsers []string    `json:"blockedUsers"`
	MoodHistory  []MoodEntry `json:"moodHistory"`
	MoodStreak   int         `json:"moodStreak"`
	LastMoodDate string      `json:"lastMoodDate,omitempty"`

	// Posts and Reposts are per-user copies kept by older clients. The feed
	// record is authoritative; these are carried through untouched.
	Posts   []json.RawMessage `json:"posts"`
	Reposts []json.RawMessage `json:"reposts"`
}

// Normalize fills absent collections with empty ones.
func (u *User) Normalize() {
	if u == nil {
		return
	}
	if u.Followers == nil {
		u.Followers = []string{}
	}
	if u.Following == nil {
		u.Following = []string{}
	}
	if u.Friends == nil {
		u.Friends = []string{}
	}
	if u.BlockedUsers == nil {
		u.BlockedUsers = []string{}
	}
	if u.MoodHistory == nil {
		u.MoodHistory = []MoodEntry{}
	}
	if u.Posts == nil {
		u.Posts = []json.RawMessage{}
	}
	if u.Reposts == nil {
		u.Reposts = []json.RawMessage{}
	}
}

// Clone returns a deep copy.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Followers = slices.Clone(u.Followers)
	c.Following = slices.Clone(u.Following)
	c.Friends = slices.Clone(u.Friends)
	c.BlockedUsers = slices.Clone(u.BlockedUsers)
	c.MoodHistory = slices.Clone(u.MoodHistory)
	c.Posts = slices.Clone(u.Posts)
	c.Reposts = slices.Clone(u.Reposts)
	return &c
}

// Public returns a deep copy without the password.
func (u *User) Public() *User {
	c := u.Clone()
	if c != nil {
		c.Password = ""
	}
	return c
}

// IsFollowing reports whether u follows username.
func (u *User) IsFollowing(username string) bool {
	return slices.Contains(u.Following, username)
}

// HasBlocked reports whether u blocked username.
func (u *User) HasBlocked(username string) bool {
	return slices.Contains(u.BlockedUsers, username)
}
