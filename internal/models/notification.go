package models

import "unicode/utf8"

// NotificationType is the kind of activity a notification reports.
type NotificationType string

const (
	NotificationHeart   NotificationType = "heart"
	NotificationComment NotificationType = "comment"
	NotificationRepost  NotificationType = "repost"
)

// SnippetLength is the number of characters kept from post content.
const SnippetLength = 40

// Notification is an activity record shown on the notifications screen.
type Notification struct {
	ID                 string           `json:"id"`
	Type               NotificationType `json:"type"`
	FromUser           string           `json:"fromUser"`
	PostID             string           `json:"postId,omitempty"`
	PostContentSnippet string           `json:"postContentSnippet,omitempty"`
	Timestamp          int64            `json:"timestamp"`
	Read               bool             `json:"read"`
}

// Snippet truncates content to SnippetLength characters, appending "..." when
// anything was cut.
func Snippet(content string) string {
	if utf8.RuneCountInString(content) <= SnippetLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:SnippetLength]) + "..."
}
