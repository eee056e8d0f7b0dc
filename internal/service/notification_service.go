package service

import (
	"context"

	"mooderia/internal/models"
)

// NotificationService exposes the activity inbox.
type NotificationService struct {
	state *AppState
}

func NewNotificationService(state *AppState) *NotificationService {
	return &NotificationService{state: state}
}

// List returns the notifications, newest first.
func (s *NotificationService) List() []*models.Notification {
	var out []*models.Notification
	s.state.Read(func(st *State) { out = cloneNotifications(st.Notifications) })
	return out
}

// MarkAllRead marks every notification read.
func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	return s.state.Update(ctx, "mark_notifications_read", func(st *State) (Change, error) {
		if st.User == nil || markAllRead(st) == 0 {
			return Unchanged, nil
		}
		return ContentChanged, nil
	})
}

// OpenNotifications is what viewing the inbox does: mark all read, then list.
func (s *NotificationService) OpenNotifications(ctx context.Context) ([]*models.Notification, error) {
	var out []*models.Notification
	err := s.state.Update(ctx, "open_notifications", func(st *State) (Change, error) {
		changed := Unchanged
		if st.User != nil && markAllRead(st) > 0 {
			changed = ContentChanged
		}
		out = cloneNotifications(st.Notifications)
		return changed, nil
	})
	return out, err
}

// UnreadCount counts unread notifications.
func (s *NotificationService) UnreadCount() int {
	n := 0
	s.state.Read(func(st *State) {
		for _, note := range st.Notifications {
			if !note.Read {
				n++
			}
		}
	})
	return n
}

func markAllRead(st *State) int {
	n := 0
	for _, note := range st.Notifications {
		if !note.Read {
			note.Read = true
			n++
		}
	}
	return n
}

func cloneNotifications(in []*models.Notification) []*models.Notification {
	out := make([]*models.Notification, 0, len(in))
	for _, n := range in {
		c := *n
		out = append(out, &c)
	}
	return out
}
