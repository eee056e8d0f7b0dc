package service

import (
	"context"
	"slices"
	"strings"

	"mooderia/internal/models"
	"mooderia/internal/scheduler"
)

// MessageService handles direct messages of the active user.
type MessageService struct {
	state *AppState
	clock scheduler.Clock
}

// Conversation summarizes one counterpart in the inbox.
type Conversation struct {
	With        string          `json:"with"`
	LastMessage *models.Message `json:"lastMessage"`
	Unread      int             `json:"unread"`
}

func NewMessageService(state *AppState, clock scheduler.Clock) *MessageService {
	return &MessageService{state: state, clock: clock}
}

// SendMessage appends an unread message from the active user. Blank text
// or recipient is ignored.
func (s *MessageService) SendMessage(ctx context.Context, recipient, text string) (*models.Message, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" || strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var out *models.Message
	err := s.state.Update(ctx, "send_message", func(st *State) (Change, error) {
		if st.User == nil {
			return Unchanged, nil
		}
		m := &models.Message{
			ID:        newID(),
			Sender:    st.User.Username,
			Recipient: recipient,
			Text:      text,
			Timestamp: s.clock.Now().UnixMilli(),
		}
		st.Messages = append(st.Messages, m)
		c := *m
		out = &c
		return ContentChanged, nil
	})
	return out, err
}

// MarkThreadRead marks every message from with to the active user as read
// and returns how many changed.
func (s *MessageService) MarkThreadRead(ctx context.Context, with string) (int, error) {
	marked := 0
	err := s.state.Update(ctx, "mark_thread_read", func(st *State) (Change, error) {
		marked = markThreadRead(st, with)
		if marked == 0 {
			return Unchanged, nil
		}
		return ContentChanged, nil
	})
	return marked, err
}

func markThreadRead(st *State, with string) int {
	me := st.Username()
	if me == "" {
		return 0
	}
	n := 0
	for _, m := range st.Messages {
		if m.Recipient == me && m.Sender == with && !m.Read {
			m.Read = true
			n++
		}
	}
	return n
}

// Thread returns the messages between the active user and with, oldest
// first. Equal timestamps keep storage order.
func (s *MessageService) Thread(with string) []*models.Message {
	var out []*models.Message
	s.state.Read(func(st *State) { out = thread(st, with) })
	return out
}

func thread(st *State, with string) []*models.Message {
	out := []*models.Message{}
	me := st.Username()
	if me == "" {
		return out
	}
	for _, m := range st.Messages {
		if m.Between(me, with) {
			c := *m
			out = append(out, &c)
		}
	}
	slices.SortStableFunc(out, func(a, b *models.Message) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		}
		return 0
	})
	return out
}

// OpenThread is what viewing a thread does: mark it read, then return it.
func (s *MessageService) OpenThread(ctx context.Context, with string) ([]*models.Message, error) {
	var out []*models.Message
	err := s.state.Update(ctx, "open_thread", func(st *State) (Change, error) {
		marked := markThreadRead(st, with)
		out = thread(st, with)
		if marked == 0 {
			return Unchanged, nil
		}
		return ContentChanged, nil
	})
	return out, err
}

// Conversations lists every counterpart of the active user, most recent
// exchange first.
func (s *MessageService) Conversations() []Conversation {
	out := []Conversation{}
	s.state.Read(func(st *State) {
		me := st.Username()
		if me == "" {
			return
		}
		index := map[string]int{}
		for _, m := range st.Messages {
			if m.Sender != me && m.Recipient != me {
				continue
			}
			with := m.Counterpart(me)
			i, ok := index[with]
			if !ok {
				i = len(out)
				index[with] = i
				out = append(out, Conversation{With: with})
			}
			conv := &out[i]
			if conv.LastMessage == nil || m.Timestamp >= conv.LastMessage.Timestamp {
				c := *m
				conv.LastMessage = &c
			}
			if m.Recipient == me && !m.Read {
				conv.Unread++
			}
		}
	})
	slices.SortStableFunc(out, func(a, b Conversation) int {
		switch {
		case a.LastMessage.Timestamp > b.LastMessage.Timestamp:
			return -1
		case a.LastMessage.Timestamp < b.LastMessage.Timestamp:
			return 1
		}
		return 0
	})
	return out
}

// UnreadBySender counts unread messages to the active user per sender.
func (s *MessageService) UnreadBySender() map[string]int {
	out := map[string]int{}
	s.state.Read(func(st *State) {
		me := st.Username()
		for _, m := range st.Messages {
			if me != "" && m.Recipient == me && !m.Read {
				out[m.Sender]++
			}
		}
	})
	return out
}

// UnreadMessageCount counts unread messages addressed to the active user.
func (s *MessageService) UnreadMessageCount() int {
	n := 0
	for _, c := range s.UnreadBySender() {
		n += c
	}
	return n
}
