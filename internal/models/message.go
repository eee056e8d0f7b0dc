package models

// Message is a direct message between two citizens.
type Message struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	Read      bool   `json:"read"`
}

// Between reports whether m was exchanged by a and b, in either direction.
func (m *Message) Between(a, b string) bool {
	return (m.Sender == a && m.Recipient == b) || (m.Sender == b && m.Recipient == a)
}

// Counterpart returns the other participant from username's point of view.
func (m *Message) Counterpart(username string) string {
	if m.Sender == username {
		return m.Recipient
	}
	return m.Sender
}
