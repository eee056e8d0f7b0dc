package models

import "time"

// Post is a short text entry in the city feed. Reposts carry the author of the
// root post in OriginalAuthor.
type Post struct {
	ID             string    `json:"id"`
	Author         string    `json:"author"`
	Content        string    `json:"content"`
	Hearts         int       `json:"hearts"`
	Comments       []Comment `json:"comments"`
	Timestamp      int64     `json:"timestamp"`
	IsRepost       bool      `json:"isRepost,omitempty"`
	OriginalAuthor string    `json:"originalAuthor,omitempty"`
}

// Comment is a reply on a post. Replies are kept for parity with stored
// records; nothing creates them yet.
type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp int64     `json:"timestamp"`
	Replies   []Comment `json:"replies"`
}

// CreatedAt returns the post timestamp as a time.Time.
func (p *Post) CreatedAt() time.Time {
	return time.UnixMilli(p.Timestamp)
}

// RootAuthor is the author credited when p is reposted.
func (p *Post) RootAuthor() string {
	if p.IsRepost && p.OriginalAuthor != "" {
		return p.OriginalAuthor
	}
	return p.Author
}

// Normalize fills absent collections with empty ones.
func (p *Post) Normalize() {
	if p == nil {
		return
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
	for i := range p.Comments {
		p.Comments[i].Normalize()
	}
}

// Clone returns a deep copy.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	c := *p
	c.Comments = make([]Comment, len(p.Comments))
	for i := range p.Comments {
		c.Comments[i] = p.Comments[i].Clone()
	}
	return &c
}

// Normalize fills absent collections with empty ones.
func (c *Comment) Normalize() {
	if c.Replies == nil {
		c.Replies = []Comment{}
	}
	for i := range c.Replies {
		c.Replies[i].Normalize()
	}
}

// Clone returns a deep copy.
func (c Comment) Clone() Comment {
	out := c
	out.Replies = make([]Comment, len(c.Replies))
	for i := range c.Replies {
		out.Replies[i] = c.Replies[i].Clone()
	}
	return out
}
