package service

import (
	"context"
	"slices"
	"strings"

	"mooderia/internal/models"
	"mooderia/internal/scheduler"
)

// PostListener is told about every post the active user creates.
type PostListener interface {
	OnPostCreated(post *models.Post)
}

// FeedFilter narrows the visible feed.
type FeedFilter string

const (
	FeedAll       FeedFilter = "all"
	FeedFollowing FeedFilter = "following"
)

// ParseFeedFilter maps a query value onto a filter; unknown values mean all.
func ParseFeedFilter(raw string) FeedFilter {
	if strings.EqualFold(raw, string(FeedFollowing)) {
		return FeedFollowing
	}
	return FeedAll
}

// SocialService owns the feed and the social graph of the active user.
// Every mutation without a session is a no-op.
type SocialService struct {
	state     *AppState
	directory Directory
	clock     scheduler.Clock
	listener  PostListener
}

// Profile is a citizen page as seen by the active user.
type Profile struct {
	User        *models.User   `json:"user"`
	Posts       []*models.Post `json:"posts"`
	Reposts     []*models.Post `json:"reposts"`
	IsSelf      bool           `json:"isSelf"`
	IsFollowing bool           `json:"isFollowing"`
	IsBlocked   bool           `json:"isBlocked"`
}

func NewSocialService(state *AppState, directory Directory, clock scheduler.Clock, listener PostListener) *SocialService {
	return &SocialService{
		state:     state,
		directory: directory,
		clock:     clock,
		listener:  listener,
	}
}

// CreatePost prepends a post by the active user. Blank content is ignored.
func (s *SocialService) CreatePost(ctx context.Context, content string) (*models.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	var created *models.Post
	err := s.state.Update(ctx, "create_post", func(st *State) (Change, error) {
		if st.User == nil {
			return Unchanged, nil
		}
		p := &models.Post{
			ID:        newID(),
			Author:    st.User.Username,
			Content:   content,
			Comments:  []models.Comment{},
			Timestamp: s.clock.Now().UnixMilli(),
		}
		st.PrependPost(p)
		created = p.Clone()
		return ContentChanged, nil
	})
	if err != nil || created == nil {
		return nil, err
	}
	if s.listener != nil {
		s.listener.OnPostCreated(created.Clone())
	}
	return created, nil
}

// Heart adds one heart to the post. There is no undo; every call counts.
func (s *SocialService) Heart(ctx context.Context, postID string) (*models.Post, error) {
	var out *models.Post
	err := s.state.Update(ctx, "heart", func(st *State) (Change, error) {
		if st.User == nil {
			return Unchanged, nil
		}
		p := st.PostByID(postID)
		if p == nil {
			return Unchanged, nil
		}
		p.Hearts++
		out = p.Clone()
		return ContentChanged, nil
	})
	return out, err
}

// Comment appends a comment by the active user. Blank text is ignored.
func (s *SocialService) Comment(ctx context.Context, postID, text string) (*models.Post, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var out *models.Post
	err := s.state.Update(ctx, "comment", func(st *State) (Change, error) {
		if st.User == nil {
			return Unchanged, nil
		}
		p := st.PostByID(postID)
		if p == nil {
			return Unchanged, nil
		}
		p.Comments = append(p.Comments, models.Comment{
			ID:        newID(),
			Author:    st.User.Username,
			Text:      text,
			Timestamp: s.clock.Now().UnixMilli(),
			Replies:   []models.Comment{},
		})
		out = p.Clone()
		return ContentChanged, nil
	})
	return out, err
}

// Repost prepends a copy of the post attributed to the active user. The
// copy credits the author of the root post, and the source is not touched.
func (s *SocialService) Repost(ctx context.Context, postID string) (*models.Post, error) {
	var out *models.Post
	err := s.state.Update(ctx, "repost", func(st *State) (Change, error) {
		if st.User == nil {
			return Unchanged, nil
		}
		src := st.PostByID(postID)
		if src == nil {
			return Unchanged, nil
		}
		p := newRepost(src, st.User.Username, s.clock.Now().UnixMilli())
		st.PrependPost(p)
		out = p.Clone()
		return ContentChanged, nil
	})
	return out, err
}

func newRepost(src *models.Post, author string, ts int64) *models.Post {
	return &models.Post{
		ID:             newID(),
		Author:         author,
		Content:        src.Content,
		Comments:       []models.Comment{},
		Timestamp:      ts,
		IsRepost:       true,
		OriginalAuthor: src.RootAuthor(),
	}
}

// Follow toggles username in the active user's following set and returns
// the new membership.
func (s *SocialService) Follow(ctx context.Context, username string) (bool, error) {
	following := false
	err := s.state.Update(ctx, "follow", func(st *State) (Change, error) {
		u := st.User
		if u == nil || username == "" || username == u.Username {
			return Unchanged, nil
		}
		if u.IsFollowing(username) {
			u.Following = remove(u.Following, username)
		} else {
			u.Following = append(u.Following, username)
			following = true
		}
		return UserChanged, nil
	})
	return following, err
}

// Unfollow removes username from the following set.
func (s *SocialService) Unfollow(ctx context.Context, username string) error {
	return s.state.Update(ctx, "unfollow", func(st *State) (Change, error) {
		u := st.User
		if u == nil || !u.IsFollowing(username) {
			return Unchanged, nil
		}
		u.Following = remove(u.Following, username)
		return UserChanged, nil
	})
}

// Block hides username's posts and unfollows them.
func (s *SocialService) Block(ctx context.Context, username string) error {
	return s.state.Update(ctx, "block", func(st *State) (Change, error) {
		u := st.User
		if u == nil || username == "" || username == u.Username {
			return Unchanged, nil
		}
		if !u.HasBlocked(username) {
			u.BlockedUsers = append(u.BlockedUsers, username)
		}
		u.Following = remove(u.Following, username)
		return UserChanged, nil
	})
}

// Unblock removes username from the blocked set.
func (s *SocialService) Unblock(ctx context.Context, username string) error {
	return s.state.Update(ctx, "unblock", func(st *State) (Change, error) {
		u := st.User
		if u == nil || !u.HasBlocked(username) {
			return Unchanged, nil
		}
		u.BlockedUsers = remove(u.BlockedUsers, username)
		return UserChanged, nil
	})
}

// VisiblePosts is the feed minus posts by blocked authors. FeedFollowing
// further keeps only the active user and the people they follow.
func (s *SocialService) VisiblePosts(filter FeedFilter) []*models.Post {
	var out []*models.Post
	s.state.Read(func(st *State) {
		out = visiblePosts(st, filter)
	})
	return out
}

func visiblePosts(st *State, filter FeedFilter) []*models.Post {
	out := []*models.Post{}
	for _, p := range st.Posts {
		if st.User != nil {
			if st.User.HasBlocked(p.Author) {
				continue
			}
			if filter == FeedFollowing && p.Author != st.User.Username && !st.User.IsFollowing(p.Author) {
				continue
			}
		}
		out = append(out, p.Clone())
	}
	return out
}

// UserProfile returns the citizen page for username.
func (s *SocialService) UserProfile(ctx context.Context, username string) (*Profile, error) {
	var self *models.User
	s.state.Read(func(st *State) { self = st.User.Clone() })
	if self == nil {
		return nil, models.NewUnauthorizedError("No active session")
	}

	target := self
	if username != self.Username {
		u, err := s.directory.FindByUsername(ctx, username)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		if u == nil {
			return nil, models.NewNotFoundError("Citizen", username)
		}
		target = u
	}

	profile := &Profile{
		User:        target.Public(),
		Posts:       []*models.Post{},
		Reposts:     []*models.Post{},
		IsSelf:      target.Username == self.Username,
		IsFollowing: self.IsFollowing(target.Username),
		IsBlocked:   self.HasBlocked(target.Username),
	}
	for _, p := range s.VisiblePosts(FeedAll) {
		if p.Author != target.Username {
			continue
		}
		if p.IsRepost {
			profile.Reposts = append(profile.Reposts, p)
		} else {
			profile.Posts = append(profile.Posts, p)
		}
	}
	return profile, nil
}

// SearchCitizens matches term against other directory accounts.
func (s *SocialService) SearchCitizens(ctx context.Context, term string) ([]*models.User, error) {
	var self string
	s.state.Read(func(st *State) { self = st.Username() })
	if self == "" {
		return []*models.User{}, nil
	}
	users, err := s.directory.Search(ctx, term, self)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	out := make([]*models.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// BlockedUsers lists who the active user blocked.
func (s *SocialService) BlockedUsers() []string {
	out := []string{}
	s.state.Read(func(st *State) {
		if st.User != nil {
			out = slices.Clone(st.User.BlockedUsers)
		}
	})
	return out
}

func remove(set []string, v string) []string {
	return slices.DeleteFunc(slices.Clone(set), func(s string) bool { return s == v })
}
