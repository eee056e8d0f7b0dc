package seed

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"mooderia/internal/models"
	"mooderia/internal/repository"
)

// Options control how much data a run creates.
type Options struct {
	Users        int
	PostsPerUser int
	Messages     int
	// Clean wipes every record first.
	Clean bool
}

// Result summarizes a run.
type Result struct {
	Users    []*models.User
	Posts    int
	Messages int
}

// Seeder writes demo data through the repositories. Existing posts and
// messages are kept unless Clean is set.
type Seeder struct {
	directory *repository.UserDirectory
	state     *repository.StateRepository
	factory   *Factory
}

func NewSeeder(directory *repository.UserDirectory, state *repository.StateRepository, factory *Factory) *Seeder {
	return &Seeder{directory: directory, state: state, factory: factory}
}

// Run seeds citizens, their posts with a few comments, and messages between
// them. The current-user record is never written.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Clean {
		if err := s.state.Wipe(ctx); err != nil {
			return nil, fmt.Errorf("wipe: %w", err)
		}
	}

	snap, err := s.state.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load existing state: %w", err)
	}
	snap.User = nil

	res := &Result{}
	names := make([]string, 0, opts.Users)
	for range opts.Users {
		u := s.factory.User()
		if err := s.directory.Upsert(ctx, u); err != nil {
			return nil, fmt.Errorf("save user %s: %w", u.Username, err)
		}
		res.Users = append(res.Users, u)
		names = append(names, u.Username)
	}
	if len(names) == 0 {
		return res, nil
	}

	for _, author := range names {
		for range opts.PostsPerUser {
			p := s.factory.Post(author, s.factory.Minutes(7*24*60))
			for s.factory.Chance(40) {
				p.Comments = append(p.Comments, s.factory.Comment(s.factory.Pick(names), p.Timestamp))
			}
			snap.Posts = append(snap.Posts, p)
			res.Posts++
		}
	}
	slices.SortStableFunc(snap.Posts, func(a, b *models.Post) int {
		switch {
		case a.Timestamp > b.Timestamp:
			return -1
		case a.Timestamp < b.Timestamp:
			return 1
		}
		return 0
	})

	if len(names) > 1 {
		for range opts.Messages {
			sender := s.factory.Pick(names)
			recipient := s.factory.Pick(names)
			for recipient == sender {
				recipient = s.factory.Pick(names)
			}
			snap.Messages = append(snap.Messages, s.factory.Message(sender, recipient, s.factory.Minutes(3*24*60)))
			res.Messages++
		}
	}

	if err := s.state.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}
	slog.InfoContext(ctx, "Seed complete",
		slog.Int("users", len(res.Users)),
		slog.Int("posts", res.Posts),
		slog.Int("messages", res.Messages),
	)
	return res, nil
}
