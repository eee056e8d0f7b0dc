// Package seed creates demo citizens, posts and messages for local
// development. It is not used by the running server.
package seed

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"mooderia/internal/models"
	"mooderia/internal/service"
)

// DefaultPassword is given to every seeded account.
const DefaultPassword = "password123"

// Factory builds demo entities. A fixed seed yields the same data every run.
type Factory struct {
	faker *gofakeit.Faker
	now   time.Time
	taken map[string]bool
}

// NewFactory creates a Factory. seed 0 picks a random seed.
func NewFactory(seed int64, now time.Time) *Factory {
	return &Factory{
		faker: gofakeit.New(seed),
		now:   now,
		taken: make(map[string]bool),
	}
}

// User builds a citizen with a unique username and a plausible mood
// history ending yesterday.
func (f *Factory) User() *models.User {
	var username string
	for {
		username = strings.ToLower(f.faker.Username()) + fmt.Sprintf("%d", f.faker.Number(10, 99))
		if len(username) > 20 {
			username = username[:20]
		}
		if !f.taken[username] {
			f.taken[username] = true
			break
		}
	}

	first := f.faker.FirstName()
	u := &models.User{
		DisplayName:  first + " " + f.faker.LastName(),
		Username:     username,
		Email:        username + "@" + f.faker.DomainName(),
		Password:     DefaultPassword,
		ProfileColor: f.faker.HexColor(),
		Title:        f.faker.RandomString([]string{models.DefaultTitle, "Dreamer", "Night Owl", "Sun Chaser", "Wanderer"}),
	}
	if len(u.DisplayName) > 30 {
		u.DisplayName = first
	}

	streak := f.faker.Number(0, 12)
	for i := streak; i >= 1; i-- {
		u.MoodHistory = append(u.MoodHistory, models.MoodEntry{
			Date: f.now.AddDate(0, 0, -i).Format(service.DateLayout),
			Mood: models.Moods[f.faker.Number(0, len(models.Moods)-1)],
		})
	}
	u.MoodStreak = streak
	if streak > 0 {
		u.LastMoodDate = f.now.AddDate(0, 0, -1).Format(service.DateLayout)
	}
	u.Normalize()
	return u
}

// Post builds a post by author created ago before now.
func (f *Factory) Post(author string, ago time.Duration) *models.Post {
	p := &models.Post{
		ID:        uuid.NewString(),
		Author:    author,
		Content:   f.faker.Sentence(f.faker.Number(4, 16)),
		Hearts:    f.faker.Number(0, 25),
		Timestamp: f.now.Add(-ago).UnixMilli(),
	}
	p.Normalize()
	return p
}

// Comment builds a comment by author.
func (f *Factory) Comment(author string, ts int64) models.Comment {
	return models.Comment{
		ID:        uuid.NewString(),
		Author:    author,
		Text:      f.faker.Sentence(f.faker.Number(3, 10)),
		Timestamp: ts,
		Replies:   []models.Comment{},
	}
}

// Message builds a direct message sent ago before now.
func (f *Factory) Message(sender, recipient string, ago time.Duration) *models.Message {
	return &models.Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Recipient: recipient,
		Text:      f.faker.Sentence(f.faker.Number(3, 12)),
		Timestamp: f.now.Add(-ago).UnixMilli(),
		Read:      f.faker.Bool(),
	}
}

// Pick returns a random element of items.
func (f *Factory) Pick(items []string) string {
	return items[f.faker.Number(0, len(items)-1)]
}

// Chance is true with probability percent/100.
func (f *Factory) Chance(percent int) bool {
	return f.faker.Number(1, 100) <= percent
}

// Minutes is a random duration up to max minutes.
func (f *Factory) Minutes(max int) time.Duration {
	return time.Duration(f.faker.Number(1, max)) * time.Minute
}
