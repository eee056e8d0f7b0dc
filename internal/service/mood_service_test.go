package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mooderia/internal/models"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(DateLayout, s, time.Local)
	require.NoError(t, err)
	return d.Add(15 * time.Hour)
}

func TestNextStreak(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		prev  int
		last  string
		today string
		want  int
	}{
		{"first check-in", 0, "", "Mon Jan 01 2024", 1},
		{"consecutive day", 5, "Mon Jan 01 2024", "Tue Jan 02 2024", 6},
		{"gap resets", 5, "Mon Jan 01 2024", "Thu Jan 04 2024", 1},
		{"same day does not double count", 5, "Mon Jan 01 2024", "Mon Jan 01 2024", 5},
		{"same day with zero streak", 0, "Mon Jan 01 2024", "Mon Jan 01 2024", 1},
		{"across month end", 2, "Wed Jan 31 2024", "Thu Feb 01 2024", 3},
		{"across year end", 9, "Sun Dec 31 2023", "Mon Jan 01 2024", 10},
		{"clock moved back", 4, "Fri Jan 05 2024", "Mon Jan 01 2024", 1},
		{"unreadable last date", 4, "yesterday", "Mon Jan 01 2024", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NextStreak(tt.prev, tt.last, day(t, tt.today)))
		})
	}
}

func TestEarnedBadges(t *testing.T) {
	t.Parallel()

	names := func(badges []models.Badge) []string {
		out := []string{}
		for _, b := range badges {
			out = append(out, b.Name)
		}
		return out
	}
	assert.Equal(t, []string{"Starter", "Dedicated"}, names(EarnedBadges(10)))
	assert.Equal(t, []string{"Starter"}, names(EarnedBadges(3)))
	assert.Empty(t, EarnedBadges(2))
	assert.Len(t, EarnedBadges(30), 4)

	assert.Equal(t, "Dedicated", NextBadge(3).Name)
	assert.Nil(t, NextBadge(30))
}

func TestMoodService_SubmitMood(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "ana")

	env.clock.Set(day(t, "Mon Jan 01 2024"))
	assert.True(t, env.moods.NeedsCheckIn())

	u, accepted, err := env.moods.SubmitMood(ctx, models.MoodHappy)
	require.NoError(t, err)
	require.True(t, accepted)
	assert.Equal(t, 1, u.MoodStreak)
	assert.Equal(t, "Mon Jan 01 2024", u.LastMoodDate)
	assert.False(t, env.moods.NeedsCheckIn())

	u, accepted, err = env.moods.SubmitMood(ctx, models.MoodSad)
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Equal(t, 1, u.MoodStreak)
	assert.Len(t, u.MoodHistory, 1)

	env.clock.Set(day(t, "Tue Jan 02 2024"))
	u, accepted, err = env.moods.SubmitMood(ctx, models.MoodAngry)
	require.NoError(t, err)
	require.True(t, accepted)
	assert.Equal(t, 2, u.MoodStreak)

	env.clock.Set(day(t, "Fri Jan 05 2024"))
	u, _, err = env.moods.SubmitMood(ctx, models.MoodTired)
	require.NoError(t, err)
	assert.Equal(t, 1, u.MoodStreak)
	assert.Equal(t, []models.MoodEntry{
		{Date: "Mon Jan 01 2024", Mood: models.MoodHappy},
		{Date: "Tue Jan 02 2024", Mood: models.MoodAngry},
		{Date: "Fri Jan 05 2024", Mood: models.MoodTired},
	}, u.MoodHistory)

	stored, err := env.directory.FindByUsername(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.MoodStreak)
	assert.Len(t, stored.MoodHistory, 3)
}

func TestMoodService_StreakFromStoredState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "ana")
	require.NoError(t, env.state.Update(ctx, "seed", func(s *State) (Change, error) {
		s.User.MoodStreak = 5
		s.User.LastMoodDate = "Mon Jan 01 2024"
		s.User.MoodHistory = []models.MoodEntry{{Date: "Mon Jan 01 2024", Mood: models.MoodHappy}}
		return UserChanged, nil
	}))

	env.clock.Set(day(t, "Tue Jan 02 2024"))
	u, accepted, err := env.moods.SubmitMood(ctx, models.MoodHappy)
	require.NoError(t, err)
	require.True(t, accepted)
	assert.Equal(t, 6, u.MoodStreak)

	summary := env.moods.Summary()
	require.NotNil(t, summary)
	assert.Equal(t, 6, summary.Streak)
	assert.True(t, summary.CheckedInToday)
	assert.Equal(t, 2, summary.Counts[models.MoodHappy])
	assert.Equal(t, 0, summary.Counts[models.MoodSad])
	require.Len(t, summary.Earned, 1)
	assert.Equal(t, "Dedicated", summary.Next.Name)
}

func TestMoodService_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)

	_, _, err := env.moods.SubmitMood(ctx, "Ecstatic")
	assert.True(t, models.HasCode(err, models.CodeValidation))

	u, accepted, err := env.moods.SubmitMood(ctx, models.MoodHappy)
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Nil(t, u)
	assert.Nil(t, env.moods.Summary())
	assert.False(t, env.moods.NeedsCheckIn())
}
