package service

import (
	"context"
	"time"

	"mooderia/internal/models"
	"mooderia/internal/scheduler"
)

// DateLayout formats calendar days as stored in mood records, e.g.
// "Mon Jan 01 2024".
const DateLayout = "Mon Jan 02 2006"

// Today is the calendar-day string for clock's current local date.
func Today(clock scheduler.Clock) string {
	return clock.Now().Format(DateLayout)
}

// HasCheckedInToday reports whether u has a mood entry dated today.
func HasCheckedInToday(u *models.User, today string) bool {
	if u == nil {
		return false
	}
	for _, e := range u.MoodHistory {
		if e.Date == today {
			return true
		}
	}
	return false
}

// NextStreak computes the streak after a check-in on today, given the
// previous streak and last check-in day. Consecutive days extend the streak;
// any longer gap, or a last date that cannot be read, starts over at 1.
func NextStreak(prev int, lastDate string, today time.Time) int {
	if lastDate == "" {
		return 1
	}
	last, err := time.ParseInLocation(DateLayout, lastDate, today.Location())
	if err != nil {
		return 1
	}
	switch dayGap(last, today) {
	case 0:
		return max(prev, 1)
	case 1:
		return prev + 1
	default:
		return 1
	}
}

// dayGap counts calendar days from a to b, ignoring clock time and DST.
func dayGap(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}

// EarnedBadges lists the badges a streak currently qualifies for. Badges
// follow the live streak, so a reset loses them.
func EarnedBadges(streak int) []models.Badge {
	out := []models.Badge{}
	for _, b := range models.Badges {
		if streak >= b.Required {
			out = append(out, b)
		}
	}
	return out
}

// NextBadge is the first badge not yet earned, or nil.
func NextBadge(streak int) *models.Badge {
	for _, b := range models.Badges {
		if streak < b.Required {
			return &b
		}
	}
	return nil
}

// MoodService records daily check-ins.
type MoodService struct {
	state *AppState
	clock scheduler.Clock
}

// MoodSummary is the mood screen read model.
type MoodSummary struct {
	History        []models.MoodEntry  `json:"history"`
	Streak         int                 `json:"streak"`
	LastMoodDate   string              `json:"lastMoodDate,omitempty"`
	CheckedInToday bool                `json:"checkedInToday"`
	Counts         map[models.Mood]int `json:"counts"`
	Earned         []models.Badge      `json:"earned"`
	Next           *models.Badge       `json:"next,omitempty"`
}

func NewMoodService(state *AppState, clock scheduler.Clock) *MoodService {
	return &MoodService{state: state, clock: clock}
}

// SubmitMood records today's mood. accepted is false when there is no
// session or today already has an entry.
func (s *MoodService) SubmitMood(ctx context.Context, mood models.Mood) (user *models.User, accepted bool, err error) {
	if !mood.Valid() {
		return nil, false, models.NewValidationError("Mood must be one of Happy, Sad, Angry, Tired")
	}

	now := s.clock.Now()
	today := now.Format(DateLayout)
	err = s.state.Update(ctx, "submit_mood", func(st *State) (Change, error) {
		u := st.User
		if u == nil {
			return Unchanged, nil
		}
		if HasCheckedInToday(u, today) {
			user = u.Clone()
			return Unchanged, nil
		}
		u.MoodHistory = append(u.MoodHistory, models.MoodEntry{Date: today, Mood: mood})
		u.MoodStreak = NextStreak(u.MoodStreak, u.LastMoodDate, now)
		u.LastMoodDate = today
		user = u.Clone()
		accepted = true
		return UserChanged, nil
	})
	if err != nil {
		return nil, false, err
	}
	return user, accepted, nil
}

// NeedsCheckIn reports whether the active user still owes today's mood.
func (s *MoodService) NeedsCheckIn() bool {
	today := Today(s.clock)
	needs := false
	s.state.Read(func(st *State) {
		needs = st.User != nil && !HasCheckedInToday(st.User, today)
	})
	return needs
}

// Summary builds the mood read model, or nil without a session.
func (s *MoodService) Summary() *MoodSummary {
	today := Today(s.clock)
	var out *MoodSummary
	s.state.Read(func(st *State) {
		u := st.User
		if u == nil {
			return
		}
		counts := make(map[models.Mood]int, len(models.Moods))
		for _, m := range models.Moods {
			counts[m] = 0
		}
		for _, e := range u.MoodHistory {
			counts[e.Mood]++
		}
		out = &MoodSummary{
			History:        append([]models.MoodEntry{}, u.MoodHistory...),
			Streak:         u.MoodStreak,
			LastMoodDate:   u.LastMoodDate,
			CheckedInToday: HasCheckedInToday(u, today),
			Counts:         counts,
			Earned:         EarnedBadges(u.MoodStreak),
			Next:           NextBadge(u.MoodStreak),
		}
	})
	return out
}
