package models

// Mood is a daily check-in value.
type Mood string

const (
	MoodHappy Mood = "Happy"
	MoodSad   Mood = "Sad"
	MoodAngry Mood = "Angry"
	MoodTired Mood = "Tired"
)

// Moods lists the accepted check-in values.
var Moods = []Mood{MoodHappy, MoodSad, MoodAngry, MoodTired}

// Valid reports whether m is one of Moods.
func (m Mood) Valid() bool {
	for _, v := range Moods {
		if m == v {
			return true
		}
	}
	return false
}

// MoodEntry is one day's check-in.
type MoodEntry struct {
	Date string `json:"date"`
	Mood Mood   `json:"mood"`
}

// Badge is a streak milestone.
type Badge struct {
	Name     string `json:"name"`
	Required int    `json:"required"`
}

// Badges is the static milestone table, ascending by requirement.
var Badges = []Badge{
	{Name: "Starter", Required: 3},
	{Name: "Dedicated", Required: 7},
	{Name: "Mood Master", Required: 15},
	{Name: "Mooderia Elite", Required: 30},
}

// Theme is the persisted UI theme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme maps a stored value onto a theme. Anything but "dark" is light.
func ParseTheme(raw string) Theme {
	if Theme(raw) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}
