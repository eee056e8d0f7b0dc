// Package zodiac holds the static sign table used by the astrology screens.
package zodiac

import (
	"strings"
	"unicode/utf16"
)

// Sign describes one zodiac sign.
type Sign struct {
	Name        string `json:"name"`
	Dates       string `json:"dates"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	History     string `json:"history"`
}

// Signs is the table in calendar order starting at Aries.
var Signs = []Sign{
	{Name: "Aries", Dates: "Mar 21 - Apr 19", Symbol: "♈", Description: "The Pioneer", History: "Aries represents the ram whose golden fleece was sought by Jason and the Argonauts."},
	{Name: "Taurus", Dates: "Apr 20 - May 20", Symbol: "♉", Description: "The Builder", History: "In Greek mythology, Zeus transformed into a bull to win the heart of Europa."},
	{Name: "Gemini", Dates: "May 21 - Jun 20", Symbol: "♊", Description: "The Messenger", History: "Represented by Castor and Pollux, twins who shared immortality."},
	{Name: "Cancer", Dates: "Jun 21 - Jul 22", Symbol: "♋", Description: "The Guardian", History: "Hercules encountered the giant crab Karkinos during his 12 labors."},
	{Name: "Leo", Dates: "Jul 23 - Aug 22", Symbol: "♌", Description: "The Leader", History: "Associated with the Nemean Lion, a beast slain by Hercules."},
	{Name: "Virgo", Dates: "Aug 23 - Sep 22", Symbol: "♍", Description: "The Critic", History: "Often linked to Astraea, the goddess of innocence and purity."},
	{Name: "Libra", Dates: "Sep 23 - Oct 22", Symbol: "♎", Description: "The Diplomat", History: "The only non-living symbol, representing the scales of Justice."},
	{Name: "Scorpio", Dates: "Oct 23 - Nov 21", Symbol: "♏", Description: "The Strategist", History: "Sent by Gaia to defeat Orion after he threatened all animals."},
	{Name: "Sagittarius", Dates: "Nov 22 - Dec 21", Symbol: "♐", Description: "The Explorer", History: "Symbolizes Chiron, the wise centaur who taught Greek heroes."},
	{Name: "Capricorn", Dates: "Dec 22 - Jan 19", Symbol: "♑", Description: "The Achiever", History: "Associated with Pan, the god who grew fish scales to escape Typhon."},
	{Name: "Aquarius", Dates: "Jan 20 - Feb 18", Symbol: "♒", Description: "The Reformer", History: "Ganymede, the cup-bearer to the gods who poured water for life."},
	{Name: "Pisces", Dates: "Feb 19 - Mar 20", Symbol: "♓", Description: "The Dreamer", History: "Aphrodite and Eros turned into fish to hide from a sea monster."},
}

// boundary is the first day of a sign: month, day, sign index.
type boundary struct {
	month, day int
	sign       int
}

// starts lists when each sign begins, in calendar order from January.
var starts = []boundary{
	{1, 20, 10}, // Aquarius
	{2, 19, 11}, // Pisces
	{3, 21, 0},
	{4, 20, 1},
	{5, 21, 2},
	{6, 21, 3},
	{7, 23, 4},
	{8, 23, 5},
	{9, 23, 6},
	{10, 23, 7},
	{11, 22, 8},
	{12, 22, 9}, // Capricorn
}

// FromDate returns the sign name for a birthday. Out-of-range input falls
// back to Aries.
func FromDate(month, day int) string {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Signs[0].Name
	}
	sign := 9 // Capricorn wraps across the new year
	for _, b := range starts {
		if month > b.month || (month == b.month && day >= b.day) {
			sign = b.sign
		}
	}
	return Signs[sign].Name
}

// Lookup finds a sign by name, case-insensitively.
func Lookup(name string) (Sign, bool) {
	for _, s := range Signs {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return s, true
		}
	}
	return Sign{}, false
}

// LuckyColors is the palette Lucky draws from.
var LuckyColors = []string{"Ruby Red", "Emerald Green", "Azure Blue", "Goldenrod", "Vibrant Purple", "Sunset Orange", "Teal", "Rose Pink", "Silver", "Ivory"}

// Lucky derives the color and number (1..99) of the day for a sign. The
// result is stable for a given sign and date string.
func Lucky(sign, date string) (string, int) {
	h := seedHash(sign + date)
	if h < 0 {
		h = -h
	}
	return LuckyColors[h%int64(len(LuckyColors))], int(h%99) + 1
}

// seedHash is the classic hash = c + (hash<<5) - hash over UTF-16 code
// units, with the shift done in 32-bit arithmetic.
func seedHash(seed string) int64 {
	var h int64
	for _, c := range utf16.Encode([]rune(seed)) {
		shifted := int64(int32(uint32(h) << 5))
		h = int64(c) + shifted - h
	}
	return h
}
