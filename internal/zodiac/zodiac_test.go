package zodiac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		month, day int
		want       string
	}{
		{1, 1, "Capricorn"},
		{1, 19, "Capricorn"},
		{1, 20, "Aquarius"},
		{2, 18, "Aquarius"},
		{2, 19, "Pisces"},
		{3, 20, "Pisces"},
		{3, 21, "Aries"},
		{4, 19, "Aries"},
		{4, 20, "Taurus"},
		{5, 21, "Gemini"},
		{6, 21, "Cancer"},
		{7, 22, "Cancer"},
		{7, 23, "Leo"},
		{8, 23, "Virgo"},
		{9, 23, "Libra"},
		{10, 22, "Libra"},
		{10, 23, "Scorpio"},
		{11, 21, "Scorpio"},
		{11, 22, "Sagittarius"},
		{12, 21, "Sagittarius"},
		{12, 22, "Capricorn"},
		{12, 31, "Capricorn"},
		{13, 1, "Aries"},
		{0, 5, "Aries"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FromDate(tt.month, tt.day), "%d/%d", tt.month, tt.day)
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	s, ok := Lookup(" leo ")
	assert.True(t, ok)
	assert.Equal(t, "Leo", s.Name)

	_, ok = Lookup("Ophiuchus")
	assert.False(t, ok)
}

func TestLucky(t *testing.T) {
	t.Parallel()

	color, number := Lucky("Aries", "Mon Jan 01 2024")
	assert.Equal(t, "Silver", color)
	assert.Equal(t, 69, number)

	color, number = Lucky("Leo", "Fri Jul 04 2025")
	assert.Equal(t, "Sunset Orange", color)
	assert.Equal(t, 32, number)

	again, n := Lucky("Leo", "Fri Jul 04 2025")
	assert.Equal(t, color, again)
	assert.Equal(t, number, n)
}
