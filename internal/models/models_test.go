package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnippet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"short", "hello", "hello"},
		{"exactly forty", strings.Repeat("a", 40), strings.Repeat("a", 40)},
		{"forty one", strings.Repeat("a", 41), strings.Repeat("a", 40) + "..."},
		{"multibyte", strings.Repeat("é", 45), strings.Repeat("é", 40) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Snippet(tt.content))
		})
	}
}

func TestUser_NormalizeLegacyRecord(t *testing.T) {
	t.Parallel()

	raw := `{"displayName":"Ana","username":"ana","email":"a@x.io","password":"pw","moodStreak":2}`
	var u User
	require.NoError(t, json.Unmarshal([]byte(raw), &u))
	u.Normalize()

	assert.NotNil(t, u.Followers)
	assert.NotNil(t, u.Following)
	assert.NotNil(t, u.Friends)
	assert.NotNil(t, u.BlockedUsers)
	assert.NotNil(t, u.MoodHistory)
	assert.NotNil(t, u.Posts)
	assert.NotNil(t, u.Reposts)
	assert.Equal(t, 2, u.MoodStreak)

	out, err := json.Marshal(&u)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"friends":[]`)
	assert.Contains(t, string(out), `"reposts":[]`)
}

func TestUser_CloneIsDeep(t *testing.T) {
	t.Parallel()

	u := &User{Username: "ana", Following: []string{"bo"}, Friends: []string{"bo"}}
	c := u.Clone()
	c.Following[0] = "cy"
	c.Friends[0] = "cy"

	assert.Equal(t, "bo", u.Following[0])
	assert.Equal(t, "bo", u.Friends[0])
	assert.Empty(t, u.Public().Password)
}

func TestPost_RootAuthor(t *testing.T) {
	t.Parallel()

	orig := Post{Author: "ana"}
	assert.Equal(t, "ana", orig.RootAuthor())

	repost := Post{Author: "bo", IsRepost: true, OriginalAuthor: "ana"}
	assert.Equal(t, "ana", repost.RootAuthor())
}

func TestPost_CloneCopiesComments(t *testing.T) {
	t.Parallel()

	p := &Post{ID: "p1", Comments: []Comment{{ID: "c1", Text: "hi", Replies: []Comment{}}}}
	c := p.Clone()
	c.Comments[0].Text = "changed"

	assert.Equal(t, "hi", p.Comments[0].Text)
}

func TestParseTheme(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ThemeDark, ParseTheme("dark"))
	assert.Equal(t, ThemeLight, ParseTheme("light"))
	assert.Equal(t, ThemeLight, ParseTheme(""))
	assert.Equal(t, ThemeLight, ParseTheme("sepia"))
}

func TestMood_Valid(t *testing.T) {
	t.Parallel()

	for _, m := range Moods {
		assert.True(t, m.Valid())
	}
	assert.False(t, Mood("Ecstatic").Valid())
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, fiber.StatusConflict, StatusFor(NewDuplicateIdentityError()))
	assert.Equal(t, fiber.StatusUnauthorized, StatusFor(NewInvalidCredentialsError()))
	assert.Equal(t, fiber.StatusBadRequest, StatusFor(NewValidationError("bad")))
	assert.Equal(t, fiber.StatusServiceUnavailable, StatusFor(NewBootCorruptionError("posts", errors.New("eof"))))
	assert.Equal(t, fiber.StatusInternalServerError, StatusFor(errors.New("boom")))
}

func TestHasCode_Wrapped(t *testing.T) {
	t.Parallel()

	err := errors.Join(errors.New("other"), NewInvalidCredentialsError())
	assert.True(t, HasCode(err, CodeInvalidCredentials))
	assert.False(t, HasCode(err, CodeDuplicateIdentity))
}
