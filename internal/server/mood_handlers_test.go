package server

import (
	"net/http"
	"testing"
	"time"

	"mooderia/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type moodResponse struct {
	Accepted bool                `json:"accepted"`
	Summary  service.MoodSummary `json:"summary"`
}

func TestSubmitMood(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/mood", nil, nil))
	ts.register(t, "ada")

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/api/mood", SubmitMoodRequest{Mood: "Ecstatic"}, nil))

	var res moodResponse
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/mood", SubmitMoodRequest{Mood: "Happy"}, &res))
	assert.True(t, res.Accepted)
	assert.Equal(t, 1, res.Summary.Streak)
	assert.True(t, res.Summary.CheckedInToday)

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/mood", SubmitMoodRequest{Mood: "Sad"}, &res))
	assert.False(t, res.Accepted)
	assert.Len(t, res.Summary.History, 1)

	for day := 1; day <= 2; day++ {
		ts.clock.Advance(24 * time.Hour)
		require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/mood", SubmitMoodRequest{Mood: "Tired"}, &res))
	}
	assert.Equal(t, 3, res.Summary.Streak)
	require.Len(t, res.Summary.Earned, 1)
	assert.Equal(t, "Starter", res.Summary.Earned[0].Name)

	var summary service.MoodSummary
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/mood", nil, &summary))
	assert.Equal(t, 3, summary.Streak)
	require.NotNil(t, summary.Next)
	assert.Equal(t, 7, summary.Next.Required)
}
