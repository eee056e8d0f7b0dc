package server

import (
	"net/http"
	"testing"

	"mooderia/internal/models"
	"mooderia/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	assert.Equal(t, http.StatusUnauthorized,
		ts.do(t, http.MethodPost, "/api/posts", CreatePostRequest{Content: "hello"}, nil))

	ts.register(t, "ada")

	tests := []struct {
		name           string
		body           CreatePostRequest
		expectedStatus int
	}{
		{name: "Success", body: CreatePostRequest{Content: "Feeling electric today"}, expectedStatus: http.StatusCreated},
		{name: "Blank Content", body: CreatePostRequest{Content: "   "}, expectedStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedStatus, ts.do(t, http.MethodPost, "/api/posts", tt.body, nil))
		})
	}

	var feed []models.Post
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/posts", nil, &feed))
	require.Len(t, feed, 1)
	assert.Equal(t, "ada", feed[0].Author)
}

func TestPostReactions(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)
	ts.register(t, "ada")

	var post models.Post
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/posts", CreatePostRequest{Content: "first"}, &post))

	var hearted models.Post
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/posts/"+post.ID+"/heart", nil, &hearted))
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/posts/"+post.ID+"/heart", nil, &hearted))
	assert.Equal(t, 2, hearted.Hearts)

	var commented models.Post
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/posts/"+post.ID+"/comments", CommentRequest{Text: "me too"}, &commented))
	require.Len(t, commented.Comments, 1)
	assert.Equal(t, "ada", commented.Comments[0].Author)

	assert.Equal(t, http.StatusBadRequest,
		ts.do(t, http.MethodPost, "/api/posts/"+post.ID+"/comments", CommentRequest{Text: " "}, nil))
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/api/posts/missing/heart", nil, nil))
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/api/posts/missing/repost", nil, nil))

	var repost models.Post
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/posts/"+post.ID+"/repost", nil, &repost))
	assert.True(t, repost.IsRepost)
	assert.Equal(t, "ada", repost.OriginalAuthor)
}

func TestCitizenReactionsReachInbox(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)
	ts.register(t, "ada")

	var post models.Post
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/posts", CreatePostRequest{Content: "hello city"}, &post))

	ts.clock.Advance(service.HeartDelay)

	var unread map[string]int
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/notifications/unread", nil, &unread))
	assert.Equal(t, 1, unread["count"])

	ts.clock.Advance(service.RepostDelay)

	var inbox []models.Notification
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/notifications/open", nil, &inbox))
	require.Len(t, inbox, 3)
	assert.Equal(t, models.NotificationRepost, inbox[0].Type)
	assert.Equal(t, "NeoCitizen", inbox[0].FromUser)
	for _, n := range inbox {
		assert.True(t, n.Read)
	}

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/notifications/unread", nil, &unread))
	assert.Equal(t, 0, unread["count"])

	var feed []models.Post
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/posts", nil, &feed))
	require.Len(t, feed, 2)
	assert.Equal(t, "NeoCitizen", feed[0].Author)
	assert.Equal(t, "ada", feed[0].OriginalAuthor)
	assert.Equal(t, 1, feed[1].Hearts)
	assert.Len(t, feed[1].Comments, 1)
}

func TestFollowingFeedAndBlocks(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)
	ts.register(t, "grace")
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/posts", CreatePostRequest{Content: "from grace"}, nil))
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/auth/logout", nil, nil))
	ts.register(t, "ada")

	var feed []models.Post
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/posts?filter=following", nil, &feed))
	assert.Empty(t, feed)

	var follow map[string]any
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/users/grace/follow", nil, &follow))
	assert.Equal(t, true, follow["following"])

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/posts?filter=following", nil, &feed))
	assert.Len(t, feed, 1)

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/users/grace/block", nil, nil))
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/posts", nil, &feed))
	assert.Empty(t, feed)

	var profile service.Profile
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/users/grace", nil, &profile))
	assert.True(t, profile.IsBlocked)
	assert.False(t, profile.IsFollowing)
	assert.Empty(t, profile.User.Password)

	var blocked []string
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/me/blocked", nil, &blocked))
	assert.Equal(t, []string{"grace"}, blocked)

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodDelete, "/api/users/grace/block", nil, nil))
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/posts", nil, &feed))
	assert.Len(t, feed, 1)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/users/nobody", nil, nil))

	var found []models.User
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/users?q=GRA", nil, &found))
	require.Len(t, found, 1)
	assert.Equal(t, "grace", found[0].Username)
}
