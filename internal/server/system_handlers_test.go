package server

import (
	"context"
	"net/http"
	"testing"

	"mooderia/internal/models"
	"mooderia/internal/service"
	"mooderia/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootGuard_CorruptedStore(t *testing.T) {
	t.Parallel()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(context.Background(), storage.KeyPosts, []byte("{not json")))
	ts := newTestServerOn(t, kv, nil)

	var body errorBody
	assert.Equal(t, http.StatusServiceUnavailable, ts.do(t, http.MethodGet, "/api/posts", nil, &body))
	assert.Equal(t, models.CodeBootCorruption, body.Code)
	assert.Equal(t, http.StatusServiceUnavailable, ts.do(t, http.MethodPost, "/api/auth/login", LoginRequest{}, nil))
	assert.Equal(t, http.StatusServiceUnavailable, ts.do(t, http.MethodGet, "/health", nil, nil))

	var status map[string]any
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/system/status", nil, &status))
	assert.Equal(t, string(service.BootCorrupted), status["status"])
	assert.NotEmpty(t, status["error"])

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/system/reset", nil, &status))
	assert.Equal(t, string(service.BootReady), status["status"])

	var feed []models.Post
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/posts", nil, &feed))
	assert.Empty(t, feed)
	_, err := kv.Get(context.Background(), storage.KeyPosts)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestResetSystem_ForgetsEverything(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)
	ts.register(t, "ada")
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/posts", CreatePostRequest{Content: "soon gone"}, nil))
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/personas/psychiatrist", AskRequest{Message: "hi"}, nil))

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/system/reset", nil, nil))

	var status map[string]any
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/system/status", nil, &status))
	assert.Equal(t, false, status["session"])

	var history []service.ChatEntry
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/personas/psychiatrist", nil, &history))
	assert.Empty(t, history)

	assert.Equal(t, http.StatusUnauthorized,
		ts.do(t, http.MethodPost, "/api/auth/login", LoginRequest{Email: "ada@mooderia.city", Password: "pw-ada"}, nil))
}

func TestHealthAndFlags(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	var health map[string]any
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/health", nil, &health))
	assert.Equal(t, "healthy", health["status"])
	checks := health["checks"].(map[string]any)
	assert.Equal(t, "unavailable", checks["redis"])

	var flags struct {
		Raw       map[string]string `json:"raw"`
		Evaluated map[string]bool   `json:"evaluated"`
	}
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/system/feature-flags", nil, &flags))
	assert.Equal(t, "on", flags.Raw["citizen_repost"])
}

func TestStreamNotifications_RequiresRedis(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)
	ts.register(t, "ada")
	assert.Equal(t, http.StatusServiceUnavailable, ts.do(t, http.MethodGet, "/api/notifications/stream", nil, nil))
}
