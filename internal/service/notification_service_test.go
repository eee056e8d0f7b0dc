package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_OpenMarksAllRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "ana")
	_, err := env.social.CreatePost(ctx, "notice me")
	require.NoError(t, err)
	env.clock.Advance(RepostDelay)

	assert.Equal(t, 3, env.notifications.UnreadCount())
	listed := env.notifications.List()
	require.Len(t, listed, 3)
	assert.False(t, listed[0].Read)

	opened, err := env.notifications.OpenNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, opened, 3)
	for _, n := range opened {
		assert.True(t, n.Read)
	}
	assert.Equal(t, 0, env.notifications.UnreadCount())

	require.NoError(t, env.notifications.MarkAllRead(ctx))
	assert.Equal(t, 0, env.notifications.UnreadCount())
}

func TestNotificationService_MarkAllReadNeedsSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "ana")
	_, err := env.social.CreatePost(ctx, "notice me")
	require.NoError(t, err)
	env.clock.Advance(HeartDelay)
	require.NoError(t, env.sessions.Logout(ctx))

	require.NoError(t, env.notifications.MarkAllRead(ctx))
	assert.Equal(t, 1, env.notifications.UnreadCount())
}
